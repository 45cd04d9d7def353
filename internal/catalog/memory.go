// internal/catalog/memory.go
package catalog

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store. It honors the same conditional-write
// contract as the Postgres store and is what the tests run against.
type MemoryStore struct {
	mu          sync.Mutex
	books       map[string]*Book
	citizens    map[string]*Citizen
	memberships map[string]*Membership // keyed by membership number
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		books:       make(map[string]*Book),
		citizens:    make(map[string]*Citizen),
		memberships: make(map[string]*Membership),
	}
}

func (s *MemoryStore) AddBook(_ context.Context, book *Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copy := *book
	s.books[book.ID] = &copy
	return nil
}

func (s *MemoryStore) FindBook(_ context.Context, title, author string) (*Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.books {
		if b.Title == title && b.Author == author {
			copy := *b
			return &copy, nil
		}
	}
	return nil, ErrBookNotFound
}

func (s *MemoryStore) FindBooks(_ context.Context, title, author string) ([]*Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var books []*Book
	for _, b := range s.books {
		if b.Title == title && b.Author == author {
			copy := *b
			books = append(books, &copy)
		}
	}
	if len(books) == 0 {
		return nil, ErrBookNotFound
	}
	return books, nil
}

func (s *MemoryStore) FindAvailableBook(_ context.Context, title, author string) (*Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.books {
		if b.Title == title && b.Author == author && b.Available {
			copy := *b
			return &copy, nil
		}
	}
	return nil, ErrBookNotFound
}

func (s *MemoryStore) SetBookAvailability(_ context.Context, bookID string, available bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[bookID]
	if !ok {
		return ErrBookNotFound
	}
	if !available && !b.Available {
		return ErrBookUnavailable
	}
	b.Available = available
	return nil
}

func (s *MemoryStore) UpdateBookField(_ context.Context, bookID, field string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[bookID]
	if !ok {
		return ErrBookNotFound
	}
	switch field {
	case "title":
		b.Title, _ = value.(string)
	case "author":
		b.Author, _ = value.(string)
	case "available":
		b.Available, _ = value.(bool)
	}
	return nil
}

func (s *MemoryStore) RemoveBook(_ context.Context, bookID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.books, bookID)
	return nil
}

func (s *MemoryStore) AddCitizen(_ context.Context, citizen *Citizen) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copy := *citizen
	s.citizens[citizen.ID] = &copy
	return nil
}

func (s *MemoryStore) SetCitizenDocument(_ context.Context, citizenID, document string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.citizens[citizenID]
	if !ok {
		return ErrCitizenNotFound
	}
	c.Document = document
	return nil
}

func (s *MemoryStore) RemoveCitizen(_ context.Context, citizenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.citizens, citizenID)
	return nil
}

func (s *MemoryStore) FindMembership(_ context.Context, citizenID string) (*Membership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.memberships {
		if m.CitizenID == citizenID {
			copy := *m
			return &copy, nil
		}
	}
	return nil, ErrMembershipNotFound
}

func (s *MemoryStore) CreateMembership(_ context.Context, m *Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.memberships {
		if existing.CitizenID == m.CitizenID {
			return ErrAlreadyEnrolled
		}
	}
	copy := *m
	s.memberships[m.Number] = &copy
	return nil
}

func (s *MemoryStore) RemoveMembership(_ context.Context, number string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.memberships, number)
	return nil
}
