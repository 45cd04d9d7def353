// internal/catalog/domain.go
package catalog

import "time"

// Book represents a single physical copy held by the office.
type Book struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Available bool   `json:"available"`
}

// Citizen represents a person known to the office.
type Citizen struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Document string `json:"document,omitempty"`
}

// Membership entitles a citizen to submit loan requests.
// At most one membership exists per citizen.
type Membership struct {
	Number    string    `json:"membership_number"`
	CitizenID string    `json:"citizen_id"`
	IssueDate time.Time `json:"issue_date"`
}
