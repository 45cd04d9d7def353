// internal/loaning/service.go
package loaning

import (
	"context"
	"errors"
)

var (
	ErrCounterNotFound = errors.New("counter not found")
	ErrInvalidRequest  = errors.New("invalid loan request")
)

// Service defines the interface the request-handling layer sees.
type Service interface {
	SubmitLoanRequest(ctx context.Context, citizenID, title, author string) error
	PauseCounter(id int) error
	ResumeCounter(id int) error
}
