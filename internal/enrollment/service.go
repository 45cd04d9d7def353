// internal/enrollment/service.go
package enrollment

import (
	"context"

	"bureaudesk/internal/catalog"
)

// Service defines the interface for the enrollment gate.
type Service interface {
	// Enroll issues a membership for the citizen. The boolean is the
	// outcome: false for an already-enrolled citizen and for internal
	// failures, with the cause in the error. Enroll never panics.
	Enroll(ctx context.Context, citizen catalog.Citizen) (bool, error)
}
