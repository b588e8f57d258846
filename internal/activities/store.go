// internal/activities/store.go
package activities

import (
	"context"
	"errors"

	"mergington-activities/internal/models"
)

// ErrActivityNotFound is returned by stores when the named activity is not in the catalog.
var ErrActivityNotFound = errors.New("ACTIVITY_NOT_FOUND")

// Store holds the activity catalog and its rosters. Implementations must serialize
// appends to a roster so concurrent signups are never lost.
type Store interface {
	// Seed replaces all state with the given catalog.
	Seed(ctx context.Context, catalog models.Catalog) error
	// List returns every activity in catalog order.
	List(ctx context.Context) (models.Catalog, error)
	// AppendParticipant adds email to the end of the roster and returns the new roster length.
	AppendParticipant(ctx context.Context, activityName, email string) (int, error)
	Ping(ctx context.Context) error
	Close() error
}
