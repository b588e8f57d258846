// internal/activities/registry.go
package activities

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	apperrors "mergington-activities/internal/common/errors"
	"mergington-activities/internal/common/logger"
	"mergington-activities/internal/common/metrics"
	"mergington-activities/internal/models"

	"github.com/google/uuid"
)

const defaultHookTimeout = 5 * time.Second

// SignupHook observes successful signups. Errors are logged and never fail the signup.
type SignupHook interface {
	Name() string
	OnSignup(ctx context.Context, event models.SignupEvent) error
}

// Registry applies List and Signup over a Store.
type Registry struct {
	store       Store
	hooks       []SignupHook
	logger      logger.Logger
	hookTimeout time.Duration
	now         func() time.Time
	pending     sync.WaitGroup
}

func NewRegistry(store Store, log logger.Logger, hooks ...SignupHook) *Registry {
	return &Registry{
		store:       store,
		hooks:       hooks,
		logger:      log.WithFields(map[string]interface{}{"component": "activity-registry"}),
		hookTimeout: defaultHookTimeout,
		now:         time.Now,
	}
}

// WithHookTimeout bounds each hook call.
func (r *Registry) WithHookTimeout(d time.Duration) *Registry {
	if d > 0 {
		r.hookTimeout = d
	}
	return r
}

// Bootstrap seeds the store with the catalog.
func (r *Registry) Bootstrap(ctx context.Context, catalog models.Catalog) error {
	if err := r.store.Seed(ctx, catalog); err != nil {
		return apperrors.NewStorageFailedError("seed", err)
	}
	r.logger.Info("activity catalog seeded", map[string]interface{}{
		"activities": len(catalog),
	})
	return nil
}

// List returns every activity with its current roster.
func (r *Registry) List(ctx context.Context) (models.Catalog, error) {
	catalog, err := r.store.List(ctx)
	if err != nil {
		return nil, apperrors.NewStorageFailedError("list", err)
	}
	return catalog, nil
}

// Signup appends email to the roster of activityName. Duplicates, capacity and email
// format are deliberately not checked.
func (r *Registry) Signup(ctx context.Context, activityName, email string) (*models.SignupResponse, error) {
	position, err := r.store.AppendParticipant(ctx, activityName, email)
	if err != nil {
		var stdErr *apperrors.StandardError
		if errors.Is(err, ErrActivityNotFound) {
			stdErr = apperrors.NewActivityNotFoundError(activityName, err)
		} else {
			stdErr = apperrors.NewStorageFailedError("append", err)
		}
		metrics.SignupFailures.WithLabelValues(string(stdErr.Code)).Inc()
		return nil, stdErr
	}

	metrics.Signups.WithLabelValues(activityName).Inc()

	event := models.SignupEvent{
		ID:           uuid.New().String(),
		ActivityName: activityName,
		Email:        email,
		Position:     position,
		SignedUpAt:   r.now().UTC(),
	}

	r.logger.Info("participant signed up", map[string]interface{}{
		"signupId": event.ID,
		"activity": activityName,
		"email":    email,
		"position": position,
	})

	r.dispatchHooks(ctx, event)

	return &models.SignupResponse{
		Message: fmt.Sprintf("Signed up %s for %s", email, activityName),
	}, nil
}

// Ping reports whether the backing store is reachable.
func (r *Registry) Ping(ctx context.Context) error {
	return r.store.Ping(ctx)
}

// dispatchHooks runs the hooks on a tracked goroutine so the response never waits on
// them. The context is detached so a client disconnect after the append does not drop
// the audit record or confirmation.
func (r *Registry) dispatchHooks(ctx context.Context, event models.SignupEvent) {
	if len(r.hooks) == 0 {
		return
	}
	base := context.WithoutCancel(ctx)
	r.pending.Add(1)
	go func() {
		defer r.pending.Done()
		r.runHooks(base, event)
	}()
}

func (r *Registry) runHooks(ctx context.Context, event models.SignupEvent) {
	for _, hook := range r.hooks {
		hctx, cancel := context.WithTimeout(ctx, r.hookTimeout)
		err := hook.OnSignup(hctx, event)
		cancel()
		if err != nil {
			metrics.SignupHookFailures.WithLabelValues(hook.Name()).Inc()
			r.logger.Warn("signup hook failed", map[string]interface{}{
				"hook":     hook.Name(),
				"signupId": event.ID,
				"activity": event.ActivityName,
				"error":    err,
			})
		}
	}
}

// Drain waits for in-flight hook runs to finish or for ctx to end.
func (r *Registry) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.pending.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("drain signup hooks: %w", ctx.Err())
	}
}
