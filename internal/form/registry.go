package form

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Registry tracks the open page views. Each view owns an independent form;
// nothing is shared between views and nothing outlives the process.
type Registry struct {
	mu    sync.RWMutex
	views map[string]*Form
	now   func() time.Time
	log   zerolog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{
		views: make(map[string]*Form),
		now:   time.Now,
		log:   log.With().Str("component", "view_registry").Logger(),
	}
}

// Open creates a fresh form under a new view ID.
func (r *Registry) Open() *Form {
	f := newForm(uuid.NewString(), r.now)

	r.mu.Lock()
	r.views[f.ID()] = f
	r.mu.Unlock()

	r.log.Debug().Str("view_id", f.ID()).Msg("View opened")
	return f
}

// Get returns the form for id.
func (r *Registry) Get(id string) (*Form, error) {
	r.mu.RLock()
	f, ok := r.views[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("get view %s: %w", id, ErrViewNotFound)
	}
	return f, nil
}

// Close drops the view. Submissions still in flight finish against the
// detached form and are simply never observed.
func (r *Registry) Close(id string) bool {
	r.mu.Lock()
	_, ok := r.views[id]
	delete(r.views, id)
	r.mu.Unlock()

	if ok {
		r.log.Debug().Str("view_id", id).Msg("View closed")
	}
	return ok
}

// Len reports the number of open views.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.views)
}

// Sweep closes views without observers that have been idle longer than ttl.
// It returns the number of views removed.
func (r *Registry) Sweep(ttl time.Duration) int {
	cutoff := r.now().Add(-ttl)

	r.mu.Lock()
	removed := 0
	for id, f := range r.views {
		if f.Subscribers() == 0 && f.LastTouched().Before(cutoff) {
			delete(r.views, id)
			removed++
		}
	}
	r.mu.Unlock()

	if removed > 0 {
		r.log.Info().Int("removed", removed).Msg("Swept idle views")
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is cancelled.
func (r *Registry) RunSweeper(ctx context.Context, ttl, interval time.Duration) error {
	if ttl <= 0 || interval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.log.Info().Dur("ttl", ttl).Dur("interval", interval).Msg("View sweeper started")
	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("View sweeper stopped")
			return nil
		case <-ticker.C:
			r.Sweep(ttl)
		}
	}
}
