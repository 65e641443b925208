// Package form holds the transient state of a profile-setup page view and
// notifies observers whenever a field changes.
package form

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/stemsi/profile-setup/internal/model"
)

var (
	// ErrUnknownField is returned when a caller tries to set anything other
	// than major or year.
	ErrUnknownField = errors.New("unknown form field")
	// ErrViewNotFound is returned by the registry for missing view IDs.
	ErrViewNotFound = errors.New("view not found")
)

// Observer is called synchronously after a field changes, with the name of the
// changed field and the state of the whole form after the change.
// Observers must not mutate the form they observe.
type Observer func(field model.Field, view model.ProfileView)

// Form is the state holder for one page view: two controlled text fields and
// the submission status.
type Form struct {
	id  string
	now func() time.Time

	// notifyMu serializes update+notify so observers see changes in the
	// order they were applied.
	notifyMu sync.Mutex

	mu        sync.Mutex
	major     string
	year      string
	status    model.Status
	seq       uint64
	touched   time.Time
	observers map[int]Observer
	nextObs   int
}

// New creates an empty form. Status starts empty.
func New(id string) *Form {
	return newForm(id, time.Now)
}

func newForm(id string, now func() time.Time) *Form {
	return &Form{
		id:        id,
		now:       now,
		touched:   now(),
		observers: make(map[int]Observer),
	}
}

// ID returns the view ID the form belongs to.
func (f *Form) ID() string { return f.id }

// Subscribe registers an observer. The returned func removes it; once it
// returns the observer is never called again. It must not be called from
// inside an observer.
func (f *Form) Subscribe(obs Observer) (unsubscribe func()) {
	f.mu.Lock()
	key := f.nextObs
	f.nextObs++
	f.observers[key] = obs
	f.touched = f.now()
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.notifyMu.Lock()
			defer f.notifyMu.Unlock()
			f.mu.Lock()
			delete(f.observers, key)
			f.touched = f.now()
			f.mu.Unlock()
		})
	}
}

// Subscribers reports how many observers are attached.
func (f *Form) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.observers)
}

// LastTouched is the time of the last update or subscription change.
func (f *Form) LastTouched() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.touched
}

// View returns the current state.
func (f *Form) View() model.ProfileView {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.viewLocked()
}

// Set replaces a text field with value verbatim. Any string is accepted.
func (f *Form) Set(field model.Field, value string) error {
	f.notifyMu.Lock()
	defer f.notifyMu.Unlock()

	f.mu.Lock()
	var changed bool
	switch field {
	case model.FieldMajor:
		changed = f.major != value
		f.major = value
	case model.FieldYear:
		changed = f.year != value
		f.year = value
	default:
		f.mu.Unlock()
		return fmt.Errorf("set %q: %w", field, ErrUnknownField)
	}
	f.touched = f.now()
	view, observers := f.viewLocked(), f.observersLocked()
	f.mu.Unlock()

	if changed {
		notify(observers, field, view)
	}
	return nil
}

// Begin starts a submission: the status moves to sending and the current
// field values are captured. The returned sequence number identifies this
// submission when it completes.
func (f *Form) Begin() (model.Profile, uint64) {
	f.notifyMu.Lock()
	defer f.notifyMu.Unlock()

	f.mu.Lock()
	f.seq++
	seq := f.seq
	changed := f.status != model.StatusSending
	f.status = model.StatusSending
	f.touched = f.now()
	view, observers := f.viewLocked(), f.observersLocked()
	f.mu.Unlock()

	if changed {
		notify(observers, model.FieldStatus, view)
	}
	return view.Profile(), seq
}

// Complete records the outcome of submission seq. Outcomes of submissions
// that were superseded by a later Begin are dropped and Complete returns false.
func (f *Form) Complete(seq uint64, status model.Status) bool {
	f.notifyMu.Lock()
	defer f.notifyMu.Unlock()

	f.mu.Lock()
	if seq != f.seq {
		f.mu.Unlock()
		return false
	}
	changed := f.status != status
	f.status = status
	f.touched = f.now()
	view, observers := f.viewLocked(), f.observersLocked()
	f.mu.Unlock()

	if changed {
		notify(observers, model.FieldStatus, view)
	}
	return true
}

func (f *Form) viewLocked() model.ProfileView {
	return model.ProfileView{
		ID:         f.id,
		Major:      f.major,
		Year:       f.year,
		Status:     f.status,
		StatusText: f.status.Text(),
	}
}

func (f *Form) observersLocked() []Observer {
	out := make([]Observer, 0, len(f.observers))
	for _, key := range slices.Sorted(maps.Keys(f.observers)) {
		out = append(out, f.observers[key])
	}
	return out
}

func notify(observers []Observer, field model.Field, view model.ProfileView) {
	for _, obs := range observers {
		obs(field, view)
	}
}

// ParseField maps a wire field name to a settable form field.
func ParseField(name string) (model.Field, error) {
	switch f := model.Field(name); f {
	case model.FieldMajor, model.FieldYear:
		return f, nil
	default:
		return "", fmt.Errorf("parse %q: %w", name, ErrUnknownField)
	}
}
