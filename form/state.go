package form

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// State of one form session.
type State string

const (
	Editing    State = "editing"
	Submitting State = "submitting"
	Succeeded  State = "succeeded"
)

var (
	// ErrValidation is returned by Submit when the full-form validation
	// pass failed; the per-field messages are available via Errors().
	ErrValidation = errors.New("form validation failed")

	// ErrSubmitInFlight is returned when a submit arrives while a previous
	// one has not resolved yet.
	ErrSubmitInFlight = errors.New("submit already in progress")

	// ErrUnknownField is returned by SetValue for a name outside the
	// definition.
	ErrUnknownField = errors.New("field not in form definition")

	// ErrNotConfigured is returned by Submit on an empty definition.
	ErrNotConfigured = errors.New("form not configured")
)

// SaveFunc is the persistence boundary: it either stores the record or
// fails. The controller does not interpret the failure beyond that.
type SaveFunc func(ctx context.Context, rec *Record) error

// DefaultSuccessDelay keeps the confirmation visible before the form resets.
const DefaultSuccessDelay = 3 * time.Second

// Controller owns the live values and errors of one rendered form. Each
// form instance gets its own controller; nothing is shared between
// instances. Every failure path returns the controller to Editing — there
// is no terminal state, a session can resubmit indefinitely.
type Controller struct {
	// SuccessDelay is how long submitted values stay visible in the
	// Succeeded state before the reset to an empty Editing form. Set it
	// before the first Submit.
	SuccessDelay time.Duration

	def  Definition
	meta Meta
	save SaveFunc

	mu     sync.Mutex
	state  State
	values Values
	errors Errors
}

func NewController(def Definition, meta Meta, save SaveFunc) *Controller {
	return &Controller{
		SuccessDelay: DefaultSuccessDelay,
		def:          def,
		meta:         meta,
		save:         save,
		state:        Editing,
		values:       Values{},
		errors:       Errors{},
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Values returns a copy of the current value map.
func (c *Controller) Values() Values {
	c.mu.Lock()
	defer c.mu.Unlock()
	values := make(Values, len(c.values))
	for k, v := range c.values {
		values[k] = v
	}
	return values
}

// Errors returns a copy of the current error map.
func (c *Controller) Errors() Errors {
	c.mu.Lock()
	defer c.mu.Unlock()
	errs := make(Errors, len(c.errors))
	for k, v := range c.errors {
		errs[k] = v
	}
	return errs
}

// SetValue records an edit. The field's pending error, if any, is cleared
// immediately whatever the new value is worth — errors only come back from
// the next full validation pass. Names outside the definition are rejected
// so the value map never grows stray keys.
func (c *Controller) SetValue(name string, value any) error {
	if _, ok := c.def.FieldByName(name); !ok {
		return errors.Wrap(ErrUnknownField, name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[name] = value
	delete(c.errors, name)
	return nil
}

// Submit runs the full validation pass and, when clean, normalizes and
// persists the record. Exactly one submit may be in flight per controller;
// later ones get ErrSubmitInFlight. On validation failure the error map is
// replaced wholesale and no external call is made. On persistence failure
// the values survive so the user can retry.
func (c *Controller) Submit(ctx context.Context) (*Record, error) {
	c.mu.Lock()
	if c.state == Submitting {
		c.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	if c.def.Empty() {
		c.mu.Unlock()
		return nil, ErrNotConfigured
	}
	c.state = Submitting
	values := make(Values, len(c.values))
	for k, v := range c.values {
		values[k] = v
	}
	c.mu.Unlock()

	errs := ValidateAll(c.def, values, c.meta.Locale)
	if len(errs) > 0 {
		c.mu.Lock()
		c.errors = errs
		c.state = Editing
		c.mu.Unlock()
		return nil, ErrValidation
	}

	rec := Normalize(c.def, values, c.meta)
	if err := c.save(ctx, rec); err != nil {
		c.mu.Lock()
		c.state = Editing
		c.mu.Unlock()
		return nil, errors.Wrap(err, "create submission")
	}

	c.mu.Lock()
	c.state = Succeeded
	c.errors = Errors{}
	delay := c.SuccessDelay
	c.mu.Unlock()

	if delay <= 0 {
		c.reset()
	} else {
		time.AfterFunc(delay, c.reset)
	}
	return rec, nil
}

func (c *Controller) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values = Values{}
	c.errors = Errors{}
	c.state = Editing
}
