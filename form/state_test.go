package form

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
)

func enrollDefinition() Definition {
	return Definition{
		{ID: "1", Name: "full_name", Kind: Text, Required: true, Order: 1},
		{ID: "2", Name: "email", Kind: Email, Required: true, Order: 2},
	}
}

func testMeta() Meta {
	return Meta{
		FormationID: 7,
		Locale:      FR,
		Source:      "web",
		Now:         func() time.Time { return time.Date(2024, 5, 12, 10, 0, 0, 0, time.UTC) },
	}
}

func countingSaver(calls *int, fail error) SaveFunc {
	return func(ctx context.Context, rec *Record) error {
		*calls++
		return fail
	}
}

func TestSetValueClearsError(t *testing.T) {
	var calls int
	c := NewController(enrollDefinition(), testMeta(), countingSaver(&calls, nil))
	c.SuccessDelay = 0

	if _, err := c.Submit(context.Background()); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if errs := c.Errors(); errs["full_name"] == "" {
		t.Fatalf("expected full_name error, got %v", errs)
	}

	// editing clears the error even if the new value is still invalid
	if err := c.SetValue("full_name", ""); err != nil {
		t.Fatalf("SetValue: %s", err)
	}
	if _, ok := c.Errors()["full_name"]; ok {
		t.Error("error not cleared on edit")
	}
	// only the edited field's error is touched
	if errs := c.Errors(); errs["email"] == "" {
		t.Errorf("email error lost: %v", errs)
	}
}

func TestSetValueUnknownField(t *testing.T) {
	var calls int
	c := NewController(enrollDefinition(), testMeta(), countingSaver(&calls, nil))

	if err := c.SetValue("nope", "x"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	if _, ok := c.Values()["nope"]; ok {
		t.Error("stray key stored in values")
	}
}

func TestSubmitValidationFailure(t *testing.T) {
	var calls int
	c := NewController(enrollDefinition(), testMeta(), countingSaver(&calls, nil))
	c.SuccessDelay = 0

	c.SetValue("full_name", "")
	c.SetValue("email", "x@y.com")

	rec, err := c.Submit(context.Background())
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if rec != nil {
		t.Error("record produced despite validation failure")
	}
	if calls != 0 {
		t.Errorf("external call made %d times, want 0", calls)
	}

	errs := c.Errors()
	if len(errs) != 1 || errs["full_name"] == "" {
		t.Fatalf("errors = %v, want only full_name", errs)
	}
	if c.State() != Editing {
		t.Errorf("state = %s, want editing", c.State())
	}
}

func TestSubmitErrorsReplacedWholesale(t *testing.T) {
	var calls int
	c := NewController(enrollDefinition(), testMeta(), countingSaver(&calls, nil))
	c.SuccessDelay = 0

	c.Submit(context.Background()) // both fields fail
	if len(c.Errors()) != 2 {
		t.Fatalf("errors = %v, want 2 entries", c.Errors())
	}

	c.SetValue("full_name", "Amine")
	c.Submit(context.Background())
	errs := c.Errors()
	if _, ok := errs["full_name"]; ok {
		t.Errorf("stale full_name error survived: %v", errs)
	}
	if errs["email"] == "" {
		t.Errorf("email error missing: %v", errs)
	}
}

func TestSubmitSuccess(t *testing.T) {
	var calls int
	c := NewController(enrollDefinition(), testMeta(), countingSaver(&calls, nil))
	c.SuccessDelay = 0

	c.SetValue("full_name", "Amine")
	c.SetValue("email", "amine@example.com")

	rec, err := c.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit: %s", err)
	}
	if calls != 1 {
		t.Fatalf("external call made %d times, want 1", calls)
	}
	if rec.FullName != "Amine" || rec.Email != "amine@example.com" {
		t.Errorf("record = %+v", rec)
	}
	if rec.Phone != "" || rec.Newsletter {
		t.Errorf("unconfigured keys not defaulted: %+v", rec)
	}
	if rec.FormationID != 7 || rec.Locale != FR || rec.Source != "web" {
		t.Errorf("context not stamped: %+v", rec)
	}

	// zero delay resets straight back to an empty editing form
	if c.State() != Editing {
		t.Errorf("state = %s, want editing", c.State())
	}
	if len(c.Values()) != 0 || len(c.Errors()) != 0 {
		t.Errorf("form not reset: values=%v errors=%v", c.Values(), c.Errors())
	}
}

func TestSubmitExternalFailure(t *testing.T) {
	var calls int
	c := NewController(enrollDefinition(), testMeta(), countingSaver(&calls, errors.New("boom")))
	c.SuccessDelay = 0

	c.SetValue("full_name", "Amine")
	c.SetValue("email", "amine@example.com")

	_, err := c.Submit(context.Background())
	if err == nil || errors.Is(err, ErrValidation) {
		t.Fatalf("expected external failure, got %v", err)
	}

	// values survive for retry
	if got := c.Values()["full_name"]; got != "Amine" {
		t.Errorf("values lost after external failure: %v", c.Values())
	}
	if c.State() != Editing {
		t.Errorf("state = %s, want editing", c.State())
	}

	// retry goes through once the saver recovers
	c2 := NewController(enrollDefinition(), testMeta(), countingSaver(&calls, nil))
	c2.SuccessDelay = 0
	c2.SetValue("full_name", "Amine")
	c2.SetValue("email", "amine@example.com")
	if _, err := c2.Submit(context.Background()); err != nil {
		t.Fatalf("retry failed: %s", err)
	}
}

func TestSubmitInFlight(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	c := NewController(enrollDefinition(), testMeta(), func(ctx context.Context, rec *Record) error {
		close(entered)
		<-release
		return nil
	})
	c.SuccessDelay = 0

	c.SetValue("full_name", "Amine")
	c.SetValue("email", "amine@example.com")

	done := make(chan error, 1)
	go func() {
		_, err := c.Submit(context.Background())
		done <- err
	}()

	<-entered
	if c.State() != Submitting {
		t.Fatalf("state = %s, want submitting", c.State())
	}
	if _, err := c.Submit(context.Background()); !errors.Is(err, ErrSubmitInFlight) {
		t.Fatalf("expected ErrSubmitInFlight, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first submit failed: %s", err)
	}
}

func TestSubmitNotConfigured(t *testing.T) {
	var calls int
	c := NewController(Definition{}, testMeta(), countingSaver(&calls, nil))

	if _, err := c.Submit(context.Background()); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if calls != 0 {
		t.Error("external call made for unconfigured form")
	}
}

func TestSubmitSuccessDelay(t *testing.T) {
	var calls int
	c := NewController(enrollDefinition(), testMeta(), countingSaver(&calls, nil))
	c.SuccessDelay = 20 * time.Millisecond

	c.SetValue("full_name", "Amine")
	c.SetValue("email", "amine@example.com")
	if _, err := c.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %s", err)
	}

	// confirmation window: values still visible
	if c.State() != Succeeded {
		t.Fatalf("state = %s, want succeeded", c.State())
	}
	if len(c.Values()) == 0 {
		t.Fatal("values cleared before the display delay")
	}

	deadline := time.After(time.Second)
	for c.State() != Editing {
		select {
		case <-deadline:
			t.Fatal("controller never reset to editing")
		case <-time.After(5 * time.Millisecond):
		}
	}
	if len(c.Values()) != 0 {
		t.Errorf("values not cleared after reset: %v", c.Values())
	}
}
