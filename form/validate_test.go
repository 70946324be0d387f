package form

import "testing"

func TestValidatePresence(t *testing.T) {
	required := Field{Name: "full_name", Kind: Text, Required: true}
	optional := Field{Name: "nickname", Kind: Text}

	tests := []struct {
		name  string
		field Field
		value any
		ok    bool
	}{
		{"required missing", required, nil, false},
		{"required empty", required, "", false},
		{"required blank", required, "   ", false},
		{"required filled", required, "Amine", true},
		{"optional missing", optional, nil, true},
		{"optional empty", optional, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := Validate(tt.field, tt.value, FR)
			if tt.ok && msg != "" {
				t.Fatalf("unexpected message %q", msg)
			}
			if !tt.ok && msg == "" {
				t.Fatal("expected a message, got none")
			}
		})
	}
}

func TestValidateBoolean(t *testing.T) {
	f := Field{Name: "newsletter", Kind: Boolean, Required: true}

	// false is still an explicit answer
	if msg := Validate(f, false, FR); msg != "" {
		t.Errorf("explicit false rejected: %q", msg)
	}
	if msg := Validate(f, true, FR); msg != "" {
		t.Errorf("explicit true rejected: %q", msg)
	}
	if msg := Validate(f, nil, FR); msg == "" {
		t.Error("missing required boolean accepted")
	}
}

func TestValidateEmail(t *testing.T) {
	f := Field{Name: "email", Kind: Email, Required: true}

	tests := []struct {
		value string
		ok    bool
	}{
		{"a@b.c", true},
		{"amine@example.com", true},
		{"not-an-email", false},
		{"two@@example.com", false},
		{"no@dot", false},
		{"spaced @example.com", false},
	}

	for _, tt := range tests {
		msg := Validate(f, tt.value, FR)
		if tt.ok && msg != "" {
			t.Errorf("%q: unexpected message %q", tt.value, msg)
		}
		if !tt.ok && msg == "" {
			t.Errorf("%q: expected a message", tt.value)
		}
	}
}

func TestValidatePhone(t *testing.T) {
	f := Field{Name: "phone", Kind: Phone, Required: true}

	tests := []struct {
		value string
		ok    bool
	}{
		{"0551234567", true},
		{"0661234567", true},
		{"0771234567", true},
		{"+213551234567", true},
		{"055 123 45 67", true}, // internal whitespace ignored
		{"+213 55 12 34 567", true},
		{"123", false},
		{"0451234567", false},  // bad mobile prefix
		{"05512345678", false}, // too long
		{"055123456", false},   // too short
	}

	for _, tt := range tests {
		msg := Validate(f, tt.value, FR)
		if tt.ok && msg != "" {
			t.Errorf("%q: unexpected message %q", tt.value, msg)
		}
		if !tt.ok && msg == "" {
			t.Errorf("%q: expected a message", tt.value)
		}
	}
}

func TestValidateLocalizedMessages(t *testing.T) {
	f := Field{Name: "email", Kind: Email, Required: true}

	fr := Validate(f, "", FR)
	ar := Validate(f, "", AR)
	if fr == "" || ar == "" || fr == ar {
		t.Fatalf("messages not localized: fr=%q ar=%q", fr, ar)
	}
}

func TestValidateAll(t *testing.T) {
	def := Definition{
		{Name: "full_name", Kind: Text, Required: true, Order: 1},
		{Name: "email", Kind: Email, Required: true, Order: 2},
		{Name: "phone", Kind: Phone, Order: 3},
	}
	values := Values{
		"full_name": "",
		"email":     "x@y.com",
		"phone":     "not a number",
	}

	errs := ValidateAll(def, values, FR)
	if len(errs) != 2 {
		t.Fatalf("got %d errors, want 2: %v", len(errs), errs)
	}
	if errs["full_name"] == "" {
		t.Error("missing required error for full_name")
	}
	if errs["phone"] == "" {
		t.Error("missing shape error for phone")
	}
	if _, ok := errs["email"]; ok {
		t.Errorf("unexpected error for valid email: %q", errs["email"])
	}
}
