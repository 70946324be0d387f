package form

import (
	"sort"

	"github.com/pkg/errors"
)

// Locale selects which of the two configured languages drives labels,
// placeholders, messages and text direction.
type Locale string

const (
	FR Locale = "fr"
	AR Locale = "ar"
)

func (l Locale) Valid() bool {
	return l == FR || l == AR
}

// Dir returns the HTML text direction for the locale.
func (l Locale) Dir() string {
	if l == AR {
		return "rtl"
	}
	return "ltr"
}

// Kind is the closed set of field types an administrator can configure.
type Kind string

const (
	Text         Kind = "text"
	Email        Kind = "email"
	Phone        Kind = "phone"
	Multiline    Kind = "multiline"
	SingleSelect Kind = "singleSelect"
	Boolean      Kind = "boolean"
	Date         Kind = "date"
)

func (k Kind) Valid() bool {
	switch k {
	case Text, Email, Phone, Multiline, SingleSelect, Boolean, Date:
		return true
	}
	return false
}

// InputType maps single-line kinds to the HTML input type attribute.
// Email and phone stay free text in the browser but keep their semantic type.
func (k Kind) InputType() string {
	switch k {
	case Email:
		return "email"
	case Phone:
		return "tel"
	case Date:
		return "date"
	default:
		return "text"
	}
}

// Option is one entry of a singleSelect field.
type Option struct {
	Value   string `json:"value"`
	LabelFr string `json:"label_fr"`
	LabelAr string `json:"label_ar"`
}

func (o Option) Label(loc Locale) string {
	if loc == AR {
		return o.LabelAr
	}
	return o.LabelFr
}

// Field is one configured form field. Options is meaningful only when
// Kind is SingleSelect; Check rejects every other combination.
type Field struct {
	ID            string   `json:"id,omitempty"`
	Name          string   `json:"name"`
	Kind          Kind     `json:"kind"`
	LabelFr       string   `json:"label_fr"`
	LabelAr       string   `json:"label_ar"`
	PlaceholderFr string   `json:"placeholder_fr,omitempty"`
	PlaceholderAr string   `json:"placeholder_ar,omitempty"`
	Required      bool     `json:"required"`
	Options       []Option `json:"options,omitempty"`
	Order         int      `json:"order"`
}

func (f Field) Label(loc Locale) string {
	if loc == AR {
		return f.LabelAr
	}
	return f.LabelFr
}

func (f Field) Placeholder(loc Locale) string {
	if loc == AR {
		return f.PlaceholderAr
	}
	return f.PlaceholderFr
}

// Definition is the ordered field list attached to one formation.
type Definition []Field

func (d Definition) Empty() bool {
	return len(d) == 0
}

// Sorted returns a copy sorted by Order ascending. The sort is stable:
// ties keep their original list position.
func (d Definition) Sorted() Definition {
	sorted := make(Definition, len(d))
	copy(sorted, d)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order < sorted[j].Order
	})
	return sorted
}

func (d Definition) FieldByName(name string) (Field, bool) {
	for _, f := range d {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Check validates the definition invariants. A failure is a configuration
// defect: it must stop the definition at the admin boundary, end users
// never see it.
func (d Definition) Check() error {
	names := make(map[string]bool, len(d))
	for _, f := range d {
		if f.Name == "" {
			return errors.New("field with empty name")
		}
		if names[f.Name] {
			return errors.Errorf("duplicate field name %q", f.Name)
		}
		names[f.Name] = true

		if !f.Kind.Valid() {
			return errors.Errorf("field %q: unknown kind %q", f.Name, f.Kind)
		}

		if f.Kind == SingleSelect {
			if len(f.Options) == 0 {
				return errors.Errorf("field %q: singleSelect without options", f.Name)
			}
			values := make(map[string]bool, len(f.Options))
			for _, o := range f.Options {
				if o.Value == "" {
					return errors.Errorf("field %q: option with empty value", f.Name)
				}
				if values[o.Value] {
					return errors.Errorf("field %q: duplicate option value %q", f.Name, o.Value)
				}
				values[o.Value] = true
			}
		} else if len(f.Options) > 0 {
			return errors.Errorf("field %q: options on kind %q", f.Name, f.Kind)
		}
	}
	return nil
}
