package form

import (
	"fmt"
	"time"
)

// Record is the fixed enrollment shape handed to persistence. Its keys never
// depend on which fields the administrator configured: the downstream store
// predates the dynamic form builder and keeps its legacy columns. Normalize
// fills the gaps with defaults so the store always receives a complete row.
type Record struct {
	FormationID    int       `json:"formation_id"`
	FullName       string    `json:"full_name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	BirthDate      string    `json:"birth_date"`
	Address        string    `json:"address"`
	EducationLevel string    `json:"education_level"`
	Message        string    `json:"message"`
	Newsletter     bool      `json:"newsletter"`
	Locale         Locale    `json:"locale"`
	Source         string    `json:"source"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

// Meta is the immutable per-submission context stamped on every record,
// configured fields or not.
type Meta struct {
	FormationID int
	Locale      Locale
	Source      string
	Now         func() time.Time
}

func (m Meta) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

// Normalize builds the persistence record from validated values. Every
// template key starts at its default ("" or false); only keys the active
// definition actually configures are overwritten from values. Text-like
// kinds are coerced to string, boolean stays boolean.
func Normalize(d Definition, values Values, meta Meta) *Record {
	rec := &Record{
		FormationID: meta.FormationID,
		Locale:      meta.Locale,
		Source:      meta.Source,
		SubmittedAt: meta.now(),
	}

	for _, f := range d {
		v, ok := values[f.Name]
		if !ok {
			continue
		}
		switch f.Name {
		case "full_name":
			rec.FullName = asString(v)
		case "email":
			rec.Email = asString(v)
		case "phone":
			rec.Phone = asString(v)
		case "birth_date":
			rec.BirthDate = asString(v)
		case "address":
			rec.Address = asString(v)
		case "education_level":
			rec.EducationLevel = asString(v)
		case "message":
			rec.Message = asString(v)
		case "newsletter":
			rec.Newsletter = asBool(v)
		}
	}
	return rec
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return fmt.Sprint(s)
	}
}

func asBool(v any) bool {
	b, ok := v.(bool)
	return ok && b
}
