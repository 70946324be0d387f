package form

import (
	"regexp"
	"strings"
)

// Values maps field name to the current input: string for text-like kinds,
// bool for boolean. Keys never stray outside the owning Definition.
type Values map[string]any

// Errors maps field name to a localized validation message.
type Errors map[string]string

type message struct {
	fr, ar string
}

func (m message) in(loc Locale) string {
	if loc == AR {
		return m.ar
	}
	return m.fr
}

var (
	msgRequired = message{
		fr: "Ce champ est obligatoire.",
		ar: "هذا الحقل مطلوب.",
	}
	msgEmail = message{
		fr: "Adresse e-mail invalide.",
		ar: "البريد الإلكتروني غير صالح.",
	}
	msgPhone = message{
		fr: "Numéro de téléphone invalide.",
		ar: "رقم الهاتف غير صالح.",
	}
	msgExternalFailure = message{
		fr: "Une erreur est survenue. Veuillez réessayer.",
		ar: "حدث خطأ. يرجى المحاولة مرة أخرى.",
	}
	msgNotConfigured = message{
		fr: "Le formulaire d'inscription n'est pas encore disponible.",
		ar: "استمارة التسجيل غير متوفرة بعد.",
	}
)

// ExternalFailureMessage is the generic banner shown when persistence fails.
// It never carries diagnostic detail.
func ExternalFailureMessage(loc Locale) string {
	return msgExternalFailure.in(loc)
}

// NotConfiguredMessage is shown in place of a form with zero fields.
func NotConfiguredMessage(loc Locale) string {
	return msgNotConfigured.in(loc)
}

var (
	reEmail = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	// Algerian mobile numbers: +213 or 0, then a 5/6/7 prefix and 8 digits.
	// Kept as a var so a deployment can swap the national scheme.
	rePhone = regexp.MustCompile(`^(\+213|0)[567][0-9]{8}$`)
)

// Validate checks one value against one field descriptor and returns a
// localized message, or "" when the value is acceptable. Rules apply in
// order: presence, then email shape, then phone shape. Pure and
// deterministic, usable per keystroke or at submit time.
func Validate(f Field, value any, loc Locale) string {
	switch v := value.(type) {
	case bool:
		// An explicit boolean is always present, false included.
		return ""
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			if f.Required {
				return msgRequired.in(loc)
			}
			return ""
		}
		switch f.Kind {
		case Email:
			if !reEmail.MatchString(s) {
				return msgEmail.in(loc)
			}
		case Phone:
			stripped := strings.Join(strings.Fields(s), "")
			if !rePhone.MatchString(stripped) {
				return msgPhone.in(loc)
			}
		}
		return ""
	default:
		// nil or an unexpected type counts as absent.
		if f.Required {
			return msgRequired.in(loc)
		}
		return ""
	}
}

// ValidateAll runs Validate over every field of the definition and collects
// the non-empty results keyed by field name. This is the single gate for
// submission.
func ValidateAll(d Definition, values Values, loc Locale) Errors {
	errs := Errors{}
	for _, f := range d {
		if msg := Validate(f, values[f.Name], loc); msg != "" {
			errs[f.Name] = msg
		}
	}
	return errs
}
