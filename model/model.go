package model

import (
	"github.com/mbolis/quick-enroll/form"
)

// Formation is one course of the catalog, owning the enrollment form
// definition composed by the administrator.
type Formation struct {
	ID      int             `json:"id,omitempty"`
	Version int             `json:"version,omitempty"`
	TitleFr string          `json:"title_fr" validate:"required"`
	TitleAr string          `json:"title_ar"`
	Fields  form.Definition `json:"fields"`
}

// Enrollment is one stored submission row: the fixed record plus storage
// metadata.
type Enrollment struct {
	ID int    `json:"id"`
	IP string `json:"ip"`
	form.Record
}
