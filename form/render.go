package form

import (
	"fmt"
	"html/template"
	"io"
)

// Control templates. One wrapper per field carries the locale direction and
// the error flag; the inner control is chosen by kind. Error messages render
// in a paragraph right under the control, whatever the control is.
const fieldTmplSrc = `<div class="form-field{{if .Error}} has-error{{end}}" dir="{{.Dir}}">
{{- if .IsBoolean}}
<label class="form-check" for="{{.Field.ID}}"><input type="checkbox" id="{{.Field.ID}}" name="{{.Field.Name}}"{{if .Checked}} checked{{end}}> {{.Placeholder}}</label>
{{- else}}
<label for="{{.Field.ID}}">{{.Label}}{{if .Field.Required}} *{{end}}</label>
{{- if .IsMultiline}}
<textarea id="{{.Field.ID}}" name="{{.Field.Name}}" rows="4" placeholder="{{.Placeholder}}">{{.Text}}</textarea>
{{- else if .IsSelect}}
<select id="{{.Field.ID}}" name="{{.Field.Name}}">
{{- range .Options}}
<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Label}}</option>
{{- end}}
</select>
{{- else}}
<input type="{{.InputType}}" id="{{.Field.ID}}" name="{{.Field.Name}}" value="{{.Text}}" placeholder="{{.Placeholder}}">
{{- end}}
{{- end}}
{{- if .Error}}
<p class="field-error">{{.Error}}</p>
{{- end}}
</div>
`

const noticeTmplSrc = `<p class="form-empty" dir="{{.Dir}}">{{.Notice}}</p>
`

var (
	fieldTmpl  = template.Must(template.New("field").Parse(fieldTmplSrc))
	noticeTmpl = template.Must(template.New("notice").Parse(noticeTmplSrc))
)

type optionView struct {
	Value    string
	Label    string
	Selected bool
}

type fieldView struct {
	Field       Field
	Label       string
	Placeholder string
	Text        string
	Checked     bool
	Error       string
	Dir         string
	InputType   string
	IsBoolean   bool
	IsMultiline bool
	IsSelect    bool
	Options     []optionView
}

func newFieldView(f Field, value any, errMsg string, loc Locale) fieldView {
	view := fieldView{
		Field:       f,
		Label:       f.Label(loc),
		Placeholder: f.Placeholder(loc),
		Error:       errMsg,
		Dir:         loc.Dir(),
		InputType:   f.Kind.InputType(),
		IsBoolean:   f.Kind == Boolean,
		IsMultiline: f.Kind == Multiline,
		IsSelect:    f.Kind == SingleSelect,
	}

	switch v := value.(type) {
	case bool:
		view.Checked = v
	case string:
		view.Text = v
	case nil:
		// untouched field
	default:
		view.Text = fmt.Sprint(v)
	}

	for _, o := range f.Options {
		view.Options = append(view.Options, optionView{
			Value:    o.Value,
			Label:    o.Label(loc),
			Selected: o.Value == view.Text,
		})
	}
	return view
}

// RenderField writes the HTML control for one field: the control type is
// dispatched on the field kind alone, labels and placeholders come from the
// locale alone. A non-empty errMsg flags the control and renders the
// message beneath it.
func RenderField(w io.Writer, f Field, value any, errMsg string, loc Locale) error {
	return fieldTmpl.Execute(w, newFieldView(f, value, errMsg, loc))
}

// RenderForm writes the whole definition in display order. An empty
// definition short-circuits to the localized "not configured" notice;
// no field controls and no submit path are emitted.
func RenderForm(w io.Writer, d Definition, values Values, errs Errors, loc Locale) error {
	if d.Empty() {
		return RenderNotConfigured(w, loc)
	}
	for _, f := range d.Sorted() {
		if err := RenderField(w, f, values[f.Name], errs[f.Name], loc); err != nil {
			return err
		}
	}
	return nil
}

// RenderNotConfigured writes the notice shown when no form has been
// composed for the formation yet.
func RenderNotConfigured(w io.Writer, loc Locale) error {
	return noticeTmpl.Execute(w, map[string]string{
		"Dir":    loc.Dir(),
		"Notice": NotConfiguredMessage(loc),
	})
}
