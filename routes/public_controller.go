package routes

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/mbolis/quick-enroll/app"
	"github.com/mbolis/quick-enroll/form"
	"github.com/mbolis/quick-enroll/httpx"
	"github.com/mbolis/quick-enroll/log"
	"github.com/pkg/errors"
)

func requestLocale(r *http.Request) form.Locale {
	loc := form.Locale(r.URL.Query().Get("locale"))
	if !loc.Valid() {
		return form.FR
	}
	return loc
}

// PublicGetForm serves the enrollment form definition of one formation,
// fields in display order. A formation with no fields is reported as not
// configured instead of an empty form.
func PublicGetForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formationId, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}
		loc := requestLocale(r)

		formation, found, err := queryFormation(r.Context(), app, formationId)
		if err != nil {
			httpx.LogInternalError(w, "db.get_formation", err)
			return
		}
		if !found {
			httpx.LogNotFound(w, "get_formation", formationId)
			return
		}

		if formation.Fields.Empty() {
			render.JSON(w, r, map[string]any{
				"formation":  formation,
				"configured": false,
				"notice":     form.NotConfiguredMessage(loc),
			})
			return
		}

		render.JSON(w, r, map[string]any{
			"formation":  formation,
			"configured": true,
		})
	}
}

// PublicRenderForm serves the localized HTML fragment of the form controls.
func PublicRenderForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formationId, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}
		loc := requestLocale(r)

		formation, found, err := queryFormation(r.Context(), app, formationId)
		if err != nil {
			httpx.LogInternalError(w, "db.get_formation", err)
			return
		}
		if !found {
			httpx.LogNotFound(w, "get_formation", formationId)
			return
		}

		w.Header().Set("content-type", "text/html; charset=utf-8")
		err = form.RenderForm(w, formation.Fields, form.Values{}, form.Errors{}, loc)
		if err != nil {
			log.Errorf("render.form: %s", err)
		}
	}
}

type enrollmentPayload struct {
	Locale form.Locale    `json:"locale"`
	Source string         `json:"source"`
	Values map[string]any `json:"values"`
}

// PublicEnroll runs one submission through the form pipeline: load the
// configured definition, feed the posted values into a fresh controller,
// submit. Validation failures come back as a localized per-field error map;
// persistence failures as one generic localized banner.
func PublicEnroll(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formationId, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		payload := enrollmentPayload{}
		err = render.DecodeJSON(r.Body, &payload)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		loc := payload.Locale
		if !loc.Valid() {
			loc = form.FR
		}

		formation, found, err := queryFormation(r.Context(), app, formationId)
		if err != nil {
			httpx.LogInternalError(w, "db.get_formation", err)
			return
		}
		if !found {
			httpx.LogNotFound(w, "get_formation", formationId)
			return
		}
		if formation.Fields.Empty() {
			log.Debugf("enroll.not_configured: formation %d", formationId)
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, map[string]any{
				"error": form.NotConfiguredMessage(loc),
			})
			return
		}

		ip := strings.Split(r.RemoteAddr, ":")[0]
		var enrollmentId int
		save := func(ctx context.Context, rec *form.Record) error {
			return app.QueryRowContext(ctx, `
				INSERT INTO enrollment (
					formation_id, full_name, email, phone, birth_date,
					address, education_level, message, newsletter,
					locale, source, submitted_at, ip)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
				RETURNING id`,
				rec.FormationID, rec.FullName, rec.Email, rec.Phone, rec.BirthDate,
				rec.Address, rec.EducationLevel, rec.Message, rec.Newsletter,
				rec.Locale, rec.Source, rec.SubmittedAt, ip,
			).Scan(&enrollmentId)
		}

		ctrl := form.NewController(formation.Fields, form.Meta{
			FormationID: formationId,
			Locale:      loc,
			Source:      payload.Source,
		}, save)
		ctrl.SuccessDelay = 0 // no confirmation window server side

		for name, value := range payload.Values {
			if err := ctrl.SetValue(name, value); err != nil {
				// stray keys are not part of the configured form
				log.Debugf("enroll.set_value: %s", err)
			}
		}

		_, err = ctrl.Submit(r.Context())
		switch {
		case errors.Is(err, form.ErrValidation):
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, map[string]any{
				"errors": ctrl.Errors(),
			})
			return
		case err != nil:
			log.Errorf("db.insert_enrollment: %s", err)
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, map[string]any{
				"error": form.ExternalFailureMessage(loc),
			})
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id": enrollmentId,
		})
	}
}
