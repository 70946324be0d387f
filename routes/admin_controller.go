package routes

import (
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/mbolis/quick-enroll/app"
	"github.com/mbolis/quick-enroll/form"
	"github.com/mbolis/quick-enroll/httpx"
	"github.com/mbolis/quick-enroll/log"
	"github.com/mbolis/quick-enroll/model"
)

var payloadValidator = validator.New()

var reNoIdent = regexp.MustCompile(`\W+`)

// fillFieldNames derives a submission key from the French label for every
// field that came in without one, deduplicating with a numeric suffix.
func fillFieldNames(fields form.Definition) {
	names := make([]string, len(fields))
	for i, f := range fields {
		name := f.Name
		if name == "" {
			name = strings.ToLower(f.LabelFr)
			name = reNoIdent.ReplaceAllLiteralString(name, " ")
			name = strings.Join(strings.Fields(name), "_")
		}

		n := 0
		for _, prev := range names[:i] {
			if prev == name {
				n++
			}
		}
		if n > 0 {
			name = fmt.Sprintf("%s__%d", name, n)
		}

		names[i] = name
		fields[i].Name = name
	}
}

// checkFormationPayload runs structural validation plus the form definition
// invariants. Returns a message suitable for a 422 response, or "".
func checkFormationPayload(formation model.Formation) string {
	if err := payloadValidator.Struct(formation); err != nil {
		return err.Error()
	}
	fillFieldNames(formation.Fields)
	if err := formation.Fields.Check(); err != nil {
		return err.Error()
	}
	return ""
}

func CreateFormation(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formation := model.Formation{}
		err := render.DecodeJSON(r.Body, &formation)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		if msg := checkFormationPayload(formation); msg != "" {
			httpx.LogStatusMsg(w, http.StatusUnprocessableEntity, log.DebugLevel, "request.validate_body", "%s", msg)
			return
		}

		tx, err := app.BeginTx(r.Context(), nil)
		if err != nil {
			httpx.LogInternalError(w, "db.begin_tx", err)
			return
		}
		defer tx.Rollback()

		var formationId int
		err = tx.QueryRowContext(r.Context(), `
			INSERT INTO formation (title_fr, title_ar) VALUES (?, ?)
			RETURNING id`,
			formation.TitleFr,
			formation.TitleAr,
		).Scan(&formationId)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_formation", err)
			return
		}

		err = insertFields(r.Context(), tx, formationId, formation.Fields, uuid.NewString)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_formation.fields", err)
			return
		}

		err = tx.Commit()
		if err != nil {
			httpx.LogInternalError(w, "db.insert_formation.commit", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id": formationId,
		})
	}
}

func ListFormations(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := app.QueryContext(r.Context(), `
			SELECT f.id, f.version, f.title_fr, f.title_ar
			FROM formation f`)
		if err != nil {
			httpx.LogInternalError(w, "db.get_formations", err)
			return
		}
		defer rows.Close()

		formations := []model.Formation{}
		for rows.Next() {
			f := model.Formation{}
			err = rows.Scan(&f.ID, &f.Version, &f.TitleFr, &f.TitleAr)
			if err != nil {
				httpx.LogInternalError(w, "db.get_formations.scan", err)
				return
			}

			formations = append(formations, f)
		}

		render.JSON(w, r, map[string]any{
			"formations": formations,
		})
	}
}

func GetFormationById(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formationId, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
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

		render.JSON(w, r, formation)
	}
}

func UpdateFormation(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formationId, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		formation := model.Formation{}
		err = render.DecodeJSON(r.Body, &formation)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		if msg := checkFormationPayload(formation); msg != "" {
			httpx.LogStatusMsg(w, http.StatusUnprocessableEntity, log.DebugLevel, "request.validate_body", "%s", msg)
			return
		}

		tx, err := app.BeginTx(r.Context(), nil)
		if err != nil {
			httpx.LogInternalError(w, "db.begin_tx", err)
			return
		}
		defer tx.Rollback()

		// replace the whole field list
		_, err = tx.ExecContext(r.Context(), `
			DELETE FROM formation_field
			WHERE formation_id = ?`,
			formationId,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.update_formation.delete_fields", err)
			return
		}

		err = insertFields(r.Context(), tx, formationId, formation.Fields, uuid.NewString)
		if err != nil {
			httpx.LogInternalError(w, "db.update_formation.fields", err)
			return
		}

		res, err := tx.ExecContext(r.Context(), `
			UPDATE formation
			SET
				title_fr = ?,
				title_ar = ?,
				version = version+1
			WHERE	id = ?
				AND version = ?`,
			formation.TitleFr,
			formation.TitleAr,
			formationId,
			formation.Version,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.update_formation", err)
			return
		}
		// optimistic lock
		n, err := res.RowsAffected()
		if err != nil {
			httpx.LogInternalError(w, "db.update_formation.verify", err)
			return
		}
		if n < 1 {
			httpx.LogStatus(w, http.StatusConflict, log.DebugLevel, "db.update_formation.verify.conflict")
			return
		}

		err = tx.Commit()
		if err != nil {
			httpx.LogInternalError(w, "db.update_formation.commit", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func DeleteFormation(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formationId, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		tx, err := app.BeginTx(r.Context(), nil)
		if err != nil {
			httpx.LogInternalError(w, "db.begin_tx", err)
			return
		}
		defer tx.Rollback()

		_, err = tx.ExecContext(r.Context(), `
			DELETE FROM formation_field
			WHERE formation_id = ?`,
			formationId,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.delete_formation.fields", err)
			return
		}

		res, err := tx.ExecContext(r.Context(), `
			DELETE FROM formation WHERE id = ?`,
			formationId,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.delete_formation", err)
			return
		}
		n, err := res.RowsAffected()
		if err != nil {
			httpx.LogInternalError(w, "db.delete_formation.verify", err)
			return
		}
		if n < 1 {
			httpx.LogNotFound(w, "delete_formation", formationId)
			return
		}

		err = tx.Commit()
		if err != nil {
			httpx.LogInternalError(w, "db.delete_formation.commit", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func GetFormationEnrollments(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formationId, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		rows, err := app.QueryContext(r.Context(), `
			SELECT
				e.id, e.formation_id, e.full_name, e.email, e.phone,
				e.birth_date, e.address, e.education_level, e.message,
				e.newsletter, e.locale, e.source, e.submitted_at, e.ip
			FROM enrollment e
			WHERE e.formation_id = ?
			ORDER BY e.submitted_at`,
			formationId,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.get_enrollments", err)
			return
		}
		defer rows.Close()

		enrollments := []model.Enrollment{}
		for rows.Next() {
			e := model.Enrollment{}
			err = rows.Scan(
				&e.ID, &e.FormationID, &e.FullName, &e.Email, &e.Phone,
				&e.BirthDate, &e.Address, &e.EducationLevel, &e.Message,
				&e.Newsletter, &e.Locale, &e.Source, &e.SubmittedAt, &e.IP,
			)
			if err != nil {
				httpx.LogInternalError(w, "db.get_enrollments.scan", err)
				return
			}

			enrollments = append(enrollments, e)
		}

		render.JSON(w, r, map[string]any{
			"enrollments": enrollments,
		})
	}
}
