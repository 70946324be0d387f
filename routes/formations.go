package routes

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/mbolis/quick-enroll/app"
	"github.com/mbolis/quick-enroll/form"
	"github.com/mbolis/quick-enroll/model"
	"github.com/pkg/errors"
)

// queryFormation loads one formation with its field definition. The second
// return is false when the formation does not exist.
func queryFormation(ctx context.Context, app app.App, id int) (model.Formation, bool, error) {
	formation := model.Formation{}
	err := app.QueryRowContext(ctx, `
		SELECT id, version, title_fr, title_ar
		FROM formation
		WHERE id = ?`,
		id,
	).Scan(&formation.ID, &formation.Version, &formation.TitleFr, &formation.TitleAr)
	if errors.Is(err, sql.ErrNoRows) {
		return formation, false, nil
	}
	if err != nil {
		return formation, false, errors.Wrap(err, "query formation")
	}

	rows, err := app.QueryContext(ctx, `
		SELECT id, kind, name, label_fr, label_ar,
			placeholder_fr, placeholder_ar, required, position, options
		FROM formation_field
		WHERE formation_id = ?`,
		id,
	)
	if err != nil {
		return formation, false, errors.Wrap(err, "query formation fields")
	}
	defer rows.Close()

	for rows.Next() {
		f := form.Field{}
		var opts string
		err = rows.Scan(
			&f.ID, &f.Kind, &f.Name, &f.LabelFr, &f.LabelAr,
			&f.PlaceholderFr, &f.PlaceholderAr, &f.Required, &f.Order, &opts,
		)
		if err != nil {
			return formation, false, errors.Wrap(err, "scan formation field")
		}

		if opts != "" {
			if err := json.Unmarshal([]byte(opts), &f.Options); err != nil {
				return formation, false, errors.Wrap(err, "parse field options")
			}
		}

		formation.Fields = append(formation.Fields, f)
	}
	if err := rows.Err(); err != nil {
		return formation, false, errors.Wrap(err, "iterate formation fields")
	}

	formation.Fields = formation.Fields.Sorted()
	return formation, true, nil
}

// insertFields writes the field list of a formation inside tx. Field ids are
// minted when absent; display position comes from the field order.
func insertFields(ctx context.Context, tx *sql.Tx, formationId int, fields form.Definition, newId func() string) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO formation_field (
			id, formation_id, kind, name, label_fr, label_ar,
			placeholder_fr, placeholder_ar, required, position, options)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "prepare field insert")
	}
	defer stmt.Close()

	for _, f := range fields {
		if f.ID == "" {
			f.ID = newId()
		}

		var optionsJson []byte
		if len(f.Options) > 0 {
			optionsJson, err = json.Marshal(f.Options)
			if err != nil {
				return errors.Wrap(err, "marshal field options")
			}
		}

		_, err = stmt.ExecContext(ctx,
			f.ID, formationId, f.Kind, f.Name, f.LabelFr, f.LabelAr,
			f.PlaceholderFr, f.PlaceholderAr, f.Required, f.Order, string(optionsJson),
		)
		if err != nil {
			return errors.Wrapf(err, "insert field %q", f.Name)
		}
	}
	return nil
}
