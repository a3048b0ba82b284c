// internal/recipients/source.go
package recipients

import (
	"context"
	"database/sql"

	stderrors "bloodcare-alerts/internal/common/errors"
	"bloodcare-alerts/internal/models"
)

// Source provides read-only recipient projections from the registration
// subsystem. No filtering responsibility lives on this side.
type Source interface {
	ListDonors(ctx context.Context) ([]models.Recipient, error)
	ListReceivers(ctx context.Context) ([]models.Recipient, error)
}

// PostgresSource reads donor and receiver projections from the registration
// database.
type PostgresSource struct {
	db *sql.DB
}

func NewPostgresSource(db *sql.DB) *PostgresSource {
	return &PostgresSource{db: db}
}

func (s *PostgresSource) ListDonors(ctx context.Context) ([]models.Recipient, error) {
	return s.list(ctx,
		`SELECT id, name, phone, email, blood_group, location FROM donors`,
		models.RecipientKindDonor,
	)
}

func (s *PostgresSource) ListReceivers(ctx context.Context) ([]models.Recipient, error) {
	return s.list(ctx,
		`SELECT id, name, phone, email, blood_group, location FROM receivers`,
		models.RecipientKindReceiver,
	)
}

func (s *PostgresSource) list(ctx context.Context, query, kind string) ([]models.Recipient, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, stderrors.NewQueryExecutionFailedError("list_"+kind+"s", err)
	}
	defer rows.Close()

	var out []models.Recipient
	for rows.Next() {
		var (
			r            models.Recipient
			phone, email sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Name, &phone, &email, &r.BloodGroup, &r.Location); err != nil {
			return nil, stderrors.NewQueryExecutionFailedError("scan_"+kind, err)
		}
		r.Phone = phone.String
		r.Email = email.String
		r.Kind = kind
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, stderrors.NewQueryExecutionFailedError("list_"+kind+"s", err)
	}
	return out, nil
}
