// internal/alerts/postgres.go
package alerts

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	stderrors "bloodcare-alerts/internal/common/errors"
	"bloodcare-alerts/internal/models"
)

// PostgresStore persists alerts in the alerts table. Counter updates are a
// single UPDATE so they are atomic under concurrent settlement callbacks.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const alertColumns = `id, type, title, message, blood_group, location, priority, target_audience,
	sms_enabled, email_enabled, created_at, expires_at, active,
	sms_sent, sms_delivered, sms_failed, email_sent, email_delivered, email_failed`

func (s *PostgresStore) Create(ctx context.Context, alert *models.Alert) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO alerts (`+alertColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, 0, 0, 0, 0, 0, 0)`,
		alert.ID, alert.Type, alert.Title, alert.Message, alert.BloodGroup, alert.Location,
		alert.Priority, alert.TargetAudience, alert.SMSEnabled, alert.EmailEnabled,
		alert.CreatedAt, alert.ExpiresAt, alert.Active,
	)
	if err != nil {
		return stderrors.NewQueryExecutionFailedError("create_alert", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*models.Alert, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+alertColumns+` FROM alerts WHERE id = $1`, id)

	alert, err := scanAlert(row)
	if err == sql.ErrNoRows {
		return nil, stderrors.NewAlertNotFoundError(id)
	}
	if err != nil {
		return nil, stderrors.NewQueryExecutionFailedError("get_alert", err)
	}
	return alert, nil
}

func (s *PostgresStore) SetActive(ctx context.Context, id string, active bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE alerts SET active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return stderrors.NewQueryExecutionFailedError("set_alert_active", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return stderrors.NewAlertNotFoundError(id)
	}
	return nil
}

func (s *PostgresStore) ListActive(ctx context.Context, now time.Time) ([]models.Alert, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+alertColumns+` FROM alerts WHERE active = true AND expires_at > $1 ORDER BY created_at DESC`,
		now)
	if err != nil {
		return nil, stderrors.NewQueryExecutionFailedError("list_active_alerts", err)
	}
	defer rows.Close()

	var out []models.Alert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, stderrors.NewQueryExecutionFailedError("scan_alert", err)
		}
		out = append(out, *alert)
	}
	if err := rows.Err(); err != nil {
		return nil, stderrors.NewQueryExecutionFailedError("list_active_alerts", err)
	}
	return out, nil
}

// counterColumn maps (channel, counter) onto its column, rejecting anything
// outside the fixed set.
func counterColumn(channel, counter string) (string, error) {
	if channel != models.ChannelSMS && channel != models.ChannelEmail {
		return "", fmt.Errorf("invalid channel: %s", channel)
	}
	switch counter {
	case CounterSent, CounterDelivered, CounterFailed:
	default:
		return "", fmt.Errorf("invalid counter: %s", counter)
	}
	return fmt.Sprintf("%s_%s", channel, counter), nil
}

func (s *PostgresStore) IncrementCounter(ctx context.Context, alertID, channel, counter string) error {
	col, err := counterColumn(channel, counter)
	if err != nil {
		return stderrors.NewQueryExecutionFailedError("increment_counter", err)
	}

	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE alerts SET %s = %s + 1 WHERE id = $1`, col, col), alertID)
	if err != nil {
		return stderrors.NewQueryExecutionFailedError("increment_counter", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return stderrors.NewAlertNotFoundError(alertID)
	}
	return nil
}

func (s *PostgresStore) DeactivateExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE alerts SET active = false WHERE active = true AND expires_at <= $1`, now)
	if err != nil {
		return 0, stderrors.NewQueryExecutionFailedError("deactivate_expired", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return int(n), nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAlert(row rowScanner) (*models.Alert, error) {
	var (
		a                    models.Alert
		bloodGroup, location sql.NullString
	)
	err := row.Scan(
		&a.ID, &a.Type, &a.Title, &a.Message, &bloodGroup, &location,
		&a.Priority, &a.TargetAudience, &a.SMSEnabled, &a.EmailEnabled,
		&a.CreatedAt, &a.ExpiresAt, &a.Active,
		&a.SMSStats.Sent, &a.SMSStats.Delivered, &a.SMSStats.Failed,
		&a.EmailStats.Sent, &a.EmailStats.Delivered, &a.EmailStats.Failed,
	)
	if err != nil {
		return nil, err
	}
	a.BloodGroup = bloodGroup.String
	a.Location = location.String
	return &a, nil
}
