// internal/recipients/source_test.go
package recipients

import (
	"context"
	"testing"

	"bloodcare-alerts/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresSource_ListDonors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "name", "phone", "email", "blood_group", "location"}).
		AddRow("d1", "Asha", "+15551234567", "asha@example.com", "O-", "Mumbai Central").
		AddRow("d2", "Vikram", nil, "vikram@example.com", "A+", "Pune")

	mock.ExpectQuery(`SELECT id, name, phone, email, blood_group, location FROM donors`).
		WillReturnRows(rows)

	src := NewPostgresSource(db)
	donors, err := src.ListDonors(context.Background())
	require.NoError(t, err)
	require.Len(t, donors, 2)

	assert.Equal(t, models.RecipientKindDonor, donors[0].Kind)
	assert.Equal(t, "+15551234567", donors[0].Phone)

	// NULL phone scans to empty string, which dispatch later skips.
	assert.Equal(t, "", donors[1].Phone)
	assert.Equal(t, "vikram@example.com", donors[1].Email)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSource_ListReceivers(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, name, phone, email, blood_group, location FROM receivers`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "phone", "email", "blood_group", "location"}).
			AddRow("r1", "Ravi", "+15550002222", nil, "O-", "Navi Mumbai"))

	src := NewPostgresSource(db)
	receivers, err := src.ListReceivers(context.Background())
	require.NoError(t, err)
	require.Len(t, receivers, 1)
	assert.Equal(t, models.RecipientKindReceiver, receivers[0].Kind)
	assert.Equal(t, "", receivers[0].Email)

	assert.NoError(t, mock.ExpectationsWereMet())
}
