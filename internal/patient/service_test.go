package patient

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

func TestCreatePatient(t *testing.T) {
	ctx := context.Background()

	t.Run("Rejects Duplicate Medical Record Number", func(t *testing.T) {
		db, mock := setupTestDB(t)
		service := NewService(db)

		mock.ExpectQuery(`SELECT count\(\*\) FROM "patients"`).
			WithArgs("MRN-001").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		_, err := service.CreatePatient(ctx, &CreatePatientDTO{
			FirstName:           "Alex",
			LastName:            "Rivera",
			MedicalRecordNumber: "MRN-001",
		})

		assert.ErrorIs(t, err, ErrDuplicateMedicalRecordNumber)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Rejects Empty Name", func(t *testing.T) {
		db, _ := setupTestDB(t)
		service := NewService(db)

		_, err := service.CreatePatient(ctx, &CreatePatientDTO{
			MedicalRecordNumber: "MRN-001",
		})
		assert.Error(t, err)
	})

	t.Run("Creates Patient", func(t *testing.T) {
		db, mock := setupTestDB(t)
		service := NewService(db)

		mock.ExpectQuery(`SELECT count\(\*\) FROM "patients"`).
			WithArgs("MRN-002").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "patients"`).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		patient, err := service.CreatePatient(ctx, &CreatePatientDTO{
			FirstName:           "Alex",
			LastName:            "Rivera",
			MedicalRecordNumber: "MRN-002",
		})

		require.NoError(t, err)
		assert.Equal(t, "MRN-002", patient.MedicalRecordNumber)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPatientExists(t *testing.T) {
	ctx := context.Background()

	t.Run("Reports Existing Patient", func(t *testing.T) {
		db, mock := setupTestDB(t)
		service := NewService(db)
		patientID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "patients"`).
			WithArgs(patientID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		exists, err := service.PatientExists(ctx, patientID)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("Reports Missing Patient", func(t *testing.T) {
		db, mock := setupTestDB(t)
		service := NewService(db)
		patientID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "patients"`).
			WithArgs(patientID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		exists, err := service.PatientExists(ctx, patientID)
		require.NoError(t, err)
		assert.False(t, exists)
	})
}
