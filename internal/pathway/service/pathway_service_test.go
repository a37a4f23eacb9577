package service

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenCarePath/carepath/internal/pathway/model"
)

func TestAdvancePathwayInTx(t *testing.T) {
	ctx := context.Background()

	t.Run("Guards On Observed Step", func(t *testing.T) {
		db, sqlMock := setupTestDB(t)
		svc := NewPathwayService(db)

		nextStepID := uuid.New()
		expectedStepID := uuid.New()
		pathway := &model.PatientPathway{
			BaseModel:     model.BaseModel{ID: uuid.New()},
			CurrentStepID: &nextStepID,
			Status:        model.PathwayStatusActive,
		}

		sqlMock.ExpectBegin()
		sqlMock.ExpectExec(`UPDATE "patient_pathways" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		sqlMock.ExpectCommit()

		err := svc.AdvancePathwayInTx(ctx, db, pathway, expectedStepID)
		assert.NoError(t, err)
		assert.NoError(t, sqlMock.ExpectationsWereMet())
	})

	t.Run("Zero Rows Means Concurrent Writer Won", func(t *testing.T) {
		db, sqlMock := setupTestDB(t)
		svc := NewPathwayService(db)

		nextStepID := uuid.New()
		pathway := &model.PatientPathway{
			BaseModel:     model.BaseModel{ID: uuid.New()},
			CurrentStepID: &nextStepID,
			Status:        model.PathwayStatusActive,
		}

		sqlMock.ExpectBegin()
		sqlMock.ExpectExec(`UPDATE "patient_pathways" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		sqlMock.ExpectCommit()

		err := svc.AdvancePathwayInTx(ctx, db, pathway, uuid.New())
		assert.ErrorIs(t, err, ErrConcurrentModification)
	})
}

func TestGetPathwayForUpdateInTx(t *testing.T) {
	ctx := context.Background()

	t.Run("Not Found", func(t *testing.T) {
		db, sqlMock := setupTestDB(t)
		svc := NewPathwayService(db)

		sqlMock.ExpectQuery(`SELECT \* FROM "patient_pathways"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := svc.GetPathwayForUpdateInTx(ctx, db, uuid.New())
		assert.ErrorIs(t, err, ErrPathwayNotFound)
	})

	t.Run("Loads Completion History", func(t *testing.T) {
		db, sqlMock := setupTestDB(t)
		svc := NewPathwayService(db)

		pathwayID := uuid.New()
		stepID := uuid.New()
		currentStepID := uuid.New()
		now := time.Now().UTC()

		sqlMock.ExpectQuery(`SELECT \* FROM "patient_pathways"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "patient_id", "template_id", "current_step_id", "status", "start_date"}).
				AddRow(pathwayID.String(), uuid.New().String(), uuid.New().String(), currentStepID.String(), string(model.PathwayStatusActive), now))
		sqlMock.ExpectQuery(`SELECT \* FROM "completed_steps"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "pathway_id", "step_id", "completed_at"}).
				AddRow(uuid.New().String(), pathwayID.String(), stepID.String(), now))

		pathway, err := svc.GetPathwayForUpdateInTx(ctx, db, pathwayID)
		require.NoError(t, err)

		assert.Equal(t, pathwayID, pathway.ID)
		require.Len(t, pathway.CompletedSteps, 1)
		assert.Equal(t, stepID, pathway.CompletedSteps[0].StepID)
		assert.NoError(t, sqlMock.ExpectationsWereMet())
	})
}

func TestCreateTemplateValidation(t *testing.T) {
	ctx := context.Background()

	t.Run("Rejects Empty Name", func(t *testing.T) {
		db, _ := setupTestDB(t)
		svc := NewTemplateService(db)

		_, err := svc.CreateTemplate(ctx, &model.CreateTemplateDTO{Name: ""})
		assert.Error(t, err)
	})

	t.Run("Rejects Duplicate Step Orders", func(t *testing.T) {
		db, _ := setupTestDB(t)
		svc := NewTemplateService(db)

		_, err := svc.CreateTemplate(ctx, &model.CreateTemplateDTO{
			Name: "Hip Replacement",
			Steps: []model.CreateTemplateStepDTO{
				{Name: "Pre-op assessment", StepOrder: 1},
				{Name: "Surgery", StepOrder: 1},
			},
		})
		assert.ErrorIs(t, err, ErrInvalidTemplate)
	})

	t.Run("Defaults Version When Omitted", func(t *testing.T) {
		db, mock := setupTestDB(t)
		svc := NewTemplateService(db)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "pathway_templates"`).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		template, err := svc.CreateTemplate(ctx, &model.CreateTemplateDTO{Name: "Hip Replacement"})
		require.NoError(t, err)
		assert.Equal(t, "1.0", template.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Keeps Caller Supplied Version", func(t *testing.T) {
		db, mock := setupTestDB(t)
		svc := NewTemplateService(db)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "pathway_templates"`).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		template, err := svc.CreateTemplate(ctx, &model.CreateTemplateDTO{
			Name:    "Hip Replacement",
			Version: "2.3",
		})
		require.NoError(t, err)
		assert.Equal(t, "2.3", template.Version)
	})

	t.Run("Rejects Invalid Condition Expression", func(t *testing.T) {
		db, _ := setupTestDB(t)
		svc := NewTemplateService(db)

		_, err := svc.CreateTemplate(ctx, &model.CreateTemplateDTO{
			Name: "Hip Replacement",
			Steps: []model.CreateTemplateStepDTO{
				{
					Name:      "Review",
					StepOrder: 1,
					DecisionPoint: &model.CreateDecisionPointDTO{
						ConditionExpression: "{bad json",
					},
				},
			},
		})
		assert.ErrorIs(t, err, ErrInvalidTemplate)
	})
}
