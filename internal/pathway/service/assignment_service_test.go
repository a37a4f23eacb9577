package service

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/OpenCarePath/carepath/internal/event"
	"github.com/OpenCarePath/carepath/internal/pathway/model"
)

func TestCreateAssignment(t *testing.T) {
	ctx := context.Background()

	pathwayID := uuid.New()
	templateID := uuid.New()
	stepID := uuid.New()

	pathwayRows := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "patient_id", "template_id", "status"}).
			AddRow(pathwayID.String(), uuid.New().String(), templateID.String(), string(model.PathwayStatusActive))
	}

	t.Run("Rejects Step From Another Template", func(t *testing.T) {
		db, sqlMock := setupTestDB(t)
		events := new(MockEventPublisher)
		svc := NewAssignmentService(db, events)

		sqlMock.ExpectBegin()
		sqlMock.ExpectQuery(`SELECT \* FROM "patient_pathways"`).WillReturnRows(pathwayRows())
		sqlMock.ExpectQuery(`SELECT \* FROM "pathway_steps"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "template_id", "name", "step_order"}).
				AddRow(stepID.String(), uuid.New().String(), "Surgery", 1))
		sqlMock.ExpectRollback()

		_, err := svc.CreateAssignment(ctx, &model.CreateAssignmentDTO{
			PathwayID:    pathwayID,
			StepID:       stepID,
			AssignedToID: uuid.New(),
		})
		assert.ErrorIs(t, err, ErrStepNotInTemplate)
		events.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
	})

	t.Run("Rejects Duplicate Assignment", func(t *testing.T) {
		db, sqlMock := setupTestDB(t)
		events := new(MockEventPublisher)
		svc := NewAssignmentService(db, events)

		sqlMock.ExpectBegin()
		sqlMock.ExpectQuery(`SELECT \* FROM "patient_pathways"`).WillReturnRows(pathwayRows())
		sqlMock.ExpectQuery(`SELECT \* FROM "pathway_steps"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "template_id", "name", "step_order"}).
				AddRow(stepID.String(), templateID.String(), "Surgery", 1))
		sqlMock.ExpectQuery(`SELECT count\(\*\) FROM "step_assignments"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		sqlMock.ExpectRollback()

		_, err := svc.CreateAssignment(ctx, &model.CreateAssignmentDTO{
			PathwayID:    pathwayID,
			StepID:       stepID,
			AssignedToID: uuid.New(),
		})
		assert.ErrorIs(t, err, ErrAssignmentExists)
	})

	t.Run("Creates Assignment And Emits Event", func(t *testing.T) {
		db, sqlMock := setupTestDB(t)
		events := new(MockEventPublisher)
		svc := NewAssignmentService(db, events)
		assigneeID := uuid.New()

		sqlMock.ExpectBegin()
		sqlMock.ExpectQuery(`SELECT \* FROM "patient_pathways"`).WillReturnRows(pathwayRows())
		sqlMock.ExpectQuery(`SELECT \* FROM "pathway_steps"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "template_id", "name", "step_order"}).
				AddRow(stepID.String(), templateID.String(), "Surgery", 1))
		sqlMock.ExpectQuery(`SELECT count\(\*\) FROM "step_assignments"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		sqlMock.ExpectExec(`INSERT INTO "step_assignments"`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		events.On("PublishInTx", ctx, mock.Anything, mock.MatchedBy(func(evt *event.Event) bool {
			return evt.EventType == event.TypeStepAssigned &&
				evt.Data["assignedToId"] == assigneeID.String()
		})).Return(&event.Event{EventType: event.TypeStepAssigned}, nil).Once()
		sqlMock.ExpectCommit()
		events.On("Dispatch", ctx, mock.AnythingOfType("*event.Event")).Once()

		assignment, err := svc.CreateAssignment(ctx, &model.CreateAssignmentDTO{
			PathwayID:    pathwayID,
			StepID:       stepID,
			AssignedToID: assigneeID,
		})
		require.NoError(t, err)

		assert.Equal(t, model.AssignmentStatusPending, assignment.Status)
		assert.NotEqual(t, uuid.Nil, assignment.ID)
		events.AssertExpectations(t)
		assert.NoError(t, sqlMock.ExpectationsWereMet())
	})
}
