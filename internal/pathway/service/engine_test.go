package service

import (
	"context"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/OpenCarePath/carepath/internal/event"
	"github.com/OpenCarePath/carepath/internal/pathway/model"
)

func setupTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db, sqlMock
}

// MockTemplateProvider is a mock implementation of TemplateProvider
type MockTemplateProvider struct {
	mock.Mock
}

func (m *MockTemplateProvider) GetTemplateWithSteps(ctx context.Context, templateID uuid.UUID) (*model.PathwayTemplate, error) {
	args := m.Called(ctx, templateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PathwayTemplate), args.Error(1)
}

// MockPathwayRepository is a mock implementation of PathwayRepository
type MockPathwayRepository struct {
	mock.Mock
}

func (m *MockPathwayRepository) CreatePathwayInTx(ctx context.Context, tx *gorm.DB, pathway *model.PatientPathway) error {
	args := m.Called(ctx, tx, pathway)
	return args.Error(0)
}

func (m *MockPathwayRepository) GetPathwayForUpdateInTx(ctx context.Context, tx *gorm.DB, pathwayID uuid.UUID) (*model.PatientPathway, error) {
	args := m.Called(ctx, tx, pathwayID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PatientPathway), args.Error(1)
}

func (m *MockPathwayRepository) AdvancePathwayInTx(ctx context.Context, tx *gorm.DB, pathway *model.PatientPathway, expectedStepID uuid.UUID) error {
	args := m.Called(ctx, tx, pathway, expectedStepID)
	return args.Error(0)
}

func (m *MockPathwayRepository) CreateCompletedStepInTx(ctx context.Context, tx *gorm.DB, completed *model.CompletedStep) error {
	args := m.Called(ctx, tx, completed)
	return args.Error(0)
}

func (m *MockPathwayRepository) GetPathwayByID(ctx context.Context, pathwayID uuid.UUID) (*model.PatientPathway, error) {
	args := m.Called(ctx, pathwayID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PatientPathway), args.Error(1)
}

func (m *MockPathwayRepository) GetPathwaysByPatientID(ctx context.Context, patientID uuid.UUID, offset, limit int) ([]model.PatientPathway, error) {
	args := m.Called(ctx, patientID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PatientPathway), args.Error(1)
}

func (m *MockPathwayRepository) GetActivePathways(ctx context.Context, offset, limit int) ([]model.PatientPathway, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PatientPathway), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishInTx(ctx context.Context, tx *gorm.DB, evt *event.Event) (*event.Event, error) {
	args := m.Called(ctx, tx, evt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Event), args.Error(1)
}

func (m *MockEventPublisher) Dispatch(ctx context.Context, evt *event.Event) {
	m.Called(ctx, evt)
}

// MockPatientProvider is a mock implementation of PatientProvider
type MockPatientProvider struct {
	mock.Mock
}

func (m *MockPatientProvider) PatientExists(ctx context.Context, patientID uuid.UUID) (bool, error) {
	args := m.Called(ctx, patientID)
	return args.Bool(0), args.Error(1)
}

// statefulPathwayRepo is an in-memory PathwayRepository that applies advances
// to real state, so racing callers observe each other's writes.
type statefulPathwayRepo struct {
	mu      sync.Mutex
	pathway model.PatientPathway
}

func (r *statefulPathwayRepo) CreatePathwayInTx(ctx context.Context, tx *gorm.DB, pathway *model.PatientPathway) error {
	return nil
}

func (r *statefulPathwayRepo) GetPathwayForUpdateInTx(ctx context.Context, tx *gorm.DB, pathwayID uuid.UUID) (*model.PatientPathway, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	snapshot := r.pathway
	if r.pathway.CurrentStepID != nil {
		stepID := *r.pathway.CurrentStepID
		snapshot.CurrentStepID = &stepID
	}
	return &snapshot, nil
}

func (r *statefulPathwayRepo) AdvancePathwayInTx(ctx context.Context, tx *gorm.DB, pathway *model.PatientPathway, expectedStepID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pathway.CurrentStepID == nil || *r.pathway.CurrentStepID != expectedStepID {
		return ErrConcurrentModification
	}
	r.pathway.CurrentStepID = pathway.CurrentStepID
	r.pathway.Status = pathway.Status
	r.pathway.ActualEndDate = pathway.ActualEndDate
	return nil
}

func (r *statefulPathwayRepo) CreateCompletedStepInTx(ctx context.Context, tx *gorm.DB, completed *model.CompletedStep) error {
	return nil
}

func (r *statefulPathwayRepo) GetPathwayByID(ctx context.Context, pathwayID uuid.UUID) (*model.PatientPathway, error) {
	return r.GetPathwayForUpdateInTx(ctx, nil, pathwayID)
}

func (r *statefulPathwayRepo) GetPathwaysByPatientID(ctx context.Context, patientID uuid.UUID, offset, limit int) ([]model.PatientPathway, error) {
	return nil, nil
}

func (r *statefulPathwayRepo) GetActivePathways(ctx context.Context, offset, limit int) ([]model.PatientPathway, error) {
	return nil, nil
}

type engineFixture struct {
	engine    *PathwayEngine
	sqlMock   sqlmock.Sqlmock
	templates *MockTemplateProvider
	patients  *MockPatientProvider
	repo      *MockPathwayRepository
	events    *MockEventPublisher
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()

	db, sqlMock := setupTestDB(t)
	templates := new(MockTemplateProvider)
	patients := new(MockPatientProvider)
	repo := new(MockPathwayRepository)
	events := new(MockEventPublisher)

	return &engineFixture{
		engine:    NewPathwayEngine(db, templates, patients, repo, events, NewExpressionEvaluator()),
		sqlMock:   sqlMock,
		templates: templates,
		patients:  patients,
		repo:      repo,
		events:    events,
	}
}

func publishedTemplate(steps ...model.PathwayStep) *model.PathwayTemplate {
	return &model.PathwayTemplate{
		BaseModel: model.BaseModel{ID: uuid.New()},
		Name:      "Post-op Recovery",
		Status:    model.TemplateStatusPublished,
		Steps:     steps,
	}
}

func TestInitializePathway(t *testing.T) {
	ctx := context.Background()

	t.Run("Starts At First Step", func(t *testing.T) {
		f := newEngineFixture(t)
		s1 := makeStep(1, 2)
		s2 := makeStep(2, 3)
		template := publishedTemplate(s1, s2)
		patientID := uuid.New()

		f.patients.On("PatientExists", ctx, patientID).Return(true, nil).Once()
		f.templates.On("GetTemplateWithSteps", ctx, template.ID).Return(template, nil).Once()

		f.sqlMock.ExpectBegin()
		f.repo.On("CreatePathwayInTx", ctx, mock.Anything, mock.AnythingOfType("*model.PatientPathway")).
			Run(func(args mock.Arguments) {
				args.Get(2).(*model.PatientPathway).ID = uuid.New()
			}).Return(nil).Once()
		f.events.On("PublishInTx", ctx, mock.Anything, mock.MatchedBy(func(evt *event.Event) bool {
			return evt.EventType == event.TypePathwayInitialized
		})).Return(&event.Event{EventType: event.TypePathwayInitialized}, nil).Once()
		f.sqlMock.ExpectCommit()
		f.events.On("Dispatch", ctx, mock.AnythingOfType("*event.Event")).Once()

		pathway, err := f.engine.InitializePathway(ctx, &model.CreatePathwayDTO{
			TemplateID: template.ID,
			PatientID:  patientID,
		})
		require.NoError(t, err)

		assert.Equal(t, model.PathwayStatusActive, pathway.Status)
		require.NotNil(t, pathway.CurrentStepID)
		assert.Equal(t, s1.ID, *pathway.CurrentStepID)
		require.NotNil(t, pathway.EstimatedEndDate)
		f.events.AssertExpectations(t)
		f.repo.AssertExpectations(t)
		assert.NoError(t, f.sqlMock.ExpectationsWereMet())
	})

	t.Run("Rejects Unpublished Template", func(t *testing.T) {
		f := newEngineFixture(t)
		template := publishedTemplate(makeStep(1, 0))
		template.Status = model.TemplateStatusDraft
		patientID := uuid.New()

		f.patients.On("PatientExists", ctx, patientID).Return(true, nil).Once()
		f.templates.On("GetTemplateWithSteps", ctx, template.ID).Return(template, nil).Once()

		_, err := f.engine.InitializePathway(ctx, &model.CreatePathwayDTO{
			TemplateID: template.ID,
			PatientID:  patientID,
		})
		assert.ErrorIs(t, err, ErrTemplateNotPublished)
	})

	t.Run("Rejects Template Without Steps", func(t *testing.T) {
		f := newEngineFixture(t)
		template := publishedTemplate()
		patientID := uuid.New()

		f.patients.On("PatientExists", ctx, patientID).Return(true, nil).Once()
		f.templates.On("GetTemplateWithSteps", ctx, template.ID).Return(template, nil).Once()

		_, err := f.engine.InitializePathway(ctx, &model.CreatePathwayDTO{
			TemplateID: template.ID,
			PatientID:  patientID,
		})
		assert.ErrorIs(t, err, ErrTemplateHasNoSteps)
	})

	t.Run("Rejects Unknown Patient", func(t *testing.T) {
		f := newEngineFixture(t)
		patientID := uuid.New()
		f.patients.On("PatientExists", ctx, patientID).Return(false, nil).Once()

		_, err := f.engine.InitializePathway(ctx, &model.CreatePathwayDTO{
			TemplateID: uuid.New(),
			PatientID:  patientID,
		})
		assert.ErrorIs(t, err, ErrPatientNotFound)
	})
}

func activePathway(template *model.PathwayTemplate, currentStepID uuid.UUID) *model.PatientPathway {
	return &model.PatientPathway{
		BaseModel:     model.BaseModel{ID: uuid.New()},
		PatientID:     uuid.New(),
		TemplateID:    template.ID,
		CurrentStepID: &currentStepID,
		Status:        model.PathwayStatusActive,
	}
}

func TestCompleteStep(t *testing.T) {
	ctx := context.Background()

	t.Run("Advances To Next Step In Order", func(t *testing.T) {
		f := newEngineFixture(t)
		s1 := makeStep(1, 0)
		s2 := makeStep(2, 0)
		template := publishedTemplate(s1, s2)
		pathway := activePathway(template, s1.ID)

		f.sqlMock.ExpectBegin()
		f.repo.On("GetPathwayForUpdateInTx", ctx, mock.Anything, pathway.ID).Return(pathway, nil).Once()
		f.templates.On("GetTemplateWithSteps", ctx, template.ID).Return(template, nil).Once()
		f.repo.On("CreateCompletedStepInTx", ctx, mock.Anything, mock.MatchedBy(func(cs *model.CompletedStep) bool {
			return cs.StepID == s1.ID && cs.PathwayID == pathway.ID
		})).Return(nil).Once()
		f.repo.On("AdvancePathwayInTx", ctx, mock.Anything, pathway, s1.ID).Return(nil).Once()
		f.events.On("PublishInTx", ctx, mock.Anything, mock.MatchedBy(func(evt *event.Event) bool {
			return evt.EventType == event.TypePathwayStepCompleted && evt.Data["nextStepId"] == s2.ID.String()
		})).Return(&event.Event{EventType: event.TypePathwayStepCompleted}, nil).Once()
		f.sqlMock.ExpectCommit()
		f.events.On("Dispatch", ctx, mock.AnythingOfType("*event.Event")).Once()

		result, err := f.engine.CompleteStep(ctx, pathway.ID, &model.CompleteStepDTO{StepID: s1.ID})
		require.NoError(t, err)

		assert.False(t, result.PathwayComplete)
		require.NotNil(t, result.NextStepID)
		assert.Equal(t, s2.ID, *result.NextStepID)
		assert.Equal(t, model.PathwayStatusActive, pathway.Status)
		f.repo.AssertExpectations(t)
		f.events.AssertExpectations(t)
	})

	t.Run("Completes Pathway On Last Step", func(t *testing.T) {
		f := newEngineFixture(t)
		s1 := makeStep(1, 0)
		s2 := makeStep(2, 0)
		template := publishedTemplate(s1, s2)
		pathway := activePathway(template, s2.ID)
		pathway.CompletedSteps = []model.CompletedStep{{PathwayID: pathway.ID, StepID: s1.ID}}

		f.sqlMock.ExpectBegin()
		f.repo.On("GetPathwayForUpdateInTx", ctx, mock.Anything, pathway.ID).Return(pathway, nil).Once()
		f.templates.On("GetTemplateWithSteps", ctx, template.ID).Return(template, nil).Once()
		f.repo.On("CreateCompletedStepInTx", ctx, mock.Anything, mock.Anything).Return(nil).Once()
		f.repo.On("AdvancePathwayInTx", ctx, mock.Anything, pathway, s2.ID).Return(nil).Once()
		f.events.On("PublishInTx", ctx, mock.Anything, mock.MatchedBy(func(evt *event.Event) bool {
			return evt.EventType == event.TypePathwayStepCompleted && evt.Data["nextStepId"] == nil
		})).Return(&event.Event{EventType: event.TypePathwayStepCompleted}, nil).Once()
		f.events.On("PublishInTx", ctx, mock.Anything, mock.MatchedBy(func(evt *event.Event) bool {
			return evt.EventType == event.TypePathwayCompleted
		})).Return(&event.Event{EventType: event.TypePathwayCompleted}, nil).Once()
		f.sqlMock.ExpectCommit()
		f.events.On("Dispatch", ctx, mock.AnythingOfType("*event.Event")).Twice()

		result, err := f.engine.CompleteStep(ctx, pathway.ID, &model.CompleteStepDTO{StepID: s2.ID})
		require.NoError(t, err)

		assert.True(t, result.PathwayComplete)
		assert.Nil(t, result.NextStepID)
		assert.Equal(t, model.PathwayStatusCompleted, pathway.Status)
		assert.NotNil(t, pathway.ActualEndDate)
		f.events.AssertExpectations(t)
	})

	t.Run("Rejects Step That Is Not Current", func(t *testing.T) {
		f := newEngineFixture(t)
		s1 := makeStep(1, 0)
		s2 := makeStep(2, 0)
		template := publishedTemplate(s1, s2)
		pathway := activePathway(template, s1.ID)

		f.sqlMock.ExpectBegin()
		f.repo.On("GetPathwayForUpdateInTx", ctx, mock.Anything, pathway.ID).Return(pathway, nil).Once()
		f.sqlMock.ExpectRollback()

		_, err := f.engine.CompleteStep(ctx, pathway.ID, &model.CompleteStepDTO{StepID: s2.ID})
		assert.ErrorIs(t, err, ErrStepMismatch)
	})

	t.Run("Rejects Inactive Pathway", func(t *testing.T) {
		f := newEngineFixture(t)
		s1 := makeStep(1, 0)
		template := publishedTemplate(s1)
		pathway := activePathway(template, s1.ID)
		pathway.Status = model.PathwayStatusCompleted

		f.sqlMock.ExpectBegin()
		f.repo.On("GetPathwayForUpdateInTx", ctx, mock.Anything, pathway.ID).Return(pathway, nil).Once()
		f.sqlMock.ExpectRollback()

		_, err := f.engine.CompleteStep(ctx, pathway.ID, &model.CompleteStepDTO{StepID: s1.ID})
		assert.ErrorIs(t, err, ErrPathwayNotActive)
	})

	t.Run("Follows True Branch Of Decision Point", func(t *testing.T) {
		f := newEngineFixture(t)
		s1 := makeStep(1, 0)
		s2 := makeStep(2, 0)
		s3 := makeStep(3, 0)
		s1.DecisionPoint = &model.DecisionPoint{
			StepID:              s1.ID,
			ConditionExpression: "true",
			TrueStepID:          &s3.ID,
			FalseStepID:         &s2.ID,
		}
		template := publishedTemplate(s1, s2, s3)
		pathway := activePathway(template, s1.ID)

		f.sqlMock.ExpectBegin()
		f.repo.On("GetPathwayForUpdateInTx", ctx, mock.Anything, pathway.ID).Return(pathway, nil).Once()
		f.templates.On("GetTemplateWithSteps", ctx, template.ID).Return(template, nil).Once()
		f.repo.On("CreateCompletedStepInTx", ctx, mock.Anything, mock.Anything).Return(nil).Once()
		f.repo.On("AdvancePathwayInTx", ctx, mock.Anything, pathway, s1.ID).Return(nil).Once()
		f.events.On("PublishInTx", ctx, mock.Anything, mock.Anything).Return(&event.Event{}, nil).Once()
		f.sqlMock.ExpectCommit()
		f.events.On("Dispatch", ctx, mock.Anything).Once()

		result, err := f.engine.CompleteStep(ctx, pathway.ID, &model.CompleteStepDTO{StepID: s1.ID})
		require.NoError(t, err)

		require.NotNil(t, result.NextStepID)
		assert.Equal(t, s3.ID, *result.NextStepID)
	})

	t.Run("Branch Target Nil Ends Pathway", func(t *testing.T) {
		f := newEngineFixture(t)
		s1 := makeStep(1, 0)
		s2 := makeStep(2, 0)
		s1.DecisionPoint = &model.DecisionPoint{
			StepID:              s1.ID,
			ConditionExpression: "false",
			TrueStepID:          &s2.ID,
		}
		template := publishedTemplate(s1, s2)
		pathway := activePathway(template, s1.ID)

		f.sqlMock.ExpectBegin()
		f.repo.On("GetPathwayForUpdateInTx", ctx, mock.Anything, pathway.ID).Return(pathway, nil).Once()
		f.templates.On("GetTemplateWithSteps", ctx, template.ID).Return(template, nil).Once()
		f.repo.On("CreateCompletedStepInTx", ctx, mock.Anything, mock.Anything).Return(nil).Once()
		f.repo.On("AdvancePathwayInTx", ctx, mock.Anything, pathway, s1.ID).Return(nil).Once()
		f.events.On("PublishInTx", ctx, mock.Anything, mock.Anything).Return(&event.Event{}, nil).Twice()
		f.sqlMock.ExpectCommit()
		f.events.On("Dispatch", ctx, mock.Anything).Twice()

		result, err := f.engine.CompleteStep(ctx, pathway.ID, &model.CompleteStepDTO{StepID: s1.ID})
		require.NoError(t, err)

		assert.True(t, result.PathwayComplete)
		assert.Nil(t, result.NextStepID)
	})

	t.Run("Surfaces Concurrent Modification", func(t *testing.T) {
		f := newEngineFixture(t)
		s1 := makeStep(1, 0)
		s2 := makeStep(2, 0)
		template := publishedTemplate(s1, s2)
		pathway := activePathway(template, s1.ID)

		f.sqlMock.ExpectBegin()
		f.repo.On("GetPathwayForUpdateInTx", ctx, mock.Anything, pathway.ID).Return(pathway, nil).Once()
		f.templates.On("GetTemplateWithSteps", ctx, template.ID).Return(template, nil).Once()
		f.repo.On("CreateCompletedStepInTx", ctx, mock.Anything, mock.Anything).Return(nil).Once()
		f.repo.On("AdvancePathwayInTx", ctx, mock.Anything, pathway, s1.ID).Return(ErrConcurrentModification).Once()
		f.sqlMock.ExpectRollback()

		_, err := f.engine.CompleteStep(ctx, pathway.ID, &model.CompleteStepDTO{StepID: s1.ID})
		assert.ErrorIs(t, err, ErrConcurrentModification)
		f.events.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
	})

	t.Run("Exactly One Of Two Racing Callers Wins", func(t *testing.T) {
		db, sqlMock := setupTestDB(t)
		s1 := makeStep(1, 0)
		s2 := makeStep(2, 0)
		template := publishedTemplate(s1, s2)

		currentStepID := s1.ID
		repo := &statefulPathwayRepo{pathway: model.PatientPathway{
			BaseModel:     model.BaseModel{ID: uuid.New()},
			PatientID:     uuid.New(),
			TemplateID:    template.ID,
			CurrentStepID: &currentStepID,
			Status:        model.PathwayStatusActive,
		}}

		templates := new(MockTemplateProvider)
		templates.On("GetTemplateWithSteps", ctx, template.ID).Return(template, nil)
		events := new(MockEventPublisher)
		events.On("PublishInTx", ctx, mock.Anything, mock.Anything).
			Return(&event.Event{EventType: event.TypePathwayStepCompleted}, nil)
		events.On("Dispatch", ctx, mock.Anything)

		engine := NewPathwayEngine(db, templates, nil, repo, events, NewExpressionEvaluator())

		// Callers serialize on the per-pathway lock; the first commits, the
		// second reloads state the winner already advanced.
		sqlMock.ExpectBegin()
		sqlMock.ExpectCommit()
		sqlMock.ExpectBegin()
		sqlMock.ExpectRollback()

		errs := make(chan error, 2)
		var wg sync.WaitGroup
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := engine.CompleteStep(ctx, repo.pathway.ID, &model.CompleteStepDTO{StepID: s1.ID})
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		var accepted, rejected int
		for err := range errs {
			if err == nil {
				accepted++
			} else {
				assert.ErrorIs(t, err, ErrStepMismatch)
				rejected++
			}
		}
		assert.Equal(t, 1, accepted)
		assert.Equal(t, 1, rejected)
		assert.Equal(t, s2.ID, *repo.pathway.CurrentStepID)
		events.AssertNumberOfCalls(t, "Dispatch", 1)
		assert.NoError(t, sqlMock.ExpectationsWereMet())
	})
}

func TestCancelPathway(t *testing.T) {
	ctx := context.Background()

	t.Run("Cancels Active Pathway", func(t *testing.T) {
		f := newEngineFixture(t)
		s1 := makeStep(1, 0)
		template := publishedTemplate(s1)
		pathway := activePathway(template, s1.ID)

		f.sqlMock.ExpectBegin()
		f.repo.On("GetPathwayForUpdateInTx", ctx, mock.Anything, pathway.ID).Return(pathway, nil).Once()
		f.repo.On("AdvancePathwayInTx", ctx, mock.Anything, pathway, s1.ID).Return(nil).Once()
		f.sqlMock.ExpectCommit()

		cancelled, err := f.engine.CancelPathway(ctx, pathway.ID)
		require.NoError(t, err)

		assert.Equal(t, model.PathwayStatusCancelled, cancelled.Status)
		assert.Nil(t, cancelled.CurrentStepID)
		assert.NotNil(t, cancelled.ActualEndDate)
	})

	t.Run("Rejects Inactive Pathway", func(t *testing.T) {
		f := newEngineFixture(t)
		s1 := makeStep(1, 0)
		template := publishedTemplate(s1)
		pathway := activePathway(template, s1.ID)
		pathway.Status = model.PathwayStatusCancelled

		f.sqlMock.ExpectBegin()
		f.repo.On("GetPathwayForUpdateInTx", ctx, mock.Anything, pathway.ID).Return(pathway, nil).Once()
		f.sqlMock.ExpectRollback()

		_, err := f.engine.CancelPathway(ctx, pathway.ID)
		assert.ErrorIs(t, err, ErrPathwayNotActive)
	})
}
