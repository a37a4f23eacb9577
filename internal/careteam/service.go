package careteam

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrCareTeamNotFound is returned when the referenced care team does not exist.
var ErrCareTeamNotFound = errors.New("care team not found")

// ErrMemberExists is returned when the user is already on the team.
var ErrMemberExists = errors.New("user is already a member of the care team")

// ErrMemberNotFound is returned when the referenced membership does not exist.
var ErrMemberNotFound = errors.New("care team member not found")

// ErrPrimaryMemberExists is returned when adding a second primary member.
var ErrPrimaryMemberExists = errors.New("care team already has a primary member")

// Service manages care teams and their membership.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CreateCareTeam forms a new care team for a patient.
func (s *Service) CreateCareTeam(ctx context.Context, createReq *CreateCareTeamDTO) (*CareTeam, error) {
	if createReq == nil {
		return nil, fmt.Errorf("create request cannot be nil")
	}
	if createReq.PatientID == uuid.Nil {
		return nil, fmt.Errorf("patient ID cannot be nil")
	}
	if createReq.Name == "" {
		return nil, fmt.Errorf("care team name cannot be empty")
	}

	team := &CareTeam{
		PatientID: createReq.PatientID,
		Name:      createReq.Name,
	}
	if err := s.db.WithContext(ctx).Create(team).Error; err != nil {
		return nil, fmt.Errorf("failed to create care team: %w", err)
	}
	return team, nil
}

// GetCareTeamByID retrieves a care team with its members.
func (s *Service) GetCareTeamByID(ctx context.Context, teamID uuid.UUID) (*CareTeam, error) {
	var team CareTeam
	result := s.db.WithContext(ctx).
		Preload("Members").
		First(&team, "id = ?", teamID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrCareTeamNotFound
		}
		return nil, fmt.Errorf("failed to retrieve care team %s: %w", teamID, result.Error)
	}
	return &team, nil
}

// GetCareTeamsForPatient retrieves all care teams assigned to a patient.
func (s *Service) GetCareTeamsForPatient(ctx context.Context, patientID uuid.UUID) ([]CareTeam, error) {
	if patientID == uuid.Nil {
		return nil, fmt.Errorf("patient ID cannot be nil")
	}

	var teams []CareTeam
	result := s.db.WithContext(ctx).
		Preload("Members").
		Where("patient_id = ?", patientID).
		Order("created_at ASC").
		Find(&teams)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to retrieve care teams for patient %s: %w", patientID, result.Error)
	}
	return teams, nil
}

// AddMember adds a clinician to a care team. A user appears at most once per
// team.
func (s *Service) AddMember(ctx context.Context, teamID uuid.UUID, addReq *AddMemberDTO) (*Member, error) {
	if addReq == nil {
		return nil, fmt.Errorf("add request cannot be nil")
	}
	if addReq.UserID == uuid.Nil {
		return nil, fmt.Errorf("user ID cannot be nil")
	}

	var member *Member
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var team CareTeam
		if err := tx.First(&team, "id = ?", teamID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCareTeamNotFound
			}
			return fmt.Errorf("failed to retrieve care team %s: %w", teamID, err)
		}

		var existingCount int64
		if err := tx.Model(&Member{}).
			Where("care_team_id = ? AND user_id = ?", teamID, addReq.UserID).
			Count(&existingCount).Error; err != nil {
			return fmt.Errorf("failed to check care team membership: %w", err)
		}
		if existingCount > 0 {
			return ErrMemberExists
		}

		// At most one primary member per team.
		if addReq.IsPrimary {
			var primaryCount int64
			if err := tx.Model(&Member{}).
				Where("care_team_id = ? AND is_primary = ?", teamID, true).
				Count(&primaryCount).Error; err != nil {
				return fmt.Errorf("failed to check for primary member: %w", err)
			}
			if primaryCount > 0 {
				return ErrPrimaryMemberExists
			}
		}

		member = &Member{
			CareTeamID: teamID,
			UserID:     addReq.UserID,
			RoleInTeam: addReq.RoleInTeam,
			IsPrimary:  addReq.IsPrimary,
		}
		if err := tx.Create(member).Error; err != nil {
			return fmt.Errorf("failed to add care team member: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

// RemoveMember removes a clinician from a care team.
func (s *Service) RemoveMember(ctx context.Context, teamID, userID uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("care_team_id = ? AND user_id = ?", teamID, userID).
		Delete(&Member{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove care team member: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrMemberNotFound
	}
	return nil
}
