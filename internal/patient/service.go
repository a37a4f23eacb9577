package patient

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/OpenCarePath/carepath/utils"
)

// ErrPatientNotFound is returned when the referenced patient does not exist.
var ErrPatientNotFound = errors.New("patient not found")

// ErrDuplicateMedicalRecordNumber is returned when registering a patient with
// a medical record number already in use.
var ErrDuplicateMedicalRecordNumber = errors.New("medical record number already registered")

// Service provides patient registration and lookup.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CreatePatient registers a new patient. Medical record numbers are unique.
func (s *Service) CreatePatient(ctx context.Context, createReq *CreatePatientDTO) (*Patient, error) {
	if createReq == nil {
		return nil, fmt.Errorf("create request cannot be nil")
	}
	if createReq.FirstName == "" || createReq.LastName == "" {
		return nil, fmt.Errorf("patient name cannot be empty")
	}
	if createReq.MedicalRecordNumber == "" {
		return nil, fmt.Errorf("medical record number cannot be empty")
	}

	var existingCount int64
	if err := s.db.WithContext(ctx).Model(&Patient{}).
		Where("medical_record_number = ?", createReq.MedicalRecordNumber).
		Count(&existingCount).Error; err != nil {
		return nil, fmt.Errorf("failed to check medical record number: %w", err)
	}
	if existingCount > 0 {
		return nil, ErrDuplicateMedicalRecordNumber
	}

	patient := &Patient{
		FirstName:           createReq.FirstName,
		LastName:            createReq.LastName,
		DateOfBirth:         createReq.DateOfBirth,
		MedicalRecordNumber: createReq.MedicalRecordNumber,
		ContactPhone:        createReq.ContactPhone,
		ContactEmail:        createReq.ContactEmail,
	}
	if err := s.db.WithContext(ctx).Create(patient).Error; err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}
	return patient, nil
}

// GetPatientByID retrieves a patient.
func (s *Service) GetPatientByID(ctx context.Context, patientID uuid.UUID) (*Patient, error) {
	var patient Patient
	result := s.db.WithContext(ctx).First(&patient, "id = ?", patientID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("failed to retrieve patient %s: %w", patientID, result.Error)
	}
	return &patient, nil
}

// PatientExists reports whether a patient record exists. Used as the
// existence check when starting pathways.
func (s *Service) PatientExists(ctx context.Context, patientID uuid.UUID) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&Patient{}).
		Where("id = ?", patientID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check patient %s: %w", patientID, err)
	}
	return count > 0, nil
}

// ListPatients retrieves patients, optionally filtered by a name or medical
// record number search term.
func (s *Service) ListPatients(ctx context.Context, search string, offset, limit int) ([]Patient, error) {
	finalOffset, finalLimit := utils.GetPaginationParams(&offset, &limit)

	query := s.db.WithContext(ctx).Model(&Patient{})
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where(
			"first_name ILIKE ? OR last_name ILIKE ? OR medical_record_number ILIKE ?",
			pattern, pattern, pattern,
		)
	}

	var patients []Patient
	result := query.
		Order("last_name ASC, first_name ASC").
		Offset(finalOffset).
		Limit(finalLimit).
		Find(&patients)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to retrieve patients: %w", result.Error)
	}
	return patients, nil
}

// UpdatePatient updates a patient's demographic and contact details.
func (s *Service) UpdatePatient(ctx context.Context, patientID uuid.UUID, updateReq *UpdatePatientDTO) (*Patient, error) {
	if updateReq == nil {
		return nil, fmt.Errorf("update request cannot be nil")
	}

	patient, err := s.GetPatientByID(ctx, patientID)
	if err != nil {
		return nil, err
	}

	if updateReq.FirstName != nil {
		patient.FirstName = *updateReq.FirstName
	}
	if updateReq.LastName != nil {
		patient.LastName = *updateReq.LastName
	}
	if updateReq.DateOfBirth != nil {
		patient.DateOfBirth = updateReq.DateOfBirth
	}
	if updateReq.ContactPhone != nil {
		patient.ContactPhone = *updateReq.ContactPhone
	}
	if updateReq.ContactEmail != nil {
		patient.ContactEmail = *updateReq.ContactEmail
	}

	if err := s.db.WithContext(ctx).Save(patient).Error; err != nil {
		return nil, fmt.Errorf("failed to update patient %s: %w", patientID, err)
	}
	return patient, nil
}
