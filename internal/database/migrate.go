package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/OpenCarePath/carepath/internal/attachment"
	"github.com/OpenCarePath/carepath/internal/careteam"
	"github.com/OpenCarePath/carepath/internal/event"
	"github.com/OpenCarePath/carepath/internal/insight"
	"github.com/OpenCarePath/carepath/internal/integration"
	"github.com/OpenCarePath/carepath/internal/notification"
	"github.com/OpenCarePath/carepath/internal/pathway/model"
	"github.com/OpenCarePath/carepath/internal/patient"
	"github.com/OpenCarePath/carepath/internal/user"
)

// Migrate creates or updates the schema for every persisted model.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&user.User{},
		&patient.Patient{},
		&careteam.CareTeam{},
		&careteam.Member{},
		&model.PathwayTemplate{},
		&model.PathwayStep{},
		&model.DecisionPoint{},
		&model.StepDependency{},
		&model.PatientPathway{},
		&model.CompletedStep{},
		&model.StepAssignment{},
		&event.Event{},
		&notification.Notification{},
		&insight.AIInsight{},
		&integration.Endpoint{},
		&integration.Request{},
		&attachment.Attachment{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
