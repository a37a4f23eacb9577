package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/OpenCarePath/carepath/internal/event"
	"github.com/OpenCarePath/carepath/utils"
)

// ErrNotificationNotFound is returned when the referenced notification does
// not exist.
var ErrNotificationNotFound = errors.New("notification not found")

// Service creates and delivers in-app notifications. It reacts to pathway
// events through the event bus; a failing or slow handler never affects the
// transition that emitted the event.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// RegisterEventHandlers subscribes the notification handlers to the bus.
func (s *Service) RegisterEventHandlers(bus *event.Bus) {
	bus.Subscribe(event.TypePathwayInitialized, s.handlePathwayInitialized)
	bus.Subscribe(event.TypeStepAssigned, s.handleStepAssigned)
	bus.Subscribe(event.TypePathwayCompleted, s.handlePathwayCompleted)
}

func (s *Service) handleStepAssigned(ctx context.Context, evt *event.Event) error {
	assignedTo, ok := evt.Data["assignedToId"].(string)
	if !ok {
		return fmt.Errorf("step assigned event %s has no assignee", evt.ID)
	}
	userID, err := uuid.Parse(assignedTo)
	if err != nil {
		return fmt.Errorf("invalid assignee ID in event %s: %w", evt.ID, err)
	}

	var relatedPathwayID *uuid.UUID
	if raw, ok := evt.Data["pathwayId"].(string); ok {
		if pathwayID, err := uuid.Parse(raw); err == nil {
			relatedPathwayID = &pathwayID
		}
	}

	notification := &Notification{
		UserID:           userID,
		Type:             TypeStepAssigned,
		Title:            "You have been assigned a pathway step",
		Message:          "A care pathway step has been assigned to you.",
		RelatedPathwayID: relatedPathwayID,
	}
	if err := s.db.WithContext(ctx).Create(notification).Error; err != nil {
		return fmt.Errorf("failed to create assignment notification: %w", err)
	}
	return nil
}

func (s *Service) handlePathwayInitialized(ctx context.Context, evt *event.Event) error {
	return s.notifyPathwayCreator(ctx, evt, TypePathwayStarted,
		"Care pathway started",
		"A care pathway you started is now active at its first step.")
}

func (s *Service) handlePathwayCompleted(ctx context.Context, evt *event.Event) error {
	return s.notifyPathwayCreator(ctx, evt, TypePathwayCompleted,
		"Care pathway completed",
		"A care pathway you started has completed all of its steps.")
}

// notifyPathwayCreator notifies the clinician who started the pathway. The
// creator is looked up from the pathway record since events carry only
// pathway and patient identity.
func (s *Service) notifyPathwayCreator(ctx context.Context, evt *event.Event, notifType Type, title, message string) error {
	raw, ok := evt.Data["pathwayId"].(string)
	if !ok {
		return fmt.Errorf("event %s has no pathway ID", evt.ID)
	}
	pathwayID, err := uuid.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid pathway ID in event %s: %w", evt.ID, err)
	}

	row := struct {
		CreatedByID *uuid.UUID
	}{}
	if err := s.db.WithContext(ctx).
		Table("patient_pathways").
		Select("created_by_id").
		Where("id = ?", pathwayID).
		Scan(&row).Error; err != nil {
		return fmt.Errorf("failed to look up pathway %s creator: %w", pathwayID, err)
	}
	if row.CreatedByID == nil {
		// Nobody to notify.
		return nil
	}

	notification := &Notification{
		UserID:           *row.CreatedByID,
		Type:             notifType,
		Title:            title,
		Message:          message,
		RelatedPathwayID: &pathwayID,
	}
	if err := s.db.WithContext(ctx).Create(notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// ListForUser retrieves a user's notifications, newest first.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, offset, limit int) ([]Notification, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user ID cannot be nil")
	}
	finalOffset, finalLimit := utils.GetPaginationParams(&offset, &limit)

	query := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("read = ?", false)
	}

	var notifications []Notification
	result := query.
		Order("created_at DESC").
		Offset(finalOffset).
		Limit(finalLimit).
		Find(&notifications)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to retrieve notifications for user %s: %w", userID, result.Error)
	}
	return notifications, nil
}

// UnreadCount returns the number of unread notifications for a user.
func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, fmt.Errorf("user ID cannot be nil")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count unread notifications for user %s: %w", userID, err)
	}
	return count, nil
}

// MarkAsRead marks a notification as read.
func (s *Service) MarkAsRead(ctx context.Context, notificationID uuid.UUID) error {
	now := time.Now().UTC()
	result := s.db.WithContext(ctx).Model(&Notification{}).
		Where("id = ?", notificationID).
		Updates(map[string]any{"read": true, "read_at": &now})
	if result.Error != nil {
		return fmt.Errorf("failed to mark notification %s as read: %w", notificationID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}
