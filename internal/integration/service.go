package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/OpenCarePath/carepath/internal/config"
	"github.com/OpenCarePath/carepath/internal/event"
	"github.com/OpenCarePath/carepath/utils"
)

var (
	ErrEndpointNotFound = errors.New("integration endpoint not found")
	ErrInvalidEndpoint  = errors.New("invalid integration endpoint")
)

// dispatchedEventTypes are the event types endpoints may subscribe to.
var dispatchedEventTypes = []string{
	event.TypePathwayInitialized,
	event.TypePathwayStepCompleted,
	event.TypePathwayCompleted,
	event.TypeStepAssigned,
}

// Service forwards dispatched events to configured external endpoints and
// records every delivery attempt. A slow or failing endpoint affects only its
// own delivery record.
type Service struct {
	db     *gorm.DB
	client *http.Client
}

func NewService(db *gorm.DB, cfg config.IntegrationConfig) *Service {
	timeout := time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Service{
		db:     db,
		client: &http.Client{Timeout: timeout},
	}
}

// RegisterEventHandlers subscribes the dispatcher to every forwardable event
// type.
func (s *Service) RegisterEventHandlers(bus *event.Bus) {
	for _, eventType := range dispatchedEventTypes {
		bus.Subscribe(eventType, s.handleEvent)
	}
}

func (s *Service) handleEvent(ctx context.Context, evt *event.Event) error {
	var endpoints []Endpoint
	if err := s.db.WithContext(ctx).
		Where("event_type = ? AND enabled = ?", evt.EventType, true).
		Find(&endpoints).Error; err != nil {
		return fmt.Errorf("failed to load endpoints for %s: %w", evt.EventType, err)
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to encode event %s: %w", evt.ID, err)
	}

	for _, endpoint := range endpoints {
		s.deliver(ctx, &endpoint, evt, payload)
	}
	return nil
}

func (s *Service) deliver(ctx context.Context, endpoint *Endpoint, evt *event.Event, payload []byte) {
	record := &Request{
		EndpointID: endpoint.ID,
		EventID:    evt.ID,
		EventType:  evt.EventType,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.URL, bytes.NewReader(payload))
	if err != nil {
		record.Status = RequestStatusFailed
		record.Error = err.Error()
	} else {
		req.Header.Set("Content-Type", "application/json")
		resp, err := s.client.Do(req)
		switch {
		case err != nil:
			record.Status = RequestStatusFailed
			record.Error = err.Error()
		default:
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			record.ResponseCode = resp.StatusCode
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				record.Status = RequestStatusDelivered
			} else {
				record.Status = RequestStatusFailed
				record.Error = fmt.Sprintf("endpoint returned status %d", resp.StatusCode)
			}
		}
	}

	if record.Status == RequestStatusFailed {
		slog.Warn("integration delivery failed",
			"endpoint", endpoint.Name,
			"eventType", evt.EventType,
			"error", record.Error)
	}

	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		slog.Error("failed to record integration request",
			"endpoint", endpoint.Name,
			"error", err)
	}
}

// CreateEndpoint registers an external endpoint for an event type.
func (s *Service) CreateEndpoint(ctx context.Context, dto *CreateEndpointDTO) (*Endpoint, error) {
	if dto == nil {
		return nil, fmt.Errorf("create endpoint DTO cannot be nil")
	}
	if dto.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidEndpoint)
	}
	if err := validateEndpointURL(dto.URL); err != nil {
		return nil, err
	}
	if !validEventType(dto.EventType) {
		return nil, fmt.Errorf("%w: unknown event type %q", ErrInvalidEndpoint, dto.EventType)
	}

	endpoint := &Endpoint{
		Name:      dto.Name,
		URL:       dto.URL,
		EventType: dto.EventType,
		Enabled:   true,
	}
	if dto.Enabled != nil {
		endpoint.Enabled = *dto.Enabled
	}
	if err := s.db.WithContext(ctx).Create(endpoint).Error; err != nil {
		return nil, fmt.Errorf("failed to create endpoint: %w", err)
	}
	return endpoint, nil
}

// GetEndpointByID retrieves a single endpoint.
func (s *Service) GetEndpointByID(ctx context.Context, endpointID uuid.UUID) (*Endpoint, error) {
	var endpoint Endpoint
	if err := s.db.WithContext(ctx).First(&endpoint, "id = ?", endpointID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEndpointNotFound
		}
		return nil, fmt.Errorf("failed to get endpoint %s: %w", endpointID, err)
	}
	return &endpoint, nil
}

// ListEndpoints returns all configured endpoints.
func (s *Service) ListEndpoints(ctx context.Context) ([]Endpoint, error) {
	var endpoints []Endpoint
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&endpoints).Error; err != nil {
		return nil, fmt.Errorf("failed to list endpoints: %w", err)
	}
	return endpoints, nil
}

// UpdateEndpoint applies a partial update to an endpoint.
func (s *Service) UpdateEndpoint(ctx context.Context, endpointID uuid.UUID, dto *UpdateEndpointDTO) (*Endpoint, error) {
	if dto == nil {
		return nil, fmt.Errorf("update endpoint DTO cannot be nil")
	}

	endpoint, err := s.GetEndpointByID(ctx, endpointID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if dto.Name != nil {
		if *dto.Name == "" {
			return nil, fmt.Errorf("%w: name is required", ErrInvalidEndpoint)
		}
		updates["name"] = *dto.Name
	}
	if dto.URL != nil {
		if err := validateEndpointURL(*dto.URL); err != nil {
			return nil, err
		}
		updates["url"] = *dto.URL
	}
	if dto.Enabled != nil {
		updates["enabled"] = *dto.Enabled
	}
	if len(updates) == 0 {
		return endpoint, nil
	}

	if err := s.db.WithContext(ctx).Model(endpoint).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update endpoint %s: %w", endpointID, err)
	}
	return endpoint, nil
}

// DeleteEndpoint removes an endpoint. Past delivery records are kept.
func (s *Service) DeleteEndpoint(ctx context.Context, endpointID uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&Endpoint{}, "id = ?", endpointID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete endpoint %s: %w", endpointID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrEndpointNotFound
	}
	return nil
}

// ListRequests returns an endpoint's delivery records, newest first.
func (s *Service) ListRequests(ctx context.Context, endpointID uuid.UUID, offset, limit int) ([]Request, error) {
	offset, limit = utils.GetPaginationParams(&offset, &limit)

	var requests []Request
	if err := s.db.WithContext(ctx).
		Where("endpoint_id = ?", endpointID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("failed to list requests for endpoint %s: %w", endpointID, err)
	}
	return requests, nil
}

func validateEndpointURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%w: URL must use http or https", ErrInvalidEndpoint)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%w: URL must have a host", ErrInvalidEndpoint)
	}
	return nil
}

func validEventType(eventType string) bool {
	for _, known := range dispatchedEventTypes {
		if known == eventType {
			return true
		}
	}
	return false
}
