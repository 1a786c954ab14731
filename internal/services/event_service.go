package services

import (
	"encoding/json"

	"gorm.io/gorm"

	apperrors "verdant/internal/errors"
	"verdant/internal/logger"
	"verdant/internal/models"
	"verdant/internal/pagination"
)

// eventService records the externally observable event feed.
type eventService struct {
	db *gorm.DB
}

// NewEventService creates a new EventServicer.
func NewEventService(db *gorm.DB) EventServicer {
	return &eventService{db: db}
}

// Record appends an event. Errors are logged but never propagate: the
// feed is for off-chain observers and must not disrupt settlement.
func (s *eventService) Record(eventType string, payload map[string]interface{}) {
	var payloadJSON string
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			logger.Get().Errorw("failed to marshal event payload", "error", err, "type", eventType)
			payloadJSON = "{}"
		} else {
			payloadJSON = string(data)
		}
	}

	event := &models.Event{
		Type:    eventType,
		Payload: payloadJSON,
	}

	if err := s.db.Create(event).Error; err != nil {
		logger.Get().Errorw("failed to record event",
			"error", err,
			"type", eventType,
		)
	}
}

// List returns a page of events, optionally filtered by type, newest first.
func (s *eventService) List(page pagination.PageRequest, eventType string) (*pagination.PageResponse[models.Event], error) {
	page.Defaults()

	base := s.db.Model(&models.Event{})
	if eventType != "" {
		base = base.Where("type = ?", eventType)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var events []models.Event
	if err := base.Scopes(pagination.Paginate(page)).
		Order("id DESC").
		Find(&events).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(events, page.Page, page.PageSize, totalItems)
	return &result, nil
}
