package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "verdant/internal/errors"
	"verdant/internal/pagination"
	"verdant/internal/services"
)

// EventHandler exposes the append-only event feed.
type EventHandler struct {
	eventService services.EventServicer
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(eventService services.EventServicer) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// GetEvents handles listing events, newest first.
// @Summary     List events
// @Description Get a paginated list of ledger events, optionally filtered by type
// @Tags        events
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       type      query string false "Filter by event type"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Event] "Paginated events"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /events [get]
func (h *EventHandler) GetEvents(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.eventService.List(page, c.Query("type"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
