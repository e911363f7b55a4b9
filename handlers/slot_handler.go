package handlers

import (
	"net/http"

	"darshan-system/services"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type SlotHandler struct {
	slotService *services.SlotService
}

func NewSlotHandler(slotService *services.SlotService) *SlotHandler {
	return &SlotHandler{slotService: slotService}
}

// CreateOrUpdateSlot - Define or redefine a slot's capacity pools (admin only)
func (h *SlotHandler) CreateOrUpdateSlot(e *core.RequestEvent) error {
	var req services.CreateOrUpdateSlotInput
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	slot, err := h.slotService.CreateOrUpdateSlot(e.Request.Context(), req)
	if err != nil {
		return apiError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"message": "Slot saved",
		"slot":    slot,
	})
}

// ListSlots - List slots, optionally filtered by date and darshan type
func (h *SlotHandler) ListSlots(e *core.RequestEvent) error {
	date := e.Request.URL.Query().Get("date")
	darshanType := e.Request.URL.Query().Get("darshan_type")

	slots, err := h.slotService.ListSlots(e.Request.Context(), date, darshanType)
	if err != nil {
		return apiError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{"slots": slots})
}

// ListAvailableSlots - Active slots with remaining capacity for a date
func (h *SlotHandler) ListAvailableSlots(e *core.RequestEvent) error {
	date := e.Request.URL.Query().Get("date")
	if date == "" {
		return apis.NewBadRequestError("date is required", nil)
	}
	darshanType := e.Request.URL.Query().Get("darshan_type")

	slots, err := h.slotService.ListAvailableSlots(e.Request.Context(), date, darshanType)
	if err != nil {
		return apiError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{"slots": slots})
}

// CalendarSummary - Per-day capacity totals for availability calendars
func (h *SlotHandler) CalendarSummary(e *core.RequestEvent) error {
	darshanType := e.Request.URL.Query().Get("darshan_type")

	days, err := h.slotService.CalendarSummary(e.Request.Context(), darshanType)
	if err != nil {
		return apiError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{"days": days})
}
