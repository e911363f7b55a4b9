package handlers

import (
	"net/http"

	"darshan-system/services"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type TicketHandler struct {
	bookingService *services.BookingService
}

func NewTicketHandler(bookingService *services.BookingService) *TicketHandler {
	return &TicketHandler{bookingService: bookingService}
}

// BookTicket - Reserve slot capacity and issue a ticket
func (h *TicketHandler) BookTicket(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var req services.ReserveInput
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	req.UserID = e.Auth.Id
	req.UserContact = e.Auth.Email()

	ticket, err := h.bookingService.Reserve(e.Request.Context(), req)
	if err != nil {
		return apiError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"message": "Ticket booked",
		"ticket":  ticket,
	})
}

// MyTickets - List the caller's tickets, newest first
func (h *TicketHandler) MyTickets(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	tickets, err := h.bookingService.TicketsForUser(e.Request.Context(), e.Auth.Id)
	if err != nil {
		return apiError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{"tickets": tickets})
}

// GetTicket - Fetch one of the caller's tickets by code
func (h *TicketHandler) GetTicket(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	code := e.Request.PathValue("code")
	ticket, err := h.bookingService.TicketByCode(e.Request.Context(), e.Auth.Id, code)
	if err != nil {
		return apiError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{"ticket": ticket})
}

// CancelTicket - Cancel a booked ticket and return its capacity
func (h *TicketHandler) CancelTicket(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	code := e.Request.PathValue("code")
	ticket, err := h.bookingService.Cancel(e.Request.Context(), e.Auth.Id, code)
	if err != nil {
		return apiError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"message": "Ticket cancelled",
		"ticket":  ticket,
	})
}
