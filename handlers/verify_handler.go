package handlers

import (
	"net/http"

	"darshan-system/services"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type VerifyHandler struct {
	scanService *services.ScanService
}

func NewVerifyHandler(scanService *services.ScanService) *VerifyHandler {
	return &VerifyHandler{scanService: scanService}
}

// Scan - Apply one entry or exit scan to a ticket
func (h *VerifyHandler) Scan(e *core.RequestEvent) error {
	var req services.ScanInput
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	result, err := h.scanService.ProcessScan(e.Request.Context(), req)
	if err != nil {
		return apiError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"message": "Scan recorded",
		"ticket":  result.Ticket,
		"zone":    result.Zone,
		"log":     result.Log,
	})
}

// Logs - Audit trail of scans for one ticket, newest first
func (h *VerifyHandler) Logs(e *core.RequestEvent) error {
	code := e.Request.URL.Query().Get("ticket")
	if code == "" {
		return apis.NewBadRequestError("ticket is required", nil)
	}

	logs, err := h.scanService.LogsForTicket(e.Request.Context(), code)
	if err != nil {
		return apiError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{"logs": logs})
}
