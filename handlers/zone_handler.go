package handlers

import (
	"net/http"

	"darshan-system/models"
	"darshan-system/services"

	"github.com/pocketbase/pocketbase/core"
)

type ZoneHandler struct {
	zoneService *services.ZoneService
}

func NewZoneHandler(zoneService *services.ZoneService) *ZoneHandler {
	return &ZoneHandler{zoneService: zoneService}
}

// InitZones - Seed the default zone registry (admin only, idempotent)
func (h *ZoneHandler) InitZones(e *core.RequestEvent) error {
	created, zones, err := h.zoneService.InitZones(e.Request.Context(), models.DefaultZones)
	if err != nil {
		return apiError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"message": "Zones initialized",
		"created": created,
		"zones":   zones,
	})
}

// ListZones - All zones with live occupancy and density level
func (h *ZoneHandler) ListZones(e *core.RequestEvent) error {
	snapshots, err := h.zoneService.Snapshots(e.Request.Context())
	if err != nil {
		return apiError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{"zones": snapshots})
}
