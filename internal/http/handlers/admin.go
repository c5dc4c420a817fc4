package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"busbooking/internal/domain"
	"busbooking/internal/http/middleware"
	"busbooking/internal/seatmap"
	"busbooking/internal/utils"

	"github.com/gin-gonic/gin"
)

// PushSeats stores a new layout for a bus and pushes it to live sessions.
// Sessions are updated even when storage is not configured.
func (a *API) PushSeats(c *gin.Context) {
	busID := strings.TrimSpace(c.Param("busId"))
	if busID == "" {
		RespondDomainError(c, domain.ValidationError{Field: "bus_id", Msg: "bus id is required"})
		return
	}
	var p seatmap.Payload
	if !BindJSONOrError(c, &p) {
		return
	}
	if p.Empty() {
		RespondDomainError(c, domain.ValidationError{Field: "seats", Msg: "layout is empty"})
		return
	}

	ctx := c.Request.Context()
	saved := 0
	if a.Layouts != nil {
		n, err := a.Layouts.SaveLayout(ctx, busID, &p)
		if err != nil {
			RespondDomainError(c, err)
			return
		}
		saved = n
		if a.OnLayoutSaved != nil {
			a.OnLayoutSaved(ctx, busID)
		}
	}
	pushed := a.Sessions.Push(busID, &p)

	utils.LogEvent(middleware.GetRequestID(c), "admin", "push_seats", fmt.Sprintf("bus=%s saved=%d sessions=%d", busID, saved, pushed))
	c.JSON(http.StatusOK, gin.H{"bus_id": busID, "saved_cells": saved, "sessions_updated": pushed})
}
