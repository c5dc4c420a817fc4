package handlers

import (
	"fmt"
	"net/http"

	"busbooking/internal/domain"
	"busbooking/internal/http/middleware"
	"busbooking/internal/selection"
	"busbooking/internal/session"
	"busbooking/internal/utils"
	"busbooking/internal/wizard"

	"github.com/gin-gonic/gin"
)

type createSessionRequest struct {
	JourneyID int64 `json:"journey_id"`
}

type seatRequest struct {
	SeatID string `json:"seat_id"`
}

type autoRefreshRequest struct {
	Enabled *bool `json:"enabled"`
}

type pointsRequest struct {
	BoardingPointID int64 `json:"boarding_point_id"`
	DroppingPointID int64 `json:"dropping_point_id"`
}

// session resolves :id or writes the error response.
func (a *API) session(c *gin.Context) (*session.Session, bool) {
	s, err := a.Sessions.Get(c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return nil, false
	}
	return s, true
}

func (a *API) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	s, err := a.Sessions.Create(c.Request.Context(), req.JourneyID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, s.Snapshot())
}

func (a *API) GetSession(c *gin.Context) {
	s, ok := a.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.Snapshot())
}

func (a *API) CloseSession(c *gin.Context) {
	if err := a.Sessions.Close(c.Param("id")); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ToggleSeat selects a free seat or deselects an already selected one.
func (a *API) ToggleSeat(c *gin.Context) {
	s, ok := a.session(c)
	if !ok {
		return
	}
	var req seatRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	id, err := selection.ParseSeatID(req.SeatID)
	if err != nil {
		RespondDomainError(c, domain.ValidationError{Field: "seat_id", Msg: err.Error()})
		return
	}
	added, err := s.Select(id)
	if err != nil {
		utils.LogEvent(middleware.GetRequestID(c), "session", "select_rejected", fmt.Sprintf("session=%s seat=%s err=%v", s.ID, id, err))
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"added": added, "session": s.Snapshot()})
}

func (a *API) DeselectSeat(c *gin.Context) {
	s, ok := a.session(c)
	if !ok {
		return
	}
	id, err := selection.ParseSeatID(c.Param("seatId"))
	if err != nil {
		RespondDomainError(c, domain.ValidationError{Field: "seat_id", Msg: err.Error()})
		return
	}
	if !s.Deselect(id) {
		RespondDomainError(c, domain.NotFoundError{Resource: "selected seat"})
		return
	}
	c.JSON(http.StatusOK, s.Snapshot())
}

// SetAutoRefresh pauses or resumes the session refresh loop.
func (a *API) SetAutoRefresh(c *gin.Context) {
	s, ok := a.session(c)
	if !ok {
		return
	}
	var req autoRefreshRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if req.Enabled == nil {
		RespondDomainError(c, domain.ValidationError{Field: "enabled", Msg: "enabled is required"})
		return
	}
	s.SetAutoRefresh(*req.Enabled)
	c.JSON(http.StatusOK, s.Snapshot())
}

func (a *API) NextStep(c *gin.Context) {
	s, ok := a.session(c)
	if !ok {
		return
	}
	if _, err := s.Next(); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.Snapshot())
}

// GoToStep jumps to a step tab; only unlocked steps are reachable.
func (a *API) GoToStep(c *gin.Context) {
	s, ok := a.session(c)
	if !ok {
		return
	}
	step, err := wizard.ParseStep(c.Param("step"))
	if err != nil {
		RespondDomainError(c, domain.ValidationError{Field: "step", Msg: err.Error()})
		return
	}
	if err := s.GoTo(step); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.Snapshot())
}

func (a *API) SetPoints(c *gin.Context) {
	s, ok := a.session(c)
	if !ok {
		return
	}
	var req pointsRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if req.BoardingPointID == 0 && req.DroppingPointID == 0 {
		RespondDomainError(c, domain.ValidationError{Field: "points", Msg: "choose a boarding or dropping point"})
		return
	}
	if err := s.SetPoints(req.BoardingPointID, req.DroppingPointID); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.Snapshot())
}

// CheckoutSession validates the passenger form, stores a pending booking and hands
// off to the payment gateway. The session ends on success.
func (a *API) CheckoutSession(c *gin.Context) {
	s, ok := a.session(c)
	if !ok {
		return
	}
	var in wizard.CheckoutInput
	if !BindJSONOrError(c, &in) {
		return
	}
	payload, err := s.Checkout(in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	payload.UserID = middleware.UserID(c)

	svc := a.Checkout
	svc.RequestID = middleware.GetRequestID(c)
	handoff, err := svc.Handoff(c.Request.Context(), payload)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	_ = a.Sessions.Close(s.ID)
	c.JSON(http.StatusCreated, handoff)
}
