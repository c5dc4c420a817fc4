package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"busbooking/internal/http/middleware"
	"busbooking/internal/services"

	"github.com/gin-gonic/gin"
)

// ListBookings returns booking history for the signed-in user or, for
// guests, the contact phone in ?phone=.
func (a *API) ListBookings(c *gin.Context) {
	list, err := a.Bookings.History(c.Request.Context(), middleware.UserID(c), c.Query("phone"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": list, "count": len(list)})
}

func (a *API) GetBooking(c *gin.Context) {
	b, err := a.Bookings.Detail(c.Request.Context(), c.Param("ref"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (a *API) BookingETicket(c *gin.Context) {
	a.sendPDF(c, services.DocsService.GenerateETicket)
}

func (a *API) BookingInvoice(c *gin.Context) {
	a.sendPDF(c, services.DocsService.GenerateInvoice)
}

func (a *API) sendPDF(c *gin.Context, render func(services.DocsService, context.Context, string) ([]byte, string, error)) {
	docs := a.Docs
	docs.RequestID = middleware.GetRequestID(c)
	pdf, filename, err := render(docs, c.Request.Context(), strings.TrimSpace(c.Param("ref")))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
