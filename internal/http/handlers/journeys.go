package handlers

import (
	"net/http"
	"strings"

	"busbooking/internal/utils"

	"github.com/gin-gonic/gin"
)

// SearchJourneys lists journeys by route and date.
func (a *API) SearchJourneys(c *gin.Context) {
	from := strings.TrimSpace(c.Query("from"))
	to := strings.TrimSpace(c.Query("to"))
	date := strings.TrimSpace(c.Query("date"))
	if date != "" {
		if _, err := utils.ParseDate(date, a.Location); err != nil {
			respondError(c, http.StatusBadRequest, "validation_error", "date must be YYYY-MM-DD", map[string]string{"date": "invalid date"})
			return
		}
	}

	list, err := a.Journeys.Search(c.Request.Context(), from, to, date)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"journeys": list, "count": len(list)})
}

// GetJourney returns a journey with its boarding and dropping points.
func (a *API) GetJourney(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	j, err := a.Journeys.GetByID(ctx, id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	points, err := a.Journeys.ListPoints(ctx, id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"journey": j, "points": points})
}
