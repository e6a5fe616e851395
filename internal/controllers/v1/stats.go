package v1

import (
	"net/http"

	"github.com/jgomezprojects/Finanzas/internal/httputil"
	"github.com/jgomezprojects/Finanzas/internal/models"
	"github.com/gin-gonic/gin"
)

// windowResetConfirmation is the value the confirm parameter must have to
// reset a statistics window.
const windowResetConfirmation = "yes-please-reset-this-window"

// RegisterStatsRoutes registers the routes for statistics with
// the RouterGroup that is passed.
func RegisterStatsRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", OptionsStats)
	r.GET("", GetStats)
	r.DELETE("", ResetStatsWindow)
}

func OptionsStats(c *gin.Context) {
	httputil.OptionsGetDelete(c)
}

// GetStats returns per envelope income and expense totals over a window.
//
// Transfers, RESET markers and loan movements are left out. General income
// is attributed with the current percentages, so results for past windows
// shift when percentages are edited later.
func GetStats(c *gin.Context) {
	var query StatsQuery
	err := c.ShouldBind(&query)
	if err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, StatsResponse{
			Error: &s,
		})
		return
	}

	if query.Window == "" {
		s := errWindowNotSetInQuery.Error()
		c.JSON(http.StatusBadRequest, StatsResponse{
			Error: &s,
		})
		return
	}

	stats, err := models.Statistics(models.DB, query.Window)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), StatsResponse{
			Error: &s,
		})
		return
	}

	c.JSON(http.StatusOK, StatsResponse{Data: stats})
}

// ResetStatsWindow reverses and deletes every eligible movement in the
// window. Movements whose referenced resources vanished are skipped and
// reported, balances are clamped to zero afterwards.
func ResetStatsWindow(c *gin.Context) {
	var params struct {
		StatsQuery
		Confirm string `form:"confirm"`
	}

	err := c.ShouldBind(&params)
	if err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, StatsResetResponse{
			Error: &s,
		})
		return
	}

	if params.Confirm != windowResetConfirmation {
		s := errWindowResetConfirmation.Error()
		c.JSON(http.StatusBadRequest, StatsResetResponse{
			Error: &s,
		})
		return
	}

	if params.Window == "" {
		s := errWindowNotSetInQuery.Error()
		c.JSON(http.StatusBadRequest, StatsResetResponse{
			Error: &s,
		})
		return
	}

	result, err := models.ResetWindow(models.DB, params.Window)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), StatsResetResponse{
			Error: &s,
		})
		return
	}

	c.JSON(http.StatusOK, StatsResetResponse{Data: &result})
}
