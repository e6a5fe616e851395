package v1

import (
	"net/http"

	"github.com/jgomezprojects/Finanzas/internal/httputil"
	"github.com/jgomezprojects/Finanzas/internal/models"
	"github.com/gin-gonic/gin"
)

// resetConfirmation is the value the confirm parameter must have to reset
// the whole instance.
const resetConfirmation = "yes-please-reset-everything"

func RegisterRootRoutes(r *gin.RouterGroup) {
	r.GET("", Get)
	r.DELETE("", Reset)
	r.OPTIONS("", Options)
}

type Response struct {
	Links Links `json:"links"` // Links for the v1 API
}

type Links struct {
	Envelopes     string `json:"envelopes" example:"https://example.com/api/v1/envelopes"`          // URL of Envelope collection endpoint
	Sources       string `json:"sources" example:"https://example.com/api/v1/sources"`              // URL of Source collection endpoint
	Movements     string `json:"movements" example:"https://example.com/api/v1/movements"`          // URL of Movement collection endpoint
	FixedExpenses string `json:"fixedExpenses" example:"https://example.com/api/v1/fixed-expenses"` // URL of fixed expense template collection endpoint
	Loans         string `json:"loans" example:"https://example.com/api/v1/loans"`                  // URL of Loan collection endpoint
	Stats         string `json:"stats" example:"https://example.com/api/v1/stats"`                  // URL of the statistics endpoint
	Export        string `json:"export" example:"https://example.com/api/v1/export"`                // URL of the export endpoint
	Import        string `json:"import" example:"https://example.com/api/v1/import"`                // URL of the import endpoint
}

// Get returns the link list for v1
func Get(c *gin.Context) {
	url := c.GetString(string(models.DBContextURL))

	c.JSON(http.StatusOK, Response{
		Links: Links{
			Envelopes:     url + "/v1/envelopes",
			Sources:       url + "/v1/sources",
			Movements:     url + "/v1/movements",
			FixedExpenses: url + "/v1/fixed-expenses",
			Loans:         url + "/v1/loans",
			Stats:         url + "/v1/stats",
			Export:        url + "/v1/export",
			Import:        url + "/v1/import",
		},
	})
}

// Reset zeroes all balances and totals and deletes loans and the movement
// history. Envelopes, sources and fixed expense templates survive, and a
// single RESET movement marks the cut in the log.
func Reset(c *gin.Context) {
	var params struct {
		Confirm string `form:"confirm"`
	}

	err := c.Bind(&params)
	if err != nil || params.Confirm != resetConfirmation {
		c.JSON(http.StatusBadRequest, httpError{
			Error: errResetConfirmation.Error(),
		})
		return
	}

	err = models.ResetAll(models.DB)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

// Options returns the allowed HTTP methods
func Options(c *gin.Context) {
	httputil.OptionsGetDelete(c)
}
