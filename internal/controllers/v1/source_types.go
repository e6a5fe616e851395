package v1

import (
	"fmt"

	"github.com/jgomezprojects/Finanzas/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type SourceLinks struct {
	Self      string `json:"self" example:"https://example.com/api/v1/sources/Cash"`           // The source itself
	Movements string `json:"movements" example:"https://example.com/api/v1/movements?source=Cash"` // Movements for this source
}

// Source is the API representation of a money source. Sources are a fixed
// set configured at setup time, so there is no Editable struct for them.
type Source struct {
	models.DefaultModel
	Name    string          `json:"name" example:"Cash"`         // Name of the source
	Balance decimal.Decimal `json:"balance" example:"2735.17"`   // Money currently held in the source
	Links   SourceLinks     `json:"links"`
}

func newSource(c *gin.Context, model models.Source) Source {
	url := c.GetString(string(models.DBContextURL))

	return Source{
		DefaultModel: model.DefaultModel,
		Name:         model.Name,
		Balance:      model.Balance,
		Links: SourceLinks{
			Self:      fmt.Sprintf("%s/v1/sources/%s", url, model.Name),
			Movements: fmt.Sprintf("%s/v1/movements?source=%s", url, model.Name),
		},
	}
}

type SourceListResponse struct {
	Data  []Source `json:"data"`                                                // List of Sources
	Error *string  `json:"error" example:"there is no source matching your query"` // The error, if any occurred
}

type SourceResponse struct {
	Data  *Source `json:"data"`                                                // Data for the Source
	Error *string `json:"error" example:"there is no source matching your query"` // The error, if any occurred
}
