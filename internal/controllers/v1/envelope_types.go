package v1

import (
	"fmt"

	"github.com/jgomezprojects/Finanzas/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// EnvelopeEditable represents all user configurable parameters
type EnvelopeEditable struct {
	Name       string          `json:"name" example:"Groceries" default:""`       // Name of the envelope
	Percentage decimal.Decimal `json:"percentage" example:"30" default:"0"`       // Share of general deposits this envelope receives
}

func (editable EnvelopeEditable) model() models.Envelope {
	return models.Envelope{
		Name:       editable.Name,
		Percentage: editable.Percentage,
	}
}

type EnvelopeLinks struct {
	Self      string `json:"self" example:"https://example.com/api/v1/envelopes/3b1ea324-d438-4419-882a-2fc91d71772f"`                    // The envelope itself
	Movements string `json:"movements" example:"https://example.com/api/v1/movements?envelope=3b1ea324-d438-4419-882a-2fc91d71772f"` // Movements for this envelope
}

type Envelope struct {
	models.DefaultModel
	EnvelopeEditable
	Balance decimal.Decimal `json:"balance" example:"180.40"` // Money currently assigned to the envelope
	Links   EnvelopeLinks   `json:"links"`
}

func newEnvelope(c *gin.Context, model models.Envelope) Envelope {
	url := c.GetString(string(models.DBContextURL))

	return Envelope{
		DefaultModel: model.DefaultModel,
		EnvelopeEditable: EnvelopeEditable{
			Name:       model.Name,
			Percentage: model.Percentage,
		},
		Balance: model.Balance,
		Links: EnvelopeLinks{
			Self:      fmt.Sprintf("%s/v1/envelopes/%s", url, model.ID),
			Movements: fmt.Sprintf("%s/v1/movements?envelope=%s", url, model.Name),
		},
	}
}

type EnvelopeListResponse struct {
	Data       []Envelope  `json:"data"`                                                          // List of Envelopes
	Error      *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination `json:"pagination"`                                                    // Pagination information
}

type EnvelopeCreateResponse struct {
	Data  []EnvelopeResponse `json:"data"`                                                          // List of the created Envelopes or their respective error
	Error *string            `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

func (e *EnvelopeCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	e.Data = append(e.Data, EnvelopeResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type EnvelopeResponse struct {
	Data  *Envelope `json:"data"`                                                          // Data for the Envelope
	Error *string   `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

// EnvelopePatch contains the fields of an envelope that can be changed after
// creation. Fields that are not set in the request body stay untouched.
type EnvelopePatch struct {
	Name       *string          `json:"name" example:"Groceries"` // New name for the envelope
	Percentage *decimal.Decimal `json:"percentage" example:"25"`  // New share of general deposits
}

type EnvelopeQueryFilter struct {
	Name   string `form:"name"`                       // By name
	Offset uint   `form:"offset" filterField:"false"` // The offset of the first Envelope returned. Defaults to 0.
	Limit  int    `form:"limit" filterField:"false"`  // Maximum number of Envelopes to return. Defaults to 50.
}

func (f EnvelopeQueryFilter) model() models.Envelope {
	return models.Envelope{
		Name: f.Name,
	}
}
