package v1

import (
	"fmt"
	"time"

	"github.com/jgomezprojects/Finanzas/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FixedExpenseEditable represents all user configurable parameters
type FixedExpenseEditable struct {
	Name       string           `json:"name" example:"Rent" default:""` // Name of the template
	Amount     *decimal.Decimal `json:"amount" example:"640.00"`        // Configured amount, unset until configured
	EnvelopeID *uuid.UUID       `json:"envelopeId"`                     // Envelope the expense is paid from, unset until configured
}

func (editable FixedExpenseEditable) model() models.FixedExpense {
	return models.FixedExpense{
		Name:       editable.Name,
		Amount:     editable.Amount,
		EnvelopeID: editable.EnvelopeID,
	}
}

type FixedExpenseLinks struct {
	Self    string `json:"self" example:"https://example.com/api/v1/fixed-expenses/7e8e83da-49a6-4213-90af-ac897b918505"`            // The template itself
	Execute string `json:"execute" example:"https://example.com/api/v1/fixed-expenses/7e8e83da-49a6-4213-90af-ac897b918505/execute"` // Endpoint to execute the template
}

type FixedExpense struct {
	models.DefaultModel
	FixedExpenseEditable
	Links FixedExpenseLinks `json:"links"`

	// This field is computed
	Configured bool `json:"configured" example:"true"` // Is the template executable?
}

func newFixedExpense(c *gin.Context, model models.FixedExpense) FixedExpense {
	url := c.GetString(string(models.DBContextURL))

	return FixedExpense{
		DefaultModel: model.DefaultModel,
		FixedExpenseEditable: FixedExpenseEditable{
			Name:       model.Name,
			Amount:     model.Amount,
			EnvelopeID: model.EnvelopeID,
		},
		Configured: model.Amount != nil && model.EnvelopeID != nil,
		Links: FixedExpenseLinks{
			Self:    fmt.Sprintf("%s/v1/fixed-expenses/%s", url, model.ID),
			Execute: fmt.Sprintf("%s/v1/fixed-expenses/%s/execute", url, model.ID),
		},
	}
}

type FixedExpenseListResponse struct {
	Data       []FixedExpense `json:"data"`                                                          // List of fixed expense templates
	Error      *string        `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination    `json:"pagination"`                                                    // Pagination information
}

type FixedExpenseCreateResponse struct {
	Data  []FixedExpenseResponse `json:"data"`                                                          // List of the created templates or their respective error
	Error *string                `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

func (f *FixedExpenseCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	f.Data = append(f.Data, FixedExpenseResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type FixedExpenseResponse struct {
	Data  *FixedExpense `json:"data"`                                                          // Data for the fixed expense template
	Error *string       `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

// FixedExpenseExecution is the request body for executing a template.
type FixedExpenseExecution struct {
	SourceName string    `json:"sourceName" example:"Cash"`           // Source to pay the expense from
	Date       time.Time `json:"date" example:"2024-03-12T09:43:00Z"` // Time of the payment. Defaults to now
}

type FixedExpenseQueryFilter struct {
	Name   string `form:"name"`                       // By name
	Offset uint   `form:"offset" filterField:"false"` // The offset of the first template returned. Defaults to 0.
	Limit  int    `form:"limit" filterField:"false"`  // Maximum number of templates to return. Defaults to 50.
}

func (f FixedExpenseQueryFilter) model() models.FixedExpense {
	return models.FixedExpense{
		Name: f.Name,
	}
}
