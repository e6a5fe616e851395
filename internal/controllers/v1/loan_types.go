package v1

import (
	"fmt"
	"time"

	"github.com/jgomezprojects/Finanzas/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LoanEditable represents all user configurable parameters
type LoanEditable struct {
	Name       string          `json:"name" example:"Ana" default:""` // Name of the borrower
	Amount     decimal.Decimal `json:"amount" example:"300.00"`       // Amount to lend out
	EnvelopeID uuid.UUID       `json:"envelopeId"`                    // Envelope the money is lent from
	SourceName string          `json:"sourceName" example:"Cash"`     // Source the money is lent from
}

func (editable LoanEditable) model() models.Loan {
	return models.Loan{
		Name:       editable.Name,
		Principal:  editable.Amount,
		EnvelopeID: editable.EnvelopeID,
		SourceName: editable.SourceName,
	}
}

type LoanLinks struct {
	Self       string `json:"self" example:"https://example.com/api/v1/loans/a53e2b90-a611-4ee8-af6f-fe78d3c5fc76"`                  // The loan itself
	Repayments string `json:"repayments" example:"https://example.com/api/v1/loans/a53e2b90-a611-4ee8-af6f-fe78d3c5fc76/repayments"` // Endpoint to record repayments
}

type Loan struct {
	models.DefaultModel
	Name       string          `json:"name" example:"Ana"`        // Name of the borrower
	Principal  decimal.Decimal `json:"principal" example:"300.00"` // Amount that was lent out
	Remaining  decimal.Decimal `json:"remaining" example:"120.00"` // Amount not paid back yet
	EnvelopeID uuid.UUID       `json:"envelopeId"`                // Envelope the money was lent from
	SourceName string          `json:"sourceName" example:"Cash"` // Source the money was lent from
	Links      LoanLinks       `json:"links"`

	// This field is computed
	Settled bool `json:"settled" example:"false"` // Has the loan been fully repaid?
}

func newLoan(c *gin.Context, model models.Loan) Loan {
	url := c.GetString(string(models.DBContextURL))

	return Loan{
		DefaultModel: model.DefaultModel,
		Name:         model.Name,
		Principal:    model.Principal,
		Remaining:    model.Remaining,
		EnvelopeID:   model.EnvelopeID,
		SourceName:   model.SourceName,
		Settled:      model.Settled(),
		Links: LoanLinks{
			Self:       fmt.Sprintf("%s/v1/loans/%s", url, model.ID),
			Repayments: fmt.Sprintf("%s/v1/loans/%s/repayments", url, model.ID),
		},
	}
}

type LoanListResponse struct {
	Data       []Loan      `json:"data"`                                                          // List of Loans
	Error      *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination `json:"pagination"`                                                    // Pagination information
}

type LoanCreateResponse struct {
	Data  []LoanResponse `json:"data"`                                                          // List of the created Loans or their respective error
	Error *string        `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

func (l *LoanCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	l.Data = append(l.Data, LoanResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type LoanResponse struct {
	Data  *Loan   `json:"data"`                                                          // Data for the Loan
	Error *string `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

// LoanRepayment is the request body for recording a repayment.
type LoanRepayment struct {
	Amount     decimal.Decimal `json:"amount" example:"50.00"`              // Amount paid back
	SourceName string          `json:"sourceName" example:"Cash"`           // Source the repayment goes into
	Date       time.Time       `json:"date" example:"2024-03-12T09:43:00Z"` // Time of the repayment. Defaults to now
}

type LoanQueryFilter struct {
	Name    string `form:"name"`                        // By borrower name
	Settled bool   `form:"settled" filterField:"false"` // Include settled loans in the list
	Offset  uint   `form:"offset" filterField:"false"`  // The offset of the first Loan returned. Defaults to 0.
	Limit   int    `form:"limit" filterField:"false"`   // Maximum number of Loans to return. Defaults to 50.
}

func (f LoanQueryFilter) model() models.Loan {
	return models.Loan{
		Name: f.Name,
	}
}
