package v1

import (
	"fmt"
	"time"

	"github.com/jgomezprojects/Finanzas/internal/models"
	"github.com/jgomezprojects/Finanzas/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementEditable represents the user supplied parameters for recording a
// movement. Which fields are required depends on the kind:
//
//   - INCOME needs sourceName and amount, envelopeId is optional. With an
//     envelopeId the money is earmarked for that envelope, without one it is
//     distributed over all envelopes by percentage.
//   - EXPENSE needs sourceName, envelopeId and amount.
//   - TRANSFER needs fromSource, toSource and amount.
//
// RESET movements cannot be created through the API.
type MovementEditable struct {
	Kind        models.MovementKind `json:"kind" example:"EXPENSE"`                 // What the movement does
	Amount      decimal.Decimal     `json:"amount" example:"42.17"`                 // Amount of money moved
	Description string              `json:"description" example:"Weekly groceries"` // Free text description
	Date        time.Time           `json:"date" example:"2024-03-12T09:43:00Z"`    // Time the movement happened. Defaults to now
	SourceName  string              `json:"sourceName" example:"Cash"`              // Source for INCOME and EXPENSE movements
	EnvelopeID  *uuid.UUID          `json:"envelopeId"`                             // Envelope for EXPENSE and direct INCOME movements
	FromSource  string              `json:"fromSource" example:"Cash"`              // Origin for TRANSFER movements
	ToSource    string              `json:"toSource" example:"WalletA"`             // Destination for TRANSFER movements
}

type MovementLinks struct {
	Self string `json:"self" example:"https://example.com/api/v1/movements/d430d7c3-d14c-4712-9336-ee56965a6673"` // The movement itself
}

type Movement struct {
	models.DefaultModel
	Date         time.Time           `json:"date" example:"2024-03-12T09:43:00Z"`    // Time the movement happened
	Kind         models.MovementKind `json:"kind" example:"EXPENSE"`                 // What the movement did
	Description  string              `json:"description" example:"Weekly groceries"` // Free text description
	Amount       decimal.Decimal     `json:"amount" example:"42.17"`                 // Amount of money moved
	SourceName   string              `json:"sourceName" example:"Cash"`              // Source the money moved in or out of
	EnvelopeName string              `json:"envelopeName" example:"Groceries"`       // Set for expenses and direct income
	ExpenseName  string              `json:"expenseName" example:"Rent"`             // Set when a fixed expense was executed
	FromSource   string              `json:"fromSource" example:"Cash"`              // Transfer origin
	ToSource     string              `json:"toSource" example:"WalletA"`             // Transfer destination
	LoanID       *uuid.UUID          `json:"loanId"`                                 // Set when the movement belongs to a loan
	Links        MovementLinks       `json:"links"`
}

func newMovement(c *gin.Context, model models.Movement) Movement {
	url := c.GetString(string(models.DBContextURL))

	return Movement{
		DefaultModel: model.DefaultModel,
		Date:         model.Date,
		Kind:         model.Kind,
		Description:  model.Description,
		Amount:       model.Amount,
		SourceName:   model.SourceName,
		EnvelopeName: model.EnvelopeName,
		ExpenseName:  model.ExpenseName,
		FromSource:   model.FromSource,
		ToSource:     model.ToSource,
		LoanID:       model.LoanID,
		Links: MovementLinks{
			Self: fmt.Sprintf("%s/v1/movements/%s", url, model.ID),
		},
	}
}

type MovementListResponse struct {
	Data       []Movement  `json:"data"`                                                          // List of Movements
	Error      *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination `json:"pagination"`                                                    // Pagination information
}

type MovementCreateResponse struct {
	Data  []MovementResponse `json:"data"`                                                          // List of the created Movements or their respective error
	Error *string            `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

func (m *MovementCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	m.Data = append(m.Data, MovementResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type MovementResponse struct {
	Data  *Movement `json:"data"`                                                          // Data for the Movement
	Error *string   `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type MovementQueryFilter struct {
	Kind         models.MovementKind `form:"kind"`                            // By kind
	SourceName   string              `form:"source"`                          // By source name
	EnvelopeName string              `form:"envelope"`                        // By envelope name
	Description  string              `form:"description" filterField:"false"` // By description, with * as wildcard
	Window       types.Window        `form:"window" filterField:"false"`      // Only movements within this window
	Offset       uint                `form:"offset" filterField:"false"`      // The offset of the first Movement returned. Defaults to 0.
	Limit        int                 `form:"limit" filterField:"false"`       // Maximum number of Movements to return. Defaults to 50.
}

func (f MovementQueryFilter) model() (models.Movement, error) {
	if f.Kind != "" && !f.Kind.Valid() {
		return models.Movement{}, models.ErrMovementKindInvalid
	}

	return models.Movement{
		Kind:         f.Kind,
		SourceName:   f.SourceName,
		EnvelopeName: f.EnvelopeName,
	}, nil
}
