package v1_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	v1 "github.com/jgomezprojects/Finanzas/internal/controllers/v1"
	"github.com/jgomezprojects/Finanzas/internal/models"
	"github.com/jgomezprojects/Finanzas/test"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// envelopeBalance reads the current balance of an envelope over the API.
func envelopeBalance(t *testing.T, e v1.EnvelopeResponse) decimal.Decimal {
	r := test.Request(t, http.MethodGet, e.Data.Links.Self, "")
	test.AssertHTTPStatus(t, &r, http.StatusOK)

	var response v1.EnvelopeResponse
	test.DecodeResponse(t, &r, &response)
	return response.Data.Balance
}

// sourceBalance reads the current balance of a source over the API.
func sourceBalance(t *testing.T, name string) decimal.Decimal {
	r := test.Request(t, http.MethodGet, "http://example.com/v1/sources/"+name, "")
	test.AssertHTTPStatus(t, &r, http.StatusOK)

	var response v1.SourceResponse
	test.DecodeResponse(t, &r, &response)
	return response.Data.Balance
}

// TestMovementsDBClosed verifies that errors are processed correctly when
// the database is closed.
func (suite *TestSuiteStandard) TestMovementsDBClosed() {
	tests := []struct {
		name string             // Name of the test
		test func(t *testing.T) // Code to run
	}{
		{
			"Creation fails",
			func(t *testing.T) {
				createTestMovement(t, v1.MovementEditable{
					Kind:       models.MovementIncome,
					SourceName: "Cash",
					Amount:     decimal.NewFromInt(10),
				}, http.StatusInternalServerError)
			},
		},
		{
			"GET fails",
			func(t *testing.T) {
				recorder := test.Request(t, http.MethodGet, "http://example.com/v1/movements", "")
				test.AssertHTTPStatus(t, &recorder, http.StatusInternalServerError)

				var response v1.MovementListResponse
				test.DecodeResponse(t, &recorder, &response)
				assert.Contains(t, *response.Error, models.ErrGeneral.Error())
			},
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			suite.CloseDB()

			tt.test(t)
		})
	}
}

// TestMovementsOptions verifies that OPTIONS requests are handled correctly.
func (suite *TestSuiteStandard) TestMovementsOptions() {
	income := createTestMovement(suite.T(), v1.MovementEditable{
		Kind:       models.MovementIncome,
		SourceName: "Cash",
		Amount:     decimal.NewFromInt(100),
	})

	tests := []struct {
		name   string
		id     string
		status int
		allow  string
	}{
		{"No Movement with this ID", uuid.New().String(), http.StatusNotFound, ""},
		{"Not a valid UUID", "NotParseableAsUUID", http.StatusBadRequest, ""},
		{"Movement exists", income.Data.ID.String(), http.StatusNoContent, "OPTIONS, GET, DELETE"},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			path := fmt.Sprintf("%s/%s", "http://example.com/v1/movements", tt.id)
			r := test.Request(t, http.MethodOptions, path, "")
			test.AssertHTTPStatus(t, &r, tt.status)

			if tt.allow != "" {
				assert.Equal(t, tt.allow, r.Header().Get("allow"))
			}
		})
	}

	r := test.Request(suite.T(), http.MethodOptions, "http://example.com/v1/movements", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)
	assert.Equal(suite.T(), "OPTIONS, GET, POST, DELETE", r.Header().Get("allow"))
}

// TestMovementsCreateIncome verifies that general income is distributed
// over the envelopes by percentage.
func (suite *TestSuiteStandard) TestMovementsCreateIncome() {
	groceries := createTestEnvelope(suite.T(), v1.EnvelopeEditable{Name: "Groceries", Percentage: decimal.NewFromInt(60)})
	rent := createTestEnvelope(suite.T(), v1.EnvelopeEditable{Name: "Rent", Percentage: decimal.NewFromInt(40)})

	income := createTestMovement(suite.T(), v1.MovementEditable{
		Kind:        models.MovementIncome,
		SourceName:  "Cash",
		Amount:      decimal.NewFromInt(1000),
		Description: "Salary",
	})

	require.NotNil(suite.T(), income.Data)
	assert.Equal(suite.T(), models.MovementIncome, income.Data.Kind)
	assert.Equal(suite.T(), "Cash", income.Data.SourceName)
	assert.Empty(suite.T(), income.Data.EnvelopeName)
	assert.Contains(suite.T(), income.Data.Links.Self, "/v1/movements/")

	assert.True(suite.T(), envelopeBalance(suite.T(), groceries).Equal(decimal.NewFromInt(600)))
	assert.True(suite.T(), envelopeBalance(suite.T(), rent).Equal(decimal.NewFromInt(400)))
	assert.True(suite.T(), sourceBalance(suite.T(), "Cash").Equal(decimal.NewFromInt(1000)))
}

// TestMovementsCreateDirectIncome verifies that income with an envelope ID
// goes to that envelope alone.
func (suite *TestSuiteStandard) TestMovementsCreateDirectIncome() {
	groceries := createTestEnvelope(suite.T(), v1.EnvelopeEditable{Name: "Groceries", Percentage: decimal.NewFromInt(60)})
	rent := createTestEnvelope(suite.T(), v1.EnvelopeEditable{Name: "Rent", Percentage: decimal.NewFromInt(40)})

	income := createTestMovement(suite.T(), v1.MovementEditable{
		Kind:       models.MovementIncome,
		SourceName: "WalletA",
		EnvelopeID: &rent.Data.ID,
		Amount:     decimal.NewFromInt(50),
	})

	assert.Equal(suite.T(), "Rent", income.Data.EnvelopeName)
	assert.True(suite.T(), envelopeBalance(suite.T(), groceries).IsZero())
	assert.True(suite.T(), envelopeBalance(suite.T(), rent).Equal(decimal.NewFromInt(50)))
	assert.True(suite.T(), sourceBalance(suite.T(), "WalletA").Equal(decimal.NewFromInt(50)))
}

// TestMovementsCreateExpense verifies expense recording and its checks.
func (suite *TestSuiteStandard) TestMovementsCreateExpense() {
	groceries := createTestEnvelope(suite.T(), v1.EnvelopeEditable{Name: "Groceries", Percentage: decimal.NewFromInt(100)})
	_ = createTestMovement(suite.T(), v1.MovementEditable{
		Kind:       models.MovementIncome,
		SourceName: "Cash",
		Amount:     decimal.NewFromInt(500),
	})

	expense := createTestMovement(suite.T(), v1.MovementEditable{
		Kind:        models.MovementExpense,
		SourceName:  "Cash",
		EnvelopeID:  &groceries.Data.ID,
		Amount:      decimal.NewFromInt(120),
		Description: "Weekly groceries",
	})

	assert.Equal(suite.T(), "Groceries", expense.Data.EnvelopeName)
	assert.True(suite.T(), envelopeBalance(suite.T(), groceries).Equal(decimal.NewFromInt(380)))
	assert.True(suite.T(), sourceBalance(suite.T(), "Cash").Equal(decimal.NewFromInt(380)))
}

// TestMovementsCreateTransfer verifies that transfers move money between
// sources without touching envelopes.
func (suite *TestSuiteStandard) TestMovementsCreateTransfer() {
	groceries := createTestEnvelope(suite.T(), v1.EnvelopeEditable{Name: "Groceries", Percentage: decimal.NewFromInt(100)})
	_ = createTestMovement(suite.T(), v1.MovementEditable{
		Kind:       models.MovementIncome,
		SourceName: "Cash",
		Amount:     decimal.NewFromInt(500),
	})

	transfer := createTestMovement(suite.T(), v1.MovementEditable{
		Kind:       models.MovementTransfer,
		FromSource: "Cash",
		ToSource:   "WalletA",
		Amount:     decimal.NewFromInt(200),
	})

	assert.Equal(suite.T(), "Cash", transfer.Data.FromSource)
	assert.Equal(suite.T(), "WalletA", transfer.Data.ToSource)
	assert.True(suite.T(), sourceBalance(suite.T(), "Cash").Equal(decimal.NewFromInt(300)))
	assert.True(suite.T(), sourceBalance(suite.T(), "WalletA").Equal(decimal.NewFromInt(200)))
	assert.True(suite.T(), envelopeBalance(suite.T(), groceries).Equal(decimal.NewFromInt(500)))
}

// TestMovementsCreateFails verifies the rejection paths for movement
// creation.
func (suite *TestSuiteStandard) TestMovementsCreateFails() {
	groceries := createTestEnvelope(suite.T(), v1.EnvelopeEditable{Name: "Groceries", Percentage: decimal.NewFromInt(100)})

	tests := []struct {
		name     string
		movement v1.MovementEditable
		status   int
		contains string
	}{
		{
			"Expense without envelope",
			v1.MovementEditable{Kind: models.MovementExpense, SourceName: "Cash", Amount: decimal.NewFromInt(10)},
			http.StatusBadRequest,
			"the envelopeId parameter must be set",
		},
		{
			"RESET cannot be created",
			v1.MovementEditable{Kind: models.MovementReset, Amount: decimal.NewFromInt(10)},
			http.StatusBadRequest,
			"only INCOME, EXPENSE and TRANSFER movements can be created",
		},
		{
			"Unknown source",
			v1.MovementEditable{Kind: models.MovementIncome, SourceName: "Stonks", Amount: decimal.NewFromInt(10)},
			http.StatusNotFound,
			models.ErrResourceNotFound.Error(),
		},
		{
			"Zero amount",
			v1.MovementEditable{Kind: models.MovementIncome, SourceName: "Cash"},
			http.StatusBadRequest,
			models.ErrAmountNotPositive.Error(),
		},
		{
			"Transfer between the same source",
			v1.MovementEditable{Kind: models.MovementTransfer, FromSource: "Cash", ToSource: "Cash", Amount: decimal.NewFromInt(10)},
			http.StatusBadRequest,
			models.ErrTransferSameSource.Error(),
		},
		{
			"Expense exceeding the envelope balance",
			v1.MovementEditable{Kind: models.MovementExpense, SourceName: "Cash", EnvelopeID: &groceries.Data.ID, Amount: decimal.NewFromInt(10)},
			http.StatusBadRequest,
			models.ErrEnvelopeBalanceInsufficient.Error(),
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPost, "http://example.com/v1/movements", []v1.MovementEditable{tt.movement})
			test.AssertHTTPStatus(t, &r, tt.status)

			var response v1.MovementCreateResponse
			test.DecodeResponse(t, &r, &response)
			require.Len(t, response.Data, 1)
			assert.Contains(t, *response.Data[0].Error, tt.contains)
		})
	}
}

// TestMovementsCreateMixed verifies that a rejected entry does not affect
// the other entries of the same request.
func (suite *TestSuiteStandard) TestMovementsCreateMixed() {
	body := []v1.MovementEditable{
		{Kind: models.MovementIncome, SourceName: "Cash", Amount: decimal.NewFromInt(100)},
		{Kind: models.MovementIncome, SourceName: "Stonks", Amount: decimal.NewFromInt(100)},
	}

	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/movements", body)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)

	var response v1.MovementCreateResponse
	test.DecodeResponse(suite.T(), &r, &response)
	require.Len(suite.T(), response.Data, 2)

	assert.NotNil(suite.T(), response.Data[0].Data)
	assert.Nil(suite.T(), response.Data[1].Data)

	// The first income went through even though the second failed
	assert.True(suite.T(), sourceBalance(suite.T(), "Cash").Equal(decimal.NewFromInt(100)))
}

// TestMovementsGetFiltered verifies the query filters of the movement log.
func (suite *TestSuiteStandard) TestMovementsGetFiltered() {
	groceries := createTestEnvelope(suite.T(), v1.EnvelopeEditable{Name: "Groceries", Percentage: decimal.NewFromInt(100)})
	_ = createTestMovement(suite.T(), v1.MovementEditable{
		Kind:        models.MovementIncome,
		SourceName:  "Cash",
		Amount:      decimal.NewFromInt(1000),
		Description: "Salary",
	})
	_ = createTestMovement(suite.T(), v1.MovementEditable{
		Kind:        models.MovementExpense,
		SourceName:  "Cash",
		EnvelopeID:  &groceries.Data.ID,
		Amount:      decimal.NewFromInt(42),
		Description: "Weekly Groceries run",
	})
	_ = createTestMovement(suite.T(), v1.MovementEditable{
		Kind:       models.MovementTransfer,
		FromSource: "Cash",
		ToSource:   "WalletB",
		Amount:     decimal.NewFromInt(100),
	})

	tests := []struct {
		name  string
		query string
		count int
	}{
		{"No filter", "", 3},
		{"Kind", "kind=INCOME", 1},
		{"Source", "source=Cash", 2},
		{"Envelope", "envelope=Groceries", 1},
		{"Description glob", "description=*groceries*", 1},
		{"Description without match", "description=*rent*", 0},
		{"Window contains everything", "window=24h", 3},
		{"Limit", "limit=2", 2},
		{"Offset", "offset=2", 1},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/movements?%s", tt.query), "")
			test.AssertHTTPStatus(t, &r, http.StatusOK)

			var response v1.MovementListResponse
			test.DecodeResponse(t, &r, &response)

			assert.Len(t, response.Data, tt.count)
			assert.Equal(t, tt.count, response.Pagination.Count)
		})
	}
}

// TestMovementsGetWindow verifies that the window filter cuts off old
// movements.
func (suite *TestSuiteStandard) TestMovementsGetWindow() {
	old := createTestMovement(suite.T(), v1.MovementEditable{
		Kind:       models.MovementIncome,
		SourceName: "Cash",
		Amount:     decimal.NewFromInt(10),
	})

	// Backdate the movement past the day window
	err := models.DB.Model(&models.Movement{}).
		Where("id = ?", old.Data.ID).
		Update("date", time.Now().Add(-48*time.Hour).In(time.UTC)).Error
	require.Nil(suite.T(), err)

	_ = createTestMovement(suite.T(), v1.MovementEditable{
		Kind:       models.MovementIncome,
		SourceName: "Cash",
		Amount:     decimal.NewFromInt(20),
	})

	tests := []struct {
		name  string
		query string
		count int
	}{
		{"Day window hides the old movement", "window=24h", 1},
		{"Week window contains both", "window=7d", 2},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/movements?%s", tt.query), "")
			test.AssertHTTPStatus(t, &r, http.StatusOK)

			var response v1.MovementListResponse
			test.DecodeResponse(t, &r, &response)
			assert.Len(t, response.Data, tt.count)
		})
	}
}

// TestMovementsGetInvalidQuery verifies that invalid filter values are
// rejected.
func (suite *TestSuiteStandard) TestMovementsGetInvalidQuery() {
	tests := []string{
		"window=12h",
		"kind=SOMETHING",
		"offset=-1",
		"limit=notANumber",
	}

	for _, tt := range tests {
		suite.T().Run(tt, func(t *testing.T) {
			r := test.Request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/movements?%s", tt), "")
			test.AssertHTTPStatus(t, &r, http.StatusBadRequest)
		})
	}
}

// TestMovementsGetSingle verifies requests for single movements.
func (suite *TestSuiteStandard) TestMovementsGetSingle() {
	income := createTestMovement(suite.T(), v1.MovementEditable{
		Kind:       models.MovementIncome,
		SourceName: "Cash",
		Amount:     decimal.NewFromInt(100),
	})

	tests := []struct {
		name   string
		id     string
		status int
	}{
		{"Existing Movement", income.Data.ID.String(), http.StatusOK},
		{"No Movement with this ID", uuid.New().String(), http.StatusNotFound},
		{"Not a valid UUID", "definitely-not-a-UUID", http.StatusBadRequest},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/movements/%s", tt.id), "")
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}
}

// TestMovementsRevert verifies that reverting a movement restores all
// balances and removes it from the log.
func (suite *TestSuiteStandard) TestMovementsRevert() {
	groceries := createTestEnvelope(suite.T(), v1.EnvelopeEditable{Name: "Groceries", Percentage: decimal.NewFromInt(100)})

	income := createTestMovement(suite.T(), v1.MovementEditable{
		Kind:       models.MovementIncome,
		SourceName: "Cash",
		Amount:     decimal.NewFromInt(1000),
	})

	r := test.Request(suite.T(), http.MethodDelete, income.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	assert.True(suite.T(), envelopeBalance(suite.T(), groceries).IsZero())
	assert.True(suite.T(), sourceBalance(suite.T(), "Cash").IsZero())

	// The movement is gone from the log
	r = test.Request(suite.T(), http.MethodGet, income.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

// TestMovementsRevertBlocked verifies that a revert that would drive a
// balance negative changes nothing.
func (suite *TestSuiteStandard) TestMovementsRevertBlocked() {
	groceries := createTestEnvelope(suite.T(), v1.EnvelopeEditable{Name: "Groceries", Percentage: decimal.NewFromInt(100)})

	income := createTestMovement(suite.T(), v1.MovementEditable{
		Kind:       models.MovementIncome,
		SourceName: "Cash",
		Amount:     decimal.NewFromInt(1000),
	})

	// Spending from the source makes the income irreversible
	_ = createTestMovement(suite.T(), v1.MovementEditable{
		Kind:       models.MovementExpense,
		SourceName: "Cash",
		EnvelopeID: &groceries.Data.ID,
		Amount:     decimal.NewFromInt(100),
	})

	r := test.Request(suite.T(), http.MethodDelete, income.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	// Nothing changed, the movement is still there
	r = test.Request(suite.T(), http.MethodGet, income.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	assert.True(suite.T(), sourceBalance(suite.T(), "Cash").Equal(decimal.NewFromInt(900)))
}

// TestMovementsDeleteAll verifies the confirmation gated wipe of the
// movement log.
func (suite *TestSuiteStandard) TestMovementsDeleteAll() {
	_ = createTestMovement(suite.T(), v1.MovementEditable{
		Kind:       models.MovementIncome,
		SourceName: "Cash",
		Amount:     decimal.NewFromInt(1000),
	})

	// Without the magic confirmation value nothing happens
	r := test.Request(suite.T(), http.MethodDelete, "http://example.com/v1/movements?confirm=yes", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	var errResponse struct {
		Error string `json:"error"`
	}
	test.DecodeResponse(suite.T(), &r, &errResponse)
	assert.Contains(suite.T(), errResponse.Error, "confirmation for deleting all movements")

	r = test.Request(suite.T(), http.MethodDelete, "http://example.com/v1/movements?confirm=yes-please-delete-my-history", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	// The log is empty, balances are untouched
	r = test.Request(suite.T(), http.MethodGet, "http://example.com/v1/movements", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.MovementListResponse
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Len(suite.T(), response.Data, 0)

	assert.True(suite.T(), sourceBalance(suite.T(), "Cash").Equal(decimal.NewFromInt(1000)))
}
