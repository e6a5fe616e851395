package v1_test

import (
	"net/http"
	"testing"

	v1 "github.com/jgomezprojects/Finanzas/internal/controllers/v1"
	"github.com/jgomezprojects/Finanzas/internal/models"
	"github.com/jgomezprojects/Finanzas/test"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestExportOptions verifies the allowed methods for export and import.
func (suite *TestSuiteStandard) TestExportOptions() {
	r := test.Request(suite.T(), http.MethodOptions, "http://example.com/v1/export", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)
	assert.Equal(suite.T(), "OPTIONS, GET", r.Header().Get("allow"))

	r = test.Request(suite.T(), http.MethodOptions, "http://example.com/v1/import", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)
	assert.Equal(suite.T(), "OPTIONS, POST", r.Header().Get("allow"))
}

// TestExportGet verifies the shape of the export blob.
func (suite *TestSuiteStandard) TestExportGet() {
	_ = createTestEnvelope(suite.T(), v1.EnvelopeEditable{Name: "Groceries", Percentage: decimal.NewFromInt(60)})

	r := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/export", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.ExportResponse
	test.DecodeResponse(suite.T(), &r, &response)

	assert.Equal(suite.T(), "GNU Terry Pratchett", response.Clacks)
	assert.False(suite.T(), response.CreationTime.IsZero())

	for _, key := range []string{"Ledger", "Source", "Envelope", "FixedExpense", "Loan", "Movement"} {
		assert.Contains(suite.T(), response.Data, key)
	}
}

// TestExportImportRoundTrip verifies that an exported instance can be
// restored losslessly.
func (suite *TestSuiteStandard) TestExportImportRoundTrip() {
	groceries := createTestEnvelope(suite.T(), v1.EnvelopeEditable{Name: "Groceries", Percentage: decimal.NewFromInt(100)})
	_ = createTestMovement(suite.T(), v1.MovementEditable{
		Kind:       models.MovementIncome,
		SourceName: "Cash",
		Amount:     decimal.NewFromInt(1000),
	})

	r := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/export", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var export v1.ExportResponse
	test.DecodeResponse(suite.T(), &r, &export)

	// Wipe the instance
	r = test.Request(suite.T(), http.MethodDelete, "http://example.com/v1?confirm=yes-please-reset-everything", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)
	assert.True(suite.T(), envelopeBalance(suite.T(), groceries).IsZero())

	// The import endpoint accepts a full export response as body
	r = test.Request(suite.T(), http.MethodPost, "http://example.com/v1/import", export)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	assert.True(suite.T(), envelopeBalance(suite.T(), groceries).Equal(decimal.NewFromInt(1000)))
	assert.True(suite.T(), sourceBalance(suite.T(), "Cash").Equal(decimal.NewFromInt(1000)))

	var movements v1.MovementListResponse
	r = test.Request(suite.T(), http.MethodGet, "http://example.com/v1/movements", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	test.DecodeResponse(suite.T(), &r, &movements)
	require.Len(suite.T(), movements.Data, 1)
	assert.Equal(suite.T(), models.MovementIncome, movements.Data[0].Kind)
}

// TestImportFails verifies the rejection paths for imports.
func (suite *TestSuiteStandard) TestImportFails() {
	tests := []struct {
		name string
		body any
	}{
		{"Broken JSON", `{ "data": `},
		{"Resource is not an array", map[string]any{"data": map[string]any{"Envelope": map[string]string{"name": "nope"}}}},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPost, "http://example.com/v1/import", tt.body)
			test.AssertHTTPStatus(t, &r, http.StatusBadRequest)
		})
	}
}
