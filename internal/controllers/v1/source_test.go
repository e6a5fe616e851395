package v1_test

import (
	"net/http"
	"testing"

	v1 "github.com/jgomezprojects/Finanzas/internal/controllers/v1"
	"github.com/jgomezprojects/Finanzas/internal/models"
	"github.com/jgomezprojects/Finanzas/test"
	"github.com/stretchr/testify/assert"
)

// TestSourcesDBClosed verifies that errors are processed correctly when
// the database is closed.
func (suite *TestSuiteStandard) TestSourcesDBClosed() {
	suite.CloseDB()

	recorder := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/sources", "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusInternalServerError)

	var response v1.SourceListResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	assert.Contains(suite.T(), *response.Error, models.ErrGeneral.Error())
}

// TestSourcesOptions verifies that OPTIONS requests are handled correctly.
func (suite *TestSuiteStandard) TestSourcesOptions() {
	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"Collection", "http://example.com/v1/sources", http.StatusNoContent},
		{"Source exists", "http://example.com/v1/sources/Cash", http.StatusNoContent},
		{"No Source with this name", "http://example.com/v1/sources/Stonks", http.StatusNotFound},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodOptions, tt.path, "")
			test.AssertHTTPStatus(t, &r, tt.status)

			if tt.status == http.StatusNoContent {
				assert.Equal(t, "OPTIONS, GET", r.Header().Get("allow"))
			}
		})
	}
}

// TestSourcesGet verifies that the seeded sources are returned in
// alphabetical order.
func (suite *TestSuiteStandard) TestSourcesGet() {
	r := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/sources", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.SourceListResponse
	test.DecodeResponse(suite.T(), &r, &response)

	if !assert.Len(suite.T(), response.Data, 3) {
		return
	}

	assert.Equal(suite.T(), "Cash", response.Data[0].Name)
	assert.Equal(suite.T(), "WalletA", response.Data[1].Name)
	assert.Equal(suite.T(), "WalletB", response.Data[2].Name)

	for _, source := range response.Data {
		assert.True(suite.T(), source.Balance.IsZero())
		assert.Contains(suite.T(), source.Links.Self, "/v1/sources/"+source.Name)
	}
}

// TestSourcesGetSingle verifies that sources are addressed by name, the
// same way movements reference them.
func (suite *TestSuiteStandard) TestSourcesGetSingle() {
	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"Existing Source", "Cash", http.StatusOK},
		{"No Source with this name", "Stonks", http.StatusNotFound},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodGet, "http://example.com/v1/sources/"+tt.path, "")
			test.AssertHTTPStatus(t, &r, tt.status)

			var response v1.SourceResponse
			test.DecodeResponse(t, &r, &response)

			if tt.status == http.StatusOK {
				assert.Equal(t, "Cash", response.Data.Name)
			} else {
				assert.Contains(t, *response.Error, models.ErrResourceNotFound.Error())
			}
		})
	}
}
