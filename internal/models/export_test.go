package models_test

import (
	"encoding/json"
	"reflect"

	"github.com/jgomezprojects/Finanzas/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exportAll builds an export blob from all registered models, the same way
// the export endpoint does.
func (suite *TestSuiteStandard) exportAll() map[string]json.RawMessage {
	data := make(map[string]json.RawMessage, len(models.Registry))
	for _, model := range models.Registry {
		raw, err := model.Export()
		require.NoError(suite.T(), err)

		data[reflect.TypeOf(model).Name()] = raw
	}

	return data
}

func (suite *TestSuiteStandard) TestImportRoundTrip() {
	groceries := suite.createTestEnvelope("Groceries", 60)
	suite.createTestEnvelope("Rent", 40)

	suite.createTestIncome(models.Income{
		SourceName: "Cash",
		Amount:     decimal.NewFromInt(1000),
	})
	expense := suite.createTestExpense(models.Expense{
		SourceName:  "Cash",
		EnvelopeID:  groceries.ID,
		Amount:      decimal.NewFromInt(120),
		Description: "Market",
	})

	_, err := models.CreateLoan(models.DB, models.Loan{
		Name:       "Ana",
		Principal:  decimal.NewFromInt(100),
		EnvelopeID: groceries.ID,
		SourceName: "Cash",
	})
	require.NoError(suite.T(), err)

	data := suite.exportAll()

	// Import into a database that already holds unrelated state
	require.NoError(suite.T(), models.ResetAll(models.DB))
	require.NoError(suite.T(), models.Import(models.DB, data))

	// The full state is back, including IDs
	reloaded := suite.envelope(groceries)
	assert.Equal(suite.T(), groceries.ID, reloaded.ID)
	assertDecimalEqual(suite.T(), decimal.NewFromInt(380), reloaded.Balance)

	assertDecimalEqual(suite.T(), decimal.NewFromInt(780), suite.source("Cash").Balance)
	assertDecimalEqual(suite.T(), decimal.NewFromInt(780), suite.ledger().TotalGeneral)
	assertDecimalEqual(suite.T(), decimal.Zero, suite.ledger().PercentageAvailable)

	var movement models.Movement
	require.NoError(suite.T(), models.DB.First(&movement, expense.ID).Error)
	assert.Equal(suite.T(), "Market", movement.Description)

	var loans []models.Loan
	require.NoError(suite.T(), models.DB.Find(&loans).Error)
	require.Len(suite.T(), loans, 1)
	assertDecimalEqual(suite.T(), decimal.NewFromInt(100), loans[0].Remaining)
}

func (suite *TestSuiteStandard) TestImportEmptyBlob() {
	suite.createTestEnvelope("Groceries", 100)
	suite.createTestIncome(models.Income{
		SourceName: "Cash",
		Amount:     decimal.NewFromInt(500),
	})

	require.NoError(suite.T(), models.Import(models.DB, map[string]json.RawMessage{}))

	// Everything is gone, but the ledger singleton is recreated
	var count int64
	require.NoError(suite.T(), models.DB.Model(&models.Envelope{}).Count(&count).Error)
	assert.Equal(suite.T(), int64(0), count)

	l := suite.ledger()
	assertDecimalEqual(suite.T(), decimal.NewFromInt(100), l.PercentageAvailable)
	assertDecimalEqual(suite.T(), decimal.Zero, l.TotalGeneral)
}

func (suite *TestSuiteStandard) TestImportInvalidResource() {
	err := models.Import(models.DB, map[string]json.RawMessage{
		"Envelope": json.RawMessage(`{ "this": "is not an array" }`),
	})
	require.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "error parsing Envelope resources")
}

func (suite *TestSuiteStandard) TestResetAll() {
	groceries := suite.createTestEnvelope("Groceries", 100)
	suite.createTestIncome(models.Income{
		SourceName: "Cash",
		Amount:     decimal.NewFromInt(1000),
	})

	_, err := models.CreateLoan(models.DB, models.Loan{
		Name:       "Ana",
		Principal:  decimal.NewFromInt(100),
		EnvelopeID: groceries.ID,
		SourceName: "Cash",
	})
	require.NoError(suite.T(), err)

	require.NoError(suite.T(), models.ResetAll(models.DB))

	// Balances and totals are zeroed, the structure survives
	assertDecimalEqual(suite.T(), decimal.Zero, suite.source("Cash").Balance)
	assertDecimalEqual(suite.T(), decimal.Zero, suite.envelope(groceries).Balance)
	assertDecimalEqual(suite.T(), decimal.NewFromInt(100), suite.envelope(groceries).Percentage)

	l := suite.ledger()
	assertDecimalEqual(suite.T(), decimal.Zero, l.TotalGeneral)
	assertDecimalEqual(suite.T(), decimal.Zero, l.TotalIncome)
	assertDecimalEqual(suite.T(), decimal.Zero, l.TotalExpense)
	assertDecimalEqual(suite.T(), decimal.Zero, l.PercentageAvailable)

	var loanCount int64
	require.NoError(suite.T(), models.DB.Model(&models.Loan{}).Count(&loanCount).Error)
	assert.Equal(suite.T(), int64(0), loanCount)

	// Only the RESET marker remains in the log
	var movements []models.Movement
	require.NoError(suite.T(), models.DB.Find(&movements).Error)
	require.Len(suite.T(), movements, 1)
	assert.Equal(suite.T(), models.MovementReset, movements[0].Kind)
	assertDecimalEqual(suite.T(), decimal.NewFromInt(900), movements[0].Amount)
}
