package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Ledger is the aggregate holding the percentage pool and the running totals.
//
// There is exactly one row in this table. All mutation of the pool and the
// totals goes through the operations in this package, nothing else writes it.
type Ledger struct {
	DefaultModel
	PercentageAvailable decimal.Decimal `json:"percentageAvailable" gorm:"type:DECIMAL(20,8)" example:"20"`   // Share of 100% not yet assigned to an envelope
	TotalGeneral        decimal.Decimal `json:"totalGeneral" gorm:"type:DECIMAL(20,8)" example:"2735.17"`     // Total money across all sources
	TotalIncome         decimal.Decimal `json:"totalIncome" gorm:"type:DECIMAL(20,8)" example:"10250.00"`     // Sum of all recorded income
	TotalExpense        decimal.Decimal `json:"totalExpense" gorm:"type:DECIMAL(20,8)" example:"7514.83"`     // Sum of all recorded expenses
}

func (Ledger) Export() (json.RawMessage, error) {
	var ledgers []Ledger
	err := DB.Unscoped().Where(&Ledger{}).Find(&ledgers).Error
	if err != nil {
		return nil, err
	}

	j, err := json.Marshal(&ledgers)
	if err != nil {
		return json.RawMessage{}, err
	}
	return json.RawMessage(j), nil
}

// LoadLedger returns the singleton ledger row.
func LoadLedger(tx *gorm.DB) (Ledger, error) {
	var l Ledger
	err := tx.First(&l).Error
	return l, err
}
