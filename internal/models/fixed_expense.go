package models

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FixedExpense is a reusable expense template. It can exist with just a
// name and becomes executable once an amount and an envelope are configured.
// Executing it never mutates the template.
type FixedExpense struct {
	DefaultModel
	Name       string           `json:"name" gorm:"uniqueIndex:fixed_expense_name" example:"Rent"` // Name of the template
	Amount     *decimal.Decimal `json:"amount" gorm:"type:DECIMAL(20,8)" example:"640.00"`         // Configured amount, unset until configured
	EnvelopeID *uuid.UUID       `json:"envelopeId"`                                                // Envelope the expense is paid from, unset until configured
}

var (
	ErrFixedExpenseNameEmpty         = errors.New("the fixed expense name must not be empty")
	ErrFixedExpenseNameNotUnique     = errors.New("the fixed expense name is already in use")
	ErrFixedExpenseNotConfigured     = errors.New("the fixed expense has no amount or envelope configured yet")
	ErrFixedExpenseAmountNotPositive = errors.New("fixed expense amounts must be larger than zero")
)

func (f *FixedExpense) BeforeSave(_ *gorm.DB) error {
	f.Name = strings.TrimSpace(f.Name)

	// An envelope ID that is a pointer to the nil UUID means "unset"
	if f.EnvelopeID != nil && *f.EnvelopeID == uuid.Nil {
		f.EnvelopeID = nil
	}

	return nil
}

func (f *FixedExpense) BeforeCreate(tx *gorm.DB) error {
	_ = f.DefaultModel.BeforeCreate(tx)

	if f.Name == "" {
		return ErrFixedExpenseNameEmpty
	}

	return f.checkIntegrity(tx, *f)
}

func (f *FixedExpense) BeforeUpdate(tx *gorm.DB) (err error) {
	toSave, ok := tx.Statement.Dest.(FixedExpense)
	if !ok {
		return nil
	}

	if tx.Statement.Changed("EnvelopeID") {
		err := f.checkIntegrity(tx, toSave)
		if err != nil {
			return err
		}
	}

	return nil
}

// checkIntegrity verifies that the configured envelope exists.
func (f *FixedExpense) checkIntegrity(tx *gorm.DB, toSave FixedExpense) error {
	if toSave.EnvelopeID == nil || *toSave.EnvelopeID == uuid.Nil {
		return nil
	}

	return tx.First(&Envelope{}, *toSave.EnvelopeID).Error
}

func (f *FixedExpense) AfterSave(_ *gorm.DB) error {
	if f.Amount != nil && !f.Amount.IsPositive() {
		return ErrFixedExpenseAmountNotPositive
	}

	return nil
}

func (FixedExpense) Export() (json.RawMessage, error) {
	var fixedExpenses []FixedExpense
	err := DB.Unscoped().Where(&FixedExpense{}).Find(&fixedExpenses).Error
	if err != nil {
		return nil, err
	}

	j, err := json.Marshal(&fixedExpenses)
	if err != nil {
		return json.RawMessage{}, err
	}
	return json.RawMessage(j), nil
}

// ExecuteFixedExpense pays a configured fixed expense from the given source.
// Sufficiency of the source and the envelope is validated at execution time,
// both may have changed since the template was configured.
func ExecuteFixedExpense(db *gorm.DB, id uuid.UUID, sourceName string, date time.Time) (Movement, error) {
	var fixedExpense FixedExpense
	err := db.First(&fixedExpense, id).Error
	if err != nil {
		return Movement{}, err
	}

	if fixedExpense.Amount == nil || fixedExpense.EnvelopeID == nil {
		return Movement{}, ErrFixedExpenseNotConfigured
	}

	return RecordExpense(db, Expense{
		SourceName:  sourceName,
		EnvelopeID:  *fixedExpense.EnvelopeID,
		Amount:      *fixedExpense.Amount,
		Description: fixedExpense.Name,
		Date:        date,
		expenseName: fixedExpense.Name,
	})
}
