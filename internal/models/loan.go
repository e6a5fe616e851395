package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Loan records money lent to somebody out of an envelope and a source.
// A loan with nothing remaining is settled: hidden from the active list,
// never deleted automatically.
type Loan struct {
	DefaultModel
	Name       string          `json:"name" example:"Ana"`                                   // Name of the borrower
	Principal  decimal.Decimal `json:"principal" gorm:"type:DECIMAL(20,8)" example:"300.00"` // Amount that was lent out
	Remaining  decimal.Decimal `json:"remaining" gorm:"type:DECIMAL(20,8)" example:"120.00"` // Amount not paid back yet
	EnvelopeID uuid.UUID       `json:"envelopeId"`                                           // Envelope the money was lent from
	SourceName string          `json:"sourceName" example:"Cash"`                            // Source the money was lent from
}

var (
	ErrLoanNameEmpty        = errors.New("the loan needs the name of the borrower")
	ErrLoanExceedsRemaining = errors.New("the repayment is larger than the remaining loan balance")
)

func (l *Loan) BeforeSave(_ *gorm.DB) error {
	l.Name = strings.TrimSpace(l.Name)
	l.SourceName = strings.TrimSpace(l.SourceName)
	return nil
}

// Settled reports whether the loan has been fully repaid.
func (l Loan) Settled() bool {
	return !l.Remaining.IsPositive()
}

func (Loan) Export() (json.RawMessage, error) {
	var loans []Loan
	err := DB.Unscoped().Where(&Loan{}).Find(&loans).Error
	if err != nil {
		return nil, err
	}

	j, err := json.Marshal(&loans)
	if err != nil {
		return json.RawMessage{}, err
	}
	return json.RawMessage(j), nil
}

// CreateLoan hands out a loan. The amount leaves both the envelope and the
// source like an expense does, and the resulting movement is tagged with the
// loan so that statistics can leave it out.
func CreateLoan(db *gorm.DB, loan Loan) (Loan, error) {
	err := transaction(db, func(tx *gorm.DB) error {
		if strings.TrimSpace(loan.Name) == "" {
			return ErrLoanNameEmpty
		}

		loan.Principal = loan.Principal.Round(2)
		loan.Remaining = loan.Principal

		err := tx.Create(&loan).Error
		if err != nil {
			return err
		}

		_, err = RecordExpense(tx, Expense{
			SourceName:  loan.SourceName,
			EnvelopeID:  loan.EnvelopeID,
			Amount:      loan.Principal,
			Description: fmt.Sprintf("Loan to %s", loan.Name),
			loanID:      &loan.ID,
		})
		return err
	})
	if err != nil {
		return Loan{}, err
	}

	return loan, nil
}

// RepayLoan records a partial or total repayment. The money returns to the
// given source and to the envelope the loan was taken from.
func RepayLoan(db *gorm.DB, id uuid.UUID, amount decimal.Decimal, sourceName string, date time.Time) (Loan, error) {
	var loan Loan

	err := transaction(db, func(tx *gorm.DB) error {
		err := tx.First(&loan, id).Error
		if err != nil {
			return err
		}

		amount = amount.Round(2)
		if !amount.IsPositive() {
			return ErrAmountNotPositive
		}

		if amount.GreaterThan(loan.Remaining) {
			return ErrLoanExceedsRemaining
		}

		_, err = RecordIncome(tx, Income{
			SourceName:  sourceName,
			EnvelopeID:  &loan.EnvelopeID,
			Amount:      amount,
			Description: fmt.Sprintf("Repayment from %s", loan.Name),
			Date:        date,
			loanID:      &loan.ID,
		})
		if err != nil {
			return err
		}

		loan.Remaining = loan.Remaining.Sub(amount)
		return tx.Save(&loan).Error
	})
	if err != nil {
		return Loan{}, err
	}

	return loan, nil
}

// DeleteLoan removes the loan record. Balances and the movement history are
// left untouched.
func DeleteLoan(db *gorm.DB, id uuid.UUID) error {
	var loan Loan
	err := db.First(&loan, id).Error
	if err != nil {
		return err
	}

	return db.Unscoped().Delete(&loan).Error
}
