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

// MovementKind describes what a movement did. Reversal switches on it
// exhaustively, so adding a kind means extending Revert as well.
type MovementKind string

const (
	MovementIncome   MovementKind = "INCOME"
	MovementExpense  MovementKind = "EXPENSE"
	MovementTransfer MovementKind = "TRANSFER"
	MovementReset    MovementKind = "RESET"
)

// Valid reports whether the kind is one of the defined movement kinds.
func (k MovementKind) Valid() bool {
	return k == MovementIncome || k == MovementExpense || k == MovementTransfer || k == MovementReset
}

// Movement is one entry of the append-only movement log. It stores exactly
// the fields needed to invert its effect, not a before/after snapshot.
//
// Sources and envelopes are referenced by name. When the referenced resource
// is gone, the movement can no longer be reverted.
type Movement struct {
	DefaultModel
	Date         time.Time       `json:"date" example:"2024-03-12T09:43:00Z"` // Time the movement happened
	Kind         MovementKind    `json:"kind" example:"EXPENSE"`
	Description  string          `json:"description" example:"Weekly groceries"`
	Amount       decimal.Decimal `json:"amount" gorm:"type:DECIMAL(20,8)" example:"42.17"`
	SourceName   string          `json:"sourceName" example:"Cash"`                                                                    // Source the money moved in or out of
	EnvelopeName string          `json:"envelopeName" example:"Groceries"`                                                             // Set for expenses and direct income, empty for general income
	ExpenseName  string          `json:"expenseName" example:"Rent"`                                                                   // Set when the movement was the execution of a fixed expense
	FromSource   string          `json:"fromSource" gorm:"check:transfer_sources_different,(kind <> 'TRANSFER' OR from_source <> to_source)" example:"Cash"` // Transfer origin
	ToSource     string          `json:"toSource" example:"WalletA"`                                                                   // Transfer destination
	LoanID       *uuid.UUID      `json:"loanId"`                                                                                       // Set when the movement belongs to a loan
}

var (
	ErrAmountNotPositive      = errors.New("amounts must be larger than zero")
	ErrMovementKindInvalid    = errors.New("the specified movement kind is invalid")
	ErrMovementNotRevertible  = errors.New("this movement cannot be reverted")
	ErrMovementFieldsMismatch = errors.New("the specified fields do not match the movement kind")
)

func (m *Movement) BeforeSave(_ *gorm.DB) error {
	m.Description = strings.TrimSpace(m.Description)
	m.SourceName = strings.TrimSpace(m.SourceName)
	m.EnvelopeName = strings.TrimSpace(m.EnvelopeName)
	m.ExpenseName = strings.TrimSpace(m.ExpenseName)
	m.FromSource = strings.TrimSpace(m.FromSource)
	m.ToSource = strings.TrimSpace(m.ToSource)

	if m.Date.IsZero() {
		m.Date = time.Now().In(time.UTC)
	} else {
		m.Date = m.Date.In(time.UTC)
	}

	return nil
}

// AfterFind updates the timestamps and the date to use UTC as timezone.
func (m *Movement) AfterFind(tx *gorm.DB) (err error) {
	err = m.DefaultModel.AfterFind(tx)
	if err != nil {
		return err
	}

	m.Date = m.Date.In(time.UTC)
	return
}

func (Movement) Export() (json.RawMessage, error) {
	var movements []Movement
	err := DB.Unscoped().Where(&Movement{}).Find(&movements).Error
	if err != nil {
		return nil, err
	}

	j, err := json.Marshal(&movements)
	if err != nil {
		return json.RawMessage{}, err
	}
	return json.RawMessage(j), nil
}

// Income is the request for recording money coming in.
//
// With an EnvelopeID, the amount is earmarked for that one envelope and no
// redistribution happens. Without one, the amount is distributed over all
// envelopes according to their percentages.
type Income struct {
	SourceName  string
	EnvelopeID  *uuid.UUID
	Amount      decimal.Decimal
	Description string
	Date        time.Time
	loanID      *uuid.UUID
}

// RecordIncome credits a source and either distributes the amount over all
// envelopes or earmarks it for a single one.
func RecordIncome(db *gorm.DB, income Income) (Movement, error) {
	var movement Movement

	err := transaction(db, func(tx *gorm.DB) error {
		amount := income.Amount.Round(2)
		if !amount.IsPositive() {
			return ErrAmountNotPositive
		}

		source, err := sourceByName(tx, income.SourceName)
		if err != nil {
			return err
		}

		envelopeName := ""
		if income.EnvelopeID != nil {
			var envelope Envelope
			err = tx.First(&envelope, *income.EnvelopeID).Error
			if err != nil {
				return err
			}

			envelope.Balance = envelope.Balance.Add(amount)
			err = tx.Save(&envelope).Error
			if err != nil {
				return err
			}
			envelopeName = envelope.Name
		} else {
			err = distributeDeposit(tx, amount)
			if err != nil {
				return err
			}
		}

		source.Balance = source.Balance.Add(amount)
		err = tx.Save(&source).Error
		if err != nil {
			return err
		}

		l, err := LoadLedger(tx)
		if err != nil {
			return err
		}

		l.TotalGeneral = l.TotalGeneral.Add(amount)
		l.TotalIncome = l.TotalIncome.Add(amount)
		err = tx.Save(&l).Error
		if err != nil {
			return err
		}

		movement = Movement{
			Date:         income.Date,
			Kind:         MovementIncome,
			Description:  income.Description,
			Amount:       amount,
			SourceName:   source.Name,
			EnvelopeName: envelopeName,
			LoanID:       income.loanID,
		}
		return tx.Create(&movement).Error
	})
	if err != nil {
		return Movement{}, err
	}

	return movement, nil
}

// distributeDeposit gives every envelope its percentage share of the amount.
func distributeDeposit(tx *gorm.DB, amount decimal.Decimal) error {
	envelopes, err := allEnvelopes(tx)
	if err != nil {
		return err
	}

	weights := make([]decimal.Decimal, len(envelopes))
	for i, envelope := range envelopes {
		weights[i] = envelope.Percentage
	}

	for i, share := range SplitByPercentage(amount, weights) {
		envelopes[i].Balance = envelopes[i].Balance.Add(share)
		err = tx.Save(&envelopes[i]).Error
		if err != nil {
			return err
		}
	}

	return nil
}

// Expense is the request for recording money going out of a source and an
// envelope.
type Expense struct {
	SourceName  string
	EnvelopeID  uuid.UUID
	Amount      decimal.Decimal
	Description string
	Date        time.Time
	expenseName string
	loanID      *uuid.UUID
}

// RecordExpense debits a source and an envelope. Sufficiency of both is
// checked before either is written, a rejected expense changes nothing.
//
// Every expense path funnels through here: direct spends, fixed expense
// executions and loan handouts. There is no second balance mutation routine.
func RecordExpense(db *gorm.DB, expense Expense) (Movement, error) {
	var movement Movement

	err := transaction(db, func(tx *gorm.DB) error {
		amount := expense.Amount.Round(2)
		if !amount.IsPositive() {
			return ErrAmountNotPositive
		}

		source, err := sourceByName(tx, expense.SourceName)
		if err != nil {
			return err
		}

		var envelope Envelope
		err = tx.First(&envelope, expense.EnvelopeID).Error
		if err != nil {
			return err
		}

		if amount.GreaterThan(envelope.Balance) {
			return ErrEnvelopeBalanceInsufficient
		}
		if amount.GreaterThan(source.Balance) {
			return ErrSourceBalanceInsufficient
		}

		source.Balance = source.Balance.Sub(amount)
		err = tx.Save(&source).Error
		if err != nil {
			return err
		}

		envelope.Balance = envelope.Balance.Sub(amount)
		err = tx.Save(&envelope).Error
		if err != nil {
			return err
		}

		l, err := LoadLedger(tx)
		if err != nil {
			return err
		}

		l.TotalGeneral = l.TotalGeneral.Sub(amount)
		l.TotalExpense = l.TotalExpense.Add(amount)
		err = tx.Save(&l).Error
		if err != nil {
			return err
		}

		movement = Movement{
			Date:         expense.Date,
			Kind:         MovementExpense,
			Description:  expense.Description,
			Amount:       amount,
			SourceName:   source.Name,
			EnvelopeName: envelope.Name,
			ExpenseName:  expense.expenseName,
			LoanID:       expense.loanID,
		}
		return tx.Create(&movement).Error
	})
	if err != nil {
		return Movement{}, err
	}

	return movement, nil
}

// Transfer is the request for moving money between two sources. Envelopes
// and totals are not touched by a transfer.
type Transfer struct {
	FromSource  string
	ToSource    string
	Amount      decimal.Decimal
	Description string
	Date        time.Time
}

// RecordTransfer moves money between two different sources.
func RecordTransfer(db *gorm.DB, transfer Transfer) (Movement, error) {
	var movement Movement

	err := transaction(db, func(tx *gorm.DB) error {
		amount := transfer.Amount.Round(2)
		if !amount.IsPositive() {
			return ErrAmountNotPositive
		}

		if strings.TrimSpace(transfer.FromSource) == strings.TrimSpace(transfer.ToSource) {
			return ErrTransferSameSource
		}

		from, err := sourceByName(tx, transfer.FromSource)
		if err != nil {
			return err
		}

		to, err := sourceByName(tx, transfer.ToSource)
		if err != nil {
			return err
		}

		if amount.GreaterThan(from.Balance) {
			return ErrSourceBalanceInsufficient
		}

		from.Balance = from.Balance.Sub(amount)
		err = tx.Save(&from).Error
		if err != nil {
			return err
		}

		to.Balance = to.Balance.Add(amount)
		err = tx.Save(&to).Error
		if err != nil {
			return err
		}

		movement = Movement{
			Date:        transfer.Date,
			Kind:        MovementTransfer,
			Description: transfer.Description,
			Amount:      amount,
			FromSource:  from.Name,
			ToSource:    to.Name,
		}
		return tx.Create(&movement).Error
	})
	if err != nil {
		return Movement{}, err
	}

	return movement, nil
}
