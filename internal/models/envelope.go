package models

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Envelope represents a budget category. Each envelope owns a share of the
// percentage pool and a balance that is maintained incrementally by the
// movement operations.
type Envelope struct {
	DefaultModel
	Name       string          `json:"name" gorm:"uniqueIndex:envelope_name" example:"Groceries"` // Name of the envelope
	Balance    decimal.Decimal `json:"balance" gorm:"type:DECIMAL(20,8)" example:"180.40"`        // Money currently assigned to the envelope
	Percentage decimal.Decimal `json:"percentage" gorm:"type:DECIMAL(20,8)" example:"30"`         // Share of general deposits this envelope receives
}

var (
	ErrEnvelopeNameEmpty           = errors.New("the envelope name must not be empty")
	ErrEnvelopeNameNotUnique       = errors.New("the envelope name is already in use")
	ErrEnvelopePercentageInvalid   = errors.New("the envelope percentage must be larger than zero and must not exceed the available percentage")
	ErrEnvelopeBalanceInsufficient = errors.New("the envelope balance is too low for this operation")
)

func (e *Envelope) BeforeSave(_ *gorm.DB) error {
	e.Name = strings.TrimSpace(e.Name)
	return nil
}

func (Envelope) Export() (json.RawMessage, error) {
	var envelopes []Envelope
	err := DB.Unscoped().Where(&Envelope{}).Find(&envelopes).Error
	if err != nil {
		return nil, err
	}

	j, err := json.Marshal(&envelopes)
	if err != nil {
		return json.RawMessage{}, err
	}
	return json.RawMessage(j), nil
}

// EnvelopeUpdate contains the fields of an envelope users can change
// after creation. Nil fields are left untouched.
type EnvelopeUpdate struct {
	Name       *string
	Percentage *decimal.Decimal
}

// allEnvelopes returns every envelope in creation order. The order matters:
// it breaks ties when distributing leftover cents, so it has to be stable.
func allEnvelopes(tx *gorm.DB) ([]Envelope, error) {
	var envelopes []Envelope
	err := tx.Order("created_at ASC, id ASC").Find(&envelopes).Error
	return envelopes, err
}

// envelopeByName loads an envelope by its name. Movements reference
// envelopes by name, so reversal resolves them the same way.
func envelopeByName(tx *gorm.DB, name string) (Envelope, error) {
	var envelope Envelope
	err := tx.Where(&Envelope{Name: strings.TrimSpace(name)}).First(&envelope).Error
	return envelope, err
}

// CreateEnvelope creates a new envelope, drawing its percentage from the
// available pool.
//
// When money is already in play, the new envelope starts with its share of
// the current total. That money is created out of thin air on purpose: it
// mirrors what deleting an envelope discards.
func CreateEnvelope(db *gorm.DB, envelope Envelope) (Envelope, error) {
	err := transaction(db, func(tx *gorm.DB) error {
		if strings.TrimSpace(envelope.Name) == "" {
			return ErrEnvelopeNameEmpty
		}

		l, err := LoadLedger(tx)
		if err != nil {
			return err
		}

		if !envelope.Percentage.IsPositive() || envelope.Percentage.GreaterThan(l.PercentageAvailable) {
			return ErrEnvelopePercentageInvalid
		}

		envelope.Balance = decimal.Zero
		if l.TotalGeneral.IsPositive() {
			envelope.Balance = l.TotalGeneral.Mul(envelope.Percentage).Div(decimal.NewFromInt(100)).Round(2)
		}

		err = tx.Create(&envelope).Error
		if err != nil {
			return err
		}

		l.PercentageAvailable = l.PercentageAvailable.Sub(envelope.Percentage)
		return tx.Save(&l).Error
	})
	if err != nil {
		return Envelope{}, err
	}

	return envelope, nil
}

// UpdateEnvelope renames an envelope and/or changes its percentage.
//
// The percentage change validates against the pool plus the envelope's own
// share before anything is written, so a rejected change never touches the
// pool.
func UpdateEnvelope(db *gorm.DB, id uuid.UUID, update EnvelopeUpdate) (Envelope, error) {
	var envelope Envelope

	err := transaction(db, func(tx *gorm.DB) error {
		err := tx.First(&envelope, id).Error
		if err != nil {
			return err
		}

		if update.Name != nil {
			if strings.TrimSpace(*update.Name) == "" {
				return ErrEnvelopeNameEmpty
			}
			envelope.Name = *update.Name
		}

		if update.Percentage != nil {
			l, err := LoadLedger(tx)
			if err != nil {
				return err
			}

			// The envelope's own share is available to itself
			available := l.PercentageAvailable.Add(envelope.Percentage)
			if !update.Percentage.IsPositive() || update.Percentage.GreaterThan(available) {
				return ErrEnvelopePercentageInvalid
			}

			l.PercentageAvailable = available.Sub(*update.Percentage)
			envelope.Percentage = *update.Percentage

			err = tx.Save(&l).Error
			if err != nil {
				return err
			}
		}

		return tx.Save(&envelope).Error
	})
	if err != nil {
		return Envelope{}, err
	}

	return envelope, nil
}

// DeleteEnvelope removes an envelope, returning its percentage to the pool.
// The balance is discarded, it is not refunded to any source.
func DeleteEnvelope(db *gorm.DB, id uuid.UUID) error {
	return transaction(db, func(tx *gorm.DB) error {
		var envelope Envelope
		err := tx.First(&envelope, id).Error
		if err != nil {
			return err
		}

		l, err := LoadLedger(tx)
		if err != nil {
			return err
		}

		l.PercentageAvailable = l.PercentageAvailable.Add(envelope.Percentage)
		err = tx.Save(&l).Error
		if err != nil {
			return err
		}

		// Fixed expense templates bound to this envelope fall back to
		// being unconfigured
		err = tx.Model(&FixedExpense{}).Where(&FixedExpense{EnvelopeID: &envelope.ID}).Update("envelope_id", nil).Error
		if err != nil {
			return err
		}

		return tx.Unscoped().Delete(&envelope).Error
	})
}
