package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Revert applies the inverse effect of a movement and removes it from the
// log. Reversal is atomic: when any referenced source or envelope no longer
// exists, or inverting would drive a balance negative, nothing changes and
// the error is returned.
//
// RESET movements and movements recorded by a loan are never revertible. A
// loan tracks its remaining debt separately and is paid back through the
// repayment operation, not by undoing its movements.
func Revert(db *gorm.DB, id uuid.UUID) error {
	return transaction(db, func(tx *gorm.DB) error {
		var movement Movement
		err := tx.First(&movement, id).Error
		if err != nil {
			return err
		}

		if movement.LoanID != nil {
			return ErrMovementNotRevertible
		}

		err = invert(tx, movement, false)
		if err != nil {
			return err
		}

		// Reverted movements do not stay behind as tombstones
		return tx.Unscoped().Delete(&movement).Error
	})
}

// invert applies the inverse effect of a movement, switching exhaustively on
// its kind.
//
// With clamp set, debits stop at zero instead of failing. That mode is only
// used by the statistics window reset, which clamps balances by contract.
func invert(tx *gorm.DB, movement Movement, clamp bool) error {
	amount := movement.Amount.Round(2)

	switch movement.Kind {
	case MovementExpense:
		// The money goes back to both the source and the envelope
		source, err := sourceByName(tx, movement.SourceName)
		if err != nil {
			return err
		}

		envelope, err := envelopeByName(tx, movement.EnvelopeName)
		if err != nil {
			return err
		}

		source.Balance = source.Balance.Add(amount)
		err = tx.Save(&source).Error
		if err != nil {
			return err
		}

		envelope.Balance = envelope.Balance.Add(amount)
		err = tx.Save(&envelope).Error
		if err != nil {
			return err
		}

		return updateTotals(tx, amount, decimal.Zero, amount.Neg())

	case MovementIncome:
		source, err := sourceByName(tx, movement.SourceName)
		if err != nil {
			return err
		}

		if movement.EnvelopeName != "" {
			// Direct income was not redistributed, so only the earmarked
			// envelope is debited
			envelope, err := envelopeByName(tx, movement.EnvelopeName)
			if err != nil {
				return err
			}

			balance, err := debit(envelope.Balance, amount, clamp, ErrEnvelopeBalanceInsufficient)
			if err != nil {
				return err
			}

			envelope.Balance = balance
			err = tx.Save(&envelope).Error
			if err != nil {
				return err
			}
		} else {
			// General income is removed proportionally with the current
			// percentages. When percentages changed since the deposit this
			// is an approximation, and a documented one.
			err = withdrawDistributed(tx, amount, clamp)
			if err != nil {
				return err
			}
		}

		balance, err := debit(source.Balance, amount, clamp, ErrSourceBalanceInsufficient)
		if err != nil {
			return err
		}

		source.Balance = balance
		err = tx.Save(&source).Error
		if err != nil {
			return err
		}

		return updateTotals(tx, amount.Neg(), amount.Neg(), decimal.Zero)

	case MovementTransfer:
		from, err := sourceByName(tx, movement.FromSource)
		if err != nil {
			return err
		}

		to, err := sourceByName(tx, movement.ToSource)
		if err != nil {
			return err
		}

		balance, err := debit(to.Balance, amount, clamp, ErrSourceBalanceInsufficient)
		if err != nil {
			return err
		}

		to.Balance = balance
		err = tx.Save(&to).Error
		if err != nil {
			return err
		}

		from.Balance = from.Balance.Add(amount)
		return tx.Save(&from).Error

	case MovementReset:
		return ErrMovementNotRevertible

	default:
		return ErrMovementKindInvalid
	}
}

// debit subtracts amount from balance, either failing or clamping at zero.
func debit(balance, amount decimal.Decimal, clamp bool, insufficient error) (decimal.Decimal, error) {
	if amount.GreaterThan(balance) {
		if !clamp {
			return balance, insufficient
		}
		return decimal.Zero, nil
	}

	return balance.Sub(amount), nil
}

// withdrawDistributed removes the amount from all envelopes proportionally
// with their current percentages, using the same split as deposits.
func withdrawDistributed(tx *gorm.DB, amount decimal.Decimal, clamp bool) error {
	envelopes, err := allEnvelopes(tx)
	if err != nil {
		return err
	}

	weights := make([]decimal.Decimal, len(envelopes))
	for i, envelope := range envelopes {
		weights[i] = envelope.Percentage
	}

	shares := SplitByPercentage(amount, weights)

	// Validate all shares before writing anything
	if !clamp {
		for i, share := range shares {
			if share.GreaterThan(envelopes[i].Balance) {
				return ErrEnvelopeBalanceInsufficient
			}
		}
	}

	for i, share := range shares {
		balance, err := debit(envelopes[i].Balance, share, clamp, ErrEnvelopeBalanceInsufficient)
		if err != nil {
			return err
		}

		envelopes[i].Balance = balance
		err = tx.Save(&envelopes[i]).Error
		if err != nil {
			return err
		}
	}

	return nil
}

// updateTotals adjusts the running totals on the ledger by the given deltas.
func updateTotals(tx *gorm.DB, general, income, expense decimal.Decimal) error {
	l, err := LoadLedger(tx)
	if err != nil {
		return err
	}

	l.TotalGeneral = l.TotalGeneral.Add(general)
	l.TotalIncome = l.TotalIncome.Add(income)
	l.TotalExpense = l.TotalExpense.Add(expense)

	return tx.Save(&l).Error
}
