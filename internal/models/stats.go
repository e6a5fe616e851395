package models

import (
	"errors"
	"time"

	"github.com/jgomezprojects/Finanzas/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EnvelopeStats is the reconstructed money flow of one envelope over a
// statistics window.
type EnvelopeStats struct {
	Name    string          `json:"name" example:"Groceries"`                           // Name of the envelope
	Income  decimal.Decimal `json:"income" example:"120.00"`                            // Money that flowed into the envelope during the window
	Expense decimal.Decimal `json:"expense" example:"86.40"`                            // Money that flowed out of the envelope during the window
}

// statisticsMovements returns the movements a statistics window considers:
// everything in the window except transfers, resets and loan movements.
func statisticsMovements(tx *gorm.DB, window types.Window, now time.Time) ([]Movement, error) {
	var movements []Movement
	err := tx.
		Where("date >= ?", window.Start(now)).
		Where("kind IN ?", []MovementKind{MovementIncome, MovementExpense}).
		Where("loan_id IS NULL").
		Order("date ASC, created_at ASC").
		Find(&movements).Error

	return movements, err
}

// Statistics reconstructs per envelope income and expense totals for the
// given window.
//
// Movements carrying an envelope name are attributed directly. General
// income is attributed with the current envelope percentages, not the ones
// at deposit time. Results for past windows therefore shift when
// percentages are edited later, which is documented behavior.
func Statistics(db *gorm.DB, window types.Window) ([]EnvelopeStats, error) {
	var stats []EnvelopeStats

	err := transaction(db, func(tx *gorm.DB) error {
		envelopes, err := allEnvelopes(tx)
		if err != nil {
			return err
		}

		weights := make([]decimal.Decimal, len(envelopes))
		index := make(map[string]int, len(envelopes))
		stats = make([]EnvelopeStats, len(envelopes))
		for i, envelope := range envelopes {
			weights[i] = envelope.Percentage
			index[envelope.Name] = i
			stats[i] = EnvelopeStats{
				Name:    envelope.Name,
				Income:  decimal.Zero,
				Expense: decimal.Zero,
			}
		}

		movements, err := statisticsMovements(tx, window, time.Now())
		if err != nil {
			return err
		}

		for _, movement := range movements {
			if movement.EnvelopeName != "" {
				// Movements referencing deleted envelopes are orphaned and
				// cannot be attributed anymore
				i, ok := index[movement.EnvelopeName]
				if !ok {
					continue
				}

				if movement.Kind == MovementIncome {
					stats[i].Income = stats[i].Income.Add(movement.Amount)
				} else {
					stats[i].Expense = stats[i].Expense.Add(movement.Amount)
				}
				continue
			}

			if movement.Kind == MovementIncome {
				for i, share := range SplitByPercentage(movement.Amount, weights) {
					stats[i].Income = stats[i].Income.Add(share)
				}
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// ResetWindowResult reports what a window reset did.
type ResetWindowResult struct {
	Reverted int `json:"reverted" example:"12"` // Number of movements that were reverted and deleted
	Skipped  int `json:"skipped" example:"1"`   // Movements left in place because a referenced resource is gone
}

// ResetWindow reverses every eligible movement in the window and deletes it.
//
// Unlike single reversal this is best effort bulk work: movements whose
// source or envelope no longer exists are skipped and counted, debits clamp
// at zero, and all balances are clamped to be non-negative afterwards.
func ResetWindow(db *gorm.DB, window types.Window) (ResetWindowResult, error) {
	var result ResetWindowResult

	err := transaction(db, func(tx *gorm.DB) error {
		movements, err := statisticsMovements(tx, window, time.Now())
		if err != nil {
			return err
		}

		// Undo newest first so intermediate states stay plausible
		for i := len(movements) - 1; i >= 0; i-- {
			err = invert(tx, movements[i], true)
			if err != nil {
				// A missing source or envelope skips the movement, real
				// errors still abort the whole reset
				if errors.Is(err, ErrResourceNotFound) {
					result.Skipped++
					continue
				}
				return err
			}

			err = tx.Unscoped().Delete(&movements[i]).Error
			if err != nil {
				return err
			}
			result.Reverted++
		}

		return clampBalances(tx)
	})
	if err != nil {
		return ResetWindowResult{}, err
	}

	return result, nil
}

// clampBalances raises negative source and envelope balances to zero.
func clampBalances(tx *gorm.DB) error {
	err := tx.Model(&Source{}).Where("balance < 0").Update("balance", decimal.Zero).Error
	if err != nil {
		return err
	}

	err = tx.Model(&Envelope{}).Where("balance < 0").Update("balance", decimal.Zero).Error
	if err != nil {
		return err
	}

	l, err := LoadLedger(tx)
	if err != nil {
		return err
	}

	changed := false
	for _, total := range []*decimal.Decimal{&l.TotalGeneral, &l.TotalIncome, &l.TotalExpense} {
		if total.IsNegative() {
			*total = decimal.Zero
			changed = true
		}
	}

	if !changed {
		return nil
	}

	return tx.Save(&l).Error
}
