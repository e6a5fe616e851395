package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ResetAll zeroes every balance and total, deletes all loans and the whole
// movement history, then appends a single non-revertible RESET movement.
//
// Sources, envelopes and their percentages, and fixed expense templates
// survive a reset.
func ResetAll(db *gorm.DB) error {
	return transaction(db, func(tx *gorm.DB) error {
		l, err := LoadLedger(tx)
		if err != nil {
			return err
		}

		total := l.TotalGeneral

		err = tx.Model(&Source{}).Where("true").Update("balance", decimal.Zero).Error
		if err != nil {
			return err
		}

		err = tx.Model(&Envelope{}).Where("true").Update("balance", decimal.Zero).Error
		if err != nil {
			return err
		}

		err = tx.Unscoped().Where("true").Delete(&Loan{}).Error
		if err != nil {
			return err
		}

		err = tx.Unscoped().Where("true").Delete(&Movement{}).Error
		if err != nil {
			return err
		}

		l.TotalGeneral = decimal.Zero
		l.TotalIncome = decimal.Zero
		l.TotalExpense = decimal.Zero
		err = tx.Save(&l).Error
		if err != nil {
			return err
		}

		movement := Movement{
			Kind:        MovementReset,
			Description: "Reset",
			Amount:      total,
		}
		return tx.Create(&movement).Error
	})
}
