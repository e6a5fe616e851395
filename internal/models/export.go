package models

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Import replaces the whole database content with the resources from an
// export blob. The blob's keys are the model names the export writes.
//
// Resources are restored with their original IDs so that references between
// them stay intact.
func Import(db *gorm.DB, data map[string]json.RawMessage) error {
	return transaction(db, func(tx *gorm.DB) error {
		// Referencing models go first so that foreign key checks pass
		wipe := []any{
			Movement{},
			Loan{},
			FixedExpense{},
			Envelope{},
			Source{},
			Ledger{},
		}

		for _, model := range wipe {
			err := tx.Unscoped().Where("true").Delete(&model).Error
			if err != nil {
				return err
			}
		}

		if err := restore[Ledger](tx, data, "Ledger"); err != nil {
			return err
		}
		if err := restore[Source](tx, data, "Source"); err != nil {
			return err
		}
		if err := restore[Envelope](tx, data, "Envelope"); err != nil {
			return err
		}
		if err := restore[FixedExpense](tx, data, "FixedExpense"); err != nil {
			return err
		}
		if err := restore[Loan](tx, data, "Loan"); err != nil {
			return err
		}
		if err := restore[Movement](tx, data, "Movement"); err != nil {
			return err
		}

		// A blob without a ledger still needs the singleton row
		var count int64
		err := tx.Model(&Ledger{}).Count(&count).Error
		if err != nil {
			return err
		}

		if count == 0 {
			return tx.Create(&Ledger{PercentageAvailable: decimal.NewFromInt(100)}).Error
		}

		return nil
	})
}

// restore inserts all rows of one model from the export blob. A missing key
// is not an error, the model simply stays empty.
func restore[T any](tx *gorm.DB, data map[string]json.RawMessage, key string) error {
	raw, ok := data[key]
	if !ok || len(raw) == 0 {
		return nil
	}

	var rows []T
	err := json.Unmarshal(raw, &rows)
	if err != nil {
		return fmt.Errorf("error parsing %s resources: %w", key, err)
	}

	for i := range rows {
		err = tx.Create(&rows[i]).Error
		if err != nil {
			return err
		}
	}

	return nil
}
