package models

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Source represents a pool of actual money, e.g. a cash wallet or the
// balance of a banking app. The set of sources is fixed at setup time.
type Source struct {
	DefaultModel
	Name    string          `json:"name" gorm:"uniqueIndex:source_name" example:"Cash"`       // Name of the source
	Balance decimal.Decimal `json:"balance" gorm:"type:DECIMAL(20,8)" example:"2735.17"`      // Money currently held in the source
}

var (
	ErrSourceNameNotUnique        = errors.New("the source name is already in use")
	ErrSourceBalanceInsufficient  = errors.New("the source balance is too low for this operation")
	ErrTransferSameSource         = errors.New("a transfer needs two different sources")
)

func (s *Source) BeforeSave(_ *gorm.DB) error {
	s.Name = strings.TrimSpace(s.Name)
	return nil
}

func (Source) Export() (json.RawMessage, error) {
	var sources []Source
	err := DB.Unscoped().Where(&Source{}).Find(&sources).Error
	if err != nil {
		return nil, err
	}

	j, err := json.Marshal(&sources)
	if err != nil {
		return json.RawMessage{}, err
	}
	return json.RawMessage(j), nil
}

// sourceByName loads a source by its name, the identity sources are
// referenced by throughout the movement log.
func sourceByName(tx *gorm.DB, name string) (Source, error) {
	var source Source
	err := tx.Where(&Source{Name: strings.TrimSpace(name)}).First(&source).Error
	return source, err
}
