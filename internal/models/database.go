package models

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	go_sqlite "github.com/glebarez/go-sqlite"
	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var DB *gorm.DB

type FZContext string

const (
	DBContextURL FZContext = "finanzas-backend-url"
)

// DefaultSources is used to seed the source ledger when the SOURCES
// environment variable is not set.
const DefaultSources = "Cash,WalletA,WalletB"

// Connect opens the SQLite database and configures the connection pool.
func Connect(dsn string) error {
	return ConnectWithSources(dsn, DefaultSources)
}

// ConnectWithSources opens the SQLite database and seeds the source ledger
// with the comma separated list of source names passed in.
//
// Sources are a fixed set configured at setup, not a user managed resource,
// so seeding happens here and nowhere else.
func ConnectWithSources(dsn, sources string) error {
	config := &gorm.Config{
		Logger: &logger{
			Logger: log.Logger,
		},
	}

	// Migration with foreign keys disabled since we're dropping tables
	// during migration
	//
	// sqlite does not support ALTER COLUMN, so tables are copied to a temporary table,
	// then the table is dropped and recreated
	db, err := gorm.Open(sqlite.Open(dsn), config)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	err = migrate(db)
	if err != nil {
		return err
	}

	// Close the connection
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database object: %w", err)
	}
	sqlDB.Close()

	// Now, reconnect with foreign keys enabled
	dsn = fmt.Sprintf("%s?_pragma=foreign_keys(1)", dsn)
	db, err = gorm.Open(sqlite.Open(dsn), config)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err = db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database object: %w", err)
	}

	// Get new connections after one hour
	sqlDB.SetConnMaxLifetime(time.Hour)

	// This is done to prevent SQLITE_BUSY errors.
	// If you have ideas how to improve this, you are very welcome to open an issue or a PR. Thank you!
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetMaxOpenConns(1)

	// Query callbacks
	err = db.Callback().Query().After("*").Register("finanzas:after_query", queryCallback)
	if err != nil {
		return err
	}

	err = db.Callback().Query().After("*").Register("finanzas:after_query_general", generalCallback)
	if err != nil {
		return err
	}

	// Create callbacks
	err = db.Callback().Create().After("*").Register("finanzas:after_create", createUpdateCallback)
	if err != nil {
		return err
	}

	err = db.Callback().Create().After("*").Register("finanzas:after_create_general", generalCallback)
	if err != nil {
		return err
	}

	// Update callbacks
	err = db.Callback().Update().After("*").Register("finanzas:after_update", createUpdateCallback)
	if err != nil {
		return err
	}

	err = db.Callback().Update().After("*").Register("finanzas:after_update_general", generalCallback)
	if err != nil {
		return err
	}

	// Delete callbacks
	err = db.Callback().Delete().After("*").Register("finanzas:after_delete_general", generalCallback)
	if err != nil {
		return err
	}

	err = seed(db, sources)
	if err != nil {
		return err
	}

	// Set the exported variable
	DB = db

	return nil
}

// queryCallback replaces the generic "no record" error with a more user
// friendly one
func queryCallback(db *gorm.DB) {
	if errors.Is(db.Error, gorm.ErrRecordNotFound) {
		// Use the table name as information about the type of resource
		// and replace "_" with "[space]"
		name := strings.ReplaceAll(db.Statement.Table, "_", " ")

		// Replace pluralized "ies" with "y"
		match := regexp.MustCompile("ies$")
		name = match.ReplaceAllString(name, "y")

		// Remove plural "s"
		name = strings.TrimRight(name, "s")

		db.Error = fmt.Errorf("%w %s matching your query", ErrResourceNotFound, name)
	}
}

// createUpdateCallback inspects errors returned by the database for create
// and update calls and replaces them with user friendly ones
func createUpdateCallback(db *gorm.DB) {
	if db.Error == nil {
		return
	}

	// Envelope names must be unique
	if strings.Contains(db.Error.Error(), "UNIQUE constraint failed: envelopes.name") {
		db.Error = ErrEnvelopeNameNotUnique
	}

	// Source names must be unique
	if strings.Contains(db.Error.Error(), "UNIQUE constraint failed: sources.name") {
		db.Error = ErrSourceNameNotUnique
	}

	// Fixed expense template names must be unique
	if strings.Contains(db.Error.Error(), "UNIQUE constraint failed: fixed_expenses.name") {
		db.Error = ErrFixedExpenseNameNotUnique
	}

	// Both ends of a transfer need to be different sources
	if strings.Contains(db.Error.Error(), "CHECK constraint failed: transfer_sources_different") {
		db.Error = ErrTransferSameSource
	}
}

// generalCallback handles unspecified errors.
//
// For these errors, we cannot provide the user with a helpful message.
// Instead, the error is logged and we return a general message to users.
func generalCallback(db *gorm.DB) {
	if db.Error == nil {
		return
	}

	// "sql: database is closed" is hard-coded in the sql module, see
	// https://cs.opensource.google/go/go/+/master:src/database/sql/sql.go;l=1298;drc=0d018b49e33b1383dc0ae5cc968e800dffeeaf7d
	if db.Error.Error() == "sql: database is closed" || reflect.TypeOf(db.Error) == reflect.TypeOf(&go_sqlite.Error{}) {
		// A general error where we cannot provide more useful information to the end user
		// We log the error and provide a general error message so that server admins can debug
		log.Error().Msgf("%T: %v", db.Error, db.Error.Error())
		db.Error = ErrGeneral

		return
	}
}

// transaction runs fn in a database transaction.
//
// Errors from beginning or committing the transaction never pass through the
// gorm callbacks, so the translation into user facing errors happens here.
func transaction(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	err := db.Transaction(fn)
	if err == nil {
		return nil
	}

	if err.Error() == "sql: database is closed" || reflect.TypeOf(err) == reflect.TypeOf(&go_sqlite.Error{}) {
		log.Error().Msgf("%T: %v", err, err.Error())
		return ErrGeneral
	}

	return err
}

// migrate migrates all models to the schema defined in the code.
func migrate(db *gorm.DB) (err error) {
	err = db.AutoMigrate(Ledger{}, Source{}, Envelope{}, FixedExpense{}, Loan{}, Movement{})
	if err != nil {
		return fmt.Errorf("error during DB migration: %w", err)
	}

	return nil
}

// seed creates the singleton ledger row and the fixed source set.
// It does nothing on a database that already holds data.
func seed(db *gorm.DB, sources string) error {
	var count int64
	err := db.Model(&Ledger{}).Count(&count).Error
	if err != nil {
		return err
	}

	if count == 0 {
		err = db.Create(&Ledger{PercentageAvailable: decimal.NewFromInt(100)}).Error
		if err != nil {
			return fmt.Errorf("error initializing the ledger: %w", err)
		}
	}

	err = db.Model(&Source{}).Count(&count).Error
	if err != nil {
		return err
	}

	if count != 0 {
		return nil
	}

	for _, name := range strings.Split(sources, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		err = db.Create(&Source{Name: name}).Error
		if err != nil {
			return fmt.Errorf("error seeding source %q: %w", name, err)
		}
	}

	return nil
}
