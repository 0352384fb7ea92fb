package storage

import (
	"fmt"

	"github.com/dnsweep/dnsweep/evt"
	"github.com/dnsweep/dnsweep/log"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store owns the database connection pool and migrates the row tables
type Store struct {
	db *gorm.DB
}

// Writer appends rows on behalf of exactly one worker. It must not be
// shared between workers.
type Writer struct {
	db     *gorm.DB
	logger *logrus.Entry
}

// NewDatabaseStore opens the configured database and migrates the schema
func NewDatabaseStore(dbType, target string) (*Store, error) {
	switch dbType {
	case "mysql":
		return NewStore(mysql.Open(target))
	case "postgresql":
		return NewStore(postgres.Open(target))
	}

	return nil, fmt.Errorf("incorrect database type provided: %s", dbType)
}

// NewStore opens a database via the given dialector and migrates the schema
func NewStore(target gorm.Dialector) (*Store, error) {
	db, err := gorm.Open(target, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("can't create database connection: %w", err)
	}

	if err := databaseMigration(db); err != nil {
		return nil, fmt.Errorf("can't perform auto migration: %w", err)
	}

	return &Store{db: db}, nil
}

func databaseMigration(db *gorm.DB) error {
	return db.AutoMigrate(
		&AddressRecord{},
		&KeyRecord{},
		&MXRecord{},
		&SignatureRecord{},
		&DenialRecord{},
	)
}

// Writer checks out a writer for one worker lifetime
func (s *Store) Writer() *Writer {
	return &Writer{
		db:     s.db.Session(&gorm.Session{NewDB: true}),
		logger: log.PrefixedLog("storage"),
	}
}

// Insert commits one row in its own transaction. A failed insert never
// leaves a partial row behind.
func (w *Writer) Insert(row Row) error {
	if err := w.db.Create(row).Error; err != nil {
		evt.Bus().Publish(evt.ScanRowError, row.TableName())

		return fmt.Errorf("can't insert row into %s: %w", row.TableName(), err)
	}

	w.logger.Tracef("stored row in %s", row.TableName())
	evt.Bus().Publish(evt.ScanRowStored, row.TableName())

	return nil
}
