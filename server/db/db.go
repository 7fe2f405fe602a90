package db

import (
	"fmt"
	"game-lottery/server/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
	"os"
	"path"

	_ "github.com/mattn/go-sqlite3"
)

// DefaultDSN is the sqlite file under ~/.games used when no path is configured.
func DefaultDSN() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	homeFullDir := path.Join(homeDir, ".games")
	if errs := os.MkdirAll(homeFullDir, 0700); errs != nil {
		return "", errs
	}
	return path.Join(homeFullDir, "lottery.db?cache=shared"), nil
}

// Open opens the contract storage and migrates its tables.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("unable to open %s: %w", dsn, err)
	}

	// one connection serializes writers and avoids "database is locked"
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err = db.AutoMigrate(model.Contract{}, model.Participation{}, model.Round{}, model.PushRecord{}, Account{}, AccountHistory{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return db, nil
}
