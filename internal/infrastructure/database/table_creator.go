package database

import (
	"database/sql"
	"fmt"
)

var tables = []string{
	`CREATE TABLE IF NOT EXISTS screens (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		payload TEXT NOT NULL,
		created TIMESTAMP NOT NULL,
		changed TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS services (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		payload TEXT NOT NULL,
		created TIMESTAMP NOT NULL,
		changed TIMESTAMP NOT NULL
	)`,
}

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_screens_name ON screens(name)`,
	`CREATE INDEX IF NOT EXISTS idx_services_name ON services(name)`,
}

// TableCreator handles creation of the menu store schema.
type TableCreator struct{}

// NewTableCreator creates a new TableCreator.
func NewTableCreator() *TableCreator {
	return &TableCreator{}
}

// CreateSchema executes all queries needed to build the menu tables and
// indexes. Every statement is idempotent so it runs on each startup.
func (tc *TableCreator) CreateSchema(db *sql.DB) error {
	for _, tableSQL := range tables {
		if _, err := db.Exec(tableSQL); err != nil {
			return fmt.Errorf("failed to create table for query [%s]: %w", tableSQL, err)
		}
	}

	for _, indexSQL := range indexes {
		if _, err := db.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index for query [%s]: %w", indexSQL, err)
		}
	}
	return nil
}
