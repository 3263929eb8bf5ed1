// Package dbtest opens isolated in-memory SQLite databases with the
// dashboard schema for tests.
package dbtest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const schema = `
CREATE TABLE customers (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL,
	image_url TEXT NOT NULL DEFAULT ''
);
CREATE TABLE invoices (
	id INTEGER PRIMARY KEY,
	customer_id TEXT NOT NULL REFERENCES customers(id),
	amount INTEGER NOT NULL,
	status TEXT NOT NULL,
	date DATE NOT NULL
);
`

// Open returns a single-connection database with foreign keys enforced.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return db
}

// SeedCustomer inserts one customer row.
func SeedCustomer(t *testing.T, db *gorm.DB, id, name, email string) {
	t.Helper()
	err := db.Exec(
		`INSERT INTO customers (id, name, email, image_url) VALUES (?, ?, ?, ?)`,
		id, name, email, "/customers/"+id+".png",
	).Error
	if err != nil {
		t.Fatalf("seed customer: %v", err)
	}
}
