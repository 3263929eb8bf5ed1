// Package domain contains the invoice models and the contracts between the
// mutation pipeline and its collaborators.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// InvoicesPath is the dashboard path whose data every invoice mutation invalidates.
const InvoicesPath = "/dashboard/invoices"

// Status is the payment state of an invoice.
type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
)

// ParseStatus accepts only the exact lowercase values.
func ParseStatus(raw string) (Status, bool) {
	switch Status(raw) {
	case StatusPending, StatusPaid:
		return Status(raw), true
	default:
		return "", false
	}
}

// Invoice is a persisted invoice row. Amount is in minor units.
type Invoice struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	CustomerID string       `gorm:"column:customer_id;not null;index" json:"customer_id"`
	Amount     int64        `gorm:"not null" json:"amount"`
	Status     Status       `gorm:"type:text;not null" json:"status"`
	Date       time.Time    `gorm:"type:date;not null" json:"date"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// InvoiceRow is one line of the filtered invoices table.
type InvoiceRow struct {
	ID              snowflake.ID `json:"id"`
	CustomerID      string       `json:"customer_id"`
	Name            string       `json:"name"`
	Email           string       `json:"email"`
	ImageURL        string       `json:"image_url"`
	Amount          int64        `json:"amount"`
	AmountFormatted string       `json:"amount_formatted" gorm:"-"`
	Date            time.Time    `json:"date"`
	Status          Status       `json:"status"`
}

// InvoiceForm prefills the edit form; Amount is in major units.
type InvoiceForm struct {
	ID         snowflake.ID    `json:"id"`
	CustomerID string          `json:"customer_id"`
	Amount     decimal.Decimal `json:"amount"`
	Status     Status          `json:"status"`
}
