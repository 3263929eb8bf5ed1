package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

// CardData holds the four summary cards on the dashboard home.
type CardData struct {
	NumberOfInvoices   int64  `json:"number_of_invoices"`
	NumberOfCustomers  int64  `json:"number_of_customers"`
	TotalPaid          int64  `json:"total_paid_invoices"`
	TotalPending       int64  `json:"total_pending_invoices"`
	TotalPaidFormatted string `json:"total_paid_formatted"`
	TotalPendingFormat string `json:"total_pending_formatted"`
}

// LatestInvoice is one row of the "latest invoices" panel.
type LatestInvoice struct {
	ID              snowflake.ID `json:"id"`
	Name            string       `json:"name"`
	Email           string       `json:"email"`
	ImageURL        string       `json:"image_url"`
	Amount          int64        `json:"amount"`
	AmountFormatted string       `json:"amount_formatted"`
	Date            time.Time    `json:"date"`
}

type LatestInvoicesResponse struct {
	Invoices []LatestInvoice `json:"invoices"`
}

type Service interface {
	Cards(ctx context.Context) (CardData, error)
	LatestInvoices(ctx context.Context) (LatestInvoicesResponse, error)
}
