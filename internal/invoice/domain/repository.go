package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/invoicedesk/pkg/db/pagination"
)

type InsertParams struct {
	CustomerID       string
	AmountMinorUnits int64
	Status           Status
	Date             time.Time
}

type UpdateParams struct {
	CustomerID       string
	AmountMinorUnits int64
	Status           Status
}

// Repository is the persistence gateway for the invoices table. Update and
// Delete report zero rows, not an error, when id does not exist.
type Repository interface {
	Insert(ctx context.Context, params InsertParams) (snowflake.ID, error)
	Update(ctx context.Context, id snowflake.ID, params UpdateParams) (int64, error)
	Delete(ctx context.Context, id snowflake.ID) (int64, error)

	Search(ctx context.Context, query string, page pagination.Page) ([]InvoiceRow, error)
	Count(ctx context.Context, query string) (int64, error)
	FindByID(ctx context.Context, id snowflake.ID) (*Invoice, error)
}
