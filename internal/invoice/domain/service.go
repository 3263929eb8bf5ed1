package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/invoicedesk/pkg/db/pagination"
)

// MutationResult tells the presentation layer what changed and where to go.
// RedirectTo is empty for delete.
type MutationResult struct {
	InvoiceID    snowflake.ID `json:"invoice_id,omitempty"`
	RowsAffected int64        `json:"rows_affected"`
	Revalidate   []string     `json:"revalidated"`
	RedirectTo   string       `json:"redirect_to,omitempty"`
}

// Service runs the invoice mutation pipeline. Validation failures are
// returned as *FormError and storage failures as *PersistenceError.
type Service interface {
	Create(ctx context.Context, input FormInput) (MutationResult, error)
	Update(ctx context.Context, id string, input FormInput) (MutationResult, error)
	Delete(ctx context.Context, id string) (MutationResult, error)
}

type SearchRequest struct {
	Query string
	Page  int
}

type SearchResponse struct {
	pagination.PageInfo
	Invoices []InvoiceRow `json:"invoices"`
}

// QueryService serves the invoices table and the edit form.
type QueryService interface {
	Search(ctx context.Context, req SearchRequest) (SearchResponse, error)
	TotalPages(ctx context.Context, query string) (int, error)
	GetForEdit(ctx context.Context, id string) (InvoiceForm, error)
}
