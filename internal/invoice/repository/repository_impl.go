package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	"github.com/smallbiznis/invoicedesk/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct {
	db    *gorm.DB
	genID *snowflake.Node
}

func Provide(db *gorm.DB, genID *snowflake.Node) domain.Repository {
	return &repo{db: db, genID: genID}
}

func (r *repo) Insert(ctx context.Context, params domain.InsertParams) (snowflake.ID, error) {
	id := r.genID.Generate()
	err := r.db.WithContext(ctx).Exec(
		`INSERT INTO invoices (id, customer_id, amount, status, date)
		 VALUES (?, ?, ?, ?, ?)`,
		id,
		params.CustomerID,
		params.AmountMinorUnits,
		params.Status,
		params.Date,
	).Error
	if err != nil {
		return 0, fmt.Errorf("insert invoice: %w", err)
	}
	return id, nil
}

func (r *repo) Update(ctx context.Context, id snowflake.ID, params domain.UpdateParams) (int64, error) {
	result := r.db.WithContext(ctx).Exec(
		`UPDATE invoices
		 SET customer_id = ?, amount = ?, status = ?
		 WHERE id = ?`,
		params.CustomerID,
		params.AmountMinorUnits,
		params.Status,
		id,
	)
	if result.Error != nil {
		return 0, fmt.Errorf("update invoice: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *repo) Delete(ctx context.Context, id snowflake.ID) (int64, error) {
	result := r.db.WithContext(ctx).Exec(`DELETE FROM invoices WHERE id = ?`, id)
	if result.Error != nil {
		return 0, fmt.Errorf("delete invoice: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *repo) Search(ctx context.Context, query string, page pagination.Page) ([]domain.InvoiceRow, error) {
	where, args := r.searchClause(query)
	args = append(args, page.Limit(), page.Offset())

	var rows []domain.InvoiceRow
	err := r.db.WithContext(ctx).Raw(
		`SELECT i.id, i.customer_id, c.name, c.email, c.image_url, i.amount, i.date, i.status
		 FROM invoices i
		 JOIN customers c ON i.customer_id = c.id
		 WHERE `+where+`
		 ORDER BY i.date DESC, i.id DESC
		 LIMIT ? OFFSET ?`,
		args...,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) Count(ctx context.Context, query string) (int64, error) {
	where, args := r.searchClause(query)
	var total int64
	err := r.db.WithContext(ctx).Raw(
		`SELECT COUNT(*)
		 FROM invoices i
		 JOIN customers c ON i.customer_id = c.id
		 WHERE `+where,
		args...,
	).Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *repo) FindByID(ctx context.Context, id snowflake.ID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, customer_id, amount, status, date
		 FROM invoices WHERE id = ?`,
		id,
	).Scan(&invoice).Error
	if err != nil {
		return nil, err
	}
	if invoice.ID == 0 {
		return nil, nil
	}
	return &invoice, nil
}

// searchClause builds a fixed predicate; the user query is only ever bound.
func (r *repo) searchClause(query string) (string, []any) {
	pattern := "%" + escapeLike(strings.ToLower(strings.TrimSpace(query))) + "%"
	text := textType(r.db)
	clause := `(LOWER(c.name) LIKE ? ESCAPE '!'
		OR LOWER(c.email) LIKE ? ESCAPE '!'
		OR CAST(i.amount AS ` + text + `) LIKE ? ESCAPE '!'
		OR CAST(i.date AS ` + text + `) LIKE ? ESCAPE '!'
		OR LOWER(i.status) LIKE ? ESCAPE '!')`
	return clause, []any{pattern, pattern, pattern, pattern, pattern}
}

func textType(db *gorm.DB) string {
	if db != nil && db.Dialector != nil && db.Dialector.Name() == "mysql" {
		return "CHAR"
	}
	return "TEXT"
}

var likeEscaper = strings.NewReplacer(`!`, `!!`, `%`, `!%`, `_`, `!_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
