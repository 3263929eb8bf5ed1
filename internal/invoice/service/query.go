package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/smallbiznis/invoicedesk/internal/cache"
	"github.com/smallbiznis/invoicedesk/internal/config"
	"github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	"github.com/smallbiznis/invoicedesk/internal/invoice/format"
	"github.com/smallbiznis/invoicedesk/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type QueryParam struct {
	fx.In

	Cfg       config.Config
	Log       *zap.Logger
	Repo      domain.Repository
	Store     cache.Store
	Dashboard *config.DashboardConfigHolder
}

// Query serves the invoices table. Pages are cached and tagged with
// InvoicesPath so any mutation drops them.
type Query struct {
	cfg       config.Config
	log       *zap.Logger
	repo      domain.Repository
	store     cache.Store
	dashboard *config.DashboardConfigHolder
}

func NewQuery(p QueryParam) domain.QueryService {
	return &Query{
		cfg:       p.Cfg,
		log:       p.Log.Named("invoice.query"),
		repo:      p.Repo,
		store:     p.Store,
		dashboard: p.Dashboard,
	}
}

func (q *Query) Search(ctx context.Context, req domain.SearchRequest) (domain.SearchResponse, error) {
	dash := q.dashboard.Get()
	query := strings.TrimSpace(req.Query)
	page := pagination.Page{Number: req.Page, Size: dash.ItemsPerPage}.Normalize(config.DefaultDashboardConfig().ItemsPerPage)

	key := cache.Key("invoices", "search", query, strconv.Itoa(page.Number), strconv.Itoa(page.Size))
	return cache.Remember(ctx, q.store, q.log, key, q.cfg.Cache.TTL, []string{domain.InvoicesPath},
		func(ctx context.Context) (domain.SearchResponse, error) {
			rows, err := q.repo.Search(ctx, query, page)
			if err != nil {
				return domain.SearchResponse{}, err
			}
			total, err := q.repo.Count(ctx, query)
			if err != nil {
				return domain.SearchResponse{}, err
			}
			for i := range rows {
				rows[i].AmountFormatted = format.FormatCurrency(rows[i].Amount, dash.CurrencySymbol)
			}
			if rows == nil {
				rows = []domain.InvoiceRow{}
			}
			return domain.SearchResponse{
				PageInfo: pagination.BuildPageInfo(page, total),
				Invoices: rows,
			}, nil
		})
}

func (q *Query) TotalPages(ctx context.Context, query string) (int, error) {
	size := q.dashboard.Get().ItemsPerPage
	query = strings.TrimSpace(query)

	key := cache.Key("invoices", "pages", query, strconv.Itoa(size))
	return cache.Remember(ctx, q.store, q.log, key, q.cfg.Cache.TTL, []string{domain.InvoicesPath},
		func(ctx context.Context) (int, error) {
			total, err := q.repo.Count(ctx, query)
			if err != nil {
				return 0, err
			}
			return pagination.TotalPages(total, size), nil
		})
}

func (q *Query) GetForEdit(ctx context.Context, rawID string) (domain.InvoiceForm, error) {
	id, err := parseID(rawID)
	if err != nil {
		return domain.InvoiceForm{}, err
	}
	invoice, err := q.repo.FindByID(ctx, id)
	if err != nil {
		return domain.InvoiceForm{}, err
	}
	if invoice == nil {
		return domain.InvoiceForm{}, domain.ErrNotFound
	}
	return domain.InvoiceForm{
		ID:         invoice.ID,
		CustomerID: invoice.CustomerID,
		Amount:     format.FromMinorUnits(invoice.Amount),
		Status:     invoice.Status,
	}, nil
}
