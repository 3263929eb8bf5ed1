package service

import (
	"context"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/invoicedesk/internal/cache"
	"github.com/smallbiznis/invoicedesk/internal/config"
	customerdomain "github.com/smallbiznis/invoicedesk/internal/customer/domain"
	dashboard "github.com/smallbiznis/invoicedesk/internal/dashboard/domain"
	invoicedomain "github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	"github.com/smallbiznis/invoicedesk/internal/invoice/format"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Cfg       config.Config
	Log       *zap.Logger
	Customers customerdomain.Repository
	Store     cache.Store
	Dashboard *config.DashboardConfigHolder
}

// Service computes the summary cards. Results carry the invoices path tag so
// the invalidation emitted after each invoice mutation refreshes them too.
type Service struct {
	db        *gorm.DB
	cfg       config.Config
	log       *zap.Logger
	customers customerdomain.Repository
	store     cache.Store
	dashboard *config.DashboardConfigHolder
}

func NewService(p Params) dashboard.Service {
	return &Service{
		db:        p.DB,
		cfg:       p.Cfg,
		log:       p.Log.Named("dashboard.service"),
		customers: p.Customers,
		store:     p.Store,
		dashboard: p.Dashboard,
	}
}

var cacheTags = []string{invoicedomain.InvoicesPath, customerdomain.CustomersPath}

type invoiceTotalsRow struct {
	InvoiceCount int64 `gorm:"column:invoice_count"`
	Paid         int64 `gorm:"column:paid"`
	Pending      int64 `gorm:"column:pending"`
}

func (s *Service) Cards(ctx context.Context) (dashboard.CardData, error) {
	symbol := s.dashboard.Get().CurrencySymbol
	return cache.Remember(ctx, s.store, s.log, cache.Key("dashboard", "cards", symbol), s.cfg.Cache.TTL, cacheTags,
		func(ctx context.Context) (dashboard.CardData, error) {
			var totals invoiceTotalsRow
			err := s.db.WithContext(ctx).Raw(
				`SELECT COUNT(*) AS invoice_count,
				        COALESCE(SUM(CASE WHEN status = ? THEN amount ELSE 0 END), 0) AS paid,
				        COALESCE(SUM(CASE WHEN status = ? THEN amount ELSE 0 END), 0) AS pending
				 FROM invoices`,
				invoicedomain.StatusPaid,
				invoicedomain.StatusPending,
			).Scan(&totals).Error
			if err != nil {
				return dashboard.CardData{}, err
			}

			customers, err := s.customers.Count(ctx, s.db)
			if err != nil {
				return dashboard.CardData{}, err
			}

			return dashboard.CardData{
				NumberOfInvoices:   totals.InvoiceCount,
				NumberOfCustomers:  customers,
				TotalPaid:          totals.Paid,
				TotalPending:       totals.Pending,
				TotalPaidFormatted: format.FormatCurrency(totals.Paid, symbol),
				TotalPendingFormat: format.FormatCurrency(totals.Pending, symbol),
			}, nil
		})
}

type latestInvoiceRow struct {
	ID       snowflake.ID `gorm:"column:id"`
	Name     string       `gorm:"column:name"`
	Email    string       `gorm:"column:email"`
	ImageURL string       `gorm:"column:image_url"`
	Amount   int64        `gorm:"column:amount"`
	Date     time.Time    `gorm:"column:date"`
}

func (s *Service) LatestInvoices(ctx context.Context) (dashboard.LatestInvoicesResponse, error) {
	dash := s.dashboard.Get()
	limit := dash.LatestInvoices
	if limit <= 0 {
		limit = config.DefaultDashboardConfig().LatestInvoices
	}

	key := cache.Key("dashboard", "latest", strconv.Itoa(limit), dash.CurrencySymbol)
	return cache.Remember(ctx, s.store, s.log, key, s.cfg.Cache.TTL, cacheTags,
		func(ctx context.Context) (dashboard.LatestInvoicesResponse, error) {
			var rows []latestInvoiceRow
			err := s.db.WithContext(ctx).Raw(
				`SELECT i.id, c.name, c.email, c.image_url, i.amount, i.date
				 FROM invoices i
				 JOIN customers c ON i.customer_id = c.id
				 ORDER BY i.date DESC, i.id DESC
				 LIMIT ?`,
				limit,
			).Scan(&rows).Error
			if err != nil {
				return dashboard.LatestInvoicesResponse{}, err
			}

			invoices := make([]dashboard.LatestInvoice, 0, len(rows))
			for _, row := range rows {
				invoices = append(invoices, dashboard.LatestInvoice{
					ID:              row.ID,
					Name:            row.Name,
					Email:           row.Email,
					ImageURL:        row.ImageURL,
					Amount:          row.Amount,
					AmountFormatted: format.FormatCurrency(row.Amount, dash.CurrencySymbol),
					Date:            row.Date,
				})
			}
			return dashboard.LatestInvoicesResponse{Invoices: invoices}, nil
		})
}
