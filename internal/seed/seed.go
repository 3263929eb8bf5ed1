package seed

import (
	"context"
	"errors"

	"github.com/gosimple/slug"
	"github.com/smallbiznis/invoicedesk/internal/clock"
	customerdomain "github.com/smallbiznis/invoicedesk/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type placeholderCustomer struct {
	Name  string
	Email string
}

type placeholderInvoice struct {
	Customer int
	Amount   int64
	Status   invoicedomain.Status
	DaysAgo  int
}

var placeholderCustomers = []placeholderCustomer{
	{Name: "Evil Rabbit", Email: "evil@rabbit.com"},
	{Name: "Delba de Oliveira", Email: "delba@oliveira.com"},
	{Name: "Lee Robinson", Email: "lee@robinson.com"},
	{Name: "Michael Novotny", Email: "michael@novotny.com"},
	{Name: "Amy Burns", Email: "amy@burns.com"},
	{Name: "Balazs Orban", Email: "balazs@orban.com"},
}

var placeholderInvoices = []placeholderInvoice{
	{Customer: 0, Amount: 15795, Status: invoicedomain.StatusPending, DaysAgo: 3},
	{Customer: 1, Amount: 20348, Status: invoicedomain.StatusPending, DaysAgo: 7},
	{Customer: 4, Amount: 3040, Status: invoicedomain.StatusPaid, DaysAgo: 12},
	{Customer: 3, Amount: 44800, Status: invoicedomain.StatusPaid, DaysAgo: 20},
	{Customer: 5, Amount: 34577, Status: invoicedomain.StatusPending, DaysAgo: 31},
	{Customer: 2, Amount: 54246, Status: invoicedomain.StatusPending, DaysAgo: 45},
	{Customer: 0, Amount: 666, Status: invoicedomain.StatusPending, DaysAgo: 60},
	{Customer: 3, Amount: 32545, Status: invoicedomain.StatusPaid, DaysAgo: 75},
	{Customer: 4, Amount: 1250, Status: invoicedomain.StatusPaid, DaysAgo: 90},
	{Customer: 5, Amount: 8546, Status: invoicedomain.StatusPaid, DaysAgo: 110},
	{Customer: 1, Amount: 500, Status: invoicedomain.StatusPaid, DaysAgo: 130},
	{Customer: 2, Amount: 8945, Status: invoicedomain.StatusPaid, DaysAgo: 160},
	{Customer: 2, Amount: 1000, Status: invoicedomain.StatusPaid, DaysAgo: 200},
}

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Clock     clock.Clock
	Customers customerdomain.Service
	Invoices  invoicedomain.Repository
}

// EnsurePlaceholderData fills an empty database with sample customers and
// invoices. It does nothing once any customer exists.
func EnsurePlaceholderData(ctx context.Context, p Params) error {
	if p.DB == nil {
		return errors.New("seed database handle is required")
	}
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("seed")

	var existing int64
	if err := p.DB.WithContext(ctx).Raw(`SELECT COUNT(*) FROM customers`).Scan(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		log.Debug("skipping placeholder data", zap.Int64("customers", existing))
		return nil
	}

	ids := make([]string, 0, len(placeholderCustomers))
	for _, pc := range placeholderCustomers {
		customer, err := p.Customers.Create(ctx, customerdomain.CreateCustomerRequest{
			Name:     pc.Name,
			Email:    pc.Email,
			ImageURL: avatarPath(pc.Name),
		})
		if err != nil {
			return err
		}
		ids = append(ids, customer.ID)
	}

	today := clock.Today(p.Clock)
	for _, pi := range placeholderInvoices {
		_, err := p.Invoices.Insert(ctx, invoicedomain.InsertParams{
			CustomerID:       ids[pi.Customer],
			AmountMinorUnits: pi.Amount,
			Status:           pi.Status,
			Date:             today.AddDate(0, 0, -pi.DaysAgo),
		})
		if err != nil {
			return err
		}
	}

	log.Info("placeholder data inserted",
		zap.Int("customers", len(ids)),
		zap.Int("invoices", len(placeholderInvoices)),
	)
	return nil
}

func avatarPath(name string) string {
	return "/customers/" + slug.Make(name) + ".png"
}
