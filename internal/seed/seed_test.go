package seed

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/invoicedesk/internal/clock"
	"github.com/smallbiznis/invoicedesk/internal/config"
	customerrepository "github.com/smallbiznis/invoicedesk/internal/customer/repository"
	customerservice "github.com/smallbiznis/invoicedesk/internal/customer/service"
	invoicerepository "github.com/smallbiznis/invoicedesk/internal/invoice/repository"
	"github.com/smallbiznis/invoicedesk/pkg/db/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newParams(t *testing.T, db *gorm.DB) Params {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return Params{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: clock.NewFakeClock(time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)),
		Customers: customerservice.New(customerservice.Params{
			DB:   db,
			Cfg:  config.Config{},
			Log:  zap.NewNop(),
			Repo: customerrepository.Provide(),
		}),
		Invoices: invoicerepository.Provide(db, node),
	}
}

func countRows(t *testing.T, db *gorm.DB, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Raw("SELECT COUNT(*) FROM "+table).Scan(&n).Error)
	return n
}

func TestEnsurePlaceholderDataFillsEmptyDatabase(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()

	require.NoError(t, EnsurePlaceholderData(ctx, newParams(t, db)))

	assert.Equal(t, int64(len(placeholderCustomers)), countRows(t, db, "customers"))
	assert.Equal(t, int64(len(placeholderInvoices)), countRows(t, db, "invoices"))

	var imageURL string
	require.NoError(t, db.Raw(`SELECT image_url FROM customers WHERE email = ?`, "delba@oliveira.com").Scan(&imageURL).Error)
	assert.Equal(t, "/customers/delba-de-oliveira.png", imageURL)
}

func TestEnsurePlaceholderDataSkipsPopulatedDatabase(t *testing.T) {
	db := dbtest.Open(t)
	dbtest.SeedCustomer(t, db, "c-1", "Existing", "existing@example.com")

	require.NoError(t, EnsurePlaceholderData(context.Background(), newParams(t, db)))

	assert.Equal(t, int64(1), countRows(t, db, "customers"))
	assert.Equal(t, int64(0), countRows(t, db, "invoices"))
}

func TestAvatarPath(t *testing.T) {
	assert.Equal(t, "/customers/evil-rabbit.png", avatarPath("Evil Rabbit"))
}
