package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewDashboardConfigHolderDefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	holder, err := NewDashboardConfigHolder(zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, DefaultDashboardConfig(), holder.Get())
}

func TestNewDashboardConfigHolderReadsFile(t *testing.T) {
	dir := t.TempDir()
	body := "dashboard:\n  itemsPerPage: 10\n  latestInvoices: 3\n  currencySymbol: \"€\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dashboard.yml"), []byte(body), 0o600))
	t.Chdir(dir)

	holder, err := NewDashboardConfigHolder(zap.NewNop())
	require.NoError(t, err)

	cfg := holder.Get()
	assert.Equal(t, 10, cfg.ItemsPerPage)
	assert.Equal(t, 3, cfg.LatestInvoices)
	assert.Equal(t, "€", cfg.CurrencySymbol)
}

func TestNewDashboardConfigHolderRejectsInvalidPageSize(t *testing.T) {
	dir := t.TempDir()
	body := "dashboard:\n  itemsPerPage: 0\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dashboard.yml"), []byte(body), 0o600))
	t.Chdir(dir)

	_, err := NewDashboardConfigHolder(zap.NewNop())
	assert.Error(t, err)
}

func TestLoadNormalizesCacheDriver(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CACHE_DRIVER", " REDIS ")
	t.Setenv("HTTP_ADDR", ":9090")

	cfg := Load()
	assert.Equal(t, CacheDriverRedis, cfg.Cache.Driver)
	assert.Equal(t, ":9090", cfg.HTTPAddr)

	t.Setenv("CACHE_DRIVER", "bogus")
	assert.Equal(t, CacheDriverMemory, Load().Cache.Driver)
}
