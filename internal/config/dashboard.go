package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// DashboardConfig holds presentation tunables shared by the dashboard queries.
type DashboardConfig struct {
	ItemsPerPage   int    `mapstructure:"itemsPerPage"`
	LatestInvoices int    `mapstructure:"latestInvoices"`
	CurrencySymbol string `mapstructure:"currencySymbol"`
}

func DefaultDashboardConfig() DashboardConfig {
	return DashboardConfig{
		ItemsPerPage:   6,
		LatestInvoices: 5,
		CurrencySymbol: "$",
	}
}

type DashboardConfigHolder struct {
	current atomic.Value // holds DashboardConfig
}

// NewStaticDashboardConfigHolder returns a holder that never reloads.
func NewStaticDashboardConfigHolder(cfg DashboardConfig) *DashboardConfigHolder {
	holder := &DashboardConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewDashboardConfigHolder(log *zap.Logger) (*DashboardConfigHolder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("dashboard.config")

	v := viper.New()

	v.SetConfigName("dashboard")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/invoicedesk")
	v.AddConfigPath(".")

	v.SetEnvPrefix("INVOICEDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultDashboardConfig()
	v.SetDefault("dashboard.itemsPerPage", defaults.ItemsPerPage)
	v.SetDefault("dashboard.latestInvoices", defaults.LatestInvoices)
	v.SetDefault("dashboard.currencySymbol", defaults.CurrencySymbol)

	found := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		found = false
	}

	cfg, err := decodeDashboardConfig(v)
	if err != nil {
		return nil, err
	}
	if err := validateDashboardConfig(cfg); err != nil {
		return nil, err
	}

	holder := NewStaticDashboardConfigHolder(cfg)
	if !found {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := decodeDashboardConfig(v)
		if err != nil {
			log.Warn("reload failed", zap.Error(err))
			return
		}
		if err := validateDashboardConfig(updated); err != nil {
			log.Warn("invalid config ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

func (h *DashboardConfigHolder) Get() DashboardConfig {
	if h == nil {
		return DefaultDashboardConfig()
	}
	return h.current.Load().(DashboardConfig)
}

// decodeDashboardConfig goes through AllSettings so defaults fill keys the file omits.
func decodeDashboardConfig(v *viper.Viper) (DashboardConfig, error) {
	var wrapper struct {
		Dashboard DashboardConfig `mapstructure:"dashboard"`
	}
	if err := v.Unmarshal(&wrapper); err != nil {
		return DashboardConfig{}, err
	}
	return wrapper.Dashboard, nil
}

func validateDashboardConfig(cfg DashboardConfig) error {
	if cfg.ItemsPerPage <= 0 {
		return errors.New("dashboard.itemsPerPage must be positive")
	}
	if cfg.LatestInvoices <= 0 {
		return errors.New("dashboard.latestInvoices must be positive")
	}
	return nil
}
