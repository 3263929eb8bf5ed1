package seed

import (
	"context"
	"time"

	"github.com/smallbiznis/invoicedesk/internal/config"
	"go.uber.org/fx"
)

const seedTimeout = 30 * time.Second

var Module = fx.Module("seed",
	fx.Invoke(func(cfg config.Config, p Params) error {
		if !cfg.SeedOnStart {
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), seedTimeout)
		defer cancel()
		return EnsurePlaceholderData(ctx, p)
	}),
)
