// Command healthctl queries and maintains the health insights store from the
// command line, using the same services as the HTTP API.
package main

import (
	"context"
	"os"

	"github.com/blaisecz/health-insights/internal/app"
	"github.com/blaisecz/health-insights/internal/config"
	"github.com/blaisecz/health-insights/internal/logging"
)

func main() {
	cfg := config.Load()
	logger := logging.Console(cfg.LogLevel)

	load := func(ctx context.Context) (*services, func() error, error) {
		a, err := app.New(ctx, cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		return &services{
			aggregator: a.Aggregator,
			series:     a.Series,
			insights:   a.Insights,
			samples:    a.Samples,
			loc:        a.Location,
		}, a.Close, nil
	}

	root := newRootCmd(load)
	if err := root.ExecuteContext(logger.WithContext(context.Background())); err != nil {
		os.Exit(1)
	}
}
