package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/blaisecz/health-insights/internal/domain"
	"github.com/blaisecz/health-insights/internal/repository"
	"github.com/blaisecz/health-insights/internal/seed"
	"github.com/blaisecz/health-insights/internal/service"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

type services struct {
	aggregator service.DailyAggregator
	series     service.SeriesBuilder
	insights   service.InsightOrchestrator
	samples    repository.SampleRepository
	loc        *time.Location
	now        func() time.Time
}

type loader func(ctx context.Context) (*services, func() error, error)

// cli carries the services between cobra's pre-run and the subcommands.
type cli struct {
	load  loader
	svc   *services
	close func() error
}

func newRootCmd(load loader) *cobra.Command {
	c := &cli{load: load}

	root := &cobra.Command{
		Use:          "healthctl",
		Short:        "Query daily health records, series and insights",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := c.load(cmd.Context())
			if err != nil {
				return err
			}
			if svc.loc == nil {
				svc.loc = time.UTC
			}
			if svc.now == nil {
				svc.now = time.Now
			}
			c.svc = svc
			c.close = closeFn
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if c.close != nil {
				return c.close()
			}
			return nil
		},
	}

	root.AddCommand(
		c.dayCmd(),
		c.seriesCmd(),
		c.rangeCmd(),
		c.insightCmd(),
		c.cacheCmd(),
		c.seedCmd(),
	)
	return root
}

func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}

func (c *cli) dayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "day [YYYY-MM-DD|today]",
		Short: "Aggregate one calendar day",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date := c.svc.now().In(c.svc.loc)
			if len(args) == 1 && !strings.EqualFold(args[0], "today") {
				parsed, err := time.ParseInLocation(time.DateOnly, args[0], c.svc.loc)
				if err != nil {
					return fmt.Errorf("date must be YYYY-MM-DD or today: %w", err)
				}
				date = parsed
			}
			record, err := c.svc.aggregator.AggregateDay(cmd.Context(), date)
			if err != nil {
				return err
			}
			return printJSON(cmd, record)
		},
	}
}

func (c *cli) seriesCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "series <kind>",
		Short: "Build a per-day series for one metric",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := domain.ParseSeriesKind(args[0])
			if err != nil {
				return err
			}
			series, err := c.svc.series.BuildSeries(cmd.Context(), kind, days)
			if err != nil {
				return err
			}
			return printJSON(cmd, series)
		},
	}
	cmd.Flags().IntVar(&days, "days", service.DefaultSeriesDays, "number of days ending today")
	return cmd
}

func (c *cli) rangeCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "range",
		Short: "Aggregate the last days into averages and trends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			agg, err := c.svc.series.BuildRange(cmd.Context(), days)
			if err != nil {
				return err
			}
			return printJSON(cmd, agg)
		},
	}
	cmd.Flags().IntVar(&days, "days", service.DefaultSeriesDays, "number of days ending today")
	return cmd
}

func (c *cli) insightCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insight",
		Short: "Produce natural-language insights",
	}

	printText := func(cmd *cobra.Command, insight *domain.Insight) error {
		source := "generated"
		switch {
		case insight.Cached:
			source = "cached"
		case insight.Fallback:
			source = "fallback"
		}
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "[%s, %s]\n%s\n", insight.Key, source, insight.Text)
		return err
	}

	daily := &cobra.Command{
		Use:   "daily",
		Short: "Overview of today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			insight, err := c.svc.insights.DailyOverview(cmd.Context())
			if err != nil {
				return err
			}
			return printText(cmd, insight)
		},
	}
	weekly := &cobra.Command{
		Use:   "weekly",
		Short: "Summary of the last seven days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			insight, err := c.svc.insights.WeeklySummary(cmd.Context())
			if err != nil {
				return err
			}
			return printText(cmd, insight)
		},
	}

	var goal float64
	metric := &cobra.Command{
		Use:   "metric <kind>",
		Short: "Today's value of one metric against yesterday, the week and a goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := domain.ParseSeriesKind(args[0])
			if err != nil {
				return err
			}
			insight, err := c.svc.insights.MetricInsight(cmd.Context(), kind, goal)
			if err != nil {
				return err
			}
			return printText(cmd, insight)
		},
	}
	metric.Flags().Float64Var(&goal, "goal", 0, "daily goal, omitted when 0")

	cmd.AddCommand(daily, weekly, metric)
	return cmd
}

func (c *cli) cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the insight cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every cached insight",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.svc.insights.ClearCache(cmd.Context()); err != nil {
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "insight cache cleared")
			return err
		},
	})
	return cmd
}

func (c *cli) seedCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Store synthetic samples for the last days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inserted, err := seed.Run(cmd.Context(), c.svc.samples, seed.Options{
				Days:     days,
				Location: c.svc.loc,
				Now:      c.svc.now(),
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "inserted %d samples\n", inserted)
			return err
		},
	}
	cmd.Flags().IntVar(&days, "days", seed.DefaultDays, "number of days to generate")
	return cmd
}
