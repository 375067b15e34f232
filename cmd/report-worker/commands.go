package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"carbon-scribe/sustainability-backend/internal/app"
	"carbon-scribe/sustainability-backend/internal/config"
	"carbon-scribe/sustainability-backend/internal/sustainability/domain"
	"carbon-scribe/sustainability-backend/internal/sustainability/scheduler"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "report-worker",
		Short:        "Generate monthly ESG reports",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "config.json", "path to the JSON config file")

	cmd.AddCommand(newRunCmd(opts), newGenerateCmd(opts))
	return cmd
}

func newRunCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the report scheduler until interrupted",
		Long: `Starts the cron scheduler and generates the previous month's report for
every configured warehouse each time the schedule fires.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), opts.configPath, func(a *app.App) error {
				s, err := scheduler.New(a.Service, scheduler.Config{
					CronExpression: a.Config.Reporting.Cron,
					Warehouses:     a.Config.Reporting.Warehouses,
				}, a.Logger.Named("scheduler"))
				if err != nil {
					return err
				}
				if err := s.Start(); err != nil {
					return err
				}
				defer s.Stop()

				<-cmd.Context().Done()
				a.Logger.Info("Shutdown signal received")
				return nil
			})
		},
	}
}

type generateOptions struct {
	month      string
	warehouses []string
}

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	genOpts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate reports once and exit",
		Example: `  # Backfill February 2024 for two warehouses
  report-worker generate --month 2024-02 --warehouse WH-1 --warehouse WH-2`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			month, err := resolveMonth(genOpts.month, time.Now())
			if err != nil {
				return err
			}

			return withApp(cmd.Context(), opts.configPath, func(a *app.App) error {
				warehouses := genOpts.warehouses
				if len(warehouses) == 0 {
					warehouses = a.Config.Reporting.Warehouses
				}
				if len(warehouses) == 0 {
					return fmt.Errorf("no warehouses configured")
				}

				failed := 0
				for _, warehouseID := range warehouses {
					report, err := a.Service.GenerateMonthlyReport(cmd.Context(), warehouseID, month)
					if err != nil {
						failed++
						cmd.PrintErrf("%s %s: %v\n", warehouseID, month, err)
						continue
					}
					cmd.Printf("%s %s: report %s, %.2f kg CO2e\n", warehouseID, month, report.ID, report.TotalCO2eKg())
				}
				if failed > 0 {
					return fmt.Errorf("%d of %d reports failed", failed, len(warehouses))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&genOpts.month, "month", "", "report month as YYYY-MM (default: previous month)")
	cmd.Flags().StringSliceVar(&genOpts.warehouses, "warehouse", nil, "warehouse ID, repeatable (default: configured warehouses)")
	return cmd
}

// resolveMonth parses raw, defaulting to the month before now
func resolveMonth(raw string, now time.Time) (domain.YearMonth, error) {
	if raw == "" {
		return domain.YearMonthOf(now.UTC()).Previous(), nil
	}
	return domain.ParseYearMonth(raw)
}

func withApp(ctx context.Context, configPath string, fn func(*app.App) error) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	// The worker owns scheduling itself.
	cfg.Reporting.SchedulerEnabled = false

	logger, err := app.NewLogger(cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer logger.Sync()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize application", zap.Error(err))
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.Close(closeCtx); err != nil {
			logger.Warn("Failed to release resources", zap.Error(err))
		}
	}()

	return fn(a)
}
