package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/username/commute-ride-bot/internal/config"
	"github.com/username/commute-ride-bot/internal/dashboard"
	"github.com/username/commute-ride-bot/internal/render"
	"github.com/username/commute-ride-bot/internal/schedule"
	"github.com/username/commute-ride-bot/internal/submit"
	"github.com/username/commute-ride-bot/pkg/dateutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	configPath string
	logger     *zap.Logger
	outWriter  io.Writer = os.Stdout
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "commute-ride-bot",
		Short: "Shift commute ride scheduler",
		Long:  "Derive the home/work rides of a day or night shift rotation and book them on the ride dashboard",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load config to get log file path
			cfg, err := config.Load(configPath)
			if err == nil && cfg.Log.File != "" {
				logger, err = initFileLogger(cfg.Log.File, cfg.Log.Level)
				if err != nil {
					initLogger() // Fallback to console
				}
			} else {
				initLogger() // Default console logger
			}
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (default: config.yaml in ., ~/.commute-ride-bot, /etc/commute-ride-bot)")

	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(bookCmd())
	rootCmd.AddCommand(exportCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// overrides are command line replacements for the schedule settings
type overrides struct {
	start string
	days  int
	shift string
}

func (o *overrides) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.start, "start", "", "First shift day (dd/mm/yyyy or dd/mm)")
	cmd.Flags().IntVar(&o.days, "days", 0, "Number of shift days (1-6)")
	cmd.Flags().StringVar(&o.shift, "shift", "", "Shift rotation: day, night or 3d+3n")
}

func (o *overrides) apply(cfg *config.Config) {
	if o.start != "" {
		cfg.StartDay = o.start
	}
	if o.days != 0 {
		cfg.Days = o.days
	}
	if o.shift != "" {
		cfg.Shift = o.shift
	}
}

func showCmd() *cobra.Command {
	var o overrides

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the derived schedule without booking anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			schedulers, _, err := buildSchedulers(&o)
			if err != nil {
				return err
			}

			outPrintln(render.Summaries(schedulers))
			outPrintln(render.RideTable(schedulers))

			for _, s := range schedulers {
				if err := s.Checkup(); err != nil {
					outPrintf("\n⚠️  %v\n", err)
				}
			}
			return nil
		},
	}
	o.register(cmd)

	return cmd
}

func bookCmd() *cobra.Command {
	var o overrides
	var dryRun bool
	var teeOutput string

	cmd := &cobra.Command{
		Use:   "book",
		Short: "Book every scheduled ride on the dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			outWriter = os.Stdout
			if teeOutput != "" {
				if err := os.MkdirAll(filepath.Dir(teeOutput), 0o755); err != nil {
					return fmt.Errorf("failed to create tee path: %w", err)
				}
				f, err := os.OpenFile(teeOutput, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
				if err != nil {
					return fmt.Errorf("failed to open tee-output file: %w", err)
				}
				defer f.Close()
				outWriter = io.MultiWriter(os.Stdout, f)
				outPrintf("📝 Output is mirrored to %s\n", teeOutput)
			}
			defer func() {
				outWriter = os.Stdout
			}()

			schedulers, cfg, err := buildSchedulers(&o)
			if err != nil {
				return err
			}
			dryRun = dryRun || cfg.Dashboard.DryRun

			submitter, err := newSubmitter(cfg, dryRun)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			outPrintln(render.Summaries(schedulers))

			runner := submit.NewRunner(submitter, cfg.Dashboard.Passes, logger)
			report, err := runner.Run(ctx, schedulers...)
			if report != nil {
				outPrintln(render.OutcomeTable(report))
			}
			if err != nil {
				if errors.Is(err, schedule.ErrConfigurationIncomplete) {
					return fmt.Errorf("nothing was booked: %w", err)
				}
				return err
			}

			if dryRun {
				outPrintln("\n[DRY RUN] No rides were booked")
			} else if failed := report.Count(submit.OutcomeTransientFailure); failed > 0 {
				outPrintf("\n❌ %d ride(s) could not be booked, run again to retry them\n", failed)
			} else {
				outPrintln("\n✅ All rides processed")
			}
			return nil
		},
	}
	o.register(cmd)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview bookings without calling the dashboard")
	cmd.Flags().StringVar(&teeOutput, "tee-output", "logs/book.log", "Mirror booking output to file (empty to disable)")

	return cmd
}

func exportCmd() *cobra.Command {
	var o overrides
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the derived rides as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			schedulers, _, err := buildSchedulers(&o)
			if err != nil {
				return err
			}

			if output == "" {
				return render.Export(os.Stdout, schedulers)
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			defer f.Close()

			if err := render.Export(f, schedulers); err != nil {
				return err
			}
			logger.Info("Rides exported", zap.String("file", output))
			return nil
		},
	}
	o.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func buildSchedulers(o *overrides) ([]*schedule.Scheduler, *config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	o.apply(cfg)

	plan, err := cfg.ToPlan(dateutil.Today())
	if err != nil {
		return nil, nil, fmt.Errorf("invalid schedule settings: %w", err)
	}

	schedulers, err := schedule.BuildSegments(plan, logger)
	if err != nil {
		return nil, nil, err
	}
	return schedulers, cfg, nil
}

func newSubmitter(cfg *config.Config, dryRun bool) (submit.RideSubmitter, error) {
	if dryRun {
		logger.Info("Dry run, the dashboard will not be called")
		return submit.NewDryRun(logger), nil
	}

	if err := cfg.ValidateDashboard(); err != nil {
		return nil, err
	}

	return dashboard.NewClient(
		cfg.Dashboard.BaseURL,
		cfg.Dashboard.Username,
		cfg.Dashboard.Password,
		logger,
		dashboard.WithTimeout(cfg.Dashboard.GetTimeout()),
		dashboard.WithRetries(cfg.Dashboard.Retries, cfg.Dashboard.GetRetryDelay()),
		dashboard.WithJustification(cfg.Dashboard.Justification),
	), nil
}

func outPrintf(format string, a ...interface{}) {
	if outWriter == nil {
		outWriter = os.Stdout
	}
	fmt.Fprintf(outWriter, format, a...)
}

func outPrintln(a ...interface{}) {
	if outWriter == nil {
		outWriter = os.Stdout
	}
	fmt.Fprintln(outWriter, a...)
}

func initLogger() {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var err error
	logger, err = config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
}

func initFileLogger(logFile string, level string) (*zap.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	// Setup lumberjack for log rotation
	logWriter := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    100,  // MB
		MaxBackups: 3,    // Keep max 3 old log files
		MaxAge:     28,   // days
		Compress:   true, // Compress old logs with gzip
	}

	// Setup encoder
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	// Parse log level
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	// Create core with lumberjack writer
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(logWriter),
		zapLevel,
	)

	return zap.New(core), nil
}
