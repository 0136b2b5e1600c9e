package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pfrederiksen/event-finder/internal/calendar"
	"github.com/pfrederiksen/event-finder/internal/config"
	"github.com/pfrederiksen/event-finder/internal/filter"
	"github.com/pfrederiksen/event-finder/internal/logger"
	"github.com/pfrederiksen/event-finder/internal/metrics"
	"github.com/pfrederiksen/event-finder/internal/scraper"
	"github.com/pfrederiksen/event-finder/internal/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

const (
	DefaultSearchEvents = 5
	MinSearchEvents     = 1
	MaxSearchEvents     = 20

	shutdownTimeout = 10 * time.Second
)

var (
	flagConfig  string
	flagVerbose bool
	flagFetcher string

	flagCity         string
	flagMaxEvents    int
	flagDescriptions bool
	flagFormat       string
	flagSort         string
	flagNoIndividual bool
	flagDelay        time.Duration

	flagWhen     string
	flagWeekends bool
	flagKeywords []string
	flagVenues   []string

	flagListen string
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "event-finder",
		Short: "Find upcoming events in a city",
		Long: `A tool to find upcoming events in a city from a public event listing site.
Events are read from embedded structured data where available and from the
listing markup otherwise, optionally enriched from each event's own page.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to a YAML config file")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging")
	cmd.PersistentFlags().StringVar(&flagFetcher, "fetcher", "", "Page fetcher: http or colly (overrides config)")

	cmd.AddCommand(newSearchCmd(), newServeCmd())
	return cmd
}

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search for events in a city",
		RunE:  runSearch,
	}

	cmd.Flags().StringVar(&flagCity, "city", "", "City name, e.g. san-francisco or \"new york\" (required)")
	cmd.Flags().IntVar(&flagMaxEvents, "max-events", DefaultSearchEvents, "Number of events to fetch (1-20)")
	cmd.Flags().BoolVar(&flagDescriptions, "descriptions", false, "Show event descriptions")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text, json, or ics")
	cmd.Flags().StringVar(&flagSort, "sort", "default", "Sort order: default, date, or name")
	cmd.Flags().BoolVar(&flagNoIndividual, "no-individual", false, "Skip fetching individual event pages")
	cmd.Flags().DurationVar(&flagDelay, "delay", scraper.DefaultInterval, "Minimum delay between requests")

	// Filters apply to the fetched events, so they can only reduce the count
	cmd.Flags().StringVar(&flagWhen, "when", "", "Only events in a date range, e.g. 'Mar 1-15', 'March', 'Mar 7'")
	cmd.Flags().BoolVar(&flagWeekends, "weekends", false, "Only events on Saturday or Sunday")
	cmd.Flags().StringSliceVar(&flagKeywords, "keyword", nil, "Only events whose name or description contains a keyword (repeatable)")
	cmd.Flags().StringSliceVar(&flagVenues, "venue", nil, "Only events whose location contains a venue (repeatable)")

	cmd.MarkFlagRequired("city")

	return cmd
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  runServe,
	}

	cmd.Flags().StringVar(&flagListen, "listen", "", "Listen address (overrides config and PORT)")

	return cmd
}

// runSearch is the search command logic
func runSearch(cmd *cobra.Command, args []string) error {
	city := strings.TrimSpace(flagCity)
	if city == "" {
		return fmt.Errorf("--city is required")
	}

	// Validate format
	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON && format != FormatICS {
		return fmt.Errorf("invalid format: %s (must be 'text', 'json', or 'ics')", flagFormat)
	}

	order := SortOrder(strings.ToLower(flagSort))
	if order != SortDefault && order != SortByDate && order != SortByName {
		return fmt.Errorf("invalid sort: %s (must be 'default', 'date', or 'name')", flagSort)
	}

	f, err := buildFilter(time.Now())
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	fetcher, err := newFetcher(cfg)
	if err != nil {
		return err
	}

	opts := cfg.ScraperOptions()
	opts.City = city
	opts.MaxEvents = ClampMaxEvents(flagMaxEvents)
	if flagNoIndividual {
		opts.ScrapeIndividual = false
	}
	if cmd.Flags().Changed("delay") {
		opts.Interval = flagDelay
	}

	sc, err := scraper.New(fetcher, opts)
	if err != nil {
		return fmt.Errorf("initializing scraper: %w", err)
	}

	if flagVerbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "Searching for events in %s\n", city)
		fmt.Fprintf(cmd.ErrOrStderr(), "Fetching events from %s\n", sc.ListingURL())
	}

	events := sc.Run(cmd.Context())
	if !f.IsEmpty() {
		if flagVerbose {
			fmt.Fprintf(cmd.ErrOrStderr(), "Filtering %d events: %s\n", len(events), f)
		}
		events = f.Apply(events)
	}
	SortRecords(events, order)

	if flagVerbose && format == FormatICS {
		fmt.Fprintf(cmd.ErrOrStderr(), "Exporting %d of %d events to calendar\n", calendar.Exportable(events), len(events))
	}

	result := &OutputResult{
		City:       city,
		SearchedAt: time.Now().UTC(),
		Events:     events,
		EventCount: len(events),
	}
	if err := WriteOutput(cmd.OutOrStdout(), result, format, flagDescriptions); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// runServe is the serve command logic
func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if flagListen != "" {
		cfg.Server.ListenAddress = flagListen
	}

	fetcher, err := newFetcher(cfg)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	// API searches always enrich from the event pages
	opts := cfg.ScraperOptions()
	opts.ScrapeIndividual = true

	svc := scraper.NewService(fetcher, opts, scraper.WithMetrics(m))
	srv := server.New(svc, cfg.Server, reg, m)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve() }()

	select {
	case err := <-errCh:
		return err
	case <-cmd.Context().Done():
	}

	logger.Info("Shutting down server", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// buildFilter assembles the result filter from the search flags
func buildFilter(now time.Time) (*filter.Filter, error) {
	f := filter.NewFilter()
	if strings.TrimSpace(flagWhen) != "" {
		from, to, err := filter.ParseDateRange(flagWhen, now)
		if err != nil {
			return nil, fmt.Errorf("invalid --when: %w", err)
		}
		f.DateFrom, f.DateTo = from, to
	}
	f.WeekendsOnly = flagWeekends
	f.Keywords = append(f.Keywords, flagKeywords...)
	f.Venues = append(f.Venues, flagVenues...)
	return f, nil
}

// loadConfig reads the config file, applies command-line overrides, and sets
// up the default logger
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return config.Config{}, fmt.Errorf("loading config: %w", err)
	}
	if flagFetcher != "" {
		cfg.Scraper.Fetcher = strings.ToLower(flagFetcher)
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}

	level, _ := logger.ParseLevel(cfg.Log.Level)
	if flagVerbose {
		level = logger.LevelDebug
	}
	logger.SetDefault(logger.New(level, cmd.ErrOrStderr()))

	return cfg, nil
}

func newFetcher(cfg config.Config) (scraper.Fetcher, error) {
	headers := scraper.NewHeaderPool(cfg.Scraper.UserAgents)
	fetcher, err := scraper.NewFetcher(cfg.Scraper.Fetcher, cfg.Scraper.Timeout, headers)
	if err != nil {
		return nil, fmt.Errorf("initializing fetcher: %w", err)
	}
	return fetcher, nil
}

// ClampMaxEvents limits a requested event count to MinSearchEvents..MaxSearchEvents
func ClampMaxEvents(n int) int {
	return min(max(MinSearchEvents, n), MaxSearchEvents)
}

// Execute runs the CLI
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(ExitError)
	}
}
