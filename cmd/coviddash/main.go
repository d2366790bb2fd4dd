package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/raykavin/coviddash"
	"github.com/raykavin/coviddash/pkg/api"
	"github.com/raykavin/coviddash/pkg/config"
	"github.com/raykavin/coviddash/pkg/core"
	"github.com/raykavin/coviddash/pkg/export"
	"github.com/raykavin/coviddash/pkg/logger"
	logruslog "github.com/raykavin/coviddash/pkg/logger/logrus"
	"github.com/raykavin/coviddash/pkg/metricdoc"
	"github.com/raykavin/coviddash/pkg/page"
	"github.com/raykavin/coviddash/pkg/plot"
	"github.com/raykavin/coviddash/pkg/server"
	"github.com/raykavin/coviddash/pkg/storage"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const (
	dateLayout = "2006-01-02"
)

// Command line flags
var (
	// Global flags
	configPath   string
	useCatalogue bool
	useLogrus    bool

	// Metric search flags
	search     string
	category   string
	tags       []string
	deprecated bool
	asJSON     bool

	// Data flags
	metrics    []string
	filters    string
	bins       int
	kind       string
	barMode    string
	rolling    bool
	viewport   string
	geojson    string
	outputFile string
	period     string
	startDate  string
	endDate    string
)

// app holds what the commands share, built before each run
type app struct {
	cfg       *config.Config
	log       logger.Logger
	dashboard *coviddash.Dashboard
	closers   []func() error
}

var current = &app{}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := execute(ctx, os.Args[1:])
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// execute runs the command line args. Storage opened by setup is closed
// whether or not the command succeeds.
func execute(ctx context.Context, args []string) error {
	defer current.close()

	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "coviddash",
		Short:             "UK coronavirus dashboard in the terminal and the browser",
		Version:           "1.0.0",
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Configuration file (YAML)")
	rootCmd.PersistentFlags().BoolVar(&useCatalogue, "catalogue", false, "Search metrics in the stored catalogue")
	rootCmd.PersistentFlags().BoolVar(&useLogrus, "logrus", false, "Log with logrus instead of zerolog")

	rootCmd.AddCommand(
		buildServeCmd(),
		buildMetricsCmd(),
		buildSeriesCmd(),
		buildFigureCmd(),
		buildExportCmd(),
		buildSyncCmd(),
	)

	return rootCmd
}

func setup(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}

	clientOptions := []api.Option{
		api.WithRetry(cfg.API.MaxRetries, 200*time.Millisecond, 2*time.Second),
		api.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
	}

	if cfg.Cache.Enabled {
		cache, err := storage.NewBuntCache(cfg.Cache.Path)
		if err != nil {
			return err
		}
		current.closers = append(current.closers, cache.Close)
		clientOptions = append(clientOptions, api.WithCache(cache, cfg.Cache.TTL))
	}

	options := []coviddash.Option{
		coviddash.WithLogger(log),
		coviddash.WithLayoutBase(cfg.API.LayoutBaseURL),
		coviddash.WithMapSource(plot.MapSource{Style: cfg.Map.Style, BaseGeo: cfg.Map.BaseGeo}),
	}

	if useCatalogue || cmd.Name() == "sync" {
		catalogue, err := storage.CatalogueFromSQLite(cfg.Catalogue.Path, storage.DefaultConfig())
		if err != nil {
			return err
		}
		current.closers = append(current.closers, catalogue.Close)
		options = append(options, coviddash.WithCatalogue(catalogue))
	}

	client := api.New(cfg.API.BaseURL, log, clientOptions...)

	current.cfg = cfg
	current.log = log
	current.dashboard = coviddash.New(client, options...)
	return nil
}

func (a *app) close() {
	for _, closer := range a.closers {
		if err := closer(); err != nil && a.log != nil {
			a.log.WithError(err).Warn("failed to close storage")
		}
	}
	a.closers = nil
}

func newLogger(cfg config.LogConfig) (logger.Logger, error) {
	if !useLogrus {
		return coviddash.NewLogger(cfg)
	}

	log := logrus.New()
	log.SetOutput(os.Stderr)
	if cfg.JSON {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: cfg.TimeFormat})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: cfg.TimeFormat,
			ForceColors:     cfg.Colored,
			DisableColors:   !cfg.Colored,
		})
	}

	adapter := logruslog.NewAdapter(log)
	adapter.SetLevel(logger.ParseLevel(cfg.Level))
	return adapter, nil
}

func buildServeCmd() *cobra.Command {
	var port int
	var debug bool

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard pages in the browser",
		RunE: func(cmd *cobra.Command, _ []string) error {
			options := []server.Option{server.WithPort(current.cfg.Server.Port)}
			if cmd.Flags().Changed("port") {
				options[0] = server.WithPort(port)
			}
			if debug || current.cfg.Server.Debug {
				options = append(options, server.WithDebug())
			}

			srv, err := server.NewServer(current.dashboard, current.log, options...)
			if err != nil {
				return err
			}
			return srv.Start(cmd.Context())
		},
	}

	serveCmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP port (default from config)")
	serveCmd.Flags().BoolVar(&debug, "debug", false, "Serve the dashboard script unminified")

	return serveCmd
}

func buildMetricsCmd() *cobra.Command {
	metricsCmd := &cobra.Command{
		Use:   "metrics",
		Short: "Search the metric catalogue",
		RunE:  runMetrics,
	}

	metricsCmd.Flags().StringVarP(&search, "search", "s", "", "Text matched against the metric name")
	metricsCmd.Flags().StringVar(&category, "category", "", "Metric category (e.g. Deaths)")
	metricsCmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "Required tags")
	metricsCmd.Flags().BoolVar(&deprecated, "deprecated", false, "Include deprecated metrics")
	metricsCmd.Flags().BoolVar(&asJSON, "json", false, "Print the matching metrics as JSON")

	return metricsCmd
}

func runMetrics(cmd *cobra.Command, _ []string) error {
	criteria := metricdoc.Criteria{
		Search:            search,
		Category:          category,
		Tags:              tags,
		IncludeDeprecated: deprecated,
	}

	results, err := current.dashboard.SearchMetrics(cmd.Context(), criteria, "")
	if err != nil {
		return err
	}

	if asJSON {
		return results.WriteJSON(os.Stdout)
	}

	if results.Count == 0 {
		fmt.Println(results.Empty)
		return nil
	}

	results.WriteTable(os.Stdout)
	fmt.Printf("Categories: %s\n", strings.Join(metricdoc.Categories(results.Metrics()), ", "))
	return nil
}

func addDataFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&metrics, "metric", "m", nil, "Metric names (e.g. newCasesByPublishDate)")
	cmd.Flags().StringVarP(&filters, "filter", "f", "", "Filter params (e.g. areaType=nation&areaName=England)")
	cmd.MarkFlagRequired("metric")
}

// filterParams returns the params of --filter, the UK overview when empty
func filterParams() (core.Params, error) {
	if filters == "" {
		return page.DeathsParams, nil
	}

	params := core.ParseParams(filters)
	if len(params) == 0 {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidParam, filters)
	}
	for _, param := range params {
		if err := param.Validate(); err != nil {
			return nil, err
		}
	}
	return params, nil
}

func buildSeriesCmd() *cobra.Command {
	seriesCmd := &cobra.Command{
		Use:   "series",
		Short: "Summarise metric series of an area",
		RunE: func(cmd *cobra.Command, _ []string) error {
			params, err := filterParams()
			if err != nil {
				return err
			}
			return current.dashboard.Summary(cmd.Context(), os.Stdout, params, metrics, bins)
		},
	}

	addDataFlags(seriesCmd)
	seriesCmd.Flags().IntVarP(&bins, "bins", "b", 0, "Histogram bins, 0 disables the histogram")

	return seriesCmd
}

func buildFigureCmd() *cobra.Command {
	figureCmd := &cobra.Command{
		Use:   "figure",
		Short: "Print the plotly figure of metrics as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			params, err := filterParams()
			if err != nil {
				return err
			}

			figure, err := current.dashboard.Figure(cmd.Context(), page.FigureRequest{
				Kind:     kind,
				Metrics:  metrics,
				Params:   params,
				BarMode:  barMode,
				Rolling:  rolling,
				Viewport: plot.ParseViewport(viewport),
				GeoJSON:  geojson,
			})
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(figure)
		},
	}

	addDataFlags(figureCmd)
	figureCmd.Flags().StringVarP(&kind, "kind", "k", page.KindChart, "Figure kind: chart, histogram, xaxis, heatmap, scatter or map")
	figureCmd.Flags().StringVar(&barMode, "barmode", "", "Plotly bar mode, logy for the signed log scale")
	figureCmd.Flags().BoolVar(&rolling, "rolling", false, "Add 7-day rolling averages")
	figureCmd.Flags().StringVar(&viewport, "viewport", "desktop", "desktop or mobile")
	figureCmd.Flags().StringVar(&geojson, "geojson", "", "Boundary file of a map (default <areaType>.geojson)")

	return figureCmd
}

func buildExportCmd() *cobra.Command {
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Download metric series to a CSV file",
		RunE:  runExport,
	}

	addDataFlags(exportCmd)
	exportCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path (e.g. ./england.csv)")
	exportCmd.Flags().StringVar(&period, "period", "", "Keep only the last period (e.g. 30d)")
	exportCmd.Flags().StringVarP(&startDate, "start", "s", "", "Start date (e.g. 2020-10-01)")
	exportCmd.Flags().StringVarP(&endDate, "end", "e", "", "End date (e.g. 2020-12-31)")
	exportCmd.MarkFlagRequired("output")

	return exportCmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	params, err := filterParams()
	if err != nil {
		return err
	}

	options, err := buildExportOptions()
	if err != nil {
		return err
	}

	return current.dashboard.Downloader(os.Stderr).Download(cmd.Context(), params, metrics, outputFile, options...)
}

func buildExportOptions() ([]export.Option, error) {
	var options []export.Option

	if period != "" {
		option, err := export.WithPeriod(period, time.Now())
		if err != nil {
			return nil, err
		}
		options = append(options, option)
	}

	if startDate != "" || endDate != "" {
		if startDate == "" || endDate == "" {
			return nil, fmt.Errorf("START and END dates must be provided together")
		}

		start, err := time.Parse(dateLayout, startDate)
		if err != nil {
			return nil, fmt.Errorf("invalid start date format: %w", err)
		}

		end, err := time.Parse(dateLayout, endDate)
		if err != nil {
			return nil, fmt.Errorf("invalid end date format: %w", err)
		}

		options = append(options, export.WithInterval(start, end))
	}

	return options, nil
}

func buildSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Store the metric catalogue for offline searches",
		RunE: func(cmd *cobra.Command, _ []string) error {
			count, err := current.dashboard.Sync(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("%d metrics stored in %s\n", count, current.cfg.Catalogue.Path)
			return nil
		},
	}
}
