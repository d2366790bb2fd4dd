package server

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/raykavin/coviddash/pkg/core"
	"github.com/raykavin/coviddash/pkg/logger"
	"github.com/raykavin/coviddash/pkg/metricdoc"
	"github.com/raykavin/coviddash/pkg/page"
	"github.com/raykavin/coviddash/pkg/plot"
)

// Static assets embedded in the binary
var (
	//go:embed assets
	staticFiles embed.FS
)

// Dashboard is what the server renders
type Dashboard interface {
	Pages() []string
	Page(ctx context.Context, name, rawQuery string, vp plot.Viewport) (page.View, error)
	Figure(ctx context.Context, req page.FigureRequest) (plot.Figure, error)
	SearchMetrics(ctx context.Context, criteria metricdoc.Criteria, download string) (metricdoc.Results, error)
	WriteExport(ctx context.Context, w io.Writer, params core.Params, metrics []string, format string) error
}

// Server serves the dashboard pages in the browser
type Server struct {
	sync.Mutex
	port          int
	debug         bool
	dashboard     Dashboard
	scriptContent string
	indexHTML     *template.Template
	aboutHTML     []byte
	lastSuccess   time.Time
	lastFailure   time.Time
	log           logger.Logger
}

// Option defines a function type for configuring a Server instance
type Option func(*Server)

// WithPort sets the HTTP server port
func WithPort(port int) Option {
	return func(s *Server) {
		s.port = port
	}
}

// WithDebug enables debug mode (disables minification)
func WithDebug() Option {
	return func(s *Server) {
		s.debug = true
	}
}

// NewServer creates a new server instance with the provided options
func NewServer(dashboard Dashboard, log logger.Logger, options ...Option) (*Server, error) {
	server := &Server{
		port:      8080,
		dashboard: dashboard,
		log:       log,
	}

	for _, option := range options {
		option(server)
	}

	var err error
	server.indexHTML, err = template.ParseFS(staticFiles, "assets/index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse index template: %w", err)
	}

	server.aboutHTML, err = staticFiles.ReadFile("assets/about.html")
	if err != nil {
		return nil, fmt.Errorf("failed to read about.html: %w", err)
	}

	dashboardJS, err := staticFiles.ReadFile("assets/dashboard.js")
	if err != nil {
		return nil, fmt.Errorf("failed to read dashboard.js: %w", err)
	}

	transpiled := api.Transform(string(dashboardJS), api.TransformOptions{
		Loader:            api.LoaderJS,
		Target:            api.ES2015,
		MinifySyntax:      !server.debug,
		MinifyIdentifiers: !server.debug,
		MinifyWhitespace:  !server.debug,
	})

	if len(transpiled.Errors) > 0 {
		return nil, fmt.Errorf("dashboard script failed with: %v", transpiled.Errors)
	}

	server.scriptContent = string(transpiled.Code)

	return server, nil
}

// Handler returns the routes of the dashboard
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/assets/", http.FileServer(http.FS(staticFiles)))
	mux.HandleFunc("/assets/dashboard.js", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/javascript")
		fmt.Fprint(w, s.scriptContent)
	})

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/about", s.handleAbout)
	mux.HandleFunc("/api/page", s.handlePage)
	mux.HandleFunc("/api/metrics", s.handleMetrics)
	mux.HandleFunc("/api/figure", s.handleFigure)
	mux.HandleFunc("/export", s.handleExport)
	mux.HandleFunc("/", s.handleIndex)

	return mux
}

// Start serves the dashboard until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.log.Infof("Dashboard available at http://localhost:%d", s.port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// record tracks the outcome of upstream calls for the health check
func (s *Server) record(err error) {
	s.Lock()
	defer s.Unlock()

	if err != nil {
		s.lastFailure = time.Now()
		return
	}
	s.lastSuccess = time.Now()
}
