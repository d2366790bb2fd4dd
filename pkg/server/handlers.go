package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	apiclient "github.com/raykavin/coviddash/pkg/api"
	"github.com/raykavin/coviddash/pkg/core"
	"github.com/raykavin/coviddash/pkg/metricdoc"
	"github.com/raykavin/coviddash/pkg/page"
	"github.com/raykavin/coviddash/pkg/plot"
)

// Query keys read by the handlers; every other pair is a filter param
var reservedKeys = []string{
	"name", "width", "viewport", "kind", "metric", "barmode", "rolling", "format", "geojson",
	"search", "category", "tags", "deprecated",
}

// splitQuery separates the reserved keys of rawQuery from the filter params
func splitQuery(rawQuery string) (url.Values, string) {
	values := url.Values{}
	rest := make([]string, 0)

	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}

		key, value, found := strings.Cut(pair, "=")
		if found && isReserved(key) {
			decoded, err := url.QueryUnescape(value)
			if err != nil {
				decoded = value
			}
			values.Add(key, decoded)
			continue
		}
		rest = append(rest, pair)
	}

	return values, strings.Join(rest, "&")
}

func isReserved(key string) bool {
	for _, reserved := range reservedKeys {
		if key == reserved {
			return true
		}
	}
	return false
}

func viewportOf(values url.Values) plot.Viewport {
	if width, err := strconv.Atoi(values.Get("width")); err == nil {
		return plot.ViewportFor(width)
	}
	return plot.ParseViewport(values.Get("viewport"))
}

func metricsOf(values url.Values) []string {
	metrics := make([]string, 0)
	for _, value := range values["metric"] {
		for _, metric := range strings.Split(value, ",") {
			if metric = strings.TrimSpace(metric); metric != "" {
				metrics = append(metrics, metric)
			}
		}
	}
	return metrics
}

// statusOf maps an error to the HTTP status reported to the browser
func statusOf(err error) int {
	var status *apiclient.StatusError
	switch {
	case errors.Is(err, core.ErrUnknownPage):
		return http.StatusNotFound
	case errors.Is(err, core.ErrInvalidParam), errors.Is(err, core.ErrUnsupportedKind),
		errors.Is(err, apiclient.ErrInvalidFormat):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNoData), errors.Is(err, apiclient.ErrNoContent):
		return http.StatusNotFound
	case errors.As(err, &status) && status.Code < http.StatusInternalServerError:
		return status.Code
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		s.record(err)
		s.log.WithError(err).Error("request failed")
	}
	http.Error(w, err.Error(), status)
}

func (s *Server) writeJSON(w http.ResponseWriter, value any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(value); err != nil {
		s.log.Error("JSON encoding failed: ", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// handleHealth reports unhealthy while the last upstream call failed
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.Lock()
	lastSuccess, lastFailure := s.lastSuccess, s.lastFailure
	s.Unlock()

	if lastFailure.After(lastSuccess) {
		w.WriteHeader(http.StatusServiceUnavailable)
		if _, err := w.Write([]byte(lastFailure.String())); err != nil {
			s.log.Error("Failed to write health status: ", err)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
}

// handleIndex renders the page shell, the figures are loaded by the script
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	pages := s.dashboard.Pages()
	values, filters := splitQuery(r.URL.RawQuery)

	name := values.Get("name")
	if name == "" && len(pages) > 0 {
		http.Redirect(w, r, "/?name="+url.QueryEscape(pages[0]), http.StatusFound)
		return
	}

	w.Header().Set("Content-Type", "text/html")
	err := s.indexHTML.Execute(w, map[string]any{
		"name":    name,
		"pages":   pages,
		"filters": filters,
	})
	if err != nil {
		s.log.Error("Template execution failed: ", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (s *Server) handleAbout(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	if _, err := w.Write(s.aboutHTML); err != nil {
		s.log.Error("Failed writing about page: ", err)
	}
}

// handlePage renders a page as JSON, ?name=deaths&areaType=nation&...
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	values, filters := splitQuery(r.URL.RawQuery)

	view, err := s.dashboard.Page(r.Context(), values.Get("name"), filters, viewportOf(values))
	if err != nil {
		s.fail(w, err)
		return
	}

	if view.Loading {
		s.record(fmt.Errorf("page %s: layout unavailable", view.Name))
	} else {
		s.record(nil)
	}

	s.writeJSON(w, view)
}

func criteriaOf(values url.Values) metricdoc.Criteria {
	criteria := metricdoc.Criteria{
		Search:   values.Get("search"),
		Category: values.Get("category"),
	}
	if tags := values.Get("tags"); tags != "" {
		criteria.Tags = strings.Split(tags, ",")
	}
	criteria.IncludeDeprecated, _ = strconv.ParseBool(values.Get("deprecated"))
	return criteria
}

// handleMetrics searches the metric catalogue. format=json downloads the
// matching metrics only.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	values, _ := splitQuery(r.URL.RawQuery)
	criteria := criteriaOf(values)

	download := url.Values{"format": {"json"}}
	for _, key := range []string{"search", "category", "tags", "deprecated"} {
		if value := values.Get(key); value != "" {
			download.Set(key, value)
		}
	}

	results, err := s.dashboard.SearchMetrics(r.Context(), criteria, "/api/metrics?"+download.Encode())
	if err != nil {
		s.fail(w, err)
		return
	}
	s.record(nil)

	if values.Get("format") == "json" {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", "attachment;filename="+results.DownloadName)
		if err := results.WriteJSON(w); err != nil {
			s.log.Error("Failed writing metrics: ", err)
		}
		return
	}

	s.writeJSON(w, map[string]any{
		"count":      results.Count,
		"items":      results.Items,
		"download":   results.Download,
		"empty":      results.Empty,
		"categories": metricdoc.Categories(results.Metrics()),
		"tags":       metricdoc.Tags(results.Metrics()),
	})
}

// handleFigure draws one figure, ?metric=a,b&kind=chart&barmode=logy&areaType=...
func (s *Server) handleFigure(w http.ResponseWriter, r *http.Request) {
	values, filters := splitQuery(r.URL.RawQuery)
	rolling, _ := strconv.ParseBool(values.Get("rolling"))

	figure, err := s.dashboard.Figure(r.Context(), page.FigureRequest{
		Kind:     values.Get("kind"),
		Metrics:  metricsOf(values),
		Params:   core.ParseParams(filters),
		BarMode:  values.Get("barmode"),
		Rolling:  rolling,
		Viewport: viewportOf(values),
		GeoJSON:  values.Get("geojson"),
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	s.record(nil)

	s.writeJSON(w, figure)
}

// handleExport streams the series of metrics as csv or json
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	values, filters := splitQuery(r.URL.RawQuery)
	metrics := metricsOf(values)
	if len(metrics) == 0 {
		s.fail(w, fmt.Errorf("%w: no metric", core.ErrInvalidParam))
		return
	}

	format := strings.ToLower(values.Get("format"))
	if format == "" {
		format = apiclient.FormatCSV
	}

	// render first so that errors still produce a proper status
	buffer := &strings.Builder{}
	if err := s.dashboard.WriteExport(r.Context(), buffer, core.ParseParams(filters), metrics, format); err != nil {
		s.fail(w, err)
		return
	}
	s.record(nil)

	contentType := "text/csv"
	if format == apiclient.FormatJSON {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment;filename=data."+format)
	if _, err := w.Write([]byte(buffer.String())); err != nil {
		s.log.Error("Failed writing export: ", err)
	}
}
