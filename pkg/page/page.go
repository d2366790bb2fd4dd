// Package page composes dashboard pages: headline numbers plus one chart per
// layout card, drawn for the area selected by the URL params.
package page

import (
	"sort"
	"strings"

	"github.com/raykavin/coviddash/pkg/core"
)

// Page is a dashboard page backed by a remote card layout.
type Page struct {
	Name          string
	Title         string
	LayoutURL     string
	DefaultParams core.Params
}

// DeathsParams select the UK overview.
var DeathsParams = core.Params{
	{Key: "areaName", Sign: "=", Value: "United Kingdom"},
	{Key: "areaType", Sign: "=", Value: "overview"},
}

// Deaths is the deaths page, its layout read from layoutBase.
func Deaths(layoutBase string) Page {
	return Page{
		Name:          "deaths",
		Title:         "Deaths",
		LayoutURL:     joinLocation(layoutBase, "deaths.json"),
		DefaultParams: DeathsParams,
	}
}

// Resolve returns the params of rawQuery, or the page defaults when the
// query holds none.
func (p Page) Resolve(rawQuery string) core.Params {
	params := core.ParseParams(rawQuery)
	if len(params) > 0 {
		return params
	}
	out := make(core.Params, len(p.DefaultParams))
	copy(out, p.DefaultParams)
	return out
}

// Registry holds the pages served by name.
type Registry map[string]Page

// Builtin returns the pages shipped with the dashboard.
func Builtin(layoutBase string) Registry {
	deaths := Deaths(layoutBase)
	return Registry{deaths.Name: deaths}
}

// Register adds or replaces page.
func (r Registry) Register(page Page) {
	r[page.Name] = page
}

// Lookup returns the page called name.
func (r Registry) Lookup(name string) (Page, bool) {
	page, ok := r[strings.ToLower(name)]
	return page, ok
}

// Names lists the registered pages alphabetically.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func joinLocation(base, name string) string {
	if base == "" || strings.HasSuffix(base, "/") {
		return base + name
	}
	return base + "/" + name
}
