package core

import (
	"fmt"
	"net/url"
	"strings"
)

// Param is a single filter criterion, eg. areaType=nation.
type Param struct {
	Key   string `json:"key" yaml:"key"`
	Sign  string `json:"sign" yaml:"sign"`
	Value string `json:"value" yaml:"value"`
}

// Signs ordered so that two character operators are matched first.
var signs = []string{">=", "<=", "!=", "=", ">", "<"}

func (p Param) String() string {
	return p.Key + p.Sign + p.Value
}

// Validate checks the param has a key and a known sign.
func (p Param) Validate() error {
	if p.Key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidParam)
	}
	for _, sign := range signs {
		if p.Sign == sign {
			return nil
		}
	}
	return fmt.Errorf("%w: unknown sign %q for %s", ErrInvalidParam, p.Sign, p.Key)
}

// ParseParams reads key<sign>value pairs from a raw query string. Pairs
// without a sign or a key are skipped.
func ParseParams(rawQuery string) Params {
	rawQuery = strings.TrimPrefix(rawQuery, "?")
	params := make(Params, 0)

	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}

		decoded, err := url.QueryUnescape(pair)
		if err != nil {
			decoded = pair
		}

		param, ok := splitParam(decoded)
		if !ok {
			continue
		}
		params = append(params, param)
	}

	return params
}

func splitParam(pair string) (Param, bool) {
	index, sign := -1, ""
	for _, candidate := range signs {
		i := strings.Index(pair, candidate)
		if i < 0 {
			continue
		}
		// the leftmost operator wins; on a tie the longer one does
		if index < 0 || i < index || (i == index && len(candidate) > len(sign)) {
			index, sign = i, candidate
		}
	}

	if index <= 0 {
		return Param{}, false
	}

	return Param{
		Key:   strings.TrimSpace(pair[:index]),
		Sign:  sign,
		Value: strings.TrimSpace(pair[index+len(sign):]),
	}, true
}

// Params is an ordered list of filter criteria.
type Params []Param

// Get returns the value of the first param with key.
func (ps Params) Get(key string) (string, bool) {
	for _, p := range ps {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// With returns a copy of ps where params in overrides replace those with the same key.
func (ps Params) With(overrides ...Param) Params {
	out := make(Params, 0, len(ps)+len(overrides))
	for _, p := range ps {
		replaced := false
		for _, o := range overrides {
			if o.Key == p.Key {
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, p)
		}
	}
	return append(out, overrides...)
}

// Filters renders the params in the API form k=v;k2=v2.
func (ps Params) Filters() string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = p.String()
	}
	return strings.Join(parts, ";")
}

// Query renders the params back into a URL query string.
func (ps Params) Query() string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = url.QueryEscape(p.Key) + p.Sign + url.QueryEscape(p.Value)
	}
	return strings.Join(parts, "&")
}
