package plot

import "maps"

// Map is a plotly attribute object.
type Map map[string]any

// Trace is a single plotly trace.
type Trace = Map

// Merge returns defaults overridden by override, one level deep: every key of
// override replaces the default at that key, nested maps included. Neither
// argument is modified.
func Merge(defaults, override Map) Map {
	out := make(Map, len(defaults)+len(override))
	maps.Copy(out, defaults)
	maps.Copy(out, override)
	return out
}

// Clone returns a shallow copy of m; nil gives an empty map.
func (m Map) Clone() Map {
	return Merge(m, nil)
}

// String returns the value at key when it is a string.
func (m Map) String(key string) string {
	s, _ := m[key].(string)
	return s
}
