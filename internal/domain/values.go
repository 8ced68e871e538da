package domain

// Values is an application-defined key/value structure used for room state
// and player data.
type Values map[string]any

// Merge overwrites keys of v with the keys of delta. Nested maps are replaced,
// not merged. A nil v yields a fresh map.
func (v Values) Merge(delta Values) Values {
	if v == nil {
		v = make(Values, len(delta))
	}
	for k, val := range delta {
		v[k] = val
	}
	return v
}

// Clone is a shallow copy. It never returns nil.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}
