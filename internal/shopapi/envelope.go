package shopapi

import "encoding/json"

// The remote API wraps payloads inconsistently: sometimes {"data": [...]},
// sometimes a bare array, sometimes {"data": {...}} for singular resources.
// These helpers apply one extraction rule per shape and never fail on a
// mismatch alone.

// unwrapList yields the listed items: the "data" field if it is an array,
// else the raw payload if it is one, else an empty slice.
func unwrapList[T any](raw []byte) []T {
	var env struct {
		Data []T `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err == nil && env.Data != nil {
		return env.Data
	}

	var list []T
	if err := json.Unmarshal(raw, &list); err == nil && list != nil {
		return list
	}
	return []T{}
}

// unwrapObject yields the singular resource: the "data" field when present,
// else the raw payload, else nil.
func unwrapObject[T any](raw []byte) *T {
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err == nil && len(env.Data) > 0 && string(env.Data) != "null" {
		var v T
		if err := json.Unmarshal(env.Data, &v); err == nil {
			return &v
		}
	}

	var v T
	if err := json.Unmarshal(raw, &v); err == nil {
		return &v
	}
	return nil
}
