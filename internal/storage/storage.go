package storage

import (
	"encoding/json"
	"errors"
	"log"
)

// ErrNotFound is returned by Get when no value exists for the key.
var ErrNotFound = errors.New("storage: key not found")

// KV is durable state storage keyed by string names. Values are opaque JSON
// documents. Implementations must tolerate concurrent callers.
type KV interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// GetJSON loads and decodes the value for key into v. Missing keys, read
// failures and undecodable payloads all degrade to false; persisted state
// must never crash a load.
func GetJSON(kv KV, key string, v any) bool {
	data, err := kv.Get(key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Printf("[Storage] Failed to read %q: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		log.Printf("[Storage] Discarding corrupt value for %q: %v", key, err)
		return false
	}
	return true
}

// SetJSON encodes v and stores it under key.
func SetJSON(kv KV, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return kv.Set(key, data)
}
