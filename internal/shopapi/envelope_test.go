package shopapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront/internal/catalog"
)

// ============================================
// Envelope Normalization Tests
// ============================================

func TestUnwrapList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{"data envelope", `{"results":2,"data":[{"_id":"a"},{"_id":"b"}]}`, 2},
		{"bare array", `[{"_id":"a"}]`, 1},
		{"empty data", `{"data":[]}`, 0},
		{"missing data", `{"message":"ok"}`, 0},
		{"null data", `{"data":null}`, 0},
		{"garbage", `not json`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := unwrapList[catalog.Product]([]byte(tt.raw))
			require.NotNil(t, got, "callers iterate without nil checks")
			assert.Len(t, got, tt.want)
		})
	}
}

func TestUnwrapObject(t *testing.T) {
	t.Run("data envelope", func(t *testing.T) {
		p := unwrapObject[catalog.Product]([]byte(`{"data":{"_id":"p1","title":"Lamp"}}`))
		require.NotNil(t, p)
		assert.Equal(t, "p1", p.ID)
		assert.Equal(t, "Lamp", p.Title)
	})

	t.Run("flat payload", func(t *testing.T) {
		p := unwrapObject[catalog.Product]([]byte(`{"_id":"p2"}`))
		require.NotNil(t, p)
		assert.Equal(t, "p2", p.ID)
	})

	t.Run("null data falls through to flat", func(t *testing.T) {
		p := unwrapObject[catalog.Product]([]byte(`{"data":null}`))
		require.NotNil(t, p)
		assert.Empty(t, p.ID)
	})

	t.Run("garbage", func(t *testing.T) {
		assert.Nil(t, unwrapObject[catalog.Product]([]byte(`[1,2]`)))
	})
}
