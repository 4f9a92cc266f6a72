package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront/internal/session"
	"github.com/example/storefront/internal/storage"
)

// ============================================
// Session Gate Tests
// ============================================

func TestRequireSession(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("anonymous is rejected", func(t *testing.T) {
		sess := session.NewManager(storage.NewMemoryKV())
		handler := RequireSession(sess)(next)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/wishlist", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "sign in required")
	})

	t.Run("signed-in passes through", func(t *testing.T) {
		sess := session.NewManager(storage.NewMemoryKV())
		require.NoError(t, sess.Establish("tok", "", session.User{Name: "Mona", Email: "mona@example.com"}))
		handler := RequireSession(sess)(next)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/wishlist", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("cleared session is rejected again", func(t *testing.T) {
		sess := session.NewManager(storage.NewMemoryKV())
		require.NoError(t, sess.Establish("tok", "", session.User{Name: "Mona", Email: "mona@example.com"}))
		sess.Clear()
		handler := RequireSession(sess)(next)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/wishlist", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
