package shopapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"

	"github.com/example/storefront/internal/session"
)

// refresher serializes token refreshes. The first 401 starts the refresh;
// requests failing while it is in flight queue as pending continuations and
// are released FIFO with the outcome. The in-flight flag is set before the
// network call begins and cleared only after the queue has drained, so a
// second 401 can never start a second refresh.
type refresher struct {
	http    *http.Client
	baseURL string
	session *session.Manager

	mu       sync.Mutex
	inflight bool
	waiters  []chan refreshOutcome
}

type refreshOutcome struct {
	token string
	err   error
}

// run returns the refreshed access token, joining an in-flight refresh when
// one exists. On failure every waiter gets the same error and the session is
// already cleared.
func (r *refresher) run(ctx context.Context) (string, error) {
	r.mu.Lock()
	if r.inflight {
		ch := make(chan refreshOutcome, 1)
		r.waiters = append(r.waiters, ch)
		r.mu.Unlock()

		select {
		case outcome := <-ch:
			return outcome.token, outcome.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	r.inflight = true
	r.mu.Unlock()

	token, err := r.refreshOnce(ctx)

	r.mu.Lock()
	waiters := r.waiters
	r.waiters = nil
	r.inflight = false
	r.mu.Unlock()

	// Queue-join order: channels were appended in arrival order.
	for _, ch := range waiters {
		ch <- refreshOutcome{token: token, err: err}
	}
	return token, err
}

func (r *refresher) refreshOnce(ctx context.Context) (string, error) {
	refreshToken := r.session.RefreshToken()
	if refreshToken == "" {
		r.session.Clear()
		return "", ErrNoRefreshToken
	}

	payload, err := json.Marshal(map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		r.baseURL+"/auth/refresh", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		r.session.Clear()
		return "", &Error{Status: 0, cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		r.session.Clear()
		return "", &Error{Status: 0, cause: err}
	}
	if resp.StatusCode >= 400 {
		r.session.Clear()
		log.Printf("[Shop] Token refresh failed with status %d", resp.StatusCode)
		return "", &Error{Status: resp.StatusCode, Message: remoteMessage(body)}
	}

	var result struct {
		AccessToken string `json:"accessToken"`
		Token       string `json:"token"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		r.session.Clear()
		return "", fmt.Errorf("parsing refresh response: %w", err)
	}
	token := result.AccessToken
	if token == "" {
		token = result.Token
	}
	if token == "" {
		r.session.Clear()
		return "", fmt.Errorf("refresh response contained no access token")
	}

	r.session.SetAccessToken(token)
	return token, nil
}
