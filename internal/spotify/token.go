package spotify

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/cesargomez89/chartpulse/internal/constants"
	"github.com/cesargomez89/chartpulse/internal/domain"
)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// tokenManager holds a client-credentials access token and refreshes it
// shortly before expiry.
type tokenManager struct {
	client       *resty.Client
	clientID     string
	clientSecret string

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

func newTokenManager(clientID, clientSecret, tokenURL string) *tokenManager {
	client := resty.New().
		SetBaseURL(tokenURL).
		SetTimeout(constants.DefaultHTTPTimeout).
		SetRetryCount(constants.DefaultRetryCount).
		SetRetryWaitTime(constants.DefaultRetryBase)

	return &tokenManager{
		client:       client,
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

// Token returns a valid access token, refreshing it when missing or close to
// expiry.
func (tm *tokenManager) Token(ctx context.Context) (string, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if tm.token != "" && time.Now().Before(tm.expiresAt.Add(-constants.TokenRefreshLeeway)) {
		return tm.token, nil
	}

	var body tokenResponse
	resp, err := tm.client.R().
		SetContext(ctx).
		SetBasicAuth(tm.clientID, tm.clientSecret).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetBody("grant_type=client_credentials").
		SetResult(&body).
		Post("")
	if err != nil {
		return "", &domain.SourceUnavailableError{Op: "token", Err: err}
	}
	if resp.StatusCode() != http.StatusOK {
		return "", &domain.SourceUnavailableError{
			Op:         "token",
			StatusCode: resp.StatusCode(),
			Err:        fmt.Errorf("token endpoint returned status %d", resp.StatusCode()),
		}
	}
	if body.AccessToken == "" {
		return "", &domain.SourceUnavailableError{
			Op:  "token",
			Err: fmt.Errorf("token endpoint returned no access token"),
		}
	}

	tm.token = body.AccessToken
	tm.expiresAt = time.Now().Add(time.Duration(body.ExpiresIn) * time.Second)
	return tm.token, nil
}

// invalidate drops the cached token so the next call fetches a fresh one.
func (tm *tokenManager) invalidate() {
	tm.mu.Lock()
	tm.token = ""
	tm.mu.Unlock()
}
