package ownership

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dlp-labs/proof-of-contribution/internal/errors"
	"github.com/dlp-labs/proof-of-contribution/internal/monitoring"
)

const testSecret = "test-secret"

func newTestClient(baseURL string) *Client {
	return NewClient(baseURL, testSecret, time.Minute, 2*time.Second, monitoring.NewLogger())
}

func TestGenerateToken(t *testing.T) {
	c := newTestClient("http://validator.local")

	tokenString, err := c.GenerateToken("0xabc")
	require.NoError(t, err)

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "0xabc", claims["walletAddress"])

	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	remaining := time.Until(exp.Time)
	assert.Greater(t, remaining, 50*time.Second)
	assert.LessOrEqual(t, remaining, time.Minute)
}

func TestVerify(t *testing.T) {
	t.Run("validator approval scores one", func(t *testing.T) {
		var gotPath, gotAuth string
		var gotBody verifyRequest

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotAuth = r.Header.Get("Authorization")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		c := newTestClient(srv.URL)
		score, err := c.Verify(context.Background(), "0xabc", []string{"AMAZON_ORDER_HISTORY", "NETFLIX_HISTORY"})
		require.NoError(t, err)
		assert.Equal(t, 1.0, score)

		assert.Equal(t, "/api/proof/validate", gotPath)
		assert.Regexp(t, `^Bearer \S+$`, gotAuth)
		assert.Equal(t, "0xabc", gotBody.WalletAddress)
		assert.Equal(t, []string{"AMAZON_ORDER_HISTORY", "NETFLIX_HISTORY"}, gotBody.SubType)
	})

	t.Run("validator rejection scores zero without error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer srv.Close()

		score, err := newTestClient(srv.URL).Verify(context.Background(), "0xabc", []string{"NETFLIX_HISTORY"})
		require.NoError(t, err)
		assert.Equal(t, 0.0, score)
	})

	t.Run("unexpected validator status surfaces a network error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		score, err := newTestClient(srv.URL).Verify(context.Background(), "0xabc", []string{"NETFLIX_HISTORY"})
		require.Error(t, err)
		assert.True(t, errors.IsCategory(err, errors.CategoryNetwork))
		assert.Equal(t, 0.0, score)
	})

	t.Run("transport failure scores zero without error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		score, err := newTestClient(srv.URL).Verify(context.Background(), "0xabc", []string{"NETFLIX_HISTORY"})
		require.NoError(t, err)
		assert.Equal(t, 0.0, score)
	})

	t.Run("invalid inputs fail before any network call", func(t *testing.T) {
		var calls int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt64(&calls, 1)
		}))
		defer srv.Close()

		tests := []struct {
			name     string
			client   *Client
			wallet   string
			subTypes []string
		}{
			{
				name:     "missing signing secret",
				client:   NewClient(srv.URL, "", time.Minute, time.Second, monitoring.NewLogger()),
				wallet:   "0xabc",
				subTypes: []string{"NETFLIX_HISTORY"},
			},
			{
				name:     "missing wallet address",
				client:   newTestClient(srv.URL),
				subTypes: []string{"NETFLIX_HISTORY"},
			},
			{
				name:   "no declared subtypes",
				client: newTestClient(srv.URL),
				wallet: "0xabc",
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				score, err := tt.client.Verify(context.Background(), tt.wallet, tt.subTypes)
				require.Error(t, err)
				assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
				assert.Equal(t, 0.0, score)
			})
		}

		assert.Equal(t, int64(0), atomic.LoadInt64(&calls))
	})
}
