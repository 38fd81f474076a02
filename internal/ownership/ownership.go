// Package ownership confirms that the submitting wallet owns the declared
// evidence, via a signed assertion sent to the external validator service.
package ownership

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dlp-labs/proof-of-contribution/internal/errors"
	"github.com/dlp-labs/proof-of-contribution/internal/monitoring"
)

const validatePath = "/api/proof/validate"

// Client issues signed, time-limited ownership assertions to the validator
// endpoint and interprets its response as a binary pass/fail.
type Client struct {
	baseURL  string
	secret   []byte
	tokenTTL time.Duration
	http     *http.Client
	logger   *monitoring.Logger
}

// NewClient creates an ownership client. timeout bounds the single blocking
// network call; tokenTTL bounds the assertion lifetime.
func NewClient(baseURL, secret string, tokenTTL, timeout time.Duration, logger *monitoring.Logger) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		http:     &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// GenerateToken builds the HS256-signed assertion embedding the wallet
// address and an expiry timestamp.
func (c *Client) GenerateToken(walletAddress string) (string, error) {
	claims := jwt.MapClaims{
		"walletAddress": walletAddress,
		"exp":           time.Now().Add(c.tokenTTL).Unix(),
		"iat":           time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign ownership token: %w", err)
	}

	return tokenString, nil
}

type verifyRequest struct {
	WalletAddress string   `json:"walletAddress"`
	SubType       []string `json:"subType"`
}

// Verify sends {walletAddress, subType} with the bearer assertion attached and
// scores the response: HTTP 200 is 1.0, HTTP 400 is a definitive 0.0, and a
// network failure is logged and scored 0.0 without retry. Any other HTTP
// status is surfaced as an error so the caller decides, rather than being
// silently scored.
func (c *Client) Verify(ctx context.Context, walletAddress string, subTypes []string) (float64, error) {
	if len(c.secret) == 0 {
		return 0, errors.NewValidationError("ownership check requires a signing secret")
	}
	if walletAddress == "" {
		return 0, errors.NewValidationError("ownership check requires a wallet address")
	}
	if len(subTypes) == 0 {
		return 0, errors.NewValidationError("ownership check requires at least one declared subtype")
	}

	token, err := c.GenerateToken(walletAddress)
	if err != nil {
		return 0, errors.NewValidationError("failed to build ownership assertion", err)
	}

	body, err := json.Marshal(verifyRequest{WalletAddress: walletAddress, SubType: subTypes})
	if err != nil {
		return 0, errors.NewInternalError("failed to encode ownership request", err)
	}

	url := c.baseURL + validatePath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, errors.NewInternalError("failed to build ownership request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.ExternalAPILogger("validator", http.MethodPost, validatePath, 0, time.Since(started), false)
		// Single attempt only: a network failure degrades the ownership
		// sub-score, it never aborts the run.
		errors.Log(errors.NewNetworkError("ownership validation call failed", err),
			"url", url, "wallet_address", walletAddress)
		return 0, nil
	}
	defer errors.SafeClose(resp.Body, "ownership response body")
	c.logger.ExternalAPILogger("validator", http.MethodPost, validatePath, resp.StatusCode,
		time.Since(started), resp.StatusCode == http.StatusOK)

	switch {
	case resp.StatusCode == http.StatusOK:
		return 1.0, nil
	case resp.StatusCode == http.StatusBadRequest:
		slog.Warn("Validator rejected ownership assertion",
			"status_code", resp.StatusCode, "wallet_address", walletAddress)
		return 0, nil
	default:
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return 0, errors.NewNetworkError(
			fmt.Sprintf("validator API error: status %d, body: %s", resp.StatusCode, string(respBody)), nil)
	}
}
