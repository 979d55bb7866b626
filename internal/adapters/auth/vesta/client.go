package vesta

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"medication-reminders/internal/platform/httpclient"
	"medication-reminders/internal/ports/auth"
)

var (
	ErrVestaNotConfigured = errors.New("vesta client not configured")
	ErrVestaUnauthorized  = errors.New("vesta unauthorized")
	ErrVestaUpstream      = errors.New("vesta upstream error")
)

// Config del cliente Vesta (el IAM de la plataforma de delivery).
// BaseURL y APIKey vienen de env en quien lo instancie.
type Config struct {
	BaseURL string
	APIKey  string

	// Header donde viaja la API key; vacío => "X-Api-Key".
	APIKeyHeader string

	Timeout time.Duration
}

type Client struct {
	http         *httpclient.Client
	apiKey       string
	apiKeyHeader string
}

func NewClient(cfg Config) (*Client, error) {
	header := strings.TrimSpace(cfg.APIKeyHeader)
	if header == "" {
		header = "X-Api-Key"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	hc, err := httpclient.NewWithBaseURL(cfg.BaseURL, timeout)
	if err != nil {
		return nil, err
	}

	return &Client{
		http:         hc,
		apiKey:       strings.TrimSpace(cfg.APIKey),
		apiKeyHeader: header,
	}, nil
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.http != nil && c.http.BaseURL != "" && c.apiKey != ""
}

// VerifyToken valida un token de sesión contra Vesta y trae claims.
func (c *Client) VerifyToken(ctx context.Context, token string) (auth.Claims, error) {
	if !c.IsConfigured() {
		return auth.Claims{}, ErrVestaNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrVestaUnauthorized
	}

	const verifyPath = "/v1/sessions/verify"

	var out struct {
		UserID string `json:"user_id"`
		Email  string `json:"email"`
		Phone  string `json:"phone"`
	}

	headers := map[string]string{
		c.apiKeyHeader:  c.apiKey,
		"Authorization": "Bearer " + token,
	}

	err := c.http.DoJSON(ctx, http.MethodPost, verifyPath, headers, map[string]string{"token": token}, &out)
	if err != nil {
		var httpErr *httpclient.HTTPError
		if errors.As(err, &httpErr) {
			switch httpErr.StatusCode {
			case http.StatusUnauthorized, http.StatusForbidden:
				return auth.Claims{}, ErrVestaUnauthorized
			default:
				return auth.Claims{}, fmt.Errorf("%w: status=%d", ErrVestaUpstream, httpErr.StatusCode)
			}
		}
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrVestaUpstream, err)
	}

	out.UserID = strings.TrimSpace(out.UserID)
	if out.UserID == "" {
		return auth.Claims{}, errors.New("vesta response missing user_id")
	}

	return auth.Claims{
		UserID: out.UserID,
		Email:  strings.TrimSpace(out.Email),
		Phone:  strings.TrimSpace(out.Phone),
	}, nil
}
