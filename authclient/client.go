package authclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/modernbank/api-gateway/internal/auth"
	"github.com/modernbank/api-gateway/internal/shared"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// DefaultValidatePath is the validation endpoint of the authentication service
const DefaultValidatePath = "/authentication/validate"

// maxErrorBody caps how much of a rejection body is copied into the failure message
const maxErrorBody = 4 << 10

// Config holds configuration for Client
type Config struct {
	BaseURL      string
	ValidatePath string
	// Timeout bounds the whole validation call. Zero means no client-side deadline.
	Timeout time.Duration
	// HTTPClient overrides the default instrumented client
	HTTPClient *http.Client
}

// UserInfo is the identity payload returned by the authentication service
type UserInfo struct {
	ID          string   `json:"id" validate:"required"`
	Email       string   `json:"email" validate:"required"`
	Authorities []string `json:"authorities"`
}

// Client exchanges bearer tokens for identities at the authentication service.
// Each Validate call performs exactly one outbound request and never retries.
type Client struct {
	validateURL *url.URL
	httpClient  *http.Client
	validate    *validator.Validate
	logger      *zap.Logger
}

// New creates a new Client
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("auth service base URL is required")
	}
	if cfg.ValidatePath == "" {
		cfg.ValidatePath = DefaultValidatePath
	}

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid auth service URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid auth service URL %q: scheme and host are required", cfg.BaseURL)
	}
	validateURL := base.JoinPath(cfg.ValidatePath)

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	// A redirect would be a second call; surface it as a bad response instead
	client := *httpClient
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	return &Client{
		validateURL: validateURL,
		httpClient:  &client,
		validate:    validator.New(),
		logger:      logger,
	}, nil
}

// Validate sends the token to the authentication service and returns the
// principal it vouches for. Failures are *shared.Failure values.
func (c *Client) Validate(ctx context.Context, token string) (*auth.Principal, error) {
	req, err := c.newRequest(ctx, token)
	if err != nil {
		return nil, shared.NewInternal(err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return c.decodePrincipal(resp.Body)

	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Debug("auth service rejected token",
			zap.Int("status", resp.StatusCode))
		return nil, shared.NewInvalidCredentials(string(body))

	case resp.StatusCode >= 500:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Warn("auth service returned server error",
			zap.Int("status", resp.StatusCode))
		return nil, shared.NewUpstreamUnavailable(fmt.Sprintf("auth service status %d", resp.StatusCode))

	default:
		c.logger.Warn("auth service returned unexpected status",
			zap.Int("status", resp.StatusCode))
		return nil, shared.NewUpstreamBadResponse(resp.StatusCode)
	}
}

// newRequest builds GET <base>/authentication/validate?token=<token> carrying the
// same token as a bearer credential
func (c *Client) newRequest(ctx context.Context, token string) (*http.Request, error) {
	u := *c.validateURL
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create validation request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) decodePrincipal(body io.Reader) (*auth.Principal, error) {
	var info UserInfo
	if err := json.NewDecoder(body).Decode(&info); err != nil {
		return nil, shared.NewInternal(fmt.Errorf("failed to decode identity payload: %w", err))
	}
	if err := c.validate.Struct(&info); err != nil {
		return nil, shared.NewInternal(fmt.Errorf("incomplete identity payload: %w", err))
	}
	return auth.NewPrincipal(info.ID, info.Email, info.Authorities), nil
}

// classifyTransportError separates "could not reach the service" from every
// other failure of the call
func (c *Client) classifyTransportError(ctx context.Context, err error) error {
	// url.Error repeats the request URL, which carries the token
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return shared.NewInternal(ctxErr)
	}
	if isConnectionFailure(err) {
		c.logger.Warn("auth service unreachable", zap.Error(err))
		return shared.NewUpstreamUnreachable(err)
	}
	c.logger.Error("auth service call failed", zap.Error(err))
	return shared.NewInternal(err)
}

func isConnectionFailure(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

// Close releases idle connections to the authentication service
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
