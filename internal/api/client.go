// Package api is the client for the licensing platform's HTTP API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/riff-tech/code-checkout-cli/internal/config"
)

// DefaultAnalyticsWindow is the time range used when a query names none.
const DefaultAnalyticsWindow = 7 * 24 * time.Hour

// isoLayout matches the millisecond UTC timestamps the API expects.
const isoLayout = "2006-01-02T15:04:05.000Z"

// TokenSource supplies the bearer token for authenticated requests.
type TokenSource interface {
	Token() (string, error)
}

// StaticToken is a TokenSource that always returns itself.
type StaticToken string

// Token returns the token.
func (t StaticToken) Token() (string, error) {
	return string(t), nil
}

// Client talks to the licensing platform API. Every method performs exactly
// one HTTP request.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	userAgent  string
	logger     zerolog.Logger
	now        func() time.Time
}

// OptFunc configures a Client.
type OptFunc func(*Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) OptFunc {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithTokenSource sets where bearer tokens come from.
func WithTokenSource(ts TokenSource) OptFunc {
	return func(client *Client) {
		client.tokens = ts
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) OptFunc {
	return func(client *Client) {
		client.userAgent = ua
	}
}

// WithLogger sets the debug logger.
func WithLogger(l zerolog.Logger) OptFunc {
	return func(client *Client) {
		client.logger = l
	}
}

// WithClock overrides the time source used for default analytics windows.
func WithClock(now func() time.Time) OptFunc {
	return func(client *Client) {
		client.now = now
	}
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...OptFunc) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: config.DefaultTimeout},
		tokens:     StaticToken(""),
		userAgent:  "code-checkout-cli",
		logger:     zerolog.Nop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RegisterUser creates a publisher account.
func (c *Client) RegisterUser(ctx context.Context, req RegistrationRequest) error {
	return c.do(ctx, http.MethodPost, "/users", nil, req, nil, false)
}

// ConfirmUser confirms a registration with the emailed code.
func (c *Client) ConfirmUser(ctx context.Context, req ConfirmationRequest) (*ConfirmationResponse, error) {
	var resp ConfirmationResponse
	if err := c.do(ctx, http.MethodPost, "/users/confirm", nil, req, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login exchanges credentials for tokens. A response without an identity
// token is an error.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.do(ctx, http.MethodPost, "/users/login", nil, req, &resp, false); err != nil {
		return nil, err
	}
	if resp.Tokens.IDToken == "" {
		return nil, ErrMissingTokens
	}
	return &resp, nil
}

// PaymentOnboardingURL returns the payment provider onboarding link for a publisher.
func (c *Client) PaymentOnboardingURL(ctx context.Context, publisherID, returnURL string) (string, error) {
	query := url.Values{}
	query.Set("returnUrl", returnURL)

	var resp struct {
		URL string `json:"url"`
	}
	path := "/publishers/" + url.PathEscape(publisherID) + "/stripe/connect-url"
	if err := c.do(ctx, http.MethodGet, path, query, nil, &resp, true); err != nil {
		return "", err
	}
	if resp.URL == "" {
		return "", ErrMissingStripeURL
	}
	return resp.URL, nil
}

// CreateSoftware registers a software package under a publisher.
func (c *Client) CreateSoftware(ctx context.Context, publisherID string, req CreateSoftwareRequest) (*Software, error) {
	var sw Software
	if err := c.do(ctx, http.MethodPost, softwarePath(publisherID, ""), nil, req, &sw, true); err != nil {
		return nil, err
	}
	return &sw, nil
}

// GetSoftware returns the details of a software package.
func (c *Client) GetSoftware(ctx context.Context, publisherID, softwareID string) (*Software, error) {
	var sw Software
	if err := c.do(ctx, http.MethodGet, softwarePath(publisherID, softwareID), nil, nil, &sw, true); err != nil {
		return nil, err
	}
	return &sw, nil
}

// CreatePricing sets the price of a software package.
func (c *Client) CreatePricing(ctx context.Context, publisherID, softwareID string, req PricingRequest) error {
	return c.do(ctx, http.MethodPost, softwarePath(publisherID, softwareID)+"/pricing", nil, req, nil, true)
}

// GetPricing returns the price of a software package.
func (c *Client) GetPricing(ctx context.Context, publisherID, softwareID string) (*Pricing, error) {
	var p Pricing
	if err := c.do(ctx, http.MethodGet, softwarePath(publisherID, softwareID)+"/pricing", nil, nil, &p, true); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateLicense issues a license key for a software package.
func (c *Client) CreateLicense(ctx context.Context, publisherID, softwareID string, req CreateLicenseRequest) (*License, error) {
	var lic License
	if err := c.do(ctx, http.MethodPost, softwarePath(publisherID, softwareID)+"/licenses", nil, req, &lic, true); err != nil {
		return nil, err
	}
	return &lic, nil
}

// ListLicenses returns one page of licenses for a software package.
func (c *Client) ListLicenses(ctx context.Context, publisherID, softwareID string, params ListLicensesParams) (*LicenseList, error) {
	query := url.Values{}
	if params.Status != "" {
		query.Set("status", params.Status)
	}
	if params.Limit > 0 {
		query.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.Offset >= 0 {
		query.Set("offset", strconv.Itoa(params.Offset))
	}

	var list LicenseList
	if err := c.do(ctx, http.MethodGet, softwarePath(publisherID, softwareID)+"/licenses", query, nil, &list, true); err != nil {
		return nil, err
	}
	return &list, nil
}

// RevokeLicense revokes a license key.
func (c *Client) RevokeLicense(ctx context.Context, publisherID, licenseID string, req RevokeLicenseRequest) (*License, error) {
	path := "/publishers/" + url.PathEscape(publisherID) + "/licenses/" + url.PathEscape(licenseID) + "/revoke"

	var lic License
	if err := c.do(ctx, http.MethodPost, path, nil, req, &lic, true); err != nil {
		return nil, err
	}
	return &lic, nil
}

// AnalyticsEvents returns usage events matching q.
func (c *Client) AnalyticsEvents(ctx context.Context, q AnalyticsQuery) (*EventList, error) {
	query := c.analyticsQuery(q)
	if q.CommandID != "" {
		query.Set("commandId", q.CommandID)
	}

	var events EventList
	if err := c.do(ctx, http.MethodGet, "/analytics/events", query, nil, &events, true); err != nil {
		return nil, err
	}
	return &events, nil
}

// AnalyticsSummary returns aggregated usage for the software in q.
func (c *Client) AnalyticsSummary(ctx context.Context, q AnalyticsQuery) (*Summary, error) {
	query := c.analyticsQuery(q)
	query.Set("softwareId", q.SoftwareID)

	var summary Summary
	if err := c.do(ctx, http.MethodGet, "/analytics/summary", query, nil, &summary, true); err != nil {
		return nil, err
	}
	return &summary, nil
}

// analyticsQuery builds the parameters shared by both analytics endpoints,
// filling a missing time range with the last seven days.
func (c *Client) analyticsQuery(q AnalyticsQuery) url.Values {
	now := c.now().UTC()
	start, end := q.StartTime, q.EndTime
	if start == "" {
		start = now.Add(-DefaultAnalyticsWindow).Format(isoLayout)
	}
	if end == "" {
		end = now.Format(isoLayout)
	}

	query := url.Values{}
	query.Set("publisherId", q.PublisherID)
	query.Set("startTime", start)
	query.Set("endTime", end)
	query.Set("extensionId", q.ExtensionID)
	return query
}

func softwarePath(publisherID, softwareID string) string {
	path := "/publishers/" + url.PathEscape(publisherID) + "/software"
	if softwareID != "" {
		path += "/" + url.PathEscape(softwareID)
	}
	return path
}

// do sends one request and decodes a 2xx JSON response into result.
// Non-2xx responses and transport failures go through translate.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload, result any, authenticated bool) error {
	var token string
	if authenticated {
		t, err := c.tokens.Token()
		if err != nil {
			return err
		}
		if t == "" {
			return ErrMissingAuth
		}
		token = t
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return errors.Wrap(err, "marshal request")
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return errors.Wrap(err, "create request")
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().
			Str("method", method).
			Str("path", path).
			Str("request_id", requestID).
			Err(err).
			Msg("api request failed")
		return transportError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportError(errors.Wrap(err, "read response"))
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("api request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return translate(resp.StatusCode, respBody)
	}

	if result == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}
