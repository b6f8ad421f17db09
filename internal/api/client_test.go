package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	method string
	path   string
	query  map[string][]string
	header http.Header
	body   []byte
}

func newTestServer(t *testing.T, status int, response string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var requests []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		requests = append(requests, recordedRequest{
			method: r.Method,
			path:   r.URL.EscapedPath(),
			query:  r.URL.Query(),
			header: r.Header.Clone(),
			body:   body,
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func decodeBody(t *testing.T, body []byte) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(body, &m))
	return m
}

func TestClient_RegisterUser(t *testing.T) {
	srv, reqs := newTestServer(t, http.StatusCreated, `{"message":"ok"}`)
	client := NewClient(srv.URL)

	err := client.RegisterUser(context.Background(), RegistrationRequest{
		Username:   "dev@example.com",
		Email:      "dev@example.com",
		Password:   "hunter22",
		GivenName:  "Ada",
		FamilyName: "Lovelace",
		Publisher:  "acme",
	})
	require.NoError(t, err)
	require.Len(t, *reqs, 1)

	req := (*reqs)[0]
	assert.Equal(t, http.MethodPost, req.method)
	assert.Equal(t, "/users", req.path)
	assert.Empty(t, req.header.Get("Authorization"), "registration is unauthenticated")
	assert.Equal(t, "application/json", req.header.Get("Content-Type"))
	assert.NotEmpty(t, req.header.Get("X-Request-ID"))

	body := decodeBody(t, req.body)
	assert.Equal(t, "Ada", body["givenName"])
	assert.Equal(t, "acme", body["publisher"])
	assert.NotContains(t, body, "company", "empty company is omitted")
}

func TestClient_Login(t *testing.T) {
	t.Run("returns tokens", func(t *testing.T) {
		srv, reqs := newTestServer(t, http.StatusOK, `{"message":"ok","tokens":{"accessToken":"a","refreshToken":"r","idToken":"i.d.t","expiresIn":3600}}`)
		resp, err := NewClient(srv.URL).Login(context.Background(), LoginRequest{Username: "dev@example.com", Password: "pw"})
		require.NoError(t, err)
		assert.Equal(t, "i.d.t", resp.Tokens.IDToken)
		assert.Equal(t, 3600, resp.Tokens.ExpiresIn)
		assert.Equal(t, "/users/login", (*reqs)[0].path)
	})

	t.Run("missing id token", func(t *testing.T) {
		srv, _ := newTestServer(t, http.StatusOK, `{"message":"ok","tokens":{"accessToken":"a"}}`)
		_, err := NewClient(srv.URL).Login(context.Background(), LoginRequest{Username: "u", Password: "p"})
		assert.ErrorIs(t, err, ErrMissingTokens)
	})
}

func TestClient_ConfirmUser(t *testing.T) {
	srv, reqs := newTestServer(t, http.StatusOK, `{"message":"confirmed","username":"dev@example.com"}`)
	resp, err := NewClient(srv.URL).ConfirmUser(context.Background(), ConfirmationRequest{Username: "dev@example.com", ConfirmationCode: "123456"})
	require.NoError(t, err)
	assert.Equal(t, "dev@example.com", resp.Username)
	assert.Equal(t, "123456", decodeBody(t, (*reqs)[0].body)["confirmationCode"])
}

func TestClient_PaymentOnboardingURL(t *testing.T) {
	t.Run("returns url", func(t *testing.T) {
		srv, reqs := newTestServer(t, http.StatusOK, `{"url":"https://connect.stripe.com/setup/abc"}`)
		client := NewClient(srv.URL, WithTokenSource(StaticToken("tok")))

		link, err := client.PaymentOnboardingURL(context.Background(), "pub-1", "https://www.code-checkout.com")
		require.NoError(t, err)
		assert.Equal(t, "https://connect.stripe.com/setup/abc", link)

		req := (*reqs)[0]
		assert.Equal(t, "/publishers/pub-1/stripe/connect-url", req.path)
		assert.Equal(t, []string{"https://www.code-checkout.com"}, req.query["returnUrl"])
		assert.Equal(t, "Bearer tok", req.header.Get("Authorization"))
	})

	t.Run("missing url", func(t *testing.T) {
		srv, _ := newTestServer(t, http.StatusOK, `{}`)
		_, err := NewClient(srv.URL, WithTokenSource(StaticToken("tok"))).PaymentOnboardingURL(context.Background(), "pub-1", "x")
		assert.ErrorIs(t, err, ErrMissingStripeURL)
	})
}

func TestClient_MissingTokenSkipsRequest(t *testing.T) {
	srv, reqs := newTestServer(t, http.StatusOK, `{}`)
	_, err := NewClient(srv.URL).GetSoftware(context.Background(), "pub-1", "sw-1")
	assert.ErrorIs(t, err, ErrMissingAuth)
	assert.Empty(t, *reqs)
}

type failingTokens struct{}

func (failingTokens) Token() (string, error) { return "", errors.New("session unreadable") }

func TestClient_TokenSourceError(t *testing.T) {
	srv, reqs := newTestServer(t, http.StatusOK, `{}`)
	_, err := NewClient(srv.URL, WithTokenSource(failingTokens{})).GetPricing(context.Background(), "pub-1", "sw-1")
	assert.EqualError(t, err, "session unreadable")
	assert.Empty(t, *reqs)
}

func TestClient_CreateSoftware(t *testing.T) {
	srv, reqs := newTestServer(t, http.StatusCreated, `{"id":"sw-1","name":"my-ext","version":"1.0.0","extensionId":"pub-1.my-ext","metadata":{"category":"Development Tools","platform":"Cross-platform"}}`)
	client := NewClient(srv.URL, WithTokenSource(StaticToken("tok")))

	sw, err := client.CreateSoftware(context.Background(), "pub-1", CreateSoftwareRequest{
		Name:        "my-ext",
		Version:     "1.0.0",
		ExtensionID: "pub-1.my-ext",
		Metadata:    SoftwareMetadata{Category: DefaultCategory, Platform: DefaultPlatform},
	})
	require.NoError(t, err)
	assert.Equal(t, "sw-1", sw.ID)

	req := (*reqs)[0]
	assert.Equal(t, "/publishers/pub-1/software", req.path)
	body := decodeBody(t, req.body)
	assert.Equal(t, "pub-1.my-ext", body["extensionId"])
	assert.Equal(t, map[string]any{"category": "Development Tools", "platform": "Cross-platform"}, body["metadata"])
}

func TestClient_CreatePricing(t *testing.T) {
	trial := 14
	tests := []struct {
		name     string
		req      PricingRequest
		wantBody map[string]any
	}{
		{
			name: "subscription",
			req:  NewPricingRequest(ModelSubscription, 4.99, "", &trial),
			wantBody: map[string]any{
				"model":         "subscription",
				"price":         4.99,
				"currency":      "USD",
				"billingCycle":  "month",
				"freeTrialDays": float64(14),
			},
		},
		{
			name: "one-time ignores trial",
			req:  NewPricingRequest(ModelOneTime, 9.99, "EUR", &trial),
			wantBody: map[string]any{
				"model":    "one-time",
				"price":    9.99,
				"currency": "EUR",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, reqs := newTestServer(t, http.StatusOK, ``)
			err := NewClient(srv.URL, WithTokenSource(StaticToken("tok"))).CreatePricing(context.Background(), "pub-1", "sw-1", tt.req)
			require.NoError(t, err)

			req := (*reqs)[0]
			assert.Equal(t, "/publishers/pub-1/software/sw-1/pricing", req.path)
			assert.Equal(t, tt.wantBody, decodeBody(t, req.body))
		})
	}
}

func TestClient_Licenses(t *testing.T) {
	t.Run("create", func(t *testing.T) {
		srv, reqs := newTestServer(t, http.StatusCreated, `{"licenseKey":"KEY-1","status":"active","maxMachines":3,"expirationDate":"2030-01-01"}`)
		lic, err := NewClient(srv.URL, WithTokenSource(StaticToken("tok"))).CreateLicense(context.Background(), "pub-1", "sw-1", CreateLicenseRequest{MaxMachines: 3, ExpirationDate: "2030-01-01"})
		require.NoError(t, err)
		assert.Equal(t, "KEY-1", lic.LicenseKey)
		assert.Equal(t, "/publishers/pub-1/software/sw-1/licenses", (*reqs)[0].path)
		assert.Equal(t, float64(3), decodeBody(t, (*reqs)[0].body)["maxMachines"])
	})

	t.Run("list with status", func(t *testing.T) {
		srv, reqs := newTestServer(t, http.StatusOK, `{"licenses":[{"licenseKey":"A"},{"licenseKey":"B"}]}`)
		list, err := NewClient(srv.URL, WithTokenSource(StaticToken("tok"))).ListLicenses(context.Background(), "pub-1", "sw-1", ListLicensesParams{Status: "active", Limit: 10})
		require.NoError(t, err)
		assert.Len(t, list.Licenses, 2)

		q := (*reqs)[0].query
		assert.Equal(t, []string{"active"}, q["status"])
		assert.Equal(t, []string{"10"}, q["limit"])
		assert.Equal(t, []string{"0"}, q["offset"])
	})

	t.Run("list all omits status", func(t *testing.T) {
		srv, reqs := newTestServer(t, http.StatusOK, `{"licenses":[]}`)
		_, err := NewClient(srv.URL, WithTokenSource(StaticToken("tok"))).ListLicenses(context.Background(), "pub-1", "sw-1", ListLicensesParams{Limit: 5, Offset: 10})
		require.NoError(t, err)

		q := (*reqs)[0].query
		assert.NotContains(t, q, "status")
		assert.Equal(t, []string{"10"}, q["offset"])
	})

	t.Run("revoke", func(t *testing.T) {
		srv, reqs := newTestServer(t, http.StatusOK, `{"licenseKey":"KEY/1","status":"revoked","metadata":{"revokeReason":"refund"}}`)
		lic, err := NewClient(srv.URL, WithTokenSource(StaticToken("tok"))).RevokeLicense(context.Background(), "pub-1", "KEY/1", RevokeLicenseRequest{Reason: "refund"})
		require.NoError(t, err)
		assert.Equal(t, "revoked", lic.Status)
		assert.Equal(t, "/publishers/pub-1/licenses/KEY%2F1/revoke", (*reqs)[0].path)
		assert.Equal(t, "refund", decodeBody(t, (*reqs)[0].body)["reason"])
	})
}

func TestClient_AnalyticsDefaultWindow(t *testing.T) {
	now := time.Date(2024, 1, 16, 10, 0, 0, 0, time.UTC)
	srv, reqs := newTestServer(t, http.StatusOK, `{"events":[{"commandId":"ext.run","hasValidLicense":true,"timestamp":"2024-01-15T09:00:00.000Z"}]}`)
	client := NewClient(srv.URL, WithTokenSource(StaticToken("tok")), WithClock(func() time.Time { return now }))

	events, err := client.AnalyticsEvents(context.Background(), AnalyticsQuery{
		PublisherID: "pub-1",
		ExtensionID: "acme.my-ext",
	})
	require.NoError(t, err)
	require.Len(t, events.Events, 1)
	assert.True(t, events.Events[0].HasValidLicense)

	q := (*reqs)[0].query
	assert.Equal(t, "/analytics/events", (*reqs)[0].path)
	assert.Equal(t, []string{"2024-01-09T10:00:00.000Z"}, q["startTime"])
	assert.Equal(t, []string{"2024-01-16T10:00:00.000Z"}, q["endTime"])
	assert.Equal(t, []string{"acme.my-ext"}, q["extensionId"])
	assert.Equal(t, []string{"pub-1"}, q["publisherId"])
	assert.NotContains(t, q, "commandId")
}

func TestClient_AnalyticsSummary(t *testing.T) {
	srv, reqs := newTestServer(t, http.StatusOK, `{"totalEvents":12,"commandCounts":{"ext.run":10,"ext.build":2},"licenseStatusCounts":{"valid":9,"invalid":3},"timeRange":{"start":"2024-01-01","end":"2024-01-31"}}`)
	client := NewClient(srv.URL, WithTokenSource(StaticToken("tok")))

	summary, err := client.AnalyticsSummary(context.Background(), AnalyticsQuery{
		PublisherID: "pub-1",
		SoftwareID:  "sw-1",
		ExtensionID: "acme.my-ext",
		StartTime:   "2024-01-01",
		EndTime:     "2024-01-31",
	})
	require.NoError(t, err)
	assert.Equal(t, 12, summary.TotalEvents)
	assert.Equal(t, 10, summary.CommandCounts["ext.run"])
	assert.Equal(t, 3, summary.LicenseStatusCounts.Invalid)

	q := (*reqs)[0].query
	assert.Equal(t, []string{"sw-1"}, q["softwareId"])
	assert.Equal(t, []string{"2024-01-01"}, q["startTime"])
	assert.Equal(t, []string{"2024-01-31"}, q["endTime"])
}

func TestClient_ErrorFunnel(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantErr  error
		wantText string
	}{
		{name: "server message wins", status: http.StatusBadRequest, body: `{"message":"Software name already taken"}`, wantText: "Software name already taken"},
		{name: "server message on 401", status: http.StatusUnauthorized, body: `{"message":"Token expired"}`, wantText: "Token expired"},
		{name: "401 without message", status: http.StatusUnauthorized, body: ``, wantErr: ErrUnauthorized},
		{name: "403 without message", status: http.StatusForbidden, body: `{}`, wantErr: ErrForbidden},
		{name: "404 without body", status: http.StatusNotFound, body: ``, wantErr: ErrNotFound},
		{name: "500 html body", status: http.StatusInternalServerError, body: `<html>oops</html>`, wantText: "Request failed with status code 500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, tt.status, tt.body)
			_, err := NewClient(srv.URL, WithTokenSource(StaticToken("tok"))).GetSoftware(context.Background(), "pub-1", "sw-1")
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantText != "" {
				assert.EqualError(t, err, tt.wantText)
				var apiErr *APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, tt.status, apiErr.StatusCode)
			}
		})
	}
}

func TestClient_NotFoundMessage(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusNotFound, ``)
	_, err := NewClient(srv.URL, WithTokenSource(StaticToken("tok"))).GetPricing(context.Background(), "pub-1", "sw-1")
	assert.EqualError(t, err, "Resource not found. Please check the request.")
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	err := NewClient(url).RegisterUser(context.Background(), RegistrationRequest{})
	require.Error(t, err)

	var transport *TransportError
	assert.ErrorAs(t, err, &transport)
	assert.NotEmpty(t, err.Error())
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, WithHTTPClient(&http.Client{Timeout: 20 * time.Millisecond}))
	err := client.RegisterUser(context.Background(), RegistrationRequest{})

	var transport *TransportError
	assert.ErrorAs(t, err, &transport)
}
