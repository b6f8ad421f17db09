package forms

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riff-tech/code-checkout-cli/internal/api"
	"github.com/riff-tech/code-checkout-cli/internal/prompt"
	"github.com/riff-tech/code-checkout-cli/internal/validation"
)

func TestRegistration(t *testing.T) {
	p := prompt.NewScripted("dev@example.com", "hunter22!", "Ada", "Lovelace", "", "")

	req, err := Registration(p, "acme")
	require.NoError(t, err)
	assert.Equal(t, api.RegistrationRequest{
		Username:   "dev@example.com",
		Email:      "dev@example.com",
		Password:   "hunter22!",
		GivenName:  "Ada",
		FamilyName: "Lovelace",
		Publisher:  "acme",
	}, req)
}

func TestRegistration_PublisherRequiredWithoutDefault(t *testing.T) {
	p := prompt.NewScripted("dev@example.com", "hunter22!", "Ada", "Lovelace", "Analytical Engines", "")

	_, err := Registration(p, "")
	assert.ErrorContains(t, err, "publisher ID is required")
}

func TestRegistration_RejectsShortPassword(t *testing.T) {
	p := prompt.NewScripted("dev@example.com", "short")

	_, err := Registration(p, "acme")
	assert.ErrorIs(t, err, validation.ErrPasswordTooShort)
}

func TestCredentials(t *testing.T) {
	t.Run("known username", func(t *testing.T) {
		p := prompt.NewScripted("pw")
		req, err := Credentials(p, "dev@example.com")
		require.NoError(t, err)
		assert.Equal(t, api.LoginRequest{Username: "dev@example.com", Password: "pw"}, req)
		assert.Equal(t, []string{"Password"}, p.Asked)
	})

	t.Run("asks for email", func(t *testing.T) {
		p := prompt.NewScripted("dev@example.com", "pw")
		req, err := Credentials(p, "")
		require.NoError(t, err)
		assert.Equal(t, "dev@example.com", req.Username)
	})
}

func TestPricing(t *testing.T) {
	fourteen := 14
	nine := 9.99

	tests := []struct {
		name    string
		answers []string
		preset  PricingPreset
		want    api.PricingRequest
	}{
		{
			name:    "subscription tier with trial",
			answers: []string{"subscription", "4.99", "14"},
			want: api.PricingRequest{
				Model:         "subscription",
				Price:         4.99,
				Currency:      "USD",
				BillingCycle:  "month",
				FreeTrialDays: &fourteen,
			},
		},
		{
			name:    "subscription without trial",
			answers: []string{"1", "1", ""},
			want: api.PricingRequest{
				Model:        "subscription",
				Price:        2.99,
				Currency:     "USD",
				BillingCycle: "month",
			},
		},
		{
			name:    "one-time custom price",
			answers: []string{"one-time", "custom", "19.50"},
			want: api.PricingRequest{
				Model:    "one-time",
				Price:    19.50,
				Currency: "USD",
			},
		},
		{
			name:    "fully preset",
			answers: nil,
			preset:  PricingPreset{Model: "one-time", Price: &nine, Currency: "EUR"},
			want: api.PricingRequest{
				Model:    "one-time",
				Price:    9.99,
				Currency: "EUR",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := prompt.NewScripted(tt.answers...)
			got, err := Pricing(p, tt.preset)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Zero(t, p.Remaining())
		})
	}
}

func TestPricing_CustomPriceOutOfRange(t *testing.T) {
	p := prompt.NewScripted("one-time", "custom", "100.00")
	_, err := Pricing(p, PricingPreset{})
	assert.ErrorIs(t, err, validation.ErrPriceOutOfRange)
}

func TestLicense(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	t.Run("prompts for everything", func(t *testing.T) {
		p := prompt.NewScripted("3", "2027-01-31")
		got, err := License(p, now, LicensePreset{})
		require.NoError(t, err)
		assert.Equal(t, api.CreateLicenseRequest{MaxMachines: 3, ExpirationDate: "2027-01-31"}, got)
	})

	t.Run("defaults", func(t *testing.T) {
		p := prompt.NewScripted("", "")
		got, err := License(p, now, LicensePreset{})
		require.NoError(t, err)
		assert.Equal(t, api.CreateLicenseRequest{MaxMachines: 1, ExpirationDate: "2027-03-15"}, got)
	})

	t.Run("only missing fields", func(t *testing.T) {
		p := prompt.NewScripted("2028-06-01")
		got, err := License(p, now, LicensePreset{MaxMachines: 5})
		require.NoError(t, err)
		assert.Equal(t, 5, got.MaxMachines)
		assert.Equal(t, []string{"Expiration date (YYYY-MM-DD)"}, p.Asked)
	})

	t.Run("past date rejected", func(t *testing.T) {
		p := prompt.NewScripted("2", "2026-03-14")
		_, err := License(p, now, LicensePreset{})
		assert.ErrorIs(t, err, validation.ErrDateNotInFuture)
	})
}

func TestRevocationReason(t *testing.T) {
	p := prompt.NewScripted("   ")
	_, err := RevocationReason(p)
	assert.ErrorIs(t, err, validation.ErrReasonRequired)

	p = prompt.NewScripted("refund issued")
	reason, err := RevocationReason(p)
	require.NoError(t, err)
	assert.Equal(t, "refund issued", reason)
}

func TestConfirmationCode(t *testing.T) {
	code, err := ConfirmationCode(prompt.NewScripted("123456"))
	require.NoError(t, err)
	assert.Equal(t, "123456", code)

	_, err = ConfirmationCode(prompt.NewScripted("12345"))
	assert.ErrorIs(t, err, validation.ErrInvalidCode)
}
