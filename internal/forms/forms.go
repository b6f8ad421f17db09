// Package forms groups the prompt sequences used by the setup wizard and the
// individual commands.
package forms

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/riff-tech/code-checkout-cli/internal/api"
	"github.com/riff-tech/code-checkout-cli/internal/prompt"
	"github.com/riff-tech/code-checkout-cli/internal/validation"
)

// Registration asks for the details of a new publisher account. The
// publisher id defaults to defaultPublisher when it is not empty.
func Registration(p prompt.Prompter, defaultPublisher string) (api.RegistrationRequest, error) {
	var req api.RegistrationRequest

	email, err := p.Ask(prompt.Question{Label: "Email", Validate: validation.Email})
	if err != nil {
		return req, err
	}
	password, err := p.AskSecret(prompt.Question{Label: "Password", Validate: validation.Password})
	if err != nil {
		return req, err
	}
	givenName, err := p.Ask(prompt.Question{Label: "First name", Validate: validation.Required("first name")})
	if err != nil {
		return req, err
	}
	familyName, err := p.Ask(prompt.Question{Label: "Last name", Validate: validation.Required("last name")})
	if err != nil {
		return req, err
	}
	company, err := p.Ask(prompt.Question{Label: "Company (optional)"})
	if err != nil {
		return req, err
	}
	publisher, err := p.Ask(prompt.Question{
		Label:    "Publisher ID",
		Default:  defaultPublisher,
		Validate: validation.Required("publisher ID"),
	})
	if err != nil {
		return req, err
	}

	return api.RegistrationRequest{
		Username:   email,
		Email:      email,
		Password:   password,
		GivenName:  givenName,
		FamilyName: familyName,
		Company:    company,
		Publisher:  publisher,
	}, nil
}

// Credentials asks for an existing account's password, and for the email
// when username is empty.
func Credentials(p prompt.Prompter, username string) (api.LoginRequest, error) {
	if username == "" {
		email, err := p.Ask(prompt.Question{Label: "Email", Validate: validation.Email})
		if err != nil {
			return api.LoginRequest{}, err
		}
		username = email
	}
	password, err := p.AskSecret(prompt.Question{Label: "Password", Validate: validation.Required("password")})
	if err != nil {
		return api.LoginRequest{}, err
	}
	return api.LoginRequest{Username: username, Password: password}, nil
}

// ConfirmationCode asks for the six-digit code sent by email.
func ConfirmationCode(p prompt.Prompter) (string, error) {
	return p.Ask(prompt.Question{
		Label:    "Enter the 6-digit confirmation code sent to your email",
		Validate: validation.ConfirmationCode,
	})
}

const customPrice = "custom"

var priceTiers = []prompt.Choice{
	{Label: "$2.99", Value: "2.99"},
	{Label: "$4.99", Value: "4.99"},
	{Label: "$9.99", Value: "9.99"},
	{Label: "Custom price", Value: customPrice},
}

// PricingPreset carries pricing values already supplied on the command line.
type PricingPreset struct {
	Model         string
	Price         *float64
	FreeTrialDays *int
	Currency      string
}

// Pricing asks for the pricing model, price and, for subscriptions, the
// free trial length. Values present in preset are not asked again.
func Pricing(p prompt.Prompter, preset PricingPreset) (api.PricingRequest, error) {
	model := preset.Model
	if model == "" {
		var err error
		model, err = p.Choose("Select a pricing model", []prompt.Choice{
			{Label: "Monthly Subscription", Value: api.ModelSubscription},
			{Label: "One-time Purchase", Value: api.ModelOneTime},
		})
		if err != nil {
			return api.PricingRequest{}, err
		}
	}

	var price float64
	if preset.Price != nil {
		price = *preset.Price
	} else {
		tier, err := p.Choose("Select a price", priceTiers)
		if err != nil {
			return api.PricingRequest{}, err
		}
		if tier == customPrice {
			answer, err := p.Ask(prompt.Question{
				Label: fmt.Sprintf("Enter a price between $%.2f and $%.2f", validation.MinPrice, validation.MaxPrice),
				Validate: func(s string) error {
					_, err := validation.ParsePrice(s)
					return err
				},
			})
			if err != nil {
				return api.PricingRequest{}, err
			}
			tier = answer
		}
		price, err = validation.ParsePrice(tier)
		if err != nil {
			return api.PricingRequest{}, err
		}
	}

	var trial *int
	if model == api.ModelSubscription {
		if preset.FreeTrialDays != nil {
			trial = preset.FreeTrialDays
		} else {
			answer, err := p.Ask(prompt.Question{
				Label:   "Free trial days (0 for none)",
				Default: "0",
				Validate: func(s string) error {
					_, err := validation.ParseFreeTrialDays(s)
					return err
				},
			})
			if err != nil {
				return api.PricingRequest{}, err
			}
			days, _ := validation.ParseFreeTrialDays(answer)
			if days > 0 {
				trial = &days
			}
		}
	}

	return api.NewPricingRequest(model, price, preset.Currency, trial), nil
}

// LicensePreset carries license values already supplied on the command line.
type LicensePreset struct {
	MaxMachines    int
	ExpirationDate string
}

// License asks for whichever of the machine limit and expiration date are
// missing from preset. now anchors the "in the future" check.
func License(p prompt.Prompter, now time.Time, preset LicensePreset) (api.CreateLicenseRequest, error) {
	maxMachines := preset.MaxMachines
	if maxMachines == 0 {
		answer, err := p.Ask(prompt.Question{
			Label:   "Maximum number of machines",
			Default: "1",
			Validate: func(s string) error {
				_, err := validation.ParseMaxMachines(s)
				return err
			},
		})
		if err != nil {
			return api.CreateLicenseRequest{}, err
		}
		maxMachines, _ = strconv.Atoi(strings.TrimSpace(answer))
	}

	expiration := preset.ExpirationDate
	if expiration == "" {
		defaultDate := now.AddDate(1, 0, 0).UTC().Format(validation.DateLayout)
		answer, err := p.Ask(prompt.Question{
			Label:   "Expiration date (YYYY-MM-DD)",
			Default: defaultDate,
			Validate: func(s string) error {
				_, err := validation.ParseExpirationDate(s, now)
				return err
			},
		})
		if err != nil {
			return api.CreateLicenseRequest{}, err
		}
		expiration = answer
	}

	return api.CreateLicenseRequest{
		MaxMachines:    maxMachines,
		ExpirationDate: expiration,
	}, nil
}

// LicenseID asks for the key of the license to act on.
func LicenseID(p prompt.Prompter) (string, error) {
	return p.Ask(prompt.Question{Label: "License key", Validate: validation.Required("license key")})
}

// RevocationReason asks why a license is being revoked.
func RevocationReason(p prompt.Prompter) (string, error) {
	return p.Ask(prompt.Question{Label: "Reason for revocation", Validate: validation.RevocationReason})
}
