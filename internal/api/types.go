package api

// RegistrationRequest creates a publisher account.
type RegistrationRequest struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	GivenName  string `json:"givenName"`
	FamilyName string `json:"familyName"`
	Company    string `json:"company,omitempty"`
	Publisher  string `json:"publisher"`
}

// ConfirmationRequest confirms a registration with the emailed code.
type ConfirmationRequest struct {
	Username         string `json:"username"`
	ConfirmationCode string `json:"confirmationCode"`
}

// ConfirmationResponse is returned by a successful confirmation.
type ConfirmationResponse struct {
	Message  string `json:"message"`
	Username string `json:"username"`
}

// LoginRequest exchanges credentials for tokens.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Tokens are the credentials returned by a login.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	IDToken      string `json:"idToken"`
	ExpiresIn    int    `json:"expiresIn"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Message string `json:"message"`
	Tokens  Tokens `json:"tokens"`
}

// SoftwareMetadata classifies a software package.
type SoftwareMetadata struct {
	Category string `json:"category"`
	Platform string `json:"platform"`
}

// Default metadata attached to newly registered software.
const (
	DefaultCategory = "Development Tools"
	DefaultPlatform = "Cross-platform"
)

// CreateSoftwareRequest registers a software package.
type CreateSoftwareRequest struct {
	Name        string           `json:"name"`
	Version     string           `json:"version"`
	Metadata    SoftwareMetadata `json:"metadata"`
	ExtensionID string           `json:"extensionId"`
}

// Software describes a registered software package.
type Software struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Version     string           `json:"version"`
	ExtensionID string           `json:"extensionId"`
	Status      string           `json:"status,omitempty"`
	Metadata    SoftwareMetadata `json:"metadata"`
}

// Pricing models and billing cycles.
const (
	ModelSubscription = "subscription"
	ModelOneTime      = "one-time"
	BillingMonthly    = "month"
	DefaultCurrency   = "USD"
)

// PricingRequest configures the price of a software package.
type PricingRequest struct {
	Model         string  `json:"model"`
	Price         float64 `json:"price"`
	Currency      string  `json:"currency"`
	BillingCycle  string  `json:"billingCycle,omitempty"`
	FreeTrialDays *int    `json:"freeTrialDays,omitempty"`
}

// NewPricingRequest fills in the currency and the billing cycle implied by model.
func NewPricingRequest(model string, price float64, currency string, freeTrialDays *int) PricingRequest {
	if currency == "" {
		currency = DefaultCurrency
	}
	req := PricingRequest{
		Model:    model,
		Price:    price,
		Currency: currency,
	}
	if model == ModelSubscription {
		req.BillingCycle = BillingMonthly
		req.FreeTrialDays = freeTrialDays
	}
	return req
}

// PricingMetadata carries optional pricing annotations.
type PricingMetadata struct {
	Discount string `json:"discount,omitempty"`
}

// Pricing is the configured price of a software package.
type Pricing struct {
	Model         string          `json:"model"`
	PublisherID   string          `json:"publisherId"`
	Currency      string          `json:"currency"`
	Price         float64         `json:"price"`
	Metadata      PricingMetadata `json:"metadata"`
	FreeTrialDays *int            `json:"freeTrialDays,omitempty"`
	BillingCycle  string          `json:"billingCycle,omitempty"`
}

// CreateLicenseRequest issues a license key.
type CreateLicenseRequest struct {
	MaxMachines    int    `json:"maxMachines"`
	ExpirationDate string `json:"expirationDate"`
}

// LicenseMetadata carries optional license annotations.
type LicenseMetadata struct {
	CreatedBy     string `json:"createdBy,omitempty"`
	Note          string `json:"note,omitempty"`
	CustomerID    string `json:"customerId,omitempty"`
	StripePriceID string `json:"stripePriceId,omitempty"`
	RevokedAt     string `json:"revokedAt,omitempty"`
	RevokeReason  string `json:"revokeReason,omitempty"`
}

// License is an issued license key.
type License struct {
	LicenseKey     string          `json:"licenseKey"`
	PublisherID    string          `json:"publisherId"`
	SoftwareID     string          `json:"softwareId"`
	Status         string          `json:"status"`
	MaxMachines    int             `json:"maxMachines"`
	ExpirationDate string          `json:"expirationDate"`
	Metadata       LicenseMetadata `json:"metadata"`
	CreatedAt      string          `json:"createdAt"`
	UpdatedAt      string          `json:"updatedAt"`
}

// ListLicensesParams filters a license listing. An empty Status lists every status.
type ListLicensesParams struct {
	Status string
	Limit  int
	Offset int
}

// LicenseList is a page of licenses.
type LicenseList struct {
	Licenses []License `json:"licenses"`
}

// RevokeLicenseRequest revokes a license key.
type RevokeLicenseRequest struct {
	Reason string `json:"reason"`
}

// AnalyticsQuery selects usage events. Empty StartTime and EndTime default
// to the last seven days.
type AnalyticsQuery struct {
	PublisherID string
	SoftwareID  string
	ExtensionID string
	CommandID   string
	StartTime   string
	EndTime     string
}

// EventMetadata carries optional event details.
type EventMetadata struct {
	Category string  `json:"category,omitempty"`
	Duration float64 `json:"duration,omitempty"`
}

// Event is one recorded command invocation.
type Event struct {
	CommandID       string        `json:"commandId"`
	HasValidLicense bool          `json:"hasValidLicense"`
	Timestamp       string        `json:"timestamp"`
	Metadata        EventMetadata `json:"metadata"`
}

// EventList is the response of the events endpoint.
type EventList struct {
	Events []Event `json:"events"`
}

// LicenseStatusCounts splits events by license validity.
type LicenseStatusCounts struct {
	Valid   int `json:"valid"`
	Invalid int `json:"invalid"`
}

// TimeRange is the window a summary covers.
type TimeRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Summary aggregates usage events.
type Summary struct {
	TotalEvents         int                 `json:"totalEvents"`
	CommandCounts       map[string]int      `json:"commandCounts"`
	LicenseStatusCounts LicenseStatusCounts `json:"licenseStatusCounts"`
	TimeRange           TimeRange           `json:"timeRange"`
}
