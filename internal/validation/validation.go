// Package validation holds the input rules shared by command flags and
// interactive prompts.
package validation

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/currency"
)

// Price bounds for a custom price, in the pricing currency.
const (
	MinPrice = 2.99
	MaxPrice = 99.99
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// MaxFreeTrialDays is the longest accepted free trial.
const MaxFreeTrialDays = 365

// DateLayout is the layout of calendar-date inputs.
const DateLayout = "2006-01-02"

// License status filters.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusRevoked  = "revoked"
	StatusAll      = "all"
)

// Pricing models.
const (
	ModelSubscription = "subscription"
	ModelOneTime      = "one-time"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	codePattern  = regexp.MustCompile(`^[0-9]{6}$`)
	datePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// Validation errors.
var (
	ErrInvalidEmail       = errors.New("please enter a valid email address")
	ErrPasswordTooShort   = fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
	ErrInvalidCode        = errors.New("please enter a valid 6-digit code")
	ErrInvalidNumber      = errors.New("please enter a valid number")
	ErrPriceOutOfRange    = fmt.Errorf("price must be between $%.2f and $%.2f", MinPrice, MaxPrice)
	ErrInvalidMaxMachines = errors.New("please enter a valid number greater than 0")
	ErrInvalidDateFormat  = errors.New("please enter a valid date in YYYY-MM-DD format")
	ErrDateNotInFuture    = errors.New("expiration date must be in the future")
	ErrReasonRequired     = errors.New("revocation reason is required")
	ErrInvalidStatus      = fmt.Errorf("status must be one of: %s, %s, %s, %s", StatusActive, StatusInactive, StatusRevoked, StatusAll)
	ErrInvalidTrialDays   = fmt.Errorf("free trial days must be a whole number between 0 and %d", MaxFreeTrialDays)
	ErrInvalidTimeFilter  = errors.New("please enter a date as YYYY-MM-DD or an RFC 3339 timestamp")
	ErrTimeRangeReversed  = errors.New("start time must not be after end time")
	ErrInvalidCurrency    = errors.New("please enter a valid ISO 4217 currency code")
	ErrInvalidModel       = fmt.Errorf("pricing model must be %q or %q", ModelSubscription, ModelOneTime)
	ErrInvalidLimit       = errors.New("limit must be greater than 0")
	ErrInvalidOffset      = errors.New("offset must not be negative")
)

// Email checks an email address.
func Email(input string) error {
	if !emailPattern.MatchString(strings.TrimSpace(input)) {
		return ErrInvalidEmail
	}
	return nil
}

// Password checks the minimum password length.
func Password(input string) error {
	if utf8.RuneCountInString(input) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// Required returns a validator rejecting blank input with "<field> is required".
func Required(field string) func(string) error {
	return func(input string) error {
		if strings.TrimSpace(input) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

// ConfirmationCode checks for exactly six digits.
func ConfirmationCode(input string) error {
	if !codePattern.MatchString(strings.TrimSpace(input)) {
		return ErrInvalidCode
	}
	return nil
}

// ParsePrice parses a custom price and checks it lies within [MinPrice, MaxPrice].
func ParsePrice(input string) (float64, error) {
	price, err := strconv.ParseFloat(strings.TrimPrefix(strings.TrimSpace(input), "$"), 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, ErrInvalidNumber
	}
	if err := Price(price); err != nil {
		return 0, err
	}
	return price, nil
}

// Price checks a numeric price against the accepted range.
func Price(price float64) error {
	if price < MinPrice || price > MaxPrice {
		return ErrPriceOutOfRange
	}
	return nil
}

// ParseMaxMachines parses a machine limit.
func ParseMaxMachines(input string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return 0, ErrInvalidMaxMachines
	}
	if err := MaxMachines(n); err != nil {
		return 0, err
	}
	return n, nil
}

// MaxMachines checks that at least one machine is allowed.
func MaxMachines(n int) error {
	if n < 1 {
		return ErrInvalidMaxMachines
	}
	return nil
}

// ParseExpirationDate parses a YYYY-MM-DD date and requires it to be after now.
// The date is taken as midnight UTC, so today's date is already in the past.
func ParseExpirationDate(input string, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)
	if !datePattern.MatchString(input) {
		return time.Time{}, ErrInvalidDateFormat
	}
	date, err := time.Parse(DateLayout, input)
	if err != nil {
		return time.Time{}, ErrInvalidDateFormat
	}
	if !date.After(now) {
		return time.Time{}, ErrDateNotInFuture
	}
	return date, nil
}

// ParseFreeTrialDays parses a free trial length in days.
func ParseFreeTrialDays(input string) (int, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(input)
	if err != nil {
		return 0, ErrInvalidTrialDays
	}
	if err := FreeTrialDays(n); err != nil {
		return 0, err
	}
	return n, nil
}

// FreeTrialDays checks a free trial length.
func FreeTrialDays(n int) error {
	if n < 0 || n > MaxFreeTrialDays {
		return ErrInvalidTrialDays
	}
	return nil
}

// RevocationReason requires a non-blank reason.
func RevocationReason(input string) error {
	if strings.TrimSpace(input) == "" {
		return ErrReasonRequired
	}
	return nil
}

// LicenseStatus checks a license status filter.
func LicenseStatus(input string) error {
	switch input {
	case StatusActive, StatusInactive, StatusRevoked, StatusAll:
		return nil
	default:
		return ErrInvalidStatus
	}
}

// Pagination checks license list paging parameters.
func Pagination(limit, offset int) error {
	if limit < 1 {
		return ErrInvalidLimit
	}
	if offset < 0 {
		return ErrInvalidOffset
	}
	return nil
}

// ParseTimeFilter accepts a YYYY-MM-DD date or an RFC 3339 timestamp.
func ParseTimeFilter(input string) (time.Time, error) {
	input = strings.TrimSpace(input)
	if t, err := time.Parse(DateLayout, input); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, input); err == nil {
		return t, nil
	}
	return time.Time{}, ErrInvalidTimeFilter
}

// TimeRange validates optional start and end filters. Empty values are allowed.
func TimeRange(start, end string) error {
	var startTime, endTime time.Time
	var err error
	if start != "" {
		if startTime, err = ParseTimeFilter(start); err != nil {
			return fmt.Errorf("start time: %w", err)
		}
	}
	if end != "" {
		if endTime, err = ParseTimeFilter(end); err != nil {
			return fmt.Errorf("end time: %w", err)
		}
	}
	if start != "" && end != "" && startTime.After(endTime) {
		return ErrTimeRangeReversed
	}
	return nil
}

// Currency checks an ISO 4217 currency code and returns it upper-cased.
func Currency(input string) (string, error) {
	unit, err := currency.ParseISO(strings.TrimSpace(input))
	if err != nil {
		return "", ErrInvalidCurrency
	}
	return unit.String(), nil
}

// PricingModel checks a pricing model name.
func PricingModel(input string) error {
	switch input {
	case ModelSubscription, ModelOneTime:
		return nil
	default:
		return ErrInvalidModel
	}
}
