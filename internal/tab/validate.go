package tab

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"slices"
	"time"

	"github.com/willtrojniak/TabApp/internal/shop"
)

var chartstringPattern = regexp.MustCompile(`^[A-Za-z0-9]{5}[ -]?[A-Za-z0-9]{5}([ -]?[A-Za-z0-9]{5})?$`)

var (
	ErrInvalidPaymentMethod      = errors.New("payment method not accepted by this shop")
	ErrChartstringRequired       = errors.New("chartstring is required for the selected payment method")
	ErrInvalidChartstring        = errors.New("invalid chartstring, must be of format XXXXX-XXXXX(-XXXXX)")
	ErrInvalidDate               = errors.New("invalid date, expected YYYY-MM-DD")
	ErrEndDateBeforeStart        = errors.New("end date must not be before start date")
	ErrInvalidTime               = errors.New("invalid time format, expected HH:MM")
	ErrEndTimeNotAfterStart      = errors.New("end time must be after start time")
	ErrInvalidVerificationMethod = errors.New("invalid verification method")
)

// validate checks a create/update payload against the shop's accepted
// payment methods and normalizes it (in-person tabs carry no payment
// details).
func (d *TabCreate) validate(acceptedPaymentMethods []string) error {
	if !slices.Contains(acceptedPaymentMethods, d.PaymentMethod) {
		return ErrInvalidPaymentMethod
	}

	switch d.PaymentMethod {
	case shop.PaymentMethodInPerson:
		d.PaymentDetails = ""
	case shop.PaymentMethodChartstring:
		if d.PaymentDetails == "" {
			return ErrChartstringRequired
		}
		if !chartstringPattern.MatchString(d.PaymentDetails) {
			return ErrInvalidChartstring
		}
	}

	start, err := time.Parse(time.DateOnly, d.StartDate)
	if err != nil {
		return ErrInvalidDate
	}
	end, err := time.Parse(time.DateOnly, d.EndDate)
	if err != nil {
		return ErrInvalidDate
	}
	if end.Before(start) {
		return ErrEndDateBeforeStart
	}

	startMin, ok := minutesOfDay(d.DailyStartTime)
	if !ok {
		return ErrInvalidTime
	}
	endMin, ok := minutesOfDay(d.DailyEndTime)
	if !ok {
		return ErrInvalidTime
	}
	if startMin >= endMin {
		return ErrEndTimeNotAfterStart
	}

	switch d.VerificationMethod {
	case VerificationSpecify, VerificationVoucher, VerificationEmail:
	default:
		return ErrInvalidVerificationMethod
	}

	for _, entry := range d.VerificationList {
		if _, err := mail.ParseAddress(entry); err != nil {
			return fmt.Errorf("invalid email in verification list: %q", entry)
		}
	}

	return nil
}
