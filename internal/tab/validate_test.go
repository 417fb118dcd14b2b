package tab

import (
	"errors"
	"testing"

	"github.com/willtrojniak/TabApp/internal/shop"
)

func validCreate() TabCreate {
	return TabCreate{
		DisplayName:         "Physics Dept Tab",
		Organization:        "Physics",
		PaymentMethod:       shop.PaymentMethodChartstring,
		PaymentDetails:      "AB123-CD456",
		BillingIntervalDays: 7,
		StartDate:           "2024-01-01",
		EndDate:             "2024-06-30",
		DailyStartTime:      "09:00",
		DailyEndTime:        "17:00",
		ActiveDaysOfWk:      0b0111110,
		DollarLimitPerOrder: 15,
		VerificationMethod:  VerificationEmail,
		VerificationList:    []string{"staff@example.edu"},
	}
}

var bothMethods = []string{shop.PaymentMethodChartstring, shop.PaymentMethodInPerson}

func TestValidateAcceptsWellFormedPayload(t *testing.T) {
	d := validCreate()
	if err := d.validate(bothMethods); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateRejectsUnacceptedPaymentMethod(t *testing.T) {
	d := validCreate()
	if err := d.validate([]string{shop.PaymentMethodInPerson}); !errors.Is(err, ErrInvalidPaymentMethod) {
		t.Errorf("expected ErrInvalidPaymentMethod, got %v", err)
	}
}

func TestValidateChartstring(t *testing.T) {
	d := validCreate()
	d.PaymentDetails = ""
	if err := d.validate(bothMethods); !errors.Is(err, ErrChartstringRequired) {
		t.Errorf("expected ErrChartstringRequired, got %v", err)
	}

	d = validCreate()
	d.PaymentDetails = "short"
	if err := d.validate(bothMethods); !errors.Is(err, ErrInvalidChartstring) {
		t.Errorf("expected ErrInvalidChartstring, got %v", err)
	}

	for _, good := range []string{"AB123CD456", "AB123 CD456", "AB123-CD456-EF789"} {
		d = validCreate()
		d.PaymentDetails = good
		if err := d.validate(bothMethods); err != nil {
			t.Errorf("chartstring %q should validate, got %v", good, err)
		}
	}
}

func TestValidateClearsDetailsForInPerson(t *testing.T) {
	d := validCreate()
	d.PaymentMethod = shop.PaymentMethodInPerson
	d.PaymentDetails = "AB123-CD456"
	if err := d.validate(bothMethods); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.PaymentDetails != "" {
		t.Error("in-person tabs should not retain payment details")
	}
}

func TestValidateDates(t *testing.T) {
	d := validCreate()
	d.StartDate = "Jan 1 2024"
	if err := d.validate(bothMethods); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("expected ErrInvalidDate, got %v", err)
	}

	d = validCreate()
	d.EndDate = "2023-12-31"
	if err := d.validate(bothMethods); !errors.Is(err, ErrEndDateBeforeStart) {
		t.Errorf("expected ErrEndDateBeforeStart, got %v", err)
	}

	// Single-day tabs are allowed.
	d = validCreate()
	d.EndDate = d.StartDate
	if err := d.validate(bothMethods); err != nil {
		t.Errorf("start == end should validate, got %v", err)
	}
}

func TestValidateTimes(t *testing.T) {
	d := validCreate()
	d.DailyStartTime = "9:00"
	if err := d.validate(bothMethods); !errors.Is(err, ErrInvalidTime) {
		t.Errorf("expected ErrInvalidTime, got %v", err)
	}

	d = validCreate()
	d.DailyEndTime = "09:00"
	if err := d.validate(bothMethods); !errors.Is(err, ErrEndTimeNotAfterStart) {
		t.Errorf("expected ErrEndTimeNotAfterStart, got %v", err)
	}
}

func TestValidateVerification(t *testing.T) {
	d := validCreate()
	d.VerificationMethod = "badge"
	if err := d.validate(bothMethods); !errors.Is(err, ErrInvalidVerificationMethod) {
		t.Errorf("expected ErrInvalidVerificationMethod, got %v", err)
	}

	d = validCreate()
	d.VerificationList = []string{"not-an-email"}
	if err := d.validate(bothMethods); err == nil {
		t.Error("expected error for malformed verification email")
	}
}
