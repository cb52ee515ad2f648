// Package checkout validates the delivery form, allocates order numbers and
// turns a cart into an order record.
package checkout

import (
	"regexp"
	"sort"
	"strings"
)

var (
	mobilePattern  = regexp.MustCompile(`^[6-9]\d{9}$`)
	pincodePattern = regexp.MustCompile(`^[1-9][0-9]{5}$`)
	emailPattern   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	nonDigits      = regexp.MustCompile(`\D`)
)

const (
	DefaultDistrict = "Salem"
	DefaultState    = "Tamil Nadu"
	DefaultCountry  = "India"
)

// Form is the customer's delivery details.
type Form struct {
	FullName     string `json:"full_name"`
	Phone        string `json:"phone"`
	WhatsApp     string `json:"whatsapp"`
	Email        string `json:"email"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2"`
	Landmark     string `json:"landmark"`
	City         string `json:"city"`
	District     string `json:"district"`
	State        string `json:"state"`
	Pincode      string `json:"pincode"`
	Notes        string `json:"notes"`
}

// WithDefaults fills the district and state the storefront pre-selects.
func (f Form) WithDefaults() Form {
	if strings.TrimSpace(f.District) == "" {
		f.District = DefaultDistrict
	}
	if strings.TrimSpace(f.State) == "" {
		f.State = DefaultState
	}
	return f
}

// FieldErrors maps a form field (by its JSON name) to a message.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return "invalid checkout form: " + strings.Join(fields, ", ")
}

// Validate checks the form and returns every failing field, or nil.
func Validate(f Form) FieldErrors {
	errs := FieldErrors{}

	if strings.TrimSpace(f.FullName) == "" {
		errs["full_name"] = "Full name is required"
	}
	if !ValidPhone(f.Phone) {
		errs["phone"] = "Please enter a valid 10-digit mobile number"
	}
	if strings.TrimSpace(f.WhatsApp) != "" && !ValidPhone(f.WhatsApp) {
		errs["whatsapp"] = "Please enter a valid 10-digit mobile number"
	}
	if strings.TrimSpace(f.AddressLine1) == "" {
		errs["address_line1"] = "Address is required"
	}
	if strings.TrimSpace(f.City) == "" {
		errs["city"] = "City is required"
	}
	if !ValidPincode(f.Pincode) {
		errs["pincode"] = "Please enter a valid 6-digit pincode"
	}
	if email := strings.TrimSpace(f.Email); email != "" && !emailPattern.MatchString(email) {
		errs["email"] = "Please enter a valid email address"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// CleanPhone strips formatting and a leading 91 country code.
func CleanPhone(phone string) string {
	digits := nonDigits.ReplaceAllString(phone, "")
	if len(digits) == 12 && strings.HasPrefix(digits, "91") {
		return digits[2:]
	}
	return digits
}

func ValidPhone(phone string) bool {
	return mobilePattern.MatchString(CleanPhone(phone))
}

func CleanPincode(pincode string) string {
	return nonDigits.ReplaceAllString(pincode, "")
}

func ValidPincode(pincode string) bool {
	return pincodePattern.MatchString(CleanPincode(pincode))
}
