package checkout

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	minNameLength  = 2
	minPhoneDigits = 10
	maxPhoneDigits = 15
)

// Field errors. The messages are shown next to the form field.
var (
	ErrNameRequired  = errors.New("name is required")
	ErrNameTooShort  = errors.New("name must be at least 2 characters")
	ErrNameInvalid   = errors.New("name can only contain letters, spaces, periods, hyphens and apostrophes")
	ErrPhoneRequired = errors.New("phone number is required")
	ErrPhoneInvalid  = errors.New("phone number can only contain digits")
	ErrPhoneLength   = errors.New("phone number must be 10 to 15 digits")
)

// Form is the customer contact data collected at checkout.
type Form struct {
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Remark string `json:"remark"`
}

// FieldErrors maps a form field name to its error message.
type FieldErrors map[string]string

// ValidationError is returned when the form is not submittable.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, k := range []string{"name", "phone"} {
		if msg, ok := e.Fields[k]; ok {
			parts = append(parts, k+": "+msg)
		}
	}
	return "invalid checkout form: " + strings.Join(parts, "; ")
}

// Validate checks name and phone. The remark is free text.
func (f Form) Validate() error {
	fields := FieldErrors{}
	if err := ValidateName(f.Name); err != nil {
		fields["name"] = err.Error()
	}
	if err := ValidatePhone(f.Phone); err != nil {
		fields["phone"] = err.Error()
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Normalized returns the form with name and phone trimmed.
func (f Form) Normalized() Form {
	return Form{
		Name:   strings.TrimSpace(f.Name),
		Phone:  strings.TrimSpace(f.Phone),
		Remark: strings.TrimSpace(f.Remark),
	}
}

func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameRequired
	}
	if !isNameText(name) {
		return ErrNameInvalid
	}
	if utf8.RuneCountInString(name) < minNameLength {
		return ErrNameTooShort
	}
	return nil
}

func ValidatePhone(phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ErrPhoneRequired
	}
	if !isDigits(phone) {
		return ErrPhoneInvalid
	}
	if n := len(phone); n < minPhoneDigits || n > maxPhoneDigits {
		return ErrPhoneLength
	}
	return nil
}

// AcceptNameInput applies a keystroke to the name field: next is kept only
// if every character is allowed in a name, otherwise prev stays.
func AcceptNameInput(prev, next string) string {
	if isNameText(next) {
		return next
	}
	return prev
}

// AcceptPhoneInput is AcceptNameInput for the phone field. Input longer than
// the maximum phone length is refused as well.
func AcceptPhoneInput(prev, next string) string {
	if isDigits(next) && len(next) <= maxPhoneDigits {
		return next
	}
	return prev
}

func isNameText(s string) bool {
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), r == ' ', r == '.', r == '-', r == '\'':
		default:
			return false
		}
	}
	return true
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
