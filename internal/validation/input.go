package validation

import (
	"bytes"
	"fmt"
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Input limits for admin account fields.
const (
	MaxNameLength     = 255
	MaxEmailLength    = 320 // RFC 5321: 64 chars (local) + 1 (@) + 255 (domain) = 320
	MaxPhoneLength    = 20
	MaxAddressLength  = 1000
	MinPasswordLength = 8
	MaxPhotoBytes     = 5 * 1024 * 1024
)

// Genders accepted by the admin API.
var Genders = []string{"male", "female"}

var jpegMagic = []byte{0xFF, 0xD8, 0xFF}

// ValidateName checks the display name length.
func ValidateName(name string) error {
	if name == "" {
		return nil
	}

	length := utf8.RuneCountInString(name)
	if length > MaxNameLength {
		return fmt.Errorf("name exceeds maximum length of %d characters (got %d)", MaxNameLength, length)
	}

	return nil
}

// ValidateEmail checks the length and format of an email address.
// Returns nil for empty emails (optional field).
func ValidateEmail(email string) error {
	if email == "" {
		return nil
	}

	length := utf8.RuneCountInString(email)
	if length > MaxEmailLength {
		return fmt.Errorf("email exceeds maximum length of %d characters (got %d)", MaxEmailLength, length)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("invalid email format: %q", email)
	}
	domain := email[strings.LastIndex(email, "@")+1:]
	if !strings.Contains(domain, ".") {
		return fmt.Errorf("invalid email format: %q has no domain suffix", email)
	}

	return nil
}

// ValidatePhone accepts digits only.
func ValidatePhone(phone string) error {
	if phone == "" {
		return nil
	}

	length := utf8.RuneCountInString(phone)
	if length > MaxPhoneLength {
		return fmt.Errorf("phone number exceeds maximum length of %d characters (got %d)", MaxPhoneLength, length)
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return fmt.Errorf("phone number must contain only numbers")
		}
	}

	return nil
}

// ValidateAddress checks the address length.
func ValidateAddress(address string) error {
	length := utf8.RuneCountInString(address)
	if length > MaxAddressLength {
		return fmt.Errorf("address exceeds maximum length of %d characters (got %d)", MaxAddressLength, length)
	}
	return nil
}

// ValidatePassword requires at least 8 characters with one capital letter
// and one digit.
func ValidatePassword(password string) error {
	if password == "" {
		return nil
	}

	var hasUpper, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r) && r < unicode.MaxASCII:
			hasUpper = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if utf8.RuneCountInString(password) < MinPasswordLength || !hasUpper || !hasDigit {
		return fmt.Errorf("password must be at least %d characters with 1 capital letter and 1 number", MinPasswordLength)
	}

	return nil
}

// NormalizeGender lowercases gender and checks it against Genders.
func NormalizeGender(gender string) (string, error) {
	gender = strings.ToLower(strings.TrimSpace(gender))
	if gender == "" {
		return "", nil
	}
	for _, g := range Genders {
		if gender == g {
			return g, nil
		}
	}
	return "", fmt.Errorf("invalid gender %q: must be one of %s", gender, strings.Join(Genders, ", "))
}

// ValidatePhoto requires JPEG data no larger than MaxPhotoBytes.
func ValidatePhoto(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if len(data) > MaxPhotoBytes {
		return fmt.Errorf("photo is too large (%d bytes, max %d)", len(data), MaxPhotoBytes)
	}
	if !bytes.HasPrefix(data, jpegMagic) {
		return fmt.Errorf("photo must be a JPEG image")
	}
	return nil
}
