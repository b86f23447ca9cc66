package api

import (
	"encoding/base64"
	"strings"
	"time"
)

// Envelope is the shape of every successful Bullion API response.
type Envelope[T any] struct {
	Status  int    `json:"status"`
	IsError bool   `json:"iserror"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// Err returns an *EnvelopeError when the server flagged the response as an
// error despite a 2xx status, and nil otherwise.
func (e *Envelope[T]) Err() error {
	if e == nil || !e.IsError {
		return nil
	}
	return &EnvelopeError{Status: e.Status, Message: e.Message}
}

// LoginData is the payload of a successful login.
type LoginData struct {
	Token string `json:"token"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

func (LoginData) requiredKeys() []string { return []string{"token"} }

// User is an admin user record.
type User struct {
	ID          string  `json:"_id"`
	Name        *string `json:"name,omitempty"`
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
	Email       string  `json:"email"`
	Gender      *string `json:"gender,omitempty"`
	DateOfBirth *string `json:"date_of_birth,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Photo       *string `json:"photo,omitempty"`
	Address     *string `json:"address,omitempty"`
}

func (User) requiredKeys() []string { return []string{"_id", "email"} }

// DisplayName returns the name, else "first last", else "Unknown".
func (u User) DisplayName() string {
	if u.Name != nil && *u.Name != "" {
		return *u.Name
	}
	full := strings.TrimSpace(deref(u.FirstName) + " " + deref(u.LastName))
	if full == "" {
		return "Unknown"
	}
	return full
}

// PhotoBytes decodes the base64 photo. Data URI prefixes up to the last comma
// are skipped. It returns nil when there is no photo.
func (u User) PhotoBytes() ([]byte, error) {
	raw := deref(u.Photo)
	if raw == "" {
		return nil, nil
	}
	if i := strings.LastIndex(raw, ","); i >= 0 {
		raw = raw[i+1:]
	}
	return base64.StdEncoding.DecodeString(raw)
}

// FormattedDOB renders an RFC 3339 date of birth as "02 January 2006". Other
// values are returned unchanged and a missing value is "N/A".
func (u User) FormattedDOB() string {
	raw := deref(u.DateOfBirth)
	if raw == "" {
		return "N/A"
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return raw
	}
	return t.UTC().Format("02 January 2006")
}

// GenderLabel returns the upper-cased gender or "N/A".
func (u User) GenderLabel() string {
	g := deref(u.Gender)
	if g == "" {
		return "N/A"
	}
	return strings.ToUpper(g)
}

// UserList is the payload of the admin list endpoint.
type UserList []User

// Every element of the list must carry the User keys.
func (UserList) requiredKeys() []string { return User{}.requiredKeys() }

// AdminForm is the registration and edit payload.
type AdminForm struct {
	Name        string
	Gender      string
	DateOfBirth string
	Email       string
	Phone       string
	Address     string
	Password    string
	Photo       []byte
}

// Fields returns the non-empty form values keyed by their wire names.
func (f AdminForm) Fields() map[string]string {
	fields := map[string]string{}
	set := func(key, value string) {
		if value != "" {
			fields[key] = value
		}
	}
	set("name", f.Name)
	set("gender", f.Gender)
	set("date_of_birth", f.DateOfBirth)
	set("email", f.Email)
	set("phone", f.Phone)
	set("address", f.Address)
	set("password", f.Password)
	return fields
}

// File returns the photo part, or nil when no photo is set.
func (f AdminForm) File() *FilePart {
	if len(f.Photo) == 0 {
		return nil
	}
	return &FilePart{FieldName: "photo", Data: f.Photo}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
