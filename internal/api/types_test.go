package api

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestUserDisplayName(t *testing.T) {
	tests := []struct {
		name string
		user User
		want string
	}{
		{"name wins", User{Name: strPtr("Ana"), FirstName: strPtr("X")}, "Ana"},
		{"empty name falls back", User{Name: strPtr(""), FirstName: strPtr("Ana"), LastName: strPtr("Lee")}, "Ana Lee"},
		{"first only", User{FirstName: strPtr("Ana")}, "Ana"},
		{"last only", User{LastName: strPtr("Lee")}, "Lee"},
		{"nothing", User{}, "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.DisplayName())
		})
	}
}

func TestUserPhotoBytes(t *testing.T) {
	raw := []byte{0xff, 0xd8, 0xff}
	encoded := base64.StdEncoding.EncodeToString(raw)

	got, err := User{Photo: strPtr("data:image/jpeg;base64," + encoded)}.PhotoBytes()
	require.NoError(t, err)
	assert.Equal(t, raw, got)

	got, err = User{Photo: strPtr(encoded)}.PhotoBytes()
	require.NoError(t, err)
	assert.Equal(t, raw, got)

	got, err = User{}.PhotoBytes()
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = User{Photo: strPtr("data:x,not base64!")}.PhotoBytes()
	assert.Error(t, err)
}

func TestUserFormattedDOB(t *testing.T) {
	assert.Equal(t, "15 March 1990", User{DateOfBirth: strPtr("1990-03-15T00:00:00.000Z")}.FormattedDOB())
	assert.Equal(t, "15 March 1990", User{DateOfBirth: strPtr("1990-03-15T00:00:00Z")}.FormattedDOB())
	assert.Equal(t, "15/03/90", User{DateOfBirth: strPtr("15/03/90")}.FormattedDOB())
	assert.Equal(t, "N/A", User{}.FormattedDOB())
}

func TestUserGenderLabel(t *testing.T) {
	assert.Equal(t, "FEMALE", User{Gender: strPtr("female")}.GenderLabel())
	assert.Equal(t, "N/A", User{Gender: strPtr("")}.GenderLabel())
	assert.Equal(t, "N/A", User{}.GenderLabel())
}

func TestAdminFormFields(t *testing.T) {
	form := AdminForm{
		Name:        "Ana",
		Gender:      "female",
		DateOfBirth: "1990-03-15",
		Email:       "ana@example.com",
		Password:    "Secret123",
	}
	assert.Equal(t, map[string]string{
		"name":          "Ana",
		"gender":        "female",
		"date_of_birth": "1990-03-15",
		"email":         "ana@example.com",
		"password":      "Secret123",
	}, form.Fields())
	assert.Nil(t, form.File())

	form.Photo = []byte("jpg")
	file := form.File()
	require.NotNil(t, file)
	assert.Equal(t, "photo", file.FieldName)
}

func TestEnvelopeErrNil(t *testing.T) {
	var env *Envelope[User]
	assert.NoError(t, env.Err())
	assert.NoError(t, (&Envelope[User]{IsError: false}).Err())
}
