package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateLogin(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		want     FieldErrors
	}{
		{"valid", "a@b.co", "secret1", FieldErrors{}},
		{"missing both", "", "", FieldErrors{
			FieldEmail:    "Email is required",
			FieldPassword: "Password is required",
		}},
		{"bad email", "not-an-email", "x", FieldErrors{
			FieldEmail: "Please enter a valid email address",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateLogin(tt.email, tt.password)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, len(tt.want) == 0, got.Valid())
		})
	}
}

func TestValidateRegister(t *testing.T) {
	tests := []struct {
		name   string
		user   string
		email  string
		pass   string
		accept bool
		want   FieldErrors
	}{
		{"valid", "John Doe", "john@example.com", "password1", true, FieldErrors{}},
		{"short name", " J ", "john@example.com", "password1", true, FieldErrors{
			FieldName: "Name must be at least 2 characters long",
		}},
		{"short password", "John", "john@example.com", "a1", true, FieldErrors{
			FieldPassword: "Password must be at least 6 characters long",
		}},
		{"password without digit", "John", "john@example.com", "password", true, FieldErrors{
			FieldPassword: "Password must contain at least one letter and one number",
		}},
		{"password with a disallowed character", "John", "john@example.com", "abc12^", true, FieldErrors{
			FieldPassword: "Password must contain at least one letter and one number",
		}},
		{"password with allowed symbols", "John", "john@example.com", "abc12@$!%*#?&", true, FieldErrors{}},
		{"password of astral characters", "John", "john@example.com", "a1\U0001F600\U0001F600", true, FieldErrors{
			FieldPassword: "Password must contain at least one letter and one number",
		}},
		{"name padded with no-break spaces", "\u00a0J\u00a0", "john@example.com", "password1", true, FieldErrors{
			FieldName: "Name must be at least 2 characters long",
		}},
		{"terms not accepted", "John", "john@example.com", "password1", false, FieldErrors{
			FieldTerms: "You must agree to the terms and conditions",
		}},
		{"everything missing", "", "", "", false, FieldErrors{
			FieldName:     "Name is required",
			FieldEmail:    "Email is required",
			FieldPassword: "Password is required",
			FieldTerms:    "You must agree to the terms and conditions",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateRegister(tt.user, tt.email, tt.pass, tt.accept))
		})
	}
}

func TestValidateContact(t *testing.T) {
	assert.True(t, ValidateContact("Jane Doe", "+1 (555) 123-4567").Valid())

	assert.Equal(t, FieldErrors{
		FieldName:        "Name is required",
		FieldPhoneNumber: "Phone number is required",
	}, ValidateContact("  ", " "))

	assert.Equal(t, FieldErrors{
		FieldPhoneNumber: "Please enter a valid phone number",
	}, ValidateContact("Jane", "12"))
}
