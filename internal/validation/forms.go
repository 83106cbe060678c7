package validation

import "regexp"

// registerPasswordChars is the character set the registration form allows
// in a new password.
var registerPasswordChars = regexp.MustCompile(`^[A-Za-z\d@$!%*#?&]+$`)

// FieldErrors maps a form field name to the message shown next to it.
// An empty map means the form is valid.
type FieldErrors map[string]string

// Valid reports whether no field failed.
func (e FieldErrors) Valid() bool {
	return len(e) == 0
}

// Field names used as FieldErrors keys.
const (
	FieldName        = "name"
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldPhoneNumber = "phoneNumber"
	FieldTerms       = "terms"
	FieldGeneral     = "general"
)

// ValidateLogin checks the login form.
func ValidateLogin(email, password string) FieldErrors {
	errs := FieldErrors{}
	checkEmail(errs, email)
	if password == "" {
		errs[FieldPassword] = "Password is required"
	}
	return errs
}

// ValidateRegister checks the registration form, including the terms checkbox.
func ValidateRegister(name, email, password string, acceptTerms bool) FieldErrors {
	errs := FieldErrors{}
	checkName(errs, name)
	checkEmail(errs, email)

	switch {
	case password == "":
		errs[FieldPassword] = "Password is required"
	case length(password) < MinPasswordLength:
		errs[FieldPassword] = "Password must be at least 6 characters long"
	case !Password(password) || !registerPasswordChars.MatchString(password):
		errs[FieldPassword] = "Password must contain at least one letter and one number"
	}

	if !acceptTerms {
		errs[FieldTerms] = "You must agree to the terms and conditions"
	}
	return errs
}

// ValidateContact checks the add/edit contact form.
func ValidateContact(name, phoneNumber string) FieldErrors {
	errs := FieldErrors{}
	checkName(errs, name)

	switch {
	case trim(phoneNumber) == "":
		errs[FieldPhoneNumber] = "Phone number is required"
	case !PhoneNumber(phoneNumber):
		errs[FieldPhoneNumber] = "Please enter a valid phone number"
	}
	return errs
}

func checkName(errs FieldErrors, name string) {
	trimmed := trim(name)
	switch {
	case trimmed == "":
		errs[FieldName] = "Name is required"
	case length(trimmed) < 2:
		errs[FieldName] = "Name must be at least 2 characters long"
	}
}

func checkEmail(errs FieldErrors, email string) {
	switch {
	case trim(email) == "":
		errs[FieldEmail] = "Email is required"
	case !Email(email):
		errs[FieldEmail] = "Please enter a valid email address"
	}
}
