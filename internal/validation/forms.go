package validation

import "framez/internal/models"

// Errors maps a form field name to its validation message.
// Fields that passed validation are absent.
type Errors map[string]string

// Add records msg for field when msg is non-empty.
func (e Errors) Add(field, msg string) {
	if msg != "" {
		e[field] = msg
	}
}

// HasErrors reports whether any field failed validation.
func (e Errors) HasErrors() bool {
	return len(e) > 0
}

// AsAppError converts the field errors into a VALIDATION_ERROR, or nil when empty.
func (e Errors) AsAppError(fieldOrder ...string) error {
	if !e.HasErrors() {
		return nil
	}
	return models.NewFieldValidationError(e, fieldOrder...)
}

// SignUpForm is the registration form.
type SignUpForm struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// SignUpFields lists the sign-up fields in display order.
var SignUpFields = []string{"first_name", "last_name", "email", "password", "confirm_password"}

// Validate runs every field validator of the form.
func (f SignUpForm) Validate() Errors {
	errs := Errors{}
	errs.Add("first_name", ValidateFirstName(f.FirstName))
	errs.Add("last_name", ValidateLastName(f.LastName))
	errs.Add("email", ValidateEmail(f.Email))
	errs.Add("password", ValidatePassword(f.Password))
	errs.Add("confirm_password", ValidateConfirmPassword(f.ConfirmPassword, f.Password))
	return errs
}

// SignInForm is the login form.
type SignInForm struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignInFields lists the sign-in fields in display order.
var SignInFields = []string{"email", "password"}

// Validate checks that both credentials are present and the email is well formed.
func (f SignInForm) Validate() Errors {
	errs := Errors{}
	errs.Add("email", ValidateEmail(f.Email))
	if f.Password == "" {
		errs.Add("password", "Password is required")
	}
	return errs
}

// PostForm is the new-post form.
type PostForm struct {
	Caption string             `json:"caption"`
	Media   []models.MediaItem `json:"media"`
}

// PostFields lists the post fields in display order.
var PostFields = []string{"caption", "media"}

// Validate runs the caption and media validators.
func (f PostForm) Validate() Errors {
	errs := Errors{}
	errs.Add("caption", ValidateCaption(f.Caption))
	errs.Add("media", ValidateMedia(f.Media))
	return errs
}
