package common

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var Validate *validator.Validate

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

func init() {
	Validate = validator.New()
	// usernames are letters, digits and underscores only
	_ = Validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRe.MatchString(fl.Field().String())
	})
}
