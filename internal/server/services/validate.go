package services

import (
	"errors"

	"github.com/dmitrijs2005/tasktrack/internal/server/apperr"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// fieldMessages maps a struct field name to the text reported when one of its
// non-required rules fails.
var fieldMessages = map[string]string{
	"Name":               MsgNameLength,
	"Password":           MsgPasswordLength,
	"NewPassword":        MsgPasswordLength,
	"ConfirmNewPassword": MsgPasswordLength,
	"Title":              MsgTitleLength,
	"Description":        MsgDescriptionLength,
	"Status":             MsgInvalidStatus,
}

// checkInput validates in by its `validate` tags. Any empty required field is
// reported as requiredMsg; otherwise the first failing field decides the text.
func checkInput(in any, requiredMsg string) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Internal("", err)
	}

	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return apperr.Validation(requiredMsg)
		}
	}

	fe := verrs[0]
	if fe.Tag() == "email" {
		return apperr.Validation(MsgInvalidEmail)
	}
	if msg, ok := fieldMessages[fe.StructField()]; ok {
		return apperr.Validation(msg)
	}
	return apperr.Validation(requiredMsg)
}
