package domain

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"

	"businessboard/backend/models"
)

const maxNameLength = 255

var validate = validator.New()

var refFields = map[Ref]string{
	RefBusinessType: "business_type_id",
	RefUser:         "user_id",
	RefState:        "state_id",
}

func required(field string) string { return "The " + field + " field is required." }

func invalidRef(field string) string { return "The selected " + field + " is invalid." }

// checkName validates a trimmed, non-empty name of at most 255 characters.
func checkName(ve *ValidationError, field, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		ve.Add(field, required(field))
		return ""
	}
	if validate.Var(name, "max=255") != nil {
		ve.Add(field, "The "+field+" field must not be greater than 255 characters.")
	}
	return name
}

func checkEmail(ve *ValidationError, email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		ve.Add("email", required("email"))
		return ""
	}
	if validate.Var(email, "email,max=255") != nil {
		ve.Add("email", "The email field must be a valid email address.")
	}
	return email
}

func checkValue(ve *ValidationError, v models.Money) {
	if v.IsNegative() {
		ve.Add("value", "The value field must be at least 0.")
		return
	}
	if v.GreaterThan(models.MaxMoney) {
		ve.Add("value", "The value field must not be greater than "+models.MaxMoney.String()+".")
	}
}

// checkRef records a validation error when id does not resolve. Only store
// failures are returned.
func (s *Service) checkRef(ctx context.Context, ve *ValidationError, ref Ref, id int64) error {
	field := refFields[ref]
	if id <= 0 {
		ve.Add(field, invalidRef(field))
		return nil
	}
	ok, err := s.st.Exists(ctx, ref, id)
	if err != nil {
		return err
	}
	if !ok {
		ve.Add(field, invalidRef(field))
	}
	return nil
}
