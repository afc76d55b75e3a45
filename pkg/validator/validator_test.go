package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

type registerPayload struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,strongpassword"`
	Phone    string `json:"phone" validate:"omitempty,phone"`
}

func TestValidateStructSuccess(t *testing.T) {
	payload := registerPayload{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "Secr3tPass",
		Phone:    "+14155550123",
	}
	require.NoError(t, ValidateStruct(payload))
}

func TestValidateStructFailures(t *testing.T) {
	payload := registerPayload{
		Email:    "invalid",
		Password: "weak",
		Phone:    "012",
	}

	err := ValidateStruct(payload)
	require.Error(t, err)

	vErrs, ok := err.(ValidationErrors)
	require.True(t, ok, "expected ValidationErrors, got %T", err)
	require.Len(t, vErrs, 4)

	fields := map[string]string{}
	for _, v := range vErrs {
		fields[v.Field] = v.Tag
	}
	require.Equal(t, "required", fields["name"])
	require.Equal(t, "email", fields["email"])
	require.Equal(t, "strongpassword", fields["password"])
	require.Equal(t, "phone", fields["phone"])

	messages := map[string]string{}
	for _, v := range vErrs {
		messages[v.Field] = v.Message
	}
	require.Equal(t, "name is a required field", messages["name"])
	require.Equal(t, "email must be a valid email address", messages["email"])
	require.Equal(t, "phone must be a valid phone number", messages["phone"])
	require.Contains(t, err.Error(), "password must contain upper and lower case letters")
}

func TestIsStrongPassword(t *testing.T) {
	require.True(t, IsStrongPassword("Abcdefg1"))
	require.False(t, IsStrongPassword("Abcdef1"))
	require.False(t, IsStrongPassword("abcdefg1"))
	require.False(t, IsStrongPassword("ABCDEFG1"))
	require.False(t, IsStrongPassword("Abcdefgh"))
}

func TestIsPhone(t *testing.T) {
	require.True(t, IsPhone("4155550123"))
	require.True(t, IsPhone("+919876543210"))
	require.False(t, IsPhone("+0123"))
	require.False(t, IsPhone("555-0123"))
}

func TestRegisterValidation(t *testing.T) {
	err := RegisterValidation("sitecms", func(fl validator.FieldLevel) bool {
		return fl.Field().String() == "sitecms"
	}, "{0} must be sitecms")
	require.NoError(t, err)

	type custom struct {
		Value string `validate:"sitecms"`
	}

	require.NoError(t, ValidateStruct(custom{Value: "sitecms"}))
	err = ValidateStruct(custom{Value: "other"})
	require.EqualError(t, err, "Value must be sitecms")
}
