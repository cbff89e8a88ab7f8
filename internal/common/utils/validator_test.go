// internal/common/utils/validator_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sampleRequest struct {
	Username        string `validate:"required,min=3,max=30,alphanum"`
	Email           string `validate:"omitempty,email"`
	Password        string `validate:"required,min=8"`
	ConfirmPassword string `validate:"required,eqfield=Password"`
	Gender          string `validate:"omitempty,oneof=M F"`
}

func validSample() sampleRequest {
	return sampleRequest{
		Username:        "alice123",
		Email:           "alice@example.com",
		Password:        "password123",
		ConfirmPassword: "password123",
		Gender:          "F",
	}
}

func TestValidateStruct_Valid(t *testing.T) {
	req := validSample()
	assert.NoError(t, ValidateStruct(&req))
}

func TestValidateStruct_MissingRequired(t *testing.T) {
	req := validSample()
	req.Username = ""

	err := ValidateStruct(&req)
	assert.ErrorContains(t, err, "Username is required")
}

func TestValidateStruct_TooShort(t *testing.T) {
	req := validSample()
	req.Password = "short"
	req.ConfirmPassword = "short"

	err := ValidateStruct(&req)
	assert.ErrorContains(t, err, "at least 8")
}

func TestValidateStruct_BadEmail(t *testing.T) {
	req := validSample()
	req.Email = "not-an-email"

	err := ValidateStruct(&req)
	assert.ErrorContains(t, err, "valid email")
}

func TestValidateStruct_FieldMismatch(t *testing.T) {
	req := validSample()
	req.ConfirmPassword = "different456"

	err := ValidateStruct(&req)
	assert.ErrorContains(t, err, "must match Password")
}

func TestValidateStruct_OneOf(t *testing.T) {
	req := validSample()
	req.Gender = "X"

	err := ValidateStruct(&req)
	assert.ErrorContains(t, err, "must be one of")
}

func TestValidateStruct_CollectsAllErrors(t *testing.T) {
	req := sampleRequest{}

	err := ValidateStruct(&req)
	assert.ErrorContains(t, err, "Username is required")
	assert.ErrorContains(t, err, "Password is required")
}
