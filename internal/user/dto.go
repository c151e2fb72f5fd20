package user

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// CreateUserDTO carries the fields an administrator supplies when
// provisioning a profile. All fields are required; the temp password is
// optional and generated when omitted.
type CreateUserDTO struct {
	Role         string `json:"role" validate:"required,oneof=Admin Manager Salesperson"`
	Username     string `json:"username" validate:"required"`
	TempPassword string `json:"temp_password"`
	Name         string `json:"name" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone" validate:"required"`
}

func (d CreateUserDTO) Validate() error {
	return validate.Struct(d)
}

type ResetPasswordDTO struct {
	NewPassword string `json:"new_password"`
}

// CreatedUser is returned from Create so the administrator can share
// the generated credentials manually.
type CreatedUser struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	TempPassword string `json:"temp_password"`
}
