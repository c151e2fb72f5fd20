package auth

// LoginDTO is the transport shape for login requests.
type LoginDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ChangePasswordDTO covers both the forced change after a temporary
// password and a voluntary change.
type ChangePasswordDTO struct {
	Username        string `json:"username"`
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ResetRequestDTO is the self-service password reset request.
type ResetRequestDTO struct {
	Username string `json:"username"`
}

// ValidationError is a simple validation failure from DTO validation.
type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

func (d LoginDTO) Validate() error {
	if d.Username == "" {
		return ValidationError{Msg: "username is required"}
	}
	if d.Password == "" {
		return ValidationError{Msg: "password is required"}
	}
	return nil
}

func (d ChangePasswordDTO) Validate() error {
	if d.Username == "" {
		return ValidationError{Msg: "username is required"}
	}
	if d.CurrentPassword == "" {
		return ValidationError{Msg: "current_password is required"}
	}
	if d.NewPassword == "" {
		return ValidationError{Msg: "new_password is required"}
	}
	return nil
}

func (d ResetRequestDTO) Validate() error {
	if d.Username == "" {
		return ValidationError{Msg: "username is required"}
	}
	return nil
}
