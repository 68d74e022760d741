package dto

import (
	"errors"
	"fmt"
	"strings"
)

type Signup struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	DerivAccount string `json:"deriv_account"`
	Password     string `json:"password"`
}

func (s Signup) IsValid() error {
	var usernameErr, emailErr, accountErr, passwordErr error

	if strings.TrimSpace(s.Username) == "" {
		usernameErr = fmt.Errorf("username is required")
	}

	if strings.TrimSpace(s.Email) == "" {
		emailErr = fmt.Errorf("email is required")
	}

	if strings.TrimSpace(s.DerivAccount) == "" {
		accountErr = fmt.Errorf("deriv_account is required")
	}

	if strings.TrimSpace(s.Password) == "" {
		passwordErr = fmt.Errorf("password is required")
	}

	return errors.Join(usernameErr, emailErr, accountErr, passwordErr)
}

type Login struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (l Login) IsValid() error {
	var usernameErr, passwordErr error

	if strings.TrimSpace(l.Username) == "" {
		usernameErr = fmt.Errorf("username is required")
	}

	if strings.TrimSpace(l.Password) == "" {
		passwordErr = fmt.Errorf("password is required")
	}

	return errors.Join(usernameErr, passwordErr)
}

type LinkComplete struct {
	Code string `json:"code"`
}

func (l LinkComplete) IsValid() error {
	if strings.TrimSpace(l.Code) == "" {
		return fmt.Errorf("code is required")
	}

	return nil
}
