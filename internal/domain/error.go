package domain

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUserExists           = errors.New("user already exists")
	ErrAccountTaken         = errors.New("deriv account already linked to another user")
	ErrIncorrectCredentials = errors.New("incorrect credentials")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidCurrency      = errors.New("invalid currency")
	ErrInvalidStatus        = errors.New("invalid settlement status")
	ErrInvalidToken         = errors.New("invalid deriv token")
	ErrCredentialNotFound   = errors.New("credential not found")
	ErrCredentialExpired    = errors.New("credential expired")
	ErrLinkCodeNotFound     = errors.New("link code not found")
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrAlreadySettled       = errors.New("transaction already settled")
)
