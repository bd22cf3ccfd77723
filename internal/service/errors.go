package service

import "errors"

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrConflict           = errors.New("user already exist")
	ErrUserNotFound       = errors.New("user not found")
	ErrBookNotFound       = errors.New("book not found")
	ErrForbidden          = errors.New("access denied")
)
