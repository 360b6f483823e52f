package service

import "errors"

// Sentinel errors returned by the services. Controllers map them onto HTTP
// status codes with errors.Is; anything unmatched is treated as an internal
// error.
var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrNotFound           = errors.New("not found")
	ErrConfig             = errors.New("configuration error")
	ErrStorage            = errors.New("storage error")
	ErrEmailDelivery      = errors.New("email delivery failed")
	ErrSession            = errors.New("session error")
)
