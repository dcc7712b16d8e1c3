package service

import "errors"

var (
	ErrDuplicateEmail          = errors.New("user already exists with this email")
	ErrDuplicatePhone          = errors.New("this phone number already exists")
	ErrUserNotFound            = errors.New("user not found")
	ErrInvalidCredentials      = errors.New("invalid email or password")
	ErrWeakPassword            = errors.New("password does not meet policy requirements")
	ErrInvalidActivationTicket = errors.New("activation ticket is invalid or expired")
	ErrActivationCodeMismatch  = errors.New("invalid activation code")
	ErrInvalidToken            = errors.New("invalid token")
	ErrTokenExpired            = errors.New("token has expired")
	ErrUnauthenticated         = errors.New("please login to access this resource")
)
