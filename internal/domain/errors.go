package domain

import "errors"

var (
	ErrValidation         = errors.New("invalid request")
	ErrOrderNotFound      = errors.New("order not found")
	ErrPaymentNotFound    = errors.New("payment not found")
	ErrSignatureInvalid   = errors.New("signature verification failed")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrAlreadyTerminal    = errors.New("payment already in terminal status")
	ErrOrderNotPayable    = errors.New("order is not payable")
	ErrSweepInProgress    = errors.New("sweep already in progress")
)
