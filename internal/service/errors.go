package service

import "errors"

var (
	ErrNotFound              = errors.New("not found")
	ErrPermissionDenied      = errors.New("permission denied")
	ErrInvalidInput          = errors.New("invalid input")
	ErrAlreadyPaid           = errors.New("job is already paid")
	ErrInsufficientFunds     = errors.New("insufficient balance")
	ErrDepositExceedsCap     = errors.New("deposit exceeds cap")
	ErrNoContractorAvailable = errors.New("no contractor available")
	ErrNoData                = errors.New("no data")
)
