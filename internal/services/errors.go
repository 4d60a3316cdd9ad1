package services

import "errors"

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrCoachNotFound = errors.New("coach not found")
	ErrOrderNotFound = errors.New("payment order not found")
)
