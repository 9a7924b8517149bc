package repository

import "errors"

var (
	ErrCredentialNotFound = errors.New("credential not found")
)
