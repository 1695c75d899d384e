package services

import (
	"errors"
	"fmt"

	"organica/internal/repositories"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrMissingProductID   = fmt.Errorf("%w: productId required", ErrValidation)
	ErrProductNotFound    = repositories.ErrProductNotFound
	ErrEmptyCart          = errors.New("cart is empty")
	ErrOrderNotFound      = repositories.ErrOrderNotFound
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid token")
)

// StorageError reports that the catalog, order store or session store could
// not be read or written.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// IsStorageFailure reports whether err is a StorageError.
func IsStorageFailure(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
