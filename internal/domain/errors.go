package domain

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration     = errors.New("configuration error")
	ErrDimensionMismatch = errors.New("dimension mismatch")
	ErrNotFound          = errors.New("not found")
	ErrOracle            = errors.New("oracle failure")
	ErrCorrupt           = errors.New("snapshot corrupt")
	ErrDuplicateID       = errors.New("duplicate id")
)

// DimensionMismatchError reports a vector whose length differs from the index dimension.
type DimensionMismatchError struct {
	Op       string
	Expected int
	Actual   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("%s: %v: expected %d, got %d", e.Op, ErrDimensionMismatch, e.Expected, e.Actual)
}

func (e *DimensionMismatchError) Is(target error) bool {
	return target == ErrDimensionMismatch
}

// OracleError wraps a failed call to the embedding or answer service.
type OracleError struct {
	Op  string
	Err error
}

func (e *OracleError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrOracle, e.Err)
}

func (e *OracleError) Is(target error) bool {
	return target == ErrOracle
}

func (e *OracleError) Unwrap() error {
	return e.Err
}

// NewOracleError wraps err, keeping an existing OracleError as is.
func NewOracleError(op string, err error) error {
	var oe *OracleError
	if errors.As(err, &oe) {
		return err
	}
	return &OracleError{Op: op, Err: err}
}

// Configf builds an ErrConfiguration with a formatted reason.
func Configf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}
