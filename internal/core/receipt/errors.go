package receipt

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrOcrFailed           = errors.New("ocr failed")
	ErrNoStrategySucceeded = errors.New("no parsing strategy succeeded")
	ErrPersistenceFailed   = errors.New("persisting receipt failed")
)

// StrategyError is a failure inside a single strategy. The cascade records it
// and moves on to the next strategy; it never reaches callers on its own.
type StrategyError struct {
	Strategy string
	Cause    error
}

func (e *StrategyError) Error() string {
	return fmt.Sprintf("strategy %s: %v", e.Strategy, e.Cause)
}

func (e *StrategyError) Unwrap() error {
	return e.Cause
}

// Attempt records why one strategy did not produce the accepted receipt.
type Attempt struct {
	Strategy string   `json:"strategy"`
	Err      error    `json:"-"`
	Problems []string `json:"problems,omitempty"`
}

func (a Attempt) String() string {
	if a.Err != nil {
		return fmt.Sprintf("%s: %v", a.Strategy, a.Err)
	}
	return fmt.Sprintf("%s: %s", a.Strategy, strings.Join(a.Problems, ", "))
}

// NoStrategySucceededError is returned when every strategy errored or
// produced a candidate that failed validation.
type NoStrategySucceededError struct {
	Attempts []Attempt
}

func (e *NoStrategySucceededError) Error() string {
	return fmt.Sprintf("%s (attempted: %s)", ErrNoStrategySucceeded, strings.Join(e.Strategies(), ", "))
}

func (e *NoStrategySucceededError) Is(target error) bool {
	return target == ErrNoStrategySucceeded
}

// Strategies returns the attempted strategy names in order.
func (e *NoStrategySucceededError) Strategies() []string {
	names := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		names = append(names, a.Strategy)
	}
	return names
}

// PersistenceError carries the accepted receipt whose write failed so the
// caller can retry the write without running OCR again.
type PersistenceError struct {
	Receipt *AcceptedReceipt
	Cause   error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: receipt %s: %v", ErrPersistenceFailed, e.Receipt.ReceiptKey, e.Cause)
}

func (e *PersistenceError) Unwrap() []error {
	return []error{ErrPersistenceFailed, e.Cause}
}
