package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Error kinds. Every typed error below matches exactly one of these with errors.Is.
var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicate      = errors.New("duplicate resource")
	ErrInvalidTaxRate = errors.New("invalid tax rate")
	ErrInvalidInput   = errors.New("invalid input")
	ErrInUse          = errors.New("resource in use")
)

// NotFoundError reports a missing client or invoice
type NotFoundError struct {
	Resource string
	ID       interface{}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found with id %v", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string, id interface{}) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// DuplicateError reports a uniqueness collision (client email or SIRET, invoice number)
type DuplicateError struct {
	Resource string
	Field    string
	Value    string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("a %s with %s %q already exists", e.Resource, e.Field, e.Value)
}

func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicate
}

// NewDuplicateError creates a new duplicate error
func NewDuplicateError(resource, field, value string) *DuplicateError {
	return &DuplicateError{Resource: resource, Field: field, Value: value}
}

// InvalidTaxRateError carries the rejected rate and the allowed set
type InvalidTaxRateError struct {
	Rate    decimal.Decimal
	Allowed []decimal.Decimal
}

func (e *InvalidTaxRateError) Error() string {
	allowed := make([]string, len(e.Allowed))
	for i, r := range e.Allowed {
		allowed[i] = r.String() + "%"
	}
	return fmt.Sprintf("VAT rate not allowed: %s (allowed rates: %s)", e.Rate.String(), strings.Join(allowed, ", "))
}

func (e *InvalidTaxRateError) Is(target error) bool {
	return target == ErrInvalidTaxRate
}

// NewInvalidTaxRateError creates a new invalid tax rate error
func NewInvalidTaxRateError(rate decimal.Decimal, allowed []decimal.Decimal) *InvalidTaxRateError {
	return &InvalidTaxRateError{Rate: rate, Allowed: allowed}
}

// InvalidInputError represents validation failures on caller input
type InvalidInputError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *InvalidInputError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("invalid %s: %s (value=%v)", e.Field, e.Message, e.Value)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewInvalidInputError creates a new invalid input error
func NewInvalidInputError(field string, value interface{}, message string) *InvalidInputError {
	return &InvalidInputError{Field: field, Value: value, Message: message}
}

// InUseError reports a deletion blocked by dependent records
type InUseError struct {
	Resource string
	ID       interface{}
	Reason   string
}

func (e *InUseError) Error() string {
	return fmt.Sprintf("%s %v cannot be deleted: %s", e.Resource, e.ID, e.Reason)
}

func (e *InUseError) Is(target error) bool {
	return target == ErrInUse
}

// NewInUseError creates a new in-use error
func NewInUseError(resource string, id interface{}, reason string) *InUseError {
	return &InUseError{Resource: resource, ID: id, Reason: reason}
}

// LineError locates a failure on one invoice line. Index is zero based.
type LineError struct {
	Index int
	Err   error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Index+1, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// Path names the offending input the way request bodies do: "lines[0].quantity"
func (e *LineError) Path() string {
	var inputErr *InvalidInputError
	if errors.As(e.Err, &inputErr) {
		return fmt.Sprintf("lines[%d].%s", e.Index, inputErr.Field)
	}
	return fmt.Sprintf("lines[%d]", e.Index)
}

// NewLineError wraps err with the index of the line it concerns
func NewLineError(index int, err error) *LineError {
	return &LineError{Index: index, Err: err}
}
