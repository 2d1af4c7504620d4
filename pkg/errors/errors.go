// Package errors provides typed, wrappable error values for gbtreecore.
//
// All constructors return concrete *XxxError types that work with Go 1.13+
// errors.Is / errors.As; ModelError also wraps a cause and exposes it via
// Unwrap. The sentinel errors are created with github.com/cockroachdb/errors
// and carry its stack trace; the *XxxError types carry no stack trace.
package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Sentinel errors for common failure conditions. Wrap these with
// NewModelError (or plain fmt.Errorf with %w) to add operation context
// while preserving errors.Is compatibility.
var (
	// ErrEmptyData indicates an operation received a zero-length dataset.
	ErrEmptyData = errors.New("empty data")
	// ErrNotImplemented indicates a requested code path is intentionally unimplemented.
	ErrNotImplemented = errors.New("not implemented")
	// ErrNoSplit indicates the split finder produced no admissible candidate.
	ErrNoSplit = errors.New("no admissible split")
)

// NotFittedError reports use of a component before its Fit/fit-equivalent
// step has completed.
type NotFittedError struct {
	ModelName string
	Method    string
}

// NewNotFittedError constructs a NotFittedError for modelName.Method.
func NewNotFittedError(modelName, method string) *NotFittedError {
	return &NotFittedError{ModelName: modelName, Method: method}
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("gbtreecore: %s is not fitted, call Fit before %s", e.ModelName, e.Method)
}

// DimensionError reports a shape mismatch between an expected and an actual
// vector/matrix dimension.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int
}

// NewDimensionError constructs a DimensionError for op, comparing expected
// against got along axis.
func NewDimensionError(op string, expected, got, axis int) *DimensionError {
	return &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("gbtreecore: %s: dimension mismatch on axis %d: expected %d, got %d",
		e.Op, e.Axis, e.Expected, e.Got)
}

// ValueError reports an invalid runtime value supplied to Op.
type ValueError struct {
	Op      string
	Message string
}

// NewValueError constructs a ValueError attributed to op.
func NewValueError(op, message string) *ValueError {
	return &ValueError{Op: op, Message: message}
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("gbtreecore: %s: %s", e.Op, e.Message)
}

// ConfigError reports an invalid BoostConfig/TreeConfig parameter, detected
// before training starts.
type ConfigError struct {
	Field   string
	Value   interface{}
	Message string
}

// NewConfigError constructs a ConfigError for field holding value.
func NewConfigError(field string, value interface{}, message string) *ConfigError {
	return &ConfigError{Field: field, Value: value, Message: message}
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("gbtreecore: invalid config field %q=%v: %s", e.Field, e.Value, e.Message)
}

// CardinalityError reports a categorical or rank column aggregator whose
// observed cardinality exceeded its configured max_bins.
type CardinalityError struct {
	Column  int
	MaxBins int
	Seen    int
}

// NewCardinalityError constructs a CardinalityError for the given column.
func NewCardinalityError(column, maxBins, seen int) *CardinalityError {
	return &CardinalityError{Column: column, MaxBins: maxBins, Seen: seen}
}

func (e *CardinalityError) Error() string {
	return fmt.Sprintf("gbtreecore: column %d: cardinality %d exceeds max_bins %d", e.Column, e.Seen, e.MaxBins)
}

// UnknownCategoryError reports a value at transform time that was never
// observed during Fit.
type UnknownCategoryError struct {
	Column int
	Value  int
}

// NewUnknownCategoryError constructs an UnknownCategoryError for value in column.
func NewUnknownCategoryError(column, value int) *UnknownCategoryError {
	return &UnknownCategoryError{Column: column, Value: value}
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("gbtreecore: column %d: unknown category %d at transform time", e.Column, e.Value)
}

// ModelError wraps a lower-level cause with operation context, preserving
// errors.Is/errors.As access to cause through Unwrap.
type ModelError struct {
	Op      string
	Message string
	cause   error
}

// NewModelError constructs a ModelError attributed to op, wrapping cause.
func NewModelError(op, message string, cause error) *ModelError {
	return &ModelError{Op: op, Message: message, cause: cause}
}

func (e *ModelError) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("gbtreecore: %s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("gbtreecore: %s: %s: %v", e.Op, e.Message, e.cause)
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As traversal.
func (e *ModelError) Unwrap() error {
	return e.cause
}
