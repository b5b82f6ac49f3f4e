package errors

import (
	stderrors "errors"
	"fmt"
)

// ClassifiedError represents a structured error with category, severity, and context.
type ClassifiedError struct {
	category ErrorCategory
	severity ErrorSeverity
	retry    RetryStrategy
	message  string
	cause    error
	context  ErrorContext
}

// Error implements the standard error interface.
func (e *ClassifiedError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.category, e.severity, e.message, e.cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.category, e.severity, e.message)
}

func (e *ClassifiedError) Unwrap() error { return e.cause }

func (e *ClassifiedError) Category() ErrorCategory      { return e.category }
func (e *ClassifiedError) Severity() ErrorSeverity      { return e.severity }
func (e *ClassifiedError) RetryStrategy() RetryStrategy { return e.retry }
func (e *ClassifiedError) Message() string              { return e.message }
func (e *ClassifiedError) Cause() error                 { return e.cause }
func (e *ClassifiedError) Context() ErrorContext        { return e.context }

// WithContext returns a copy of the error with key set in its context.
func (e *ClassifiedError) WithContext(key string, value any) *ClassifiedError {
	ctx := make(ErrorContext, len(e.context)+1).Merge(e.context)
	ctx = ctx.Set(key, value)
	return &ClassifiedError{
		category: e.category,
		severity: e.severity,
		retry:    e.retry,
		message:  e.message,
		cause:    e.cause,
		context:  ctx,
	}
}

// Is reports equality on category and message so sentinel-style comparisons work.
func (e *ClassifiedError) Is(target error) bool {
	if other, ok := target.(*ClassifiedError); ok {
		return e.category == other.category && e.message == other.message
	}
	return false
}

// IsCategory checks if the error belongs to a specific category.
func (e *ClassifiedError) IsCategory(category ErrorCategory) bool {
	return e.category == category
}

// CanRetry checks if the error allows retry operations.
func (e *ClassifiedError) CanRetry() bool {
	return e.retry != RetryNever && e.retry != RetryUserAction
}

// IsFatal checks if the error is fatal (should stop execution).
func (e *ClassifiedError) IsFatal() bool {
	return e.severity == SeverityFatal
}

// AsClassified finds the first ClassifiedError in err's chain.
func AsClassified(err error) (*ClassifiedError, bool) {
	var classified *ClassifiedError
	if stderrors.As(err, &classified) {
		return classified, true
	}
	return nil, false
}

// HasCategory checks if any error in the chain belongs to a category.
func HasCategory(err error, category ErrorCategory) bool {
	if classified, ok := AsClassified(err); ok {
		return classified.IsCategory(category)
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal.
func GetCategory(err error) ErrorCategory {
	if classified, ok := AsClassified(err); ok {
		return classified.Category()
	}
	return CategoryInternal
}
