package errors

// ErrorBuilder provides a fluent API for creating ClassifiedError instances.
type ErrorBuilder struct {
	category ErrorCategory
	severity ErrorSeverity
	retry    RetryStrategy
	message  string
	cause    error
	context  ErrorContext
}

// NewError creates a new ErrorBuilder with the specified category and message.
func NewError(category ErrorCategory, message string) *ErrorBuilder {
	return &ErrorBuilder{
		category: category,
		severity: SeverityError,
		retry:    RetryNever,
		message:  message,
		context:  make(ErrorContext),
	}
}

// WrapError creates a new ErrorBuilder that wraps an existing error.
func WrapError(err error, category ErrorCategory, message string) *ErrorBuilder {
	return NewError(category, message).WithCause(err)
}

func (b *ErrorBuilder) WithSeverity(severity ErrorSeverity) *ErrorBuilder {
	b.severity = severity
	return b
}

func (b *ErrorBuilder) WithRetry(strategy RetryStrategy) *ErrorBuilder {
	b.retry = strategy
	return b
}

func (b *ErrorBuilder) WithCause(err error) *ErrorBuilder {
	b.cause = err
	return b
}

func (b *ErrorBuilder) WithContext(key string, value any) *ErrorBuilder {
	b.context = b.context.Set(key, value)
	return b
}

func (b *ErrorBuilder) Fatal() *ErrorBuilder     { return b.WithSeverity(SeverityFatal) }
func (b *ErrorBuilder) Warning() *ErrorBuilder   { return b.WithSeverity(SeverityWarning) }
func (b *ErrorBuilder) Retryable() *ErrorBuilder { return b.WithRetry(RetryBackoff) }

// Build creates the final ClassifiedError.
func (b *ErrorBuilder) Build() *ClassifiedError {
	return &ClassifiedError{
		category: b.category,
		severity: b.severity,
		retry:    b.retry,
		message:  b.message,
		cause:    b.cause,
		context:  b.context,
	}
}

// Convenience constructors for common error patterns

func ConfigError(message string) *ErrorBuilder {
	return NewError(CategoryConfig, message).Fatal()
}

func ValidationError(message string) *ErrorBuilder {
	return NewError(CategoryValidation, message).Fatal()
}

func NotFoundError(message string) *ErrorBuilder {
	return NewError(CategoryNotFound, message)
}

func DocsError(message string) *ErrorBuilder {
	return NewError(CategoryDocs, message).Fatal()
}

// FileSystemError creates a filesystem error (typically retryable).
func FileSystemError(message string) *ErrorBuilder {
	return NewError(CategoryFileSystem, message).Retryable()
}

func StoreError(message string) *ErrorBuilder {
	return NewError(CategoryStore, message).Retryable()
}

func EventsError(message string) *ErrorBuilder {
	return NewError(CategoryEvents, message).Warning().Retryable()
}

func RuntimeError(message string) *ErrorBuilder {
	return NewError(CategoryRuntime, message).Fatal()
}

func InternalError(message string) *ErrorBuilder {
	return NewError(CategoryInternal, message).Fatal()
}
