// Package errors provides the classified error primitives used across docsite.
//
// A ClassifiedError carries a category (config, validation, not_found, ...),
// a severity and a retry strategy next to the message, the wrapped cause and
// free-form context. Errors are built with the fluent ErrorBuilder:
//
//	err := errors.NewError(errors.CategoryDocs, "read page failed").
//		WithContext("file", rel).
//		WithCause(readErr).
//		Build()
//
// The CLI and HTTP adapters turn classified errors into exit codes and JSON
// responses respectively.
package errors
