// Package validator validates usecase input structs.
//
// Business code depends on the Validator interface; V10Validator implements it
// with go-playground/validator v10 and English messages.
package validator

// Validator validates a struct against its `validate` tags.
type Validator interface {
	Validate(data any) error
}
