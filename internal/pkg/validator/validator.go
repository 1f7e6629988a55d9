package validator

// Validator validates structs tagged with `validate:"..."` rules.
type Validator interface {
	Validate(data any) error
}
