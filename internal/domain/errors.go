package domain

// ValidationError marks a failure that should surface as a 400 to clients.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// User validation errors
var (
	ErrNameRequired        = &ValidationError{"name is required"}
	ErrInvalidEmail        = &ValidationError{"email is invalid"}
	ErrNegativeAge         = &ValidationError{"age must be a positive number"}
	ErrPasswordTooShort    = &ValidationError{"password must be at least 7 characters"}
	ErrPasswordNotAllowed  = &ValidationError{`password cannot contain "password"`}
)

// Task validation errors
var (
	ErrDescriptionRequired = &ValidationError{"description is required"}
)
