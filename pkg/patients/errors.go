package patients

import (
	"errors"
	"fmt"
	"strings"
)

// MissingFieldError reports a required field that is absent, or an input
// that is not an object at all (Fields empty).
type MissingFieldError struct {
	Fields []string
	// Variant is set when the field is required only by one entry type.
	Variant EntryType
}

func (e MissingFieldError) Error() string {
	switch {
	case len(e.Fields) == 0:
		return "Incorrect or missing data"
	case e.Variant != "":
		return fmt.Sprintf("Incorrect data: `%s` field is missing (type = `%s`)", strings.Join(e.Fields, "`, `"), e.Variant)
	default:
		return "Incorrect data: some fields are missing: " + strings.Join(e.Fields, ", ")
	}
}

// InvalidFieldError reports a field that is present but fails its type,
// format or enumeration check.
type InvalidFieldError struct {
	Field string
	Value interface{}
}

func (e InvalidFieldError) Error() string {
	if e.Value == nil {
		return "Incorrect or missing " + e.Field
	}
	return fmt.Sprintf("Incorrect or missing %s: %v", e.Field, e.Value)
}

// UnknownTypeError reports an entry discriminant outside the known set.
type UnknownTypeError struct {
	Type interface{}
}

func (e UnknownTypeError) Error() string {
	return fmt.Sprintf("Incorrect data: unknown entry type: %v", e.Type)
}

// NotFoundError is returned when an entry targets a patient that does not
// exist.
type NotFoundError struct {
	PatientID string
}

func (e NotFoundError) Error() string {
	return "Patient does not exist"
}

func IsValidationError(err error) bool {
	var missing MissingFieldError
	var invalid InvalidFieldError
	var unknown UnknownTypeError
	return errors.As(err, &missing) || errors.As(err, &invalid) || errors.As(err, &unknown)
}

func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}
