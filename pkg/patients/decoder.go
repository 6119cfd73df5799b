package patients

import (
	"math"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

var ssnPattern = regexp.MustCompile(`^\d{6}-(\d{2}[A-Z0-9]|\d{3}[A-Z])$`)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("ssn", func(fl validator.FieldLevel) bool {
		return ssnPattern.MatchString(fl.Field().String())
	})
	validate.RegisterValidation("calendar_date", func(fl validator.FieldLevel) bool {
		return parseCalendarDate(fl.Field().String())
	})
}

var patientFields = []string{"name", "dateOfBirth", "ssn", "gender", "occupation"}

var entryFields = []string{"type", "description", "date", "specialist"}

// DecodeNewPatient narrows an untrusted JSON-like value into a NewPatient.
// The returned patient always has an empty, non-nil entry list.
func DecodeNewPatient(raw interface{}) (NewPatient, error) {
	object, err := requireObject(raw, patientFields)
	if err != nil {
		return NewPatient{}, err
	}

	name, err := parseString(object["name"], "name")
	if err != nil {
		return NewPatient{}, err
	}
	dateOfBirth, err := parseDate(object["dateOfBirth"], "date")
	if err != nil {
		return NewPatient{}, err
	}
	ssn, err := parseSSN(object["ssn"])
	if err != nil {
		return NewPatient{}, err
	}
	gender, err := parseGender(object["gender"])
	if err != nil {
		return NewPatient{}, err
	}
	occupation, err := parseString(object["occupation"], "occupation")
	if err != nil {
		return NewPatient{}, err
	}

	return NewPatient{
		Name:        name,
		DateOfBirth: dateOfBirth,
		SSN:         ssn,
		Gender:      gender,
		Occupation:  occupation,
		Entries:     []Entry{},
	}, nil
}

// DecodeNewEntry narrows an untrusted JSON-like value into a NewEntry. Base
// fields are checked before the variant selected by "type".
func DecodeNewEntry(raw interface{}) (NewEntry, error) {
	object, err := requireObject(raw, entryFields)
	if err != nil {
		return NewEntry{}, err
	}

	var base BaseEntry
	if base.Description, err = parseNonEmptyString(object["description"], "description"); err != nil {
		return NewEntry{}, err
	}
	if base.Date, err = parseDate(object["date"], "date"); err != nil {
		return NewEntry{}, err
	}
	if base.Specialist, err = parseNonEmptyString(object["specialist"], "specialist"); err != nil {
		return NewEntry{}, err
	}
	if codes, ok := object["diagnosisCodes"]; ok && codes != nil {
		if base.DiagnosisCodes, err = parseDiagnosisCodes(codes); err != nil {
			return NewEntry{}, err
		}
	}

	details, err := decodeEntryDetails(object)
	if err != nil {
		return NewEntry{}, err
	}
	return NewEntry{BaseEntry: base, Details: details}, nil
}

func decodeEntryDetails(object map[string]interface{}) (EntryDetails, error) {
	entryType, _ := object["type"].(string)

	switch EntryType(entryType) {
	case EntryTypeHospital:
		value, ok := object["discharge"]
		if !ok {
			return nil, MissingFieldError{Fields: []string{"discharge"}, Variant: EntryTypeHospital}
		}
		discharge, err := parseDischarge(value)
		if err != nil {
			return nil, err
		}
		return HospitalDetails{Discharge: discharge}, nil

	case EntryTypeHealthCheck:
		value, ok := object["healthCheckRating"]
		if !ok {
			return nil, MissingFieldError{Fields: []string{"healthCheckRating"}, Variant: EntryTypeHealthCheck}
		}
		rating, err := parseHealthCheckRating(value)
		if err != nil {
			return nil, err
		}
		return HealthCheckDetails{HealthCheckRating: rating}, nil

	case EntryTypeOccupationalHealthcare:
		value, ok := object["employerName"]
		if !ok {
			return nil, MissingFieldError{Fields: []string{"employerName"}, Variant: EntryTypeOccupationalHealthcare}
		}
		employer, err := parseString(value, "employerName")
		if err != nil {
			return nil, err
		}
		details := OccupationalHealthcareDetails{EmployerName: employer}
		if value, ok := object["sickLeave"]; ok {
			sickLeave, err := parseSickLeave(value)
			if err != nil {
				return nil, err
			}
			details.SickLeave = &sickLeave
		}
		return details, nil

	default:
		return nil, UnknownTypeError{Type: object["type"]}
	}
}

// requireObject checks that raw is an object carrying every key in required.
// Presence is checked by key, so an explicit null still counts as present.
func requireObject(raw interface{}, required []string) (map[string]interface{}, error) {
	object, ok := raw.(map[string]interface{})
	if !ok || object == nil {
		return nil, MissingFieldError{}
	}

	var missing []string
	for _, field := range required {
		if _, ok := object[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, MissingFieldError{Fields: missing}
	}
	return object, nil
}

func isString(value interface{}) (string, bool) {
	s, ok := value.(string)
	return s, ok
}

func isDate(value string) bool {
	return validate.Var(value, "calendar_date") == nil
}

func isGender(value string) bool {
	return validate.Var(value, "oneof=male female other") == nil
}

func isSSN(value string) bool {
	return validate.Var(value, "ssn") == nil
}

func isNonEmpty(value string) bool {
	return validate.Var(value, "required") == nil
}

func parseCalendarDate(value string) bool {
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, value); err == nil {
			return true
		}
	}
	return false
}

func parseString(value interface{}, field string) (string, error) {
	s, ok := isString(value)
	if !ok {
		return "", InvalidFieldError{Field: field}
	}
	return s, nil
}

func parseNonEmptyString(value interface{}, field string) (string, error) {
	s, ok := isString(value)
	if !ok || !isNonEmpty(s) {
		return "", InvalidFieldError{Field: field}
	}
	return s, nil
}

func parseDate(value interface{}, field string) (string, error) {
	s, ok := isString(value)
	if !ok || !isDate(s) {
		return "", InvalidFieldError{Field: field, Value: displayValue(value)}
	}
	return s, nil
}

func parseSSN(value interface{}) (string, error) {
	s, ok := isString(value)
	if !ok || !isSSN(s) {
		return "", InvalidFieldError{Field: "ssn", Value: displayValue(value)}
	}
	return s, nil
}

func parseGender(value interface{}) (Gender, error) {
	s, ok := isString(value)
	if !ok || !isGender(s) {
		return "", InvalidFieldError{Field: "gender", Value: displayValue(value)}
	}
	return Gender(s), nil
}

func parseDischarge(value interface{}) (Discharge, error) {
	object, ok := value.(map[string]interface{})
	if !ok || object == nil {
		return Discharge{}, InvalidFieldError{Field: "discharge"}
	}
	date, okDate := object["date"]
	criteria, okCriteria := object["criteria"]
	if !okDate || !okCriteria {
		return Discharge{}, InvalidFieldError{Field: "discharge"}
	}

	dateStr, ok := isString(date)
	if !ok || !isDate(dateStr) {
		return Discharge{}, InvalidFieldError{Field: "discharge date"}
	}
	criteriaStr, ok := isString(criteria)
	if !ok || !isNonEmpty(criteriaStr) {
		return Discharge{}, InvalidFieldError{Field: "discharge criteria"}
	}
	return Discharge{Date: dateStr, Criteria: criteriaStr}, nil
}

func parseHealthCheckRating(value interface{}) (HealthCheckRating, error) {
	n, ok := isNumber(value)
	if !ok || n != math.Trunc(n) || !HealthCheckRating(n).Valid() {
		return 0, InvalidFieldError{Field: "healthCheckRating", Value: displayValue(value)}
	}
	return HealthCheckRating(n), nil
}

func parseSickLeave(value interface{}) (SickLeave, error) {
	object, ok := value.(map[string]interface{})
	if !ok || object == nil {
		return SickLeave{}, InvalidFieldError{Field: "sickLeave"}
	}
	start, okStart := object["startDate"]
	end, okEnd := object["endDate"]
	if !okStart || !okEnd {
		return SickLeave{}, InvalidFieldError{Field: "sickLeave"}
	}

	startStr, ok := isString(start)
	if !ok {
		return SickLeave{}, InvalidFieldError{Field: "sickLeave startDate"}
	}
	endStr, ok := isString(end)
	if !ok {
		return SickLeave{}, InvalidFieldError{Field: "sickLeave endDate"}
	}
	return SickLeave{StartDate: startStr, EndDate: endStr}, nil
}

// parseDiagnosisCodes only checks the shape; the codes themselves are not
// looked up.
func parseDiagnosisCodes(value interface{}) ([]string, error) {
	switch v := value.(type) {
	case []string:
		return append([]string{}, v...), nil
	case []interface{}:
		codes := make([]string, 0, len(v))
		for _, item := range v {
			code, ok := isString(item)
			if !ok {
				return nil, InvalidFieldError{Field: "diagnosisCodes"}
			}
			codes = append(codes, code)
		}
		return codes, nil
	default:
		return nil, InvalidFieldError{Field: "diagnosisCodes"}
	}
}

// isNumber accepts the numeric shapes produced by the JSON and YAML decoders.
func isNumber(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func displayValue(value interface{}) interface{} {
	if value == nil {
		return "null"
	}
	return value
}
