package patients

import "github.com/goccy/go-json"

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

type HealthCheckRating int

const (
	Healthy HealthCheckRating = iota
	LowRisk
	HighRisk
	CriticalRisk
)

var healthCheckRatingNames = map[HealthCheckRating]string{
	Healthy:      "Healthy",
	LowRisk:      "LowRisk",
	HighRisk:     "HighRisk",
	CriticalRisk: "CriticalRisk",
}

func (r HealthCheckRating) String() string {
	if name, ok := healthCheckRatingNames[r]; ok {
		return name
	}
	return "Unknown"
}

func (r HealthCheckRating) Valid() bool {
	_, ok := healthCheckRatingNames[r]
	return ok
}

type EntryType string

const (
	EntryTypeHospital               EntryType = "Hospital"
	EntryTypeHealthCheck            EntryType = "HealthCheck"
	EntryTypeOccupationalHealthcare EntryType = "OccupationalHealthcare"
)

type Discharge struct {
	Date     string `json:"date" yaml:"date"`
	Criteria string `json:"criteria" yaml:"criteria"`
}

type SickLeave struct {
	StartDate string `json:"startDate" yaml:"startDate"`
	EndDate   string `json:"endDate" yaml:"endDate"`
}

// BaseEntry holds the fields shared by every entry variant.
type BaseEntry struct {
	Description    string   `json:"description"`
	Date           string   `json:"date"`
	Specialist     string   `json:"specialist"`
	DiagnosisCodes []string `json:"diagnosisCodes,omitempty"`
}

// EntryDetails is the variant payload of an entry. The set of
// implementations is closed: HospitalDetails, HealthCheckDetails and
// OccupationalHealthcareDetails.
type EntryDetails interface {
	Type() EntryType
}

type HospitalDetails struct {
	Discharge Discharge `json:"discharge"`
}

func (HospitalDetails) Type() EntryType { return EntryTypeHospital }

type HealthCheckDetails struct {
	HealthCheckRating HealthCheckRating `json:"healthCheckRating"`
}

func (HealthCheckDetails) Type() EntryType { return EntryTypeHealthCheck }

type OccupationalHealthcareDetails struct {
	EmployerName string     `json:"employerName"`
	SickLeave    *SickLeave `json:"sickLeave,omitempty"`
}

func (OccupationalHealthcareDetails) Type() EntryType { return EntryTypeOccupationalHealthcare }

// NewEntry is an entry without an identifier, as produced by DecodeNewEntry.
type NewEntry struct {
	BaseEntry
	Details EntryDetails
}

func (e NewEntry) Type() EntryType {
	if e.Details == nil {
		return ""
	}
	return e.Details.Type()
}

func (e NewEntry) MarshalJSON() ([]byte, error) {
	return marshalEntry("", e)
}

type Entry struct {
	ID string
	NewEntry
}

func (e Entry) MarshalJSON() ([]byte, error) {
	return marshalEntry(e.ID, e.NewEntry)
}

// entryJSON flattens the base fields and the active variant into a single
// object. Nil embedded pointers are skipped by the encoder.
type entryJSON struct {
	ID   string    `json:"id,omitempty"`
	Type EntryType `json:"type"`
	BaseEntry
	*HospitalDetails
	*HealthCheckDetails
	*OccupationalHealthcareDetails
}

func marshalEntry(id string, e NewEntry) ([]byte, error) {
	out := entryJSON{ID: id, Type: e.Type(), BaseEntry: e.BaseEntry}
	switch d := e.Details.(type) {
	case HospitalDetails:
		out.HospitalDetails = &d
	case HealthCheckDetails:
		out.HealthCheckDetails = &d
	case OccupationalHealthcareDetails:
		out.OccupationalHealthcareDetails = &d
	}
	return json.Marshal(out)
}

type NewPatient struct {
	Name        string  `json:"name"`
	DateOfBirth string  `json:"dateOfBirth"`
	SSN         string  `json:"ssn"`
	Gender      Gender  `json:"gender"`
	Occupation  string  `json:"occupation"`
	Entries     []Entry `json:"entries"`
}

type Patient struct {
	ID string `json:"id"`
	NewPatient
}

// PatientSummary is the list view of a patient. It never carries the ssn.
type PatientSummary struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	DateOfBirth string  `json:"dateOfBirth"`
	Gender      Gender  `json:"gender"`
	Occupation  string  `json:"occupation"`
	Entries     []Entry `json:"entries"`
}

func (p Patient) Summary() PatientSummary {
	return PatientSummary{
		ID:          p.ID,
		Name:        p.Name,
		DateOfBirth: p.DateOfBirth,
		Gender:      p.Gender,
		Occupation:  p.Occupation,
		Entries:     copyEntries(p.Entries),
	}
}

func copyEntries(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = cloneEntry(e)
	}
	return out
}

// cloneEntry copies the slices and pointers an entry holds so the copy shares
// nothing with the original.
func cloneEntry(e Entry) Entry {
	if e.DiagnosisCodes != nil {
		codes := make([]string, len(e.DiagnosisCodes))
		copy(codes, e.DiagnosisCodes)
		e.DiagnosisCodes = codes
	}
	if details, ok := e.Details.(OccupationalHealthcareDetails); ok && details.SickLeave != nil {
		sickLeave := *details.SickLeave
		details.SickLeave = &sickLeave
		e.Details = details
	}
	return e
}
