package patients

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

type seedFile struct {
	Patients []map[string]interface{} `yaml:"patients"`
}

// LoadSeed reads patients from a YAML file. Every patient and entry goes
// through the same decoders as HTTP input; ids are kept when present.
func LoadSeed(path string) ([]Patient, error) {
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	return ParseSeed(content)
}

func ParseSeed(content []byte) ([]Patient, error) {
	var file seedFile
	if err := yaml.Unmarshal(content, &file); err != nil {
		return nil, fmt.Errorf("parsing seed file: %w", err)
	}

	out := make([]Patient, 0, len(file.Patients))
	for i, patientRaw := range file.Patients {
		raw := normalizeSeedMap(patientRaw)
		np, err := DecodeNewPatient(raw)
		if err != nil {
			return nil, fmt.Errorf("seed patient %d: %w", i, err)
		}
		patient := Patient{ID: seedID(raw), NewPatient: np}

		rawEntries, err := seedEntries(raw)
		if err != nil {
			return nil, fmt.Errorf("seed patient %d: %w", i, err)
		}
		for j, rawEntry := range rawEntries {
			ne, err := DecodeNewEntry(rawEntry)
			if err != nil {
				return nil, fmt.Errorf("seed patient %d entry %d: %w", i, j, err)
			}
			patient.Entries = append(patient.Entries, Entry{ID: seedID(rawEntry), NewEntry: ne})
		}
		out = append(out, patient)
	}
	return out, nil
}

// Seed inserts patients into the store, failing on the first duplicate id.
func (s *Store) Seed(patients []Patient) error {
	for _, p := range patients {
		if err := s.Insert(p); err != nil {
			return err
		}
	}
	return nil
}

// seedEntries returns the entries sequence of a seeded patient. An absent or
// null value means no entries.
func seedEntries(raw map[string]interface{}) ([]interface{}, error) {
	value, ok := raw["entries"]
	if !ok || value == nil {
		return nil, nil
	}
	entries, ok := value.([]interface{})
	if !ok {
		return nil, InvalidFieldError{Field: "entries"}
	}
	return entries, nil
}

// normalizeSeedValue turns unquoted YAML timestamps back into date strings so
// they decode the same way as JSON input.
func normalizeSeedValue(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		return normalizeSeedMap(v)
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = normalizeSeedValue(item)
		}
		return out
	case time.Time:
		if v.Equal(v.Truncate(24 * time.Hour)) {
			return v.Format("2006-01-02")
		}
		return v.Format(time.RFC3339)
	default:
		return value
	}
}

func normalizeSeedMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	out := make(map[string]interface{}, len(m))
	for key, item := range m {
		out[key] = normalizeSeedValue(item)
	}
	return out
}

func seedID(raw interface{}) string {
	if object, ok := raw.(map[string]interface{}); ok {
		if id, ok := object["id"].(string); ok && id != "" {
			return id
		}
	}
	return uuid.New().String()
}
