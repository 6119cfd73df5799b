package patients

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Store is the in-memory, process-lifetime collection of patients. Patients
// keep their insertion order and entries are only ever appended.
type Store struct {
	mu       sync.RWMutex
	patients []Patient
	index    map[string]int
	newID    func() string
}

func NewStore() *Store {
	return &Store{
		index: make(map[string]int),
		newID: func() string { return uuid.New().String() },
	}
}

// ListSummaries returns every patient without the ssn, in insertion order.
func (s *Store) ListSummaries() []PatientSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]PatientSummary, 0, len(s.patients))
	for _, p := range s.patients {
		out = append(out, p.Summary())
	}
	return out
}

// GetByID returns a copy of the patient with the given id. The boolean is
// false when no patient matches.
func (s *Store) GetByID(id string) (Patient, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return Patient{}, false
	}
	return clonePatient(s.patients[i]), true
}

// Add stores np under a freshly generated id and returns the full patient,
// ssn included.
func (s *Store) Add(np NewPatient) Patient {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := Patient{ID: s.uniqueID(), NewPatient: np}
	p.Entries = copyEntries(np.Entries)
	s.append(p)
	return clonePatient(p)
}

// AddEntry appends ne under a fresh id to the patient's entries and returns
// the updated patient.
func (s *Store) AddEntry(ne NewEntry, patientID string) (Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[patientID]
	if !ok {
		return Patient{}, NotFoundError{PatientID: patientID}
	}

	entry := cloneEntry(Entry{ID: s.newID(), NewEntry: ne})
	s.patients[i].Entries = append(s.patients[i].Entries, entry)
	return clonePatient(s.patients[i]), nil
}

// Insert stores a patient that already carries its id, as done when seeding.
func (s *Store) Insert(p Patient) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		return fmt.Errorf("inserting patient: empty id")
	}
	if _, exists := s.index[p.ID]; exists {
		return fmt.Errorf("inserting patient: duplicate id %q", p.ID)
	}
	p.Entries = copyEntries(p.Entries)
	s.append(p)
	return nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.patients)
}

func (s *Store) append(p Patient) {
	s.index[p.ID] = len(s.patients)
	s.patients = append(s.patients, p)
}

// uniqueID must be called with the write lock held.
func (s *Store) uniqueID() string {
	for {
		id := s.newID()
		if _, taken := s.index[id]; !taken {
			return id
		}
	}
}

func clonePatient(p Patient) Patient {
	p.Entries = copyEntries(p.Entries)
	return p
}
