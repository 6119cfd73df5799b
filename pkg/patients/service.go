package patients

import (
	"context"

	"github.com/patientor/platform/pkg/common/logger"
	"github.com/patientor/platform/pkg/observability/metrics"
)

const (
	EventPatientCreated = "patient.created"
	EventEntryAdded     = "entry.added"

	eventSource = "patients"
)

// EventPublisher is satisfied by kafka.Producer.
type EventPublisher interface {
	PublishEvent(ctx context.Context, eventType string, source string, data map[string]interface{}) error
}

type Service struct {
	store     *Store
	publisher EventPublisher
}

// NewService wires the store with an optional publisher; pass nil to disable
// domain events.
func NewService(store *Store, publisher EventPublisher) *Service {
	return &Service{store: store, publisher: publisher}
}

func (s *Service) ListPatients(ctx context.Context) []PatientSummary {
	return s.store.ListSummaries()
}

func (s *Service) GetPatient(ctx context.Context, id string) (Patient, bool) {
	return s.store.GetByID(id)
}

// AddPatient decodes raw and stores the result.
func (s *Service) AddPatient(ctx context.Context, raw interface{}) (Patient, error) {
	np, err := DecodeNewPatient(raw)
	if err != nil {
		metrics.IncPayloadsRejected()
		return Patient{}, err
	}

	patient := s.store.Add(np)
	metrics.IncPatientsCreated()
	metrics.ObservePatientsStored(s.store.Len())
	logger.Log.WithField("patient_id", patient.ID).Info("patient added")

	s.publish(ctx, EventPatientCreated, map[string]interface{}{
		"patient_id": patient.ID,
		"name":       patient.Name,
		"gender":     string(patient.Gender),
		"occupation": patient.Occupation,
	})
	return patient, nil
}

// AddEntry decodes raw and appends it to the patient's entries.
func (s *Service) AddEntry(ctx context.Context, patientID string, raw interface{}) (Patient, error) {
	ne, err := DecodeNewEntry(raw)
	if err != nil {
		metrics.IncPayloadsRejected()
		return Patient{}, err
	}

	patient, err := s.store.AddEntry(ne, patientID)
	if err != nil {
		metrics.IncUnknownPatients()
		return Patient{}, err
	}
	metrics.IncEntriesAdded()

	entry := patient.Entries[len(patient.Entries)-1]
	logger.Log.WithFields(map[string]interface{}{
		"patient_id": patient.ID,
		"entry_id":   entry.ID,
		"entry_type": string(entry.Type()),
	}).Info("entry added")

	s.publish(ctx, EventEntryAdded, map[string]interface{}{
		"patient_id": patient.ID,
		"entry_id":   entry.ID,
		"entry_type": string(entry.Type()),
		"date":       entry.Date,
	})
	return patient, nil
}

func (s *Service) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishEvent(ctx, eventType, eventSource, data); err != nil {
		logger.Log.WithError(err).WithField("event_type", eventType).Warn("failed to publish patient event")
	}
}
