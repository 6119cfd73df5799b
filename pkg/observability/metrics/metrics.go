package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"
)

var (
	patientsCreated  atomic.Int64
	entriesAdded     atomic.Int64
	payloadsRejected atomic.Int64
	unknownPatients  atomic.Int64
	patientsStored   atomic.Int64
)

func IncPatientsCreated() { patientsCreated.Add(1) }

func IncEntriesAdded() { entriesAdded.Add(1) }

func IncPayloadsRejected() { payloadsRejected.Add(1) }

func IncUnknownPatients() { unknownPatients.Add(1) }

func ObservePatientsStored(n int) { patientsStored.Store(int64(n)) }

// Snapshot returns the current counter values keyed by metric name.
func Snapshot() map[string]int64 {
	return map[string]int64{
		"patientor_patients_created_total":  patientsCreated.Load(),
		"patientor_entries_added_total":     entriesAdded.Load(),
		"patientor_payloads_rejected_total": payloadsRejected.Load(),
		"patientor_unknown_patient_total":   unknownPatients.Load(),
		"patientor_patients_stored":         patientsStored.Load(),
	}
}

func Handler(w http.ResponseWriter, r *http.Request) {
	WritePrometheus(w)
}

type descriptor struct {
	name string
	help string
	kind string
}

var descriptors = []descriptor{
	{"patientor_patients_created_total", "Number of patients added since start.", "counter"},
	{"patientor_entries_added_total", "Number of entries appended since start.", "counter"},
	{"patientor_payloads_rejected_total", "Number of patient or entry payloads that failed decoding.", "counter"},
	{"patientor_unknown_patient_total", "Number of entries addressed to a patient that does not exist.", "counter"},
	{"patientor_patients_stored", "Number of patients currently held in memory.", "gauge"},
}

func WritePrometheus(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	values := Snapshot()
	for _, d := range descriptors {
		fmt.Fprintf(w, "# HELP %s %s\n", d.name, d.help)
		fmt.Fprintf(w, "# TYPE %s %s\n", d.name, d.kind)
		fmt.Fprintf(w, "%s %d\n", d.name, values[d.name])
	}
}
