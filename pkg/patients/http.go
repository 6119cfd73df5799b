package patients

import (
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/patientor/platform/pkg/common/logger"
	"github.com/patientor/platform/pkg/redact"
)

const errorPrefix = "Something went wrong."

var errTrailingData = errors.New("unexpected data after JSON body")

type HTTPHandler struct {
	service  *Service
	maxBody  int64
	redactor *redact.Redactor
}

func NewHTTPHandler(service *Service, maxBody int64, redactor *redact.Redactor) *HTTPHandler {
	return &HTTPHandler{service: service, maxBody: maxBody, redactor: redactor}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/patients", h.handleList).Methods(http.MethodGet)
	router.HandleFunc("/patients", h.handleCreate).Methods(http.MethodPost)
	router.HandleFunc("/patients/{id}", h.handleGet).Methods(http.MethodGet)
	router.HandleFunc("/patients/{id}/entries", h.handleAddEntry).Methods(http.MethodPost)
}

func (h *HTTPHandler) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.ListPatients(r.Context()))
}

func (h *HTTPHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	patient, ok := h.service.GetPatient(r.Context(), id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Patient not found."})
		return
	}
	writeJSON(w, http.StatusOK, patient)
}

func (h *HTTPHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	raw, err := h.readBody(w, r)
	if err != nil {
		h.writeFailure(w, "patient", err)
		return
	}

	patient, err := h.service.AddPatient(r.Context(), raw)
	if err != nil {
		h.writeFailure(w, "patient", err)
		return
	}
	writeJSON(w, http.StatusOK, patient)
}

func (h *HTTPHandler) handleAddEntry(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	raw, err := h.readBody(w, r)
	if err != nil {
		h.writeFailure(w, "entry", err)
		return
	}

	patient, err := h.service.AddEntry(r.Context(), id, raw)
	if err != nil {
		h.writeFailure(w, "entry", err)
		return
	}
	writeJSON(w, http.StatusOK, patient)
}

// readBody decodes the request body into a generic value. An empty body is
// treated as an empty object; anything after the first JSON value is rejected.
func (h *HTTPHandler) readBody(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]interface{}{}, nil
		}
		return nil, err
	}
	var extra interface{}
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, errTrailingData
	}
	return raw, nil
}

// writeFailure renders every decode, body and store failure with the same
// plain-text 400 envelope.
func (h *HTTPHandler) writeFailure(w http.ResponseWriter, kind string, err error) {
	reason := err.Error()
	entry := logger.WithFields(map[string]interface{}{
		"reason":   h.redactor.Mask(reason),
		"redacted": h.redactor.Detect(reason),
		"kind":     kind,
	})
	switch {
	case IsValidationError(err):
		entry.Warn("rejected payload")
	case IsNotFound(err):
		entry.Warn("entry targets unknown patient")
	default:
		entry.Warn("unreadable request body")
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusBadRequest)
	io.WriteString(w, errorPrefix+" Error: "+err.Error())
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Log.WithError(err).Error("failed to encode response")
	}
}
