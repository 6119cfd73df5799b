package diagnoses

import (
	"net/http"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/patientor/platform/pkg/common/logger"
)

type HTTPHandler struct {
	catalog Catalog
}

func NewHTTPHandler(catalog Catalog) *HTTPHandler {
	return &HTTPHandler{catalog: catalog}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/diagnoses", h.handleList).Methods(http.MethodGet)
	router.HandleFunc("/diagnoses/{code}", h.handleGet).Methods(http.MethodGet)
}

func (h *HTTPHandler) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.All())
}

func (h *HTTPHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	diagnosis, ok := h.catalog.Lookup(mux.Vars(r)["code"])
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Diagnosis not found."})
		return
	}
	writeJSON(w, http.StatusOK, diagnosis)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Log.WithError(err).Error("failed to encode diagnoses")
	}
}
