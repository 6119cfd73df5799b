package patients

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/patientor/platform/pkg/redact"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const patientBody = `{"name":"Martin Riggs","dateOfBirth":"1979-01-30","ssn":"300179-77A","gender":"male","occupation":"Cop"}`

func newTestAPI(t *testing.T) (*mux.Router, *bytes.Buffer) {
	t.Helper()
	logs := quietLogs(t)

	redactor, err := redact.NewRedactor(redact.DefaultRules())
	require.NoError(t, err)

	router := mux.NewRouter()
	handler := NewHTTPHandler(NewService(NewStore(), nil), 1<<16, redactor)
	handler.Register(router.PathPrefix("/api").Subrouter())
	return router, logs
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func createPatient(t *testing.T, router http.Handler) map[string]interface{} {
	t.Helper()
	rec := do(router, http.MethodPost, "/api/patients", patientBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	return created
}

func TestHTTPCreatePatient(t *testing.T) {
	router, _ := newTestAPI(t)

	created := createPatient(t, router)
	assert.NotEmpty(t, created["id"])
	assert.Equal(t, "300179-77A", created["ssn"])
	assert.Equal(t, []interface{}{}, created["entries"])
}

func TestHTTPCreatePatientFailure(t *testing.T) {
	router, logs := newTestAPI(t)

	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"bad ssn", `{"name":"Hans Gruber","dateOfBirth":"1970-04-25","ssn":"010101-1234","gender":"other","occupation":"Technician"}`, "Incorrect or missing ssn: 010101-1234"},
		{"missing fields", `{"name":"Hans Gruber"}`, "Incorrect data: some fields are missing: dateOfBirth, ssn, gender, occupation"},
		{"empty body", ``, "Incorrect data: some fields are missing: name, dateOfBirth, ssn, gender, occupation"},
		{"null body", `null`, "Incorrect or missing data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(router, http.MethodPost, "/api/patients", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "Something went wrong. Error: "+tt.message, rec.Body.String())
			assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain"))
		})
	}

	t.Run("malformed json", func(t *testing.T) {
		rec := do(router, http.MethodPost, "/api/patients", `{"name":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.True(t, strings.HasPrefix(rec.Body.String(), "Something went wrong. Error: "))
	})

	t.Run("trailing data", func(t *testing.T) {
		body := `{"name":"Hans Gruber","dateOfBirth":"1970-04-25","ssn":"250470-555L","gender":"other","occupation":"Technician"} {"junk"`
		rec := do(router, http.MethodPost, "/api/patients", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Something went wrong. Error: unexpected data after JSON body", rec.Body.String())

		rec = do(router, http.MethodGet, "/api/patients", "")
		assert.NotContains(t, rec.Body.String(), "Hans Gruber")
	})

	assert.NotContains(t, logs.String(), "010101-1234")
	assert.Contains(t, logs.String(), `"redacted":["ssn"]`)
}

func TestHTTPListPatientsHidesSSN(t *testing.T) {
	router, _ := newTestAPI(t)
	createPatient(t, router)
	createPatient(t, router)

	rec := do(router, http.MethodGet, "/api/patients", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
	for _, p := range list {
		assert.NotContains(t, p, "ssn")
		assert.Contains(t, p, "entries")
		assert.Equal(t, "Martin Riggs", p["name"])
	}
}

func TestHTTPGetPatient(t *testing.T) {
	router, _ := newTestAPI(t)
	created := createPatient(t, router)
	id := created["id"].(string)

	first := do(router, http.MethodGet, "/api/patients/"+id, "")
	require.Equal(t, http.StatusOK, first.Code)
	assert.JSONEq(t, patientJSON(t, created), first.Body.String())

	second := do(router, http.MethodGet, "/api/patients/"+id, "")
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestHTTPGetPatientNotFound(t *testing.T) {
	router, _ := newTestAPI(t)

	rec := do(router, http.MethodGet, "/api/patients/does-not-exist", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"Patient not found."}`, rec.Body.String())
}

func TestHTTPAddEntry(t *testing.T) {
	router, _ := newTestAPI(t)
	created := createPatient(t, router)
	id := created["id"].(string)

	t.Run("hospital", func(t *testing.T) {
		body := `{"type":"Hospital","description":"Healing time appr. 2 weeks.","date":"2015-01-02","specialist":"MD House","diagnosisCodes":["S62.5"],"discharge":{"date":"2015-01-16","criteria":"Thumb has healed."}}`
		rec := do(router, http.MethodPost, "/api/patients/"+id+"/entries", body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var updated map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
		entries := updated["entries"].([]interface{})
		require.Len(t, entries, 1)

		entry := entries[0].(map[string]interface{})
		assert.NotEmpty(t, entry["id"])
		assert.Equal(t, "Hospital", entry["type"])
		assert.Equal(t, []interface{}{"S62.5"}, entry["diagnosisCodes"])
		assert.Equal(t, map[string]interface{}{"date": "2015-01-16", "criteria": "Thumb has healed."}, entry["discharge"])
		assert.NotContains(t, entry, "healthCheckRating")
		assert.NotContains(t, entry, "employerName")
	})

	t.Run("health check keeps zero rating", func(t *testing.T) {
		body := `{"type":"HealthCheck","description":"Yearly control visit.","date":"2019-10-20","specialist":"MD House","healthCheckRating":0}`
		rec := do(router, http.MethodPost, "/api/patients/"+id+"/entries", body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var updated map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
		entries := updated["entries"].([]interface{})
		require.Len(t, entries, 2)

		entry := entries[1].(map[string]interface{})
		assert.Equal(t, 0.0, entry["healthCheckRating"])
		assert.NotContains(t, entry, "diagnosisCodes")
		assert.NotContains(t, entry, "discharge")
	})

	t.Run("rating out of range", func(t *testing.T) {
		body := `{"type":"HealthCheck","description":"Yearly control visit.","date":"2019-10-20","specialist":"MD House","healthCheckRating":5}`
		rec := do(router, http.MethodPost, "/api/patients/"+id+"/entries", body)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Something went wrong. Error: Incorrect or missing healthCheckRating: 5", rec.Body.String())
	})

	t.Run("unknown type", func(t *testing.T) {
		body := `{"type":"Dental","description":"Cleaning","date":"2019-10-20","specialist":"DDS Smith"}`
		rec := do(router, http.MethodPost, "/api/patients/"+id+"/entries", body)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Dental")
	})
}

func TestHTTPAddEntryUnknownPatient(t *testing.T) {
	router, _ := newTestAPI(t)

	body := `{"type":"OccupationalHealthcare","description":"Cough","date":"2019-08-05","specialist":"MD House","employerName":"HyPD","sickLeave":{"startDate":"2019-08-05","endDate":"2019-08-28"}}`
	rec := do(router, http.MethodPost, "/api/patients/nobody/entries", body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Something went wrong. Error: Patient does not exist", rec.Body.String())
}

func patientJSON(t *testing.T, v map[string]interface{}) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}
