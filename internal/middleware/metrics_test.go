package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

type mockStatusRecorder struct {
	statuses []int
}

func (m *mockStatusRecorder) RecordHTTPStatus(statusCode int) {
	m.statuses = append(m.statuses, statusCode)
}

func TestMetricsMiddleware_RecordsStatusCode(t *testing.T) {
	recorder := &mockStatusRecorder{}
	mw := NewMetricsMiddleware(recorder)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/pose/create", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if len(recorder.statuses) != 1 {
		t.Fatalf("記録されたステータス数 = %d, want 1", len(recorder.statuses))
	}
	if recorder.statuses[0] != http.StatusCreated {
		t.Errorf("記録されたステータス = %d, want %d", recorder.statuses[0], http.StatusCreated)
	}
}

func TestMetricsMiddleware_DefaultsTo200WhenNoWriteHeader(t *testing.T) {
	recorder := &mockStatusRecorder{}
	mw := NewMetricsMiddleware(recorder)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// WriteHeaderを呼ばずにボディだけ書く
		_, _ = w.Write([]byte("ok"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if len(recorder.statuses) != 1 || recorder.statuses[0] != http.StatusOK {
		t.Errorf("記録されたステータス = %v, want [200]", recorder.statuses)
	}
}

func TestMetricsMiddleware_RecordsErrorStatus(t *testing.T) {
	recorder := &mockStatusRecorder{}
	mw := NewMetricsMiddleware(recorder)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	req := httptest.NewRequest(http.MethodGet, "/pose/warning", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if len(recorder.statuses) != 1 || recorder.statuses[0] != http.StatusInternalServerError {
		t.Errorf("記録されたステータス = %v, want [500]", recorder.statuses)
	}
}
