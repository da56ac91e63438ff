package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tran-matt/room-doc-tracker/internal/api/openapi"
)

func TestNormalizePath(t *testing.T) {
	id := "5f0c6c3e-8a43-4d7e-9f55-1d2a3b4c5d6e"
	tests := []struct {
		input    string
		expected string
	}{
		{"/health/live", "/health/live"},
		{"/metrics", "/metrics"},
		{"/api/v1/rooms", "/api/v1/rooms"},
		{"/api/v1/rooms/" + id, "/api/v1/rooms/{id}"},
		{"/api/v1/rooms/" + id + "/documents", "/api/v1/rooms/{id}/documents"},
		{"/api/v1/documents/" + id, "/api/v1/documents/{id}"},
		{"/ui/rooms/" + id, "/ui/rooms/{id}"},
		{"/ui/documents/" + id + "/thumbnail", "/ui/documents/{id}/thumbnail"},
		{"/static/css/app.css", "/static/*"},
		{"/api/v1/rooms/not-a-uuid", "/api/v1/rooms/not-a-uuid"},
	}

	for _, tt := range tests {
		if got := normalizePath(tt.input); got != tt.expected {
			t.Errorf("normalizePath(%q) = %q, ожидалось %q", tt.input, got, tt.expected)
		}
	}
}

func TestRequestLogger_Levels(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "INFO"},
		{http.StatusNotFound, "WARN"},
		{http.StatusBadGateway, "ERROR"},
	}

	for _, tt := range tests {
		buf := bytes.NewBuffer(nil)
		logger := slog.New(slog.NewJSONHandler(buf, nil))

		h := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			_, _ = w.Write([]byte("ok"))
		}))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/rooms", nil))

		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("лог не JSON: %v", err)
		}
		if entry["level"] != tt.level {
			t.Errorf("status %d: level = %v, ожидали %s", tt.status, entry["level"], tt.level)
		}
		if entry["bytes"] != float64(2) {
			t.Errorf("bytes = %v, ожидали 2", entry["bytes"])
		}
	}
}

func newTestValidator(t *testing.T) func(http.Handler) http.Handler {
	t.Helper()
	doc, err := openapi.Spec()
	if err != nil {
		t.Fatalf("openapi.Spec() ошибка: %v", err)
	}
	v, err := NewOpenAPIValidator(doc, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewOpenAPIValidator() ошибка: %v", err)
	}
	return v.Middleware()
}

func TestOpenAPIValidator(t *testing.T) {
	mw := newTestValidator(t)
	id := "5f0c6c3e-8a43-4d7e-9f55-1d2a3b4c5d6e"

	tests := []struct {
		name        string
		method      string
		path        string
		contentType string
		body        string
		wantStatus  int
	}{
		{"корректное создание комнаты", http.MethodPost, "/api/v1/rooms", "application/json", `{"name":"Lab","location":"B1"}`, http.StatusOK},
		{"без имени", http.MethodPost, "/api/v1/rooms", "application/json", `{"location":"B1"}`, http.StatusBadRequest},
		{"лишнее поле", http.MethodPost, "/api/v1/rooms", "application/json", `{"name":"Lab","color":"red"}`, http.StatusBadRequest},
		{"патч с пустым заголовком", http.MethodPatch, "/api/v1/documents/" + id, "application/json", `{"title":""}`, http.StatusBadRequest},
		{"патч с некорректной датой", http.MethodPatch, "/api/v1/documents/" + id, "application/json", `{"expiration_date":"31.12.2026"}`, http.StatusBadRequest},
		{"пустой патч", http.MethodPatch, "/api/v1/documents/" + id, "application/json", `{}`, http.StatusBadRequest},
		{"корректный патч", http.MethodPatch, "/api/v1/documents/" + id, "application/json", `{"expiration_date":"2026-12-31"}`, http.StatusOK},
		{"поиск без q", http.MethodGet, "/api/v1/documents", "", "", http.StatusBadRequest},
		{"поиск с q", http.MethodGet, "/api/v1/documents?q=fire", "", "", http.StatusOK},
		{"multipart без проверки тела", http.MethodPost, "/api/v1/rooms/" + id + "/documents", "multipart/form-data; boundary=x", "--x--", http.StatusOK},
		{"путь вне контракта", http.MethodGet, "/api/v1/openapi.json", "", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotBody string
			h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				b, _ := io.ReadAll(r.Body)
				gotBody = string(b)
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, ожидали %d; тело: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if rec.Code == http.StatusOK && gotBody != tt.body {
				t.Errorf("тело запроса не восстановлено после валидации: %q", gotBody)
			}
		})
	}
}
