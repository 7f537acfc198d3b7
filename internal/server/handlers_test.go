package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gradescan/internal/config"
	"gradescan/internal/progress"
	"gradescan/pkg/models"
)

func newTestServer() *Server {
	return New(&config.Config{}, nil, progress.NewRegistry(), nil, nil)
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ok") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestHandleGenerateReport(t *testing.T) {
	srv := newTestServer()

	report := models.GradingReport{
		TotalScore:    8,
		TotalPossible: 10,
		Percentage:    80,
		Questions: []models.Question{
			{QuestionNumber: 1, PointsEarned: 8, PointsPossible: 10, Feedback: "well done"},
		},
	}
	body, _ := json.Marshal(report)

	req := httptest.NewRequest(http.MethodPost, "/generate-report", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("unexpected content type: %s", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Fatal("response is not a PDF document")
	}
}

func TestHandleGenerateReportRejectsEmpty(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/generate-report",
		strings.NewReader(`{"total_score": 0, "total_possible": 0, "percentage": 0, "questions": []}`))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleChatWithoutAssistant(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/chat",
		strings.NewReader(`{"email": "a@b.c", "question": "how did I do?"}`))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestHandleListEvaluationsWithoutStore(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/evaluations?email=a@b.c", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestHandleProcessPDFsMissingFiles(t *testing.T) {
	srv := newTestServer()

	var body bytes.Buffer
	req := httptest.NewRequest(http.MethodPost, "/process-pdfs", &body)
	req.Header.Set("Content-Type", "multipart/form-data; boundary=empty")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
