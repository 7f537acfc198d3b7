package server

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"gradescan/internal/logger"
	"gradescan/internal/pipeline"
	"gradescan/internal/report"
	"gradescan/pkg/models"
)

// maxUploadBytes bounds the multipart form held in memory before spilling to
// disk.
const maxUploadBytes = 64 << 20

type errorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

// handleProcessPDFs accepts the student and answer key PDFs, runs the full
// evaluation, and returns the grading report. Progress events stream to the
// WebSocket session named by client_id, when one is connected.
func (s *Server) handleProcessPDFs(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	studentFile, studentHeader, err := r.FormFile("student_pdf")
	if err != nil {
		writeError(w, http.StatusBadRequest, "student_pdf is required")
		return
	}
	defer studentFile.Close()

	keyFile, keyHeader, err := r.FormFile("answer_key_pdf")
	if err != nil {
		writeError(w, http.StatusBadRequest, "answer_key_pdf is required")
		return
	}
	defer keyFile.Close()

	clientID := r.FormValue("client_id")
	email := r.FormValue("student_email")
	subject := r.FormValue("subject")
	paperID := r.FormValue("paper_id")

	tempDir, err := os.MkdirTemp("", "gradescan-*")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create working directory")
		return
	}
	defer func() {
		if err := os.RemoveAll(tempDir); err != nil {
			s.log.Warn().Err(err).Str("dir", tempDir).Msg("Could not remove temporary directory")
		}
	}()

	studentPath, err := saveUpload(studentFile, tempDir, studentHeader.Filename, "student.pdf")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save student PDF: "+err.Error())
		return
	}
	keyPath, err := saveUpload(keyFile, tempDir, keyHeader.Filename, "answer_key.pdf")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save answer key PDF: "+err.Error())
		return
	}

	imagesDir := filepath.Join(tempDir, "images")

	reqLog := logger.WithRequestID(middleware.GetReqID(r.Context()))

	rep := s.registry.Reporter(clientID)
	rep.Start("Processing started")

	result, err := s.pipeline.Evaluate(r.Context(), studentPath, keyPath, imagesDir, rep)
	if err != nil {
		rep.Error(err.Error())
		reqLog.Error().Err(err).Str("client_id", clientID).Msg("Evaluation failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	reqLog.Info().
		Int("pages", result.Pages).
		Float64("total_score", result.Report.TotalScore).
		Str("client_id", clientID).
		Msg("Evaluation request served")

	if s.store != nil && email != "" {
		s.persistEvaluation(r, result, email, subject, paperID)
	}

	rep.Complete("Processing complete")
	writeJSON(w, http.StatusOK, result.Report)
}

// persistEvaluation stores and indexes a finished run. Failures are logged
// and do not fail the request; the report was already produced.
func (s *Server) persistEvaluation(r *http.Request, result *pipeline.Result, email, subject, paperID string) {
	reportJSON, err := json.Marshal(result.Report)
	if err != nil {
		s.log.Error().Err(err).Msg("Could not marshal report for persistence")
		return
	}

	ev := &models.Evaluation{
		ID:         uuid.NewString(),
		Subject:    subject,
		Email:      email,
		PaperID:    paperID,
		Transcript: result.Transcript,
		AnswerKey:  result.AnswerKey,
		Report:     string(reportJSON),
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.store.InsertEvaluation(r.Context(), ev); err != nil {
		s.log.Error().Err(err).Str("email", email).Msg("Could not persist evaluation")
		return
	}

	if s.assistant != nil {
		if err := s.assistant.IndexEvaluation(r.Context(), ev); err != nil {
			s.log.Error().Err(err).Str("email", email).Msg("Could not index evaluation for chat")
		}
	}
}

// handleGenerateReport renders a grading report JSON body into a PDF
// attachment.
func (s *Server) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	var gr models.GradingReport
	if err := json.NewDecoder(r.Body).Decode(&gr); err != nil {
		writeError(w, http.StatusBadRequest, "invalid grading report: "+err.Error())
		return
	}
	if len(gr.Questions) == 0 {
		writeError(w, http.StatusBadRequest, "grading report contains no questions")
		return
	}

	pdfBytes, err := report.Render(&gr)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="exam_report.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdfBytes)
}

type chatRequest struct {
	Email    string `json:"email"`
	Question string `json:"question"`
}

type chatResponse struct {
	Answer string `json:"answer"`
}

// handleChat answers a question over the student's stored evaluations.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.assistant == nil {
		writeError(w, http.StatusServiceUnavailable, "chat assistant is not configured")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Email == "" || req.Question == "" {
		writeError(w, http.StatusBadRequest, "email and question are required")
		return
	}

	answer, err := s.assistant.Ask(r.Context(), req.Email, req.Question)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Answer: answer})
}

// handleListEvaluations returns a student's stored evaluations, newest first.
func (s *Server) handleListEvaluations(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "evaluation store is not configured")
		return
	}

	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "email query parameter is required")
		return
	}

	evals, err := s.store.ListEvaluationsByEmail(r.Context(), email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if evals == nil {
		evals = []*models.Evaluation{}
	}
	writeJSON(w, http.StatusOK, evals)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// saveUpload writes an uploaded file into dir, keeping the client's base
// filename when it is usable.
func saveUpload(src multipart.File, dir, clientName, fallback string) (string, error) {
	name := filepath.Base(clientName)
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = fallback
	}
	dst := filepath.Join(dir, name)

	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dst, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, src); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", dst, err)
	}
	return dst, nil
}
