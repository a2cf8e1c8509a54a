package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"pensionadvisor/internal/identity"
	"pensionadvisor/internal/reqctx"
	"pensionadvisor/internal/vectorstore"
	"pensionadvisor/internal/workflow"
)

type server struct {
	deps *appDeps
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

type signupRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// handleSignup implements POST /signup: register a user. Signup is a
// peripheral write concern, never exercised by the core workflow engine,
// so it talks to the pool directly rather than through the read-only
// internal/store reader interfaces.
func (s *server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.FullName == "" || req.Email == "" || req.Password == "" || req.Role == "" {
		writeError(w, http.StatusBadRequest, "full_name, email, password, and role are required")
		return
	}

	hash, err := bcryptHash(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not hash password")
		return
	}

	var userID int
	err = s.deps.Identity.Pool.QueryRow(r.Context(),
		`INSERT INTO users (full_name, email, password_hash, role) VALUES ($1, $2, $3, $4) RETURNING id`,
		req.FullName, req.Email, hash, req.Role,
	).Scan(&userID)
	if err != nil {
		writeError(w, http.StatusConflict, fmt.Sprintf("could not register user: %v", err))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"user_id": userID, "role": req.Role, "full_name": req.FullName})
}

// handleLogin implements POST /login: verify credentials, issue a bearer
// token.
func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "malformed form body")
		return
	}
	email := r.FormValue("username")
	password := r.FormValue("password")

	var userID int
	var fullName, passwordHash, role string
	err := s.deps.Identity.Pool.QueryRow(r.Context(),
		`SELECT id, full_name, password_hash, role FROM users WHERE email = $1`, email,
	).Scan(&userID, &fullName, &passwordHash, &role)
	if err != nil {
		if err == pgx.ErrNoRows {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("lookup failed: %v", err))
		return
	}
	if !bcryptCheck(passwordHash, password) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token := s.deps.Auth.issue(userID, identity.Role(role))
	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": token,
		"user_id":      userID,
		"role":         role,
		"full_name":    fullName,
	})
}

type promptRequest struct {
	Query string `json:"query"`
}

// handlePrompt implements POST /prompt: invoke the workflow engine and
// return a PromptResponse (spec.md §6).
func (s *server) handlePrompt(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}
	var req promptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	userID, _ := reqctx.UserID(r.Context())
	ctx := reqctx.Set(r.Context(), userID, req.Query)

	state := workflow.NewState(userID, req.Query)
	resp := s.deps.Engine.Run(ctx, state)

	writeJSON(w, http.StatusOK, map[string]any{
		"summary":        resp.Summary,
		"chart_data":     resp.Charts,
		"plotly_figures": resp.PlotlyFigs,
		"chart_images":   resp.ChartImages,
		"data_source":    resp.DataSource,
		"search_type":    resp.SearchType,
		"pdf_status":     resp.PDFStatus,
	})
}

// handleUploadPDF implements POST /upload_pdf: ingestion itself is an
// external pipeline (spec.md §4.2, §6). This handler hands nothing to such a
// pipeline: it adds the uploaded file's raw bytes as one chunk to the
// caller's private collection straight away and returns that chunk's id as
// the correlation id, with status "queued".
func (s *server) handleUploadPDF(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}
	userID, _ := reqctx.UserID(r.Context())

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "multipart file field 'file' is required")
		return
	}
	defer file.Close()

	buf := make([]byte, header.Size)
	if _, err := file.Read(buf); err != nil && header.Size > 0 {
		writeError(w, http.StatusBadRequest, "could not read uploaded file")
		return
	}

	chunkID := uuid.New().String()
	collection := vectorstore.PrivateCollection(userID)
	s.deps.Vectors.Collection(collection)
	err = s.deps.Vectors.Add(r.Context(), collection,
		[]string{string(buf)},
		[]string{chunkID},
		[]vectorstore.Metadata{{"source_file": header.Filename}},
	)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("could not ingest document: %v", err))
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"status":         "queued",
		"correlation_id": chunkID,
		"filename":       header.Filename,
	})
}

func (s *server) handleResidentDashboard(w http.ResponseWriter, r *http.Request) {
	userID, _ := reqctx.UserID(r.Context())
	rec, err := s.deps.Records.Read(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no pension data found for user id: %d", userID))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"record": rec})
}

func (s *server) handleAdvisorDashboard(w http.ResponseWriter, r *http.Request) {
	userID, _ := reqctx.UserID(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"advisor_id": userID, "note": "client roster lookup is peripheral to the core workflow"})
}

func (s *server) handleRegulatorDashboard(w http.ResponseWriter, r *http.Request) {
	records, err := s.deps.Records.AllRecords(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("could not load system-wide records: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"record_count": len(records)})
}
