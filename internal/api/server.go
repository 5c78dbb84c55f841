package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/streed/exo/internal/config"
	"github.com/streed/exo/internal/constants"
	"github.com/streed/exo/internal/dispatch"
	"github.com/streed/exo/internal/logger"
	"github.com/streed/exo/internal/services"
	"github.com/streed/exo/internal/store"
)

// RequestIDHeader carries the id assigned to each request.
const RequestIDHeader = "X-Request-ID"

type APIServer struct {
	cfg        *config.Config
	db         *sql.DB
	store      *store.NoteStore
	svc        *services.Services
	dispatcher *dispatch.Dispatcher
	version    string
	server     *http.Server
}

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type CommandRequest struct {
	Command string `json:"command"`
}

type NoteRequest struct {
	Note string `json:"note"`
}

type SearchRequest struct {
	Query string `json:"query"`
}

func NewAPIServer(cfg *config.Config, db *sql.DB, noteStore *store.NoteStore, svc *services.Services, version string) *APIServer {
	return &APIServer{
		cfg:        cfg,
		db:         db,
		store:      noteStore,
		svc:        svc,
		dispatcher: dispatch.New(svc),
		version:    version,
	}
}

// Handler builds the routed, CORS-wrapped handler.
func (s *APIServer) Handler() http.Handler {
	router := mux.NewRouter()
	router.Use(requestLogging)

	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/command", s.handleCommand).Methods("POST")

	// Notes endpoints
	api.HandleFunc("/notes", s.handleListNotes).Methods("GET")
	api.HandleFunc("/notes", s.handleCreateNote).Methods("POST")
	api.HandleFunc("/notes/search", s.handleSearchNotes).Methods("POST")
	api.HandleFunc("/notes/{id:[0-9]+}", s.handleGetNote).Methods("GET")
	api.HandleFunc("/notes/{id:[0-9]+}", s.handleUpdateNote).Methods("PUT")
	api.HandleFunc("/notes/{id:[0-9]+}", s.handleDeleteNote).Methods("DELETE")

	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Content-Length", RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           86400, // 24 hours
	})

	return c.Handler(router)
}

func (s *APIServer) Start(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Duration(constants.QueryTimeoutSeconds) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Starting HTTP API server on %s", addr)
	return s.server.ListenAndServe()
}

func (s *APIServer) Stop() error {
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeoutSeconds*time.Second)
		defer cancel()
		return s.server.Shutdown(ctx)
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// requestLogging tags every request with an id, reusing one supplied by the
// client, and logs the request and its outcome.
func requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)

		start := time.Now()
		logger.LogRequest(requestID, r.Method, r.URL.Path, r.RemoteAddr)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.LogResponse(requestID, r.Method, r.URL.Path, rec.status, time.Since(start).String())
	})
}

func (s *APIServer) writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := APIResponse{
		Success: statusCode < 400,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error("Failed to encode JSON response: %v", err)
	}
}

func (s *APIServer) writeError(w http.ResponseWriter, statusCode int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := APIResponse{
		Success: false,
		Error:   err.Error(),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error("Failed to encode JSON response: %v", err)
	}
}

// statusFor maps a Result kind onto an HTTP status.
func statusFor(kind services.Kind) int {
	switch kind {
	case services.KindOK, "":
		return http.StatusOK
	case services.KindValidation, services.KindUnknownCommand:
		return http.StatusBadRequest
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindEmbeddingUnavailable, services.KindQueryUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *APIServer) writeResult(w http.ResponseWriter, okStatus int, result services.Result) {
	if !result.Failed() {
		s.writeJSON(w, okStatus, result)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusFor(result.Kind))
	response := APIResponse{
		Success: false,
		Data:    result,
		Error:   result.Content,
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error("Failed to encode JSON response: %v", err)
	}
}

func (s *APIServer) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid JSON: %w", err))
		return false
	}
	return true
}

// Handlers

func (s *APIServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   s.version,
	}

	if err := s.db.PingContext(r.Context()); err != nil {
		health["status"] = "unhealthy"
		health["database_error"] = err.Error()
		s.writeJSON(w, http.StatusServiceUnavailable, health)
		return
	}

	if count, err := s.store.Count(r.Context()); err == nil {
		health["notes"] = count
	}

	s.writeJSON(w, http.StatusOK, health)
}

func (s *APIServer) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req CommandRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.writeResult(w, http.StatusOK, s.dispatcher.Handle(r.Context(), req.Command))
}

func (s *APIServer) handleListNotes(w http.ResponseWriter, r *http.Request) {
	s.writeResult(w, http.StatusOK, s.svc.Notes.FilterNotes(r.Context(), r.URL.Query().Get("filter")))
}

func (s *APIServer) handleGetNote(w http.ResponseWriter, r *http.Request) {
	s.writeResult(w, http.StatusOK, s.svc.Notes.ReadNote(r.Context(), mux.Vars(r)["id"]))
}

func (s *APIServer) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	var req NoteRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.writeResult(w, http.StatusCreated, s.svc.Notes.CreateNote(r.Context(), req.Note))
}

func (s *APIServer) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	var req NoteRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.writeResult(w, http.StatusOK, s.svc.Notes.UpdateNote(r.Context(), mux.Vars(r)["id"], req.Note))
}

func (s *APIServer) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	s.writeResult(w, http.StatusOK, s.svc.Notes.DeleteNote(r.Context(), mux.Vars(r)["id"]))
}

func (s *APIServer) handleSearchNotes(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.writeResult(w, http.StatusOK, s.svc.Notes.SearchNotes(r.Context(), req.Query))
}
