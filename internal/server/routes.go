package server

import (
	"net/http"
	"strings"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - Extraction jobs
	mux.HandleFunc("/api/extractions", s.handleExtractionsRoute) // GET (list), POST (schedule)
	mux.HandleFunc("/api/extractions/", s.handleExtractionRoutes) // GET /{id}, POST /{id}/retry

	// API routes - Auction sheets
	mux.HandleFunc("/api/sheets", s.handleSheetsRoute) // GET (list/search), POST (manual entry)
	mux.HandleFunc("/api/sheets/", s.handleSheetRoutes) // GET/PATCH /{id}, GET /{id}/images

	// API routes - Images
	mux.HandleFunc("/api/images", s.app.ImageHandler.ListHandler) // GET ?sheet_id=
	mux.HandleFunc("/api/images/", s.handleImageRoutes)           // GET /{id}, GET /{id}/content

	// API routes - Credentials (values never returned)
	mux.HandleFunc("/api/credentials", s.app.CredentialHandler.ListHandler)
	mux.HandleFunc("/api/credentials/", s.handleCredentialRoutes) // PUT/DELETE /{ref}

	// API routes - Scheduler
	mux.HandleFunc("/api/scheduler", s.app.SchedulerHandler.StatusHandler)
	mux.HandleFunc("/api/scheduler/", s.handleSchedulerRoutes) // POST /{name}/trigger|enable|disable

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}

// handleExtractionsRoute routes the extraction collection endpoint by method
func (s *Server) handleExtractionsRoute(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.app.ExtractionHandler.ListHandler(w, r)
	case http.MethodPost:
		s.app.ExtractionHandler.ScheduleHandler(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleExtractionRoutes routes /api/extractions/{id} and subpaths
func (s *Server) handleExtractionRoutes(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/extractions/")
	if path == "" {
		http.Error(w, "Job ID required", http.StatusBadRequest)
		return
	}

	// POST /api/extractions/{id}/retry
	if jobID, ok := strings.CutSuffix(path, "/retry"); ok {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.app.ExtractionHandler.RetryHandler(w, r, jobID)
		return
	}

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.app.ExtractionHandler.GetHandler(w, r, path)
}

// handleSheetsRoute routes the sheet collection endpoint by method
func (s *Server) handleSheetsRoute(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.app.SheetHandler.ListHandler(w, r)
	case http.MethodPost:
		s.app.SheetHandler.CreateHandler(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleSheetRoutes routes /api/sheets/{id} and subpaths
func (s *Server) handleSheetRoutes(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/sheets/")
	if path == "" {
		http.Error(w, "Sheet ID required", http.StatusBadRequest)
		return
	}

	// GET /api/sheets/{id}/images
	if sheetID, ok := strings.CutSuffix(path, "/images"); ok {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.app.SheetHandler.ImagesHandler(w, r, sheetID)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.app.SheetHandler.GetHandler(w, r, path)
	case http.MethodPatch:
		s.app.SheetHandler.UpdateHandler(w, r, path)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleImageRoutes routes /api/images/{id} and subpaths
func (s *Server) handleImageRoutes(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/images/")
	if path == "" {
		http.Error(w, "Image ID required", http.StatusBadRequest)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// GET /api/images/{id}/content
	if imageID, ok := strings.CutSuffix(path, "/content"); ok {
		s.app.ImageHandler.ContentHandler(w, r, imageID)
		return
	}
	s.app.ImageHandler.GetHandler(w, r, path)
}

// handleCredentialRoutes routes /api/credentials/{ref}
func (s *Server) handleCredentialRoutes(w http.ResponseWriter, r *http.Request) {
	ref := strings.TrimPrefix(r.URL.Path, "/api/credentials/")
	if ref == "" {
		http.Error(w, "Credential ref required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodPut:
		s.app.CredentialHandler.SetHandler(w, r, ref)
	case http.MethodDelete:
		s.app.CredentialHandler.DeleteHandler(w, r, ref)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleSchedulerRoutes routes /api/scheduler/{name}/trigger|enable|disable
func (s *Server) handleSchedulerRoutes(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/scheduler/")
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if name, ok := strings.CutSuffix(path, "/trigger"); ok {
		s.app.SchedulerHandler.TriggerHandler(w, r, name)
		return
	}
	if name, ok := strings.CutSuffix(path, "/enable"); ok {
		s.app.SchedulerHandler.EnableHandler(w, r, name)
		return
	}
	if name, ok := strings.CutSuffix(path, "/disable"); ok {
		s.app.SchedulerHandler.DisableHandler(w, r, name)
		return
	}
	http.Error(w, "Not found", http.StatusNotFound)
}
