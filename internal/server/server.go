package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/insolight/insolight/pkg/building"
	"github.com/insolight/insolight/pkg/calc"
	"github.com/insolight/insolight/pkg/validation"
)

// Server is the local API server for interactive use. The project is
// reloaded on every request so edits to the YAML take effect without a
// restart.
type Server struct {
	projectPath string
	port        int
}

// New creates a server for the given project directory.
func New(projectPath string, port int) *Server {
	return &Server{
		projectPath: projectPath,
		port:        port,
	}
}

// Start launches the HTTP server.
func (s *Server) Start() error {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	r.HandleFunc("/api/building", s.handleBuilding).Methods("GET")
	r.HandleFunc("/api/building/rooms/{roomId}", s.handleRoom).Methods("GET")
	r.HandleFunc("/api/validation", s.handleValidation).Methods("GET")
	r.HandleFunc("/api/insolation", s.handleInsolation).Methods("POST")
	r.HandleFunc("/api/keo", s.handleKEO).Methods("POST")

	logged := handlers.LoggingHandler(os.Stdout, r)

	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("Insolight server starting on http://localhost%s", addr)
	log.Printf("Project: %s", s.projectPath)

	return http.ListenAndServe(addr, logged)
}

// load reads the project and validates it. A validation failure is an
// InputError: the caller decides whether to reject or report it.
func (s *Server) load() (*building.Project, *validation.Report, error) {
	project, err := building.LoadProject(s.projectPath)
	if err != nil {
		return nil, nil, err
	}
	report := validation.ValidateBuilding(&project.Building)
	return project, report, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleBuilding(w http.ResponseWriter, _ *http.Request) {
	project, _, err := s.load()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, project.Building)
}

func (s *Server) handleRoom(w http.ResponseWriter, r *http.Request) {
	project, _, err := s.load()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	roomID := mux.Vars(r)["roomId"]
	room := project.Building.RoomByID(roomID)
	if room == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("room %q not found", roomID))
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (s *Server) handleValidation(w http.ResponseWriter, _ *http.Request) {
	project, report, err := s.load()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	report.Merge(calc.FromDefaults(project.Defaults).Validate())
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleInsolation(w http.ResponseWriter, r *http.Request) {
	project, report, err := s.load()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !report.Valid {
		writeJSON(w, http.StatusUnprocessableEntity, report)
		return
	}

	tz, err := project.Building.Location.TZ()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	date := time.Now().In(tz)
	if q := r.URL.Query().Get("date"); q != "" {
		date, err = time.ParseInLocation("2006-01-02", q, tz)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid 'date' (use YYYY-MM-DD)")
			return
		}
	}

	cfg := calc.FromDefaults(project.Defaults)
	res, err := calc.ComputeInsolation(r.Context(), project.Building, date, cfg)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleKEO(w http.ResponseWriter, r *http.Request) {
	project, report, err := s.load()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !report.Valid {
		writeJSON(w, http.StatusUnprocessableEntity, report)
		return
	}

	cfg := calc.FromDefaults(project.Defaults)
	res, err := calc.ComputeKEO(r.Context(), project.Building, cfg)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
