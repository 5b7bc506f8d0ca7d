package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/tutu-network/focus/internal/app/export"
	"github.com/tutu-network/focus/internal/app/productivity"
	"github.com/tutu-network/focus/internal/domain"
)

// --- /api/state ---

type goalProgressResponse struct {
	Daily  domain.GoalProgress `json:"daily"`
	Weekly domain.GoalProgress `json:"weekly"`
}

type stateResponse struct {
	Timer        productivity.TimerView `json:"timer"`
	Stats        domain.Stats           `json:"stats"`
	Goals        domain.Goals           `json:"goals"`
	Progress     goalProgressResponse   `json:"progress"`
	Settings     domain.Settings        `json:"settings"`
	Achievements int                    `json:"achievementsUnlocked"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	daily, weekly := s.ctl.GoalProgress()
	unlocked := 0
	for _, a := range s.ctl.Achievements() {
		if a.Unlocked {
			unlocked++
		}
	}
	writeJSON(w, http.StatusOK, stateResponse{
		Timer:        s.ctl.Timer(),
		Stats:        s.ctl.Stats(),
		Goals:        s.ctl.Goals(),
		Progress:     goalProgressResponse{Daily: daily, Weekly: weekly},
		Settings:     s.ctl.Settings(),
		Achievements: unlocked,
	})
}

// --- /api/stats ---

// handleStats returns the running aggregate, or a period summary when
// ?period=today|week|all is given.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	p := r.URL.Query().Get("period")
	if p == "" {
		writeJSON(w, http.StatusOK, s.ctl.Stats())
		return
	}
	period, err := domain.ParsePeriod(p)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ctl.PeriodStats(period))
}

func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	days := 7
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 366 {
			writeError(w, http.StatusBadRequest, "days must be between 1 and 366")
			return
		}
		days = n
	}
	writeJSON(w, http.StatusOK, s.ctl.DailyBreakdown(days))
}

// --- /api/sessions ---

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ctl.Sessions())
}

type logSessionRequest struct {
	Duration int64       `json:"duration"` // seconds
	Coins    *int64      `json:"coins,omitempty"`
	Mode     domain.Mode `json:"mode,omitempty"`
	Notes    string      `json:"notes,omitempty"`
}

func (s *Server) handleLogSession(w http.ResponseWriter, r *http.Request) {
	var req logSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Coins != nil && *req.Coins < 0 {
		writeError(w, http.StatusBadRequest, "coins must be non-negative")
		return
	}
	res, err := s.ctl.LogSession(productivity.Entry{
		Duration: time.Duration(req.Duration) * time.Second,
		Mode:     req.Mode,
		Notes:    req.Notes,
		Coins:    req.Coins,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", export.FileName(time.Now())))
	w.WriteHeader(http.StatusOK)
	export.WriteCSV(w, s.ctl.Sessions(), time.Local)
}

// --- /api/achievements ---

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ctl.Achievements())
}

// --- /api/goals ---

func (s *Server) handleGoals(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ctl.Goals())
}

func (s *Server) handlePutGoals(w http.ResponseWriter, r *http.Request) {
	g := s.ctl.Goals()
	if err := json.NewDecoder(r.Body).Decode(&g); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.ctl.UpdateGoals(g); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleGoalProgress(w http.ResponseWriter, r *http.Request) {
	daily, weekly := s.ctl.GoalProgress()
	writeJSON(w, http.StatusOK, goalProgressResponse{Daily: daily, Weekly: weekly})
}

// --- /api/settings ---

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ctl.Settings())
}

// handlePutSettings merges the body over the current settings, so clients
// may send only the fields they change.
func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	next := s.ctl.Settings()
	if err := json.NewDecoder(r.Body).Decode(&next); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.ctl.UpdateSettings(next); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, next)
}

// --- /api/timer ---

func (s *Server) handleTimer(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ctl.Timer())
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	// The loop must outlive this request, so it is not bound to r.Context().
	if err := s.runner.Start(s.baseContext()); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ctl.Timer())
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	if err := s.runner.Pause(); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ctl.Timer())
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	res, err := s.runner.Stop()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type modeRequest struct {
	Mode string `json:"mode"`
}

func (s *Server) handleMode(w http.ResponseWriter, r *http.Request) {
	var req modeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	mode, err := domain.ParseMode(req.Mode)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := s.ctl.SwitchMode(mode); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ctl.Timer())
}

type notesRequest struct {
	Notes string `json:"notes"`
}

func (s *Server) handleNotes(w http.ResponseWriter, r *http.Request) {
	var req notesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.ctl.SetNotes(req.Notes)
	writeJSON(w, http.StatusOK, s.ctl.Timer())
}
