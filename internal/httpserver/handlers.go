package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/frpguard/frps-guardian/internal/logic/guardian"
)

type statusResponse struct {
	guardian.StatusSnapshot

	Uptime    string  `json:"uptime"`
	UptimeSec float64 `json:"uptimeSeconds"`
}

type restartResponse struct {
	Outcome string `json:"outcome"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := s.guardian.Ping(r.Context()); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)

		return
	}

	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleReadyz(w http.ResponseWriter, _ *http.Request) {
	select {
	case <-s.guardian.Ready():
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusServiceUnavailable)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	snapshot := s.guardian.Status()

	response := statusResponse{
		StatusSnapshot: snapshot,
		Uptime:         snapshot.Uptime.Round(time.Second).String(),
		UptimeSec:      snapshot.Uptime.Seconds(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.logger.ErrorContext(ctx, "failed to encode status response",
			"error", err,
		)
	}
}

// handleRestart is the control entry point for the external dashboard. The
// restart goes through the same cooldown and rolling-cap gate as automatic
// restarts.
func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	outcome := s.guardian.ManualRestartCommand(ctx)

	response := restartResponse{
		Outcome: outcome.String(),
	}

	status := http.StatusOK

	switch outcome.Kind {
	case guardian.OutcomeSkipped:
		status = http.StatusConflict
	case guardian.OutcomeFailed:
		status = http.StatusBadGateway

		if outcome.Err != nil {
			response.Error = outcome.Err.Error()
		}
	case guardian.OutcomeNone, guardian.OutcomeExecuted:
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.logger.ErrorContext(ctx, "failed to encode restart response",
			"error", err,
		)
	}
}
