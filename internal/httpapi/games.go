package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/roach88/cubefour/internal/arbiter"
	"github.com/roach88/cubefour/internal/game"
	"github.com/roach88/cubefour/internal/match"
	"github.com/roach88/cubefour/internal/registry"
	"github.com/roach88/cubefour/internal/roster"
)

type createGameResponse struct {
	GameID string        `json:"game_id"`
	State  game.Snapshot `json:"state"`
}

type moveRequest struct {
	X *int `json:"x"`
	Y *int `json:"y"`
}

type algoMoveRequest struct {
	Participant string   `json:"participant"`
	TimeLimit   *float64 `json:"time_limit,omitempty"`
}

type autoStepRequest struct {
	Player1   string   `json:"player1"`
	Player2   string   `json:"player2"`
	TimeLimit *float64 `json:"time_limit,omitempty"`
}

func (s *Server) createGame(w http.ResponseWriter, r *http.Request) {
	id, snap := s.games.Create()
	s.logger.Info("game created", "game_id", id)
	writeJSON(w, http.StatusCreated, createGameResponse{GameID: id, State: snap})
}

func (s *Server) listGames(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"games": s.games.IDs()})
}

func (s *Server) getGame(w http.ResponseWriter, r *http.Request) {
	snap, err := s.games.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) deleteGame(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.games.Delete(id); err != nil {
		s.writeGameError(w, err)
		return
	}
	s.logger.Info("game deleted", "game_id", id)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) move(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := decode(w, r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.X == nil || req.Y == nil {
		writeError(w, http.StatusBadRequest, "x and y are required")
		return
	}

	var out game.Outcome
	err := s.games.With(chi.URLParam(r, "id"), func(g *game.Game) error {
		out = g.Apply(*req.X, *req.Y)
		return nil
	})
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) algoMove(w http.ResponseWriter, r *http.Request) {
	var req algoMoveRequest
	if err := decode(w, r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	timeout, err := s.timeLimit(req.TimeLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	module, err := s.resolveModule(r.Context(), req.Participant)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var res arbiter.Result
	err = s.games.With(chi.URLParam(r, "id"), func(g *game.Game) error {
		var err error
		res, err = s.arbiter.Submit(r.Context(), g, module, timeout)
		return err
	})
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) autoStep(w http.ResponseWriter, r *http.Request) {
	var req autoStepRequest
	if err := decode(w, r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	timeout, err := s.timeLimit(req.TimeLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var players match.Players
	for i, ref := range []string{req.Player1, req.Player2} {
		if players[i], err = s.resolveModule(r.Context(), ref); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	stepper := *s.stepper
	stepper.Timeout = timeout

	var res arbiter.Result
	err = s.games.With(chi.URLParam(r, "id"), func(g *game.Game) error {
		var err error
		res, err = stepper.Step(r.Context(), g, players)
		return err
	})
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// timeLimit converts a time_limit in seconds. Omitted means the server
// default.
func (s *Server) timeLimit(seconds *float64) (time.Duration, error) {
	if seconds == nil {
		return s.timeout, nil
	}
	d := time.Duration(*seconds * float64(time.Second))
	if d <= 0 || d > MaxTimeLimit {
		return 0, fmt.Errorf("time_limit must be in (0, %d] seconds", int(MaxTimeLimit.Seconds()))
	}
	return d, nil
}

// resolveModule maps a participant reference to a module locator. With a
// roster, ids and names are looked up first; anything unknown is used as a
// locator as is.
func (s *Server) resolveModule(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" || s.roster == nil {
		return ref, nil
	}
	p, err := s.roster.Resolve(ctx, ref)
	if errors.Is(err, roster.ErrNotFound) {
		return ref, nil
	}
	if err != nil {
		return "", err
	}
	return p.Path, nil
}

func (s *Server) writeGameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, registry.ErrNotFound):
		writeError(w, http.StatusNotFound, "invalid game_id")
	case arbiter.IsTimeout(err):
		writeError(w, http.StatusRequestTimeout, err.Error())
	case arbiter.IsAbnormalExit(err), arbiter.IsInvalidMove(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
