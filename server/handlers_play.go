package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Ashenafi-pixel/gamecrafter-wheel/engine"
	"github.com/Ashenafi-pixel/gamecrafter-wheel/ledger"
)

type spinRequest struct {
	Rand    uint32 `json:"rand"`
	RoundID uint64 `json:"roundId"`
}

func (s *Server) spin(w http.ResponseWriter, r *http.Request) {
	caller := callerFrom(r)
	if !s.limiter.Allow(string(caller)) {
		writeError(w, http.StatusTooManyRequests, "spin rate exceeded", "rate_limited")
		return
	}
	var req spinRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := s.eng.Spin(r.Context(), caller, req.Rand, req.RoundID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) getPendingClaim(w http.ResponseWriter, r *http.Request) {
	roundID, ok := uintParam(w, r, "roundID")
	if !ok {
		return
	}
	pc, err := s.eng.PendingClaim(r.Context(), callerFrom(r), roundID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"claim": pc, "status": pc.Status().String()})
}

type claimRequest struct {
	Amount uint64         `json:"amount"`
	Native bool           `json:"native"`
	Asset  ledger.AssetID `json:"asset,omitempty"`
}

func (s *Server) claim(w http.ResponseWriter, r *http.Request) {
	roundID, ok := uintParam(w, r, "roundID")
	if !ok {
		return
	}
	var req claimRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := s.eng.Claim(r.Context(), callerFrom(r), engine.ClaimRequest{
		RoundID: roundID,
		Amount:  req.Amount,
		Native:  req.Native,
		Asset:   req.Asset,
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"paid":   res.Paid,
		"status": res.Status.String(),
		"claim":  res.Claim,
	})
}

func (s *Server) closePendingClaim(w http.ResponseWriter, r *http.Request) {
	roundID, ok := uintParam(w, r, "roundID")
	if !ok {
		return
	}
	if err := s.eng.ClosePendingClaim(r.Context(), callerFrom(r), roundID); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getProgress(w http.ResponseWriter, r *http.Request) {
	p, err := s.eng.Progress(r.Context(), ledger.Identity(chi.URLParam(r, "player")))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) getRecentPlays(w http.ResponseWriter, r *http.Request) {
	plays, err := s.eng.RecentPlays(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"plays": plays})
}
