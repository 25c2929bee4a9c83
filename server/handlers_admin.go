package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Ashenafi-pixel/gamecrafter-wheel/gamemath"
	"github.com/Ashenafi-pixel/gamecrafter-wheel/ledger"
	"github.com/Ashenafi-pixel/gamecrafter-wheel/treasury"
)

type initializeRequest struct {
	SuperAdmin ledger.Identity `json:"superAdmin"`
}

func (s *Server) initialize(w http.ResponseWriter, r *http.Request) {
	var req initializeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.eng.Initialize(r.Context(), callerFrom(r), req.SuperAdmin); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.eng.Vaults())
}

func (s *Server) getVaults(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.eng.Vaults())
}

func (s *Server) getTreasury(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.eng.Treasury(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) setPayInfo(w http.ResponseWriter, r *http.Request) {
	var req treasury.PayInfo
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.eng.SetPayInfo(r.Context(), callerFrom(r), req); err != nil {
		writeEngineError(w, err)
		return
	}
	s.getTreasury(w, r)
}

func (s *Server) getAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := s.eng.Admins(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"admins": admins})
}

type adminRequest struct {
	Admin ledger.Identity `json:"admin"`
}

func (s *Server) addAdmin(w http.ResponseWriter, r *http.Request) {
	var req adminRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.eng.AddAdmin(r.Context(), callerFrom(r), req.Admin); err != nil {
		writeEngineError(w, err)
		return
	}
	s.getAdmins(w, r)
}

func (s *Server) deleteAdmin(w http.ResponseWriter, r *http.Request) {
	admin := ledger.Identity(chi.URLParam(r, "admin"))
	if err := s.eng.DeleteAdmin(r.Context(), callerFrom(r), admin); err != nil {
		writeEngineError(w, err)
		return
	}
	s.getAdmins(w, r)
}

func (s *Server) getCatalog(w http.ResponseWriter, r *http.Request) {
	cat, err := s.eng.Catalog(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

// tierRequest is the wire form of a tier. Live defaults to every listed asset.
type tierRequest struct {
	Weight uint32           `json:"weight"`
	Kind   string           `json:"kind"`
	Amount uint64           `json:"amount"`
	Assets []ledger.AssetID `json:"assets"`
	Live   *int             `json:"live,omitempty"`
	// Count is the active tier count after a setTier and is required there;
	// ignored by addTier.
	Count *int `json:"count,omitempty"`
}

func (t tierRequest) tier() (gamemath.Tier, error) {
	kind, err := gamemath.ParseTokenKind(t.Kind)
	if err != nil {
		return gamemath.Tier{}, err
	}
	live := -1
	if t.Live != nil {
		live = *t.Live
		if live < 0 {
			return gamemath.Tier{}, gamemath.ErrTooManyAssets
		}
	}
	return gamemath.NewTier(t.Weight, kind, t.Amount, t.Assets, live)
}

func (s *Server) addTier(w http.ResponseWriter, r *http.Request) {
	var req tierRequest
	if !decodeBody(w, r, &req) {
		return
	}
	tier, err := req.tier()
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if err := s.eng.AddTier(r.Context(), callerFrom(r), tier); err != nil {
		writeEngineError(w, err)
		return
	}
	s.getCatalog(w, r)
}

func (s *Server) setTier(w http.ResponseWriter, r *http.Request) {
	index, ok := uintParam(w, r, "index")
	if !ok {
		return
	}
	var req tierRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Count == nil {
		writeError(w, http.StatusBadRequest, "count is required", "invalid_parameter")
		return
	}
	tier, err := req.tier()
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if index >= gamemath.MaxTiers {
		writeEngineError(w, gamemath.ErrIndexOutOfRange)
		return
	}
	if err := s.eng.SetTier(r.Context(), callerFrom(r), int(index), tier, *req.Count); err != nil {
		writeEngineError(w, err)
		return
	}
	s.getCatalog(w, r)
}

type withdrawRequest struct {
	Asset  ledger.AssetID  `json:"asset,omitempty"`
	Dest   ledger.Identity `json:"dest"`
	Amount uint64          `json:"amount"`
}

func (s *Server) withdrawTokens(w http.ResponseWriter, r *http.Request) {
	var req withdrawRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.eng.WithdrawEscrowedTokens(r.Context(), callerFrom(r), req.Asset, req.Dest, req.Amount); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) withdrawNative(w http.ResponseWriter, r *http.Request) {
	var req withdrawRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Asset != "" && req.Asset != ledger.Native {
		writeError(w, http.StatusBadRequest, "native withdrawals take no asset", "invalid_parameter")
		return
	}
	if err := s.eng.WithdrawEscrowedNative(r.Context(), callerFrom(r), req.Dest, req.Amount); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
