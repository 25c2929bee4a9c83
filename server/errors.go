package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Ashenafi-pixel/gamecrafter-wheel/engine"
	"github.com/Ashenafi-pixel/gamecrafter-wheel/gamemath"
	"github.com/Ashenafi-pixel/gamecrafter-wheel/ledger"
	"github.com/Ashenafi-pixel/gamecrafter-wheel/round"
	"github.com/Ashenafi-pixel/gamecrafter-wheel/treasury"
)

// APIError is the standard error response for wheel APIs.
type APIError struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

func writeError(w http.ResponseWriter, code int, errMsg, codeStr string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(APIError{
		Error:   errMsg,
		Code:    codeStr,
		Message: errMsg,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorMapping struct {
	target error
	status int
	code   string
}

// errorTable is checked in order; the first match wins.
var errorTable = []errorMapping{
	{treasury.ErrUnauthorized, http.StatusForbidden, "unauthorized"},
	{ledger.ErrUnauthorizedTransfer, http.StatusForbidden, "unauthorized_transfer"},
	{engine.ErrNotInitialized, http.StatusConflict, "not_initialized"},
	{engine.ErrAlreadyInitialized, http.StatusConflict, "already_initialized"},
	{engine.ErrClaimExists, http.StatusConflict, "claim_exists"},
	{engine.ErrClaimNotFound, http.StatusNotFound, "claim_not_found"},
	{treasury.ErrNotFound, http.StatusNotFound, "not_found"},
	{treasury.ErrDuplicateAdmin, http.StatusConflict, "duplicate_admin"},
	{treasury.ErrRegistryFull, http.StatusConflict, "registry_full"},
	{gamemath.ErrCatalogFull, http.StatusConflict, "catalog_full"},
	{round.ErrClaimLinesFull, http.StatusConflict, "claim_lines_full"},
	{round.ErrClaimUnsettled, http.StatusConflict, "claim_unsettled"},
	{treasury.ErrInvalidFee, http.StatusBadRequest, "invalid_fee"},
	{gamemath.ErrIndexOutOfRange, http.StatusBadRequest, "index_out_of_range"},
	{gamemath.ErrInvalidTokenKind, http.StatusBadRequest, "invalid_token_kind"},
	{gamemath.ErrTooManyAssets, http.StatusBadRequest, "too_many_assets"},
	{ledger.ErrInvalidTransfer, http.StatusBadRequest, "invalid_transfer"},
	{round.ErrInvalidReward, http.StatusUnprocessableEntity, "invalid_reward"},
	{round.ErrAlreadyClaimed, http.StatusUnprocessableEntity, "invalid_reward"},
	{gamemath.ErrNoEligibleTier, http.StatusUnprocessableEntity, "no_eligible_tier"},
	{ledger.ErrInsufficientFunds, http.StatusUnprocessableEntity, "insufficient_funds"},
	{treasury.ErrArithmeticOverflow, http.StatusUnprocessableEntity, "arithmetic_overflow"},
	{ledger.ErrArithmeticOverflow, http.StatusUnprocessableEntity, "arithmetic_overflow"},
}

// writeEngineError maps an engine error onto the wheel error taxonomy.
// Anything unrecognised is reported as a 500 without its text.
func writeEngineError(w http.ResponseWriter, err error) {
	for _, m := range errorTable {
		if errors.Is(err, m.target) {
			writeError(w, m.status, err.Error(), m.code)
			return
		}
	}
	writeError(w, http.StatusInternalServerError, "internal error", "internal")
}
