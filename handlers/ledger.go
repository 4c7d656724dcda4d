// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/quickly-stake/engine"
	"github.com/danielhkuo/quickly-stake/middleware"
	"github.com/danielhkuo/quickly-stake/models"
)

type LedgerHandler struct {
	eng *engine.Engine
}

func NewLedgerHandler(eng *engine.Engine) *LedgerHandler {
	return &LedgerHandler{eng: eng}
}

// GetLedger handles GET /ledger
func (h *LedgerHandler) GetLedger(w http.ResponseWriter, r *http.Request) {
	id, ok := actor(w, r)
	if !ok {
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.LedgerResponse{
		Balance: h.eng.Balance(id.UID),
		History: h.eng.History(id.UID),
	})
}

// Withdraw handles POST /ledger/withdraw
func (h *LedgerHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	id, ok := actor(w, r)
	if !ok {
		return
	}

	var req models.WithdrawRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	receipt, err := h.eng.Withdraw(r.Context(), id, req.Address, req.Amount)
	if err != nil {
		writeEngineError(w, err, "withdraw")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.WithdrawResponse{
		Receipt: receipt,
		Message: "Withdrew " + humanize.Comma(receipt.Amount) + " points, " +
			humanize.Comma(receipt.Balance) + " remaining",
	})
}
