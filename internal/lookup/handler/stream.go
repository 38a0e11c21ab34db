package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"rcgateway/internal/lookup"
	"rcgateway/internal/lookup/models"
	dErrors "rcgateway/pkg/domain-errors"
	"rcgateway/pkg/platform/httputil"
)

// HandleLookupStream runs one lookup while streaming per-provider progress
// as server-sent events. Progress events are emitted synchronously between
// provider attempts, so writing them straight to the response keeps the
// client exactly one attempt behind the orchestrator.
//
// The stream ends with a single "result" or "error" event.
func (h *Handler) HandleLookupStream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID, ok := h.accountID(w, ctx)
	if !ok {
		return
	}

	regNo := r.URL.Query().Get("registration_number")
	if regNo == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "registration_number query parameter is required"))
		return
	}
	bypass := r.URL.Query().Get("bypass_cache") == "1"

	flusher, ok := w.(http.Flusher)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "streaming not supported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	writeEvent := func(event string, payload any) {
		data, err := json.Marshal(payload)
		if err != nil {
			return
		}
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
		flusher.Flush()
	}

	result, txn, err := h.service.LookupAndCharge(ctx, regNo, accountID, lookup.Options{
		BypassCache: bypass,
		Progress: func(ev models.ProgressEvent) {
			writeEvent(string(ev.Kind), ev)
		},
	})
	if err != nil {
		code := dErrors.CodeInternal
		message := "lookup failed"
		var domainErr *dErrors.Error
		if errors.As(err, &domainErr) {
			code = domainErr.Code
			message = domainErr.Message
		}
		writeEvent("error", map[string]string{"code": string(code), "message": message})
		return
	}

	charged := ""
	if txn != nil {
		charged = txn.Amount.String()
	}
	writeEvent("result", toLookupResponse(result, charged))
}
