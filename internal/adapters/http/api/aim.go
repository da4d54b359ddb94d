package api

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/okian/oche/internal/domain/types"
)

// AimDependencies defines the interface for aim input.
type AimDependencies interface {
	Lock(ctx context.Context, id string) (types.AimResult, error)
	Pointer(ctx context.Context, id string, ev types.PointerEvent) (types.AimResult, error)
}

// AimHandler handles aim input requests.
type AimHandler struct {
	deps AimDependencies
}

// NewAimHandler creates a new aim handler.
func NewAimHandler(deps AimDependencies) *AimHandler {
	return &AimHandler{deps: deps}
}

// HandleLock handles POST /games/:id/aim/lock requests. A lock the
// controller ignores is still a 202 with accepted=false.
func (h *AimHandler) HandleLock(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	res, err := h.deps.Lock(r.Context(), ps.ByName("id"))
	if err != nil {
		writeError(w, Wrap("api.aim_lock", err))
		return
	}
	writeJSON(w, http.StatusAccepted, res)
}

// HandlePointer handles POST /games/:id/aim/pointer requests.
func (h *AimHandler) HandlePointer(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	const op = "api.aim_pointer"
	var ev types.PointerEvent
	if err := decodeBody(w, r, &ev); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	res, err := h.deps.Pointer(r.Context(), ps.ByName("id"), ev)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusAccepted, res)
}
