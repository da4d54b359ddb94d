package api

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"github.com/okian/oche/internal/domain/geometry"
	"github.com/okian/oche/internal/domain/scoring"
	"github.com/okian/oche/internal/domain/types"
)

// ScoreHandler scores arbitrary board points.
type ScoreHandler struct{}

// NewScoreHandler creates a new score handler.
func NewScoreHandler() *ScoreHandler {
	return &ScoreHandler{}
}

// HandleScore handles GET /score?h=&v= requests.
func (h *ScoreHandler) HandleScore(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	const op = "api.score"
	q := r.URL.Query()
	hv, err := parseCoordinate(q.Get("h"))
	if err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, fmt.Errorf("h: %w", err)))
		return
	}
	vv, err := parseCoordinate(q.Get("v"))
	if err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, fmt.Errorf("v: %w", err)))
		return
	}

	p := geometry.Point{H: hv, V: vv}
	ring := scoring.RingAt(p)
	writeJSON(w, http.StatusOK, types.Score{
		Points:   ring.Points,
		Band:     ring.Name,
		Distance: p.DistanceFromCenter(),
	})
}

func parseCoordinate(s string) (float64, error) {
	if s == "" {
		return 0, fmt.Errorf("missing")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number")
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not finite")
	}
	return f, nil
}
