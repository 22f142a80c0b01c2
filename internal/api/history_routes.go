package api

import (
	"net/http"
	"strings"
)

type historyJSON struct {
	T        int64   `json:"t"`
	PT       float64 `json:"pt"`
	PTMinus3 float64 `json:"pt_minus3"`
	PTMinus7 float64 `json:"pt_minus7"`
	AccelLog float64 `json:"accel_log"`
}

func (s *Server) handleMomentumHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusServiceUnavailable, "history is not enabled")
		return
	}

	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "Missing token ID")
		return
	}

	records, err := s.history.GetHistory(r.Context(), id, parseLimit(r, 100))
	if err != nil {
		s.log.WithError(err).WithField("id", id).Error("failed to fetch momentum history")
		writeError(w, http.StatusInternalServerError, "failed to fetch momentum history")
		return
	}

	out := make([]historyJSON, len(records))
	for i, m := range records {
		out[i] = historyJSON{
			T:        m.ComputedAt.UnixMilli(),
			PT:       m.PriceNow,
			PTMinus3: m.PriceMinus3,
			PTMinus7: m.PriceMinus7,
			AccelLog: m.AccelLog,
		}
	}
	writeJSON(w, http.StatusOK, out)
}
