package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/roshimastsensei/log-momentum/internal/models"
	"github.com/roshimastsensei/log-momentum/internal/momentum"
)

const maxBodyBytes = 1 << 20

type momentumRequest struct {
	ID string `json:"id"`
}

type momentumResponse struct {
	ID       string  `json:"id"`
	CoinID   string  `json:"coin_id,omitempty"`
	PT       float64 `json:"pt"`
	PTMinus3 float64 `json:"pt_minus3"`
	PTMinus7 float64 `json:"pt_minus7"`
	AccelLog float64 `json:"accel_log"`
}

type momentumErrorResponse struct {
	Error       string       `json:"error"`
	ID          string       `json:"id"`
	PNow        *float64     `json:"pNow"`
	P3          *float64     `json:"p3"`
	P7          *float64     `json:"p7"`
	Diagnostics *diagnostics `json:"diagnostics,omitempty"`
}

type diagnostics struct {
	CoinID     string        `json:"coinId,omitempty"`
	Pacing     string        `json:"pacing,omitempty"`
	Minus3Date string        `json:"minus3Date"`
	Minus7Date string        `json:"minus7Date"`
	PNow       models.Sample `json:"pNow"`
	P3         models.Sample `json:"p3"`
	P7         models.Sample `json:"p7"`
	Resolve    string        `json:"resolveError,omitempty"`
}

type internalErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
	ID      string `json:"id,omitempty"`
}

func (s *Server) handleLogMomentum(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}

	var id string
	defer func() {
		if rec := recover(); rec != nil {
			s.log.WithFields(logrus.Fields{"id": id, "panic": rec}).Error("momentum handler panicked")
			writeJSON(w, http.StatusInternalServerError, internalErrorResponse{
				Error:   "Internal Server Error",
				Details: fmt.Sprint(rec),
				ID:      id,
			})
		}
	}()

	var req momentumRequest
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req)
	if err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	id = strings.TrimSpace(req.ID)
	if id == "" {
		writeError(w, http.StatusBadRequest, "Missing token ID")
		return
	}

	out := s.momentum.Compute(r.Context(), id)

	switch out.Kind {
	case momentum.KindOK:
		resp := momentumResponse{
			ID:       out.ID,
			PT:       out.Now.Value,
			PTMinus3: out.Minus3.Value,
			PTMinus7: out.Minus7.Value,
			AccelLog: out.AccelLog,
		}
		if out.CoinID != out.ID {
			resp.CoinID = out.CoinID
		}
		writeJSON(w, http.StatusOK, resp)
	case momentum.KindUnknownToken:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Unknown token contract", "id": out.ID})
	case momentum.KindResolveFailed:
		writeJSON(w, http.StatusBadGateway, s.failure("Token resolution failed", out))
	case momentum.KindUnavailable:
		writeJSON(w, http.StatusBadGateway, s.failure("Price fetch failed", out))
	case momentum.KindUndefined:
		writeJSON(w, http.StatusUnprocessableEntity, s.failure("Computation failed", out))
	default:
		panic(fmt.Sprintf("unhandled momentum outcome %s", out.Kind))
	}
}

func (s *Server) failure(msg string, out momentum.Outcome) momentumErrorResponse {
	resp := momentumErrorResponse{
		Error: msg,
		ID:    out.ID,
		PNow:  out.Now.Ptr(),
		P3:    out.Minus3.Ptr(),
		P7:    out.Minus7.Ptr(),
	}
	if s.diagnostics {
		d := &diagnostics{
			Pacing:     s.pacing,
			Minus3Date: out.Minus3Date,
			Minus7Date: out.Minus7Date,
			PNow:       out.Now,
			P3:         out.Minus3,
			P7:         out.Minus7,
		}
		if out.CoinID != out.ID {
			d.CoinID = out.CoinID
		}
		if out.Err != nil {
			d.Resolve = out.Err.Error()
		}
		resp.Diagnostics = d
	}
	return resp
}
