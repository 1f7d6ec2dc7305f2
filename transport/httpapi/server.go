// Package httpapi exposes the three control-surface operations from spec
// §6.2 over plain HTTP+JSON: add a token, read the marking, trigger a
// manual transition. This is the module's one concrete transport binding —
// spec §6 treats any request/response transport as equivalent, and this
// module picks HTTP the way the teacher's v1/server.go picked gRPC for its
// own control surface.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	petri "github.com/bnetrun/bnet"
	"go.uber.org/zap"
)

// Server binds a *petri.Net to an http.Handler. The net's own mutex
// serializes these calls against the scheduler's epoch loop; Server holds
// no state of its own.
type Server struct {
	net *petri.Net
	log *zap.Logger
	mux *http.ServeMux
}

// New builds a Server with routes registered. logger may be nil.
func New(net *petri.Net, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{net: net, log: logger, mux: http.NewServeMux()}
	s.mux.HandleFunc("POST /tokens/{place_id}", s.handleAddToken)
	s.mux.HandleFunc("GET /marking", s.handleMarking)
	s.mux.HandleFunc("POST /transitions/{transition_id}/trigger", s.handleTrigger)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

type addTokenRequest struct {
	Blocks map[string]petri.Block `json:"blocks"`
}

type addTokenResponse struct {
	TokenID string `json:"token_id"`
}

func (s *Server) handleAddToken(w http.ResponseWriter, r *http.Request) {
	placeID := r.PathValue("place_id")
	var req addTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	tok, err := s.net.InsertToken(placeID, req.Blocks)
	if err != nil {
		s.writeNetError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, addTokenResponse{TokenID: tok.ID()})
}

func (s *Server) handleMarking(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.net.Snapshot())
}

func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	transitionID := r.PathValue("transition_id")
	if err := s.net.Trigger(transitionID); err != nil {
		s.writeNetError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeNetError maps the engine's sentinel error taxonomy onto HTTP status
// codes: a RuntimeFault is the caller's mistake (400), anything else
// (LogicInvariant, an unwrapped error) is the engine's problem (500).
func (s *Server) writeNetError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, petri.ErrRuntimeFault) {
		status = http.StatusBadRequest
	} else {
		s.log.Error("control surface request failed", zap.Error(err))
	}
	writeError(w, status, err)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
