package gateway

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/websocket"
)

func (s *Server) registerHTTPRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHTTPHealth)
	mux.HandleFunc("GET /methods", s.handleHTTPMethods)
	mux.HandleFunc("POST /rpc", s.handleHTTPRPC)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("/", handleNotFound)
}

func (s *Server) handleHTTPHealth(w http.ResponseWriter, r *http.Request) {
	report := s.healthReport()
	code := http.StatusOK
	if report["status"] != "healthy" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, report)
}

func (s *Server) handleHTTPMethods(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.describe())
}

// handleHTTPRPC serves a single request per POST. The body is one protocol
// request object; the HTTP status is always 200 so callers distinguish
// dispatch failures by the ok field, same as on the socket.
func (s *Server) handleHTTPRPC(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, int64(s.cfg.MaxLineBytes)))
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			http.Error(w, "request too large", http.StatusRequestEntityTooLarge)
		} else {
			http.Error(w, "failed to read request body", http.StatusBadRequest)
		}
		return
	}
	writeJSON(w, http.StatusOK, s.handleLine(body))
}

// handleWebSocket serves the line protocol over a WebSocket: each text
// message is one request, each reply one response.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()
	conn.SetReadLimit(int64(s.cfg.MaxLineBytes))

	s.log.Debug().Str("remote", r.RemoteAddr).Msg("websocket connected")

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug().Str("remote", r.RemoteAddr).Msg("websocket closed")
			} else {
				s.log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("websocket read error")
			}
			return
		}
		if err := conn.WriteJSON(s.handleLine(msg)); err != nil {
			s.log.Warn().Err(err).Msg("websocket write failed")
			return
		}
	}
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]string{
		"error": "not found",
		"path":  r.URL.Path,
	})
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}
