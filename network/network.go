package network

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"drivesim/config"
	"drivesim/protocol"
	"drivesim/room"
)

const (
	helloWait       = 10 * time.Second
	shutdownTimeout = 5 * time.Second
)

type Server struct {
	cfg      config.Config
	sessions *room.Manager
	log      zerolog.Logger
	upgrader websocket.Upgrader
	mux      *http.ServeMux
}

func NewServer(cfg config.Config, m *room.Manager, log zerolog.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		sessions: m,
		log:      log.With().Str("component", "network").Logger(),
		mux:      http.NewServeMux(),
	}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.checkOrigin}
	s.mux.HandleFunc("GET /ws", s.handleWS)
	s.mux.HandleFunc("GET /api/sessions", s.handleSessions)
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return s
}

func (s *Server) Handler() http.Handler { return s.mux }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.cfg.Addr).Msg("listening (ws endpoint: /ws)")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// checkOrigin allows everything when no origins are configured. Requests
// without an Origin header are not from a browser and always pass.
func (s *Server) checkOrigin(r *http.Request) bool {
	if len(s.cfg.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, o := range s.cfg.AllowedOrigins {
		if strings.EqualFold(o, origin) {
			return true
		}
	}
	s.log.Warn().Str("origin", origin).Msg("origin rejected")
	return false
}

func (s *Server) handleSessions(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.sessions.List()); err != nil {
		s.log.Error().Err(err).Msg("encode sessions")
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("upgrade")
		return
	}
	log := s.log.With().Str("remote", r.RemoteAddr).Logger()
	conn := newWSConn(ws, log)

	hello, ok := s.readHello(conn, log)
	if !ok {
		return
	}

	sess, err := s.sessions.Open(hello.Variant)
	if err != nil {
		s.reject(conn, protocol.ErrCodeVariant, err.Error())
		return
	}
	log = log.With().Str("session", sess.ID).Logger()

	reply := make(chan room.JoinResult, 1)
	if !deliver(sess, room.Join{Conn: conn, Name: hello.Name, Reply: reply}) {
		conn.Close()
		return
	}
	var res room.JoinResult
	select {
	case res = <-reply:
	case <-sess.Done():
		conn.Close()
		return
	}
	if res.Err != nil {
		code := protocol.ErrCodeOccupied
		if errors.Is(res.Err, room.ErrDriverGone) {
			code = protocol.ErrCodeBadMessage
		}
		s.reject(conn, code, res.Err.Error())
		return
	}

	s.readLoop(conn, sess, log)
	deliver(sess, room.Leave{})
	conn.Close()
}

// readHello reads the first frame, which must be a hello with a matching
// protocol version.
func (s *Server) readHello(conn *wsConn, log zerolog.Logger) (protocol.Hello, bool) {
	_ = conn.ws.SetReadDeadline(time.Now().Add(helloWait))
	_, msg, err := conn.ws.ReadMessage()
	if err != nil {
		log.Debug().Err(err).Msg("read hello")
		conn.Close()
		return protocol.Hello{}, false
	}
	_ = conn.ws.SetReadDeadline(time.Now().Add(pongWait))

	env, err := protocol.DecodeEnvelope(msg)
	if err != nil || env.T != protocol.MsgHello {
		s.reject(conn, protocol.ErrCodeBadHello, "first message must be hello")
		return protocol.Hello{}, false
	}
	hello, err := protocol.DecodePayload[protocol.Hello](env)
	if err != nil {
		s.reject(conn, protocol.ErrCodeBadHello, err.Error())
		return protocol.Hello{}, false
	}
	if hello.V != protocol.ProtocolVersion {
		s.reject(conn, protocol.ErrCodeBadVersion,
			fmt.Sprintf("protocol version %d not supported (want %d)", hello.V, protocol.ProtocolVersion))
		return protocol.Hello{}, false
	}
	return hello, true
}

func (s *Server) readLoop(conn *wsConn, sess *room.Room, log zerolog.Logger) {
	for {
		_, msg, err := conn.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Info().Err(err).Msg("read")
			}
			return
		}

		env, err := protocol.DecodeEnvelope(msg)
		if err != nil {
			s.sendError(conn, protocol.ErrCodeBadMessage, err.Error())
			continue
		}
		var cmd any
		switch env.T {
		case protocol.MsgInput:
			in, err := protocol.DecodePayload[protocol.Input](env)
			if err != nil {
				s.sendError(conn, protocol.ErrCodeBadMessage, err.Error())
				continue
			}
			cmd = room.Input{Input: in}
		case protocol.MsgDevices:
			d, err := protocol.DecodePayload[protocol.Devices](env)
			if err != nil {
				s.sendError(conn, protocol.ErrCodeBadMessage, err.Error())
				continue
			}
			cmd = room.Devices{Pads: d.Pads}
		default:
			log.Debug().Str("type", env.T).Msg("ignoring message")
			continue
		}
		if !deliver(sess, cmd) {
			return
		}
	}
}

// deliver hands cmd to the session, giving up if it has stopped.
func deliver(sess *room.Room, cmd any) bool {
	select {
	case sess.Inbox <- cmd:
		return true
	case <-sess.Done():
		return false
	}
}

func (s *Server) sendError(conn *wsConn, code, message string) {
	b, err := protocol.Encode(protocol.MsgError, protocol.Error{Code: code, Message: message})
	if err != nil {
		s.log.Error().Err(err).Msg("encode error")
		return
	}
	_ = conn.Send(b)
}

// reject reports an error to the browser and closes the connection.
func (s *Server) reject(conn *wsConn, code, message string) {
	s.log.Info().Str("code", code).Str("reason", message).Msg("rejecting connection")
	s.sendError(conn, code, message)
	conn.Close()
}
