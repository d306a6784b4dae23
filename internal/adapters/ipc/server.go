package ipc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/bnema/obsidian-launcher/internal/application"
	"github.com/bnema/obsidian-launcher/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/olahol/melody"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	updateBuffer    = 64
	shutdownTimeout = 5 * time.Second
)

// Host is the launcher surface served to presentation clients.
type Host interface {
	Session() application.SessionView
	Subscribe(buffer int) (<-chan application.SessionView, func())
	Authenticate(ctx context.Context) (domain.CredentialView, error)
	Launch(ctx context.Context, cmd application.LaunchCommand) error
	Versions(ctx context.Context) ([]domain.GameVersion, error)
	Memory(ctx context.Context) (application.MemoryReport, error)
	Settings(ctx context.Context) (domain.Settings, error)
	SaveSettings(ctx context.Context, settings domain.Settings) (domain.Settings, error)
}

type methodFunc func(ctx context.Context, host Host, params json.RawMessage) (any, error)

var methodMap = map[string]methodFunc{
	MethodSessionGet: func(_ context.Context, host Host, _ json.RawMessage) (any, error) {
		return host.Session(), nil
	},
	MethodSessionAuthenticate: func(ctx context.Context, host Host, _ json.RawMessage) (any, error) {
		return host.Authenticate(ctx)
	},
	MethodSessionLaunch: func(ctx context.Context, host Host, params json.RawMessage) (any, error) {
		var cmd application.LaunchCommand
		if err := decodeParams(params, &cmd); err != nil {
			return nil, err
		}
		if err := host.Launch(ctx, cmd); err != nil {
			return nil, err
		}
		return struct{}{}, nil
	},
	MethodVersionsList: func(ctx context.Context, host Host, _ json.RawMessage) (any, error) {
		return host.Versions(ctx)
	},
	MethodSystemMemory: func(ctx context.Context, host Host, _ json.RawMessage) (any, error) {
		return host.Memory(ctx)
	},
	MethodSettingsGet: func(ctx context.Context, host Host, _ json.RawMessage) (any, error) {
		return host.Settings(ctx)
	},
	MethodSettingsSave: func(ctx context.Context, host Host, params json.RawMessage) (any, error) {
		var settings domain.Settings
		if err := decodeParams(params, &settings); err != nil {
			return nil, err
		}
		return host.SaveSettings(ctx, settings)
	},
}

// notifiable methods may be sent without an id; their outcome is only
// visible through session updates.
var notifiable = map[string]bool{
	MethodSessionLaunch: true,
}

var errInvalidParams = errors.New("invalid params")

func decodeParams(params json.RawMessage, into any) error {
	if len(params) == 0 {
		return fmt.Errorf("%w: params are required", errInvalidParams)
	}
	if err := json.Unmarshal(params, into); err != nil {
		return fmt.Errorf("%w: %w", errInvalidParams, err)
	}
	return nil
}

// Server exposes a Host as JSON-RPC 2.0 over WebSocket. Every request runs
// on its own goroutine so a pending sign-in never stalls the connection.
type Server struct {
	host   Host
	melody *melody.Melody
	router chi.Router

	ctx    context.Context
	cancel context.CancelFunc
}

func NewServer(host Host) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		host:   host,
		melody: melody.New(),
		router: chi.NewRouter(),
		ctx:    ctx,
		cancel: cancel,
	}

	s.melody.Upgrader.CheckOrigin = allowLoopbackOrigin
	s.melody.HandleMessage(s.handleMessage)
	s.melody.HandleConnect(func(session *melody.Session) {
		log.Debug().Str("remote", session.Request.RemoteAddr).Msg("client connected")
	})
	s.melody.HandleDisconnect(func(session *melody.Session) {
		log.Debug().Str("remote", session.Request.RemoteAddr).Msg("client disconnected")
	})

	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.NoCache)
	s.router.Get(APIPath, func(w http.ResponseWriter, r *http.Request) {
		if err := s.melody.HandleRequest(w, r); err != nil {
			log.Error().Err(err).Msg("handling websocket request")
		}
	})

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", listener.Addr().String()).Msg("host listening")
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve ipc: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		s.ServeUpdates(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return errors.Join(s.Close(), httpServer.Shutdown(shutdownCtx))
	})

	return g.Wait()
}

// ServeUpdates broadcasts every session update to all clients until ctx is
// cancelled.
func (s *Server) ServeUpdates(ctx context.Context) {
	updates, cancel := s.host.Subscribe(updateBuffer)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case view, ok := <-updates:
			if !ok {
				return
			}
			s.broadcast(NotificationSessionUpdated, view)
		}
	}
}

func (s *Server) Close() error {
	s.cancel()
	if s.melody.IsClosed() {
		return nil
	}
	if err := s.melody.Close(); err != nil {
		return fmt.Errorf("close websocket sessions: %w", err)
	}
	return nil
}

func (s *Server) broadcast(method string, params any) {
	encoded, err := json.Marshal(params)
	if err != nil {
		log.Error().Err(err).Str("method", method).Msg("marshalling notification params")
		return
	}

	data, err := json.Marshal(RequestObject{JSONRPC: jsonRPC, Method: method, Params: encoded})
	if err != nil {
		log.Error().Err(err).Msg("marshalling notification")
		return
	}

	if err := s.melody.Broadcast(data); err != nil {
		log.Error().Err(err).Msg("broadcasting notification")
	}
}

func (s *Server) handleMessage(session *melody.Session, msg []byte) {
	if bytes.Equal(msg, []byte(pingMessage)) {
		if err := session.Write([]byte(pongMessage)); err != nil {
			log.Error().Err(err).Msg("sending pong")
		}
		return
	}

	if !json.Valid(msg) {
		log.Warn().Msg("message is not valid json")
		s.sendError(session, uuid.Nil, ErrorParseError)
		return
	}

	var in envelope
	if err := json.Unmarshal(msg, &in); err != nil || in.JSONRPC != jsonRPC {
		log.Warn().Str("jsonrpc", in.JSONRPC).Msg("unsupported payload")
		s.sendError(session, maybeID(in.ID), ErrorInvalidRequest)
		return
	}

	switch {
	case in.Method != "":
		go s.dispatch(session, RequestObject{JSONRPC: in.JSONRPC, ID: in.ID, Method: in.Method, Params: in.Params})
	case in.ID != nil:
		log.Debug().Str("id", in.ID.String()).Msg("ignoring client response")
	default:
		s.sendError(session, uuid.Nil, ErrorInvalidRequest)
	}
}

func (s *Server) dispatch(session *melody.Session, req RequestObject) {
	method := strings.ToLower(req.Method)
	log.Debug().Str("method", method).Bool("notification", req.ID == nil).Msg("received request")

	fn, ok := methodMap[method]
	if !ok {
		if req.ID != nil {
			s.sendError(session, *req.ID, ErrorMethodNotFound)
		}
		return
	}

	if req.ID == nil {
		if !notifiable[method] {
			log.Info().Str("method", method).Msg("received notification for request-only method, ignoring")
			return
		}
		if _, err := fn(s.ctx, s.host, req.Params); err != nil {
			log.Warn().Err(err).Str("method", method).Msg("notification failed")
		}
		return
	}

	result, err := fn(s.ctx, s.host, req.Params)
	if err != nil {
		if errors.Is(err, errInvalidParams) {
			obj := ErrorInvalidParams
			obj.Message = err.Error()
			s.sendError(session, *req.ID, obj)
			return
		}
		s.sendError(session, *req.ID, errorObjectFor(err))
		return
	}

	s.sendResult(session, *req.ID, result)
}

func (s *Server) sendResult(session *melody.Session, id uuid.UUID, result any) {
	encoded, err := json.Marshal(result)
	if err != nil {
		log.Error().Err(err).Msg("marshalling result")
		s.sendError(session, id, ErrorInternalError)
		return
	}

	s.write(session, ResponseObject{JSONRPC: jsonRPC, ID: id, Result: encoded})
}

func (s *Server) sendError(session *melody.Session, id uuid.UUID, obj ErrorObject) {
	log.Debug().Int("code", obj.Code).Str("message", obj.Message).Msg("sending error")
	s.write(session, ResponseObject{JSONRPC: jsonRPC, ID: id, Error: &obj})
}

func (s *Server) write(session *melody.Session, resp ResponseObject) {
	data, err := json.Marshal(resp)
	if err != nil {
		log.Error().Err(err).Msg("marshalling response")
		return
	}
	if err := session.Write(data); err != nil {
		log.Error().Err(err).Msg("sending response")
	}
}

func maybeID(id *uuid.UUID) uuid.UUID {
	if id == nil {
		return uuid.Nil
	}
	return *id
}

// allowLoopbackOrigin accepts non-browser clients and pages served from
// loopback only.
func allowLoopbackOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, prefix := range []string{"http://127.0.0.1", "http://localhost", "file://"} {
		if strings.HasPrefix(origin, prefix) {
			return true
		}
	}
	return false
}
