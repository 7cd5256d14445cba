// Package server exposes kernels over Connect unary RPCs. Every session
// owns its own Kernel, so conversations never share state; calls within a
// session are serialized.
//
// Messages are protobuf well-known types, so the service needs no
// generated code:
//
//	/scout.v1.AgentService/Run    StringValue -> StringValue
//	/scout.v1.AgentService/Clear  Empty -> Empty
//	/scout.v1.AgentService/Info   Empty -> Struct
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/tailored-agentic-units/scout/kernel"
	"github.com/tailored-agentic-units/scout/observability"
	"github.com/tailored-agentic-units/scout/tools"
)

const (
	ServiceName = "scout.v1.AgentService"

	RunProcedure   = "/" + ServiceName + "/Run"
	ClearProcedure = "/" + ServiceName + "/Clear"
	InfoProcedure  = "/" + ServiceName + "/Info"

	// SessionHeader selects the conversation a call belongs to. Run
	// without it starts a new session and echoes the new id.
	SessionHeader = "Scout-Session"
)

// Server event types.
const (
	EventSessionCreated observability.EventType = "server.session.created"
	EventSessionEvicted observability.EventType = "server.session.evicted"
	EventRunFailed      observability.EventType = "server.run.failed"
)

// DefaultMaxSessions bounds the live sessions of a Server unless
// WithMaxSessions says otherwise.
const DefaultMaxSessions = 256

// Sentinel errors returned to clients.
var (
	ErrSessionRequired = errors.New("session header required")
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("too many active sessions")
)

// Factory creates the Kernel backing a new session.
type Factory func() (*kernel.Kernel, error)

// session is one kernel plus the lock serializing calls on it. closed is
// set under mu once the session has been evicted.
type session struct {
	mu     sync.Mutex
	k      *kernel.Kernel
	closed bool

	lastUsed time.Time // guarded by Server.mu
}

// Option configures a Server.
type Option func(*Server)

// WithMaxSessions bounds the number of live sessions. Creating a session
// past the bound evicts the least recently used idle one. Values below 1
// keep DefaultMaxSessions.
func WithMaxSessions(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

// Server routes RPCs to per-session kernels.
type Server struct {
	factory     Factory
	observer    observability.Observer
	maxSessions int

	mu       sync.Mutex
	sessions map[string]*session
}

// New creates a Server creating kernels with factory. A nil observer
// discards events.
func New(factory Factory, observer observability.Observer, opts ...Option) *Server {
	s := &Server{
		factory:     factory,
		observer:    observability.OrNoOp(observer),
		maxSessions: DefaultMaxSessions,
		sessions:    make(map[string]*session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns an http.Handler serving the three procedures.
func (s *Server) Handler(opts ...connect.HandlerOption) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(RunProcedure, connect.NewUnaryHandler(RunProcedure, s.run, opts...))
	mux.Handle(ClearProcedure, connect.NewUnaryHandler(ClearProcedure, s.clear, opts...))
	mux.Handle(InfoProcedure, connect.NewUnaryHandler(InfoProcedure, s.info, opts...))
	return mux
}

// Sessions returns the number of live sessions.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Close releases every session's kernel.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for id, sess := range s.sessions {
		if err := sess.k.Close(); err != nil {
			errs = append(errs, fmt.Errorf("session %s: %w", id, err))
		}
		delete(s.sessions, id)
	}
	return errors.Join(errs...)
}

func (s *Server) run(ctx context.Context, req *connect.Request[wrapperspb.StringValue]) (*connect.Response[wrapperspb.StringValue], error) {
	input := req.Msg.GetValue()
	if strings.TrimSpace(input) == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, kernel.ErrEmptyInput)
	}

	id, sess, err := s.acquire(ctx, req.Header().Get(SessionHeader), true)
	if err != nil {
		return nil, err
	}

	result, err := sess.k.Run(ctx, input)
	sess.mu.Unlock()

	if err != nil && !errors.Is(err, kernel.ErrMaxIterations) {
		s.observer.OnEvent(ctx, observability.NewEvent(EventRunFailed, observability.LevelWarning, "server.Run", map[string]any{
			"session_id": id,
			"error":      err.Error(),
		}))
		return nil, connectError(err)
	}

	res := connect.NewResponse(wrapperspb.String(result.Response))
	res.Header().Set(SessionHeader, id)
	return res, nil
}

func (s *Server) clear(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[emptypb.Empty], error) {
	id, sess, err := s.acquire(ctx, req.Header().Get(SessionHeader), false)
	if err != nil {
		return nil, err
	}

	err = sess.k.Clear()
	sess.mu.Unlock()
	if err != nil {
		return nil, connect.NewError(connect.CodeFailedPrecondition, err)
	}

	res := connect.NewResponse(&emptypb.Empty{})
	res.Header().Set(SessionHeader, id)
	return res, nil
}

func (s *Server) info(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[structpb.Struct], error) {
	id, sess, err := s.acquire(ctx, req.Header().Get(SessionHeader), false)
	if err != nil {
		return nil, err
	}

	messages := len(sess.k.History())
	names := sess.k.ToolNames()
	sess.mu.Unlock()

	toolList := make([]any, len(names))
	for i, n := range names {
		toolList[i] = n
	}

	body, err := structpb.NewStruct(map[string]any{
		"session_id": id,
		"messages":   messages,
		"tools":      toolList,
	})
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	res := connect.NewResponse(body)
	res.Header().Set(SessionHeader, id)
	return res, nil
}

// acquire resolves a session through lookup and returns it locked. The
// caller unlocks sess.mu when its call is done.
func (s *Server) acquire(ctx context.Context, id string, create bool) (string, *session, error) {
	id, sess, err := s.lookup(ctx, id, create)
	if err != nil {
		return "", nil, err
	}

	sess.mu.Lock()
	if sess.closed {
		sess.mu.Unlock()
		return "", nil, notFound(id)
	}
	return id, sess, nil
}

// lookup finds id, or creates a new session when id is empty and
// create is set.
func (s *Server) lookup(ctx context.Context, id string, create bool) (string, *session, error) {
	if id != "" {
		s.mu.Lock()
		sess, ok := s.sessions[id]
		if ok {
			sess.lastUsed = time.Now()
		}
		s.mu.Unlock()
		if !ok {
			return "", nil, notFound(id)
		}
		return id, sess, nil
	}

	if !create {
		return "", nil, connect.NewError(connect.CodeInvalidArgument, ErrSessionRequired)
	}

	k, err := s.factory()
	if err != nil {
		return "", nil, connect.NewError(connect.CodeInternal, fmt.Errorf("create session: %w", err))
	}

	id = k.SessionID()
	sess := &session{k: k, lastUsed: time.Now()}

	s.mu.Lock()
	evicted, ok := s.makeRoom()
	if ok {
		s.sessions[id] = sess
	}
	s.mu.Unlock()

	for _, old := range evicted {
		s.observer.OnEvent(ctx, observability.NewEvent(EventSessionEvicted, observability.LevelInfo, "server", map[string]any{
			"session_id": old,
		}))
	}

	if !ok {
		k.Close()
		return "", nil, connect.NewError(connect.CodeResourceExhausted, ErrTooManySessions)
	}

	s.observer.OnEvent(ctx, observability.NewEvent(EventSessionCreated, observability.LevelInfo, "server", map[string]any{
		"session_id": id,
	}))

	return id, sess, nil
}

// makeRoom evicts least recently used idle sessions until one more fits
// under maxSessions. It reports false when every session is busy. Caller
// holds s.mu.
func (s *Server) makeRoom() ([]string, bool) {
	var evicted []string
	for len(s.sessions) >= s.maxSessions {
		id, ok := s.evictIdle()
		if !ok {
			return evicted, false
		}
		evicted = append(evicted, id)
	}
	return evicted, true
}

// evictIdle closes and removes the least recently used session that is not
// serving a call. Caller holds s.mu.
func (s *Server) evictIdle() (string, bool) {
	candidates := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		candidates = append(candidates, id)
	}
	slices.SortFunc(candidates, func(a, b string) int {
		return s.sessions[a].lastUsed.Compare(s.sessions[b].lastUsed)
	})

	for _, id := range candidates {
		sess := s.sessions[id]
		if !sess.mu.TryLock() {
			continue
		}
		sess.closed = true
		sess.k.Close()
		sess.mu.Unlock()
		delete(s.sessions, id)
		return id, true
	}
	return "", false
}

func notFound(id string) error {
	return connect.NewError(connect.CodeNotFound, fmt.Errorf("%w: %s", ErrSessionNotFound, id))
}

func connectError(err error) error {
	var verr *tools.ValidationError
	switch {
	case errors.As(err, &verr):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	}
	return connect.NewError(connect.CodeInternal, err)
}
