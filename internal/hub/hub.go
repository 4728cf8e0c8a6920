package hub

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"

	"go.uber.org/zap"

	"github.com/DoyleJ11/mapveto-backend/internal/engine"
	"github.com/DoyleJ11/mapveto-backend/internal/session"
	"github.com/DoyleJ11/mapveto-backend/internal/storage"
)

// DefaultCode is the session behind /api/state and the OBS file.
const DefaultCode = "default"

const (
	codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLen     = 6
)

var (
	ErrInvalidCode    = errors.New("invalid session code")
	ErrUnknownSession = errors.New("unknown session")
	ErrCodeTaken      = errors.New("session code taken")
	ErrDefaultSession = errors.New("default session cannot be removed")
)

type HubMsg interface{ isHubMsg() }

// CreateSession starts a new session. Reply receives nil when Code is taken.
type CreateSession struct {
	Code   string
	Record *engine.VetoRecord
	Reply  chan *session.Session
}

type GetSession struct {
	Code  string
	Reply chan *session.Session
}

// EnsureSession returns the existing session or creates one, restoring its
// record from the store when there is one.
type EnsureSession struct {
	Code  string
	Reply chan *session.Session
}

// RemoveSession stops a session. Reply (optional) receives whether it existed.
type RemoveSession struct {
	Code  string
	Reply chan bool
}

type ShutdownHub struct{}

func (CreateSession) isHubMsg() {}
func (GetSession) isHubMsg()    {}
func (EnsureSession) isHubMsg() {}
func (RemoveSession) isHubMsg() {}
func (ShutdownHub) isHubMsg()   {}

type Hub struct {
	inbox    chan HubMsg
	sessions map[string]*session.Session
	store    storage.Store
	logger   *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewHub starts the hub goroutine. store may be nil, sessions then live in
// memory only.
func NewHub(parent context.Context, store storage.Store, logger *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:    make(chan HubMsg, 64),
		sessions: make(map[string]*session.Session),
		store:    store,
		logger:   logger.Named("hub"),
		ctx:      ctx,
		cancel:   cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

// ValidCode accepts DefaultCode and the six character codes NewCode hands out.
func ValidCode(code string) bool {
	if code == DefaultCode {
		return true
	}
	if len(code) != codeLen {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

func NewCode() (string, error) {
	code := make([]byte, codeLen)
	for i := range code {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeCharset))))
		if err != nil {
			return "", err
		}
		code[i] = codeCharset[num.Int64()]
	}
	return string(code), nil
}

// StorageKey maps a session code to its persistence key.
func StorageKey(code string) string {
	if code == DefaultCode {
		return storage.DefaultKey
	}
	return "session-" + code
}

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateSession:
				if h.sessions[msg.Code] != nil {
					msg.Reply <- nil
					break
				}
				msg.Reply <- h.start(msg.Code, msg.Record)

			case GetSession:
				msg.Reply <- h.sessions[msg.Code] // May be nil

			case EnsureSession:
				if s := h.sessions[msg.Code]; s != nil {
					msg.Reply <- s
					break
				}
				msg.Reply <- h.start(msg.Code, h.restore(msg.Code))

			case RemoveSession:
				s := h.sessions[msg.Code]
				if s != nil {
					stop(s)
					delete(h.sessions, msg.Code)
					h.logger.Info("session removed", zap.String("code", msg.Code))
				}
				if msg.Reply != nil {
					msg.Reply <- s != nil
				}

			case ShutdownHub:
				h.shutdown()
				h.cancel()
				return
			}
		}
	}
}

func (h *Hub) start(code string, rec *engine.VetoRecord) *session.Session {
	s := session.NewSession(h.ctx, StorageKey(code), rec, h.store, h.logger)
	h.sessions[code] = s
	h.logger.Info("session started", zap.String("code", code), zap.Bool("restored", rec != nil))
	return s
}

func (h *Hub) restore(code string) *engine.VetoRecord {
	if h.store == nil {
		return nil
	}
	rec, err := h.store.Load(h.ctx, StorageKey(code))
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return nil
	case err != nil:
		h.logger.Warn("restore session", zap.String("code", code), zap.Error(err))
		return nil
	}
	return rec
}

func (h *Hub) shutdown() {
	for code, s := range h.sessions {
		stop(s)
		delete(h.sessions, code)
	}
}

func stop(s *session.Session) {
	select {
	case s.Inbox() <- session.Shutdown{}:
	case <-s.Done():
	}
}

// Session returns the session for code. The default session is started (and
// restored from the store) on first use; any other code must have been
// created with Create.
func (h *Hub) Session(ctx context.Context, code string) (*session.Session, error) {
	if !ValidCode(code) {
		return nil, ErrInvalidCode
	}

	reply := make(chan *session.Session, 1)
	var msg HubMsg = GetSession{Code: code, Reply: reply}
	if code == DefaultCode {
		msg = EnsureSession{Code: code, Reply: reply}
	}
	s, err := ask(ctx, h, msg, reply)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, ErrUnknownSession
	}
	return s, nil
}

// Create starts an empty session under code.
func (h *Hub) Create(ctx context.Context, code string) (*session.Session, error) {
	if !ValidCode(code) || code == DefaultCode {
		return nil, ErrInvalidCode
	}

	reply := make(chan *session.Session, 1)
	s, err := ask(ctx, h, CreateSession{Code: code, Reply: reply}, reply)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, ErrCodeTaken
	}
	return s, nil
}

// Remove stops the session for code.
func (h *Hub) Remove(ctx context.Context, code string) error {
	switch {
	case code == DefaultCode:
		return ErrDefaultSession
	case !ValidCode(code):
		return ErrInvalidCode
	}

	reply := make(chan bool, 1)
	found, err := ask(ctx, h, RemoveSession{Code: code, Reply: reply}, reply)
	if err != nil {
		return err
	}
	if !found {
		return ErrUnknownSession
	}
	return nil
}

// ask sends msg and waits for its reply, giving up when ctx ends or the hub
// has stopped.
func ask[T any](ctx context.Context, h *Hub, msg HubMsg, reply <-chan T) (T, error) {
	var zero T
	if h.ctx.Err() != nil {
		return zero, session.ErrClosed
	}
	select {
	case h.inbox <- msg:
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-h.ctx.Done():
		return zero, session.ErrClosed
	}
	select {
	case v := <-reply:
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-h.ctx.Done():
		return zero, session.ErrClosed
	}
}
