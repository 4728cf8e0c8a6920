package session

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/mapveto-backend/internal/engine"
	"github.com/DoyleJ11/mapveto-backend/internal/storage"
)

var ErrNoVeto = errors.New("no active veto")
var ErrClosed = errors.New("session closed")

const saveTimeout = 3 * time.Second

type Msg interface{ isSessionMsg() }

type Join struct {
	ClientID string
	Outbox   chan Snapshot // where this client wants to receive snapshots
}

func (Join) isSessionMsg() {}

type Leave struct{ ClientID string }

func (Leave) isSessionMsg() {}

// Replace swaps the whole record. A nil Record resets to "no veto".
type Replace struct {
	Record *engine.VetoRecord
	Reply  chan error
}

func (Replace) isSessionMsg() {}

type FromClient struct {
	Cmd   engine.Command
	Reply chan error
}

func (FromClient) isSessionMsg() {}

type SetScore struct {
	Score engine.MapScore
	Reply chan error
}

func (SetScore) isSessionMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isSessionMsg() {}

type Shutdown struct{}

func (Shutdown) isSessionMsg() {}

// Snapshot is what clients receive after every change. Record is a private
// copy and nil when there is no active veto.
type Snapshot struct {
	Version int                `json:"version"`
	Record  *engine.VetoRecord `json:"state"`
	Played  []string           `json:"played"`
	Series  engine.Series      `json:"series"`
	// Next is the pending veto step, nil once the veto is complete.
	Next *engine.TurnStep `json:"next,omitempty"`
}

type View struct {
	Snapshot
	NumClients int
}

type Session struct {
	key     string
	inbox   chan Msg
	record  *engine.VetoRecord
	version int
	clients map[string]chan Snapshot
	saver   storage.Saver
	logger  *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSession starts the session goroutine. initial may be nil. Every accepted
// change is written to saver under key.
func NewSession(parent context.Context, key string, initial *engine.VetoRecord, saver storage.Saver, logger *zap.Logger) *Session {
	ctx, cancel := context.WithCancel(parent)

	s := &Session{
		key:     key,
		inbox:   make(chan Msg, 64), // Small buffer
		record:  cloneRecord(initial),
		clients: make(map[string]chan Snapshot),
		saver:   saver,
		logger:  logger.Named("session").With(zap.String("key", key)),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	go s.loop()
	return s
}

func (s *Session) loop() {
	defer close(s.done)
	for {
		select {
		case <-s.ctx.Done():
			s.shutdown()
			return

		case m := <-s.inbox:
			switch msg := m.(type) {
			case Join:
				// Register client + send current snapshot immediately
				s.clients[msg.ClientID] = msg.Outbox
				msg.Outbox <- s.snapshot()

			case Leave:
				if ch, ok := s.clients[msg.ClientID]; ok {
					close(ch)
					delete(s.clients, msg.ClientID)
				}

			case Replace:
				s.commit(cloneRecord(msg.Record))
				reply(msg.Reply, nil)

			case FromClient:
				if s.record == nil {
					reply(msg.Reply, ErrNoVeto)
					break
				}
				events, next, err := engine.Apply(*s.record, msg.Cmd)
				if err != nil {
					s.logger.Debug("rejected command", zap.String("type", string(msg.Cmd.Type)), zap.Error(err))
					reply(msg.Reply, err)
					break
				}
				s.commit(&next)
				if _, done := engine.FindEvent(events, engine.EvtVetoCompleted); done {
					decider, _ := engine.FindEvent(events, engine.EvtDeciderSelected)
					s.logger.Info("veto completed", zap.Int("version", s.version), zap.String("decider", decider.Map))
				}
				reply(msg.Reply, nil)

			case SetScore:
				if s.record == nil {
					reply(msg.Reply, ErrNoVeto)
					break
				}
				next := engine.WithScore(*s.record, msg.Score)
				s.commit(&next)
				reply(msg.Reply, nil)

			case GetState:
				msg.Reply <- View{Snapshot: s.snapshot(), NumClients: len(s.clients)}

			case Shutdown:
				s.shutdown()
				return
			}
		}
	}
}

// commit installs rec, bumps the version, persists and broadcasts.
func (s *Session) commit(rec *engine.VetoRecord) {
	s.record = rec
	s.version++

	if s.saver != nil {
		ctx, cancel := context.WithTimeout(s.ctx, saveTimeout)
		if err := s.saver.Save(ctx, s.key, s.record); err != nil {
			// in-memory state stays authoritative
			s.logger.Error("persist state", zap.Int("version", s.version), zap.Error(err))
		}
		cancel()
	}

	s.broadcast(s.snapshot())
}

func (s *Session) snapshot() Snapshot {
	snap := Snapshot{
		Version: s.version,
		Record:  cloneRecord(s.record),
		Played:  engine.PlayedMaps(s.record),
		Series:  engine.Standings(s.record),
	}
	if s.record != nil {
		if step, ok := engine.NextStep(*s.record); ok {
			snap.Next = &step
		}
	}
	return snap
}

func (s *Session) shutdown() {
	for id, ch := range s.clients {
		close(ch) // Tell client no more snapshots
		delete(s.clients, id)
	}
	s.cancel()
}

func (s *Session) broadcast(snap Snapshot) {
	for id, ch := range s.clients {
		select {
		case ch <- snap:
			//ok
		default:
			// Client is slow/full - drop them.
			s.logger.Warn("dropping slow client", zap.String("client", id))
			close(ch)
			delete(s.clients, id)
		}
	}
}

// Expose the inbox so tests or WS layer can send messages.
func (s *Session) Inbox() chan<- Msg { return s.inbox }

// Done is closed once the session goroutine has exited.
func (s *Session) Done() <-chan struct{} { return s.done }

func (s *Session) Key() string { return s.key }

// Send delivers m unless ctx ends or the session is gone.
func (s *Session) Send(ctx context.Context, m Msg) error {
	select {
	case <-s.done:
		return ErrClosed
	default:
	}
	select {
	case s.inbox <- m:
		return nil
	case <-s.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func reply(ch chan error, err error) {
	if ch != nil {
		ch <- err
	}
}

func cloneRecord(rec *engine.VetoRecord) *engine.VetoRecord {
	if rec == nil {
		return nil
	}
	c := engine.Clone(*rec)
	return &c
}
