package session

import (
	"context"

	"github.com/DoyleJ11/mapveto-backend/internal/engine"
)

// ReplaceRecord swaps the session record and waits until it is applied.
func (s *Session) ReplaceRecord(ctx context.Context, rec *engine.VetoRecord) error {
	r := make(chan error, 1)
	if err := s.Send(ctx, Replace{Record: rec, Reply: r}); err != nil {
		return err
	}
	return s.await(ctx, r)
}

// ApplyCommand runs one veto action through the engine.
func (s *Session) ApplyCommand(ctx context.Context, cmd engine.Command) error {
	r := make(chan error, 1)
	if err := s.Send(ctx, FromClient{Cmd: cmd, Reply: r}); err != nil {
		return err
	}
	return s.await(ctx, r)
}

func (s *Session) RecordScore(ctx context.Context, score engine.MapScore) error {
	r := make(chan error, 1)
	if err := s.Send(ctx, SetScore{Score: score, Reply: r}); err != nil {
		return err
	}
	return s.await(ctx, r)
}

func (s *Session) State(ctx context.Context) (View, error) {
	r := make(chan View, 1)
	if err := s.Send(ctx, GetState{Reply: r}); err != nil {
		return View{}, err
	}
	select {
	case v := <-r:
		return v, nil
	case <-s.done:
		return View{}, ErrClosed
	case <-ctx.Done():
		return View{}, ctx.Err()
	}
}

func (s *Session) await(ctx context.Context, r <-chan error) error {
	select {
	case err := <-r:
		return err
	case <-s.done:
		// the reply may have landed just before shutdown
		select {
		case err := <-r:
			return err
		default:
			return ErrClosed
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}
