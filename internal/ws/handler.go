package ws

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/DoyleJ11/mapveto-backend/internal/engine"
	"github.com/DoyleJ11/mapveto-backend/internal/hub"
	"github.com/DoyleJ11/mapveto-backend/internal/session"
	"github.com/DoyleJ11/mapveto-backend/internal/types"
)

const (
	writeTimeout = 3 * time.Second
	// overlays rarely talk back, so idle reads are normal
	readTimeout = 5 * time.Minute
)

func Handler(h *hub.Hub, logger *zap.Logger) http.HandlerFunc {
	logger = logger.Named("ws")
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			code = hub.DefaultCode
		}

		s, err := h.Session(r.Context(), code)
		switch {
		case errors.Is(err, hub.ErrInvalidCode):
			http.Error(w, "invalid session code", http.StatusBadRequest)
			return
		case errors.Is(err, hub.ErrUnknownSession):
			http.Error(w, "unknown session", http.StatusNotFound)
			return
		case err != nil:
			http.Error(w, "session unavailable", http.StatusServiceUnavailable)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			// Overlays are loaded from OBS browser sources and local files.
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Debug("accept failed", zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan session.Snapshot, 8)
		clientID := randID(6)
		log := logger.With(zap.String("code", code), zap.String("client", clientID))

		if err := s.Send(r.Context(), session.Join{ClientID: clientID, Outbox: out}); err != nil {
			return
		}
		log.Debug("client joined")
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = s.Send(ctx, session.Leave{ClientID: clientID})
			log.Debug("client left")
		}()

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for snap := range out {
				series := snap.Series
				msg := types.ServerMessage{
					Type:    "StateSnapshot",
					Version: snap.Version,
					State:   snap.Record,
					Played:  snap.Played,
					Series:  &series,
					Next:    snap.Next,
				}
				if err := writeJSON(writeCtx, conn, msg); err != nil {
					log.Debug("write failed", zap.Error(err))
					return
				}
			}
			// Session dropped us or shut down.
			_ = conn.Close(websocket.StatusGoingAway, "session closed")
		}()

		// Reader loop
		for {
			ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
			_, data, err := conn.Read(ctx)
			cancel()
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					log.Debug("read failed", zap.Error(err))
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				_ = writeJSON(r.Context(), conn, types.ServerMessage{Type: "Error", Error: "bad json"})
				continue
			}

			if err := dispatch(r.Context(), s, cm); err != nil {
				_ = writeJSON(r.Context(), conn, types.ServerMessage{Type: "Error", Error: err.Error()})
			}
		}
	}
}

var errUnknownType = errors.New("unknown type")

func dispatch(ctx context.Context, s *session.Session, m types.ClientMessage) error {
	switch m.Type {
	case "SetScore":
		return s.RecordScore(ctx, engine.MapScore{Map: m.Map, Score1: m.Score1, Score2: m.Score2})
	default:
		cmd, ok := toEngineCommand(m)
		if !ok {
			return errUnknownType
		}
		return s.ApplyCommand(ctx, cmd)
	}
}

func toEngineCommand(m types.ClientMessage) (engine.Command, bool) {
	team, ok := parseTeam(m.Team)
	if !ok {
		return engine.Command{}, false
	}

	switch m.Type {
	case "BanMap":
		return engine.Command{Type: engine.CmdBanMap, Team: team, Map: m.Map}, true
	case "PickMap":
		return engine.Command{Type: engine.CmdPickMap, Team: team, Map: m.Map}, true
	default:
		return engine.Command{}, false
	}
}

func parseTeam(team string) (engine.Team, bool) {
	switch team {
	case "team1":
		return engine.Team1, true
	case "team2":
		return engine.Team2, true
	default:
		return "", false
	}
}

func writeJSON(ctx context.Context, conn *websocket.Conn, msg types.ServerMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, payload)
}

func randID(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
