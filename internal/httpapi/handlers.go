package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/DoyleJ11/mapveto-backend/internal/engine"
	"github.com/DoyleJ11/mapveto-backend/internal/hub"
	"github.com/DoyleJ11/mapveto-backend/internal/i18n"
	"github.com/DoyleJ11/mapveto-backend/internal/mapimages"
	"github.com/DoyleJ11/mapveto-backend/internal/session"
	"github.com/DoyleJ11/mapveto-backend/internal/storage"
)

const (
	maxBody    = 1 << 20
	langCookie = "lang"
)

func CreateSession(h *hub.Hub, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for {
			code, err := hub.NewCode()
			if err != nil {
				writeError(w, http.StatusInternalServerError, "failed to generate code")
				return
			}
			_, err = h.Create(r.Context(), code)
			if errors.Is(err, hub.ErrCodeTaken) {
				logger.Debug("collision on code, regenerating", zap.String("code", code))
				continue
			}
			if err != nil {
				writeError(w, http.StatusServiceUnavailable, err.Error())
				return
			}

			writeJSON(w, http.StatusCreated, struct {
				Code string `json:"code"`
			}{Code: code})
			return
		}
	}
}

func DeleteSession(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.Remove(r.Context(), chi.URLParam(r, "code")); err != nil {
			writeError(w, statusFor(err), err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// sessionFor resolves ?code= (default session when absent).
func sessionFor(h *hub.Hub, w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	code := r.URL.Query().Get("code")
	if code == "" {
		code = hub.DefaultCode
	}
	s, err := h.Session(r.Context(), code)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return nil, false
	}
	return s, true
}

func GetState(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := sessionFor(h, w, r)
		if !ok {
			return
		}
		v, err := s.State(r.Context())
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}

		w.Header().Set("Cache-Control", "no-store")
		if v.Record == nil {
			writeJSON(w, http.StatusOK, struct{}{})
			return
		}
		writeJSON(w, http.StatusOK, v.Record)
	}
}

func SetState(h *hub.Hub, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		rec, err := storage.DecodeRecord(body)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		s, ok := sessionFor(h, w, r)
		if !ok {
			return
		}
		if err := s.ReplaceRecord(r.Context(), rec); err != nil {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		if rec != nil {
			logger.Info("veto state replaced",
				zap.String("session", s.Key()),
				zap.String("format", string(rec.Format)),
				zap.Int("bans", len(rec.Bans)),
				zap.Int("picks", len(rec.Picks)))
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func ResetState(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := sessionFor(h, w, r)
		if !ok {
			return
		}
		if err := s.ReplaceRecord(r.Context(), nil); err != nil {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func ApplyAction(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cmd engine.Command
		if err := decodeBody(w, r, &cmd); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s, ok := sessionFor(h, w, r)
		if !ok {
			return
		}
		if err := s.ApplyCommand(r.Context(), cmd); err != nil {
			writeError(w, statusFor(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func SetScore(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var score engine.MapScore
		if err := decodeBody(w, r, &score); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if score.Map == "" {
			writeError(w, http.StatusBadRequest, "missing map")
			return
		}
		s, ok := sessionFor(h, w, r)
		if !ok {
			return
		}
		if err := s.RecordScore(r.Context(), score); err != nil {
			writeError(w, statusFor(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

type playedMap struct {
	Map   string `json:"map"`
	Image string `json:"image,omitempty"`
}

func PlayedMaps(h *hub.Hub, images *mapimages.Table) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := sessionFor(h, w, r)
		if !ok {
			return
		}
		v, err := s.State(r.Context())
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}

		var game engine.GameVariant
		if v.Record != nil {
			game = engine.ParseVariant(string(v.Record.Game))
		}
		maps := make([]playedMap, 0, len(v.Played))
		for _, m := range v.Played {
			url, _ := images.Image(game, m)
			maps = append(maps, playedMap{Map: m, Image: url})
		}

		writeJSON(w, http.StatusOK, struct {
			Version int              `json:"version"`
			Maps    []playedMap      `json:"maps"`
			Series  engine.Series    `json:"series"`
			Next    *engine.TurnStep `json:"next,omitempty"`
		}{Version: v.Version, Maps: maps, Series: v.Series, Next: v.Next})
	}
}

func Winner(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s1, err1 := strconv.Atoi(q.Get("score1"))
	s2, err2 := strconv.Atoi(q.Get("score2"))
	if err1 != nil || err2 != nil {
		writeError(w, http.StatusBadRequest, "score1 and score2 must be integers")
		return
	}
	game := engine.ParseVariant(q.Get("game"))
	side := engine.Winner(s1, s2, game)

	writeJSON(w, http.StatusOK, struct {
		Game   engine.GameVariant `json:"game"`
		Winner engine.Side        `json:"winner"`
		Side   string             `json:"side"`
	}{Game: game, Winner: side, Side: side.String()})
}

func MapImages(images *mapimages.Table) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		game := engine.ParseVariant(r.URL.Query().Get("game"))
		writeJSON(w, http.StatusOK, struct {
			Game engine.GameVariant `json:"game"`
			Maps map[string]string  `json:"maps"`
		}{Game: game, Maps: images.For(game)})
	}
}

func SetLanguage(catalog *i18n.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lang := chi.URLParam(r, "lang")
		if !catalog.Supports(lang) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"status": "error", "message": "Invalid language"})
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     langCookie,
			Value:    lang,
			Path:     "/",
			Expires:  time.Now().AddDate(1, 0, 0),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		writeJSON(w, http.StatusOK, map[string]string{"status": "success", "language": lang})
	}
}

// Language returns the UI language of r: lang cookie, then Accept-Language.
func Language(catalog *i18n.Catalog, r *http.Request) string {
	var fromCookie string
	if c, err := r.Cookie(langCookie); err == nil {
		fromCookie = c.Value
	}
	return catalog.Match(fromCookie, r.Header.Get("Accept-Language"))
}

func Translations(catalog *i18n.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lang := Language(catalog, r)
		writeJSON(w, http.StatusOK, struct {
			Language string            `json:"language"`
			Messages map[string]string `json:"messages"`
		}{Language: lang, Messages: catalog.Messages(lang)})
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrNoVeto),
		errors.Is(err, engine.ErrWrongTurn),
		errors.Is(err, engine.ErrMapTaken),
		errors.Is(err, engine.ErrVetoCompleted),
		errors.Is(err, engine.ErrMissingTeams):
		return http.StatusConflict
	case errors.Is(err, engine.ErrUnknownMap),
		errors.Is(err, engine.ErrUnsupportedCommand),
		errors.Is(err, hub.ErrInvalidCode),
		errors.Is(err, hub.ErrDefaultSession):
		return http.StatusBadRequest
	case errors.Is(err, hub.ErrUnknownSession):
		return http.StatusNotFound
	case errors.Is(err, session.ErrClosed),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
