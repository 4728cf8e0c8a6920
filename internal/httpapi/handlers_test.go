package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DoyleJ11/mapveto-backend/internal/hub"
	"github.com/DoyleJ11/mapveto-backend/internal/i18n"
	"github.com/DoyleJ11/mapveto-backend/internal/mapimages"
	"github.com/DoyleJ11/mapveto-backend/internal/storage"
)

type fixture struct {
	handler http.Handler
	hub     *hub.Hub
	dir     string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	dir := t.TempDir()
	logger := zap.NewNop()
	images, err := mapimages.Load()
	require.NoError(t, err)
	catalog, err := i18n.New("de", logger)
	require.NoError(t, err)

	h := hub.NewHub(ctx, storage.NewFileStore(dir), logger)
	return fixture{
		handler: SetupRoutes(Deps{
			Hub:     h,
			Images:  images,
			Catalog: catalog,
			Logger:  logger,
		}),
		hub: h,
		dir: dir,
	}
}

func (f fixture) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

const bo3State = `{
  "game": "cs2",
  "format": "bo3",
  "allMaps": ["Mirage", "Inferno", "Nuke", "Ancient", "Anubis"],
  "bans": [{"map": "Mirage"}, {"map": "Inferno"}],
  "picks": [{"map": "Nuke"}, {"map": "Ancient"}],
  "team1": "MOUZ",
  "team2": "Falcons"
}`

func TestState_EmptyByDefault(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/state", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestState_RoundTripAndOBSFile(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/state", bo3State)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/state", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode(t, rec)
	assert.Equal(t, "MOUZ", got["team1"])
	assert.Equal(t, "bo3", got["format"])

	b, err := os.ReadFile(filepath.Join(f.dir, "vetoresult.json"))
	require.NoError(t, err)
	assert.Contains(t, string(b), `"team2": "Falcons"`)

	rec = f.do(t, http.MethodDelete, "/api/state", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(t, http.MethodGet, "/api/state", "")
	assert.JSONEq(t, `{}`, rec.Body.String())
}

func TestState_BadJSON(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/state", `{"format":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec), "error")
}

func TestPlayedMaps(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/state", bo3State).Code)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/state/scores", `{"map":"Nuke","score1":13,"score2":11}`).Code)

	rec := f.do(t, http.MethodGet, "/api/played-maps", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Maps []struct {
			Map   string `json:"map"`
			Image string `json:"image"`
		} `json:"maps"`
		Series struct {
			Won1 int `json:"won1"`
		} `json:"series"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Maps, 3)
	// two bans and two picks over five maps complete the veto
	assert.NotContains(t, rec.Body.String(), `"next"`)
	assert.Equal(t, "Nuke", body.Maps[0].Map)
	assert.Equal(t, "Anubis", body.Maps[2].Map)
	assert.True(t, strings.HasPrefix(body.Maps[2].Image, "https://"))
	assert.Equal(t, 1, body.Series.Won1)
}

func TestActions(t *testing.T) {
	f := newFixture(t)
	state := `{"format":"bo1","allMaps":["A","B","C"],"bans":[],"picks":[],"team1":"x","team2":"y"}`
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/state", state).Code)

	rec := f.do(t, http.MethodGet, "/api/played-maps", "")
	assert.Contains(t, rec.Body.String(), `"next":{"team":"team1","action":"ban"}`)

	cases := []struct {
		name string
		body string
		want int
	}{
		{"legal ban", `{"type":"BanMap","team":"team1","map":"A"}`, http.StatusOK},
		{"out of turn", `{"type":"BanMap","team":"team1","map":"B"}`, http.StatusConflict},
		{"unknown map", `{"type":"BanMap","team":"team2","map":"Z"}`, http.StatusBadRequest},
		{"taken map", `{"type":"BanMap","team":"team2","map":"A"}`, http.StatusConflict},
		{"bad json", `nope`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		rec := f.do(t, http.MethodPost, "/api/state/actions", tc.body)
		assert.Equal(t, tc.want, rec.Code, tc.name)
	}
}

func TestScores_NoVeto(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/state/scores", `{"map":"Nuke","score1":1,"score2":0}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/state/scores", `{"score1":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWinner(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		query string
		code  int
		want  float64
	}{
		{"score1=13&score2=5", http.StatusOK, 1},
		{"score1=7&score2=9&game=r6", http.StatusOK, 2},
		{"score1=15&score2=15&game=cs2", http.StatusOK, 0},
		{"score1=ten&score2=3", http.StatusBadRequest, 0},
	}
	for _, tc := range cases {
		rec := f.do(t, http.MethodGet, "/api/winner?"+tc.query, "")
		require.Equal(t, tc.code, rec.Code, tc.query)
		if tc.code == http.StatusOK {
			assert.Equal(t, tc.want, decode(t, rec)["winner"], tc.query)
		}
	}
}

func TestMapImages_Fallback(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/maps?game=valorant", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "cs2", body["game"])
	assert.Contains(t, body["maps"], "Mirage")

	rec = f.do(t, http.MethodGet, "/api/maps?game=r6", "")
	assert.Contains(t, decode(t, rec)["maps"], "Villa")
}

func TestSetLanguage(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/set_language/en", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"success","language":"en"}`, rec.Body.String())

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "en", cookies[0].Value)

	req := httptest.NewRequest(http.MethodGet, "/api/translations", nil)
	req.AddCookie(cookies[0])
	tr := httptest.NewRecorder()
	f.handler.ServeHTTP(tr, req)
	require.Equal(t, http.StatusOK, tr.Code)
	body := decode(t, tr)
	assert.Equal(t, "en", body["language"])
	assert.Equal(t, "Start Veto", body["messages"].(map[string]any)["veto.start"])

	rec = f.do(t, http.MethodGet, "/set_language/fr", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"status":"error","message":"Invalid language"}`, rec.Body.String())
}

func TestTranslations_DefaultsToBase(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/translations", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "de", decode(t, rec)["language"])
}

func TestPreflight(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodOptions, "/api/state", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "GET, POST, DELETE, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
}

func TestCreateSession(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/sessions", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	code, _ := decode(t, rec)["code"].(string)
	assert.Len(t, code, 6)

	rec = f.do(t, http.MethodGet, "/api/state?code="+code, "")
	assert.JSONEq(t, `{}`, rec.Body.String())

	rec = f.do(t, http.MethodDelete, "/sessions/"+code, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/state?code="+code, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = f.do(t, http.MethodDelete, "/sessions/"+code, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = f.do(t, http.MethodDelete, "/sessions/default", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionCodes_CannotReachDefaultFile(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/state", bo3State).Code)

	evil := `{"format":"bo1","allMaps":["A"],"bans":[],"picks":[],"team1":"EVIL","team2":"y"}`
	for _, code := range []string{"x/vetoresult", "../vetoresult", "abc123", "TOOLONG1"} {
		rec := f.do(t, http.MethodPost, "/api/state?code="+url.QueryEscape(code), evil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, code)
	}

	b, err := os.ReadFile(filepath.Join(f.dir, "vetoresult.json"))
	require.NoError(t, err)
	assert.NotContains(t, string(b), "EVIL")

	rec := f.do(t, http.MethodGet, "/api/state", "")
	assert.Equal(t, "MOUZ", decode(t, rec)["team1"])
}

func TestSessionCodes_ReadsDoNotCreate(t *testing.T) {
	f := newFixture(t)

	for _, path := range []string{"/api/state?code=AAAAAA", "/api/played-maps?code=BBBBBB"} {
		rec := f.do(t, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
	rec := f.do(t, http.MethodPost, "/api/state?code=CCCCCC", bo3State)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	for _, code := range []string{"AAAAAA", "BBBBBB", "CCCCCC"} {
		_, err := f.hub.Session(context.Background(), code)
		assert.ErrorIs(t, err, hub.ErrUnknownSession, code)
	}
}

func TestCreateSession_StoppedHub(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	logger := zap.NewNop()
	handler := SetupRoutes(Deps{Hub: hub.NewHub(ctx, nil, logger), Logger: logger})
	cancel()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sessions", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
