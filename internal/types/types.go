// Package types holds the websocket wire messages.
//
// Client -> Server
//
//	BanMap / PickMap: {type, team: "team1"|"team2", map}
//	SetScore:         {type, map, score1, score2}
//
// Server -> Client
//
//	StateSnapshot: {type, version, state, played, series, next}
//	Error:         {type, error}
package types

import "github.com/DoyleJ11/mapveto-backend/internal/engine"

type ClientMessage struct {
	Type   string `json:"type"`
	Team   string `json:"team,omitempty"`
	Map    string `json:"map,omitempty"`
	Score1 int    `json:"score1,omitempty"`
	Score2 int    `json:"score2,omitempty"`
}

type ServerMessage struct {
	Type    string             `json:"type"` // "StateSnapshot" | "Error"
	Version int                `json:"version,omitempty"`
	State   *engine.VetoRecord `json:"state,omitempty"`
	Played  []string           `json:"played,omitempty"`
	Series  *engine.Series     `json:"series,omitempty"`
	Next    *engine.TurnStep   `json:"next,omitempty"`
	Error   string             `json:"error,omitempty"`
}
