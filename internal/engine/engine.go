package engine

import (
	"errors"
	"slices"
)

var ErrWrongTurn = errors.New("invalid turn")
var ErrUnknownMap = errors.New("map not in pool")
var ErrMapTaken = errors.New("map already banned or picked")
var ErrMissingTeams = errors.New("veto needs both teams")
var ErrUnsupportedCommand = errors.New("unsupported command")
var ErrVetoCompleted = errors.New("veto already completed")

type Team string

const (
	Team1 Team = "team1"
	Team2 Team = "team2"
)

// Other returns the opposing team. Anything that is not Team2 counts as Team1.
func (t Team) Other() Team {
	if t == Team2 {
		return Team1
	}
	return Team2
}

type Action string

const (
	ActionBan  Action = "ban"
	ActionPick Action = "pick"
)

type TurnStep struct {
	Team   Team   `json:"team"`
	Action Action `json:"action"`
}

type GameVariant string

const (
	GameCS2  GameVariant = "cs2"
	GameCSGO GameVariant = "csgo" // legacy, same rules as cs2
	GameR6   GameVariant = "r6"
)

// ParseVariant maps free-form input to a known variant, defaulting to cs2.
func ParseVariant(s string) GameVariant {
	switch v := GameVariant(s); v {
	case GameCS2, GameCSGO, GameR6:
		return v
	default:
		return GameCS2
	}
}

type MapFormat string

const (
	FormatBO1 MapFormat = "bo1"
	FormatBO2 MapFormat = "bo2"
	FormatBO3 MapFormat = "bo3"
	FormatBO5 MapFormat = "bo5"
)

type BanEntry struct {
	Map  string `json:"map"`
	Team Team   `json:"team,omitempty"`
}

type PickEntry struct {
	Map  string `json:"map"`
	Team Team   `json:"team,omitempty"`
}

type MapScore struct {
	Map    string `json:"map"`
	Score1 int    `json:"score1"`
	Score2 int    `json:"score2"`
}

// VetoRecord is a snapshot of one veto session as the overlays see it.
// A nil *VetoRecord means there is no active veto.
type VetoRecord struct {
	Game         GameVariant `json:"game,omitempty"`
	Format       MapFormat   `json:"format"`
	AllMaps      []string    `json:"allMaps"`
	Bans         []BanEntry  `json:"bans"`
	Picks        []PickEntry `json:"picks"`
	Team1        string      `json:"team1"`
	Team2        string      `json:"team2"`
	StartingTeam Team        `json:"startingTeam,omitempty"`
	Scores       []MapScore  `json:"scores,omitempty"`
}

type CommandType string

const (
	CmdBanMap  CommandType = "BanMap"
	CmdPickMap CommandType = "PickMap"
)

type Command struct {
	Type CommandType `json:"type"`
	Team Team        `json:"team"`
	Map  string      `json:"map"`
}

type EventType string

const (
	EvtMapBanned       EventType = "MapBanned"
	EvtMapPicked       EventType = "MapPicked"
	EvtTurnAdvanced    EventType = "TurnAdvanced"
	EvtDeciderSelected EventType = "DeciderSelected"
	EvtVetoCompleted   EventType = "VetoCompleted"
)

type Event struct {
	Type EventType `json:"type"`
	Team Team      `json:"team,omitempty"`
	Map  string    `json:"map,omitempty"`
}

// Apply validates cmd against the veto order of rec and returns the events it
// produced together with the updated record. rec itself is never modified.
func Apply(rec VetoRecord, cmd Command) ([]Event, VetoRecord, error) {
	if rec.Team1 == "" || rec.Team2 == "" {
		return nil, rec, ErrMissingTeams
	}

	order := VetoOrder(rec.Format, len(rec.AllMaps), rec.StartingTeam)
	step, done := currentStep(rec, order)
	if done {
		return nil, rec, ErrVetoCompleted
	}

	var action Action
	switch cmd.Type {
	case CmdBanMap:
		action = ActionBan
	case CmdPickMap:
		action = ActionPick
	default:
		return nil, rec, ErrUnsupportedCommand
	}

	// Turn must match BOTH team & action
	if step.Team != cmd.Team || step.Action != action {
		return nil, rec, ErrWrongTurn
	}
	if !slices.Contains(rec.AllMaps, cmd.Map) {
		return nil, rec, ErrUnknownMap
	}
	if hasBan(rec, cmd.Map) || hasPick(rec, cmd.Map) {
		return nil, rec, ErrMapTaken
	}

	newRec := Clone(rec)
	var events []Event
	if action == ActionBan {
		newRec.Bans = append(newRec.Bans, BanEntry{Map: cmd.Map, Team: cmd.Team})
		events = append(events, Event{Type: EvtMapBanned, Team: cmd.Team, Map: cmd.Map})
	} else {
		newRec.Picks = append(newRec.Picks, PickEntry{Map: cmd.Map, Team: cmd.Team})
		events = append(events, Event{Type: EvtMapPicked, Team: cmd.Team, Map: cmd.Map})
	}
	events = append(events, Event{Type: EvtTurnAdvanced})

	if Cursor(newRec) == len(order) {
		if decider, ok := deciderFor(newRec); ok {
			events = append(events, Event{Type: EvtDeciderSelected, Map: decider})
		}
		events = append(events, Event{Type: EvtVetoCompleted})
	}
	return events, newRec, nil
}

func hasBan(rec VetoRecord, m string) bool {
	return slices.ContainsFunc(rec.Bans, func(b BanEntry) bool { return b.Map == m })
}

func hasPick(rec VetoRecord, m string) bool {
	return slices.ContainsFunc(rec.Picks, func(p PickEntry) bool { return p.Map == m })
}

func currentStep(rec VetoRecord, order []TurnStep) (TurnStep, bool) {
	cursor := Cursor(rec)
	if cursor >= len(order) {
		return TurnStep{}, true
	}
	return order[cursor], false
}

// deciderFor is the decider a completed veto leaves behind, if its format has one.
func deciderFor(rec VetoRecord) (string, bool) {
	if rec.Format == FormatBO2 {
		return "", false
	}
	for _, m := range rec.AllMaps {
		if !hasBan(rec, m) && !hasPick(rec, m) {
			return m, true
		}
	}
	return "", false
}
