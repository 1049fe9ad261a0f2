package event

import (
	"encoding/json"
	"fmt"

	"scrabbled/internal/board"
)

// runeSeq is a []rune that marshals as a JSON array of single-character
// strings, matching the wire format's letter lists.
type runeSeq []rune

func (r runeSeq) MarshalJSON() ([]byte, error) {
	strs := make([]string, len(r))
	for i, c := range r {
		strs[i] = string(c)
	}
	return json.Marshal(strs)
}

func (r *runeSeq) UnmarshalJSON(data []byte) error {
	var strs []string
	if err := json.Unmarshal(data, &strs); err != nil {
		return err
	}
	out := make([]rune, 0, len(strs))
	for _, s := range strs {
		runes := []rune(s)
		if len(runes) != 1 {
			return fmt.Errorf("event: letter %q is not a single character", s)
		}
		out = append(out, runes[0])
	}
	*r = out
	return nil
}

type wireWord struct {
	Word      string `json:"word"`
	StartX    int    `json:"start_x"`
	StartY    int    `json:"start_y"`
	Direction string `json:"direction"`
}

func toWireWord(w board.BoardWord) wireWord {
	return wireWord{Word: w.Word, StartX: w.Start.X, StartY: w.Start.Y, Direction: w.Direction.String()}
}

func fromWireWord(w wireWord) (board.BoardWord, error) {
	dir, err := board.ParseDirection(w.Direction)
	if err != nil {
		return board.BoardWord{}, err
	}
	return board.BoardWord{Word: w.Word, Start: board.Position{X: w.StartX, Y: w.StartY}, Direction: dir}, nil
}

type wireWords struct {
	Words []wireWord `json:"words"`
}

func toWireWords(ws board.BoardWords) wireWords {
	out := wireWords{Words: make([]wireWord, len(ws))}
	for i, w := range ws {
		out.Words[i] = toWireWord(w)
	}
	return out
}

func fromWireWords(ws wireWords) (board.BoardWords, error) {
	out := make(board.BoardWords, len(ws.Words))
	for i, w := range ws.Words {
		bw, err := fromWireWord(w)
		if err != nil {
			return nil, err
		}
		out[i] = bw
	}
	return out, nil
}

type wireBonus struct {
	X          int `json:"x"`
	Y          int `json:"y"`
	Multiplier int `json:"multiplier"`
}

type wireBoardSettings struct {
	Width    int         `json:"width"`
	Height   int         `json:"height"`
	InitWord *wireWord   `json:"init_word,omitempty"`
	Bonuses  []wireBonus `json:"bonuses"`
}

func toWireSettings(s board.Settings) wireBoardSettings {
	out := wireBoardSettings{Width: s.Width, Height: s.Height, Bonuses: make([]wireBonus, len(s.Bonuses))}
	for i, b := range s.Bonuses {
		out.Bonuses[i] = wireBonus{X: b.Position.X, Y: b.Position.Y, Multiplier: b.Multiplier}
	}
	if s.InitWord != nil {
		w := toWireWord(*s.InitWord)
		out.InitWord = &w
	}
	return out
}

func fromWireSettings(w wireBoardSettings) (board.Settings, error) {
	out := board.Settings{Width: w.Width, Height: w.Height, Bonuses: make([]board.Bonus, len(w.Bonuses))}
	for i, b := range w.Bonuses {
		out.Bonuses[i] = board.Bonus{Position: board.Position{X: b.X, Y: b.Y}, Multiplier: b.Multiplier}
	}
	if w.InitWord != nil {
		bw, err := fromWireWord(*w.InitWord)
		if err != nil {
			return board.Settings{}, err
		}
		out.InitWord = &bw
	}
	return out, nil
}

// envelope is the common on-the-wire shape of every event.
type envelope struct {
	Name      Name            `json:"name"`
	Timestamp int64           `json:"timestamp"`
	Sequence  int             `json:"sequence"`
	GameID    int             `json:"game_id"`
	Params    json.RawMessage `json:"params"`
}

type gameInitParams struct {
	Players []string          `json:"players"`
	Letters runeSeq           `json:"letters"`
	Board   wireBoardSettings `json:"board"`
}

type gameStartParams struct {
	PlayerToStart *string `json:"player_to_start,omitempty"`
}

type playerAddLettersParams struct {
	Player  string  `json:"player"`
	Letters runeSeq `json:"letters"`
}

type playerMoveParams struct {
	Player          string    `json:"player"`
	Words           wireWords `json:"words"`
	ExchangeLetters runeSeq   `json:"exchange_letters"`
}

// Marshal encodes an Event to its canonical wire JSON.
func Marshal(e Event) ([]byte, error) {
	meta := e.Meta()
	var params any
	switch v := e.(type) {
	case GameInit:
		params = gameInitParams{Players: v.Players, Letters: runeSeq(v.Letters), Board: toWireSettings(v.Board)}
	case GameStart:
		params = gameStartParams{PlayerToStart: v.PlayerToStart}
	case PlayerAddLetters:
		params = playerAddLettersParams{Player: v.Player, Letters: runeSeq(v.Letters)}
	case PlayerMove:
		params = playerMoveParams{Player: v.Player, Words: toWireWords(v.Words), ExchangeLetters: runeSeq(v.ExchangeLetters)}
	default:
		return nil, fmt.Errorf("event: unknown variant %T", e)
	}
	rawParams, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{
		Name:      e.Name(),
		Timestamp: meta.Timestamp,
		Sequence:  meta.Sequence,
		GameID:    meta.GameID,
		Params:    rawParams,
	})
}

// ErrUnknownEventName is returned by Unmarshal for an unrecognized
// "name" field.
var ErrUnknownEventName = fmt.Errorf("event: unknown event name")

// Unmarshal decodes the canonical wire JSON back into an Event, dispatching
// on the "name" field.
func Unmarshal(data []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	common := Common{Sequence: env.Sequence, GameID: env.GameID, Timestamp: env.Timestamp}

	switch env.Name {
	case NameGameInit:
		var p gameInitParams
		if err := json.Unmarshal(env.Params, &p); err != nil {
			return nil, err
		}
		settings, err := fromWireSettings(p.Board)
		if err != nil {
			return nil, err
		}
		return GameInit{Common: common, Players: p.Players, Letters: []rune(p.Letters), Board: settings}, nil

	case NameGameStart:
		var p gameStartParams
		if err := json.Unmarshal(env.Params, &p); err != nil {
			return nil, err
		}
		return GameStart{Common: common, PlayerToStart: p.PlayerToStart}, nil

	case NamePlayerAddLetters:
		var p playerAddLettersParams
		if err := json.Unmarshal(env.Params, &p); err != nil {
			return nil, err
		}
		return PlayerAddLetters{Common: common, Player: p.Player, Letters: []rune(p.Letters)}, nil

	case NamePlayerMove:
		var p playerMoveParams
		if err := json.Unmarshal(env.Params, &p); err != nil {
			return nil, err
		}
		words, err := fromWireWords(p.Words)
		if err != nil {
			return nil, err
		}
		return PlayerMove{Common: common, Player: p.Player, Words: words, ExchangeLetters: []rune(p.ExchangeLetters)}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEventName, env.Name)
	}
}
