package notation

import (
	"fmt"

	"github.com/roach88/rally/internal/ir"
	"github.com/roach88/rally/internal/rules"
)

// Action is one recorded touch of the ball.
type Action struct {
	Player   int
	Side     ir.Side
	Category ir.Category
	Outcome  Outcome
	Zone     Zone
	Subzone  byte
	Position byte // serve position, 0 if not recorded
	Height   byte // receive/pass height, 0 if not recorded

	// Offset is where the action starts, including its side marker.
	Offset int

	// Marked is true when the side came from an explicit marker.
	Marked bool
}

// EndsRally reports whether nothing can follow a.
func (a Action) EndsRally() bool {
	return a.Outcome != Neutral || a.Zone.EndsRally()
}

func (a Action) String() string {
	s := fmt.Sprintf("%s #%d %s", a.Side, a.Player, a.Category)
	if a.Position != 0 {
		s += " from " + string(a.Position)
	}
	if a.Height != 0 {
		s += " height " + string(a.Height)
	}
	if a.Zone.IsSet() {
		s += " " + a.Zone.String()
		if a.Subzone != 0 {
			s += string(a.Subzone)
		}
	}
	if a.Outcome != Neutral {
		s += " " + a.Outcome.String()
	}
	return s
}

// Rally is an interpreted rally string.
type Rally struct {
	Actions []Action

	// Dead is set when the rally ended with "~".
	Dead       bool
	DeadOffset int

	// Award is the side named by a trailing side marker, or nil.
	Award       *ir.Side
	AwardOffset int
}

// Terminal returns the offset of the point-ending element: the "~"
// marker if present, otherwise the last action.
func (r Rally) Terminal() int {
	if r.Dead {
		return r.DeadOffset
	}
	return r.Actions[len(r.Actions)-1].Offset
}

// Interpret groups tokens into actions and attributes each to a side.
// state is only read: it tells which team a player number belongs to and
// who serves.
func Interpret(tokens []Token, state ir.MatchState, r rules.Rules) (Rally, error) {
	in := &interpreter{
		tokens:  tokens,
		state:   state,
		serving: state.Serving,
		seen: map[ir.Side]map[int]bool{
			ir.Home: {},
			ir.Away: {},
		},
	}
	if !in.serving.Valid() {
		in.serving = r.FirstServe
	}
	return in.run()
}

type interpreter struct {
	tokens  []Token
	pos     int
	state   ir.MatchState
	serving ir.Side
	seen    map[ir.Side]map[int]bool
	rally   Rally
}

func (in *interpreter) run() (Rally, error) {
	for in.pos < len(in.tokens) {
		tok := in.tokens[in.pos]
		switch tok.Kind {
		case TokSide:
			if in.pos == len(in.tokens)-1 {
				if err := in.award(tok); err != nil {
					return Rally{}, err
				}
				in.pos++
				continue
			}
			next := in.tokens[in.pos+1]
			if next.Kind != TokPlayer {
				return Rally{}, ir.NewInvalidInput(tok.Offset,
					"side marker %q must precede a player number or be the final token", tok.Text)
			}
			in.pos++
			if err := in.action(&tok); err != nil {
				return Rally{}, err
			}
		case TokPlayer:
			if err := in.action(nil); err != nil {
				return Rally{}, err
			}
		case TokDead:
			if err := in.dead(tok); err != nil {
				return Rally{}, err
			}
			in.pos++
		case TokOutcome:
			return Rally{}, ir.NewInvalidInput(tok.Offset, "outcome marker %q must directly follow an action", tok.Text)
		default:
			return Rally{}, ir.NewInvalidInput(tok.Offset, "unexpected %s %q", tok.Kind, tok.Text)
		}
	}

	if len(in.rally.Actions) == 0 {
		return Rally{}, ir.NewInvalidInput(0, "at least one action is required")
	}
	return in.rally, nil
}

// action consumes a player token, its code, modifiers and outcome.
func (in *interpreter) action(marker *Token) error {
	player := in.tokens[in.pos]
	code := in.tokens[in.pos+1]
	in.pos += 2

	a := Action{
		Category: codeCategories[code.Text[0]],
		Offset:   player.Offset,
	}
	a.Player = int(player.Text[0] - '0')
	if len(player.Text) == 2 {
		a.Player = a.Player*10 + int(player.Text[1]-'0')
	}
	if marker != nil {
		a.Offset = marker.Offset
		a.Side = marker.Side
		a.Marked = true
	}

	// modifiers and the outcome are written without spaces
	end := code.Offset + 1
modifiers:
	for ; in.pos < len(in.tokens) && in.tokens[in.pos].Offset == end; in.pos++ {
		tok := in.tokens[in.pos]
		switch tok.Kind {
		case TokPosition:
			a.Position = tok.Text[0]
		case TokHeight:
			a.Height = tok.Text[0]
		case TokZone:
			a.Zone = Zone(tok.Text[0])
		case TokSubzone:
			a.Subzone = tok.Text[0]
		case TokOutcome:
			a.Outcome = Fault
			if tok.Text == "." {
				a.Outcome = Scored
			}
			in.pos++
			break modifiers
		default:
			break modifiers
		}
		end += len(tok.Text)
	}

	if err := in.checkOrder(a); err != nil {
		return err
	}
	if err := in.resolveSide(&a); err != nil {
		return err
	}

	in.seen[a.Side][a.Player] = true
	in.rally.Actions = append(in.rally.Actions, a)
	return nil
}

func (in *interpreter) checkOrder(a Action) error {
	if in.rally.Dead || in.decided() {
		return ir.NewInvalidInput(a.Offset, "rally already decided, nothing may follow the point-ending action")
	}
	first := len(in.rally.Actions) == 0
	if first && a.Category != ir.Serve {
		return ir.NewInvalidInput(a.Offset, "first action must be a serve")
	}
	if !first && a.Category == ir.Serve {
		return ir.NewInvalidInput(a.Offset, "a serve may only be the first action")
	}
	return nil
}

// resolveSide attributes an unmarked action to a team.
func (in *interpreter) resolveSide(a *Action) error {
	if a.Marked {
		return nil
	}

	home := in.knows(ir.Home, a.Player)
	away := in.knows(ir.Away, a.Player)
	switch {
	case a.Category == ir.Serve && home == away:
		a.Side = in.serving
	case home && away:
		return ir.NewInvalidInput(a.Offset,
			"player %d plays for both teams, add a side marker", a.Player)
	case home:
		a.Side = ir.Home
	case away:
		a.Side = ir.Away
	default:
		return ir.NewInvalidInput(a.Offset,
			"unknown player %d, add a side marker", a.Player)
	}
	return nil
}

func (in *interpreter) knows(side ir.Side, player int) bool {
	return in.seen[side][player] || in.state.Team(side).HasPlayer(player)
}

func (in *interpreter) decided() bool {
	n := len(in.rally.Actions)
	return n > 0 && in.rally.Actions[n-1].EndsRally()
}

func (in *interpreter) dead(tok Token) error {
	if len(in.rally.Actions) == 0 {
		return ir.NewInvalidInput(tok.Offset, "dead ball marker %q must follow an action", tok.Text)
	}
	if in.rally.Dead || in.decided() {
		return ir.NewInvalidInput(tok.Offset, "rally already decided, nothing may follow the point-ending action")
	}
	in.rally.Dead = true
	in.rally.DeadOffset = tok.Offset
	return nil
}

func (in *interpreter) award(tok Token) error {
	if len(in.rally.Actions) == 0 {
		return ir.NewInvalidInput(0, "at least one action is required")
	}
	side := tok.Side
	in.rally.Award = &side
	in.rally.AwardOffset = tok.Offset
	return nil
}
