package notation

import (
	"fmt"

	"github.com/roach88/rally/internal/ir"
)

// TokenKind identifies the lexical class of a token.
type TokenKind int

const (
	TokSide     TokenKind = iota // side marker
	TokPlayer                    // one or two digit player number
	TokCode                      // action code letter
	TokPosition                  // serve position A-F
	TokHeight                    // pass height L, M, H
	TokZone                      // 1-9, 0, N, V
	TokSubzone                   // A-D after a court zone
	TokOutcome                   // "." or "/"
	TokDead                      // "~"
)

var tokenKindNames = [...]string{
	TokSide:     "side",
	TokPlayer:   "player",
	TokCode:     "code",
	TokPosition: "position",
	TokHeight:   "height",
	TokZone:     "zone",
	TokSubzone:  "subzone",
	TokOutcome:  "outcome",
	TokDead:     "dead",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenKindNames) {
		return tokenKindNames[k]
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// Token is one lexical element of a rally. Offset is the 0-based byte
// offset of Text in the rally string. Letters in Text are upper case.
type Token struct {
	Kind   TokenKind
	Text   string
	Offset int

	// Side is set for TokSide.
	Side ir.Side
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d", t.Kind, t.Text, t.Offset)
}

// Outcome is what an action did to the rally.
type Outcome int

const (
	Neutral Outcome = iota // the rally went on
	Scored                 // the action won the point
	Fault                  // the action lost the point
)

func (o Outcome) String() string {
	switch o {
	case Scored:
		return "scored"
	case Fault:
		return "fault"
	default:
		return "neutral"
	}
}

// Zone is the court zone an action sent the ball to: '1'..'9', '0' for
// out, 'N' for net, 'V' for overpass, or 0 when not recorded.
type Zone byte

// Zone markers that are not court areas.
const (
	ZoneNone     Zone = 0
	ZoneOut      Zone = '0'
	ZoneNet      Zone = 'N'
	ZoneOverpass Zone = 'V'
)

// IsSet reports whether a zone was recorded.
func (z Zone) IsSet() bool { return z != ZoneNone }

// IsCourt reports whether z is one of the nine court areas.
func (z Zone) IsCourt() bool { return z >= '1' && z <= '9' }

// EndsRally reports whether the ball cannot be played on after reaching z.
func (z Zone) EndsRally() bool { return z == ZoneOut || z == ZoneNet }

func (z Zone) String() string {
	switch z {
	case ZoneNone:
		return ""
	case ZoneOut:
		return "out"
	case ZoneNet:
		return "net"
	case ZoneOverpass:
		return "overpass"
	default:
		return "zone " + string(z)
	}
}
