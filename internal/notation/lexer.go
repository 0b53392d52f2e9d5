package notation

import (
	"strings"
	"unicode/utf8"

	"github.com/roach88/rally/internal/ir"
	"github.com/roach88/rally/internal/rules"
)

// codeCategories maps action code letters to statistic categories.
var codeCategories = map[byte]ir.Category{
	'S': ir.Serve,
	'R': ir.Receive,
	'P': ir.Pass,
	'E': ir.Set,
	'H': ir.Hit,
	'B': ir.Block,
	'F': ir.Freeball,
}

// Lex scans rally into tokens. It fails with an InvalidInput reason at
// the first character that cannot start or continue a token.
func Lex(rally string, prefixes rules.Prefixes) ([]Token, error) {
	l := &lexer{src: rally, prefixes: prefixes}
	if err := l.run(); err != nil {
		return nil, err
	}
	return l.tokens, nil
}

type lexer struct {
	src      string
	pos      int
	prefixes rules.Prefixes
	tokens   []Token
}

func (l *lexer) run() error {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case isSpace(c):
			l.pos++
		case isDigit(c):
			if l.glued() {
				return ir.NewInvalidInput(l.pos, "actions must be separated by a space")
			}
			if err := l.action(); err != nil {
				return err
			}
		case c == '.' || c == '/':
			l.emit(TokOutcome, 1)
		case c == '~':
			l.emit(TokDead, 1)
		default:
			side, ok := l.prefixes.SideOf(c)
			if !ok {
				return l.unexpected()
			}
			l.tokens = append(l.tokens, Token{Kind: TokSide, Text: string(c), Offset: l.pos, Side: side})
			l.pos++
		}
	}
	return nil
}

// glued reports whether a player number starts right where the previous
// action, outcome or marker ended. Only a side marker may touch it.
func (l *lexer) glued() bool {
	if len(l.tokens) == 0 {
		return false
	}
	last := l.tokens[len(l.tokens)-1]
	return last.Kind != TokSide && last.Offset+len(last.Text) == l.pos
}

// action scans player, code and the modifiers the code allows.
func (l *lexer) action() error {
	start := l.pos
	end := start
	for end < len(l.src) && isDigit(l.src[end]) {
		if end-start == 2 {
			return ir.NewInvalidInput(end, "player number %q has more than two digits", l.src[start:end+1])
		}
		end++
	}
	digits := l.src[start:end]

	if end >= len(l.src) {
		return ir.NewInvalidInput(start, "player %s is not followed by an action code", digits)
	}
	code := upper(l.src[end])
	if _, ok := codeCategories[code]; !ok {
		return ir.NewInvalidInput(start, "player %s is not followed by an action code", digits)
	}

	l.emit(TokPlayer, len(digits))
	l.tokens = append(l.tokens, Token{Kind: TokCode, Text: string(code), Offset: l.pos})
	l.pos++

	switch code {
	case 'S':
		l.optional(TokPosition, "ABCDEF")
		return l.zone()
	case 'R', 'P':
		l.optional(TokHeight, "LMH")
		return l.zone()
	case 'H', 'B', 'F':
		return l.zone()
	default:
		return nil
	}
}

// zone scans an optional zone and its subzone.
func (l *lexer) zone() error {
	if l.pos >= len(l.src) {
		return nil
	}
	c := upper(l.src[l.pos])
	switch {
	case c >= '1' && c <= '9':
		// zones are one digit; a digit after it is refused as a glued action
		l.tokens = append(l.tokens, Token{Kind: TokZone, Text: string(c), Offset: l.pos})
		l.pos++
		l.optional(TokSubzone, "ABCD")
		return nil
	case c == '0' || c == 'N' || c == 'V':
		l.tokens = append(l.tokens, Token{Kind: TokZone, Text: string(c), Offset: l.pos})
		l.pos++
		if l.pos < len(l.src) && strings.IndexByte("ABCD", upper(l.src[l.pos])) >= 0 {
			return ir.NewInvalidInput(l.pos, "subzone %q is not allowed after %s", l.src[l.pos:l.pos+1], Zone(c))
		}
		return nil
	default:
		return nil
	}
}

// optional emits a one-letter token of kind if the next character is in set.
func (l *lexer) optional(kind TokenKind, set string) {
	if l.pos >= len(l.src) {
		return
	}
	c := upper(l.src[l.pos])
	if strings.IndexByte(set, c) < 0 {
		return
	}
	l.tokens = append(l.tokens, Token{Kind: kind, Text: string(c), Offset: l.pos})
	l.pos++
}

func (l *lexer) emit(kind TokenKind, n int) {
	l.tokens = append(l.tokens, Token{Kind: kind, Text: l.src[l.pos : l.pos+n], Offset: l.pos})
	l.pos += n
}

func (l *lexer) unexpected() error {
	r, _ := utf8.DecodeRuneInString(l.src[l.pos:])
	return ir.NewInvalidInput(l.pos, "unexpected character %q", r)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}
