// Package notation turns a rally string into the actions it records.
//
// Lex scans the text into tokens that carry byte offsets. Interpret groups
// the tokens into actions and attributes each action to a side, using the
// match state only to look up which team a player belongs to.
//
// Grammar (letters are case insensitive, whitespace separates groups):
//
//	rally    := action+ [ "~" ] [ side ]
//	action   := [ side ] player code modifiers [ "." | "/" ]
//	player   := digit [ digit ]
//	code     := S | R | P | E | H | B | F
//	zone     := 1-9 [ A-D ] | 0 | N | V
//
// A serve takes a position A-F and a zone; a receive or pass takes a
// height L, M or H and a zone; a hit, block or freeball takes a zone; a
// set takes nothing. "." means the action won the point and "/" that it
// lost it. "~" marks a dead ball whose last touch was not recorded. A
// side marker as the final token names the team that won the point.
package notation
