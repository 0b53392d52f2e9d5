// Package engine applies rally notation to a volleyball match record.
//
// Pipeline, strictly linear, the first failure ends the call:
//
//	ValidateState -> notation.Lex -> notation.Interpret -> Resolve
//	              -> Accumulate -> Transition -> ir.ParseResult
//
// Every stage is a pure function of its inputs. A rejected rally leaves
// the caller's record untouched: the new record is built on a clone and
// only returned once every stage has succeeded.
//
// Set and match rules come from rules.Rules: a set is won at the set's
// target with a lead of MinLead, the deciding set is played to
// DecidingSetPoints, and the match ends when a team reaches SetsToWin.
package engine
