// Package selector implements the predicate algebra callers use to pick
// which cached resources they want, independent of the cache itself.
// A Selector is a tagged union (a "discriminated selector") so it can
// be serialized and sent across the update RPC, unlike a closure.
package selector

import "github.com/canvasmirror/viewcache"

// Kind discriminates the union stored in a Selector.
type Kind byte

const (
	KindAll Kind = iota
	KindNone
	KindID
	KindIDs
	KindNot
	KindOr
	KindAnd
	KindXor
)

// Selector matches resources by their Id. Composite variants (Not, Or,
// And, Xor) hold one or two sub-selectors in Operands; trivial variants
// (All, None, Id, Ids) ignore Operands.
type Selector struct {
	Kind     Kind          `msgpack:"kind"`
	ID       viewcache.Id  `msgpack:"id,omitempty"`
	IDs      []viewcache.Id `msgpack:"ids,omitempty"`
	Operands []Selector    `msgpack:"operands,omitempty"`
}

// All matches every resource.
func All() Selector { return Selector{Kind: KindAll} }

// None matches no resource.
func None() Selector { return Selector{Kind: KindNone} }

// ByID matches a single resource id.
func ByID(id viewcache.Id) Selector { return Selector{Kind: KindID, ID: id} }

// ByIDs matches any of the given resource ids.
func ByIDs(ids ...viewcache.Id) Selector {
	cp := make([]viewcache.Id, len(ids))
	copy(cp, ids)
	return Selector{Kind: KindIDs, IDs: cp}
}

// Not negates a.
func Not(a Selector) Selector { return Selector{Kind: KindNot, Operands: []Selector{a}} }

// Or matches resources a or b (or both) match.
func Or(a, b Selector) Selector { return Selector{Kind: KindOr, Operands: []Selector{a, b}} }

// And matches resources both a and b match.
func And(a, b Selector) Selector { return Selector{Kind: KindAnd, Operands: []Selector{a, b}} }

// Xor matches resources exactly one of a or b matches.
func Xor(a, b Selector) Selector { return Selector{Kind: KindXor, Operands: []Selector{a, b}} }

// Matches evaluates the selector against a resource id by linear scan
// of its tagged union, recursing into composite variants. Malformed
// selectors (e.g. a Not with no operand) conservatively match nothing.
func (s Selector) Matches(id viewcache.Id) bool {
	return s.MatchesOptional(&id)
}

// MatchesOptional evaluates the selector against a resource that may
// have no id field at all (id == nil), such as a Submission, whose
// identity is the composite (assignment, user, attempt) key rather
// than a single Id. Per spec §4.8, Id and Ids evaluate to false against such a
// resource; every other variant is unaffected, so e.g. Not(Id(x))
// still evaluates to true.
func (s Selector) MatchesOptional(id *viewcache.Id) bool {
	switch s.Kind {
	case KindAll:
		return true
	case KindNone:
		return false
	case KindID:
		return id != nil && s.ID == *id
	case KindIDs:
		if id == nil {
			return false
		}
		for _, want := range s.IDs {
			if want == *id {
				return true
			}
		}
		return false
	case KindNot:
		if len(s.Operands) != 1 {
			return false
		}
		return !s.Operands[0].MatchesOptional(id)
	case KindOr:
		if len(s.Operands) != 2 {
			return false
		}
		return s.Operands[0].MatchesOptional(id) || s.Operands[1].MatchesOptional(id)
	case KindAnd:
		if len(s.Operands) != 2 {
			return false
		}
		return s.Operands[0].MatchesOptional(id) && s.Operands[1].MatchesOptional(id)
	case KindXor:
		if len(s.Operands) != 2 {
			return false
		}
		return s.Operands[0].MatchesOptional(id) != s.Operands[1].MatchesOptional(id)
	default:
		return false
	}
}
