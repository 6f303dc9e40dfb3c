// Package merge combines two branch histories: it finds their merge base and
// reconciles every tracked path three ways.
package merge

import "fmt"

// Outcome is what a three-way merge does with one path.
type Outcome int

const (
	// Unchanged: current and other agree (both untouched, changed the same
	// way, or removed on both sides). Keep current.
	Unchanged Outcome = iota
	// OnlyOther: only the other side changed or added the path. Take other.
	OnlyOther
	// OnlyCurrent: only the current side changed the path. Keep current.
	OnlyCurrent
	// RemovedOther: other removed a path current left alone. Remove it.
	RemovedOther
	// RemovedCurrent: current removed a path other left alone. Stay removed.
	RemovedCurrent
	// Conflict: both sides changed the path differently, or one side removed
	// it while the other modified it.
	Conflict
)

func (o Outcome) String() string {
	switch o {
	case Unchanged:
		return "unchanged"
	case OnlyOther:
		return "only-other"
	case OnlyCurrent:
		return "only-current"
	case RemovedOther:
		return "removed-other"
	case RemovedCurrent:
		return "removed-current"
	case Conflict:
		return "conflict"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Classify decides a path's outcome from its snapshot identifiers in the
// merge base, the current tip and the other tip. An empty string means the
// path is absent from that commit. Identifiers compare content exactly
// because equal (path, bytes) pairs always hash the same.
func Classify(base, current, other string) Outcome {
	switch {
	case current == other:
		return Unchanged
	case base == current:
		if other == "" {
			return RemovedOther
		}
		return OnlyOther
	case base == other:
		if current == "" {
			return RemovedCurrent
		}
		return OnlyCurrent
	default:
		return Conflict
	}
}

// ConflictContent builds the file written for a conflicted path. A side that
// removed the path contributes empty content.
func ConflictContent(current, other []byte) []byte {
	out := make([]byte, 0, len(current)+len(other)+32)
	out = append(out, "<<<<<<< HEAD\n"...)
	out = append(out, current...)
	out = append(out, "=======\n"...)
	out = append(out, other...)
	out = append(out, ">>>>>>>\n"...)
	return out
}
