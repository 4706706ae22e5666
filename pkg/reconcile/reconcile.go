// Package reconcile implements keyed reconciliation of a stored child
// collection against a submitted one. Rows present only in storage are
// deleted, rows present only in the submission are inserted, rows present in
// both are updated in place. Used for SOP steps, hazards and step-PPE links.
package reconcile

import "github.com/go-faster/errors"

var ErrDuplicateKey = errors.New("reconcile: duplicate key in submission")

// Pair couples a stored row with the submitted row that updates it.
type Pair[S, D any] struct {
	Stored    S
	Submitted D
}

// Result partitions a submission relative to storage. Slices preserve input
// order so writes are applied in program order.
type Result[S, D any] struct {
	ToInsert []D
	ToUpdate []Pair[S, D]
	ToDelete []S
}

// Diff computes the three-way partition. storedID extracts the identifier of
// a stored row; submittedID returns the identifier of a submitted row and
// false when the row carries none (a new row, classified as insert).
// Submitted ids unknown to storage also classify as inserts, so the insert
// path assigns a fresh identity rather than re-linking a stale one. A
// submission repeating the same id is rejected with ErrDuplicateKey.
func Diff[ID comparable, S, D any](
	stored []S,
	submitted []D,
	storedID func(S) ID,
	submittedID func(D) (ID, bool),
) (Result[S, D], error) {
	var out Result[S, D]

	storedByID := make(map[ID]S, len(stored))
	for _, s := range stored {
		storedByID[storedID(s)] = s
	}

	seen := make(map[ID]struct{}, len(submitted))
	for _, d := range submitted {
		id, ok := submittedID(d)
		if !ok {
			out.ToInsert = append(out.ToInsert, d)
			continue
		}
		if _, dup := seen[id]; dup {
			return Result[S, D]{}, errors.Wrapf(ErrDuplicateKey, "key %v", id)
		}
		seen[id] = struct{}{}

		if s, exists := storedByID[id]; exists {
			out.ToUpdate = append(out.ToUpdate, Pair[S, D]{Stored: s, Submitted: d})
		} else {
			out.ToInsert = append(out.ToInsert, d)
		}
	}

	for _, s := range stored {
		if _, kept := seen[storedID(s)]; !kept {
			out.ToDelete = append(out.ToDelete, s)
		}
	}

	return out, nil
}
