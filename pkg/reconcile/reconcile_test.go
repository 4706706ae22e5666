package reconcile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldops/sopdesk/pkg/reconcile"
)

type storedRow struct {
	ID   int
	Name string
}

type submittedRow struct {
	ID   int // zero means new
	Name string
}

func diff(t *testing.T, stored []storedRow, submitted []submittedRow) reconcile.Result[storedRow, submittedRow] {
	t.Helper()
	res, err := reconcile.Diff(
		stored,
		submitted,
		func(s storedRow) int { return s.ID },
		func(d submittedRow) (int, bool) { return d.ID, d.ID != 0 },
	)
	require.NoError(t, err)
	return res
}

func TestDiff_PartitionsInsertsUpdatesDeletes(t *testing.T) {
	stored := []storedRow{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}, {ID: 3, Name: "c"}}
	submitted := []submittedRow{
		{ID: 1, Name: "a2"},
		{ID: 0, Name: "new"},
		{ID: 3, Name: "c"},
	}

	res := diff(t, stored, submitted)

	require.Len(t, res.ToInsert, 1)
	assert.Equal(t, "new", res.ToInsert[0].Name)

	require.Len(t, res.ToUpdate, 2)
	assert.Equal(t, 1, res.ToUpdate[0].Stored.ID)
	assert.Equal(t, "a2", res.ToUpdate[0].Submitted.Name)
	assert.Equal(t, 3, res.ToUpdate[1].Stored.ID)

	require.Len(t, res.ToDelete, 1)
	assert.Equal(t, 2, res.ToDelete[0].ID)
}

func TestDiff_IdempotentOnUnchangedSubmission(t *testing.T) {
	stored := []storedRow{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}}
	submitted := []submittedRow{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}}

	res := diff(t, stored, submitted)

	assert.Empty(t, res.ToInsert)
	assert.Empty(t, res.ToDelete)
	assert.Len(t, res.ToUpdate, 2)
}

func TestDiff_EmptySubmissionDeletesAll(t *testing.T) {
	stored := []storedRow{{ID: 1}, {ID: 2}}

	res := diff(t, stored, nil)

	assert.Empty(t, res.ToInsert)
	assert.Empty(t, res.ToUpdate)
	assert.Len(t, res.ToDelete, 2)
}

func TestDiff_UnknownIDClassifiesAsInsert(t *testing.T) {
	stored := []storedRow{{ID: 1, Name: "a"}}
	submitted := []submittedRow{{ID: 99, Name: "ghost"}}

	res := diff(t, stored, submitted)

	require.Len(t, res.ToInsert, 1)
	assert.Equal(t, "ghost", res.ToInsert[0].Name)
	assert.Len(t, res.ToDelete, 1)
}

func TestDiff_DuplicateSubmittedIDRejected(t *testing.T) {
	stored := []storedRow{{ID: 1}}
	submitted := []submittedRow{{ID: 1, Name: "x"}, {ID: 1, Name: "y"}}

	_, err := reconcile.Diff(
		stored,
		submitted,
		func(s storedRow) int { return s.ID },
		func(d submittedRow) (int, bool) { return d.ID, d.ID != 0 },
	)
	require.ErrorIs(t, err, reconcile.ErrDuplicateKey)
}
