package journal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmsalzman/volink/internal/link"
)

func testEvent(dir link.Direction, volume float64) link.Event {
	return link.Event{
		Time:      time.Now(),
		Direction: dir,
		FromID:    "dev-a",
		FromName:  "Speakers",
		ToID:      "dev-b",
		ToName:    "Headphones",
		Volume:    volume,
	}
}

func TestJournal_RecordAndRecent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.jsonl")
	j, err := Open(path)
	require.NoError(t, err)
	defer j.Close()

	require.NoError(t, j.Record(testEvent(link.DirectionAToB, 0.5)))
	require.NoError(t, j.Record(testEvent(link.DirectionBToA, 0.7)))

	assert.Equal(t, 2, j.Count())

	recent := j.Recent(0)
	require.Len(t, recent, 2)
	// Newest first.
	assert.Equal(t, string(link.DirectionBToA), recent[0].Direction)
	assert.InDelta(t, 0.7, recent[0].Volume, 1e-9)
	assert.NotEmpty(t, recent[0].ID)

	recent = j.Recent(1)
	require.Len(t, recent, 1)
	assert.Equal(t, string(link.DirectionBToA), recent[0].Direction)
}

func TestJournal_HydratesAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.jsonl")

	j, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, j.Record(testEvent(link.DirectionAToB, 0.42)))
	require.NoError(t, j.Close())

	j, err = Open(path)
	require.NoError(t, err)
	defer j.Close()

	require.Equal(t, 1, j.Count())
	assert.InDelta(t, 0.42, j.Recent(1)[0].Volume, 1e-9)
}

func TestJournal_SkipsCorruptedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.jsonl")
	content := `{"id":"01ABC","timestamp":1700000000,"direction":"a-to-b","volume":0.5}
not json at all
{"id":"01DEF","timestamp":1700000001,"direction":"b-to-a","volume":0.6}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	j, err := Open(path)
	require.NoError(t, err)
	defer j.Close()

	assert.Equal(t, 2, j.Count())
}

func TestJournal_Prune(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.jsonl")
	j, err := Open(path)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		require.NoError(t, j.Record(testEvent(link.DirectionAToB, float64(i)/10)))
	}

	require.NoError(t, j.Prune(3))
	assert.Equal(t, 3, j.Count())

	// The newest entries survive.
	recent := j.Recent(0)
	assert.InDelta(t, 0.9, recent[0].Volume, 1e-9)
	assert.InDelta(t, 0.7, recent[2].Volume, 1e-9)
	require.NoError(t, j.Close())

	// Prune is durable across reopen.
	j, err = Open(path)
	require.NoError(t, err)
	defer j.Close()
	assert.Equal(t, 3, j.Count())
}

func TestJournal_PruneNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.jsonl")
	j, err := Open(path)
	require.NoError(t, err)
	defer j.Close()

	require.NoError(t, j.Record(testEvent(link.DirectionAToB, 0.5)))
	require.NoError(t, j.Prune(0))
	require.NoError(t, j.Prune(100))
	assert.Equal(t, 1, j.Count())
}

func TestJournal_ClosedOperations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.jsonl")
	j, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, j.Close())

	assert.ErrorIs(t, j.Record(testEvent(link.DirectionAToB, 0.5)), ErrClosed)
	assert.ErrorIs(t, j.Prune(1), ErrClosed)
	// Double close is safe.
	assert.NoError(t, j.Close())
}
