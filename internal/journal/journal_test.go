package journal

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryJournal(t *testing.T) {
	j := Open("")
	require.False(t, j.Persistent())

	ex := j.Record(Exchange{RequestID: "r1", Message: "hi", Reply: "hello"})
	require.NotEmpty(t, ex.ID)
	require.False(t, ex.CreatedAt.IsZero())

	j.Record(Exchange{RequestID: "r2", Message: "again", Error: "boom"})

	got := j.Recent(10)
	require.Len(t, got, 2)
	require.Equal(t, "r1", got[0].RequestID)
	require.Equal(t, "boom", got[1].Error)

	require.Len(t, j.Recent(1), 1)
	require.Equal(t, "r2", j.Recent(1)[0].RequestID)
	require.Nil(t, j.Recent(0))
	require.NoError(t, j.Close())
}

func TestMemoryJournal_Bounded(t *testing.T) {
	j := Open("")
	for i := 0; i < memoryLimit+5; i++ {
		j.Record(Exchange{Message: fmt.Sprint(i)})
	}
	got := j.Recent(memoryLimit + 5)
	require.Len(t, got, memoryLimit)
	require.Equal(t, "5", got[0].Message)
}

func TestSQLiteJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	j := Open(path)
	require.True(t, j.Persistent())

	j.Record(Exchange{RequestID: "a", Message: "one", HistoryLen: 1, Reply: "r1"})
	j.Record(Exchange{RequestID: "b", Message: "two", HistoryLen: 3, Reply: "r2"})
	j.Record(Exchange{RequestID: "c", Message: "three", HistoryLen: 5, Error: "upstream"})
	require.NoError(t, j.Close())

	reopened := Open(path)
	defer reopened.Close()
	got := reopened.Recent(2)
	require.Len(t, got, 2)
	require.Equal(t, "b", got[0].RequestID)
	require.Equal(t, 3, got[0].HistoryLen)
	require.Equal(t, "c", got[1].RequestID)
	require.Equal(t, "upstream", got[1].Error)
}
