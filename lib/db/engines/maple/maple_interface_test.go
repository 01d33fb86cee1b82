package maple

import (
	"fmt"
	"testing"

	"github.com/ValentinKolb/fundb/lib/db"
	dbtesting "github.com/ValentinKolb/fundb/lib/db/testing"
	"github.com/ValentinKolb/fundb/lib/db/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// uniqueName returns a database name that no other test uses
func uniqueName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, util.GenerateSeed())
}

func Test(t *testing.T) {
	dbtesting.RunKVDBTests(t, "MapleDB", func() db.KVDB {
		database, err := Open(uniqueName("durable"), false)
		require.NoError(t, err)
		return database
	})

	dbtesting.RunKVDBTests(t, "MapleDB(ephemeral)", func() db.KVDB {
		database, err := Open(uniqueName("ephemeral"), true)
		require.NoError(t, err)
		return database
	})
}

func Benchmark(b *testing.B) {
	dbtesting.RunKVDBBenchmarks(b, "MapleDB", func() db.KVDB {
		database, err := Open(uniqueName("bench"), true)
		if err != nil {
			b.Fatal(err)
		}
		return database
	})
}

// TestReopenKeepsData tests that a non-ephemeral database outlives its handle
func TestReopenKeepsData(t *testing.T) {
	name := uniqueName("reopen")

	first, err := Open(name, false)
	require.NoError(t, err)
	require.NoError(t, first.Set([]byte("k"), []byte("v")))
	require.NoError(t, first.Close())

	_, _, err = first.Get([]byte("k"))
	assert.ErrorIs(t, err, db.ErrClosed)

	second, err := Open(name, false)
	require.NoError(t, err)
	defer second.Close()
	value, ok, err := second.Get([]byte("k"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v"), value)
}

// TestEphemeralDropsData tests that closing an ephemeral database forgets it
func TestEphemeralDropsData(t *testing.T) {
	name := uniqueName("drop")

	first, err := Open(name, true)
	require.NoError(t, err)
	require.NoError(t, first.Set([]byte("k"), []byte("v")))
	assert.True(t, first.SupportsFeature(db.FeatureEphemeral))
	assert.False(t, first.SupportsFeature(db.FeatureDurable))
	require.NoError(t, first.Close())
	require.NoError(t, first.Close())

	second, err := Open(name, true)
	require.NoError(t, err)
	defer second.Close()
	_, ok, err := second.Get([]byte("k"))
	require.NoError(t, err)
	assert.False(t, ok)
}

// TestRangeCallbackMayWrite tests that Range does not hold the lock while calling back
func TestRangeCallbackMayWrite(t *testing.T) {
	database, err := Open(uniqueName("write-in-range"), true)
	require.NoError(t, err)
	defer database.Close()

	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, database.Set([]byte(k), []byte(k)))
	}

	var seen []string
	require.NoError(t, database.Range(nil, nil, func(key, _ []byte) bool {
		seen = append(seen, string(key))
		require.NoError(t, database.Delete(key))
		return true
	}))
	assert.Equal(t, []string{"a", "b", "c"}, seen)

	info := database.GetInfo()
	assert.Equal(t, db.ImplMaple, info.DbType)
	assert.Zero(t, info.SizeBytes)
}
