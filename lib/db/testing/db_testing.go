package testing

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/ValentinKolb/fundb/lib/db"
)

// DBFactory is a function that creates a new, empty instance of a KVDB implementation
type DBFactory func() db.KVDB

// RunKVDBTests runs a comprehensive test suite for a KVDB implementation.
func RunKVDBTests(t *testing.T, name string, factory DBFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Set&Get", func(t *testing.T) {
			testSetGet(t, factory())
		})

		t.Run("Delete", func(t *testing.T) {
			testDelete(t, factory())
		})

		t.Run("RangeOrder", func(t *testing.T) {
			testRangeOrder(t, factory())
		})

		t.Run("RangeBounds", func(t *testing.T) {
			testRangeBounds(t, factory())
		})

		t.Run("RangeStop", func(t *testing.T) {
			testRangeStop(t, factory())
		})

		t.Run("EdgeCases", func(t *testing.T) {
			testEdgeCases(t, factory())
		})

		t.Run("Info", func(t *testing.T) {
			testInfo(t, factory())
		})

		t.Run("RealisticUsage", func(t *testing.T) {
			testRealisticUsage(t, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// Checks if the database supports the specified feature
// Skip the test if it is not supported
func requireFeature(t testing.TB, database db.KVDB, feature db.Feature) {
	if !database.SupportsFeature(feature) {
		t.Skip()
	}
}

func mustSet(t testing.TB, database db.KVDB, key, value []byte) {
	t.Helper()
	if err := database.Set(key, value); err != nil {
		t.Fatalf("Set(%q) failed: %v", key, err)
	}
}

func u64Key(i uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], i)
	return b[:]
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testSetGet(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet)
	requireFeature(t, database, db.FeatureGet)

	testKey := []byte("test-key")
	testValue1 := []byte("test-value1")
	testValue2 := []byte("test-value2")

	mustSet(t, database, testKey, testValue1)

	result, exists, err := database.Get(testKey)
	if err != nil || !exists {
		t.Errorf("Expected key %s to exist after Set (err=%v)", testKey, err)
	}

	if !bytes.Equal(result, testValue1) {
		t.Errorf("Expected value %s, got %s", testValue1, result)
	}

	mustSet(t, database, testKey, testValue2)

	result, exists, _ = database.Get(testKey)
	if !exists {
		t.Errorf("Expected key %s to exist after Set", testKey)
	}

	if !bytes.Equal(result, testValue2) {
		t.Errorf("Expected value %s, got %s", testValue2, result)
	}

	_, exists, err = database.Get([]byte("nonexistent-key"))
	if err != nil {
		t.Errorf("Get of a missing key must not fail: %v", err)
	}
	if exists {
		t.Errorf("Expected nonexistent key to return exists=false")
	}

	retrievedValue, _, _ := database.Get(testKey)
	retrievedValue[0] = 'X'

	originalValue, _, _ := database.Get(testKey)
	if bytes.Equal(retrievedValue, originalValue) {
		t.Errorf("Get should return a copy, not a reference to the stored value")
	}
}

func testDelete(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet)
	requireFeature(t, database, db.FeatureGet)
	requireFeature(t, database, db.FeatureDelete)

	testKey := []byte("delete-test-key")
	testValue := []byte("delete-test-value")

	mustSet(t, database, testKey, testValue)

	if _, exists, _ := database.Get(testKey); !exists {
		t.Errorf("Expected key %s to exist after Set", testKey)
	}

	if err := database.Delete(testKey); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, exists, _ := database.Get(testKey); exists {
		t.Errorf("Expected key %s to not exist after Delete", testKey)
	}

	if err := database.Delete([]byte("nonexistent-key")); err != nil {
		t.Errorf("Deleting a missing key must not fail: %v", err)
	}
}

func testRangeOrder(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet)
	requireFeature(t, database, db.FeatureRange)

	// insert in reverse order, expect ascending order back
	const n = 300
	for i := n - 1; i >= 0; i-- {
		mustSet(t, database, u64Key(uint64(i)), []byte(fmt.Sprintf("v%d", i)))
	}

	next := uint64(0)
	err := database.Range(nil, nil, func(key, value []byte) bool {
		got := binary.BigEndian.Uint64(key)
		if got != next {
			t.Errorf("Expected key %d, got %d", next, got)
		}
		if want := fmt.Sprintf("v%d", got); string(value) != want {
			t.Errorf("Expected value %s, got %s", want, value)
		}
		next++
		return true
	})
	if err != nil {
		t.Fatalf("Range failed: %v", err)
	}
	if next != n {
		t.Errorf("Expected %d entries, got %d", n, next)
	}
}

func testRangeBounds(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet)
	requireFeature(t, database, db.FeatureRange)

	for i := uint64(0); i < 10; i++ {
		mustSet(t, database, u64Key(i), []byte{byte(i)})
	}

	var seen []uint64
	err := database.Range(u64Key(3), u64Key(7), func(key, _ []byte) bool {
		seen = append(seen, binary.BigEndian.Uint64(key))
		return true
	})
	if err != nil {
		t.Fatalf("Range failed: %v", err)
	}
	want := []uint64{3, 4, 5, 6}
	if fmt.Sprint(seen) != fmt.Sprint(want) {
		t.Errorf("Expected %v, got %v", want, seen)
	}

	// only a lower bound
	seen = seen[:0]
	_ = database.Range(u64Key(8), nil, func(key, _ []byte) bool {
		seen = append(seen, binary.BigEndian.Uint64(key))
		return true
	})
	if fmt.Sprint(seen) != fmt.Sprint([]uint64{8, 9}) {
		t.Errorf("Expected [8 9], got %v", seen)
	}

	// empty range
	count := 0
	_ = database.Range(u64Key(5), u64Key(5), func(_, _ []byte) bool {
		count++
		return true
	})
	if count != 0 {
		t.Errorf("Expected empty range, got %d entries", count)
	}
}

func testRangeStop(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet)
	requireFeature(t, database, db.FeatureRange)

	for i := uint64(0); i < 10; i++ {
		mustSet(t, database, u64Key(i), []byte{byte(i)})
	}

	count := 0
	err := database.Range(nil, nil, func(_, _ []byte) bool {
		count++
		return count < 4
	})
	if err != nil {
		t.Fatalf("Range failed: %v", err)
	}
	if count != 4 {
		t.Errorf("Expected Range to stop after 4 entries, got %d", count)
	}
}

func testEdgeCases(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet)
	requireFeature(t, database, db.FeatureGet)

	// empty value
	mustSet(t, database, []byte("empty"), []byte{})
	value, exists, err := database.Get([]byte("empty"))
	if err != nil || !exists {
		t.Errorf("Expected empty value to exist (err=%v)", err)
	}
	if len(value) != 0 {
		t.Errorf("Expected empty value, got %v", value)
	}

	// binary key with zero bytes
	binKey := []byte{0, 0, 1, 0, 0xff}
	mustSet(t, database, binKey, []byte("bin"))
	value, exists, _ = database.Get(binKey)
	if !exists || string(value) != "bin" {
		t.Errorf("Expected binary key to round trip, got %q", value)
	}

	// large value
	large := bytes.Repeat([]byte("x"), 1<<20)
	mustSet(t, database, []byte("large"), large)
	value, _, _ = database.Get([]byte("large"))
	if !bytes.Equal(value, large) {
		t.Errorf("Large value did not round trip (len %d)", len(value))
	}
}

func testInfo(t *testing.T, database db.KVDB) {
	defer database.Close()

	info := database.GetInfo()
	if info.DbType == "" {
		t.Errorf("Expected a database type")
	}
	for _, f := range info.SupportedFeatures {
		if !database.SupportsFeature(f) {
			t.Errorf("Feature %s listed but not supported", f)
		}
	}
}

func testRealisticUsage(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet|db.FeatureDelete|db.FeatureRange)

	// an append log with a trimmed prefix
	const n = 1000
	for i := uint64(0); i < n; i++ {
		mustSet(t, database, u64Key(i), []byte(fmt.Sprintf("entry-%d", i)))
	}
	for i := uint64(0); i < n/2; i++ {
		if err := database.Delete(u64Key(i)); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
	}

	count := 0
	first := uint64(0)
	_ = database.Range(nil, nil, func(key, _ []byte) bool {
		if count == 0 {
			first = binary.BigEndian.Uint64(key)
		}
		count++
		return true
	})
	if count != n/2 {
		t.Errorf("Expected %d live entries, got %d", n/2, count)
	}
	if first != n/2 {
		t.Errorf("Expected first live key %d, got %d", n/2, first)
	}

	value, exists, _ := database.Get(u64Key(n - 1))
	if !exists || string(value) != fmt.Sprintf("entry-%d", n-1) {
		t.Errorf("Unexpected last entry %q", value)
	}
}
