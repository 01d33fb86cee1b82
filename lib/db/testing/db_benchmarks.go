package testing

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/ValentinKolb/fundb/lib/db"
)

// RunKVDBBenchmarks runs all benchmarks for a key-value database implementations
func RunKVDBBenchmarks(b *testing.B, name string, factory DBFactory) {

	b.Run("Set", func(b *testing.B) {
		benchmarkSet(b, factory())
	})

	b.Run("SetLargeValue", func(b *testing.B) {
		benchmarkSetLargeValue(b, factory())
	})

	b.Run("Get", func(b *testing.B) {
		benchmarkGet(b, factory())
	})

	b.Run("Delete", func(b *testing.B) {
		benchmarkDelete(b, factory())
	})

	b.Run("Range", func(b *testing.B) {
		benchmarkRange(b, factory())
	})

	b.Run("MixedUsage", func(b *testing.B) {
		benchmarkMixedUsage(b, factory())
	})
}

// --------------------------------------------------------------------------
// Benchmark functions
// --------------------------------------------------------------------------

// Benchmark for appending Set operations (sequential keys like a vector push)
func benchmarkSet(b *testing.B, database db.KVDB) {

	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeatureSet)

	value := []byte("benchmark-value")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := database.Set(u64Key(uint64(i)), value); err != nil {
			b.Fatal(err)
		}
	}
}

// Benchmark for Set with a 100KB value
func benchmarkSetLargeValue(b *testing.B, database db.KVDB) {

	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeatureSet)

	value := bytes.Repeat([]byte("x"), 100*1024)
	b.SetBytes(int64(len(value)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := database.Set(u64Key(uint64(i%64)), value); err != nil {
			b.Fatal(err)
		}
	}
}

// Benchmark for random point reads
func benchmarkGet(b *testing.B, database db.KVDB) {

	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeatureSet|db.FeatureGet)

	const keys = 10_000
	for i := uint64(0); i < keys; i++ {
		_ = database.Set(u64Key(i), []byte("benchmark-value"))
	}

	r := rand.New(rand.NewSource(1))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := database.Get(u64Key(uint64(r.Intn(keys)))); err != nil {
			b.Fatal(err)
		}
	}
}

// Benchmark for Delete
func benchmarkDelete(b *testing.B, database db.KVDB) {

	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeatureSet|db.FeatureDelete)

	for i := 0; i < b.N; i++ {
		_ = database.Set(u64Key(uint64(i)), []byte("v"))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := database.Delete(u64Key(uint64(i))); err != nil {
			b.Fatal(err)
		}
	}
}

// Benchmark for scanning 100 consecutive entries
func benchmarkRange(b *testing.B, database db.KVDB) {

	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeatureSet|db.FeatureRange)

	const keys = 10_000
	for i := uint64(0); i < keys; i++ {
		_ = database.Set(u64Key(i), []byte("benchmark-value"))
	}

	r := rand.New(rand.NewSource(1))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		start := uint64(r.Intn(keys - 100))
		_ = database.Range(u64Key(start), u64Key(start+100), func(_, _ []byte) bool {
			return true
		})
	}
}

// Benchmark for a mix of 70% reads, 20% writes, 10% deletes
func benchmarkMixedUsage(b *testing.B, database db.KVDB) {

	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeatureSet|db.FeatureGet|db.FeatureDelete)

	const keys = 1000
	r := rand.New(rand.NewSource(1))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := u64Key(uint64(r.Intn(keys)))
		switch op := r.Intn(10); {
		case op < 7:
			_, _, _ = database.Get(key)
		case op < 9:
			_ = database.Set(key, []byte("benchmark-value"))
		default:
			_ = database.Delete(key)
		}
	}
}
