// Property-based tests for per-namespace operation serialization.
package lock

import (
	"sync"
	"testing"

	"pgregory.net/rapid"
)

// TestNamespaceSerializationProperty tests that for any set of concurrent
// score mutations on the same namespace, the final value is consistent with
// sequential execution.
func TestNamespaceSerializationProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		initial := rapid.Int64Range(0, 10000).Draw(t, "initial")
		numOps := rapid.IntRange(2, 20).Draw(t, "numOps")

		deltas := make([]int64, numOps)
		expected := initial
		for i := 0; i < numOps; i++ {
			deltas[i] = rapid.Int64Range(-50, 50).Draw(t, "delta")
			expected += deltas[i]
		}

		namespace := rapid.StringMatching(`[a-z]{3,12}`).Draw(t, "namespace")

		nl := NewNamespaceLock()
		score := initial

		var wg sync.WaitGroup
		wg.Add(numOps)
		for _, delta := range deltas {
			go func(d int64) {
				defer wg.Done()
				nl.Lock(namespace)
				defer nl.Unlock(namespace)
				// read-modify-write under the lock
				score += d
			}(delta)
		}
		wg.Wait()

		if score != expected {
			t.Fatalf("score mismatch: expected %d, got %d (initial=%d, numOps=%d)",
				expected, score, initial, numOps)
		}
	})
}

// TestTryLockExclusivity tests that TryLock fails while the namespace is
// held and succeeds once released, and that distinct namespaces do not
// block each other.
func TestTryLockExclusivity(t *testing.T) {
	nl := NewNamespaceLock()

	nl.Lock("chess")
	if nl.TryLock("chess") {
		t.Fatal("TryLock acquired a held namespace lock")
	}
	if !nl.TryLock("checkers") {
		t.Fatal("TryLock failed on an unrelated namespace")
	}
	nl.Unlock("checkers")

	nl.Unlock("chess")
	if !nl.TryLock("chess") {
		t.Fatal("TryLock failed on a released namespace lock")
	}
	nl.Unlock("chess")
}

// TestWithLockReleasesOnError tests that WithLock releases the lock even
// when fn fails.
func TestWithLockReleasesOnError(t *testing.T) {
	nl := NewNamespaceLock()

	_ = nl.WithLock("chess", func() error {
		return errTest
	})

	if !nl.TryLock("chess") {
		t.Fatal("lock still held after WithLock returned an error")
	}
	nl.Unlock("chess")
}

var errTest = &testError{}

type testError struct{}

func (*testError) Error() string { return "test error" }
