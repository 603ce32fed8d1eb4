package filetype

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var decline = IdentifyFunc(func(Sample) string { return "" })

func rec(id string, opts ...func(*Recognizer)) Recognizer {
	r := Recognizer{ID: id, Identifier: decline}
	for _, o := range opts {
		o(&r)
	}
	return r
}

func before(ids ...string) func(*Recognizer) {
	return func(r *Recognizer) { r.Before = append(r.Before, ids...) }
}

func after(ids ...string) func(*Recognizer) {
	return func(r *Recognizer) { r.After = append(r.After, ids...) }
}

func wildcard(r *Recognizer) { r.Wildcard = true }

func TestSort(t *testing.T) {
	tests := []struct {
		name string
		recs []Recognizer
		want []string
	}{
		{
			name: "empty",
			recs: nil,
			want: []string{},
		},
		{
			name: "unconstrained keeps registration order",
			recs: []Recognizer{rec("a"), rec("b"), rec("c")},
			want: []string{"a", "b", "c"},
		},
		{
			name: "before moves a later registration up",
			recs: []Recognizer{rec("generic"), rec("png", before("generic"))},
			want: []string{"png", "generic"},
		},
		{
			name: "after moves an earlier registration down",
			recs: []Recognizer{rec("a", after("c")), rec("b"), rec("c")},
			want: []string{"b", "c", "a"},
		},
		{
			name: "unknown IDs are ignored",
			recs: []Recognizer{rec("a", before("ghost")), rec("b", after("missing"))},
			want: []string{"a", "b"},
		},
		{
			name: "unconstrained wildcard goes last",
			recs: []Recognizer{rec("sniff", wildcard), rec("a"), rec("b")},
			want: []string{"a", "b", "sniff"},
		},
		{
			name: "wildcards keep registration order among themselves",
			recs: []Recognizer{rec("w1", wildcard), rec("a"), rec("w2", wildcard)},
			want: []string{"a", "w1", "w2"},
		},
		{
			name: "constrained wildcard competes normally",
			recs: []Recognizer{rec("w", wildcard, before("b")), rec("a"), rec("b")},
			want: []string{"w", "a", "b"},
		},
		{
			name: "wildcard constrained only by unknown IDs goes last",
			recs: []Recognizer{rec("sniff", wildcard, before("ghost")), rec("a"), rec("b")},
			want: []string{"a", "b", "sniff"},
		},
		{
			name: "wildcard constrained only by unknown after IDs goes last",
			recs: []Recognizer{rec("sniff", wildcard, after("missing")), rec("a")},
			want: []string{"a", "sniff"},
		},
		{
			name: "recognizer forced after a wildcard follows it",
			recs: []Recognizer{rec("sniff", wildcard), rec("late", after("sniff")), rec("a")},
			want: []string{"a", "sniff", "late"},
		},
		{
			name: "duplicate edges count once",
			recs: []Recognizer{rec("b", after("a")), rec("a", before("b", "b"))},
			want: []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sort(tt.recs)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
			assert.NoError(t, Validate(got))
		})
	}
}

func TestSort_Cycle(t *testing.T) {
	t.Run("two node cycle falls back to registration order", func(t *testing.T) {
		recs := []Recognizer{rec("a", before("b")), rec("x"), rec("b", before("a"))}

		got, err := Sort(recs)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrCycle)
		assert.Equal(t, []string{"a", "x", "b"}, ids(got))

		var cfgErr *ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, []string{"a", "b", "a"}, cfgErr.Path)
		assert.Equal(t, "cyclic recognizer constraints: a -> b -> a", cfgErr.Error())
	})

	t.Run("self loop", func(t *testing.T) {
		got, err := Sort([]Recognizer{rec("a", before("a")), rec("b")})
		assert.ErrorIs(t, err, ErrCycle)
		assert.Equal(t, []string{"a", "b"}, ids(got))

		var cfgErr *ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, []string{"a", "a"}, cfgErr.Path)
	})

	t.Run("witness is deterministic", func(t *testing.T) {
		recs := []Recognizer{
			rec("a", before("b")),
			rec("b", before("c")),
			rec("c", before("a")),
			rec("d", after("c")),
		}
		_, err1 := Sort(recs)
		_, err2 := Sort(recs)
		require.Error(t, err1)
		assert.Equal(t, err1.Error(), err2.Error())
		assert.Equal(t, "cyclic recognizer constraints: a -> b -> c -> a", err1.Error())
	})
}

func TestSort_DuplicateIDs(t *testing.T) {
	recs := []Recognizer{rec("a"), rec("b", before("a")), rec("a")}

	got, err := Sort(recs)
	assert.ErrorIs(t, err, ErrDuplicateID)
	assert.Equal(t, []string{"a", "b", "a"}, ids(got))
}

func TestSort_DoesNotMutateInput(t *testing.T) {
	recs := []Recognizer{rec("generic"), rec("png", before("generic"))}
	_, err := Sort(recs)
	require.NoError(t, err)
	assert.Equal(t, []string{"generic", "png"}, ids(recs))
}

// randomDAG builds n recognizers whose edges all point forward along a hidden
// random permutation, so the constraint set is always satisfiable.
func randomDAG(rng *rand.Rand, n int) []Recognizer {
	perm := rng.Perm(n)
	name := func(i int) string { return fmt.Sprintf("r%d", perm[i]) }

	recs := make([]Recognizer, n)
	for i := 0; i < n; i++ {
		recs[i] = rec(name(i))
		recs[i].Wildcard = rng.Intn(5) == 0
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			switch rng.Intn(8) {
			case 0:
				recs[i].Before = append(recs[i].Before, name(j))
			case 1:
				recs[j].After = append(recs[j].After, name(i))
			}
		}
		if rng.Intn(6) == 0 {
			recs[i].Before = append(recs[i].Before, "unregistered")
		}
	}

	// Registration order is unrelated to the hidden permutation.
	rng.Shuffle(n, func(i, j int) { recs[i], recs[j] = recs[j], recs[i] })
	return recs
}

func TestSort_RandomAcyclicSetsAreHonoured(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for iter := 0; iter < 200; iter++ {
		recs := randomDAG(rng, 1+rng.Intn(12))

		got, err := Sort(recs)
		require.NoError(t, err, "iteration %d", iter)
		require.Len(t, got, len(recs))
		require.NoError(t, Validate(got), "iteration %d: %v", iter, ids(got))
		assertTieBreak(t, recs, got)

		again, err := Sort(got)
		require.NoError(t, err)
		if diff := cmp.Diff(ids(got), ids(again)); diff != "" {
			t.Fatalf("iteration %d: re-sorting changed the order (-first +second):\n%s", iter, diff)
		}
	}
}

// assertTieBreak checks that each adjacent pair in got not joined by a direct
// edge is ordered by (tier, registration index) from recs. When the first of
// the pair was taken, the second was already free to go, so the choice between
// them can only have come from the tie-break.
func assertTieBreak(t *testing.T, recs, got []Recognizer) {
	t.Helper()
	index := make(map[string]int, len(recs))
	for i, r := range recs {
		index[r.ID] = i
	}

	edge := make(map[[2]string]bool)
	tier := make(map[string]int, len(recs))
	for _, r := range recs {
		resolved := false
		for _, id := range r.Before {
			if _, ok := index[id]; ok {
				edge[[2]string{r.ID, id}] = true
				resolved = true
			}
		}
		for _, id := range r.After {
			if _, ok := index[id]; ok {
				edge[[2]string{id, r.ID}] = true
				resolved = true
			}
		}
		if r.Wildcard && !resolved {
			tier[r.ID] = 1
		}
	}

	for k := 0; k+1 < len(got); k++ {
		x, y := got[k].ID, got[k+1].ID
		if edge[[2]string{x, y}] {
			continue
		}
		if tier[x] != tier[y] {
			assert.Less(t, tier[x], tier[y], "%s placed before %s: %v", x, y, ids(got))
			continue
		}
		assert.Less(t, index[x], index[y], "%s placed before %s: %v", x, y, ids(got))
	}
}

func TestValidate(t *testing.T) {
	t.Run("detects a broken before edge", func(t *testing.T) {
		err := Validate([]Recognizer{rec("generic"), rec("png", before("generic"))})
		assert.ErrorIs(t, err, ErrOrderViolation)

		var cfgErr *ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, []string{"png", "generic"}, cfgErr.Path)
	})

	t.Run("detects a broken after edge", func(t *testing.T) {
		err := Validate([]Recognizer{rec("a", after("b")), rec("b")})
		assert.ErrorIs(t, err, ErrOrderViolation)
	})

	t.Run("ignores IDs outside the sequence", func(t *testing.T) {
		assert.NoError(t, Validate([]Recognizer{rec("a", after("zzz"))}))
	})
}
