package votes

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestTally(t *testing.T) {
	result := Tally(
		testRoster,
		[]string{"Martin", "Dupont", "Rossi"},
		[]string{"Muller"},
		[]string{"Novak"},
	)

	expected := Result{
		Positive:   []int64{1, 2, 3},
		Negative:   []int64{4},
		Abstention: []int64{5},
		NoVote:     []int64{6},
	}
	if diff := cmp.Diff(expected, result); diff != "" {
		t.Fatal(diff)
	}
}

func TestTallyPriority(t *testing.T) {
	roster := []Member{{ID: 10, FullName: "John Doe"}}

	result := Tally(roster, []string{"Doe"}, []string{"John"}, []string{"doe"})
	require.Equal(t, []int64{10}, result.Positive)
	require.Empty(t, result.Negative)
	require.Empty(t, result.Abstention)

	result = Tally(roster, nil, []string{"John"}, []string{"doe"})
	require.Equal(t, []int64{10}, result.Negative)
	require.Empty(t, result.Abstention)
}

func TestTallyEmptyRoster(t *testing.T) {
	result := Tally(nil, []string{"Martin"}, nil, nil)
	require.Empty(t, result.Positive)
	require.Empty(t, result.NoVote)
}

func TestTallyPartitionsRoster(t *testing.T) {
	pool := []string{
		"Martin", "Dupont", "Rossi", "Müller", "NOVAK", "Weber",
		"Unknown", "Somebody", "Dieter", "alice",
	}
	pick := func(r *rand.Rand) []string {
		n := r.Intn(len(pool))
		out := make([]string, n)
		for i := range out {
			out[i] = pool[r.Intn(len(pool))]
		}
		return out
	}

	r := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		result := Tally(testRoster, pick(r), pick(r), pick(r))

		var all []int64
		all = append(all, result.Positive...)
		all = append(all, result.Negative...)
		all = append(all, result.Abstention...)
		all = append(all, result.NoVote...)
		slices.Sort(all)

		expected := make([]int64, len(testRoster))
		for j, m := range testRoster {
			expected[j] = m.ID
		}
		slices.Sort(expected)

		require.Equal(t, expected, all)
	}
}

func TestUnmatchedNames(t *testing.T) {
	unmatched := UnmatchedNames(testRoster, []string{"Martin", "Webber", "Martin", "Webber", "Rossi"})
	require.Len(t, unmatched, 1)
	require.Equal(t, "Webber", unmatched[0].Name)
	require.Equal(t, "Frank WEBER", unmatched[0].Closest)
	require.Greater(t, unmatched[0].Similarity, 0.0)

	require.Empty(t, UnmatchedNames(testRoster, nil))
}
