package votes

import (
	"github.com/ABCurado/eu-parliment-votes-sdk/pkg/textutil"
)

// Tally assigns every roster member to exactly one outcome. A member is
// checked against the positive, negative and abstention names in that order
// and the first match wins, members matching none are NoVote.
//
// Matching is the token match of textutil.NameSet, so two members sharing a
// surname printed alone in a list will both be counted.
func Tally(roster []Member, positive, negative, abstention []string) Result {
	positiveSet := textutil.NewNameSet(positive)
	negativeSet := textutil.NewNameSet(negative)
	abstentionSet := textutil.NewNameSet(abstention)

	result := Result{
		Positive:   []int64{},
		Negative:   []int64{},
		Abstention: []int64{},
		NoVote:     []int64{},
	}
	for _, member := range roster {
		switch {
		case positiveSet.Contains(member.FullName):
			result.Positive = append(result.Positive, member.ID)
		case negativeSet.Contains(member.FullName):
			result.Negative = append(result.Negative, member.ID)
		case abstentionSet.Contains(member.FullName):
			result.Abstention = append(result.Abstention, member.ID)
		default:
			result.NoVote = append(result.NoVote, member.ID)
		}
	}
	return result
}

// TallyVotes fills in Result for every vote.
func TallyVotes(roster []Member, votes []Vote) {
	for i := range votes {
		votes[i].Result = Tally(roster, votes[i].Positive, votes[i].Negative, votes[i].Abstention)
	}
}

// Unmatched is a printed name that resolved to no roster member.
type Unmatched struct {
	Name       string
	Closest    string
	Similarity float64
}

// UnmatchedNames returns the names that no roster member matches, each with the
// most similar roster name. Names are reported once, in first seen order.
func UnmatchedNames(roster []Member, names []string) []Unmatched {
	fullNames := make([]string, len(roster))
	for i, m := range roster {
		fullNames[i] = m.FullName
	}

	var out []Unmatched
	seen := map[string]struct{}{}
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}

		set := textutil.NewNameSet([]string{name})
		matched := false
		for _, full := range fullNames {
			if set.Contains(full) {
				matched = true
				break
			}
		}
		if matched {
			continue
		}

		closest, similarity := textutil.Closest(name, fullNames)
		out = append(out, Unmatched{
			Name:       name,
			Closest:    closest,
			Similarity: similarity,
		})
	}
	return out
}
