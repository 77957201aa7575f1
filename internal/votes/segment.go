package votes

// Segment groups an ordered vote sequence of a single document into proposals.
//
// A vote whose ProposalID was never seen before closes the open proposal and
// opens a new one, any other vote joins the open proposal. An id that comes back
// after its proposal was closed is therefore folded into whichever proposal is
// open at that point, it does not reopen the earlier one.
//
// No votes yield no proposals.
func Segment(votes []Vote) []Proposal {
	if len(votes) == 0 {
		return nil
	}

	var proposals []Proposal
	seen := map[string]struct{}{}

	open := Proposal{
		ID:    votes[0].ProposalID,
		Title: votes[0].Title,
	}
	seen[votes[0].ProposalID] = struct{}{}

	for _, vote := range votes {
		if _, ok := seen[vote.ProposalID]; !ok {
			open.FinalVote = len(open.Votes) - 1
			proposals = append(proposals, open)
			seen[vote.ProposalID] = struct{}{}

			open = Proposal{
				ID:    vote.ProposalID,
				Title: vote.Title,
			}
		}
		open.Votes = append(open.Votes, vote)
	}

	open.FinalVote = len(open.Votes) - 1
	proposals = append(proposals, open)
	return proposals
}
