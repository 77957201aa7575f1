package votes

import (
	"regexp"
	"time"
)

// Member is a voting member of parliament as far as tallying is concerned.
type Member struct {
	ID       int64  `json:"id"`
	FullName string `json:"fullName"`
}

// Source is the document a vote was read from.
type Source struct {
	DocumentID string    `json:"documentId"`
	Date       time.Time `json:"date"`
}

var documentDateRegex = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`)

// SourceFromDocumentID derives the document date from the first YYYY-MM-DD run
// in the id ("PV-9-2023-06-01-RCV" is 2023-06-01). Ids without a date keep a
// zero Date.
func SourceFromDocumentID(id string) Source {
	source := Source{DocumentID: id}
	match := documentDateRegex.FindString(id)
	if match == "" {
		return source
	}
	date, err := time.Parse(time.DateOnly, match)
	if err == nil {
		source.Date = date
	}
	return source
}

// Result is the per member outcome of a vote, every roster id appears in
// exactly one of the lists.
type Result struct {
	Positive   []int64 `json:"positive"`
	Negative   []int64 `json:"negative"`
	Abstention []int64 `json:"abstention"`
	NoVote     []int64 `json:"noVote"`
}

// Vote is a single roll-call vote event.
type Vote struct {
	ProposalID string `json:"proposalId"`
	Title      string `json:"title"`
	Source     Source `json:"source"`

	// names as printed in the result tables, before tallying
	Positive   []string `json:"positiveNames"`
	Negative   []string `json:"negativeNames"`
	Abstention []string `json:"abstentionNames"`

	Result Result `json:"result"`
}

// Proposal groups a main vote and its amendment votes.
type Proposal struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Votes     []Vote `json:"votes"`
	FinalVote int    `json:"finalVote"`
}

// Final returns the vote at FinalVote.
func (p Proposal) Final() Vote {
	return p.Votes[p.FinalVote]
}
