package europarl

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Membership is a member's participation in a parliamentary body.
type Membership struct {
	// CorporateBody is the body classification (EP_GROUP, COMMITTEE_PARLIAMENTARY_STANDING, ...).
	CorporateBody string
	Role          string
	Org           string
	StartDate     time.Time
	// EndDate is zero while the membership is ongoing.
	EndDate time.Time
}

func (m Membership) Active() bool {
	return m.EndDate.IsZero()
}

// party organization ids on the data api
var parties = map[string]string{
	"5148": "ECR",
	"5152": "NI",
	"5153": "EPP",
	"5154": "SD",
	"5155": "GREEN_EFA",
	"5704": "RENEW",
	"6259": "LEFT",
	"5588": "ID",
}

const politicalGroup = "EP_GROUP"

// ParseParty returns the political group of the first ongoing EP_GROUP
// membership, or "" when there is none.
func ParseParty(memberships []Membership) (string, error) {
	for _, membership := range memberships {
		if !strings.Contains(membership.CorporateBody, politicalGroup) || !membership.Active() {
			continue
		}
		id := lastSegment(membership.Org)
		party, ok := parties[id]
		if !ok {
			return "", fmt.Errorf("unknown party %s", id)
		}
		return party, nil
	}
	return "", nil
}

// stringList is a JSON-LD value that may be a single string or an array of them.
type stringList []string

func (s *stringList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*s = stringList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*s = many
	return nil
}

func (s stringList) has(value string) bool {
	for _, v := range s {
		if v == value {
			return true
		}
	}
	return false
}

type langString struct {
	Language string `json:"@language"`
	Value    string `json:"@value"`
}

type graphNode struct {
	Type      stringList   `json:"@type"`
	PrefLabel []langString `json:"prefLabel"`
	StartDate string       `json:"startDate"`
	EndDate   string       `json:"endDate"`
}

func (n graphNode) englishLabel() string {
	for _, label := range n.PrefLabel {
		if label.Language == "en" {
			return label.Value
		}
	}
	return ""
}

type membershipDocument struct {
	Graph []graphNode `json:"@graph"`
}

const (
	typeCorporateBody = "euvoc:CorporateBodyClassification"
	typeRole          = "euvoc:Role"
	typeOrganization  = "org:Organization"
	typePeriod        = "dcterms:PeriodOfTime"
)

var errIncompleteMembership = errors.New("incomplete membership document")

// ParseMembership reads a membership JSON-LD document. The corporate body
// classification is optional, role, organization and period are not.
func ParseMembership(doc []byte) (Membership, error) {
	var parsed membershipDocument
	err := json.Unmarshal(doc, &parsed)
	if err != nil {
		return Membership{}, fmt.Errorf("parse membership: %w", err)
	}

	// the first node of each type wins
	var (
		membership      Membership
		period          *graphNode
		body, role, org bool
	)
	for i, node := range parsed.Graph {
		switch {
		case !body && node.Type.has(typeCorporateBody):
			membership.CorporateBody = node.englishLabel()
			body = true
		case !role && node.Type.has(typeRole):
			membership.Role = node.englishLabel()
			role = true
		case !org && node.Type.has(typeOrganization):
			membership.Org = node.englishLabel()
			org = true
		case period == nil && node.Type.has(typePeriod):
			period = &parsed.Graph[i]
		}
	}

	if membership.Role == "" {
		return Membership{}, fmt.Errorf("%w: missing %s", errIncompleteMembership, typeRole)
	}
	if membership.Org == "" {
		return Membership{}, fmt.Errorf("%w: missing %s", errIncompleteMembership, typeOrganization)
	}
	if period == nil || period.StartDate == "" {
		return Membership{}, fmt.Errorf("%w: missing %s", errIncompleteMembership, typePeriod)
	}

	membership.StartDate, err = parseDate(period.StartDate)
	if err != nil {
		return Membership{}, fmt.Errorf("membership start: %w", err)
	}
	if period.EndDate != "" {
		membership.EndDate, err = parseDate(period.EndDate)
		if err != nil {
			return Membership{}, fmt.Errorf("membership end: %w", err)
		}
	}
	return membership, nil
}
