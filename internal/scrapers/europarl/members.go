package europarl

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ABCurado/eu-parliment-votes-sdk/internal/votes"
)

const (
	report_members_load_roster = "members.load-roster"
	report_members_load_member = "members.load-member"
)

// MaxTerm is the latest parliamentary term the api knows about. The tenth
// term started in July 2024, so it is accepted as an explicit term too.
const MaxTerm = 10

// membershipDetailLimit caps how many membership documents are fetched per member.
const membershipDetailLimit = 3

var ErrInvalidTerm = errors.New("invalid parliamentary term")

type rosterResponse struct {
	Data []struct {
		Identifier string `json:"identifier"`
		Label      string `json:"label"`
	} `json:"data"`
}

// LoadRoster implements votes.RosterProvider, term 0 loads the sitting members.
func (c *Client) LoadRoster(ctx context.Context, limit, term int) ([]votes.Member, error) {
	path := "/meps/show-current"
	params := map[string]string{"limit": strconv.Itoa(limit)}
	switch {
	case term == votes.CurrentTerm:
	case term >= 1 && term <= MaxTerm:
		path = "/meps"
		params["parliamentary-term"] = strconv.Itoa(term)
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidTerm, term)
	}

	var res rosterResponse
	err := c.GetJSON(ctx, path, params, &res)
	if err != nil {
		return nil, err
	}

	members := make([]votes.Member, 0, len(res.Data))
	for _, entry := range res.Data {
		id, err := strconv.ParseInt(entry.Identifier, 10, 64)
		if err != nil {
			c.tel.ReportWarning(report_members_load_roster, fmt.Errorf("member identifier: %w", err), entry.Identifier)
			continue
		}
		members = append(members, votes.Member{
			ID:       id,
			FullName: entry.Label,
		})
	}
	return members, nil
}

type Account struct {
	Type string
	Url  string
}

type MemberProfile struct {
	votes.Member
	Image       string
	Homepage    string
	Citizenship string
	CountryCode string
	Email       string
	Birthday    time.Time
	Age         int
	Party       string
	Accounts    []Account
	Memberships []Membership
}

type memberResponse struct {
	Data []struct {
		Identifier  string `json:"identifier"`
		Label       string `json:"label"`
		Img         string `json:"img"`
		Homepage    string `json:"homepage"`
		Citizenship string `json:"citizenship"`
		HasEmail    string `json:"hasEmail"`
		Bday        string `json:"bday"`
		Account     []struct {
			ID          string `json:"id"`
			DctermsType string `json:"dcterms_type"`
		} `json:"account"`
		HasMembership []struct {
			ID                       string `json:"id"`
			MembershipClassification string `json:"membershipClassification"`
			Role                     string `json:"role"`
			Organization             string `json:"organization"`
			MemberDuring             struct {
				StartDate string `json:"startDate"`
				EndDate   string `json:"endDate"`
			} `json:"memberDuring"`
		} `json:"hasMembership"`
	} `json:"data"`
}

// LoadMember loads the profile of a single member. With withMemberships the
// JSON-LD documents of the first few memberships are fetched and parsed
// instead of using the inline summaries.
func (c *Client) LoadMember(ctx context.Context, id string, withMemberships bool) (MemberProfile, error) {
	if id == "" {
		return MemberProfile{}, fmt.Errorf("%w: empty member id", votes.ErrInvalidArgument)
	}

	var res memberResponse
	err := c.GetJSON(ctx, "/meps/"+id, nil, &res)
	if err != nil {
		return MemberProfile{}, err
	}
	if len(res.Data) == 0 {
		return MemberProfile{}, fmt.Errorf("%w: no member with id %s", votes.ErrMalformedResponse, id)
	}
	data := res.Data[0]

	numericId, err := strconv.ParseInt(data.Identifier, 10, 64)
	if err != nil {
		numericId, err = strconv.ParseInt(id, 10, 64)
		if err != nil {
			return MemberProfile{}, fmt.Errorf("%w: member id %s is not numeric", votes.ErrMalformedResponse, id)
		}
	}

	profile := MemberProfile{
		Member: votes.Member{
			ID:       numericId,
			FullName: data.Label,
		},
		Image:       data.Img,
		Homepage:    data.Homepage,
		Citizenship: data.Citizenship,
		Email:       data.HasEmail,
	}

	if data.Citizenship != "" {
		code, err := CountryCode(data.Citizenship)
		if err != nil {
			c.tel.ReportWarning(report_members_load_member, err, id)
		}
		profile.CountryCode = code
	}

	if data.Bday != "" {
		bday, err := parseDate(data.Bday)
		if err != nil {
			c.tel.ReportWarning(report_members_load_member, fmt.Errorf("birthday: %w", err), id)
		} else {
			profile.Birthday = bday
			profile.Age = c.time.Now().Year() - bday.Year()
		}
	}

	for _, account := range data.Account {
		profile.Accounts = append(profile.Accounts, Account{
			Type: lastSegment(account.DctermsType),
			Url:  account.ID,
		})
	}

	if withMemberships {
		ids := make([]string, 0, membershipDetailLimit)
		for _, membership := range data.HasMembership {
			if len(ids) == membershipDetailLimit {
				break
			}
			if membership.ID != "" {
				ids = append(ids, membership.ID)
			}
		}
		profile.Memberships = c.loadMemberships(ctx, id, ids)
	} else {
		for _, membership := range data.HasMembership {
			parsed := Membership{
				CorporateBody: membership.MembershipClassification,
				Role:          membership.Role,
				Org:           membership.Organization,
			}
			if membership.MemberDuring.StartDate != "" {
				parsed.StartDate, err = parseDate(membership.MemberDuring.StartDate)
				if err != nil {
					c.tel.ReportWarning(report_members_load_member, fmt.Errorf("membership start: %w", err), id)
				}
			}
			if membership.MemberDuring.EndDate != "" {
				parsed.EndDate, err = parseDate(membership.MemberDuring.EndDate)
				if err != nil {
					c.tel.ReportWarning(report_members_load_member, fmt.Errorf("membership end: %w", err), id)
				}
			}
			profile.Memberships = append(profile.Memberships, parsed)
		}
	}

	party, err := ParseParty(profile.Memberships)
	if err != nil {
		c.tel.ReportWarning(report_members_load_member, err, id)
	}
	profile.Party = party

	return profile, nil
}

// loadMemberships fetches membership documents concurrently, keeping the
// original order and dropping those that fail.
func (c *Client) loadMemberships(ctx context.Context, memberId string, ids []string) []Membership {
	results := make([]*Membership, len(ids))

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()

			status, body, err := c.FetchJSON(ctx, c.resolve(id))
			if err != nil {
				return
			}
			if status < 200 || status >= 300 {
				c.tel.ReportWarning(report_members_load_member, &votes.FetchError{Status: status, Url: id}, memberId)
				return
			}
			membership, err := ParseMembership(body)
			if err != nil {
				c.tel.ReportWarning(report_members_load_member, err, memberId, id)
				return
			}
			results[i] = &membership
		}(i, id)
	}
	wg.Wait()

	var memberships []Membership
	for _, membership := range results {
		if membership != nil {
			memberships = append(memberships, *membership)
		}
	}
	return memberships
}

// LoadMembers loads several profiles concurrently, the first error wins.
func (c *Client) LoadMembers(ctx context.Context, ids []string, withMemberships bool) ([]MemberProfile, error) {
	profiles := make([]MemberProfile, len(ids))
	errs := make([]error, len(ids))

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			profiles[i], errs[i] = c.LoadMember(ctx, id, withMemberships)
		}(i, id)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("load member %s: %w", ids[i], err)
		}
	}
	return profiles, nil
}

// CountryCode extracts the ISO-3 code from a citizenship uri such as
// http://publications.europa.eu/resource/authority/country/PRT.
func CountryCode(citizenship string) (string, error) {
	code := lastSegment(citizenship)
	if len(code) != 3 {
		return "", fmt.Errorf("unable to parse code from %s", citizenship)
	}
	return code, nil
}

func lastSegment(uri string) string {
	uri = strings.TrimSuffix(uri, "/")
	idx := strings.LastIndexAny(uri, "/#:")
	if idx < 0 {
		return uri
	}
	return uri[idx+1:]
}

func parseDate(value string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, value)
	if err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}
