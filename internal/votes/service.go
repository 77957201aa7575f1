package votes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/ABCurado/eu-parliment-votes-sdk/internal/components/assert"
	"github.com/ABCurado/eu-parliment-votes-sdk/internal/components/telemetry"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("europarl.votes")

const (
	report_parser_parse_block      = "parser.parse-block"
	report_service_votes           = "service.get-votes-for-document"
	report_service_identifiers     = "service.get-document-identifiers"
	report_service_proposals_count = "service.proposals"
)

const (
	// RosterLimit is large enough to hold every member of a term.
	RosterLimit = 2000
	// CurrentTerm asks the roster provider for the sitting members.
	CurrentTerm = 0
)

const (
	DefaultApiUrl  = "https://data.europarl.europa.eu/api/v1"
	DefaultSiteUrl = "https://www.europarl.europa.eu/doceo/document"
)

// DocumentFetcher fetches a document from the document site.
type DocumentFetcher interface {
	Fetch(ctx context.Context, url string) (status int, body []byte, err error)
}

// ListingFetcher fetches a JSON(-LD) payload from the open data api.
type ListingFetcher interface {
	FetchJSON(ctx context.Context, url string) (status int, body []byte, err error)
}

// RosterProvider loads the members voting in a parliamentary term.
type RosterProvider interface {
	LoadRoster(ctx context.Context, limit, term int) ([]Member, error)
}

type Options struct {
	ApiUrl  string
	SiteUrl string
}

// Service fetches RCV documents and turns them into proposals.
type Service struct {
	documents DocumentFetcher
	listing   ListingFetcher
	roster    RosterProvider
	tel       telemetry.API
	apiUrl    string
	siteUrl   string
}

func NewService(
	documents DocumentFetcher,
	listing ListingFetcher,
	roster RosterProvider,
	tel telemetry.API,
	opts Options,
) *Service {
	assert.NotNil(documents)
	assert.NotNil(listing)
	assert.NotNil(roster)
	assert.NotNil(tel)

	if opts.ApiUrl == "" {
		opts.ApiUrl = DefaultApiUrl
	}
	if opts.SiteUrl == "" {
		opts.SiteUrl = DefaultSiteUrl
	}

	return &Service{
		documents: documents,
		listing:   listing,
		roster:    roster,
		tel:       telemetry.NewScopedAPI("votes", tel),
		apiUrl:    strings.TrimSuffix(opts.ApiUrl, "/"),
		siteUrl:   strings.TrimSuffix(opts.SiteUrl, "/"),
	}
}

// DocumentUrl is the English HTML rendering of a document.
func (s *Service) DocumentUrl(documentId string) string {
	return fmt.Sprintf("%s/%s_EN.html", s.siteUrl, documentId)
}

// DocumentVotes is everything read from a single RCV document.
type DocumentVotes struct {
	Source    Source
	Proposals []Proposal
	Roster    []Member
	Skipped   []ParseError
}

// GetVotesForDocument returns the proposals voted in an RCV document, with
// every vote tallied against the current roster.
func (s *Service) GetVotesForDocument(ctx context.Context, documentId string) ([]Proposal, error) {
	result, err := s.LoadDocument(ctx, documentId)
	if err != nil {
		return nil, err
	}
	return result.Proposals, nil
}

// LoadDocument is GetVotesForDocument, but it also returns the roster used
// for tallying and the vote blocks that were skipped.
func (s *Service) LoadDocument(ctx context.Context, documentId string) (DocumentVotes, error) {
	ctx, span := tracer.Start(ctx, "LoadDocument")
	defer span.End()
	span.SetAttributes(attribute.String("document_id", documentId))

	if documentId == "" {
		return DocumentVotes{}, fmt.Errorf("%w: empty document id", ErrInvalidArgument)
	}

	endpoint := s.DocumentUrl(documentId)

	var (
		wg        sync.WaitGroup
		status    int
		body      []byte
		fetchErr  error
		roster    []Member
		rosterErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		status, body, fetchErr = s.documents.Fetch(ctx, endpoint)
	}()
	go func() {
		defer wg.Done()
		roster, rosterErr = s.roster.LoadRoster(ctx, RosterLimit, CurrentTerm)
	}()
	wg.Wait()

	if fetchErr != nil {
		s.tel.ReportBroken(report_service_votes, fmt.Errorf("fetch: %w", fetchErr), endpoint)
		span.RecordError(fetchErr)
		span.SetStatus(codes.Error, "fetch failed")
		return DocumentVotes{}, fmt.Errorf("%w: %s: %w", ErrFetchFailure, endpoint, fetchErr)
	}
	if !isSuccess(status) {
		err := &FetchError{Status: status, Url: endpoint}
		s.tel.ReportWarning(report_service_votes, err, endpoint)
		span.SetStatus(codes.Error, err.Error())
		return DocumentVotes{}, err
	}
	if rosterErr != nil {
		s.tel.ReportBroken(report_service_votes, fmt.Errorf("load roster: %w", rosterErr))
		span.RecordError(rosterErr)
		span.SetStatus(codes.Error, "load roster failed")
		return DocumentVotes{}, fmt.Errorf("load roster: %w", rosterErr)
	}

	source := SourceFromDocumentID(documentId)
	proposals, skipped := s.ParseDocument(string(body), roster, source)

	span.SetAttributes(
		attribute.Int("proposals", len(proposals)),
		attribute.Int("skipped_blocks", len(skipped)),
	)

	return DocumentVotes{
		Source:    source,
		Proposals: proposals,
		Roster:    roster,
		Skipped:   skipped,
	}, nil
}

// ParseDocument runs extraction, parsing, tallying and segmentation over an RCV
// document. Blocks that fail to parse are reported, skipped and returned.
func (s *Service) ParseDocument(html string, roster []Member, source Source) ([]Proposal, []ParseError) {
	parsed, skipped := ParseBlocks(Extract(html))
	for _, skip := range skipped {
		s.tel.ReportWarning(report_parser_parse_block, skip, source.DocumentID)
	}

	for i := range parsed {
		parsed[i].Source = source
	}
	TallyVotes(roster, parsed)

	proposals := Segment(parsed)
	s.tel.ReportCount(report_service_proposals_count, int64(len(proposals)))
	return proposals, skipped
}

type listingResponse struct {
	Data json.RawMessage `json:"data"`
}

type listingItem struct {
	Identifier string `json:"identifier"`
}

// GetDocumentIdentifiers lists the identifiers of the latest plenary RCV documents.
func (s *Service) GetDocumentIdentifiers(ctx context.Context, limit int) ([]string, error) {
	ctx, span := tracer.Start(ctx, "GetDocumentIdentifiers")
	defer span.End()

	if limit < 0 {
		return nil, fmt.Errorf("%w: invalid limit %d", ErrInvalidArgument, limit)
	}

	params := url.Values{}
	params.Set("work-type", "PLENARY_RCV_EP")
	params.Set("offset", "0")
	params.Set("limit", strconv.Itoa(limit))
	endpoint := fmt.Sprintf("%s/documents?%s", s.apiUrl, params.Encode())

	status, body, err := s.listing.FetchJSON(ctx, endpoint)
	if err != nil {
		s.tel.ReportBroken(report_service_identifiers, fmt.Errorf("fetch: %w", err), endpoint)
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return nil, fmt.Errorf("%w: %s: %w", ErrFetchFailure, endpoint, err)
	}
	if !isSuccess(status) {
		err := &FetchError{Status: status, Url: endpoint}
		s.tel.ReportWarning(report_service_identifiers, err, endpoint)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	ids, err := parseListing(body)
	if err != nil {
		s.tel.ReportBroken(report_service_identifiers, err, endpoint)
		span.RecordError(err)
		span.SetStatus(codes.Error, "malformed listing")
		return nil, err
	}
	return ids, nil
}

func parseListing(body []byte) ([]string, error) {
	var res listingResponse
	err := json.Unmarshal(body, &res)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	data := bytes.TrimSpace(res.Data)
	if len(data) == 0 || data[0] != '[' {
		return nil, fmt.Errorf("%w: listing data is not an array", ErrMalformedResponse)
	}

	var items []listingItem
	err = json.Unmarshal(data, &items)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.Identifier
	}
	return ids, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
