package votes

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ABCurado/eu-parliment-votes-sdk/internal/components/telemetry"

	"github.com/stretchr/testify/require"
)

type fakeResponse struct {
	status int
	body   string
	err    error
}

type fakeFetcher struct {
	mutex     sync.Mutex
	responses map[string]fakeResponse
	requested []string
}

func (f *fakeFetcher) get(endpoint string) (int, []byte, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.requested = append(f.requested, endpoint)

	res, ok := f.responses[endpoint]
	if !ok {
		return 404, []byte("not found"), nil
	}
	return res.status, []byte(res.body), res.err
}

func (f *fakeFetcher) Fetch(_ context.Context, endpoint string) (int, []byte, error) {
	return f.get(endpoint)
}

func (f *fakeFetcher) FetchJSON(_ context.Context, endpoint string) (int, []byte, error) {
	return f.get(endpoint)
}

type fakeRoster struct {
	members []Member
	err     error
	limit   int
	term    int
}

func (f *fakeRoster) LoadRoster(_ context.Context, limit, term int) ([]Member, error) {
	f.limit = limit
	f.term = term
	return f.members, f.err
}

func newTestService(fetcher *fakeFetcher, roster *fakeRoster) (*Service, *telemetry.Recorder) {
	tel := telemetry.NewRecorder()
	service := NewService(fetcher, fetcher, roster, tel, Options{
		ApiUrl:  "https://api.test/v1/",
		SiteUrl: "https://site.test/doc",
	})
	return service, tel
}

const testDocumentId = "PV-9-2024-01-17-RCV"

func TestGetVotesForDocumentInvalidId(t *testing.T) {
	service, _ := newTestService(&fakeFetcher{}, &fakeRoster{})

	_, err := service.GetVotesForDocument(context.Background(), "")
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestGetVotesForDocument(t *testing.T) {
	fetcher := &fakeFetcher{responses: map[string]fakeResponse{
		"https://site.test/doc/PV-9-2024-01-17-RCV_EN.html": {status: 200, body: sampleDocument()},
	}}
	roster := &fakeRoster{members: testRoster}
	service, tel := newTestService(fetcher, roster)

	proposals, err := service.GetVotesForDocument(context.Background(), testDocumentId)
	require.NoError(t, err)

	require.Equal(t, RosterLimit, roster.limit)
	require.Equal(t, CurrentTerm, roster.term)

	require.Len(t, proposals, 2)
	require.Equal(t, "A9-0001/2024", proposals[0].ID)
	require.Equal(t, "A9-0002/2024", proposals[1].ID)
	for _, p := range proposals {
		require.Len(t, p.Votes, 2)
		require.Equal(t, 1, p.FinalVote)
		for _, v := range p.Votes {
			require.Equal(t, testDocumentId, v.Source.DocumentID)
			require.Equal(t, time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC), v.Source.Date)
			require.Equal(t, []int64{1, 2, 3}, v.Result.Positive)
			require.Equal(t, []int64{4}, v.Result.Negative)
			require.Equal(t, []int64{5}, v.Result.Abstention)
			require.Equal(t, []int64{6}, v.Result.NoVote)
		}
	}
	require.True(t, strings.HasPrefix(proposals[1].Final().Title, "Motion on energy prices - Am 4"))

	require.Empty(t, tel.Reports(telemetry.KindWarning, report_parser_parse_block))
	counts := tel.Reports(telemetry.KindCount, report_service_proposals_count)
	require.Len(t, counts, 1)
	require.EqualValues(t, 2, counts[0].Count)
}

func TestGetVotesForDocumentSkipsBrokenBlocks(t *testing.T) {
	broken := sampleBlock("Broken", "A9-0005/2024")
	broken.resultTables = 2

	fetcher := &fakeFetcher{responses: map[string]fakeResponse{
		"https://site.test/doc/PV-9-2024-01-17-RCV_EN.html": {status: 200, body: renderDocument(
			sampleBlock("First", "A9-0001/2024"),
			broken,
			sampleBlock("First - Am 2", "A9-0001/2024"),
		)},
	}}
	service, tel := newTestService(fetcher, &fakeRoster{members: testRoster})

	result, err := service.LoadDocument(context.Background(), testDocumentId)
	require.NoError(t, err)
	require.Len(t, result.Proposals, 1)
	require.Len(t, result.Proposals[0].Votes, 2)
	require.Len(t, result.Skipped, 1)
	require.Equal(t, 1, result.Skipped[0].Index)
	require.Equal(t, testRoster, result.Roster)

	require.Len(t, tel.Reports(telemetry.KindWarning, report_parser_parse_block), 1)
}

func TestGetVotesForDocumentHttpError(t *testing.T) {
	service, _ := newTestService(&fakeFetcher{}, &fakeRoster{members: testRoster})

	_, err := service.GetVotesForDocument(context.Background(), "missing")
	require.ErrorIs(t, err, ErrFetchFailure)
	require.EqualError(t, err, "HTTP error 404")

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	require.Equal(t, 404, fetchErr.Status)
	require.Equal(t, "https://site.test/doc/missing_EN.html", fetchErr.Url)
}

func TestGetVotesForDocumentTransportError(t *testing.T) {
	transportErr := errors.New("connection reset")
	fetcher := &fakeFetcher{responses: map[string]fakeResponse{
		"https://site.test/doc/PV-9-2024-01-17-RCV_EN.html": {err: transportErr},
	}}
	service, tel := newTestService(fetcher, &fakeRoster{members: testRoster})

	_, err := service.GetVotesForDocument(context.Background(), testDocumentId)
	require.ErrorIs(t, err, ErrFetchFailure)
	require.ErrorIs(t, err, transportErr)
	require.Len(t, tel.Reports(telemetry.KindBroken, report_service_votes), 1)
}

func TestGetVotesForDocumentRosterError(t *testing.T) {
	rosterErr := errors.New("roster unavailable")
	fetcher := &fakeFetcher{responses: map[string]fakeResponse{
		"https://site.test/doc/PV-9-2024-01-17-RCV_EN.html": {status: 200, body: sampleDocument()},
	}}
	service, _ := newTestService(fetcher, &fakeRoster{err: rosterErr})

	_, err := service.GetVotesForDocument(context.Background(), testDocumentId)
	require.ErrorIs(t, err, rosterErr)
	require.NotErrorIs(t, err, ErrFetchFailure)
}

func listingUrl(limit string) string {
	params := url.Values{}
	params.Set("work-type", "PLENARY_RCV_EP")
	params.Set("offset", "0")
	params.Set("limit", limit)
	return "https://api.test/v1/documents?" + params.Encode()
}

func TestGetDocumentIdentifiers(t *testing.T) {
	fetcher := &fakeFetcher{responses: map[string]fakeResponse{
		listingUrl("2"): {status: 200, body: `{
			"data": [
				{"id": "eli/dl/doc/PV-9-2024-01-17-RCV", "identifier": "PV-9-2024-01-17-RCV"},
				{"id": "eli/dl/doc/PV-9-2024-01-18-RCV", "identifier": "PV-9-2024-01-18-RCV"}
			],
			"@context": []
		}`},
		listingUrl("0"): {status: 200, body: `{"data": []}`},
	}}
	service, _ := newTestService(fetcher, &fakeRoster{})

	ids, err := service.GetDocumentIdentifiers(context.Background(), 2)
	require.NoError(t, err)
	require.Equal(t, []string{"PV-9-2024-01-17-RCV", "PV-9-2024-01-18-RCV"}, ids)

	ids, err = service.GetDocumentIdentifiers(context.Background(), 0)
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestGetDocumentIdentifiersFailures(t *testing.T) {
	fetcher := &fakeFetcher{responses: map[string]fakeResponse{
		listingUrl("1"): {status: 200, body: `{"data": {"identifier": "PV-9-2024-01-17-RCV"}}`},
		listingUrl("2"): {status: 200, body: `{"items": []}`},
		listingUrl("3"): {status: 200, body: `<html>`},
		listingUrl("4"): {status: 503, body: ``},
	}}
	service, tel := newTestService(fetcher, &fakeRoster{})
	ctx := context.Background()

	_, err := service.GetDocumentIdentifiers(ctx, -1)
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = service.GetDocumentIdentifiers(ctx, 1)
	require.ErrorIs(t, err, ErrMalformedResponse)

	_, err = service.GetDocumentIdentifiers(ctx, 2)
	require.ErrorIs(t, err, ErrMalformedResponse)

	_, err = service.GetDocumentIdentifiers(ctx, 3)
	require.ErrorIs(t, err, ErrMalformedResponse)

	_, err = service.GetDocumentIdentifiers(ctx, 4)
	require.ErrorIs(t, err, ErrFetchFailure)
	require.EqualError(t, err, "HTTP error 503")

	warnings := tel.Reports(telemetry.KindWarning, report_service_identifiers)
	require.Len(t, warnings, 1)
	require.ErrorIs(t, warnings[0].Params[0].(error), ErrFetchFailure)
}

func TestSourceFromDocumentId(t *testing.T) {
	source := SourceFromDocumentID("PV-9-2023-06-01-RCV")
	require.Equal(t, time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC), source.Date)

	source = SourceFromDocumentID("A-9-2023-0288")
	require.True(t, source.Date.IsZero())
	require.Equal(t, "A-9-2023-0288", source.DocumentID)
}
