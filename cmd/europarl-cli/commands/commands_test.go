package commands

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ABCurado/eu-parliment-votes-sdk/internal/components/telemetry"
	"github.com/ABCurado/eu-parliment-votes-sdk/internal/votes"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestReadConfigDefaults(t *testing.T) {
	config, err := readConfig(filepath.Join(t.TempDir(), "config.json5"))
	require.NoError(t, err)
	if diff := cmp.Diff(defaultConfig, config); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestReadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json5")
	err := os.WriteFile(path, []byte(`{
		// only what differs from the defaults
		europarl: { requests_per_second: 5 },
		watch: { limit: 3, email: { smtp_host: "smtp.test", to: ["alerts@example.test"] } },
	}`), 0644)
	require.NoError(t, err)

	config, err := readConfig(path)
	require.NoError(t, err)
	require.Equal(t, 5.0, config.Europarl.RequestsPerSecond)
	require.Equal(t, votes.DefaultApiUrl, config.Europarl.ApiUrl)
	require.Equal(t, 3, config.Watch.Limit)
	require.Equal(t, "@every 1h", config.Watch.Schedule)
	require.Equal(t, 587, config.Watch.Email.SmtpPort)
	require.True(t, config.Watch.Email.Enabled())
	require.False(t, defaultConfig.Watch.Email.Enabled())
}

type fakeFetcher struct {
	responses map[string]string
}

func (f fakeFetcher) get(url string) (int, []byte, error) {
	body, ok := f.responses[url]
	if !ok {
		return 404, nil, nil
	}
	return 200, []byte(body), nil
}

func (f fakeFetcher) Fetch(_ context.Context, url string) (int, []byte, error) {
	return f.get(url)
}

func (f fakeFetcher) FetchJSON(_ context.Context, url string) (int, []byte, error) {
	return f.get(url)
}

type fakeRoster []votes.Member

func (r fakeRoster) LoadRoster(context.Context, int, int) ([]votes.Member, error) {
	return r, nil
}

type memoryLedger map[string]bool

func (l memoryLedger) Seen(_ context.Context, id string) (bool, error) {
	return l[id], nil
}

func (l memoryLedger) MarkSeen(_ context.Context, id string) error {
	l[id] = true
	return nil
}

const voteDocument = `<html><body>
<table class="doc_box_header"><tr><td>
	<table><tr><td><span>Report on fisheries </span><span><a href="#">A9-0100/2024</a></span></td></tr></table>
	<table><tr><td>EPP</td><td>Martin, Dupont</td></tr></table>
	<table><tr><td>ECR</td><td>Rossi</td></tr></table>
	<table><tr><td>Renew</td><td>0</td></tr></table>
</td></tr></table>
</body></html>`

func TestWatcherPoll(t *testing.T) {
	fetcher := fakeFetcher{responses: map[string]string{
		"https://api.test/documents?limit=5&offset=0&work-type=PLENARY_RCV_EP": `{"data": [
			{"identifier": "PV-9-2024-04-10-RCV"},
			{"identifier": "PV-9-2024-04-11-RCV"},
			{"identifier": "PV-9-2024-04-12-RCV"}
		]}`,
		"https://site.test/PV-9-2024-04-10-RCV_EN.html": voteDocument,
		"https://site.test/PV-9-2024-04-11-RCV_EN.html": voteDocument,
	}}
	roster := fakeRoster{
		{ID: 1, FullName: "Alice MARTIN"},
		{ID: 2, FullName: "Bob DUPONT"},
		{ID: 3, FullName: "Carla ROSSI"},
	}
	tel := telemetry.NewRecorder()
	service := votes.NewService(fetcher, fetcher, roster, tel, votes.Options{
		ApiUrl:  "https://api.test",
		SiteUrl: "https://site.test",
	})

	ledger := memoryLedger{"PV-9-2024-04-11-RCV": true}
	var notified []documentSummary
	w := &watcher{
		service: service,
		ledger:  ledger,
		tel:     tel,
		limit:   5,
		notify: func(summaries []documentSummary) error {
			notified = summaries
			return nil
		},
	}

	summaries := w.poll(context.Background())
	require.Len(t, summaries, 1)
	require.Equal(t, "PV-9-2024-04-10-RCV", summaries[0].DocumentID)
	require.Len(t, summaries[0].Proposals, 1)
	require.Equal(t, "A9-0100/2024", summaries[0].Proposals[0].ID)
	require.Equal(t, []int64{1, 2}, summaries[0].Proposals[0].Final().Result.Positive)
	require.Equal(t, summaries, notified)

	// the document that failed to load stays unseen so it is retried
	require.Equal(t, memoryLedger{
		"PV-9-2024-04-10-RCV": true,
		"PV-9-2024-04-11-RCV": true,
	}, ledger)
	require.Len(t, tel.Reports(telemetry.KindWarning, report_watch_poll), 1)

	notified = nil
	require.Empty(t, w.poll(context.Background()))
	require.Nil(t, notified)
}

// blockingFetcher holds every document fetch until release is closed.
type blockingFetcher struct {
	fakeFetcher
	started chan struct{}
	once    *sync.Once
	release chan struct{}
}

func (f blockingFetcher) Fetch(ctx context.Context, url string) (int, []byte, error) {
	f.once.Do(func() { close(f.started) })
	<-f.release
	return f.fakeFetcher.Fetch(ctx, url)
}

func TestWatcherPollDoesNotOverlap(t *testing.T) {
	fetcher := blockingFetcher{
		fakeFetcher: fakeFetcher{responses: map[string]string{
			"https://api.test/documents?limit=5&offset=0&work-type=PLENARY_RCV_EP": `{"data": [
				{"identifier": "PV-9-2024-04-10-RCV"}
			]}`,
			"https://site.test/PV-9-2024-04-10-RCV_EN.html": voteDocument,
		}},
		started: make(chan struct{}),
		once:    &sync.Once{},
		release: make(chan struct{}),
	}
	tel := telemetry.NewRecorder()
	service := votes.NewService(fetcher, fetcher, fakeRoster{{ID: 1, FullName: "Alice MARTIN"}}, tel, votes.Options{
		ApiUrl:  "https://api.test",
		SiteUrl: "https://site.test",
	})

	var (
		mutex         sync.Mutex
		notifications int
	)
	w := &watcher{
		service: service,
		ledger:  &lockedLedger{seen: memoryLedger{}},
		tel:     tel,
		limit:   5,
		notify: func(summaries []documentSummary) error {
			mutex.Lock()
			defer mutex.Unlock()
			notifications++
			return nil
		},
	}

	done := make(chan []documentSummary)
	go func() {
		done <- w.poll(context.Background())
	}()

	<-fetcher.started
	require.Empty(t, w.poll(context.Background()))

	close(fetcher.release)
	first := <-done
	require.Len(t, first, 1)

	mutex.Lock()
	defer mutex.Unlock()
	require.Equal(t, 1, notifications)
}

type lockedLedger struct {
	mutex sync.Mutex
	seen  memoryLedger
}

func (l *lockedLedger) Seen(ctx context.Context, id string) (bool, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return l.seen.Seen(ctx, id)
}

func (l *lockedLedger) MarkSeen(ctx context.Context, id string) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return l.seen.MarkSeen(ctx, id)
}

func TestRenderDigest(t *testing.T) {
	proposal := votes.Proposal{
		ID:    "A9-0100/2024",
		Title: "Report on fisheries",
		Votes: []votes.Vote{{
			Result: votes.Result{
				Positive:   []int64{1, 2},
				Negative:   []int64{3},
				Abstention: []int64{},
				NoVote:     []int64{4},
			},
		}},
	}

	digest := renderDigest([]documentSummary{
		{DocumentID: "PV-9-2024-04-10-RCV", Proposals: []votes.Proposal{proposal}},
		{DocumentID: "PV-9-2024-04-11-RCV", Skipped: 2},
	})
	require.Equal(t, `PV-9-2024-04-10-RCV: 1 proposals
- A9-0100/2024 Report on fisheries: 2 for, 1 against, 0 abstained

PV-9-2024-04-11-RCV: 0 proposals (2 vote blocks could not be read)
`, digest)
}

func TestSendDigestDisabled(t *testing.T) {
	require.NoError(t, sendDigest(EmailConfig{}, []documentSummary{{DocumentID: "x"}}))
}

func TestProposalRows(t *testing.T) {
	rows := proposalRows([]votes.Proposal{{
		ID:    "A9-0100/2024",
		Title: "Report on fisheries",
		Votes: []votes.Vote{
			{Result: votes.Result{Positive: []int64{1}}},
			{Result: votes.Result{Positive: []int64{1, 2}, NoVote: []int64{3}}},
		},
		FinalVote: 1,
	}})
	require.Len(t, rows, 1)
	require.Equal(t, "A9-0100/2024", rows[0][0])
	require.Equal(t, 2, rows[0][2])
	require.Equal(t, 2, rows[0][3])
	require.Equal(t, 1, rows[0][6])
}

func TestPrintedNames(t *testing.T) {
	names := printedNames([]votes.Proposal{{
		Votes: []votes.Vote{
			{Positive: []string{"Martin"}, Negative: []string{"Rossi"}},
			{Abstention: []string{"Novak"}},
		},
	}})
	require.Equal(t, []string{"Martin", "Rossi", "Novak"}, names)
}
