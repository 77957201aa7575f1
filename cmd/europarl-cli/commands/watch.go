package commands

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/ABCurado/eu-parliment-votes-sdk/internal/components/chrono"
	"github.com/ABCurado/eu-parliment-votes-sdk/internal/components/telemetry"
	"github.com/ABCurado/eu-parliment-votes-sdk/internal/votes"

	"github.com/jordan-wright/email"
	"github.com/spf13/cobra"
)

var watchSchedule string

func init() {
	watchCmd.Flags().StringVar(&watchSchedule, "schedule", "", `The cron schedule to poll on, defaults to the config value ("@every 1h").`)
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch [--schedule <cron spec>]",
	Short: "Polls for new roll-call vote documents and reports them as they appear.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		e := setup(cmd)
		defer e.Close()

		schedule := e.config.Watch.Schedule
		if watchSchedule != "" {
			schedule = watchSchedule
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		telemetry.InstrumentPerfStats(ctx)

		w := &watcher{
			service: e.service,
			ledger:  e.store,
			tel:     telemetry.NewScopedAPI("watch", e.tel),
			limit:   e.config.Watch.Limit,
			notify: func(summaries []documentSummary) error {
				return sendDigest(e.config.Watch.Email, summaries)
			},
		}

		cron := chrono.NewStandardCron(e.tel, e.time)
		defer cron.Stop()
		err := cron.Cron(schedule, func() {
			w.poll(ctx)
		})
		if err != nil {
			fatal("invalid schedule", err)
		}

		slog.Info("watching for new vote documents", "schedule", schedule)
		w.poll(ctx)
		<-ctx.Done()
	},
}

const (
	report_watch_poll   = "watcher.poll"
	report_watch_notify = "watcher.notify"
)

type ledger interface {
	Seen(ctx context.Context, documentId string) (bool, error)
	MarkSeen(ctx context.Context, documentId string) error
}

type documentSummary struct {
	DocumentID string
	Proposals  []votes.Proposal
	Skipped    int
}

type watcher struct {
	service *votes.Service
	ledger  ledger
	tel     telemetry.API
	limit   int
	notify  func([]documentSummary) error

	// running is held for the duration of a poll.
	running sync.Mutex
}

// poll processes every listed document that was not seen before, a document
// that fails to load is retried on the next poll. A poll started while another
// one is still running returns nothing.
func (w *watcher) poll(ctx context.Context) []documentSummary {
	if !w.running.TryLock() {
		w.tel.ReportDebug(report_watch_poll, "previous poll still running, skipping")
		return nil
	}
	defer w.running.Unlock()

	ids, err := w.service.GetDocumentIdentifiers(ctx, w.limit)
	if err != nil {
		w.tel.ReportBroken(report_watch_poll, err)
		return nil
	}

	var summaries []documentSummary
	for _, id := range ids {
		seen, err := w.ledger.Seen(ctx, id)
		if err != nil {
			w.tel.ReportBroken(report_watch_poll, err, id)
			continue
		}
		if seen {
			continue
		}

		result, err := w.service.LoadDocument(ctx, id)
		if err != nil {
			w.tel.ReportWarning(report_watch_poll, err, id)
			continue
		}
		summary := documentSummary{
			DocumentID: id,
			Proposals:  result.Proposals,
			Skipped:    len(result.Skipped),
		}
		summaries = append(summaries, summary)
		slog.Info("new vote document", "document", id, "proposals", len(result.Proposals), "skipped", summary.Skipped)

		err = w.ledger.MarkSeen(ctx, id)
		if err != nil {
			w.tel.ReportBroken(report_watch_poll, err, id)
		}
	}
	w.tel.ReportCount(report_watch_poll, int64(len(summaries)))

	if len(summaries) > 0 && w.notify != nil {
		err = w.notify(summaries)
		if err != nil {
			w.tel.ReportBroken(report_watch_notify, err)
		}
	}
	return summaries
}

func renderDigest(summaries []documentSummary) string {
	var out strings.Builder
	for i, summary := range summaries {
		if i > 0 {
			out.WriteString("\n")
		}
		fmt.Fprintf(&out, "%s: %d proposals", summary.DocumentID, len(summary.Proposals))
		if summary.Skipped > 0 {
			fmt.Fprintf(&out, " (%d vote blocks could not be read)", summary.Skipped)
		}
		out.WriteString("\n")

		for _, proposal := range summary.Proposals {
			result := proposal.Final().Result
			fmt.Fprintf(
				&out,
				"- %s %s: %d for, %d against, %d abstained\n",
				proposal.ID,
				proposal.Title,
				len(result.Positive),
				len(result.Negative),
				len(result.Abstention),
			)
		}
	}
	return out.String()
}

func sendDigest(config EmailConfig, summaries []documentSummary) error {
	if !config.Enabled() {
		return nil
	}

	mail := email.NewEmail()
	mail.From = config.From
	mail.To = config.To
	mail.Subject = fmt.Sprintf("%d new roll-call vote documents", len(summaries))
	mail.Text = []byte(renderDigest(summaries))

	addr := fmt.Sprintf("%s:%d", config.SmtpHost, config.SmtpPort)
	var auth smtp.Auth
	if config.Username != "" {
		auth = smtp.PlainAuth("", config.Username, config.Password, config.SmtpHost)
	}
	err := mail.Send(addr, auth)
	if err != nil && auth != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(addr, nil)
	}
	return err
}
