package relay

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"purchase-order-relay-go/internal/config"
	"purchase-order-relay-go/internal/metrics"
	"purchase-order-relay-go/internal/model"
	"purchase-order-relay-go/internal/notion"
	"purchase-order-relay-go/internal/slack"
)

// Store is the record store surface the relay needs: a paginated query
// and the single-property write that sets the notified latch.
type Store interface {
	Query(ctx context.Context, filter *notion.Filter) ([]model.Record, error)
	SetCheckbox(ctx context.Context, pageID, property string, value bool) error
	SupportsServerFilter() bool
}

// Sender renders and delivers notifications.
type Sender interface {
	Render(fields model.OrderFields, link string) slack.Message
	Send(ctx context.Context, msg slack.Message) error
}

// Auditor records notification attempts. Audit failures are logged and
// never affect the run.
type Auditor interface {
	Insert(entry *model.NotificationLog) error
}

// Relay drives one sync pass: fetch matching records, notify each
// pending one, then latch its notified flag. Records are processed
// strictly one at a time so one failure cannot block the rest, and so
// a latch write always follows its own confirmed delivery.
type Relay struct {
	store     Store
	sender    Sender
	audit     Auditor
	extractor notion.Extractor
	cfg       *config.NotionConfig
	metrics   *metrics.Metrics
}

// New creates a new relay. audit may be nil when no audit database is
// configured.
func New(cfg *config.NotionConfig, store Store, sender Sender, audit Auditor, m *metrics.Metrics) *Relay {
	return &Relay{
		store:     store,
		sender:    sender,
		audit:     audit,
		extractor: notion.NewExtractor(cfg.Properties),
		cfg:       cfg,
		metrics:   m,
	}
}

// Eligible reports whether a record needs a notification: its status
// matches the configured target and its notified flag is unset. A
// missing or malformed status never matches.
func (r *Relay) Eligible(rec model.Record) bool {
	return r.extractor.StatusName(rec) == r.cfg.TargetStatus && !r.extractor.Notified(rec)
}

// Run executes one sync pass. A fetch failure aborts the run; failures
// on individual records are logged, skipped and reported in the
// aggregate result after every record has been attempted.
func (r *Relay) Run(ctx context.Context) error {
	start := time.Now()
	r.metrics.SyncRuns.Inc()
	defer func() {
		r.metrics.RunDuration.Observe(time.Since(start).Seconds())
	}()

	logrus.Info("Starting sync run")

	// Push the predicate into the store when it supports compound
	// filters; otherwise scan everything and filter locally. The local
	// eligibility check runs in both modes, so results are identical.
	var filter *notion.Filter
	if r.store.SupportsServerFilter() {
		target := r.cfg.TargetStatus
		notified := false
		filter = &notion.Filter{Status: &target, Notified: &notified}
	}

	records, err := r.store.Query(ctx, filter)
	if err != nil {
		return fmt.Errorf("fetch records: %w", err)
	}
	r.metrics.RecordsFetched.Add(float64(len(records)))

	var eligible []model.Record
	for _, rec := range records {
		if r.Eligible(rec) {
			eligible = append(eligible, rec)
		}
	}
	r.metrics.EligibleRecords.Set(float64(len(eligible)))

	if len(eligible) == 0 {
		logrus.Info("No records pending notification")
		return nil
	}

	// The store already sorts, but ordering is a contract of the loop,
	// not of the transport.
	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].LastEditedAt.Before(eligible[j].LastEditedAt)
	})

	logrus.Infof("Processing %d pending records", len(eligible))

	var failed int
	for _, rec := range eligible {
		if ctx.Err() != nil {
			return fmt.Errorf("sync cancelled: %w", ctx.Err())
		}
		if err := r.processRecord(ctx, rec); err != nil {
			failed++
			logrus.Errorf("Failed to process record %s: %v", rec.ID, err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d notifications failed", failed, len(eligible))
	}

	logrus.Infof("Sync run completed in %v", time.Since(start))
	return nil
}

// processRecord notifies about one record and sets its latch. The
// latch is written only after the endpoint confirmed delivery at the
// payload level; a record that was delivered but could not be latched
// is surfaced as a duplicate-notification risk.
func (r *Relay) processRecord(ctx context.Context, rec model.Record) error {
	fields := r.extractor.Fields(rec)
	msg := r.sender.Render(fields, r.cfg.DatabaseURL)

	logrus.Infof("Notifying about order %q (record %s)", fields.Title, rec.ID)

	if err := r.sender.Send(ctx, msg); err != nil {
		r.metrics.DeliveryFailures.Inc()
		r.logAttempt(rec.ID, fields.Title, model.NotificationStatusDeliveryFailed, err)
		return fmt.Errorf("deliver notification: %w", err)
	}

	if err := r.store.SetCheckbox(ctx, rec.ID, r.cfg.Properties.Notified, true); err != nil {
		r.metrics.LatchFailures.Inc()
		logrus.Warnf("Record %s was delivered but its notified flag could not be set, it will be notified again on the next run: %v", rec.ID, err)
		r.logAttempt(rec.ID, fields.Title, model.NotificationStatusLatchFailed, err)
		return fmt.Errorf("set notified flag after delivery: %w", err)
	}

	r.metrics.NotificationsSent.Inc()
	r.logAttempt(rec.ID, fields.Title, model.NotificationStatusSent, nil)
	return nil
}

func (r *Relay) logAttempt(pageID, title, status string, cause error) {
	if r.audit == nil {
		return
	}

	entry := &model.NotificationLog{
		PageID: pageID,
		Title:  title,
		Status: status,
	}
	if cause != nil {
		entry.ErrorMsg = cause.Error()
	}

	if err := r.audit.Insert(entry); err != nil {
		logrus.Errorf("Failed to write audit log for record %s: %v", pageID, err)
	}
}
