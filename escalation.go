package companionsdk

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ──────────────────────────────────────────────
// Escalation Dispatcher — operator alerting with audit trail
// ──────────────────────────────────────────────

// AlertPayload is delivered to each configured operator recipient.
type AlertPayload struct {
	AlertID   string     `json:"alert_id"`
	UserID    string     `json:"user_id"`
	UserEmail string     `json:"user_email,omitempty"`
	UserName  string     `json:"user_name,omitempty"`
	Severity  int        `json:"severity"`
	Type      CrisisType `json:"type"`
	Message   string     `json:"message"`
	Timestamp time.Time  `json:"timestamp"`
}

// AlertSender delivers one alert to one recipient. Injected by the caller
// (email, ops chat, pager). Errors and panics are contained per recipient.
type AlertSender func(ctx context.Context, recipient string, payload AlertPayload) error

// EscalationJob is one high-severity case to dispatch.
type EscalationJob struct {
	UserID     string
	Indicators CrisisIndicators
	Excerpt    string // short message excerpt for the operator alert
}

// EscalationOutcome summarizes one dispatch after all sends settle.
type EscalationOutcome struct {
	AlertID  string
	Notified []string // recipients that acknowledged the send
	Failed   []string
}

// EscalationConfig configures the dispatcher.
type EscalationConfig struct {
	Recipients  []string      // operator addresses, alerted on every escalation
	SendTimeout time.Duration // per-recipient send budget, default 10s
	QueueSize   int           // background queue capacity, default 64
	Workers     int           // background workers, default 1
}

// EscalationDispatcher notifies operators and records the audit trail for
// high-severity cases. Every path is best-effort: a failed send, a missing
// user, or a panic never propagates to the conversation flow.
//
// Escalate runs inline and returns the dispatch summary; Submit enqueues
// for the background workers when the caller does not need the summary.
type EscalationDispatcher struct {
	recipients []string
	sender     AlertSender
	activity   ActivityStore
	profiles   ProfileStore
	timeout    time.Duration

	queue  chan EscalationJob
	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// NewEscalationDispatcher creates and starts a dispatcher.
// Call Stop() to drain the background queue and shut down workers.
func NewEscalationDispatcher(cfg EscalationConfig, sender AlertSender, activity ActivityStore, profiles ProfileStore) *EscalationDispatcher {
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 10 * time.Second
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &EscalationDispatcher{
		recipients: cfg.Recipients,
		sender:     sender,
		activity:   activity,
		profiles:   profiles,
		timeout:    cfg.SendTimeout,
		queue:      make(chan EscalationJob, cfg.QueueSize),
		cancel:     cancel,
	}

	for i := 0; i < cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx)
	}
	return d
}

// Submit enqueues an escalation for background dispatch. Non-blocking;
// drops (and logs) if the queue is full. Returns true if enqueued.
func (d *EscalationDispatcher) Submit(job EscalationJob) bool {
	select {
	case d.queue <- job:
		return true
	default:
		log.Printf("[Escalation] Queue full, dropping dispatch for user=%s", job.UserID)
		return false
	}
}

// Pending returns the number of jobs waiting in the background queue.
func (d *EscalationDispatcher) Pending() int {
	return len(d.queue)
}

// Stop signals workers to drain remaining jobs and exit. Blocks until done.
func (d *EscalationDispatcher) Stop() {
	d.cancel()
	close(d.queue)
	d.wg.Wait()
}

func (d *EscalationDispatcher) worker(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case job, ok := <-d.queue:
			if !ok {
				return
			}
			d.Escalate(context.Background(), job)
		case <-ctx.Done():
			// Drain remaining
			for job := range d.queue {
				d.Escalate(context.Background(), job)
			}
			return
		}
	}
}

// Escalate alerts every configured recipient concurrently, waits for all
// sends to settle, writes the audit record, and updates the user's crisis
// metadata. It never returns an error and never panics: any internal
// failure is logged and the partial outcome is returned.
func (d *EscalationDispatcher) Escalate(ctx context.Context, job EscalationJob) (outcome EscalationOutcome) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Escalation] Panic during dispatch for user=%s: %v", job.UserID, r)
		}
	}()

	outcome.AlertID = uuid.NewString()
	now := time.Now()

	profile, err := d.profiles.Get(ctx, job.UserID)
	if err != nil {
		log.Printf("[Escalation] Profile lookup failed for user=%s: %v", job.UserID, err)
		return outcome
	}
	if profile == nil {
		log.Printf("[Escalation] Unknown user=%s, skipping dispatch", job.UserID)
		return outcome
	}

	payload := AlertPayload{
		AlertID:   outcome.AlertID,
		UserID:    job.UserID,
		UserEmail: profile.Email,
		UserName:  profile.Name,
		Severity:  job.Indicators.Severity,
		Type:      job.Indicators.Type,
		Message:   job.Excerpt,
		Timestamp: now,
	}

	outcome.Notified, outcome.Failed = d.fanOut(ctx, payload)

	d.writeAudit(ctx, job, outcome, now)

	if err := d.profiles.RecordCrisisAlert(ctx, job.UserID, now); err != nil {
		log.Printf("[Escalation] Profile update failed for user=%s: %v", job.UserID, err)
	}

	log.Printf("[Escalation] Dispatched | user=%s severity=%d type=%s notified=%d failed=%d",
		job.UserID, job.Indicators.Severity, job.Indicators.Type, len(outcome.Notified), len(outcome.Failed))
	return outcome
}

// fanOut sends to all recipients concurrently and waits for every send to
// settle. Per-recipient failures are isolated; one bad recipient never
// aborts the rest.
func (d *EscalationDispatcher) fanOut(ctx context.Context, payload AlertPayload) (notified, failed []string) {
	if d.sender == nil || len(d.recipients) == 0 {
		return nil, nil
	}

	var mu sync.Mutex
	g := new(errgroup.Group)
	for _, recipient := range d.recipients {
		recipient := recipient
		g.Go(func() error {
			err := d.sendOne(ctx, recipient, payload)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Printf("[Escalation] Alert send failed | recipient=%s: %v", recipient, err)
				failed = append(failed, recipient)
			} else {
				notified = append(notified, recipient)
			}
			return nil
		})
	}
	_ = g.Wait() // per-recipient errors are already isolated above
	return notified, failed
}

func (d *EscalationDispatcher) sendOne(ctx context.Context, recipient string, payload AlertPayload) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &senderPanicError{recipient: recipient, value: r}
		}
	}()
	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return d.sender(sendCtx, recipient, payload)
}

func (d *EscalationDispatcher) writeAudit(ctx context.Context, job EscalationJob, outcome EscalationOutcome, at time.Time) {
	if d.activity == nil {
		return
	}
	err := d.activity.Append(ctx, &ActivityEvent{
		UserID:    job.UserID,
		Type:      EventCrisisEscalation,
		Timestamp: at,
		Metadata: map[string]any{
			"alert_id":   outcome.AlertID,
			"severity":   job.Indicators.Severity,
			"type":       string(job.Indicators.Type),
			"confidence": job.Indicators.Confidence,
			"notified":   outcome.Notified,
			"success":    len(outcome.Failed) == 0,
		},
	})
	if err != nil {
		log.Printf("[Escalation] Audit write failed for user=%s: %v", job.UserID, err)
	}
}

type senderPanicError struct {
	recipient string
	value     any
}

func (e *senderPanicError) Error() string {
	return "alert sender panic for " + e.recipient
}
