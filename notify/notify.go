package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

type EventType string

const (
	EventRecruiterApproved   EventType = "recruiter.approved"
	EventRecruiterRejected   EventType = "recruiter.rejected"
	EventCompanyVerification EventType = "company.verification_updated"
	EventApplicationStatus   EventType = "application.status_updated"
	EventApplicationReceived EventType = "application.received"
	EventAdmissionStatus     EventType = "admission.status_updated"
)

// Event is a user-facing notification. Data carries identifiers for
// machine consumers of the event stream.
type Event struct {
	Type           EventType         `json:"type"`
	RecipientID    string            `json:"recipient_id"`
	RecipientEmail string            `json:"recipient_email"`
	RecipientName  string            `json:"recipient_name"`
	Subject        string            `json:"subject"`
	Message        string            `json:"message"`
	Data           map[string]string `json:"data,omitempty"`
	OccurredAt     time.Time         `json:"occurred_at"`
}

// Provider delivers events over one channel (e-mail, message broker, log).
type Provider interface {
	Name() string
	Deliver(ctx context.Context, ev Event) error
}

// Notifier is what the rest of the application depends on.
type Notifier interface {
	Notify(ctx context.Context, ev Event)
}

const defaultDeliveryTimeout = 10 * time.Second

// Dispatcher fans each event out to every provider in the background.
// Delivery failures are logged, never returned to the caller.
type Dispatcher struct {
	providers []Provider
	timeout   time.Duration
	wg        sync.WaitGroup
}

func NewDispatcher(providers ...Provider) *Dispatcher {
	return &Dispatcher{providers: providers, timeout: defaultDeliveryTimeout}
}

func (d *Dispatcher) Notify(ctx context.Context, ev Event) {
	if len(d.providers) == 0 {
		return
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	// Detach from the request so delivery survives the response being written.
	base := context.WithoutCancel(ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(base, d.timeout)
		defer cancel()
		if err := d.deliverAll(ctx, ev); err != nil {
			slog.Warn("Notification delivery incomplete", "event", ev.Type, "recipient", ev.RecipientID, "error", err)
		}
	}()
}

func (d *Dispatcher) deliverAll(ctx context.Context, ev Event) error {
	var g errgroup.Group
	for _, p := range d.providers {
		p := p
		g.Go(func() error {
			if err := p.Deliver(ctx, ev); err != nil {
				slog.Error("Notification provider failed", "provider", p.Name(), "event", ev.Type, "error", err)
				return err
			}
			return nil
		})
	}
	return g.Wait()
}

// Wait blocks until in-flight deliveries finish or ctx ends.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LogProvider writes events to the structured log. Used when no
// external channel is configured.
type LogProvider struct{}

func (LogProvider) Name() string { return "log" }

func (LogProvider) Deliver(ctx context.Context, ev Event) error {
	slog.InfoContext(ctx, "Notification", "event", ev.Type, "recipient", ev.RecipientEmail, "subject", ev.Subject)
	return nil
}
