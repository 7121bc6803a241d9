package billing

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"

	"gorm.io/gorm"

	"github.com/tablescout/tablescout/app/models"
)

var (
	// ErrMissingSecret means the webhook signing secret is not configured.
	ErrMissingSecret = errors.New("webhook signing secret is not configured")
	// ErrInvalidSignature means the X-Signature header is absent or wrong.
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// Outcome classifies how a webhook delivery was handled. Every outcome is
// acknowledged with 200 by the HTTP layer; only errors produce non-2xx.
type Outcome int

const (
	OutcomeProcessed Outcome = iota
	OutcomeAlreadyProcessed
	OutcomeUserNotFound
	OutcomeIgnored
)

// Notifier is an optional hook for side-channel notifications triggered by
// webhook events. Failures must be swallowed by the implementation.
type Notifier interface {
	NotifyPaymentFailed(user *models.User)
}

// Processor handles one webhook delivery end to end: authenticate,
// deduplicate, resolve the user, and apply the state transition. All
// collaborators are injected at construction time; nothing is read from
// ambient process state.
type Processor struct {
	secret   string
	repo     Repository
	notifier Notifier
}

// NewProcessor creates a webhook processor from an injected signing secret
// and repository.
func NewProcessor(secret string, repo Repository) *Processor {
	return &Processor{secret: secret, repo: repo}
}

// NewProcessorFromDB creates a webhook processor bound to a GORM DB handle.
func NewProcessorFromDB(secret string, db *gorm.DB) *Processor {
	return NewProcessor(secret, NewRepository(db))
}

// WithNotifier attaches a notification hook and returns the processor.
func (p *Processor) WithNotifier(n Notifier) *Processor {
	p.notifier = n
	return p
}

// Process runs a single webhook delivery to completion. Each invocation is
// independent and stateless; retries are the provider's responsibility,
// driven by error returns mapped to non-2xx responses.
func (p *Processor) Process(ctx context.Context, rawBody []byte, signatureHeader string) (Outcome, error) {
	_ = ctx
	if p.secret == "" {
		return 0, ErrMissingSecret
	}
	// Verify over the raw bytes before anything else; no store access may
	// happen for unauthenticated deliveries.
	if !VerifyWebhookSignature(rawBody, signatureHeader, p.secret) {
		return 0, ErrInvalidSignature
	}

	event, err := ParseWebhookEvent(rawBody)
	if err != nil {
		return 0, fmt.Errorf("parse webhook payload: %w", err)
	}

	// Insert the idempotency record with processed=false before any side
	// effects. Two near-simultaneous deliveries can still both pass here;
	// acceptable, since the mutations are absolute field sets.
	created, stored, err := p.repo.CreateWebhookEventIfNotExists(&models.WebhookEvent{
		EventID:   event.DedupKey(),
		EventName: event.EventName,
		Payload:   string(rawBody),
	})
	if err != nil {
		return 0, fmt.Errorf("persist webhook event: %w", err)
	}
	if !created {
		return OutcomeAlreadyProcessed, nil
	}

	if event.Kind == EventUnknown {
		log.Printf("billing: ignoring unknown webhook event %q (subscription %s)", event.EventName, event.SubscriptionID)
		if err := p.repo.MarkWebhookProcessed(stored.ID); err != nil {
			return 0, fmt.Errorf("mark webhook processed: %w", err)
		}
		return OutcomeIgnored, nil
	}

	user, err := p.resolveUser(event)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Acknowledge instead of erroring: a retry cannot resolve the
			// user either and would just loop on the provider side.
			log.Printf("billing: no user for webhook %s (user_id=%q email=%q)", event.EventName, event.UserID, event.Attributes.UserEmail)
			if err := p.repo.MarkWebhookProcessed(stored.ID); err != nil {
				return 0, fmt.Errorf("mark webhook processed: %w", err)
			}
			return OutcomeUserNotFound, nil
		}
		return 0, fmt.Errorf("resolve user: %w", err)
	}

	fields, ok := Transition(event)
	if !ok {
		if err := p.repo.MarkWebhookProcessed(stored.ID); err != nil {
			return 0, fmt.Errorf("mark webhook processed: %w", err)
		}
		return OutcomeIgnored, nil
	}

	if err := p.repo.UpdateSubscriptionFields(user.ID, fields); err != nil {
		// The event row stays processed=false; the provider's retry will
		// find it "seen but not processed" and the mutation re-applies
		// cleanly on a manual re-drive.
		return 0, fmt.Errorf("update subscription fields: %w", err)
	}

	if event.Kind == EventSubscriptionPaymentFailed && p.notifier != nil {
		p.notifier.NotifyPaymentFailed(user)
	}

	if err := p.repo.MarkWebhookProcessed(stored.ID); err != nil {
		return 0, fmt.Errorf("mark webhook processed: %w", err)
	}
	return OutcomeProcessed, nil
}

// resolveUser prefers the user id embedded in checkout custom data and falls
// back to an exact email match.
func (p *Processor) resolveUser(event *WebhookEvent) (*models.User, error) {
	if event.UserID != "" {
		if id, err := strconv.ParseUint(event.UserID, 10, 64); err == nil {
			return p.repo.FindUserByID(uint(id))
		}
		log.Printf("billing: malformed custom user_id %q, falling back to email", event.UserID)
	}
	if event.Attributes.UserEmail == "" {
		return nil, gorm.ErrRecordNotFound
	}
	return p.repo.FindUserByEmail(event.Attributes.UserEmail)
}
