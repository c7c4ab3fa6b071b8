package outbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/AchilleasB/hospital-kliniek/access-service/internal/config"
	"github.com/AchilleasB/hospital-kliniek/access-service/internal/core/ports"
	"github.com/lib/pq"
	"github.com/sony/gobreaker"
)

const (
	listenerMinReconnectInterval = 10 * time.Second
	listenerMaxReconnectInterval = time.Minute
	outboxChannelName            = "outbox_channel"

	eventProcessTimeout     = 30 * time.Second
	batchProcessTimeout     = 60 * time.Second
	periodicProcessInterval = 90 * time.Second

	healthCheckStaleThreshold = 5 * time.Minute

	maxEventsPerBatch = 100
)

// errUnpublishable marks rows that can never be delivered; they are marked
// processed so they stop blocking the batch.
var errUnpublishable = errors.New("unpublishable outbox event")

// Relay listens for PostgreSQL NOTIFY signals on outbox_channel and publishes
// the referenced appointment events to RabbitMQ.
type Relay struct {
	db        *sql.DB
	publisher ports.AppointmentEventPublisher
	dbURL     string
	dbCB      *gobreaker.CircuitBreaker

	mu            sync.Mutex
	lastProcessed time.Time
	healthy       bool
}

func NewRelay(db *sql.DB, dbURL string, publisher ports.AppointmentEventPublisher) *Relay {
	return &Relay{
		db:            db,
		dbURL:         dbURL,
		publisher:     publisher,
		dbCB:          config.NewCircuitBreaker(config.BreakerRelayDB),
		lastProcessed: time.Now(),
		healthy:       true,
	}
}

// IsHealthy is the liveness signal: the listener has not lost its
// connection without recovering.
func (r *Relay) IsHealthy() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.healthy
}

// IsReady additionally requires a closed breaker and recent progress.
func (r *Relay) IsReady() bool {
	if r.dbCB.State() == gobreaker.StateOpen {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.healthy && time.Since(r.lastProcessed) <= healthCheckStaleThreshold
}

func (r *Relay) markProgress() {
	r.mu.Lock()
	r.lastProcessed = time.Now()
	r.healthy = true
	r.mu.Unlock()
}

func (r *Relay) markDisconnected() {
	r.mu.Lock()
	r.healthy = false
	r.mu.Unlock()
}

// Start blocks until ctx is cancelled.
func (r *Relay) Start(ctx context.Context) error {
	reportProblem := func(ev pq.ListenerEventType, err error) {
		if err != nil {
			log.Printf("outbox relay: listener error: %v", err)
		}
	}

	listener := pq.NewListener(r.dbURL, listenerMinReconnectInterval, listenerMaxReconnectInterval, reportProblem)
	defer listener.Close()

	if err := listener.Listen(outboxChannelName); err != nil {
		return err
	}
	log.Printf("outbox relay: listening on '%s' for notifications...", outboxChannelName)

	// Catch up on anything written while the relay was down.
	if err := r.processUnprocessedEvents(ctx); err != nil {
		log.Printf("outbox relay: error processing startup backlog: %v", err)
	}

	ticker := time.NewTicker(periodicProcessInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("outbox relay: shutting down...")
			return ctx.Err()

		case notification := <-listener.Notify:
			if notification == nil {
				log.Println("outbox relay: received nil notification (reconnecting...)")
				r.markDisconnected()
				continue
			}
			if err := r.processEventByID(ctx, notification.Extra); err != nil {
				log.Printf("outbox relay: error processing event %s: %v", notification.Extra, err)
				continue
			}
			r.markProgress()

		case <-ticker.C:
			go listener.Ping()
			if err := r.processUnprocessedEvents(ctx); err != nil {
				log.Printf("outbox relay: error in periodic processing: %v", err)
				continue
			}
			r.markProgress()
		}
	}
}

// dispatch publishes one outbox row. It returns errUnpublishable for rows
// that should be marked processed without a publish.
func (r *Relay) dispatch(ctx context.Context, id, eventType string, payload []byte) error {
	if eventType != ports.AppointmentBookedEvent {
		log.Printf("outbox relay: skipping event %s of unknown type %q", id, eventType)
		return errUnpublishable
	}

	var evt ports.AppointmentBooked
	if err := json.Unmarshal(payload, &evt); err != nil {
		log.Printf("outbox relay: invalid payload for event %s: %v", id, err)
		return errUnpublishable
	}

	return r.publisher.PublishAppointmentBooked(ctx, evt)
}

// pendingEvent is an outbox row claimed for publishing.
type pendingEvent struct {
	id        string
	eventType string
	payload   []byte
}

const claimColumns = `SELECT id, event_type, payload FROM outbox_events WHERE processed_at IS NULL`

func (r *Relay) processEventByID(ctx context.Context, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, eventProcessTimeout)
	defer cancel()

	return r.processClaimed(ctx, claimColumns+` AND id = $1 FOR UPDATE SKIP LOCKED`, eventID)
}

func (r *Relay) processUnprocessedEvents(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, batchProcessTimeout)
	defer cancel()

	return r.processClaimed(ctx, claimColumns+` ORDER BY created_at LIMIT $1 FOR UPDATE SKIP LOCKED`, maxEventsPerBatch)
}

// processClaimed locks the rows selected by query, publishes each one and
// marks the delivered ones processed in the same transaction. Rows whose
// publish fails stay pending for the next pass.
func (r *Relay) processClaimed(ctx context.Context, query string, args ...any) error {
	_, err := r.dbCB.Execute(func() (interface{}, error) {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, err
		}
		defer tx.Rollback()

		events, err := claim(ctx, tx, query, args...)
		if err != nil {
			return nil, err
		}

		for _, evt := range events {
			if err := r.dispatch(ctx, evt.id, evt.eventType, evt.payload); err != nil && !errors.Is(err, errUnpublishable) {
				log.Printf("outbox relay: failed to publish event %s: %v", evt.id, err)
				continue
			}
			if err := markProcessed(ctx, tx, evt.id); err != nil {
				return nil, err
			}
			log.Printf("outbox relay: processed event %s", evt.id)
		}

		return nil, tx.Commit()
	})
	return err
}

func claim(ctx context.Context, tx *sql.Tx, query string, args ...any) ([]pendingEvent, error) {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []pendingEvent
	for rows.Next() {
		var evt pendingEvent
		if err := rows.Scan(&evt.id, &evt.eventType, &evt.payload); err != nil {
			return nil, err
		}
		events = append(events, evt)
	}
	return events, rows.Err()
}

func markProcessed(ctx context.Context, tx *sql.Tx, id string) error {
	_, err := tx.ExecContext(ctx, `UPDATE outbox_events SET processed_at = NOW() WHERE id = $1`, id)
	return err
}
