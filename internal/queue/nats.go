// Package queue wraps the NATS connection used to announce committed
// schedules. Nothing in the scheduling path blocks on a subscriber; a
// publish failure is logged and swallowed so a disconnected broker never
// fails a dispatch.
package queue

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// recentPublishes bounds the ring of recently published subjects the
// health endpoint reports.
const recentPublishes = 8

// Manager owns the NATS connection and remembers what it last published.
type Manager struct {
	conn *nats.Conn

	mu     sync.Mutex
	recent []string
}

// NewManager connects to NATS. The reconnect policy comes from
// configuration rather than being baked in here, since a scheduler sharing
// a broker with heavier traffic may want a much longer backoff.
func NewManager(url string, maxReconnects int, reconnectWait time.Duration) (*Manager, error) {
	conn, err := nats.Connect(url,
		nats.Name("dockplanner"),
		nats.MaxReconnects(maxReconnects),
		nats.ReconnectWait(reconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Printf("queue: nats disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("queue: nats reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(*nats.Conn) {
			log.Print("queue: nats connection closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("queue: connect %s: %w", url, err)
	}
	return &Manager{conn: conn}, nil
}

// Close closes the NATS connection.
func (m *Manager) Close() {
	if m.conn != nil {
		m.conn.Close()
	}
}

// Publish publishes a message to a subject and remembers the subject for
// the health endpoint's recent-events report.
func (m *Manager) Publish(subject string, data []byte) error {
	m.mu.Lock()
	m.recent = append(m.recent, subject)
	if len(m.recent) > recentPublishes {
		m.recent = m.recent[len(m.recent)-recentPublishes:]
	}
	m.mu.Unlock()
	if err := m.conn.Publish(subject, data); err != nil {
		log.Printf("queue: publish %s: %v", subject, err)
		return err
	}
	return nil
}

// Recent returns the most recently published subjects, oldest first.
func (m *Manager) Recent() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.recent))
	copy(out, m.recent)
	return out
}

// Subjects for committed-schedule notifications, one per pathway.
const (
	SubjectCommittedExternal = "schedule.committed.external"
	SubjectCommittedInternal = "schedule.committed.internal"
	SubjectCommittedDropPull = "schedule.committed.droppull"
)

// CommittedSubject returns the subject for a pathway name.
func CommittedSubject(pathway string) string {
	return fmt.Sprintf("schedule.committed.%s", pathway)
}
