// Package poller runs background sync loops, one goroutine per
// mailbox, each on its own interval. Folders within a mailbox sync
// strictly in sequence; mailboxes run concurrently.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mailme/mailme/internal/imapsync"
)

// State represents the current state of a mailbox sync loop.
type State int

const (
	Idle State = iota
	Running
	Errored
)

// Status holds the sync state of a single mailbox.
type Status struct {
	MailboxID string
	State     State
	LastSync  time.Time
	Error     error
}

// syncTimeout bounds a single sync pass over one mailbox.
const syncTimeout = 5 * time.Minute

type entry struct {
	mailbox  imapsync.Mailbox
	interval time.Duration
}

// Poller orchestrates background syncing of registered mailboxes.
type Poller struct {
	engine    *imapsync.Engine
	log       zerolog.Logger
	mailboxes []entry
	statuses  map[string]*Status
	triggerCh chan string
	stopCh    chan struct{}
	mu        sync.Mutex
	running   bool
	wg        sync.WaitGroup
}

// New creates a Poller around the given sync engine.
func New(engine *imapsync.Engine, log zerolog.Logger) *Poller {
	return &Poller{
		engine:    engine,
		log:       log,
		statuses:  make(map[string]*Status),
		triggerCh: make(chan string, 16),
		stopCh:    make(chan struct{}),
	}
}

// Register adds a mailbox to the polling set. interval must be
// positive; zero falls back to five minutes.
func (p *Poller) Register(mb imapsync.Mailbox, interval time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if interval <= 0 {
		interval = 5 * time.Minute
	}
	p.mailboxes = append(p.mailboxes, entry{mailbox: mb, interval: interval})
	p.statuses[mb.ID] = &Status{MailboxID: mb.ID, State: Idle}
}

// Start launches one polling goroutine per registered mailbox. It is
// a no-op when already running.
func (p *Poller) Start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	mailboxes := make([]entry, len(p.mailboxes))
	copy(mailboxes, p.mailboxes)
	p.mu.Unlock()

	for _, e := range mailboxes {
		p.wg.Add(1)
		go p.pollMailbox(e)
	}
}

// Stop halts all polling goroutines and waits for in-flight passes
// to finish.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	close(p.stopCh)
	p.running = false
	p.mu.Unlock()

	p.wg.Wait()
}

// Trigger requests an immediate sync of one mailbox. It never blocks;
// a full trigger queue drops the request.
func (p *Poller) Trigger(mailboxID string) {
	select {
	case p.triggerCh <- mailboxID:
	default:
	}
}

// TriggerAll requests an immediate sync of every registered mailbox.
func (p *Poller) TriggerAll() {
	p.mu.Lock()
	mailboxes := make([]entry, len(p.mailboxes))
	copy(mailboxes, p.mailboxes)
	p.mu.Unlock()

	for _, e := range mailboxes {
		p.Trigger(e.mailbox.ID)
	}
}

// Statuses returns a snapshot of every mailbox's sync status.
func (p *Poller) Statuses() []Status {
	p.mu.Lock()
	defer p.mu.Unlock()

	statuses := make([]Status, 0, len(p.statuses))
	for _, s := range p.statuses {
		statuses = append(statuses, *s)
	}
	return statuses
}

// pollMailbox runs the polling loop for one mailbox.
func (p *Poller) pollMailbox(e entry) {
	defer p.wg.Done()

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	p.syncOnce(e.mailbox)

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.syncOnce(e.mailbox)
		case id := <-p.triggerCh:
			if id == e.mailbox.ID {
				p.syncOnce(e.mailbox)
			}
		}
	}
}

// syncOnce runs a single sync pass and records its outcome.
func (p *Poller) syncOnce(mb imapsync.Mailbox) {
	p.setStatus(mb.ID, Running, nil)

	ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
	defer cancel()

	report := p.engine.Sync(ctx, mb)
	if report.Err != nil {
		p.setStatus(mb.ID, Errored, report.Err)

		evt := p.log.Error().Str("mailbox", mb.Name).Err(report.Err)
		if imapsync.IsAuthError(report.Err) {
			evt.Msg("sync failed, credentials rejected")
		} else {
			evt.Msg("sync failed")
		}
		return
	}

	fetched := 0
	failed := 0
	for _, fr := range report.Folders {
		fetched += fr.Fetched
		if fr.Err != nil {
			failed++
		}
	}
	p.log.Info().
		Str("mailbox", mb.Name).
		Int("folders", len(report.Folders)).
		Int("fetched", fetched).
		Int("failed", failed).
		Msg("sync pass complete")

	p.setStatus(mb.ID, Idle, nil)
}

func (p *Poller) setStatus(id string, state State, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	status, ok := p.statuses[id]
	if !ok {
		return
	}
	status.State = state
	status.Error = err
	if state == Idle && err == nil {
		status.LastSync = time.Now()
	}
}
