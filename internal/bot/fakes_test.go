package bot

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/spec-kit/support-relay/internal/domain"
	"github.com/spec-kit/support-relay/internal/repository"
	"github.com/spec-kit/support-relay/internal/transport"
)

type fakeTicketRepo struct {
	mu      sync.Mutex
	tickets []*domain.Ticket
	nextID  int64
}

func (r *fakeTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	ticket.ID = r.nextID
	ticket.CreatedAt = time.Now()
	clone := *ticket
	r.tickets = append(r.tickets, &clone)
	return nil
}

func (r *fakeTicketRepo) FindActiveByUser(ctx context.Context, userID int64) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.tickets) - 1; i >= 0; i-- {
		t := r.tickets[i]
		if t.UserID == userID && t.ThreadID != nil {
			clone := *t
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeTicketRepo) FindByThread(ctx context.Context, threadID int64) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tickets {
		if t.ThreadID != nil && *t.ThreadID == threadID {
			clone := *t
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeTicketRepo) BindThread(ctx context.Context, ticketID, workspaceID, threadID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tickets {
		if t.ID == ticketID && t.ThreadID == nil {
			t.WorkspaceID = &workspaceID
			t.ThreadID = &threadID
			t.Status = domain.TicketStatusOpen
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeTicketRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tickets)
}

type fakeLogRepo struct {
	mu      sync.Mutex
	entries []domain.MessageLogEntry
}

func (r *fakeLogRepo) Append(ctx context.Context, entry *domain.MessageLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry.ID = int64(len(r.entries) + 1)
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeLogRepo) all() []domain.MessageLogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.MessageLogEntry{}, r.entries...)
}

type fakeAdminRepo struct {
	mu     sync.Mutex
	admins map[int64]bool
}

func newFakeAdminRepo(ids ...int64) *fakeAdminRepo {
	admins := make(map[int64]bool)
	for _, id := range ids {
		admins[id] = true
	}
	return &fakeAdminRepo{admins: admins}
}

func (r *fakeAdminRepo) Add(ctx context.Context, chatID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.admins[chatID] = true
	return nil
}

func (r *fakeAdminRepo) Exists(ctx context.Context, chatID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.admins[chatID], nil
}

type sentText struct {
	dest transport.Destination
	text string
}

type sentBatch struct {
	dest  transport.Destination
	items []transport.BatchItem
}

type fakeTransport struct {
	mu           sync.Mutex
	texts        []sentText
	batches      []sentBatch
	threads      []string
	nextThreadID int64
}

func (t *fakeTransport) CreateThread(ctx context.Context, workspaceID int64, title string) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextThreadID++
	t.threads = append(t.threads, title)
	return t.nextThreadID, nil
}

func (t *fakeTransport) SendText(ctx context.Context, dest transport.Destination, text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.texts = append(t.texts, sentText{dest: dest, text: text})
	return nil
}

func (t *fakeTransport) SendPhoto(ctx context.Context, dest transport.Destination, photo domain.PhotoRef, caption string) error {
	return nil
}

func (t *fakeTransport) SendPhotoBatch(ctx context.Context, dest transport.Destination, items []transport.BatchItem) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.batches = append(t.batches, sentBatch{dest: dest, items: items})
	return nil
}

func (t *fakeTransport) sentTexts() []sentText {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]sentText{}, t.texts...)
}

func (t *fakeTransport) sentBatches() []sentBatch {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]sentBatch{}, t.batches...)
}

// textsTo filters sent texts by destination chat.
func (t *fakeTransport) textsTo(chatID int64) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []string
	for _, s := range t.texts {
		if s.dest.ChatID == chatID {
			out = append(out, s.text)
		}
	}
	return out
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}
