package service

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
	mu        sync.Mutex
	tickets   []*domain.Ticket
	nextID    int64
	createErr error
	findErr   error
	bindErr   error
}

func (r *fakeTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
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
	if r.findErr != nil {
		return nil, r.findErr
	}
	// Newest bound ticket wins, matching the SQL ordering.
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
	if r.findErr != nil {
		return nil, r.findErr
	}
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
	if r.bindErr != nil {
		return r.bindErr
	}
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

type fakeLogRepo struct {
	mu        sync.Mutex
	entries   []domain.MessageLogEntry
	appendErr error
}

func (r *fakeLogRepo) Append(ctx context.Context, entry *domain.MessageLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appendErr != nil {
		return r.appendErr
	}
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
	mu        sync.Mutex
	admins    map[int64]bool
	existsErr error
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
	if r.existsErr != nil {
		return false, r.existsErr
	}
	return r.admins[chatID], nil
}

type sentText struct {
	dest transport.Destination
	text string
}

type sentPhoto struct {
	dest    transport.Destination
	photo   domain.PhotoRef
	caption string
}

type sentBatch struct {
	dest  transport.Destination
	items []transport.BatchItem
}

type fakeTransport struct {
	mu           sync.Mutex
	texts        []sentText
	photos       []sentPhoto
	batches      []sentBatch
	threads      []string
	nextThreadID int64

	threadErr error
	textErr   error
	photoErr  error
	batchErr  error

	// When set, batch sends to blockDest wait until blockBatch closes.
	blockDest  transport.Destination
	blockBatch chan struct{}
}

func (t *fakeTransport) CreateThread(ctx context.Context, workspaceID int64, title string) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.threadErr != nil {
		return 0, t.threadErr
	}
	t.nextThreadID++
	t.threads = append(t.threads, title)
	return t.nextThreadID, nil
}

func (t *fakeTransport) SendText(ctx context.Context, dest transport.Destination, text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.textErr != nil {
		return t.textErr
	}
	t.texts = append(t.texts, sentText{dest: dest, text: text})
	return nil
}

func (t *fakeTransport) SendPhoto(ctx context.Context, dest transport.Destination, photo domain.PhotoRef, caption string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.photoErr != nil {
		return t.photoErr
	}
	t.photos = append(t.photos, sentPhoto{dest: dest, photo: photo, caption: caption})
	return nil
}

func (t *fakeTransport) SendPhotoBatch(ctx context.Context, dest transport.Destination, items []transport.BatchItem) error {
	t.mu.Lock()
	block := t.blockBatch != nil && dest == t.blockDest
	blockCh := t.blockBatch
	t.mu.Unlock()
	if block {
		<-blockCh
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.batchErr != nil {
		return t.batchErr
	}
	t.batches = append(t.batches, sentBatch{dest: dest, items: items})
	return nil
}

func (t *fakeTransport) sentBatches() []sentBatch {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]sentBatch{}, t.batches...)
}

func (t *fakeTransport) sentTexts() []sentText {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]sentText{}, t.texts...)
}

// waitFor polls cond until it holds or the timeout elapses.
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
