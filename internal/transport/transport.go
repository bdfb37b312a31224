package transport

import (
	"context"

	"github.com/spec-kit/support-relay/internal/domain"
)

// Destination addresses an outbound send: a chat, optionally scoped to a
// thread within it. ThreadID zero means the chat itself.
type Destination struct {
	ChatID   int64
	ThreadID int64
}

// UserDestination addresses an end user's direct chat.
func UserDestination(userID int64) Destination {
	return Destination{ChatID: userID}
}

// ThreadDestination addresses a thread inside the administrator workspace.
func ThreadDestination(workspaceID, threadID int64) Destination {
	return Destination{ChatID: workspaceID, ThreadID: threadID}
}

// BatchItem is one photo of an outbound media batch.
type BatchItem struct {
	Photo   domain.PhotoRef
	Caption string
}

// Transport is the abstract chat-platform capability the relay core
// depends on. Implementations own the wire protocol and its timeouts;
// the core treats every failure as terminal for that single send.
type Transport interface {
	CreateThread(ctx context.Context, workspaceID int64, title string) (int64, error)
	SendText(ctx context.Context, dest Destination, text string) error
	SendPhoto(ctx context.Context, dest Destination, photo domain.PhotoRef, caption string) error
	SendPhotoBatch(ctx context.Context, dest Destination, items []BatchItem) error
}
