package transport

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// UpdateHandler consumes one inbound update. The poller invokes it
// inline, in arrival order; handlers that need concurrency must fan out
// themselves without reordering updates of the same conversation.
type UpdateHandler func(ctx context.Context, update Update)

// Poller drives the long-poll loop against the Bot API.
type Poller struct {
	tg             *Telegram
	timeoutSeconds int
	logger         *zap.Logger
}

// NewPoller builds a poller.
func NewPoller(tg *Telegram, timeoutSeconds int, logger *zap.Logger) *Poller {
	return &Poller{tg: tg, timeoutSeconds: timeoutSeconds, logger: logger}
}

// Run polls until ctx is cancelled.
func (p *Poller) Run(ctx context.Context, handle UpdateHandler) {
	var offset int64
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		updates, err := p.tg.GetUpdates(ctx, offset, p.timeoutSeconds)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Error("poll updates", zap.Error(err))
			time.Sleep(2 * time.Second)
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			handle(ctx, update)
		}
	}
}
