package bot

import (
	"strings"

	"github.com/spec-kit/support-relay/internal/domain"
	"github.com/spec-kit/support-relay/internal/transport"
)

// Event is one classified inbound message from the chat platform.
type Event struct {
	Sender   domain.Identity
	ChatID   int64
	ThreadID int64
	Text     string
	Photo    domain.PhotoRef
	Caption  string
	GroupKey string
	Command  string
	Args     []string
}

// FromUpdate maps a raw transport update onto the façade's event model.
// Updates without a message or sender are not relayable.
func FromUpdate(update transport.Update) (Event, bool) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return Event{}, false
	}

	ev := Event{
		Sender: domain.Identity{
			ID:          msg.From.ID,
			DisplayName: displayName(msg.From),
		},
		ChatID:   msg.Chat.ID,
		ThreadID: msg.MessageThreadID,
		Text:     msg.Text,
		Photo:    msg.LargestPhoto(),
		Caption:  msg.Caption,
		GroupKey: msg.MediaGroupID,
	}

	if strings.HasPrefix(msg.Text, "/") {
		fields := strings.Fields(msg.Text)
		command := strings.TrimPrefix(fields[0], "/")
		// Commands in groups may be addressed as /cmd@botname.
		if at := strings.Index(command, "@"); at >= 0 {
			command = command[:at]
		}
		ev.Command = command
		ev.Args = fields[1:]
	}

	return ev, true
}

func displayName(u *transport.User) string {
	if u.Username != "" {
		return "@" + u.Username
	}
	name := u.FirstName
	if u.LastName != "" {
		name += " " + u.LastName
	}
	return name
}
