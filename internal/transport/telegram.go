package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/support-relay/internal/domain"
)

// Update is one inbound event from the Telegram Bot API.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

// Message is the subset of the Bot API message object the relay consumes.
type Message struct {
	MessageID       int64       `json:"message_id"`
	From            *User       `json:"from"`
	Chat            Chat        `json:"chat"`
	MessageThreadID int64       `json:"message_thread_id,omitempty"`
	Text            string      `json:"text,omitempty"`
	Caption         string      `json:"caption,omitempty"`
	Photo           []PhotoSize `json:"photo,omitempty"`
	MediaGroupID    string      `json:"media_group_id,omitempty"`
}

// User identifies a Telegram sender.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// Chat identifies the conversation an update belongs to.
type Chat struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

// PhotoSize is one rendition of an uploaded photo; the last entry is the
// largest.
type PhotoSize struct {
	FileID string `json:"file_id"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// LargestPhoto returns the highest-resolution file reference of a photo
// message, or empty when the message carries no photo.
func (m *Message) LargestPhoto() domain.PhotoRef {
	if m == nil || len(m.Photo) == 0 {
		return ""
	}
	return domain.PhotoRef(m.Photo[len(m.Photo)-1].FileID)
}

type apiEnvelope struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
}

type inputMediaPhoto struct {
	Type    string `json:"type"`
	Media   string `json:"media"`
	Caption string `json:"caption,omitempty"`
}

type replyKeyboardMarkup struct {
	Keyboard       [][]keyboardButton `json:"keyboard"`
	ResizeKeyboard bool               `json:"resize_keyboard"`
}

type keyboardButton struct {
	Text string `json:"text"`
}

// Telegram implements Transport over the Telegram Bot API using plain
// HTTP JSON calls.
type Telegram struct {
	token        string
	client       *http.Client
	logger       *zap.Logger
	quickReplies []string
}

// NewTelegram builds the adapter. quickReplies, when non-empty, is rendered
// as a persistent reply keyboard on messages sent to direct user chats.
func NewTelegram(token string, quickReplies []string, logger *zap.Logger) *Telegram {
	return &Telegram{
		token:        token,
		client:       &http.Client{Timeout: 65 * time.Second},
		logger:       logger,
		quickReplies: quickReplies,
	}
}

// CreateThread opens a forum topic in the administrator workspace.
func (t *Telegram) CreateThread(ctx context.Context, workspaceID int64, title string) (int64, error) {
	payload := map[string]any{
		"chat_id": workspaceID,
		"name":    title,
	}
	var topic struct {
		MessageThreadID int64 `json:"message_thread_id"`
	}
	if err := t.call(ctx, "createForumTopic", payload, &topic); err != nil {
		return 0, err
	}
	return topic.MessageThreadID, nil
}

// SendText delivers a plain text message.
func (t *Telegram) SendText(ctx context.Context, dest Destination, text string) error {
	payload := map[string]any{
		"chat_id": dest.ChatID,
		"text":    text,
	}
	if dest.ThreadID != 0 {
		payload["message_thread_id"] = dest.ThreadID
	}
	if markup := t.userKeyboard(dest); markup != nil {
		payload["reply_markup"] = markup
	}
	return t.call(ctx, "sendMessage", payload, nil)
}

// SendPhoto delivers a single photo with an optional caption.
func (t *Telegram) SendPhoto(ctx context.Context, dest Destination, photo domain.PhotoRef, caption string) error {
	payload := map[string]any{
		"chat_id": dest.ChatID,
		"photo":   string(photo),
	}
	if caption != "" {
		payload["caption"] = caption
	}
	if dest.ThreadID != 0 {
		payload["message_thread_id"] = dest.ThreadID
	}
	return t.call(ctx, "sendPhoto", payload, nil)
}

// SendPhotoBatch delivers a media group in one call.
func (t *Telegram) SendPhotoBatch(ctx context.Context, dest Destination, items []BatchItem) error {
	media := make([]inputMediaPhoto, len(items))
	for i, item := range items {
		media[i] = inputMediaPhoto{
			Type:    "photo",
			Media:   string(item.Photo),
			Caption: item.Caption,
		}
	}
	payload := map[string]any{
		"chat_id": dest.ChatID,
		"media":   media,
	}
	if dest.ThreadID != 0 {
		payload["message_thread_id"] = dest.ThreadID
	}
	return t.call(ctx, "sendMediaGroup", payload, nil)
}

// GetUpdates long-polls for inbound updates after the given offset.
func (t *Telegram) GetUpdates(ctx context.Context, offset int64, timeoutSeconds int) ([]Update, error) {
	payload := map[string]any{
		"offset":          offset,
		"timeout":         timeoutSeconds,
		"allowed_updates": []string{"message"},
	}
	var updates []Update
	if err := t.call(ctx, "getUpdates", payload, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

func (t *Telegram) userKeyboard(dest Destination) *replyKeyboardMarkup {
	// The reply keyboard is only meaningful in direct user chats.
	if dest.ThreadID != 0 || dest.ChatID <= 0 || len(t.quickReplies) == 0 {
		return nil
	}
	row := make([]keyboardButton, len(t.quickReplies))
	for i, label := range t.quickReplies {
		row[i] = keyboardButton{Text: label}
	}
	return &replyKeyboardMarkup{
		Keyboard:       [][]keyboardButton{row},
		ResizeKeyboard: true,
	}
}

func (t *Telegram) call(ctx context.Context, method string, payload any, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("telegram %s: marshal: %w", method, err)
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/%s", t.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("telegram %s: read response: %w", method, err)
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("telegram %s: decode response: %w", method, err)
	}
	if !envelope.OK {
		return fmt.Errorf("telegram %s: %s", method, envelope.Description)
	}
	if result != nil && len(envelope.Result) > 0 {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return fmt.Errorf("telegram %s: decode result: %w", method, err)
		}
	}
	return nil
}
