package service

import (
	"fmt"

	"github.com/spec-kit/support-relay/internal/domain"
)

// User-facing texts mirror the original bot's German phrasing.
const (
	userTextPrefix       = "👤 User:\n"
	userPhotoPrefix      = "👤 User: "
	userPhotoNoCaption   = "👤 User sent photo"
	userAlbumCaption     = "👤 User sent album"
	adminReplyPrefix     = "📨 Antwort des Administrators:\n"
	adminReplyNoCaption  = "📨 Antwort des Administrators"
	deliveryFailedText   = "⚠️ Eine Nachricht an den Administrator konnte nicht gesendet werden"
	photoDeliveryFailed  = "⚠️ Foto konnte nicht an den Administrator gesendet werden"
	maxTitleNameLength   = 20
)

func frameUserText(text string) string {
	return userTextPrefix + text
}

func frameUserPhotoCaption(caption string) string {
	if caption == "" {
		return userPhotoNoCaption
	}
	return userPhotoPrefix + caption
}

func frameAdminText(text string) string {
	return adminReplyPrefix + text
}

func frameAdminPhotoCaption(caption string) string {
	if caption == "" {
		return adminReplyNoCaption
	}
	return adminReplyPrefix + caption
}

// frameBatchCaption builds the caption carried by the first item of a
// flushed media batch, framed per origin role.
func frameBatchCaption(origin domain.Role, caption string) string {
	base := userAlbumCaption
	if origin == domain.RoleAdmin {
		base = adminReplyNoCaption
	}
	if caption == "" {
		return base
	}
	return base + "\n" + caption
}

func threadTitle(ticket *domain.Ticket) string {
	return fmt.Sprintf("Request #%s: %s", ticket.Key, truncate(ticket.DisplayName, maxTitleNameLength))
}

// frameIntakeText builds the first message posted into a freshly created
// thread for a text intake payload.
func frameIntakeText(ticket *domain.Ticket, text string) string {
	return fmt.Sprintf("⚠️ New info #%s\n👤 User: %s\n📝 Info:\n%s", ticket.Key, ticket.DisplayName, text)
}

// frameIntakePhotoCaption builds the caption for a photo intake payload.
func frameIntakePhotoCaption(ticket *domain.Ticket, caption string) string {
	framed := fmt.Sprintf("⚠️ New info #%s\n👤 User: %s\n", ticket.Key, ticket.DisplayName)
	if caption != "" {
		framed += "📝 Info: " + caption
	}
	return framed
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
