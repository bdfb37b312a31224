package domain

import (
	"fmt"
	"strings"
	"time"
)

// Direction indicates which side of the relay authored a log entry.
type Direction string

const (
	DirectionFromUser  Direction = "FROM_USER"
	DirectionFromAdmin Direction = "FROM_ADMIN"
)

// PhotoRef is an opaque platform reference to an uploaded photo.
type PhotoRef string

// PayloadKind discriminates relay payload variants.
type PayloadKind string

const (
	PayloadText  PayloadKind = "TEXT"
	PayloadPhoto PayloadKind = "PHOTO"
	PayloadAlbum PayloadKind = "ALBUM"
)

// Payload is the content of a single relayed message: plain text, one photo
// with an optional caption, or an album of photos with one shared caption.
type Payload struct {
	Kind    PayloadKind
	Text    string
	Photo   PhotoRef
	Album   []PhotoRef
	Caption string
}

// TextPayload builds a plain-text payload.
func TextPayload(text string) Payload {
	return Payload{Kind: PayloadText, Text: text}
}

// PhotoPayload builds a single-photo payload.
func PhotoPayload(photo PhotoRef, caption string) Payload {
	return Payload{Kind: PayloadPhoto, Photo: photo, Caption: caption}
}

// AlbumPayload builds a multi-photo payload.
func AlbumPayload(photos []PhotoRef, caption string) Payload {
	return Payload{Kind: PayloadAlbum, Album: photos, Caption: caption}
}

// Encode renders the payload into the audit-log text representation:
// plain text as-is, "PHOTO:<ref>:<caption>" and "ALBUM:<ref,...>:<caption>"
// for media. The representation is write-only; relay logic never reads it
// back.
func (p Payload) Encode() string {
	switch p.Kind {
	case PayloadPhoto:
		return fmt.Sprintf("PHOTO:%s:%s", p.Photo, p.Caption)
	case PayloadAlbum:
		refs := make([]string, len(p.Album))
		for i, ref := range p.Album {
			refs[i] = string(ref)
		}
		return fmt.Sprintf("ALBUM:%s:%s", strings.Join(refs, ","), p.Caption)
	default:
		return p.Text
	}
}

// DecodePayload parses the audit-log representation back into a Payload.
// Unknown shapes decode as plain text.
func DecodePayload(raw string) Payload {
	switch {
	case strings.HasPrefix(raw, "PHOTO:"):
		parts := strings.SplitN(raw, ":", 3)
		p := Payload{Kind: PayloadPhoto, Photo: PhotoRef(parts[1])}
		if len(parts) > 2 {
			p.Caption = parts[2]
		}
		return p
	case strings.HasPrefix(raw, "ALBUM:"):
		parts := strings.SplitN(raw, ":", 3)
		p := Payload{Kind: PayloadAlbum}
		for _, ref := range strings.Split(parts[1], ",") {
			if ref != "" {
				p.Album = append(p.Album, PhotoRef(ref))
			}
		}
		if len(parts) > 2 {
			p.Caption = parts[2]
		}
		return p
	default:
		return TextPayload(raw)
	}
}

// MessageLogEntry is one append-only audit record for a relayed message.
type MessageLogEntry struct {
	ID        int64
	TicketID  int64
	Direction Direction
	Payload   Payload
	CreatedAt time.Time
}
