package services

import (
	"context"
	"strings"
	"time"

	"github.com/quickdate/admin-api/internal/models"
	"github.com/quickdate/admin-api/internal/store"
)

// Chat data predates this dashboard and lives under a few different
// collection layouts, so reads walk a fallback ladder: indexed range query,
// unindexed range query, then a limited scan filtered in memory. Any error
// counts as "no results from this strategy" and is never surfaced.

var roomCollections = []string{"chatRooms", "rooms", "chats"}

var messageTimeFields = []string{"createdAt", "created_at", "timestamp", "sentAt", "created"}

func messageFromDoc(doc *store.Document, roomID string) models.Message {
	data := doc.Data
	created, ok := store.TimeAt(data, messageTimeFields...)
	if !ok {
		created = time.Now().UTC()
	}
	if roomID == "" {
		roomID = store.Str(data, "roomId", "chatId", "threadId")
	}
	return models.Message{
		ID:         doc.ID,
		Text:       store.Str(data, "text", "message", "msg", "body", "content", "messageText"),
		Sender:     senderOf(data),
		Recipient:  store.Str(data, "recipientId", "to", "targetId"),
		CreatedAt:  created,
		RoomID:     roomID,
		SenderName: pickSenderName(data),
	}
}

func senderOf(data map[string]interface{}) string {
	if s := store.Str(data, "senderId", "sender", "from", "userId"); s != "" {
		return s
	}
	return "unknown"
}

// pickSenderName pulls a display-name hint off the message payload itself.
func pickSenderName(data map[string]interface{}) string {
	name := store.Str(data,
		"senderName", "sender_name", "senderDisplayName", "displayName",
		"username", "userName", "handle", "name")
	return atPrefixed(name)
}

// pickSenderNameFromRoom infers the sender's name from the room document:
// a names/usernames/handles map keyed by uid, or the participants array with
// name/otherName fields.
func pickSenderNameFromRoom(roomData map[string]interface{}, senderID string) string {
	if roomData == nil {
		return ""
	}
	for _, key := range []string{"names", "usernames", "handles"} {
		if m := store.Sub(roomData, key); m != nil {
			if v := store.Str(m, senderID); v != "" {
				return atPrefixed(v)
			}
		}
	}
	participants, _ := roomData["participants"].([]interface{})
	if len(participants) >= 2 {
		idx := -1
		for i, p := range participants {
			if s, ok := p.(string); ok && s == senderID {
				idx = i
				break
			}
		}
		if idx == 0 {
			if v := store.Str(roomData, "name"); v != "" {
				return atPrefixed(v)
			}
		}
		if idx == 1 {
			if v := store.Str(roomData, "otherName"); v != "" {
				return atPrefixed(v)
			}
		}
	}
	return ""
}

func atPrefixed(name string) string {
	if name == "" {
		return ""
	}
	if strings.HasPrefix(name, "@") {
		return name
	}
	return "@" + name
}

// fetchRoomMessages reads a room's messages subcollection with the query
// fallback ladder, filtering by window in memory as a backstop.
func (s *TrustSafetyService) fetchRoomMessages(ctx context.Context, path, roomID string, since time.Time, limit, scanLimit int) []models.Message {
	queries := []store.Query{
		{
			Collection: path,
			Filters:    []store.Filter{{Field: "createdAt", Op: ">=", Value: since}},
			OrderBy:    "createdAt",
			Desc:       true,
			Limit:      limit,
		},
		{
			Collection: path,
			Filters:    []store.Filter{{Field: "createdAt", Op: ">=", Value: since}},
			Limit:      limit,
		},
		{Collection: path, Limit: scanLimit},
	}

	var out []models.Message
	for _, q := range queries {
		docs, err := s.store.Run(ctx, q)
		if err != nil {
			s.log.Debugw("room messages query failed, trying next strategy", "path", path, "err", err)
			continue
		}
		for _, d := range docs {
			m := messageFromDoc(d, roomID)
			if m.Text == "" || m.CreatedAt.Before(since) {
				continue
			}
			out = append(out, m)
		}
		if len(out) > 0 {
			break
		}
	}
	return out
}

// fetchRecentMessages gathers messages inside the window. A non-empty
// strategy short-circuits the rest.
func (s *TrustSafetyService) fetchRecentMessages(ctx context.Context, roomID string, since time.Time) []models.Message {
	var messages []models.Message

	// A specific room scans directly first.
	if roomID != "" {
		for _, rc := range roomCollections {
			roomDoc, err := s.store.Get(ctx, rc+"/"+roomID)
			if err != nil {
				continue
			}
			msgs := s.fetchRoomMessages(ctx, rc+"/"+roomID+"/messages", roomID, since, 200, 200)
			for i := range msgs {
				if msgs[i].SenderName == "" {
					msgs[i].SenderName = pickSenderNameFromRoom(roomDoc.Data, msgs[i].Sender)
				}
			}
			if len(msgs) > 0 {
				messages = msgs
				break
			}
		}
	}

	// Collection-group query over every messages subcollection (opt-in, it
	// needs an index).
	if len(messages) == 0 && s.useCollectionGroup {
		docs, err := s.store.Run(ctx, store.Query{
			Collection: "messages",
			Group:      true,
			Filters:    []store.Filter{{Field: "createdAt", Op: ">=", Value: since}},
			OrderBy:    "createdAt",
			Desc:       true,
			Limit:      1000,
		})
		if err != nil {
			s.log.Debugw("collection-group messages query failed, using fallbacks", "err", err)
		}
		for _, d := range docs {
			m := messageFromDoc(d, groupRoomID(d.Path))
			if m.Text != "" {
				messages = append(messages, m)
			}
		}
	}

	// Top-level messages collection.
	if len(messages) == 0 {
		docs, err := s.store.Run(ctx, store.Query{
			Collection: "messages",
			Filters:    []store.Filter{{Field: "createdAt", Op: ">=", Value: since}},
			OrderBy:    "createdAt",
			Desc:       true,
			Limit:      500,
		})
		if err != nil {
			s.log.Debugw("top-level messages query failed", "err", err)
		}
		for _, d := range docs {
			m := messageFromDoc(d, "")
			if m.Text != "" {
				messages = append(messages, m)
			}
		}
	}

	// Scan a bounded set of rooms and read their subcollections.
	if len(messages) == 0 {
		for _, rc := range roomCollections {
			rooms, err := s.store.Run(ctx, store.Query{Collection: rc, Limit: 50})
			if err != nil {
				continue
			}
			for _, room := range rooms {
				msgs := s.fetchRoomMessages(ctx, rc+"/"+room.ID+"/messages", room.ID, since, 50, 30)
				for i := range msgs {
					if msgs[i].SenderName == "" {
						msgs[i].SenderName = pickSenderNameFromRoom(room.Data, msgs[i].Sender)
					}
				}
				messages = append(messages, msgs...)
			}
			if len(messages) > 0 {
				break
			}
		}
	}

	// Last resort: a small unfiltered collection-group batch.
	if len(messages) == 0 {
		docs, err := s.store.Run(ctx, store.Query{Collection: "messages", Group: true, Limit: 300})
		if err == nil {
			for _, d := range docs {
				m := messageFromDoc(d, groupRoomID(d.Path))
				if m.Text != "" && !m.CreatedAt.Before(since) {
					messages = append(messages, m)
				}
			}
		}
	}

	s.seedNamesFromRooms(ctx, messages)
	return messages
}

// seedNamesFromRooms fills missing sender-name hints from the room documents.
func (s *TrustSafetyService) seedNamesFromRooms(ctx context.Context, messages []models.Message) {
	missing := make(map[string]bool)
	for _, m := range messages {
		if m.SenderName == "" && m.RoomID != "" {
			missing[m.RoomID] = true
		}
	}
	if len(missing) == 0 {
		return
	}
	roomData := make(map[string]map[string]interface{}, len(missing))
	for rid := range missing {
		for _, rc := range roomCollections {
			doc, err := s.store.Get(ctx, rc+"/"+rid)
			if err != nil {
				continue
			}
			roomData[rid] = doc.Data
			break
		}
	}
	for i := range messages {
		m := &messages[i]
		if m.SenderName == "" && m.RoomID != "" {
			if data, ok := roomData[m.RoomID]; ok {
				m.SenderName = pickSenderNameFromRoom(data, m.Sender)
			}
		}
	}
}

// groupRoomID extracts the parent room id from a subcollection doc path
// ("chatRooms/<rid>/messages/<mid>").
func groupRoomID(path string) string {
	parts := strings.Split(path, "/")
	if len(parts) >= 4 {
		return parts[len(parts)-3]
	}
	return ""
}

// fetchReports reads every report document: top-level collection first,
// collection group as fallback.
func (s *TrustSafetyService) fetchReports(ctx context.Context) []*store.Document {
	docs, err := s.store.Run(ctx, store.Query{Collection: "reports"})
	if err != nil {
		s.log.Debugw("top-level reports fetch failed", "err", err)
	}
	if len(docs) == 0 {
		group, err := s.store.Run(ctx, store.Query{Collection: "reports", Group: true})
		if err != nil {
			s.log.Debugw("collection-group reports fetch failed", "err", err)
		}
		docs = group
	}
	return docs
}
