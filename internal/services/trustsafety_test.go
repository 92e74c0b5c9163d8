package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/quickdate/admin-api/internal/models"
	"github.com/quickdate/admin-api/internal/store"
)

func newFeedService(st store.Store) *TrustSafetyService {
	return NewTrustSafetyService(st, nil, zap.NewNop().Sugar(), false)
}

func putMessage(st *store.MemStore, id, sender, text string, at time.Time, extra map[string]interface{}) {
	data := map[string]interface{}{
		"text":      text,
		"senderId":  sender,
		"createdAt": at,
	}
	for k, v := range extra {
		data[k] = v
	}
	st.Put("messages/"+id, data)
}

func feedOfType(items []models.LiveFeedItem, ft models.FeedType) []models.LiveFeedItem {
	var out []models.LiveFeedItem
	for _, it := range items {
		if it.Type == ft {
			out = append(out, it)
		}
	}
	return out
}

func TestLiveFeedPhishingItem(t *testing.T) {
	st := store.NewMemStore()
	at := time.Now().Add(-time.Hour)
	putMessage(st, "m1", "u1", "win big at https://bit.ly/free", at, nil)

	items := newFeedService(st).BuildLiveFeed(context.Background(), FeedOptions{})
	require.Len(t, items, 1)
	require.Equal(t, "phish-m1", items[0].ID)
	require.Equal(t, models.FeedPhishing, items[0].Type)
	require.Equal(t, "@u1 sent suspicious link (phishing)", items[0].Message)
	require.Equal(t, "u1", items[0].Sender)
}

func TestLiveFeedPhishingTakesPrecedenceOverScam(t *testing.T) {
	st := store.NewMemStore()
	at := time.Now().Add(-time.Hour)
	putMessage(st, "m1", "u1", "double your bitcoin https://bit.ly/x", at, nil)

	items := newFeedService(st).BuildLiveFeed(context.Background(), FeedOptions{})
	require.Len(t, items, 1)
	require.Equal(t, "phish-m1", items[0].ID)
}

func TestLiveFeedScamItem(t *testing.T) {
	st := store.NewMemStore()
	at := time.Now().Add(-time.Hour)
	putMessage(st, "m2", "u2", "send me a gift card to unlock the prize", at,
		map[string]interface{}{"senderName": "eve"})

	items := newFeedService(st).BuildLiveFeed(context.Background(), FeedOptions{})
	require.Len(t, items, 1)
	require.Equal(t, "scam-m2", items[0].ID)
	require.Equal(t, "@eve sent suspicious texts (scam detected)", items[0].Message)
}

func TestLiveFeedStreakEmitsExactlyOneItem(t *testing.T) {
	st := store.NewMemStore()
	base := time.Now().Add(-2 * time.Hour)
	for i := 0; i < 5; i++ {
		putMessage(st, fmt.Sprintf("m%d", i), "u1", fmt.Sprintf("hello number %d", i),
			base.Add(time.Duration(i)*time.Minute),
			map[string]interface{}{"roomId": "room1"})
	}

	items := newFeedService(st).BuildLiveFeed(context.Background(), FeedOptions{})
	spam := feedOfType(items, models.FeedSpam)
	require.Len(t, spam, 1)
	wantID := fmt.Sprintf("spam-streak-room1-u1-%d", base.Add(4*time.Minute).UnixMilli())
	require.Equal(t, wantID, spam[0].ID)
	require.Equal(t, "@u1 sent 5 messages in a row without reply (spam detected)", spam[0].Message)
}

func TestLiveFeedLongStreakStillOneItem(t *testing.T) {
	st := store.NewMemStore()
	base := time.Now().Add(-3 * time.Hour)
	for i := 0; i < 50; i++ {
		putMessage(st, fmt.Sprintf("m%d", i), "u1", fmt.Sprintf("ping %d", i),
			base.Add(time.Duration(i)*time.Second),
			map[string]interface{}{"roomId": "room1"})
	}

	items := newFeedService(st).BuildLiveFeed(context.Background(), FeedOptions{})
	spam := feedOfType(items, models.FeedSpam)
	require.Len(t, spam, 1)
	require.Contains(t, spam[0].Message, "sent 50 messages in a row")
}

func TestLiveFeedStreakBrokenByReply(t *testing.T) {
	st := store.NewMemStore()
	base := time.Now().Add(-2 * time.Hour)
	for i := 0; i < 4; i++ {
		putMessage(st, fmt.Sprintf("a%d", i), "u1", fmt.Sprintf("hi %d", i),
			base.Add(time.Duration(i)*time.Minute),
			map[string]interface{}{"roomId": "room1"})
	}
	putMessage(st, "b0", "u2", "a reply", base.Add(4*time.Minute),
		map[string]interface{}{"roomId": "room1"})
	for i := 5; i < 9; i++ {
		putMessage(st, fmt.Sprintf("a%d", i), "u1", fmt.Sprintf("hi again %d", i),
			base.Add(time.Duration(i)*time.Minute),
			map[string]interface{}{"roomId": "room1"})
	}

	items := newFeedService(st).BuildLiveFeed(context.Background(), FeedOptions{})
	require.Empty(t, feedOfType(items, models.FeedSpam))
}

func TestLiveFeedRepeatThreshold(t *testing.T) {
	base := time.Now().Add(-2 * time.Hour)

	build := func(n int) []models.LiveFeedItem {
		st := store.NewMemStore()
		for i := 0; i < n; i++ {
			putMessage(st, fmt.Sprintf("m%d", i), "u1", "Buy  my course NOW",
				base.Add(time.Duration(i)*time.Minute), nil)
		}
		return newFeedService(st).BuildLiveFeed(context.Background(), FeedOptions{})
	}

	require.Empty(t, feedOfType(build(7), models.FeedSpam))

	spam := feedOfType(build(8), models.FeedSpam)
	require.Len(t, spam, 1)
	wantID := fmt.Sprintf("spam-u1-%d", base.Add(7*time.Minute).UnixMilli())
	require.Equal(t, wantID, spam[0].ID)
	require.Equal(t, "@u1 sent 8 identical messages (spam detected)", spam[0].Message)
}

func TestLiveFeedIgnoredSenderExcluded(t *testing.T) {
	st := store.NewMemStore()
	at := time.Now().Add(-time.Hour)
	putMessage(st, "m1", "u1", "free crypto https://bit.ly/x", at, nil)
	st.Put("users/u1", map[string]interface{}{
		"moderation": map[string]interface{}{"lastAction": "ignore"},
	})

	items := newFeedService(st).BuildLiveFeed(context.Background(), FeedOptions{})
	require.Empty(t, items)
}

func TestLiveFeedOldIgnoreDoesNotExclude(t *testing.T) {
	st := store.NewMemStore()
	at := time.Now().Add(-time.Hour)
	putMessage(st, "m1", "u1", "click https://bit.ly/x", at, nil)
	st.Put("users/u1", map[string]interface{}{
		"moderation": map[string]interface{}{
			"lastAction": "ignore",
			"ignoredAt":  time.Now().Add(-72 * time.Hour),
		},
	})

	items := newFeedService(st).BuildLiveFeed(context.Background(), FeedOptions{})
	require.Len(t, items, 1)
}

func TestLiveFeedLimitAndDedupe(t *testing.T) {
	st := store.NewMemStore()
	base := time.Now().Add(-2 * time.Hour)
	for i := 0; i < 10; i++ {
		putMessage(st, fmt.Sprintf("m%d", i), fmt.Sprintf("u%d", i),
			fmt.Sprintf("deal %d https://bit.ly/deal", i),
			base.Add(time.Duration(i)*time.Minute), nil)
	}

	items := newFeedService(st).BuildLiveFeed(context.Background(), FeedOptions{Limit: 3})
	require.Len(t, items, 3)
	seen := make(map[string]bool)
	for _, it := range items {
		require.False(t, seen[it.ID])
		seen[it.ID] = true
	}
}

func TestReportsSummary(t *testing.T) {
	st := store.NewMemStore()
	st.Put("reports/r1", map[string]interface{}{
		"reason":         "fake_profile",
		"status":         "pending",
		"reportedUserId": "u1",
	})
	st.Put("reports/r2", map[string]interface{}{
		"reason":         "fake_profile",
		"status":         "Resolved",
		"reportedUserId": "u1",
		"resolved":       true,
	})
	st.Put("reports/r3", map[string]interface{}{
		"reason":  "harassment",
		"status":  "ignored",
		"ignored": true,
	})
	st.Put("users/u1", map[string]interface{}{"username": "alice"})

	sum := newFeedService(st).BuildReportsSummary(context.Background())
	require.True(t, sum.Ok)

	require.Equal(t, 3, sum.StatusCard.TotalReports)
	require.Equal(t, 2, sum.StatusCard.Resolved) // Resolved + ignored count as resolved-like
	require.Equal(t, 1, sum.StatusCard.Pending)

	// Ignored report stays out of the table.
	require.Len(t, sum.Reports, 2)
	for _, row := range sum.Reports {
		require.Equal(t, "Fake profile", row.Reason)
		require.Equal(t, "@alice", row.ReportedUser)
		require.Regexp(t, `^RPT-\d{4}$`, row.TableID)
	}

	// Same doc id hashes to the same table id on every build.
	again := newFeedService(st).BuildReportsSummary(context.Background())
	require.Equal(t, sum.Reports[0].TableID, again.Reports[0].TableID)

	require.Len(t, sum.StatusCard.Categories, 2)
	require.Equal(t, "Fake profile", sum.StatusCard.Categories[0].Name)
	require.Equal(t, 2, sum.StatusCard.Categories[0].Value)
	require.Equal(t, "#1abc9c", sum.StatusCard.Categories[0].Color)
}
