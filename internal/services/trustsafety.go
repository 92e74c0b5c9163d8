package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/quickdate/admin-api/internal/models"
	"github.com/quickdate/admin-api/internal/store"
)

const (
	streakThreshold = 5
	repeatThreshold = 8
)

// TrustSafetyService builds the live abuse-detection feed and the reports
// summary. It holds no state between calls; every poll recomputes from the
// store.
type TrustSafetyService struct {
	store              store.Store
	auth               AuthNames
	log                *zap.SugaredLogger
	useCollectionGroup bool
}

func NewTrustSafetyService(st store.Store, auth AuthNames, log *zap.SugaredLogger, useCollectionGroup bool) *TrustSafetyService {
	return &TrustSafetyService{store: st, auth: auth, log: log, useCollectionGroup: useCollectionGroup}
}

// FeedOptions bounds a live-feed build. Zero values fall back to defaults.
type FeedOptions struct {
	Limit      int
	RoomID     string
	SinceHours int
}

func (o FeedOptions) normalized() FeedOptions {
	out := o
	if out.Limit == 0 {
		out.Limit = 50
	}
	out.Limit = clamp(out.Limit, 1, 100)
	if out.SinceHours == 0 {
		out.SinceHours = 24
	}
	out.SinceHours = clamp(out.SinceHours, 1, 168)
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// BuildLiveFeed ingests recent messages, drops senders moderated as ignored,
// and emits phishing/scam/spam detections with deterministic ids.
func (s *TrustSafetyService) BuildLiveFeed(ctx context.Context, opts FeedOptions) []models.LiveFeedItem {
	opts = opts.normalized()
	since := time.Now().Add(-time.Duration(opts.SinceHours) * time.Hour)

	messages := s.fetchRecentMessages(ctx, opts.RoomID, since)

	resolver := NewResolver(s.store, s.auth)
	for _, m := range messages {
		resolver.Seed(m.Sender, m.SenderName)
	}

	messages = s.dropIgnoredSenders(ctx, messages, since)

	var items []models.LiveFeedItem

	// Per-message detections; phishing takes precedence over scam.
	for _, m := range messages {
		switch {
		case IsPhishing(m.Text):
			items = append(items, models.LiveFeedItem{
				ID:        "phish-" + m.ID,
				Message:   fmt.Sprintf("%s sent suspicious link (phishing)", resolver.Name(ctx, m.Sender)),
				Type:      models.FeedPhishing,
				Sender:    m.Sender,
				Recipient: m.Recipient,
			})
		case IsScam(m.Text):
			items = append(items, models.LiveFeedItem{
				ID:        "scam-" + m.ID,
				Message:   fmt.Sprintf("%s sent suspicious texts (scam detected)", resolver.Name(ctx, m.Sender)),
				Type:      models.FeedScam,
				Sender:    m.Sender,
				Recipient: m.Recipient,
			})
		}
	}

	items = append(items, s.detectStreaks(ctx, messages, resolver)...)
	items = append(items, s.detectRepeats(ctx, messages, resolver)...)

	return dedupeByID(items, opts.Limit)
}

// dropIgnoredSenders excludes messages from users whose last moderation
// action was an ignore inside the window (or with no recorded time).
func (s *TrustSafetyService) dropIgnoredSenders(ctx context.Context, messages []models.Message, since time.Time) []models.Message {
	checked := make(map[string]bool)
	ignored := make(map[string]bool)
	for _, m := range messages {
		if checked[m.Sender] {
			continue
		}
		checked[m.Sender] = true
		doc, err := s.store.Get(ctx, "users/"+m.Sender)
		if err != nil {
			continue
		}
		mod := store.Sub(doc.Data, "moderation")
		if mod == nil {
			continue
		}
		if strings.ToLower(store.Str(mod, "lastAction")) != "ignore" {
			continue
		}
		ignoredAt, ok := store.TimeAt(mod, "ignoredAt", "lastIgnoredAt")
		if !ok || !ignoredAt.Before(since) {
			ignored[m.Sender] = true
		}
	}
	if len(ignored) == 0 {
		return messages
	}
	kept := messages[:0]
	for _, m := range messages {
		if !ignored[m.Sender] {
			kept = append(kept, m)
		}
	}
	return kept
}

// detectStreaks emits one spam item per run of >=streakThreshold consecutive
// messages from the same sender in a room, regardless of run length.
func (s *TrustSafetyService) detectStreaks(ctx context.Context, messages []models.Message, resolver *Resolver) []models.LiveFeedItem {
	byRoom := make(map[string][]models.Message)
	for _, m := range messages {
		if m.RoomID == "" {
			continue
		}
		byRoom[m.RoomID] = append(byRoom[m.RoomID], m)
	}

	roomIDs := make([]string, 0, len(byRoom))
	for rid := range byRoom {
		roomIDs = append(roomIDs, rid)
	}
	sort.Strings(roomIDs)

	var items []models.LiveFeedItem
	for _, rid := range roomIDs {
		arr := byRoom[rid]
		sort.Slice(arr, func(i, j int) bool { return arr[i].CreatedAt.Before(arr[j].CreatedAt) })

		curSender := ""
		streak := 0
		var lastWhen time.Time
		emit := func() {
			if curSender == "" || streak < streakThreshold {
				return
			}
			items = append(items, models.LiveFeedItem{
				ID: fmt.Sprintf("spam-streak-%s-%s-%d", rid, curSender, lastWhen.UnixMilli()),
				Message: fmt.Sprintf("%s sent %d messages in a row without reply (spam detected)",
					resolver.Name(ctx, curSender), streak),
				Type:   models.FeedSpam,
				Sender: curSender,
			})
		}
		for _, m := range arr {
			if m.Sender == curSender {
				streak++
				if m.CreatedAt.After(lastWhen) {
					lastWhen = m.CreatedAt
				}
				continue
			}
			emit()
			curSender = m.Sender
			streak = 1
			lastWhen = m.CreatedAt
		}
		emit()
	}
	return items
}

// detectRepeats emits one spam item per sender whose normalized text repeats
// >=repeatThreshold times inside the window.
func (s *TrustSafetyService) detectRepeats(ctx context.Context, messages []models.Message, resolver *Resolver) []models.LiveFeedItem {
	type repeat struct {
		count  int
		last   time.Time
		sender string
	}
	counts := make(map[string]*repeat)
	var order []string
	for _, m := range messages {
		key := m.Sender + "||" + NormalizeText(m.Text)
		r, ok := counts[key]
		if !ok {
			r = &repeat{sender: m.Sender, last: m.CreatedAt}
			counts[key] = r
			order = append(order, key)
		}
		r.count++
		if m.CreatedAt.After(r.last) {
			r.last = m.CreatedAt
		}
	}

	var items []models.LiveFeedItem
	for _, key := range order {
		r := counts[key]
		if r.count < repeatThreshold {
			continue
		}
		items = append(items, models.LiveFeedItem{
			ID: fmt.Sprintf("spam-%s-%d", r.sender, r.last.UnixMilli()),
			Message: fmt.Sprintf("%s sent %d identical messages (spam detected)",
				resolver.Name(ctx, r.sender), r.count),
			Type:   models.FeedSpam,
			Sender: r.sender,
		})
	}
	return items
}

func dedupeByID(items []models.LiveFeedItem, limit int) []models.LiveFeedItem {
	seen := make(map[string]bool, len(items))
	out := make([]models.LiveFeedItem, 0, len(items))
	for _, it := range items {
		if seen[it.ID] {
			continue
		}
		seen[it.ID] = true
		out = append(out, it)
		if len(out) == limit {
			break
		}
	}
	return out
}

var categoryPalette = []string{
	"#1abc9c", "#6366f1", "#8b5cf6", "#ec4899", "#f59e0b", "#eab308", "#10B981", "#F43F5E",
}

// BuildReportsSummary aggregates report rows, status totals and reason
// categories for the trust & safety page.
func (s *TrustSafetyService) BuildReportsSummary(ctx context.Context) *models.ReportsSummary {
	raw := s.fetchReports(ctx)

	nameMap := make(map[string]string)
	for _, doc := range raw {
		uid := store.Str(doc.Data, "reportedUserId", "reportedUser")
		if uid == "" {
			continue
		}
		if _, ok := nameMap[uid]; ok {
			continue
		}
		nameMap[uid] = s.reportedDisplayName(ctx, uid)
	}

	summary := &models.ReportsSummary{Ok: true, Reports: []models.ReportRow{}}
	byReason := make(map[string]int)
	var reasonOrder []string

	for _, doc := range raw {
		data := doc.Data
		reason := formatReasonLabel(store.Str(data, "reason"))
		statusRaw := strings.ToLower(store.Str(data, "status"))
		if statusRaw == "" {
			statusRaw = "pending"
		}
		uid := store.Str(data, "reportedUserId", "reportedUser")

		summary.StatusCard.TotalReports++
		resolvedFlag, _ := store.Bool(data, "resolved")
		switch {
		case resolvedFlag || isResolvedLike(statusRaw):
			summary.StatusCard.Resolved++
		case statusRaw == "pending":
			summary.StatusCard.Pending++
		}
		if _, ok := byReason[reason]; !ok {
			reasonOrder = append(reasonOrder, reason)
		}
		byReason[reason]++

		// Ignored reports stay in the totals but leave the table.
		ignoredFlag, _ := store.Bool(data, "ignored")
		if statusRaw == "ignored" || ignoredFlag {
			continue
		}

		displayName := "-"
		if uid != "" {
			displayName = nameMap[uid]
			if displayName == "" {
				displayName = "@" + uid
			}
		}
		summary.Reports = append(summary.Reports, models.ReportRow{
			ID:              doc.ID,
			TableID:         reportTableID(doc.ID),
			ReportedUser:    displayName,
			ReportedUserUID: uid,
			DocPath:         doc.Path,
			Reason:          reason,
			ReportCount:     1,
			Status:          strings.ToUpper(statusRaw[:1]) + statusRaw[1:],
		})
	}

	sort.SliceStable(reasonOrder, func(i, j int) bool {
		return byReason[reasonOrder[i]] > byReason[reasonOrder[j]]
	})
	for idx, name := range reasonOrder {
		value := byReason[name]
		pct := 0.0
		if summary.StatusCard.TotalReports > 0 {
			pct = roundTenth(float64(value) / float64(summary.StatusCard.TotalReports) * 100)
		}
		summary.StatusCard.Categories = append(summary.StatusCard.Categories, models.ReportCategory{
			Name:       name,
			Value:      value,
			Percentage: pct,
			Color:      categoryPalette[idx%len(categoryPalette)],
		})
	}
	return summary
}

func (s *TrustSafetyService) reportedDisplayName(ctx context.Context, uid string) string {
	doc, err := s.store.Get(ctx, "users/"+uid)
	if err != nil {
		return "@" + uid
	}
	if name := displayNameFrom(doc.Data); name != "" {
		return name
	}
	return "@" + uid
}

func isResolvedLike(status string) bool {
	switch status {
	case "resolved", "warned", "banned", "suspended", "ignored":
		return true
	}
	return false
}

func formatReasonLabel(raw string) string {
	clean := strings.TrimSpace(strings.ReplaceAll(raw, "_", " "))
	if clean == "" {
		return "Other"
	}
	return strings.ToUpper(clean[:1]) + clean[1:]
}

// reportTableID derives a stable RPT-1000..9999 label from the doc id.
func reportTableID(docID string) string {
	var hash int32
	for _, c := range docID {
		hash = hash*31 + int32(c)
	}
	n := hash % 9000
	if n < 0 {
		n = -n
	}
	return fmt.Sprintf("RPT-%d", n+1000)
}

func roundTenth(v float64) float64 {
	if v < 0 {
		return float64(int(v*10-0.5)) / 10
	}
	return float64(int(v*10+0.5)) / 10
}
