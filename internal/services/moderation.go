package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/quickdate/admin-api/internal/models"
	"github.com/quickdate/admin-api/internal/store"
)

var (
	ErrUnknownAction = errors.New("unknown moderation action")
	ErrNoTargets     = errors.New("no reports or users to moderate")
)

// ModerationService applies moderator decisions to report documents and the
// reported users, and records an audit log entry per request.
type ModerationService struct {
	store store.Store
	log   *zap.SugaredLogger
}

func NewModerationService(st store.Store, log *zap.SugaredLogger) *ModerationService {
	return &ModerationService{store: st, log: log}
}

// Moderate resolves the targeted reports with the given action and updates
// each affected user's moderation state. All writes land in a single batch.
func (s *ModerationService) Moderate(ctx context.Context, req models.ModerateRequest) (*models.ModerateResult, error) {
	rawAction := strings.ToLower(strings.TrimSpace(req.Action))
	days := req.DurationDays
	if rawAction == "limit" {
		rawAction = string(models.ActionSuspend)
		if days <= 0 {
			days = 1
		}
	}
	action, err := models.ParseAction(rawAction)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, req.Action)
	}
	if action == models.ActionSuspend && days <= 0 {
		days = 7
	}

	reports := s.collectReports(ctx, req)
	uids := s.collectUserUIDs(req, reports)
	if len(reports) == 0 && len(uids) == 0 {
		return nil, ErrNoTargets
	}

	status := action.Status()
	now := time.Now()
	batch := s.store.Batch()

	updated := 0
	var updatedPaths []string
	for _, doc := range reports {
		current := store.Str(doc.Data, "status")
		if models.IsTerminalStatus(current) {
			s.log.Debugw("skipping terminal report", "path", doc.Path, "status", current)
			continue
		}
		fields := map[string]interface{}{
			"status":           status,
			"updatedAt":        store.ServerTimestamp,
			"moderationAction": string(action),
			"resolutionAction": string(action),
			"resolutionAt":     store.ServerTimestamp,
			"resolved":         true,
		}
		if action == models.ActionIgnore {
			fields["ignored"] = true
		}
		batch.SetMerge(doc.Path, fields)
		updated++
		updatedPaths = append(updatedPaths, doc.Path)
	}

	for _, uid := range uids {
		batch.SetMerge("users/"+uid, userModerationFields(action, now, days))
	}

	logFields := map[string]interface{}{
		"action":         string(action),
		"status":         status,
		"reason":         req.Reason,
		"reportDocPaths": updatedPaths,
		"userUids":       uids,
		"createdAt":      store.ServerTimestamp,
	}
	if action == models.ActionSuspend {
		logFields["durationDays"] = days
	}
	batch.Create("moderationLogs", logFields)

	if err := batch.Commit(ctx); err != nil {
		return nil, fmt.Errorf("moderation commit: %w", err)
	}

	s.log.Infow("moderation applied",
		"action", string(action), "status", status,
		"reports", updated, "users", len(uids))

	return &models.ModerateResult{
		Ok:             true,
		UpdatedReports: updated,
		AffectedUsers:  len(uids),
		Status:         status,
	}, nil
}

// userModerationFields builds the merge payload for users/<uid> given an
// action. All state lands inside the embedded moderation object; every
// action stamps lastAction and lastActionAt there.
func userModerationFields(action models.Action, now time.Time, days int) map[string]interface{} {
	mod := map[string]interface{}{
		"lastAction":   string(action),
		"lastActionAt": store.ServerTimestamp,
	}
	switch action {
	case models.ActionWarn:
		mod["warningsCount"] = store.Inc(1)
		mod["lastWarnedAt"] = store.ServerTimestamp
	case models.ActionBan:
		mod["banned"] = true
		mod["bannedAt"] = store.ServerTimestamp
	case models.ActionSuspend:
		mod["suspended"] = true
		mod["suspendedAt"] = store.ServerTimestamp
		mod["suspendedUntil"] = now.Add(time.Duration(days) * 24 * time.Hour)
	case models.ActionIgnore:
		mod["ignoredAt"] = store.ServerTimestamp
	}
	return map[string]interface{}{"moderation": mod}
}

// collectReports gathers the report documents named by the request: explicit
// doc paths first, then lookups by reported uid and by reported name variants.
func (s *ModerationService) collectReports(ctx context.Context, req models.ModerateRequest) []*store.Document {
	seen := make(map[string]bool)
	var out []*store.Document
	add := func(doc *store.Document) {
		if doc == nil || seen[doc.Path] {
			return
		}
		seen[doc.Path] = true
		out = append(out, doc)
	}

	for _, r := range req.Reports {
		path := r.DocPath
		if path == "" && r.ID != "" {
			path = "reports/" + r.ID
		}
		if path == "" {
			continue
		}
		doc, err := s.store.Get(ctx, path)
		if err != nil {
			s.log.Debugw("report lookup failed", "path", path, "err", err)
			continue
		}
		add(doc)
	}

	for _, uid := range req.UserUIDs {
		for _, field := range []string{"reportedUserId", "reportedUser"} {
			for _, group := range []bool{false, true} {
				docs, err := s.store.Run(ctx, store.Query{
					Collection: "reports",
					Group:      group,
					Filters:    []store.Filter{{Field: field, Op: "==", Value: uid}},
				})
				if err != nil {
					continue
				}
				for _, d := range docs {
					add(d)
				}
			}
		}
	}

	for _, name := range req.ReportedNames {
		for _, variant := range nameVariants(name) {
			for _, group := range []bool{false, true} {
				docs, err := s.store.Run(ctx, store.Query{
					Collection: "reports",
					Group:      group,
					Filters:    []store.Filter{{Field: "reportedUser", Op: "==", Value: variant}},
				})
				if err != nil {
					continue
				}
				for _, d := range docs {
					add(d)
				}
			}
		}
	}
	return out
}

// collectUserUIDs merges explicitly-requested uids with the reported uids
// found on the collected report documents.
func (s *ModerationService) collectUserUIDs(req models.ModerateRequest, reports []*store.Document) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(uid string) {
		uid = strings.TrimSpace(uid)
		if uid == "" || seen[uid] {
			return
		}
		seen[uid] = true
		out = append(out, uid)
	}
	for _, uid := range req.UserUIDs {
		add(uid)
	}
	for _, doc := range reports {
		add(store.Str(doc.Data, "reportedUserId"))
	}
	return out
}

// nameVariants yields a name with and without a leading '@'.
func nameVariants(name string) []string {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	if strings.HasPrefix(name, "@") {
		return []string{name, strings.TrimPrefix(name, "@")}
	}
	return []string{name, "@" + name}
}
