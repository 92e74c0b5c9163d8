package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/quickdate/admin-api/internal/models"
	"github.com/quickdate/admin-api/internal/store"
)

const defaultAutoFlagThreshold = 10

// ErrBadThreshold is returned for a negative auto-flag threshold.
var ErrBadThreshold = errors.New("threshold must not be negative")

// AutoFlagService marks users whose open report count crosses a threshold.
type AutoFlagService struct {
	store store.Store
	log   *zap.SugaredLogger
}

func NewAutoFlagService(st store.Store, log *zap.SugaredLogger) *AutoFlagService {
	return &AutoFlagService{store: st, log: log}
}

// Run flags every user whose reports reach the threshold. Counting groups
// reports by reported uid and, when the uid is missing, by reported-name
// variants folded into one bucket. Reports already terminal or flagged are
// left alone, so repeated runs are no-ops.
func (s *AutoFlagService) Run(ctx context.Context, enabled bool, threshold int) (*models.AutoFlagResult, error) {
	if threshold < 0 {
		return nil, ErrBadThreshold
	}
	if threshold == 0 {
		threshold = defaultAutoFlagThreshold
	}
	result := &models.AutoFlagResult{
		Ok:              true,
		Enabled:         enabled,
		Threshold:       threshold,
		UpdatedDocPaths: []string{},
	}
	if !enabled {
		return result, nil
	}

	reports, err := s.store.Run(ctx, store.Query{Collection: "reports"})
	if err != nil {
		s.log.Debugw("top-level reports fetch failed", "err", err)
	}
	if len(reports) == 0 {
		reports, err = s.store.Run(ctx, store.Query{Collection: "reports", Group: true})
		if err != nil {
			return nil, fmt.Errorf("auto-flag reports fetch: %w", err)
		}
	}

	type bucket struct {
		uid   string
		count int
		docs  []*store.Document
	}
	buckets := make(map[string]*bucket)
	var order []string
	bucketFor := func(key, uid string) *bucket {
		b, ok := buckets[key]
		if !ok {
			b = &bucket{uid: uid}
			buckets[key] = b
			order = append(order, key)
		}
		if b.uid == "" {
			b.uid = uid
		}
		return b
	}

	// A report feeds both its uid bucket and its name bucket, so a user
	// reported under a mix of uid-only and name-only reports still crosses
	// the threshold when either grouping does.
	for _, doc := range reports {
		data := doc.Data
		uid := store.Str(data, "reportedUserId")
		if uid != "" {
			b := bucketFor("uid:"+uid, uid)
			b.count++
			b.docs = append(b.docs, doc)
		}
		name := strings.TrimPrefix(strings.TrimSpace(store.Str(data, "reportedUser")), "@")
		if name != "" {
			b := bucketFor("name:"+strings.ToLower(name), uid)
			b.count++
			b.docs = append(b.docs, doc)
		}
	}

	batch := s.store.Batch()
	flaggedUsers := make(map[string]bool)
	flaggedDocs := make(map[string]bool)
	flagged := 0
	for _, key := range order {
		b := buckets[key]
		if b.count < threshold {
			continue
		}
		ident := key
		if b.uid != "" {
			ident = "uid:" + b.uid
		}
		if !flaggedUsers[ident] {
			flaggedUsers[ident] = true
			flagged++
			if b.uid != "" {
				batch.SetMerge("users/"+b.uid, map[string]interface{}{
					"autoFlagged": true,
					"flaggedAt":   store.ServerTimestamp,
				})
			}
		}
		for _, doc := range b.docs {
			if flaggedDocs[doc.Path] {
				continue
			}
			status := store.Str(doc.Data, "status")
			if models.IsTerminalStatus(status) || status == "Flagged" {
				continue
			}
			flaggedDocs[doc.Path] = true
			batch.SetMerge(doc.Path, map[string]interface{}{
				"status":      "Flagged",
				"autoFlagged": true,
				"flaggedAt":   store.ServerTimestamp,
			})
			result.UpdatedReports++
			result.UpdatedDocPaths = append(result.UpdatedDocPaths, doc.Path)
		}
	}
	result.FlaggedUsers = flagged

	if batch.Len() > 0 {
		if err := batch.Commit(ctx); err != nil {
			return nil, fmt.Errorf("auto-flag commit: %w", err)
		}
	}
	s.log.Infow("auto-flag pass complete",
		"threshold", threshold, "flaggedUsers", flagged, "updatedReports", result.UpdatedReports)
	return result, nil
}
