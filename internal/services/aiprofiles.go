package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/quickdate/admin-api/internal/models"
	"github.com/quickdate/admin-api/internal/store"
)

const (
	profilesCollection = "ai_profiles"
	maxBatchProfiles   = 1000
	sweepPageSize      = 500
)

var ErrBadProfileCount = errors.New("numberOfProfiles must be between 1 and 1000")

// AIProfileService manages synthetic engagement profiles: batch generation,
// lifecycle actions and the expiry sweep run by the profile-sweeper worker.
type AIProfileService struct {
	store store.Store
	log   *zap.SugaredLogger
}

func NewAIProfileService(st store.Store, log *zap.SugaredLogger) *AIProfileService {
	return &AIProfileService{store: st, log: log}
}

// Generate creates N profiles from the request template. Names get a numeric
// suffix past the first profile.
func (s *AIProfileService) Generate(ctx context.Context, req *models.GenerateProfilesRequest) (*models.GenerateProfilesResponse, error) {
	n := req.NumberOfProfiles
	if n == 0 {
		n = req.Count
	}
	if n < 1 || n > maxBatchProfiles {
		return nil, ErrBadProfileCount
	}

	baseName := strings.TrimSpace(req.Name)
	if baseName == "" {
		baseName = "AI Profile"
	}
	ageMin, ageMax := parseAgeRange(req.AgeMin, req.AgeMax, req.AgeRange)
	expireDays := clampExpireDays(req.ExpireAfter)
	expiresAt := time.Now().Add(time.Duration(expireDays) * 24 * time.Hour)

	template := map[string]interface{}{
		"gender":          normalizeGender(req.Gender),
		"profileQuality":  normalizeQuality(req.ProfileQuality),
		"ageMin":          ageMin,
		"ageMax":          ageMax,
		"interests":       interestSlice(req.Interests),
		"contentSource":   normalizeContentSource(req.ContentSource),
		"country":         req.Country,
		"city":            req.City,
		"messagesPerDay":  intOr(req.MessagesPerDay, 5),
		"likesPerDay":     intOr(req.LikesPerDay, 10),
		"matchesPerWeek":  intOr(req.MatchesPerWeek, 3),
		"matchPreference": normalizeMatchPreference(req.MatchPreference),
		"expireAfterDays": expireDays,
		"expiresAt":       expiresAt,
		"autoRegenerate":  boolOr(req.AutoRegenerate, false),
		"status":          "Active",
		"isAI":            true,
		"createdAt":       store.ServerTimestamp,
		"updatedAt":       store.ServerTimestamp,
	}
	if req.ContentFileURL != "" {
		template["contentFileUrl"] = req.ContentFileURL
	}

	batch := s.store.Batch()
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		fields := make(map[string]interface{}, len(template)+1)
		for k, v := range template {
			fields[k] = v
		}
		if i == 0 {
			fields["name"] = baseName
		} else {
			fields["name"] = fmt.Sprintf("%s %d", baseName, i+1)
		}
		path := batch.Create(profilesCollection, fields)
		ids = append(ids, path[strings.LastIndex(path, "/")+1:])
	}
	if err := batch.Commit(ctx); err != nil {
		return nil, fmt.Errorf("generate profiles: %w", err)
	}
	s.log.Infow("generated ai profiles", "count", n)
	return &models.GenerateProfilesResponse{Ok: true, CreatedCount: n, IDs: ids}, nil
}

func (s *AIProfileService) List(ctx context.Context, limit int) ([]*store.Document, error) {
	if limit == 0 {
		limit = 100
	}
	limit = clamp(limit, 1, sweepPageSize)
	docs, err := s.store.Run(ctx, store.Query{
		Collection: profilesCollection,
		OrderBy:    "createdAt",
		Desc:       true,
		Limit:      limit,
	})
	if err == nil {
		return docs, nil
	}
	s.log.Debugw("ordered profiles query failed, retrying unordered", "err", err)
	return s.store.Run(ctx, store.Query{Collection: profilesCollection, Limit: limit})
}

func (s *AIProfileService) Get(ctx context.Context, id string) (*store.Document, error) {
	return s.store.Get(ctx, profilesCollection+"/"+id)
}

// Patch merges non-empty request fields into the profile.
func (s *AIProfileService) Patch(ctx context.Context, id string, req *models.UpdateProfileRequest) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	fields := map[string]interface{}{"updatedAt": store.ServerTimestamp}
	if req.Name != "" {
		fields["name"] = strings.TrimSpace(req.Name)
	}
	if req.Gender != "" {
		fields["gender"] = normalizeGender(req.Gender)
	}
	if req.Interests != nil {
		fields["interests"] = interestSlice(req.Interests)
	}
	if req.ProfileQuality != "" {
		fields["profileQuality"] = normalizeQuality(req.ProfileQuality)
	}
	if req.AgeMin != nil || req.AgeMax != nil {
		mn, mx := parseAgeRange(req.AgeMin, req.AgeMax, "")
		fields["ageMin"] = mn
		fields["ageMax"] = mx
	}
	if req.Country != "" {
		fields["country"] = req.Country
	}
	if req.City != "" {
		fields["city"] = req.City
	}
	if req.ContentSource != "" {
		fields["contentSource"] = normalizeContentSource(req.ContentSource)
	}
	if req.ContentFileURL != "" {
		fields["contentFileUrl"] = req.ContentFileURL
	}
	if req.MessagesPerDay != nil {
		fields["messagesPerDay"] = *req.MessagesPerDay
	}
	if req.LikesPerDay != nil {
		fields["likesPerDay"] = *req.LikesPerDay
	}
	if req.MatchesPerWeek != nil {
		fields["matchesPerWeek"] = *req.MatchesPerWeek
	}
	if req.MatchPreference != "" {
		fields["matchPreference"] = normalizeMatchPreference(req.MatchPreference)
	}
	if req.ExpireAfter != nil {
		days := clampExpireDays(req.ExpireAfter)
		fields["expireAfterDays"] = days
		fields["expiresAt"] = time.Now().Add(time.Duration(days) * 24 * time.Hour)
	}
	if req.AutoRegenerate != nil {
		fields["autoRegenerate"] = *req.AutoRegenerate
	}
	if req.Status != "" {
		fields["status"] = req.Status
	}
	batch := s.store.Batch()
	batch.SetMerge(profilesCollection+"/"+id, fields)
	if err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("patch profile: %w", err)
	}
	return nil
}

func (s *AIProfileService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	batch := s.store.Batch()
	batch.Delete(profilesCollection + "/" + id)
	if err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}

// SetStatus flips a single profile's status (play/pause buttons).
func (s *AIProfileService) SetStatus(ctx context.Context, id, status string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	batch := s.store.Batch()
	batch.SetMerge(profilesCollection+"/"+id, map[string]interface{}{
		"status":    status,
		"updatedAt": store.ServerTimestamp,
	})
	if err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("set profile status: %w", err)
	}
	return nil
}

// PauseAll pages through every active profile and sets it Paused.
func (s *AIProfileService) PauseAll(ctx context.Context) (int, error) {
	updated := 0
	var cursor interface{}
	for {
		docs, err := s.store.Run(ctx, store.Query{
			Collection: profilesCollection,
			OrderBy:    "createdAt",
			Limit:      sweepPageSize,
			StartAfter: cursor,
		})
		if err != nil {
			return updated, fmt.Errorf("pause-all page: %w", err)
		}
		if len(docs) == 0 {
			return updated, nil
		}
		batch := s.store.Batch()
		for _, doc := range docs {
			if store.Str(doc.Data, "status") == "Paused" {
				continue
			}
			batch.SetMerge(doc.Path, map[string]interface{}{
				"status":    "Paused",
				"updatedAt": store.ServerTimestamp,
			})
			updated++
		}
		if batch.Len() > 0 {
			if err := batch.Commit(ctx); err != nil {
				return updated, fmt.Errorf("pause-all commit: %w", err)
			}
		}
		if len(docs) < sweepPageSize {
			return updated, nil
		}
		last := docs[len(docs)-1]
		t, ok := store.TimeAt(last.Data, "createdAt")
		if !ok {
			return updated, nil
		}
		cursor = t
	}
}

// CleanExpired deletes profiles whose expiresAt is in the past. Expiry is
// read tolerantly since older writers stored it as millis or ISO strings.
func (s *AIProfileService) CleanExpired(ctx context.Context) (int, error) {
	docs, err := s.store.Run(ctx, store.Query{Collection: profilesCollection})
	if err != nil {
		return 0, fmt.Errorf("clean-expired fetch: %w", err)
	}
	now := time.Now()
	batch := s.store.Batch()
	deleted := 0
	for _, doc := range docs {
		exp, ok := store.TimeAt(doc.Data, "expiresAt", "expires_at", "expiry")
		if !ok || !exp.Before(now) {
			continue
		}
		batch.Delete(doc.Path)
		deleted++
	}
	if batch.Len() > 0 {
		if err := batch.Commit(ctx); err != nil {
			return 0, fmt.Errorf("clean-expired commit: %w", err)
		}
	}
	s.log.Infow("cleaned expired profiles", "deleted", deleted)
	return deleted, nil
}

// RegenerateExpired resets expired auto-regenerating profiles to Active with
// a fresh expiry window.
func (s *AIProfileService) RegenerateExpired(ctx context.Context) (int, error) {
	docs, err := s.store.Run(ctx, store.Query{Collection: profilesCollection})
	if err != nil {
		return 0, fmt.Errorf("regenerate-expired fetch: %w", err)
	}
	now := time.Now()
	batch := s.store.Batch()
	regenerated := 0
	for _, doc := range docs {
		auto, _ := store.Bool(doc.Data, "autoRegenerate")
		if !auto {
			continue
		}
		exp, ok := store.TimeAt(doc.Data, "expiresAt", "expires_at", "expiry")
		if !ok || !exp.Before(now) {
			continue
		}
		days := 30
		if n, ok := store.Num(doc.Data, "expireAfterDays"); ok {
			days = clamp(int(n), 1, 60)
		}
		batch.SetMerge(doc.Path, map[string]interface{}{
			"status":    "Active",
			"expiresAt": now.Add(time.Duration(days) * 24 * time.Hour),
			"updatedAt": store.ServerTimestamp,
		})
		regenerated++
	}
	if batch.Len() > 0 {
		if err := batch.Commit(ctx); err != nil {
			return 0, fmt.Errorf("regenerate-expired commit: %w", err)
		}
	}
	s.log.Infow("regenerated expired profiles", "regenerated", regenerated)
	return regenerated, nil
}

func normalizeGender(g string) string {
	switch strings.ToLower(strings.TrimSpace(g)) {
	case "male", "m":
		return "male"
	case "female", "f":
		return "female"
	case "binary", "nonbinary", "non-binary":
		return "binary"
	}
	return "female"
}

func normalizeQuality(q string) string {
	switch strings.ToLower(strings.TrimSpace(q)) {
	case "very good", "very_good", "vg", "high":
		return "very_good"
	case "bad", "low":
		return "bad"
	}
	return "good"
}

func normalizeContentSource(cs string) string {
	switch strings.ToLower(strings.TrimSpace(cs)) {
	case "file", "stock", "generated", "custom":
		return strings.ToLower(strings.TrimSpace(cs))
	}
	return "generated"
}

func normalizeMatchPreference(mp string) string {
	switch strings.ToLower(strings.TrimSpace(mp)) {
	case "city", "country", "gender", "age":
		return strings.ToLower(strings.TrimSpace(mp))
	}
	return "city"
}

// parseAgeRange resolves explicit min/max and an "18-25" style string into a
// range clamped to 18..60.
func parseAgeRange(min, max *int, rangeStr string) (int, int) {
	lo, hi := 18, 35
	if rangeStr != "" {
		if parts := strings.SplitN(rangeStr, "-", 2); len(parts) == 2 {
			if v, err := strconv.Atoi(strings.TrimSpace(parts[0])); err == nil {
				lo = v
			}
			if v, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil {
				hi = v
			}
		}
	}
	if min != nil {
		lo = *min
	}
	if max != nil {
		hi = *max
	}
	lo = clamp(lo, 18, 60)
	hi = clamp(hi, 18, 60)
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

func clampExpireDays(d *int) int {
	if d == nil || *d == 0 {
		return 30
	}
	return clamp(*d, 1, 60)
}

// interestSlice accepts a string array or comma-joined string, capped at 50.
func interestSlice(v interface{}) []string {
	var out []string
	switch t := v.(type) {
	case []string:
		out = t
	case []interface{}:
		for _, e := range t {
			if s, _ := e.(string); s != "" {
				out = append(out, s)
			}
		}
	case string:
		for _, part := range strings.Split(t, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	if len(out) > 50 {
		out = out[:50]
	}
	if out == nil {
		out = []string{}
	}
	return out
}

func intOr(v *int, dflt int) int {
	if v == nil {
		return dflt
	}
	return *v
}

func boolOr(v *bool, dflt bool) bool {
	if v == nil {
		return dflt
	}
	return *v
}
