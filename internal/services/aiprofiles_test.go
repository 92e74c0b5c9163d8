package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/quickdate/admin-api/internal/models"
	"github.com/quickdate/admin-api/internal/store"
)

func newProfiles(st store.Store) *AIProfileService {
	return NewAIProfileService(st, zap.NewNop().Sugar())
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func TestGenerateProfiles(t *testing.T) {
	st := store.NewMemStore()
	resp, err := newProfiles(st).Generate(context.Background(), &models.GenerateProfilesRequest{
		Name:             "Luna",
		NumberOfProfiles: 3,
		Gender:           "Female",
		ProfileQuality:   "very good",
		AgeRange:         "18-25",
		Interests:        []interface{}{"hiking", "music"},
		ExpireAfter:      intPtr(10),
		AutoRegenerate:   boolPtr(true),
	})
	require.NoError(t, err)
	require.Equal(t, 3, resp.CreatedCount)
	require.Len(t, resp.IDs, 3)

	docs, err := st.Run(context.Background(), store.Query{Collection: "ai_profiles"})
	require.NoError(t, err)
	require.Len(t, docs, 3)

	names := make(map[string]bool)
	for _, d := range docs {
		names[store.Str(d.Data, "name")] = true
		require.Equal(t, "female", store.Str(d.Data, "gender"))
		require.Equal(t, "very_good", store.Str(d.Data, "profileQuality"))
		ageMin, _ := store.Num(d.Data, "ageMin")
		ageMax, _ := store.Num(d.Data, "ageMax")
		require.Equal(t, float64(18), ageMin)
		require.Equal(t, float64(25), ageMax)
		require.Equal(t, "Active", store.Str(d.Data, "status"))
		exp, ok := store.TimeAt(d.Data, "expiresAt")
		require.True(t, ok)
		require.WithinDuration(t, time.Now().Add(10*24*time.Hour), exp, time.Minute)
	}
	require.True(t, names["Luna"])
	require.True(t, names["Luna 2"])
	require.True(t, names["Luna 3"])
}

func TestGenerateProfilesCountValidation(t *testing.T) {
	svc := newProfiles(store.NewMemStore())
	_, err := svc.Generate(context.Background(), &models.GenerateProfilesRequest{NumberOfProfiles: 0})
	require.ErrorIs(t, err, ErrBadProfileCount)
	_, err = svc.Generate(context.Background(), &models.GenerateProfilesRequest{NumberOfProfiles: 1001})
	require.ErrorIs(t, err, ErrBadProfileCount)
}

func TestGenerateProfilesLegacyCountAlias(t *testing.T) {
	st := store.NewMemStore()
	resp, err := newProfiles(st).Generate(context.Background(), &models.GenerateProfilesRequest{Count: 2})
	require.NoError(t, err)
	require.Equal(t, 2, resp.CreatedCount)
}

func TestQualityNormalization(t *testing.T) {
	require.Equal(t, "very_good", normalizeQuality("vg"))
	require.Equal(t, "very_good", normalizeQuality("HIGH"))
	require.Equal(t, "bad", normalizeQuality("low"))
	require.Equal(t, "good", normalizeQuality("whatever"))
	require.Equal(t, "good", normalizeQuality(""))
}

func TestAgeRangeParsing(t *testing.T) {
	lo, hi := parseAgeRange(nil, nil, "18-25")
	require.Equal(t, 18, lo)
	require.Equal(t, 25, hi)

	lo, hi = parseAgeRange(intPtr(10), intPtr(90), "")
	require.Equal(t, 18, lo)
	require.Equal(t, 60, hi)

	lo, hi = parseAgeRange(intPtr(40), intPtr(30), "")
	require.Equal(t, 40, lo)
	require.Equal(t, 40, hi)
}

func TestSetStatusPlayPause(t *testing.T) {
	st := store.NewMemStore()
	st.Put("ai_profiles/p1", map[string]interface{}{"status": "Paused"})
	svc := newProfiles(st)

	require.NoError(t, svc.SetStatus(context.Background(), "p1", "Active"))
	doc, _ := st.Get(context.Background(), "ai_profiles/p1")
	require.Equal(t, "Active", store.Str(doc.Data, "status"))

	require.ErrorIs(t, svc.SetStatus(context.Background(), "missing", "Active"), store.ErrNotFound)
}

func TestPauseAll(t *testing.T) {
	st := store.NewMemStore()
	st.Put("ai_profiles/p1", map[string]interface{}{"status": "Active", "createdAt": time.Now()})
	st.Put("ai_profiles/p2", map[string]interface{}{"status": "Active", "createdAt": time.Now()})
	st.Put("ai_profiles/p3", map[string]interface{}{"status": "Paused", "createdAt": time.Now()})

	updated, err := newProfiles(st).PauseAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, updated)

	doc, _ := st.Get(context.Background(), "ai_profiles/p1")
	require.Equal(t, "Paused", store.Str(doc.Data, "status"))
}

func TestCleanExpired(t *testing.T) {
	st := store.NewMemStore()
	st.Put("ai_profiles/gone", map[string]interface{}{
		"expiresAt": time.Now().Add(-time.Hour),
	})
	st.Put("ai_profiles/iso", map[string]interface{}{
		"expiresAt": time.Now().Add(-time.Hour).Format(time.RFC3339),
	})
	st.Put("ai_profiles/alive", map[string]interface{}{
		"expiresAt": time.Now().Add(time.Hour),
	})
	st.Put("ai_profiles/noexpiry", map[string]interface{}{"status": "Active"})

	deleted, err := newProfiles(st).CleanExpired(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, deleted)

	_, err = st.Get(context.Background(), "ai_profiles/gone")
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.Get(context.Background(), "ai_profiles/alive")
	require.NoError(t, err)
}

func TestRegenerateExpired(t *testing.T) {
	st := store.NewMemStore()
	st.Put("ai_profiles/auto", map[string]interface{}{
		"status":          "Expired",
		"autoRegenerate":  true,
		"expiresAt":       time.Now().Add(-time.Hour),
		"expireAfterDays": float64(5),
	})
	st.Put("ai_profiles/manual", map[string]interface{}{
		"status":    "Expired",
		"expiresAt": time.Now().Add(-time.Hour),
	})

	regenerated, err := newProfiles(st).RegenerateExpired(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, regenerated)

	doc, _ := st.Get(context.Background(), "ai_profiles/auto")
	require.Equal(t, "Active", store.Str(doc.Data, "status"))
	exp, ok := store.TimeAt(doc.Data, "expiresAt")
	require.True(t, ok)
	require.WithinDuration(t, time.Now().Add(5*24*time.Hour), exp, time.Minute)

	manual, _ := st.Get(context.Background(), "ai_profiles/manual")
	require.Equal(t, "Expired", store.Str(manual.Data, "status"))
}
