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

func newModeration(st store.Store) *ModerationService {
	return NewModerationService(st, zap.NewNop().Sugar())
}

func TestModerateWarn(t *testing.T) {
	st := store.NewMemStore()
	st.Put("reports/r1", map[string]interface{}{
		"reason":         "spam",
		"status":         "pending",
		"reportedUserId": "u1",
	})

	res, err := newModeration(st).Moderate(context.Background(), models.ModerateRequest{
		Action:  "warn",
		Reports: []models.ModerateReport{{DocPath: "reports/r1"}},
		Reason:  "spamming the feed",
	})
	require.NoError(t, err)
	require.Equal(t, 1, res.UpdatedReports)
	require.Equal(t, 1, res.AffectedUsers)
	require.Equal(t, "Warned", res.Status)

	report, err := st.Get(context.Background(), "reports/r1")
	require.NoError(t, err)
	require.Equal(t, "Warned", store.Str(report.Data, "status"))
	require.Equal(t, "warn", store.Str(report.Data, "moderationAction"))
	resolved, _ := store.Bool(report.Data, "resolved")
	require.True(t, resolved)

	user, err := st.Get(context.Background(), "users/u1")
	require.NoError(t, err)
	mod := store.Sub(user.Data, "moderation")
	require.Equal(t, "warn", store.Str(mod, "lastAction"))
	warnings, _ := store.Num(mod, "warningsCount")
	require.Equal(t, float64(1), warnings)
	_, ok := store.TimeAt(mod, "lastWarnedAt")
	require.True(t, ok)
	// Action state lives in the embedded moderation object, not the doc root.
	_, atRoot := user.Data["warningsCount"]
	require.False(t, atRoot)

	logs, err := st.Run(context.Background(), store.Query{Collection: "moderationLogs"})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, "warn", store.Str(logs[0].Data, "action"))
	require.Equal(t, "spamming the feed", store.Str(logs[0].Data, "reason"))
}

func TestModerateBan(t *testing.T) {
	st := store.NewMemStore()
	st.Put("reports/r1", map[string]interface{}{"status": "pending", "reportedUserId": "u1"})

	_, err := newModeration(st).Moderate(context.Background(), models.ModerateRequest{
		Action:  "ban",
		Reports: []models.ModerateReport{{DocPath: "reports/r1"}},
	})
	require.NoError(t, err)

	user, err := st.Get(context.Background(), "users/u1")
	require.NoError(t, err)
	mod := store.Sub(user.Data, "moderation")
	banned, _ := store.Bool(mod, "banned")
	require.True(t, banned)
	_, ok := store.TimeAt(mod, "bannedAt")
	require.True(t, ok)
}

func TestModerateSuspendDefaultDuration(t *testing.T) {
	st := store.NewMemStore()
	st.Put("reports/r1", map[string]interface{}{"status": "pending", "reportedUserId": "u1"})

	_, err := newModeration(st).Moderate(context.Background(), models.ModerateRequest{
		Action:  "suspend",
		Reports: []models.ModerateReport{{DocPath: "reports/r1"}},
	})
	require.NoError(t, err)

	user, err := st.Get(context.Background(), "users/u1")
	require.NoError(t, err)
	mod := store.Sub(user.Data, "moderation")
	suspended, _ := store.Bool(mod, "suspended")
	require.True(t, suspended)
	until, ok := store.TimeAt(mod, "suspendedUntil")
	require.True(t, ok)
	require.WithinDuration(t, time.Now().Add(7*24*time.Hour), until, time.Minute)

	logs, _ := st.Run(context.Background(), store.Query{Collection: "moderationLogs"})
	require.Len(t, logs, 1)
	days, _ := store.Num(logs[0].Data, "durationDays")
	require.Equal(t, float64(7), days)
}

func TestModerateLimitShorthand(t *testing.T) {
	st := store.NewMemStore()
	st.Put("reports/r1", map[string]interface{}{"status": "pending", "reportedUserId": "u1"})

	res, err := newModeration(st).Moderate(context.Background(), models.ModerateRequest{
		Action:  "limit",
		Reports: []models.ModerateReport{{DocPath: "reports/r1"}},
	})
	require.NoError(t, err)
	require.Equal(t, "Suspended", res.Status)

	user, err := st.Get(context.Background(), "users/u1")
	require.NoError(t, err)
	until, ok := store.TimeAt(store.Sub(user.Data, "moderation"), "suspendedUntil")
	require.True(t, ok)
	require.WithinDuration(t, time.Now().Add(24*time.Hour), until, time.Minute)
}

func TestModerateTerminalReportSkipped(t *testing.T) {
	st := store.NewMemStore()
	st.Put("reports/r1", map[string]interface{}{"status": "Banned", "reportedUserId": "u1"})

	res, err := newModeration(st).Moderate(context.Background(), models.ModerateRequest{
		Action:  "warn",
		Reports: []models.ModerateReport{{DocPath: "reports/r1"}},
	})
	require.NoError(t, err)
	require.Equal(t, 0, res.UpdatedReports)

	report, _ := st.Get(context.Background(), "reports/r1")
	require.Equal(t, "Banned", store.Str(report.Data, "status"))
}

// A warn is not terminal: a later ignore overwrites it, while the reverse
// direction is blocked.
func TestModerateWarnIgnoreAsymmetry(t *testing.T) {
	st := store.NewMemStore()
	st.Put("reports/r1", map[string]interface{}{"status": "pending", "reportedUserId": "u1"})
	svc := newModeration(st)

	_, err := svc.Moderate(context.Background(), models.ModerateRequest{
		Action:  "warn",
		Reports: []models.ModerateReport{{DocPath: "reports/r1"}},
	})
	require.NoError(t, err)

	res, err := svc.Moderate(context.Background(), models.ModerateRequest{
		Action:  "ignore",
		Reports: []models.ModerateReport{{DocPath: "reports/r1"}},
	})
	require.NoError(t, err)
	require.Equal(t, 1, res.UpdatedReports)

	report, _ := st.Get(context.Background(), "reports/r1")
	require.Equal(t, "Ignored", store.Str(report.Data, "status"))
	ignored, _ := store.Bool(report.Data, "ignored")
	require.True(t, ignored)

	// And back: warn must not overwrite the ignore.
	res, err = newModeration(st).Moderate(context.Background(), models.ModerateRequest{
		Action:  "warn",
		Reports: []models.ModerateReport{{DocPath: "reports/r1"}},
	})
	require.NoError(t, err)
	require.Equal(t, 0, res.UpdatedReports)
	report, _ = st.Get(context.Background(), "reports/r1")
	require.Equal(t, "Ignored", store.Str(report.Data, "status"))
}

func TestModerateByUID(t *testing.T) {
	st := store.NewMemStore()
	st.Put("reports/r1", map[string]interface{}{"status": "pending", "reportedUserId": "u1"})
	st.Put("reports/r2", map[string]interface{}{"status": "pending", "reportedUserId": "u1"})
	st.Put("reports/r3", map[string]interface{}{"status": "pending", "reportedUserId": "u2"})

	res, err := newModeration(st).Moderate(context.Background(), models.ModerateRequest{
		Action:   "ban",
		UserUIDs: []string{"u1"},
	})
	require.NoError(t, err)
	require.Equal(t, 2, res.UpdatedReports)
	require.Equal(t, 1, res.AffectedUsers)

	r3, _ := st.Get(context.Background(), "reports/r3")
	require.Equal(t, "pending", store.Str(r3.Data, "status"))
}

func TestModerateByNameVariants(t *testing.T) {
	st := store.NewMemStore()
	st.Put("reports/r1", map[string]interface{}{"status": "pending", "reportedUser": "@alice"})
	st.Put("reports/r2", map[string]interface{}{"status": "pending", "reportedUser": "alice"})

	res, err := newModeration(st).Moderate(context.Background(), models.ModerateRequest{
		Action:        "ignore",
		ReportedNames: []string{"alice"},
	})
	require.NoError(t, err)
	require.Equal(t, 2, res.UpdatedReports)
}

func TestModerateByNameFindsSubcollectionReports(t *testing.T) {
	st := store.NewMemStore()
	st.Put("moderationQueues/q1/reports/r1", map[string]interface{}{
		"status":       "pending",
		"reportedUser": "@alice",
	})

	res, err := newModeration(st).Moderate(context.Background(), models.ModerateRequest{
		Action:        "ignore",
		ReportedNames: []string{"alice"},
	})
	require.NoError(t, err)
	require.Equal(t, 1, res.UpdatedReports)

	report, err := st.Get(context.Background(), "moderationQueues/q1/reports/r1")
	require.NoError(t, err)
	require.Equal(t, "Ignored", store.Str(report.Data, "status"))
}

func TestModerateTerminalGuardIgnoresStatusCase(t *testing.T) {
	st := store.NewMemStore()
	st.Put("reports/r1", map[string]interface{}{"status": "banned", "reportedUserId": "u1"})

	res, err := newModeration(st).Moderate(context.Background(), models.ModerateRequest{
		Action:  "warn",
		Reports: []models.ModerateReport{{DocPath: "reports/r1"}},
	})
	require.NoError(t, err)
	require.Equal(t, 0, res.UpdatedReports)

	report, _ := st.Get(context.Background(), "reports/r1")
	require.Equal(t, "banned", store.Str(report.Data, "status"))
}

func TestModerateRejectsUnknownAction(t *testing.T) {
	_, err := newModeration(store.NewMemStore()).Moderate(context.Background(), models.ModerateRequest{
		Action:   "obliterate",
		UserUIDs: []string{"u1"},
	})
	require.ErrorIs(t, err, ErrUnknownAction)
}

func TestModerateRejectsEmptyRequest(t *testing.T) {
	_, err := newModeration(store.NewMemStore()).Moderate(context.Background(), models.ModerateRequest{
		Action: "warn",
	})
	require.ErrorIs(t, err, ErrNoTargets)
}
