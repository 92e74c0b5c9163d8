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

// AnalyticsService computes the dashboard's revenue, engagement and region
// widgets from raw collections. Transactions store created_at, amounts may be
// numbers or strings and status may be missing, so every reader is tolerant.
type AnalyticsService struct {
	store store.Store
	log   *zap.SugaredLogger
}

func NewAnalyticsService(st store.Store, log *zap.SugaredLogger) *AnalyticsService {
	return &AnalyticsService{store: st, log: log}
}

type transaction struct {
	amount float64
	when   time.Time
}

// fetchTransactions reads completed transactions since a cutoff. Ranged
// queries are tried with ISO strings first and time values second; when both
// fail the full collection is scanned and filtered in memory.
func (s *AnalyticsService) fetchTransactions(ctx context.Context, since time.Time) []transaction {
	queries := []store.Query{
		{
			Collection: "transactions",
			Filters:    []store.Filter{{Field: "created_at", Op: ">=", Value: since.UTC().Format(time.RFC3339)}},
		},
		{
			Collection: "transactions",
			Filters:    []store.Filter{{Field: "created_at", Op: ">=", Value: since}},
		},
		{Collection: "transactions"},
	}
	for i, q := range queries {
		docs, err := s.store.Run(ctx, q)
		if err != nil {
			s.log.Debugw("transactions query failed", "step", i, "err", err)
			continue
		}
		var out []transaction
		for _, d := range docs {
			tx, ok := transactionFrom(d.Data)
			if ok && !tx.when.Before(since) {
				out = append(out, tx)
			}
		}
		if len(out) > 0 || i == len(queries)-1 {
			return out
		}
	}
	return nil
}

func transactionFrom(data map[string]interface{}) (transaction, bool) {
	status := strings.ToLower(store.Str(data, "status"))
	if status != "" && status != "completed" {
		return transaction{}, false
	}
	when, ok := store.TimeAt(data, "created_at", "createdAt")
	if !ok {
		return transaction{}, false
	}
	amount, _ := store.Num(data, "amount", "price", "total")
	return transaction{amount: amount, when: when}, true
}

// Stats builds the four headline cards.
func (s *AnalyticsService) Stats(ctx context.Context) *models.StatsResponse {
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	prevMonthStart := monthStart.AddDate(0, -1, 0)

	txs := s.fetchTransactions(ctx, prevMonthStart)

	dayStart := now.Truncate(24 * time.Hour)
	prevDayStart := dayStart.Add(-24 * time.Hour)

	var today, yesterday, month, prevMonth float64
	for _, tx := range txs {
		switch {
		case !tx.when.Before(dayStart):
			today += tx.amount
		case !tx.when.Before(prevDayStart):
			yesterday += tx.amount
		}
		if !tx.when.Before(monthStart) {
			month += tx.amount
		} else if !tx.when.Before(prevMonthStart) {
			prevMonth += tx.amount
		}
	}

	resp := &models.StatsResponse{
		TodaysRevenue:  models.StatDelta{Amount: today, ChangePct: changePct(today, yesterday)},
		MonthlyRevenue: models.StatDelta{Amount: month, ChangePct: changePct(month, prevMonth)},
	}

	subs, err := s.store.Count(ctx, "transactions")
	if err != nil {
		s.log.Debugw("count aggregate failed, scanning", "err", err)
		docs, scanErr := s.store.Run(ctx, store.Query{Collection: "transactions"})
		if scanErr == nil {
			subs = int64(len(docs))
		}
	}
	resp.ActiveSubscriptions = models.CountDelta{Count: subs}

	resp.RetentionRate = s.retention(ctx, now)
	return resp
}

// retention compares unique message senders today against yesterday.
func (s *AnalyticsService) retention(ctx context.Context, now time.Time) models.RetentionStat {
	dayStart := now.Truncate(24 * time.Hour)
	docs, err := s.store.Run(ctx, store.Query{Collection: "messages", Group: true, Limit: 2000})
	if err != nil {
		s.log.Debugw("retention messages fetch failed", "err", err)
		return models.RetentionStat{}
	}
	todaySenders := make(map[string]bool)
	yesterdaySenders := make(map[string]bool)
	for _, d := range docs {
		m := messageFromDoc(d, "")
		if m.Sender == "" {
			continue
		}
		switch {
		case !m.CreatedAt.Before(dayStart):
			todaySenders[m.Sender] = true
		case !m.CreatedAt.Before(dayStart.Add(-24 * time.Hour)):
			yesterdaySenders[m.Sender] = true
		}
	}
	if len(yesterdaySenders) == 0 {
		return models.RetentionStat{}
	}
	retained := 0
	for uid := range todaySenders {
		if yesterdaySenders[uid] {
			retained++
		}
	}
	rate := retained * 100 / len(yesterdaySenders)
	return models.RetentionStat{
		Rate:      rate,
		ChangePct: changePct(float64(len(todaySenders)), float64(len(yesterdaySenders))),
	}
}

// RevenueSeries buckets completed transactions over the requested period.
// 30/90 day periods emit daily points; 6/12 months emit monthly points.
// Every bucket in the window is present even when empty.
func (s *AnalyticsService) RevenueSeries(ctx context.Context, period string) *models.SeriesResponse {
	now := time.Now()
	var since time.Time
	monthly := false
	switch period {
	case "90days":
		since = now.AddDate(0, 0, -90)
	case "6months":
		since = now.AddDate(0, -6, 0)
		monthly = true
	case "12months":
		since = now.AddDate(0, -12, 0)
		monthly = true
	default: // 30days
		since = now.AddDate(0, 0, -30)
	}

	txs := s.fetchTransactions(ctx, since)

	resp := &models.SeriesResponse{Points: []models.SeriesPoint{}}
	if monthly {
		sums := make(map[string]float64)
		for _, tx := range txs {
			sums[tx.when.Format("2006-01")] += tx.amount
		}
		for cur := time.Date(since.Year(), since.Month(), 1, 0, 0, 0, 0, now.Location()); !cur.After(now); cur = cur.AddDate(0, 1, 0) {
			key := cur.Format("2006-01")
			resp.Points = append(resp.Points, models.SeriesPoint{
				Name:  cur.Format("Jan 2006"),
				Value: sums[key],
			})
		}
		return resp
	}

	sums := make(map[string]float64)
	for _, tx := range txs {
		sums[tx.when.Format("2006-01-02")] += tx.amount
	}
	for cur := since.Truncate(24 * time.Hour); !cur.After(now); cur = cur.Add(24 * time.Hour) {
		key := cur.Format("2006-01-02")
		resp.Points = append(resp.Points, models.SeriesPoint{
			Name:  cur.Format("Jan 2"),
			Value: sums[key],
		})
	}
	return resp
}

// WeeklyRevenueSeries groups the last 12 ISO weeks of revenue.
func (s *AnalyticsService) WeeklyRevenueSeries(ctx context.Context) *models.SeriesResponse {
	now := time.Now()
	since := now.AddDate(0, 0, -12*7)
	txs := s.fetchTransactions(ctx, since)

	sums := make(map[string]float64)
	for _, tx := range txs {
		y, w := tx.when.ISOWeek()
		sums[fmt.Sprintf("%04d-W%02d", y, w)] += tx.amount
	}
	resp := &models.SeriesResponse{Points: []models.SeriesPoint{}}
	for cur := since; !cur.After(now); cur = cur.AddDate(0, 0, 7) {
		y, w := cur.ISOWeek()
		key := fmt.Sprintf("%04d-W%02d", y, w)
		resp.Points = append(resp.Points, models.SeriesPoint{Name: key, Value: sums[key]})
	}
	return resp
}

// SubscriptionsSeries counts monthly transactions over the last 6 months.
func (s *AnalyticsService) SubscriptionsSeries(ctx context.Context) *models.SeriesResponse {
	now := time.Now()
	since := now.AddDate(0, -6, 0)
	txs := s.fetchTransactions(ctx, since)

	counts := make(map[string]float64)
	for _, tx := range txs {
		counts[tx.when.Format("2006-01")]++
	}
	resp := &models.SeriesResponse{Points: []models.SeriesPoint{}}
	for cur := time.Date(since.Year(), since.Month(), 1, 0, 0, 0, 0, now.Location()); !cur.After(now); cur = cur.AddDate(0, 1, 0) {
		key := cur.Format("2006-01")
		resp.Points = append(resp.Points, models.SeriesPoint{
			Name:  cur.Format("Jan 2006"),
			Value: counts[key],
		})
	}
	return resp
}

var regionPalette = []string{"#6366f1", "#8b5cf6", "#ec4899", "#f59e0b", "#10b981", "#06b6d4"}

// RegionInsights geolocates users to coarse countries and returns counts
// descending.
func (s *AnalyticsService) RegionInsights(ctx context.Context, limit int) []models.RegionData {
	if limit <= 0 {
		limit = 6
	}
	docs, err := s.store.Run(ctx, store.Query{Collection: "users", Limit: 2000})
	if err != nil {
		s.log.Debugw("region users fetch failed", "err", err)
		return []models.RegionData{}
	}
	counts := make(map[string]int)
	names := make(map[string]string)
	for _, d := range docs {
		lat, lng, ok := coordsFrom(d.Data)
		if !ok {
			continue
		}
		code, name, ok := guessCountry(lat, lng)
		if !ok {
			continue
		}
		counts[code]++
		names[code] = name
	}
	codes := make([]string, 0, len(counts))
	for c := range counts {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool {
		if counts[codes[i]] != counts[codes[j]] {
			return counts[codes[i]] > counts[codes[j]]
		}
		return codes[i] < codes[j]
	})
	if len(codes) > limit {
		codes = codes[:limit]
	}
	out := make([]models.RegionData, 0, len(codes))
	for i, c := range codes {
		out = append(out, models.RegionData{
			Type:  names[c],
			Code:  c,
			Count: counts[c],
			Color: regionPalette[i%len(regionPalette)],
		})
	}
	return out
}

var weekdayLabels = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// EngagementHeatmap buckets recent messages by weekday and hour.
func (s *AnalyticsService) EngagementHeatmap(ctx context.Context, days int) []models.HeatmapCell {
	if days <= 0 || days > 14 {
		days = 14
	}
	since := time.Now().AddDate(0, 0, -days)
	docs, err := s.store.Run(ctx, store.Query{Collection: "messages", Group: true, Limit: 5000})
	if err != nil {
		s.log.Debugw("heatmap messages fetch failed", "err", err)
		return []models.HeatmapCell{}
	}
	counts := make(map[[2]int]int)
	for _, d := range docs {
		m := messageFromDoc(d, "")
		if m.CreatedAt.Before(since) {
			continue
		}
		counts[[2]int{int(m.CreatedAt.Weekday()), m.CreatedAt.Hour()}]++
	}
	cells := make([]models.HeatmapCell, 0, 7*24)
	for day := 0; day < 7; day++ {
		for hour := 0; hour < 24; hour++ {
			cells = append(cells, models.HeatmapCell{
				Day:   weekdayLabels[day],
				Hour:  fmt.Sprintf("%02d:00", hour),
				Count: counts[[2]int{day, hour}],
			})
		}
	}
	return cells
}

// DateReports lists recent report rows for the date-analytics page.
func (s *AnalyticsService) DateReports(ctx context.Context, limit int) []models.DateReportRow {
	if limit <= 0 {
		limit = 50
	}
	docs, err := s.store.Run(ctx, store.Query{
		Collection: "reports",
		OrderBy:    "createdAt",
		Desc:       true,
		Limit:      limit,
	})
	if err != nil || len(docs) == 0 {
		docs, err = s.store.Run(ctx, store.Query{Collection: "reports", Limit: limit})
		if err != nil {
			s.log.Debugw("date reports fetch failed", "err", err)
			return []models.DateReportRow{}
		}
	}
	out := make([]models.DateReportRow, 0, len(docs))
	for _, d := range docs {
		row := models.DateReportRow{
			ID:              d.ID,
			ReporterUID:     store.Str(d.Data, "reporterId", "reportedBy"),
			ReportedUserUID: store.Str(d.Data, "reportedUserId", "reportedUser"),
			ReportBy:        store.Str(d.Data, "reporterName", "reportBy"),
			ReportedUser:    store.Str(d.Data, "reportedUserName", "reportedUser"),
			Reason:          formatReasonLabel(store.Str(d.Data, "reason")),
			Status:          store.Str(d.Data, "status"),
		}
		if t, ok := store.TimeAt(d.Data, "createdAt", "created_at", "timestamp"); ok {
			row.CreatedAtMs = t.UnixMilli()
		}
		out = append(out, row)
	}
	return out
}

// OngoingDates returns accepted match requests, collection-group fallback
// included.
func (s *AnalyticsService) OngoingDates(ctx context.Context, limit int) []models.OngoingDate {
	if limit <= 0 {
		limit = 100
	}
	q := store.Query{
		Collection: "matchRequests",
		Filters:    []store.Filter{{Field: "status", Op: "==", Value: "accepted"}},
		Limit:      limit,
	}
	docs, err := s.store.Run(ctx, q)
	if err != nil || len(docs) == 0 {
		q.Group = true
		docs, err = s.store.Run(ctx, q)
		if err != nil {
			s.log.Debugw("ongoing dates fetch failed", "err", err)
			return []models.OngoingDate{}
		}
	}
	out := make([]models.OngoingDate, 0, len(docs))
	for _, d := range docs {
		date := models.OngoingDate{
			ID:         d.ID,
			FromUserID: store.Str(d.Data, "fromUserId", "senderId", "from"),
			ToUserID:   store.Str(d.Data, "toUserId", "receiverId", "to"),
		}
		if t, ok := store.TimeAt(d.Data, "acceptedAt"); ok {
			date.AcceptedAt = t.UnixMilli()
		}
		if t, ok := store.TimeAt(d.Data, "createdAt", "created_at"); ok {
			date.CreatedAt = t.UnixMilli()
		}
		out = append(out, date)
	}
	return out
}

func changePct(cur, prev float64) float64 {
	if prev == 0 {
		if cur == 0 {
			return 0
		}
		return 100
	}
	return roundTenth((cur - prev) / prev * 100)
}
