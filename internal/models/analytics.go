package models

// SeriesPoint is one x/y pair of a chart series.
type SeriesPoint struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

type SeriesResponse struct {
	Points []SeriesPoint `json:"points"`
}

type StatDelta struct {
	Amount    float64 `json:"amount"`
	ChangePct float64 `json:"changePct"`
}

type CountDelta struct {
	Count     int64   `json:"count"`
	ChangePct float64 `json:"changePct"`
}

type RetentionStat struct {
	Rate      int     `json:"rate"`
	ChangePct float64 `json:"changePct"`
}

// StatsResponse is the dashboard's headline metric cards.
type StatsResponse struct {
	TodaysRevenue       StatDelta     `json:"todaysRevenue"`
	MonthlyRevenue      StatDelta     `json:"monthlyRevenue"`
	ActiveSubscriptions CountDelta    `json:"activeSubscriptions"`
	RetentionRate       RetentionStat `json:"retentionRate"`
}

// RegionData is one entry of the top-regions widget.
type RegionData struct {
	Type  string `json:"type"`
	Code  string `json:"code"`
	Count int    `json:"count"`
	Color string `json:"color"`
}

// HeatmapCell is one (weekday, hour) bucket of the engagement heatmap.
type HeatmapCell struct {
	Day   string `json:"day"`
	Hour  string `json:"hour"`
	Count int    `json:"count"`
}

// DateReportRow is a row of the date-analytics report list.
type DateReportRow struct {
	ID              string `json:"id"`
	ReporterUID     string `json:"reporterUid,omitempty"`
	ReportedUserUID string `json:"reportedUserUid,omitempty"`
	ReportBy        string `json:"reportBy"`
	ReportedUser    string `json:"reportedUser"`
	Reason          string `json:"reason"`
	CreatedAtMs     int64  `json:"createdAtMs"`
	Status          string `json:"status,omitempty"`
}

// OngoingDate is an accepted match request, treated as a date in progress.
type OngoingDate struct {
	ID         string `json:"id"`
	FromUserID string `json:"fromUserId,omitempty"`
	ToUserID   string `json:"toUserId,omitempty"`
	AcceptedAt int64  `json:"acceptedAtMs,omitempty"`
	CreatedAt  int64  `json:"createdAtMs,omitempty"`
}
