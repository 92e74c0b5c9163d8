package models

// ReportRow is one row of the trust & safety table.
type ReportRow struct {
	ID              string `json:"id"`
	TableID         string `json:"userId"` // RPT-XXXX shown as Report ID
	ReportedUser    string `json:"reportedUser"`
	ReportedUserUID string `json:"reportedUserUid,omitempty"`
	DocPath         string `json:"docPath,omitempty"`
	Reason          string `json:"reason"`
	ReportCount     int    `json:"reportCount"`
	Status          string `json:"status"`
}

// ReportCategory is one slice of the reasons donut chart.
type ReportCategory struct {
	Name       string  `json:"name"`
	Value      int     `json:"value"`
	Percentage float64 `json:"percentage"`
	Color      string  `json:"color"`
}

type StatusCard struct {
	TotalReports int              `json:"totalReports"`
	Resolved     int              `json:"resolved"`
	Pending      int              `json:"pending"`
	Categories   []ReportCategory `json:"categories"`
}

// ReportsSummary feeds the trust & safety page: table rows plus totals.
// Ignored reports are excluded from the table but counted in the totals.
type ReportsSummary struct {
	Ok         bool        `json:"ok"`
	Reports    []ReportRow `json:"reports"`
	StatusCard StatusCard  `json:"statusCard"`
}
