package models

// GenerateProfilesRequest creates a batch of synthetic profiles. Field aliases
// mirror what the dashboard form has sent over time.
type GenerateProfilesRequest struct {
	Name             string      `json:"name"`
	NumberOfProfiles int         `json:"numberOfProfiles"`
	Count            int         `json:"count"` // legacy alias for numberOfProfiles
	Gender           string      `json:"gender"`
	ProfileQuality   string      `json:"profileQuality"`
	AgeMin           *int        `json:"ageMin"`
	AgeMax           *int        `json:"ageMax"`
	AgeRange         string      `json:"ageRange"` // "18-25"
	Interests        interface{} `json:"interests"`
	ContentSource    string      `json:"contentSource"`
	ContentFileURL   string      `json:"contentFileUrl"`
	Country          string      `json:"country"`
	City             string      `json:"city"`
	MessagesPerDay   *int        `json:"messagesPerDay"`
	LikesPerDay      *int        `json:"likesPerDay"`
	MatchesPerWeek   *int        `json:"matchesPerWeek"`
	MatchPreference  string      `json:"matchPreference"`
	ExpireAfter      *int        `json:"expireAfter"`
	AutoRegenerate   *bool       `json:"autoRegenerate"`
}

// UpdateProfileRequest patches a single profile; nil fields are untouched.
type UpdateProfileRequest struct {
	Name            string      `json:"name"`
	Gender          string      `json:"gender"`
	Interests       interface{} `json:"interests"`
	ProfileQuality  string      `json:"profileQuality"`
	AgeMin          *int        `json:"ageMin"`
	AgeMax          *int        `json:"ageMax"`
	Country         string      `json:"country"`
	City            string      `json:"city"`
	ContentSource   string      `json:"contentSource"`
	ContentFileURL  string      `json:"contentFileUrl"`
	MessagesPerDay  *int        `json:"messagesPerDay"`
	LikesPerDay     *int        `json:"likesPerDay"`
	MatchesPerWeek  *int        `json:"matchesPerWeek"`
	MatchPreference string      `json:"matchPreference"`
	ExpireAfter     *int        `json:"expireAfter"`
	AutoRegenerate  *bool       `json:"autoRegenerate"`
	Status          string      `json:"status"`
}

type GenerateProfilesResponse struct {
	Ok           bool     `json:"ok"`
	CreatedCount int      `json:"createdCount"`
	IDs          []string `json:"ids"`
}

type SweepResponse struct {
	Ok          bool `json:"ok"`
	Updated     int  `json:"updated,omitempty"`
	Deleted     int  `json:"deleted,omitempty"`
	Regenerated int  `json:"regenerated,omitempty"`
}
