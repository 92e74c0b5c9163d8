package models

import (
	"fmt"
	"strings"
)

// Action is a moderation action applied to users and their reports. The
// user's moderation state is derived from the last action applied plus the
// time-bound suspension window.
type Action string

const (
	ActionWarn    Action = "warn"
	ActionBan     Action = "ban"
	ActionSuspend Action = "suspend"
	ActionIgnore  Action = "ignore"
)

// ParseAction validates an action string from a request body.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionWarn, ActionBan, ActionSuspend, ActionIgnore:
		return Action(s), nil
	}
	return "", fmt.Errorf("invalid action %q", s)
}

// Status is the report status written for this action, used by the
// dashboard's table filters.
func (a Action) Status() string {
	switch a {
	case ActionWarn:
		return "Warned"
	case ActionBan:
		return "Banned"
	case ActionSuspend:
		return "Suspended"
	case ActionIgnore:
		return "Ignored"
	}
	return ""
}

// IsTerminalStatus reports whether a report status must not be overwritten by
// a later action. Status casing varies across writers, so the match is
// case-insensitive. "Warned" is deliberately absent: a warn can be superseded
// by a later ignore.
func IsTerminalStatus(status string) bool {
	switch strings.ToLower(status) {
	case "banned", "suspended", "ignored":
		return true
	}
	return false
}

// ModerateRequest targets reports by document path, reported-user uid, or
// reported-name string (matched with and without a leading '@').
type ModerateRequest struct {
	Action        string             `json:"action"`
	Reports       []ModerateReport   `json:"reports,omitempty"`
	UserUIDs      []string           `json:"userUids,omitempty"`
	ReportedNames []string           `json:"reportedNames,omitempty"`
	Reason        string             `json:"reason,omitempty"`
	DurationDays  int                `json:"durationDays,omitempty"`
}

type ModerateReport struct {
	ID      string `json:"id,omitempty"`
	DocPath string `json:"docPath,omitempty"`
}

type ModerateResult struct {
	Ok             bool   `json:"ok"`
	UpdatedReports int    `json:"updatedReports"`
	AffectedUsers  int    `json:"affectedUsers"`
	Status         string `json:"status"`
}

type AutoFlagRequest struct {
	Enabled   bool `json:"enabled"`
	Threshold int  `json:"threshold,omitempty"`
}

type AutoFlagResult struct {
	Ok              bool     `json:"ok"`
	Enabled         bool     `json:"enabled"`
	Threshold       int      `json:"threshold"`
	UpdatedReports  int      `json:"updatedReports"`
	FlaggedUsers    int      `json:"flaggedUsers"`
	UpdatedDocPaths []string `json:"updatedDocPaths"`
}
