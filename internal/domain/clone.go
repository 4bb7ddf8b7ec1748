package domain

import "time"

type CloneStatus string

const (
	CloneSuccess CloneStatus = "success"
	CloneFailed  CloneStatus = "failed"
)

// AccountConfig carries the destination-account-scoped values the recreation
// pipeline needs. Page and pixel ids are never reusable across accounts, so
// each destination supplies its own.
type AccountConfig struct {
	PageID  string `json:"page_id,omitempty"`
	PixelID string `json:"pixel_id,omitempty"`
}

// CloneTarget is one destination account in a batch clone.
type CloneTarget struct {
	AccountID string        `json:"account_id"`
	Config    AccountConfig `json:"config"`
}

// StepFailure records one non-fatal failure inside the recreation pipeline
// (an ad set, creative or ad that could not be created).
type StepFailure struct {
	Stage      string `json:"stage"`
	ObjectName string `json:"object_name"`
	Reason     string `json:"reason"`
}

// CloneResult is the per-destination-account outcome of one orchestration
// run. Never mutated after creation.
type CloneResult struct {
	DestinationAccountID string        `json:"destination_account_id"`
	Status               CloneStatus   `json:"status"`
	Strategy             string        `json:"strategy,omitempty"`
	NewCampaignID        string        `json:"new_campaign_id,omitempty"`
	Error                string        `json:"error,omitempty"`
	Failures             []StepFailure `json:"failures,omitempty"`
}

// SavedTemplate is an account-agnostic campaign template held in the
// template store, produced by sanitizing a live snapshot or a tabular import.
type SavedTemplate struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Campaign  CampaignSnapshot `json:"campaign"`
	CreatedAt time.Time        `json:"created_at"`
}
