package domain

import "encoding/json"

// Campaign delivery statuses as the platform expects them.
const (
	StatusPaused = "PAUSED"
	StatusActive = "ACTIVE"
)

// CampaignSnapshot is a point-in-time capture of a campaign and its full
// subtree. Owned by a single replication run, never persisted as-is.
type CampaignSnapshot struct {
	ID                  string          `json:"id,omitempty"`
	Name                string          `json:"name"`
	Objective           string          `json:"objective,omitempty"`
	Status              string          `json:"status,omitempty"`
	DailyBudget         string          `json:"daily_budget,omitempty"`
	LifetimeBudget      string          `json:"lifetime_budget,omitempty"`
	SpecialAdCategories []string        `json:"special_ad_categories,omitempty"`
	BidStrategy         string          `json:"bid_strategy,omitempty"`
	AdSets              []AdSetSnapshot `json:"adsets,omitempty"`
}

// AdSetSnapshot captures one ad set. Targeting is platform-owned and opaque:
// it is carried as raw JSON and must never be partially interpreted.
type AdSetSnapshot struct {
	ID               string          `json:"id,omitempty"`
	Name             string          `json:"name"`
	Targeting        json.RawMessage `json:"targeting,omitempty"`
	DailyBudget      string          `json:"daily_budget,omitempty"`
	LifetimeBudget   string          `json:"lifetime_budget,omitempty"`
	BillingEvent     string          `json:"billing_event,omitempty"`
	OptimizationGoal string          `json:"optimization_goal,omitempty"`
	BidAmount        string          `json:"bid_amount,omitempty"`
	BidStrategy      string          `json:"bid_strategy,omitempty"`
	StartTime        string          `json:"start_time,omitempty"`
	EndTime          string          `json:"end_time,omitempty"`
	PixelID          string          `json:"pixel_id,omitempty"`
	Ads              []AdSnapshot    `json:"ads,omitempty"`
}

// AdSnapshot captures one ad and its creative spec.
type AdSnapshot struct {
	ID       string           `json:"id,omitempty"`
	Name     string           `json:"name"`
	Status   string           `json:"status,omitempty"`
	AdSetID  string           `json:"adset_id,omitempty"`
	Creative CreativeSnapshot `json:"creative"`
}

// CreativeSnapshot captures the rendered content of an ad.
type CreativeSnapshot struct {
	ID               string   `json:"id,omitempty"`
	Name             string   `json:"name,omitempty"`
	PageID           string   `json:"page_id,omitempty"`
	ApplicationID    string   `json:"application_id,omitempty"`
	InstagramActorID string   `json:"instagram_actor_id,omitempty"`
	ProductSetID     string   `json:"product_set_id,omitempty"`
	LinkData         LinkData `json:"link_data"`
}

// LinkData is the text/link/media portion of a creative.
type LinkData struct {
	Title        string          `json:"title,omitempty"`
	Message      string          `json:"message,omitempty"`
	Link         string          `json:"link,omitempty"`
	Description  string          `json:"description,omitempty"`
	ImageHash    string          `json:"image_hash,omitempty"`
	VideoID      string          `json:"video_id,omitempty"`
	LeadFormID   string          `json:"lead_form_id,omitempty"`
	CallToAction json.RawMessage `json:"call_to_action,omitempty"`
}
