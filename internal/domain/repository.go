package domain

import (
	"context"
	"net/url"
)

// GraphAPI is the interface for calls against the advertising platform.
// Implementations own retry, backoff and rate limiting; callers see either a
// decoded result or a final error.
type GraphAPI interface {
	// Get performs a field-projected read of an object or edge and decodes
	// the JSON response into out.
	Get(ctx context.Context, path string, params url.Values, out any) error

	// Create performs a form-encoded create call and returns the id of the
	// created object. Implementations must force a paused delivery state on
	// every created object.
	Create(ctx context.Context, path string, form url.Values) (string, error)
}

// TemplateStore holds sanitized campaign templates.
type TemplateStore interface {
	Save(ctx context.Context, tpl SavedTemplate) error
	Get(ctx context.Context, id string) (SavedTemplate, error)
	List(ctx context.Context) ([]SavedTemplate, error)
}

// CloneStrategy is one way of replicating a campaign into a destination
// account. Strategies are tried in order until one returns a campaign id.
type CloneStrategy interface {
	Name() string
	Attempt(ctx context.Context, sourceCampaignID, accountID string, cfg AccountConfig) (string, []StepFailure, error)
}
