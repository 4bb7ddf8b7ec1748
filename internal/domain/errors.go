package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMaxRetriesExceeded is returned when a rate-limited Graph API call
	// still fails after exhausting the retry budget.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")

	// ErrCampaignNotFound is returned when the top-level campaign fetch fails.
	ErrCampaignNotFound = errors.New("campaign not found")

	// ErrNoPromotablePage is returned when no destination page id could be
	// resolved for creative creation.
	ErrNoPromotablePage = errors.New("no promotable page available in destination account")

	// ErrTemplateNotFound is returned by the template store.
	ErrTemplateNotFound = errors.New("template not found")
)

// Graph API error codes that indicate throttling. These are retried with
// backoff; everything else propagates immediately.
var rateLimitCodes = map[int]bool{
	4:     true, // application request limit
	17:    true, // user request limit
	32:    true, // page request limit
	613:   true, // custom rate limit
	80000: true, // ads insights throttle
	80004: true, // ads management throttle
}

const authErrorCode = 190 // invalid or expired access token

// RemoteError is an error payload returned by the advertising platform.
type RemoteError struct {
	Code       int    `json:"code"`
	Subcode    int    `json:"error_subcode,omitempty"`
	Type       string `json:"type,omitempty"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("graph api error %d (%s): %s", e.Code, e.Type, e.Message)
}

// IsRateLimit reports whether the error is a transient throttling response.
func (e *RemoteError) IsRateLimit() bool {
	return rateLimitCodes[e.Code]
}

// IsAuth reports whether the error means the access token was rejected.
func (e *RemoteError) IsAuth() bool {
	return e.Code == authErrorCode
}

// IsRateLimited reports whether err wraps a throttling RemoteError.
func IsRateLimited(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.IsRateLimit()
}

// IsAuthError reports whether err wraps a rejected-token RemoteError.
func IsAuthError(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.IsAuth()
}
