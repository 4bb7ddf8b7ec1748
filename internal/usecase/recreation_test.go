package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"testing"

	"github.com/JosineyAlves/adcloner-sub000/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func templateWithAdSets(names ...string) domain.CampaignSnapshot {
	tpl := domain.CampaignSnapshot{
		Name:      "Spring Sale",
		Objective: "OUTCOME_TRAFFIC",
	}
	for _, name := range names {
		tpl.AdSets = append(tpl.AdSets, domain.AdSetSnapshot{
			Name:        name,
			DailyBudget: "5000",
			Targeting:   json.RawMessage(`{"geo_locations":{"countries":["US"]}}`),
		})
	}
	return tpl
}

func TestRecreatePartialFailureContainment(t *testing.T) {
	// Ad set #2 is rejected; #1 and #3 must still be attempted.
	seq := 0
	api := &fakeGraphAPI{
		createFn: func(path string, form url.Values) (string, error) {
			if path == "act_9/adsets" && form.Get("name") == "set-2" {
				return "", &domain.RemoteError{Code: 100, Message: "invalid targeting"}
			}
			seq++
			return fmt.Sprintf("new_%d", seq), nil
		},
	}

	pipeline := NewRecreationPipeline(api, testLogger, testMetrics)
	outcome, err := pipeline.Recreate(context.Background(), templateWithAdSets("set-1", "set-2", "set-3"), "9", domain.AccountConfig{})
	require.NoError(t, err)

	assert.NotEmpty(t, outcome.CampaignID)
	require.Len(t, outcome.Failures, 1)
	assert.Equal(t, "adset", outcome.Failures[0].Stage)
	assert.Equal(t, "set-2", outcome.Failures[0].ObjectName)

	// Campaign plus all three ad set attempts, rejected one included.
	assert.Equal(t, []string{
		"act_9/campaigns",
		"act_9/adsets",
		"act_9/adsets",
		"act_9/adsets",
	}, api.createdPaths())
}

func TestRecreateCampaignFailureIsFatal(t *testing.T) {
	api := &fakeGraphAPI{
		createFn: func(path string, _ url.Values) (string, error) {
			return "", &domain.RemoteError{Code: 100, Message: "invalid objective"}
		},
	}

	pipeline := NewRecreationPipeline(api, testLogger, testMetrics)
	_, err := pipeline.Recreate(context.Background(), templateWithAdSets("set-1"), "9", domain.AccountConfig{})
	require.Error(t, err)

	// Nothing after the campaign step was attempted.
	assert.Equal(t, []string{"act_9/campaigns"}, api.createdPaths())
}

func TestRecreateBindsChildrenToNewParents(t *testing.T) {
	tpl := templateWithAdSets("set-1")
	tpl.AdSets[0].Ads = []domain.AdSnapshot{{
		Name: "ad-1",
		Creative: domain.CreativeSnapshot{
			LinkData: domain.LinkData{Message: "Hello", Link: "https://x.com"},
		},
	}}

	ids := map[string]string{
		"act_9/campaigns":   "new_cmp",
		"act_9/adsets":      "new_as",
		"act_9/adcreatives": "new_cr",
		"act_9/ads":         "new_ad",
	}
	api := &fakeGraphAPI{
		getFn: func(path string, _ url.Values, out any) error {
			assert.Equal(t, "act_9/promote_pages", path)
			return respond(out, map[string]any{"data": []map[string]any{{"id": "page_77", "name": "Shop"}}})
		},
		createFn: func(path string, _ url.Values) (string, error) {
			return ids[path], nil
		},
	}

	pipeline := NewRecreationPipeline(api, testLogger, testMetrics)
	outcome, err := pipeline.Recreate(context.Background(), tpl, "9", domain.AccountConfig{})
	require.NoError(t, err)
	require.Empty(t, outcome.Failures)
	assert.Equal(t, "new_cmp", outcome.CampaignID)

	byPath := map[string]url.Values{}
	for _, call := range api.creates {
		byPath[call.Path] = call.Form
	}

	assert.Equal(t, "new_cmp", byPath["act_9/adsets"].Get("campaign_id"))
	assert.Equal(t, "new_as", byPath["act_9/ads"].Get("adset_id"))
	assert.JSONEq(t, `{"creative_id":"new_cr"}`, byPath["act_9/ads"].Get("creative"))

	// The creative carries the destination page, not a source page.
	var spec map[string]any
	require.NoError(t, json.Unmarshal([]byte(byPath["act_9/adcreatives"].Get("object_story_spec")), &spec))
	assert.Equal(t, "page_77", spec["page_id"])
}

func TestRecreateAdFallsBackToFirstCreatedAdSet(t *testing.T) {
	tpl := templateWithAdSets("set-1", "set-2")
	tpl.AdSets[1].Ads = []domain.AdSnapshot{{
		Name:     "orphaned",
		Creative: domain.CreativeSnapshot{LinkData: domain.LinkData{Message: "Hello"}},
	}}

	seq := 0
	api := &fakeGraphAPI{
		getFn: func(_ string, _ url.Values, out any) error {
			return respond(out, map[string]any{"data": []map[string]any{{"id": "page_77"}}})
		},
		createFn: func(path string, form url.Values) (string, error) {
			if path == "act_9/adsets" && form.Get("name") == "set-2" {
				return "", &domain.RemoteError{Code: 100, Message: "rejected"}
			}
			seq++
			return fmt.Sprintf("new_%d", seq), nil
		},
	}

	pipeline := NewRecreationPipeline(api, testLogger, testMetrics)
	outcome, err := pipeline.Recreate(context.Background(), tpl, "9", domain.AccountConfig{})
	require.NoError(t, err)

	var adForm url.Values
	var firstAdSetID string
	for _, call := range api.creates {
		if call.Path == "act_9/ads" {
			adForm = call.Form
		}
	}
	// First created ad set id is the second create call's result (new_2).
	firstAdSetID = "new_2"

	require.NotNil(t, adForm, "the orphaned ad must still be created")
	assert.Equal(t, firstAdSetID, adForm.Get("adset_id"))
	// The failed ad set is reported.
	require.Len(t, outcome.Failures, 1)
	assert.Equal(t, "adset", outcome.Failures[0].Stage)
}

func TestRecreateUsesConfiguredPage(t *testing.T) {
	tpl := templateWithAdSets("set-1")
	tpl.AdSets[0].Ads = []domain.AdSnapshot{{
		Name:     "ad-1",
		Creative: domain.CreativeSnapshot{LinkData: domain.LinkData{Message: "Hello"}},
	}}

	api := &fakeGraphAPI{
		getFn: func(path string, _ url.Values, _ any) error {
			t.Fatalf("no page lookup expected, got %s", path)
			return nil
		},
	}

	pipeline := NewRecreationPipeline(api, testLogger, testMetrics)
	_, err := pipeline.Recreate(context.Background(), tpl, "act_9", domain.AccountConfig{PageID: "page_override"})
	require.NoError(t, err)

	for _, call := range api.creates {
		if call.Path == "act_9/adcreatives" {
			assert.Contains(t, call.Form.Get("object_story_spec"), "page_override")
			return
		}
	}
	t.Fatal("creative was never created")
}

func TestRecreateNoPromotablePageIsNonFatal(t *testing.T) {
	tpl := templateWithAdSets("set-1")
	tpl.AdSets[0].Ads = []domain.AdSnapshot{{
		Name:     "ad-1",
		Creative: domain.CreativeSnapshot{LinkData: domain.LinkData{Message: "Hello"}},
	}}

	api := &fakeGraphAPI{
		getFn: func(_ string, _ url.Values, out any) error {
			return respond(out, map[string]any{"data": []any{}})
		},
	}

	pipeline := NewRecreationPipeline(api, testLogger, testMetrics)
	outcome, err := pipeline.Recreate(context.Background(), tpl, "9", domain.AccountConfig{})
	require.NoError(t, err)

	assert.NotEmpty(t, outcome.CampaignID)
	require.Len(t, outcome.Failures, 1)
	assert.Equal(t, "creative", outcome.Failures[0].Stage)
	assert.Contains(t, outcome.Failures[0].Reason, "no promotable page")
}

func TestNormalizeAccountID(t *testing.T) {
	assert.Equal(t, "act_9", normalizeAccountID("9"))
	assert.Equal(t, "act_9", normalizeAccountID("act_9"))
}
