package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/JosineyAlves/adcloner-sub000/internal/domain"
	"github.com/JosineyAlves/adcloner-sub000/pkg/logger"
	"github.com/JosineyAlves/adcloner-sub000/pkg/metrics"
)

// RecreationPipeline replays a sanitized template into a destination account
// object-by-object: campaign, then ad sets, then creatives and ads. Children
// are bound to the ids created for their parents.
type RecreationPipeline struct {
	api     domain.GraphAPI
	logger  *logger.Logger
	metrics *metrics.Metrics
}

// creates a new recreation pipeline
func NewRecreationPipeline(api domain.GraphAPI, logger *logger.Logger, metrics *metrics.Metrics) *RecreationPipeline {
	return &RecreationPipeline{
		api:     api,
		logger:  logger,
		metrics: metrics,
	}
}

// RecreateOutcome reports the created campaign id and every non-fatal
// failure collected along the way.
type RecreateOutcome struct {
	CampaignID string
	Failures   []domain.StepFailure
}

// wire shapes for creative and ad creation
type objectStorySpec struct {
	PageID           string          `json:"page_id"`
	InstagramActorID string          `json:"instagram_actor_id,omitempty"`
	LinkData         domain.LinkData `json:"link_data"`
}

type pageList struct {
	Data []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"data"`
}

// Recreate creates the template's hierarchy inside the destination account.
// Individual ad set, creative and ad failures are collected, not raised; the
// call errors only when the campaign itself cannot be created.
func (p *RecreationPipeline) Recreate(ctx context.Context, tpl domain.CampaignSnapshot, accountID string, cfg domain.AccountConfig) (RecreateOutcome, error) {
	actID := normalizeAccountID(accountID)
	log := p.logger.WithContext(ctx).WithField("account_id", actID)

	campaignID, err := p.createCampaign(ctx, tpl, actID)
	if err != nil {
		p.metrics.RecordObjectFailure("campaign", "create")
		return RecreateOutcome{}, fmt.Errorf("create campaign in %s: %w", actID, err)
	}
	p.metrics.RecordObjectCreated("campaign")
	log = log.WithField("new_campaign_id", campaignID)
	log.Info("Created campaign")

	outcome := RecreateOutcome{CampaignID: campaignID}

	// originalAdSetId -> newAdSetId, positional keys when the template is
	// fully sanitized and carries no original ids.
	idMapping := make(map[string]string, len(tpl.AdSets))
	var createdAdSetIDs []string

	for i, adSet := range tpl.AdSets {
		newID, err := p.createAdSet(ctx, adSet, campaignID, actID, cfg)
		if err != nil {
			p.metrics.RecordObjectFailure("adset", "create")
			log.WithError(err).WithField("adset_name", adSet.Name).Warn("Ad set creation failed, continuing")
			outcome.Failures = append(outcome.Failures, domain.StepFailure{
				Stage:      "adset",
				ObjectName: adSet.Name,
				Reason:     err.Error(),
			})
			continue
		}
		p.metrics.RecordObjectCreated("adset")
		idMapping[adSetKey(adSet, i)] = newID
		createdAdSetIDs = append(createdAdSetIDs, newID)
	}

	// Page id resolution is deferred until an ad actually needs it, so a
	// creative-less template never queries pages.
	var pageID string

	for i, adSet := range tpl.AdSets {
		for _, ad := range adSet.Ads {
			destAdSetID := idMapping[adSetKey(adSet, i)]
			if destAdSetID == "" && len(createdAdSetIDs) > 0 {
				// The mapped ad set failed to create; land the ad in the
				// first created one rather than losing it.
				destAdSetID = createdAdSetIDs[0]
			}
			if destAdSetID == "" {
				p.metrics.RecordObjectFailure("ad", "no_adset")
				outcome.Failures = append(outcome.Failures, domain.StepFailure{
					Stage:      "ad",
					ObjectName: ad.Name,
					Reason:     "no ad set available for ad",
				})
				continue
			}

			if pageID == "" {
				pageID, err = p.resolvePageID(ctx, actID, cfg)
				if err != nil {
					p.metrics.RecordObjectFailure("creative", "page_resolution")
					outcome.Failures = append(outcome.Failures, domain.StepFailure{
						Stage:      "creative",
						ObjectName: ad.Name,
						Reason:     err.Error(),
					})
					continue
				}
			}

			creativeID, err := p.createCreative(ctx, ad, pageID, actID)
			if err != nil {
				p.metrics.RecordObjectFailure("creative", "create")
				log.WithError(err).WithField("ad_name", ad.Name).Warn("Creative creation failed, continuing")
				outcome.Failures = append(outcome.Failures, domain.StepFailure{
					Stage:      "creative",
					ObjectName: ad.Name,
					Reason:     err.Error(),
				})
				continue
			}
			p.metrics.RecordObjectCreated("creative")

			if err := p.createAd(ctx, ad, destAdSetID, creativeID, actID); err != nil {
				p.metrics.RecordObjectFailure("ad", "create")
				log.WithError(err).WithField("ad_name", ad.Name).Warn("Ad creation failed, continuing")
				outcome.Failures = append(outcome.Failures, domain.StepFailure{
					Stage:      "ad",
					ObjectName: ad.Name,
					Reason:     err.Error(),
				})
				continue
			}
			p.metrics.RecordObjectCreated("ad")
		}
	}

	log.WithFields(map[string]any{
		"adsets_created": len(createdAdSetIDs),
		"failures":       len(outcome.Failures),
	}).Info("Recreation pipeline finished")

	return outcome, nil
}

func (p *RecreationPipeline) createCampaign(ctx context.Context, tpl domain.CampaignSnapshot, actID string) (string, error) {
	form := url.Values{}
	form.Set("name", tpl.Name)
	form.Set("objective", tpl.Objective)

	// The platform requires the field even when no category applies.
	cats, _ := json.Marshal(nonNil(tpl.SpecialAdCategories))
	form.Set("special_ad_categories", string(cats))

	setIfPresent(form, "daily_budget", tpl.DailyBudget)
	setIfPresent(form, "lifetime_budget", tpl.LifetimeBudget)
	setIfPresent(form, "bid_strategy", tpl.BidStrategy)

	return p.api.Create(ctx, actID+"/campaigns", form)
}

func (p *RecreationPipeline) createAdSet(ctx context.Context, adSet domain.AdSetSnapshot, campaignID, actID string, cfg domain.AccountConfig) (string, error) {
	form := url.Values{}
	form.Set("name", adSet.Name)
	form.Set("campaign_id", campaignID)

	if len(adSet.Targeting) > 0 {
		form.Set("targeting", string(adSet.Targeting))
	}

	setIfPresent(form, "daily_budget", adSet.DailyBudget)
	setIfPresent(form, "lifetime_budget", adSet.LifetimeBudget)
	setIfPresent(form, "billing_event", adSet.BillingEvent)
	setIfPresent(form, "optimization_goal", adSet.OptimizationGoal)
	setIfPresent(form, "bid_amount", adSet.BidAmount)
	setIfPresent(form, "bid_strategy", adSet.BidStrategy)
	setIfPresent(form, "start_time", adSet.StartTime)
	setIfPresent(form, "end_time", adSet.EndTime)

	// Conversion-optimized ad sets need a pixel from the destination account;
	// the source pixel id was cleared during sanitization.
	if cfg.PixelID != "" && adSet.OptimizationGoal == "OFFSITE_CONVERSIONS" {
		promoted, _ := json.Marshal(map[string]string{"pixel_id": cfg.PixelID})
		form.Set("promoted_object", string(promoted))
	}

	return p.api.Create(ctx, actID+"/adsets", form)
}

func (p *RecreationPipeline) createCreative(ctx context.Context, ad domain.AdSnapshot, pageID, actID string) (string, error) {
	spec := objectStorySpec{
		PageID:   pageID,
		LinkData: ad.Creative.LinkData,
	}
	encoded, err := json.Marshal(spec)
	if err != nil {
		return "", fmt.Errorf("marshal object story spec: %w", err)
	}

	name := ad.Creative.Name
	if name == "" {
		name = ad.Name + " - creative"
	}

	form := url.Values{}
	form.Set("name", name)
	form.Set("object_story_spec", string(encoded))

	return p.api.Create(ctx, actID+"/adcreatives", form)
}

func (p *RecreationPipeline) createAd(ctx context.Context, ad domain.AdSnapshot, adSetID, creativeID, actID string) error {
	creativeRef, _ := json.Marshal(map[string]string{"creative_id": creativeID})

	form := url.Values{}
	form.Set("name", ad.Name)
	form.Set("adset_id", adSetID)
	form.Set("creative", string(creativeRef))

	_, err := p.api.Create(ctx, actID+"/ads", form)
	return err
}

// resolvePageID picks the destination page for creatives: an explicit
// per-account override wins, otherwise the account's own promotable pages
// are queried. Source page ids are never reusable across accounts.
func (p *RecreationPipeline) resolvePageID(ctx context.Context, actID string, cfg domain.AccountConfig) (string, error) {
	if cfg.PageID != "" {
		return cfg.PageID, nil
	}

	var pages pageList
	if err := p.api.Get(ctx, actID+"/promote_pages", url.Values{"fields": {"id,name"}}, &pages); err != nil {
		return "", fmt.Errorf("list promotable pages: %w", err)
	}
	if len(pages.Data) == 0 {
		return "", domain.ErrNoPromotablePage
	}
	return pages.Data[0].ID, nil
}

func adSetKey(adSet domain.AdSetSnapshot, index int) string {
	if adSet.ID != "" {
		return adSet.ID
	}
	return fmt.Sprintf("#%d", index)
}

func normalizeAccountID(accountID string) string {
	if strings.HasPrefix(accountID, "act_") {
		return accountID
	}
	return "act_" + accountID
}

func setIfPresent(form url.Values, key, value string) {
	if value != "" {
		form.Set(key, value)
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
