package usecase

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/JosineyAlves/adcloner-sub000/internal/domain"
	"github.com/JosineyAlves/adcloner-sub000/pkg/logger"

	"github.com/sirupsen/logrus"
)

const (
	campaignFields = "id,name,objective,status,daily_budget,lifetime_budget,special_ad_categories,bid_strategy"
	adSetFields    = "id,name,targeting,daily_budget,lifetime_budget,billing_event,optimization_goal,bid_amount,bid_strategy,start_time,end_time"
	adFields       = "id,name,status,adset_id,creative{id,name,object_story_spec}"
)

// ExtractOptions feeds the defensive fallback probes. Known ids come from the
// caller (saved templates, earlier runs); they are only consulted when the
// primary edge queries return nothing.
type ExtractOptions struct {
	KnownAdSetIDs []string
	KnownAdIDs    []string
}

// Extractor builds a full hierarchical snapshot of a remote campaign.
type Extractor struct {
	api    domain.GraphAPI
	logger *logger.Logger
}

// creates a new snapshot extractor
func NewExtractor(api domain.GraphAPI, logger *logger.Logger) *Extractor {
	return &Extractor{
		api:    api,
		logger: logger,
	}
}

// wire shapes for Graph edge listings
type adSetList struct {
	Data []domain.AdSetSnapshot `json:"data"`
}

type adWire struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Status   string       `json:"status"`
	AdSetID  string       `json:"adset_id"`
	Creative creativeWire `json:"creative"`
}

type adList struct {
	Data []adWire `json:"data"`
}

type creativeWire struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	ObjectStorySpec struct {
		PageID           string          `json:"page_id"`
		InstagramActorID string          `json:"instagram_actor_id"`
		ApplicationID    string          `json:"application_id"`
		ProductSetID     string          `json:"product_set_id"`
		LinkData         domain.LinkData `json:"link_data"`
	} `json:"object_story_spec"`
}

func (w adWire) toSnapshot() domain.AdSnapshot {
	return domain.AdSnapshot{
		ID:      w.ID,
		Name:    w.Name,
		Status:  w.Status,
		AdSetID: w.AdSetID,
		Creative: domain.CreativeSnapshot{
			ID:               w.Creative.ID,
			Name:             w.Creative.Name,
			PageID:           w.Creative.ObjectStorySpec.PageID,
			ApplicationID:    w.Creative.ObjectStorySpec.ApplicationID,
			InstagramActorID: w.Creative.ObjectStorySpec.InstagramActorID,
			ProductSetID:     w.Creative.ObjectStorySpec.ProductSetID,
			LinkData:         w.Creative.ObjectStorySpec.LinkData,
		},
	}
}

// Extract fetches the campaign, its ad sets and its ads, using progressively
// broader fallback queries for the sub-resources. Empty sub-resources are not
// an error; only a failed top-level campaign fetch is.
func (e *Extractor) Extract(ctx context.Context, campaignID string, opts ExtractOptions) (domain.CampaignSnapshot, error) {
	log := e.logger.WithContext(ctx).WithField("campaign_id", campaignID)

	var snapshot domain.CampaignSnapshot
	params := url.Values{"fields": {campaignFields}}
	if err := e.api.Get(ctx, campaignID, params, &snapshot); err != nil {
		return domain.CampaignSnapshot{}, fmt.Errorf("fetch campaign %s: %w", campaignID, err)
	}

	adSets, adSetTier := e.fetchAdSets(ctx, campaignID, opts)
	ads, adTier := e.fetchAds(ctx, campaignID, adSets, opts)

	snapshot.AdSets = attachAds(adSets, ads, log)

	log.WithFields(map[string]any{
		"adset_tier": adSetTier,
		"ad_tier":    adTier,
		"adsets":     len(adSets),
		"ads":        len(ads),
	}).Info("Campaign snapshot extracted")

	return snapshot, nil
}

// fetchAdSets lists the campaign's ad sets, probing caller-known ad set ids
// directly when the edge listing comes back empty.
func (e *Extractor) fetchAdSets(ctx context.Context, campaignID string, opts ExtractOptions) ([]domain.AdSetSnapshot, string) {
	log := e.logger.WithContext(ctx).WithField("campaign_id", campaignID)

	var list adSetList
	params := url.Values{"fields": {adSetFields}}
	if err := e.api.Get(ctx, campaignID+"/adsets", params, &list); err != nil {
		log.WithError(err).Warn("Ad set edge listing failed, treating as empty")
	}
	if len(list.Data) > 0 {
		return list.Data, "edge"
	}

	// Known platform inconsistency: the edge can silently return nothing for
	// ad sets that are individually readable.
	var probed []domain.AdSetSnapshot
	for _, id := range opts.KnownAdSetIDs {
		var adSet domain.AdSetSnapshot
		if err := e.api.Get(ctx, id, url.Values{"fields": {adSetFields}}, &adSet); err != nil {
			log.WithError(err).WithField("adset_id", id).Debug("Ad set probe failed")
			continue
		}
		if adSet.ID != "" {
			probed = append(probed, adSet)
		}
	}
	if len(probed) > 0 {
		return probed, "probe"
	}

	return nil, "empty"
}

// fetchAds lists the campaign's ads, falling back to the per-ad-set edge and
// finally to deterministic id guessing.
func (e *Extractor) fetchAds(ctx context.Context, campaignID string, adSets []domain.AdSetSnapshot, opts ExtractOptions) ([]domain.AdSnapshot, string) {
	log := e.logger.WithContext(ctx).WithField("campaign_id", campaignID)

	var list adList
	params := url.Values{"fields": {adFields}}
	if err := e.api.Get(ctx, campaignID+"/ads", params, &list); err != nil {
		log.WithError(err).Warn("Ad edge listing failed, treating as empty")
	}
	if len(list.Data) > 0 {
		return wireAds(list.Data), "edge"
	}

	// Indirect listing through each ad set's own ads edge.
	var flattened []adWire
	for _, adSet := range adSets {
		var sub adList
		if err := e.api.Get(ctx, adSet.ID+"/ads", url.Values{"fields": {adFields}}, &sub); err != nil {
			log.WithError(err).WithField("adset_id", adSet.ID).Debug("Per-adset ad listing failed")
			continue
		}
		flattened = append(flattened, sub.Data...)
	}
	if len(flattened) > 0 {
		return wireAds(flattened), "per_adset"
	}

	// Last resort: probe caller-known ids and ids derived from the campaign
	// id. The derivation is a best-effort heuristic for an undocumented
	// platform numbering convention, not a guaranteed recovery path.
	candidates := append([]string{}, opts.KnownAdIDs...)
	candidates = append(candidates, deriveCandidateAdIDs(campaignID)...)

	var probed []adWire
	for _, id := range candidates {
		var ad adWire
		if err := e.api.Get(ctx, id, url.Values{"fields": {adFields}}, &ad); err != nil {
			log.WithError(err).WithField("ad_id", id).Debug("Ad probe failed")
			continue
		}
		if ad.ID != "" {
			probed = append(probed, ad)
		}
	}
	if len(probed) > 0 {
		return wireAds(probed), "id_probe"
	}

	return nil, "empty"
}

func wireAds(wires []adWire) []domain.AdSnapshot {
	ads := make([]domain.AdSnapshot, 0, len(wires))
	for _, w := range wires {
		ads = append(ads, w.toSnapshot())
	}
	return ads
}

// deriveCandidateAdIDs guesses ad ids adjacent to the campaign id. Campaign
// and ad ids are allocated from the same numeric space, so the first few
// successors of the campaign id occasionally resolve to its own ads.
func deriveCandidateAdIDs(campaignID string) []string {
	base, err := strconv.ParseUint(campaignID, 10, 64)
	if err != nil {
		return nil
	}

	candidates := make([]string, 0, 3)
	for offset := uint64(1); offset <= 3; offset++ {
		candidates = append(candidates, strconv.FormatUint(base+offset, 10))
	}
	return candidates
}

// attachAds nests each ad under its ad set. Ads whose ad set cannot be
// matched go under the first ad set so they are not lost; with no ad sets at
// all they are dropped with a warning.
func attachAds(adSets []domain.AdSetSnapshot, ads []domain.AdSnapshot, log *logrus.Entry) []domain.AdSetSnapshot {
	if len(ads) == 0 {
		return adSets
	}

	index := make(map[string]int, len(adSets))
	for i, adSet := range adSets {
		index[adSet.ID] = i
	}

	for _, ad := range ads {
		if i, ok := index[ad.AdSetID]; ok && ad.AdSetID != "" {
			adSets[i].Ads = append(adSets[i].Ads, ad)
			continue
		}
		if len(adSets) > 0 {
			adSets[0].Ads = append(adSets[0].Ads, ad)
			continue
		}
		log.WithField("ad_id", ad.ID).Warn("Dropping ad with no ad set to attach to")
	}

	return adSets
}
