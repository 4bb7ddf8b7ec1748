package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/JosineyAlves/adcloner-sub000/internal/domain"
	"github.com/JosineyAlves/adcloner-sub000/pkg/logger"

	"github.com/google/uuid"
)

// Importer converts flattened spreadsheet-export rows (one row per ad, the
// platform's bulk-export column vocabulary) into a sanitized campaign
// template and saves it to the template store.
type Importer struct {
	store  domain.TemplateStore
	logger *logger.Logger
}

// creates a new tabular template importer
func NewImporter(store domain.TemplateStore, logger *logger.Logger) *Importer {
	return &Importer{
		store:  store,
		logger: logger,
	}
}

// Import sanitizes the rows, rebuilds the campaign hierarchy from them and
// stores the result as a reusable template.
func (im *Importer) Import(ctx context.Context, name string, rows []map[string]string) (domain.SavedTemplate, error) {
	log := im.logger.WithContext(ctx)

	campaign := FromRows(SanitizeRows(rows))
	if name != "" {
		campaign.Name = name
	}

	tpl := domain.SavedTemplate{
		ID:        uuid.New().String(),
		Name:      campaign.Name,
		Campaign:  campaign,
		CreatedAt: time.Now().UTC(),
	}

	if err := im.store.Save(ctx, tpl); err != nil {
		return domain.SavedTemplate{}, err
	}

	log.WithFields(map[string]any{
		"template_id": tpl.ID,
		"rows":        len(rows),
		"adsets":      len(campaign.AdSets),
	}).Info("Imported tabular template")

	return tpl, nil
}

// FromRows groups flattened rows into a campaign hierarchy. The campaign
// columns are read off the first row; ad sets are grouped by "Ad Set Name" in
// row order; each row contributes one ad.
func FromRows(rows []map[string]string) domain.CampaignSnapshot {
	if len(rows) == 0 {
		return domain.CampaignSnapshot{}
	}

	first := rows[0]
	campaign := domain.CampaignSnapshot{
		Name:           first["Campaign Name"],
		Objective:      first["Campaign Objective"],
		Status:         first["Campaign Status"],
		DailyBudget:    first["Campaign Daily Budget"],
		LifetimeBudget: first["Campaign Lifetime Budget"],
		BidStrategy:    first["Bid Strategy"],
	}
	if cats := first["Special Ad Categories"]; cats != "" {
		for _, cat := range strings.Split(cats, ",") {
			if trimmed := strings.TrimSpace(cat); trimmed != "" {
				campaign.SpecialAdCategories = append(campaign.SpecialAdCategories, trimmed)
			}
		}
	}

	adSetIndex := make(map[string]int)
	for _, row := range rows {
		setName := row["Ad Set Name"]
		i, ok := adSetIndex[setName]
		if !ok {
			campaign.AdSets = append(campaign.AdSets, adSetFromRow(row))
			i = len(campaign.AdSets) - 1
			adSetIndex[setName] = i
		}
		if ad, ok := adFromRow(row); ok {
			campaign.AdSets[i].Ads = append(campaign.AdSets[i].Ads, ad)
		}
	}

	return campaign
}

func adSetFromRow(row map[string]string) domain.AdSetSnapshot {
	adSet := domain.AdSetSnapshot{
		Name:             row["Ad Set Name"],
		DailyBudget:      row["Ad Set Daily Budget"],
		LifetimeBudget:   row["Ad Set Lifetime Budget"],
		BillingEvent:     row["Billing Event"],
		OptimizationGoal: row["Optimization Goal"],
		BidAmount:        row["Bid Amount"],
		BidStrategy:      row["Ad Set Bid Strategy"],
		StartTime:        row["Ad Set Time Start"],
		EndTime:          row["Ad Set Time Stop"],
		PixelID:          row["Pixel ID"],
	}

	// Exports carry targeting as a single JSON cell; it stays opaque here.
	if targeting := row["Targeting"]; targeting != "" && json.Valid([]byte(targeting)) {
		adSet.Targeting = json.RawMessage(targeting)
	}

	return adSet
}

func adFromRow(row map[string]string) (domain.AdSnapshot, bool) {
	name := row["Ad Name"]
	link := row["Link"]
	if name == "" && link == "" && row["Body"] == "" {
		return domain.AdSnapshot{}, false
	}

	ad := domain.AdSnapshot{
		Name:   name,
		Status: row["Ad Status"],
		Creative: domain.CreativeSnapshot{
			Name:   row["Creative Name"],
			PageID: row["Page ID"],
			LinkData: domain.LinkData{
				Title:       row["Title"],
				Message:     row["Body"],
				Link:        link,
				Description: row["Link Description"],
				ImageHash:   row["Image Hash"],
				VideoID:     row["Video ID"],
			},
		},
	}

	if cta := row["Call to Action"]; cta != "" {
		ad.Creative.LinkData.CallToAction = json.RawMessage(`{"type":"` + cta + `"}`)
	}

	return ad, true
}
