package usecase

// The sanitizer turns a captured hierarchy into an account-agnostic template:
// identifiers that are only valid inside the source account are cleared,
// every structural field (targeting, budgets, schedule, creative copy) is
// carried through untouched. It is agnostic to whether its input came from a
// live snapshot or a parsed spreadsheet export, and it is idempotent.

import "github.com/JosineyAlves/adcloner-sub000/internal/domain"

// Account-scoped columns of the platform's bulk-export schema. These are the
// tabular counterparts of the struct fields cleared by Sanitize.
var accountScopedColumns = []string{
	"Campaign ID",
	"Ad Set ID",
	"Ad ID",
	"Creative ID",
	"Page ID",
	"Pixel ID",
	"Image Hash",
	"Video ID",
	"Application ID",
	"Instagram Account ID",
	"Product Set ID",
	"Product Catalog ID",
	"Lead Form ID",
	"Offer ID",
	"Place Page Set ID",
	"Story ID",
}

// Sanitize clears every account-scoped identifier from the snapshot and
// returns the resulting template. The input is not modified.
func Sanitize(snapshot domain.CampaignSnapshot) domain.CampaignSnapshot {
	tpl := snapshot
	tpl.ID = ""

	tpl.AdSets = make([]domain.AdSetSnapshot, len(snapshot.AdSets))
	for i, adSet := range snapshot.AdSets {
		clean := adSet
		clean.ID = ""
		clean.PixelID = ""

		clean.Ads = make([]domain.AdSnapshot, len(adSet.Ads))
		for j, ad := range adSet.Ads {
			clean.Ads[j] = sanitizeAd(ad)
		}

		tpl.AdSets[i] = clean
	}

	return tpl
}

func sanitizeAd(ad domain.AdSnapshot) domain.AdSnapshot {
	clean := ad
	clean.ID = ""
	clean.AdSetID = ""

	clean.Creative.ID = ""
	clean.Creative.PageID = ""
	clean.Creative.ApplicationID = ""
	clean.Creative.InstagramActorID = ""
	clean.Creative.ProductSetID = ""
	clean.Creative.LinkData.ImageHash = ""
	clean.Creative.LinkData.VideoID = ""
	clean.Creative.LinkData.LeadFormID = ""

	return clean
}

// SanitizeRows applies the same identifier-clearing rule to rows of a
// flattened tabular template. Columns outside the enumerated list pass
// through untouched; the input rows are not modified.
func SanitizeRows(rows []map[string]string) []map[string]string {
	cleared := make(map[string]bool, len(accountScopedColumns))
	for _, col := range accountScopedColumns {
		cleared[col] = true
	}

	out := make([]map[string]string, len(rows))
	for i, row := range rows {
		clean := make(map[string]string, len(row))
		for col, val := range row {
			if cleared[col] {
				clean[col] = ""
				continue
			}
			clean[col] = val
		}
		out[i] = clean
	}
	return out
}
