package usecase

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/JosineyAlves/adcloner-sub000/internal/domain"
	"github.com/JosineyAlves/adcloner-sub000/pkg/logger"
	"github.com/JosineyAlves/adcloner-sub000/pkg/metrics"
)

// CloneService is the entry point for replicating a campaign into one or
// more destination accounts. Strategies are tried in order per account: the
// platform's native deep copy first, then manual reconstruction from a fresh
// snapshot. One account's failure never touches another's attempt.
type CloneService struct {
	strategies []domain.CloneStrategy
	store      domain.TemplateStore
	pipeline   *RecreationPipeline
	logger     *logger.Logger
	metrics    *metrics.Metrics
}

// creates a new clone service with the default strategy order
func NewCloneService(
	api domain.GraphAPI,
	extractor *Extractor,
	pipeline *RecreationPipeline,
	store domain.TemplateStore,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *CloneService {
	return &CloneService{
		strategies: []domain.CloneStrategy{
			&nativeCopyStrategy{api: api, logger: logger},
			&manualCloneStrategy{extractor: extractor, pipeline: pipeline, logger: logger},
		},
		store:    store,
		pipeline: pipeline,
		logger:   logger,
		metrics:  metrics,
	}
}

// Clone replicates the source campaign into every target account. Targets
// run concurrently; the result slice is ordered like the input and always
// has one entry per target.
func (s *CloneService) Clone(ctx context.Context, sourceCampaignID string, targets []domain.CloneTarget) []domain.CloneResult {
	return s.fanOut(ctx, targets, func(target domain.CloneTarget) domain.CloneResult {
		return s.cloneOne(ctx, sourceCampaignID, target)
	})
}

// CloneFromTemplate replicates a stored sanitized template into every target
// account, skipping extraction entirely.
func (s *CloneService) CloneFromTemplate(ctx context.Context, templateID string, targets []domain.CloneTarget) ([]domain.CloneResult, error) {
	tpl, err := s.store.Get(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("load template %s: %w", templateID, err)
	}

	// Templates are sanitized on save; re-sanitizing is a no-op for them and
	// protects against callers storing raw snapshots.
	campaign := Sanitize(tpl.Campaign)

	results := s.fanOut(ctx, targets, func(target domain.CloneTarget) domain.CloneResult {
		start := time.Now()
		s.metrics.IncCloneJobsInProgress()
		defer s.metrics.DecCloneJobsInProgress()

		outcome, err := s.pipeline.Recreate(ctx, campaign, target.AccountID, target.Config)
		if err != nil {
			s.metrics.RecordCloneJob("failed", "template", time.Since(start))
			return domain.CloneResult{
				DestinationAccountID: target.AccountID,
				Status:               domain.CloneFailed,
				Strategy:             "template",
				Error:                err.Error(),
			}
		}

		s.metrics.RecordCloneJob("success", "template", time.Since(start))
		return domain.CloneResult{
			DestinationAccountID: target.AccountID,
			Status:               domain.CloneSuccess,
			Strategy:             "template",
			NewCampaignID:        outcome.CampaignID,
			Failures:             outcome.Failures,
		}
	})

	return results, nil
}

// fanOut runs one attempt per target concurrently. A panic inside one
// attempt becomes that target's failed result; the rest of the batch is
// unaffected.
func (s *CloneService) fanOut(ctx context.Context, targets []domain.CloneTarget, attempt func(domain.CloneTarget) domain.CloneResult) []domain.CloneResult {
	results := make([]domain.CloneResult, len(targets))

	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Add(1)
		go func(i int, target domain.CloneTarget) {
			defer wg.Done()
			defer func() {
				if recovered := recover(); recovered != nil {
					s.logger.WithContext(ctx).WithFields(map[string]any{
						"account_id": target.AccountID,
						"panic":      recovered,
					}).Error("Clone attempt panicked")
					results[i] = domain.CloneResult{
						DestinationAccountID: target.AccountID,
						Status:               domain.CloneFailed,
						Error:                fmt.Sprintf("internal error: %v", recovered),
					}
				}
			}()
			results[i] = attempt(target)
		}(i, target)
	}
	wg.Wait()

	return results
}

// cloneOne walks the strategy list for a single destination account and
// records exactly one result.
func (s *CloneService) cloneOne(ctx context.Context, sourceCampaignID string, target domain.CloneTarget) domain.CloneResult {
	start := time.Now()
	s.metrics.IncCloneJobsInProgress()
	defer s.metrics.DecCloneJobsInProgress()

	log := s.logger.WithContext(ctx).WithFields(map[string]any{
		"source_campaign_id": sourceCampaignID,
		"account_id":         target.AccountID,
	})

	var lastErr error
	for _, strategy := range s.strategies {
		newCampaignID, failures, err := strategy.Attempt(ctx, sourceCampaignID, target.AccountID, target.Config)
		if err != nil {
			log.WithError(err).WithField("strategy", strategy.Name()).Warn("Clone strategy failed, trying next")
			lastErr = err
			continue
		}

		s.metrics.RecordCloneJob("success", strategy.Name(), time.Since(start))
		log.WithFields(map[string]any{
			"strategy":        strategy.Name(),
			"new_campaign_id": newCampaignID,
			"failures":        len(failures),
		}).Info("Campaign cloned")

		return domain.CloneResult{
			DestinationAccountID: target.AccountID,
			Status:               domain.CloneSuccess,
			Strategy:             strategy.Name(),
			NewCampaignID:        newCampaignID,
			Failures:             failures,
		}
	}

	s.metrics.RecordCloneJob("failed", "all", time.Since(start))
	log.WithError(lastErr).Error("All clone strategies failed")

	errMsg := "all clone strategies failed"
	if lastErr != nil {
		errMsg = lastErr.Error()
	}
	return domain.CloneResult{
		DestinationAccountID: target.AccountID,
		Status:               domain.CloneFailed,
		Error:                errMsg,
	}
}

// nativeCopyStrategy uses the platform's server-side deep copy, the
// preferred path because the subtree is duplicated atomically on the remote
// side.
type nativeCopyStrategy struct {
	api    domain.GraphAPI
	logger *logger.Logger
}

func (n *nativeCopyStrategy) Name() string { return "native_copy" }

func (n *nativeCopyStrategy) Attempt(ctx context.Context, sourceCampaignID, accountID string, _ domain.AccountConfig) (string, []domain.StepFailure, error) {
	form := url.Values{}
	form.Set("deep_copy", "true")
	form.Set("rename_options", `{"rename_suffix":" - Copy"}`)

	if accountID != "" {
		overrides := fmt.Sprintf(`{"ad_account_id":%q}`, normalizeAccountID(accountID))
		form.Set("parameter_overrides", overrides)
	}

	newCampaignID, err := n.api.Create(ctx, sourceCampaignID+"/copies", form)
	if err != nil {
		return "", nil, fmt.Errorf("native deep copy: %w", err)
	}
	return newCampaignID, nil, nil
}

// manualCloneStrategy rebuilds the campaign object-by-object from a fresh
// snapshot when the native copy is rejected or unsupported.
type manualCloneStrategy struct {
	extractor *Extractor
	pipeline  *RecreationPipeline
	logger    *logger.Logger
}

func (m *manualCloneStrategy) Name() string { return "manual" }

func (m *manualCloneStrategy) Attempt(ctx context.Context, sourceCampaignID, accountID string, cfg domain.AccountConfig) (string, []domain.StepFailure, error) {
	snapshot, err := m.extractor.Extract(ctx, sourceCampaignID, ExtractOptions{})
	if err != nil {
		return "", nil, fmt.Errorf("extract snapshot: %w", err)
	}

	outcome, err := m.pipeline.Recreate(ctx, Sanitize(snapshot), accountID, cfg)
	if err != nil {
		return "", nil, err
	}
	return outcome.CampaignID, outcome.Failures, nil
}
