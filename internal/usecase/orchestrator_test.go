package usecase

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/JosineyAlves/adcloner-sub000/internal/domain"
	"github.com/JosineyAlves/adcloner-sub000/internal/infrastructure"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCloneService(api domain.GraphAPI) *CloneService {
	extractor := NewExtractor(api, testLogger)
	pipeline := NewRecreationPipeline(api, testLogger, testMetrics)
	store := infrastructure.NewTemplateRepository(testLogger)
	return NewCloneService(api, extractor, pipeline, store, testLogger, testMetrics)
}

func TestCloneUsesNativeCopyFirst(t *testing.T) {
	api := &fakeGraphAPI{
		createFn: func(path string, form url.Values) (string, error) {
			assert.Equal(t, "cmp_1/copies", path)
			assert.Equal(t, "true", form.Get("deep_copy"))
			return "copied_cmp", nil
		},
	}

	service := newCloneService(api)
	results := service.Clone(context.Background(), "cmp_1", []domain.CloneTarget{{AccountID: "9"}})

	require.Len(t, results, 1)
	assert.Equal(t, domain.CloneSuccess, results[0].Status)
	assert.Equal(t, "native_copy", results[0].Strategy)
	assert.Equal(t, "copied_cmp", results[0].NewCampaignID)

	// The manual path was never taken.
	assert.Zero(t, api.getCalls("cmp_1"))
}

func TestCloneFallsBackToManualReconstruction(t *testing.T) {
	api := &fakeGraphAPI{
		getFn: func(path string, _ url.Values, out any) error {
			switch path {
			case "cmp_1":
				return respond(out, map[string]any{"id": "cmp_1", "name": "Spring Sale", "objective": "OUTCOME_TRAFFIC"})
			default:
				return respond(out, map[string]any{"data": []any{}})
			}
		},
		createFn: func(path string, _ url.Values) (string, error) {
			if path == "cmp_1/copies" {
				return "", &domain.RemoteError{Code: 3, Message: "copies not supported"}
			}
			return "manual_cmp", nil
		},
	}

	service := newCloneService(api)
	results := service.Clone(context.Background(), "cmp_1", []domain.CloneTarget{{AccountID: "9"}})

	require.Len(t, results, 1)
	assert.Equal(t, domain.CloneSuccess, results[0].Status)
	assert.Equal(t, "manual", results[0].Strategy)
	assert.Equal(t, "manual_cmp", results[0].NewCampaignID)

	// Fallback ordering: extraction ran exactly once for this account.
	assert.Equal(t, 1, api.getCalls("cmp_1"))
}

func TestCloneAlwaysReturnsAResultPerAccount(t *testing.T) {
	// Both strategies fail for every account; each account still gets a
	// failed result and nobody throws.
	api := &fakeGraphAPI{
		getFn: func(path string, _ url.Values, _ any) error {
			return &domain.RemoteError{Code: 100, Message: "nope"}
		},
		createFn: func(path string, _ url.Values) (string, error) {
			return "", &domain.RemoteError{Code: 100, Message: "nope"}
		},
	}

	service := newCloneService(api)
	results := service.Clone(context.Background(), "cmp_1", []domain.CloneTarget{
		{AccountID: "9"}, {AccountID: "10"},
	})

	require.Len(t, results, 2)
	for _, result := range results {
		assert.Equal(t, domain.CloneFailed, result.Status)
		assert.NotEmpty(t, result.Error)
	}
	assert.Equal(t, "9", results[0].DestinationAccountID)
	assert.Equal(t, "10", results[1].DestinationAccountID)

	// Extraction ran once per destination account.
	assert.Equal(t, 2, api.getCalls("cmp_1"))
}

func TestCloneBatchSurvivesPanicInOneAccount(t *testing.T) {
	api := &fakeGraphAPI{
		createFn: func(path string, form url.Values) (string, error) {
			if form.Get("parameter_overrides") != "" &&
				form.Get("parameter_overrides") == `{"ad_account_id":"act_boom"}` {
				panic("unrecoverable account state")
			}
			return "copied_cmp", nil
		},
	}

	service := newCloneService(api)
	results := service.Clone(context.Background(), "cmp_1", []domain.CloneTarget{
		{AccountID: "boom"}, {AccountID: "10"},
	})

	require.Len(t, results, 2)
	assert.Equal(t, domain.CloneFailed, results[0].Status)
	assert.Contains(t, results[0].Error, "internal error")
	assert.Equal(t, domain.CloneSuccess, results[1].Status)
	assert.Equal(t, "copied_cmp", results[1].NewCampaignID)
}

func TestCloneFromTemplate(t *testing.T) {
	api := &fakeGraphAPI{
		getFn: func(_ string, _ url.Values, out any) error {
			return respond(out, map[string]any{"data": []map[string]any{{"id": "page_77"}}})
		},
	}

	extractor := NewExtractor(api, testLogger)
	pipeline := NewRecreationPipeline(api, testLogger, testMetrics)
	store := infrastructure.NewTemplateRepository(testLogger)
	service := NewCloneService(api, extractor, pipeline, store, testLogger, testMetrics)

	tpl := domain.SavedTemplate{
		ID:        "tpl_1",
		Name:      "Spring Sale",
		Campaign:  Sanitize(sampleSnapshot()),
		CreatedAt: time.Now(),
	}
	require.NoError(t, store.Save(context.Background(), tpl))

	results, err := service.CloneFromTemplate(context.Background(), "tpl_1", []domain.CloneTarget{{AccountID: "9"}})
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, domain.CloneSuccess, results[0].Status)
	assert.Equal(t, "template", results[0].Strategy)
	assert.NotEmpty(t, results[0].NewCampaignID)

	// No deep copy and no extraction on the template path.
	assert.Zero(t, api.getCalls("cmp_1"))
	for _, path := range api.createdPaths() {
		assert.NotContains(t, path, "/copies")
	}
}

func TestCloneFromTemplateMissingTemplate(t *testing.T) {
	service := newCloneService(&fakeGraphAPI{})

	_, err := service.CloneFromTemplate(context.Background(), "tpl_missing", []domain.CloneTarget{{AccountID: "9"}})
	require.ErrorIs(t, err, domain.ErrTemplateNotFound)
}
