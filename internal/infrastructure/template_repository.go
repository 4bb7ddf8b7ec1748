package infrastructure

import (
	"context"
	"sort"
	"sync"

	"github.com/JosineyAlves/adcloner-sub000/internal/domain"
	"github.com/JosineyAlves/adcloner-sub000/pkg/logger"
)

// implements domain.TemplateStore interface
type TemplateRepository struct {
	data   map[string]domain.SavedTemplate
	mutex  sync.RWMutex
	logger *logger.Logger
}

// creates a new template repository
func NewTemplateRepository(logger *logger.Logger) *TemplateRepository {
	return &TemplateRepository{
		data:   make(map[string]domain.SavedTemplate),
		logger: logger,
	}
}

func (r *TemplateRepository) Save(ctx context.Context, tpl domain.SavedTemplate) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.data[tpl.ID] = tpl

	r.logger.WithContext(ctx).WithField("template_id", tpl.ID).Info("Stored campaign template in memory")
	return nil
}

func (r *TemplateRepository) Get(ctx context.Context, id string) (domain.SavedTemplate, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	tpl, ok := r.data[id]
	if !ok {
		return domain.SavedTemplate{}, domain.ErrTemplateNotFound
	}
	return tpl, nil
}

func (r *TemplateRepository) List(ctx context.Context) ([]domain.SavedTemplate, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	templates := make([]domain.SavedTemplate, 0, len(r.data))
	for _, tpl := range r.data {
		templates = append(templates, tpl)
	}

	sort.Slice(templates, func(i, j int) bool {
		return templates[i].CreatedAt.After(templates[j].CreatedAt)
	})

	return templates, nil
}
