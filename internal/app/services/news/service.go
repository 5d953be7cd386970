// Package news manages news articles for the public site and the back office.
package news

import (
	"context"
	"fmt"
	"strings"

	"github.com/yassinekamouss/tamkeen-sub000/internal/app/domain/activity"
	newsdomain "github.com/yassinekamouss/tamkeen-sub000/internal/app/domain/news"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/services/activities"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/storage"
	"github.com/yassinekamouss/tamkeen-sub000/pkg/logger"
)

// Service manages article records.
type Service struct {
	store      storage.NewsStore
	activities *activities.Service
	log        *logger.Logger
}

// New constructs a news service. The activity service may be nil.
func New(store storage.NewsStore, acts *activities.Service, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("news")
	}
	return &Service{store: store, activities: acts, log: log}
}

// Create validates and persists an article.
func (s *Service) Create(ctx context.Context, a newsdomain.Article, actor string) (newsdomain.Article, error) {
	if strings.TrimSpace(a.Title) == "" {
		return newsdomain.Article{}, fmt.Errorf("title is required")
	}

	created, err := s.store.CreateArticle(ctx, a)
	if err != nil {
		return newsdomain.Article{}, err
	}
	s.log.WithField("article_id", created.ID).Info("article created")
	if created.Published {
		s.recordPublished(ctx, created, actor)
	}
	return created, nil
}

// Update replaces an article.
func (s *Service) Update(ctx context.Context, a newsdomain.Article, actor string) (newsdomain.Article, error) {
	if strings.TrimSpace(a.ID) == "" {
		return newsdomain.Article{}, fmt.Errorf("article id is required")
	}
	if strings.TrimSpace(a.Title) == "" {
		return newsdomain.Article{}, fmt.Errorf("title is required")
	}

	existing, err := s.store.GetArticle(ctx, a.ID)
	if err != nil {
		return newsdomain.Article{}, err
	}

	updated, err := s.store.UpdateArticle(ctx, a)
	if err != nil {
		return newsdomain.Article{}, err
	}
	s.log.WithField("article_id", updated.ID).Info("article updated")
	if updated.Published && !existing.Published {
		s.recordPublished(ctx, updated, actor)
	}
	return updated, nil
}

// Get returns one article.
func (s *Service) Get(ctx context.Context, id string) (newsdomain.Article, error) {
	return s.store.GetArticle(ctx, id)
}

// List returns articles, optionally only published ones.
func (s *Service) List(ctx context.Context, publishedOnly bool) ([]newsdomain.Article, error) {
	return s.store.ListArticles(ctx, publishedOnly)
}

// Delete removes an article.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteArticle(ctx, id); err != nil {
		return err
	}
	s.log.WithField("article_id", id).Info("article deleted")
	return nil
}

// Categories returns the distinct categories in use.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.store.ListCategories(ctx)
}

func (s *Service) recordPublished(ctx context.Context, a newsdomain.Article, actor string) {
	if s.activities != nil {
		s.activities.Record(ctx, activity.KindNewsPublished, fmt.Sprintf("Actualité %q publiée", a.Title), actor)
	}
}
