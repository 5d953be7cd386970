// Package partners manages the partner organisations shown on the site.
package partners

import (
	"context"
	"fmt"
	"strings"

	"github.com/yassinekamouss/tamkeen-sub000/internal/app/domain/partner"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/storage"
	"github.com/yassinekamouss/tamkeen-sub000/pkg/logger"
)

// Service manages partner records.
type Service struct {
	store storage.PartnerStore
	log   *logger.Logger
}

// New constructs a partner service.
func New(store storage.PartnerStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("partners")
	}
	return &Service{store: store, log: log}
}

// Create validates and persists a partner.
func (s *Service) Create(ctx context.Context, p partner.Partner) (partner.Partner, error) {
	if strings.TrimSpace(p.Name) == "" {
		return partner.Partner{}, fmt.Errorf("name is required")
	}
	created, err := s.store.CreatePartner(ctx, p)
	if err != nil {
		return partner.Partner{}, err
	}
	s.log.WithField("partner_id", created.ID).Info("partner created")
	return created, nil
}

// Update replaces a partner record.
func (s *Service) Update(ctx context.Context, p partner.Partner) (partner.Partner, error) {
	if strings.TrimSpace(p.ID) == "" {
		return partner.Partner{}, fmt.Errorf("partner id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return partner.Partner{}, fmt.Errorf("name is required")
	}
	updated, err := s.store.UpdatePartner(ctx, p)
	if err != nil {
		return partner.Partner{}, err
	}
	s.log.WithField("partner_id", updated.ID).Info("partner updated")
	return updated, nil
}

// Get returns one partner.
func (s *Service) Get(ctx context.Context, id string) (partner.Partner, error) {
	return s.store.GetPartner(ctx, id)
}

// List returns all partners.
func (s *Service) List(ctx context.Context) ([]partner.Partner, error) {
	return s.store.ListPartners(ctx)
}

// Delete removes a partner.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeletePartner(ctx, id); err != nil {
		return err
	}
	s.log.WithField("partner_id", id).Info("partner deleted")
	return nil
}
