package app

import (
	"context"
	"strings"

	"qcm-challenge/internal/domain"
)

// SiteSettingsStore persists the admin branding over a set of defaults.
type SiteSettingsStore struct {
	kv       KeyValueStore
	defaults domain.SiteSettings
}

func NewSiteSettingsStore(kv KeyValueStore, defaults domain.SiteSettings) *SiteSettingsStore {
	return &SiteSettingsStore{kv: kv, defaults: defaults}
}

// Get merges the stored fields over the defaults.
func (s *SiteSettingsStore) Get(ctx context.Context) (domain.SiteSettings, error) {
	stored, ok, err := loadOrAbsent[domain.SiteSettings](ctx, s.kv, domain.KeySiteSettings)
	if err != nil {
		return domain.SiteSettings{}, err
	}
	if !ok {
		return s.defaults, nil
	}
	return merge(s.defaults, stored), nil
}

// Save overwrites only the non-empty fields of update.
func (s *SiteSettingsStore) Save(ctx context.Context, update domain.SiteSettings) (domain.SiteSettings, error) {
	current, err := s.Get(ctx)
	if err != nil {
		return domain.SiteSettings{}, err
	}
	next := merge(current, update)
	if err := saveJSON(ctx, s.kv, domain.KeySiteSettings, next); err != nil {
		return domain.SiteSettings{}, err
	}
	return next, nil
}

// Reset drops the stored settings and returns the defaults.
func (s *SiteSettingsStore) Reset(ctx context.Context) (domain.SiteSettings, error) {
	if err := s.kv.Delete(ctx, domain.KeySiteSettings); err != nil {
		return domain.SiteSettings{}, err
	}
	return s.defaults, nil
}

func merge(base, over domain.SiteSettings) domain.SiteSettings {
	if t := strings.TrimSpace(over.Title); t != "" {
		base.Title = t
	}
	if c := strings.TrimSpace(over.PrimaryColor); c != "" {
		base.PrimaryColor = c
	}
	return base
}
