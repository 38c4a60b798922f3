// Package settings provides per-tenant scheduling configuration.
package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Settings holds tenant-specific scheduling configuration. Date-only
// booking inputs are interpreted in Timezone, never the caller's local
// zone.
type Settings struct {
	TenantID               string        `json:"tenant_id"`
	BusinessName           string        `json:"business_name"`
	Timezone               string        `json:"timezone"`
	SlotGranularityMinutes int           `json:"slot_granularity_minutes"`
	MinimumLeadTime        time.Duration `json:"minimum_lead_time"`
}

// Defaults used when a tenant has no stored settings.
type Defaults struct {
	Timezone               string
	SlotGranularityMinutes int
	MinimumLeadTime        time.Duration
}

// Location resolves the tenant timezone, falling back to UTC when the
// stored name is unknown.
func (s *Settings) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Granularity returns the slot step as a duration.
func (s *Settings) Granularity() time.Duration {
	return time.Duration(s.SlotGranularityMinutes) * time.Minute
}

// Store persists tenant settings in Redis.
type Store struct {
	redis    *redis.Client
	defaults Defaults
}

// NewStore creates a settings store.
func NewStore(redisClient *redis.Client, defaults Defaults) *Store {
	return &Store{redis: redisClient, defaults: defaults}
}

func (s *Store) key(tenantID string) string {
	return fmt.Sprintf("tenant:settings:%s", tenantID)
}

// Get retrieves tenant settings, returning defaults if not found.
func (s *Store) Get(ctx context.Context, tenantID string) (*Settings, error) {
	data, err := s.redis.Get(ctx, s.key(tenantID)).Bytes()
	if err == redis.Nil {
		return s.defaultSettings(tenantID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("settings: get: %w", err)
	}

	var cfg Settings
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("settings: unmarshal: %w", err)
	}
	if cfg.Timezone == "" {
		cfg.Timezone = s.defaults.Timezone
	}
	if cfg.SlotGranularityMinutes <= 0 {
		cfg.SlotGranularityMinutes = s.defaults.SlotGranularityMinutes
	}
	if cfg.MinimumLeadTime < 0 {
		cfg.MinimumLeadTime = s.defaults.MinimumLeadTime
	}
	return &cfg, nil
}

// Set saves tenant settings.
func (s *Store) Set(ctx context.Context, cfg *Settings) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("settings: marshal: %w", err)
	}
	if err := s.redis.Set(ctx, s.key(cfg.TenantID), data, 0).Err(); err != nil {
		return fmt.Errorf("settings: set: %w", err)
	}
	return nil
}

func (s *Store) defaultSettings(tenantID string) *Settings {
	return &Settings{
		TenantID:               tenantID,
		Timezone:               s.defaults.Timezone,
		SlotGranularityMinutes: s.defaults.SlotGranularityMinutes,
		MinimumLeadTime:        s.defaults.MinimumLeadTime,
	}
}
