package config

import (
	"testing"
)

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	applyDefaults(&cfg)

	if cfg.CrossCheck.MaxPagesPerToken <= 0 {
		t.Errorf("max_pages_per_token default not applied: %d", cfg.CrossCheck.MaxPagesPerToken)
	}
	if cfg.CrossCheck.PageSize <= 0 || cfg.CrossCheck.PageSize > 100 {
		t.Errorf("page_size default out of range: %d", cfg.CrossCheck.PageSize)
	}
	if cfg.CrossCheck.DisplayCap != 100 {
		t.Errorf("display_cap default: %d", cfg.CrossCheck.DisplayCap)
	}
	if cfg.CrossCheck.Timeout <= 0 {
		t.Errorf("timeout default not applied: %d", cfg.CrossCheck.Timeout)
	}
	t.Logf("cfg crosscheck: %+v", cfg.CrossCheck)
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := Config{CrossCheck: CrossCheckConfig{
		MaxPagesPerToken:   3,
		MaxHoldersPerToken: 500,
		PageSize:           50,
		DisplayCap:         20,
		Timeout:            60,
		FetchConcurrency:   2,
	}}
	applyDefaults(&cfg)

	if cfg.CrossCheck.MaxPagesPerToken != 3 || cfg.CrossCheck.PageSize != 50 {
		t.Errorf("explicit values overwritten: %+v", cfg.CrossCheck)
	}
}
