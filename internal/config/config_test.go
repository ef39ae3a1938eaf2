package config

import (
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "8585" {
		t.Errorf("port = %s, want 8585", cfg.Port)
	}
	if cfg.RenewalRunDay != time.Monday {
		t.Errorf("run day = %v, want Monday", cfg.RenewalRunDay)
	}
	if cfg.FulfillmentBatchSize != 5 {
		t.Errorf("batch size = %d, want 5", cfg.FulfillmentBatchSize)
	}
	if cfg.FulfillmentBatchDelay != 2*time.Second {
		t.Errorf("batch delay = %v, want 2s", cfg.FulfillmentBatchDelay)
	}
	if len(cfg.CSRFKey) != 32 || len(cfg.SessionKey) != 32 {
		t.Errorf("generated keys have wrong length: %d/%d", len(cfg.CSRFKey), len(cfg.SessionKey))
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("RENEWAL_RUN_DAY", "friday")
	t.Setenv("FULFILLMENT_BATCH_SIZE", "10")
	t.Setenv("FULFILLMENT_BATCH_DELAY_MS", "500")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "9000" {
		t.Errorf("port = %s", cfg.Port)
	}
	if cfg.RenewalRunDay != time.Friday {
		t.Errorf("run day = %v, want Friday", cfg.RenewalRunDay)
	}
	if cfg.FulfillmentBatchSize != 10 {
		t.Errorf("batch size = %d", cfg.FulfillmentBatchSize)
	}
	if cfg.FulfillmentBatchDelay != 500*time.Millisecond {
		t.Errorf("batch delay = %v", cfg.FulfillmentBatchDelay)
	}
}

func TestLoadConfig_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	t.Setenv("RENEWAL_RUN_DAY", "someday")
	t.Setenv("FULFILLMENT_BATCH_SIZE", "0")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "8585" {
		t.Errorf("port = %s, want fallback 8585", cfg.Port)
	}
	if cfg.RenewalRunDay != time.Monday {
		t.Errorf("run day = %v, want fallback Monday", cfg.RenewalRunDay)
	}
	if cfg.FulfillmentBatchSize != 5 {
		t.Errorf("batch size = %d, want fallback 5", cfg.FulfillmentBatchSize)
	}
}
