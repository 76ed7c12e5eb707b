package config

import "fmt"

// ValidateConfig checks values that have no sensible fallback.
func ValidateConfig(c *Config) error {
	if c.Classifier.Threshold < 0 || c.Classifier.Threshold >= 1 {
		return fmt.Errorf("classifier.threshold must be in [0, 1), got %v", c.Classifier.Threshold)
	}
	if c.Worker.Consumers < 1 {
		return fmt.Errorf("worker.consumers must be at least 1, got %d", c.Worker.Consumers)
	}
	if c.Worker.BatchSize < 1 {
		return fmt.Errorf("worker.batch_size must be at least 1, got %d", c.Worker.BatchSize)
	}
	if c.Worker.ClaimMinIdle < c.Worker.BlockTimeout {
		return fmt.Errorf("worker.claim_min_idle (%v) must not be shorter than worker.block_timeout (%v)",
			c.Worker.ClaimMinIdle, c.Worker.BlockTimeout)
	}
	if c.Results.TTL <= 0 {
		return fmt.Errorf("results.ttl must be positive, got %v", c.Results.TTL)
	}
	return nil
}
