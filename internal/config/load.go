package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Load builds a Config from defaults, then an optional JSON file, then the
// environment. The file is validated against the embedded schema before it is
// merged, so a malformed file never yields a half-applied configuration.
//
// File resolution order: the explicit path argument, then $ADAPT_CONFIG.
// An empty resolution is not an error; defaults apply.
func Load(path string) (Config, error) {
	// A .env file next to the binary is honored if present. Missing is fine.
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if path == "" {
		path = os.Getenv("ADAPT_CONFIG")
	}
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := validateRaw(raw); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}

	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// validateRaw checks the raw JSON against the config schema.
func validateRaw(raw []byte) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	compiled, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}
	if err := compiled.Validate(parsed); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

func compiledSchema() (*jsonschema.Schema, error) {
	var def any
	if err := json.Unmarshal([]byte(configSchema), &def); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema://config.json", def); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	return c.Compile("schema://config.json")
}

// Validate enforces cross-field constraints the JSON schema cannot express.
func (c Config) Validate() error {
	var errs []error

	sum := c.Queue.OverdueWeight + c.Queue.RetrievabilityWeight + c.Queue.WeaknessWeight
	if sum < 0.999 || sum > 1.001 {
		errs = append(errs, fmt.Errorf("queue weights must sum to 1, got %.3f", sum))
	}
	if c.Difficulty.TargetSuccessRate < 0.5 || c.Difficulty.TargetSuccessRate > 0.9 {
		errs = append(errs, fmt.Errorf("target success rate must be in [0.5, 0.9], got %.2f", c.Difficulty.TargetSuccessRate))
	}
	if c.SRS.Algorithm != "sm2" && c.SRS.Algorithm != "fsrs" {
		errs = append(errs, fmt.Errorf("unknown algorithm %q", c.SRS.Algorithm))
	}
	if c.SRS.LapseMultiplier <= 0 || c.SRS.LapseMultiplier >= 1 {
		errs = append(errs, fmt.Errorf("lapse multiplier must be in (0, 1), got %.2f", c.SRS.LapseMultiplier))
	}
	if c.SRS.MinIntervalDays < 1 {
		errs = append(errs, fmt.Errorf("min interval must be >= 1 day, got %d", c.SRS.MinIntervalDays))
	}
	if len(c.SRS.LearningStepsMinutes) == 0 {
		errs = append(errs, errors.New("at least one learning step is required"))
	}

	return errors.Join(errs...)
}
