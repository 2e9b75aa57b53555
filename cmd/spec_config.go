package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/plan-eval/plan-eval/eval"
)

// EvalSpec mirrors the tally command's knobs so a run can be described in a
// YAML file instead of flags. Precedence is flags > PLAN_EVAL_* environment
// variables > spec file > defaults; tally.go applies the overlays in that
// order.
type EvalSpec struct {
	Baseline          string  `yaml:"baseline" env:"PLAN_EVAL_BASELINE"`
	Plans             string  `yaml:"plans" env:"PLAN_EVAL_PLANS"`
	SkipRecords       int     `yaml:"skip_records" env:"PLAN_EVAL_SKIP_RECORDS"`
	MaxDistrict       int     `yaml:"max_district" env:"PLAN_EVAL_MAX_DISTRICT"`
	DistrictPolicy    string  `yaml:"district_policy" env:"PLAN_EVAL_DISTRICT_POLICY"`
	StrictBaseline    bool    `yaml:"strict_baseline" env:"PLAN_EVAL_STRICT_BASELINE"`
	CompetitiveMargin float64 `yaml:"competitive_margin" env:"PLAN_EVAL_COMPETITIVE_MARGIN"`
	JSONLPath         string  `yaml:"jsonl" env:"PLAN_EVAL_JSONL"`
	SQLitePath        string  `yaml:"sqlite" env:"PLAN_EVAL_SQLITE"`
	ArchivePath       string  `yaml:"archive" env:"PLAN_EVAL_ARCHIVE"`
	ArchiveWindow     int     `yaml:"archive_window" env:"PLAN_EVAL_ARCHIVE_WINDOW"`
	Color             bool    `yaml:"color" env:"PLAN_EVAL_COLOR"`
}

// DefaultEvalSpec returns a spec holding the core defaults.
func DefaultEvalSpec() EvalSpec {
	cfg := eval.DefaultConfig()
	return EvalSpec{
		SkipRecords:       cfg.SkipRecords,
		DistrictPolicy:    string(cfg.Policy),
		CompetitiveMargin: cfg.CompetitiveMargin,
	}
}

// LoadEvalSpec overlays the YAML file at path onto spec. Unknown fields are
// errors, so a typoed key fails loudly instead of silently running with a
// default.
func LoadEvalSpec(path string, spec *EvalSpec) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading evaluation spec: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(spec); err != nil {
		return fmt.Errorf("parsing evaluation spec: %w", err)
	}
	return nil
}

// ApplyEnv overlays PLAN_EVAL_* environment variables onto spec.
func ApplyEnv(spec *EvalSpec) error {
	if err := env.Parse(spec); err != nil {
		return fmt.Errorf("parsing environment overrides: %w", err)
	}
	return nil
}

// Config converts the spec into the core run configuration.
func (s EvalSpec) Config() eval.Config {
	return eval.Config{
		SkipRecords:       s.SkipRecords,
		MaxDistrict:       s.MaxDistrict,
		Policy:            eval.DistrictPolicy(s.DistrictPolicy),
		StrictBaseline:    s.StrictBaseline,
		CompetitiveMargin: s.CompetitiveMargin,
	}
}
