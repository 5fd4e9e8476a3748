package model

import "time"

// Config is the full engine configuration. Defaults live in DefaultConfig;
// viper overlays file/env/flag values on top of them.
type Config struct {
	Scoring ScoringConfig `yaml:"scoring" mapstructure:"scoring"`
	Assist  AssistConfig  `yaml:"assist" mapstructure:"assist"`
	Cache   CacheConfig   `yaml:"cache" mapstructure:"cache"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// ScoringConfig holds the matcher's tunable policy. The tolerance bands and
// weights are a default policy, not a reverse-engineered contract; keep them
// in configuration.
type ScoringConfig struct {
	// Weights per attribute kind, renormalized over the kinds present in a
	// query. ProductType carries no weight: it pre-filters entries.
	Weights map[AttributeKind]float64 `yaml:"weights" mapstructure:"weights"`

	// ExactTolerance is the relative band where numeric values still score
	// 1.0 (25.0 vs 25.4 mm). Beyond it the score decays linearly, reaching
	// zero at ZeroTolerance.
	ExactTolerance float64 `yaml:"exact_tolerance" mapstructure:"exact_tolerance"`
	ZeroTolerance  float64 `yaml:"zero_tolerance" mapstructure:"zero_tolerance"`

	// MinCategoricalSimilarity floors weak fuzzy matches on categorical
	// values to zero so near-random strings do not accumulate score.
	MinCategoricalSimilarity float64 `yaml:"min_categorical_similarity" mapstructure:"min_categorical_similarity"`

	// AcceptThreshold drops entries whose aggregate score falls below it.
	// An empty result list is a valid outcome.
	AcceptThreshold float64 `yaml:"accept_threshold" mapstructure:"accept_threshold"`
}

// AssistConfig configures the external natural-language assist.
type AssistConfig struct {
	Provider string `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama, "" = disabled
	Model    string `yaml:"model" mapstructure:"model"`
	APIKey   string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`

	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxTokens int           `yaml:"max_tokens" mapstructure:"max_tokens"`

	// ConfidenceThreshold: below this mean rule-based confidence (or with
	// ProductType unresolved) the assist is consulted, at most once per
	// request.
	ConfidenceThreshold float64 `yaml:"confidence_threshold" mapstructure:"confidence_threshold"`
	// AssistConfidence is assigned to fields only the assist supplied.
	AssistConfidence float64 `yaml:"assist_confidence" mapstructure:"assist_confidence"`

	// RequestsPerSecond throttles assist API calls across requests.
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`

	HTTPProxy  string `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy" mapstructure:"https_proxy"`
}

// CacheConfig configures the result cache.
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"` // disk layer location
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// LogConfig configures zerolog output.
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
	File  string `yaml:"file" mapstructure:"file"` // rotated file sink, "" = console only
}

// DefaultConfig returns the documented default policy.
func DefaultConfig() *Config {
	return &Config{
		Scoring: ScoringConfig{
			Weights: map[AttributeKind]float64{
				KindNominalSize:   0.35,
				KindAngle:         0.35,
				KindMaterial:      0.30,
				KindWallThickness: 0.15,
				KindPressure:      0.15,
				KindStandard:      0.10,
				KindGrade:         0.10,
			},
			ExactTolerance:           0.02,
			ZeroTolerance:            0.10,
			MinCategoricalSimilarity: 0.4,
			AcceptThreshold:          0.5,
		},
		Assist: AssistConfig{
			Provider:            "", // disabled by default
			Timeout:             30 * time.Second,
			MaxTokens:           500,
			ConfidenceThreshold: 0.5,
			AssistConfidence:    0.6,
			RequestsPerSecond:   2,
			Burst:               2,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".offerdoffer-cache",
			MemoryTTL: 15 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
