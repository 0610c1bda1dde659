package oracle

// Config holds configuration for the generative-model oracle.
type Config struct {
	// APIKey is the Anthropic API key. Empty disables the oracle tier.
	APIKey string `mapstructure:"api_key" default:""`
	// FlagshipModel handles category and naming questions.
	FlagshipModel string `mapstructure:"flagship_model" default:"claude-sonnet-4-20250514"`
	// EfficientModel handles simple detection questions (brand, type, stock).
	EfficientModel string `mapstructure:"efficient_model" default:"claude-3-5-haiku-20241022"`
	// MaxTokens caps the response size.
	MaxTokens int64 `mapstructure:"max_tokens" default:"1024"`
	// MaxExamples caps how many memory pairs are sent for consistency.
	MaxExamples int `mapstructure:"max_examples" default:"40"`
}

// Enabled reports whether an oracle can be constructed from this config.
func (c Config) Enabled() bool { return c.APIKey != "" }
