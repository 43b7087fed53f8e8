package classifier

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Provider names accepted in Config.Provider.
const (
	ProviderHTTP   = "http"
	ProviderOpenAI = "openai"
	ProviderONNX   = "onnx"
)

// Config selects and configures the classifier provider.
// Labels lists the model's output tags in class-index order.
// PositiveTag and NegativeTag name which labels mean which sentiment; they
// are set by the owning application rather than read from the classifier
// section, and default to Labels[1] and Labels[0].
type Config struct {
	Provider    string       `toml:"provider"`
	Labels      []string     `toml:"labels"`
	PositiveTag string       `toml:"-"`
	NegativeTag string       `toml:"-"`
	Timeout     string       `toml:"timeout"`
	HTTP        HTTPConfig   `toml:"http"`
	OpenAI      OpenAIConfig `toml:"openai"`
	ONNX        ONNXConfig   `toml:"onnx"`
}

// HTTPConfig addresses a hosted text-classification inference endpoint.
type HTTPConfig struct {
	BaseURL string `toml:"base_url"`
	Token   string `toml:"token"`
}

// OpenAIConfig addresses an OpenAI-compatible chat completion endpoint.
type OpenAIConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
}

// ONNXConfig locates the ONNX Runtime library and model artifacts.
// When ModelKey or TokenizerKey is set the artifact is fetched from blob
// storage into ModelPath or TokenizerPath at startup.
type ONNXConfig struct {
	LibraryPath   string   `toml:"library_path"`
	ModelPath     string   `toml:"model_path"`
	TokenizerPath string   `toml:"tokenizer_path"`
	ModelKey      string   `toml:"model_key"`
	TokenizerKey  string   `toml:"tokenizer_key"`
	InputNames    []string `toml:"input_names"`
	OutputName    string   `toml:"output_name"`
	MaxSeqLen     int      `toml:"max_seq_len"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Provider          string
	Labels            string
	Timeout           string
	HTTPBaseURL       string
	HTTPToken         string
	OpenAIBaseURL     string
	OpenAIAPIKey      string
	OpenAIModel       string
	ONNXLibraryPath   string
	ONNXModelPath     string
	ONNXTokenizerPath string
	ONNXModelKey      string
	ONNXTokenizerKey  string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.Labels != nil {
		c.Labels = overlay.Labels
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}

	if overlay.HTTP.BaseURL != "" {
		c.HTTP.BaseURL = overlay.HTTP.BaseURL
	}
	if overlay.HTTP.Token != "" {
		c.HTTP.Token = overlay.HTTP.Token
	}

	if overlay.OpenAI.BaseURL != "" {
		c.OpenAI.BaseURL = overlay.OpenAI.BaseURL
	}
	if overlay.OpenAI.APIKey != "" {
		c.OpenAI.APIKey = overlay.OpenAI.APIKey
	}
	if overlay.OpenAI.Model != "" {
		c.OpenAI.Model = overlay.OpenAI.Model
	}

	o, v := &c.ONNX, &overlay.ONNX
	if v.LibraryPath != "" {
		o.LibraryPath = v.LibraryPath
	}
	if v.ModelPath != "" {
		o.ModelPath = v.ModelPath
	}
	if v.TokenizerPath != "" {
		o.TokenizerPath = v.TokenizerPath
	}
	if v.ModelKey != "" {
		o.ModelKey = v.ModelKey
	}
	if v.TokenizerKey != "" {
		o.TokenizerKey = v.TokenizerKey
	}
	if v.InputNames != nil {
		o.InputNames = v.InputNames
	}
	if v.OutputName != "" {
		o.OutputName = v.OutputName
	}
	if v.MaxSeqLen != 0 {
		o.MaxSeqLen = v.MaxSeqLen
	}
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

func (c *Config) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderHTTP
	}
	if len(c.Labels) == 0 {
		c.Labels = []string{"LABEL_0", "LABEL_1"}
	}
	if c.Timeout == "" {
		c.Timeout = "30s"
	}
	if c.HTTP.BaseURL == "" {
		c.HTTP.BaseURL = "https://api-inference.huggingface.co/models/ju03/Chatbot_Emotion-classification"
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o-mini"
	}
	if c.ONNX.ModelPath == "" {
		c.ONNX.ModelPath = "models/sentiment/model.onnx"
	}
	if c.ONNX.TokenizerPath == "" {
		c.ONNX.TokenizerPath = "models/sentiment/tokenizer.json"
	}
	if len(c.ONNX.InputNames) == 0 {
		c.ONNX.InputNames = []string{"input_ids", "attention_mask"}
	}
	if c.ONNX.OutputName == "" {
		c.ONNX.OutputName = "logits"
	}
	if c.ONNX.MaxSeqLen <= 0 {
		c.ONNX.MaxSeqLen = 512
	}
}

func (c *Config) loadEnv(env *Env) {
	str := func(name string, dst *string) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	str(env.Provider, &c.Provider)
	str(env.Timeout, &c.Timeout)
	str(env.HTTPBaseURL, &c.HTTP.BaseURL)
	str(env.HTTPToken, &c.HTTP.Token)
	str(env.OpenAIBaseURL, &c.OpenAI.BaseURL)
	str(env.OpenAIAPIKey, &c.OpenAI.APIKey)
	str(env.OpenAIModel, &c.OpenAI.Model)
	str(env.ONNXLibraryPath, &c.ONNX.LibraryPath)
	str(env.ONNXModelPath, &c.ONNX.ModelPath)
	str(env.ONNXTokenizerPath, &c.ONNX.TokenizerPath)
	str(env.ONNXModelKey, &c.ONNX.ModelKey)
	str(env.ONNXTokenizerKey, &c.ONNX.TokenizerKey)

	if env.Labels != "" {
		if v := os.Getenv(env.Labels); v != "" {
			labels := make([]string, 0, 2)
			for l := range strings.SplitSeq(v, ",") {
				if trimmed := strings.TrimSpace(l); trimmed != "" {
					labels = append(labels, trimmed)
				}
			}
			c.Labels = labels
		}
	}
}

func (c *Config) validate() error {
	if len(c.Labels) < 2 {
		return fmt.Errorf("labels requires at least two tags, got %d", len(c.Labels))
	}
	if c.PositiveTag == "" {
		c.PositiveTag = c.Labels[1]
	}
	if c.NegativeTag == "" {
		c.NegativeTag = c.Labels[0]
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}

	switch c.Provider {
	case ProviderHTTP:
		if c.HTTP.BaseURL == "" {
			return fmt.Errorf("http.base_url required")
		}
	case ProviderOpenAI:
		if c.OpenAI.Model == "" {
			return fmt.Errorf("openai.model required")
		}
	case ProviderONNX:
		if c.ONNX.LibraryPath == "" {
			return fmt.Errorf("onnx.library_path required")
		}
		if c.ONNX.MaxSeqLen < 2 {
			return fmt.Errorf("invalid onnx.max_seq_len: %d", c.ONNX.MaxSeqLen)
		}
		if c.ONNX.ModelKey != "" && c.ONNX.ModelKey == c.ONNX.TokenizerKey {
			return fmt.Errorf("onnx.model_key and onnx.tokenizer_key must differ: %q", c.ONNX.ModelKey)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProvider, c.Provider)
	}
	return nil
}
