package classifier

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"

	"github.com/JaimeStill/verdict/pkg/formatting"
)

const systemPrompt = `You classify the sentiment of customer reviews for a food delivery app.
Reviews may be written in Korean or English.
Answer with a JSON object containing:
- "label": %s for a negative review, %s for a positive review
- "score": your confidence in that label, between 0 and 1`

type sentimentAnswer struct {
	Label string  `json:"label" jsonschema:"title=label,description=The sentiment class tag."`
	Score float64 `json:"score" jsonschema:"title=score,description=Confidence in the label between 0 and 1."`
}

type openAIClassifier struct {
	client openai.Client
	model  string
	prompt string
	format openai.ChatCompletionNewParamsResponseFormatUnion
	logger *slog.Logger
}

func newOpenAI(cfg *Config, logger *slog.Logger) *openAIClassifier {
	opts := []option.RequestOption{
		option.WithMaxRetries(0),
		option.WithRequestTimeout(cfg.TimeoutDuration()),
	}
	if cfg.OpenAI.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.OpenAI.BaseURL))
	}
	if cfg.OpenAI.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.OpenAI.APIKey))
	}

	return &openAIClassifier{
		client: openai.NewClient(opts...),
		model:  cfg.OpenAI.Model,
		prompt: fmt.Sprintf(systemPrompt, cfg.NegativeTag, cfg.PositiveTag),
		format: responseFormat(cfg.Labels),
		logger: logger,
	}
}

// responseFormat builds a strict JSON schema restricting "label" to the configured tags.
func responseFormat(labels []string) openai.ChatCompletionNewParamsResponseFormatUnion {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schema := reflector.Reflect(&sentimentAnswer{})

	if prop, ok := schema.Properties.Get("label"); ok {
		prop.Enum = make([]any, len(labels))
		for i, l := range labels {
			prop.Enum[i] = l
		}
	}

	return openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
			JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
				Name:        "review_sentiment",
				Description: openai.String("Sentiment label and confidence for one review"),
				Schema:      schema,
				Strict:      openai.Bool(true),
			},
		},
	}
}

func (o *openAIClassifier) Name() string {
	return ProviderOpenAI
}

func (o *openAIClassifier) Close() error {
	return nil
}

func (o *openAIClassifier) Classify(ctx context.Context, text string) (Prediction, error) {
	completion, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(o.prompt),
			openai.UserMessage(text),
		},
		Model:          shared.ChatModel(o.model),
		ResponseFormat: o.format,
		Temperature:    openai.Float(0),
	})
	if err != nil {
		return Prediction{}, fmt.Errorf("chat completion: %w", err)
	}

	if len(completion.Choices) == 0 {
		return Prediction{}, ErrEmptyResponse
	}

	answer, err := formatting.ParseReply[sentimentAnswer](completion.Choices[0].Message.Content)
	if err != nil {
		return Prediction{}, err
	}

	o.logger.Debug("completion received", "model", completion.Model, "tokens", completion.Usage.TotalTokens)

	return Prediction{
		Tag:   strings.TrimSpace(answer.Label),
		Score: answer.Score,
	}, nil
}
