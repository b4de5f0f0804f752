package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/hh-screener/internal/logger"
)

const (
	ProviderName = "gemini"

	defaultModel         = "gemini-2.5-flash"
	defaultMaxRetries    = 3
	defaultRetryDelay    = time.Second
	defaultMaxRetryDelay = 30 * time.Second
	defaultTemperature   = 0.2
)

// modelsAPI is the part of genai.Models used by the generator.
type modelsAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Generator wraps the Google GenAI client to provide JSON prompt/response interactions.
type Generator struct {
	models        modelsAPI
	model         string
	maxRetries    int
	retryDelay    time.Duration
	maxRetryDelay time.Duration
	logger        *zap.Logger
}

type GeneratorConfig struct {
	APIKey     string
	Model      string
	MaxRetries int
	// RetryDelay is the base backoff delay. MaxRetryDelay caps it; a provider
	// asking to wait longer than the cap is not retried.
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration
}

// NewGenerator creates a new Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, cfg GeneratorConfig, log *zap.Logger) (*Generator, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newGenerator(client.Models, cfg, log), nil
}

func newGenerator(models modelsAPI, cfg GeneratorConfig, log *zap.Logger) *Generator {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	g := &Generator{
		models:        models,
		model:         model,
		maxRetries:    cfg.MaxRetries,
		retryDelay:    cfg.RetryDelay,
		maxRetryDelay: cfg.MaxRetryDelay,
	}
	g.logger = logger.WithCommonFields(log, ProviderName, model)
	return g
}

// GenerateContent sends the system instruction and message to Gemini in JSON mode
// and returns the textual response. Transient failures are retried with backoff.
func (g *Generator) GenerateContent(ctx context.Context, system, message string) (string, error) {
	if g == nil || g.models == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	message = strings.TrimSpace(message)
	if message == "" {
		return "", errors.New("prompt must not be empty")
	}

	temperature := float32(defaultTemperature)
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      &temperature,
	}
	if system = strings.TrimSpace(system); system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	var output string
	err := retry.Do(
		func() error {
			resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(message), config)
			if err != nil {
				if !g.retryable(err) {
					return retry.Unrecoverable(err)
				}
				return err
			}

			text := responseText(resp)
			if text == "" {
				return errors.New("gemini api returned empty response")
			}
			output = text
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(g.attempts())),
		retry.Delay(g.delay()),
		retry.MaxDelay(g.maxDelay()),
		retry.DelayType(retry.FullJitterBackoffDelay),
		retry.OnRetry(func(n uint, err error) {
			g.logger.Warn("gemini request failed, retrying",
				zap.Uint("attempt", n+1),
				zap.Error(err),
			)
		}),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	return output, nil
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}

func (g *Generator) attempts() int {
	if g.maxRetries <= 0 {
		return defaultMaxRetries
	}
	return g.maxRetries
}

func (g *Generator) delay() time.Duration {
	if g.retryDelay <= 0 {
		return defaultRetryDelay
	}
	return g.retryDelay
}

func (g *Generator) maxDelay() time.Duration {
	if g.maxRetryDelay <= 0 {
		return defaultMaxRetryDelay
	}
	return g.maxRetryDelay
}

// retryable reports whether err is worth another attempt: rate limits with a
// short enough wait, server errors and timeouts.
func (g *Generator) retryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return false
	}

	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		wait, ok := retryAfter(apiErr.Message)
		return !ok || wait <= g.maxDelay()
	case apiErr.Code == http.StatusRequestTimeout:
		return true
	case apiErr.Code >= http.StatusInternalServerError:
		return true
	default:
		return false
	}
}

var retryAfterPattern = regexp.MustCompile(`(?i)retry (?:after|in) (\d+(?:\.\d+)?) ?s(?:ec(?:ond)?s?)?\b`)

// retryAfter extracts the wait the provider asks for from an error message.
func retryAfter(message string) (time.Duration, bool) {
	match := retryAfterPattern.FindStringSubmatch(message)
	if match == nil {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, false
	}
	return time.Duration(seconds * float64(time.Second)), true
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	return strings.TrimSpace(builder.String())
}
