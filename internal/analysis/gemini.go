package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	defaultModel      = "gemini-2.5-flash"
	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 2
	retryBackoff      = 2 * time.Second
)

// contentGenerator is the seam between the analyzer and the Gemini API,
// kept narrow so tests can substitute a fake.
type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

type geminiGenerator struct {
	client    *genai.Client
	modelName string
}

func (g *geminiGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
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
	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}
	return output, nil
}

// GeminiAnalyzer implements Analyzer on the Gemini API. Every call runs under
// a bounded timeout with a fixed retry budget; any exhausted failure degrades
// to the neutral result instead of surfacing an error, per the capability
// contract.
type GeminiAnalyzer struct {
	generator  contentGenerator
	logger     *zap.Logger
	timeout    time.Duration
	maxRetries int
}

type GeminiOptions struct {
	Model      string
	Timeout    time.Duration
	MaxRetries int
}

// NewGeminiAnalyzer builds the analyzer. An empty API key yields a degraded
// analyzer that always returns neutral results, matching the "analysis is
// optional, pipeline keeps moving" posture.
func NewGeminiAnalyzer(ctx context.Context, apiKey string, opts GeminiOptions, logger *zap.Logger) (*GeminiAnalyzer, error) {
	a := &GeminiAnalyzer{
		logger:     logger,
		timeout:    opts.Timeout,
		maxRetries: opts.MaxRetries,
	}
	if a.timeout <= 0 {
		a.timeout = defaultTimeout
	}
	if a.maxRetries <= 0 {
		a.maxRetries = defaultMaxRetries
	}

	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		if logger != nil {
			logger.Warn("gemini api key not configured, analysis degraded to neutral results")
		}
		return a, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}
	a.generator = &geminiGenerator{client: client, modelName: model}
	return a, nil
}

func (a *GeminiAnalyzer) ExtractEntities(ctx context.Context, text string) Extraction {
	raw, err := a.generate(ctx, extractionPrompt(text))
	if err != nil {
		a.warn("entity extraction degraded", err)
		return Extraction{}
	}
	out, err := parseExtraction(raw)
	if err != nil {
		a.warn("entity extraction unparseable", err)
		return Extraction{}
	}
	return out
}

func (a *GeminiAnalyzer) DetectHiringSignal(ctx context.Context, text, companyName string) SignalDetection {
	raw, err := a.generate(ctx, signalPrompt(text, companyName))
	if err != nil {
		a.warn("signal detection degraded", err)
		return SignalDetection{}
	}
	out, err := parseSignalDetection(raw)
	if err != nil {
		a.warn("signal detection unparseable", err)
		return SignalDetection{}
	}
	return out
}

func (a *GeminiAnalyzer) Summarize(ctx context.Context, lines []string) string {
	if len(lines) == 0 {
		return "No results to summarize."
	}
	raw, err := a.generate(ctx, summaryPrompt(lines))
	if err != nil {
		a.warn("summary degraded", err)
		return fmt.Sprintf("Found %d companies with opportunities.", len(lines))
	}
	return strings.TrimSpace(raw)
}

var errNotConfigured = errors.New("analyzer not configured")

func (a *GeminiAnalyzer) generate(ctx context.Context, prompt string) (string, error) {
	if a == nil || a.generator == nil {
		return "", errNotConfigured
	}
	var lastErr error
	for attempt := 0; attempt <= a.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(retryBackoff):
			}
		}
		callCtx, cancel := context.WithTimeout(ctx, a.timeout)
		raw, err := a.generator.GenerateContent(callCtx, prompt)
		cancel()
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return "", lastErr
}

func (a *GeminiAnalyzer) warn(msg string, err error) {
	if a != nil && a.logger != nil {
		a.logger.Warn(msg, zap.Error(err))
	}
}
