package gemini

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"

	"github.com/diogo/llm-phishing-analyzer/internal/core"
)

// GeminiClient is an LLMClient implementation backed by Google Gemini.
// Gemini models accept inline image data, so this backend is
// vision-capable.
type GeminiClient struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	modelName string
	logger    *zap.Logger
}

// NewGeminiClient creates a new Gemini client.
func NewGeminiClient(
	client *genai.Client,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	logger *zap.Logger,
) *GeminiClient {
	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(int32(maxTokens))

	return &GeminiClient{
		client:    client,
		model:     model,
		modelName: modelName,
		logger:    logger,
	}
}

// Close closes the underlying Gemini client.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Name implements core.LLMClient.
func (c *GeminiClient) Name() string { return "gemini" }

// SupportsVision implements core.LLMClient.
func (c *GeminiClient) SupportsVision() bool { return true }

// Analyze implements core.LLMClient.
func (c *GeminiClient) Analyze(ctx context.Context, req *core.InferenceRequest) (*core.InferenceResponse, error) {
	text, err := c.generate(ctx, req.System, req.Prompt, req.Image)
	if err != nil {
		return nil, err
	}

	result, err := parseInference(text)
	if err != nil {
		return nil, err
	}
	result.ModelUsed = c.modelName
	return result, nil
}

// Chat implements core.LLMClient.
func (c *GeminiClient) Chat(ctx context.Context, system, prompt string) (string, error) {
	return c.generate(ctx, system, prompt, nil)
}

// generate sends the prompt (and optional inline image) and returns the raw
// text of the first candidate.
func (c *GeminiClient) generate(ctx context.Context, system, prompt string, image []byte) (string, error) {
	parts := []genai.Part{genai.Text(system + "\n\n" + prompt)}
	if len(image) > 0 {
		parts = append(parts, genai.ImageData("jpeg", image))
	}

	resp, err := c.model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate content with Gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from Gemini")
	}

	return fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]), nil
}

// parseInference parses the model's JSON reply, extracting the object from
// surrounding prose if the model wrapped it.
func parseInference(responseText string) (*core.InferenceResponse, error) {
	var result core.InferenceResponse
	if err := json.Unmarshal([]byte(responseText), &result); err == nil {
		return &result, nil
	}

	jsonStart := -1
	jsonEnd := -1
	for i := 0; i < len(responseText); i++ {
		if responseText[i] == '{' {
			jsonStart = i
			break
		}
	}
	for i := len(responseText) - 1; i >= 0; i-- {
		if responseText[i] == '}' {
			jsonEnd = i + 1
			break
		}
	}
	if jsonStart < 0 || jsonEnd <= jsonStart {
		return nil, fmt.Errorf("failed to extract JSON from LLM response")
	}
	if err := json.Unmarshal([]byte(responseText[jsonStart:jsonEnd]), &result); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response as JSON: %w", err)
	}
	return &result, nil
}
