package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/sefazor/reelmint-backend/pkg/apperror"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// maxContentLength bounds how much page content is sent for analysis.
// Large product pages are truncated, keeping the head where product data lives.
const maxContentLength = 250000

const extractionPrompt = `You are an intelligent HTML analyzer for e-commerce product pages.

I will provide the original page URL and the page source (possibly truncated).
Analyze it and respond with a single JSON object, and nothing else, in this exact shape:

{
  "title": string | null,
  "description": string | null,
  "images": string[]
}

Rules:
- "title": the main product name, or null if not confident.
- "description": a short 1-3 sentence product summary, or null.
- "images": absolute URLs of distinct product images only. Exclude logos,
  icons, badges, UI elements, tracking pixels and tiny thumbnails.
  Resolve relative URLs against the page URL and remove duplicates.
- Output only the JSON object. No markdown, no explanation.`

const scriptPrompt = `You are a professional UGC script writer for short-form social video.

Write an engaging, authentic script with exactly these 3 sections:

[HOOK] - 3-5 seconds, grab attention immediately
[MAIN CONTENT] - 15-20 seconds, showcase product value
[CTA] - 3-5 seconds, clear call to action

Rules:
- First person, conversational, not scripted-sounding
- Platform-specific language
- Total 25-35 seconds when spoken
- Output only the script text with the 3 section headers.`

// ExtractedProduct is the structured extraction result. Title and description
// are nil when the model could not infer them.
type ExtractedProduct struct {
	URL         string
	Title       *string
	Description *string
	Images      []string
}

// ScriptParams describes one script generation request.
type ScriptParams struct {
	Title          *string
	Description    *string
	Tone           string
	TargetAudience string
	Platform       string
}

// Gemini wraps the generative-ai client for both pipeline uses: structured
// product extraction and script generation.
type Gemini struct {
	model  *genai.GenerativeModel
	logger *zap.Logger
}

func NewGemini(ctx context.Context, apiKey, modelName string, logger *zap.Logger) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Gemini{
		model:  client.GenerativeModel(modelName),
		logger: logger.With(zap.String("component", "gemini")),
	}, nil
}

func (g *Gemini) ExtractProduct(ctx context.Context, pageURL, content string) (*ExtractedProduct, error) {
	if len(content) > maxContentLength {
		g.logger.Warn("truncating page content",
			zap.Int("original", len(content)),
			zap.Int("truncated", maxContentLength))
		content = content[:maxContentLength]
	}

	userPrompt := fmt.Sprintf("URL: %s\n\nHTML Content:\n%s", pageURL, content)

	resp, err := g.model.GenerateContent(ctx, genai.Text(extractionPrompt), genai.Text(userPrompt))
	if err != nil {
		return nil, apperror.Upstream(apperror.CodeExtractionParse, "product extraction failed", err)
	}

	text, err := responseText(resp)
	if err != nil {
		return nil, apperror.Upstream(apperror.CodeExtractionParse, "product extraction returned no content", err)
	}

	var parsed struct {
		Title       *string  `json:"title"`
		Description *string  `json:"description"`
		Images      []string `json:"images"`
	}
	if err := json.Unmarshal([]byte(stripFences(text)), &parsed); err != nil {
		g.logger.Error("extraction response is not valid JSON", zap.String("preview", preview(text, 200)))
		return nil, apperror.Upstream(apperror.CodeExtractionParse, "failed to parse extraction response as JSON", err)
	}

	product := &ExtractedProduct{
		URL:         pageURL,
		Title:       trimNullable(parsed.Title),
		Description: trimNullable(parsed.Description),
		Images:      normalizeImages(parsed.Images),
	}

	g.logger.Info("extraction complete",
		zap.Int("images", len(product.Images)),
		zap.Bool("has_title", product.Title != nil))

	return product, nil
}

func (g *Gemini) GenerateScript(ctx context.Context, params ScriptParams) (string, error) {
	productName := "this amazing product"
	if params.Title != nil {
		productName = *params.Title
	}
	productDesc := "incredible features and quality"
	if params.Description != nil {
		productDesc = *params.Description
	}

	userPrompt := fmt.Sprintf(`Generate a UGC script for:

Product: %s
Description: %s
Platform: %s
Target Audience: %s
Tone: %s

Follow the format: [HOOK], [MAIN CONTENT], [CTA].`,
		productName, productDesc, params.Platform, params.TargetAudience, params.Tone)

	resp, err := g.model.GenerateContent(ctx, genai.Text(scriptPrompt), genai.Text(userPrompt))
	if err != nil {
		return "", fmt.Errorf("script generation failed: %w", err)
	}

	text, err := responseText(resp)
	if err != nil {
		return "", err
	}

	script := strings.TrimSpace(text)
	g.logger.Info("script generated", zap.Int("length", len(script)))
	return script, nil
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("model returned no content")
	}
	part, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("model returned non-text content")
	}
	return string(part), nil
}

// stripFences removes markdown code fences the model sometimes wraps JSON in.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func trimNullable(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// normalizeImages keeps absolute http(s) URLs and removes duplicates,
// preserving order.
func normalizeImages(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	images := make([]string, 0, len(raw))
	for _, img := range raw {
		img = strings.TrimSpace(img)
		if img == "" || !strings.HasPrefix(img, "http") || seen[img] {
			continue
		}
		seen[img] = true
		images = append(images, img)
	}
	return images
}

func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
