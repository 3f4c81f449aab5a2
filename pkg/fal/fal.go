package fal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sefazor/reelmint-backend/internal/models"
	"github.com/sefazor/reelmint-backend/pkg/apperror"
	"go.uber.org/zap"
)

const defaultBaseURL = "https://fal.run"

// Client calls FAL.ai hosted models: Flux for avatar images and Veo for
// video generation.
type Client struct {
	apiKey    string
	baseURL   string
	fluxModel string
	veoModel  string
	http      *http.Client
	logger    *zap.Logger
}

type Config struct {
	APIKey    string
	FluxModel string
	VeoModel  string
	Timeout   time.Duration
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	return &Client{
		apiKey:    cfg.APIKey,
		baseURL:   defaultBaseURL,
		fluxModel: cfg.FluxModel,
		veoModel:  cfg.VeoModel,
		http:      &http.Client{Timeout: cfg.Timeout},
		logger:    logger.With(zap.String("component", "fal")),
	}
}

// VideoInput describes one Veo generation request.
type VideoInput struct {
	AvatarImageURL  string
	Script          string
	AspectRatio     string
	DurationSeconds int
}

// GenerateAvatar creates presenter images from the avatar settings. Errors
// surface to the caller; the orchestrator owns the fallback policy.
func (c *Client) GenerateAvatar(ctx context.Context, settings models.AvatarSettings) ([]string, error) {
	prompt := buildAvatarPrompt(settings)
	c.logger.Info("generating avatar", zap.String("prompt", prompt))

	payload := map[string]any{
		"prompt":                prompt,
		"image_size":            "portrait_4_3",
		"num_images":            1,
		"enable_safety_checker": true,
	}

	var parsed struct {
		Images []struct {
			URL string `json:"url"`
		} `json:"images"`
		Image struct {
			URL string `json:"url"`
		} `json:"image"`
		URL string `json:"url"`
	}
	if err := c.post(ctx, c.fluxModel, payload, &parsed); err != nil {
		return nil, err
	}

	var urls []string
	for _, img := range parsed.Images {
		if img.URL != "" {
			urls = append(urls, img.URL)
		}
	}
	if len(urls) == 0 && parsed.Image.URL != "" {
		urls = append(urls, parsed.Image.URL)
	}
	if len(urls) == 0 && parsed.URL != "" {
		urls = append(urls, parsed.URL)
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("fal response contained no images")
	}

	c.logger.Info("avatar generated", zap.Int("count", len(urls)))
	return urls, nil
}

// GenerateVideo submits a Veo request and returns the remote video URL.
func (c *Client) GenerateVideo(ctx context.Context, in VideoInput) (string, error) {
	c.logger.Info("generating video",
		zap.String("model", c.veoModel),
		zap.Int("script_length", len(in.Script)),
		zap.Int("duration", in.DurationSeconds))

	payload := map[string]any{
		"input": map[string]any{
			"prompt":       in.Script,
			"image_url":    in.AvatarImageURL,
			"aspect_ratio": in.AspectRatio,
			"duration":     in.DurationSeconds,
		},
	}

	var raw map[string]json.RawMessage
	if err := c.post(ctx, c.veoModel, payload, &raw); err != nil {
		return "", apperror.Upstream(apperror.CodeVideoGeneration, "video generation failed", err)
	}

	videoURL := extractVideoURL(raw)
	if videoURL == "" {
		c.logger.Error("response missing video URL")
		return "", apperror.Upstream(apperror.CodeVideoGeneration, "video generation response missing video URL", nil)
	}

	c.logger.Info("video generated", zap.String("url", videoURL))
	return videoURL, nil
}

func (c *Client) post(ctx context.Context, model string, payload any, dest any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal fal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/%s", c.baseURL, model), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build fal request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Key "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fal request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("fal request failed: %d %s: %s", resp.StatusCode, resp.Status, strings.TrimSpace(string(text)))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode fal response: %w", err)
	}
	return nil
}

// extractVideoURL tries the response shapes different Veo model versions use.
func extractVideoURL(raw map[string]json.RawMessage) string {
	type urlHolder struct {
		URL string `json:"url"`
	}

	if v, ok := raw["video"]; ok {
		var h urlHolder
		if json.Unmarshal(v, &h) == nil && h.URL != "" {
			return h.URL
		}
	}
	if v, ok := raw["output"]; ok {
		var out struct {
			Video    urlHolder `json:"video"`
			VideoURL string    `json:"video_url"`
		}
		if json.Unmarshal(v, &out) == nil {
			if out.Video.URL != "" {
				return out.Video.URL
			}
			if out.VideoURL != "" {
				return out.VideoURL
			}
		}
		var list []urlHolder
		if json.Unmarshal(v, &list) == nil && len(list) > 0 && list[0].URL != "" {
			return list[0].URL
		}
	}
	if v, ok := raw["data"]; ok {
		var out struct {
			VideoURL string `json:"video_url"`
		}
		if json.Unmarshal(v, &out) == nil && out.VideoURL != "" {
			return out.VideoURL
		}
	}
	return ""
}

func buildAvatarPrompt(settings models.AvatarSettings) string {
	parts := []string{"Professional UGC content creator portrait photo"}

	if settings.Gender != "" {
		parts = append(parts, settings.Gender+" person")
	} else {
		parts = append(parts, "person")
	}
	if settings.Ethnicity != "" {
		parts = append(parts, settings.Ethnicity+" appearance")
	}
	if settings.Vibe != "" {
		parts = append(parts, settings.Vibe+" style")
	} else {
		parts = append(parts, "casual friendly style")
	}
	if settings.Background != "" {
		parts = append(parts, settings.Background+" background")
	} else {
		parts = append(parts, "modern clean background")
	}

	parts = append(parts,
		"high quality, professional lighting, sharp focus, realistic",
		"looking at camera, friendly expression, approachable")

	return strings.Join(parts, ", ")
}
