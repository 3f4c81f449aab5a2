package models

// Warning codes surfaced on partial-success scrape results.
const (
	WarningEmptyContent  = "EMPTY_CONTENT"
	WarningNoImagesFound = "NO_IMAGES_FOUND"
)

type ScrapeProductRequest struct {
	ProductURL string `json:"productUrl" validate:"required,url"`
}

// ScrapedProduct is the structured result of scrape + extraction. Title and
// description stay nullable so callers can distinguish "absent" from "empty".
type ScrapedProduct struct {
	URL         string   `json:"url"`
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Images      []string `json:"images"`
}

type ScrapeProductResponse struct {
	Product ScrapedProduct `json:"product"`
	Warning string         `json:"warning,omitempty"`
}

type PrepareAssetsRequest struct {
	UserExternalID    string         `json:"userExternalId" validate:"required"`
	ProductURL        string         `json:"productUrl" validate:"required,url"`
	SelectedImageURLs []string       `json:"selectedImageUrls"`
	AvatarSettings    AvatarSettings `json:"avatarSettings"`
	Metadata          struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
	} `json:"metadata"`
	Tone           string `json:"tone"`
	TargetAudience string `json:"targetAudience"`
	Platform       string `json:"platform" validate:"omitempty,platform"`
}

type PrepareAssetsResponse struct {
	ProjectID    uint         `json:"projectId"`
	AvatarImages []string     `json:"avatarImages"`
	Script       ScriptResult `json:"script"`
}

// ScriptResult carries the generated script together with whether the
// deterministic fallback template was used instead of a real generation.
type ScriptResult struct {
	Raw                   string `json:"raw"`
	ApproxDurationSeconds int    `json:"approxDurationSeconds"`
	FallbackUsed          bool   `json:"fallbackUsed"`
	AvatarFallbackUsed    bool   `json:"avatarFallbackUsed"`
}

type GenerateVideoRequest struct {
	ProjectID       uint   `json:"projectId" validate:"required"`
	StripeSessionID string `json:"stripeSessionId" validate:"required"`
}

type GenerateVideoResponse struct {
	ProjectID        uint   `json:"projectId"`
	VideoURL         string `json:"videoUrl"`
	ThumbnailURL     string `json:"thumbnailUrl,omitempty"`
	StoragePath      string `json:"storagePath,omitempty"`
	DurationSeconds  int    `json:"durationSeconds"`
	CreditsRemaining int    `json:"creditsRemaining"`
}
