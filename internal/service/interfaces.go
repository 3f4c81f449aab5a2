package service

import (
	"context"
	"time"

	"github.com/sefazor/reelmint-backend/internal/models"
	"github.com/sefazor/reelmint-backend/pkg/fal"
	"github.com/sefazor/reelmint-backend/pkg/llm"
	"github.com/sefazor/reelmint-backend/pkg/payment"
	"github.com/sefazor/reelmint-backend/pkg/scraper"
	"github.com/sefazor/reelmint-backend/pkg/storage"
	"github.com/stripe/stripe-go/v74"
)

// Capability contracts. Each adapter is explicitly constructed and injected,
// so tests substitute doubles without touching process-wide state.

type PageScraper interface {
	FetchPage(ctx context.Context, url string) (*scraper.PageResult, error)
}

type ProductExtractor interface {
	ExtractProduct(ctx context.Context, url, content string) (*llm.ExtractedProduct, error)
}

type ScriptGenerator interface {
	GenerateScript(ctx context.Context, params llm.ScriptParams) (string, error)
}

type AvatarGenerator interface {
	GenerateAvatar(ctx context.Context, settings models.AvatarSettings) ([]string, error)
}

type VideoGenerator interface {
	GenerateVideo(ctx context.Context, in fal.VideoInput) (string, error)
}

type ArtifactStorage interface {
	StoreFromURL(ctx context.Context, remoteURL, key string) (*storage.StoredArtifact, error)
}

type CheckoutProvider interface {
	CreateCheckoutSession(params payment.CheckoutParams) (*stripe.CheckoutSession, error)
}

// Locker serializes generation attempts per idempotency key across instances.
type Locker interface {
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// ScrapeCache is an optional read-through cache for scrape results.
type ScrapeCache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

// Ledger store contracts, implemented by the gorm repositories.

type UserStore interface {
	GetOrCreate(externalID string) (*models.User, error)
	GetByID(id uint) (*models.User, error)
}

type ProjectStore interface {
	Create(project *models.Project) (*models.Project, error)
	GetByID(id uint) (*models.Project, error)
	GetLatestByUserAndURL(userID uint, productURL string) (*models.Project, error)
	UpdateAssets(projectID uint, settings *models.AvatarSettings, scriptText string) error
	UpdateStatus(projectID uint, status models.ProjectStatus) error
}

type PaymentStore interface {
	Create(payment *models.Payment) error
	GetBySessionID(sessionID string) (*models.Payment, error)
	MarkPaid(sessionID string) (bool, error)
	MarkFailed(sessionID string) error
}

type VideoStore interface {
	GetByProjectAndSession(projectID uint, sessionID string) (*models.Video, error)
	Reserve(projectID uint, sessionID string) (*models.Video, bool, error)
	Finalize(videoID uint, videoURL, storagePath string, durationSeconds int) error
	Delete(videoID uint) error
}

type CreditStore interface {
	Get(userID uint) (int, error)
	Add(userID uint, amount int) error
	Spend(userID uint, amount int) error
}
