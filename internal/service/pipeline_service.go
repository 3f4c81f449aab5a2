package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"github.com/sefazor/reelmint-backend/internal/config"
	"github.com/sefazor/reelmint-backend/internal/models"
	"github.com/sefazor/reelmint-backend/internal/repository"
	"github.com/sefazor/reelmint-backend/pkg/apperror"
	"github.com/sefazor/reelmint-backend/pkg/fal"
	"github.com/sefazor/reelmint-backend/pkg/llm"
	"github.com/sefazor/reelmint-backend/pkg/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultTone           = "enthusiastic"
	defaultTargetAudience = "Gen Z"
	defaultPlatform       = "tiktok"

	videoAspectRatio     = "9:16"
	videoDurationSeconds = 30

	// placeholderAvatarURL is the last-resort presenter image when avatar
	// generation fails and no product image was selected.
	placeholderAvatarURL = "https://via.placeholder.com/512x512.png?text=Avatar"
)

// PipelineService sequences the scrape → analyze → script → avatar → video →
// persist → bill pipeline. All external capabilities and ledger stores are
// injected.
type PipelineService struct {
	scraper   PageScraper
	extractor ProductExtractor
	scripts   ScriptGenerator
	avatars   AvatarGenerator
	videoGen  VideoGenerator
	artifacts ArtifactStorage

	users    UserStore
	projects ProjectStore
	payments PaymentStore
	videos   VideoStore
	credits  CreditStore

	locker Locker
	cache  ScrapeCache

	cfg    config.PipelineConfig
	logger *zap.Logger
}

func NewPipelineService(
	pageScraper PageScraper,
	extractor ProductExtractor,
	scripts ScriptGenerator,
	avatars AvatarGenerator,
	videoGen VideoGenerator,
	artifacts ArtifactStorage,
	users UserStore,
	projects ProjectStore,
	payments PaymentStore,
	videos VideoStore,
	credits CreditStore,
	locker Locker,
	cache ScrapeCache,
	cfg config.PipelineConfig,
	logger *zap.Logger,
) *PipelineService {
	return &PipelineService{
		scraper:   pageScraper,
		extractor: extractor,
		scripts:   scripts,
		avatars:   avatars,
		videoGen:  videoGen,
		artifacts: artifacts,
		users:     users,
		projects:  projects,
		payments:  payments,
		videos:    videos,
		credits:   credits,
		locker:    locker,
		cache:     cache,
		cfg:       cfg,
		logger:    logger.With(zap.String("component", "pipeline")),
	}
}

// ScrapeProduct fetches and analyzes a product page. It is read-only: no
// ledger rows are touched. Thin pages short-circuit before the extraction
// call, and a page without product images is still a success.
func (s *PipelineService) ScrapeProduct(ctx context.Context, productURL string) (*models.ScrapeProductResponse, error) {
	if _, err := url.ParseRequestURI(productURL); err != nil {
		return nil, apperror.Validation("invalid productUrl")
	}

	cacheKey := "scrape:" + productURL
	if s.cache != nil {
		var cached models.ScrapeProductResponse
		if hit, err := s.cache.GetJSON(ctx, cacheKey, &cached); err == nil && hit {
			s.logger.Info("scrape cache hit", zap.String("url", productURL))
			return &cached, nil
		}
	}

	page, err := s.scraper.FetchPage(ctx, productURL)
	if err != nil {
		return nil, err
	}

	if len(page.Content) < s.cfg.MinContentLength {
		s.logger.Warn("page content empty or too short, skipping extraction",
			zap.String("url", productURL),
			zap.Int("length", len(page.Content)))
		return &models.ScrapeProductResponse{
			Product: models.ScrapedProduct{URL: productURL, Images: []string{}},
			Warning: models.WarningEmptyContent,
		}, nil
	}

	product, err := s.extractor.ExtractProduct(ctx, productURL, page.Content)
	if err != nil {
		return nil, err
	}

	resp := &models.ScrapeProductResponse{
		Product: models.ScrapedProduct{
			URL:         product.URL,
			Title:       product.Title,
			Description: product.Description,
			Images:      product.Images,
		},
	}
	if len(product.Images) == 0 {
		resp.Warning = models.WarningNoImagesFound
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cacheKey, resp, s.cfg.ScrapeCacheTTL); err != nil {
			s.logger.Warn("failed to cache scrape result", zap.Error(err))
		}
	}

	s.logger.Info("product scraped",
		zap.String("url", productURL),
		zap.Int("images", len(product.Images)),
		zap.Bool("has_title", product.Title != nil))

	return resp, nil
}

// PrepareAssets creates (or reuses) a project and generates its script and
// avatar assets. Script and avatar generation degrade gracefully: a failed
// generation falls back to a deterministic template or the first selected
// product image, and the result flags which path was taken.
func (s *PipelineService) PrepareAssets(ctx context.Context, req models.PrepareAssetsRequest) (*models.PrepareAssetsResponse, error) {
	if req.UserExternalID == "" {
		return nil, apperror.Validation("userExternalId is required")
	}
	if _, err := url.ParseRequestURI(req.ProductURL); err != nil {
		return nil, apperror.Validation("invalid productUrl")
	}

	tone := req.Tone
	if tone == "" {
		tone = defaultTone
	}
	audience := req.TargetAudience
	if audience == "" {
		audience = defaultTargetAudience
	}
	platform := req.Platform
	if platform == "" {
		platform = defaultPlatform
	}

	user, err := s.users.GetOrCreate(req.UserExternalID)
	if err != nil {
		return nil, apperror.Internal("failed to resolve user", err)
	}

	project, err := s.resolveProject(user.ID, req.ProductURL)
	if err != nil {
		return nil, err
	}

	script, scriptFallback := s.generateScript(ctx, req, tone, audience, platform)
	avatarImages, avatarFallback := s.generateAvatar(ctx, req.SelectedImageURLs, req.AvatarSettings)

	settings := req.AvatarSettings
	if err := s.projects.UpdateAssets(project.ID, &settings, script); err != nil {
		return nil, apperror.Internal("failed to persist project assets", err)
	}

	s.logger.Info("assets prepared",
		zap.Uint("project_id", project.ID),
		zap.Bool("script_fallback", scriptFallback),
		zap.Bool("avatar_fallback", avatarFallback))

	return &models.PrepareAssetsResponse{
		ProjectID:    project.ID,
		AvatarImages: avatarImages,
		Script: models.ScriptResult{
			Raw:                   script,
			ApproxDurationSeconds: approxDurationSeconds(script),
			FallbackUsed:          scriptFallback,
			AvatarFallbackUsed:    avatarFallback,
		},
	}, nil
}

// resolveProject creates a fresh draft, or reuses the newest existing
// project for the same user and URL when the reuse policy is enabled.
// A reused project must not already carry a generated video.
func (s *PipelineService) resolveProject(userID uint, productURL string) (*models.Project, error) {
	if s.cfg.ReuseDraftProjects {
		existing, err := s.projects.GetLatestByUserAndURL(userID, productURL)
		switch {
		case err == nil:
			if existing.Status == models.ProjectStatusVideoReady {
				return nil, apperror.Precondition(apperror.CodeProjectFinalized,
					"project already has a generated video; start a new project")
			}
			return existing, nil
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, apperror.Internal("failed to look up project", err)
		}
	}

	project, err := s.projects.Create(&models.Project{
		UserID:     userID,
		ProductURL: productURL,
		Status:     models.ProjectStatusDraft,
	})
	if err != nil {
		return nil, apperror.Internal("failed to create project", err)
	}
	return project, nil
}

func (s *PipelineService) generateScript(ctx context.Context, req models.PrepareAssetsRequest, tone, audience, platform string) (string, bool) {
	productName := "this product"
	if req.Metadata.Title != nil {
		productName = *req.Metadata.Title
	}

	script, err := s.scripts.GenerateScript(ctx, llm.ScriptParams{
		Title:          req.Metadata.Title,
		Description:    req.Metadata.Description,
		Tone:           tone,
		TargetAudience: audience,
		Platform:       platform,
	})
	if err != nil {
		s.logger.Warn("script generation failed, using template", zap.Error(err))
		productDesc := "amazing features"
		if req.Metadata.Description != nil {
			productDesc = *req.Metadata.Description
		}
		return fallbackScript(productName, productDesc, audience, platform), true
	}

	if !hasAllSections(script) {
		s.logger.Warn("script missing required sections, reformatting")
		return reformatScript(script, productName, audience, platform), false
	}
	return script, false
}

func (s *PipelineService) generateAvatar(ctx context.Context, selectedImages []string, settings models.AvatarSettings) ([]string, bool) {
	urls, err := s.avatars.GenerateAvatar(ctx, settings)
	if err == nil && len(urls) > 0 {
		return urls, false
	}
	if err != nil {
		s.logger.Warn("avatar generation failed, falling back", zap.Error(err))
	}
	if len(selectedImages) > 0 {
		return []string{selectedImages[0]}, true
	}
	return []string{placeholderAvatarURL}, true
}

// GenerateVideo runs the five-step billed sequence: payment check →
// idempotency check → readiness check → generation + storage → settlement.
// The per-(project, session) lock plus the insert-if-absent reservation
// guarantee at most one generation and one credit decrement per key.
func (s *PipelineService) GenerateVideo(ctx context.Context, projectID uint, sessionID string) (*models.GenerateVideoResponse, error) {
	payment, err := s.payments.GetBySessionID(sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("payment not found")
	}
	if err != nil {
		return nil, apperror.Internal("failed to look up payment", err)
	}
	if payment.Status != models.PaymentStatusPaid {
		return nil, apperror.PaymentRequired("payment not confirmed")
	}

	lockKey := fmt.Sprintf("videogen:%d:%s", projectID, sessionID)
	acquired, err := s.locker.Acquire(ctx, lockKey)
	if err != nil {
		return nil, apperror.Internal("failed to acquire generation lock", err)
	}
	if !acquired {
		return nil, apperror.New(409, apperror.CodeGenerationInProgress,
			"a generation for this project and session is already running")
	}
	defer func() {
		if err := s.locker.Release(context.WithoutCancel(ctx), lockKey); err != nil {
			s.logger.Warn("failed to release generation lock", zap.Error(err))
		}
	}()

	existing, err := s.videos.GetByProjectAndSession(projectID, sessionID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.Internal("failed to look up video", err)
	}
	if existing != nil && !existing.IsPlaceholder {
		s.logger.Info("returning existing video for idempotent request",
			zap.Uint("project_id", projectID),
			zap.String("session_id", sessionID))
		return s.videoResponse(projectID, payment.UserID, existing)
	}
	if existing != nil {
		s.logger.Warn("found placeholder video record, regenerating in place",
			zap.Uint("video_id", existing.ID),
			zap.String("old_url", existing.VideoURL))
	}

	project, err := s.projects.GetByID(projectID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("project not found")
	}
	if err != nil {
		return nil, apperror.Internal("failed to look up project", err)
	}
	if !project.AssetsReady() {
		return nil, apperror.Precondition(apperror.CodeAssetsNotReady,
			"project assets are not ready; call prepare-assets first")
	}

	user, err := s.users.GetByID(payment.UserID)
	if err != nil {
		return nil, apperror.Internal("failed to look up user", err)
	}

	// Reserve the idempotency key before any external call. created=false
	// here means a placeholder already existed (legacy stub or our own
	// earlier failed run) and we finalize that row instead of inserting.
	video, created, err := s.videos.Reserve(projectID, sessionID)
	if err != nil {
		return nil, apperror.Internal("failed to reserve video record", err)
	}
	if !created && !video.IsPlaceholder {
		return s.videoResponse(projectID, payment.UserID, video)
	}

	artifact, genErr := s.runGeneration(ctx, project, user.ExternalID)
	if genErr != nil {
		if created {
			if err := s.videos.Delete(video.ID); err != nil {
				s.logger.Error("failed to release video reservation", zap.Error(err))
			}
		}
		return nil, genErr
	}

	if err := s.videos.Finalize(video.ID, artifact.PublicURL, artifact.StoragePath, videoDurationSeconds); err != nil {
		return nil, apperror.Internal("failed to persist video record", err)
	}

	// Settlement: bill only the first successful generation for this key.
	// Placeholder finalizations (legacy rows, retried reservations) were
	// either billed before or never billable.
	if created {
		if err := s.credits.Spend(payment.UserID, 1); err != nil {
			if errors.Is(err, repository.ErrInsufficientCredits) {
				return nil, apperror.New(402, apperror.CodeInsufficientCredits, "no credits remaining")
			}
			return nil, apperror.Internal("failed to decrement credits", err)
		}
	}

	if err := s.projects.UpdateStatus(projectID, models.ProjectStatusVideoReady); err != nil {
		return nil, apperror.Internal("failed to update project status", err)
	}

	creditsRemaining, err := s.credits.Get(payment.UserID)
	if err != nil {
		return nil, apperror.Internal("failed to read credit balance", err)
	}

	s.logger.Info("video generated",
		zap.Uint("project_id", projectID),
		zap.String("session_id", sessionID),
		zap.String("video_url", artifact.PublicURL),
		zap.Bool("billed", created))

	return &models.GenerateVideoResponse{
		ProjectID:        projectID,
		VideoURL:         artifact.PublicURL,
		StoragePath:      artifact.StoragePath,
		DurationSeconds:  videoDurationSeconds,
		CreditsRemaining: creditsRemaining,
	}, nil
}

// runGeneration performs the two external calls: video generation, then
// durable storage. A failure in either leaves no partial artifact record.
func (s *PipelineService) runGeneration(ctx context.Context, project *models.Project, userExternalID string) (*storage.StoredArtifact, error) {
	genCtx, cancel := context.WithTimeout(ctx, s.cfg.GenerationTimeout)
	defer cancel()

	avatarImageURL := placeholderAvatarURL
	if urls, err := s.avatars.GenerateAvatar(genCtx, *project.AvatarSettings); err == nil && len(urls) > 0 {
		avatarImageURL = urls[0]
	} else if err != nil {
		s.logger.Warn("avatar regeneration failed, using placeholder", zap.Error(err))
	}

	remoteURL, err := s.videoGen.GenerateVideo(genCtx, fal.VideoInput{
		AvatarImageURL:  avatarImageURL,
		Script:          project.ScriptText,
		AspectRatio:     videoAspectRatio,
		DurationSeconds: videoDurationSeconds,
	})
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("projects/%d/%s/video-%s.mp4", project.ID, userExternalID, uuid.NewString())
	return s.artifacts.StoreFromURL(genCtx, remoteURL, key)
}

func (s *PipelineService) videoResponse(projectID, userID uint, video *models.Video) (*models.GenerateVideoResponse, error) {
	creditsRemaining, err := s.credits.Get(userID)
	if err != nil {
		return nil, apperror.Internal("failed to read credit balance", err)
	}
	return &models.GenerateVideoResponse{
		ProjectID:        projectID,
		VideoURL:         video.VideoURL,
		ThumbnailURL:     video.ThumbnailURL,
		StoragePath:      video.StoragePath,
		DurationSeconds:  video.DurationSeconds,
		CreditsRemaining: creditsRemaining,
	}, nil
}
