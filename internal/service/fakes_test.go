package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sefazor/reelmint-backend/internal/config"
	"github.com/sefazor/reelmint-backend/internal/models"
	"github.com/sefazor/reelmint-backend/internal/repository"
	"github.com/sefazor/reelmint-backend/pkg/fal"
	"github.com/sefazor/reelmint-backend/pkg/llm"
	"github.com/sefazor/reelmint-backend/pkg/payment"
	"github.com/sefazor/reelmint-backend/pkg/scraper"
	"github.com/sefazor/reelmint-backend/pkg/storage"
	"github.com/stripe/stripe-go/v74"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func strPtr(s string) *string { return &s }

// Capability fakes.

type fakeScraper struct {
	result *scraper.PageResult
	err    error
	calls  int
}

func (f *fakeScraper) FetchPage(ctx context.Context, url string) (*scraper.PageResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeExtractor struct {
	product *llm.ExtractedProduct
	err     error
	calls   int
}

func (f *fakeExtractor) ExtractProduct(ctx context.Context, url, content string) (*llm.ExtractedProduct, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.product, nil
}

type fakeScripts struct {
	script     string
	err        error
	calls      int
	lastParams llm.ScriptParams
}

func (f *fakeScripts) GenerateScript(ctx context.Context, params llm.ScriptParams) (string, error) {
	f.calls++
	f.lastParams = params
	if f.err != nil {
		return "", f.err
	}
	return f.script, nil
}

type fakeAvatars struct {
	urls  []string
	err   error
	calls int
}

func (f *fakeAvatars) GenerateAvatar(ctx context.Context, settings models.AvatarSettings) ([]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.urls, nil
}

type fakeVideoGen struct {
	url   string
	err   error
	calls int
}

func (f *fakeVideoGen) GenerateVideo(ctx context.Context, in fal.VideoInput) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

type fakeArtifacts struct {
	artifact *storage.StoredArtifact
	err      error
	calls    int
	lastKey  string
}

func (f *fakeArtifacts) StoreFromURL(ctx context.Context, remoteURL, key string) (*storage.StoredArtifact, error) {
	f.calls++
	f.lastKey = key
	if f.err != nil {
		return nil, f.err
	}
	return f.artifact, nil
}

type fakeCheckout struct {
	session    *stripe.CheckoutSession
	err        error
	lastParams payment.CheckoutParams
}

func (f *fakeCheckout) CreateCheckoutSession(params payment.CheckoutParams) (*stripe.CheckoutSession, error) {
	f.lastParams = params
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

type fakeLocker struct {
	held        map[string]bool
	failAcquire bool
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: make(map[string]bool)}
}

func (f *fakeLocker) Acquire(ctx context.Context, key string) (bool, error) {
	if f.failAcquire || f.held[key] {
		return false, nil
	}
	f.held[key] = true
	return true, nil
}

func (f *fakeLocker) Release(ctx context.Context, key string) error {
	delete(f.held, key)
	return nil
}

type memCache struct {
	data map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte)}
}

func (c *memCache) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dest)
}

func (c *memCache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = b
	return nil
}

// In-memory ledger stores mirroring the gorm repository semantics.

type memUsers struct {
	byExternal map[string]*models.User
	nextID     uint
}

func newMemUsers() *memUsers {
	return &memUsers{byExternal: make(map[string]*models.User)}
}

func (m *memUsers) GetOrCreate(externalID string) (*models.User, error) {
	if u, ok := m.byExternal[externalID]; ok {
		return u, nil
	}
	m.nextID++
	u := &models.User{ID: m.nextID, ExternalID: externalID}
	m.byExternal[externalID] = u
	return u, nil
}

func (m *memUsers) GetByID(id uint) (*models.User, error) {
	for _, u := range m.byExternal {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type memProjects struct {
	byID   map[uint]*models.Project
	nextID uint
}

func newMemProjects() *memProjects {
	return &memProjects{byID: make(map[uint]*models.Project)}
}

func (m *memProjects) Create(project *models.Project) (*models.Project, error) {
	m.nextID++
	project.ID = m.nextID
	m.byID[project.ID] = project
	return project, nil
}

func (m *memProjects) GetByID(id uint) (*models.Project, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (m *memProjects) GetLatestByUserAndURL(userID uint, productURL string) (*models.Project, error) {
	var latest *models.Project
	for _, p := range m.byID {
		if p.UserID == userID && p.ProductURL == productURL {
			if latest == nil || p.ID > latest.ID {
				latest = p
			}
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return latest, nil
}

func (m *memProjects) UpdateAssets(projectID uint, settings *models.AvatarSettings, scriptText string) error {
	p, ok := m.byID[projectID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Status = models.ProjectStatusAssetsReady
	p.AvatarSettings = settings
	p.ScriptText = scriptText
	return nil
}

func (m *memProjects) UpdateStatus(projectID uint, status models.ProjectStatus) error {
	p, ok := m.byID[projectID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	// Forward-only, like the conditional UPDATE in the repository.
	if p.Status.Rank() < status.Rank() {
		p.Status = status
	}
	return nil
}

type memPayments struct {
	bySession map[string]*models.Payment
	nextID    uint
}

func newMemPayments() *memPayments {
	return &memPayments{bySession: make(map[string]*models.Payment)}
}

func (m *memPayments) Create(p *models.Payment) error {
	m.nextID++
	p.ID = m.nextID
	m.bySession[p.StripeSessionID] = p
	return nil
}

func (m *memPayments) GetBySessionID(sessionID string) (*models.Payment, error) {
	p, ok := m.bySession[sessionID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (m *memPayments) MarkPaid(sessionID string) (bool, error) {
	p, ok := m.bySession[sessionID]
	if !ok {
		return false, nil
	}
	if p.Status == models.PaymentStatusPaid || p.Status == models.PaymentStatusFailed {
		return false, nil
	}
	p.Status = models.PaymentStatusPaid
	return true, nil
}

func (m *memPayments) MarkFailed(sessionID string) error {
	p, ok := m.bySession[sessionID]
	if !ok {
		return nil
	}
	if p.Status != models.PaymentStatusPaid {
		p.Status = models.PaymentStatusFailed
	}
	return nil
}

type memVideos struct {
	byKey  map[string]*models.Video
	nextID uint
}

func newMemVideos() *memVideos {
	return &memVideos{byKey: make(map[string]*models.Video)}
}

func videoKey(projectID uint, sessionID string) string {
	return fmt.Sprintf("%d|%s", projectID, sessionID)
}

func (m *memVideos) GetByProjectAndSession(projectID uint, sessionID string) (*models.Video, error) {
	v, ok := m.byKey[videoKey(projectID, sessionID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return v, nil
}

func (m *memVideos) Reserve(projectID uint, sessionID string) (*models.Video, bool, error) {
	key := videoKey(projectID, sessionID)
	if v, ok := m.byKey[key]; ok {
		return v, false, nil
	}
	m.nextID++
	v := &models.Video{
		ID:              m.nextID,
		ProjectID:       projectID,
		StripeSessionID: sessionID,
		IsPlaceholder:   true,
	}
	m.byKey[key] = v
	return v, true, nil
}

func (m *memVideos) Finalize(videoID uint, videoURL, storagePath string, durationSeconds int) error {
	for _, v := range m.byKey {
		if v.ID == videoID {
			v.VideoURL = videoURL
			v.StoragePath = storagePath
			v.DurationSeconds = durationSeconds
			v.IsPlaceholder = false
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *memVideos) Delete(videoID uint) error {
	for k, v := range m.byKey {
		if v.ID == videoID {
			delete(m.byKey, k)
			return nil
		}
	}
	return nil
}

type memCredits struct {
	balances map[uint]int
	adds     int
	spends   int
}

func newMemCredits() *memCredits {
	return &memCredits{balances: make(map[uint]int)}
}

func (m *memCredits) Get(userID uint) (int, error) {
	return m.balances[userID], nil
}

func (m *memCredits) Add(userID uint, amount int) error {
	m.adds++
	m.balances[userID] += amount
	return nil
}

func (m *memCredits) Spend(userID uint, amount int) error {
	if m.balances[userID] < amount {
		return repository.ErrInsufficientCredits
	}
	m.spends++
	m.balances[userID] -= amount
	return nil
}

// pipelineEnv bundles the fakes behind a PipelineService for tests.
type pipelineEnv struct {
	scraper   *fakeScraper
	extractor *fakeExtractor
	scripts   *fakeScripts
	avatars   *fakeAvatars
	videoGen  *fakeVideoGen
	artifacts *fakeArtifacts
	users     *memUsers
	projects  *memProjects
	payments  *memPayments
	videos    *memVideos
	credits   *memCredits
	locker    *fakeLocker
	cfg       config.PipelineConfig
}

const sectionedScript = `[HOOK]
Wait until you see this.

[MAIN CONTENT]
I tried it for a week and the results speak for themselves. It works out of the box and fits right into my routine.

[CTA]
Link in bio, go grab yours.`

func newPipelineEnv() *pipelineEnv {
	return &pipelineEnv{
		scraper: &fakeScraper{result: &scraper.PageResult{
			URL:     "https://shop.example.com/widget",
			Status:  200,
			Content: "<html>" + strings.Repeat("Widget Pro does it all. ", 30) + "</html>",
		}},
		extractor: &fakeExtractor{product: &llm.ExtractedProduct{
			URL:         "https://shop.example.com/widget",
			Title:       strPtr("Widget Pro"),
			Description: strPtr("The widget that does it all."),
			Images:      []string{"https://cdn.example.com/widget-1.jpg"},
		}},
		scripts:   &fakeScripts{script: sectionedScript},
		avatars:   &fakeAvatars{urls: []string{"https://cdn.example.com/avatar.png"}},
		videoGen:  &fakeVideoGen{url: "https://fal.example.com/out.mp4"},
		artifacts: &fakeArtifacts{artifact: &storage.StoredArtifact{
			StoragePath: "projects/1/user/video-abc.mp4",
			PublicURL:   "https://media.example.com/video-abc.mp4",
		}},
		users:    newMemUsers(),
		projects: newMemProjects(),
		payments: newMemPayments(),
		videos:   newMemVideos(),
		credits:  newMemCredits(),
		locker:   newFakeLocker(),
		cfg: config.PipelineConfig{
			MinContentLength:  100,
			ScrapeTimeout:     time.Minute,
			GenerationTimeout: time.Minute,
			LockTTL:           time.Minute,
			ScrapeCacheTTL:    time.Hour,
		},
	}
}

func (e *pipelineEnv) service(cache ScrapeCache) *PipelineService {
	return NewPipelineService(
		e.scraper, e.extractor, e.scripts, e.avatars, e.videoGen, e.artifacts,
		e.users, e.projects, e.payments, e.videos, e.credits,
		e.locker, cache, e.cfg, zap.NewNop(),
	)
}

// seedReadyProject creates a user and a project with generated assets.
func (e *pipelineEnv) seedReadyProject(externalID string) (*models.User, *models.Project) {
	user, _ := e.users.GetOrCreate(externalID)
	project, _ := e.projects.Create(&models.Project{
		UserID:     user.ID,
		ProductURL: "https://shop.example.com/widget",
		Status:     models.ProjectStatusAssetsReady,
		AvatarSettings: &models.AvatarSettings{
			Gender: "female",
			Vibe:   "energetic",
		},
		ScriptText: sectionedScript,
	})
	return user, project
}

func (e *pipelineEnv) seedPayment(userID uint, sessionID string, status models.PaymentStatus) *models.Payment {
	p := &models.Payment{
		UserID:          userID,
		StripeSessionID: sessionID,
		Status:          status,
		Plan:            "single_video",
		Amount:          1900,
		Currency:        "usd",
	}
	e.payments.Create(p)
	return p
}
