package repository

import (
	"github.com/sefazor/reelmint-backend/internal/models"
	"gorm.io/gorm"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(project *models.Project) (*models.Project, error) {
	result := r.db.Create(project)
	if result.Error != nil {
		return nil, result.Error
	}
	return project, nil
}

func (r *ProjectRepository) GetByID(id uint) (*models.Project, error) {
	var project models.Project
	err := r.db.First(&project, id).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// GetLatestByUserAndURL finds the newest project for a user and product URL.
// Used only when project reuse is enabled.
func (r *ProjectRepository) GetLatestByUserAndURL(userID uint, productURL string) (*models.Project, error) {
	var project models.Project
	err := r.db.Where("user_id = ? AND product_url = ?", userID, productURL).
		Order("created_at DESC").
		First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// UpdateAssets persists the generated script and avatar settings and moves
// the project to assets_ready.
func (r *ProjectRepository) UpdateAssets(projectID uint, settings *models.AvatarSettings, scriptText string) error {
	return r.db.Model(&models.Project{}).
		Where("id = ?", projectID).
		Updates(models.Project{
			Status:         models.ProjectStatusAssetsReady,
			AvatarSettings: settings,
			ScriptText:     scriptText,
		}).Error
}

// UpdateStatus advances the status machine. The WHERE clause lists only
// statuses that rank below the target, so regressions and replays are
// atomic no-ops.
func (r *ProjectRepository) UpdateStatus(projectID uint, status models.ProjectStatus) error {
	var prior []models.ProjectStatus
	for _, s := range []models.ProjectStatus{
		models.ProjectStatusDraft,
		models.ProjectStatusAssetsReady,
		models.ProjectStatusVideoReady,
	} {
		if s.Rank() < status.Rank() {
			prior = append(prior, s)
		}
	}
	if len(prior) == 0 {
		return nil
	}
	return r.db.Model(&models.Project{}).
		Where("id = ? AND status IN ?", projectID, prior).
		Update("status", status).Error
}
