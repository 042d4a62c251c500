package store

import (
	"time"

	"gorm.io/gorm"

	"github.com/gitdocai/gitdocai/internal/model"
)

// GenerationStore defines operations for the Generation model.
type GenerationStore interface {
	// Generation CRUD
	Create(gen *model.Generation) error
	GetByID(id string) (*model.Generation, error)
	Update(gen *model.Generation) error
	Save(gen *model.Generation) error
	Delete(id string) error

	// Status updates
	UpdateStatus(id string, status model.GenerationStatus) error
	UpdateStatusWithError(id string, status model.GenerationStatus, errMsg string) error
	UpdateStatusToRunningIfPending(id string, startedAt time.Time) (bool, error)

	// Progress updates
	UpdateProgress(id string, stepIndex int, stepLabel string, percent int) error
	ResetProgress(id string) error

	// Completion
	CompleteWithDocument(id string, document string, degraded bool, metadata model.JSONMap, duration time.Duration) error

	// Document edits
	UpdateDocument(id string, document string) error

	// Queries
	List(statusFilter string, limit, offset int) ([]model.Generation, int64, error)
	ListByRepository(repoURL string, limit, offset int) ([]model.Generation, int64, error)
	ListPendingOrRunning() ([]model.Generation, error)

	// Statistics queries
	CountAll() (int64, error)
	CountByStatus(status model.GenerationStatus) (int64, error)
	CountDegraded() (int64, error)
	CountCompletedAfter(start time.Time) (int64, error)
	GetAverageDurationAfter(start time.Time) (float64, error)

	// DeleteOlderThan deletes finished generations older than a number of days
	DeleteOlderThan(days int) (int64, error)
}

// generationStore implements GenerationStore using GORM.
type generationStore struct {
	db *gorm.DB
}

func newGenerationStore(db *gorm.DB) GenerationStore {
	return &generationStore{db: db}
}

// Generation CRUD implementations

func (s *generationStore) Create(gen *model.Generation) error {
	return s.db.Create(gen).Error
}

func (s *generationStore) GetByID(id string) (*model.Generation, error) {
	var gen model.Generation
	err := s.db.First(&gen, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &gen, nil
}

func (s *generationStore) Update(gen *model.Generation) error {
	return s.db.Model(gen).Updates(gen).Error
}

func (s *generationStore) Save(gen *model.Generation) error {
	return s.db.Save(gen).Error
}

func (s *generationStore) Delete(id string) error {
	return s.db.Delete(&model.Generation{}, "id = ?", id).Error
}

// Status updates

func (s *generationStore) UpdateStatus(id string, status model.GenerationStatus) error {
	return s.db.Model(&model.Generation{}).Where("id = ?", id).Update("status", status).Error
}

func (s *generationStore) UpdateStatusWithError(id string, status model.GenerationStatus, errMsg string) error {
	return s.db.Model(&model.Generation{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":        status,
		"error_message": errMsg,
		"completed_at":  time.Now(),
	}).Error
}

func (s *generationStore) UpdateStatusToRunningIfPending(id string, startedAt time.Time) (bool, error) {
	result := s.db.Model(&model.Generation{}).
		Where("id = ?", id).
		Where("status IN ?", []model.GenerationStatus{model.GenerationStatusPending, model.GenerationStatusRunning}).
		Updates(map[string]interface{}{
			"status":     model.GenerationStatusRunning,
			"started_at": startedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Progress updates

func (s *generationStore) UpdateProgress(id string, stepIndex int, stepLabel string, percent int) error {
	return s.db.Model(&model.Generation{}).Where("id = ?", id).Updates(map[string]interface{}{
		"step_index": stepIndex,
		"step_label": stepLabel,
		"percent":    percent,
	}).Error
}

// ResetProgress clears the phase fields after the terminal linger window.
// The status and document are left untouched.
func (s *generationStore) ResetProgress(id string) error {
	return s.db.Model(&model.Generation{}).Where("id = ?", id).Updates(map[string]interface{}{
		"step_index": 0,
		"step_label": "",
		"percent":    0,
	}).Error
}

// Completion

func (s *generationStore) CompleteWithDocument(id string, document string, degraded bool, metadata model.JSONMap, duration time.Duration) error {
	return s.db.Model(&model.Generation{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":            model.GenerationStatusCompleted,
		"document":          document,
		"original_document": document,
		"degraded":          degraded,
		"metadata":          metadata,
		"completed_at":      time.Now(),
		"duration":          duration.Milliseconds(),
		"error_message":     "",
	}).Error
}

// Document edits

func (s *generationStore) UpdateDocument(id string, document string) error {
	return s.db.Model(&model.Generation{}).Where("id = ?", id).Update("document", document).Error
}

// Queries

func (s *generationStore) List(statusFilter string, limit, offset int) ([]model.Generation, int64, error) {
	var gens []model.Generation
	var total int64

	query := s.db.Model(&model.Generation{})
	if statusFilter != "" {
		query = query.Where("status = ?", statusFilter)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&gens).Error
	return gens, total, err
}

func (s *generationStore) ListByRepository(repoURL string, limit, offset int) ([]model.Generation, int64, error) {
	var gens []model.Generation
	var total int64

	query := s.db.Model(&model.Generation{}).Where("repo_url = ?", repoURL)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&gens).Error
	return gens, total, err
}

func (s *generationStore) ListPendingOrRunning() ([]model.Generation, error) {
	var gens []model.Generation
	err := s.db.Where("status IN ?", []model.GenerationStatus{
		model.GenerationStatusPending,
		model.GenerationStatusRunning,
	}).Order("created_at ASC").Find(&gens).Error
	return gens, err
}

// Statistics queries

func (s *generationStore) CountAll() (int64, error) {
	var count int64
	err := s.db.Model(&model.Generation{}).Count(&count).Error
	return count, err
}

func (s *generationStore) CountByStatus(status model.GenerationStatus) (int64, error) {
	var count int64
	err := s.db.Model(&model.Generation{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

func (s *generationStore) CountDegraded() (int64, error) {
	var count int64
	err := s.db.Model(&model.Generation{}).Where("degraded = ?", true).Count(&count).Error
	return count, err
}

func (s *generationStore) CountCompletedAfter(start time.Time) (int64, error) {
	var count int64
	err := s.db.Model(&model.Generation{}).
		Where("completed_at >= ? AND status = ?", start, model.GenerationStatusCompleted).
		Count(&count).Error
	return count, err
}

func (s *generationStore) GetAverageDurationAfter(start time.Time) (float64, error) {
	var avgDuration float64
	err := s.db.Model(&model.Generation{}).
		Where("completed_at >= ? AND status = ? AND duration > 0", start, model.GenerationStatusCompleted).
		Select("AVG(duration)").Row().Scan(&avgDuration)
	return avgDuration, err
}

// DeleteOlderThan deletes completed and failed generations created before
// the retention cutoff. Pending and running generations are never touched.
func (s *generationStore) DeleteOlderThan(days int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -days)
	result := s.db.
		Where("created_at < ?", cutoff).
		Where("status IN ?", []model.GenerationStatus{
			model.GenerationStatusCompleted,
			model.GenerationStatusFailed,
		}).
		Delete(&model.Generation{})
	return result.RowsAffected, result.Error
}
