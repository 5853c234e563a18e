package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"pypln-web/internal/model"
)

type CorpusRepository struct {
	db *gorm.DB
}

func NewCorpusRepository(db *gorm.DB) *CorpusRepository {
	return &CorpusRepository{db: db}
}

func (r *CorpusRepository) Create(corpus *model.Corpus) error {
	if err := r.db.Create(corpus).Error; err != nil {
		return fmt.Errorf("create corpus failed: %w", err)
	}
	return nil
}

func (r *CorpusRepository) Update(corpus *model.Corpus) error {
	if err := r.db.Model(corpus).Select("name", "description").Updates(corpus).Error; err != nil {
		return fmt.Errorf("update corpus failed: %w", err)
	}
	return nil
}

// Delete removes the corpus and detaches its documents instead of deleting them.
func (r *CorpusRepository) Delete(corpus *model.Corpus) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Document{}).
			Where("corpus_id = ?", corpus.ID).
			Update("corpus_id", nil).Error; err != nil {
			return fmt.Errorf("detach corpus documents failed: %w", err)
		}
		if err := tx.Delete(&model.Corpus{}, corpus.ID).Error; err != nil {
			return fmt.Errorf("delete corpus failed: %w", err)
		}
		return nil
	})
}

func (r *CorpusRepository) GetByIDAndOwner(id, ownerID uint) (*model.Corpus, error) {
	var corpus model.Corpus
	if err := r.db.Preload("Owner").
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&corpus).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query corpus failed: %w", err)
	}
	return &corpus, nil
}

func (r *CorpusRepository) ListByOwner(ownerID uint) ([]model.Corpus, error) {
	var corpora []model.Corpus
	if err := r.db.Preload("Owner").
		Where("owner_id = ?", ownerID).
		Order("id asc").
		Find(&corpora).Error; err != nil {
		return nil, fmt.Errorf("list corpora failed: %w", err)
	}
	return corpora, nil
}

// NameTaken reports whether ownerID already has a corpus called name other
// than excludeID. Pass 0 to check against every corpus.
func (r *CorpusRepository) NameTaken(ownerID uint, name string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.Model(&model.Corpus{}).Where("owner_id = ? AND name = ?", ownerID, name)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("count corpora by name failed: %w", err)
	}
	return count > 0, nil
}
