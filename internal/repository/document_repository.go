package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pypln-web/internal/model"
)

var ErrInvalidOrder = errors.New("invalid document order column")

var documentOrderColumns = map[string]bool{
	"id":          true,
	"blob":        true,
	"uploaded_at": true,
	"corpus_id":   true,
}

type DocumentListOptions struct {
	CorpusID    *uint
	OrderColumn string
	Desc        bool
	Limit       int
	Offset      int
}

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(doc *model.Document) error {
	if err := r.db.Create(doc).Error; err != nil {
		return fmt.Errorf("create document failed: %w", err)
	}
	return nil
}

func (r *DocumentRepository) UpdateCorpus(doc *model.Document) error {
	if err := r.db.Model(doc).Select("corpus_id").Updates(doc).Error; err != nil {
		return fmt.Errorf("update document corpus failed: %w", err)
	}
	return nil
}

func (r *DocumentRepository) Delete(doc *model.Document) error {
	if err := r.db.Delete(&model.Document{}, doc.ID).Error; err != nil {
		return fmt.Errorf("delete document failed: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByIDAndOwner(id, ownerID uint) (*model.Document, error) {
	var doc model.Document
	if err := r.db.Preload("Owner").Preload("Corpus").
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query document failed: %w", err)
	}
	return &doc, nil
}

// ListByOwner returns one page of the owner's documents and the total count.
// A zero Limit returns every document.
func (r *DocumentRepository) ListByOwner(ownerID uint, opts DocumentListOptions) ([]model.Document, int64, error) {
	column := opts.OrderColumn
	if column == "" {
		column = "blob"
	}
	if !documentOrderColumns[column] {
		return nil, 0, fmt.Errorf("%w: %s", ErrInvalidOrder, column)
	}

	query := r.db.Model(&model.Document{}).Where("owner_id = ?", ownerID)
	if opts.CorpusID != nil {
		query = query.Where("corpus_id = ?", *opts.CorpusID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count documents failed: %w", err)
	}

	query = query.Preload("Owner").Preload("Corpus").
		Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: opts.Desc}).
		Order("id asc")
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit).Offset(opts.Offset)
	}

	var docs []model.Document
	if err := query.Find(&docs).Error; err != nil {
		return nil, 0, fmt.Errorf("list documents failed: %w", err)
	}
	return docs, total, nil
}

func (r *DocumentRepository) CountByOwner(ownerID uint, corpusID *uint) (int64, error) {
	query := r.db.Model(&model.Document{}).Where("owner_id = ?", ownerID)
	if corpusID != nil {
		query = query.Where("corpus_id = ?", *corpusID)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count documents failed: %w", err)
	}
	return total, nil
}

func (r *DocumentRepository) ListByCorpus(corpusID uint) ([]model.Document, error) {
	var docs []model.Document
	if err := r.db.Where("corpus_id = ?", corpusID).Order("id asc").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("list corpus documents failed: %w", err)
	}
	return docs, nil
}

func (r *DocumentRepository) ListNotIndexed() ([]model.Document, error) {
	var docs []model.Document
	if err := r.db.Where("indexed = ?", false).Order("id asc").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("list documents to index failed: %w", err)
	}
	return docs, nil
}

func (r *DocumentRepository) MarkIndexed(id uint) error {
	if err := r.db.Model(&model.Document{}).Where("id = ?", id).Update("indexed", true).Error; err != nil {
		return fmt.Errorf("mark document indexed failed: %w", err)
	}
	return nil
}

// Each visits every document in id order, loading batchSize rows at a time.
func (r *DocumentRepository) Each(batchSize int, fn func(doc *model.Document) error) error {
	var batch []model.Document
	res := r.db.FindInBatches(&batch, batchSize, func(tx *gorm.DB, _ int) error {
		for i := range batch {
			if err := fn(&batch[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if res.Error != nil {
		return fmt.Errorf("iterate documents failed: %w", res.Error)
	}
	return nil
}

func (r *DocumentRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&model.Document{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count documents failed: %w", err)
	}
	return count, nil
}
