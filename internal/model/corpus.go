package model

import (
	"time"

	"pypln-web/internal/properties"
)

type Corpus struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:60;not null;uniqueIndex:idx_corpus_name_owner" json:"name"`
	Description string    `gorm:"size:255" json:"description"`
	OwnerID     uint      `gorm:"not null;uniqueIndex:idx_corpus_name_owner;index" json:"owner_id"`
	Owner       User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt   time.Time `json:"created_at"`

	store *properties.Lazy `gorm:"-"`
}

func (Corpus) TableName() string {
	return "corpora"
}

// Properties exposes the corpus level analysis results, such as the
// aggregated frequency distribution.
func (c *Corpus) Properties(opener properties.Opener) (*properties.Proxy, error) {
	if c.ID == 0 {
		return nil, properties.ErrUnsaved
	}
	if c.store == nil {
		c.store = properties.NewLazy(opener)
	}
	return properties.NewProxy(properties.CorpusNamespace, c.ID, c.store), nil
}
