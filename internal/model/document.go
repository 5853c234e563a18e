package model

import (
	"time"

	"pypln-web/internal/properties"
)

// Document is one uploaded file. Blob is the storage backend name; FileID is
// the identifier pipeline workers use to fetch the content.
type Document struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Blob       string    `gorm:"size:255;not null;index" json:"blob"`
	FileID     string    `gorm:"size:255" json:"file_id"`
	Filename   string    `gorm:"size:255;not null" json:"filename"`
	Size       int64     `json:"size"`
	OwnerID    uint      `gorm:"not null;index" json:"owner_id"`
	Owner      User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CorpusID   *uint     `gorm:"index" json:"corpus_id"`
	Corpus     *Corpus   `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	Indexed    bool      `gorm:"not null;default:false;index" json:"indexed"`
	DocType    string    `gorm:"size:100" json:"doc_type,omitempty"`
	IndexName  string    `gorm:"size:100" json:"index_name,omitempty"`
	UploadedAt time.Time `gorm:"autoCreateTime" json:"uploaded_at"`

	store *properties.Lazy `gorm:"-"`
}

// Properties returns a read-only view of the pipeline results for this
// document. The store is opened on first read and reused afterwards.
func (d *Document) Properties(opener properties.Opener) (*properties.Proxy, error) {
	if d.ID == 0 {
		return nil, properties.ErrUnsaved
	}
	if d.store == nil {
		d.store = properties.NewLazy(opener)
	}
	return properties.NewProxy(properties.DocumentNamespace, d.ID, d.store), nil
}

// InCorpus reports whether the document belongs to corpusID.
func (d *Document) InCorpus(corpusID uint) bool {
	return d.CorpusID != nil && *d.CorpusID == corpusID
}
