package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"

	"pypln-web/internal/blob"
	"pypln-web/internal/model"
	"pypln-web/internal/properties"
	"pypln-web/internal/repository"
)

const IndexNameErrorMessage = "Invalid index_name. Remember stored index names are always prefixed with your username. See the documentation for indexing documents for details"

var (
	ErrCorpusNotOwned   = errors.New("Invalid hyperlink - object does not exist.")
	ErrInvalidIndexName = errors.New(IndexNameErrorMessage)
)

// DocumentHook runs after a document row and its blob have been stored.
type DocumentHook interface {
	DocumentCreated(ctx context.Context, doc *model.Document) error
}

type DocumentHookFunc func(ctx context.Context, doc *model.Document) error

func (f DocumentHookFunc) DocumentCreated(ctx context.Context, doc *model.Document) error {
	return f(ctx, doc)
}

type IndexingSubmitter interface {
	CreateIndexingPipeline(ctx context.Context, doc *model.Document) error
}

// Upload is one file received from a client.
type Upload struct {
	Filename string
	Open     func() (io.ReadCloser, error)
}

// BytesUpload wraps in-memory content as an Upload.
func BytesUpload(filename string, content []byte) Upload {
	return Upload{
		Filename: filename,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(content)), nil
		},
	}
}

type DocumentService struct {
	docs     *repository.DocumentRepository
	corpora  *repository.CorpusRepository
	storage  blob.Storage
	opener   properties.Opener
	indexing IndexingSubmitter
	hooks    []DocumentHook
	log      *slog.Logger
}

func NewDocumentService(
	docs *repository.DocumentRepository,
	corpora *repository.CorpusRepository,
	storage blob.Storage,
	opener properties.Opener,
	indexing IndexingSubmitter,
	hooks []DocumentHook,
	log *slog.Logger,
) *DocumentService {
	if log == nil {
		log = slog.Default()
	}
	return &DocumentService{
		docs:     docs,
		corpora:  corpora,
		storage:  storage,
		opener:   opener,
		indexing: indexing,
		hooks:    hooks,
		log:      log,
	}
}

// Create stores the upload and records a document owned by ownerID. The
// corpus, when given, must belong to the same user.
func (s *DocumentService) Create(ctx context.Context, ownerID uint, corpusID *uint, up Upload) (*model.Document, error) {
	if ownerID == 0 {
		return nil, ErrInvalidInput
	}
	if err := s.checkCorpus(ownerID, corpusID); err != nil {
		return nil, err
	}
	doc := &model.Document{OwnerID: ownerID, CorpusID: corpusID}
	if err := s.save(ctx, doc, up); err != nil {
		return nil, err
	}
	s.runHooks(ctx, doc)
	return s.Get(doc.ID, ownerID)
}

// IndexInput describes a document submitted for indexing only.
type IndexInput struct {
	CorpusID  *uint
	IndexName string
	DocType   string
	File      Upload
}

// CreateIndexed stores a document and queues the indexing pipeline for it
// instead of the default analysis.
func (s *DocumentService) CreateIndexed(ctx context.Context, owner *model.User, input IndexInput) (*model.Document, error) {
	indexName := strings.TrimSpace(input.IndexName)
	docType := strings.TrimSpace(input.DocType)
	if owner == nil || owner.ID == 0 || docType == "" {
		return nil, ErrInvalidInput
	}
	if !owner.OwnsIndex(indexName) {
		return nil, ErrInvalidIndexName
	}
	if err := s.checkCorpus(owner.ID, input.CorpusID); err != nil {
		return nil, err
	}

	doc := &model.Document{
		OwnerID:   owner.ID,
		CorpusID:  input.CorpusID,
		IndexName: indexName,
		DocType:   docType,
	}
	if err := s.save(ctx, doc, input.File); err != nil {
		return nil, err
	}
	if s.indexing != nil {
		if err := s.indexing.CreateIndexingPipeline(ctx, doc); err != nil {
			s.log.ErrorContext(ctx, "indexing pipeline submission failed", "document_id", doc.ID, "error", err)
		}
	}
	return s.Get(doc.ID, owner.ID)
}

// save writes the blob and then the row. A failed insert removes the blob.
func (s *DocumentService) save(ctx context.Context, doc *model.Document, up Upload) error {
	if up.Open == nil {
		return ErrInvalidInput
	}
	if msg := filenameError(up.Filename); msg != "" {
		verr := &ValidationError{}
		verr.Add("blob", msg)
		return verr
	}
	r, err := up.Open()
	if err != nil {
		return fmt.Errorf("open upload failed: %w", err)
	}
	defer r.Close()

	stored, err := s.storage.Save(ctx, up.Filename, r)
	if err != nil {
		return fmt.Errorf("store blob failed: %w", err)
	}
	doc.Blob = stored.Name
	doc.FileID = stored.FileID
	doc.Filename = blob.BaseName(up.Filename)
	doc.Size = stored.Size

	if err := s.docs.Create(doc); err != nil {
		if derr := s.storage.Delete(context.WithoutCancel(ctx), stored.Name); derr != nil {
			s.log.ErrorContext(ctx, "remove orphan blob failed", "blob", stored.Name, "error", derr)
		}
		return err
	}
	return nil
}

// runHooks never fails the upload: the pipeline is fire and forget.
func (s *DocumentService) runHooks(ctx context.Context, doc *model.Document) {
	for _, hook := range s.hooks {
		if err := hook.DocumentCreated(ctx, doc); err != nil {
			s.log.ErrorContext(ctx, "document hook failed", "document_id", doc.ID, "error", err)
		}
	}
}

func (s *DocumentService) checkCorpus(ownerID uint, corpusID *uint) error {
	if corpusID == nil {
		return nil
	}
	corpus, err := s.corpora.GetByIDAndOwner(*corpusID, ownerID)
	if err != nil {
		return err
	}
	if corpus == nil {
		return ErrCorpusNotOwned
	}
	return nil
}

func (s *DocumentService) Get(id, ownerID uint) (*model.Document, error) {
	doc, err := s.docs.GetByIDAndOwner(id, ownerID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrDocumentNotFound
	}
	return doc, nil
}

// Update moves the document to another of the owner's corpora, or out of
// any corpus when corpusID is nil.
func (s *DocumentService) Update(id, ownerID uint, corpusID *uint) (*model.Document, error) {
	doc, err := s.Get(id, ownerID)
	if err != nil {
		return nil, err
	}
	if err := s.checkCorpus(ownerID, corpusID); err != nil {
		return nil, err
	}
	doc.CorpusID = corpusID
	if err := s.docs.UpdateCorpus(doc); err != nil {
		return nil, err
	}
	return s.Get(id, ownerID)
}

func (s *DocumentService) Delete(ctx context.Context, id, ownerID uint) error {
	doc, err := s.Get(id, ownerID)
	if err != nil {
		return err
	}
	if err := s.docs.Delete(doc); err != nil {
		return err
	}
	if err := s.storage.Delete(ctx, doc.Blob); err != nil && !errors.Is(err, blob.ErrNotFound) {
		s.log.ErrorContext(ctx, "delete blob failed", "blob", doc.Blob, "error", err)
	}
	return nil
}

// ListQuery selects one page of documents. Sort takes the keys accepted by
// SortOrder; Page accepts a number or "last" and callers pass FirstPage when
// the client sent none.
type ListQuery struct {
	CorpusID *uint
	Sort     string
	Page     string
	PerPage  string
}

type DocumentPage struct {
	Documents []model.Document
	Sort      string
	Page      Page
}

func (s *DocumentService) List(ownerID uint, q ListQuery) (*DocumentPage, error) {
	if ownerID == 0 {
		return nil, ErrInvalidInput
	}
	order := SortOrder(q.Sort)
	perPage := ParsePerPage(q.PerPage)

	opts := repository.DocumentListOptions{
		CorpusID:    q.CorpusID,
		OrderColumn: order.Column,
		Desc:        order.Desc,
	}
	total, err := s.docs.CountByOwner(ownerID, q.CorpusID)
	if err != nil {
		return nil, err
	}
	page, err := Paginate(q.Page, total, perPage)
	if err != nil {
		return nil, err
	}
	opts.Limit = page.PerPage
	opts.Offset = page.Offset()

	docs, _, err := s.docs.ListByOwner(ownerID, opts)
	if err != nil {
		return nil, err
	}
	return &DocumentPage{Documents: docs, Sort: order.Key, Page: page}, nil
}

// All returns every document of the owner in the requested order.
func (s *DocumentService) All(ownerID uint, corpusID *uint, sort string) ([]model.Document, error) {
	order := SortOrder(sort)
	docs, _, err := s.docs.ListByOwner(ownerID, repository.DocumentListOptions{
		CorpusID:    corpusID,
		OrderColumn: order.Column,
		Desc:        order.Desc,
	})
	return docs, err
}

type DownloadFile struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.ReadCloser
}

// Download opens the blob of a document. The content type is the one the
// pipeline detected, or guessed from the filename until then.
func (s *DocumentService) Download(ctx context.Context, id, ownerID uint) (*DownloadFile, error) {
	doc, err := s.Get(id, ownerID)
	if err != nil {
		return nil, err
	}

	contentType := ""
	if props, err := doc.Properties(s.opener); err == nil {
		var detected string
		if err := props.Decode(ctx, "mimetype", &detected); err == nil {
			contentType = detected
		} else if !errors.Is(err, properties.ErrNotFound) {
			return nil, err
		}
	}
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(doc.Filename))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	body, err := s.storage.Open(ctx, doc.Blob)
	if err != nil {
		return nil, fmt.Errorf("open blob failed: %w", err)
	}
	return &DownloadFile{
		Filename:    doc.Filename,
		ContentType: contentType,
		Size:        doc.Size,
		Body:        body,
	}, nil
}
