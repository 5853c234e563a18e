package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"pypln-web/internal/model"
	"pypln-web/internal/properties"
)

const (
	defaultPipeline        = "default"
	indexingPipeline       = "indexing"
	corpusFreqDistPipeline = "corpus_freqdist"
)

type Publisher interface {
	Publish(ctx context.Context, queue string, payload any) error
}

type Queues struct {
	Default        string
	Indexing       string
	CorpusFreqDist string
}

// Job identifies a document for the workers: FileID is the blob id the
// workers read, DocumentID is the key namespace they write results under.
type Job struct {
	FileID     string `json:"_id"`
	DocumentID uint   `json:"id"`
}

type IndexingJob struct {
	Job
	IndexName string `json:"index_name"`
	DocType   string `json:"doc_type"`
}

type CorpusFreqDistJob struct {
	CorpusID uint     `json:"corpus_id"`
	BlobIDs  []string `json:"blob_ids"`
}

// Client submits jobs to the external pipeline. Submission is fire and
// forget: nothing waits for workers to finish.
type Client struct {
	publisher Publisher
	writer    properties.Writer
	queues    Queues
	metrics   *Metrics
	log       *slog.Logger
}

func NewClient(publisher Publisher, writer properties.Writer, queues Queues, metrics *Metrics, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		publisher: publisher,
		writer:    writer,
		queues:    queues,
		metrics:   metrics,
		log:       log,
	}
}

// CreatePipeline records where the workers find the blob and queues the
// default analysis pipeline.
func (c *Client) CreatePipeline(ctx context.Context, job Job) error {
	err := c.createPipeline(ctx, job)
	c.metrics.observe(defaultPipeline, err)
	return err
}

func (c *Client) createPipeline(ctx context.Context, job Job) error {
	key := properties.DocumentNamespace.Key(job.DocumentID, "file_id")
	if err := c.writer.Set(ctx, key, job.FileID); err != nil {
		return fmt.Errorf("store file id failed: %w", err)
	}
	if err := c.publisher.Publish(ctx, c.queues.Default, job); err != nil {
		return fmt.Errorf("submit pipeline failed: %w", err)
	}
	c.log.InfoContext(ctx, "pipeline submitted", "document_id", job.DocumentID, "file_id", job.FileID)
	return nil
}

func (c *Client) CreateIndexingPipeline(ctx context.Context, doc *model.Document) error {
	job := IndexingJob{
		Job:       Job{FileID: doc.FileID, DocumentID: doc.ID},
		IndexName: doc.IndexName,
		DocType:   doc.DocType,
	}
	err := c.publisher.Publish(ctx, c.queues.Indexing, job)
	c.metrics.observe(indexingPipeline, err)
	if err != nil {
		return fmt.Errorf("submit indexing pipeline failed: %w", err)
	}
	c.log.InfoContext(ctx, "indexing pipeline submitted", "document_id", doc.ID, "index_name", doc.IndexName)
	return nil
}

func (c *Client) CorpusFreqDist(ctx context.Context, corpusID uint, blobIDs []string) error {
	if blobIDs == nil {
		blobIDs = []string{}
	}
	err := c.publisher.Publish(ctx, c.queues.CorpusFreqDist, CorpusFreqDistJob{CorpusID: corpusID, BlobIDs: blobIDs})
	c.metrics.observe(corpusFreqDistPipeline, err)
	if err != nil {
		return fmt.Errorf("submit corpus freqdist failed: %w", err)
	}
	return nil
}

// DocumentCreated queues the default pipeline for a freshly stored document.
func (c *Client) DocumentCreated(ctx context.Context, doc *model.Document) error {
	return c.CreatePipeline(ctx, Job{FileID: doc.FileID, DocumentID: doc.ID})
}
