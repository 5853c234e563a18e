package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"pypln-web/internal/model"
	"pypln-web/internal/properties"
	"pypln-web/internal/repository"
)

const (
	corpusNameMaxLen        = 60
	corpusDescriptionMaxLen = 255
)

var (
	ErrCorpusNameTaken  = errors.New("Corpora names must be unique for each user.")
	ErrFreqDistNotReady = errors.New("corpus frequency distribution not available")
)

// FreqDistSubmitter queues the aggregation of a corpus' documents.
type FreqDistSubmitter interface {
	CorpusFreqDist(ctx context.Context, corpusID uint, blobIDs []string) error
}

type CorpusInput struct {
	Name        string
	Description string
}

// Validate trims the input and checks the field limits.
func (in *CorpusInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)

	verr := &ValidationError{}
	switch {
	case in.Name == "":
		verr.Add("name", "This field is required.")
	case utf8.RuneCountInString(in.Name) > corpusNameMaxLen:
		verr.Add("name", fmt.Sprintf("Ensure this value has at most %d characters.", corpusNameMaxLen))
	}
	if utf8.RuneCountInString(in.Description) > corpusDescriptionMaxLen {
		verr.Add("description", fmt.Sprintf("Ensure this value has at most %d characters.", corpusDescriptionMaxLen))
	}
	if !verr.Empty() {
		return verr
	}
	return nil
}

type CorpusService struct {
	corpora  *repository.CorpusRepository
	docs     *repository.DocumentRepository
	opener   properties.Opener
	freqDist FreqDistSubmitter
}

func NewCorpusService(
	corpora *repository.CorpusRepository,
	docs *repository.DocumentRepository,
	opener properties.Opener,
	freqDist FreqDistSubmitter,
) *CorpusService {
	return &CorpusService{
		corpora:  corpora,
		docs:     docs,
		opener:   opener,
		freqDist: freqDist,
	}
}

func (s *CorpusService) Create(ownerID uint, input CorpusInput) (*model.Corpus, error) {
	if ownerID == 0 {
		return nil, ErrInvalidInput
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkName(ownerID, input.Name, 0); err != nil {
		return nil, err
	}

	corpus := &model.Corpus{
		Name:        input.Name,
		Description: input.Description,
		OwnerID:     ownerID,
	}
	if err := s.corpora.Create(corpus); err != nil {
		return nil, err
	}
	return s.Get(corpus.ID, ownerID)
}

func (s *CorpusService) Get(id, ownerID uint) (*model.Corpus, error) {
	corpus, err := s.corpora.GetByIDAndOwner(id, ownerID)
	if err != nil {
		return nil, err
	}
	if corpus == nil {
		return nil, ErrCorpusNotFound
	}
	return corpus, nil
}

func (s *CorpusService) List(ownerID uint) ([]model.Corpus, error) {
	if ownerID == 0 {
		return nil, ErrInvalidInput
	}
	return s.corpora.ListByOwner(ownerID)
}

func (s *CorpusService) Update(id, ownerID uint, input CorpusInput) (*model.Corpus, error) {
	corpus, err := s.Get(id, ownerID)
	if err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkName(ownerID, input.Name, corpus.ID); err != nil {
		return nil, err
	}

	corpus.Name = input.Name
	corpus.Description = input.Description
	if err := s.corpora.Update(corpus); err != nil {
		return nil, err
	}
	return corpus, nil
}

// Delete removes the corpus. Its documents stay, without a corpus.
func (s *CorpusService) Delete(id, ownerID uint) error {
	corpus, err := s.Get(id, ownerID)
	if err != nil {
		return err
	}
	return s.corpora.Delete(corpus)
}

// Documents lists the documents filed under corpus.
func (s *CorpusService) Documents(corpus *model.Corpus) ([]model.Document, error) {
	return s.docs.ListByCorpus(corpus.ID)
}

// FreqDist returns the aggregated frequency distribution computed by the
// pipeline for the corpus.
func (s *CorpusService) FreqDist(ctx context.Context, id, ownerID uint) (json.RawMessage, error) {
	corpus, err := s.Get(id, ownerID)
	if err != nil {
		return nil, err
	}
	props, err := corpus.Properties(s.opener)
	if err != nil {
		return nil, err
	}
	value, err := props.Get(ctx, "freqdist")
	if errors.Is(err, properties.ErrNotFound) {
		return nil, ErrFreqDistNotReady
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// RequestFreqDist queues the computation of the corpus frequency
// distribution over the current documents of the corpus.
func (s *CorpusService) RequestFreqDist(ctx context.Context, id, ownerID uint) error {
	corpus, err := s.Get(id, ownerID)
	if err != nil {
		return err
	}
	docs, err := s.docs.ListByCorpus(corpus.ID)
	if err != nil {
		return err
	}
	blobIDs := make([]string, 0, len(docs))
	for _, doc := range docs {
		blobIDs = append(blobIDs, doc.FileID)
	}
	return s.freqDist.CorpusFreqDist(ctx, corpus.ID, blobIDs)
}

func (s *CorpusService) checkName(ownerID uint, name string, excludeID uint) error {
	taken, err := s.corpora.NameTaken(ownerID, name, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return ErrCorpusNameTaken
	}
	return nil
}
