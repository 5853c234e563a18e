package app

import (
	"strings"

	"pypln-web/internal/model"
	"pypln-web/internal/repository"
	"pypln-web/internal/search"
)

type SearchResult struct {
	Document    model.Document
	Concordance []string
}

type SearchService struct {
	docs    *repository.DocumentRepository
	corpora *repository.CorpusRepository
	index   search.Index
}

func NewSearchService(docs *repository.DocumentRepository, corpora *repository.CorpusRepository, index search.Index) *SearchService {
	return &SearchService{docs: docs, corpora: corpora, index: index}
}

// Search runs query against the document text and keeps only documents of
// ownerID, optionally restricted to one corpus. Results follow the owner's
// document order, not the index score.
func (s *SearchService) Search(ownerID uint, corpusID *uint, query string) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if ownerID == 0 {
		return nil, ErrInvalidInput
	}
	if corpusID != nil {
		corpus, err := s.corpora.GetByIDAndOwner(*corpusID, ownerID)
		if err != nil {
			return nil, err
		}
		if corpus == nil {
			return nil, ErrCorpusNotFound
		}
	}
	if query == "" {
		return []SearchResult{}, nil
	}

	permitted, _, err := s.docs.ListByOwner(ownerID, repository.DocumentListOptions{
		CorpusID:    corpusID,
		OrderColumn: "id",
	})
	if err != nil {
		return nil, err
	}

	hits, err := s.index.Search(query)
	if err != nil {
		return nil, err
	}
	found := make(map[uint]search.Hit, len(hits))
	for _, h := range hits {
		found[h.DocumentID] = h
	}

	results := make([]SearchResult, 0, len(found))
	for _, doc := range permitted {
		if hit, ok := found[doc.ID]; ok {
			results = append(results, SearchResult{Document: doc, Concordance: hit.Fragments})
		}
	}
	return results, nil
}
