package handler

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"pypln-web/internal/model"
)

const apiPrefix = "/api/v1"

var errBadCorpusRef = errors.New("Invalid hyperlink - Incorrect URL match.")

func baseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + c.Request.Host
}

func apiURL(c *gin.Context, format string, args ...any) string {
	return baseURL(c) + apiPrefix + fmt.Sprintf(format, args...)
}

func corpusURL(c *gin.Context, id uint) string {
	return apiURL(c, "/corpora/%d/", id)
}

func documentURL(c *gin.Context, id uint) string {
	return apiURL(c, "/documents/%d/", id)
}

// parseCorpusRef accepts a corpus id or a corpus URL. Empty means no corpus.
func parseCorpusRef(ref string) (*uint, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, nil
	}
	if id, err := strconv.ParseUint(ref, 10, 64); err == nil {
		v := uint(id)
		return &v, nil
	}

	u, err := url.Parse(ref)
	if err != nil {
		return nil, errBadCorpusRef
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 2 || segments[len(segments)-2] != "corpora" {
		return nil, errBadCorpusRef
	}
	id, err := strconv.ParseUint(segments[len(segments)-1], 10, 64)
	if err != nil {
		return nil, errBadCorpusRef
	}
	v := uint(id)
	return &v, nil
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func corpusJSON(c *gin.Context, corpus *model.Corpus, docs []model.Document) gin.H {
	urls := make([]string, 0, len(docs))
	for _, d := range docs {
		urls = append(urls, documentURL(c, d.ID))
	}
	return gin.H{
		"url":         corpusURL(c, corpus.ID),
		"id":          corpus.ID,
		"name":        corpus.Name,
		"description": corpus.Description,
		"created_at":  corpus.CreatedAt,
		"owner":       corpus.Owner.Username,
		"documents":   urls,
	}
}

func documentJSON(c *gin.Context, doc *model.Document) gin.H {
	var corpus any
	if doc.CorpusID != nil {
		corpus = corpusURL(c, *doc.CorpusID)
	}
	out := gin.H{
		"url":         documentURL(c, doc.ID),
		"id":          doc.ID,
		"corpus":      corpus,
		"owner":       doc.Owner.Username,
		"blob":        doc.Blob,
		"filename":    doc.Filename,
		"size":        doc.Size,
		"uploaded_at": doc.UploadedAt,
		"properties":  documentURL(c, doc.ID) + "properties/",
	}
	if doc.IndexName != "" {
		out["index_name"] = doc.IndexName
		out["doc_type"] = doc.DocType
	}
	return out
}
