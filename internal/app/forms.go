package app

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"pypln-web/internal/blob"
	"pypln-web/internal/model"
)

// MaxFilenameLength bounds upload names, exclusive.
const MaxFilenameLength = 100

var ErrUnvalidatedForm = errors.New("cannot save unvalidated form data")

// filenameError describes why an upload name is rejected, or returns "".
func filenameError(filename string) string {
	name := blob.BaseName(filename)
	if n := utf8.RuneCountInString(name); n >= MaxFilenameLength {
		return fmt.Sprintf("Ensure this filename has at most %d characters (it has %d).", MaxFilenameLength-1, n)
	}
	return ""
}

// DocumentForm is a multi-file upload. Each file becomes one document owned
// by Owner and, optionally, filed under CorpusID.
type DocumentForm struct {
	Owner    *model.User
	CorpusID *uint
	Files    []Upload

	svc       *DocumentService
	validated bool
	errs      *ValidationError
}

func (s *DocumentService) NewDocumentForm(owner *model.User, corpusID *uint, files []Upload) *DocumentForm {
	return &DocumentForm{Owner: owner, CorpusID: corpusID, Files: files, svc: s}
}

// IsValid checks the files and remembers the outcome for Save.
func (f *DocumentForm) IsValid() bool {
	verr := &ValidationError{}
	if f.Owner == nil || f.Owner.ID == 0 {
		verr.Add("owner", "This field is required.")
	}
	if len(f.Files) == 0 {
		verr.Add("blob", "This field is required.")
	}
	for _, up := range f.Files {
		if msg := filenameError(up.Filename); msg != "" {
			verr.Add("blob", msg)
		}
	}
	if f.Owner != nil && f.Owner.ID != 0 {
		if err := f.svc.checkCorpus(f.Owner.ID, f.CorpusID); err != nil {
			verr.Add("corpus", "Select a valid choice. That choice is not one of the available choices.")
		}
	}

	f.errs = verr
	f.validated = verr.Empty()
	return f.validated
}

// Errors returns the field errors found by the last IsValid call.
func (f *DocumentForm) Errors() map[string][]string {
	if f.errs == nil {
		return nil
	}
	return f.errs.Fields
}

// Save builds one document per file. With commit the blobs are stored, the
// rows inserted and the creation hooks run; without it the documents are
// returned unsaved.
func (f *DocumentForm) Save(ctx context.Context, commit bool) ([]*model.Document, error) {
	if !f.validated {
		return nil, ErrUnvalidatedForm
	}

	docs := make([]*model.Document, 0, len(f.Files))
	for _, up := range f.Files {
		if !commit {
			docs = append(docs, &model.Document{
				OwnerID:  f.Owner.ID,
				Owner:    *f.Owner,
				CorpusID: f.CorpusID,
				Filename: blob.BaseName(up.Filename),
			})
			continue
		}
		doc, err := f.svc.Create(ctx, f.Owner.ID, f.CorpusID, up)
		if err != nil {
			return docs, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// CorpusForm creates a corpus for Owner from the web page.
type CorpusForm struct {
	Owner *model.User
	Input CorpusInput

	svc  *CorpusService
	errs *ValidationError
}

func (s *CorpusService) NewCorpusForm(owner *model.User, input CorpusInput) *CorpusForm {
	return &CorpusForm{Owner: owner, Input: input, svc: s}
}

func (f *CorpusForm) IsValid() bool {
	f.errs = &ValidationError{}
	if err := f.Input.Validate(); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			f.errs = verr
		}
		return false
	}
	return true
}

func (f *CorpusForm) Errors() map[string][]string {
	if f.errs == nil {
		return nil
	}
	return f.errs.Fields
}

// Save creates the corpus. A duplicate name is reported as a form wide
// error.
func (f *CorpusForm) Save() (*model.Corpus, error) {
	if f.errs == nil || !f.errs.Empty() {
		return nil, ErrUnvalidatedForm
	}
	corpus, err := f.svc.Create(f.Owner.ID, f.Input)
	if errors.Is(err, ErrCorpusNameTaken) {
		f.errs.Add("__all__", err.Error())
	}
	return corpus, err
}
