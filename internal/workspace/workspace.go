// Package workspace keeps the set of open documents.
package workspace

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/motto/internal/engine"
)

// ScratchName is the name of the document every workspace starts with.
const ScratchName = "*scratch*"

// ErrDocumentNotFound indicates no open document has the given ID.
var ErrDocumentNotFound = errors.New("document not found")

// DocumentID identifies an open document.
type DocumentID string

// NewDocumentID returns a fresh random ID.
func NewDocumentID() DocumentID {
	return DocumentID(uuid.NewString())
}

// Document is an open engine and the name it was opened under.
type Document struct {
	ID     DocumentID
	Name   string
	Engine *engine.Engine
}

// Workspace maps document IDs to engines. It is safe for concurrent use.
type Workspace struct {
	mu         sync.RWMutex
	docs       map[DocumentID]*Document
	engineOpts []engine.Option
	logger     *slog.Logger
	scratch    DocumentID
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithEngineOptions sets options applied to every engine the workspace opens.
func WithEngineOptions(opts ...engine.Option) Option {
	return func(w *Workspace) {
		w.engineOpts = append(w.engineOpts, opts...)
	}
}

// WithLogger sets the workspace logger. Engines share it.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Workspace) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// New creates a workspace holding one empty scratch document.
func New(opts ...Option) *Workspace {
	w := &Workspace{
		docs:   make(map[DocumentID]*Document),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.scratch = w.Open(ScratchName, "")
	return w
}

// Open creates an engine holding content and returns its ID.
func (w *Workspace) Open(name, content string) DocumentID {
	opts := make([]engine.Option, 0, len(w.engineOpts)+2)
	opts = append(opts, w.engineOpts...)
	opts = append(opts, engine.WithContent(content), engine.WithLogger(w.logger.With("document", name)))

	doc := &Document{
		ID:     NewDocumentID(),
		Name:   name,
		Engine: engine.New(opts...),
	}

	w.mu.Lock()
	w.docs[doc.ID] = doc
	w.mu.Unlock()

	w.logger.Info("document opened", "id", doc.ID, "name", name, "bytes", len(content))
	return doc.ID
}

// Scratch returns the ID of the initial scratch document.
// The ID stays valid only until the scratch document is closed.
func (w *Workspace) Scratch() DocumentID {
	return w.scratch
}

// Get returns the document with the given ID.
func (w *Workspace) Get(id DocumentID) (*Document, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	doc, ok := w.docs[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrDocumentNotFound)
	}
	return doc, nil
}

// Close removes the document with the given ID.
func (w *Workspace) Close(id DocumentID) error {
	w.mu.Lock()
	doc, ok := w.docs[id]
	if ok {
		delete(w.docs, id)
	}
	w.mu.Unlock()

	if !ok {
		return fmt.Errorf("%s: %w", id, ErrDocumentNotFound)
	}
	w.logger.Info("document closed", "id", id, "name", doc.Name)
	return nil
}

// List returns the open documents sorted by name, then ID.
func (w *Workspace) List() []*Document {
	w.mu.RLock()
	docs := make([]*Document, 0, len(w.docs))
	for _, doc := range w.docs {
		docs = append(docs, doc)
	}
	w.mu.RUnlock()

	sort.Slice(docs, func(i, j int) bool {
		if docs[i].Name != docs[j].Name {
			return docs[i].Name < docs[j].Name
		}
		return docs[i].ID < docs[j].ID
	})
	return docs
}

// SetEditorDefaults changes the tab width and line ending of every open
// document and of documents opened later. Existing text keeps its line
// endings; only future inserts use the new one.
func (w *Workspace) SetEditorDefaults(tabWidth int, ending engine.LineEnding) {
	w.mu.Lock()
	w.engineOpts = append(w.engineOpts, engine.WithTabWidth(tabWidth), engine.WithLineEnding(ending))
	docs := make([]*Document, 0, len(w.docs))
	for _, doc := range w.docs {
		docs = append(docs, doc)
	}
	w.mu.Unlock()

	for _, doc := range docs {
		doc.Engine.SetTabWidth(tabWidth)
		doc.Engine.SetLineEnding(ending)
	}
	w.logger.Info("editor defaults changed", "tabWidth", tabWidth, "lineEnding", ending.String(), "documents", len(docs))
}

// Len returns the number of open documents.
func (w *Workspace) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.docs)
}
