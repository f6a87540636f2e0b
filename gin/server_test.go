package gin_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/fwojciec/stackdoc"
	"github.com/fwojciec/stackdoc/collab"
	"github.com/fwojciec/stackdoc/docsync"
	stackgin "github.com/fwojciec/stackdoc/gin"
	"github.com/fwojciec/stackdoc/ingest"
	"github.com/fwojciec/stackdoc/mock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// memoryStore is an in-memory DocumentService and ProjectService.
type memoryStore struct {
	mu        sync.Mutex
	projects  map[string]*stackdoc.Project
	documents map[string]*stackdoc.Document
	failWrite bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		projects:  map[string]*stackdoc.Project{"p1": {ID: "p1", Name: "Stack"}},
		documents: make(map[string]*stackdoc.Document),
	}
}

func (s *memoryStore) put(doc *stackdoc.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = doc
}

func (s *memoryStore) get(id string) *stackdoc.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.documents[id]
}

func (s *memoryStore) documentService() *mock.DocumentService {
	return &mock.DocumentService{
		CreateDocumentFn: func(ctx context.Context, doc *stackdoc.Document) error {
			cp := *doc
			s.put(&cp)
			return nil
		},
		FindDocumentByIDFn: func(ctx context.Context, id string) (*stackdoc.Document, error) {
			doc := s.get(id)
			if doc == nil {
				return nil, stackdoc.Errorf(stackdoc.ENOTFOUND, "document not found")
			}
			cp := *doc
			return &cp, nil
		},
		FindDocumentsFn: func(ctx context.Context, filter stackdoc.DocumentFilter) ([]*stackdoc.Document, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			var out []*stackdoc.Document
			for _, doc := range s.documents {
				if filter.ProjectID == nil || doc.ProjectID == *filter.ProjectID {
					cp := *doc
					out = append(out, &cp)
				}
			}
			return out, nil
		},
		UpdateDocumentFn: func(ctx context.Context, id string, upd stackdoc.DocumentUpdate) (*stackdoc.Document, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.failWrite {
				return nil, stackdoc.Errorf(stackdoc.EINTERNAL, "disk full")
			}
			doc, ok := s.documents[id]
			if !ok {
				return nil, stackdoc.Errorf(stackdoc.ENOTFOUND, "document not found")
			}
			upd.Apply(doc)
			cp := *doc
			return &cp, nil
		},
		DeleteDocumentFn: func(ctx context.Context, id string) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			if _, ok := s.documents[id]; !ok {
				return stackdoc.Errorf(stackdoc.ENOTFOUND, "document not found")
			}
			delete(s.documents, id)
			return nil
		},
	}
}

func (s *memoryStore) projectService() *mock.ProjectService {
	return &mock.ProjectService{
		CreateProjectFn: func(ctx context.Context, project *stackdoc.Project) error {
			if err := project.Validate(); err != nil {
				return err
			}
			s.mu.Lock()
			defer s.mu.Unlock()
			project.ID = "p2"
			s.projects[project.ID] = project
			return nil
		},
		FindProjectByIDFn: func(ctx context.Context, id string) (*stackdoc.Project, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			p, ok := s.projects[id]
			if !ok {
				return nil, stackdoc.Errorf(stackdoc.ENOTFOUND, "project not found")
			}
			return p, nil
		},
		FindProjectsFn: func(ctx context.Context, filter stackdoc.ProjectFilter) ([]*stackdoc.Project, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			var out []*stackdoc.Project
			for _, p := range s.projects {
				cp := *p
				out = append(out, &cp)
			}
			return out, nil
		},
		UpdateProjectFn: func(ctx context.Context, id string, upd stackdoc.ProjectUpdate) (*stackdoc.Project, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			p, ok := s.projects[id]
			if !ok {
				return nil, stackdoc.Errorf(stackdoc.ENOTFOUND, "project not found")
			}
			if upd.Name != nil {
				p.Name = *upd.Name
			}
			return p, nil
		},
		DeleteProjectFn: func(ctx context.Context, id string) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			if _, ok := s.projects[id]; !ok {
				return stackdoc.Errorf(stackdoc.ENOTFOUND, "project not found")
			}
			delete(s.projects, id)
			return nil
		},
	}
}

type fixture struct {
	store     *memoryStore
	extractor *mock.Extractor
	scraper   *mock.Scraper
	parser    *mock.InputParser
	hub       *collab.Hub
	handler   http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:     newMemoryStore(),
		extractor: &mock.Extractor{},
		scraper:   &mock.Scraper{},
		parser:    &mock.InputParser{},
		hub:       collab.NewHub(),
	}
	documents := f.store.documentService()
	projects := f.store.projectService()

	api := &stackgin.API{
		Extractor: f.extractor,
		Scraper:   f.scraper,
		Parser:    f.parser,
		Projects:  projects,
		Documents: documents,
		Pipeline: &ingest.Pipeline{
			Projects:  projects,
			Documents: documents,
			Extractor: f.extractor,
			NewID:     func() string { return "d-new" },
		},
		Sessions: docsync.NewController(documents, nil),
		Hub:      f.hub,
	}
	f.handler = stackgin.NewServer(stackgin.Config{}, api).Handler()
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func activeDocument(id string) *stackdoc.Document {
	return &stackdoc.Document{
		ID:        id,
		ProjectID: "p1",
		Title:     "Prisma",
		Status:    stackdoc.StatusActive,
		Content:   &stackdoc.Content{Tiptap: stackdoc.FallbackTree("Prisma", "ORM")},
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	rec := newFixture(t).do(t, http.MethodGet, "/api/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["ok"])
}

func TestScrape(t *testing.T) {
	t.Parallel()

	t.Run("returns content and metadata", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		var got stackdoc.ExtractRequest
		f.extractor.ExtractFn = func(ctx context.Context, req stackdoc.ExtractRequest) (*stackdoc.ExtractResult, error) {
			got = req
			return &stackdoc.ExtractResult{
				Content:  stackdoc.Content{Title: "Prisma", URL: req.URL, Tiptap: stackdoc.DefaultTree()},
				Metadata: stackdoc.IngestMetadata{Total: 1, Completed: 1, CreditsUsed: 1},
			}, nil
		}

		rec := f.do(t, http.MethodPost, "/api/scrape", `{"url":" https://prisma.io ","name":"Prisma","category":"ORM/Database"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "https://prisma.io", got.URL)
		assert.Equal(t, stackdoc.CategoryORMDatabase, got.Category)

		body := decode(t, rec)
		assert.Equal(t, true, body["success"])
		content := body["content"].(map[string]any)
		assert.Equal(t, "Prisma", content["title"])
		assert.Equal(t, "doc", content["tiptap"].(map[string]any)["type"])
		assert.Equal(t, float64(1), body["metadata"].(map[string]any)["creditsUsed"])
	})

	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"timeout", stackdoc.Errorf(stackdoc.ETIMEOUT, "Scrape operation timed out"), http.StatusGatewayTimeout, "Scrape operation timed out"},
		{"upstream", stackdoc.Errorf(stackdoc.EUPSTREAM, "Failed to scrape: 404"), http.StatusBadGateway, "Failed to scrape: 404"},
		{"internal", stackdoc.Errorf(stackdoc.EINTERNAL, "boom"), http.StatusInternalServerError, "Failed to process content"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			f.extractor.ExtractFn = func(ctx context.Context, req stackdoc.ExtractRequest) (*stackdoc.ExtractResult, error) {
				return nil, tt.err
			}

			rec := f.do(t, http.MethodPost, "/api/scrape", `{"url":"https://prisma.io"}`)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, decode(t, rec)["error"])
		})
	}

	t.Run("rejects malformed bodies", func(t *testing.T) {
		t.Parallel()

		rec := newFixture(t).do(t, http.MethodPost, "/api/scrape", `{`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestExtract(t *testing.T) {
	t.Parallel()

	t.Run("requires a url", func(t *testing.T) {
		t.Parallel()

		rec := newFixture(t).do(t, http.MethodPost, "/api/extract", `{"url":""}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "URL is required", decode(t, rec)["error"])
	})

	t.Run("returns the scraped page", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.scraper.ScrapeFn = func(ctx context.Context, url string) (*stackdoc.Page, error) {
			return &stackdoc.Page{URL: url, Title: "Gin", Markdown: "# Gin"}, nil
		}

		rec := f.do(t, http.MethodPost, "/api/extract", `{"url":"https://gin-gonic.com"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		content := decode(t, rec)["content"].(map[string]any)
		assert.Equal(t, "# Gin", content["markdown"])
		assert.Equal(t, "https://gin-gonic.com", content["url"])
	})
}

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("requires input", func(t *testing.T) {
		t.Parallel()

		rec := newFixture(t).do(t, http.MethodPost, "/api/parse", `{"input":"  "}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Input is required", decode(t, rec)["error"])
	})

	t.Run("returns the parsed record", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.parser.ParseFn = func(ctx context.Context, text string) (*stackdoc.ExtractedMetadata, error) {
			return &stackdoc.ExtractedMetadata{Name: "Prisma", Category: stackdoc.CategoryORMDatabase, URL: "https://prisma.io"}, nil
		}

		rec := f.do(t, http.MethodPost, "/api/parse", `{"input":"prisma orm"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "Prisma", body["name"])
		assert.Equal(t, "ORM/Database", body["category"])
	})

	t.Run("hides model failures", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.parser.ParseFn = func(ctx context.Context, text string) (*stackdoc.ExtractedMetadata, error) {
			return nil, stackdoc.Errorf(stackdoc.EUNAVAILABLE, "Failed to parse input: quota")
		}

		rec := f.do(t, http.MethodPost, "/api/parse", `{"input":"prisma"}`)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Failed to parse input", decode(t, rec)["error"])
	})
}

func TestProjects(t *testing.T) {
	t.Parallel()

	t.Run("creates a project", func(t *testing.T) {
		t.Parallel()

		rec := newFixture(t).do(t, http.MethodPost, "/api/projects", `{"name":"Web"}`)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "p2", decode(t, rec)["id"])
	})

	t.Run("rejects an empty name", func(t *testing.T) {
		t.Parallel()

		rec := newFixture(t).do(t, http.MethodPost, "/api/projects", `{"name":""}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("renames a project", func(t *testing.T) {
		t.Parallel()

		rec := newFixture(t).do(t, http.MethodPatch, "/api/projects/p1", `{"name":"Renamed"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Renamed", decode(t, rec)["name"])
	})

	t.Run("reports missing projects", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)

		assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPatch, "/api/projects/nope", `{"name":"x"}`).Code)
		assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodDelete, "/api/projects/nope", "").Code)
		assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/projects/nope/documents", "").Code)
	})

	t.Run("deletes a project", func(t *testing.T) {
		t.Parallel()

		rec := newFixture(t).do(t, http.MethodDelete, "/api/projects/p1", "")

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("lists projects with their documents", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.store.put(activeDocument("d1"))

		rec := f.do(t, http.MethodGet, "/api/projects", "")

		require.Equal(t, http.StatusOK, rec.Code)
		projects := decode(t, rec)["projects"].([]any)
		require.Len(t, projects, 1)
		docs := projects[0].(map[string]any)["documents"].([]any)
		assert.Len(t, docs, 1)
	})
}

func TestDocuments(t *testing.T) {
	t.Parallel()

	t.Run("adds a document through the pipeline", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.extractor.ExtractFn = func(ctx context.Context, req stackdoc.ExtractRequest) (*stackdoc.ExtractResult, error) {
			tree := stackdoc.FallbackTree("Prisma ORM", "ORM")
			return &stackdoc.ExtractResult{Content: stackdoc.Content{
				Title:       "Prisma ORM",
				Description: "ORM",
				URL:         req.URL,
				Tiptap:      tree,
				Markdown:    stackdoc.RenderMarkdown(tree),
			}}, nil
		}

		rec := f.do(t, http.MethodPost, "/api/projects/p1/documents", `{"name":"Prisma","category":"ORM/Database","url":"https://prisma.io"}`)

		require.Equal(t, http.StatusCreated, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "d-new", body["id"])
		assert.Equal(t, "active", body["status"])
		assert.Equal(t, stackdoc.StatusActive, f.store.get("d-new").Status)
	})

	t.Run("records failed extractions", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.extractor.ExtractFn = func(ctx context.Context, req stackdoc.ExtractRequest) (*stackdoc.ExtractResult, error) {
			return nil, stackdoc.Errorf(stackdoc.EUPSTREAM, "Failed to scrape: 404")
		}

		rec := f.do(t, http.MethodPost, "/api/projects/p1/documents", `{"url":"https://prisma.io"}`)

		require.Equal(t, http.StatusCreated, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "error", body["status"])
		assert.Equal(t, "Failed to scrape: 404", body["preview"])
	})

	t.Run("gets and deletes a document", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.store.put(activeDocument("d1"))

		rec := f.do(t, http.MethodGet, "/api/documents/d1", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Prisma", decode(t, rec)["title"])

		assert.Equal(t, http.StatusNoContent, f.do(t, http.MethodDelete, "/api/documents/d1", "").Code)
		assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/documents/d1", "").Code)
	})
}

func TestSessions(t *testing.T) {
	t.Parallel()

	open := func(t *testing.T, f *fixture, name string) string {
		t.Helper()

		rec := f.do(t, http.MethodPost, "/api/documents/d1/sessions", `{"name":"`+name+`"}`)
		require.Equal(t, http.StatusCreated, rec.Code)
		return decode(t, rec)["sessionId"].(string)
	}

	changeBody := func(text string) string {
		data, _ := json.Marshal(map[string]any{
			"tiptap": stackdoc.FallbackTree("Prisma", text),
		})
		return string(data)
	}

	t.Run("opens with the persisted tree and presence", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.store.put(activeDocument("d1"))

		rec := f.do(t, http.MethodPost, "/api/documents/d1/sessions", `{"name":"Ada Lovelace"}`)

		require.Equal(t, http.StatusCreated, rec.Code)
		body := decode(t, rec)
		assert.NotEmpty(t, body["sessionId"])
		assert.Equal(t, "doc", body["tiptap"].(map[string]any)["type"])

		collaboration := body["collaboration"].(map[string]any)
		assert.Equal(t, "connected", collaboration["status"])
		users := collaboration["users"].([]any)
		require.Len(t, users, 1)
		assert.Equal(t, "AL", users[0].(map[string]any)["initials"])
	})

	t.Run("refuses pending documents", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		doc := activeDocument("d1")
		doc.Status = stackdoc.StatusPending
		f.store.put(doc)

		rec := f.do(t, http.MethodPost, "/api/documents/d1/sessions", `{}`)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("persists distinct changes and skips repeats", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.store.put(activeDocument("d1"))
		id := open(t, f, "Ada")

		rec := f.do(t, http.MethodPost, "/api/sessions/"+id+"/changes", changeBody("edited"))
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "persisted", body["outcome"])
		assert.Equal(t, true, body["persisted"])
		assert.Equal(t, "# Prisma\n\nedited", f.store.get("d1").Content.Markdown)

		rec = f.do(t, http.MethodPost, "/api/sessions/"+id+"/changes", changeBody("edited"))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, decode(t, rec)["skipped"])
	})

	t.Run("rejects invalid trees", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.store.put(activeDocument("d1"))
		id := open(t, f, "Ada")

		rec := f.do(t, http.MethodPost, "/api/sessions/"+id+"/changes", `{"tiptap":{"type":"paragraph"}}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("reports failed writes as unavailable", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.store.put(activeDocument("d1"))
		id := open(t, f, "Ada")
		f.store.mu.Lock()
		f.store.failWrite = true
		f.store.mu.Unlock()

		rec := f.do(t, http.MethodPost, "/api/sessions/"+id+"/changes", changeBody("edited"))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("closing leaves the room", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.store.put(activeDocument("d1"))
		id := open(t, f, "Ada")

		rec := f.do(t, http.MethodGet, "/api/documents/d1/presence", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode(t, rec)["users"].([]any), 1)

		assert.Equal(t, http.StatusNoContent, f.do(t, http.MethodDelete, "/api/sessions/"+id, "").Code)
		assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPost, "/api/sessions/"+id+"/changes", changeBody("x")).Code)

		rec = f.do(t, http.MethodGet, "/api/documents/d1/presence", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, decode(t, rec)["users"])
	})

	t.Run("presence reads without creating rooms", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.store.put(activeDocument("d1"))

		rec := f.do(t, http.MethodGet, "/api/documents/d1/presence", "")
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "connected", body["status"])
		assert.Empty(t, body["users"])
		_, ok := f.hub.Lookup("d1")
		assert.False(t, ok)

		open(t, f, "Ada Lovelace")
		f.do(t, http.MethodGet, "/api/documents/d1/presence", "")
		open(t, f, "Alan Turing")

		rec = f.do(t, http.MethodGet, "/api/documents/d1/presence", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode(t, rec)["users"].([]any), 2)
	})

	t.Run("presence of a missing document", func(t *testing.T) {
		t.Parallel()

		rec := newFixture(t).do(t, http.MethodGet, "/api/documents/nope/presence", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestErrorStatusCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.StatusBadRequest, stackgin.ErrorStatusCode(stackdoc.EINVALID))
	assert.Equal(t, http.StatusNotFound, stackgin.ErrorStatusCode(stackdoc.ENOTFOUND))
	assert.Equal(t, http.StatusConflict, stackgin.ErrorStatusCode(stackdoc.ECONFLICT))
	assert.Equal(t, http.StatusServiceUnavailable, stackgin.ErrorStatusCode(stackdoc.EPERSIST))
	assert.Equal(t, http.StatusInternalServerError, stackgin.ErrorStatusCode("EUNKNOWN"))
}
