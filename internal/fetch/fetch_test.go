package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/lumitools/lumimport/internal/doc"
)

const metadataFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title type="html">ArXiv Query: id_list=id_1,id_2</title>
  <entry>
    <id>http://arxiv.org/abs/id_1v1</id>
    <updated>2024-01-01T00:00:00Z</updated>
    <published>2023-12-01T00:00:00Z</published>
    <title>Generic Title One</title>
    <summary>Summary of the first paper.
</summary>
    <author><name>Author One</name></author>
    <author><name>Author Two</name></author>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/id_2v2</id>
    <updated>2024-02-01T00:00:00Z</updated>
    <published>2024-01-15T00:00:00Z</published>
    <title>Generic Title Two</title>
    <summary>Summary of the second paper.</summary>
    <author><name>Author A</name></author>
    <author><name>Author B</name></author>
    <author><name>Author C</name></author>
  </entry>
</feed>`

func newTestClient(handler http.Handler) (*Client, func()) {
	srv := httptest.NewServer(handler)
	c := New(Config{BaseURL: srv.URL, APIBaseURL: srv.URL})
	return c, srv.Close
}

func TestFetchMetadata(t *testing.T) {
	var gotPath string
	c, done := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path + "?" + r.URL.RawQuery
		w.Write([]byte(metadataFeed))
	}))
	defer done()

	got, err := c.FetchMetadata(context.Background(), []string{"id_1", "id_2"})
	if err != nil {
		t.Fatalf("FetchMetadata() error = %v", err)
	}

	if want := "/api/query?id_list=id_1%2Cid_2"; gotPath != want {
		t.Errorf("request path = %q, want %q", gotPath, want)
	}

	want := []doc.Metadata{
		{
			PaperID:   "id_1",
			Version:   "1",
			Title:     "Generic Title One",
			Authors:   []string{"Author One", "Author Two"},
			Summary:   "Summary of the first paper.",
			Updated:   "2024-01-01T00:00:00Z",
			Published: "2023-12-01T00:00:00Z",
		},
		{
			PaperID:   "id_2",
			Version:   "2",
			Title:     "Generic Title Two",
			Authors:   []string{"Author A", "Author B", "Author C"},
			Summary:   "Summary of the second paper.",
			Updated:   "2024-02-01T00:00:00Z",
			Published: "2024-01-15T00:00:00Z",
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("metadata mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckLicense(t *testing.T) {
	tests := []struct {
		name    string
		page    string
		wantErr error
	}{
		{
			name:    "valid cc-by license",
			page:    `<html><body><a href="https://creativecommons.org/licenses/by/4.0/">License</a></body></html>`,
			wantErr: nil,
		},
		{
			name:    "valid cc0 license",
			page:    `<html><body><a href="https://creativecommons.org/share-your-work/public-domain/cc0/">License</a></body></html>`,
			wantErr: nil,
		},
		{
			name: "non-exclusive license rejected even alongside a valid one",
			page: `<html><body>
				<a href="https://creativecommons.org/licenses/by/4.0/">License</a>
				<a href="http://arxiv.org/licenses/nonexclusive-distrib/1.0/">License</a>
			</body></html>`,
			wantErr: ErrInvalidLicense,
		},
		{
			name:    "no license link",
			page:    `<html><body><a href="/pdf/1234.5678">PDF</a></body></html>`,
			wantErr: ErrNoLicense,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, done := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.page))
			}))
			defer done()

			err := c.CheckLicense(context.Background(), "1234.5678")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CheckLicense() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFetchLatexSource(t *testing.T) {
	t.Run("gzip payload", func(t *testing.T) {
		payload := []byte{0x1F, 0x8B, 0x08, 0x00, 0x01}
		c, done := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/src/1234.5678v2" {
				t.Errorf("path = %q", r.URL.Path)
			}
			w.Write(payload)
		}))
		defer done()

		got, err := c.FetchLatexSource(context.Background(), "1234.5678", "2")
		if err != nil {
			t.Fatalf("FetchLatexSource() error = %v", err)
		}
		if string(got) != string(payload) {
			t.Errorf("payload mismatch: %v", got)
		}
	})

	t.Run("pdf-only paper", func(t *testing.T) {
		c, done := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("%PDF-1.5"))
		}))
		defer done()

		if _, err := c.FetchLatexSource(context.Background(), "1234.5678", "1"); !errors.Is(err, ErrNoLatexSource) {
			t.Errorf("error = %v, want ErrNoLatexSource", err)
		}
	})
}

func TestFetchPDFStatusError(t *testing.T) {
	c, done := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer done()

	if _, err := c.FetchPDF(context.Background(), "1234.5678", "1"); err == nil {
		t.Error("expected error for 404 response, got nil")
	}
}

func TestSplitVersionedID(t *testing.T) {
	tests := []struct {
		idLink      string
		wantID      string
		wantVersion string
		wantErr     bool
	}{
		{idLink: "http://arxiv.org/abs/2301.0001v2", wantID: "2301.0001", wantVersion: "2"},
		{idLink: "http://arxiv.org/abs/id_1v1", wantID: "id_1", wantVersion: "1"},
		{idLink: "http://arxiv.org/abs/2301.0001", wantErr: true},
		{idLink: "http://example.com/2301.0001v2", wantErr: true},
	}

	for _, tt := range tests {
		id, version, err := splitVersionedID(tt.idLink)
		if tt.wantErr {
			if err == nil {
				t.Errorf("splitVersionedID(%q) expected error", tt.idLink)
			}
			continue
		}
		if err != nil {
			t.Errorf("splitVersionedID(%q) error = %v", tt.idLink, err)
			continue
		}
		if id != tt.wantID || version != tt.wantVersion {
			t.Errorf("splitVersionedID(%q) = (%q, %q), want (%q, %q)", tt.idLink, id, version, tt.wantID, tt.wantVersion)
		}
	}
}
