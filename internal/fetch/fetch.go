// Package fetch downloads paper artifacts from arxiv: PDF bytes, the latex
// source tarball, license information from the abstract page, and metadata
// from the Atom API.
package fetch

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/lumitools/lumimport/internal/doc"
)

const (
	// DefaultBaseURL serves abstract pages, PDFs, and source tarballs.
	DefaultBaseURL = "https://arxiv.org"
	// DefaultAPIBaseURL serves the Atom metadata API.
	DefaultAPIBaseURL = "http://export.arxiv.org"
)

// Papers under the arxiv non-exclusive license cannot be redistributed in
// processed form, so imports of them fail hard.
var (
	ErrInvalidLicense = errors.New("paper has a non-exclusive license and cannot be processed")
	ErrNoLicense      = errors.New("no valid license found")
	ErrNoLatexSource  = errors.New("paper has no latex source")
)

var validLicenses = []string{
	"creativecommons.org/licenses/by/4.0/",
	"creativecommons.org/licenses/by-sa/4.0/",
	"creativecommons.org/share-your-work/public-domain/cc0/",
}

var invalidLicenses = []string{
	"arxiv.org/licenses/nonexclusive-distrib/1.0/",
}

// Config holds the configuration for the arxiv client.
type Config struct {
	BaseURL    string
	APIBaseURL string
	Timeout    time.Duration
	Logger     *zap.Logger
}

// Client fetches paper artifacts over HTTP.
type Client struct {
	baseURL    string
	apiBaseURL string
	client     *http.Client
	log        *zap.Logger
}

// New creates an arxiv client.
func New(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	apiBaseURL := cfg.APIBaseURL
	if apiBaseURL == "" {
		apiBaseURL = DefaultAPIBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiBaseURL: strings.TrimRight(apiBaseURL, "/"),
		client:     &http.Client{Timeout: timeout},
		log:        logger,
	}
}

// CheckLicense scrapes the paper's abstract page and verifies that it links
// a redistributable license. An explicit non-exclusive license returns
// ErrInvalidLicense; a page with no recognized license returns ErrNoLicense.
func (c *Client) CheckLicense(ctx context.Context, arxivID string) error {
	body, err := c.get(ctx, c.baseURL+"/abs/"+arxivID)
	if err != nil {
		return fmt.Errorf("fetch abstract page: %w", err)
	}

	page, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("parse abstract page: %w", err)
	}

	var hrefs []string
	page.Find("a").Each(func(_ int, sel *goquery.Selection) {
		if href, ok := sel.Attr("href"); ok {
			hrefs = append(hrefs, href)
		}
	})

	for _, href := range hrefs {
		for _, invalid := range invalidLicenses {
			if strings.Contains(href, invalid) {
				return ErrInvalidLicense
			}
		}
	}
	for _, href := range hrefs {
		for _, valid := range validLicenses {
			if strings.Contains(href, valid) {
				c.log.Debug("license check passed",
					zap.String("arxiv_id", arxivID),
					zap.String("license", valid))
				return nil
			}
		}
	}
	return ErrNoLicense
}

// FetchPDF downloads the paper PDF.
func (c *Client) FetchPDF(ctx context.Context, arxivID, version string) ([]byte, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/pdf/%sv%s", c.baseURL, arxivID, version))
	if err != nil {
		return nil, fmt.Errorf("fetch pdf: %w", err)
	}
	c.log.Debug("fetched pdf", zap.String("arxiv_id", arxivID), zap.Int("bytes", len(body)))
	return body, nil
}

// FetchLatexSource downloads the latex source tarball. Papers submitted as
// PDF only serve a different payload from the src endpoint; the response is
// verified by its gzip magic bytes and ErrNoLatexSource returned otherwise.
func (c *Client) FetchLatexSource(ctx context.Context, arxivID, version string) ([]byte, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/src/%sv%s", c.baseURL, arxivID, version))
	if err != nil {
		return nil, fmt.Errorf("fetch latex source: %w", err)
	}
	if len(body) < 2 || body[0] != 0x1F || body[1] != 0x8B {
		return nil, ErrNoLatexSource
	}
	c.log.Debug("fetched latex source", zap.String("arxiv_id", arxivID), zap.Int("bytes", len(body)))
	return body, nil
}

// atomFeed mirrors the arxiv Atom API response.
type atomFeed struct {
	XMLName xml.Name    `xml:"http://www.w3.org/2005/Atom feed"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID        string `xml:"id"`
	Updated   string `xml:"updated"`
	Published string `xml:"published"`
	Title     string `xml:"title"`
	Summary   string `xml:"summary"`
	Authors   []struct {
		Name string `xml:"name"`
	} `xml:"author"`
}

// FetchMetadata queries the Atom API for the given ids.
func (c *Client) FetchMetadata(ctx context.Context, arxivIDs []string) ([]doc.Metadata, error) {
	query := url.Values{"id_list": {strings.Join(arxivIDs, ",")}}
	body, err := c.get(ctx, c.apiBaseURL+"/api/query?"+query.Encode())
	if err != nil {
		return nil, fmt.Errorf("fetch metadata: %w", err)
	}

	var feed atomFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("decode metadata feed: %w", err)
	}

	metadata := make([]doc.Metadata, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		paperID, version, err := splitVersionedID(entry.ID)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", entry.ID, err)
		}
		authors := make([]string, 0, len(entry.Authors))
		for _, a := range entry.Authors {
			authors = append(authors, a.Name)
		}
		metadata = append(metadata, doc.Metadata{
			PaperID:   paperID,
			Version:   version,
			Title:     entry.Title,
			Authors:   authors,
			Summary:   strings.TrimSpace(entry.Summary),
			Updated:   entry.Updated,
			Published: entry.Published,
		})
	}
	return metadata, nil
}

// splitVersionedID parses an Atom entry id link such as
// http://arxiv.org/abs/2301.0001v2 into the paper id and version.
func splitVersionedID(idLink string) (arxivID, version string, err error) {
	marker := "/abs/"
	i := strings.LastIndex(idLink, marker)
	if i < 0 {
		return "", "", fmt.Errorf("invalid arxiv id link %q", idLink)
	}
	versioned := idLink[i+len(marker):]
	v := strings.LastIndexByte(versioned, 'v')
	if v <= 0 || v == len(versioned)-1 {
		return "", "", fmt.Errorf("missing version in arxiv id %q", versioned)
	}
	return versioned[:v], versioned[v+1:], nil
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: status %d", rawURL, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
