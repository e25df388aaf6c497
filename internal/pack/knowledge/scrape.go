package knowledge

import (
	"context"
	"fmt"
	"hash/fnv"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/time/rate"

	"github.com/mhollis/packworth/pkg/packs"
)

// Scraper fetches community pages and turns their HTML tables into
// knowledge entities. Requests are rate limited to stay polite.
type Scraper struct {
	client  *http.Client
	limiter *rate.Limiter
	log     *slog.Logger
}

// NewScraper builds a scraper with a shared rate limit across all fetches.
func NewScraper(log *slog.Logger) *Scraper {
	if log == nil {
		log = slog.Default()
	}
	return &Scraper{
		client:  &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Every(time.Second), 2),
		log:     log,
	}
}

// nodeText concatenates the text content under a node, trimmed.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}

// findAll collects descendant elements by tag name, in document order.
func findAll(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func rowCells(tr *html.Node) []string {
	var cells []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "td" || n.Data == "th") {
			cells = append(cells, nodeText(n))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return cells
}

func nameHash(name string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(name))
	return h.Sum32()
}

// ParseTables extracts every HTML table in the document into one entity
// per data row. The first row's th cells name the columns; unnamed columns
// get positional col_N keys.
func ParseTables(game, htmlText, source, detail string) ([]packs.KnowledgeEntity, error) {
	doc, err := html.Parse(strings.NewReader(htmlText))
	if err != nil {
		return nil, fmt.Errorf("parsing html from %s: %w", detail, err)
	}

	var entities []packs.KnowledgeEntity
	for tIdx, table := range findAll(doc, "table") {
		var headers []string
		for _, th := range findAll(table, "th") {
			headers = append(headers, nodeText(th))
		}
		rows := findAll(table, "tr")
		if len(rows) < 2 {
			continue
		}
		for rIdx, row := range rows[1:] {
			cells := rowCells(row)
			if len(cells) == 0 {
				continue
			}
			attrs := make(map[string]any, len(cells))
			for i, cell := range cells {
				key := fmt.Sprintf("col_%d", i)
				if i < len(headers) && headers[i] != "" {
					key = headers[i]
				}
				attrs[key] = cell
			}
			name := ""
			for _, candidate := range []string{"Name", "Hero", "Building", "Title"} {
				if v, ok := attrs[candidate].(string); ok && v != "" {
					name = v
					break
				}
			}
			if name == "" {
				name = fmt.Sprintf("row_%d_%d", tIdx, rIdx)
			}
			entities = append(entities, packs.KnowledgeEntity{
				ID:           fmt.Sprintf("%s-%d-%d-%d", source, tIdx, rIdx, nameHash(name)),
				Game:         game,
				EntityType:   "table",
				Name:         name,
				Source:       source,
				SourceDetail: detail,
				Attributes:   attrs,
				Raw:          attrs,
			})
		}
	}
	return entities, nil
}

// fetch performs one rate-limited GET and returns the body.
func (s *Scraper) fetch(ctx context.Context, url string) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("building request for %s: %w", url, err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching %s: status %s", url, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", url, err)
	}
	return string(body), nil
}

// ScrapeSite fetches each path under baseURL and parses its tables into
// entities tagged with the given source label.
func (s *Scraper) ScrapeSite(ctx context.Context, game, source, baseURL string, paths []string) ([]packs.KnowledgeEntity, error) {
	var entities []packs.KnowledgeEntity
	for _, path := range paths {
		url := strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/")
		body, err := s.fetch(ctx, url)
		if err != nil {
			return nil, err
		}
		parsed, err := ParseTables(game, body, source, url)
		if err != nil {
			return nil, err
		}
		entities = append(entities, parsed...)
	}
	s.log.Info("scraped knowledge entities", "source", source, "count", len(entities))
	return entities, nil
}
