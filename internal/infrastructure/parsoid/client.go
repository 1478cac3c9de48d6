// Package parsoid adapts the Parsoid HTML REST surface to the snapshot
// document model: transclusion nodes carry their template name and ordered
// parameters as data-mw JSON, which maps directly onto document.Block.
package parsoid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ArticleHistoryBot/internal/document"
	"ArticleHistoryBot/internal/ports"
)

// Client talks to a Parsoid REST endpoint (".../api/rest_v1").
type Client struct {
	base      string
	userAgent string
	client    *http.Client
}

var _ ports.PageService = (*Client)(nil)

// NewClient wires an HTTP client; a nil client gets a sane timeout.
func NewClient(base, userAgent string, client *http.Client) *Client {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{base: strings.TrimSuffix(base, "/"), userAgent: userAgent, client: client}
}

// orderedParams preserves the parameter order of the data-mw params object,
// which encoding/json maps would lose.
type orderedParams []document.Param

func (op *orderedParams) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil { // opening brace
		return err
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("param key is %T, not string", tok)
		}
		var val struct {
			Wt string `json:"wt"`
		}
		if err := dec.Decode(&val); err != nil {
			return err
		}
		*op = append(*op, document.Param{Key: key, Value: val.Wt})
	}
	_, err := dec.Token() // closing brace
	return err
}

type templateTarget struct {
	Wt string `json:"wt"`
}

type templatePart struct {
	Target templateTarget `json:"target"`
	Params orderedParams  `json:"params"`
}

type dataMWPart struct {
	Template *templatePart `json:"template"`
}

type dataMW struct {
	Parts []json.RawMessage `json:"parts"`
}

// decodeTransclusion reads one data-mw attribute into a block. Only nodes
// holding exactly one template part are representable as blocks.
func decodeTransclusion(raw string) (document.Block, bool) {
	var mw dataMW
	if err := json.Unmarshal([]byte(raw), &mw); err != nil || len(mw.Parts) != 1 {
		return document.Block{}, false
	}
	var part dataMWPart
	if err := json.Unmarshal(mw.Parts[0], &part); err != nil || part.Template == nil {
		return document.Block{}, false
	}
	return document.Block{
		Name:   strings.TrimSpace(part.Template.Target.Wt),
		Params: part.Template.Params,
	}, true
}

// encodeTransclusion renders a block back to data-mw JSON, keeping the
// parameter order by writing the params object by hand.
func encodeTransclusion(b document.Block) string {
	var buf bytes.Buffer
	name, _ := json.Marshal(b.Name)
	buf.WriteString(`{"parts":[{"template":{"target":{"wt":`)
	buf.Write(name)
	buf.WriteString(`},"params":{`)
	for i, p := range b.Params {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(p.Key)
		val, _ := json.Marshal(p.Value)
		buf.Write(key)
		buf.WriteString(`:{"wt":`)
		buf.Write(val)
		buf.WriteByte('}')
	}
	buf.WriteString(`},"i":0}}]}`)
	return buf.String()
}

// transclusions returns, in document order, the nodes that decode to blocks.
func transclusions(doc *goquery.Document) (*goquery.Selection, []document.Block, []int) {
	sel := doc.Find(`[typeof*="mw:Transclusion"]`)
	var blocks []document.Block
	var nodes []int
	sel.Each(func(i int, s *goquery.Selection) {
		raw, ok := s.Attr("data-mw")
		if !ok {
			return
		}
		if b, ok := decodeTransclusion(raw); ok {
			blocks = append(blocks, b)
			nodes = append(nodes, i)
		}
	})
	return sel, blocks, nodes
}

// Fetch loads a page's Parsoid HTML and snapshots its template blocks.
func (c *Client) Fetch(ctx context.Context, title string) (ports.Page, error) {
	endpoint := c.base + "/page/html/" + url.PathEscape(strings.ReplaceAll(title, " ", "_"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return ports.Page{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return ports.Page{}, fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ports.Page{}, fmt.Errorf("parsoid returned %s for %q", resp.Status, title)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ports.Page{}, fmt.Errorf("read page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ports.Page{}, fmt.Errorf("parse html: %w", err)
	}
	_, blocks, _ := transclusions(doc)

	return ports.Page{
		Title: title,
		RevID: revisionFromETag(resp.Header.Get("ETag")),
		HTML:  string(body),
		Doc:   document.Document{Blocks: blocks},
	}, nil
}

// revisionFromETag parses the revision out of Parsoid's `W/"12345/uuid"`.
func revisionFromETag(etag string) int64 {
	etag = strings.TrimPrefix(etag, "W/")
	etag = strings.Trim(etag, `"`)
	if i := strings.IndexByte(etag, '/'); i >= 0 {
		etag = etag[:i]
	}
	rev, _ := strconv.ParseInt(etag, 10, 64)
	return rev
}

// Render applies the edit instructions to the page's HTML and converts the
// result back to wikitext through the Parsoid transform endpoint.
func (c *Client) Render(ctx context.Context, page ports.Page, edits []document.Edit) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	sel, blocks, nodes := transclusions(doc)
	for _, e := range edits {
		if e.Index < 0 || e.Index >= len(blocks) {
			return "", fmt.Errorf("edit index %d out of range", e.Index)
		}
		node := sel.Eq(nodes[e.Index])
		switch e.Op {
		case document.OpRename:
			blocks[e.Index].Name = e.Name
			node.SetAttr("data-mw", encodeTransclusion(blocks[e.Index]))
		case document.OpReplaceParams:
			blocks[e.Index].Params = e.Params
			node.SetAttr("data-mw", encodeTransclusion(blocks[e.Index]))
		case document.OpRemove:
			removeWithWhitespace(node)
		case document.OpInsertBefore:
			mw := encodeTransclusion(document.Block{Name: e.Name, Params: e.Params})
			node.BeforeHtml(fmt.Sprintf(`<span typeof="mw:Transclusion" data-mw="%s"></span>%s`,
				htmlAttrEscape(mw), "\n"))
		}
	}

	html, err := doc.Find("html").First().Html()
	if err != nil {
		return "", fmt.Errorf("serialize html: %w", err)
	}

	return c.toWikitext(ctx, page.Title, "<html>"+html+"</html>")
}

// removeWithWhitespace detaches a node and a directly trailing newline text
// node, so consumed templates do not leave blank lines behind.
func removeWithWhitespace(node *goquery.Selection) {
	for _, n := range node.Nodes {
		if next := n.NextSibling; next != nil && strings.TrimSpace(next.Data) == "" && next.FirstChild == nil {
			next.Parent.RemoveChild(next)
		}
	}
	node.Remove()
}

func htmlAttrEscape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	return strings.ReplaceAll(s, `"`, "&quot;")
}

func (c *Client) toWikitext(ctx context.Context, title, html string) (string, error) {
	endpoint := c.base + "/transform/html/to/wikitext/" + url.PathEscape(strings.ReplaceAll(title, " ", "_"))
	form := url.Values{}
	form.Set("html", html)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build transform request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("transform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transform returned %s", resp.Status)
	}

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read wikitext: %w", err)
	}
	return string(text), nil
}
