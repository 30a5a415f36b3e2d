// Package theme applies classless CSS themes to demo fragments.
//
// Themes are external stylesheets named by value. The fetcher loads a
// theme's CSS once, from a local file or over HTTP, and Inject writes it into
// the fragment as <style id="pattern-theme">, replacing the fragment's own
// demo styles.
package theme

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/conneroisu/patterns/internal/config"
	"github.com/conneroisu/patterns/internal/errors"
	"github.com/conneroisu/patterns/internal/logging"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// StyleID is the id of the injected theme stylesheet.
const StyleID = "pattern-theme"

// DemoStylesAttr marks fragment styles that a theme replaces.
const DemoStylesAttr = "data-demo-styles"

// maxCSSSize bounds a fetched stylesheet.
const maxCSSSize = 4 << 20

type Fetcher struct {
	themes []config.ThemeConfig
	client *http.Client
	logger logging.Logger

	mu    sync.Mutex
	cache map[string]string
}

func NewFetcher(themes []config.ThemeConfig, client *http.Client, logger logging.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Fetcher{
		themes: themes,
		client: client,
		logger: logger.WithComponent("theme"),
		cache:  make(map[string]string),
	}
}

// Themes returns the configured theme list in selector order.
func (f *Fetcher) Themes() []config.ThemeConfig {
	return f.themes
}

func (f *Fetcher) Lookup(value string) (config.ThemeConfig, bool) {
	for _, t := range f.themes {
		if t.Value == value {
			return t, true
		}
	}
	return config.ThemeConfig{}, false
}

// CSS returns the stylesheet text for a theme value. The empty value and
// themes without a source have no CSS. Successful fetches are cached;
// failures are not, so a later request retries.
func (f *Fetcher) CSS(ctx context.Context, value string) (string, error) {
	if value == "" {
		return "", nil
	}

	t, ok := f.Lookup(value)
	if !ok {
		return "", errors.ErrThemeUnknown(value)
	}
	if t.Source == "" {
		return "", nil
	}

	f.mu.Lock()
	css, cached := f.cache[value]
	f.mu.Unlock()
	if cached {
		return css, nil
	}

	op := logging.StartOperation(f.logger, "theme_fetch")
	css, err := f.fetch(ctx, t.Source)
	if err != nil {
		op.EndWithError(ctx, err)
		return "", err
	}
	op.End(ctx, "theme", value, "bytes", len(css))

	f.mu.Lock()
	f.cache[value] = css
	f.mu.Unlock()

	return css, nil
}

func (f *Fetcher) fetch(ctx context.Context, source string) (string, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		data, err := os.ReadFile(source)
		if err != nil {
			return "", errors.WrapIO(err, errors.ErrCodeThemeFetch, "reading theme stylesheet").WithFile(source)
		}
		return string(data), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return "", errors.WrapNetwork(err, errors.ErrCodeThemeFetch, "building theme request").WithFile(source)
	}
	req.Header.Set("Accept", "text/css")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", errors.WrapNetwork(err, errors.ErrCodeThemeFetch, "fetching theme stylesheet").WithFile(source)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.NewNetworkError(errors.ErrCodeThemeFetch,
			fmt.Sprintf("theme stylesheet returned %s", resp.Status), nil).WithFile(source)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCSSSize))
	if err != nil {
		return "", errors.WrapNetwork(err, errors.ErrCodeThemeFetch, "reading theme stylesheet").WithFile(source)
	}
	return string(data), nil
}

// Apply returns the fragment with the theme injected. When the theme has no
// CSS or cannot be fetched the fragment is returned unchanged together with
// the error, so callers can serve it unstyled.
func (f *Fetcher) Apply(ctx context.Context, fragment []byte, value string) ([]byte, error) {
	css, err := f.CSS(ctx, value)
	if err != nil || css == "" {
		return fragment, err
	}

	themed, err := Inject(fragment, css)
	if err != nil {
		return fragment, err
	}
	return themed, nil
}

// Inject parses an HTML document, removes any previous theme stylesheet and
// every <style data-demo-styles> element, and appends the CSS as
// <style id="pattern-theme"> to the head, falling back to the body and then
// the root element.
func Inject(document []byte, css string) ([]byte, error) {
	doc, err := html.Parse(bytes.NewReader(document))
	if err != nil {
		return nil, fmt.Errorf("parsing fragment: %w", err)
	}

	var stale []*html.Node
	var head, body, root *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case hasAttr(n, "id", StyleID):
				stale = append(stale, n)
			case n.DataAtom == atom.Style && hasAttr(n, DemoStylesAttr, ""):
				stale = append(stale, n)
			}
			switch n.DataAtom {
			case atom.Head:
				if head == nil {
					head = n
				}
			case atom.Body:
				if body == nil {
					body = n
				}
			case atom.Html:
				if root == nil {
					root = n
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	for _, n := range stale {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
	}

	mount := head
	if mount == nil {
		mount = body
	}
	if mount == nil {
		mount = root
	}
	if mount == nil {
		mount = doc
	}

	style := &html.Node{
		Type:     html.ElementNode,
		Data:     "style",
		DataAtom: atom.Style,
		Attr:     []html.Attribute{{Key: "id", Val: StyleID}},
	}
	style.AppendChild(&html.Node{Type: html.TextNode, Data: css})
	mount.AppendChild(style)

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return nil, fmt.Errorf("rendering fragment: %w", err)
	}
	return buf.Bytes(), nil
}

// hasAttr reports whether n carries key. A non-empty val must match too.
func hasAttr(n *html.Node, key, val string) bool {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return val == "" || a.Val == val
		}
	}
	return false
}
