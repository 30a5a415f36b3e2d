package markdown

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	headingLine   = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
	quoteLine     = regexp.MustCompile(`^\s*>\s?(.*)$`)
	orderedItem   = regexp.MustCompile(`^\s*\d+\.\s+(.*)$`)
	unorderedItem = regexp.MustCompile(`^\s*[*+-]\s+(.*)$`)

	codeSpan = regexp.MustCompile("`([^`]+)`")
	link     = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	bold     = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italic   = regexp.MustCompile(`\*([^*]+)\*`)
)

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// Escape replaces &, < and > with entities. Quotes are left alone.
func Escape(s string) string {
	return htmlEscaper.Replace(s)
}

// block is the one construct that may be open at a line boundary.
type block int

const (
	blockNone block = iota
	blockUnordered
	blockOrdered
	blockQuote
	blockCode
)

type lightRenderer struct {
	out   strings.Builder
	state block
}

// Render converts the small markdown subset used by pattern READMEs into
// HTML: ATX headings, blockquotes, flat ordered and unordered lists, fenced
// code blocks and paragraphs, plus inline code, links, bold and italic.
// Anything else is emitted as a paragraph and raw HTML passes through.
func Render(markdown string) string {
	r := &lightRenderer{}
	for _, raw := range strings.Split(strings.ReplaceAll(markdown, "\r\n", "\n"), "\n") {
		r.line(raw)
	}
	r.close()
	return r.out.String()
}

// close ends whatever block is open.
func (r *lightRenderer) close() {
	switch r.state {
	case blockUnordered:
		r.out.WriteString("</ul>")
	case blockOrdered:
		r.out.WriteString("</ol>")
	case blockQuote:
		r.out.WriteString("</blockquote>")
	case blockCode:
		r.out.WriteString("</code></pre>")
	}
	r.state = blockNone
}

// open switches to b, closing the current block unless it already is b.
func (r *lightRenderer) open(b block) {
	if r.state == b {
		return
	}
	r.close()
	switch b {
	case blockUnordered:
		r.out.WriteString("<ul>")
	case blockOrdered:
		r.out.WriteString("<ol>")
	case blockQuote:
		r.out.WriteString("<blockquote>")
	case blockCode:
		r.out.WriteString("<pre><code>")
	}
	r.state = b
}

func (r *lightRenderer) line(raw string) {
	line := strings.TrimRightFunc(raw, unicode.IsSpace)
	trimmed := strings.TrimSpace(line)

	if strings.HasPrefix(trimmed, "```") {
		if r.state == blockCode {
			r.close()
		} else {
			r.open(blockCode)
		}
		return
	}

	if r.state == blockCode {
		r.out.WriteString(Escape(raw))
		r.out.WriteByte('\n')
		return
	}

	if m := headingLine.FindStringSubmatch(line); m != nil {
		r.close()
		level := strconv.Itoa(len(m[1]))
		r.out.WriteString("<h" + level + ">" + renderInline(m[2]) + "</h" + level + ">")
		return
	}

	if m := quoteLine.FindStringSubmatch(line); m != nil {
		r.open(blockQuote)
		r.out.WriteString("<p>" + renderInline(m[1]) + "</p>")
		return
	}

	if m := orderedItem.FindStringSubmatch(line); m != nil {
		r.open(blockOrdered)
		r.out.WriteString("<li>" + renderInline(m[1]) + "</li>")
		return
	}

	if m := unorderedItem.FindStringSubmatch(line); m != nil {
		r.open(blockUnordered)
		r.out.WriteString("<li>" + renderInline(m[1]) + "</li>")
		return
	}

	r.close()
	if trimmed == "" {
		return
	}
	r.out.WriteString("<p>" + renderInline(trimmed) + "</p>")
}

// renderInline formats code spans, links, bold and italic. Code spans are
// escaped and never formatted further, but emphasis and links may wrap them.
func renderInline(text string) string {
	var spans []string
	text = codeSpan.ReplaceAllStringFunc(text, func(m string) string {
		spans = append(spans, "<code>"+Escape(m[1:len(m)-1])+"</code>")
		return spanToken(len(spans) - 1)
	})

	text = link.ReplaceAllString(text, `<a href="$2" target="_blank" rel="noreferrer">$1</a>`)
	text = bold.ReplaceAllString(text, `<strong>$1</strong>`)
	text = italic.ReplaceAllString(text, `<em>$1</em>`)

	for i, span := range spans {
		text = strings.Replace(text, spanToken(i), span, 1)
	}
	return text
}

// spanToken stands in for a code span while the rest of the line is
// formatted. README sources do not contain NUL.
func spanToken(i int) string {
	return "\x00" + strconv.Itoa(i) + "\x00"
}
