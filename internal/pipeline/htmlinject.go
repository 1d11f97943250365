package pipeline

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Precompiled selectors and patterns for post-render passes.
var (
	// Diagram placeholder: PUA start, index, PUA end
	diagramPlaceholder = regexp.MustCompile(DiagramStartPlaceholder + `(\d+)` + DiagramEndPlaceholder)

	// Table-of-contents candidates
	tocHeadings = cascadia.MustCompile("h2[id], h3[id]")

	// Image blocks emitted by the image renderer
	imageBlocks = cascadia.MustCompile("span.image-block[data-image]")

	// Code blocks and their rendered content. The pre element is matched
	// so whitespace the highlighter writes after it is not part of the text.
	codeBlocks  = cascadia.MustCompile("figure.code-block[data-code-block]")
	codeContent = cascadia.MustCompile(".code-block-content pre")
)

// InjectDiagrams replaces diagram placeholders with markup(index).
// Runs after document sanitization; markup must already be safe.
func InjectDiagrams(htmlContent string, markup func(index int) string) string {
	return diagramPlaceholder.ReplaceAllStringFunc(htmlContent, func(m string) string {
		sub := diagramPlaceholder.FindStringSubmatch(m)
		idx, err := strconv.Atoi(sub[1])
		if err != nil {
			return ""
		}
		return markup(idx)
	})
}

// SwapFailedImages replaces the image blocks whose index is in failed with
// their placeholder. failed maps image index to alt text.
func SwapFailedImages(htmlContent string, failed map[int]string) (string, error) {
	if len(failed) == 0 {
		return htmlContent, nil
	}

	doc, isFragment, err := parseHTML(htmlContent)
	if err != nil {
		return "", err
	}

	for _, block := range imageBlocks.MatchAll(doc) {
		idx, err := strconv.Atoi(attrValue(block, "data-image"))
		if err != nil {
			continue
		}
		alt, ok := failed[idx]
		if !ok {
			continue
		}
		replacement, err := parseFragmentIn(ImagePlaceholderHTML(idx, alt), block.Parent)
		if err != nil {
			return "", err
		}
		for _, r := range replacement {
			block.Parent.InsertBefore(r, block)
		}
		block.Parent.RemoveChild(block)
	}

	return renderHTML(doc, isFragment)
}

// Heading is a rendered heading that a table of contents can link to.
type Heading struct {
	Level int
	ID    string
	Text  string
}

// ExtractHeadings returns level 2 and 3 headings carrying an id, in document
// order. Anchor icons (aria-hidden) do not contribute to Text.
func ExtractHeadings(htmlContent string) ([]Heading, error) {
	doc, _, err := parseHTML(htmlContent)
	if err != nil {
		return nil, err
	}

	var headings []Heading
	for _, n := range tocHeadings.MatchAll(doc) {
		level, _ := strconv.Atoi(strings.TrimPrefix(n.Data, "h"))
		headings = append(headings, Heading{
			Level: level,
			ID:    attrValue(n, "id"),
			Text:  strings.Join(strings.Fields(textContent(n)), " "),
		})
	}
	return headings, nil
}

// ExtractCodeText returns the rendered text of each code block by index.
// This is the text a copy action puts on the clipboard.
func ExtractCodeText(htmlContent string) (map[int]string, error) {
	doc, _, err := parseHTML(htmlContent)
	if err != nil {
		return nil, err
	}

	texts := map[int]string{}
	for _, fig := range codeBlocks.MatchAll(doc) {
		idx, err := strconv.Atoi(attrValue(fig, "data-code-block"))
		if err != nil {
			continue
		}
		if content := codeContent.MatchFirst(fig); content != nil {
			texts[idx] = textContent(content)
		}
	}
	return texts, nil
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// textContent concatenates text nodes below n, skipping aria-hidden subtrees.
func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			return
		}
		if n.Type == html.ElementNode && attrValue(n, "aria-hidden") == "true" {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func parseFragmentIn(fragment string, context *html.Node) ([]*html.Node, error) {
	if context == nil || context.Type != html.ElementNode {
		context = &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	}
	return html.ParseFragment(strings.NewReader(fragment), context)
}
