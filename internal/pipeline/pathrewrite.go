package pipeline

import (
	"net/url"
	"path"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// AssetResolver resolves relative asset references of one document.
//
// References resolve against the asset base when set, otherwise against the
// document URL (so "img/x.png" in ko/post.md becomes ko/img/x.png). For
// file URLs the result must stay under root; references escaping it are left
// unchanged.
type AssetResolver struct {
	base *url.URL
	root *url.URL
}

// NewAssetResolver creates a resolver. assetBase may be empty. docURL is the
// URL the document was fetched from and root is the content base URL.
// Unparseable inputs yield a resolver that leaves references unchanged.
func NewAssetResolver(assetBase, docURL, root string) *AssetResolver {
	r := &AssetResolver{}
	if assetBase != "" {
		if u, err := url.Parse(ensureTrailingSlash(assetBase)); err == nil && u.Scheme != "" {
			r.base = u
		}
	}
	if r.base == nil && docURL != "" {
		if u, err := url.Parse(docURL); err == nil && u.Scheme != "" {
			r.base = u
		}
	}
	if root != "" {
		if u, err := url.Parse(ensureTrailingSlash(root)); err == nil {
			r.root = u
		}
	}
	return r
}

// Resolve returns ref resolved against the resolver's base.
func (r *AssetResolver) Resolve(ref string) string {
	if r == nil || r.base == nil || !isRelativePath(ref) {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	resolved := r.base.ResolveReference(u)
	if resolved.Scheme == "file" && r.root != nil && !isPathUnderDir(resolved.Path, r.root.Path) {
		return ref
	}
	return resolved.String()
}

// RewriteAssetURLs resolves relative media sources in raw HTML that did not
// go through the image renderer.
//
// Rewrites img[src], source[src], video[src|poster] and audio[src].
// Links (a[href]) are site navigation and are left alone.
func RewriteAssetURLs(htmlContent string, r *AssetResolver) (string, error) {
	if r == nil || r.base == nil || htmlContent == "" {
		return htmlContent, nil
	}

	doc, isFragment, err := parseHTML(htmlContent)
	if err != nil {
		return "", err
	}

	rewriteNode(doc, r)

	return renderHTML(doc, isFragment)
}

// parseHTML parses HTML content, handling both full documents and fragments.
// Returns the parsed node, whether it was a fragment, and any error.
func parseHTML(content string) (*html.Node, bool, error) {
	trimmed := strings.TrimSpace(content)

	// Full document: starts with <!DOCTYPE or <html
	if strings.HasPrefix(strings.ToLower(trimmed), "<!doctype") ||
		strings.HasPrefix(strings.ToLower(trimmed), "<html") {
		doc, err := html.Parse(strings.NewReader(content))
		return doc, false, err
	}

	// Fragment: parse with body context to avoid wrapping
	context := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
	nodes, err := html.ParseFragment(strings.NewReader(content), context)
	if err != nil {
		return nil, true, err
	}

	// Wrap nodes in a container for uniform traversal
	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}

	return container, true, nil
}

// renderHTML renders the document back to string.
// For fragments, only renders the children (avoids adding <html><body> wrapper).
func renderHTML(doc *html.Node, isFragment bool) (string, error) {
	var buf strings.Builder

	if isFragment {
		for c := doc.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(&buf, c); err != nil {
				return "", err
			}
		}
		return buf.String(), nil
	}

	if err := html.Render(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// rewriteNode traverses the DOM and resolves media sources.
func rewriteNode(n *html.Node, r *AssetResolver) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Img, atom.Source, atom.Audio:
			rewriteAttr(n, "src", r)
		case atom.Video:
			rewriteAttr(n, "src", r)
			rewriteAttr(n, "poster", r)
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		rewriteNode(c, r)
	}
}

func rewriteAttr(n *html.Node, attrName string, r *AssetResolver) {
	for i, attr := range n.Attr {
		if attr.Key == attrName {
			n.Attr[i].Val = r.Resolve(attr.Val)
		}
	}
}

// isRelativePath returns true if the reference should be resolved.
func isRelativePath(ref string) bool {
	if ref == "" {
		return false
	}
	lower := strings.ToLower(ref)

	// Skip URLs with a scheme and protocol-relative URLs
	if strings.HasPrefix(lower, "//") || strings.Contains(strings.SplitN(lower, "/", 2)[0], ":") {
		return false
	}

	// Skip anchors and root-relative paths (served by the site itself)
	return !strings.HasPrefix(ref, "#") && !strings.HasPrefix(ref, "/")
}

// isPathUnderDir checks if p is under dir (prevents traversal out of a
// local content root).
func isPathUnderDir(p, dir string) bool {
	cleanPath := path.Clean("/" + p)
	cleanDir := path.Clean("/" + dir)
	if !strings.HasSuffix(cleanDir, "/") {
		cleanDir += "/"
	}
	return strings.HasPrefix(cleanPath+"/", cleanDir)
}

func ensureTrailingSlash(s string) string {
	if strings.HasSuffix(s, "/") {
		return s
	}
	return s + "/"
}
