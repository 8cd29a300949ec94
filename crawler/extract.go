package crawler

import (
	"io"
	"strings"

	"golang.org/x/net/html"

	"iitubot/internal/helpers"
)

// extracted holds everything a single HTML document yields.
type extracted struct {
	Title       string
	Description string
	Text        string
	Links       []string
}

// extractPage parses an HTML document and pulls out the title, the meta
// description, the flattened text content and all out-links resolved against
// pageURL. script and style subtrees are dropped before flattening so the
// result is deterministic for a given input.
func extractPage(pageURL string, r io.Reader) (extracted, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return extracted{}, err
	}

	var out extracted
	var text strings.Builder
	seen := make(map[string]struct{})

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style":
				return
			case "title":
				if out.Title == "" {
					out.Title = strings.TrimSpace(nodeText(n))
				}
			case "meta":
				if out.Description == "" && attr(n, "name") == "description" {
					out.Description = strings.TrimSpace(attr(n, "content"))
				}
			case "a":
				if href := attr(n, "href"); href != "" {
					if abs, err := helpers.Resolve(pageURL, href); err == nil {
						if _, dup := seen[abs]; !dup {
							seen[abs] = struct{}{}
							out.Links = append(out.Links, abs)
						}
					}
				}
			}
		}
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
			text.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	out.Text = strings.Join(strings.Fields(text.String()), " ")
	return out, nil
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}
