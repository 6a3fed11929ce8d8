package web

import (
	"io"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

var uploadMonth = regexp.MustCompile(`/wp-content/uploads/(\d{4})/(\d{2})/`)

// FindReportLinks returns absolute URLs of every anchor whose href contains
// marker and ends in .pdf, in document order.
func FindReportLinks(pageURL string, body io.Reader, marker string) ([]string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, err
	}
	doc, err := html.Parse(body)
	if err != nil {
		return nil, err
	}

	var links []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if href, ok := attr(n, "href"); ok {
				href = strings.TrimSpace(href)
				if strings.Contains(href, marker) && strings.HasSuffix(strings.ToLower(href), ".pdf") {
					if ref, err := url.Parse(href); err == nil {
						links = append(links, base.ResolveReference(ref).String())
					}
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return links, nil
}

// NewestLink picks the link with the latest /wp-content/uploads/YYYY/MM/
// folder. Links without one rank last; ties keep page order.
func NewestLink(links []string) string {
	if len(links) == 0 {
		return ""
	}
	ranked := make([]string, len(links))
	copy(ranked, links)
	sort.SliceStable(ranked, func(i, j int) bool {
		return uploadRank(ranked[i]) > uploadRank(ranked[j])
	})
	return ranked[0]
}

func uploadRank(link string) int {
	m := uploadMonth.FindStringSubmatch(link)
	if m == nil {
		return -1
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	return year*100 + month
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
