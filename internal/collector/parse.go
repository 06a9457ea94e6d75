package collector

import (
	"strings"

	"golang.org/x/net/html"
)

// NormalizePrice strips thousands separators and surrounding
// whitespace from a Naver price cell.
func NormalizePrice(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	return s
}

// parseHTML is a tolerant wrapper; Naver markup is never well-formed.
func parseHTML(fragment string) (*html.Node, error) {
	return html.Parse(strings.NewReader(fragment))
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func findAll(n *html.Node, tag string, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag && (match == nil || match(n)) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func findFirst(n *html.Node, tag string, match func(*html.Node) bool) *html.Node {
	all := findAll(n, tag, match)
	if len(all) == 0 {
		return nil
	}
	return all[0]
}

// ParseNewsTable extracts news rows from the news.naver page HTML.
// Rows carry a title link, a source, and a date; spacer and paging
// rows are skipped. At most limit items are returned (0 means all).
func ParseNewsTable(pageHTML string, limit int) ([]NewsItem, error) {
	doc, err := parseHTML(pageHTML)
	if err != nil {
		return nil, err
	}

	table := findFirst(doc, "table", func(n *html.Node) bool {
		return hasClass(n, "type5")
	})
	if table == nil {
		return nil, nil
	}

	var items []NewsItem
	for _, tr := range findAll(table, "tr", nil) {
		titleCell := findFirst(tr, "td", func(n *html.Node) bool { return hasClass(n, "title") })
		if titleCell == nil {
			continue
		}
		link := findFirst(titleCell, "a", nil)
		if link == nil {
			continue
		}
		title := nodeText(link)
		if title == "" {
			continue
		}

		item := NewsItem{Title: title, URL: attr(link, "href")}
		if info := findFirst(tr, "td", func(n *html.Node) bool { return hasClass(n, "info") }); info != nil {
			item.Source = nodeText(info)
		}
		if date := findFirst(tr, "td", func(n *html.Node) bool { return hasClass(n, "date") }); date != nil {
			item.Date = nodeText(date)
		}
		items = append(items, item)
		if limit > 0 && len(items) >= limit {
			break
		}
	}
	return items, nil
}

// ParseInvestorTable extracts daily institutional and foreign trading
// rows from the frgn.naver page HTML. Data rows have six or more
// cells starting with a yy.mm.dd date.
func ParseInvestorTable(pageHTML string, limit int) ([]InvestorTrend, error) {
	doc, err := parseHTML(pageHTML)
	if err != nil {
		return nil, err
	}

	table := findFirst(doc, "table", func(n *html.Node) bool {
		return hasClass(n, "type2")
	})
	if table == nil {
		return nil, nil
	}

	var trends []InvestorTrend
	for _, tr := range findAll(table, "tr", nil) {
		cells := findAll(tr, "td", nil)
		if len(cells) < 6 {
			continue
		}
		date := nodeText(cells[0])
		if !looksLikeDate(date) {
			continue
		}
		t := InvestorTrend{
			Date:          date,
			ClosePrice:    NormalizePrice(nodeText(cells[1])),
			Change:        nodeText(cells[2]),
			Institutional: NormalizePrice(nodeText(cells[len(cells)-4])),
			Foreign:       NormalizePrice(nodeText(cells[len(cells)-3])),
			ForeignRatio:  nodeText(cells[len(cells)-1]),
		}
		trends = append(trends, t)
		if limit > 0 && len(trends) >= limit {
			break
		}
	}
	return trends, nil
}

// looksLikeDate matches Naver's yy.mm.dd date cells.
func looksLikeDate(s string) bool {
	if len(s) != 8 {
		return false
	}
	for i, r := range s {
		if i == 2 || i == 5 {
			if r != '.' {
				return false
			}
			continue
		}
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
