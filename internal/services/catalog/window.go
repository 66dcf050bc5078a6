package catalog

// PageLink is one entry of the pagination bar
type PageLink struct {
	Number   int
	Current  bool
	Ellipsis bool
}

// windowSize is how many consecutive page numbers the bar shows
const windowSize = 5

// PageWindow builds the pagination bar: up to five pages around current,
// plus the first and last page with ellipses when the window does not reach them.
func PageWindow(current, total int) []PageLink {
	if total <= 0 {
		return nil
	}
	current = min(max(current, 1), total)

	start := max(1, current-windowSize/2)
	end := min(total, start+windowSize-1)
	if end-start < windowSize-1 {
		start = max(1, end-windowSize+1)
	}

	var links []PageLink
	if start > 1 {
		links = append(links, PageLink{Number: 1})
		if start > 2 {
			links = append(links, PageLink{Ellipsis: true})
		}
	}
	for n := start; n <= end; n++ {
		links = append(links, PageLink{Number: n, Current: n == current})
	}
	if end < total {
		if end < total-1 {
			links = append(links, PageLink{Ellipsis: true})
		}
		links = append(links, PageLink{Number: total})
	}
	return links
}
