package listing

import "strconv"

// Paging is the page size of index listings. Zero or negative disables
// paging.
type Paging int

// Pointer holds the relative addresses of a page and its neighbours.
type Pointer struct {
	Prev    *string
	Current string
	Next    *string
}

// IsIndex reports whether the pointer addresses the root page.
func (p Pointer) IsIndex() bool { return p.Current == rootPath }

// FileName returns the file the page is written to.
func (p Pointer) FileName() string {
	if p.IsIndex() {
		return "index.html"
	}
	return p.Current[len("./"):]
}

const rootPath = "./"

func pagePath(n int) string {
	if n <= 1 {
		return rootPath
	}
	return "./" + strconv.Itoa(n) + ".html"
}

// NewPointer returns the pointer of page n (1-based) out of total pages.
func NewPointer(n, total int) Pointer {
	p := Pointer{Current: pagePath(n)}
	if n > 1 {
		prev := pagePath(n - 1)
		p.Prev = &prev
	}
	if n < total {
		next := pagePath(n + 1)
		p.Next = &next
	}
	return p
}

// Page is one chunk of a listing.
type Page[T any] struct {
	Number  int
	Total   int
	Items   []T
	Pointer Pointer
}

// Paginate splits items into pages of size paging. The result always has at
// least one page; an empty input yields a single empty root page.
func Paginate[T any](items []T, paging Paging) []Page[T] {
	size := int(paging)
	if size <= 0 || size > len(items) {
		size = len(items)
	}
	total := 1
	if size > 0 {
		total = (len(items) + size - 1) / size
	}
	pages := make([]Page[T], 0, total)
	for n := 1; n <= total; n++ {
		lo := (n - 1) * size
		hi := min(lo+size, len(items))
		chunk := make([]T, hi-lo)
		copy(chunk, items[lo:hi])
		pages = append(pages, Page[T]{
			Number:  n,
			Total:   total,
			Items:   chunk,
			Pointer: NewPointer(n, total),
		})
	}
	return pages
}
