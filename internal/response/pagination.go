package response

import "fmt"

// DefaultPerPage is used when the client does not send per_page.
const DefaultPerPage = 15

// MaxPerPage caps per_page so a client cannot request the whole table.
const MaxPerPage = 100

// PageLinks holds absolute-path navigation links for a paginated listing.
// Prev and Next are null at the respective edges.
type PageLinks struct {
	First string  `json:"first"`
	Last  string  `json:"last"`
	Prev  *string `json:"prev"`
	Next  *string `json:"next"`
}

// PageMeta describes the position of the page within the full result set.
// From and To are null when the page is empty.
type PageMeta struct {
	CurrentPage int    `json:"current_page"`
	From        *int   `json:"from"`
	LastPage    int    `json:"last_page"`
	Path        string `json:"path"`
	PerPage     int    `json:"per_page"`
	To          *int   `json:"to"`
	Total       int    `json:"total"`
}

// Page is the paginated listing payload nested under the envelope's data
// field: the items themselves plus links and meta blocks.
type Page struct {
	Data  any       `json:"data"`
	Links PageLinks `json:"links"`
	Meta  PageMeta  `json:"meta"`
}

// NewPage assembles a Page for the given slice of items. count is the number
// of items on this page, total the number of rows across all pages, and path
// the request path used to build the links.
func NewPage(data any, count, total, page, perPage int, path string) Page {
	lastPage := (total + perPage - 1) / perPage
	if lastPage < 1 {
		lastPage = 1
	}

	links := PageLinks{
		First: pageURL(path, 1),
		Last:  pageURL(path, lastPage),
	}
	if page > 1 {
		prev := pageURL(path, page-1)
		links.Prev = &prev
	}
	if page < lastPage {
		next := pageURL(path, page+1)
		links.Next = &next
	}

	meta := PageMeta{
		CurrentPage: page,
		LastPage:    lastPage,
		Path:        path,
		PerPage:     perPage,
		Total:       total,
	}
	if count > 0 {
		from := (page-1)*perPage + 1
		to := from + count - 1
		meta.From = &from
		meta.To = &to
	}
	return Page{Data: data, Links: links, Meta: meta}
}

func pageURL(path string, page int) string {
	return fmt.Sprintf("%s?page=%d", path, page)
}

// PageParams normalizes raw page/per_page query values into usable bounds.
func PageParams(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return page, perPage
}
