package mediacache

import "fmt"

// ListKey builds the cache key for a paginated list request,
// e.g. "popular_page1".
func ListKey(list string, page int) string {
	return fmt.Sprintf("%s_page%d", list, page)
}

// SearchKey builds the cache key for a search request,
// e.g. "movie_blade runner_page2". The query is kept literal so
// distinct queries never collide.
func SearchKey(kind, query string, page int) string {
	return fmt.Sprintf("%s_%s_page%d", kind, query, page)
}

// DetailKey builds the cache key for a by-id detail lookup,
// e.g. "movie_603". The kind keeps a movie and a TV show with the
// same id apart.
func DetailKey(kind string, id int64) string {
	return fmt.Sprintf("%s_%d", kind, id)
}
