// Package pagination slices listings into fixed-size pages.
package pagination

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// PageSize is the number of documents per page. It is not configurable:
// clients detect the last page by receiving fewer than PageSize items.
const PageSize = 20

// MaxPage is the last page whose offset fits in an int. Larger pages are
// clamped to it, which still lies past the end of any listing.
const MaxPage = math.MaxInt / PageSize

// Normalize parses a page query value. Missing, non-numeric and
// negative values all mean the first page. Values too large for an int
// mean MaxPage.
func Normalize(raw string) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if errors.Is(err, strconv.ErrRange) && page > 0 {
		return MaxPage
	}
	if err != nil || page < 0 {
		return 0
	}
	return min(page, MaxPage)
}

// Offset returns the index of the first document on page.
func Offset(page int) int {
	page = max(page, 0)
	page = min(page, MaxPage)
	return page * PageSize
}
