package emisapi

import (
	"github.com/goccy/go-json"
)

// Envelope is the paged response wrapper used by EMIS collection endpoints.
type Envelope[T any] struct {
	ResultSet   []T  `json:"ResultSet"`
	HasPageInfo bool `json:"HasPageInfo"`
	NumResults  int  `json:"NumResults"`
	FirstRec    int  `json:"FirstRec"`
	LastRec     int  `json:"LastRec"`
	PageSize    int  `json:"PageSize"`
	PageNo      int  `json:"PageNo"`
	// IsLastPage defaults to true when the server omits it.
	IsLastPage *bool `json:"IsLastPage"`
	LastPage   int   `json:"LastPage"`
}

// Last reports whether this is the final page.
func (e Envelope[T]) Last() bool {
	return e.IsLastPage == nil || *e.IsLastPage
}

// School is a row of the school filter collection.
type School struct {
	SchNo   string `json:"schNo"`
	SchName string `json:"schName"`
	SvyYear int    `json:"svyYear"`
}

// SchoolFilter is the body of POST /api/schools/collection/filter.
type SchoolFilter struct {
	PageNo        int    `json:"pageNo"`
	PageSize      int    `json:"pageSize"`
	ColumnSet     int    `json:"columnSet"`
	SortColumn    string `json:"sortColumn"`
	SortDirection string `json:"sortDirection"`
}

// DefaultSchoolFilter returns the filter used by survey reloads, 500 schools per page.
func DefaultSchoolFilter() SchoolFilter {
	return SchoolFilter{PageNo: 1, PageSize: 500, ColumnSet: 1, SortColumn: "schNo", SortDirection: "asc"}
}

// Record is an undecoded collection item, kept verbatim for caching.
type Record = json.RawMessage
