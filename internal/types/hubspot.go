package types

// SearchFilter constrains one property in a search request.
type SearchFilter struct {
	PropertyName string `json:"propertyName"`
	Operator     string `json:"operator"`
	Value        int64  `json:"value"`
	HighValue    int64  `json:"highValue,omitempty"`
}

// SearchFilterGroup is an AND-group of filters.
type SearchFilterGroup struct {
	Filters []SearchFilter `json:"filters"`
}

// SearchRequest is the body of a calls search query.
type SearchRequest struct {
	FilterGroups []SearchFilterGroup `json:"filterGroups"`
	Properties   []string            `json:"properties"`
	Limit        int                 `json:"limit"`
	After        string              `json:"after,omitempty"`
}

// PagingNext carries the continuation cursor.
type PagingNext struct {
	After string `json:"after"`
}

// Paging is the pagination envelope of a search response.
type Paging struct {
	Next *PagingNext `json:"next,omitempty"`
}

// SearchResponse is one page of search results.
type SearchResponse struct {
	Results []RawCall `json:"results"`
	Paging  *Paging   `json:"paging,omitempty"`
}

// Owner is an entry of the owner directory.
type Owner struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// OwnersResponse is the owner directory listing.
type OwnersResponse struct {
	Results []Owner `json:"results"`
}
