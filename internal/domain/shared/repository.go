package shared

// Filter carries the paging, ordering and free-text search every list
// query accepts. A zero PageSize means no paging.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
}
