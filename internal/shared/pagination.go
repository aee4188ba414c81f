package shared

// Pagination contains metadata for offset/limit listings.
type Pagination struct {
	TotalCount int  `json:"total_count"`
	Limit      int  `json:"limit"`
	Offset     int  `json:"offset"`
	HasMore    bool `json:"has_more"`
}

// NewPagination computes pagination metadata.
func NewPagination(total, limit, offset int) Pagination {
	return Pagination{
		TotalCount: total,
		Limit:      limit,
		Offset:     offset,
		HasMore:    offset+limit < total,
	}
}
