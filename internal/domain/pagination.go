package domain

// PaginationParams selects one page of the admin reservation list,
// which is ordered by time slot then table number.
type PaginationParams struct {
	Page     int
	PageSize int
}

// Offset is the number of reservations that precede the page.
func (p PaginationParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// TotalPages is how many pages of PageSize it takes to show total reservations.
func (p PaginationParams) TotalPages(total int) int {
	if p.PageSize < 1 || total < 1 {
		return 0
	}
	return (total + p.PageSize - 1) / p.PageSize
}
