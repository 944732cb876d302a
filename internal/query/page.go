package query

// TotalPages returns ceil(total / PageSize).
func TotalPages(total int) int {
	if total <= 0 {
		return 0
	}
	return (total + PageSize - 1) / PageSize
}

// ClampPage keeps the requested page inside [1, ceil(total/PageSize)].
func ClampPage(page, total int) int {
	if page < 1 {
		page = 1
	}
	if tp := TotalPages(total); tp > 0 && page > tp {
		page = tp
	}
	return page
}

// RangeFor returns the 1-based inclusive display range for a page, or
// (0, 0) when nothing matched.
func RangeFor(page, total int) (start, end int) {
	if total <= 0 {
		return 0, 0
	}
	page = ClampPage(page, total)
	start = (page-1)*PageSize + 1
	end = page * PageSize
	if end > total {
		end = total
	}
	return start, end
}
