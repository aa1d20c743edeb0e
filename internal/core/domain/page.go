package domain

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// NormalizePage clamps pagination input: page starts at 1, size defaults to
// DefaultPageSize and is capped at MaxPageSize.
func NormalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}
