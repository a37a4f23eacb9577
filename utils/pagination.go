package utils

const (
	DefaultOffset = 0
	DefaultLimit  = 20
	MaxLimit      = 100
)

// GetPaginationParams normalizes optional offset/limit values into safe bounds.
func GetPaginationParams(offset *int, limit *int) (int, int) {
	finalOffset := DefaultOffset
	if offset != nil && *offset >= 0 {
		finalOffset = *offset
	}

	finalLimit := DefaultLimit
	if limit != nil && *limit > 0 {
		finalLimit = *limit
	}
	if finalLimit > MaxLimit {
		finalLimit = MaxLimit
	}

	return finalOffset, finalLimit
}
