package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/acervomestre/acervo/internal/shared"
)

// ParseID accepts "12", "res-12" or "pl-12" and returns 12.
func ParseID(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: id", shared.ErrMissingArgument)
	}

	if i := strings.LastIndex(s, "-"); i >= 0 {
		s = s[i+1:]
	}

	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", shared.ErrInvalidArgument, s)
	}
	return id, nil
}

// ParseIDs parses every entry with [ParseID], failing on the first bad one.
func ParseIDs(values []string) ([]int, error) {
	ids := make([]int, 0, len(values))
	for _, v := range values {
		id, err := ParseID(v)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
