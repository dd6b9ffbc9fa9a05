package util

import (
	"strconv"

	"github.com/kindredkeeper/keeper/core"
)

// ParsePage parses a 1-based page query parameter, defaulting to the first page
func ParsePage(input string) (int, error) {
	if input == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(input)
	if err != nil || page < 1 {
		return 0, core.NewErrorInvalidArgument("invalid page: " + input)
	}
	return page, nil
}
