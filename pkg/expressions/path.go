package expressions

import (
	"strconv"
	"strings"
)

// GetValueByPath resolves a dotted path with optional array indexes, e.g.
// "results[0].text", against an item decoded from JSON.
func GetValueByPath(source any, path string) (any, bool) {
	if path == "" {
		return source, true
	}

	current := source

	for _, segment := range strings.Split(path, ".") {
		key, indexes, ok := parseSegment(segment)
		if !ok {
			return nil, false
		}

		if key != "" {
			object, ok := current.(map[string]any)
			if !ok {
				return nil, false
			}

			current, ok = object[key]
			if !ok {
				return nil, false
			}
		}

		for _, index := range indexes {
			array, ok := current.([]any)
			if !ok {
				return nil, false
			}

			if index < 0 || index >= len(array) {
				return nil, false
			}

			current = array[index]
		}
	}

	return current, true
}

func parseSegment(segment string) (string, []int, bool) {
	key := segment
	indexes := []int{}

	for {
		open := strings.IndexByte(key, '[')
		if open < 0 {
			break
		}

		close := strings.IndexByte(key, ']')
		if close < open {
			return "", nil, false
		}

		index, err := strconv.Atoi(key[open+1 : close])
		if err != nil {
			return "", nil, false
		}

		indexes = append(indexes, index)
		key = key[:open] + key[close+1:]
	}

	return key, indexes, true
}
