package http

import (
	"net/url"
	"strconv"
	"strings"
)

// sanitizeInput removes control characters (except tab, newline and carriage
// return) and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// partialURL builds /ui/<path>/<action> with an optional query.
func partialURL(path, action string, q url.Values) string {
	u := "/ui/" + path + "/" + action
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func idQuery(id int64) url.Values {
	return url.Values{"id": {strconv.FormatInt(id, 10)}}
}
