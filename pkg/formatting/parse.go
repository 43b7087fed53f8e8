package formatting

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrParseFailed is returned when a model reply holds no JSON value that
// decodes into the requested type.
var ErrParseFailed = errors.New("failed to parse response")

var fencePattern = regexp.MustCompile("(?s)```(?:json)?[ \t]*\n?(.*?)\n?```")

const replyExcerpt = 120

// ParseReply decodes the JSON object a chat model returned in content.
// The reply is tried as-is, then each fenced code block in order, then the
// span from the first '{' to the last '}' for replies that wrap the object
// in prose.
func ParseReply[T any](content string) (T, error) {
	var result T
	for _, candidate := range replyCandidates(content) {
		var v T
		if json.Unmarshal([]byte(candidate), &v) == nil {
			return v, nil
		}
	}
	return result, fmt.Errorf("%w: %q", ErrParseFailed, excerpt(content))
}

func replyCandidates(content string) []string {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}

	candidates := []string{content}
	for _, m := range fencePattern.FindAllStringSubmatch(content, -1) {
		candidates = append(candidates, strings.TrimSpace(m[1]))
	}

	open, end := strings.IndexByte(content, '{'), strings.LastIndexByte(content, '}')
	if open >= 0 && end > open {
		candidates = append(candidates, content[open:end+1])
	}
	return candidates
}

func excerpt(s string) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= replyExcerpt {
		return string(r)
	}
	return string(r[:replyExcerpt]) + "..."
}
