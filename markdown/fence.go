// Package markdown contains small text-processing helpers used while driving
// an LLM through the action loop.
package markdown

import (
	"regexp"
	"strings"
)

var codeFenceRegexp = regexp.MustCompile(`(?m)^` + "```" + `.*$`)

// StripWrappingCodeFences heuristically removes markdown code fences that
// wrap an entire message, without disturbing fences that are legitimately
// part of markdown content.
//
// Many language models produce code wrapped in ``` fences even when
// instructed not to. This tries to detect and strip exactly that wrapping,
// while leaving real markdown (a fenced snippet embedded in prose) alone.
func StripWrappingCodeFences(content string) string {
	trimmed := strings.TrimSpace(content)
	fenceLines := codeFenceRegexp.FindAllString(trimmed, -1)
	fenceCount := len(fenceLines)
	if fenceCount == 0 {
		return content
	}

	lines := strings.Split(trimmed, "\n")

	startIdx := 0
	firstLine := lines[0]
	if codeFenceRegexp.MatchString(firstLine) {
		startIdx = len(firstLine) + 1
	}

	// Strip the last fence when there's an odd number of fences (invalid
	// markdown) or when a fence was stripped at the start (the whole message
	// is wrapped).
	endIdx := len(trimmed)
	if fenceCount%2 == 1 || startIdx != 0 {
		lastLine := lines[len(lines)-1]
		if codeFenceRegexp.MatchString(lastLine) {
			endIdx -= len(lastLine)
		}
	}

	if startIdx > len(trimmed) {
		startIdx = len(trimmed)
	}
	if endIdx < startIdx {
		endIdx = startIdx
	}

	hasBeenStripped := startIdx != 0 || endIdx != len(trimmed)
	if !hasBeenStripped {
		return content
	}
	return trimmed[startIdx:endIdx]
}
