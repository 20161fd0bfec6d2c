// Package citation splits service replies into their main text and the
// source fragments the service quotes after it.
package citation

import (
	"regexp"
	"strings"
)

// markerPattern matches `Source:` followed by a back-quoted fragment. A
// fragment without its closing back-quote never matches.
var markerPattern = regexp.MustCompile("Source:\\s*`([^`]*)`")

// Citation is a quoted source fragment
type Citation struct {
	Content string `json:"content"`
}

// Reply is a reply split into the text shown as the answer and its citations
type Reply struct {
	Main      string     `json:"main"`
	Citations []Citation `json:"citations,omitempty"`
}

// Extract splits text at the first citation marker. Everything before it is
// the main text; every marker contributes one citation, in order.
func Extract(text string) Reply {
	matches := markerPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return Reply{Main: strings.TrimSpace(text)}
	}

	reply := Reply{
		Main:      strings.TrimSpace(text[:matches[0][0]]),
		Citations: make([]Citation, 0, len(matches)),
	}
	for _, m := range matches {
		reply.Citations = append(reply.Citations, Citation{
			Content: strings.TrimSpace(text[m[2]:m[3]]),
		})
	}
	return reply
}
