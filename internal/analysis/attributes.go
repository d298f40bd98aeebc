package analysis

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// semanticKeys are the DOM attributes worth carrying into an action record.
var semanticKeys = []string{"id", "placeholder", "title", "alt", "aria-label", "href"}

// genericTags are container elements whose clicks carry no intent on their
// own.
var genericTags = map[string]bool{
	"div":     true,
	"span":    true,
	"section": true,
	"article": true,
	"main":    true,
	"aside":   true,
	"header":  true,
	"footer":  true,
}

// extractAttributes collects the semantic attributes of a node plus its
// visible text content.
func extractAttributes(node *Node) map[string]string {
	attrs := make(map[string]string)
	for _, key := range semanticKeys {
		raw, ok := node.Attributes[key]
		if !ok {
			continue
		}
		var val string
		if err := json.Unmarshal(raw, &val); err != nil || val == "" {
			continue
		}
		attrs[key] = val
	}
	if text := extractTextContent(node); text != "" {
		attrs["text"] = text
	}
	return attrs
}

// extractTextContent concatenates the trimmed text of a node's subtree,
// collapsing runs of whitespace.
func extractTextContent(node *Node) string {
	var parts []string
	var walk func(*Node)
	walk = func(n *Node) {
		if n == nil {
			return
		}
		if trimmed := strings.TrimSpace(n.TextContent); trimmed != "" {
			parts = append(parts, trimmed)
		}
		for _, child := range n.ChildNodes {
			walk(child)
		}
	}
	walk(node)
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

// shouldSkipClick reports whether a click lands on a generic container with
// no text and no semantic attributes.
func shouldSkipClick(node *Node, attrs map[string]string) bool {
	if node == nil {
		return true
	}
	if !genericTags[strings.ToLower(node.TagName)] {
		return false
	}
	if attrs["text"] != "" {
		return false
	}
	for _, key := range semanticKeys {
		if _, ok := attrs[key]; ok {
			return false
		}
	}
	return true
}

// scrollDirection derives a direction from the dominant axis of the delta
// against the previous scroll position. Empty means no movement.
func scrollDirection(currentX, currentY, lastX, lastY int) string {
	xChange := currentX - lastX
	yChange := currentY - lastY

	if abs(xChange) > abs(yChange) {
		switch {
		case xChange > 0:
			return "right"
		case xChange < 0:
			return "left"
		}
		return ""
	}
	switch {
	case yChange > 0:
		return "down"
	case yChange < 0:
		return "up"
	}
	return ""
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// ActionString renders a human-readable description of an action, used both
// for persisted action records and as LLM input.
func ActionString(a Action) string {
	if a.ActionString != "" {
		return a.ActionString
	}
	switch a.Kind {
	case KindInput:
		return fmt.Sprintf("User input '%s' on %s with id %s", a.Attributes["input_value"], a.ElementType, a.NodeID)
	case KindScrolled:
		direction := a.Attributes["scroll_direction"]
		if direction == "" {
			direction = "unknown"
		}
		return fmt.Sprintf("User scrolled %s", direction)
	case KindClicked:
		if text := a.Attributes["text"]; text != "" {
			return fmt.Sprintf("User clicked on %s with text '%s' and id %s", a.ElementType, text, a.NodeID)
		}
		return fmt.Sprintf("User clicked on %s with id %s", a.ElementType, a.NodeID)
	case KindPageLoaded:
		return "Page loaded: " + a.Attributes["url"]
	}
	return ""
}

var nonWordRe = regexp.MustCompile(`[^\w\s]`)

// cleanText strips special characters and emoji from text, producing a
// lowercase snake_case identifier fragment.
func cleanText(text string) string {
	cleaned := nonWordRe.ReplaceAllString(text, "")
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(cleaned), " ", "_"))
}

// cleanURL reduces a URL to its domain and first path segment.
func cleanURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return "unknown"
	}
	path := strings.Trim(parsed.Path, "/")
	if path == "" {
		return parsed.Host
	}
	return parsed.Host + "/" + strings.SplitN(path, "/", 2)[0]
}
