// Package analysis turns raw rrweb recordings into a flat list of semantic
// user actions (clicks, inputs, scrolls, page loads). It is pure parsing;
// action-ID assignment lives in the intelligence package.
package analysis

import (
	"encoding/json"
	"strconv"
)

// rrweb event types.
const (
	eventTypeFullSnapshot = 2
	eventTypeIncremental  = 3
	eventTypeMeta         = 4
)

// rrweb incremental snapshot sources.
const (
	sourceMouseInteraction = 2
	sourceScroll           = 3
	sourceInput            = 5
)

// mouse interaction subtype for a click.
const mouseInteractionClick = 2

// Action kinds.
const (
	KindClicked    = "clicked"
	KindInput      = "input"
	KindScrolled   = "scrolled"
	KindPageLoaded = "page_loaded"
)

// Action is one parsed user action.
type Action struct {
	NodeID       string            `json:"id"`
	Kind         string            `json:"action"`
	ElementType  string            `json:"element_type"`
	Attributes   map[string]string `json:"attributes"`
	Timestamp    int64             `json:"timestamp"`
	ActionString string            `json:"action_string,omitempty"`
}

type rawEvent struct {
	Type      int             `json:"type"`
	Timestamp int64           `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// Node is a DOM node from an rrweb full snapshot.
type Node struct {
	ID          int                        `json:"id"`
	TagName     string                     `json:"tagName"`
	TextContent string                     `json:"textContent"`
	Attributes  map[string]json.RawMessage `json:"attributes"`
	ChildNodes  []*Node                    `json:"childNodes"`
}

type snapshotData struct {
	Node *Node `json:"node"`
}

type incrementalData struct {
	Source int    `json:"source"`
	Type   int    `json:"type"`
	ID     int    `json:"id"`
	Text   string `json:"text"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
}

type metaData struct {
	Href  string `json:"href"`
	Title string `json:"title"`
}

// Parse extracts user actions from a sequence of rrweb events. Full
// snapshots rebuild the DOM node map that later incremental events are
// resolved against; events that cannot be interpreted are skipped.
func Parse(events []json.RawMessage) []Action {
	var (
		actions     []Action
		nodeMap     map[int]*Node
		lastScrollX int
		lastScrollY int
	)

	for _, raw := range events {
		var event rawEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			continue
		}

		switch event.Type {
		case eventTypeFullSnapshot:
			var data snapshotData
			if err := json.Unmarshal(event.Data, &data); err != nil || data.Node == nil {
				continue
			}
			nodeMap = buildNodeMap(data.Node)

		case eventTypeIncremental:
			var data incrementalData
			if err := json.Unmarshal(event.Data, &data); err != nil {
				continue
			}

			switch {
			case data.Source == sourceMouseInteraction && data.Type == mouseInteractionClick:
				node := nodeMap[data.ID]
				if node == nil {
					continue
				}
				attrs := extractAttributes(node)
				if shouldSkipClick(node, attrs) {
					continue
				}
				actions = append(actions, Action{
					NodeID:      strconv.Itoa(data.ID),
					Kind:        KindClicked,
					ElementType: node.TagName,
					Attributes:  attrs,
					Timestamp:   event.Timestamp,
				})

			case data.Source == sourceInput:
				node := nodeMap[data.ID]
				if node == nil {
					continue
				}
				attrs := extractAttributes(node)
				attrs["input_value"] = data.Text
				actions = append(actions, Action{
					NodeID:      strconv.Itoa(data.ID),
					Kind:        KindInput,
					ElementType: node.TagName,
					Attributes:  attrs,
					Timestamp:   event.Timestamp,
				})

			case data.Source == sourceScroll:
				direction := scrollDirection(data.X, data.Y, lastScrollX, lastScrollY)
				lastScrollX, lastScrollY = data.X, data.Y
				if direction == "" {
					continue
				}
				actions = append(actions, Action{
					NodeID:      strconv.Itoa(data.ID),
					Kind:        KindScrolled,
					ElementType: "scroll",
					Attributes:  map[string]string{"scroll_direction": direction},
					Timestamp:   event.Timestamp,
				})
			}

		case eventTypeMeta:
			var data metaData
			if err := json.Unmarshal(event.Data, &data); err != nil {
				continue
			}
			url, title := data.Href, data.Title
			if url == "" {
				url = "Unknown"
			}
			if title == "" {
				title = "Unknown"
			}
			actions = append(actions, Action{
				NodeID:       "page_load",
				Kind:         KindPageLoaded,
				ElementType:  "page",
				Attributes:   map[string]string{"url": url, "title": title},
				Timestamp:    event.Timestamp,
				ActionString: "Page loaded: " + url,
			})
		}
	}
	return actions
}

func buildNodeMap(root *Node) map[int]*Node {
	nodeMap := make(map[int]*Node)
	var walk func(*Node)
	walk = func(n *Node) {
		if n == nil {
			return
		}
		nodeMap[n.ID] = n
		for _, child := range n.ChildNodes {
			walk(child)
		}
	}
	walk(root)
	return nodeMap
}
