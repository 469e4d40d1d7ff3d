package health

import "time"

// StatusNode is one entry of a health report. A node with Services is a
// group whose Status should be an aggregate of its children.
type StatusNode struct {
	// ID is a stable machine-readable key, unique among its siblings.
	ID string `json:"id" yaml:"id"`

	// Name is the human label.
	Name string `json:"name" yaml:"name"`

	Status Status `json:"status" yaml:"status"`

	Message string `json:"message" yaml:"message"`

	// Timestamp is the capture instant in Unix milliseconds.
	Timestamp int64 `json:"timestamp" yaml:"timestamp"`

	// Services holds child nodes. Omitted when empty.
	Services []StatusNode `json:"services,omitempty" yaml:"services,omitempty"`

	// Metadata is probe-specific diagnostic data. Omitted when empty.
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Performance carries timing and tally figures for a run. TotalCheckTime is
// the wall-clock duration of the run in milliseconds.
type Performance struct {
	TotalCheckTime  int64 `json:"totalCheckTime" yaml:"totalCheckTime"`
	ChecksCompleted int   `json:"checksCompleted" yaml:"checksCompleted"`
	ChecksFailed    int   `json:"checksFailed" yaml:"checksFailed"`
}

// Response is the top-level health report.
type Response struct {
	ID          string       `json:"id" yaml:"id"`
	Name        string       `json:"name" yaml:"name"`
	Status      Status       `json:"status" yaml:"status"`
	Message     string       `json:"message" yaml:"message"`
	Timestamp   int64        `json:"timestamp" yaml:"timestamp"`
	Performance Performance  `json:"performance" yaml:"performance"`
	Services    []StatusNode `json:"services" yaml:"services"`
}

// Now returns the current time in Unix milliseconds.
func Now() int64 {
	return time.Now().UnixMilli()
}

// NewStatusNode creates a node stamped with the current time. Empty services
// and metadata are left nil so they are omitted from the serialized form.
func NewStatusNode(id, name string, status Status, message string, services []StatusNode, metadata map[string]any) StatusNode {
	node := StatusNode{
		ID:        id,
		Name:      name,
		Status:    status,
		Message:   message,
		Timestamp: Now(),
	}
	if len(services) > 0 {
		node.Services = services
	}
	if len(metadata) > 0 {
		node.Metadata = metadata
	}
	return node
}

// Time returns the node timestamp as a time.Time.
func (n StatusNode) Time() time.Time {
	return time.UnixMilli(n.Timestamp)
}

// Find returns the first node in the tree rooted at nodes whose ID matches,
// searching depth-first in order.
func Find(nodes []StatusNode, id string) *StatusNode {
	for i := range nodes {
		if nodes[i].ID == id {
			return &nodes[i]
		}
		if found := Find(nodes[i].Services, id); found != nil {
			return found
		}
	}
	return nil
}

// Walk calls fn for every node in the tree, parents before children.
func Walk(nodes []StatusNode, fn func(*StatusNode)) {
	for i := range nodes {
		fn(&nodes[i])
		Walk(nodes[i].Services, fn)
	}
}

// Clone returns a deep copy of the node. Maps and slices inside Metadata are
// copied; other metadata values are treated as immutable and shared.
func (n StatusNode) Clone() StatusNode {
	out := n
	if n.Services != nil {
		out.Services = make([]StatusNode, len(n.Services))
		for i, child := range n.Services {
			out.Services[i] = child.Clone()
		}
	}
	if n.Metadata != nil {
		out.Metadata = cloneMap(n.Metadata)
	}
	return out
}

// Clone returns a deep copy of the response.
func (r *Response) Clone() *Response {
	if r == nil {
		return nil
	}
	out := *r
	if r.Services != nil {
		out.Services = make([]StatusNode, len(r.Services))
		for i, node := range r.Services {
			out.Services[i] = node.Clone()
		}
	}
	return &out
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), val...)
	case []map[string]any:
		out := make([]map[string]any, len(val))
		for i, item := range val {
			out[i] = cloneMap(item)
		}
		return out
	case map[string]string:
		out := make(map[string]string, len(val))
		for k, s := range val {
			out[k] = s
		}
		return out
	case []StatusNode:
		out := make([]StatusNode, len(val))
		for i, item := range val {
			out[i] = item.Clone()
		}
		return out
	default:
		return v
	}
}
