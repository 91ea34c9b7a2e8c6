package interact

import (
	"fmt"
	"strings"
)

// Tool is the active interaction mode.
type Tool int

const (
	ToolSelect Tool = iota
	ToolRectangle
	ToolCircle
	ToolLine
	ToolArrow
	ToolText
	ToolNumber
)

var toolNames = [...]string{"select", "rectangle", "circle", "line", "arrow", "text", "number"}

func (t Tool) String() string {
	if t < 0 || int(t) >= len(toolNames) {
		return "unknown"
	}
	return toolNames[t]
}

// ParseTool accepts the names returned by Tool.String plus a few aliases.
func ParseTool(s string) (Tool, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "rect":
		v = "rectangle"
	case "ellipse":
		v = "circle"
	case "label", "numbered":
		v = "number"
	}
	for i, n := range toolNames {
		if n == v {
			return Tool(i), nil
		}
	}
	return 0, fmt.Errorf("unknown tool %q", s)
}

// Tools lists every tool in toolbar order.
func Tools() []Tool {
	out := make([]Tool, len(toolNames))
	for i := range out {
		out[i] = Tool(i)
	}
	return out
}

// Phase is the gesture state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDrawing
	PhaseDragging
	PhaseResizing
)

var phaseNames = [...]string{"idle", "drawing", "dragging", "resizing"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}
