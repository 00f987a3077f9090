package vtcore

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// DebugLayout prints result's solved tree rooted at root to stdout, for
// use while wiring up a new layout during development.
func DebugLayout(result *LayoutResult, reg *Registry, root int32) {
	FprintLayout(os.Stdout, result, reg, root)
}

// SprintLayout returns result's solved tree rooted at root as a string.
func SprintLayout(result *LayoutResult, reg *Registry, root int32) string {
	var sb strings.Builder
	FprintLayout(&sb, result, reg, root)
	return sb.String()
}

// FprintLayout writes result's solved tree rooted at root to w, one
// line per node, indented by depth. Nodes result never visited (not
// allocated, or an invisible ancestor's descendant) are skipped.
func FprintLayout(w io.Writer, result *LayoutResult, reg *Registry, root int32) {
	fprintLayoutIndent(w, result, reg, root, 0)
}

func fprintLayoutIndent(w io.Writer, result *LayoutResult, reg *Registry, index int32, depth int) {
	box, ok := result.Box(index)
	if !ok {
		return
	}

	indent := strings.Repeat("  ", depth)
	line := fmt.Sprintf("%s#%d x=%g y=%g w=%g h=%g", indent, index, box.Outer.X, box.Outer.Y, box.Outer.W, box.Outer.H)

	if box.Inner != box.Outer {
		line += fmt.Sprintf(" inner(x=%g y=%g w=%g h=%g)", box.Inner.X, box.Inner.Y, box.Inner.W, box.Inner.H)
	}
	if box.Scrollable {
		line += fmt.Sprintf(" scroll(x=%d/%d y=%d/%d)", box.ScrollX, box.MaxScrollX, box.ScrollY, box.MaxScrollY)
	}
	if !box.Visible {
		line += " hidden"
	}

	fmt.Fprintln(w, line)

	for _, child := range reg.Children(index) {
		fprintLayoutIndent(w, result, reg, child, depth+1)
	}
}
