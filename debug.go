package tabletop

// debugMaxTreeDepth is the depth above which debug mode warns on insertion.
const debugMaxTreeDepth = 32

// debugMaxChildCount is the child count above which debug mode warns.
const debugMaxChildCount = 1000

// debugAfterAdd runs the debug-mode tree checks for a freshly added child.
func (c *Container[T]) debugAfterAdd(e T) {
	if c.env == nil || !c.env.Debug {
		return
	}
	debugCheckTreeDepth(e.AsComponent())
	debugCheckChildCount(&c.ComponentBase, c.elements.Len())
}

// debugCheckTreeDepth warns if the component sits deeper than the threshold.
func debugCheckTreeDepth(b *ComponentBase) {
	if depth := b.Depth(); depth > debugMaxTreeDepth {
		b.env.logger().Warn("tree depth exceeds threshold",
			"component", b.String(), "depth", depth, "threshold", debugMaxTreeDepth)
	}
}

// debugCheckChildCount warns if a container holds more children than the threshold.
func debugCheckChildCount(b *ComponentBase, n int) {
	if n > debugMaxChildCount {
		b.env.logger().Warn("child count exceeds threshold",
			"component", b.String(), "children", n, "threshold", debugMaxChildCount)
	}
}
