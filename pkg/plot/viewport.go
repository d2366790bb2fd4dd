package plot

// Viewport selects the responsive variant of the chart defaults.
type Viewport int

const (
	Desktop Viewport = iota
	Mobile
)

// Breakpoint is the narrowest width, in pixels, rendered as Desktop.
const Breakpoint = 640

// ViewportFor returns the viewport for a rendering width in pixels.
// A width of zero means unknown and renders as Desktop.
func ViewportFor(width int) Viewport {
	if width > 0 && width < Breakpoint {
		return Mobile
	}
	return Desktop
}

func (v Viewport) String() string {
	if v == Mobile {
		return "mobile"
	}
	return "desktop"
}

// ParseViewport reads "mobile" or "desktop"; anything else is Desktop.
func ParseViewport(name string) Viewport {
	if name == "mobile" {
		return Mobile
	}
	return Desktop
}

func pick[T any](v Viewport, desktop, mobile T) T {
	if v == Mobile {
		return mobile
	}
	return desktop
}
