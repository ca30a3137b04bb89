package scroll

// Navbar heights in pixels for the compact (scrolled) and full header.
const (
	navbarHeightScrolled = 44
	navbarHeight         = 56

	scrollMarginScrolled = 90
	scrollMargin         = 70
)

// NavbarHeight returns the header height for the given scroll state.
func NavbarHeight(pastThreshold bool) int {
	if pastThreshold {
		return navbarHeightScrolled
	}
	return navbarHeight
}

// ScrollTarget returns the offset to scroll to so that section id lands just
// below the header. The margin depends on the last delivered state.
func (t *Tracker) ScrollTarget(id string) (int, bool) {
	top, ok := t.locate(id)
	if !ok {
		return 0, false
	}
	margin := scrollMargin
	if st, ok := t.Last(); ok && st.PastThreshold {
		margin = scrollMarginScrolled
	}
	return max(top-margin, 0), true
}
