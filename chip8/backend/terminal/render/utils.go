package render

// HalfBlock returns the glyph that shows two vertically stacked pixels in one
// terminal cell. Lit pixels are drawn with the foreground color.
func HalfBlock(top, bottom bool) rune {
	switch {
	case top && bottom:
		return '█'
	case top:
		return '▀'
	case bottom:
		return '▄'
	}
	return ' '
}
