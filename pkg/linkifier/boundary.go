package linkifier

// The boundary expression is shared with every other implementation
// rendering the same content. The character sets below must not change
// unless they change everywhere in lockstep.
const (
	// boundaryBefore is the token boundary required before a pattern:
	// start of input, whitespace, NEL (U+0085), any Unicode separator,
	// or one of ' " ( , : <
	boundaryBefore = `(^|\s|\x{0085}|\p{Z}|['"(,:<])`

	// boundaryBeforeMid is boundaryBefore without the start-of-input
	// alternative. It is used when a scan resumes mid-string, where ^
	// must not fire.
	boundaryBeforeMid = `(\s|\x{0085}|\p{Z}|['"(,:<])`

	// boundaryAfter is the token boundary required after a pattern:
	// end of input or any character that is not a Unicode letter or
	// number.
	boundaryAfter = `($|[^\p{L}\p{N}])`
)

// Wrap surrounds a raw pattern with the boundary expression. In the
// result, group 1 is the before context, group 2 the pattern itself,
// and the last group the after context; the pattern's own groups shift
// up by two.
func Wrap(pattern string) string {
	return boundaryBefore + "(" + pattern + ")" + boundaryAfter
}

func wrapMid(pattern string) string {
	return boundaryBeforeMid + "(" + pattern + ")" + boundaryAfter
}
