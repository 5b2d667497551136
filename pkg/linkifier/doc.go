// Package linkifier compiles rule definitions into boundary-anchored
// matchers with attached URL templates.
//
// A rule's pattern never fires mid-token. The compiler wraps it in a
// boundary expression that requires start of input, whitespace, NEL,
// a Unicode separator, or one of ' " ( , : < before the pattern, and
// end of input or a non-letter, non-number character after it:
//
//	(^|\s|\x{0085}|\p{Z}|['"(,:<])(<pattern>)($|[^\p{L}\p{N}])
//
// So with the pattern #(?P<id>[0-9]+), the text "see #123." matches
// while "x#123y" does not. The wrapper uses plain unnamed groups and
// no look-around, which keeps it expressible in regexp's linear-time
// dialect; administrator-supplied patterns cannot cause catastrophic
// backtracking. The exact wrapper expression is a contract shared with
// every other renderer of the same content. Changing the character
// sets here without changing them everywhere makes links appear in one
// place and not another for identical text.
//
// Compilation is a pure function from a rules.Definition to a
// *Linkifier. It performs no I/O and no logging; failures come back as
// a *CompileError naming the stage (pattern or template) that rejected
// the definition, so callers decide what to drop and what to report.
//
// Matching walks text with Find, which reports the semantic match with
// the boundary context already stripped, plus the position scanning
// should resume from. The resume position sits directly after the
// matched text, before the consumed boundary character, so that in
// "#1 #2" the space both terminates the first match and introduces the
// second.
package linkifier
