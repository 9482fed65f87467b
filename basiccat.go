package tregex

import "strings"

// BasicCategoryFunc maps a label to its basic category, e.g. "NP-SBJ-1" to
// "NP". Patterns marked with '@' compare basic categories.
type BasicCategoryFunc func(label string) string

// PennAnnotationChars are the characters that introduce functional tags
// and indices on Penn Treebank labels.
const PennAnnotationChars = "-=|#^~_"

// PennBasicCategory strips Penn Treebank annotations from a label.
var PennBasicCategory BasicCategoryFunc = NewBasicCategory(PennAnnotationChars)

// NewBasicCategory returns a function that cuts a label at the first
// annotation character. A label that starts with an annotation character
// keeps everything up to the matching closing occurrence, so "-NONE-" and
// "-LRB-" survive intact.
func NewBasicCategory(annotationChars string) BasicCategoryFunc {
	return func(label string) string {
		var opened rune
		for i, ch := range label {
			if !strings.ContainsRune(annotationChars, ch) {
				continue
			}
			switch {
			case i == 0:
				opened = ch
			case opened != 0 && ch == opened:
				opened = 0
			default:
				return label[:i]
			}
		}
		return label
	}
}
