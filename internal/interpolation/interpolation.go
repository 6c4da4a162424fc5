// Package interpolation shields format tokens embedded in localization text
// from the translation engine by swapping them for numbered placeholders.
package interpolation

import (
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"

	"loc-translator/internal/textutil"
)

// tokenPattern is an ordered alternation; the leftmost alternative wins when
// several could match at the same position.
var tokenPattern = regexp.MustCompile(strings.Join([]string{
	`\[.*?\]`,     // [Root.GetName], [0]
	`\$[^$]+?\$`,  // $VALUE$, $VAL|Y$
	`#\w+|#!`,     // #bold ... #!
	`\b\w*_\d+\b`, // VAR_12, opinion_3
	`"`,           // literal quote inside the payload
}, "|"))

// placeholderPattern matches placeholders produced by Protect.
var placeholderPattern = regexp.MustCompile(`\[\d+\]`)

// Map records placeholder → original substring for one protection scope.
type Map map[string]string

// Merge copies every pair of other into m.
func (m Map) Merge(other Map) {
	for k, v := range other {
		m[k] = v
	}
}

// Codec protects and restores tokens. One Codec is shared by a whole run so
// placeholder numbers are never reused, even across files sharing a batch.
type Codec struct {
	next atomic.Uint64
}

// NewCodec returns a Codec whose first placeholder is [0].
func NewCodec() *Codec {
	return &Codec{}
}

// Protect replaces every protected token in text with a fresh placeholder of
// the form [N] and returns the rewritten text with its mapping.
func (c *Codec) Protect(text string) (string, Map) {
	m := Map{}
	out := tokenPattern.ReplaceAllStringFunc(text, func(tok string) string {
		ph := "[" + strconv.FormatUint(c.next.Add(1)-1, 10) + "]"
		m[ph] = tok
		return ph
	})
	return out, m
}

// Issued returns how many placeholders the codec has handed out.
func (c *Codec) Issued() uint64 {
	return c.next.Load()
}

// Restore puts the original tokens back in a single pass. Placeholders that
// are not part of m are left untouched, so [1] can never clobber part of [10].
func Restore(text string, m Map) string {
	if len(m) == 0 {
		return text
	}
	return placeholderPattern.ReplaceAllStringFunc(text, func(ph string) string {
		if orig, ok := m[ph]; ok {
			return orig
		}
		return ph
	})
}

// Translatable reports whether protected text still has letters outside its
// placeholders. Text made only of placeholders, digits and punctuation is
// restored directly instead of being sent to the engine.
func Translatable(protected string) bool {
	return textutil.HasLetter(placeholderPattern.ReplaceAllString(protected, ""))
}
