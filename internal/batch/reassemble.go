package batch

import (
	"strings"

	"loc-translator/internal/interpolation"
)

// FileResult describes how one member file was rebuilt.
type FileResult struct {
	Member *Member
	// Expected is the number of entries waiting on the engine response.
	Expected int
	// Received is how many of them the response answered.
	Received int
	// Short is set when the engine returned fewer lines than the file needed;
	// the missing entries keep their source text.
	Short bool
	// Translated counts entries rewritten from the engine response.
	Translated int
	// Cached counts entries rewritten from cached translations.
	Cached int
	// Fresh maps source payloads to the restored engine translations.
	Fresh map[string]string
}

// Result is the outcome of reassembling one group.
type Result struct {
	Files []FileResult
	// Received is the number of lines in the engine response.
	Received int
	// Extra is the number of response lines beyond the blob; they are ignored.
	Extra int
	// Aligned reports whether the response had exactly one line per blob line.
	Aligned bool
}

// Short returns the number of files that received fewer lines than expected.
func (r Result) Short() int {
	n := 0
	for _, f := range r.Files {
		if f.Short {
			n++
		}
	}
	return n
}

// SplitResponse breaks an engine response into lines. An empty response has
// no lines and a single trailing newline is ignored.
func SplitResponse(translated string) []string {
	if translated == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(translated, "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// Reassemble splices the translated blob back into the group's files.
// Passthrough and untranslatable lines are left as they are.
func Reassemble(g *Group, translated string) Result {
	lines := SplitResponse(translated)
	res := Result{
		Received: len(lines),
		Extra:    max(len(lines)-len(g.Lines), 0),
		Aligned:  len(lines) == len(g.Lines),
		Files:    make([]FileResult, 0, len(g.Members)),
	}

	for _, m := range g.Members {
		res.Files = append(res.Files, reassembleMember(m, lines))
	}
	return res
}

// ApplyCached rewrites only the cached entries of a group. It is used when the
// engine call failed or was never needed.
func ApplyCached(g *Group) Result {
	res := Reassemble(g, "")
	res.Aligned = len(g.Lines) == 0
	for i := range res.Files {
		res.Files[i].Short = false
	}
	return res
}

func reassembleMember(m *Member, lines []string) FileResult {
	fr := FileResult{
		Member: m,
		Fresh:  make(map[string]string),
	}

	f := m.File
	for i, slot := range m.Slots {
		entry := f.Lines[i].Entry
		switch slot.Kind {
		case SlotCached:
			f.Lines[i].Text = entry.Rewrite(slot.Cached)
			fr.Cached++
		case SlotBlob:
			fr.Expected++
			if slot.Line >= len(lines) {
				continue
			}
			fr.Received++
			restored := interpolation.Restore(lines[slot.Line], m.Placeholders)
			f.Lines[i].Text = entry.Rewrite(restored)
			fr.Fresh[entry.Payload] = restored
			fr.Translated++
		}
	}
	fr.Short = fr.Received < fr.Expected
	return fr
}
