// Package batch groups the translatable lines of many localization files into
// a few large blobs and splices the engine's answers back into the files.
package batch

import (
	"strings"

	"loc-translator/internal/interpolation"
	"loc-translator/internal/parser"
	"loc-translator/internal/worker"
)

// SlotKind describes how one line takes part in a group.
type SlotKind int

const (
	// SlotPassthrough is a non-entry line, copied verbatim.
	SlotPassthrough SlotKind = iota
	// SlotUntranslatable is an entry made only of protected tokens.
	SlotUntranslatable
	// SlotCached is an entry whose translation came from the cache.
	SlotCached
	// SlotBlob is an entry that contributed one line to the group blob.
	SlotBlob
)

// Slot records the role of the line at the same index in the member file.
type Slot struct {
	Kind SlotKind
	// Cached holds the translation for SlotCached.
	Cached string
	// Line is the blob line answering a SlotBlob entry. Repeated payloads in
	// a group share one line, which may belong to an earlier member.
	Line int
}

// Member is one file inside a group.
type Member struct {
	File  *parser.File
	Slots []Slot
	// Placeholders covers every protected token of this file's blob lines.
	Placeholders interpolation.Map
	// StartOffset and EndOffset are the inclusive blob line range of this
	// file. EndOffset is StartOffset-1 when the file contributed nothing.
	StartOffset int
	EndOffset   int
}

// Len returns the number of blob lines the member contributed.
func (m *Member) Len() int {
	return m.EndOffset - m.StartOffset + 1
}

// Group is a set of files translated with a single engine call.
type Group struct {
	Index   int
	Members []*Member
	// Lines holds one protected payload per distinct translatable entry, in
	// file-then-line order.
	Lines []string

	seen map[string]sharedLine
}

// sharedLine is the first blob line issued for a payload.
type sharedLine struct {
	index        int
	placeholders interpolation.Map
}

// Blob returns the newline-joined text sent to the engine.
func (g *Group) Blob() string {
	return strings.Join(g.Lines, "\n")
}

// MemberLines returns the blob lines contributed by member i.
func (g *Group) MemberLines(i int) []string {
	m := g.Members[i]
	return g.Lines[m.StartOffset : m.EndOffset+1]
}

// LookupFunc returns a known translation for an unprotected payload.
type LookupFunc func(payload string) (string, bool)

// Options configures Plan.
type Options struct {
	// Codec issues placeholders; it must be shared by every Plan call of a run.
	Codec *interpolation.Codec
	// Lookup, when set, lets cached payloads skip the engine.
	Lookup LookupFunc
}

// Plan splits files into at most limit contiguous groups of
// ceil(len(files)/limit) files and builds each group's blob.
func Plan(files []*parser.File, limit int, opts Options) []*Group {
	if len(files) == 0 {
		return nil
	}
	if limit < 1 {
		limit = 1
	}
	if opts.Codec == nil {
		opts.Codec = interpolation.NewCodec()
	}

	size := (len(files) + limit - 1) / limit
	chunks := worker.Batch(files, size)

	groups := make([]*Group, 0, len(chunks))
	for i, chunk := range chunks {
		g := &Group{Index: i}
		for _, f := range chunk {
			g.Members = append(g.Members, g.add(f, opts))
		}
		groups = append(groups, g)
	}
	return groups
}

// add protects every entry of f and appends its translatable lines to the blob.
// A payload already sent by this group reuses that line.
func (g *Group) add(f *parser.File, opts Options) *Member {
	if g.seen == nil {
		g.seen = make(map[string]sharedLine)
	}
	m := &Member{
		File:         f,
		Slots:        make([]Slot, len(f.Lines)),
		Placeholders: interpolation.Map{},
		StartOffset:  len(g.Lines),
	}

	for i, line := range f.Lines {
		if !line.IsEntry() {
			continue
		}

		payload := line.Entry.Payload
		if shared, ok := g.seen[payload]; ok {
			m.Slots[i] = Slot{Kind: SlotBlob, Line: shared.index}
			m.Placeholders.Merge(shared.placeholders)
			continue
		}

		protected, pm := opts.Codec.Protect(payload)
		if !interpolation.Translatable(protected) {
			m.Slots[i].Kind = SlotUntranslatable
			continue
		}

		if opts.Lookup != nil {
			if cached, ok := opts.Lookup(payload); ok {
				m.Slots[i] = Slot{Kind: SlotCached, Cached: cached}
				continue
			}
		}

		g.seen[payload] = sharedLine{index: len(g.Lines), placeholders: pm}
		m.Slots[i] = Slot{Kind: SlotBlob, Line: len(g.Lines)}
		m.Placeholders.Merge(pm)
		g.Lines = append(g.Lines, protected)
	}

	m.EndOffset = len(g.Lines) - 1
	return m
}
