// Package pipeline runs one translation of a localization tree end to end.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"loc-translator/internal/batch"
	"loc-translator/internal/filewalker"
	"loc-translator/internal/interpolation"
	"loc-translator/internal/langtag"
	"loc-translator/internal/parser"
	"loc-translator/internal/textutil"
	"loc-translator/internal/translation"
	"loc-translator/internal/worker"

	"github.com/rs/zerolog/log"
)

// Translator performs one batched engine call. *translation.Gateway
// satisfies it.
type Translator interface {
	Translate(ctx context.Context, blob string) (translation.Response, error)
}

// Cache stores translations between runs. *cache.TranslationCache satisfies it.
type Cache interface {
	Get(ctx context.Context, source string) (string, bool)
	SetBatch(ctx context.Context, pairs map[string]string) error
}

// Options configures a run.
type Options struct {
	From langtag.Language
	To   langtag.Language
	// Groups is the number of batch groups; it should match the gateway's
	// concurrency so every slot gets one group.
	Groups int
	// Workers bounds parallel file reads and writes.
	Workers int
	// CopyOnly writes header-renamed copies without calling the engine.
	CopyOnly bool
}

// Report summarizes a run.
type Report struct {
	Files             int
	Groups            int
	FailedGroups      int
	ShortFiles        int
	WriteErrors       int
	TranslatedEntries int
	CachedEntries     int
	Elapsed           time.Duration
}

// Pipeline wires the planner, gateway, reassembler and writer together.
type Pipeline struct {
	gateway Translator
	cache   Cache
	codec   *interpolation.Codec
	opts    Options
}

// New creates a pipeline. cache may be nil.
func New(gateway Translator, cache Cache, opts Options) *Pipeline {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Pipeline{
		gateway: gateway,
		cache:   cache,
		codec:   interpolation.NewCodec(),
		opts:    opts,
	}
}

// Run translates every file of tree. Reading the source tree and creating
// the target folders are fatal; engine failures only degrade the affected
// group, whose files are written untranslated. Writes are not atomic: an
// interrupted run can leave some files written and others missing.
func (p *Pipeline) Run(ctx context.Context, tree *filewalker.Tree) (*Report, error) {
	start := time.Now()
	report := &Report{Files: len(tree.Files)}

	if err := tree.Mirror(); err != nil {
		return report, err
	}

	files, err := p.load(ctx, tree.Files)
	if err != nil {
		return report, err
	}

	if !p.opts.CopyOnly {
		p.translate(ctx, files, report)
		if err := ctx.Err(); err != nil {
			return report, err
		}
	}

	p.write(ctx, files, report)
	report.Elapsed = time.Since(start)

	log.Info().
		Int("files", report.Files).
		Int("groups", report.Groups).
		Int("failed_groups", report.FailedGroups).
		Int("short_files", report.ShortFiles).
		Int("translated", report.TranslatedEntries).
		Int("cached", report.CachedEntries).
		Dur("elapsed", report.Elapsed).
		Msg("Translation run complete")
	return report, ctx.Err()
}

// load reads and classifies every source file and rewrites its header tag.
func (p *Pipeline) load(ctx context.Context, entries []filewalker.FileEntry) ([]*parser.File, error) {
	pool := worker.NewPool[filewalker.FileEntry, *parser.File]("read", p.opts.Workers,
		func(ctx context.Context, e filewalker.FileEntry) (*parser.File, error) {
			data, err := os.ReadFile(e.Path)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", e.Rel, err)
			}
			f := parser.Parse(data)
			f.SourcePath = e.Path
			f.TargetPath = e.Target
			f.ReplaceHeaderTag(p.opts.From.Name, p.opts.To.Name)
			return f, nil
		},
	)

	tasks := pool.Execute(ctx, entries)
	files := make([]*parser.File, 0, len(tasks))
	for _, task := range tasks {
		if task.Err != nil {
			return nil, task.Err
		}
		files = append(files, task.Result)
	}
	return files, nil
}

func (p *Pipeline) translate(ctx context.Context, files []*parser.File, report *Report) {
	opts := batch.Options{Codec: p.codec}
	if p.cache != nil {
		opts.Lookup = func(payload string) (string, bool) {
			return p.cache.Get(ctx, payload)
		}
	}

	groups := batch.Plan(files, p.opts.Groups, opts)
	report.Groups = len(groups)
	log.Info().
		Int("files", len(files)).
		Int("groups", len(groups)).
		Str("from", p.opts.From.String()).
		Str("to", p.opts.To.String()).
		Msg("Translation plan")

	pool := worker.NewPool[*batch.Group, batch.Result]("groups", len(groups), p.translateGroup)
	for _, task := range pool.Execute(ctx, groups) {
		res := task.Result
		if task.Err != nil {
			report.FailedGroups++
		}
		report.ShortFiles += res.Short()
		for _, f := range res.Files {
			report.TranslatedEntries += f.Translated
			report.CachedEntries += f.Cached
		}
	}
}

// translateGroup runs one group through the gateway and splices the answer
// back. On failure the group's files keep their source text.
func (p *Pipeline) translateGroup(ctx context.Context, g *batch.Group) (batch.Result, error) {
	log.Info().
		Int("group", g.Index).
		Int("files", len(g.Members)).
		Int("lines", len(g.Lines)).
		Msg("Translating group")

	resp, err := p.gateway.Translate(ctx, g.Blob())
	if resp.Diagnostics != "" {
		log.Warn().Int("group", g.Index).Str("diagnostics", textutil.Truncate(resp.Diagnostics, 500)).Msg("Engine diagnostics")
	}
	if err != nil {
		return batch.ApplyCached(g), fmt.Errorf("group %d: %w", g.Index, err)
	}

	res := batch.Reassemble(g, resp.Text)
	if !res.Aligned {
		log.Warn().
			Int("group", g.Index).
			Int("sent", len(g.Lines)).
			Int("received", res.Received).
			Int("extra", res.Extra).
			Msg("Engine returned a different number of lines")
	}
	for _, f := range res.Files {
		if f.Short {
			log.Warn().
				Str("file", f.Member.File.SourcePath).
				Int("expected", f.Expected).
				Int("received", f.Received).
				Msg("Short response, keeping source text for missing entries")
		}
	}

	if p.cache != nil && res.Aligned {
		fresh := make(map[string]string)
		for _, f := range res.Files {
			for k, v := range f.Fresh {
				fresh[k] = v
			}
		}
		if err := p.cache.SetBatch(ctx, fresh); err != nil {
			log.Warn().Err(err).Int("group", g.Index).Msg("Failed to cache translations")
		}
	}
	return res, nil
}

func (p *Pipeline) write(ctx context.Context, files []*parser.File, report *Report) {
	pool := worker.NewPool[*parser.File, struct{}]("write", p.opts.Workers,
		func(ctx context.Context, f *parser.File) (struct{}, error) {
			return struct{}{}, filewalker.WriteFile(f.TargetPath, f.Bytes())
		},
	)
	for _, task := range pool.Execute(ctx, files) {
		if task.Err != nil {
			report.WriteErrors++
			continue
		}
		log.Debug().Str("output", task.Input.TargetPath).Msg("File written")
	}
}
