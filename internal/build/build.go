// Package build orchestrates the full compile: source resolution, document
// loading, parsing, validation, aggregation and rendering. One invocation
// produces one artifact; there is no incremental state between runs.
package build

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	apperrors "git.home.luguber.info/inful/blogbuilder/internal/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/gitsource"
	"git.home.luguber.info/inful/blogbuilder/internal/linkcheck"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/metrics"
	"git.home.luguber.info/inful/blogbuilder/internal/post"
	"git.home.luguber.info/inful/blogbuilder/internal/render"
	"git.home.luguber.info/inful/blogbuilder/internal/scan"
	"git.home.luguber.info/inful/blogbuilder/internal/site"
)

// ErrNoValidPosts is the only content condition that fails a whole build.
var ErrNoValidPosts = apperrors.FatalError(apperrors.CategoryContent, "no valid posts, nothing to render")

// Stage names used for logging and metrics.
const (
	StageResolve  = "resolve_sources"
	StageScan     = "scan"
	StageParse    = "parse"
	StageValidate = "validate"
	StageAssemble = "assemble"
	StageRender   = "render"
)

// Builder runs builds for one configuration.
type Builder struct {
	cfg       *config.Config
	providers []site.Provider
	recorder  metrics.Recorder
}

// NewBuilder creates a Builder. A nil recorder defaults to the no-op one.
func NewBuilder(cfg *config.Config, recorder metrics.Recorder) (*Builder, error) {
	providers, err := site.ParseProviderSpecs(cfg.Share)
	if err != nil {
		return nil, err
	}
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	for _, p := range providers {
		slog.Debug("Share provider configured", logfields.Provider(p.Name))
	}
	return &Builder{cfg: cfg, providers: providers, recorder: recorder}, nil
}

// Run executes one full build. Document-scoped problems are collected into
// the report; only NoValidPosts and output failures return an error.
func (b *Builder) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		BuildID:        uuid.NewString(),
		Start:          time.Now(),
		StageDurations: make(map[string]time.Duration),
	}
	slog.Info("Starting build", logfields.BuildID(report.BuildID), logfields.Count(len(b.cfg.Sources)))

	roots, cleanup, err := b.resolveSources(ctx, report)
	if err != nil {
		return b.fail(report, StageResolve, err)
	}
	defer cleanup()

	docs := b.scanStage(roots, report)
	posts := b.parseStage(docs, report)
	valid := b.validateStage(posts, report)

	report.Scanned = len(docs)
	report.Rendered = len(valid)
	report.Excluded = len(posts) - len(valid)
	b.recorder.SetPostCounts(report.Scanned, report.Rendered, report.Excluded)

	if len(valid) == 0 {
		return b.fail(report, StageValidate, ErrNoValidPosts)
	}

	s := b.assembleStage(valid, report)

	if err := b.renderStage(s, report); err != nil {
		return b.fail(report, StageRender, err)
	}

	report.End = time.Now()
	report.finalize(false)
	b.recorder.ObserveBuildDuration(report.Duration())
	b.recorder.IncBuildOutcome(string(report.Outcome))
	slog.Info("Build finished",
		logfields.BuildID(report.BuildID),
		slog.String("outcome", string(report.Outcome)),
		slog.Int("rendered", report.Rendered),
		slog.Int("excluded", report.Excluded),
		logfields.DurationMS(float64(report.Duration().Milliseconds())))
	return report, nil
}

func (b *Builder) fail(report *Report, stage string, err error) (*Report, error) {
	report.End = time.Now()
	report.finalize(true)
	b.recorder.IncStageResult(stage, metrics.ResultFatal)
	b.recorder.IncBuildOutcome(string(OutcomeFailed))
	return report, err
}

// resolveSources turns configured sources into local roots, cloning git URLs
// into a temporary workspace. The returned cleanup removes any clones.
func (b *Builder) resolveSources(ctx context.Context, report *Report) ([]string, func(), error) {
	done := b.stageTimer(StageResolve, report)
	defer done()

	cleanup := func() {}
	var ws *gitsource.Workspace

	roots := make([]string, 0, len(b.cfg.Sources))
	for _, src := range b.cfg.Sources {
		if !gitsource.IsGitURL(src) {
			roots = append(roots, src)
			continue
		}
		if ws == nil {
			var err error
			ws, err = gitsource.NewWorkspace("")
			if err != nil {
				return nil, cleanup, err
			}
			cleanup = func() {
				if err := ws.Cleanup(); err != nil {
					slog.Warn("Failed to clean clone workspace", logfields.Error(err))
				}
			}
		}
		path, err := ws.Fetch(ctx, src)
		if err != nil {
			report.AddIssue(err)
			continue
		}
		roots = append(roots, path)
	}
	return roots, cleanup, nil
}

func (b *Builder) scanStage(roots []string, report *Report) []scan.Document {
	done := b.stageTimer(StageScan, report)
	defer done()

	docs, issues := scan.Scan(roots)
	for _, err := range issues {
		report.AddIssue(err)
	}
	return docs
}

func (b *Builder) parseStage(docs []scan.Document, report *Report) []*post.Post {
	done := b.stageTimer(StageParse, report)
	defer done()

	opts := scan.Options{FallbackDate: b.cfg.FallbackDate()}

	posts := make([]*post.Post, 0, len(docs))
	for _, doc := range docs {
		fallback := opts.FallbackDateFor(doc)
		switch doc.Kind {
		case scan.KindText:
			posts = append(posts, post.ParseText(doc.Slug, doc.Stem, doc.Content, fallback))
		default:
			p, warn, err := post.ParseMarkdown(doc.Slug, doc.Stem, doc.Content, fallback)
			if warn != nil {
				report.AddIssue(warn)
			}
			if err != nil {
				report.AddIssue(err)
				continue
			}
			posts = append(posts, p)
		}
	}
	return posts
}

// validateStage drops posts violating the absolute-URL policy, reporting the
// identifier and every offending reference.
func (b *Builder) validateStage(posts []*post.Post, report *Report) []*post.Post {
	done := b.stageTimer(StageValidate, report)
	defer done()

	valid := make([]*post.Post, 0, len(posts))
	for _, p := range posts {
		if violations := linkcheck.Validate(p.HTML); len(violations) > 0 {
			report.AddIssue(apperrors.Wrap(violations, apperrors.CategoryValidation, apperrors.SeverityError,
				"post excluded, resource references must be absolute URLs").
				WithContext("post", p.Slug))
			slog.Warn("Post excluded by URL validation", logfields.Post(p.Slug), logfields.Error(violations))
			continue
		}
		valid = append(valid, p)
	}
	return valid
}

func (b *Builder) assembleStage(valid []*post.Post, report *Report) *site.Site {
	done := b.stageTimer(StageAssemble, report)
	defer done()

	s, omissions := site.New(b.cfg.Site.Title, b.cfg.Site.Description, valid, b.providers)
	for _, err := range omissions {
		report.AddIssue(err)
	}
	for _, bucket := range s.Tags {
		slog.Debug("Tag indexed", logfields.Tag(bucket.Name), logfields.Count(bucket.Count()))
	}
	return s
}

func (b *Builder) renderStage(s *site.Site, report *Report) error {
	done := b.stageTimer(StageRender, report)
	defer done()

	renderer, err := render.NewRenderer(b.cfg.Output.Directory)
	if err != nil {
		return err
	}
	return renderer.Render(s)
}

func (b *Builder) stageTimer(stage string, report *Report) func() {
	start := time.Now()
	issuesBefore := len(report.Issues)
	return func() {
		d := time.Since(start)
		report.StageDurations[stage] = d
		b.recorder.ObserveStageDuration(stage, d)
		result := metrics.ResultSuccess
		if len(report.Issues) > issuesBefore {
			result = metrics.ResultWarning
		}
		b.recorder.IncStageResult(stage, result)
		slog.Debug("Stage finished", logfields.Stage(stage), logfields.DurationMS(float64(d.Milliseconds())))
	}
}
