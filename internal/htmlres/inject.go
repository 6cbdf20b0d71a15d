package htmlres

import (
	"context"
	stderrors "errors"
	"io/fs"
	"log/slog"
	"strings"

	"git.home.luguber.info/inful/htmlres/internal/config"
	"git.home.luguber.info/inful/htmlres/internal/foundation/errors"
	"git.home.luguber.info/inful/htmlres/internal/logfields"
	"git.home.luguber.info/inful/htmlres/internal/metrics"
	"git.home.luguber.info/inful/htmlres/internal/observability"
)

const (
	headAnchor = "</head>"
	bodyAnchor = "</body>"
)

// inject is the default-mode stage. Tags are built per requested chunk in
// caller order, per file in chunk order, then placed before the first
// </head> (favicon, then styles) and </body> (scripts).
func (e *emitPass) inject(ctx context.Context, html string) (string, error) {
	var styles, scripts strings.Builder

	for _, entry := range e.opts.Chunks.Entries() {
		files, ok := e.assets.Files(entry.Name)
		if !ok {
			if entry.Options == nil || entry.Options.Res == "" {
				e.miss(ctx, metrics.MissChunk, Diagnostic{
					Code:    DiagMissingChunk,
					Stage:   StageInject,
					Chunk:   entry.Name,
					Message: "chunk " + entry.Name + " is not in the build and has no res",
				})
				continue
			}
			files = []string{entry.Options.Res}
		}

		for _, file := range files {
			ext := fileType(file)
			switch ext {
			case "js":
				tag, inline, err := e.chunkTag(ctx, entry, file, ext)
				if err != nil {
					return "", err
				}
				scripts.WriteString(tag)
				e.report.ScriptTags++
				e.countTag(metrics.TagScript, inline)
			case "css":
				tag, inline, err := e.chunkTag(ctx, entry, file, ext)
				if err != nil {
					return "", err
				}
				styles.WriteString(tag)
				e.report.StyleTags++
				e.countTag(metrics.TagStylesheet, inline)
			default:
				// Icons come from the favicon option; other types have no tag.
			}
		}
	}

	var favicon string
	if e.report.FaviconAsset != "" {
		favicon = faviconTags(e.publicPath + e.report.FaviconAsset)
		e.report.FaviconTags += 2
		e.countTag(metrics.TagFavicon, false)
		e.countTag(metrics.TagFavicon, false)
	}

	html = e.insertBefore(ctx, html, headAnchor, favicon)
	html = e.insertBefore(ctx, html, headAnchor, styles.String())
	html = e.insertBefore(ctx, html, bodyAnchor, scripts.String())
	return html, nil
}

// chunkTag renders one script or stylesheet tag for file. Inline content that
// cannot be read falls back to a reference tag.
func (e *emitPass) chunkTag(ctx context.Context, entry config.ChunkEntry, file, ext string) (string, bool, error) {
	attr := entry.Options.AttrFor(ext)

	if entry.Options.InlineFor(ext) {
		content, err := e.comp.Content(file)
		switch {
		case err == nil:
			e.report.InlinedAssets++
			if ext == "js" {
				return inlineScriptTag(attr, string(content)), true, nil
			}
			return inlineStyleTag(attr, string(content)), true, nil
		case isMissingAsset(err):
			e.miss(ctx, metrics.MissAsset, Diagnostic{
				Code:      DiagMissingAsset,
				Stage:     StageInject,
				Chunk:     entry.Name,
				Extension: ext,
				Message:   "cannot inline " + file + ": " + err.Error(),
			})
		default:
			return "", false, err
		}
	}

	url := e.publicPath + file
	if entry.Options.IsExternal() {
		url = file
	}
	if ext == "js" {
		return scriptRefTag(attr, url), false, nil
	}
	return styleRefTag(attr, url), false, nil
}

// insertBefore places block before the first occurrence of anchor. A missing
// anchor drops the block.
func (e *emitPass) insertBefore(ctx context.Context, html, anchor, block string) string {
	if block == "" {
		return html
	}
	if !strings.Contains(html, anchor) {
		e.miss(ctx, metrics.MissAnchor, Diagnostic{
			Code:    DiagMissingAnchor,
			Stage:   StageInject,
			Message: "anchor " + anchor + " not found; block dropped",
		})
		return html
	}
	return strings.Replace(html, anchor, block+anchor, 1)
}

func (e *emitPass) countTag(kind metrics.TagKind, inline bool) {
	e.recorder.IncTagsInjected(kind, inline)
}

// miss records a degraded path: diagnostic, warn log, metric.
func (e *emitPass) miss(ctx context.Context, kind metrics.MissKind, d Diagnostic) {
	e.report.AddDiagnostic(d)
	e.recorder.IncResolutionMiss(kind)

	attrs := []any{slog.String("code", string(d.Code))}
	if d.Chunk != "" {
		attrs = append(attrs, logfields.Chunk(d.Chunk))
	}
	if d.Extension != "" {
		attrs = append(attrs, logfields.Extension(d.Extension))
	}
	observability.Logger(ctx, e.logger).Warn(d.Message, attrs...)
}

func isMissingAsset(err error) bool {
	return errors.HasCategory(err, errors.CategoryNotFound) || stderrors.Is(err, fs.ErrNotExist)
}

func openTag(name, attr string) string {
	attr = strings.TrimSpace(attr)
	if attr == "" {
		return "<" + name
	}
	return "<" + name + " " + attr
}

func scriptRefTag(attr, url string) string {
	return openTag("script", attr) + ` type="text/javascript" src="` + url + `"></script>` + "\n"
}

func styleRefTag(attr, url string) string {
	return openTag("link", attr) + ` rel="stylesheet" href="` + url + `">` + "\n"
}

func inlineScriptTag(attr, content string) string {
	return openTag("script", attr) + ">" + content + "</script>"
}

func inlineStyleTag(attr, content string) string {
	return openTag("style", attr) + ">" + content + "</style>"
}

func faviconTags(url string) string {
	return `<link rel="shortcut icon" type="image/x-icon" href="` + url + `">` + "\n" +
		`<link rel="icon" type="image/x-icon" href="` + url + `">` + "\n"
}
