package htmlres

import (
	"context"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/htmlres/internal/logfields"
	"git.home.luguber.info/inful/htmlres/internal/metrics"
	"git.home.luguber.info/inful/htmlres/internal/observability"
)

// Tag patterns for html mode. Group 1 is the route: the chunk name, or for
// icons the file itself.
var (
	// <link href="main?__inline">; the marker and any further query are dropped.
	styleInlineRe = regexp.MustCompile(`(?i)<link[^>]*?\shref=["']?([^"'?\s>]+)\?__inline[^"'>]*["']?[^>]*>`)
	// <script src="app?__inline"></script>
	scriptInlineRe = regexp.MustCompile(`(?is)<script[^>]*?\ssrc=["']?([^"'?\s>]+)\?__inline[^"'>]*["']?[^>]*>\s*</script>`)
	// <link href="main">
	linkRefRe = regexp.MustCompile(`(?i)<link[^>]*?\shref=["']?([^"'\s>]+)["']?[^>]*>`)
	// <script src="app"></script>
	scriptRefRe = regexp.MustCompile(`(?is)<script[^>]*?\ssrc=["']?([^"'\s>]+)["']?[^>]*>\s*</script>`)
)

// rewrite is the html-mode stage: inline passes first, then reference passes
// for stylesheets, icons and scripts.
func (e *emitPass) rewrite(ctx context.Context, html string) (string, error) {
	cssPublicPath := e.publicPath
	if e.opts.CSSPublicPath != nil {
		cssPublicPath = *e.opts.CSSPublicPath
	}

	var err error
	if html, err = e.inlinePass(ctx, html, styleInlineRe, "css"); err != nil {
		return "", err
	}
	if html, err = e.inlinePass(ctx, html, scriptInlineRe, "js"); err != nil {
		return "", err
	}
	html = e.referencePass(ctx, html, linkRefRe, cssPublicPath, "css")
	html = e.referencePass(ctx, html, linkRefRe, e.publicPath, "ico")
	html = e.referencePass(ctx, html, scriptRefRe, e.publicPath, "js")
	return html, nil
}

// inlinePass replaces each whole matched tag with an inline element holding
// the resolved asset's content. Tags that cannot be resolved are kept.
func (e *emitPass) inlinePass(ctx context.Context, html string, re *regexp.Regexp, ext string) (string, error) {
	var firstErr error
	out := re.ReplaceAllStringFunc(html, func(tag string) string {
		if firstErr != nil {
			return tag
		}
		route := re.FindStringSubmatch(tag)[1]

		file, ok := e.resolveRoute(ctx, route, ext)
		if !ok {
			return tag
		}

		content, err := e.inlineContent(file, ext)
		if err != nil {
			if !isMissingAsset(err) {
				firstErr = err
				return tag
			}
			e.miss(ctx, metrics.MissAsset, Diagnostic{
				Code:      DiagMissingAsset,
				Stage:     StageRewrite,
				Chunk:     route,
				Extension: ext,
				Message:   "cannot inline " + file + ": " + err.Error(),
			})
			return tag
		}

		e.report.InlinedAssets++
		if ext == "css" {
			e.report.StyleTags++
			e.countTag(metrics.TagStylesheet, true)
			return "<style>" + content + "</style>"
		}
		e.report.ScriptTags++
		e.countTag(metrics.TagScript, true)
		return "<script>" + content + "</script>"
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

// inlineContent reads file. Stylesheets with child sources concatenate the
// children instead of the processed output.
func (e *emitPass) inlineContent(file, ext string) (string, error) {
	if ext == "css" {
		if a, ok := e.comp.Asset(file); ok && len(a.Children) > 0 {
			var b strings.Builder
			for _, child := range a.Children {
				data, err := child()
				if err != nil {
					return "", err
				}
				b.Write(data)
			}
			return b.String(), nil
		}
	}
	data, err := e.comp.Content(file)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// referencePass splices publicPath+resolved file over the captured route and
// leaves the rest of the tag alone. Already-rewritten URLs no longer name a
// chunk, so a second pass changes nothing.
func (e *emitPass) referencePass(ctx context.Context, html string, re *regexp.Regexp, publicPath, ext string) string {
	return re.ReplaceAllStringFunc(html, func(tag string) string {
		loc := re.FindStringSubmatchIndex(tag)
		route := tag[loc[2]:loc[3]]

		var url string
		if ext == "ico" && isFaviconRoute(route) {
			url = prefixOnce(publicPath, route)
			if url == route {
				return tag
			}
			e.report.FaviconTags++
			e.countTag(metrics.TagFavicon, false)
		} else {
			file, ok := e.lookupRoute(ctx, route, ext)
			if !ok {
				return tag
			}
			url = publicPath + file
			switch ext {
			case "css":
				e.report.StyleTags++
				e.countTag(metrics.TagStylesheet, false)
			case "js":
				e.report.ScriptTags++
				e.countTag(metrics.TagScript, false)
			case "ico":
				e.report.FaviconTags++
				e.countTag(metrics.TagFavicon, false)
			}
		}

		e.report.RewrittenURLs++
		return tag[:loc[2]] + url + tag[loc[3]:]
	})
}

// resolveRoute is used where the author explicitly asked for an asset
// (inline markers): every failure is a diagnostic.
func (e *emitPass) resolveRoute(ctx context.Context, route, ext string) (string, bool) {
	if _, ok := e.assets.Files(route); !ok {
		e.miss(ctx, metrics.MissChunk, Diagnostic{
			Code:      DiagMissingChunk,
			Stage:     StageRewrite,
			Chunk:     route,
			Extension: ext,
			Message:   "inline chunk " + route + " is not in the build",
		})
		return "", false
	}
	file, ok := e.assets.Resolve(route, ext)
	if !ok {
		e.miss(ctx, metrics.MissFile, Diagnostic{
			Code:      DiagMissingFile,
			Stage:     StageRewrite,
			Chunk:     route,
			Extension: ext,
			Message:   "chunk " + route + " has no ." + ext + " file",
		})
	}
	return file, ok
}

// lookupRoute resolves a reference-pass route. Routes that are not chunk names
// are ordinary URLs and stay untouched. A chunk without a file of the pass's
// type is a diagnostic, except in the icon pass, which sees every link.
func (e *emitPass) lookupRoute(ctx context.Context, route, ext string) (string, bool) {
	if _, ok := e.assets.Files(route); !ok {
		observability.Logger(ctx, e.logger).Debug("Route is not a chunk",
			logfields.Chunk(route), logfields.Extension(ext))
		return "", false
	}
	file, ok := e.assets.Resolve(route, ext)
	if !ok && ext != "ico" && !e.resolvesToOther(route, ext) {
		e.miss(ctx, metrics.MissFile, Diagnostic{
			Code:      DiagMissingFile,
			Stage:     StageRewrite,
			Chunk:     route,
			Extension: ext,
			Message:   "chunk " + route + " has no ." + ext + " file",
		})
	}
	return file, ok
}

// resolvesToOther reports whether a <link> route in the stylesheet pass
// belongs to the icon pass instead.
func (e *emitPass) resolvesToOther(route, ext string) bool {
	if ext != "css" {
		return false
	}
	_, ok := e.assets.Resolve(route, "ico")
	return ok
}
