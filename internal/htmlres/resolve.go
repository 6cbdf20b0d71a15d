package htmlres

import (
	"path"
	"strings"
)

// Resolve returns the first file of chunk whose name ends in "."+ext, ignoring
// any query or fragment. File-list order is authoritative; when a chunk has
// several files of one type only the first is ever returned.
func (m *AssetMap) Resolve(chunk, ext string) (string, bool) {
	for _, f := range m.files[chunk] {
		if hasExtension(f, ext) {
			return f, true
		}
	}
	return "", false
}

// fileType is the lower-cased extension of name without the dot.
func fileType(name string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(stripQuery(name)), "."))
}

func hasExtension(name, ext string) bool {
	return fileType(name) == strings.ToLower(ext)
}

func stripQuery(name string) string {
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		return name[:i]
	}
	return name
}

// prefixOnce prepends publicPath unless url already starts with it.
func prefixOnce(publicPath, url string) string {
	if publicPath != "" && strings.HasPrefix(url, publicPath) {
		return url
	}
	return publicPath + url
}

// isFaviconRoute reports whether a link URL points at an icon file directly.
func isFaviconRoute(route string) bool {
	return hasExtension(route, "ico")
}
