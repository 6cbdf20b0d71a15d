package compilation

import (
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/htmlres/internal/foundation/errors"
)

// WriteAssets materializes the named assets under dir. Each file is written to
// a temporary sibling first and renamed into place.
func (c *Compilation) WriteAssets(dir string, names ...string) error {
	for _, name := range names {
		data, err := c.Content(name)
		if err != nil {
			return err
		}
		target := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to create output directory").
				WithContext("path", filepath.Dir(target)).
				Build()
		}
		tmp := target + ".tmp"
		if err := os.WriteFile(tmp, data, 0o644); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to write asset").
				WithContext("asset", name).
				WithContext("path", tmp).
				Build()
		}
		if err := os.Rename(tmp, target); err != nil {
			_ = os.Remove(tmp)
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to move asset into place").
				WithContext("asset", name).
				WithContext("path", target).
				Build()
		}
	}
	return nil
}
