package viz

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// WriteHTMLFile writes page to path. The content goes to an exclusively
// created scratch file beside path first and is renamed into place, so
// readers never see a partial page. The scratch file is removed on failure;
// a failed removal is joined to the returned error.
func WriteHTMLFile(path, page string) (err error) {
	dir := filepath.Dir(path)
	scratch := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(path), uuid.NewString()))

	f, err := os.OpenFile(scratch, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("creating scratch file: %w", err)
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, discardScratch(scratch))
		}
	}()

	if _, err := f.WriteString(page); err != nil {
		return errors.Join(fmt.Errorf("writing %s: %w", scratch, err), f.Close())
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", scratch, err)
	}
	if err := os.Rename(scratch, path); err != nil {
		return fmt.Errorf("moving page into place: %w", err)
	}
	return nil
}

// discardScratch removes a scratch file. One that is already gone is fine.
func discardScratch(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing scratch file: %w", err)
	}
	return nil
}
