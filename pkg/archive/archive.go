// Package archive extracts addon zip archives into a staging directory so
// that the final placement into the AddOns folder is a set of renames.
package archive

import (
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/wowa/pkg/errors"
	"github.com/arthur-debert/wowa/pkg/filesystem"
	"github.com/arthur-debert/wowa/pkg/logging"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"
)

// StagingPrefix marks staging directories inside an install root. The game
// client ignores folders starting with a dot.
const StagingPrefix = ".wowa-staging-"

// Staging is an extracted archive waiting to be moved into place.
type Staging struct {
	fs      afero.Fs
	Dir     string
	Entries []string
}

// Extract unpacks the zip at archivePath into a fresh staging directory
// under root. Entries are the archive's top-level names, sorted. On error
// the staging directory is removed.
func Extract(fs afero.Fs, archivePath, root string) (*Staging, error) {
	logger := logging.GetLogger("archive")

	f, err := fs.Open(archivePath)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrArchive, "failed to open archive %s", archivePath)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrArchive, "failed to stat archive %s", archivePath)
	}

	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrArchive, "failed to read zip archive %s", archivePath)
	}

	dir := filepath.Join(root, StagingPrefix+uuid.NewString())
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrArchive, "failed to create staging directory %s", dir)
	}

	staged := &Staging{fs: fs, Dir: dir}
	if err := staged.unpack(zr); err != nil {
		if cleanupErr := staged.Cleanup(); cleanupErr != nil {
			logger.Warn().Err(cleanupErr).Str("dir", dir).Msg("Could not remove staging directory")
		}
		return nil, err
	}
	if len(staged.Entries) == 0 {
		_ = staged.Cleanup()
		return nil, errors.Newf(errors.ErrArchive, "archive %s is empty", archivePath)
	}

	logger.Debug().Str("dir", dir).Strs("entries", staged.Entries).Msg("Extracted archive to staging")
	return staged, nil
}

// unpack writes every zip entry below s.Dir and records the top-level names.
func (s *Staging) unpack(zr *zip.Reader) error {
	top := mapset.NewThreadUnsafeSet[string]()
	for _, file := range zr.File {
		name := strings.TrimPrefix(path.Clean("/"+file.Name), "/")
		if name == "" || name == "." {
			continue
		}
		if strings.Contains(file.Name, `\`) || hasParentSegment(file.Name) {
			return errors.Newf(errors.ErrArchive, "invalid path in zip: %s", file.Name)
		}

		destPath, err := filesystem.SafeJoin(s.Dir, name)
		if err != nil {
			return errors.Wrapf(err, errors.ErrArchive, "invalid path in zip: %s", file.Name)
		}
		top.Add(strings.SplitN(name, "/", 2)[0])

		if file.FileInfo().IsDir() {
			if err := s.fs.MkdirAll(destPath, 0755); err != nil {
				return errors.Wrapf(err, errors.ErrArchive, "failed to create %s", destPath)
			}
			continue
		}
		if err := s.fs.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
			return errors.Wrapf(err, errors.ErrArchive, "failed to create %s", filepath.Dir(destPath))
		}
		if err := extractFile(s.fs, file, destPath); err != nil {
			return errors.Wrapf(err, errors.ErrArchive, "failed to extract %s", file.Name)
		}
	}

	s.Entries = top.ToSlice()
	sort.Strings(s.Entries)
	return nil
}

func hasParentSegment(name string) bool {
	for _, seg := range strings.Split(name, "/") {
		if seg == ".." {
			return true
		}
	}
	return strings.HasPrefix(name, "/")
}

func extractFile(fs afero.Fs, file *zip.File, destPath string) (err error) {
	rc, err := file.Open()
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := rc.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	mode := file.Mode().Perm()
	if mode == 0 {
		mode = 0644
	}
	out, err := fs.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	//nolint:gosec // archives come from the configured provider
	_, err = io.Copy(out, rc)
	return err
}

// Path returns the staged location of a top-level entry.
func (s *Staging) Path(entry string) string {
	return filepath.Join(s.Dir, entry)
}

// Commit moves every staged entry into root, replacing existing paths of
// the same name, then removes the staging directory.
func (s *Staging) Commit(root string) error {
	for _, entry := range s.Entries {
		if err := filesystem.ReplacePath(s.fs, s.Path(entry), filepath.Join(root, entry)); err != nil {
			return err
		}
	}
	return s.Cleanup()
}

// Cleanup removes the staging directory.
func (s *Staging) Cleanup() error {
	if err := s.fs.RemoveAll(s.Dir); err != nil {
		return errors.Wrapf(err, errors.ErrArchive, "failed to remove staging directory %s", s.Dir)
	}
	return nil
}
