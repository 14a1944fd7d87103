package filesystem

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/wowa/pkg/errors"
	"github.com/spf13/afero"
)

// NewOS returns the real operating system filesystem.
func NewOS() afero.Fs {
	return afero.NewOsFs()
}

// Exists reports whether path exists.
func Exists(fs afero.Fs, path string) (bool, error) {
	return afero.Exists(fs, path)
}

// DirExists reports whether path exists and is a directory.
func DirExists(fs afero.Fs, path string) (bool, error) {
	return afero.DirExists(fs, path)
}

// ListDirs returns the names of the immediate subdirectories of dir, sorted.
// A missing dir yields an empty list.
func ListDirs(fs afero.Fs, dir string) ([]string, error) {
	infos, err := afero.ReadDir(fs, dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInternal, "failed to read directory %s", dir)
	}

	var names []string
	for _, info := range infos {
		if info.IsDir() {
			names = append(names, info.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// SafeJoin joins a slash separated relative name onto root, rejecting
// absolute names and names that escape root.
func SafeJoin(root, name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if name == "" || filepath.IsAbs(clean) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) || filepath.VolumeName(clean) != "" {
		return "", errors.Newf(errors.ErrInvalidInput, "path %q is not relative", name)
	}
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", errors.Newf(errors.ErrInvalidInput, "path %q escapes %s", name, root)
	}
	return filepath.Join(root, clean), nil
}

// WriteFileAtomic writes data to a temp file next to path and renames it
// over path, so readers never observe a partial file.
func WriteFileAtomic(fs afero.Fs, path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrInstall, "failed to create %s", dir)
	}

	tmp, err := afero.TempFile(fs, dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Wrapf(err, errors.ErrInstall, "failed to create temp file in %s", dir)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = fs.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.Wrapf(err, errors.ErrInstall, "failed to write %s", tmpName)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.Wrapf(err, errors.ErrInstall, "failed to sync %s", tmpName)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return errors.Wrapf(err, errors.ErrInstall, "failed to close %s", tmpName)
	}
	if err := fs.Chmod(tmpName, perm); err != nil {
		cleanup()
		return errors.Wrapf(err, errors.ErrInstall, "failed to chmod %s", tmpName)
	}
	if err := fs.Rename(tmpName, path); err != nil {
		cleanup()
		return errors.Wrapf(err, errors.ErrInstall, "failed to move %s into place", path)
	}
	return nil
}

// ReplacePath moves src to dst, removing whatever dst held before.
func ReplacePath(fs afero.Fs, src, dst string) error {
	if err := fs.RemoveAll(dst); err != nil {
		return errors.Wrapf(err, errors.ErrInstall, "failed to remove %s", dst)
	}
	if err := fs.Rename(src, dst); err != nil {
		return errors.Wrapf(err, errors.ErrInstall, "failed to move %s to %s", src, dst)
	}
	return nil
}
