package browser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"filemanager/internal/infra/logx"
)

// FileSystem is the capability set the browser needs from its host platform.
// Paths are always absolute.
type FileSystem interface {
	// ReadDir returns the children of dir in any order. Symbolic links that
	// point at directories report IsDir.
	ReadDir(dir string) ([]Entry, error)

	// Stat describes path, following symbolic links.
	Stat(path string) (fs.FileInfo, error)

	// Lstat describes path without following a final symbolic link.
	Lstat(path string) (fs.FileInfo, error)

	// Mkdir creates a single directory. It fails if path exists.
	Mkdir(path string) error

	// CreateEmpty creates an empty regular file. It fails if path exists.
	CreateEmpty(path string) error

	// Rename moves oldPath to newPath, replacing newPath if the platform does.
	Rename(oldPath, newPath string) error

	// RenameNoReplace moves oldPath to newPath and fails with fs.ErrExist if
	// newPath exists.
	RenameNoReplace(oldPath, newPath string) error

	// RemoveTree deletes path and everything below it. It keeps going after a
	// failure and reports how many paths it removed and which ones remain.
	RemoveTree(ctx context.Context, path string) (removed int, remaining []string, err error)

	// CopyTree copies src (a file, symlink or directory subtree) to dst,
	// which must not exist. On error dst may be partially written.
	CopyTree(ctx context.Context, src, dst string) error
}

// OS is the FileSystem backed by the host operating system.
type OS struct{}

var _ FileSystem = OS{}

func (OS) ReadDir(dir string) ([]Entry, error) {
	des, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(des))
	for _, de := range des {
		info, err := de.Info()
		if err != nil {
			// removed between readdir and lstat
			logx.Debugf("skip %s: %v", filepath.Join(dir, de.Name()), err)
			continue
		}
		e := Entry{
			Name:    de.Name(),
			IsDir:   info.IsDir(),
			Size:    info.Size(),
			Mode:    info.Mode(),
			ModTime: info.ModTime(),
		}
		if info.Mode()&fs.ModeSymlink != 0 {
			if target, err := os.Stat(filepath.Join(dir, de.Name())); err == nil {
				e.IsDir = target.IsDir()
			}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (OS) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

func (OS) Lstat(path string) (fs.FileInfo, error) {
	return os.Lstat(path)
}

func (OS) Mkdir(path string) error {
	return os.Mkdir(path, 0o755)
}

func (OS) CreateEmpty(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	return f.Close()
}

func (OS) Rename(oldPath, newPath string) error {
	return os.Rename(oldPath, newPath)
}

func (OS) RenameNoReplace(oldPath, newPath string) error {
	return renameNoReplace(oldPath, newPath)
}

// renameChecked is the portable no-replace rename. Regular files go through
// a hard link, which fails if newPath exists. Other entries are checked
// first and then renamed, so a newPath created in between is replaced.
func renameChecked(oldPath, newPath string) error {
	info, err := os.Lstat(oldPath)
	if err != nil {
		return err
	}
	if info.Mode().IsRegular() {
		err := os.Link(oldPath, newPath)
		if err == nil {
			return os.Remove(oldPath)
		}
		if errors.Is(err, fs.ErrExist) {
			return err
		}
		// no hard links on this filesystem
	}
	if _, err := os.Lstat(newPath); err == nil {
		return &os.LinkError{Op: "rename", Old: oldPath, New: newPath, Err: fs.ErrExist}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.Rename(oldPath, newPath)
}

func (OS) RemoveTree(ctx context.Context, path string) (int, []string, error) {
	r := remover{ctx: ctx}
	remaining := r.remove(path)
	return r.removed, remaining, r.err
}

type remover struct {
	ctx     context.Context
	removed int
	err     error
}

func (r *remover) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

// remove deletes path bottom-up and returns the paths it could not delete.
// A directory with surviving children is itself reported as remaining.
func (r *remover) remove(path string) []string {
	info, err := os.Lstat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		r.fail(err)
		return []string{path}
	}

	var remaining []string
	if info.IsDir() {
		children, err := os.ReadDir(path)
		if err != nil {
			r.fail(err)
			return []string{path}
		}
		for _, c := range children {
			remaining = append(remaining, r.remove(filepath.Join(path, c.Name()))...)
		}
		if len(remaining) > 0 {
			return append(remaining, path)
		}
	}

	if err := r.ctx.Err(); err != nil {
		r.fail(err)
		return append(remaining, path)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		r.fail(err)
		return append(remaining, path)
	}
	r.removed++
	return remaining
}

func (o OS) CopyTree(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := os.Lstat(src)
	if err != nil {
		return err
	}

	switch mode := info.Mode(); {
	case mode.IsDir():
		// owner-writable until the children are in place
		if err := os.Mkdir(dst, 0o700); err != nil {
			return err
		}
		children, err := os.ReadDir(src)
		if err != nil {
			return err
		}
		for _, c := range children {
			if err := o.CopyTree(ctx, filepath.Join(src, c.Name()), filepath.Join(dst, c.Name())); err != nil {
				return err
			}
		}
		return os.Chmod(dst, mode.Perm())
	case mode&fs.ModeSymlink != 0:
		target, err := os.Readlink(src)
		if err != nil {
			return err
		}
		return os.Symlink(target, dst)
	case mode.IsRegular():
		return copyFile(ctx, src, dst, mode.Perm())
	default:
		return &fs.PathError{Op: "copy", Path: src, Err: fmt.Errorf("unsupported file type %s", mode.Type())}
	}
}

func copyFile(ctx context.Context, src, dst string, perm fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, ctxReader{ctx: ctx, r: in}); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// ctxReader stops a copy between reads once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
