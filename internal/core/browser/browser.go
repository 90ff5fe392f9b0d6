// Package browser implements directory navigation and file operations
// independent of any user interface. A Browser holds the current directory;
// every listing is read fresh from the filesystem.
package browser

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"filemanager/internal/infra/logx"
)

// DefaultExtension is appended by CreateFile when no extension is given.
const DefaultExtension = "txt"

// Browser tracks the current directory below a fixed root. It is not safe for
// concurrent use; the host serialises calls.
type Browser struct {
	fs      FileSystem
	root    string
	current string
}

// Option configures a Browser.
type Option func(*Browser)

// WithFileSystem replaces the host OS filesystem.
func WithFileSystem(fsys FileSystem) Option {
	return func(b *Browser) { b.fs = fsys }
}

// New creates a Browser rooted at root and positioned at start. An empty
// start means root; a relative start is resolved against root.
func New(root, start string, opts ...Option) (*Browser, error) {
	b := &Browser{fs: OS{}}
	for _, o := range opts {
		o(b)
	}

	if strings.TrimSpace(root) == "" {
		return nil, opErr("open", root, ErrInvalidName)
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, classify("open", root, err)
	}
	switch {
	case start == "":
		start = absRoot
	case !filepath.IsAbs(start):
		start = filepath.Join(absRoot, start)
	}
	start = filepath.Clean(start)
	if !within(absRoot, start) {
		return nil, &OpError{Op: "open", Path: start, Kind: ErrInvalidName, Err: fmt.Errorf("outside root %s", absRoot)}
	}

	for _, p := range []string{absRoot, start} {
		if err := b.requireDir("open", p); err != nil {
			return nil, err
		}
	}
	b.root, b.current = absRoot, start
	logx.Debugf("browser opened at %s (root %s)", b.current, b.root)
	return b, nil
}

// CurrentPath returns the directory being browsed.
func (b *Browser) CurrentPath() string { return b.current }

// RootPath returns the boundary above which NavigateUp does not go.
func (b *Browser) RootPath() string { return b.root }

// AtRoot reports whether the current directory is the root boundary.
func (b *Browser) AtRoot() bool {
	return b.current == b.root || filepath.Dir(b.current) == b.current
}

// List returns the children of the current directory. Failures of any kind
// produce an empty listing; use ListErr to tell "empty" from "unreadable".
func (b *Browser) List() []Entry {
	entries, _ := b.ListErr()
	return entries
}

// ListErr is List with the reason for an empty listing. The returned slice is
// never nil.
func (b *Browser) ListErr() ([]Entry, error) {
	entries, err := b.fs.ReadDir(b.current)
	if err != nil {
		logx.Debugf("list %s: %v", b.current, err)
		return []Entry{}, classify("list", b.current, err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	sortEntries(entries)
	return entries, nil
}

// Resolve returns the absolute path of the child name.
func (b *Browser) Resolve(name string) (string, error) {
	return b.child("resolve", name)
}

// Classify reports whether the child name is a directory or a file without
// changing the current directory.
func (b *Browser) Classify(name string) (Kind, error) {
	p, err := b.child("classify", name)
	if err != nil {
		return KindFile, err
	}
	return b.kind("classify", p)
}

// NavigateInto enters the child directory name. For anything that is not a
// directory it returns KindFile and leaves the current directory unchanged.
func (b *Browser) NavigateInto(name string) (Kind, error) {
	p, err := b.child("navigate", name)
	if err != nil {
		return KindFile, err
	}
	k, err := b.kind("navigate", p)
	if err != nil || k != KindDirectory {
		return k, err
	}
	b.current = p
	logx.Debugf("navigate into %s", p)
	return KindDirectory, nil
}

// UpResult describes the outcome of NavigateUp.
type UpResult struct {
	From string
	To   string
	// AtBoundary is set when the current directory is the root (or the
	// filesystem root) and nothing moved. Hosts decide whether that means
	// staying put or exiting.
	AtBoundary bool
}

// NavigateUp moves to the parent directory unless already at the boundary.
func (b *Browser) NavigateUp() UpResult {
	from := b.current
	if b.AtRoot() {
		return UpResult{From: from, To: from, AtBoundary: true}
	}
	b.current = filepath.Dir(from)
	logx.Debugf("navigate up %s -> %s", from, b.current)
	return UpResult{From: from, To: b.current}
}

// CreateDirectory creates the directory name in the current directory.
func (b *Browser) CreateDirectory(name string) error {
	p, err := b.child("mkdir", name)
	if err != nil {
		return err
	}
	if err := b.fs.Mkdir(p); err != nil {
		return classify("mkdir", p, err)
	}
	logx.Infow("created directory", logx.Fields{"path": p})
	return nil
}

// CreateFile creates the empty file baseName.extension in the current
// directory. An existing entry of that name is never overwritten.
func (b *Browser) CreateFile(baseName, extension string) error {
	if baseName == "" {
		return opErr("create", baseName, ErrInvalidName)
	}
	extension = strings.TrimPrefix(extension, ".")
	if extension == "" {
		extension = DefaultExtension
	}
	p, err := b.child("create", baseName+"."+extension)
	if err != nil {
		return err
	}
	if err := b.fs.CreateEmpty(p); err != nil {
		return classify("create", p, err)
	}
	logx.Infow("created file", logx.Fields{"path": p})
	return nil
}

// Rename renames the child target to newName within the current directory.
// Unless overwrite is set, an existing sibling called newName is an
// ErrAlreadyExists and neither entry is touched, including one created
// concurrently: the final step refuses to replace. On platforms without a
// no-replace rename this holds for regular files only.
func (b *Browser) Rename(target, newName string, overwrite bool) error {
	const op = "rename"
	src, err := b.child(op, target)
	if err != nil {
		return err
	}
	dst, err := b.child(op, newName)
	if err != nil {
		return err
	}
	srcInfo, err := b.fs.Lstat(src)
	if err != nil {
		return classify(op, src, err)
	}
	if src == dst {
		return nil
	}

	rename := b.fs.Rename
	if !overwrite {
		dstInfo, err := b.fs.Lstat(dst)
		switch {
		case err == nil && !os.SameFile(srcInfo, dstInfo):
			return opErr(op, dst, ErrAlreadyExists)
		case err == nil:
			// case-only change on a case-insensitive filesystem
		case !errors.Is(err, fs.ErrNotExist):
			return classify(op, dst, err)
		default:
			rename = b.fs.RenameNoReplace
		}
	}

	if err := rename(src, dst); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return &OpError{Op: op, Path: dst, Kind: ErrAlreadyExists, Err: err}
		}
		return classify(op, src, err)
	}
	logx.Infow("renamed", logx.Fields{"from": src, "to": dst})
	return nil
}

// Delete removes the child target and, for a directory, everything below it.
// When only part of the tree could be removed the error is a
// *PartialFailureError naming what is left.
func (b *Browser) Delete(ctx context.Context, target string) error {
	const op = "delete"
	p, err := b.child(op, target)
	if err != nil {
		return err
	}
	if _, err := b.fs.Lstat(p); err != nil {
		return classify(op, p, err)
	}

	removed, remaining, err := b.fs.RemoveTree(ctx, p)
	switch {
	case err == nil && len(remaining) == 0:
		logx.Infow("deleted", logx.Fields{"path": p, "removed": removed})
		return nil
	case removed == 0:
		if err == nil {
			return opErr(op, p, ErrIO)
		}
		return classify(op, p, err)
	default:
		logx.Warnw("delete incomplete", logx.Fields{"path": p, "removed": removed, "remaining": len(remaining)})
		return &PartialFailureError{Path: p, Remaining: remaining, Err: err}
	}
}

// Copy copies the child target to destinationDir/newName. destinationDir may
// be absolute or relative to the current directory; empty means the current
// directory.
//
// The copy is written under a temporary name in destinationDir and renamed
// into place, so a failure leaves nothing visible. With overwrite set an
// existing destination is replaced only after the new copy is complete.
// Without it the final rename refuses to replace a destination that appeared
// while copying.
func (b *Browser) Copy(ctx context.Context, target, destinationDir, newName string, overwrite bool) error {
	const op = "copy"
	src, err := b.child(op, target)
	if err != nil {
		return err
	}
	if err := validateName(newName); err != nil {
		return &OpError{Op: op, Path: newName, Kind: ErrInvalidName, Err: err}
	}

	dir := destinationDir
	switch {
	case dir == "":
		dir = b.current
	case !filepath.IsAbs(dir):
		dir = filepath.Join(b.current, dir)
	}
	dir = filepath.Clean(dir)
	dst := filepath.Join(dir, newName)

	srcInfo, err := b.fs.Lstat(src)
	if err != nil {
		return classify(op, src, err)
	}
	if err := b.requireDir(op, dir); err != nil {
		return err
	}
	if srcInfo.IsDir() && within(src, dst) {
		return &OpError{Op: op, Path: dst, Kind: ErrInvalidName, Err: errors.New("destination inside source")}
	}

	dstInfo, err := b.fs.Lstat(dst)
	exists := err == nil
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return classify(op, dst, err)
	}
	if exists && !overwrite {
		return opErr(op, dst, ErrAlreadyExists)
	}

	tmp := filepath.Join(dir, tempName("copy"))
	if err := b.fs.CopyTree(ctx, src, tmp); err != nil {
		b.discard(tmp)
		return &OpError{Op: op, Path: dst, Kind: ErrIO, Err: err}
	}

	switch {
	case !exists:
		if err = b.fs.RenameNoReplace(tmp, dst); errors.Is(err, fs.ErrExist) {
			b.discard(tmp)
			return &OpError{Op: op, Path: dst, Kind: ErrAlreadyExists, Err: err}
		}
	case !srcInfo.IsDir() && !dstInfo.IsDir():
		err = b.fs.Rename(tmp, dst)
	default:
		err = b.swap(tmp, dst)
	}
	if err != nil {
		b.discard(tmp)
		return &OpError{Op: op, Path: dst, Kind: ErrIO, Err: err}
	}
	logx.Infow("copied", logx.Fields{"from": src, "to": dst, "overwrite": overwrite})
	return nil
}

// swap replaces dst with tmp when a plain rename cannot (directories). The old
// destination is moved aside first and restored if the second rename fails.
func (b *Browser) swap(tmp, dst string) error {
	old := filepath.Join(filepath.Dir(dst), tempName("old"))
	if err := b.fs.Rename(dst, old); err != nil {
		return err
	}
	if err := b.fs.Rename(tmp, dst); err != nil {
		if rerr := b.fs.Rename(old, dst); rerr != nil {
			logx.Errorw("restore replaced destination", logx.Fields{"path": dst, "backup": old, "error": rerr.Error()})
		}
		return err
	}
	b.discard(old)
	return nil
}

func (b *Browser) discard(path string) {
	if _, remaining, err := b.fs.RemoveTree(context.Background(), path); err != nil || len(remaining) > 0 {
		logx.Warnw("leftover temporary entry", logx.Fields{"path": path, "remaining": len(remaining)})
	}
}

func (b *Browser) child(op, name string) (string, error) {
	if err := validateName(name); err != nil {
		return "", &OpError{Op: op, Path: name, Kind: ErrInvalidName, Err: err}
	}
	p := filepath.Join(b.current, name)
	if filepath.Dir(p) != b.current {
		return "", opErr(op, name, ErrInvalidName)
	}
	return p, nil
}

func (b *Browser) kind(op, path string) (Kind, error) {
	info, err := b.fs.Stat(path)
	if err != nil {
		// dangling symlink: exists, but not navigable
		if _, lerr := b.fs.Lstat(path); lerr == nil {
			return KindFile, nil
		}
		return KindFile, classify(op, path, err)
	}
	if info.IsDir() {
		return KindDirectory, nil
	}
	return KindFile, nil
}

func (b *Browser) requireDir(op, path string) error {
	info, err := b.fs.Stat(path)
	if err != nil {
		return classify(op, path, err)
	}
	if !info.IsDir() {
		return &OpError{Op: op, Path: path, Kind: ErrNotFound, Err: errors.New("not a directory")}
	}
	return nil
}

// validateName accepts a single path element.
func validateName(name string) error {
	switch {
	case name == "":
		return errors.New("empty name")
	case name == "." || name == "..":
		return fmt.Errorf("reserved name %q", name)
	case strings.ContainsRune(name, '/'), strings.ContainsRune(name, filepath.Separator):
		return fmt.Errorf("name %q contains a path separator", name)
	case strings.ContainsRune(name, 0):
		return errors.New("name contains NUL")
	}
	return nil
}

// within reports whether p is root or lies below it.
func within(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func tempName(tag string) string {
	return ".filemanager-" + tag + "-" + uuid.NewString()
}
