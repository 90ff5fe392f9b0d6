//go:build !linux

package browser

func renameNoReplace(oldPath, newPath string) error {
	return renameChecked(oldPath, newPath)
}
