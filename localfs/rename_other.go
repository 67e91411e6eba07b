//go:build !linux

package localfs

func renameNoReplace(src, dst string) error {
	return renameChecked(src, dst)
}
