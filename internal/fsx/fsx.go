// Package fsx contains the file system helpers we use for reading
// trust anchors and settings and for creating the output file.
package fsx

import (
	"errors"
	"io/fs"
	"os"
	"syscall"
)

// OpenFile opens a regular file for reading. Opening a directory
// fails with an *os.PathError wrapping syscall.EISDIR.
func OpenFile(pathname string) (fs.File, error) {
	fp, err := os.Open(pathname)
	if err != nil {
		return nil, err
	}
	info, err := fp.Stat()
	if err == nil && info.IsDir() {
		err = &os.PathError{Op: "open", Path: pathname, Err: syscall.EISDIR}
	}
	if err != nil {
		fp.Close()
		return nil, err
	}
	return fp, nil
}

// Exists returns whether something (a file, a directory, a dangling
// symlink) already exists at the given path.
func Exists(pathname string) (bool, error) {
	_, err := os.Lstat(pathname)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// CreateExclusive creates a new file with the given permissions, failing
// with an error matching fs.ErrExist if the file already exists.
func CreateExclusive(pathname string, perms fs.FileMode) (*os.File, error) {
	return os.OpenFile(pathname, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perms)
}
