//go:build darwin || linux

package models

import (
	"fmt"
	"golang.org/x/sys/unix"
)

// NewFsObject lstats path and hashes it when it is a regular file.
func NewFsObject(path string) (FsObject, error) {
	var stat unix.Stat_t

	err := unix.Lstat(path, &stat)
	if err != nil {
		return FsObject{}, fmt.Errorf("failed to stat path: %w", err)
	}

	created, _ := stat.Ctim.Unix()
	modified, _ := stat.Mtim.Unix()

	obj := FsObject{
		Path:     path,
		Size:     stat.Size,
		Inode:    stat.Ino,
		Created:  created,
		Modified: modified,
		Uid:      stat.Uid,
		Gid:      stat.Gid,
		Mode:     uint32(stat.Mode),
	}
	obj.setKind()

	if obj.IsRegular() {
		obj.Hash, err = hashFile(path)
		if err != nil {
			return FsObject{}, err
		}
	}

	return obj, nil
}
