//go:build !darwin && !linux

package models

import (
	"fmt"
	"os"
)

const (
	sIFREG = 0o100000
	sIFDIR = 0o040000
	sIFLNK = 0o120000
)

func NewFsObject(path string) (FsObject, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return FsObject{}, fmt.Errorf("failed to stat path: %w", err)
	}

	obj := FsObject{
		Path:     path,
		Size:     info.Size(),
		Modified: info.ModTime().Unix(),
		Mode:     uint32(info.Mode().Perm()),
	}

	switch {
	case info.Mode().IsRegular():
		obj.Mode |= sIFREG
	case info.IsDir():
		obj.Mode |= sIFDIR
	case info.Mode()&os.ModeSymlink != 0:
		obj.Mode |= sIFLNK
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
