package models

import (
	"encoding/hex"
	"fmt"
	"github.com/Leantar/fsewatcher/modules/fsevents"
	"github.com/zeebo/blake3"
	"io"
	"os"
)

// FsObject is the state of a reported path at the time it was reported.
type FsObject struct {
	Path     string
	Kind     string
	Hash     string
	Size     int64
	Inode    uint64
	Created  int64
	Modified int64
	Uid      uint32
	Gid      uint32
	Mode     uint32
}

func (o *FsObject) setKind() {
	o.Kind = fsevents.VnodeTypeName(fsevents.VnodeType(o.Mode))
}

func (o *FsObject) IsRegular() bool {
	return fsevents.VnodeType(o.Mode) == fsevents.VReg
}

func hashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	hasher := blake3.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("failed to copy file content: %w", err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}
