//go:build !darwin && !linux

package procname

func lookup(int32) string {
	return Unknown
}
