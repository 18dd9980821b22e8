//go:build unix

package walker

import (
	"io/fs"
	"syscall"
)

func ownerID(info fs.FileInfo) (uint32, bool) {
	status, ok := info.Sys().(*syscall.Stat_t)
	if !ok || status == nil {
		return 0, false
	}
	return status.Uid, true
}
