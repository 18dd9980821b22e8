//go:build !unix

package walker

import (
	"io/fs"
)

func ownerID(fs.FileInfo) (uint32, bool) {
	return 0, false
}
