package walker

import (
	"io/fs"
	"os/user"
	"strconv"
)

// ownerCache memoizes user name lookups for the duration of one walk.
type ownerCache struct {
	names map[uint32]string
}

func newOwnerCache() *ownerCache {
	return &ownerCache{names: map[uint32]string{}}
}

func (cache *ownerCache) lookup(info fs.FileInfo) string {
	uid, ok := ownerID(info)
	if !ok {
		return ""
	}
	if name, cached := cache.names[uid]; cached {
		return name
	}
	identifier := strconv.FormatUint(uint64(uid), 10)
	name := identifier
	if account, lookupError := user.LookupId(identifier); lookupError == nil && account.Username != "" {
		name = account.Username
	}
	cache.names[uid] = name
	return name
}
