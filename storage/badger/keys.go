package badger

import (
	"fmt"

	"github.com/geosift/geosift/core"
)

// Key prefixes for different data types
const (
	catalogEntryPrefix = "catent"
	catalogNamePrefix  = "catnam"
)

// makeCatalogEntryKey generates a key for a catalog entry by ID.
func makeCatalogEntryKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", catalogEntryPrefix, id))
}

// makeCatalogNameKey generates a key for the name index.
// Format: prefix:name
func makeCatalogNameKey(name string) []byte {
	prefix := catalogNamePrefix + ":"
	buf := make([]byte, len(prefix)+len(name))
	offset := copy(buf, []byte(prefix))
	copy(buf[offset:], []byte(name))
	return buf
}
