// uuid.go - random run identifiers
//
// (c) 2024- Sudhi Herle <sudhi@herle.net>
//
// Licensing Terms: GPLv2
//
// If you need a commercial license for this work, please contact
// the author.
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package indexer

import (
	"crypto/rand"
	"fmt"
)

// newUUID returns a random RFC 4122 version-4 UUID string. None of
// the retrieved pack dependencies carry a UUID generator, so this is
// the one place in the indexer built on the standard library rather
// than a pack dependency (see DESIGN.md).
func newUUID() string {
	var b [16]byte
	rand.Read(b[:])
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:16])
}
