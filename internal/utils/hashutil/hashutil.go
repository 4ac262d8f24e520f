package hashutil

import (
	"encoding/binary"
	"encoding/hex"
	"io"

	"lukechampine.com/blake3"
)

// Key returns the hex blake3-256 digest of parts. Each part is length
// prefixed, so ("ab", "c") and ("a", "bc") hash differently.
func Key(parts ...string) string {
	h := blake3.New(32, nil)

	var n [binary.MaxVarintLen64]byte
	for _, p := range parts {
		h.Write(n[:binary.PutUvarint(n[:], uint64(len(p)))])
		io.WriteString(h, p)
	}

	return hex.EncodeToString(h.Sum(nil))
}
