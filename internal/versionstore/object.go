package versionstore

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

// blobHeader returns the git object header for a blob of n bytes.
func blobHeader(n int) []byte {
	return []byte(fmt.Sprintf("blob %d\x00", n))
}

// BlobID returns the git blob id of data: SHA-1 over "blob <len>\0<data>".
func BlobID(data []byte) string {
	h := sha1.New()
	h.Write(blobHeader(len(data)))
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
