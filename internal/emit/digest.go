package emit

import "github.com/opencontainers/go-digest"

// Digest returns the sha256 content digest of an emitted descriptor.
func Digest(b []byte) digest.Digest {
	return digest.FromBytes(b)
}
