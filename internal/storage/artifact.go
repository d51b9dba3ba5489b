package storage

import (
	"fmt"

	"github.com/zeebo/xxh3"

	"tabetl/internal/dataset"
)

// ContentType is the media type of every serialized artifact.
const ContentType = "text/csv"

// ChecksumMetadataKey is the object metadata key holding the checksum.
const ChecksumMetadataKey = "xxh3"

// Artifact is a dataset serialized as CSV together with its checksum.
type Artifact struct {
	Body     []byte
	Checksum string
}

// Encode serializes ds. Equal datasets always produce identical bytes.
func Encode(ds *dataset.Dataset) (Artifact, error) {
	b, err := dataset.EncodeCSV(ds)
	if err != nil {
		return Artifact{}, fmt.Errorf("encode csv: %w", err)
	}
	return Artifact{Body: b, Checksum: Checksum(b)}, nil
}

// Checksum returns the hex xxh3-64 digest of b.
func Checksum(b []byte) string {
	return fmt.Sprintf("%016x", xxh3.Hash(b))
}
