// Binary encoding for keyword blobs.
//
// A keyword list is serialized to a compact length-prefixed form and then
// compressed as a single lz4 block. Stored layout (little-endian):
//
//	rawSize:  uint32              size of the uncompressed body
//	body:     lz4 block of
//	  count:    uint32
//	  per keyword:
//	    len:    uint32
//	    bytes:  [len]byte
//
// Bodies that lz4 cannot shrink are stored uncompressed, flagged by a zero
// rawSize header.
package bbolt

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"

	"github.com/pierrec/lz4/v4"
	"github.com/pkg/errors"
)

// maxBlockRatio bounds how far an lz4 block can expand; a header claiming
// more than this is corrupt.
const maxBlockRatio = 255

// encodeKeywords packs and compresses a keyword list.
func encodeKeywords(keywords []string) ([]byte, error) {
	// Pre-calculate total size for single allocation.
	// Header: 4 bytes (count). Per keyword: 4 (len) + len(keyword).
	size := 4
	for _, kw := range keywords {
		size += 4 + len(kw)
	}

	body := make([]byte, size)
	offset := 0
	binary.LittleEndian.PutUint32(body[offset:], uint32(len(keywords)))
	offset += 4
	for _, kw := range keywords {
		binary.LittleEndian.PutUint32(body[offset:], uint32(len(kw)))
		offset += 4
		copy(body[offset:], kw)
		offset += len(kw)
	}

	compressed := make([]byte, 4+lz4.CompressBlockBound(size))
	var c lz4.Compressor
	n, err := c.CompressBlock(body, compressed[4:])
	if err != nil {
		return nil, err
	}
	if n == 0 || n >= size {
		// Incompressible: store the raw body behind a zero header.
		out := make([]byte, 4+size)
		copy(out[4:], body)
		return out, nil
	}
	binary.LittleEndian.PutUint32(compressed, uint32(size))
	return compressed[:4+n], nil
}

// decodeKeywords reverses encodeKeywords. Every read is bounds-checked and
// every allocation is sized against the bytes actually present, so corrupt
// headers fail with an error instead of a panic or a runaway allocation.
func decodeKeywords(data []byte) ([]string, error) {
	if len(data) < 4 {
		return nil, errors.Errorf("keyword blob too short: %d bytes", len(data))
	}
	rawSize := binary.LittleEndian.Uint32(data)
	body := data[4:]
	if rawSize > 0 {
		if uint64(rawSize) > uint64(len(body))*maxBlockRatio {
			return nil, errors.Errorf("lz4: header claims %d bytes from a %d byte block", rawSize, len(body))
		}
		raw := make([]byte, rawSize)
		n, err := lz4.UncompressBlock(body, raw)
		if err != nil {
			return nil, errors.Wrap(err, "lz4")
		}
		if n != int(rawSize) {
			return nil, errors.Errorf("lz4: got %d bytes, want %d", n, rawSize)
		}
		body = raw
	}

	if len(body) < 4 {
		return nil, errors.Errorf("keyword body too short: %d bytes", len(body))
	}
	offset := 0
	count := binary.LittleEndian.Uint32(body[offset:])
	offset += 4

	// Each keyword needs at least its 4-byte length.
	if uint64(count) > uint64(len(body)-offset)/4 {
		return nil, errors.Errorf("keyword count %d exceeds %d byte body", count, len(body))
	}

	keywords := make([]string, 0, count)
	for i := uint32(0); i < count; i++ {
		if offset+4 > len(body) {
			return nil, errors.Errorf("truncated at keyword %d length (offset %d)", i, offset)
		}
		n := int(binary.LittleEndian.Uint32(body[offset:]))
		offset += 4
		if n < 0 || n > len(body)-offset {
			return nil, errors.Errorf("truncated at keyword %d (offset %d, need %d)", i, offset, n)
		}
		keywords = append(keywords, string(body[offset:offset+n]))
		offset += n
	}
	return keywords, nil
}

// encodeGob encodes a value using gob. Used for the small per-set metadata record.
func encodeGob(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeGob decodes gob-encoded data into target. Target must be a pointer.
func decodeGob(data []byte, target interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(target)
}
