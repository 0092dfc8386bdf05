// Package zstdcodec wraps github.com/klauspost/compress/zstd for the
// whole-payload, dictionary-aware compression the archive writer and
// reader need: every node is compressed (or not) as a single frame, so
// there is no need for the chunked/seekable framing other zstd
// adaptors in the wild build on top of the same library.
package zstdcodec

import (
	"github.com/klauspost/compress/zstd"
)

// Compress encodes payload as a single zstd frame at level, optionally
// against dict, used as raw-content history (pass nil for no
// dictionary). The returned bytes are a fresh allocation safe to retain.
func Compress(payload []byte, dict []byte, level zstd.EncoderLevel) ([]byte, error) {
	opts := []zstd.EOption{zstd.WithEncoderLevel(level)}
	if len(dict) > 0 {
		opts = append(opts, zstd.WithEncoderDictRaw(0, dict))
	}

	enc, err := zstd.NewWriter(nil, opts...)
	if err != nil {
		return nil, err
	}
	defer enc.Close()

	return enc.EncodeAll(payload, make([]byte, 0, len(payload))), nil
}

// Decompress decodes a single zstd frame produced by Compress, against
// the same dictionary (pass nil if none was used).
func Decompress(frame []byte, dict []byte) ([]byte, error) {
	opts := []zstd.DOption{}
	if len(dict) > 0 {
		opts = append(opts, zstd.WithDecoderDictRaw(0, dict))
	}

	dec, err := zstd.NewReader(nil, opts...)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	return dec.DecodeAll(frame, nil)
}
