// Package compress provides the whole-file codecs bblconv uses for compressed
// SLF inputs ("LOG001.TXT.zst") and for archived blackbox outputs
// ("... SLF4_001.bbl.zst").
//
// Every codec reads and writes the standard file format of its algorithm, so
// files can be produced or inspected with the usual command line tools:
//
//	| Type                   | Suffix | Format                      | Library               |
//	|------------------------|--------|-----------------------------|-----------------------|
//	| format.CompressionNone | none   | raw bytes                   |                       |
//	| format.CompressionZstd | .zst   | Zstandard frame             | klauspost/compress    |
//	|                        |        |                             | valyala/gozstd (tag)  |
//	| format.CompressionS2   | .s2    | S2 stream (Snappy accepted) | klauspost/compress/s2 |
//	| format.CompressionLZ4  | .lz4   | LZ4 frame                   | pierrec/lz4/v4        |
//
// # Usage
//
//	codec, ct := compress.CodecForPath("LOG001.TXT.zst")
//	log, err := codec.Decompress(body)
//
//	codec, err := compress.GetCodec(format.CompressionLZ4)
//	archived, err := codec.Compress(bbl)
//
// # Build tags
//
// Zstandard defaults to the pure-Go encoder. Build with -tags gozstd (and cgo
// enabled) to use libzstd through valyala/gozstd instead.
//
// # Limits
//
// Decompress refuses to produce more than 1 GiB, which is far beyond any
// flight log and stops a corrupted or hostile file from exhausting memory.
//
// All codecs are stateless values backed by pooled encoders and are safe for
// concurrent use.
package compress
