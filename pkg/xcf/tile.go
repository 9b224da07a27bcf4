package xcf

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/klauspost/compress/zlib"
)

// channelSize returns the byte width of one sample at the given precision,
// and whether that sample is IEEE float (as opposed to unsigned integer).
func channelSize(p Precision) (size int, isFloat bool, err error) {
	switch p {
	case PrecisionI8Linear, PrecisionI8Gamma:
		return 1, false, nil
	case PrecisionI16Linear, PrecisionI16Gamma:
		return 2, false, nil
	case PrecisionI32Linear, PrecisionI32Gamma:
		return 4, false, nil
	case PrecisionF16Linear, PrecisionF16Gamma:
		return 2, true, nil
	case PrecisionF32Linear, PrecisionF32Gamma:
		return 4, true, nil
	case PrecisionF64Linear, PrecisionF64Gamma:
		return 8, true, nil
	}
	return 0, false, ErrUnsupportedChannelSize
}

// opaqueAlphaSample returns the channelSize-byte, big-endian-encoded
// representation of "fully opaque" for the given precision (spec.md §4.6):
// all-0xFF for integer precisions, the IEEE half-precision bit pattern
// 0x3C00 for 16-bit float, and the bit pattern of 1.0 for 32/64-bit float.
func opaqueAlphaSample(p Precision, size int, isFloat bool) []byte {
	buf := make([]byte, size)
	if !isFloat {
		for i := range buf {
			buf[i] = 0xFF
		}
		return buf
	}
	switch size {
	case 2:
		binary.BigEndian.PutUint16(buf, 0x3C00)
	case 4:
		binary.BigEndian.PutUint32(buf, math.Float32bits(1.0))
	case 8:
		binary.BigEndian.PutUint64(buf, math.Float64bits(1.0))
	}
	return buf
}

// readSampleBigEndian reads one host-native sample of the given size from
// src at offset and returns it re-encoded big-endian.
func readSampleBigEndian(src []byte, offset, size int) []byte {
	raw := src[offset : offset+size]
	out := make([]byte, size)
	switch size {
	case 1:
		out[0] = raw[0]
	case 2:
		binary.BigEndian.PutUint16(out, binary.NativeEndian.Uint16(raw))
	case 4:
		binary.BigEndian.PutUint32(out, binary.NativeEndian.Uint32(raw))
	case 8:
		binary.BigEndian.PutUint64(out, binary.NativeEndian.Uint64(raw))
	}
	return out
}

// sampleAt returns the big-endian sample for output channel ch of the pixel
// at (x, y), applying channel-count adaptation (spec.md §4.6): samples
// beyond in_channels are zero, except the final channel of an
// alpha-carrying pixel type, which is synthesized fully opaque.
func sampleAt(data []byte, width, inChannels, nChannels, size int, opaque []byte, x, y, ch int) []byte {
	if ch < inChannels {
		offset := ((y*width + x) * inChannels + ch) * size
		return readSampleBigEndian(data, offset, size)
	}
	if ch == nChannels-1 && (nChannels == 2 || nChannels == 4) {
		return opaque
	}
	return make([]byte, size)
}

// writeHierarchy emits a hierarchy (spec.md §4.6): the hierarchy header, a
// single level-0 struct, its tile pointer table, and every tile payload, in
// row-major order.
func (s *Session) writeHierarchy(width, height uint32, nChannels int, data []byte, inChannels int) error {
	size, isFloat, err := channelSize(s.precision)
	if err != nil {
		return s.fail(err)
	}
	bpp := nChannels * size

	if err := s.sink.U32(width); err != nil {
		return s.fail(err)
	}
	if err := s.sink.U32(height); err != nil {
		return s.fail(err)
	}
	if err := s.sink.U32(uint32(bpp)); err != nil {
		return s.fail(err)
	}

	cur, err := s.sink.Tell()
	if err != nil {
		return s.fail(err)
	}
	level0Offset := cur + 2*int64(s.ptrSize)
	if err := s.sink.Pointer(s.ptrSize, uint64(level0Offset)); err != nil {
		return s.fail(err)
	}
	if err := s.sink.Pointer(s.ptrSize, 0); err != nil {
		return s.fail(err)
	}

	if err := s.sink.U32(width); err != nil {
		return s.fail(err)
	}
	if err := s.sink.U32(height); err != nil {
		return s.fail(err)
	}

	nTilesX := (int(width) + tileSize - 1) / tileSize
	nTilesY := (int(height) + tileSize - 1) / tileSize
	nTiles := nTilesX * nTilesY

	tileTableOffset, err := s.registerPointerTable(uint32(nTiles))
	if err != nil {
		return s.fail(err)
	}

	opaque := opaqueAlphaSample(s.precision, size, isFloat)

	for ty := 0; ty < nTilesY; ty++ {
		for tx := 0; tx < nTilesX; tx++ {
			tileW := tileSize
			if (tx+1)*tileSize > int(width) {
				tileW = int(width) - tx*tileSize
			}
			tileH := tileSize
			if (ty+1)*tileSize > int(height) {
				tileH = int(height) - ty*tileSize
			}
			tileIndex := uint32(ty*nTilesX + tx)

			if err := s.backpatchPointerTable(tileTableOffset, tileIndex); err != nil {
				return s.fail(err)
			}

			buf := make([]byte, 0, tileW*tileH*bpp)
			for y := 0; y < tileH; y++ {
				imgY := ty*tileSize + y
				for x := 0; x < tileW; x++ {
					imgX := tx*tileSize + x
					for ch := 0; ch < nChannels; ch++ {
						buf = append(buf, sampleAt(data, int(width), inChannels, nChannels, size, opaque, imgX, imgY, ch)...)
					}
				}
			}

			if err := s.writeTilePayload(buf); err != nil {
				return s.fail(err)
			}
		}
	}

	return nil
}

// defaultZlibLevel is the deflate level used for every zlib-compressed
// tile: the library's DefaultCompression, named here so that the one
// level choice behind reproducible output (spec.md §8 item 3) lives in a
// single place.
const defaultZlibLevel = zlib.DefaultCompression

// writeTilePayload writes the tile's payload raw or zlib-wrapped according
// to the session's compression selector (spec.md §4.6).
func (s *Session) writeTilePayload(buf []byte) error {
	switch s.compression {
	case CompressionNone:
		return s.sink.Raw(buf)
	case CompressionZlib:
		zw, err := zlib.NewWriterLevel(s.sink.Writer(), defaultZlibLevel)
		if err != nil {
			return err
		}
		if _, err := zw.Write(buf); err != nil {
			zw.Close()
			return err
		}
		return zw.Close()
	}
	return fmt.Errorf("xcf: unsupported compression selector %d", s.compression)
}
