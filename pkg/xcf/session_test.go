package xcf

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"os"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempOutput(t *testing.T) *os.File {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "xcf-*.xcf")
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

// findZlibPayload scans contents for a zlib stream and returns its
// decompressed bytes. Used because the encoder writes a tile's compressed
// payload as the tail of the file with no length prefix (readers delimit
// by decompression), so tests locate it the same way a reader would.
func findZlibPayload(t *testing.T, contents []byte) []byte {
	t.Helper()
	for i := 0; i < len(contents); i++ {
		if contents[i] != 0x78 {
			continue
		}
		zr, err := zlib.NewReader(bytes.NewReader(contents[i:]))
		if err != nil {
			continue
		}
		out, err := io.ReadAll(zr)
		if err != nil {
			continue
		}
		if zr.Close() != nil {
			continue
		}
		return out
	}
	t.Fatal("no zlib payload found")
	return nil
}

// S1 — 1x1 RGBA8, single layer, zlib.
func TestScenarioS1(t *testing.T) {
	f := tempOutput(t)
	s, err := NewSession(f)
	require.NoError(t, err)

	require.NoError(t, s.SetVersion(11))
	require.NoError(t, s.SetBaseType(BaseTypeRGB))
	require.NoError(t, s.SetWidth(1))
	require.NoError(t, s.SetHeight(1))
	require.NoError(t, s.SetPrecision(PrecisionI8Gamma))
	require.NoError(t, s.SetNLayers(1))
	require.NoError(t, s.SetNChannels(0))
	require.NoError(t, s.SetOmitBaseAlpha(false))

	require.NoError(t, s.AddLayer())
	require.NoError(t, s.SetName("L"))
	require.NoError(t, s.SetLayerWidth(1))
	require.NoError(t, s.SetLayerHeight(1))
	require.NoError(t, s.SetOpacity(1.0))
	require.NoError(t, s.SetVisible(true))
	require.NoError(t, s.SetOffsets(0, 0))

	data := []byte{0x11, 0x22, 0x33, 0xFF}
	require.NoError(t, s.AddData(data, 4))
	require.NoError(t, s.Close())

	contents, err := os.ReadFile(f.Name())
	require.NoError(t, err)

	assert.Equal(t, []byte("gimp xcf v011"), contents[:13])

	payload := findZlibPayload(t, contents)
	assert.Equal(t, data, payload)
}

// S2 — 64x64 grayscale F32, no compression.
func TestScenarioS2(t *testing.T) {
	f := tempOutput(t)
	s, err := NewSession(f)
	require.NoError(t, err)

	require.NoError(t, s.SetVersion(12))
	require.NoError(t, s.SetBaseType(BaseTypeGrayscale))
	require.NoError(t, s.SetWidth(64))
	require.NoError(t, s.SetHeight(64))
	require.NoError(t, s.SetPrecision(PrecisionF32Linear))
	require.NoError(t, s.SetCompression(CompressionNone))
	require.NoError(t, s.SetNLayers(0))
	require.NoError(t, s.SetNChannels(1))

	require.NoError(t, s.AddChannel())
	require.NoError(t, s.SetName("C"))

	const w, h = 64, 64
	in := make([]byte, w*h*4)
	expected := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := float32(x+y*64) / 4096.0
			off := (y*w + x) * 4
			binary.NativeEndian.PutUint32(in[off:], math.Float32bits(v))
			binary.BigEndian.PutUint32(expected[off:], math.Float32bits(v))
		}
	}
	require.NoError(t, s.AddData(in, 1))
	require.NoError(t, s.Close())

	contents, err := os.ReadFile(f.Name())
	require.NoError(t, err)
	tail := contents[len(contents)-len(expected):]
	assert.Equal(t, expected, tail)
}

// S3 — 65x65 grayscale I8 produces a 2x2 tile grid with short last
// column/row: the four raw tiles are the last bytes of the file, each
// holding the matching sub-rectangle of the input.
func TestScenarioS3(t *testing.T) {
	f := tempOutput(t)
	s, err := NewSession(f)
	require.NoError(t, err)

	require.NoError(t, s.SetVersion(12))
	require.NoError(t, s.SetBaseType(BaseTypeGrayscale))
	require.NoError(t, s.SetWidth(65))
	require.NoError(t, s.SetHeight(65))
	require.NoError(t, s.SetPrecision(PrecisionI8Gamma))
	require.NoError(t, s.SetCompression(CompressionNone))
	require.NoError(t, s.SetNLayers(0))
	require.NoError(t, s.SetNChannels(1))

	require.NoError(t, s.AddChannel())
	require.NoError(t, s.SetName("C"))

	in := make([]byte, 65*65)
	for i := range in {
		in[i] = byte(i)
	}
	require.NoError(t, s.AddData(in, 1))
	require.NoError(t, s.Close())

	contents, err := os.ReadFile(f.Name())
	require.NoError(t, err)

	// Tile sizes: (64,64)=4096, (1,64)=64, (64,1)=64, (1,1)=1, raw uncompressed.
	tileSizes := []int{64 * 64, 1 * 64, 64 * 1, 1 * 1}
	total := 0
	for _, sz := range tileSizes {
		total += sz
	}
	require.GreaterOrEqual(t, len(contents), total)

	// The four tiles are written contiguously, in row-major order, as the
	// last bytes of the file; each tile's bytes are the matching (possibly
	// short) sub-rectangle of the input, since channel_size=1 needs no
	// byte-order conversion.
	tail := contents[len(contents)-total:]
	tileBounds := []struct{ x0, y0, w, h int }{
		{0, 0, 64, 64},
		{64, 0, 1, 64},
		{0, 64, 64, 1},
		{64, 64, 1, 1},
	}
	offset := 0
	for i, b := range tileBounds {
		tile := tail[offset : offset+tileSizes[i]]
		k := 0
		for y := 0; y < b.h; y++ {
			for x := 0; x < b.w; x++ {
				assert.Equal(t, in[(b.y0+y)*65+(b.x0+x)], tile[k])
				k++
			}
		}
		offset += tileSizes[i]
	}
	assert.Equal(t, total, offset)
}

// S4 — version conflict: requesting a feature above the declared version
// sticky-fails the session and close also fails.
func TestScenarioS4VersionConflict(t *testing.T) {
	f := tempOutput(t)
	s, err := NewSession(f)
	require.NoError(t, err)

	require.NoError(t, s.SetVersion(6))
	err = s.SetPrecision(PrecisionF32Gamma)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrVersionTooLow)

	err = s.Close()
	require.Error(t, err)
}

// SetMode must floor the version for every mode in the legacy soft-light
// block (19-22), not just LEGACY_SOFT_LIGHT itself — xcf.c's
// CHECK_VERSION_LAYERMODE macro is a >= comparison, not ==.
func TestSetModeLegacyBlockVersionFloor(t *testing.T) {
	legacyBlock := []LayerMode{
		LayerModeLegacySoftLight,
		LayerModeLegacyGrainExtract,
		LayerModeLegacyGrainMerge,
		LayerModeLegacyColorErase,
	}

	for _, mode := range legacyBlock {
		f := tempOutput(t)
		s, err := NewSession(f)
		require.NoError(t, err)

		require.NoError(t, s.SetVersion(1))
		require.NoError(t, s.SetBaseType(BaseTypeRGB))
		require.NoError(t, s.SetWidth(1))
		require.NoError(t, s.SetHeight(1))
		require.NoError(t, s.SetNLayers(1))
		require.NoError(t, s.SetNChannels(0))
		require.NoError(t, s.AddLayer())

		err = s.SetMode(mode)
		require.Error(t, err, "mode %d should be rejected at version 1", mode)
		assert.ErrorIs(t, err, ErrVersionTooLow)
	}

	f := tempOutput(t)
	s, err := NewSession(f)
	require.NoError(t, err)

	require.NoError(t, s.SetVersion(2))
	require.NoError(t, s.SetBaseType(BaseTypeRGB))
	require.NoError(t, s.SetWidth(1))
	require.NoError(t, s.SetHeight(1))
	require.NoError(t, s.SetNLayers(1))
	require.NoError(t, s.SetNChannels(0))
	require.NoError(t, s.AddLayer())

	require.NoError(t, s.SetMode(LayerModeLegacyGrainMerge))
}

// S5 — omit_base_alpha strips alpha from only the last layer added.
func TestScenarioS5OmitBaseAlpha(t *testing.T) {
	f := tempOutput(t)
	s, err := NewSession(f)
	require.NoError(t, err)

	require.NoError(t, s.SetVersion(12))
	require.NoError(t, s.SetBaseType(BaseTypeRGB))
	require.NoError(t, s.SetWidth(1))
	require.NoError(t, s.SetHeight(1))
	require.NoError(t, s.SetNLayers(2))
	require.NoError(t, s.SetNChannels(0))
	require.NoError(t, s.SetOmitBaseAlpha(true))

	require.NoError(t, s.AddLayer())
	layerTableOffset := s.layerTableOffset
	require.NoError(t, s.SetLayerWidth(1))
	require.NoError(t, s.SetLayerHeight(1))
	require.NoError(t, s.AddData([]byte{1, 2, 3, 4}, 4))

	require.NoError(t, s.AddLayer())
	require.NoError(t, s.SetLayerWidth(1))
	require.NoError(t, s.SetLayerHeight(1))
	require.NoError(t, s.AddData([]byte{1, 2, 3, 4}, 4))

	require.NoError(t, s.Close())

	contents, err := os.ReadFile(f.Name())
	require.NoError(t, err)

	readLayerPixelType := func(slot int) PixelType {
		ptrOff := layerTableOffset + int64(slot)*8
		headerOff := int64(binary.BigEndian.Uint64(contents[ptrOff : ptrOff+8]))
		pt := binary.BigEndian.Uint32(contents[headerOff+8 : headerOff+12])
		return PixelType(pt)
	}

	assert.Equal(t, PixelTypeRGBAlpha, readLayerPixelType(0))
	assert.Equal(t, PixelTypeRGB, readLayerPixelType(1))
}

// S6 — parasite replace preserves first-seen insertion order.
func TestScenarioS6ParasiteReplace(t *testing.T) {
	l := newParasiteList()
	l.Set("a", 0, []byte("X"))
	l.Set("b", 0, []byte("Y"))
	l.Set("a", 0, []byte("Z"))

	require.Len(t, l.entries, 2)
	assert.Equal(t, "a", l.entries[0].Name)
	assert.Equal(t, []byte("Z"), l.entries[0].Payload)
	assert.Equal(t, "b", l.entries[1].Name)
	assert.Equal(t, []byte("Y"), l.entries[1].Payload)
}

func TestOpacityClamp(t *testing.T) {
	assert.EqualValues(t, 0, clampByte(-1))
	assert.EqualValues(t, 255, clampByte(2))
	assert.EqualValues(t, 128, clampByte(128.0/255.0))
}

func TestStripAlphaPairs(t *testing.T) {
	assert.Equal(t, PixelTypeRGB, stripAlpha(PixelTypeRGBAlpha))
	assert.Equal(t, PixelTypeGrayscale, stripAlpha(PixelTypeGrayscaleAlpha))
	assert.Equal(t, PixelTypeIndexed, stripAlpha(PixelTypeIndexedAlpha))
}

func TestPointerWidthBoundary(t *testing.T) {
	f := tempOutput(t)
	s, err := NewSession(f)
	require.NoError(t, err)
	require.NoError(t, s.SetVersion(10))
	assert.Equal(t, 4, s.ptrSize)
	require.NoError(t, s.SetVersion(11))
	assert.Equal(t, 8, s.ptrSize)
}
