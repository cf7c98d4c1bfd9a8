package imageio

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTIFFHeader writes a minimal little-endian TIFF header and IFD with
// resolution tags. Enough for the metadata walker; not a decodable image.
func writeTIFFHeader(t *testing.T, num, denom uint32, unit uint16) string {
	t.Helper()
	var buf bytes.Buffer
	le := binary.LittleEndian

	// Header: byte order, magic, offset of the first IFD.
	buf.WriteString("II")
	binary.Write(&buf, le, uint16(42))
	binary.Write(&buf, le, uint32(8))

	// IFD: 3 entries, then the next-IFD offset. The two RATIONAL values
	// land right after, at offsets 50 and 58.
	binary.Write(&buf, le, uint16(3))
	writeEntry := func(tag, fieldType uint16, value uint32) {
		binary.Write(&buf, le, tag)
		binary.Write(&buf, le, fieldType)
		binary.Write(&buf, le, uint32(1)) // count
		binary.Write(&buf, le, value)
	}
	writeEntry(282, 5, 50)             // XResolution -> rational at 50
	writeEntry(283, 5, 58)             // YResolution -> rational at 58
	writeEntry(296, 3, uint32(unit))   // ResolutionUnit
	binary.Write(&buf, le, uint32(0))  // no next IFD
	binary.Write(&buf, le, num) // XResolution value
	binary.Write(&buf, le, denom)
	binary.Write(&buf, le, num) // YResolution value
	binary.Write(&buf, le, denom)

	path := filepath.Join(t.TempDir(), "meta.tif")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

func TestExtractTIFFDPIInches(t *testing.T) {
	path := writeTIFFHeader(t, 300, 1, 2)

	dpi, err := extractTIFFDPI(path)
	require.NoError(t, err)
	assert.Equal(t, 300.0, dpi)
}

func TestExtractTIFFDPICentimeters(t *testing.T) {
	// 100 dots per centimeter is 254 DPI.
	path := writeTIFFHeader(t, 100, 1, 3)

	dpi, err := extractTIFFDPI(path)
	require.NoError(t, err)
	assert.InDelta(t, 254.0, dpi, 1e-9)
}

func TestExtractTIFFDPIFractionalRational(t *testing.T) {
	path := writeTIFFHeader(t, 1200, 4, 2)

	dpi, err := extractTIFFDPI(path)
	require.NoError(t, err)
	assert.Equal(t, 300.0, dpi)
}

func TestExtractTIFFDPINotTIFF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.tif")
	require.NoError(t, os.WriteFile(path, []byte("PNGnotatiff"), 0644))

	_, err := extractTIFFDPI(path)
	assert.Error(t, err)
}
