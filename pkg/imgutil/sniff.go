package imgutil

import (
	"bytes"
	"io"
	"os"
)

// Kind identifies an image container format by its magic bytes.
type Kind int

const (
	KindUnknown Kind = iota
	KindJPEG
	KindPNG
	KindGIF
	KindTIFF
	KindBMP
)

func (k Kind) String() string {
	switch k {
	case KindJPEG:
		return "jpeg"
	case KindPNG:
		return "png"
	case KindGIF:
		return "gif"
	case KindTIFF:
		return "tiff"
	case KindBMP:
		return "bmp"
	default:
		return "unknown"
	}
}

var signatures = []struct {
	prefix []byte
	kind   Kind
}{
	{[]byte{0xff, 0xd8, 0xff}, KindJPEG},
	{[]byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}, KindPNG},
	{[]byte("GIF87a"), KindGIF},
	{[]byte("GIF89a"), KindGIF},
	{[]byte{0x49, 0x49, 0x2a, 0x00}, KindTIFF},
	{[]byte{0x4d, 0x4d, 0x00, 0x2a}, KindTIFF},
	{[]byte("BM"), KindBMP},
}

// DetectKind matches the first bytes of a file against known signatures.
func DetectKind(header []byte) Kind {
	for _, sig := range signatures {
		if bytes.HasPrefix(header, sig.prefix) {
			return sig.kind
		}
	}
	return KindUnknown
}

// SniffFile reads the first 8 bytes of a file to determine its format.
func SniffFile(path string) (Kind, error) {
	f, err := os.Open(path)
	if err != nil {
		return KindUnknown, err
	}
	defer f.Close()

	header := make([]byte, 8)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.ErrUnexpectedEOF {
		return KindUnknown, err
	}
	return DetectKind(header[:n]), nil
}
