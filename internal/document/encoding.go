package document

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"

	"github.com/EricWay1024/lazy-latex/internal/logger"
	"github.com/EricWay1024/lazy-latex/internal/types"
)

// Encoding names reported by detectEncoding.
const (
	encUTF8    = "UTF-8"
	encUTF8BOM = "UTF-8-BOM"
	encUTF16LE = "UTF-16LE"
	encUTF16BE = "UTF-16BE"
	encGBK     = "GBK"
	encUnknown = "UNKNOWN"
)

// detectEncoding inspects raw file bytes and names their encoding.
func detectEncoding(data []byte) string {
	if len(data) >= 3 && bytes.Equal(data[:3], []byte{0xEF, 0xBB, 0xBF}) {
		return encUTF8BOM
	}
	if len(data) >= 2 && bytes.Equal(data[:2], []byte{0xFF, 0xFE}) {
		return encUTF16LE
	}
	if len(data) >= 2 && bytes.Equal(data[:2], []byte{0xFE, 0xFF}) {
		return encUTF16BE
	}
	if utf8.Valid(data) {
		return encUTF8
	}
	if decoded, err := simplifiedchinese.GBK.NewDecoder().Bytes(data); err == nil && utf8.Valid(decoded) {
		return encGBK
	}
	return encUnknown
}

// decodeToUTF8 converts raw file bytes to UTF-8 text based on the detected
// encoding. Unknown encodings fail rather than silently corrupting offsets
// the scanner depends on.
func decodeToUTF8(data []byte) (string, string, error) {
	enc := detectEncoding(data)
	logger.Debug("detected file encoding", logger.String("encoding", enc))

	switch enc {
	case encUTF8:
		return string(data), enc, nil
	case encUTF8BOM:
		return string(data[3:]), enc, nil
	case encUTF16LE:
		decoded, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder().Bytes(data)
		if err != nil {
			return "", enc, types.NewAppError(types.ErrDocument, "failed to decode UTF-16LE file", err)
		}
		return string(decoded), enc, nil
	case encUTF16BE:
		decoded, err := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder().Bytes(data)
		if err != nil {
			return "", enc, types.NewAppError(types.ErrDocument, "failed to decode UTF-16BE file", err)
		}
		return string(decoded), enc, nil
	case encGBK:
		decoded, err := simplifiedchinese.GBK.NewDecoder().Bytes(data)
		if err != nil {
			return "", enc, types.NewAppError(types.ErrDocument, "failed to decode GBK file", err)
		}
		return string(decoded), enc, nil
	default:
		return "", enc, types.NewAppError(types.ErrDocument, "unsupported file encoding", nil)
	}
}
