package chat

import (
	"encoding/base64"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
)

const genericMimeType = "application/octet-stream"

// decodeFile turns an uploaded payload into raw bytes and a MIME type. The
// payload is either a data URL ("data:<mime>;base64,<data>") as produced
// by browsers, or bare standard base64. The type is sniffed from the
// content; the declared one is only used when sniffing finds nothing
// better.
func decodeFile(payload string, limit int) ([]byte, string, error) {
	declared := ""
	encoded := payload
	if rest, ok := strings.CutPrefix(payload, "data:"); ok {
		header, body, found := strings.Cut(rest, ",")
		if !found {
			return nil, "", errors.Wrap(ErrInvalidFile, "data URL without body")
		}
		params, isBase64 := strings.CutSuffix(header, ";base64")
		if !isBase64 {
			return nil, "", errors.Wrap(ErrInvalidFile, "data URL is not base64")
		}
		declared, _, _ = strings.Cut(params, ";")
		encoded = body
	}

	if limit > 0 && base64.StdEncoding.DecodedLen(len(encoded)) > limit+2 {
		return nil, "", errors.Wrapf(ErrFileTooLarge, "limit %d bytes", limit)
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", errors.Wrap(ErrInvalidFile, err.Error())
	}
	if limit > 0 && len(data) > limit {
		return nil, "", errors.Wrapf(ErrFileTooLarge, "%d > %d bytes", len(data), limit)
	}

	mime, _, _ := strings.Cut(mimetype.Detect(data).String(), ";")
	if mime == genericMimeType && declared != "" {
		mime = declared
	}
	return data, mime, nil
}
