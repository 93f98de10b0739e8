package preview

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"devevents/src-server/model"
)

var (
	ErrEmptyFile = errors.New("image file is empty")
	ErrNotImage  = errors.New("file is not an image")
)

// DataURLDecoder renders a selected image as a `data:` URL, the form a
// browser can show directly.
type DataURLDecoder struct{}

func (DataURLDecoder) Decode(ctx context.Context, file model.ImageFile) (string, error) {
	if len(file.Data) == 0 {
		return "", fmt.Errorf("DataURLDecoder.Decode %q: %w", file.Name, ErrEmptyFile)
	}
	mediaType, err := MediaType(file)
	if err != nil {
		return "", fmt.Errorf("DataURLDecoder.Decode %q: %w", file.Name, err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.Grow(len("data:;base64,") + len(mediaType) + base64.StdEncoding.EncodedLen(len(file.Data)))
	sb.WriteString("data:")
	sb.WriteString(mediaType)
	sb.WriteString(";base64,")
	sb.WriteString(base64.StdEncoding.EncodeToString(file.Data))
	return sb.String(), nil
}

// MediaType returns the image MIME type of file, trusting the declared
// content type unless it is missing or generic.
func MediaType(file model.ImageFile) (string, error) {
	declared := file.ContentType
	if declared == "" || strings.HasPrefix(declared, "application/octet-stream") {
		declared = http.DetectContentType(file.Data)
	}
	mediaType, _, err := mime.ParseMediaType(declared)
	if err != nil {
		return "", fmt.Errorf("can't parse content type %q: %w", declared, err)
	}
	if !strings.HasPrefix(mediaType, "image/") {
		return "", fmt.Errorf("%s: %w", mediaType, ErrNotImage)
	}
	return mediaType, nil
}
