// thumbnail.go — миниатюры для загруженных изображений.
package service

import (
	"bytes"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
)

// Размер миниатюры (вписывается в квадрат).
const (
	ThumbnailWidth  = 320
	ThumbnailHeight = 320
)

// Thumbnailer строит JPEG-миниатюры изображений.
type Thumbnailer struct {
	width, height int
}

// NewThumbnailer создаёт Thumbnailer с размером по умолчанию 320×320.
func NewThumbnailer() *Thumbnailer {
	return &Thumbnailer{width: ThumbnailWidth, height: ThumbnailHeight}
}

// Supports сообщает, можно ли построить миниатюру для MIME-типа.
func (t *Thumbnailer) Supports(contentType string) bool {
	switch strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0])) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/bmp", "image/tiff":
		return true
	}
	return false
}

// Make декодирует изображение и возвращает JPEG-миниатюру.
func (t *Thumbnailer) Make(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("ошибка декодирования изображения: %w", err)
	}
	return t.encode(img)
}

func (t *Thumbnailer) encode(img image.Image) ([]byte, error) {
	thumb := imaging.Thumbnail(img, t.width, t.height, imaging.Lanczos)
	buf := bytes.NewBuffer(nil)
	if err := imaging.Encode(buf, thumb, imaging.JPEG); err != nil {
		return nil, fmt.Errorf("ошибка кодирования миниатюры: %w", err)
	}
	return buf.Bytes(), nil
}
