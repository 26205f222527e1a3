package utils

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
)

var SupportedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

const productPicDir = "static/productpic"

// SaveProductImage stores an uploaded product image plus a 300px-wide
// thumbnail and returns the public URI of the original.
func SaveProductImage(file multipart.File, header *multipart.FileHeader) (string, error) {
	defer file.Close()

	if !SupportedImageTypes[header.Header.Get("Content-Type")] {
		return "", fmt.Errorf("unsupported image type %q", header.Header.Get("Content-Type"))
	}

	buf, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(buf))
	if err != nil {
		return "", fmt.Errorf("failed to decode image %q: %w", header.Filename, err)
	}

	ext := filepath.Ext(header.Filename)
	filename := fmt.Sprintf("%d%s", time.Now().UnixNano(), ext)

	if err := os.MkdirAll(productPicDir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(productPicDir, filename), buf, 0o644); err != nil {
		return "", err
	}

	if err := writeThumb(img, filename); err != nil {
		return "", err
	}

	return "/static/productpic/" + filename, nil
}

func writeThumb(img image.Image, baseFilename string) error {
	resized := imaging.Resize(img, 300, 0, imaging.Lanczos) // keep aspect ratio
	name := baseFilename[:len(baseFilename)-len(filepath.Ext(baseFilename))] + ".jpg"

	thumbDir := filepath.Join(productPicDir, "thumb")
	if err := os.MkdirAll(thumbDir, 0o755); err != nil {
		return err
	}

	out, err := os.Create(filepath.Join(thumbDir, name))
	if err != nil {
		return fmt.Errorf("create thumbnail: %w", err)
	}
	defer out.Close()

	return jpeg.Encode(out, resized, &jpeg.Options{Quality: 85})
}
