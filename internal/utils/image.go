package utils

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// allowed content types for uploaded images and their file extensions
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

// SaveBase64Image decodes a "data:image/...;base64,..." data URI and writes
// it under mediaRoot/subdir with a random file name. Returns the media path
// relative to the media root, e.g. "recipes/3f2a9c1e.png".
func SaveBase64Image(mediaRoot, subdir, dataURI string) (string, error) {
	header, payload, found := strings.Cut(dataURI, ",")
	if !found {
		return "", fmt.Errorf("invalid data URI")
	}

	contentType := strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", fmt.Errorf("unsupported image type: %s", contentType)
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("invalid base64 image payload: %w", err)
	}

	dir := filepath.Join(mediaRoot, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}

	name := uuid.NewString()[:8] + ext
	if err := os.WriteFile(filepath.Join(dir, name), raw, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image file: %w", err)
	}

	return subdir + "/" + name, nil
}

// RemoveImage deletes a stored image file. A missing file is not an error;
// the field may reference media that was cleaned up out of band.
func RemoveImage(mediaRoot, mediaPath string) error {
	if mediaPath == "" {
		return nil
	}
	err := os.Remove(filepath.Join(mediaRoot, filepath.FromSlash(mediaPath)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// MediaURL renders the public URL for a stored media path.
func MediaURL(baseURL, mediaPath string) string {
	if mediaPath == "" {
		return ""
	}
	return strings.TrimSuffix(baseURL, "/") + "/media/" + mediaPath
}
