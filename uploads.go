package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxUploadSizeBytes int64 = 5 * 1024 * 1024

var photoExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

func uploadDir() string {
	dir := strings.TrimSpace(os.Getenv("UPLOAD_DIR"))
	if dir == "" {
		dir = "uploads"
	}
	return dir
}

// savePhotoUpload stores an optional "photo" form file under UPLOAD_DIR and
// writes a 200px-wide JPEG thumbnail alongside it. Returns the stored photo
// path, or "" when the form carried no photo.
func savePhotoUpload(c *gin.Context) (string, error) {
	fileHeader, err := c.FormFile("photo")
	if err != nil {
		// No file in the form is not an error.
		return "", nil
	}
	if fileHeader.Size > maxUploadSizeBytes {
		return "", errors.New("photo exceeds 5MB limit")
	}
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !photoExtensions[ext] {
		return "", errors.New("unsupported photo type")
	}

	data, err := readUpload(fileHeader)
	if err != nil {
		return "", err
	}

	dir := uploadDir()
	if err := os.MkdirAll(filepath.Join(dir, "thumbnails"), 0o755); err != nil {
		return "", err
	}

	filename := fmt.Sprintf("%s_%s%s", time.Now().Format("20060102150405"), uuid.New().String(), ext)
	photoPath := filepath.Join(dir, filename)
	if err := os.WriteFile(photoPath, data, 0o644); err != nil {
		return "", err
	}

	if err := writeThumbnail(dir, filename, data); err != nil {
		// The original is stored; a failed thumbnail should not fail intake.
		return photoPath, nil
	}
	return photoPath, nil
}

func readUpload(fileHeader *multipart.FileHeader) ([]byte, error) {
	f, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadSizeBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxUploadSizeBytes {
		return nil, errors.New("photo exceeds 5MB limit")
	}
	return data, nil
}

func writeThumbnail(dir, filename string, data []byte) error {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return err
	}
	thumbnail := imaging.Resize(img, 200, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumbnail, imaging.JPEG); err != nil {
		return err
	}
	thumbPath := filepath.Join(dir, "thumbnails", strings.TrimSuffix(filename, filepath.Ext(filename))+".jpg")
	return os.WriteFile(thumbPath, buf.Bytes(), 0o644)
}
