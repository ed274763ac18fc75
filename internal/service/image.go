package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/platefeed/backend/config"
)

// DecodeImagePayload splits a data-URI image payload into raw bytes and the
// file extension declared by its prefix. The payload must look like
// "data:image/<format>;base64,<data>"; anything else is a validation error.
func DecodeImagePayload(dataURI string) ([]byte, string, error) {
	if !strings.HasPrefix(dataURI, "data:image/") {
		return nil, "", validationError("image must be a base64 data URI")
	}

	header, encoded, found := strings.Cut(dataURI, ";base64,")
	if !found {
		return nil, "", validationError("image data URI is not base64 encoded")
	}

	ext := strings.TrimPrefix(header, "data:image/")
	if ext == "" {
		return nil, "", validationError("image data URI declares no format")
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", validationError("image payload is not valid base64")
	}
	if len(data) == 0 {
		return nil, "", validationError("image payload is empty")
	}
	return data, ext, nil
}

// ImageStorage persists decoded image bytes and returns a serveable URL.
type ImageStorage interface {
	Save(ctx context.Context, data []byte, fileName string) (string, error)
}

// ImageService stores recipe images submitted as inline base64 payloads
type ImageService struct {
	storage ImageStorage
}

// NewImageService creates a new ImageService instance
func NewImageService(storage ImageStorage) *ImageService {
	return &ImageService{storage: storage}
}

// StoreRecipeImage decodes a data-URI payload and writes it to storage under
// a fresh name, returning the stored URL.
func (s *ImageService) StoreRecipeImage(ctx context.Context, dataURI string) (string, error) {
	data, ext, err := DecodeImagePayload(dataURI)
	if err != nil {
		return "", err
	}
	fileName := fmt.Sprintf("recipes/%s.%s", uuid.New(), ext)
	return s.storage.Save(ctx, data, fileName)
}

// S3Storage uploads images to an S3 bucket with public-read objects
type S3Storage struct {
	cfg *config.S3Config
}

// NewS3Storage creates a new S3Storage instance
func NewS3Storage(cfg *config.S3Config) *S3Storage {
	return &S3Storage{cfg: cfg}
}

func (s *S3Storage) Save(ctx context.Context, data []byte, fileName string) (string, error) {
	contentType := "image/" + strings.TrimPrefix(filepath.Ext(fileName), ".")
	_, err := s.cfg.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.BucketName),
		Key:         aws.String(fileName),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.cfg.BucketName, fileName), nil
}

// LocalStorage writes images under a media directory on the local
// filesystem, used when no S3 bucket is configured.
type LocalStorage struct {
	dir string
}

// NewLocalStorage creates a new LocalStorage instance
func NewLocalStorage(dir string) *LocalStorage {
	return &LocalStorage{dir: dir}
}

func (s *LocalStorage) Save(ctx context.Context, data []byte, fileName string) (string, error) {
	path := filepath.Join(s.dir, filepath.FromSlash(fileName))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return "/media/" + fileName, nil
}
