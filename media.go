package main

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dhowden/tag"
	"github.com/disintegration/imaging"
)

const defaultCoverName = "default.jpg"

// MediaStore saves and removes uploaded audio and cover files.
type MediaStore struct {
	audioDir  string
	imageDir  string
	audioExts []string
	imageExts []string
	logger    *log.Logger
}

func NewMediaStore(cfg MediaConfig, logger *log.Logger) *MediaStore {
	return &MediaStore{
		audioDir:  cfg.AudioDir,
		imageDir:  cfg.ImageDir,
		audioExts: cfg.AudioExtensions,
		imageExts: cfg.ImageExtensions,
		logger:    logger.With("component", "media"),
	}
}

// Init creates the media directories and a placeholder default cover when
// none has been provided.
func (m *MediaStore) Init() error {
	for _, dir := range []string{m.audioDir, m.imageDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create media dir %s: %w", dir, err)
		}
	}
	if _, err := os.Stat(m.DefaultCoverPath()); errors.Is(err, os.ErrNotExist) {
		placeholder := imaging.New(300, 300, color.NRGBA{R: 48, G: 48, B: 48, A: 255})
		if err := imaging.Save(placeholder, m.DefaultCoverPath()); err != nil {
			return fmt.Errorf("write default cover: %w", err)
		}
		m.logger.Info("created placeholder cover", "path", m.DefaultCoverPath())
	}
	return nil
}

func (m *MediaStore) DefaultCoverPath() string {
	return filepath.Join(m.imageDir, defaultCoverName)
}

func (m *MediaStore) IsDefaultCover(path string) bool {
	return filepath.Clean(path) == filepath.Clean(m.DefaultCoverPath())
}

// SaveAudio validates and stores an uploaded audio file, returning its path.
func (m *MediaStore) SaveAudio(fh *multipart.FileHeader) (string, error) {
	if fh == nil || fh.Size <= 0 {
		return "", badRequest("Audio file is empty.")
	}
	if !hasAllowedExtension(fh.Filename, m.audioExts) {
		return "", badRequest(fmt.Sprintf("Audio file type is not allowed. Allowed: %s.", strings.Join(m.audioExts, ", ")))
	}

	src, err := fh.Open()
	if err != nil {
		return "", internal("failed to open uploaded audio", err)
	}
	defer src.Close()

	return m.write(m.audioDir, fh.Filename, src)
}

// SaveCover validates and stores an uploaded cover image. The upload must
// decode as an image; a renamed non-image is rejected.
func (m *MediaStore) SaveCover(fh *multipart.FileHeader) (string, error) {
	if fh == nil || fh.Size <= 0 {
		return "", badRequest("Cover image file is empty.")
	}
	if !hasAllowedExtension(fh.Filename, m.imageExts) {
		return "", badRequest(fmt.Sprintf("Cover image type is not allowed. Allowed: %s.", strings.Join(m.imageExts, ", ")))
	}

	src, err := fh.Open()
	if err != nil {
		return "", internal("failed to open uploaded image", err)
	}
	defer src.Close()

	if _, err := imaging.Decode(src); err != nil {
		return "", badRequest("Cover image file is not a valid image.")
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", internal("failed to rewind uploaded image", err)
	}

	return m.write(m.imageDir, fh.Filename, src)
}

func (m *MediaStore) write(dir, originalName string, src io.Reader) (string, error) {
	path := filepath.Join(dir, newMediaFilename(originalName))
	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", internal("failed to create media file", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return "", internal("failed to write media file", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return "", internal("failed to write media file", err)
	}
	return path, nil
}

// Delete removes path if it exists. The default cover is never removed and
// failures are only logged.
func (m *MediaStore) Delete(path string) {
	if path == "" || m.IsDefaultCover(path) {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		m.logger.Warn("failed to delete media file", "path", path, "err", err)
	}
}

// DeleteAll deletes each path, skipping the default cover.
func (m *MediaStore) DeleteAll(paths ...string) {
	for _, p := range paths {
		m.Delete(p)
	}
}

// AudioTags holds the metadata read from an audio file.
type AudioTags struct {
	Title  string
	Artist string
}

// ReadTags reads ID3/MP4/FLAC/OGG tags from the file at path.
func (m *MediaStore) ReadTags(path string) (AudioTags, error) {
	f, err := os.Open(path)
	if err != nil {
		return AudioTags{}, err
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil {
		return AudioTags{}, err
	}
	artist := meta.Artist()
	if artist == "" {
		artist = meta.AlbumArtist()
	}
	return AudioTags{
		Title:  strings.TrimSpace(meta.Title()),
		Artist: strings.TrimSpace(artist),
	}, nil
}

// fileExists reports whether path names an existing regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
