package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/textproto"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// setupTestDB returns a migrated in-memory database.
func setupTestDB(t *testing.T) *Database {
	t.Helper()
	conn, err := openDB(DatabaseConfig{Path: ":memory:"})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := migrateDB(context.Background(), conn, discardLogger()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewDatabase(conn)
}

// testConfig is DefaultConfig pointed at temporary media directories with
// a cheap bcrypt cost.
func testConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	root := t.TempDir()
	cfg.Database.Path = ":memory:"
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.BcryptCost = bcrypt.MinCost
	cfg.Media.AudioDir = filepath.Join(root, "songs")
	cfg.Media.ImageDir = filepath.Join(root, "images")
	cfg.Server.AuthRateLimit = 0
	return cfg
}

type testEnv struct {
	cfg   *Config
	db    *Database
	media *MediaStore
	api   *API
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := testConfig(t)
	db := setupTestDB(t)
	media := NewMediaStore(cfg.Media, discardLogger())
	if err := media.Init(); err != nil {
		t.Fatalf("media init: %v", err)
	}
	return &testEnv{cfg: cfg, db: db, media: media, api: NewAPI(cfg, db, media, discardLogger())}
}

func (e *testEnv) createUser(t *testing.T, email string) string {
	t.Helper()
	u, err := e.api.users.Register(context.Background(), email, "password123")
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return u.ID
}

func (e *testEnv) uploadSong(t *testing.T, ownerID, title, artist string) string {
	t.Helper()
	s, err := e.api.songs.Upload(context.Background(), SongInput{
		Title:  title,
		Artist: artist,
		Audio:  fileHeader(t, "audio_file", "track.mp3", []byte("ID3 fake audio")),
	}, ownerID)
	if err != nil {
		t.Fatalf("upload %s/%s: %v", title, artist, err)
	}
	return s.ID
}

func (e *testEnv) createPlaylist(t *testing.T, ownerID, name string) string {
	t.Helper()
	p, err := e.api.playlists.Create(context.Background(), PlaylistInput{Name: name}, ownerID)
	if err != nil {
		t.Fatalf("create playlist %s: %v", name, err)
	}
	return p.ID
}

// fileHeader produces a real *multipart.FileHeader by round-tripping a
// multipart body through the standard reader.
func fileHeader(t *testing.T, field, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	h.Set("Content-Type", "application/octet-stream")
	part, err := w.CreatePart(h)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	part.Write(content)
	w.Close()

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	if err != nil {
		t.Fatalf("read form: %v", err)
	}
	t.Cleanup(func() { form.RemoveAll() })
	files := form.File[field]
	if len(files) != 1 {
		t.Fatalf("expected one file for %s, got %d", field, len(files))
	}
	return files[0]
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.NRGBA{R: 200, G: uint8(x * 20), B: uint8(y * 20), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func assertKind(t *testing.T, err error, want ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	if got := kindOf(err); got != want {
		t.Fatalf("expected %s error, got %s (%v)", want, got, err)
	}
}
