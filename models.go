// Suggested path: music-stream-api/models.go
package main

import (
	"time"

	"github.com/samber/lo"
)

// --- Data Structures ---

type User struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type Song struct {
	ID        string    `db:"id"`
	Title     string    `db:"title"`
	Artist    string    `db:"artist"`
	AudioPath string    `db:"audio_path"`
	CoverPath string    `db:"cover_path"`
	Duration  int       `db:"duration"`
	UserID    string    `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
	// Set only by queries that join the requester's likes.
	IsLiked bool `db:"is_liked"`
}

func (s Song) OwnerID() string { return s.UserID }

type Playlist struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	CoverPath string    `db:"cover_path"`
	UserID    string    `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
	SongCount int       `db:"song_count"`
	IsLiked   bool      `db:"is_liked"`
}

func (p Playlist) OwnerID() string { return p.UserID }

// --- API responses ---

type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt"`
}

type SongResponse struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Artist         string `json:"artist"`
	Duration       int    `json:"duration"`
	AudioFilePath  string `json:"audioFilePath"`
	CoverImagePath string `json:"coverImagePath"`
	UserID         string `json:"userId"`
	IsLiked        bool   `json:"isLiked"`
	CreatedAt      string `json:"createdAt"`
	UpdatedAt      string `json:"updatedAt"`
}

type PlaylistResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	CoverImagePath string `json:"coverImagePath"`
	UserID         string `json:"userId"`
	SongCount      int    `json:"songCount"`
	IsLiked        bool   `json:"isLiked"`
	CreatedAt      string `json:"createdAt"`
	UpdatedAt      string `json:"updatedAt"`
}

type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
}

type SearchResponse struct {
	Playlists []PlaylistResponse `json:"playlists"`
	Songs     []SongResponse     `json:"songs"`
}

// Mapper converts stored entities into API responses, rendering timestamps
// in the configured time zone.
type Mapper struct {
	loc *time.Location
}

func NewMapper(loc *time.Location) *Mapper {
	if loc == nil {
		loc = time.UTC
	}
	return &Mapper{loc: loc}
}

func (m *Mapper) formatTime(t time.Time) string {
	return t.In(m.loc).Format(time.RFC3339)
}

func (m *Mapper) User(u User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, CreatedAt: m.formatTime(u.CreatedAt)}
}

func (m *Mapper) Users(users []User) []UserResponse {
	return lo.Map(users, func(u User, _ int) UserResponse { return m.User(u) })
}

func (m *Mapper) Song(s Song) SongResponse {
	return SongResponse{
		ID:             s.ID,
		Title:          s.Title,
		Artist:         s.Artist,
		Duration:       s.Duration,
		AudioFilePath:  s.AudioPath,
		CoverImagePath: s.CoverPath,
		UserID:         s.UserID,
		IsLiked:        s.IsLiked,
		CreatedAt:      m.formatTime(s.CreatedAt),
		UpdatedAt:      m.formatTime(s.UpdatedAt),
	}
}

func (m *Mapper) Songs(songs []Song) []SongResponse {
	return lo.Map(songs, func(s Song, _ int) SongResponse { return m.Song(s) })
}

func (m *Mapper) Playlist(p Playlist) PlaylistResponse {
	return PlaylistResponse{
		ID:             p.ID,
		Name:           p.Name,
		CoverImagePath: p.CoverPath,
		UserID:         p.UserID,
		SongCount:      p.SongCount,
		IsLiked:        p.IsLiked,
		CreatedAt:      m.formatTime(p.CreatedAt),
		UpdatedAt:      m.formatTime(p.UpdatedAt),
	}
}

func (m *Mapper) Playlists(playlists []Playlist) []PlaylistResponse {
	return lo.Map(playlists, func(p Playlist, _ int) PlaylistResponse { return m.Playlist(p) })
}
