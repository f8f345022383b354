package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// SongQueryOptions provides flexible options for querying songs
type SongQueryOptions struct {
	UserID     string // Requester, used for the is_liked flag (empty = anonymous)
	PlaylistID string // Only songs in this playlist, ordered by added_at
	SearchTerm string // Case-insensitive substring of title or artist
	OnlyLiked  bool   // Only songs liked by UserID
	Limit      int    // Limit results (0 = no limit)
	Offset     int    // Offset for pagination
}

type SongRepository interface {
	Query(ctx context.Context, opts SongQueryOptions) ([]Song, error)
	GetByID(ctx context.Context, id, requesterID string) (*Song, error)
	Exists(ctx context.Context, id string) (bool, error)
	TitleArtistExists(ctx context.Context, title, artist, excludeID string) (bool, error)
	Create(ctx context.Context, song *Song) error
	Update(ctx context.Context, song *Song) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	MediaPaths(ctx context.Context, ownerID string) ([]string, error)
	AllMediaPaths(ctx context.Context) ([]string, error)
}

type SongStore struct {
	q sqlx.ExtContext
}

func NewSongStore(q sqlx.ExtContext) *SongStore {
	return &SongStore{q: q}
}

// Query builds and runs a song SELECT. The requester's likes are joined so
// every row carries is_liked; anonymous requesters match no like rows.
func (s *SongStore) Query(ctx context.Context, opts SongQueryOptions) ([]Song, error) {
	var query strings.Builder
	var args []interface{}

	query.WriteString(`SELECT s.id, s.title, s.artist, s.audio_path, s.cover_path, s.duration, s.user_id, s.created_at, s.updated_at,
        CASE WHEN ls.song_id IS NOT NULL THEN 1 ELSE 0 END AS is_liked
        FROM songs s`)

	query.WriteString(` LEFT JOIN liked_songs ls ON s.id = ls.song_id AND ls.user_id = ?`)
	args = append(args, opts.UserID)

	if opts.PlaylistID != "" {
		query.WriteString(` JOIN playlist_songs ps ON s.id = ps.song_id AND ps.playlist_id = ?`)
		args = append(args, opts.PlaylistID)
	}

	var whereClauses []string

	if opts.SearchTerm != "" {
		p := containsPattern(strings.ToLower(opts.SearchTerm))
		whereClauses = append(whereClauses, `(unicode_lower(s.title) LIKE ? ESCAPE '\' OR unicode_lower(s.artist) LIKE ? ESCAPE '\')`)
		args = append(args, p, p)
	}

	if opts.OnlyLiked {
		whereClauses = append(whereClauses, "ls.song_id IS NOT NULL")
	}

	if len(whereClauses) > 0 {
		query.WriteString(" WHERE " + strings.Join(whereClauses, " AND "))
	}

	switch {
	case opts.PlaylistID != "":
		query.WriteString(" ORDER BY ps.added_at, ps.rowid")
	case opts.OnlyLiked:
		query.WriteString(" ORDER BY ls.liked_at DESC, s.id")
	default:
		query.WriteString(" ORDER BY s.created_at, s.id")
	}

	if opts.Limit > 0 || opts.Offset > 0 {
		// SQLite only accepts OFFSET after LIMIT; -1 means no limit.
		limit := opts.Limit
		if limit <= 0 {
			limit = -1
		}
		query.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, limit, opts.Offset)
	}

	songs := []Song{}
	if err := sqlx.SelectContext(ctx, s.q, &songs, query.String(), args...); err != nil {
		return nil, fmt.Errorf("query songs: %w", err)
	}
	return songs, nil
}

// GetByID returns sql.ErrNoRows (wrapped) when the song does not exist.
func (s *SongStore) GetByID(ctx context.Context, id, requesterID string) (*Song, error) {
	var song Song
	err := sqlx.GetContext(ctx, s.q, &song, `SELECT s.id, s.title, s.artist, s.audio_path, s.cover_path, s.duration, s.user_id, s.created_at, s.updated_at,
        CASE WHEN ls.song_id IS NOT NULL THEN 1 ELSE 0 END AS is_liked
        FROM songs s
        LEFT JOIN liked_songs ls ON s.id = ls.song_id AND ls.user_id = ?
        WHERE s.id = ?`, requesterID, id)
	if err != nil {
		return nil, fmt.Errorf("get song %s: %w", id, err)
	}
	return &song, nil
}

func (s *SongStore) Exists(ctx context.Context, id string) (bool, error) {
	return exists(ctx, s.q, `SELECT 1 FROM songs WHERE id = ?`, id)
}

// TitleArtistExists checks the global (title, artist) uniqueness, ignoring
// case and the song excludeID.
func (s *SongStore) TitleArtistExists(ctx context.Context, title, artist, excludeID string) (bool, error) {
	return exists(ctx, s.q,
		`SELECT 1 FROM songs WHERE title = ? COLLATE NOCASE AND artist = ? COLLATE NOCASE AND id != ?`,
		title, artist, excludeID)
}

func (s *SongStore) Create(ctx context.Context, song *Song) error {
	_, err := sqlx.NamedExecContext(ctx, s.q, `INSERT INTO songs
        (id, title, artist, audio_path, cover_path, duration, user_id, created_at, updated_at)
        VALUES (:id, :title, :artist, :audio_path, :cover_path, :duration, :user_id, :created_at, :updated_at)`, song)
	if err != nil {
		return fmt.Errorf("insert song: %w", err)
	}
	return nil
}

// Update writes the mutable columns. user_id is never updated.
func (s *SongStore) Update(ctx context.Context, song *Song) (bool, error) {
	res, err := sqlx.NamedExecContext(ctx, s.q, `UPDATE songs SET
        title = :title, artist = :artist, audio_path = :audio_path, cover_path = :cover_path,
        duration = :duration, updated_at = :updated_at
        WHERE id = :id`, song)
	if err != nil {
		return false, fmt.Errorf("update song %s: %w", song.ID, err)
	}
	return affected(res)
}

func (s *SongStore) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.q.ExecContext(ctx, `DELETE FROM songs WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete song %s: %w", id, err)
	}
	return affected(res)
}

// MediaPaths lists the audio and cover files referenced by songs of ownerID.
func (s *SongStore) MediaPaths(ctx context.Context, ownerID string) ([]string, error) {
	var paths []string
	err := sqlx.SelectContext(ctx, s.q, &paths,
		`SELECT audio_path FROM songs WHERE user_id = ? UNION SELECT cover_path FROM songs WHERE user_id = ?`,
		ownerID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("song media paths: %w", err)
	}
	return paths, nil
}

func (s *SongStore) AllMediaPaths(ctx context.Context) ([]string, error) {
	var paths []string
	err := sqlx.SelectContext(ctx, s.q, &paths, `SELECT audio_path FROM songs UNION SELECT cover_path FROM songs`)
	if err != nil {
		return nil, fmt.Errorf("all song media paths: %w", err)
	}
	return paths, nil
}
