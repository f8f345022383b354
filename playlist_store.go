package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// PlaylistQueryOptions mirrors SongQueryOptions for playlists.
type PlaylistQueryOptions struct {
	UserID     string // Requester, used for the is_liked flag
	OwnerID    string
	SearchTerm string // Case-insensitive substring of the name
	OnlyLiked  bool
	Limit      int
}

type PlaylistRepository interface {
	Query(ctx context.Context, opts PlaylistQueryOptions) ([]Playlist, error)
	GetByID(ctx context.Context, id, requesterID string) (*Playlist, error)
	Exists(ctx context.Context, id string) (bool, error)
	NameExists(ctx context.Context, ownerID, name, excludeID string) (bool, error)
	Create(ctx context.Context, p *Playlist) error
	Update(ctx context.Context, p *Playlist) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	Touch(ctx context.Context, id string, at time.Time) error
	HasSong(ctx context.Context, playlistID, songID string) (bool, error)
	AddSong(ctx context.Context, playlistID, songID string, at time.Time) error
	RemoveSong(ctx context.Context, playlistID, songID string) (bool, error)
	CoverPaths(ctx context.Context, ownerID string) ([]string, error)
	AllCoverPaths(ctx context.Context) ([]string, error)
}

type PlaylistStore struct {
	q sqlx.ExtContext
}

func NewPlaylistStore(q sqlx.ExtContext) *PlaylistStore {
	return &PlaylistStore{q: q}
}

const playlistSelect = `SELECT p.id, p.name, p.cover_path, p.user_id, p.created_at, p.updated_at,
        (SELECT COUNT(*) FROM playlist_songs ps WHERE ps.playlist_id = p.id) AS song_count,
        CASE WHEN lp.playlist_id IS NOT NULL THEN 1 ELSE 0 END AS is_liked
        FROM playlists p
        LEFT JOIN liked_playlists lp ON p.id = lp.playlist_id AND lp.user_id = ?`

func (s *PlaylistStore) Query(ctx context.Context, opts PlaylistQueryOptions) ([]Playlist, error) {
	var query strings.Builder
	args := []interface{}{opts.UserID}
	query.WriteString(playlistSelect)

	var whereClauses []string
	if opts.OwnerID != "" {
		whereClauses = append(whereClauses, "p.user_id = ?")
		args = append(args, opts.OwnerID)
	}
	if opts.SearchTerm != "" {
		whereClauses = append(whereClauses, `unicode_lower(p.name) LIKE ? ESCAPE '\'`)
		args = append(args, containsPattern(strings.ToLower(opts.SearchTerm)))
	}
	if opts.OnlyLiked {
		whereClauses = append(whereClauses, "lp.playlist_id IS NOT NULL")
	}
	if len(whereClauses) > 0 {
		query.WriteString(" WHERE " + strings.Join(whereClauses, " AND "))
	}

	if opts.OnlyLiked {
		query.WriteString(" ORDER BY lp.liked_at DESC, p.id")
	} else {
		query.WriteString(" ORDER BY p.created_at, p.id")
	}
	if opts.Limit > 0 {
		query.WriteString(" LIMIT ?")
		args = append(args, opts.Limit)
	}

	playlists := []Playlist{}
	if err := sqlx.SelectContext(ctx, s.q, &playlists, query.String(), args...); err != nil {
		return nil, fmt.Errorf("query playlists: %w", err)
	}
	return playlists, nil
}

// GetByID returns sql.ErrNoRows (wrapped) when the playlist does not exist.
func (s *PlaylistStore) GetByID(ctx context.Context, id, requesterID string) (*Playlist, error) {
	var p Playlist
	if err := sqlx.GetContext(ctx, s.q, &p, playlistSelect+` WHERE p.id = ?`, requesterID, id); err != nil {
		return nil, fmt.Errorf("get playlist %s: %w", id, err)
	}
	return &p, nil
}

func (s *PlaylistStore) Exists(ctx context.Context, id string) (bool, error) {
	return exists(ctx, s.q, `SELECT 1 FROM playlists WHERE id = ?`, id)
}

// NameExists checks per-owner name uniqueness ignoring case and excludeID.
func (s *PlaylistStore) NameExists(ctx context.Context, ownerID, name, excludeID string) (bool, error) {
	return exists(ctx, s.q,
		`SELECT 1 FROM playlists WHERE user_id = ? AND name = ? COLLATE NOCASE AND id != ?`,
		ownerID, name, excludeID)
}

func (s *PlaylistStore) Create(ctx context.Context, p *Playlist) error {
	_, err := sqlx.NamedExecContext(ctx, s.q, `INSERT INTO playlists
        (id, name, cover_path, user_id, created_at, updated_at)
        VALUES (:id, :name, :cover_path, :user_id, :created_at, :updated_at)`, p)
	if err != nil {
		return fmt.Errorf("insert playlist: %w", err)
	}
	return nil
}

// Update writes name, cover and updated_at. user_id is never updated.
func (s *PlaylistStore) Update(ctx context.Context, p *Playlist) (bool, error) {
	res, err := sqlx.NamedExecContext(ctx, s.q,
		`UPDATE playlists SET name = :name, cover_path = :cover_path, updated_at = :updated_at WHERE id = :id`, p)
	if err != nil {
		return false, fmt.Errorf("update playlist %s: %w", p.ID, err)
	}
	return affected(res)
}

func (s *PlaylistStore) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.q.ExecContext(ctx, `DELETE FROM playlists WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete playlist %s: %w", id, err)
	}
	return affected(res)
}

func (s *PlaylistStore) Touch(ctx context.Context, id string, at time.Time) error {
	if _, err := s.q.ExecContext(ctx, `UPDATE playlists SET updated_at = ? WHERE id = ?`, at, id); err != nil {
		return fmt.Errorf("touch playlist %s: %w", id, err)
	}
	return nil
}

func (s *PlaylistStore) HasSong(ctx context.Context, playlistID, songID string) (bool, error) {
	return exists(ctx, s.q, `SELECT 1 FROM playlist_songs WHERE playlist_id = ? AND song_id = ?`, playlistID, songID)
}

func (s *PlaylistStore) AddSong(ctx context.Context, playlistID, songID string, at time.Time) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO playlist_songs (playlist_id, song_id, added_at) VALUES (?, ?, ?)`,
		playlistID, songID, at)
	if err != nil {
		return fmt.Errorf("add song %s to playlist %s: %w", songID, playlistID, err)
	}
	return nil
}

func (s *PlaylistStore) RemoveSong(ctx context.Context, playlistID, songID string) (bool, error) {
	res, err := s.q.ExecContext(ctx,
		`DELETE FROM playlist_songs WHERE playlist_id = ? AND song_id = ?`, playlistID, songID)
	if err != nil {
		return false, fmt.Errorf("remove song %s from playlist %s: %w", songID, playlistID, err)
	}
	return affected(res)
}

func (s *PlaylistStore) CoverPaths(ctx context.Context, ownerID string) ([]string, error) {
	var paths []string
	if err := sqlx.SelectContext(ctx, s.q, &paths, `SELECT DISTINCT cover_path FROM playlists WHERE user_id = ?`, ownerID); err != nil {
		return nil, fmt.Errorf("playlist cover paths: %w", err)
	}
	return paths, nil
}

func (s *PlaylistStore) AllCoverPaths(ctx context.Context) ([]string, error) {
	var paths []string
	if err := sqlx.SelectContext(ctx, s.q, &paths, `SELECT DISTINCT cover_path FROM playlists`); err != nil {
		return nil, fmt.Errorf("all playlist cover paths: %w", err)
	}
	return paths, nil
}
