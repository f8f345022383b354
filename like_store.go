package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// likeKind describes one likeable entity: its table and the join table
// recording which users like it.
type likeKind struct {
	Name        string // display name used in messages
	EntityTable string
	JoinTable   string
	FKColumn    string
}

var (
	songLikes     = likeKind{Name: "Song", EntityTable: "songs", JoinTable: "liked_songs", FKColumn: "song_id"}
	playlistLikes = likeKind{Name: "Playlist", EntityTable: "playlists", JoinTable: "liked_playlists", FKColumn: "playlist_id"}
)

type LikeRepository interface {
	EntityExists(ctx context.Context, kind likeKind, entityID string) (bool, error)
	IsLiked(ctx context.Context, kind likeKind, userID, entityID string) (bool, error)
	Like(ctx context.Context, kind likeKind, userID, entityID string, at time.Time) error
	Unlike(ctx context.Context, kind likeKind, userID, entityID string) (bool, error)
	TouchEntity(ctx context.Context, kind likeKind, entityID string, at time.Time) error
}

type LikeStore struct {
	q sqlx.ExtContext
}

func NewLikeStore(q sqlx.ExtContext) *LikeStore {
	return &LikeStore{q: q}
}

// Table names come from the fixed likeKind values above, never from input.

func (s *LikeStore) EntityExists(ctx context.Context, kind likeKind, entityID string) (bool, error) {
	return exists(ctx, s.q, fmt.Sprintf(`SELECT 1 FROM %s WHERE id = ?`, kind.EntityTable), entityID)
}

func (s *LikeStore) IsLiked(ctx context.Context, kind likeKind, userID, entityID string) (bool, error) {
	return exists(ctx, s.q,
		fmt.Sprintf(`SELECT 1 FROM %s WHERE user_id = ? AND %s = ?`, kind.JoinTable, kind.FKColumn),
		userID, entityID)
}

// Like inserts the relation. A duplicate fails on the composite primary key.
func (s *LikeStore) Like(ctx context.Context, kind likeKind, userID, entityID string, at time.Time) error {
	_, err := s.q.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (user_id, %s, liked_at) VALUES (?, ?, ?)`, kind.JoinTable, kind.FKColumn),
		userID, entityID, at)
	if err != nil {
		return fmt.Errorf("like %s %s: %w", kind.EntityTable, entityID, err)
	}
	return nil
}

func (s *LikeStore) Unlike(ctx context.Context, kind likeKind, userID, entityID string) (bool, error) {
	res, err := s.q.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE user_id = ? AND %s = ?`, kind.JoinTable, kind.FKColumn),
		userID, entityID)
	if err != nil {
		return false, fmt.Errorf("unlike %s %s: %w", kind.EntityTable, entityID, err)
	}
	return affected(res)
}

func (s *LikeStore) TouchEntity(ctx context.Context, kind likeKind, entityID string, at time.Time) error {
	_, err := s.q.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET updated_at = ? WHERE id = ?`, kind.EntityTable), at, entityID)
	if err != nil {
		return fmt.Errorf("touch %s %s: %w", kind.EntityTable, entityID, err)
	}
	return nil
}
