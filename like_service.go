package main

import (
	"context"
	"time"
)

// LikeService records likes for one kind of entity (songs or playlists).
type LikeService struct {
	db   *Database
	kind likeKind
}

func NewLikeService(db *Database, kind likeKind) *LikeService {
	return &LikeService{db: db, kind: kind}
}

func (s *LikeService) Like(ctx context.Context, entityID, userID string) error {
	alreadyLiked := s.kind.Name + " is already liked."
	return s.db.InTx(ctx, func(tx Stores) error {
		if err := s.requireEntity(ctx, tx, entityID); err != nil {
			return err
		}
		found, err := tx.Users.Exists(ctx, userID)
		if err != nil {
			return internal("failed to load user", err)
		}
		if !found {
			return notFound("User not found.")
		}

		liked, err := tx.Likes.IsLiked(ctx, s.kind, userID, entityID)
		if err != nil {
			return internal("failed to check like", err)
		}
		if liked {
			return conflict(alreadyLiked)
		}

		now := time.Now().UTC()
		if err := tx.Likes.Like(ctx, s.kind, userID, entityID, now); err != nil {
			return writeErr(err, "like "+lowerFirst(s.kind.Name), alreadyLiked)
		}
		if err := tx.Likes.TouchEntity(ctx, s.kind, entityID, now); err != nil {
			return internal("failed to update "+lowerFirst(s.kind.Name), err)
		}
		return nil
	})
}

// Dislike removes an existing like.
func (s *LikeService) Dislike(ctx context.Context, entityID, userID string) error {
	return s.db.InTx(ctx, func(tx Stores) error {
		if err := s.requireEntity(ctx, tx, entityID); err != nil {
			return err
		}
		removed, err := tx.Likes.Unlike(ctx, s.kind, userID, entityID)
		if err != nil {
			return internal("failed to remove like", err)
		}
		if !removed {
			return notFound(s.kind.Name + " is not liked.")
		}
		if err := tx.Likes.TouchEntity(ctx, s.kind, entityID, time.Now().UTC()); err != nil {
			return internal("failed to update "+lowerFirst(s.kind.Name), err)
		}
		return nil
	})
}

func (s *LikeService) requireEntity(ctx context.Context, tx Stores, entityID string) error {
	found, err := tx.Likes.EntityExists(ctx, s.kind, entityID)
	if err != nil {
		return internal("failed to load "+lowerFirst(s.kind.Name), err)
	}
	if !found {
		return notFound(s.kind.Name + " not found.")
	}
	return nil
}
