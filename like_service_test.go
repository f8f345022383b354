package main

import (
	"context"
	"testing"
	"time"
)

func TestLike_TwiceIsConflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com")
	songID := env.uploadSong(t, owner, "Liked", "Band")

	if err := env.api.songLikes.Like(ctx, songID, owner); err != nil {
		t.Fatalf("first like: %v", err)
	}
	assertKind(t, env.api.songLikes.Like(ctx, songID, owner), KindConflict)
}

func TestLike_DislikeTwiceIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com")
	playlistID := env.createPlaylist(t, owner, "Loved")

	if err := env.api.playlistLikes.Like(ctx, playlistID, owner); err != nil {
		t.Fatalf("like: %v", err)
	}
	if err := env.api.playlistLikes.Dislike(ctx, playlistID, owner); err != nil {
		t.Fatalf("dislike: %v", err)
	}
	assertKind(t, env.api.playlistLikes.Dislike(ctx, playlistID, owner), KindNotFound)
}

func TestLike_MissingEntityOrUserIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com")
	songID := env.uploadSong(t, owner, "Here", "Band")

	assertKind(t, env.api.songLikes.Like(ctx, "missing", owner), KindNotFound)
	assertKind(t, env.api.songLikes.Like(ctx, songID, "ghost"), KindNotFound)
	assertKind(t, env.api.songLikes.Dislike(ctx, "missing", owner), KindNotFound)
}

func TestLike_BumpsUpdatedAtAndFlagsPerRequester(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com")
	fan := env.createUser(t, "fan@example.com")
	songID := env.uploadSong(t, owner, "Bumped", "Band")

	before, err := env.db.Songs.GetByID(ctx, songID, fan)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if err := env.api.songLikes.Like(ctx, songID, fan); err != nil {
		t.Fatalf("like: %v", err)
	}
	after, err := env.db.Songs.GetByID(ctx, songID, fan)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !after.UpdatedAt.After(before.UpdatedAt) {
		t.Fatalf("expected updated_at to advance: before=%v after=%v", before.UpdatedAt, after.UpdatedAt)
	}
	if before.IsLiked || !after.IsLiked {
		t.Fatalf("expected liked flag to flip for fan: before=%v after=%v", before.IsLiked, after.IsLiked)
	}

	ownerView, err := env.api.songs.Get(ctx, songID, owner)
	if err != nil {
		t.Fatalf("owner get: %v", err)
	}
	if ownerView.IsLiked {
		t.Fatalf("fan's like must not show as liked for the owner")
	}
}

func TestLikedLists(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com")
	fan := env.createUser(t, "fan@example.com")
	a := env.uploadSong(t, owner, "A", "Band")
	env.uploadSong(t, owner, "B", "Band")
	p := env.createPlaylist(t, owner, "P")

	none, err := env.api.songs.Liked(ctx, fan)
	if err != nil || len(none) != 0 {
		t.Fatalf("expected no liked songs, got %v (err=%v)", none, err)
	}

	if err := env.api.songLikes.Like(ctx, a, fan); err != nil {
		t.Fatalf("like song: %v", err)
	}
	if err := env.api.playlistLikes.Like(ctx, p, fan); err != nil {
		t.Fatalf("like playlist: %v", err)
	}

	songs, err := env.api.songs.Liked(ctx, fan)
	if err != nil {
		t.Fatalf("liked songs: %v", err)
	}
	if len(songs) != 1 || songs[0].ID != a || !songs[0].IsLiked {
		t.Fatalf("expected only song %s, got %+v", a, songs)
	}

	playlists, err := env.api.playlists.Liked(ctx, fan)
	if err != nil {
		t.Fatalf("liked playlists: %v", err)
	}
	if len(playlists) != 1 || playlists[0].ID != p || !playlists[0].IsLiked {
		t.Fatalf("expected only playlist %s, got %+v", p, playlists)
	}
}

func TestLike_DeletedSongCascadesLikes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com")
	fan := env.createUser(t, "fan@example.com")
	songID := env.uploadSong(t, owner, "Gone", "Band")
	if err := env.api.songLikes.Like(ctx, songID, fan); err != nil {
		t.Fatalf("like: %v", err)
	}
	if err := env.api.songs.Delete(ctx, songID, owner); err != nil {
		t.Fatalf("delete: %v", err)
	}
	liked, err := env.api.songs.Liked(ctx, fan)
	if err != nil {
		t.Fatalf("liked: %v", err)
	}
	if len(liked) != 0 {
		t.Fatalf("expected like rows to cascade, got %+v", liked)
	}
}
