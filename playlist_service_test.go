package main

import (
	"context"
	"os"
	"testing"
)

func TestPlaylistMembership_AddTwiceIsConflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com")
	songID := env.uploadSong(t, owner, "One", "Band")
	playlistID := env.createPlaylist(t, owner, "Mix")

	if err := env.api.playlists.AddSong(ctx, playlistID, songID, owner); err != nil {
		t.Fatalf("first add: %v", err)
	}
	err := env.api.playlists.AddSong(ctx, playlistID, songID, owner)
	assertKind(t, err, KindConflict)

	songs, err := env.api.playlists.ListSongs(ctx, playlistID, owner)
	if err != nil {
		t.Fatalf("list songs: %v", err)
	}
	if len(songs) != 1 {
		t.Fatalf("expected 1 song after duplicate add, got %d", len(songs))
	}
}

func TestPlaylistMembership_RemoveNonMemberIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com")
	songID := env.uploadSong(t, owner, "One", "Band")
	playlistID := env.createPlaylist(t, owner, "Mix")

	err := env.api.playlists.RemoveSong(ctx, playlistID, songID, owner)
	assertKind(t, err, KindNotFound)

	err = env.api.playlists.RemoveSong(ctx, "missing", songID, owner)
	assertKind(t, err, KindNotFound)
}

func TestPlaylistMembership_NonOwnerIsUnauthorized(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice@example.com")
	bob := env.createUser(t, "bob@example.com")
	songID := env.uploadSong(t, bob, "Bob Song", "Bob")
	playlistID := env.createPlaylist(t, alice, "Alice Mix")

	assertKind(t, env.api.playlists.AddSong(ctx, playlistID, songID, bob), KindUnauthorized)

	if err := env.api.playlists.AddSong(ctx, playlistID, songID, alice); err != nil {
		t.Fatalf("owner add: %v", err)
	}
	// Ownership is checked before membership.
	assertKind(t, env.api.playlists.RemoveSong(ctx, playlistID, "whatever", bob), KindUnauthorized)
}

func TestPlaylistMembership_ListOrderAndLikedFlag(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com")
	fan := env.createUser(t, "fan@example.com")
	first := env.uploadSong(t, owner, "First", "Band")
	second := env.uploadSong(t, owner, "Second", "Band")
	playlistID := env.createPlaylist(t, owner, "Ordered")

	empty, err := env.api.playlists.ListSongs(ctx, playlistID, "")
	if err != nil {
		t.Fatalf("empty list: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil list, got %v", empty)
	}

	for _, id := range []string{second, first} {
		if err := env.api.playlists.AddSong(ctx, playlistID, id, owner); err != nil {
			t.Fatalf("add %s: %v", id, err)
		}
	}
	if err := env.api.songLikes.Like(ctx, first, fan); err != nil {
		t.Fatalf("like: %v", err)
	}

	songs, err := env.api.playlists.ListSongs(ctx, playlistID, fan)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(songs) != 2 || songs[0].ID != second || songs[1].ID != first {
		t.Fatalf("expected songs in insertion order [%s %s], got %+v", second, first, songs)
	}
	if songs[0].IsLiked || !songs[1].IsLiked {
		t.Fatalf("expected only %s liked for fan, got %+v", first, songs)
	}

	anon, err := env.api.playlists.ListSongs(ctx, playlistID, "")
	if err != nil {
		t.Fatalf("anonymous list: %v", err)
	}
	for _, s := range anon {
		if s.IsLiked {
			t.Fatalf("anonymous requester must never see isLiked=true")
		}
	}

	_, err = env.api.playlists.ListSongs(ctx, "missing", owner)
	assertKind(t, err, KindNotFound)
}

func TestPlaylist_CreateGetDefaultCoverAndRemoveCoverTwice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com")

	created, err := env.api.playlists.Create(ctx, PlaylistInput{Name: "Road Trip"}, owner)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := env.api.playlists.Get(ctx, created.ID, owner)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Road Trip" || got.CoverImagePath != env.media.DefaultCoverPath() {
		t.Fatalf("unexpected playlist %+v", got)
	}

	first, err := env.api.playlists.RemoveCover(ctx, created.ID, owner)
	if err != nil {
		t.Fatalf("first remove cover: %v", err)
	}
	second, err := env.api.playlists.RemoveCover(ctx, created.ID, owner)
	if err != nil {
		t.Fatalf("second remove cover: %v", err)
	}
	if first.CoverImagePath != second.CoverImagePath || second.CoverImagePath != env.media.DefaultCoverPath() {
		t.Fatalf("expected default cover both times, got %q and %q", first.CoverImagePath, second.CoverImagePath)
	}
	if !fileExists(env.media.DefaultCoverPath()) {
		t.Fatalf("default cover must never be deleted")
	}
}

func TestPlaylist_CustomCoverReplacedAndRemoved(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com")

	created, err := env.api.playlists.Create(ctx, PlaylistInput{
		Name:  "Covered",
		Cover: fileHeader(t, "cover_image_file", "Cover.PNG", pngBytes(t)),
	}, owner)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	firstCover := created.CoverImagePath
	if firstCover == env.media.DefaultCoverPath() || !fileExists(firstCover) {
		t.Fatalf("expected a stored custom cover, got %q", firstCover)
	}

	updated, err := env.api.playlists.Update(ctx, created.ID, PlaylistInput{
		Cover: fileHeader(t, "cover_image_file", "next.png", pngBytes(t)),
	}, owner)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Covered" {
		t.Fatalf("name should be unchanged, got %q", updated.Name)
	}
	if _, err := os.Stat(firstCover); !os.IsNotExist(err) {
		t.Fatalf("expected replaced cover %s to be deleted", firstCover)
	}

	removed, err := env.api.playlists.RemoveCover(ctx, created.ID, owner)
	if err != nil {
		t.Fatalf("remove cover: %v", err)
	}
	if removed.CoverImagePath != env.media.DefaultCoverPath() {
		t.Fatalf("expected default cover, got %q", removed.CoverImagePath)
	}
	if fileExists(updated.CoverImagePath) {
		t.Fatalf("expected removed cover file to be deleted")
	}
}

func TestPlaylist_InvalidCoverIsBadRequest(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@example.com")

	_, err := env.api.playlists.Create(context.Background(), PlaylistInput{
		Name:  "Broken",
		Cover: fileHeader(t, "cover_image_file", "cover.png", []byte("not an image")),
	}, owner)
	assertKind(t, err, KindBadRequest)

	_, err = env.api.playlists.Create(context.Background(), PlaylistInput{
		Name:  "Wrong type",
		Cover: fileHeader(t, "cover_image_file", "cover.txt", []byte("text")),
	}, owner)
	assertKind(t, err, KindBadRequest)
}

func TestPlaylist_NameUniquePerOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice@example.com")
	bob := env.createUser(t, "bob@example.com")
	env.createPlaylist(t, alice, "Favorites")

	_, err := env.api.playlists.Create(ctx, PlaylistInput{Name: "favorites"}, alice)
	assertKind(t, err, KindConflict)

	if _, err := env.api.playlists.Create(ctx, PlaylistInput{Name: "Favorites"}, bob); err != nil {
		t.Fatalf("another user may reuse the name: %v", err)
	}

	other := env.createPlaylist(t, alice, "Other")
	_, err = env.api.playlists.Update(ctx, other, PlaylistInput{Name: "FAVORITES"}, alice)
	assertKind(t, err, KindConflict)

	// Renaming to its own name (different case) is allowed.
	if _, err := env.api.playlists.Update(ctx, other, PlaylistInput{Name: "OTHER"}, alice); err != nil {
		t.Fatalf("rename to own name: %v", err)
	}
}

func TestPlaylist_NonOwnerMutationsAreUnauthorized(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice@example.com")
	bob := env.createUser(t, "bob@example.com")
	id := env.createPlaylist(t, alice, "Private")

	_, err := env.api.playlists.Update(ctx, id, PlaylistInput{Name: "Hijacked"}, bob)
	assertKind(t, err, KindUnauthorized)
	_, err = env.api.playlists.RemoveCover(ctx, id, bob)
	assertKind(t, err, KindUnauthorized)
	assertKind(t, env.api.playlists.Delete(ctx, id, bob), KindUnauthorized)

	assertKind(t, env.api.playlists.Delete(ctx, "missing", bob), KindNotFound)

	if err := env.api.playlists.Delete(ctx, id, alice); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	_, err = env.api.playlists.Get(ctx, id, alice)
	assertKind(t, err, KindNotFound)
}

func TestPlaylistList_OnlyRequesterOwned(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice@example.com")
	bob := env.createUser(t, "bob@example.com")
	env.createPlaylist(t, alice, "Alice Mix")
	bobID := env.createPlaylist(t, bob, "Bob Mix")

	got, err := env.api.playlists.List(ctx, bob)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].ID != bobID {
		t.Fatalf("expected only bob's playlist %s, got %+v", bobID, got)
	}

	none, err := env.api.playlists.List(ctx, env.createUser(t, "carol@example.com"))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no playlists for carol, got %d", len(none))
	}

	_, err = env.api.playlists.List(ctx, "")
	assertKind(t, err, KindUnauthorized)
}
