package main

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestRegister_DuplicateEmailIsConflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "Same@Example.com")

	_, err := env.api.users.Register(ctx, "  same@example.COM ", "password123")
	assertKind(t, err, KindConflict)
}

func TestRegister_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.api.users.Register(ctx, "not-an-email", "password123")
	assertKind(t, err, KindBadRequest)
	_, err = env.api.users.Register(ctx, "short@example.com", "123")
	assertKind(t, err, KindBadRequest)
}

func TestLogin_GenericFailureAndTokenRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.createUser(t, "user@example.com")

	_, errUnknown := env.api.auth.Login(ctx, "nobody@example.com", "password123")
	_, errWrong := env.api.auth.Login(ctx, "user@example.com", "wrong-password")
	assertKind(t, errUnknown, KindUnauthorized)
	assertKind(t, errWrong, KindUnauthorized)
	if errUnknown.Error() != errWrong.Error() {
		t.Fatalf("login failures must be indistinguishable: %q vs %q", errUnknown, errWrong)
	}

	tok, err := env.api.auth.Login(ctx, "USER@example.com", "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := env.api.auth.ParseToken(tok.Token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != id || claims.Email != "user@example.com" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestParseToken_RejectsExpiredAndForeignTokens(t *testing.T) {
	env := newTestEnv(t)
	user := &User{ID: newID(), Email: "x@example.com"}

	env.api.auth.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	expired, _, err := env.api.auth.GenerateJWT(user)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	env.api.auth.now = time.Now
	_, err = env.api.auth.ParseToken(expired)
	assertKind(t, err, KindUnauthorized)

	other := NewAuthService(env.db, AuthConfig{JWTSecret: "other-secret", JWTExpiryHours: 1})
	foreign, _, err := other.GenerateJWT(user)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	_, err = env.api.auth.ParseToken(foreign)
	assertKind(t, err, KindUnauthorized)

	_, err = env.api.auth.ParseToken("garbage")
	assertKind(t, err, KindUnauthorized)
}

func TestUserDelete_RemovesOwnedDataAndFiles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com")
	other := env.createUser(t, "other@example.com")
	song, err := env.api.songs.Upload(ctx, SongInput{
		Title: "Mine", Artist: "Me",
		Audio: fileHeader(t, "audio_file", "mine.mp3", []byte("audio")),
		Cover: fileHeader(t, "cover_image_file", "mine.png", pngBytes(t)),
	}, owner)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	kept := env.uploadSong(t, other, "Theirs", "Them")

	if err := env.api.users.Delete(ctx, owner); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	if fileExists(song.AudioFilePath) || fileExists(song.CoverImagePath) {
		t.Fatalf("expected owner's files to be deleted")
	}
	if !fileExists(env.media.DefaultCoverPath()) {
		t.Fatalf("default cover must survive user deletion")
	}
	if _, err := env.api.songs.Get(ctx, kept, ""); err != nil {
		t.Fatalf("other user's song should remain: %v", err)
	}

	assertKind(t, env.api.users.Delete(ctx, owner), KindNotFound)

	users, err := env.api.users.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 1 || !strings.EqualFold(users[0].Email, "other@example.com") {
		t.Fatalf("expected only the other user, got %+v", users)
	}
}
