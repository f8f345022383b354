package main

import (
	"context"
	"testing"
)

func TestSearch_QueryTooShortIsBadRequest(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, q := range []string{"", "   ", "ab", " éé "} {
		_, err := env.api.search.Search(ctx, q, "")
		assertKind(t, err, KindBadRequest)
	}
}

func TestSearch_CaseInsensitiveSubstringAcrossSongsAndPlaylists(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com")
	fan := env.createUser(t, "fan@example.com")
	rock := env.uploadSong(t, owner, "Rock Anthem", "Band")
	env.uploadSong(t, owner, "Ballad", "The Rockers")
	env.uploadSong(t, owner, "Jazz", "Quartet")
	pl := env.createPlaylist(t, owner, "Classic ROCK")
	env.createPlaylist(t, owner, "Chill")

	if err := env.api.songLikes.Like(ctx, rock, fan); err != nil {
		t.Fatalf("like: %v", err)
	}

	res, err := env.api.search.Search(ctx, "  rOcK ", fan)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(res.Songs) != 2 {
		t.Fatalf("expected 2 songs matching title or artist, got %+v", res.Songs)
	}
	if len(res.Playlists) != 1 || res.Playlists[0].ID != pl {
		t.Fatalf("expected playlist %s, got %+v", pl, res.Playlists)
	}
	for _, s := range res.Songs {
		if s.ID == rock && !s.IsLiked {
			t.Fatalf("expected liked flag on %s for fan", rock)
		}
	}
}

func TestSearch_FoldsNonASCIICase(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com")
	song := env.uploadSong(t, owner, "Ölsen Waltz", "Åse Kvartett")
	pl := env.createPlaylist(t, owner, "ÉTÉ Mix")

	for _, q := range []string{"ölsen", "ÖLSEN", "åse", "ÅSE KVART"} {
		res, err := env.api.search.Search(ctx, q, "")
		if err != nil {
			t.Fatalf("search %q: %v", q, err)
		}
		if len(res.Songs) != 1 || res.Songs[0].ID != song {
			t.Fatalf("search %q: expected song %s, got %+v", q, song, res.Songs)
		}
	}

	res, err := env.api.search.Search(ctx, "été", "")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(res.Playlists) != 1 || res.Playlists[0].ID != pl {
		t.Fatalf("expected playlist %s, got %+v", pl, res.Playlists)
	}
}

func TestSearch_NoResultsIsEmptyNotError(t *testing.T) {
	env := newTestEnv(t)
	res, err := env.api.search.Search(context.Background(), "nothing here", "")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if res.Songs == nil || res.Playlists == nil || len(res.Songs)+len(res.Playlists) != 0 {
		t.Fatalf("expected empty non-nil result lists, got %+v", res)
	}
}

func TestSearch_LikeWildcardsAreLiteral(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@example.com")
	env.uploadSong(t, owner, "100% Pure", "Band")
	env.uploadSong(t, owner, "1000 Pure", "Band")

	res, err := env.api.search.Search(context.Background(), "100%", "")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(res.Songs) != 1 || res.Songs[0].Title != "100% Pure" {
		t.Fatalf("expected only the literal %% match, got %+v", res.Songs)
	}
}

func TestSearch_RanksCloserMatchesFirstAndCaps(t *testing.T) {
	env := newTestEnv(t)
	env.api.search.maxResults = 2
	owner := env.createUser(t, "owner@example.com")
	env.uploadSong(t, owner, "Love is a battlefield of endless nights", "Singer")
	env.uploadSong(t, owner, "Love", "Singer")
	env.uploadSong(t, owner, "Lovers in the long dark hallway", "Singer")

	res, err := env.api.search.Search(context.Background(), "love", "")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(res.Songs) != 2 {
		t.Fatalf("expected results capped at 2, got %d", len(res.Songs))
	}
	if res.Songs[0].Title != "Love" {
		t.Fatalf("expected exact title first, got %q", res.Songs[0].Title)
	}
}

func TestRankByScore_StableForTies(t *testing.T) {
	items := []string{"a", "b", "c", "d"}
	scores := map[string]float64{"a": 0.5, "b": 0.9, "c": 0.5, "d": 0.9}
	got := rankByScore(items, 0, func(s string) float64 { return scores[s] })
	want := []string{"b", "d", "a", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}
