package main

import "context"

type SearchRepository interface {
	Songs(ctx context.Context, term, requesterID string, limit int) ([]Song, error)
	Playlists(ctx context.Context, term, requesterID string, limit int) ([]Playlist, error)
}

// SearchStore runs substring searches through the song and playlist query builders.
type SearchStore struct {
	songs     *SongStore
	playlists *PlaylistStore
}

func NewSearchStore(songs *SongStore, playlists *PlaylistStore) *SearchStore {
	return &SearchStore{songs: songs, playlists: playlists}
}

func (s *SearchStore) Songs(ctx context.Context, term, requesterID string, limit int) ([]Song, error) {
	return s.songs.Query(ctx, SongQueryOptions{UserID: requesterID, SearchTerm: term, Limit: limit})
}

func (s *SearchStore) Playlists(ctx context.Context, term, requesterID string, limit int) ([]Playlist, error) {
	return s.playlists.Query(ctx, PlaylistQueryOptions{UserID: requesterID, SearchTerm: term, Limit: limit})
}
