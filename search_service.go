package main

import (
	"context"
	"sort"
	"unicode/utf8"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

type SearchService struct {
	db         *Database
	mapper     *Mapper
	minLength  int
	maxResults int
	metric     *metrics.JaroWinkler
}

func NewSearchService(db *Database, mapper *Mapper, cfg SearchConfig) *SearchService {
	jw := metrics.NewJaroWinkler()
	jw.CaseSensitive = false
	return &SearchService{
		db:         db,
		mapper:     mapper,
		minLength:  cfg.MinQueryLength,
		maxResults: cfg.MaxResults,
		metric:     jw,
	}
}

// Search finds playlists by name and songs by title or artist, ranked by
// similarity to the query.
func (s *SearchService) Search(ctx context.Context, query, requesterID string) (*SearchResponse, error) {
	term := normalizeKey(query)
	if term == "" {
		return nil, badRequest("Search query is required.")
	}
	if utf8.RuneCountInString(term) < s.minLength {
		return nil, badRequest("Search query is too short.")
	}

	playlists, err := s.db.Search.Playlists(ctx, term, requesterID, 0)
	if err != nil {
		return nil, internal("failed to search playlists", err)
	}
	songs, err := s.db.Search.Songs(ctx, term, requesterID, 0)
	if err != nil {
		return nil, internal("failed to search songs", err)
	}

	playlists = rankByScore(playlists, s.maxResults, func(p Playlist) float64 {
		return s.score(term, p.Name)
	})
	songs = rankByScore(songs, s.maxResults, func(song Song) float64 {
		return max(s.score(term, song.Title), s.score(term, song.Artist))
	})

	return &SearchResponse{
		Playlists: s.mapper.Playlists(playlists),
		Songs:     s.mapper.Songs(songs),
	}, nil
}

func (s *SearchService) score(term, value string) float64 {
	return strutil.Similarity(term, normalizeKey(value), s.metric)
}

// rankByScore orders items by descending score (stable for ties) and caps
// the result at limit when limit > 0.
func rankByScore[T any](items []T, limit int, score func(T) float64) []T {
	type scored struct {
		item  T
		score float64
	}
	kept := make([]scored, 0, len(items))
	for _, it := range items {
		kept = append(kept, scored{item: it, score: score(it)})
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].score > kept[j].score })
	if limit > 0 && len(kept) > limit {
		kept = kept[:limit]
	}
	out := make([]T, len(kept))
	for i, k := range kept {
		out[i] = k.item
	}
	return out
}
