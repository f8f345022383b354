package main

import (
	"context"
	"mime/multipart"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

const duplicateSong = "A song with this title and artist already exists."

// SongInput carries an upload or update request. Nil files mean "not supplied".
type SongInput struct {
	Title    string
	Artist   string
	Duration int
	Audio    *multipart.FileHeader
	Cover    *multipart.FileHeader
}

type SongService struct {
	db     *Database
	media  *MediaStore
	mapper *Mapper
	logger *log.Logger
}

func NewSongService(db *Database, media *MediaStore, mapper *Mapper, logger *log.Logger) *SongService {
	return &SongService{db: db, media: media, mapper: mapper, logger: logger.With("component", "songs")}
}

// Page selects a window of a listing. Zero values mean everything.
type Page struct {
	Limit  int
	Offset int
}

func (s *SongService) List(ctx context.Context, requesterID string, page Page) ([]SongResponse, error) {
	songs, err := s.db.Songs.Query(ctx, SongQueryOptions{UserID: requesterID, Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		return nil, internal("failed to list songs", err)
	}
	return s.mapper.Songs(songs), nil
}

// Liked lists the songs requesterID likes, most recent first.
func (s *SongService) Liked(ctx context.Context, requesterID string) ([]SongResponse, error) {
	songs, err := s.db.Songs.Query(ctx, SongQueryOptions{UserID: requesterID, OnlyLiked: true})
	if err != nil {
		return nil, internal("failed to list liked songs", err)
	}
	return s.mapper.Songs(songs), nil
}

func (s *SongService) Get(ctx context.Context, id, requesterID string) (*SongResponse, error) {
	song, err := s.db.Songs.GetByID(ctx, id, requesterID)
	if err != nil {
		return nil, loadErr(err, "Song")
	}
	resp := s.mapper.Song(*song)
	return &resp, nil
}

// Upload stores the audio (and optional cover) and creates the song.
// Missing title or artist are taken from the file's tags.
func (s *SongService) Upload(ctx context.Context, in SongInput, requesterID string) (*SongResponse, error) {
	if in.Audio == nil {
		return nil, badRequest("Audio file is required.")
	}
	found, err := s.db.Users.Exists(ctx, requesterID)
	if err != nil {
		return nil, internal("failed to load user", err)
	}
	if !found {
		return nil, notFound("User not found.")
	}

	audioPath, err := s.media.SaveAudio(in.Audio)
	if err != nil {
		return nil, err
	}

	title, artist := strings.TrimSpace(in.Title), strings.TrimSpace(in.Artist)
	if title == "" || artist == "" {
		tags, err := s.media.ReadTags(audioPath)
		if err != nil {
			s.logger.Debug("no readable tags", "path", audioPath, "err", err)
		}
		if title == "" {
			title = tags.Title
		}
		if artist == "" {
			artist = tags.Artist
		}
	}
	if title == "" || artist == "" {
		s.media.Delete(audioPath)
		return nil, badRequest("Title and artist are required.")
	}

	coverPath := s.media.DefaultCoverPath()
	if in.Cover != nil {
		if coverPath, err = s.media.SaveCover(in.Cover); err != nil {
			s.media.Delete(audioPath)
			return nil, err
		}
	}

	now := time.Now().UTC()
	song := &Song{
		ID:        newID(),
		Title:     title,
		Artist:    artist,
		AudioPath: audioPath,
		CoverPath: coverPath,
		Duration:  max(in.Duration, 0),
		UserID:    requesterID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.db.InTx(ctx, func(tx Stores) error {
		taken, err := tx.Songs.TitleArtistExists(ctx, title, artist, "")
		if err != nil {
			return internal("failed to check song uniqueness", err)
		}
		if taken {
			return conflict(duplicateSong)
		}
		return tx.Songs.Create(ctx, song)
	})
	if err != nil {
		s.media.DeleteAll(audioPath, coverPath)
		return nil, writeErr(err, "create song", duplicateSong)
	}

	s.logger.Info("song uploaded", "song", song.ID, "user", requesterID)
	resp := s.mapper.Song(*song)
	return &resp, nil
}

// Update changes metadata and optionally replaces the audio or cover. New
// files are written before the commit; replaced files are removed after it.
func (s *SongService) Update(ctx context.Context, id string, in SongInput, requesterID string) (*SongResponse, error) {
	song, err := requireOwner(ctx, s.loader(requesterID), id, requesterID, "Song")
	if err != nil {
		return nil, err
	}

	updated := *song
	if t := strings.TrimSpace(in.Title); t != "" {
		updated.Title = t
	}
	if a := strings.TrimSpace(in.Artist); a != "" {
		updated.Artist = a
	}
	if in.Duration > 0 {
		updated.Duration = in.Duration
	}

	var created []string
	if in.Audio != nil {
		path, err := s.media.SaveAudio(in.Audio)
		if err != nil {
			return nil, err
		}
		updated.AudioPath = path
		created = append(created, path)
	}
	if in.Cover != nil {
		path, err := s.media.SaveCover(in.Cover)
		if err != nil {
			s.media.DeleteAll(created...)
			return nil, err
		}
		updated.CoverPath = path
		created = append(created, path)
	}
	updated.UpdatedAt = time.Now().UTC()

	err = s.db.InTx(ctx, func(tx Stores) error {
		taken, err := tx.Songs.TitleArtistExists(ctx, updated.Title, updated.Artist, id)
		if err != nil {
			return internal("failed to check song uniqueness", err)
		}
		if taken {
			return conflict(duplicateSong)
		}
		ok, err := tx.Songs.Update(ctx, &updated)
		if err != nil {
			return err
		}
		if !ok {
			return notFound("Song not found.")
		}
		return nil
	})
	if err != nil {
		s.media.DeleteAll(created...)
		return nil, writeErr(err, "update song", duplicateSong)
	}

	if updated.AudioPath != song.AudioPath {
		s.media.Delete(song.AudioPath)
	}
	if updated.CoverPath != song.CoverPath {
		s.media.Delete(song.CoverPath)
	}

	resp := s.mapper.Song(updated)
	return &resp, nil
}

// RemoveCover resets the cover to the default image. Repeating it is a no-op.
func (s *SongService) RemoveCover(ctx context.Context, id, requesterID string) (*SongResponse, error) {
	song, err := requireOwner(ctx, s.loader(requesterID), id, requesterID, "Song")
	if err != nil {
		return nil, err
	}
	if s.media.IsDefaultCover(song.CoverPath) {
		resp := s.mapper.Song(*song)
		return &resp, nil
	}

	old := song.CoverPath
	song.CoverPath = s.media.DefaultCoverPath()
	song.UpdatedAt = time.Now().UTC()
	err = s.db.InTx(ctx, func(tx Stores) error {
		ok, err := tx.Songs.Update(ctx, song)
		if err != nil {
			return internal("failed to update song", err)
		}
		if !ok {
			return notFound("Song not found.")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.media.Delete(old)

	resp := s.mapper.Song(*song)
	return &resp, nil
}

// Delete removes the song row (join rows cascade) and then its files.
func (s *SongService) Delete(ctx context.Context, id, requesterID string) error {
	song, err := requireOwner(ctx, s.loader(requesterID), id, requesterID, "Song")
	if err != nil {
		return err
	}
	err = s.db.InTx(ctx, func(tx Stores) error {
		ok, err := tx.Songs.Delete(ctx, id)
		if err != nil {
			return internal("failed to delete song", err)
		}
		if !ok {
			return notFound("Song not found.")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.media.DeleteAll(song.AudioPath, song.CoverPath)
	s.logger.Info("song deleted", "song", id, "user", requesterID)
	return nil
}

// AudioPath returns the stored audio file of a song for streaming.
func (s *SongService) AudioPath(ctx context.Context, id string) (string, error) {
	song, err := s.db.Songs.GetByID(ctx, id, "")
	if err != nil {
		return "", loadErr(err, "Song")
	}
	if !fileExists(song.AudioPath) {
		return "", notFound("Audio file not found.")
	}
	return song.AudioPath, nil
}

// CoverPath returns the cover file of a song, falling back to the default.
func (s *SongService) CoverPath(ctx context.Context, id string) (string, error) {
	song, err := s.db.Songs.GetByID(ctx, id, "")
	if err != nil {
		return "", loadErr(err, "Song")
	}
	if !fileExists(song.CoverPath) {
		return s.media.DefaultCoverPath(), nil
	}
	return song.CoverPath, nil
}

// loader fetches songs with the like flag of requesterID.
func (s *SongService) loader(requesterID string) func(context.Context, string) (*Song, error) {
	return func(ctx context.Context, id string) (*Song, error) {
		return s.db.Songs.GetByID(ctx, id, requesterID)
	}
}
