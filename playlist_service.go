package main

import (
	"context"
	"mime/multipart"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

const duplicatePlaylist = "You already have a playlist with this name."

// PlaylistInput carries create and update requests. A nil Cover means the
// cover is left unchanged (or default on create).
type PlaylistInput struct {
	Name  string
	Cover *multipart.FileHeader
}

type PlaylistService struct {
	db     *Database
	media  *MediaStore
	mapper *Mapper
	logger *log.Logger
}

func NewPlaylistService(db *Database, media *MediaStore, mapper *Mapper, logger *log.Logger) *PlaylistService {
	return &PlaylistService{db: db, media: media, mapper: mapper, logger: logger.With("component", "playlists")}
}

// List returns the playlists requesterID owns.
func (s *PlaylistService) List(ctx context.Context, requesterID string) ([]PlaylistResponse, error) {
	if requesterID == "" {
		return nil, unauthorized("Authorization token is required.")
	}
	playlists, err := s.db.Playlists.Query(ctx, PlaylistQueryOptions{UserID: requesterID, OwnerID: requesterID})
	if err != nil {
		return nil, internal("failed to list playlists", err)
	}
	return s.mapper.Playlists(playlists), nil
}

func (s *PlaylistService) Liked(ctx context.Context, requesterID string) ([]PlaylistResponse, error) {
	playlists, err := s.db.Playlists.Query(ctx, PlaylistQueryOptions{UserID: requesterID, OnlyLiked: true})
	if err != nil {
		return nil, internal("failed to list liked playlists", err)
	}
	return s.mapper.Playlists(playlists), nil
}

func (s *PlaylistService) Get(ctx context.Context, id, requesterID string) (*PlaylistResponse, error) {
	p, err := s.db.Playlists.GetByID(ctx, id, requesterID)
	if err != nil {
		return nil, loadErr(err, "Playlist")
	}
	resp := s.mapper.Playlist(*p)
	return &resp, nil
}

func (s *PlaylistService) Create(ctx context.Context, in PlaylistInput, requesterID string) (*PlaylistResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, badRequest("Playlist name is required.")
	}
	found, err := s.db.Users.Exists(ctx, requesterID)
	if err != nil {
		return nil, internal("failed to load user", err)
	}
	if !found {
		return nil, notFound("User not found.")
	}

	coverPath := s.media.DefaultCoverPath()
	if in.Cover != nil {
		if coverPath, err = s.media.SaveCover(in.Cover); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	p := &Playlist{
		ID:        newID(),
		Name:      name,
		CoverPath: coverPath,
		UserID:    requesterID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = s.db.InTx(ctx, func(tx Stores) error {
		taken, err := tx.Playlists.NameExists(ctx, requesterID, name, "")
		if err != nil {
			return internal("failed to check playlist name", err)
		}
		if taken {
			return conflict(duplicatePlaylist)
		}
		return tx.Playlists.Create(ctx, p)
	})
	if err != nil {
		s.media.Delete(coverPath)
		return nil, writeErr(err, "create playlist", duplicatePlaylist)
	}

	s.logger.Info("playlist created", "playlist", p.ID, "user", requesterID)
	resp := s.mapper.Playlist(*p)
	return &resp, nil
}

func (s *PlaylistService) Update(ctx context.Context, id string, in PlaylistInput, requesterID string) (*PlaylistResponse, error) {
	p, err := requireOwner(ctx, s.loader(requesterID), id, requesterID, "Playlist")
	if err != nil {
		return nil, err
	}

	updated := *p
	if name := strings.TrimSpace(in.Name); name != "" {
		updated.Name = name
	}
	var newCover string
	if in.Cover != nil {
		if newCover, err = s.media.SaveCover(in.Cover); err != nil {
			return nil, err
		}
		updated.CoverPath = newCover
	}
	updated.UpdatedAt = time.Now().UTC()

	err = s.db.InTx(ctx, func(tx Stores) error {
		taken, err := tx.Playlists.NameExists(ctx, requesterID, updated.Name, id)
		if err != nil {
			return internal("failed to check playlist name", err)
		}
		if taken {
			return conflict(duplicatePlaylist)
		}
		ok, err := tx.Playlists.Update(ctx, &updated)
		if err != nil {
			return err
		}
		if !ok {
			return notFound("Playlist not found.")
		}
		return nil
	})
	if err != nil {
		s.media.Delete(newCover)
		return nil, writeErr(err, "update playlist", duplicatePlaylist)
	}
	if newCover != "" {
		s.media.Delete(p.CoverPath)
	}

	resp := s.mapper.Playlist(updated)
	return &resp, nil
}

// RemoveCover resets the cover to the default image. Repeating it is a no-op.
func (s *PlaylistService) RemoveCover(ctx context.Context, id, requesterID string) (*PlaylistResponse, error) {
	p, err := requireOwner(ctx, s.loader(requesterID), id, requesterID, "Playlist")
	if err != nil {
		return nil, err
	}
	if s.media.IsDefaultCover(p.CoverPath) {
		resp := s.mapper.Playlist(*p)
		return &resp, nil
	}

	old := p.CoverPath
	p.CoverPath = s.media.DefaultCoverPath()
	p.UpdatedAt = time.Now().UTC()
	err = s.db.InTx(ctx, func(tx Stores) error {
		ok, err := tx.Playlists.Update(ctx, p)
		if err != nil {
			return internal("failed to update playlist", err)
		}
		if !ok {
			return notFound("Playlist not found.")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.media.Delete(old)

	resp := s.mapper.Playlist(*p)
	return &resp, nil
}

func (s *PlaylistService) Delete(ctx context.Context, id, requesterID string) error {
	p, err := requireOwner(ctx, s.loader(requesterID), id, requesterID, "Playlist")
	if err != nil {
		return err
	}
	err = s.db.InTx(ctx, func(tx Stores) error {
		ok, err := tx.Playlists.Delete(ctx, id)
		if err != nil {
			return internal("failed to delete playlist", err)
		}
		if !ok {
			return notFound("Playlist not found.")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.media.Delete(p.CoverPath)
	s.logger.Info("playlist deleted", "playlist", id, "user", requesterID)
	return nil
}

// --- Membership ---

// AddSong puts a song into a playlist owned by requesterID.
func (s *PlaylistService) AddSong(ctx context.Context, playlistID, songID, requesterID string) error {
	return s.db.InTx(ctx, func(tx Stores) error {
		p, err := tx.Playlists.GetByID(ctx, playlistID, "")
		if err != nil {
			return loadErr(err, "Playlist")
		}
		found, err := tx.Songs.Exists(ctx, songID)
		if err != nil {
			return internal("failed to load song", err)
		}
		if !found {
			return notFound("Song not found.")
		}
		if p.UserID != requesterID {
			return unauthorized("You are not the owner of this playlist.")
		}

		present, err := tx.Playlists.HasSong(ctx, playlistID, songID)
		if err != nil {
			return internal("failed to check playlist membership", err)
		}
		if present {
			return conflict("Song is already in the playlist.")
		}

		now := time.Now().UTC()
		if err := tx.Playlists.AddSong(ctx, playlistID, songID, now); err != nil {
			return writeErr(err, "add song to playlist", "Song is already in the playlist.")
		}
		if err := tx.Playlists.Touch(ctx, playlistID, now); err != nil {
			return internal("failed to update playlist", err)
		}
		return nil
	})
}

// RemoveSong takes a song out of a playlist owned by requesterID.
func (s *PlaylistService) RemoveSong(ctx context.Context, playlistID, songID, requesterID string) error {
	return s.db.InTx(ctx, func(tx Stores) error {
		p, err := tx.Playlists.GetByID(ctx, playlistID, "")
		if err != nil {
			return loadErr(err, "Playlist")
		}
		if p.UserID != requesterID {
			return unauthorized("You are not the owner of this playlist.")
		}

		removed, err := tx.Playlists.RemoveSong(ctx, playlistID, songID)
		if err != nil {
			return internal("failed to remove song from playlist", err)
		}
		if !removed {
			return notFound("Song is not in the playlist.")
		}
		if err := tx.Playlists.Touch(ctx, playlistID, time.Now().UTC()); err != nil {
			return internal("failed to update playlist", err)
		}
		return nil
	})
}

// ListSongs returns the playlist's songs in the order they were added.
func (s *PlaylistService) ListSongs(ctx context.Context, playlistID, requesterID string) ([]SongResponse, error) {
	found, err := s.db.Playlists.Exists(ctx, playlistID)
	if err != nil {
		return nil, internal("failed to load playlist", err)
	}
	if !found {
		return nil, notFound("Playlist not found.")
	}
	songs, err := s.db.Songs.Query(ctx, SongQueryOptions{UserID: requesterID, PlaylistID: playlistID})
	if err != nil {
		return nil, internal("failed to list playlist songs", err)
	}
	return s.mapper.Songs(songs), nil
}

func (s *PlaylistService) CoverPath(ctx context.Context, id string) (string, error) {
	p, err := s.db.Playlists.GetByID(ctx, id, "")
	if err != nil {
		return "", loadErr(err, "Playlist")
	}
	if !fileExists(p.CoverPath) {
		return s.media.DefaultCoverPath(), nil
	}
	return p.CoverPath, nil
}

func (s *PlaylistService) loader(requesterID string) func(context.Context, string) (*Playlist, error) {
	return func(ctx context.Context, id string) (*Playlist, error) {
		return s.db.Playlists.GetByID(ctx, id, requesterID)
	}
}
