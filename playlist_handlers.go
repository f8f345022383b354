// Suggested path: music-stream-api/playlist_handlers.go
package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// --- Playlist Handlers (JSON API) ---

func bindPlaylistInput(c *gin.Context) (PlaylistInput, error) {
	var form struct {
		Name string `form:"name" json:"name"`
	}
	if err := c.ShouldBind(&form); err != nil {
		return PlaylistInput{}, badRequest("Invalid playlist form.")
	}
	cover, err := optionalFormFile(c, "cover_image_file")
	if err != nil {
		return PlaylistInput{}, err
	}
	return PlaylistInput{Name: form.Name, Cover: cover}, nil
}

func (a *API) getPlaylists(c *gin.Context) {
	playlists, err := a.playlists.List(c.Request.Context(), requesterID(c))
	if err != nil {
		respondError(c, a.logger, err)
		return
	}
	c.JSON(http.StatusOK, playlists)
}

func (a *API) getLikedPlaylists(c *gin.Context) {
	playlists, err := a.playlists.Liked(c.Request.Context(), requesterID(c))
	if err != nil {
		respondError(c, a.logger, err)
		return
	}
	c.JSON(http.StatusOK, playlists)
}

func (a *API) getPlaylist(c *gin.Context) {
	id, err := pathID(c, "id", "Playlist")
	if err != nil {
		respondError(c, a.logger, err)
		return
	}
	p, err := a.playlists.Get(c.Request.Context(), id, requesterID(c))
	if err != nil {
		respondError(c, a.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (a *API) createPlaylist(c *gin.Context) {
	in, err := bindPlaylistInput(c)
	if err != nil {
		respondError(c, a.logger, err)
		return
	}
	p, err := a.playlists.Create(c.Request.Context(), in, requesterID(c))
	if err != nil {
		respondError(c, a.logger, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (a *API) updatePlaylist(c *gin.Context) {
	id, err := pathID(c, "id", "Playlist")
	if err != nil {
		respondError(c, a.logger, err)
		return
	}
	in, err := bindPlaylistInput(c)
	if err != nil {
		respondError(c, a.logger, err)
		return
	}
	p, err := a.playlists.Update(c.Request.Context(), id, in, requesterID(c))
	if err != nil {
		respondError(c, a.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (a *API) removePlaylistCover(c *gin.Context) {
	id, err := pathID(c, "id", "Playlist")
	if err != nil {
		respondError(c, a.logger, err)
		return
	}
	p, err := a.playlists.RemoveCover(c.Request.Context(), id, requesterID(c))
	if err != nil {
		respondError(c, a.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (a *API) deletePlaylist(c *gin.Context) {
	id, err := pathID(c, "id", "Playlist")
	if err != nil {
		respondError(c, a.logger, err)
		return
	}
	if err := a.playlists.Delete(c.Request.Context(), id, requesterID(c)); err != nil {
		respondError(c, a.logger, err)
		return
	}
	respondMessage(c, http.StatusOK, "Playlist was successfully deleted.")
}

func (a *API) getPlaylistCover(c *gin.Context) {
	id, err := pathID(c, "id", "Playlist")
	if err != nil {
		respondError(c, a.logger, err)
		return
	}
	path, err := a.playlists.CoverPath(c.Request.Context(), id)
	if err != nil {
		respondError(c, a.logger, err)
		return
	}
	a.serveImage(c, path)
}

func (a *API) likePlaylist(c *gin.Context) {
	id, err := pathID(c, "id", "Playlist")
	if err != nil {
		respondError(c, a.logger, err)
		return
	}
	if err := a.playlistLikes.Like(c.Request.Context(), id, requesterID(c)); err != nil {
		respondError(c, a.logger, err)
		return
	}
	respondMessage(c, http.StatusOK, "Playlist was successfully liked.")
}

func (a *API) dislikePlaylist(c *gin.Context) {
	id, err := pathID(c, "id", "Playlist")
	if err != nil {
		respondError(c, a.logger, err)
		return
	}
	if err := a.playlistLikes.Dislike(c.Request.Context(), id, requesterID(c)); err != nil {
		respondError(c, a.logger, err)
		return
	}
	respondMessage(c, http.StatusOK, "Playlist was successfully disliked.")
}

// --- Membership ---

func (a *API) getPlaylistSongs(c *gin.Context) {
	id, err := pathID(c, "id", "Playlist")
	if err != nil {
		respondError(c, a.logger, err)
		return
	}
	songs, err := a.playlists.ListSongs(c.Request.Context(), id, requesterID(c))
	if err != nil {
		respondError(c, a.logger, err)
		return
	}
	c.JSON(http.StatusOK, songs)
}

func (a *API) addSongToPlaylist(c *gin.Context) {
	playlistID, err := pathID(c, "id", "Playlist")
	if err != nil {
		respondError(c, a.logger, err)
		return
	}
	songID, err := pathID(c, "songId", "Song")
	if err != nil {
		respondError(c, a.logger, err)
		return
	}
	if err := a.playlists.AddSong(c.Request.Context(), playlistID, songID, requesterID(c)); err != nil {
		respondError(c, a.logger, err)
		return
	}
	respondMessage(c, http.StatusOK, "Song was successfully added to the playlist.")
}

func (a *API) removeSongFromPlaylist(c *gin.Context) {
	playlistID, err := pathID(c, "id", "Playlist")
	if err != nil {
		respondError(c, a.logger, err)
		return
	}
	// Ownership is checked before membership, so the song id is not pre-validated.
	songID := c.Param("songId")
	if err := a.playlists.RemoveSong(c.Request.Context(), playlistID, songID, requesterID(c)); err != nil {
		respondError(c, a.logger, err)
		return
	}
	respondMessage(c, http.StatusOK, "Song was successfully removed from the playlist.")
}
