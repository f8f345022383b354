// Suggested path: music-stream-api/music_handlers.go
package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// --- Song Handlers (JSON API) ---

type songForm struct {
	Title    string `form:"title"`
	Artist   string `form:"artist"`
	Duration int    `form:"duration"`
}

// bindSongInput reads the text fields and the optional audio and cover files.
func bindSongInput(c *gin.Context) (SongInput, error) {
	var form songForm
	if err := c.ShouldBind(&form); err != nil {
		return SongInput{}, badRequest("Invalid song form.")
	}
	audio, err := optionalFormFile(c, "audio_file")
	if err != nil {
		return SongInput{}, err
	}
	cover, err := optionalFormFile(c, "cover_image_file")
	if err != nil {
		return SongInput{}, err
	}
	return SongInput{
		Title:    form.Title,
		Artist:   form.Artist,
		Duration: form.Duration,
		Audio:    audio,
		Cover:    cover,
	}, nil
}

func (a *API) getSongs(c *gin.Context) {
	page, err := pageQuery(c)
	if err != nil {
		respondError(c, a.logger, err)
		return
	}
	songs, err := a.songs.List(c.Request.Context(), requesterID(c), page)
	if err != nil {
		respondError(c, a.logger, err)
		return
	}
	c.JSON(http.StatusOK, songs)
}

func (a *API) getLikedSongs(c *gin.Context) {
	songs, err := a.songs.Liked(c.Request.Context(), requesterID(c))
	if err != nil {
		respondError(c, a.logger, err)
		return
	}
	c.JSON(http.StatusOK, songs)
}

func (a *API) getSong(c *gin.Context) {
	id, err := pathID(c, "id", "Song")
	if err != nil {
		respondError(c, a.logger, err)
		return
	}
	song, err := a.songs.Get(c.Request.Context(), id, requesterID(c))
	if err != nil {
		respondError(c, a.logger, err)
		return
	}
	c.JSON(http.StatusOK, song)
}

func (a *API) uploadSong(c *gin.Context) {
	in, err := bindSongInput(c)
	if err != nil {
		respondError(c, a.logger, err)
		return
	}
	song, err := a.songs.Upload(c.Request.Context(), in, requesterID(c))
	if err != nil {
		respondError(c, a.logger, err)
		return
	}
	c.JSON(http.StatusCreated, song)
}

func (a *API) updateSong(c *gin.Context) {
	id, err := pathID(c, "id", "Song")
	if err != nil {
		respondError(c, a.logger, err)
		return
	}
	in, err := bindSongInput(c)
	if err != nil {
		respondError(c, a.logger, err)
		return
	}
	song, err := a.songs.Update(c.Request.Context(), id, in, requesterID(c))
	if err != nil {
		respondError(c, a.logger, err)
		return
	}
	c.JSON(http.StatusOK, song)
}

func (a *API) removeSongCover(c *gin.Context) {
	id, err := pathID(c, "id", "Song")
	if err != nil {
		respondError(c, a.logger, err)
		return
	}
	song, err := a.songs.RemoveCover(c.Request.Context(), id, requesterID(c))
	if err != nil {
		respondError(c, a.logger, err)
		return
	}
	c.JSON(http.StatusOK, song)
}

func (a *API) deleteSong(c *gin.Context) {
	id, err := pathID(c, "id", "Song")
	if err != nil {
		respondError(c, a.logger, err)
		return
	}
	if err := a.songs.Delete(c.Request.Context(), id, requesterID(c)); err != nil {
		respondError(c, a.logger, err)
		return
	}
	respondMessage(c, http.StatusOK, "Song was successfully deleted.")
}

func (a *API) likeSong(c *gin.Context) {
	id, err := pathID(c, "id", "Song")
	if err != nil {
		respondError(c, a.logger, err)
		return
	}
	if err := a.songLikes.Like(c.Request.Context(), id, requesterID(c)); err != nil {
		respondError(c, a.logger, err)
		return
	}
	respondMessage(c, http.StatusOK, "Song was successfully liked.")
}

func (a *API) dislikeSong(c *gin.Context) {
	id, err := pathID(c, "id", "Song")
	if err != nil {
		respondError(c, a.logger, err)
		return
	}
	if err := a.songLikes.Dislike(c.Request.Context(), id, requesterID(c)); err != nil {
		respondError(c, a.logger, err)
		return
	}
	respondMessage(c, http.StatusOK, "Song was successfully disliked.")
}

// streamSong serves the audio file; http.ServeContent handles Range requests.
func (a *API) streamSong(c *gin.Context) {
	id, err := pathID(c, "id", "Song")
	if err != nil {
		respondError(c, a.logger, err)
		return
	}
	path, err := a.songs.AudioPath(c.Request.Context(), id)
	if err != nil {
		respondError(c, a.logger, err)
		return
	}
	c.Header("Accept-Ranges", "bytes")
	c.File(path)
}

func (a *API) getSongCover(c *gin.Context) {
	id, err := pathID(c, "id", "Song")
	if err != nil {
		respondError(c, a.logger, err)
		return
	}
	path, err := a.songs.CoverPath(c.Request.Context(), id)
	if err != nil {
		respondError(c, a.logger, err)
		return
	}
	a.serveImage(c, path)
}

// coverSize parses the optional ?size= query; 0 means original size.
func coverSize(c *gin.Context) int {
	size, err := strconv.Atoi(c.Query("size"))
	if err != nil || size <= 0 {
		return 0
	}
	return min(size, 2048)
}
