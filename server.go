package main

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

// API holds the services behind the HTTP handlers.
type API struct {
	db            *Database
	auth          *AuthService
	users         *UserService
	songs         *SongService
	playlists     *PlaylistService
	songLikes     *LikeService
	playlistLikes *LikeService
	search        *SearchService
	limiter       *ipRateLimiter
	logger        *log.Logger
}

// NewAPI wires stores, media and services from cfg.
func NewAPI(cfg *Config, db *Database, media *MediaStore, logger *log.Logger) *API {
	mapper := NewMapper(cfg.Location())
	api := &API{
		db:            db,
		auth:          NewAuthService(db, cfg.Auth),
		users:         NewUserService(db, media, mapper, cfg.Auth, logger),
		songs:         NewSongService(db, media, mapper, logger),
		playlists:     NewPlaylistService(db, media, mapper, logger),
		songLikes:     NewLikeService(db, songLikes),
		playlistLikes: NewLikeService(db, playlistLikes),
		search:        NewSearchService(db, mapper, cfg.Search),
		logger:        logger.With("component", "http"),
	}
	if cfg.Server.AuthRateLimit > 0 {
		api.limiter = newIPRateLimiter(cfg.Server.AuthRateLimit)
	}
	return api
}

// Router builds the gin engine with every route registered.
func (a *API) Router(maxUploadMB int) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), loggingMiddleware(a.logger))
	if maxUploadMB > 0 {
		r.MaxMultipartMemory = int64(maxUploadMB) << 20
	}

	r.GET("/healthz", a.healthz)

	api := r.Group("/api")

	api.POST("/auth/login", a.RateLimit(), a.loginUser)

	users := api.Group("/users")
	{
		users.POST("/register", a.RateLimit(), a.registerUser)
		users.GET("", a.AuthMiddleware(), a.getUsers)
		users.GET("/me", a.AuthMiddleware(), a.getCurrentUser)
		users.DELETE("", a.AuthMiddleware(), a.deleteCurrentUser)
	}

	songs := api.Group("/songs")
	{
		songs.GET("", a.OptionalAuth(), a.getSongs)
		songs.GET("/liked", a.AuthMiddleware(), a.getLikedSongs)
		songs.GET("/:id", a.OptionalAuth(), a.getSong)
		songs.GET("/:id/stream", a.streamSong)
		songs.GET("/:id/cover", a.getSongCover)

		owned := songs.Group("", a.AuthMiddleware())
		owned.POST("", a.uploadSong)
		owned.PUT("/:id", a.updateSong)
		owned.PUT("/:id/cover/remove", a.removeSongCover)
		owned.DELETE("/:id", a.deleteSong)
		owned.POST("/:id/like", a.likeSong)
		owned.POST("/:id/dislike", a.dislikeSong)
	}

	playlists := api.Group("/playlists")
	{
		playlists.GET("", a.AuthMiddleware(), a.getPlaylists)
		playlists.GET("/liked", a.AuthMiddleware(), a.getLikedPlaylists)
		playlists.GET("/:id", a.OptionalAuth(), a.getPlaylist)
		playlists.GET("/:id/cover", a.getPlaylistCover)
		playlists.GET("/:id/songs", a.OptionalAuth(), a.getPlaylistSongs)

		owned := playlists.Group("", a.AuthMiddleware())
		owned.POST("", a.createPlaylist)
		owned.PUT("/:id", a.updatePlaylist)
		owned.PUT("/:id/cover/remove", a.removePlaylistCover)
		owned.DELETE("/:id", a.deletePlaylist)
		owned.POST("/:id/like", a.likePlaylist)
		owned.POST("/:id/dislike", a.dislikePlaylist)
		owned.POST("/:id/songs/:songId", a.addSongToPlaylist)
		owned.DELETE("/:id/songs/:songId", a.removeSongFromPlaylist)
	}

	api.GET("/search", a.OptionalAuth(), a.searchLibrary)

	return r
}

func (a *API) healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := a.db.Ping(ctx); err != nil {
		a.logger.Error("health check failed", "err", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
