// Suggested path: music-stream-api/user_handlers.go
package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// --- User Handlers (JSON API) ---

type credentials struct {
	Email    string `form:"email" json:"email" binding:"required,email"`
	Password string `form:"password" json:"password" binding:"required"`
}

func (a *API) loginUser(c *gin.Context) {
	var creds credentials
	if err := c.ShouldBind(&creds); err != nil {
		respondError(c, a.logger, badRequest("Email and password are required."))
		return
	}
	token, err := a.auth.Login(c.Request.Context(), creds.Email, creds.Password)
	if err != nil {
		respondError(c, a.logger, err)
		return
	}
	c.JSON(http.StatusOK, token)
}

func (a *API) registerUser(c *gin.Context) {
	var creds credentials
	if err := c.ShouldBind(&creds); err != nil {
		respondError(c, a.logger, badRequest("A valid email and a password are required."))
		return
	}
	user, err := a.users.Register(c.Request.Context(), creds.Email, creds.Password)
	if err != nil {
		respondError(c, a.logger, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (a *API) getUsers(c *gin.Context) {
	users, err := a.users.List(c.Request.Context())
	if err != nil {
		respondError(c, a.logger, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (a *API) getCurrentUser(c *gin.Context) {
	user, err := a.users.Get(c.Request.Context(), requesterID(c))
	if err != nil {
		respondError(c, a.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (a *API) deleteCurrentUser(c *gin.Context) {
	if err := a.users.Delete(c.Request.Context(), requesterID(c)); err != nil {
		respondError(c, a.logger, err)
		return
	}
	respondMessage(c, http.StatusOK, "User was successfully deleted.")
}
