package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (a *API) searchLibrary(c *gin.Context) {
	results, err := a.search.Search(c.Request.Context(), c.Query("query"), requesterID(c))
	if err != nil {
		respondError(c, a.logger, err)
		return
	}
	c.JSON(http.StatusOK, results)
}
