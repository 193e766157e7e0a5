package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) feedGlobal(c *gin.Context) {
	items, err := h.services.Feed.Global(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, items)
}
