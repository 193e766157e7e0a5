package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/TeeMe/round-service/internal/dto"
	"github.com/TeeMe/round-service/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (h *Handler) roundsCreate(c *gin.Context) {
	user := h.getCachedUserFromRequest(c)
	if user == nil {
		respondError(c, service.ErrUnauthenticated)
		return
	}

	var input dto.CreateRoundRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewBasicResponse(false, err.Error()))
		return
	}

	createdRound, err := h.services.Round.Create(c.Request.Context(), user.ID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, *createdRound)
}

func (h *Handler) roundsGetMy(c *gin.Context) {
	user := h.getCachedUserFromRequest(c)
	if user == nil {
		respondError(c, service.ErrUnauthenticated)
		return
	}

	limit, offset, err := limitAndOffset(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewBasicResponse(false, err.Error()))
		return
	}

	rounds, err := h.services.Round.FindAuthorRounds(c.Request.Context(), user.ID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, rounds)
}

func (h *Handler) roundsGetMyByCourse(c *gin.Context) {
	user := h.getCachedUserFromRequest(c)
	if user == nil {
		respondError(c, service.ErrUnauthenticated)
		return
	}

	groups, err := h.services.Feed.ByCourse(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, groups)
}

func (h *Handler) roundsGetByAuthor(c *gin.Context) {
	userIDString := strings.TrimSpace(c.Param("userID"))
	userID, err := uuid.Parse(userIDString)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewBasicResponse(false, err.Error()))
		return
	}

	limit, offset, err := limitAndOffset(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewBasicResponse(false, err.Error()))
		return
	}

	rounds, err := h.services.Round.FindAuthorRounds(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, rounds)
}

func (h *Handler) roundsGetByID(c *gin.Context) {
	user := h.getCachedUserFromRequest(c)

	roundID, err := roundIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewBasicResponse(false, errInvalidRoundID.Error()))
		return
	}

	round, err := h.services.Round.FindByID(c.Request.Context(), roundID)
	if err != nil {
		respondError(c, err)
		return
	}

	roundDto := dto.GetRound{
		Round: *round,
	}

	if user != nil {
		roundDto.IsLiked = h.services.Round.IsLiked(c.Request.Context(), round.ID, user.ID)
	}

	c.JSON(http.StatusOK, roundDto)
}

func (h *Handler) roundsDelete(c *gin.Context) {
	user := h.getCachedUserFromRequest(c)
	if user == nil {
		respondError(c, service.ErrUnauthenticated)
		return
	}

	roundID, err := roundIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewBasicResponse(false, errInvalidRoundID.Error()))
		return
	}

	if err := h.services.Round.Delete(c.Request.Context(), user.ID, roundID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewBasicResponse(true, "round deleted"))
}

func (h *Handler) roundsLike(c *gin.Context) {
	h.setLiked(c, false)
}

func (h *Handler) roundsUnlike(c *gin.Context) {
	h.setLiked(c, true)
}

func (h *Handler) setLiked(c *gin.Context, unlike bool) {
	user := h.getCachedUserFromRequest(c)
	if user == nil {
		respondError(c, service.ErrUnauthenticated)
		return
	}

	roundID, err := roundIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewBasicResponse(false, errInvalidRoundID.Error()))
		return
	}

	if err := h.services.Round.Like(c.Request.Context(), roundID, user.ID, unlike); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, nil)
}

func (h *Handler) roundsIsLiked(c *gin.Context) {
	user := h.getCachedUserFromRequest(c)
	if user == nil {
		respondError(c, service.ErrUnauthenticated)
		return
	}

	roundID, err := roundIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewBasicResponse(false, errInvalidRoundID.Error()))
		return
	}

	isLiked := h.services.Round.IsLiked(c.Request.Context(), roundID, user.ID)

	c.JSON(http.StatusOK, gin.H{"isLiked": isLiked})
}

func (h *Handler) roundsUpdateLikes(c *gin.Context) {
	user := h.getCachedUserFromRequest(c)
	if user == nil {
		respondError(c, service.ErrUnauthenticated)
		return
	}

	roundID, err := roundIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewBasicResponse(false, errInvalidRoundID.Error()))
		return
	}

	var input dto.UpdateLikesRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewBasicResponse(false, err.Error()))
		return
	}

	if err := h.services.Round.UpdateLikes(c.Request.Context(), user.ID, roundID, input.Likes); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, nil)
}

func (h *Handler) roundsGetLiked(c *gin.Context) {
	user := h.getCachedUserFromRequest(c)
	if user == nil {
		respondError(c, service.ErrUnauthenticated)
		return
	}

	limit, offset, err := limitAndOffset(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewBasicResponse(false, err.Error()))
		return
	}

	rounds, err := h.services.Round.FindUserLikes(c.Request.Context(), user.ID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, rounds)
}

func roundIDParam(c *gin.Context) (int64, error) {
	roundIDString := strings.TrimSpace(c.Param("roundID"))
	roundID, err := strconv.ParseInt(roundIDString, 10, 64)
	if err != nil {
		return 0, errInvalidRoundID
	}

	return roundID, nil
}

func limitAndOffset(c *gin.Context) (int, int, error) {
	limit, err0 := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, err1 := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err0 != nil || err1 != nil {
		return 0, 0, errLimitAndOffsetMustBeInt
	}

	return limit, offset, nil
}
