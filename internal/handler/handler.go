package handler

import (
	"context"

	"github.com/TeeMe/round-service/internal/model"
	"github.com/TeeMe/round-service/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/spf13/viper"
)

type Handler struct {
	services *service.Service
}

func New(services *service.Service) *Handler {
	return &Handler{
		services: services,
	}
}

func (h *Handler) InitRoutes() *gin.Engine {
	r := gin.New()

	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{viper.GetString("client.origin")},
		AllowMethods: []string{"POST", "GET", "PATCH", "DELETE"},
		AllowCredentials: true,
	}))

	v1 := r.Group("/api/v1")
	{
		v1.GET("/feed", h.notRequiredAuthMiddleware, h.feedGlobal)

		rounds := v1.Group("/rounds")
		{
			rounds.POST("", h.authMiddleware, h.roundsCreate)
			rounds.GET("/my", h.authMiddleware, h.roundsGetMy)
			rounds.GET("/my/courses", h.authMiddleware, h.roundsGetMyByCourse)
			rounds.GET("/author/:userID", h.roundsGetByAuthor)
			rounds.GET("/liked", h.authMiddleware, h.roundsGetLiked)

			round := rounds.Group("/:roundID")
			{
				round.GET("", h.notRequiredAuthMiddleware, h.roundsGetByID)
				round.DELETE("", h.authMiddleware, h.roundsDelete)
				round.POST("/like", h.authMiddleware, h.roundsLike)
				round.DELETE("/unlike", h.authMiddleware, h.roundsUnlike)
				round.GET("/isLiked", h.authMiddleware, h.roundsIsLiked)
				round.PATCH("/likes", h.authMiddleware, h.roundsUpdateLikes)
			}
		}
	}

	return r
}

func (h *Handler) getUserDataFromClaims(ctx context.Context, claims jwt.MapClaims, accessToken string) (*model.CachedUser, error) {
	idString, ok := claims["id"].(string)
	if !ok {
		return nil, errNotAuthorized
	}
	id, err := uuid.Parse(idString)
	if err != nil {
		return nil, err
	}

	user, err := h.services.UserCache.CreateOrGet(ctx, id, accessToken)
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (h *Handler) getCachedUserFromRequest(c *gin.Context) *model.CachedUser {
	userReq, _ := c.Get("cached-user")

	user, ok := userReq.(model.CachedUser)
	if !ok {
		return nil
	}

	return &user
}
