package http

import (
	"github.com/gin-gonic/gin"

	"gnosis-influencer/internal/ai"
	"gnosis-influencer/internal/app"
	"gnosis-influencer/internal/bootstrap"
	"gnosis-influencer/internal/client"
	"gnosis-influencer/internal/repository"
	"gnosis-influencer/internal/transport/http/handler"
	"gnosis-influencer/internal/transport/http/middleware"
)

func NewRouter(boot *bootstrap.App) *gin.Engine {
	gin.SetMode(boot.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), middleware.CorrelationID())

	healthHandler := handler.NewHealthHandler(boot)
	router.GET("/healthz", healthHandler.Check)

	services := boot.Config.Services
	personaClient := client.NewPersonaClient(services.ProfilesBaseURL, services.APIKey, boot.PersonaCache)
	chunkClient := client.NewChunkClient(services.QueriesBaseURL, services.APIKey)

	var searcher app.SimilaritySearcher
	if services.SearchMode == "rest" {
		searcher = client.NewRESTSearcher(services.QueriesBaseURL, services.APIKey)
	} else {
		searcher = client.NewGraphQLSearcher(services.GraphQLURL, services.APIKey)
	}

	replyService := app.NewReplyService(
		repository.NewConversationRepository(boot.MySQL),
		repository.NewMessageRepository(boot.MySQL),
		personaClient,
		chunkClient,
		searcher,
		ai.NewOpenAICompatibleClient(),
		boot.ReplyPublisher,
		ai.ChatConfig{
			BaseURL: boot.Config.LLM.BaseURL,
			APIKey:  boot.Config.LLM.APIKey,
			Model:   boot.Config.LLM.Model,
		},
		boot.Log,
	)
	replyHandler := handler.NewReplyHandler(replyService)

	api := router.Group("/api")
	api.Use(middleware.RequireAPIKey(boot.Config.Auth.APIKey))
	api.POST("/message/ai", replyHandler.PostAIMessage)

	return router
}
