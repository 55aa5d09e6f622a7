package api

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"syndicate-service/middleware"
	"syndicate-service/store"
	"syndicate-service/worker"
)

var articleStore *store.Store
var jetStream nats.JetStreamContext

// StartServer runs the admin API. Distribution itself happens in the
// background worker; the endpoints here only read state and emit events.
func StartServer(addr string, s *store.Store, js nats.JetStreamContext) error {
	router := gin.Default()
	router.Use(cors.Default())
	router.Use(middleware.Prometheus("syndicate-service"))

	articleStore = s
	jetStream = js

	// Health check routes
	router.GET("/", healthCheck)
	router.GET("/health", healthCheck)
	router.GET("/ready", readyCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	apiGroup := router.Group("/syndicate-api")
	{
		apiGroup.POST("/distribute/:id", triggerDistribute)
		apiGroup.GET("/stats", getStats)
	}

	log.Printf("Syndicate API is running at %s", addr)
	return router.Run(addr)
}

func healthCheck(c *gin.Context) {
	c.JSON(200, gin.H{"status": "healthy", "service": "syndicate-service"})
}

func readyCheck(c *gin.Context) {
	if err := articleStore.HealthCheck(); err != nil {
		c.JSON(503, gin.H{"status": "not ready", "error": err.Error()})
		return
	}
	c.JSON(200, gin.H{"status": "ready", "service": "syndicate-service"})
}

// triggerDistribute re-emits the published event for one article so an
// operator can replay its syndication manually.
func triggerDistribute(c *gin.Context) {
	id := c.Param("id")

	article, err := articleStore.GetByID(c.Request.Context(), id)
	if err != nil {
		log.Printf("[INFO] distribute trigger for unknown article %s: %v", id, err)
		c.JSON(404, gin.H{"error": "article not found", "id": id})
		return
	}
	if !article.Published {
		c.JSON(409, gin.H{"error": "article is not published", "id": id})
		return
	}

	if err := worker.PublishEvent(jetStream, *article); err != nil {
		log.Printf("Failed to publish event for article %s: %v", id, err)
		c.JSON(500, gin.H{"error": "failed to publish event", "details": err.Error()})
		return
	}

	c.JSON(202, gin.H{"message": "distribution queued", "id": id})
}

func getStats(c *gin.Context) {
	count, err := articleStore.CountPublished(c.Request.Context())
	if err != nil {
		c.JSON(500, gin.H{"error": "failed to count articles", "details": err.Error()})
		return
	}

	c.JSON(200, gin.H{
		"publishedArticles": count,
		"service":           "syndicate-service",
	})
}
