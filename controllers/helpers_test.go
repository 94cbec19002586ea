package controllers_test

import (
	"testing"
	"time"

	"Postline/controllers"
	"Postline/models"
	"Postline/utils/httpctx"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestServer wires a Server against a fresh in-memory SQLite database
// with the full schema migrated.
func newTestServer(t *testing.T) *controllers.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Post{},
		&models.Comment{},
		&models.Follow{},
		&models.ResetPassword{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate schema: %v", err)
	}

	return &controllers.Server{DB: db}
}

// authMiddlewareForTests stands in for the token middlewares and stamps the
// request with a fixed principal.
func authMiddlewareForTests(userID uint, isAdmin bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		httpctx.SetPrincipal(c, userID, isAdmin)
		c.Next()
	}
}

func mustCreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user %s: %v", username, err)
	}
	return &user
}

func mustCreatePost(t *testing.T, db *gorm.DB, authorID uint, text string, pubDate time.Time) *models.Post {
	t.Helper()

	post := models.Post{
		Text:     text,
		AuthorID: authorID,
		PubDate:  pubDate,
	}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("Failed to create post: %v", err)
	}
	return &post
}
