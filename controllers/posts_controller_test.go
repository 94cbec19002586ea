package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"Postline/cache"
	"Postline/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func clearIndexCache(t *testing.T) {
	t.Helper()
	if err := cache.DeleteByPrefix(context.Background(), "index:page:"); err != nil {
		t.Fatalf("Failed to clear cache: %v", err)
	}
}

func indexItems(t *testing.T, r *gin.Engine, path string) []interface{} {
	t.Helper()

	req, _ := http.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Error unmarshalling response body: %v", err)
	}
	pageObj, ok := body["page_obj"].(map[string]interface{})
	if !ok {
		t.Fatalf("Missing page_obj in response: %s", w.Body.String())
	}
	items, _ := pageObj["items"].([]interface{})
	return items
}

func TestIndexOrdersNewestFirst(t *testing.T) {
	clearIndexCache(t)
	server := newTestServer(t)
	alice := mustCreateUser(t, server.DB, "alice")

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	mustCreatePost(t, server.DB, alice.ID, "older", base)
	mustCreatePost(t, server.DB, alice.ID, "newer", base.Add(time.Hour))

	r := gin.New()
	r.GET("/", server.Index)

	items := indexItems(t, r, "/")
	assert.Equal(t, 2, len(items))
	assert.Equal(t, "newer", items[0].(map[string]interface{})["text"])
	assert.Equal(t, "older", items[1].(map[string]interface{})["text"])
}

func TestIndexPaginatesAtTen(t *testing.T) {
	clearIndexCache(t)
	server := newTestServer(t)
	alice := mustCreateUser(t, server.DB, "alice")

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 13; i++ {
		mustCreatePost(t, server.DB, alice.ID, fmt.Sprintf("post %d", i), base.Add(time.Duration(i)*time.Minute))
	}

	r := gin.New()
	r.GET("/", server.Index)

	first := indexItems(t, r, "/")
	assert.Equal(t, 10, len(first))
	// Newest post leads the first page
	assert.Equal(t, "post 12", first[0].(map[string]interface{})["text"])

	second := indexItems(t, r, "/?page=2")
	assert.Equal(t, 3, len(second))

	// A page number past the end clamps to the last page
	clamped := indexItems(t, r, "/?page=99")
	assert.Equal(t, 3, len(clamped))

	// Garbage collapses to page one
	garbage := indexItems(t, r, "/?page=abc")
	assert.Equal(t, 10, len(garbage))
}

func TestIndexServesStaleListingUntilExpiry(t *testing.T) {
	clearIndexCache(t)
	server := newTestServer(t)
	alice := mustCreateUser(t, server.DB, "alice")

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	mustCreatePost(t, server.DB, alice.ID, "first", base)

	r := gin.New()
	r.GET("/", server.Index)

	// Prime the cache
	items := indexItems(t, r, "/")
	assert.Equal(t, 1, len(items))

	// A new post does not invalidate the cached page
	mustCreatePost(t, server.DB, alice.ID, "second", base.Add(time.Hour))
	items = indexItems(t, r, "/")
	assert.Equal(t, 1, len(items), "cached listing must stay stale until the TTL lapses")

	// Once the entry is gone the listing is rebuilt from the database
	assert.NoError(t, cache.Delete(context.Background(), "index:page:1"))
	items = indexItems(t, r, "/")
	assert.Equal(t, 2, len(items))
	assert.Equal(t, "second", items[0].(map[string]interface{})["text"])
}

func TestIndexCachesUnderClampedPageNumber(t *testing.T) {
	clearIndexCache(t)
	server := newTestServer(t)
	alice := mustCreateUser(t, server.DB, "alice")
	mustCreatePost(t, server.DB, alice.ID, "only post", time.Now())

	r := gin.New()
	r.GET("/", server.Index)

	// A page far past the end serves the clamped last page
	items := indexItems(t, r, "/?page=999")
	assert.Equal(t, 1, len(items))

	// The entry landed on the clamped key, not one per requested value
	ctx := context.Background()
	val, err := cache.Get(ctx, "index:page:999")
	assert.NoError(t, err)
	assert.Equal(t, "", val)

	val, err = cache.Get(ctx, "index:page:1")
	assert.NoError(t, err)
	assert.NotEqual(t, "", val)
}

func TestCreatePostAndDetail(t *testing.T) {
	server := newTestServer(t)
	alice := mustCreateUser(t, server.DB, "alice")

	group := models.Group{Title: "Travel", Slug: "travel"}
	assert.NoError(t, server.DB.Create(&group).Error)

	r := gin.New()
	r.POST("/posts/", authMiddlewareForTests(alice.ID, false), server.CreatePost)
	r.GET("/posts/:id/", server.PostDetail)

	payload, _ := json.Marshal(map[string]string{
		"text":  "a trip report",
		"group": "travel",
	})
	req, _ := http.NewRequest(http.MethodPost, "/posts/", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	created := body["response"].(map[string]interface{})
	assert.Equal(t, "a trip report", created["text"])
	assert.Equal(t, "alice", created["author"].(map[string]interface{})["username"])
	assert.Equal(t, "travel", created["group"].(map[string]interface{})["slug"])

	// The detail view resolves the public UUID too
	publicID := created["id"].(string)
	detailReq, _ := http.NewRequest(http.MethodGet, "/posts/"+publicID+"/", nil)
	detailW := httptest.NewRecorder()
	r.ServeHTTP(detailW, detailReq)

	assert.Equal(t, http.StatusOK, detailW.Code)
}

func TestCreatePostRequiresText(t *testing.T) {
	server := newTestServer(t)
	alice := mustCreateUser(t, server.DB, "alice")

	r := gin.New()
	r.POST("/posts/", authMiddlewareForTests(alice.ID, false), server.CreatePost)

	payload, _ := json.Marshal(map[string]string{"text": "   "})
	req, _ := http.NewRequest(http.MethodPost, "/posts/", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestUpdatePostByNonAuthorRedirects(t *testing.T) {
	server := newTestServer(t)
	alice := mustCreateUser(t, server.DB, "alice")
	bob := mustCreateUser(t, server.DB, "bob")

	post := mustCreatePost(t, server.DB, alice.ID, "alice writes", time.Now())

	r := gin.New()
	r.PUT("/posts/:id/", authMiddlewareForTests(bob.ID, false), server.UpdatePost)

	payload, _ := json.Marshal(map[string]string{"text": "hijacked"})
	req, _ := http.NewRequest(http.MethodPut, fmt.Sprintf("/posts/%d/", post.ID), bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, fmt.Sprintf("/posts/%d/", post.ID), w.Header().Get("Location"))

	var unchanged models.Post
	assert.NoError(t, server.DB.First(&unchanged, post.ID).Error)
	assert.Equal(t, "alice writes", unchanged.Text)
}

func TestDeletePostAuthorization(t *testing.T) {
	server := newTestServer(t)
	alice := mustCreateUser(t, server.DB, "alice")
	bob := mustCreateUser(t, server.DB, "bob")
	admin := mustCreateUser(t, server.DB, "admin")

	first := mustCreatePost(t, server.DB, alice.ID, "one", time.Now())
	second := mustCreatePost(t, server.DB, alice.ID, "two", time.Now())

	// Another user cannot delete
	r := gin.New()
	r.DELETE("/posts/:id/", authMiddlewareForTests(bob.ID, false), server.DeletePost)
	req, _ := http.NewRequest(http.MethodDelete, fmt.Sprintf("/posts/%d/", first.ID), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The author can
	authorRouter := gin.New()
	authorRouter.DELETE("/posts/:id/", authMiddlewareForTests(alice.ID, false), server.DeletePost)
	req, _ = http.NewRequest(http.MethodDelete, fmt.Sprintf("/posts/%d/", first.ID), nil)
	w = httptest.NewRecorder()
	authorRouter.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// So can an admin
	adminRouter := gin.New()
	adminRouter.DELETE("/posts/:id/", authMiddlewareForTests(admin.ID, true), server.DeletePost)
	req, _ = http.NewRequest(http.MethodDelete, fmt.Sprintf("/posts/%d/", second.ID), nil)
	w = httptest.NewRecorder()
	adminRouter.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var remaining int64
	server.DB.Model(&models.Post{}).Count(&remaining)
	assert.Equal(t, int64(0), remaining)
}
