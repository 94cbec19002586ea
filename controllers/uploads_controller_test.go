package controllers_test

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// pngBytes is a minimal payload that sniffs as image/png.
func pngBytes() []byte {
	header := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	return append(header, bytes.Repeat([]byte{0}, 64)...)
}

func multipartBody(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("Error creating form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("Error writing form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Error closing multipart writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func TestUploadPostImageRejectsNonImage(t *testing.T) {
	server := newTestServer(t)
	alice := mustCreateUser(t, server.DB, "alice")
	post := mustCreatePost(t, server.DB, alice.ID, "illustrated", time.Now())

	r := gin.New()
	r.POST("/posts/:id/image/", authMiddlewareForTests(alice.ID, false), server.UploadPostImage)

	body, contentType := multipartBody(t, "notes.txt", []byte("plain text, not an image"))
	req, _ := http.NewRequest(http.MethodPost, fmt.Sprintf("/posts/%d/image/", post.ID), body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Not an image")
}

func TestUploadPostImageAcceptsFullPNGRead(t *testing.T) {
	// S3_BUCKET unset: a valid image must get past the read and sniff
	// checks and fail only at the bucket configuration step.
	t.Setenv("S3_BUCKET", "")

	server := newTestServer(t)
	alice := mustCreateUser(t, server.DB, "alice")
	post := mustCreatePost(t, server.DB, alice.ID, "illustrated", time.Now())

	r := gin.New()
	r.POST("/posts/:id/image/", authMiddlewareForTests(alice.ID, false), server.UploadPostImage)

	body, contentType := multipartBody(t, "photo.png", pngBytes())
	req, _ := http.NewRequest(http.MethodPost, fmt.Sprintf("/posts/%d/image/", post.ID), body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Server configuration error")
}

func TestUploadPostImageAuthorOnly(t *testing.T) {
	server := newTestServer(t)
	alice := mustCreateUser(t, server.DB, "alice")
	bob := mustCreateUser(t, server.DB, "bob")
	post := mustCreatePost(t, server.DB, alice.ID, "illustrated", time.Now())

	r := gin.New()
	r.POST("/posts/:id/image/", authMiddlewareForTests(bob.ID, false), server.UploadPostImage)

	body, contentType := multipartBody(t, "photo.png", pngBytes())
	req, _ := http.NewRequest(http.MethodPost, fmt.Sprintf("/posts/%d/image/", post.ID), body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
