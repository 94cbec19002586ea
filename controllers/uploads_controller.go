package controllers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"Postline/models"
	"Postline/utils/fileformat"
	"Postline/utils/httpctx"

	aws2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
)

const maxUploadBytes = 512_000

// UpdateAvatar allows a user to update their avatar image
func (server *Server) UpdateAvatar(c *gin.Context) {
	uid, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}
	tokenID, ok := httpctx.CurrentUserID(c)
	if !ok || tokenID != uint(uid) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	buf, fileType, filePath, ok := readUploadedImage(c)
	if !ok {
		return
	}

	key := "UserProfilePics/" + filePath
	fullURL, ok := uploadToBucket(c, key, buf, fileType)
	if !ok {
		return
	}

	user := models.User{AvatarPath: filePath}
	updatedUser, err := user.UpdateAUserAvatar(server.DB, uint(uid))
	if err != nil {
		log.Printf("DB update failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot save image, please try again later"})
		return
	}
	updatedUser.AvatarPath = fullURL

	c.JSON(http.StatusOK, gin.H{
		"status":   http.StatusOK,
		"response": userProfileResponse(updatedUser),
	})
}

// UploadPostImage attaches an illustration to a post. Author only.
func (server *Server) UploadPostImage(c *gin.Context) {
	uid, ok := httpctx.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	post, err := resolvePostByIdentifier(server.DB, c.Param("id"))
	if err != nil {
		respondPostLookupError(c, err)
		return
	}
	if post.AuthorID != uid {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	buf, fileType, filePath, ok := readUploadedImage(c)
	if !ok {
		return
	}

	key := "PostPics/" + filePath
	fullURL, ok := uploadToBucket(c, key, buf, fileType)
	if !ok {
		return
	}

	updated, err := post.UpdatePostImage(server.DB, post.ID, filePath)
	if err != nil {
		log.Printf("DB update failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot save image, please try again later"})
		return
	}
	updated.ImagePath = fullURL

	c.JSON(http.StatusOK, gin.H{
		"status":   http.StatusOK,
		"response": toPostResponse(updated),
	})
}

// readUploadedImage pulls the multipart "file" field, enforces the size cap
// and rejects anything that does not sniff as an image. On failure it has
// already written the response.
func readUploadedImage(c *gin.Context) ([]byte, string, string, bool) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file"})
		return nil, "", "", false
	}
	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot open file"})
		return nil, "", "", false
	}
	defer f.Close()

	size := file.Size
	if size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File too large (<500KB)"})
		return nil, "", "", false
	}

	// ReadFull so a short read cannot truncate the upload or feed
	// DetectContentType a partial prefix
	buf := make([]byte, size)
	if _, err := io.ReadFull(f, buf); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read file"})
		return nil, "", "", false
	}
	fileType := http.DetectContentType(buf)
	if !strings.HasPrefix(fileType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Not an image"})
		return nil, "", "", false
	}

	return buf, fileType, fileformat.UniqueFormat(file.Filename), true
}

// uploadToBucket pushes the bytes to S3 and returns the public URL. On
// failure it has already written the response.
func uploadToBucket(c *gin.Context, key string, buf []byte, fileType string) (string, bool) {
	rawBucket := os.Getenv("S3_BUCKET")
	bucketName := strings.SplitN(rawBucket, "/", 2)[0]
	if bucketName == "" {
		log.Printf("S3_BUCKET env var is empty or invalid: '%s'", rawBucket)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server configuration error"})
		return "", false
	}

	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-2"
	}
	cfg, err := config.LoadDefaultConfig(
		context.TODO(),
		config.WithRegion(region),
	)
	if err != nil {
		log.Printf("AWS config load error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "AWS configuration error"})
		return "", false
	}

	s3Client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	_, err = s3Client.PutObject(context.TODO(), &s3.PutObjectInput{
		Bucket:        aws2.String(bucketName),
		Key:           aws2.String(key),
		Body:          bytes.NewReader(buf),
		ContentLength: aws2.Int64(int64(len(buf))),
		ContentType:   aws2.String(fileType),
	})
	if err != nil {
		log.Printf("S3 upload failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload image"})
		return "", false
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucketName, region, key), true
}
