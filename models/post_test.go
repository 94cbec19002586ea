package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupPostDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}
	if err := db.AutoMigrate(&User{}, &Group{}, &Post{}, &Comment{}, &Follow{}); err != nil {
		t.Fatalf("Failed to migrate schema: %v", err)
	}
	return db
}

func createTestPost(t *testing.T, db *gorm.DB, authorID uint, text string, pubDate time.Time) *Post {
	t.Helper()

	post := Post{
		Text:     text,
		AuthorID: authorID,
		PubDate:  pubDate,
	}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("Failed to create post: %v", err)
	}
	return &post
}

func TestFindAllPostsNewestFirst(t *testing.T) {
	db := setupPostDB(t)
	alice := createTestUser(t, db, "alice")

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	createTestPost(t, db, alice.ID, "first", base)
	createTestPost(t, db, alice.ID, "second", base.Add(time.Hour))
	createTestPost(t, db, alice.ID, "third", base.Add(2*time.Hour))

	post := Post{}
	posts, err := post.FindAllPosts(db)
	assert.NoError(t, err)
	assert.Equal(t, 3, len(*posts))
	assert.Equal(t, "third", (*posts)[0].Text)
	assert.Equal(t, "second", (*posts)[1].Text)
	assert.Equal(t, "first", (*posts)[2].Text)
}

func TestFindFeedPostsOnlyFollowedAuthors(t *testing.T) {
	db := setupPostDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	carol := createTestUser(t, db, "carol")

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	createTestPost(t, db, alice.ID, "mine", base)
	createTestPost(t, db, bob.ID, "followed old", base.Add(time.Hour))
	createTestPost(t, db, bob.ID, "followed new", base.Add(3*time.Hour))
	createTestPost(t, db, carol.ID, "not followed", base.Add(2*time.Hour))

	follow := Follow{}
	_, err := follow.Follow(db, alice.ID, bob.ID)
	assert.NoError(t, err)

	post := Post{}
	feed, err := post.FindFeedPosts(db, alice.ID)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(*feed))
	assert.Equal(t, "followed new", (*feed)[0].Text)
	assert.Equal(t, "followed old", (*feed)[1].Text)

	// Unfollowed viewers get an empty feed, not everyone's posts
	feed, err = post.FindFeedPosts(db, carol.ID)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(*feed))
}

func TestFeedUpdatesWhenFollowChanges(t *testing.T) {
	db := setupPostDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	createTestPost(t, db, bob.ID, "from bob", time.Now())

	follow := Follow{}
	post := Post{}

	feed, err := post.FindFeedPosts(db, alice.ID)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(*feed))

	_, err = follow.Follow(db, alice.ID, bob.ID)
	assert.NoError(t, err)

	feed, err = post.FindFeedPosts(db, alice.ID)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(*feed))

	_, err = follow.Unfollow(db, alice.ID, bob.ID)
	assert.NoError(t, err)

	feed, err = post.FindFeedPosts(db, alice.ID)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(*feed))
}

func TestUpdateAPostKeepsPubDate(t *testing.T) {
	db := setupPostDB(t)
	alice := createTestUser(t, db, "alice")

	pubDate := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	created := createTestPost(t, db, alice.ID, "original", pubDate)

	update := Post{ID: created.ID, Text: "edited", AuthorID: alice.ID}
	updated, err := update.UpdateAPost(db)
	assert.NoError(t, err)
	assert.Equal(t, "edited", updated.Text)
	assert.True(t, updated.PubDate.Equal(pubDate), "pub_date must survive edits")
}

func TestDeleteGroupNullifiesPosts(t *testing.T) {
	db := setupPostDB(t)
	alice := createTestUser(t, db, "alice")

	group := Group{Title: "Travel", Slug: "travel"}
	assert.NoError(t, db.Create(&group).Error)

	post := Post{
		Text:     "with group",
		AuthorID: alice.ID,
		GroupID:  &group.ID,
		PubDate:  time.Now(),
	}
	assert.NoError(t, db.Create(&post).Error)

	_, err := group.DeleteAGroup(db, group.ID)
	assert.NoError(t, err)

	var survivor Post
	assert.NoError(t, db.First(&survivor, post.ID).Error)
	assert.Nil(t, survivor.GroupID)

	var groups int64
	db.Model(&Group{}).Count(&groups)
	assert.Equal(t, int64(0), groups)
}

func TestDeleteAPostRemovesComments(t *testing.T) {
	db := setupPostDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	post := createTestPost(t, db, alice.ID, "commented", time.Now())
	comment := Comment{PostID: post.ID, AuthorID: bob.ID, Text: "nice"}
	assert.NoError(t, db.Create(&comment).Error)

	deleted, err := post.DeleteAPost(db, post.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var comments int64
	db.Model(&Comment{}).Where("post_id = ?", post.ID).Count(&comments)
	assert.Equal(t, int64(0), comments)
}

func TestDeleteUserPostsCascades(t *testing.T) {
	db := setupPostDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	alicePost := createTestPost(t, db, alice.ID, "alice writes", time.Now())
	bobPost := createTestPost(t, db, bob.ID, "bob writes", time.Now())

	comment := Comment{PostID: alicePost.ID, AuthorID: bob.ID, Text: "from bob"}
	assert.NoError(t, db.Create(&comment).Error)

	post := Post{}
	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := post.DeleteUserPosts(tx, alice.ID)
		return err
	})
	assert.NoError(t, err)

	var posts int64
	db.Model(&Post{}).Count(&posts)
	assert.Equal(t, int64(1), posts)

	var survivor Post
	assert.NoError(t, db.First(&survivor, bobPost.ID).Error)

	// Bob's comment under Alice's post went with the post
	var comments int64
	db.Model(&Comment{}).Count(&comments)
	assert.Equal(t, int64(0), comments)
}
