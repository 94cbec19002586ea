package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupFollowDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}
	if err := db.AutoMigrate(&User{}, &Follow{}); err != nil {
		t.Fatalf("Failed to migrate schema: %v", err)
	}
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *User {
	t.Helper()

	user := User{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user %s: %v", username, err)
	}
	return &user
}

func TestFollowCreatesEdgeAndMovesCounters(t *testing.T) {
	db := setupFollowDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	follow := Follow{}
	created, err := follow.Follow(db, alice.ID, bob.ID)
	assert.NoError(t, err)
	assert.True(t, created)

	following, err := follow.IsFollowing(db, alice.ID, bob.ID)
	assert.NoError(t, err)
	assert.True(t, following)

	// The edge is directed; the reverse does not exist
	reverse, err := follow.IsFollowing(db, bob.ID, alice.ID)
	assert.NoError(t, err)
	assert.False(t, reverse)

	var aliceNow, bobNow User
	db.First(&aliceNow, alice.ID)
	db.First(&bobNow, bob.ID)
	assert.Equal(t, int64(1), aliceNow.FollowingCount)
	assert.Equal(t, int64(0), aliceNow.FollowersCount)
	assert.Equal(t, int64(1), bobNow.FollowersCount)
	assert.Equal(t, int64(0), bobNow.FollowingCount)
}

func TestFollowTwiceLeavesOneEdge(t *testing.T) {
	db := setupFollowDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	follow := Follow{}
	created, err := follow.Follow(db, alice.ID, bob.ID)
	assert.NoError(t, err)
	assert.True(t, created)

	created, err = follow.Follow(db, alice.ID, bob.ID)
	assert.NoError(t, err)
	assert.False(t, created)

	var edges int64
	db.Model(&Follow{}).Count(&edges)
	assert.Equal(t, int64(1), edges)

	// Counters moved exactly once
	var bobNow User
	db.First(&bobNow, bob.ID)
	assert.Equal(t, int64(1), bobNow.FollowersCount)
}

func TestSelfFollowIsRejected(t *testing.T) {
	db := setupFollowDB(t)
	alice := createTestUser(t, db, "alice")

	follow := Follow{}
	created, err := follow.Follow(db, alice.ID, alice.ID)
	assert.ErrorIs(t, err, ErrSelfFollow)
	assert.False(t, created)

	var edges int64
	db.Model(&Follow{}).Count(&edges)
	assert.Equal(t, int64(0), edges)
}

func TestUnfollowRemovesEdgeAndCounters(t *testing.T) {
	db := setupFollowDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	follow := Follow{}
	_, err := follow.Follow(db, alice.ID, bob.ID)
	assert.NoError(t, err)

	removed, err := follow.Unfollow(db, alice.ID, bob.ID)
	assert.NoError(t, err)
	assert.True(t, removed)

	following, _ := follow.IsFollowing(db, alice.ID, bob.ID)
	assert.False(t, following)

	var aliceNow, bobNow User
	db.First(&aliceNow, alice.ID)
	db.First(&bobNow, bob.ID)
	assert.Equal(t, int64(0), aliceNow.FollowingCount)
	assert.Equal(t, int64(0), bobNow.FollowersCount)
}

func TestUnfollowWithoutEdgeIsNoop(t *testing.T) {
	db := setupFollowDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	follow := Follow{}
	removed, err := follow.Unfollow(db, alice.ID, bob.ID)
	assert.NoError(t, err)
	assert.False(t, removed)

	// Counters stayed at zero instead of going negative
	var aliceNow, bobNow User
	db.First(&aliceNow, alice.ID)
	db.First(&bobNow, bob.ID)
	assert.Equal(t, int64(0), aliceNow.FollowingCount)
	assert.Equal(t, int64(0), bobNow.FollowersCount)
}

func TestDeleteUserFollowsCleansBothDirections(t *testing.T) {
	db := setupFollowDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	carol := createTestUser(t, db, "carol")

	follow := Follow{}
	// alice follows bob, carol follows alice
	_, err := follow.Follow(db, alice.ID, bob.ID)
	assert.NoError(t, err)
	_, err = follow.Follow(db, carol.ID, alice.ID)
	assert.NoError(t, err)

	err = db.Transaction(func(tx *gorm.DB) error {
		return follow.DeleteUserFollows(tx, alice.ID)
	})
	assert.NoError(t, err)

	var edges int64
	db.Model(&Follow{}).Count(&edges)
	assert.Equal(t, int64(0), edges)

	var bobNow, carolNow User
	db.First(&bobNow, bob.ID)
	db.First(&carolNow, carol.ID)
	assert.Equal(t, int64(0), bobNow.FollowersCount)
	assert.Equal(t, int64(0), carolNow.FollowingCount)
}
