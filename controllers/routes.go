package controllers

import (
	"Postline/middlewares"
)

func (s *Server) initializeRoutes() {

	loginRequired := middlewares.LoginRequiredMiddleware(s.DB)
	tokenAuth := middlewares.TokenAuthMiddleware(s.DB)

	// Listing pages. The home index is the only cached rendering.
	s.Router.GET("/", s.Index)
	s.Router.GET("/group/", s.GetGroups)
	s.Router.GET("/group/:slug/", s.GroupPosts)
	s.Router.GET("/profile/:username/", s.Profile)

	// Follow graph. Page-style routes: anonymous users are redirected to
	// login with a `next` continuation instead of getting a 401.
	s.Router.GET("/follow/", loginRequired, s.FollowIndex)
	s.Router.POST("/profile/:username/follow/", loginRequired, s.ProfileFollow)
	s.Router.POST("/profile/:username/unfollow/", loginRequired, s.ProfileUnfollow)

	// Posts and comments
	s.Router.GET("/posts/:id/", s.PostDetail)
	s.Router.POST("/posts/", tokenAuth, s.CreatePost)
	s.Router.PUT("/posts/:id/", tokenAuth, s.UpdatePost)
	s.Router.DELETE("/posts/:id/", tokenAuth, s.DeletePost)
	s.Router.POST("/posts/:id/image/", tokenAuth, s.UploadPostImage)
	s.Router.POST("/posts/:id/comment/", loginRequired, s.AddComment)
	s.Router.DELETE("/comments/:id/", tokenAuth, s.DeleteComment)

	// Groups are created by admins only
	s.Router.POST("/group/", tokenAuth, s.CreateGroup)
	s.Router.DELETE("/group/:slug/", tokenAuth, s.DeleteGroup)

	// Auth
	s.Router.POST("/auth/signup/", s.CreateUser)
	s.Router.POST("/auth/login/", middlewares.LoginRateLimitMiddleware(), s.Login)
	s.Router.POST("/auth/password/forgot/", middlewares.LoginRateLimitMiddleware(), s.ForgotPassword)
	s.Router.POST("/auth/password/reset/", middlewares.LoginRateLimitMiddleware(), s.ResetPassword)

	// Users
	s.Router.GET("/users/", s.GetUsers)
	s.Router.GET("/users/:id/", s.GetUser)
	s.Router.PUT("/users/:id/", tokenAuth, s.UpdateUser)
	s.Router.PUT("/users/:id/avatar/", tokenAuth, s.UpdateAvatar)
	s.Router.DELETE("/users/:id/", tokenAuth, s.DeleteUser)
}
