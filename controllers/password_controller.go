package controllers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"Postline/mailer"
	"Postline/models"

	"github.com/gin-gonic/gin"
)

// ForgotPassword records a reset token and mails the link. The response is
// the same whether or not the address exists, so the endpoint cannot be used
// to probe for accounts.
func (server *Server) ForgotPassword(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Unable to get request"})
		return
	}
	user := models.User{}
	if err := json.Unmarshal(body, &user); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Cannot unmarshal body"})
		return
	}

	user.Prepare()
	errorMessages := user.Validate("forgotpassword")
	if len(errorMessages) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"status": http.StatusUnprocessableEntity,
			"error":  errorMessages,
		})
		return
	}

	lookup := models.User{}
	err = server.DB.Model(models.User{}).Where("email = ?", user.Email).Take(&lookup).Error
	if err == nil {
		details := models.ResetPassword{Email: lookup.Email}
		details.Prepare()
		if _, err := details.SaveDetails(server.DB); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Please try again later"})
			return
		}
		if err := mailer.SendResetPassword(details.Email, details.Token); err != nil {
			log.Printf("reset mail to %s failed: %v", details.Email, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   http.StatusOK,
		"response": "If the account exists, a reset link has been sent",
	})
}

type resetPasswordInput struct {
	Token          string `json:"token"`
	NewPassword    string `json:"new_password"`
	RetypePassword string `json:"retype_password"`
}

// ResetPassword trades a mailed token for a new password. Tokens are single
// use; the record is removed once the password is rewritten.
func (server *Server) ResetPassword(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Unable to get request"})
		return
	}
	input := resetPasswordInput{}
	if err := json.Unmarshal(body, &input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Cannot unmarshal body"})
		return
	}

	if input.Token == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Required token"})
		return
	}
	if len(input.NewPassword) < 6 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Password should be at least 6 characters"})
		return
	}
	if input.NewPassword != input.RetypePassword {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Passwords do not match"})
		return
	}

	reset := models.ResetPassword{}
	details, err := reset.FindByToken(server.DB, input.Token)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid or expired token"})
		return
	}

	user := models.User{Email: details.Email, Password: input.NewPassword}
	if err := user.UpdatePassword(server.DB); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Please try again later"})
		return
	}

	if _, err := details.DeleteDetails(server.DB); err != nil {
		log.Printf("cleanup of reset token failed: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   http.StatusOK,
		"response": "Password updated, please log in",
	})
}
