package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/meethahouse/dessert-api/initializers"
	"github.com/meethahouse/dessert-api/logger"
	"github.com/meethahouse/dessert-api/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	msgInvalidInput          = "invalid input"
	msgInvalidCredentials    = "invalid email or password"
	msgFailedToGenerateToken = "failed to generate token"
)

func comparePasswords(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func generateJWT(email string, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user": email,
		"role": models.RoleAdmin,
		"iat":  now.Unix(),
		"exp":  now.Add(initializers.Cfg.TokenTTL).Unix(),
	})
	return token.SignedString([]byte(initializers.Cfg.JWTSecret))
}

// Login checks the single configured admin credential.
func Login(ctx *gin.Context) {
	var loginData models.LoginData
	if err := ctx.ShouldBindJSON(&loginData); err != nil {
		respondWithError(ctx, http.StatusBadRequest, msgInvalidInput, err)
		return
	}

	email := strings.ToLower(strings.TrimSpace(loginData.Email))
	if email != strings.ToLower(initializers.Cfg.AdminEmail) {
		sendErrorResponse(ctx, http.StatusUnauthorized, msgInvalidCredentials)
		return
	}
	if err := comparePasswords(initializers.Cfg.AdminPassHash, loginData.Password); err != nil {
		sendErrorResponse(ctx, http.StatusUnauthorized, msgInvalidCredentials)
		return
	}

	token, err := generateJWT(email, time.Now())
	if err != nil {
		logger.Log.Error("Failed to sign admin token", zap.Error(err))
		sendErrorResponse(ctx, http.StatusInternalServerError, msgFailedToGenerateToken)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, models.LoginResponse{
		User:  email,
		Role:  models.RoleAdmin,
		Token: token,
	})
}
