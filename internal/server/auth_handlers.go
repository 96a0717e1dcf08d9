package server

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	sessionCookieName = "session"
	tokenIssuer       = "inkwell-api"

	// tokenAudienceSession marks long-lived session tokens carried in the cookie.
	tokenAudienceSession = "inkwell-client"
	// tokenAudienceExchange marks the short-lived custom token handed out at
	// registration, redeemable once for a session cookie.
	tokenAudienceExchange = "inkwell-session-exchange"

	sessionTTL  = 5 * 24 * time.Hour
	exchangeTTL = 10 * time.Minute
)

// Fixed registration failure messages. Anything unexpected collapses into the
// generic message so account probing stays uninformative.
const (
	msgDuplicateEmail  = "User with this email already exists."
	msgInvalidEmail    = "Invalid email address."
	msgWeakPassword    = "Password too weak. Use a stronger password."
	msgRegisterGeneric = "Registration error. Please try again."
)

// Register handles POST /api/auth/register
func (s *Server) Register(c *fiber.Ctx) error {
	var req struct {
		Email       string `json:"email"`
		Password    string `json:"password"`
		DisplayName string `json:"displayName"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if req.Email == "" || req.Password == "" || req.DisplayName == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Email, password, and display name are required"))
	}

	if err := validation.ValidateEmail(req.Email); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(msgInvalidEmail))
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(msgWeakPassword))
	}
	if err := validation.ValidateDisplayName(req.DisplayName); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	// Check if user already exists
	if _, err := s.userRepo.GetByEmail(c.Context(), req.Email); err == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(msgDuplicateEmail))
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			&models.AppError{Code: "INTERNAL_ERROR", Message: msgRegisterGeneric, Err: err})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			&models.AppError{Code: "INTERNAL_ERROR", Message: msgRegisterGeneric, Err: err})
	}

	user := &models.User{
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Password:    string(hashedPassword),
	}
	if createErr := s.userRepo.Create(c.Context(), user); createErr != nil {
		// A concurrent registration may slip past the existence check; the
		// unique index reports it here.
		if isUniqueConstraintError(createErr) {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError(msgDuplicateEmail))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			&models.AppError{Code: "INTERNAL_ERROR", Message: msgRegisterGeneric, Err: createErr})
	}

	// The custom token is redeemed once against POST /api/auth/session to
	// establish the cookie. Registration itself never sets the cookie.
	customToken, err := s.generateToken(user.ID, user.DisplayName, tokenAudienceExchange, exchangeTTL)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			&models.AppError{Code: "INTERNAL_ERROR", Message: msgRegisterGeneric, Err: err})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"uid":         user.ID,
		"email":       user.Email,
		"displayName": user.DisplayName,
		"customToken": customToken,
	})
}

// SignIn handles POST /api/auth/signin
func (s *Server) SignIn(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userRepo.GetByEmail(c.Context(), req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid email or password"))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	if cmpErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); cmpErr != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid email or password"))
	}

	token, err := s.generateToken(user.ID, user.DisplayName, tokenAudienceSession, sessionTTL)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	s.setSessionCookie(c, token)

	return c.JSON(fiber.Map{
		"success": true,
		"user":    user.Public(),
	})
}

// SessionExchange handles POST /api/auth/session: it redeems the custom token
// from registration for the session cookie.
func (s *Server) SessionExchange(c *fiber.Ctx) error {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.BodyParser(&req); err != nil || req.Token == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Token is required"))
	}

	claims, err := s.parseToken(req.Token, tokenAudienceExchange)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized, err)
	}

	// Single use: the exchange token's jti is burned on redemption.
	if jti, ok := claims["jti"].(string); ok && jti != "" && s.redis != nil {
		burned, redisErr := s.redis.SetNX(c.Context(), "exchange:"+jti, "1", exchangeTTL).Result()
		if redisErr == nil && !burned {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Token has already been used"))
		}
	}

	sub, _ := claims["sub"].(string)
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid user ID in token"))
	}

	user, err := s.userRepo.GetByID(c.Context(), uint(userID))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Unknown user"))
	}

	token, err := s.generateToken(user.ID, user.DisplayName, tokenAudienceSession, sessionTTL)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	s.setSessionCookie(c, token)

	return c.JSON(fiber.Map{
		"success": true,
		"user":    user.Public(),
	})
}

// SessionInfo handles GET /api/auth/session
func (s *Server) SessionInfo(c *fiber.Ctx) error {
	userID, err := s.sessionUserID(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized, err)
	}

	user, err := s.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Unknown user"))
	}

	return c.JSON(fiber.Map{"user": user.Public()})
}

// SignOut handles POST /api/auth/signout
func (s *Server) SignOut(c *fiber.Ctx) error {
	// Revoke the current session token if one is presented. An absent or
	// invalid cookie still clears cleanly; sign-out is idempotent.
	if tokenString := c.Cookies(sessionCookieName); tokenString != "" && s.redis != nil {
		if claims, err := s.parseToken(tokenString, tokenAudienceSession); err == nil {
			if jti, ok := claims["jti"].(string); ok && jti != "" {
				ttl := sessionTTL
				if exp, ok := claims["exp"].(float64); ok {
					if remaining := time.Until(time.Unix(int64(exp), 0)); remaining > 0 {
						ttl = remaining
					}
				}
				s.redis.Set(c.Context(), "blacklist:"+jti, "1", ttl)
			}
		}
	}

	c.Cookie(&fiber.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})

	return c.JSON(fiber.Map{"success": true})
}

func (s *Server) setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Expires:  time.Now().Add(sessionTTL),
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}

// generateToken creates a JWT for the given user, audience, and lifetime
func (s *Server) generateToken(userID uint, displayName, audience string, ttl time.Duration) (string, error) {
	if s.config.JWTSecret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":         strconv.FormatUint(uint64(userID), 10), // Subject (user ID as string)
		"displayName": displayName,                            // Display name (cached in token)
		"iss":         tokenIssuer,                            // Issuer
		"aud":         audience,                               // Audience
		"exp":         now.Add(ttl).Unix(),                    // Expiration
		"iat":         now.Unix(),                             // Issued at
		"nbf":         now.Unix(),                             // Not before
		"jti":         s.generateJTI(),                        // JWT ID (unique identifier)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// generateJTI creates a unique JWT ID to prevent replay attacks
func (s *Server) generateJTI() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.New().String()[:8])
}
