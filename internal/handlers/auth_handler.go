package handlers

import (
	"errors"

	"organica/internal/middleware"
	"organica/internal/models"
	"organica/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthHandler handles HTTP requests for local accounts.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validator.New(),
		logger:      logger,
	}
}

// RegisterRoutes registers the authentication routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
	router.Get("/me", middleware.AuthRequired(h.authService), h.HandleMe)
}

// RegisterRequest represents the request body for registration.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// HandleRegister handles new user registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	user := &models.User{Username: req.Username, Email: req.Email, Password: req.Password}
	if err := h.authService.RegisterUser(c.UserContext(), user); err != nil {
		if errors.Is(err, services.ErrUsernameTaken) || errors.Is(err, services.ErrEmailTaken) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return writeError(c, h.logger, err, "Could not register user")
	}

	user.Password = ""
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user":    user,
	})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin handles user login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	token, err := h.authService.LoginUser(c.UserContext(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication failed",
			})
		}
		return writeError(c, h.logger, err, "Could not log in")
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
	})
}

// HandleMe returns the account behind the bearer token.
func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	user, err := h.authService.CurrentUser(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, services.ErrInvalidToken) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token"})
		}
		return writeError(c, h.logger, err, "Could not load account")
	}
	return c.JSON(fiber.Map{
		"id":    user.ID,
		"name":  user.Username,
		"email": user.Email,
	})
}
