package user

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type UserController struct {
	userService UserServiceInterface
}

func NewUserController(userService UserServiceInterface) *UserController {
	return &UserController{
		userService: userService,
	}
}

// SetupRoutes mounts the auth routes on rg. Profile and verify sit behind requireAuth.
func (a *UserController) SetupRoutes(rg *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	rg.POST("/register", a.Register)
	rg.POST("/login", a.Login)
	rg.GET("/profile", requireAuth, a.Profile)
	rg.GET("/verify", requireAuth, a.Verify)
}

// Register handles user registration
func (a *UserController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	result, err := a.userService.Register(c.Request.Context(), req)
	if err != nil {
		a.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"token":   result.Token,
		"user":    result.User.Public(),
	})
}

// Login handles login by username or email and returns a JWT
func (a *UserController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	result, err := a.userService.Login(c.Request.Context(), req)
	if err != nil {
		a.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   result.Token,
		"user":    result.User.Public(),
	})
}

// Profile returns the authenticated user's profile
func (a *UserController) Profile(c *gin.Context) {
	u, err := CurrentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "User not authenticated"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": u.Profile()})
}

// Verify confirms the bearer token is valid
func (a *UserController) Verify(c *gin.Context) {
	u, err := CurrentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "User not authenticated"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"user":  u.Public(),
	})
}

func (a *UserController) respondError(c *gin.Context, err error) {
	var validationErr *ValidationError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"message": validationErr.Message})
	case errors.Is(err, ErrDuplicateUser):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Username or email is already registered"})
	case errors.Is(err, ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
	default:
		logrus.WithError(err).WithField("path", c.FullPath()).Error("Auth request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
	}
}
