package controllers

import (
	"log"
	"net/http"
	"time"

	"github.com/AdityaCodess/FinStock-AI/config"
	"github.com/AdityaCodess/FinStock-AI/middleware"
	"github.com/AdityaCodess/FinStock-AI/models"
	"github.com/AdityaCodess/FinStock-AI/services/artifacts"
	"github.com/AdityaCodess/FinStock-AI/services/trainer"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// AdminController handles operator endpoints: login, artifact
// retraining, and artifact inspection.
type AdminController struct {
	db      *gorm.DB
	trainer *trainer.Trainer
	store   *artifacts.Store
}

// NewAdminController creates a new admin controller
func NewAdminController(db *gorm.DB, t *trainer.Trainer, store *artifacts.Store) *AdminController {
	return &AdminController{db: db, trainer: t, store: store}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates an admin user and issues a signed token
// POST /api/admin/login
func (ac *AdminController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
		return
	}

	ip := c.ClientIP()

	var admin models.AdminUser
	err := ac.db.Where("username = ? AND is_active = ?", req.Username, true).First(&admin).Error
	if err != nil || !admin.CheckPassword(req.Password) {
		middleware.RecordLoginAttempt(ip, false)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	middleware.RecordLoginAttempt(ip, true)

	now := time.Now()
	claims := middleware.AdminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   admin.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(24 * time.Hour)),
		},
		Role: admin.Role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(config.AppConfig.JWTSecret))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	lastLogin := now
	ac.db.Model(&admin).Update("last_login_at", &lastLogin)

	c.JSON(http.StatusOK, gin.H{
		"token":      signed,
		"expires_in": int((24 * time.Hour).Seconds()),
	})
}

// Train retrains artifacts for every active symbol
// POST /api/admin/train
func (ac *AdminController) Train(c *gin.Context) {
	if username, err := middleware.GetAdminFromContext(c); err == nil {
		log.Printf("Training run triggered by %s", username)
	}

	report, err := ac.trainer.TrainAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "report": report})
		return
	}
	c.JSON(http.StatusOK, report)
}

// Artifacts lists stored scalar artifacts for one symbol
// GET /api/admin/artifacts/:symbol
func (ac *AdminController) Artifacts(c *gin.Context) {
	symbol := c.Param("symbol")

	values, err := ac.store.List(symbol)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load artifacts"})
		return
	}
	if len(values) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No artifacts for symbol " + symbol})
		return
	}

	c.JSON(http.StatusOK, gin.H{"symbol": symbol, "artifacts": values})
}
