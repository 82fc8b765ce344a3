package handler

import (
	"net/http"
	"time"

	"railtrace/internal/middleware"
	"railtrace/internal/model"
	"railtrace/pkg/jwtutil"
	"railtrace/pkg/logger"
	"railtrace/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthHandler serves session management for every role-specific client
type AuthHandler struct {
	db          *gorm.DB
	tokenMaxAge time.Duration
}

func NewAuthHandler(db *gorm.DB, expirationHours int) *AuthHandler {
	return &AuthHandler{
		db:          db,
		tokenMaxAge: time.Duration(expirationHours) * time.Hour,
	}
}

// RegisterRequest defines the structure for account registration
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`

	// Manufacturer-specific fields
	CompanyName      string `json:"company_name,omitempty"`
	LicenseNumber    string `json:"license_number,omitempty"`
	Address          string `json:"address,omitempty"`
	RegistrationDate string `json:"registration_date,omitempty"`

	// Employee-specific fields
	EmployeeID  *string `json:"employee_id,omitempty"`
	Department  *string `json:"department,omitempty"`
	RailwayZone *string `json:"railway_zone,omitempty"`
	Division    *string `json:"division,omitempty"`
}

// Register creates an account. Manufacturer accounts start PENDING and get a
// company profile row; railway employee accounts start ACTIVE.
func (h *AuthHandler) Register(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.AuthAttemptsCounter.Inc()

	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse registration request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Username == "" || req.Password == "" || req.Email == "" {
		prometheus.RecordAuthError("incomplete_registration")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username, email and password are required"})
	}

	validRole := false
	for _, role := range model.ValidRoles {
		if req.Role == role {
			validRole = true
			break
		}
	}
	if !validRole {
		prometheus.RecordAuthError("invalid_role")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown role"})
	}

	var count int64
	h.db.Model(&model.User{}).Where("username = ?", req.Username).Count(&count)
	if count > 0 {
		log.Warn("Username already exists", zap.String("username", req.Username))
		prometheus.RecordAuthError("username_already_exists")
		return c.JSON(http.StatusConflict, echo.Map{"error": "username already exists"})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		prometheus.RecordAuthError("password_hash_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	status := "ACTIVE"
	if req.Role == model.RoleManufacturer {
		// Manufacturers wait for approval before generating components
		status = "PENDING"
	}

	user := model.User{
		Username: req.Username,
		Email:    req.Email,
		Phone:    req.Phone,
		Role:     req.Role,
		Password: string(hashedPassword),
		Status:   status,
	}
	if req.Role != model.RoleManufacturer {
		user.EmployeeID = req.EmployeeID
		user.Department = req.Department
		user.RailwayZone = req.RailwayZone
		user.Division = req.Division
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		if req.Role == model.RoleManufacturer {
			registrationDate := time.Now().UTC()
			if req.RegistrationDate != "" {
				if parsed, err := time.Parse("2006-01-02", req.RegistrationDate); err == nil {
					registrationDate = parsed
				}
			}
			profile := model.Manufacturer{
				Username:         req.Username,
				CompanyName:      req.CompanyName,
				ContactEmail:     req.Email,
				Address:          req.Address,
				LicenseNumber:    req.LicenseNumber,
				RegistrationDate: registrationDate,
			}
			return tx.Create(&profile).Error
		}
		return nil
	})
	if err != nil {
		log.Error("Failed to create user", zap.Error(err))
		prometheus.RecordAuthError("user_creation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	log.Info("User registered",
		zap.String("username", user.Username),
		zap.String("role", user.Role))
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User registered successfully",
		"user": map[string]interface{}{
			"id":       user.ID,
			"username": user.Username,
			"role":     user.Role,
		},
	})
}

// LoginRequest defines the structure for credential login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Login verifies role-scoped credentials and issues a JWT, returned in the
// body for mobile clients and as an HttpOnly cookie for browsers
func (h *AuthHandler) Login(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.AuthAttemptsCounter.Inc()

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	var user model.User
	result := h.db.Where("username = ? AND role = ?", req.Username, req.Role).First(&user)
	if result.Error != nil {
		log.Warn("User not found", zap.String("username", req.Username), zap.String("role", req.Role))
		prometheus.RecordAuthError("user_not_found")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		log.Warn("Invalid password", zap.String("username", req.Username))
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	token, err := jwtutil.GenerateToken(user.Username, user.Role)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	c.SetCookie(&http.Cookie{
		Name:     "access_token",
		Value:    token,
		HttpOnly: true,
		MaxAge:   int(h.tokenMaxAge.Seconds()),
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
	})

	log.Info("User logged in",
		zap.String("username", user.Username),
		zap.String("role", user.Role))
	return c.JSON(http.StatusOK, echo.Map{
		"user": map[string]interface{}{
			"username": user.Username,
			"role":     user.Role,
		},
		"access_token": token,
		"token_type":   "bearer",
		"message":      "Login successful",
	})
}

// Me returns the authenticated caller's identity
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"username": middleware.UsernameFromContext(c),
		"role":     middleware.RoleFromContext(c),
	})
}

// Logout clears the browser session cookie
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     "access_token",
		Value:    "",
		HttpOnly: true,
		MaxAge:   -1,
		Path:     "/",
	})
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out successfully"})
}
