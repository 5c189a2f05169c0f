package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/judiguard/judi_guard_server/config"
	"github.com/judiguard/judi_guard_server/internal/model/dto"
	"github.com/judiguard/judi_guard_server/internal/pkg/oauth"
	"github.com/judiguard/judi_guard_server/internal/pkg/response"
	"github.com/judiguard/judi_guard_server/internal/repository"
	"github.com/judiguard/judi_guard_server/internal/service"
	"github.com/judiguard/judi_guard_server/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupAuthHandler(t *testing.T) (*AuthHandler, *gorm.DB, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	userRepo := repository.NewUserRepository(db)
	resetRepo := repository.NewPasswordResetRepository(db)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	stateStore := oauth.NewStateStore(rdb)

	cfg := &config.Config{}
	cfg.Server.Mode = "release"
	cfg.JWT.Secret = "test-secret-key"
	cfg.JWT.ExpireHours = 24
	cfg.Frontend.BaseURL = "https://judiguard.app"

	authService := service.NewAuthService(userRepo, resetRepo, cfg, stateStore, nil)
	handler := NewAuthHandler(authService, cfg)

	cleanup := func() {
		rdb.Close()
		mr.Close()
		testutil.CleanupTestDB(t, db)
	}

	return handler, db, cleanup
}

func performRequest(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	return resp
}

func TestAuthHandler_Register_Success(t *testing.T) {
	handler, _, cleanup := setupAuthHandler(t)
	defer cleanup()

	router := gin.New()
	router.POST("/register", handler.Register)

	req := dto.RegisterRequest{
		Username: "testuser",
		Email:    "test@example.com",
		Password: "password123",
	}

	w := performRequest(router, "POST", "/register", req)
	resp := parseResponse(t, w)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeSuccess, resp.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.NotZero(t, data["user_id"])
}

func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	handler, db, cleanup := setupAuthHandler(t)
	defer cleanup()

	testutil.TestUser(t, db, testutil.WithEmail("taken@example.com"))

	router := gin.New()
	router.POST("/register", handler.Register)

	req := dto.RegisterRequest{
		Username: "freshname",
		Email:    "taken@example.com",
		Password: "password123",
	}

	w := performRequest(router, "POST", "/register", req)
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodeParamError, resp.Code)
}

func TestAuthHandler_Register_InvalidBody(t *testing.T) {
	handler, _, cleanup := setupAuthHandler(t)
	defer cleanup()

	router := gin.New()
	router.POST("/register", handler.Register)

	// password too short
	req := dto.RegisterRequest{
		Username: "testuser",
		Email:    "test@example.com",
		Password: "123",
	}

	w := performRequest(router, "POST", "/register", req)
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodeParamError, resp.Code)
}

// registerAndVerify walks the full register + verify-otp flow, fishing
// the code out of the database the way the email would deliver it.
func registerAndVerify(t *testing.T, router *gin.Engine, db *gorm.DB, username, email, password string) {
	t.Helper()

	w := performRequest(router, "POST", "/register", dto.RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
	})
	require.Equal(t, response.CodeSuccess, parseResponse(t, w).Code)

	var otp string
	err := db.Raw("SELECT otp_code FROM users WHERE email = ?", email).Scan(&otp).Error
	require.NoError(t, err)
	require.Len(t, otp, 6)

	w = performRequest(router, "POST", "/verify-otp", dto.VerifyOtpRequest{
		Email: email,
		Otp:   otp,
	})
	require.Equal(t, response.CodeSuccess, parseResponse(t, w).Code)
}

func TestAuthHandler_Login_Success(t *testing.T) {
	handler, db, cleanup := setupAuthHandler(t)
	defer cleanup()

	router := gin.New()
	router.POST("/register", handler.Register)
	router.POST("/verify-otp", handler.VerifyOtp)
	router.POST("/login", handler.Login)

	registerAndVerify(t, router, db, "loginuser", "login@example.com", "password123")

	w := performRequest(router, "POST", "/login", dto.LoginRequest{
		Email:    "login@example.com",
		Password: "password123",
	})
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodeSuccess, resp.Code)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.NotEmpty(t, data["token"])
}

func TestAuthHandler_Login_Unverified(t *testing.T) {
	handler, _, cleanup := setupAuthHandler(t)
	defer cleanup()

	router := gin.New()
	router.POST("/register", handler.Register)
	router.POST("/login", handler.Login)

	performRequest(router, "POST", "/register", dto.RegisterRequest{
		Username: "loginuser",
		Email:    "login@example.com",
		Password: "password123",
	})

	w := performRequest(router, "POST", "/login", dto.LoginRequest{
		Email:    "login@example.com",
		Password: "password123",
	})
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodeAuthFailed, resp.Code)
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	handler, db, cleanup := setupAuthHandler(t)
	defer cleanup()

	router := gin.New()
	router.POST("/register", handler.Register)
	router.POST("/verify-otp", handler.VerifyOtp)
	router.POST("/login", handler.Login)

	registerAndVerify(t, router, db, "loginuser", "login@example.com", "password123")

	w := performRequest(router, "POST", "/login", dto.LoginRequest{
		Email:    "login@example.com",
		Password: "wrong-password",
	})
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodeAuthFailed, resp.Code)
}

func TestAuthHandler_ForgotPassword_UnknownEmailStillSucceeds(t *testing.T) {
	handler, _, cleanup := setupAuthHandler(t)
	defer cleanup()

	router := gin.New()
	router.POST("/forgot-password", handler.ForgotPassword)

	w := performRequest(router, "POST", "/forgot-password", dto.ForgotPasswordRequest{
		Email: "nobody@example.com",
	})
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodeSuccess, resp.Code)
}

func TestAuthHandler_ResetPassword_InvalidToken(t *testing.T) {
	handler, _, cleanup := setupAuthHandler(t)
	defer cleanup()

	router := gin.New()
	router.POST("/reset-password", handler.ResetPassword)

	w := performRequest(router, "POST", "/reset-password", dto.ResetPasswordRequest{
		Token:    "bogus-token",
		Password: "newpassword",
	})
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodeParamError, resp.Code)
}

func TestAuthHandler_GoogleAuth_Redirects(t *testing.T) {
	handler, _, cleanup := setupAuthHandler(t)
	defer cleanup()

	router := gin.New()
	router.GET("/google", handler.GoogleAuth)

	req := httptest.NewRequest("GET", "/google", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "accounts.google.com")
}

func TestAuthHandler_GoogleCallback_MissingParams(t *testing.T) {
	handler, _, cleanup := setupAuthHandler(t)
	defer cleanup()

	router := gin.New()
	router.GET("/google/callback", handler.GoogleCallback)

	req := httptest.NewRequest("GET", "/google/callback", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeParamError, resp.Code)
}

func TestAuthHandler_YouTubeConnect_RequiresAuth(t *testing.T) {
	handler, _, cleanup := setupAuthHandler(t)
	defer cleanup()

	router := gin.New()
	router.GET("/youtube", handler.YouTubeConnect)

	req := httptest.NewRequest("GET", "/youtube", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeAuthFailed, resp.Code)
}

func TestAuthHandler_YouTubeConnect_ReturnsAuthURL(t *testing.T) {
	handler, db, cleanup := setupAuthHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, db)

	router := gin.New()
	router.Use(mockAuth(user.ID))
	router.GET("/youtube", handler.YouTubeConnect)

	req := httptest.NewRequest("GET", "/youtube", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeSuccess, resp.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, data["auth_url"], "youtube.force-ssl")
}
