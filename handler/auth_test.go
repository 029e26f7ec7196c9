package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ruslamp94/reglament-svetofor-v78/config"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testAuthConfig(t *testing.T) *config.Config {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("testpass"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:        "test-secret",
			TokenExpireHours: 24,
		},
		Users: []config.User{
			{Username: "lawyer", PasswordHash: string(hash), Role: config.RoleAdmin, FullName: "Иванова А.П."},
		},
	}
}

func TestAuthHandlerLogin(t *testing.T) {
	handler := NewAuthHandler(testAuthConfig(t))

	tests := []struct {
		name           string
		body           map[string]string
		expectedStatus int
	}{
		{
			name:           "valid login",
			body:           map[string]string{"username": "lawyer", "password": "testpass"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid username",
			body:           map[string]string{"username": "wronguser", "password": "testpass"},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "invalid password",
			body:           map[string]string{"username": "lawyer", "password": "wrongpass"},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "missing fields",
			body:           map[string]string{"username": "lawyer"},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.POST("/login", handler.Login)

			body, _ := json.Marshal(tt.body)
			req := httptest.NewRequest("POST", "/login", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

func TestAuthHandlerLoginResponse(t *testing.T) {
	handler := NewAuthHandler(testAuthConfig(t))

	router := gin.New()
	router.POST("/login", handler.Login)

	body, _ := json.Marshal(map[string]string{"username": "lawyer", "password": "testpass"})
	req := httptest.NewRequest("POST", "/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var resp LoginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.Token == "" {
		t.Error("Expected non-empty token")
	}
	if resp.Role != config.RoleAdmin {
		t.Errorf("Expected role admin, got %s", resp.Role)
	}
	if resp.FullName != "Иванова А.П." {
		t.Errorf("Expected full name in response, got '%s'", resp.FullName)
	}
}

func TestAuthHandlerGetCurrentUser(t *testing.T) {
	handler := NewAuthHandler(testAuthConfig(t))

	router := gin.New()
	router.GET("/me", func(c *gin.Context) {
		c.Set("username", "lawyer")
		c.Set("role", config.RoleAdmin)
		handler.GetCurrentUser(c)
	})

	req := httptest.NewRequest("GET", "/me", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp["username"] != "lawyer" {
		t.Errorf("Expected username lawyer, got %v", resp["username"])
	}
	if resp["full_name"] != "Иванова А.П." {
		t.Errorf("Expected full name, got %v", resp["full_name"])
	}
}
