package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"

	"github.com/scriptgen-ra/scriptgen/common/config"
	"github.com/scriptgen-ra/scriptgen/common/ctxkey"
	"github.com/scriptgen-ra/scriptgen/model"
)

// GenerateToken issues a signed bearer token for the user. Validity is
// bounded by TOKEN_VALIDITY_HOURS.
func GenerateToken(user *model.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.Id,
		"exp":     time.Now().Add(time.Duration(config.TokenValidityHours) * time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(config.SessionSecret))
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return signed, nil
}

func parseToken(tokenString string) (int, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(config.SessionSecret), nil
	})
	if err != nil {
		return 0, errors.Wrap(err, "parse token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, errors.New("invalid token")
	}
	id, ok := claims["user_id"].(float64)
	if !ok {
		return 0, errors.New("token carries no user id")
	}
	return int(id), nil
}

// authHelper resolves the caller from either the session cookie or a bearer
// token and enforces the minimum role.
func authHelper(c *gin.Context, minRole int) {
	userId, err := callerId(c)
	if err != nil {
		AbortWithError(c, http.StatusUnauthorized, err)
		return
	}

	user, err := model.GetUserById(userId)
	if err != nil {
		AbortWithError(c, http.StatusUnauthorized, errors.New("access denied: invalid credentials"))
		return
	}
	if !user.IsEnabled() {
		AbortWithError(c, http.StatusForbidden, errors.New("user has been disabled"))
		return
	}
	if user.Role < minRole {
		AbortWithError(c, http.StatusForbidden, errors.New("access denied: insufficient privileges"))
		return
	}

	c.Set(ctxkey.Id, user.Id)
	c.Set(ctxkey.Username, user.Username)
	c.Set(ctxkey.Role, user.Role)
	c.Next()
}

func callerId(c *gin.Context) (int, error) {
	session := sessions.Default(c)
	if id, ok := session.Get("id").(int); ok && id != 0 {
		return id, nil
	}

	authHeader := c.GetHeader("Authorization")
	tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if tokenString == "" {
		return 0, errors.New("access denied: no valid authentication provided")
	}
	return parseToken(tokenString)
}

func UserAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHelper(c, model.RoleCommonUser)
	}
}

func AdminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHelper(c, model.RoleAdminUser)
	}
}
