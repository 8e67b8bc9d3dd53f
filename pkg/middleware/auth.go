package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/wyfcoding/pkg/response"
)

// 角色
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ErrInvalidToken token 无效或已过期
var ErrInvalidToken = errors.New("invalid or expired token")

// Identity 请求方身份，由 bearer token 解析得到
type Identity struct {
	OwnerID string
	Role    string
}

// IsAdmin 是否管理员
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// Claims JWT 载荷，sub 为 owner id
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator HS256 token 签发与校验
type Authenticator struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewAuthenticator 创建 Authenticator
func NewAuthenticator(secret, issuer string, ttl time.Duration) *Authenticator {
	return &Authenticator{secret: []byte(secret), issuer: issuer, ttl: ttl}
}

// IssueToken 为 owner 签发 token
func (a *Authenticator) IssueToken(ownerID, role string) (string, error) {
	if ownerID == "" {
		return "", fmt.Errorf("owner id is required")
	}
	if role == "" {
		role = RoleUser
	}
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ownerID,
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Parse 校验 token 并返回身份
func (a *Authenticator) Parse(tokenString string) (Identity, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(a.issuer))
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return Identity{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return Identity{OwnerID: claims.Subject, Role: claims.Role}, nil
}

const identityContextKey contextKey = "identity"

// WithIdentity 将身份写入 context
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// IdentityFromContext 读取 context 中的身份，匿名请求返回 false
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey).(Identity)
	return id, ok
}

// OwnerID 返回 context 中的 owner id，匿名请求为空串
func OwnerID(ctx context.Context) string {
	id, _ := IdentityFromContext(ctx)
	return id.OwnerID
}

// bearerToken 从 Authorization 头取出 token
func bearerToken(header string) string {
	const prefix = "bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

// GinAuthMiddleware 解析 bearer token。缺少 token 时按匿名放行，由业务层返回 Unauthenticated；token 无效时直接 401
func GinAuthMiddleware(auth *Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}
		token := bearerToken(header)
		if token == "" {
			response.ErrorWithStatus(c, http.StatusUnauthorized, "Not authorized, token missing", "")
			c.Abort()
			return
		}
		id, err := auth.Parse(token)
		if err != nil {
			response.ErrorWithStatus(c, http.StatusUnauthorized, "Not authorized, token failed", "")
			c.Abort()
			return
		}
		c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

// RequireAdmin 仅管理员可访问
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFromContext(c.Request.Context())
		if !ok {
			response.ErrorWithStatus(c, http.StatusUnauthorized, "Not authorized, no token", "")
			c.Abort()
			return
		}
		if !id.IsAdmin() {
			response.ErrorWithStatus(c, http.StatusForbidden, "Not authorized as an admin", "")
			c.Abort()
			return
		}
		c.Next()
	}
}
