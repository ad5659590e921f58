package util

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Claims 管理端令牌声明，签发由外部身份服务负责，这里只做解析校验
type Claims struct {
	AdminID        uint   `json:"admin_id"`
	OrganizationID uint   `json:"organization_id"`
	Email          string `json:"email"`
	jwt.RegisteredClaims
}

func GenerateJWT(adminID, organizationID uint, email, secret string, expiration time.Duration) (string, error) {
	expirationTime := time.Now().Add(expiration)

	claims := &Claims{
		AdminID:        adminID,
		OrganizationID: organizationID,
		Email:          email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseJWT(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, err
}

func GetAdminFromContext(c *gin.Context) *Claims {
	admin, exists := c.Get("admin")
	if !exists {
		return nil
	}
	claims, ok := admin.(*Claims)
	if !ok {
		return nil
	}
	return claims
}
