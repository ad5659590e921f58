package middleware

import (
	"errors"
	"strings"

	"talent_assessment_backend/internal/config"
	"talent_assessment_backend/internal/model"
	"talent_assessment_backend/internal/repository"
	"talent_assessment_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuthMiddleware 管理端JWT鉴权
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}

		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, cfg.JWT.Secret)
		if err != nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set("admin", claims)
		c.Next()
	}
}

// InterviewTokenMiddleware 受评者通过访问令牌进入，不走JWT。
// 令牌无效统一返回404，不暴露令牌是否存在
func InterviewTokenMiddleware(participants *repository.ParticipantRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")
		if token == "" {
			util.NotFound(c)
			c.Abort()
			return
		}

		participant, err := participants.FindByAccessToken(token)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				util.NotFound(c)
			} else {
				util.LogInternalError(c, err)
			}
			c.Abort()
			return
		}

		c.Set("participant", participant)
		c.Next()
	}
}

// GetParticipantFromContext 从上下文取出令牌中间件解析的受评者
func GetParticipantFromContext(c *gin.Context) *model.AssessmentParticipant {
	v, exists := c.Get("participant")
	if !exists {
		return nil
	}
	p, ok := v.(*model.AssessmentParticipant)
	if !ok {
		return nil
	}
	return p
}
