package authutils

import (
	"mailpilot-backend/config"
	"mailpilot-backend/models"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

func GetToken(userID, name, spaceID string, role models.UserRole) (tokenString string, err error) {
	claims := jwt.MapClaims{
		"name":  name,
		"sub":   userID,
		"space": spaceID,
		"role":  string(role),
		"exp":   time.Now().Add(time.Second * time.Duration(config.Conf.Auth.JWTExpireInSec)).Unix(),
		"iat":   time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.Conf.Auth.JWTSecret))
}

func GetClaims(ctx *fiber.Ctx) jwt.MapClaims {
	token, ok := ctx.Locals("user").(*jwt.Token)
	if !ok {
		return jwt.MapClaims{}
	}
	return token.Claims.(jwt.MapClaims)
}

const actionTokenScope = "approval_decision"

type ActionTokenData struct {
	SpaceID   string
	RequestID string
	ActorID   string
}

// GetActionToken issues the short-lived token embedded in one-click decision
// links sent to approvers by email
func GetActionToken(spaceID, requestID, actorID string) (tokenString string, err error) {
	claims := jwt.MapClaims{
		"scope": actionTokenScope,
		"space": spaceID,
		"req":   requestID,
		"sub":   actorID,
		"exp":   time.Now().Add(time.Second * time.Duration(config.Conf.Auth.ActionLinkExpireInSec)).Unix(),
		"iat":   time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.Conf.Auth.JWTSecret))
}

func ParseActionToken(tokenString string) (ActionTokenData, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.Conf.Auth.JWTSecret), nil
	})
	if err != nil {
		return ActionTokenData{}, errors.Wrap(err, "invalid action token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return ActionTokenData{}, errors.New("invalid action token")
	}
	if scope, _ := claims["scope"].(string); scope != actionTokenScope {
		return ActionTokenData{}, errors.New("token has no decision scope")
	}
	data := ActionTokenData{}
	data.SpaceID, _ = claims["space"].(string)
	data.RequestID, _ = claims["req"].(string)
	data.ActorID, _ = claims["sub"].(string)
	if data.SpaceID == "" || data.RequestID == "" || data.ActorID == "" {
		return ActionTokenData{}, errors.New("incomplete action token")
	}
	return data, nil
}
