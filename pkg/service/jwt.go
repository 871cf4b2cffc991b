package service

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"optilab/pkg/constants"
	apperrors "optilab/pkg/errors"
	"optilab/pkg/types"
)

type JwtCustomClaim struct {
	ActorID  string         `json:"actorId"`
	Username string         `json:"username"`
	Role     constants.Role `json:"role"`
	jwt.RegisteredClaims
}

func (c *JwtCustomClaim) Actor() types.Actor {
	return types.Actor{ID: c.ActorID, Username: c.Username, Role: c.Role}
}

// JWTService проверяет токены. Выдача токенов - забота внешнего сервиса входа,
// GenerateToken нужен сидеру и тестам.
type JWTService interface {
	GenerateToken(actor types.Actor) (string, error)
	ValidateToken(tokenString string) (*JwtCustomClaim, error)
	GetAccessTokenTTL() time.Duration
}

type jwtService struct {
	SecretKey      string
	AccessTokenExp time.Duration
}

func NewJWTService(secretKey string, accessTokenExp time.Duration) JWTService {
	return &jwtService{SecretKey: secretKey, AccessTokenExp: accessTokenExp}
}

func (service *jwtService) GenerateToken(actor types.Actor) (string, error) {
	now := time.Now()
	claims := &JwtCustomClaim{
		ActorID:  actor.ID,
		Username: actor.Username,
		Role:     actor.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(service.AccessTokenExp)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	return token.SignedString([]byte(service.SecretKey))
}

func (s *jwtService) GetAccessTokenTTL() time.Duration {
	return s.AccessTokenExp
}

func (service *jwtService) ValidateToken(tokenString string) (*JwtCustomClaim, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JwtCustomClaim{}, func(token *jwt.Token) (interface{}, error) {
		switch token.Method.(type) {
		case *jwt.SigningMethodHMAC:
			return []byte(service.SecretKey), nil
		default:
			return nil, apperrors.ErrInvalidSigningMethod
		}
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		if errors.Is(err, apperrors.ErrInvalidSigningMethod) {
			return nil, apperrors.ErrInvalidSigningMethod
		}
		return nil, errors.Join(apperrors.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*JwtCustomClaim)
	if !ok || !token.Valid {
		return nil, apperrors.ErrInvalidToken
	}
	if claims.ActorID == "" || !claims.Role.Valid() {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}
