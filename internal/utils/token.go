package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// PlayerClaims 玩家令牌Claims
// 把玩家身份和房间绑在一起：后续动作凭令牌证明"我是这个房间的player1/player2"
type PlayerClaims struct {
	SessionID string `json:"session_id"`
	PlayerID  string `json:"player_id"`
	Player    string `json:"player"` // player1 / player2
	jwt.RegisteredClaims
}

// TokenManager 玩家令牌管理器
type TokenManager struct {
	secretKey string
	expiry    time.Duration
}

// NewTokenManager 创建令牌管理器
func NewTokenManager(secretKey string, expiry time.Duration) *TokenManager {
	return &TokenManager{
		secretKey: secretKey,
		expiry:    expiry,
	}
}

// GeneratePlayerToken 签发玩家令牌
func (m *TokenManager) GeneratePlayerToken(sessionID, playerID, player string) (string, error) {
	now := time.Now()

	claims := &PlayerClaims{
		SessionID: sessionID,
		PlayerID:  playerID,
		Player:    player,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "snake-talk",
			Subject:   playerID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.secretKey))
}

// ValidateToken 验证玩家令牌
func (m *TokenManager) ValidateToken(tokenString string) (*PlayerClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &PlayerClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(m.secretKey), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, err
	}

	claims, ok := token.Claims.(*PlayerClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
