// Package auth はユーザー登録、ログイン、JWTトークン管理を提供する。
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hitoshi/mentormatch/internal/model"
)

var (
	// ErrInvalidToken はトークンが不正な場合のエラー。
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken はトークンが期限切れの場合のエラー。
	ErrExpiredToken = errors.New("token expired")
)

// Claims はJWTに埋め込むユーザー情報。
type Claims struct {
	UserID string     `json:"user_id"`
	Role   model.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager はJWTの発行と検証を行う。
type TokenManager struct {
	secret []byte
	expiry time.Duration
}

// NewTokenManager はTokenManagerを生成する。
func NewTokenManager(secret string, expiry time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), expiry: expiry}
}

// Issue は指定ユーザーのアクセストークンを発行する。
func (m *TokenManager) Issue(userID string, role model.Role) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Parse はトークンを検証し、Claimsを返す。
// 署名アルゴリズムがHMAC系でない場合は拒否する。
func (m *TokenManager) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}
