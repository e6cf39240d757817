// Package auth mints and checks the short-lived access tokens the HTTP
// surface hands out after a successful credential proof.
package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tavrin/realmportal/internal/common"
)

// Claims carries the standard claims plus the numeric account id, encoded
// as its decimal string.
type Claims struct {
	jwt.RegisteredClaims
	AccountID string
}

// GenerateToken signs an HS256 token for the account.
func GenerateToken(accountID int64, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		AccountID: strconv.FormatInt(accountID, 10),
	})

	return token.SignedString(secretKey)
}

// GetAccountIDFromToken validates the token and returns the account id.
// Expired tokens yield common.ErrTokenExpired; everything else malformed
// yields common.ErrInvalidToken.
func GetAccountIDFromToken(tokenString string, secretKey []byte) (int64, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, common.ErrTokenExpired
		}
		return 0, common.ErrInvalidToken
	}

	if !token.Valid {
		return 0, common.ErrInvalidToken
	}

	accountID, err := strconv.ParseInt(claims.AccountID, 10, 64)
	if err != nil {
		return 0, common.ErrInvalidToken
	}

	return accountID, nil
}
