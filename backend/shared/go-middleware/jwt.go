package middleware

import (
	"crypto/rsa"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenIssuer identifies the identity service that signs access tokens.
const TokenIssuer = "Arrienda"

// ValidateToken checks the RS256 signature and the standard claims this
// service relies on. Any deviation returns a descriptive error.
func ValidateToken(tokenString string, publicKey *rsa.PublicKey) (*jwt.Token, jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return publicKey, nil
	})
	if err != nil {
		return nil, nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, nil, errors.New("invalid token claims")
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, nil, errors.New("missing expiration claim")
	}
	if time.Unix(int64(exp), 0).Before(time.Now()) {
		return nil, nil, jwt.ErrTokenExpired
	}

	iss, ok := claims["iss"].(string)
	if !ok {
		return nil, nil, errors.New("missing issuer claim")
	}
	if iss != TokenIssuer {
		return nil, nil, errors.New("invalid token issuer")
	}

	if _, ok := claims["sub"].(string); !ok {
		return nil, nil, errors.New("missing subject claim")
	}
	if _, ok := claims["role"].(string); !ok {
		return nil, nil, errors.New("missing role claim")
	}

	return token, claims, nil
}

// SignToken mints an access token. The identity service owns issuance in
// production; this is used by seeding and tests.
func SignToken(privateKey *rsa.PrivateKey, userID, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":  TokenIssuer,
		"sub":  userID,
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(privateKey)
}
