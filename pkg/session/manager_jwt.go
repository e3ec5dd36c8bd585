package session

import (
	"context"
	"crypto/rsa"
	"fmt"
	"net/http"
	"strings"

	"github.com/dgrijalva/jwt-go"
)

// SessionManager verifies the token on an inbound request and hands back
// the session it asserts. Issuing tokens is the auth service's job; no
// variant here signs anything.
type SessionManager interface {
	Check(ctx context.Context, r *http.Request) (*Session, error)
}

// SessionManagerJWT checks the token signature against the auth service's
// public key.
type SessionManagerJWT struct {
	publicKey *rsa.PublicKey
}

func NewSessionsJWTManager(publicKeyBytes []byte) (*SessionManagerJWT, error) {
	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyBytes)
	if err != nil {
		return nil, err
	}

	return &SessionManagerJWT{publicKey: publicKey}, nil
}

func (sm *SessionManagerJWT) Check(ctx context.Context, request *http.Request) (*Session, error) {
	authHeader := request.Header.Get("authorization")
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")

	payload := &Session{}
	token, err := jwt.ParseWithClaims(tokenString, payload, func(token *jwt.Token) (interface{}, error) {
		method, ok := token.Method.(*jwt.SigningMethodRSA)
		if !ok || method.Alg() != "RS256" {
			return nil, fmt.Errorf("bad sign method")
		}
		return sm.publicKey, nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return payload, nil
}
