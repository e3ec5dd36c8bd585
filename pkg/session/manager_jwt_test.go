package session

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
)

var testUser = &User{ID: 34, Username: "vectoreal"}

func newTestKeyPair(t *testing.T) (*rsa.PrivateKey, []byte) {
	t.Helper()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("unexpected error: %v", err.Error())
	}

	publicDER, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err.Error())
	}

	publicPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: publicDER})

	return privateKey, publicPEM
}

func signedToken(t *testing.T, privateKey *rsa.PrivateKey, sess *Session) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, sess).SignedString(privateKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err.Error())
	}

	return token
}

func TestCheckJWT(t *testing.T) {
	privateKey, publicPEM := newTestKeyPair(t)

	sm, err := NewSessionsJWTManager(publicPEM)
	if err != nil {
		t.Fatalf("unexpected error: %v", err.Error())
	}

	expected := &Session{
		User:           testUser,
		SessionID:      uuid.New().String(),
		StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(time.Hour).Unix()},
	}

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+signedToken(t, privateKey, expected))

	ctx := context.Background()
	sess, err := sm.Check(ctx, r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err.Error())
	}

	if !reflect.DeepEqual(expected, sess) {
		t.Errorf("expected %v but was %v", expected, sess)
	}
}

func TestCheckJWTExpired(t *testing.T) {
	privateKey, publicPEM := newTestKeyPair(t)

	sm, err := NewSessionsJWTManager(publicPEM)
	if err != nil {
		t.Fatalf("unexpected error: %v", err.Error())
	}

	expired := &Session{
		User:           testUser,
		SessionID:      uuid.New().String(),
		StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(-time.Hour).Unix()},
	}

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+signedToken(t, privateKey, expired))

	ctx := context.Background()
	_, err = sm.Check(ctx, r)
	if err == nil {
		t.Fatal("expected expired token error, but was nil")
	}

	verr, ok := err.(*jwt.ValidationError)
	if !ok {
		t.Fatalf("expected jwt validation error, but was %v", err)
	}

	if verr.Errors&jwt.ValidationErrorExpired != jwt.ValidationErrorExpired {
		t.Fatalf("expected jwt expired error, but was %v", verr.Errors)
	}
}

func TestCheckJWTWrongSignMethod(t *testing.T) {
	_, publicPEM := newTestKeyPair(t)

	sm, err := NewSessionsJWTManager(publicPEM)
	if err != nil {
		t.Fatalf("unexpected error: %v", err.Error())
	}

	sess := &Session{
		User:           testUser,
		SessionID:      uuid.New().String(),
		StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(time.Hour).Unix()},
	}

	hmacToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, sess).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err.Error())
	}

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+hmacToken)

	ctx := context.Background()
	if _, err = sm.Check(ctx, r); err == nil {
		t.Fatal("expected sign method error, but was nil")
	}
}

func TestCheckJWTForeignKey(t *testing.T) {
	// signed with one key, checked against another
	foreignKey, _ := newTestKeyPair(t)
	_, publicPEM := newTestKeyPair(t)

	sm, err := NewSessionsJWTManager(publicPEM)
	if err != nil {
		t.Fatalf("unexpected error: %v", err.Error())
	}

	sess := &Session{
		User:           testUser,
		SessionID:      uuid.New().String(),
		StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(time.Hour).Unix()},
	}

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+signedToken(t, foreignKey, sess))

	ctx := context.Background()
	if _, err = sm.Check(ctx, r); err == nil {
		t.Fatal("expected signature error, but was nil")
	}
}
