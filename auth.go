package main

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenExpiry     = 12 * time.Hour
	minPassLen      = 3
	maxPassLen      = 64
	joinRateWindow  = 60 * time.Second
	maxJoinAttempts = 10
)

// Auth issues resume tokens and rate-limits passphrase attempts
type Auth struct {
	secret []byte

	// Rate limiting for private lobby joins (IP -> attempts)
	rateMu  sync.Mutex
	rateMap map[string]*rateEntry
}

type rateEntry struct {
	Count   int
	ResetAt time.Time
}

// resumeClaims binds a token to one member of one lobby
type resumeClaims struct {
	Lobby string `json:"lby"`
	jwt.RegisteredClaims
}

// NewAuth creates an Auth signing with secret, or with a random key when
// secret is empty (tokens then die with the process)
func NewAuth(secret string) *Auth {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			panic("failed to generate token secret: " + err.Error())
		}
	}
	return &Auth{
		secret:  key,
		rateMap: make(map[string]*rateEntry),
	}
}

// IssueToken signs a resume token for playerID in lobby code
func (a *Auth) IssueToken(code, playerID string) (string, error) {
	now := time.Now()
	claims := resumeClaims{
		Lobby: code,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        GenerateUUID(),
			Subject:   playerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenExpiry)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// ValidateToken returns the lobby code and player id a token was issued for
func (a *Auth) ValidateToken(tokenStr string) (string, string, error) {
	var claims resumeClaims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return a.secret, nil
	})
	if err != nil {
		return "", "", err
	}
	if !token.Valid || claims.Lobby == "" || claims.Subject == "" {
		return "", "", fmt.Errorf("invalid token claims")
	}
	return claims.Lobby, claims.Subject, nil
}

// AllowAttempt records a passphrase attempt from ip and reports whether
// it is within the limit
func (a *Auth) AllowAttempt(ip string) bool {
	a.rateMu.Lock()
	defer a.rateMu.Unlock()

	now := time.Now()
	entry, ok := a.rateMap[ip]
	if !ok || now.After(entry.ResetAt) {
		a.rateMap[ip] = &rateEntry{Count: 1, ResetAt: now.Add(joinRateWindow)}
		return true
	}
	entry.Count++
	return entry.Count <= maxJoinAttempts
}

// HashPassphrase hashes a private lobby passphrase
func HashPassphrase(pass string) ([]byte, error) {
	if len(pass) < minPassLen || len(pass) > maxPassLen {
		return nil, fmt.Errorf("passphrase must be %d-%d characters", minPassLen, maxPassLen)
	}
	return bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
}

// CheckPassphrase compares pass against a stored hash
func CheckPassphrase(hash []byte, pass string) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(pass)) == nil
}
