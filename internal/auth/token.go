package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("token is invalid")

// Claims полезная нагрузка access-токена Supabase Auth.
type Claims struct {
	Email        string         `json:"email,omitempty"`
	Role         string         `json:"role,omitempty"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
	jwt.RegisteredClaims
}

// User аутентифицированный владелец запроса.
type User struct {
	ID       uuid.UUID
	Email    string
	Username string
}

type TokenVerifier struct {
	secret   []byte
	issuer   string
	audience string
}

// NewTokenVerifier создает проверку токенов Supabase (HS256 с JWT secret проекта).
// Пустые issuer и audience не проверяются.
func NewTokenVerifier(secret, issuer, audience string) *TokenVerifier {
	return &TokenVerifier{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
	}
}

// Verify валидирует подпись, срок действия, issuer и audience и возвращает пользователя.
func (v *TokenVerifier) Verify(tokenString string) (User, error) {
	claims := &Claims{}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		options = append(options, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		options = append(options, jwt.WithAudience(v.audience))
	}

	token, err := jwt.NewParser(options...).ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		return User{}, err
	}

	if !token.Valid {
		return User{}, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return User{}, ErrInvalidToken
	}

	return User{
		ID:       userID,
		Email:    claims.Email,
		Username: claims.username(),
	}, nil
}

// Issue подписывает токен в формате Supabase. Используется локально и в тестах.
func (v *TokenVerifier) Issue(user User, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := Claims{
		Email: user.Email,
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    v.issuer,
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if v.audience != "" {
		claims.Audience = jwt.ClaimStrings{v.audience}
	}
	if user.Username != "" {
		claims.UserMetadata = map[string]any{"username": user.Username}
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

func (c *Claims) username() string {
	for _, key := range []string{"username", "full_name", "display_name"} {
		if value, ok := c.UserMetadata[key].(string); ok {
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}
