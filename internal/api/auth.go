package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/page-comments-api/internal/models"
)

const authorKey = "author"

// Claims identifies the caller. Subject carries the account id.
type Claims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// IssueToken signs an identity token for user, valid for ttl
func IssueToken(secret string, user *models.User, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("JWT_SECRET is not set")
	}
	now := time.Now()
	claims := Claims{
		Name: user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Authenticator resolves the caller from a bearer token
type Authenticator struct {
	secret []byte
	log    zerolog.Logger
}

// NewAuthenticator creates an Authenticator. An empty secret rejects every token.
func NewAuthenticator(secret string, log zerolog.Logger) *Authenticator {
	return &Authenticator{
		secret: []byte(secret),
		log:    log.With().Str("component", "auth").Logger(),
	}
}

// Optional stores the caller when a valid token is present. Requests without a
// token continue anonymously; a token that does not verify is rejected.
func (a *Authenticator) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		a.authenticate(c)
	}
}

// Required rejects requests without a valid token
func (a *Authenticator) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}
		a.authenticate(c)
	}
}

func (a *Authenticator) authenticate(c *gin.Context) {
	tokenString, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if !ok || tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer <token>"})
		c.Abort()
		return
	}

	author, err := a.parse(tokenString)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token expired"})
			c.Abort()
			return
		}
		a.log.Debug().Err(err).Msg("Invalid token")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		c.Abort()
		return
	}

	c.Set(authorKey, author)
	c.Next()
}

func (a *Authenticator) parse(tokenString string) (models.Author, error) {
	if len(a.secret) == 0 {
		return models.Author{}, errors.New("authentication is not configured")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	})
	if err != nil {
		return models.Author{}, err
	}
	if !token.Valid {
		return models.Author{}, jwt.ErrTokenSignatureInvalid
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return models.Author{}, fmt.Errorf("invalid subject %q", claims.Subject)
	}
	return models.Author{ID: id, Name: claims.Name}, nil
}

// currentAuthor returns the authenticated caller, if any
func currentAuthor(c *gin.Context) (models.Author, bool) {
	v, ok := c.Get(authorKey)
	if !ok {
		return models.Author{}, false
	}
	author, ok := v.(models.Author)
	return author, ok
}
