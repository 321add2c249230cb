package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Roles reconocidos por el middleware RBAC (grupos Admin / Employee).
const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

// Claims incluye los claims estándar JWT más la identidad del usuario y del dueño del inventario.
// OwnerID es el alcance (tenant) de todas las consultas; Role evita consultar la DB en cada request.
type Claims struct {
	jwt.RegisteredClaims
	UserID  string `json:"user_id"`
	OwnerID string `json:"owner_id"`
	Role    string `json:"role"`
}

// Generate genera un token JWT firmado que incluye userID, ownerID y role.
func Generate(secret, userID, ownerID, role, issuer string, expMinutes int) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vacío")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		UserID:  userID,
		OwnerID: ownerID,
		Role:    role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Parse valida el token y devuelve sus claims.
// Retorna error si el token es inválido, expirado o tiene firma incorrecta.
func Parse(secret, tokenString string) (*Claims, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt: secret vacío")
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("claims inválidos")
	}
	if claims.OwnerID == "" {
		// Tokens emitidos sin tenant explícito: el usuario es dueño de su propio inventario.
		claims.OwnerID = claims.UserID
	}
	return claims, nil
}
