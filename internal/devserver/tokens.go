// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package devserver

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var errInvalidToken = errors.New("invalid token")

// claims carries the user id and the revocation generation the token was
// issued under.
type claims struct {
	jwt.RegisteredClaims
	Gen int64 `json:"gen"`
}

func (s *Server) issueToken(userID int64) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
		Gen: s.gen.Load(),
	})
	return token.SignedString(s.secret)
}

func (s *Server) parseToken(raw string) (int64, error) {
	c := &claims{}
	token, err := jwt.ParseWithClaims(raw, c, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return 0, err
	}
	if !token.Valid || c.Gen != s.gen.Load() {
		return 0, errInvalidToken
	}
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidToken
	}
	return id, nil
}

// RevokeAll invalidates every token issued so far. Clients see 401 on
// their next request.
func (s *Server) RevokeAll() {
	s.gen.Add(1)
}

// tokenTTLDefault is long enough that idle timeout, not expiry, ends
// development sessions.
const tokenTTLDefault = 12 * time.Hour
