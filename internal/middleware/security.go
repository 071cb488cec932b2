// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"

	"github.com/unrolled/secure"
)

// SecurityOptions returns the security header configuration.
// HSTS and the HTTPS redirect are off in development.
func SecurityOptions(isDev bool) secure.Options {
	return secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
		PermissionsPolicy:     "camera=(), microphone=(), geolocation=()",
		STSSeconds:            31536000,
		STSIncludeSubdomains:  true,
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:         isDev,
	}
}

// Secure adds security headers to every response.
func Secure(isDev bool) func(http.Handler) http.Handler {
	return secure.New(SecurityOptions(isDev)).Handler
}
