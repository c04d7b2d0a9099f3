package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/codeimport/internal/codes"
	"github.com/JonMunkholm/codeimport/internal/core"
	"golang.org/x/text/language"
)

// WithRequestMetadata adds IP and User-Agent to context for the import history.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ctx = core.ContextWithIPAddress(ctx, clientIP(r)) // RemoteAddr already processed by TrustedRealIP
	ctx = core.ContextWithUserAgent(ctx, r.UserAgent())
	return ctx
}

// requestLanguage picks the message language: the lang query parameter,
// then Accept-Language, then the configured default.
func (s *Server) requestLanguage(r *http.Request) language.Tag {
	if lang := r.URL.Query().Get("lang"); lang != "" {
		return codes.MatchLanguage(lang)
	}
	if accept := r.Header.Get("Accept-Language"); accept != "" {
		return codes.MatchLanguage(accept)
	}
	return s.defaultLang
}
