package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// DefaultCORSHosts are the panel and storefront origins allowed when
// CORS_ALLOWED_HOSTS is not set.
var DefaultCORSHosts = []string{
	"localhost:3000",
	"127.0.0.1:3000",
	"localhost:5173",
	"admin.gtdshop.co.id",
	"gtdshop.co.id",
	"www.gtdshop.co.id",
}

// originHost returns the host part of origin or referer URL, or empty if invalid.
// Strips default ports (:443, :80) so "admin.gtdshop.co.id:443" matches "admin.gtdshop.co.id".
func originHost(raw string) string {
	raw = strings.TrimSpace(strings.TrimSuffix(raw, "/"))
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	host := strings.ToLower(u.Host)
	if strings.HasSuffix(host, ":443") || strings.HasSuffix(host, ":80") {
		host, _, _ = strings.Cut(host, ":")
	}
	return host
}

// hostSet normalises configured entries, which may be bare hosts or full
// origins, into a lookup set.
func hostSet(hosts []string) map[string]bool {
	set := make(map[string]bool, len(hosts))
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h == "" {
			continue
		}
		if strings.Contains(h, "://") {
			h = originHost(h)
		}
		if h != "" {
			set[h] = true
		}
	}
	return set
}

// CORSMiddleware answers preflights and echoes the Origin for allowed hosts.
// Credentials are allowed, so the origin is never a wildcard.
func CORSMiddleware(hosts []string) gin.HandlerFunc {
	allowed := hostSet(hosts)
	if len(allowed) == 0 {
		log.Warn().Msg("CORS allow list is empty; cross-origin requests will be refused")
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			if ref := c.Request.Header.Get("Referer"); ref != "" {
				if u, err := url.Parse(ref); err == nil && u.Scheme != "" && u.Host != "" {
					origin = u.Scheme + "://" + u.Host
				}
			}
		}
		origin = strings.TrimSpace(strings.TrimSuffix(origin, "/"))

		if host := originHost(origin); host != "" && allowed[host] {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}

		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, Last-Event-ID")
		c.Header("Access-Control-Expose-Headers", "X-Request-Id")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
