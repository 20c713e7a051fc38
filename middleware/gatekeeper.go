package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"aire-backend/utils"
)

// TenantDirectory answers whether a subdomain belongs to a known partner.
// The lookup is the only trust boundary for host-derived candidates.
type TenantDirectory interface {
	SubdomainExists(subdomain string) (bool, error)
}

// GatekeeperConfig carries the host allow-list and routing knobs.
type GatekeeperConfig struct {
	BaseDomain        string
	AllowedDomains    []string
	PlatformSuffixes  []string
	ProtectedPrefixes []string
	SignInURL         string
}

// Gatekeeper is the single chokepoint in front of every route. It gates
// protected paths on a verified identity, validates the Host header against
// the allow-list, resolves tenant subdomains through the directory, and
// rewrites matching requests into the /tenants/{subdomain} namespace.
//
// Rejections are terminal: invalid host 400, unknown subdomain 404 (never a
// silent fall-through to default content), directory transport error 503.
func Gatekeeper(cfg GatekeeperConfig, directory TenantDirectory, engine *gin.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		// Already inside the tenant namespace: never rewrite twice.
		if strings.HasPrefix(path, "/tenants/") {
			c.Next()
			return
		}

		if isProtectedPath(path, cfg.ProtectedPrefixes) && CurrentUserID(c) == "" {
			if strings.HasPrefix(path, "/api/") {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			} else {
				c.Redirect(http.StatusFound, cfg.SignInURL)
				c.Abort()
			}
			return
		}

		host := c.Request.Host
		if !utils.HostAllowed(host, cfg.AllowedDomains) {
			log.Printf("[SECURITY] invalid host header: %s", host)
			c.String(http.StatusBadRequest, "Invalid host")
			c.Abort()
			return
		}

		res := utils.ResolveHost(host, utils.HostConfig{
			BaseDomain:       cfg.BaseDomain,
			PlatformSuffixes: cfg.PlatformSuffixes,
		})
		if res.Kind != utils.HostTenant {
			c.Next()
			return
		}

		exists, err := directory.SubdomainExists(res.Subdomain)
		if err != nil {
			log.Printf("[SECURITY] tenant directory lookup failed: %v", err)
			c.String(http.StatusServiceUnavailable, "Service unavailable")
			c.Abort()
			return
		}
		if !exists {
			log.Printf("[SECURITY] subdomain spoofing attempt: %s", res.Subdomain)
			c.String(http.StatusNotFound, "Subdomain not found")
			c.Abort()
			return
		}

		// Rewrite into the tenant namespace and re-dispatch. The query string
		// lives on the same URL and is carried along untouched.
		c.Request.URL.Path = "/tenants/" + res.Subdomain + path
		engine.HandleContext(c)
		c.Abort()
	}
}

func isProtectedPath(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
