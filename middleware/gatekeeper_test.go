package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

type fakeDirectory struct {
	subdomains map[string]bool
	fail       bool
	lookups    int
}

func (d *fakeDirectory) SubdomainExists(subdomain string) (bool, error) {
	d.lookups++
	if d.fail {
		return false, errors.New("directory unreachable")
	}
	return d.subdomains[subdomain], nil
}

var testSecret = []byte("testsecret")

func signTestToken(t *testing.T, sub string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": sub})
	signed, err := token.SignedString(testSecret)
	if err != nil {
		t.Fatalf("cannot sign token: %v", err)
	}
	return signed
}

func buildTestApp(dir *fakeDirectory) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Identity(testSecret))
	r.Use(Gatekeeper(GatekeeperConfig{
		BaseDomain:        "aire.com",
		AllowedDomains:    []string{"localhost:3000", "aire.com", "www.aire.com", "vercel.app"},
		PlatformSuffixes:  []string{".vercel.app"},
		ProtectedPrefixes: []string{"/dashboard", "/api/dashboard"},
		SignInURL:         "/sign-in",
	}, dir, r))

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "root")
	})
	r.GET("/dashboard", func(c *gin.Context) {
		c.String(http.StatusOK, "dashboard for "+CurrentUserID(c))
	})
	r.GET("/tenants/:subdomain/", func(c *gin.Context) {
		c.String(http.StatusOK, "tenant:"+c.Param("subdomain")+" q:"+c.Query("ref"))
	})
	return r
}

func serve(app *gin.Engine, host, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Host = host
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)
	return w
}

func TestGatekeeperRejectsInvalidHost(t *testing.T) {
	dir := &fakeDirectory{subdomains: map[string]bool{}}
	app := buildTestApp(dir)

	for _, host := range []string{"evil.com", "evilaire.com", "aire.com.evil.com"} {
		w := serve(app, host, "/", nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("host %q: status = %d, want 400", host, w.Code)
		}
	}
	if dir.lookups != 0 {
		t.Fatalf("directory consulted %d times for rejected hosts", dir.lookups)
	}
}

func TestGatekeeperPassesNonTenantHosts(t *testing.T) {
	app := buildTestApp(&fakeDirectory{subdomains: map[string]bool{}})

	for _, host := range []string{"aire.com", "www.aire.com"} {
		w := serve(app, host, "/", nil)
		if w.Code != http.StatusOK || w.Body.String() != "root" {
			t.Errorf("host %q: got %d %q, want 200 root", host, w.Code, w.Body.String())
		}
	}
}

func TestGatekeeperRejectsUnknownSubdomain(t *testing.T) {
	app := buildTestApp(&fakeDirectory{subdomains: map[string]bool{"p1": true}})

	w := serve(app, "fake-attacker-subdomain.aire.com", "/", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if w.Body.String() == "root" {
		t.Fatal("unknown subdomain fell through to default content")
	}
}

func TestGatekeeperRewritesKnownSubdomain(t *testing.T) {
	app := buildTestApp(&fakeDirectory{subdomains: map[string]bool{"p1": true}})

	w := serve(app, "p1.aire.com", "/?ref=welcome", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %q)", w.Code, w.Body.String())
	}
	if got := w.Body.String(); got != "tenant:p1 q:welcome" {
		t.Fatalf("body = %q, want rewrite to tenant p1 with query preserved", got)
	}
}

func TestGatekeeperRewritesPlatformHost(t *testing.T) {
	app := buildTestApp(&fakeDirectory{subdomains: map[string]bool{"p1": true}})

	w := serve(app, "p1.myapp.vercel.app", "/", nil)
	if w.Code != http.StatusOK || w.Body.String() != "tenant:p1 q:" {
		t.Fatalf("got %d %q, want tenant p1", w.Code, w.Body.String())
	}

	// the deployment root itself is not a tenant
	w = serve(app, "myapp.vercel.app", "/", nil)
	if w.Code != http.StatusOK || w.Body.String() != "root" {
		t.Fatalf("got %d %q, want root", w.Code, w.Body.String())
	}
}

func TestGatekeeperDirectoryErrorIs503(t *testing.T) {
	dir := &fakeDirectory{fail: true}
	app := buildTestApp(dir)

	w := serve(app, "p1.aire.com", "/", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
	if dir.lookups != 1 {
		t.Fatalf("lookup attempted %d times, want exactly 1", dir.lookups)
	}
}

func TestGatekeeperSkipsTenantNamespace(t *testing.T) {
	dir := &fakeDirectory{subdomains: map[string]bool{"p1": true}}
	app := buildTestApp(dir)

	// direct hit on the tenant namespace must not trigger a second rewrite
	w := serve(app, "aire.com", "/tenants/p1/", nil)
	if w.Code != http.StatusOK || w.Body.String() != "tenant:p1 q:" {
		t.Fatalf("got %d %q, want direct tenant route", w.Code, w.Body.String())
	}
	if dir.lookups != 0 {
		t.Fatalf("directory consulted for an already-rewritten path")
	}
}

func TestGatekeeperProtectsDashboard(t *testing.T) {
	app := buildTestApp(&fakeDirectory{subdomains: map[string]bool{}})

	w := serve(app, "aire.com", "/dashboard", nil)
	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302 redirect to sign-in", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/sign-in" {
		t.Fatalf("Location = %q, want /sign-in", loc)
	}

	token := signTestToken(t, "user_1")
	w = serve(app, "aire.com", "/dashboard", map[string]string{"Authorization": "Bearer " + token})
	if w.Code != http.StatusOK || w.Body.String() != "dashboard for user_1" {
		t.Fatalf("got %d %q, want authenticated dashboard", w.Code, w.Body.String())
	}
}

func TestGatekeeperRejectsTamperedToken(t *testing.T) {
	app := buildTestApp(&fakeDirectory{subdomains: map[string]bool{}})

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user_1"})
	signed, err := token.SignedString([]byte("wrong-secret"))
	if err != nil {
		t.Fatalf("cannot sign token: %v", err)
	}

	w := serve(app, "aire.com", "/dashboard", map[string]string{"Authorization": "Bearer " + signed})
	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302 for invalid signature", w.Code)
	}
}
