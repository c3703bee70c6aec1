package httpapi

import (
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

type endpointGroup map[string]string

var endpoints = map[string]endpointGroup{
	"products": {
		"POST /api/products":     "Create a new product",
		"GET /api/products":      "Get all products",
		"GET /api/products/{id}": "Get product by ID",
	},
	"cart": {
		"POST /api/cart":               "Add product to cart",
		"GET /api/cart":                "Get cart contents",
		"PUT /api/cart/{productId}":    "Update product quantity in cart",
		"DELETE /api/cart/{productId}": "Remove product from cart",
		"DELETE /api/cart":             "Clear entire cart",
	},
	"checkout": {
		"POST /api/checkout":        "Process checkout and create order",
		"GET /api/orders":           "Get all orders",
		"GET /api/orders/{orderId}": "Get specific order",
	},
	"utils": {
		"GET /api/stats":      "Get database statistics",
		"GET /api/stats/date": "Get statistics by date range",
		"GET /api":            "Get API information",
		"GET /health":         "Server health check",
		"GET /metrics":        "Prometheus metrics",
	},
}

// root serves the frontend to browsers when a static directory is set.
func (a *API) root(w http.ResponseWriter, r *http.Request) {
	if strings.Contains(r.Header.Get("Accept"), "text/html") && a.serveStatic(w, r) {
		return
	}

	base := "http://" + r.Host
	writeJSON(w, http.StatusOK, map[string]any{
		"message":     "Welcome to the " + ServiceName,
		"version":     Version,
		"environment": a.opts.Env,
		"endpoints":   endpoints,
		"usage": map[string]string{
			"sessionHeader": `Include "session-id" header for cart management`,
			"example":       "session-id: user-123-abc",
			"contentType":   "application/json",
		},
		"links": map[string]string{
			"documentation": base + "/api",
			"health":        base + "/health",
		},
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(a.opts.StartedAt).Seconds(),
	})
}

func (a *API) apiDocs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   ServiceName + " - Available endpoints",
		"endpoints": endpoints,
		"headers": map[string]string{
			"session-id": fmt.Sprintf("Used to identify cart session (optional, defaults to %q)", DefaultSessionID),
		},
	})
}

func (a *API) health(w http.ResponseWriter, r *http.Request) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	memory := map[string]string{
		"used":  megabytes(ms.HeapAlloc),
		"total": megabytes(ms.HeapSys),
	}
	if p, err := process.NewProcessWithContext(r.Context(), int32(os.Getpid())); err == nil {
		if mi, err := p.MemoryInfoWithContext(r.Context()); err == nil {
			memory["rss"] = megabytes(mi.RSS)
		}
	}

	uptime := time.Since(a.opts.StartedAt)
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "OK",
		"timestamp":   time.Now().UTC(),
		"service":     ServiceName,
		"version":     Version,
		"environment": a.opts.Env,
		"uptime": map[string]any{
			"seconds": int64(uptime.Seconds()),
			"human":   uptime.Truncate(time.Second).String(),
		},
		"memory": memory,
		"system": map[string]any{
			"platform": runtime.GOOS,
			"go":       runtime.Version(),
			"pid":      os.Getpid(),
		},
	})
}

func megabytes(b uint64) string {
	return fmt.Sprintf("%d MB", b/1024/1024)
}

// notFound serves a file from the static directory when one matches, and the
// JSON 404 payload otherwise.
func (a *API) notFound(w http.ResponseWriter, r *http.Request) {
	if a.serveStatic(w, r) {
		return
	}

	writeJSON(w, http.StatusNotFound, map[string]any{
		"success": false,
		"error":   "Endpoint not found",
		"path":    r.URL.RequestURI(),
		"method":  r.Method,
		"message": fmt.Sprintf("The requested endpoint %s %s was not found", r.Method, r.URL.RequestURI()),
		"suggestions": []string{
			"GET / - API information and documentation",
			"GET /health - Server health check",
			"GET /api - API endpoints documentation",
			"GET /api/products - View available products",
			"GET /api/stats - System statistics",
		},
		"availableEndpoints": map[string]string{
			"api":    "/api",
			"health": "/health",
		},
		"timestamp": time.Now().UTC(),
	})
}

func (a *API) serveStatic(w http.ResponseWriter, r *http.Request) bool {
	if a.opts.StaticDir == "" || (r.Method != http.MethodGet && r.Method != http.MethodHead) {
		return false
	}

	name := filepath.Join(a.opts.StaticDir, filepath.FromSlash(path.Clean("/"+r.URL.Path)))
	info, err := os.Stat(name)
	if err != nil {
		return false
	}
	if info.IsDir() {
		name = filepath.Join(name, "index.html")
		if _, err := os.Stat(name); err != nil {
			return false
		}
	}

	http.ServeFile(w, r, name)
	return true
}
