package main

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/skip2/go-qrcode"
)

const qrSize = 256

var lobbyPathRe = regexp.MustCompile(`^/[A-Za-z]{6}$`)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // Non-browser clients don't send Origin
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host
	},
}

func extractIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// SetupRoutes configures HTTP routes
func SetupRoutes(hub *Hub, clientDir string) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/ws", hub.serveWS)
	r.HandleFunc("/api/lobbies", hub.serveLobbies).Methods(http.MethodGet)
	r.HandleFunc("/lobby/{code:[A-Za-z]{6}}/qr.png", hub.serveQR).Methods(http.MethodGet)

	// Serve static files with no-cache so browsers always revalidate
	fs := http.FileServer(http.Dir(clientDir))
	r.PathPrefix("/").Handler(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Cache-Control", "no-cache")
		// SPA: serve index.html for root and lobby code paths
		if req.URL.Path == "/" || lobbyPathRe.MatchString(req.URL.Path) {
			http.ServeFile(w, req, filepath.Join(clientDir, "index.html"))
			return
		}
		fs.ServeHTTP(w, req)
	}))

	return r
}

func (h *Hub) serveWS(w http.ResponseWriter, r *http.Request) {
	ip := extractIP(r)
	if !h.limits.Acquire(ip) {
		http.Error(w, "too many connections", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.limits.Release(ip)
		log.Warn("upgrade failed", "addr", ip, "error", err)
		return
	}

	client := NewClient(h, conn, ip)
	h.add(client)

	go client.WritePump()
	go client.ReadPump()
}

func (h *Hub) serveLobbies(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	if err := json.NewEncoder(w).Encode(h.lobbies.List()); err != nil {
		log.Warn("lobby list write failed", "error", err)
	}
}

// serveQR renders a QR code pointing at the lobby's join page
func (h *Hub) serveQR(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(mux.Vars(r)["code"])
	if h.lobbies.Get(code) == nil {
		http.NotFound(w, r)
		return
	}
	png, err := qrcode.Encode(h.joinURL(r, code), qrcode.Medium, qrSize)
	if err != nil {
		log.Error("qr encode failed", "lobby", code, "error", err)
		http.Error(w, "could not render qr code", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(png)
}

func (h *Hub) joinURL(r *http.Request, code string) string {
	if h.publicURL != "" {
		return strings.TrimRight(h.publicURL, "/") + "/" + code
	}
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s", scheme, r.Host, code)
}
