package security

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync/atomic"
)

const maxURLLength = 2048

var (
	probeFragments = []string{
		"../", "..\\", ".env", ".git", ".ssh", "etc/passwd",
		"wp-admin", "phpmyadmin", "<script", "union select",
	}
	scannerAgents = []string{"sqlmap", "nmap", "nikto", "gobuster", "dirb"}
)

// Detector rejects probe traffic and resolves client addresses. Forwarding
// headers are believed only from private network peers.
type Detector struct {
	trusted  []netip.Prefix
	rejected atomic.Int64
}

func NewDetector() *Detector {
	d := &Detector{}
	for _, cidr := range []string{"127.0.0.0/8", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16", "::1/128"} {
		if err := d.Trust(cidr); err != nil {
			panic(err)
		}
	}
	return d
}

// Trust adds a proxy network whose forwarding headers are honoured.
func (d *Detector) Trust(cidr string) error {
	p, err := netip.ParsePrefix(cidr)
	if err != nil {
		return fmt.Errorf("trusted proxy %q: %w", cidr, err)
	}
	d.trusted = append(d.trusted, p.Masked())
	return nil
}

// Reason names why r looks hostile, or returns "" for ordinary traffic.
func Reason(r *http.Request) string {
	if r.Method == "TRACE" || r.Method == "TRACK" {
		return "method"
	}
	if len(r.URL.String()) > maxURLLength {
		return "url_length"
	}
	target := strings.ToLower(r.URL.Path + "?" + r.URL.RawQuery)
	for _, f := range probeFragments {
		if strings.Contains(target, f) {
			return "probe"
		}
	}
	agent := strings.ToLower(r.UserAgent())
	for _, a := range scannerAgents {
		if strings.Contains(agent, a) {
			return "scanner"
		}
	}
	return ""
}

// Middleware answers 400 to requests with a Reason.
func (d *Detector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reason := Reason(r)
		if reason == "" {
			next.ServeHTTP(w, r)
			return
		}
		d.rejected.Add(1)
		slog.WarnContext(r.Context(), "Rejected suspicious request",
			"component", "security",
			"reason", reason,
			"client_ip", d.ExtractClientIP(r),
			"method", r.Method,
			"path", r.URL.Path)
		http.Error(w, "Bad Request", http.StatusBadRequest)
	})
}

// Rejected counts requests refused by Middleware.
func (d *Detector) Rejected() int64 {
	return d.rejected.Load()
}

// ExtractClientIP returns the peer address, or the first X-Forwarded-For
// (then X-Real-IP) entry when the peer is a trusted proxy.
func (d *Detector) ExtractClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	peer, err := netip.ParseAddr(host)
	if err != nil || !d.trustedPeer(peer.Unmap()) {
		return host
	}
	if first, _, _ := strings.Cut(r.Header.Get("X-Forwarded-For"), ","); first != "" {
		if addr, err := netip.ParseAddr(strings.TrimSpace(first)); err == nil {
			return addr.String()
		}
	}
	if addr, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return addr.String()
	}
	return host
}

func (d *Detector) trustedPeer(addr netip.Addr) bool {
	for _, p := range d.trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
