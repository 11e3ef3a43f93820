// ABOUTME: Tailscale (tsnet) listener setup for serving the API on a tailnet
// ABOUTME: Supports plain HTTP on :80, HTTPS with tailnet certs, or public Funnel

package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"tailscale.com/ipn/ipnstate"
	"tailscale.com/tsnet"

	"github.com/2389/deep-thoughts/internal/config"
)

// errNoTailnetKey is returned when neither config nor environment supplies an auth key.
var errNoTailnetKey = errors.New("no tailnet auth key for deep-thoughts: set tailscale.auth_key, DEEP_THOUGHTS_TS_AUTHKEY, or TS_AUTHKEY")

// tailnetStateDir picks where the node keeps its identity between restarts.
// Unset, it lives next to the database under $XDG_DATA_HOME (or ~/.local/share).
func tailnetStateDir(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("locating data directory for the tailnet node (set tailscale.state_dir): %w", err)
		}
		dataHome = filepath.Join(homeDir, ".local", "share")
	}
	return filepath.Join(dataHome, "deep-thoughts", "tailnet"), nil
}

// tailnetAuthKey prefers the config value, then DEEP_THOUGHTS_TS_AUTHKEY, then
// the TS_AUTHKEY variable tailscale tooling already understands.
func tailnetAuthKey(configured string) (string, error) {
	for _, key := range []string{configured, os.Getenv("DEEP_THOUGHTS_TS_AUTHKEY"), os.Getenv("TS_AUTHKEY")} {
		if key != "" {
			return key, nil
		}
	}
	return "", errNoTailnetKey
}

// tailnetNode builds, but does not start, the tsnet node described by cfg.
func tailnetNode(cfg config.TailscaleConfig) (*tsnet.Server, error) {
	stateDir, err := tailnetStateDir(cfg.StateDir)
	if err != nil {
		return nil, err
	}
	authKey, err := tailnetAuthKey(cfg.AuthKey)
	if err != nil {
		return nil, err
	}
	return &tsnet.Server{
		Hostname:  cfg.Hostname,
		Dir:       stateDir,
		Ephemeral: cfg.Ephemeral,
		AuthKey:   authKey,
	}, nil
}

// tailnetEndpoint is the GraphQL URL peers should use once the node is up.
// It falls back to the configured hostname before MagicDNS reports a name.
func tailnetEndpoint(cfg config.TailscaleConfig, status *ipnstate.Status) string {
	host := cfg.Hostname
	if status != nil && status.Self != nil && status.Self.DNSName != "" {
		host = strings.TrimSuffix(status.Self.DNSName, ".")
	}
	scheme := "http"
	if cfg.HTTPS || cfg.Funnel {
		scheme = "https"
	}
	return scheme + "://" + host + "/graphql"
}

func (s *Server) setupTailscaleListener(ctx context.Context) (net.Listener, error) {
	tsCfg := s.config.Tailscale

	node, err := tailnetNode(tsCfg)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(node.Dir, 0700); err != nil {
		return nil, fmt.Errorf("creating tailnet state dir: %w", err)
	}
	s.tsnetServer = node

	s.logger.Info("joining tailnet", "hostname", tsCfg.Hostname, "state_dir", node.Dir, "ephemeral", tsCfg.Ephemeral)
	status, err := node.Up(ctx)
	if err != nil {
		s.closeTailnet()
		return nil, fmt.Errorf("joining tailnet as %q: %w", tsCfg.Hostname, err)
	}
	if len(status.TailscaleIPs) == 0 {
		s.logger.Warn("tailnet node is up without an address; peers may not reach it yet")
	}
	s.logger.Info("graphql endpoint on tailnet", "url", tailnetEndpoint(tsCfg, status))

	var ln net.Listener
	switch {
	case tsCfg.Funnel:
		s.logger.Info("funnel enabled, the API is reachable from the public internet")
		ln, err = node.ListenFunnel("tcp", ":443")
	case tsCfg.HTTPS:
		ln, err = s.tailscaleTLSListener()
	default:
		ln, err = node.Listen("tcp", ":80")
	}
	if err != nil {
		s.closeTailnet()
		return nil, fmt.Errorf("listening on tailnet: %w", err)
	}
	return ln, nil
}

func (s *Server) closeTailnet() {
	if s.tsnetServer != nil {
		_ = s.tsnetServer.Close()
		s.tsnetServer = nil
	}
}

// tailscaleTLSListener serves HTTPS on :443 using certificates provisioned by the tailnet.
func (s *Server) tailscaleTLSListener() (net.Listener, error) {
	ln, err := s.tsnetServer.Listen("tcp", ":443")
	if err != nil {
		return nil, err
	}
	lc, err := s.tsnetServer.LocalClient()
	if err != nil {
		_ = ln.Close()
		return nil, fmt.Errorf("getting tailnet local client: %w", err)
	}
	return tls.NewListener(ln, &tls.Config{
		GetCertificate: lc.GetCertificate,
		MinVersion:     tls.VersionTLS12,
	}), nil
}
