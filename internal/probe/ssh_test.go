package probe

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/iamrohitkandpal/Astra-A-Weapon/internal/model"
)

// startSSHServer starts a minimal SSH server that accepts
// unauthenticated connections and returns its address.
func startSSHServer(t *testing.T, version string) string {
	t.Helper()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate host key: %v", err)
	}
	signer, err := ssh.NewSignerFromKey(priv)
	if err != nil {
		t.Fatalf("failed to create signer: %v", err)
	}

	config := &ssh.ServerConfig{NoClientAuth: true}
	if version != "" {
		config.ServerVersion = version
	}
	config.AddHostKey(signer)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				sc, chans, reqs, err := ssh.NewServerConn(c, config)
				if err != nil {
					c.Close()
					return
				}
				go ssh.DiscardRequests(reqs)
				for ch := range chans {
					_ = ch.Reject(ssh.Prohibited, "test server")
				}
				sc.Close()
			}(conn)
		}
	}()

	return ln.Addr().String()
}

// TestNewSSHProber tests prober construction and options.
func TestNewSSHProber(t *testing.T) {
	t.Parallel()

	t.Run("creates prober with defaults", func(t *testing.T) {
		t.Parallel()

		p := NewSSHProber()

		if p.Protocol() != "ssh" {
			t.Errorf("expected protocol 'ssh', got %q", p.Protocol())
		}
		if p.DefaultPort() != 22 {
			t.Errorf("expected port 22, got %d", p.DefaultPort())
		}
	})

	t.Run("options override defaults", func(t *testing.T) {
		t.Parallel()

		p := NewSSHProber(WithSSHPort(2222), WithSSHTimeout(time.Second))

		if p.port != 2222 {
			t.Errorf("expected port 2222, got %d", p.port)
		}
		if p.timeout != time.Second {
			t.Errorf("expected timeout 1s, got %v", p.timeout)
		}
	})
}

// TestSSHProberProbe tests fingerprinting against a local SSH server.
func TestSSHProberProbe(t *testing.T) {
	t.Parallel()

	t.Run("fingerprints an ssh server", func(t *testing.T) {
		t.Parallel()

		addr := startSSHServer(t, "SSH-2.0-OpenSSH_9.6")

		p := NewSSHProber(WithSSHTimeout(3 * time.Second))
		result, err := p.Probe(context.Background(), addr)
		if err != nil {
			t.Fatalf("failed to probe: %v", err)
		}

		if !result.Detected {
			t.Fatal("expected SSH service to be detected")
		}
		if result.Banner != "SSH-2.0-OpenSSH_9.6" {
			t.Errorf("expected banner 'SSH-2.0-OpenSSH_9.6', got %q", result.Banner)
		}
		if got := result.Detail("software"); got != "OpenSSH_9.6" {
			t.Errorf("expected software 'OpenSSH_9.6', got %q", got)
		}
		if got := result.Detail("host_key_type"); got != "ssh-ed25519" {
			t.Errorf("expected host key type 'ssh-ed25519', got %q", got)
		}
		if got := result.Detail("fingerprint"); !strings.HasPrefix(got, "SHA256:") {
			t.Errorf("expected SHA256 fingerprint, got %q", got)
		}
		if got := result.Detail("accepts_unauthenticated"); got != "true" {
			t.Errorf("expected accepts_unauthenticated 'true', got %q", got)
		}

		if len(result.Findings) != 1 {
			t.Fatalf("expected 1 finding, got %d", len(result.Findings))
		}
		f := result.Findings[0]
		if f.Type != "ssh_detected" {
			t.Errorf("expected finding type 'ssh_detected', got %q", f.Type)
		}
		if f.Severity != model.SeverityInfo {
			t.Errorf("expected info severity, got %v", f.Severity)
		}
	})

	t.Run("non-ssh service is an omission", func(t *testing.T) {
		t.Parallel()

		port := startTCPListener(t, "HTTP/1.1 400 Bad Request\r\n")

		p := NewSSHProber(WithSSHTimeout(2 * time.Second))
		result, err := p.Probe(context.Background(), net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
		if err != nil {
			t.Fatalf("failed to probe: %v", err)
		}

		if result.Detected {
			t.Error("expected no detection for non-ssh service")
		}
	})

	t.Run("closed port is an omission", func(t *testing.T) {
		t.Parallel()

		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("failed to listen: %v", err)
		}
		addr := ln.Addr().String()
		ln.Close()

		p := NewSSHProber(WithSSHTimeout(2 * time.Second))
		result, err := p.Probe(context.Background(), addr)
		if err != nil {
			t.Fatalf("failed to probe: %v", err)
		}

		if result.Detected {
			t.Error("expected no detection on closed port")
		}
	})

	t.Run("empty target is an error", func(t *testing.T) {
		t.Parallel()

		p := NewSSHProber()
		if _, err := p.Probe(context.Background(), ""); err == nil {
			t.Error("expected error for empty target")
		}
	})
}
