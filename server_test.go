package aesdsock

import (
	"bufio"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/aesdsock/aesdsock/internal/config"
)

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find a free port: %v", err)
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func TestServerFileStoreRoundTrip(t *testing.T) {
	cfg := config.Default()
	cfg.Port = freePort(t)
	cfg.FilePath = filepath.Join(t.TempDir(), "aesdsocketdata")

	s, err := NewServer(cfg, nil)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	go s.Serve()
	defer s.Shutdown()

	time.Sleep(20 * time.Millisecond)

	conn, err := net.Dial("tcp", s.Addr())
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("hello\n")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if line != "hello\n" {
		t.Errorf("echoed = %q, want %q", line, "hello\n")
	}

	snap := s.Metrics().Snapshot()
	if snap.WriteOps != 1 {
		t.Errorf("WriteOps = %d, want 1", snap.WriteOps)
	}
}

func TestServerDeviceStoreSeek(t *testing.T) {
	cfg := config.Default()
	cfg.Port = freePort(t)
	cfg.Store = config.StoreDevice

	s, err := NewServer(cfg, nil)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	go s.Serve()
	defer s.Shutdown()

	time.Sleep(20 * time.Millisecond)

	send := func(msg string) string {
		conn, err := net.Dial("tcp", s.Addr())
		if err != nil {
			t.Fatalf("dial failed: %v", err)
		}
		defer conn.Close()
		conn.Write([]byte(msg))
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		buf := make([]byte, 4096)
		n, _ := conn.Read(buf)
		return string(buf[:n])
	}

	send("A\n")
	send("B\n")
	got := send("AESDCHAR_IOCSEEKTO:0,0\n")
	if got != "A\nB\n" {
		t.Errorf("seek playback = %q, want %q", got, "A\nB\n")
	}
}

// TestServerRealDeviceStoreWiring confirms NewServer actually reaches
// store.NewRealDeviceStore for config.StoreRealDevice instead of
// silently falling back to the simulated device. Test environments
// have no real /dev/aesdchar node, so this only exercises the wiring
// and the resulting "not a character device"/missing-path error, not
// a live kernel module.
func TestServerRealDeviceStoreWiring(t *testing.T) {
	cfg := config.Default()
	cfg.Port = freePort(t)
	cfg.Store = config.StoreRealDevice
	cfg.DevicePath = filepath.Join(t.TempDir(), "no-such-aesdchar")

	if _, err := NewServer(cfg, nil); err == nil {
		t.Fatal("expected NewServer to fail opening a nonexistent device path")
	}
}
