package bus

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

const SockName = "control.sock"
const PidName = "hyprlingo.pid"
const ProtoVer = "0.2"

// Commands understood by the daemon, one byte plus newline.
const (
	CmdToggle  byte = 't'
	CmdStatus  byte = 's'
	CmdStop    byte = 'x'
	CmdVersion byte = 'v'
	CmdQuit    byte = 'q'
)

// RuntimeDirEnv overrides where the socket and pid file live.
const RuntimeDirEnv = "HYPRLINGO_RUNTIME_DIR"

const dialTimeout = 2 * time.Second

// ~/.cache/hyprlingo unless HYPRLINGO_RUNTIME_DIR is set
func Dir() (string, error) {
	if dir := os.Getenv(RuntimeDirEnv); dir != "" {
		return dir, nil
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "hyprlingo"), nil
}

func SockPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, SockName), nil
}

func PidPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, PidName), nil
}

func Listen() (net.Listener, error) {
	sp, err := SockPath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(sp), 0o700); err != nil {
		return nil, err
	}
	_ = os.Remove(sp) // stale socket from last run
	return net.Listen("unix", sp)
}

func Dial() (net.Conn, error) {
	sp, err := SockPath()
	if err != nil {
		return nil, err
	}
	return net.DialTimeout("unix", sp, dialTimeout)
}

// SendCommand sends one command and returns the daemon's reply line without
// the trailing newline.
func SendCommand(cmd byte) (string, error) {
	c, err := Dial()
	if err != nil {
		return "", fmt.Errorf("daemon not reachable (is `hyprlingo serve` running?): %w", err)
	}
	defer c.Close()

	if _, err := c.Write([]byte{cmd, '\n'}); err != nil {
		return "", err
	}
	resp, err := bufio.NewReader(c).ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(resp, "\n"), nil
}

// ParseReply splits "KIND k=v k=v" into its kind and fields. Values may not
// contain spaces.
func ParseReply(line string) (string, map[string]string) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return "", nil
	}
	fields := make(map[string]string, len(parts)-1)
	for _, p := range parts[1:] {
		if k, v, ok := strings.Cut(p, "="); ok {
			fields[k] = v
		}
	}
	return parts[0], fields
}

func CheckExistingDaemon() error {
	pidPath, err := PidPath()
	if err != nil {
		return err
	}

	pidData, err := os.ReadFile(pidPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(pidData)))
	if err != nil {
		return nil // invalid pid file, assume stale
	}
	if pid == os.Getpid() {
		return nil
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return nil
	}
	// signal 0 only checks that the process exists
	if err := proc.Signal(syscall.Signal(0)); err != nil {
		return nil
	}

	return fmt.Errorf("daemon already running with PID %d", pid)
}

func CreatePidFile() error {
	pidPath, err := PidPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(pidPath), 0o700); err != nil {
		return err
	}
	return os.WriteFile(pidPath, []byte(strconv.Itoa(os.Getpid())), 0o600)
}

func RemovePidFile() error {
	pidPath, err := PidPath()
	if err != nil {
		return err
	}
	return os.Remove(pidPath)
}
