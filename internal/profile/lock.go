package profile

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
)

// lockFilePermissions matches the standard config file permissions.
const lockFilePermissions = 0o644

// lockDirPermissions matches the standard directory permissions.
const lockDirPermissions = 0o755

// Lock is a held single-instance lock for one profile. Release must be
// called to unlock and clean up.
type Lock struct {
	file     *os.File
	listener net.Listener
	path     string
	sockPath string
}

// skipLock reports whether profiles named slug are exempt from the
// single-instance policy (spec §4.4 "dev and test profiles may run
// concurrently with other Peek instances").
func skipLock(slug string) bool {
	return slug == devSlug || slug == "test"
}

// Acquire takes the single-instance lock for a profile and starts listening
// on its relay socket for secondary-launch URLs. Dev/test profiles always
// succeed without locking (Lock.listener is nil in that case, so Accept
// returns at once, and a Relay to that profile finds no socket and returns
// an error). Returns an error if another instance already holds the lock.
//
// Adapted from the teacher's flock-based pidfile: the intent there was
// "only one sync daemon at a time," expressed here as "only one Peek
// instance per profile," with a Unix socket standing in for the SIGHUP
// channel — replacing "wake up and re-scan" with "forward this URL."
func Acquire(userDataRoot, slug string) (*Lock, error) {
	if skipLock(slug) {
		return &Lock{}, nil
	}

	path := LockPath(userDataRoot, slug)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, lockDirPermissions); err != nil {
		return nil, fmt.Errorf("profile: creating lock directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, lockFilePermissions)
	if err != nil {
		return nil, fmt.Errorf("profile: opening lock file: %w", err)
	}

	if err := flockExclusive(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("profile: another instance is already running for %q", slug)
	}

	if err := f.Truncate(0); err != nil {
		f.Close()
		return nil, fmt.Errorf("profile: truncating lock file: %w", err)
	}
	if _, err := fmt.Fprintf(f, "%d\n", os.Getpid()); err != nil {
		f.Close()
		return nil, fmt.Errorf("profile: writing lock file: %w", err)
	}

	sockPath := SocketPath(userDataRoot, slug)
	os.Remove(sockPath)
	ln, err := net.Listen("unix", sockPath)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("profile: listening on relay socket: %w", err)
	}

	return &Lock{file: f, listener: ln, path: path, sockPath: sockPath}, nil
}

// Release unlocks and removes the lock file and relay socket.
func (l *Lock) Release() {
	if l.listener != nil {
		l.listener.Close()
		os.Remove(l.sockPath)
	}
	if l.file != nil {
		os.Remove(l.path)
		l.file.Close()
	}
}

// Accept blocks for the next relayed URL from a secondary launch, calling
// handle with it. Returns when the listener closes (Release was called).
// Returns immediately on a dev/test Lock (listener is nil).
func (l *Lock) Accept(handle func(url string)) {
	if l.listener == nil {
		return
	}

	for {
		conn, err := l.listener.Accept()
		if err != nil {
			return
		}

		buf := make([]byte, 4096)
		n, _ := conn.Read(buf)
		conn.Close()

		if n > 0 {
			handle(string(buf[:n]))
		}
	}
}

// Relay forwards url to a running primary instance for slug. Returns an
// error if no primary instance is listening (the caller should then try to
// become the primary itself).
func Relay(userDataRoot, slug, url string) error {
	sockPath := SocketPath(userDataRoot, slug)

	conn, err := net.Dial("unix", sockPath)
	if err != nil {
		return fmt.Errorf("profile: no running instance to relay to: %w", err)
	}
	defer conn.Close()

	_, err = conn.Write([]byte(url))
	return err
}
