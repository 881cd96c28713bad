package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"fmt"
	"io"
	"net"
	"os"
	"sync"

	"github.com/gdamore/tcell/v2"
	gossh "github.com/gliderlabs/ssh"
	"github.com/sirupsen/logrus"
	xssh "golang.org/x/crypto/ssh"
)

const (
	maxSSHPlayers  = 16
	sshDefaultTerm = "xterm-256color"
)

// sessionTty implements tcell.Tty on top of an SSH session. Input is pumped
// through a channel so Drain can release a pending Read when the screen
// shuts down while the client is still connected. One engagement only.
type sessionTty struct {
	sess    gossh.Session
	in      chan []byte
	drained chan struct{}
	once    sync.Once
	pending []byte

	mu     sync.Mutex
	window gossh.Window
	cb     func()
}

func newSessionTty(s gossh.Session, pty gossh.Pty, winCh <-chan gossh.Window) *sessionTty {
	t := &sessionTty{
		sess:    s,
		in:      make(chan []byte, 16),
		drained: make(chan struct{}),
		window:  pty.Window,
	}
	go t.pump()
	if winCh != nil {
		go t.watchResize(winCh)
	}
	return t
}

func (t *sessionTty) watchResize(winCh <-chan gossh.Window) {
	for win := range winCh {
		t.mu.Lock()
		t.window = win
		cb := t.cb
		t.mu.Unlock()
		if cb != nil {
			cb()
		}
	}
}

func (t *sessionTty) pump() {
	defer close(t.in)
	for {
		buf := make([]byte, 256)
		n, err := t.sess.Read(buf)
		if n > 0 {
			select {
			case t.in <- buf[:n]:
			case <-t.drained:
				return
			}
		}
		if err != nil {
			return
		}
	}
}

func (t *sessionTty) Read(b []byte) (int, error) {
	if len(t.pending) == 0 {
		select {
		case chunk, ok := <-t.in:
			if !ok {
				return 0, io.EOF
			}
			t.pending = chunk
		case <-t.drained:
			return 0, io.EOF
		}
	}
	n := copy(b, t.pending)
	t.pending = t.pending[n:]
	return n, nil
}

func (t *sessionTty) Write(b []byte) (int, error) { return t.sess.Write(b) }

// the channel is already open and raw, and the handler closes it with an
// exit status once the screen is gone
func (t *sessionTty) Close() error { return nil }
func (t *sessionTty) Start() error { return nil }
func (t *sessionTty) Stop() error  { return nil }

func (t *sessionTty) Drain() error {
	t.once.Do(func() { close(t.drained) })
	return nil
}

func (t *sessionTty) WindowSize() (tcell.WindowSize, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return tcell.WindowSize{Width: t.window.Width, Height: t.window.Height}, nil
}

func (t *sessionTty) NotifyResize(cb func()) {
	t.mu.Lock()
	t.cb = cb
	t.mu.Unlock()
}

// SSHServer hosts the terminal frontend over SSH, one private run per
// connection
type SSHServer struct {
	srv       *gossh.Server
	cfg       WorldConfig
	db        *DB
	analytics *Analytics

	mu     sync.Mutex
	active int
}

// NewSSHServer builds a server listening on addr. The host key is read from
// hostKeyPath, or generated and written there.
func NewSSHServer(addr, hostKeyPath string, cfg WorldConfig, db *DB, analytics *Analytics) (*SSHServer, error) {
	signer, err := loadOrCreateHostKey(hostKeyPath)
	if err != nil {
		return nil, err
	}
	s := &SSHServer{cfg: cfg, db: db, analytics: analytics}
	s.srv = &gossh.Server{
		Addr:        addr,
		Handler:     s.handle,
		HostSigners: []gossh.Signer{signer},
		PtyCallback: func(gossh.Context, gossh.Pty) bool { return true },
	}
	return s, nil
}

// ListenAndServe serves until Shutdown; returns gossh.ErrServerClosed then
func (s *SSHServer) ListenAndServe() error {
	return s.srv.ListenAndServe()
}

// Serve accepts connections on l
func (s *SSHServer) Serve(l net.Listener) error {
	return s.srv.Serve(l)
}

func (s *SSHServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Active returns the number of connected players
func (s *SSHServer) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *SSHServer) acquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active >= maxSSHPlayers {
		return false
	}
	s.active++
	return true
}

func (s *SSHServer) release() {
	s.mu.Lock()
	s.active--
	s.mu.Unlock()
}

// handle runs for the lifetime of one SSH session
func (s *SSHServer) handle(sess gossh.Session) {
	log := Log.WithFields(logrus.Fields{
		"remote": sess.RemoteAddr().String(),
		"user":   sess.User(),
	})
	pty, winCh, ok := sess.Pty()
	if !ok {
		fmt.Fprintln(sess, "a terminal is required, connect with: ssh -t")
		sess.Exit(1)
		return
	}
	if !s.acquire() {
		fmt.Fprintln(sess, "server full, try again later")
		sess.Exit(1)
		return
	}
	defer s.release()

	ti, err := tcell.LookupTerminfo(pty.Term)
	if err != nil {
		ti, err = tcell.LookupTerminfo(sshDefaultTerm)
	}
	if err != nil {
		log.WithError(err).Warn("no terminfo for ssh session")
		fmt.Fprintln(sess, "unsupported terminal")
		sess.Exit(1)
		return
	}
	screen, err := tcell.NewTerminfoScreenFromTtyTerminfo(newSessionTty(sess, pty, winCh), ti)
	if err != nil {
		log.WithError(err).Warn("ssh screen setup failed")
		sess.Exit(1)
		return
	}

	id := "ssh-" + GenerateUUID()[:8]
	log.WithFields(logrus.Fields{"session": id, "term": pty.Term}).Info("ssh player connected")
	if err := playTerminal(sess.Context(), screen, id, s.cfg, s.db, s.analytics); err != nil {
		log.WithError(err).Warn("ssh session ended with error")
	}
	log.WithField("session", id).Info("ssh player left")
}

// loadOrCreateHostKey loads a PEM private key from path, or generates an
// ed25519 key and persists it there
func loadOrCreateHostKey(path string) (gossh.Signer, error) {
	if data, err := os.ReadFile(path); err == nil {
		if signer, err := xssh.ParsePrivateKey(data); err == nil {
			return signer, nil
		}
		Log.WithField("path", path).Warn("unreadable host key, generating a new one")
	}

	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate host key: %w", err)
	}
	signer, err := xssh.NewSignerFromKey(key)
	if err != nil {
		return nil, fmt.Errorf("host key signer: %w", err)
	}
	block, err := xssh.MarshalPrivateKey(key, "voidecho host key")
	if err != nil {
		return nil, fmt.Errorf("marshal host key: %w", err)
	}
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0o600); err != nil {
		Log.WithError(err).WithField("path", path).Warn("could not persist host key")
	} else {
		Log.WithField("path", path).Info("generated ssh host key")
	}
	return signer, nil
}
