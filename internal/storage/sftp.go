package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// SFTPConfig describes a remote host that stores gallery images and is
// fronted by a web server at PublicURL.
type SFTPConfig struct {
	Addr      string
	User      string
	Password  string
	HostKey   string // authorized_keys format; empty skips host key verification
	Dir       string
	PublicURL string
}

// SFTPStore keeps blobs on a remote host over SFTP.
type SFTPStore struct {
	client    *sftp.Client
	conn      *ssh.Client
	dir       string
	publicURL string
}

// NewSFTPStore wraps an established SFTP client.
func NewSFTPStore(client *sftp.Client, dir, publicURL string) *SFTPStore {
	return &SFTPStore{
		client:    client,
		dir:       dir,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

// DialSFTP opens an SSH connection and an SFTP session on top of it.
func DialSFTP(cfg SFTPConfig) (*SFTPStore, error) {
	hostKeyCallback := ssh.InsecureIgnoreHostKey()
	if cfg.HostKey != "" {
		key, _, _, _, err := ssh.ParseAuthorizedKey([]byte(cfg.HostKey))
		if err != nil {
			return nil, fmt.Errorf("parse sftp host key: %w", err)
		}
		hostKeyCallback = ssh.FixedHostKey(key)
	}

	conn, err := ssh.Dial("tcp", cfg.Addr, &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            []ssh.AuthMethod{ssh.Password(cfg.Password)},
		HostKeyCallback: hostKeyCallback,
		Timeout:         10 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("dial ssh %s: %w", cfg.Addr, err)
	}

	client, err := sftp.NewClient(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open sftp session: %w", err)
	}

	s := NewSFTPStore(client, cfg.Dir, cfg.PublicURL)
	s.conn = conn
	return s, nil
}

func (s *SFTPStore) Save(ctx context.Context, key string, r io.Reader) error {
	if err := s.client.MkdirAll(s.dir); err != nil {
		return fmt.Errorf("create remote dir: %w", err)
	}
	f, err := s.client.OpenFile(s.path(key), os.O_WRONLY|os.O_CREATE|os.O_EXCL)
	if err != nil {
		return fmt.Errorf("create remote blob: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("write remote blob: %w", err)
	}
	return f.Close()
}

func (s *SFTPStore) Remove(ctx context.Context, key string) error {
	return s.client.Remove(s.path(key))
}

func (s *SFTPStore) URL(key string) string {
	return s.publicURL + "/" + key
}

// Close ends the SFTP session and, when DialSFTP opened it, the SSH connection.
func (s *SFTPStore) Close() error {
	err := s.client.Close()
	if s.conn != nil {
		if cerr := s.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func (s *SFTPStore) path(key string) string {
	return path.Join(s.dir, path.Base(key))
}
