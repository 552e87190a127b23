package deployment

import (
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/ssh"
)

// defaultKeyPath is where the deploy key is looked for when none is given
const defaultKeyPath = "deploy.pem"

// ArtifactPublisher uploads the report artifact to a remote host over
// SSH/SCP. The destination is a deploy URL of the form user@host:path.
type ArtifactPublisher struct {
	keyPath   string
	user      string
	host      string
	remoteDir string
	client    *ssh.Client
}

// NewArtifactPublisher parses the deploy URL and returns a publisher for it
func NewArtifactPublisher(deployURL string) (*ArtifactPublisher, error) {
	user, host, remoteDir, err := parseDeployURL(deployURL)
	if err != nil {
		return nil, err
	}

	return &ArtifactPublisher{
		keyPath:   defaultKeyPath,
		user:      user,
		host:      host,
		remoteDir: remoteDir,
	}, nil
}

// parseDeployURL splits a deploy URL of the form user@host:path
func parseDeployURL(deployURL string) (user, host, remoteDir string, err error) {
	if deployURL == "" {
		return "", "", "", fmt.Errorf("deploy URL is empty")
	}

	parts := strings.SplitN(deployURL, "@", 2)
	if len(parts) != 2 || parts[0] == "" {
		return "", "", "", fmt.Errorf("invalid deploy URL format: expected user@host:path")
	}
	user = parts[0]

	hostParts := strings.SplitN(parts[1], ":", 2)
	if len(hostParts) != 2 || hostParts[0] == "" || hostParts[1] == "" {
		return "", "", "", fmt.Errorf("invalid deploy URL format: expected user@host:path")
	}

	return user, hostParts[0], hostParts[1], nil
}

// Connect establishes the SSH connection using the deploy key
func (p *ArtifactPublisher) Connect() error {
	if p.client != nil {
		return nil
	}

	keyData, err := os.ReadFile(p.keyPath)
	if err != nil {
		return fmt.Errorf("failed to read SSH key file %s: %w", p.keyPath, err)
	}

	signer, err := ssh.ParsePrivateKey(keyData)
	if err != nil {
		return fmt.Errorf("failed to parse SSH private key: %w", err)
	}

	config := &ssh.ClientConfig{
		User: p.user,
		Auth: []ssh.AuthMethod{
			ssh.PublicKeys(signer),
		},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         30 * time.Second,
	}

	p.client, err = ssh.Dial("tcp", net.JoinHostPort(p.host, "22"), config)
	if err != nil {
		return fmt.Errorf("failed to connect to SSH server %s: %w", p.host, err)
	}

	log.Info().
		Str("host", p.host).
		Str("user", p.user).
		Msg("Connected to deploy host")

	return nil
}

// Disconnect closes the SSH connection
func (p *ArtifactPublisher) Disconnect() error {
	if p.client == nil {
		return nil
	}
	err := p.client.Close()
	p.client = nil
	return err
}

// PublishArtifact uploads localPath into the remote directory via SCP,
// keeping its base filename.
func (p *ArtifactPublisher) PublishArtifact(localPath string) error {
	if err := p.Connect(); err != nil {
		return err
	}

	localFile, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open artifact %s: %w", localPath, err)
	}
	defer localFile.Close()

	fileInfo, err := localFile.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat artifact: %w", err)
	}

	session, err := p.client.NewSession()
	if err != nil {
		return fmt.Errorf("failed to create SSH session: %w", err)
	}
	defer session.Close()

	filename := filepath.Base(localPath)
	remotePath := filepath.Join(p.remoteDir, filename)

	stdin, err := session.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to get stdin pipe: %w", err)
	}

	if err := session.Start(fmt.Sprintf("scp -t %s", remotePath)); err != nil {
		return fmt.Errorf("failed to start SCP session: %w", err)
	}

	// SCP sink protocol: header, content, then a zero byte
	header := fmt.Sprintf("C0644 %d %s\n", fileInfo.Size(), filename)
	if _, err := stdin.Write([]byte(header)); err != nil {
		return fmt.Errorf("failed to write SCP header: %w", err)
	}
	if _, err := io.Copy(stdin, localFile); err != nil {
		return fmt.Errorf("failed to copy artifact content: %w", err)
	}
	if _, err := stdin.Write([]byte{0}); err != nil {
		return fmt.Errorf("failed to write SCP end marker: %w", err)
	}

	stdin.Close()
	if err := session.Wait(); err != nil {
		return fmt.Errorf("SCP session failed: %w", err)
	}

	log.Info().
		Str("local_path", localPath).
		Str("remote_path", remotePath).
		Int64("size", fileInfo.Size()).
		Msg("Published artifact")

	return nil
}
