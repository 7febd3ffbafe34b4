package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	shell "github.com/ipfs/go-ipfs-api"
	"github.com/ruteri/synbio-provenance-registry/interfaces"
)

// DefaultIPFSRoot is the MFS directory snapshots are written under.
const DefaultIPFSRoot = "/synbio-registry"

// IPFSBackend stores content in the mutable file system of an IPFS node,
// at <root>/<content type>/<content id>. Entries stay pinned by MFS.
type IPFSBackend struct {
	shell       *shell.Shell
	apiAddr     string
	root        string
	log         *slog.Logger
	locationURI string
}

// NewIPFSBackend connects to the IPFS HTTP API at host:port.
func NewIPFSBackend(host, port, root string, timeout time.Duration, log *slog.Logger) (*IPFSBackend, error) {
	if host == "" {
		return nil, fmt.Errorf("%w: missing IPFS host", interfaces.ErrInvalidLocationURI)
	}
	if root == "" || root == "/" {
		root = DefaultIPFSRoot
	}
	root = "/" + strings.Trim(root, "/")

	apiAddr := host + ":" + port
	sh := shell.NewShell(apiAddr)
	if timeout > 0 {
		sh.SetTimeout(timeout)
	}

	return &IPFSBackend{
		shell:       sh,
		apiAddr:     apiAddr,
		root:        root,
		log:         log,
		locationURI: fmt.Sprintf("ipfs://%s%s?timeout=%s", apiAddr, root, timeout),
	}, nil
}

// Fetch reads the MFS entry for id.
func (b *IPFSBackend) Fetch(ctx context.Context, id interfaces.ContentID, contentType interfaces.ContentType) ([]byte, error) {
	if !b.shell.IsUp() {
		b.log.Warn("IPFS node unavailable", "api", b.apiAddr)
		return nil, interfaces.ErrBackendUnavailable
	}

	p := b.pathFor(id, contentType)
	reader, err := b.shell.FilesRead(ctx, p)
	if err != nil {
		if strings.Contains(err.Error(), "does not exist") {
			return nil, interfaces.ErrContentNotFound
		}
		return nil, fmt.Errorf("failed to read %s from IPFS: %w", p, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read data from IPFS: %w", err)
	}

	b.log.Debug("Fetched content from IPFS", "path", p, "size", len(data))
	return data, nil
}

// Store writes the content to MFS under its sha256 id.
func (b *IPFSBackend) Store(ctx context.Context, data []byte, contentType interfaces.ContentType) (interfaces.ContentID, error) {
	id := interfaces.ComputeID(data)
	if !b.shell.IsUp() {
		return id, interfaces.ErrBackendUnavailable
	}

	p := b.pathFor(id, contentType)
	err := b.shell.FilesWrite(ctx, p, bytes.NewReader(data),
		shell.FilesWrite.Create(true),
		shell.FilesWrite.Parents(true),
		shell.FilesWrite.Truncate(true),
	)
	if err != nil {
		return id, fmt.Errorf("failed to write %s to IPFS: %w", p, err)
	}

	b.log.Debug("Stored content in IPFS", "path", p, "contentID", id.String())
	return id, nil
}

// Available reports whether the node answers.
func (b *IPFSBackend) Available(ctx context.Context) bool {
	return b.shell.IsUp()
}

// Name returns an identifier for logging.
func (b *IPFSBackend) Name() string {
	return "ipfs-" + b.apiAddr
}

// LocationURI returns the ipfs:// URI of the backend.
func (b *IPFSBackend) LocationURI() string {
	return b.locationURI
}

func (b *IPFSBackend) pathFor(id interfaces.ContentID, contentType interfaces.ContentType) string {
	return path.Join(b.root, contentType.String(), id.String())
}
