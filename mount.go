package knolo

import (
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"

	kerrors "github.com/HiveForensics-AI/knolo-core/internal/errors"
	"github.com/HiveForensics-AI/knolo-core/internal/obslog"
	"github.com/HiveForensics-AI/knolo-core/internal/packfmt"
)

// Pack is a mounted, read-only view over a pack's bytes. It is safe to
// share across goroutines: mounting performs the only I/O, and every
// subsequent query is synchronous and non-mutating.
type Pack struct {
	inner *packfmt.Pack
}

// MountOption configures a single MountPack call.
type MountOption func(*mountConfig)

type mountConfig struct {
	logger *slog.Logger
}

// WithMountLogger attaches a structured logger for the mount step.
// Defaults to silent.
func WithMountLogger(logger *slog.Logger) MountOption {
	return func(c *mountConfig) { c.logger = logger }
}

// MountPack resolves src to bytes and parses the pack container. src
// may be a []byte buffer, a local file path, or an http(s) URL. This is
// the only place in the library that performs I/O; Query and
// MakeContextPatch are pure and synchronous once a Pack is mounted.
func MountPack(src any, opts ...MountOption) (*Pack, error) {
	cfg := mountConfig{logger: obslog.Silent()}
	for _, opt := range opts {
		opt(&cfg)
	}

	buf, err := resolveSource(src)
	if err != nil {
		cfg.logger.Error("mount_pack failed to resolve source", "error", err)
		return nil, err
	}
	inner, err := packfmt.Load(buf)
	if err != nil {
		cfg.logger.Error("mount_pack failed to parse pack", "error", err)
		return nil, err
	}
	cfg.logger.Info("mount_pack complete", "bytes", len(buf), "version", inner.Version, "blocks", inner.Stats.Blocks, "semantic", inner.HasSemantic())
	return &Pack{inner: inner}, nil
}

func resolveSource(src any) ([]byte, error) {
	switch v := src.(type) {
	case []byte:
		return v, nil
	case string:
		if isURL(v) {
			return fetchURL(v)
		}
		data, err := os.ReadFile(v)
		if err != nil {
			return nil, kerrors.Wrap(kerrors.InvalidInput, "src", err)
		}
		return data, nil
	default:
		return nil, kerrors.Invalidf("src", "expected []byte, file path, or URL string, got %T", src)
	}
}

func isURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https")
}

func fetchURL(u string) ([]byte, error) {
	resp, err := http.Get(u)
	if err != nil {
		return nil, kerrors.Wrap(kerrors.InvalidInput, "src", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, kerrors.Invalidf("src", "fetching %s: unexpected status %s", u, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, kerrors.Wrap(kerrors.InvalidInput, "src", err)
	}
	return body, nil
}

// HasSemantic reports whether pack carries a semantic section.
func HasSemantic(pack *Pack) bool {
	return pack.inner.HasSemantic()
}
