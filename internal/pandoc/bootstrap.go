package pandoc

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/lequan310/file-mcp/internal/workspace"
)

// pandocVersion is the release fetched when no pandoc is installed.
const pandocVersion = "3.1.13"

const maxDownloadSize = 256 << 20 // 256 MB

// BootstrapConfig controls how the pandoc binary is located at startup.
type BootstrapConfig struct {
	// BinaryPath, when set, is used as-is if it exists.
	BinaryPath string
	// DataDir is where a downloaded pandoc lives (and is installed to).
	DataDir string
	// AutoDownload enables the best-effort release download.
	AutoDownload bool
	// DownloadURL overrides the release tarball URL (mainly for tests).
	DownloadURL string
}

// EnsureInstalled locates a usable pandoc binary and returns the path (or
// bare name) to invoke. It never fails: when nothing local is found and the
// download does not succeed, it falls back to "pandoc" and relies on a
// system-installed engine, logging what happened.
func EnsureInstalled(ctx context.Context, cfg BootstrapConfig, logger *slog.Logger) string {
	if cfg.BinaryPath != "" {
		if _, err := os.Stat(cfg.BinaryPath); err == nil {
			logger.Info("using configured pandoc binary", slog.String("path", cfg.BinaryPath))
			return cfg.BinaryPath
		}
		logger.Warn("configured pandoc binary not found, falling back",
			slog.String("path", cfg.BinaryPath))
	}

	local := localBinaryPath(cfg.DataDir)
	if cfg.DataDir != "" {
		if _, err := os.Stat(local); err == nil {
			logger.Info("using existing pandoc binary", slog.String("path", local))
			return local
		}
	}

	if path, err := exec.LookPath("pandoc"); err == nil {
		logger.Info("using system pandoc", slog.String("path", path))
		return "pandoc"
	}

	if cfg.AutoDownload && cfg.DataDir != "" {
		url := cfg.DownloadURL
		if url == "" {
			url = releaseURL(runtime.GOOS, runtime.GOARCH)
		}
		if url == "" {
			logger.Warn("no pandoc release available for this platform, relying on system pandoc",
				slog.String("os", runtime.GOOS), slog.String("arch", runtime.GOARCH))
			return "pandoc"
		}

		logger.Info("pandoc not found, downloading", slog.String("url", url), slog.String("dir", cfg.DataDir))
		if err := download(ctx, url, local); err != nil {
			logger.Warn("pandoc download failed, relying on system pandoc",
				slog.String("error", err.Error()))
			return "pandoc"
		}
		logger.Info("pandoc downloaded successfully", slog.String("path", local))
		return local
	}

	logger.Warn("pandoc not found locally or on PATH; conversions will fail until it is installed")
	return "pandoc"
}

func localBinaryPath(dataDir string) string {
	name := "pandoc"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(dataDir, name)
}

// releaseURL builds the official release tarball URL for the platform, or
// "" when no prebuilt archive exists.
func releaseURL(goos, goarch string) string {
	var suffix string
	switch {
	case goos == "linux" && goarch == "amd64":
		suffix = "linux-amd64.tar.gz"
	case goos == "linux" && goarch == "arm64":
		suffix = "linux-arm64.tar.gz"
	case goos == "darwin" && goarch == "amd64":
		suffix = "x86_64-macOS.zip"
	case goos == "darwin" && goarch == "arm64":
		suffix = "arm64-macOS.zip"
	default:
		return ""
	}
	// Only tarballs are handled; the macOS zip layout is left to a system
	// install.
	if filepath.Ext(suffix) == ".zip" {
		return ""
	}
	return fmt.Sprintf("https://github.com/jgm/pandoc/releases/download/%s/pandoc-%s-%s",
		pandocVersion, pandocVersion, suffix)
}

// download fetches a release tarball and extracts the pandoc binary to dst.
func download(ctx context.Context, url, dst string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	client := &http.Client{Timeout: 5 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed: HTTP %d", resp.StatusCode)
	}

	return extractPandoc(io.LimitReader(resp.Body, maxDownloadSize), dst)
}

// extractPandoc scans a gzipped tarball for the pandoc binary and writes it
// atomically to dst with execute permission.
func extractPandoc(r io.Reader, dst string) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("open gzip: %w", err)
	}
	defer func() { _ = gz.Close() }()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return fmt.Errorf("archive does not contain a pandoc binary")
		}
		if err != nil {
			return fmt.Errorf("read archive: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg || filepath.Base(hdr.Name) != "pandoc" {
			continue
		}
		if err := workspace.WriteAtomic(dst, tr, 0o755); err != nil {
			return err
		}
		return nil
	}
}
