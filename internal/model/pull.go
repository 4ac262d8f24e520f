package model

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/cozy-creator/hf-hub/hub"
	"go.uber.org/zap"
)

// Puller fetches model snapshots into the local Hugging Face cache, for
// operators who serve the model from their own inference endpoint.
type Puller struct {
	client *hub.Client
	logger *zap.Logger
}

func NewPuller(logger *zap.Logger) *Puller {
	return &Puller{
		client: hub.DefaultClient(),
		logger: logger,
	}
}

// CacheDir is the root of the local Hugging Face cache.
func (p *Puller) CacheDir() string {
	return p.client.CacheDir
}

// Path returns where the snapshot of repoID lives in the cache.
func (p *Puller) Path(repoID string) string {
	return filepath.Join(p.client.CacheDir, repoFolderName(repoID, hub.ModelRepoType))
}

// Pull downloads the snapshot of repoID unless it is already cached.
func (p *Puller) Pull(ctx context.Context, repoID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if p.IsPulled(repoID) {
		p.logger.Info("model already pulled", zap.String("model", repoID))
		return p.Path(repoID), nil
	}

	p.logger.Info("pulling model", zap.String("model", repoID), zap.String("cache_dir", p.client.CacheDir))

	params := hub.DownloadParams{
		Repo: &hub.Repo{Id: repoID, Type: hub.ModelRepoType},
	}
	if _, err := p.client.Download(&params); err != nil {
		return "", err
	}

	return p.Path(repoID), nil
}

// IsPulled reports whether the cache holds a complete snapshot of the main
// revision of repoID.
func (p *Puller) IsPulled(repoID string) bool {
	folder := p.Path(repoID)

	commit, err := os.ReadFile(filepath.Join(folder, "refs", "main"))
	if err != nil {
		return false
	}

	snapshot := filepath.Join(folder, "snapshots", strings.TrimSpace(string(commit)))
	if _, err := os.Stat(snapshot); err != nil {
		return false
	}

	return true
}

// repoFolderName converts "org/name" to "models--org--name".
func repoFolderName(repoID, repoType string) string {
	parts := append([]string{repoType + "s"}, strings.Split(repoID, "/")...)
	return strings.Join(parts, "--")
}
