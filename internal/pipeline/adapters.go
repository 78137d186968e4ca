package pipeline

import (
	"github.com/opmodel/ship/internal/buildctx"
	"github.com/opmodel/ship/internal/config"
	"github.com/opmodel/ship/internal/kubernetes"
	"github.com/opmodel/ship/internal/release"
	"github.com/opmodel/ship/internal/release/httpapi"
	"github.com/opmodel/ship/internal/release/kube"
)

// EnvCredentials loads the feed and release API credentials named in the
// configuration from the environment.
func EnvCredentials(bc *buildctx.BuildContext) error {
	cfg := bc.Config()
	bc.Credentials().LoadEnv(cfg.Upload.CredentialID, cfg.Release.CredentialID)
	return nil
}

// DefaultCoordinator uploads over HTTP and registers packages with the
// configured release backend.
func DefaultCoordinator(bc *buildctx.BuildContext) (*release.Coordinator, error) {
	cfg := bc.Config()

	feed, err := bc.Credentials().Get(cfg.Upload.CredentialID)
	if err != nil {
		return nil, err
	}
	uploader := httpapi.NewUploader(cfg.Upload.Endpoint, feed)

	var releases release.ReleaseAPI
	switch cfg.Release.Backend {
	case config.BackendKubernetes:
		client, err := kubernetes.NewClient(kubernetes.ClientOptions{
			Kubeconfig: cfg.Release.Kubeconfig,
			Context:    cfg.Release.Context,
		})
		if err != nil {
			uploader.Close() //nolint:errcheck // best effort on the error path
			return nil, err
		}
		releases = kube.NewRegistry(client, cfg.Release.Namespace)
	default:
		key, err := bc.Credentials().Get(cfg.Release.CredentialID)
		if err != nil {
			uploader.Close() //nolint:errcheck // best effort on the error path
			return nil, err
		}
		releases = httpapi.NewClient(cfg.Release.URL, key.Password)
	}

	return &release.Coordinator{Uploader: uploader, Releases: releases}, nil
}
