// Package kubernetes provides the Kubernetes client used by the release
// registry backend.
package kubernetes

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/opmodel/ship/internal/config"
	oerrors "github.com/opmodel/ship/internal/errors"
	"github.com/opmodel/ship/internal/version"
)

// DefaultRequestTimeout bounds every call against the API server.
const DefaultRequestTimeout = 30 * time.Second

// ClientOptions configures Kubernetes client creation.
type ClientOptions struct {
	// Kubeconfig is the path to the kubeconfig file.
	// Precedence: this field > SHIP_KUBECONFIG env > KUBECONFIG env > ~/.kube/config
	Kubeconfig string

	// Context selects a kubeconfig context. Empty uses current-context.
	Context string

	// Timeout overrides DefaultRequestTimeout when positive.
	Timeout time.Duration
}

// Client wraps the Kubernetes API clients.
type Client struct {
	// Clientset reads and writes the release registry Secrets.
	Clientset kubernetes.Interface

	// RestConfig is the underlying REST configuration.
	RestConfig *rest.Config

	// Host is the API server the client talks to.
	Host string
}

// NewClient creates a Kubernetes client with the given options. No request
// is made until the clientset is used.
func NewClient(opts ClientOptions) (*Client, error) {
	restConfig, err := buildRestConfig(opts)
	if err != nil {
		return nil, fmt.Errorf("building kubernetes config: %w",
			oerrors.Wrap(oerrors.ErrReleaseAPIFailed, err.Error()))
	}

	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("creating clientset: %w",
			oerrors.Wrap(oerrors.ErrReleaseAPIFailed, err.Error()))
	}

	return &Client{
		Clientset:  clientset,
		RestConfig: restConfig,
		Host:       restConfig.Host,
	}, nil
}

func buildRestConfig(opts ClientOptions) (*rest.Config, error) {
	loadingRules := &clientcmd.ClientConfigLoadingRules{
		ExplicitPath: resolveKubeconfig(opts.Kubeconfig),
	}

	overrides := &clientcmd.ConfigOverrides{CurrentContext: opts.Context}

	cfg, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules, overrides).ClientConfig()
	if err != nil {
		return nil, err
	}

	cfg.Timeout = DefaultRequestTimeout
	if opts.Timeout > 0 {
		cfg.Timeout = opts.Timeout
	}
	cfg.UserAgent = "ship/" + version.Version
	return cfg, nil
}

// resolveKubeconfig picks the kubeconfig path:
// flag > SHIP_KUBECONFIG > KUBECONFIG > ~/.kube/config
func resolveKubeconfig(flagValue string) string {
	for _, candidate := range []string{flagValue, os.Getenv("SHIP_KUBECONFIG"), os.Getenv("KUBECONFIG")} {
		if candidate == "" {
			continue
		}
		if expanded, err := config.ExpandPath(candidate); err == nil {
			return expanded
		}
		return candidate
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".kube", "config")
}
