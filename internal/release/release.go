// Package release uploads package archives and registers them with the
// deployment system.
package release

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/opmodel/ship/internal/branch"
	oerrors "github.com/opmodel/ship/internal/errors"
	"github.com/opmodel/ship/internal/output"
	"github.com/opmodel/ship/internal/versioning"
)

// Release is a handle to an existing release.
type Release struct {
	ID          string
	Name        string
	Application string
}

// Package is a handle to a registered release package.
type Package struct {
	ID        string
	Number    string
	ReleaseID string
}

// Deployment is a handle to a triggered deployment.
type Deployment struct {
	ID     string
	Status string
}

// Uploader stores archive bytes in the package feed.
type Uploader interface {
	Upload(ctx context.Context, data []byte) error
}

// ReleaseAPI looks up releases and registers and deploys packages.
type ReleaseAPI interface {
	GetRelease(ctx context.Context, application, name string) (Release, error)
	CreateReleasePackage(ctx context.Context, rel Release, number string, variables map[string]string) (Package, error)
	Publish(ctx context.Context, pkg Package) (Deployment, error)
}

// Request is the input of one coordination.
type Request struct {
	// BuildServer is true when the build is attributed to a build server.
	BuildServer bool

	// Branch is the raw branch; it is canonicalised here.
	Branch string

	Application     string
	PackageVariable string
	Version         versioning.Info

	// ArchivePath is read and uploaded.
	ArchivePath string

	// Endpoint names the upload target in errors.
	Endpoint string
}

// Outcome reports what the coordinator did.
type Outcome struct {
	Skipped    bool
	Reason     string
	Canonical  string
	Release    Release
	Package    Package
	Deployment *Deployment
}

// Coordinator runs upload, release lookup, package registration and
// deployment, each step depending on the previous one. It never retries.
type Coordinator struct {
	Uploader Uploader
	Releases ReleaseAPI
}

// Run coordinates one package. Builds not on a build server, or on a branch
// that does not canonicalise to develop, release or master, are skipped.
func (c *Coordinator) Run(ctx context.Context, req Request) (*Outcome, error) {
	canonical := branch.Canonical(req.Branch)
	outcome := &Outcome{Canonical: canonical}

	if reason, ok := Eligible(req.BuildServer, req.Branch); !ok {
		outcome.Skipped = true
		outcome.Reason = reason
		output.Debug("release skipped", "reason", reason)
		return outcome, nil
	}

	data, err := os.ReadFile(req.ArchivePath)
	if err != nil {
		return nil, fmt.Errorf("reading archive: %w", err)
	}
	if err := c.Uploader.Upload(ctx, data); err != nil {
		if errors.Is(err, oerrors.ErrUploadFailed) {
			return nil, err
		}
		endpoint := req.Endpoint
		if endpoint == "" {
			endpoint = "upload"
		}
		return nil, oerrors.NewUploadError(endpoint, "", err)
	}
	output.Debug("archive uploaded", "path", req.ArchivePath, "bytes", len(data))

	rel, err := c.Releases.GetRelease(ctx, req.Application, canonical)
	if err != nil {
		return nil, oerrors.NewReleaseAPIError("get release", map[string]string{
			"Application": req.Application,
			"Release":     canonical,
		}, err)
	}
	outcome.Release = rel

	number := PackageNumber(req.Version, canonical)
	pkg, err := c.Releases.CreateReleasePackage(ctx, rel, number, map[string]string{
		req.PackageVariable: req.Version.Full(),
	})
	if err != nil {
		return nil, oerrors.NewReleaseAPIError("create release package", map[string]string{
			"Release": rel.Name,
			"Package": number,
		}, err)
	}
	outcome.Package = pkg

	if !branch.Deploys(canonical) {
		output.Debug("package registered without deployment", "package", number)
		return outcome, nil
	}

	dep, err := c.Releases.Publish(ctx, pkg)
	if err != nil {
		return nil, oerrors.NewReleaseAPIError("publish package", map[string]string{
			"Package": pkg.Number,
		}, err)
	}
	outcome.Deployment = &dep
	return outcome, nil
}

// Eligible reports whether a build coordinates a release. When it does not,
// reason says why.
func Eligible(buildServer bool, rawBranch string) (reason string, ok bool) {
	if !buildServer {
		return "developer build", false
	}
	canonical := branch.Canonical(rawBranch)
	if !branch.UploadEligible(canonical) {
		return fmt.Sprintf("branch %q is not upload eligible", canonical), false
	}
	return "", true
}

// PackageNumber is "<patch>.<canonical branch>".
func PackageNumber(v versioning.Info, canonical string) string {
	return strconv.FormatUint(v.Patch(), 10) + "." + canonical
}
