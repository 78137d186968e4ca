package cmd

import (
	"github.com/opmodel/ship/internal/pipeline"
)

// report is the machine readable form of a run, written for --output json|yaml.
type report struct {
	Version     versionReport  `json:"version" yaml:"version"`
	Environment string         `json:"environment" yaml:"environment"`
	Attribution string         `json:"attribution" yaml:"attribution"`
	BuildID     string         `json:"buildId" yaml:"buildId"`
	Branch      string         `json:"branch,omitempty" yaml:"branch,omitempty"`
	Publish     bool           `json:"publish" yaml:"publish"`
	ReleaseName string         `json:"releaseName,omitempty" yaml:"releaseName,omitempty"`
	Artifact    artifactReport `json:"artifact" yaml:"artifact"`
	Release     *releaseReport `json:"release,omitempty" yaml:"release,omitempty"`
}

type versionReport struct {
	Full    string `json:"full" yaml:"full"`
	Numeric string `json:"numeric" yaml:"numeric"`
	Release string `json:"release" yaml:"release"`
	Legacy  string `json:"legacy" yaml:"legacy"`
}

type artifactReport struct {
	Path   string `json:"path" yaml:"path"`
	Size   int64  `json:"size" yaml:"size"`
	Digest string `json:"digest" yaml:"digest"`
}

type releaseReport struct {
	Skipped    bool   `json:"skipped" yaml:"skipped"`
	Reason     string `json:"reason,omitempty" yaml:"reason,omitempty"`
	Canonical  string `json:"branch" yaml:"branch"`
	Package    string `json:"package,omitempty" yaml:"package,omitempty"`
	Deployment string `json:"deployment,omitempty" yaml:"deployment,omitempty"`
	Status     string `json:"status,omitempty" yaml:"status,omitempty"`
}

func newReport(res *pipeline.Result) report {
	bc := res.Context
	v := bc.Version()
	r := report{
		Version: versionReport{
			Full:    v.Full(),
			Numeric: v.Numeric(),
			Release: v.Release(),
			Legacy:  v.Legacy(),
		},
		Environment: bc.Environment(),
		Attribution: bc.Attribution().String(),
		BuildID:     bc.BuildID(),
		Branch:      bc.Branch(),
		Publish:     bc.Publish(),
		ReleaseName: bc.ReleaseName(),
	}
	if a := res.Artifact; a != nil {
		r.Artifact = artifactReport{Path: a.Path, Size: a.Size, Digest: a.Digest.String()}
	}
	if o := res.Outcome; o != nil {
		r.Release = &releaseReport{
			Skipped:   o.Skipped,
			Reason:    o.Reason,
			Canonical: o.Canonical,
			Package:   o.Package.Number,
		}
		if o.Deployment != nil {
			r.Release.Deployment = o.Deployment.ID
			r.Release.Status = o.Deployment.Status
		}
	}
	return r
}
