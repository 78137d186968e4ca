package kubernetes

// Labels and annotations on release registry Secrets.
const (
	LabelManagedBy      = "app.kubernetes.io/managed-by"
	LabelManagedByValue = "ship"

	// LabelApplication is the application a release belongs to.
	LabelApplication = "release.ship.opmodel.dev/application"
	// LabelReleaseName is the release name, e.g. develop.
	LabelReleaseName = "release.ship.opmodel.dev/name"
	// LabelPackageNumber is set on package Secrets.
	LabelPackageNumber = "release.ship.opmodel.dev/package"
	// LabelComponent categorizes the Secret: ComponentRelease or ComponentPackage.
	LabelComponent = "ship.opmodel.dev/component"

	ComponentRelease = "release"
	ComponentPackage = "package"

	// AnnotationDeployedAt is stamped when a package is published.
	AnnotationDeployedAt = "ship.opmodel.dev/deployed-at"
	// AnnotationDeployStatus records the requested deployment state.
	AnnotationDeployStatus = "ship.opmodel.dev/deploy-status"
)
