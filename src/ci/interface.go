package ci

import "context"

// Repository is the domain-facing view of one Jenkins server bound to one
// job path. Implementations are stateless apart from that binding and are
// reconstructed whenever credentials change.
type Repository interface {
	// FetchBuilds returns the completed builds for the bound job, newest
	// first in server order. Records without a recognized terminal result
	// (in-progress or malformed builds) are excluded, never surfaced.
	FetchBuilds(ctx context.Context) ([]Build, error)

	// FetchBuildStages returns the pipeline stage breakdown for one build.
	// A missing build yields *BuildNotFoundError.
	FetchBuildStages(ctx context.Context, buildID int) ([]BuildStage, error)

	// FetchJobsList walks the server's job tree starting at rootPath
	// ("" for the server root) and returns the sorted leaf job paths.
	FetchJobsList(ctx context.Context, rootPath string) ([]string, error)
}
