package jenkins

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"time"

	"jenkwatch-agent/src/ci"
)

// maxTreeDepth bounds the job-tree walk. The jobs query only asks the server
// for two levels, so the cap is unreachable for well-formed replies; it
// keeps a broken server from wedging the walk.
const maxTreeDepth = 32

// Repository implements ci.Repository against one Jenkins server and job
// path. It holds no state beyond that binding; build a new one whenever the
// credentials or job path change.
type Repository struct {
	client  *Client
	jobPath string
}

// NewRepository creates a repository bound to credentials and a job path.
func NewRepository(credentials ci.Credentials, jobPath string) *Repository {
	return &Repository{
		client:  NewClient(credentials),
		jobPath: jobPath,
	}
}

// FetchBuilds returns the completed builds of the bound job, in server order.
// The tree projection keeps the payload to the five fields the domain needs.
func (r *Repository) FetchBuilds(ctx context.Context) ([]ci.Build, error) {
	endpoint := fmt.Sprintf("%s/api/json?tree=builds[number,result,timestamp,duration,url]", r.jobPath)

	var resp jobResponse
	if err := r.client.get(ctx, endpoint, &resp); err != nil {
		return nil, translateError(err)
	}

	builds := make([]ci.Build, 0, len(resp.Builds))
	for _, rec := range resp.Builds {
		// No result means the build is still running; an unrecognized
		// result means a record this model cannot represent. Both are
		// invisible to the rest of the system.
		if rec.Result == nil {
			continue
		}
		result, ok := ci.ParseBuildResult(*rec.Result)
		if !ok {
			continue
		}

		u, err := url.Parse(rec.URL)
		if err != nil || !u.IsAbs() {
			continue
		}

		timestamp := time.Now()
		if rec.Timestamp != nil {
			timestamp = time.UnixMilli(*rec.Timestamp)
		}
		var duration time.Duration
		if rec.Duration != nil {
			duration = time.Duration(*rec.Duration) * time.Millisecond
		}

		builds = append(builds, ci.Build{
			ID:        rec.Number,
			Result:    result,
			Timestamp: timestamp,
			Duration:  duration,
			URL:       u,
		})
	}
	return builds, nil
}

// FetchBuildStages returns the pipeline stage breakdown for one build via the
// workflow API.
func (r *Repository) FetchBuildStages(ctx context.Context, buildID int) ([]ci.BuildStage, error) {
	endpoint := fmt.Sprintf("%s/%d/wfapi/describe", r.jobPath, buildID)

	var resp workflowResponse
	if err := r.client.get(ctx, endpoint, &resp); err != nil {
		if errors.Is(err, errNotFound) {
			// The build was deleted or rotated out, which callers treat
			// differently from a malformed reply.
			return nil, &ci.BuildNotFoundError{ID: buildID}
		}
		return nil, translateError(err)
	}

	stages := make([]ci.BuildStage, 0, len(resp.Stages))
	for _, rec := range resp.Stages {
		var duration time.Duration
		if rec.DurationMillis != nil {
			duration = time.Duration(*rec.DurationMillis) * time.Millisecond
		}
		stages = append(stages, ci.BuildStage{
			ID:              rec.ID,
			Name:            rec.Name,
			Status:          ci.ParseStageStatus(rec.Status),
			Duration:        duration,
			StartTimeMillis: rec.StartTimeMillis,
		})
	}
	return stages, nil
}

// FetchJobsList walks the job tree under rootPath and returns the sorted
// leaf job paths, each of the form "job/<a>/job/<b>". The server-provided
// tree is trusted to be acyclic; maxTreeDepth is the only guard.
func (r *Repository) FetchJobsList(ctx context.Context, rootPath string) ([]string, error) {
	endpoint := "api/json?tree=jobs[name,url,class,jobs[name,url,class]]"
	if rootPath != "" {
		endpoint = rootPath + "/" + endpoint
	}

	var resp jobsListResponse
	if err := r.client.get(ctx, endpoint, &resp); err != nil {
		return nil, translateError(err)
	}

	type frame struct {
		item   jobItem
		prefix string
		depth  int
	}

	stack := make([]frame, 0, len(resp.Jobs))
	for i := len(resp.Jobs) - 1; i >= 0; i-- {
		stack = append(stack, frame{item: resp.Jobs[i]})
	}

	var paths []string
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		path := "job/" + f.item.Name
		if f.prefix != "" {
			path = f.prefix + "/" + path
		}

		if f.item.isFolder() {
			if f.depth+1 >= maxTreeDepth {
				continue
			}
			for i := len(f.item.Jobs) - 1; i >= 0; i-- {
				stack = append(stack, frame{item: f.item.Jobs[i], prefix: path, depth: f.depth + 1})
			}
			continue
		}
		paths = append(paths, path)
	}

	sort.Strings(paths)
	return paths, nil
}

// translateError maps transport errors onto the domain taxonomy so that no
// raw HTTP or decoding error crosses the repository boundary.
func translateError(err error) error {
	var srv *serverError
	var net *networkError
	switch {
	case errors.Is(err, errAuthenticationFailed), errors.Is(err, errForbidden):
		return ci.ErrAuthentication
	case errors.Is(err, errNotFound):
		return ci.ErrInvalidResponse
	case errors.As(err, &srv):
		return &ci.ServerError{Code: srv.code, Message: srv.body}
	case errors.As(err, &net):
		return &ci.NetworkError{Err: net.err}
	default:
		// Decode failures and unexpected status codes.
		return ci.ErrInvalidResponse
	}
}
