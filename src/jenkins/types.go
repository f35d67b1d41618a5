package jenkins

import "strings"

// Wire types for the three Jenkins endpoints this client touches. Field sets
// match the tree projections requested in repository.go; anything else the
// server sends is ignored.

type buildRecord struct {
	Number int `json:"number"`
	// Absent while the build is still running.
	Result    *string `json:"result"`
	Timestamp *int64  `json:"timestamp"`
	Duration  *int64  `json:"duration"`
	URL       string  `json:"url"`
}

type jobResponse struct {
	Builds []buildRecord `json:"builds"`
}

type stageRecord struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Status          string `json:"status"`
	DurationMillis  *int64 `json:"durationMillis"`
	StartTimeMillis *int64 `json:"startTimeMillis"`
}

type workflowResponse struct {
	Stages []stageRecord `json:"stages"`
}

type jobItem struct {
	Name  string    `json:"name"`
	URL   string    `json:"url"`
	Class string    `json:"_class"`
	Jobs  []jobItem `json:"jobs"`
}

type jobsListResponse struct {
	Jobs []jobItem `json:"jobs"`
}

// isFolder reports whether this entry is a container rather than a buildable
// job: either its class says so or the server returned nested jobs for it.
func (j jobItem) isFolder() bool {
	return strings.Contains(j.Class, "Folder") || len(j.Jobs) > 0
}
