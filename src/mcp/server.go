// Package mcp exposes the Jenkins repository over the Model Context
// Protocol, so agent tooling can query build state without screen-scraping
// the TUI.
package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"jenkwatch-agent/src/ci"
)

// Server is the MCP server for jenkwatch. Every tool call performs a live
// fetch through the repository; there is no cache to go stale.
type Server struct {
	mcpServer  *server.MCPServer
	repository ci.Repository
	jobPath    string
}

// NewServer creates the MCP server bound to a repository and job path.
func NewServer(repository ci.Repository, jobPath string) *Server {
	s := server.NewMCPServer(
		"jenkwatch",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	srv := &Server{
		mcpServer:  s,
		repository: repository,
		jobPath:    jobPath,
	}
	srv.registerTools()
	return srv
}

// registerTools registers all available tools.
func (s *Server) registerTools() {
	buildsTool := mcp.NewTool("list_builds",
		mcp.WithDescription("List the completed builds of the monitored Jenkins job, newest first. In-progress builds are not included."),
	)

	stagesTool := mcp.NewTool("get_build_stages",
		mcp.WithDescription("Get the pipeline stage breakdown for one build of the monitored job."),
		mcp.WithNumber("build_number",
			mcp.Required(),
			mcp.Description("Build number as shown by list_builds"),
		),
	)

	jobsTool := mcp.NewTool("list_jobs",
		mcp.WithDescription("Discover the job paths available on the Jenkins server by walking its folder tree."),
		mcp.WithString("root",
			mcp.Description("Folder path to start from (default: server root)"),
		),
	)

	s.mcpServer.AddTool(buildsTool, s.handleListBuilds)
	s.mcpServer.AddTool(stagesTool, s.handleGetBuildStages)
	s.mcpServer.AddTool(jobsTool, s.handleListJobs)
}

// Run starts the MCP server on stdio.
func (s *Server) Run() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) handleListBuilds(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	builds, err := s.repository.FetchBuilds(ctx)
	if err != nil {
		return mcp.NewToolResultError(ci.UserMessage(err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Builds of %s (%d completed):\n", s.jobPath, len(builds))
	for _, build := range builds {
		fmt.Fprintf(&b, "#%d  %-9s  %s  took %s  %s\n",
			build.ID,
			build.Result,
			build.Timestamp.Format(time.RFC3339),
			build.Duration.Round(time.Second),
			build.URL)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleGetBuildStages(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	buildNumber := request.GetInt("build_number", 0)
	if buildNumber <= 0 {
		return mcp.NewToolResultError("build_number parameter is required"), nil
	}

	stages, err := s.repository.FetchBuildStages(ctx, buildNumber)
	if err != nil {
		return mcp.NewToolResultError(ci.UserMessage(err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Stages of build #%d (%d stages):\n", buildNumber, len(stages))
	for _, stage := range stages {
		started := "not started"
		if stage.StartTimeMillis != nil {
			started = time.UnixMilli(*stage.StartTimeMillis).Format(time.RFC3339)
		}
		fmt.Fprintf(&b, "%-30s  %-9s  took %s  started %s\n",
			stage.Name, stage.Status, stage.Duration.Round(time.Second), started)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleListJobs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root := request.GetString("root", "")

	paths, err := s.repository.FetchJobsList(ctx, root)
	if err != nil {
		return mcp.NewToolResultError(ci.UserMessage(err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d jobs:\n", len(paths))
	for _, p := range paths {
		b.WriteString(p)
		b.WriteString("\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}
