package server

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/joshdurbin/fitness-wrapped/internal/logging"
	"github.com/joshdurbin/fitness-wrapped/internal/service"
)

const (
	yearsURI           = "wrapped://years"
	summaryURIPrefix   = "wrapped://summary/"
	summaryURITemplate = summaryURIPrefix + "{year}"
)

// registerResources registers all MCP resources for the server
func (s *Server) registerResources() {
	logging.Debug("Registering MCP resources")

	s.mcp.AddResource(&mcp.Resource{
		URI:         yearsURI,
		Name:        "years",
		Description: "Calendar years with stored activity or wellness data",
		MIMEType:    "application/json",
	}, s.readYears)

	s.mcp.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: summaryURITemplate,
		Name:        "year_summary",
		Description: "The complete year in review for one calendar year",
		MIMEType:    "application/json",
	}, s.readYearSummary)

	logging.Debug("MCP resources registered", "count", 2)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, NewInternalErrorWithCause("failed to marshal resource", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: "application/json",
				Text:     string(data),
			},
		},
	}, nil
}

// readYears lists the stored years
func (s *Server) readYears(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	logging.Info("MCP resource read", "resource", "years")

	years, err := s.summaries.Years(ctx)
	if err != nil {
		logging.Error("readYears failed", "error", err)
		return nil, NewStorageError("listing years", err)
	}
	if years == nil {
		years = []int{}
	}
	return jsonResource(yearsURI, map[string][]int{"years": years})
}

// readYearSummary returns the summary named by a wrapped://summary/{year} URI
func (s *Server) readYearSummary(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := req.Params.URI
	yearStr, ok := strings.CutPrefix(uri, summaryURIPrefix)
	if !ok {
		return nil, NewInvalidInputError("invalid summary URI format")
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil || year <= 0 {
		return nil, NewInvalidInputErrorWithDetails("invalid year", yearStr)
	}

	logging.Info("MCP resource read", "resource", "year_summary", "year", year)

	res, err := s.summaries.YearSummary(ctx, year, service.Options{})
	if err != nil {
		te := summaryError(year, err)
		if te.Code == ErrNotFound {
			return &mcp.ReadResourceResult{
				Contents: []*mcp.ResourceContents{
					{
						URI:      uri,
						MIMEType: "application/json",
						Text:     fmt.Sprintf(`{"error": "No data for %d"}`, year),
					},
				},
			}, nil
		}
		logging.Error("readYearSummary failed", "year", year, "error", err)
		return nil, te
	}
	return jsonResource(uri, res.Summary)
}
