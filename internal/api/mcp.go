package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/pathwise/internal/career"
	"github.com/kalambet/pathwise/internal/dashboard"
	"github.com/kalambet/pathwise/internal/forecast"
	"github.com/kalambet/pathwise/internal/personality"
)

// NewMCPServer creates an MCP server with the pathwise tools and resources registered.
func NewMCPServer(deps Deps, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"pathwise",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("pathwise: career assessment progress, skill gaps and personality scoring for the local user."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("get_stats",
			mcp.WithDescription("Return the user's activity counters: assessments taken, skills analyzed, career matches and chat sessions."),
		),
		mcpGetStats(deps),
	)

	s.AddTool(
		mcp.NewTool("get_dashboard",
			mcp.WithDescription("Return the derived progress view: per-skill progress, career score and suggested next steps."),
		),
		mcpGetDashboard(deps),
	)

	s.AddTool(
		mcp.NewTool("score_personality",
			mcp.WithDescription("Score the ten-question color personality instrument locally. Nothing is stored."),
			mcp.WithString("answers",
				mcp.Description("Ten option letters a-d in question order, e.g. \"aaabbcdaab\". Spaces and commas are ignored."),
				mcp.Required(),
			),
		),
		mcpScorePersonality(),
	)

	if deps.Forecasts != nil {
		s.AddTool(
			mcp.NewTool("get_job_forecasts",
				mcp.WithDescription("Return job-market forecasts (trend, demand, growth rate, salary, key skills) for a category."),
				mcp.WithString("category",
					mcp.Description("One of all, technology, healthcare, finance, education. Defaults to all."),
					mcp.Enum(forecastCategoryIDs()...),
				),
			),
			mcpGetJobForecasts(deps),
		)
	}

	s.AddResource(
		mcp.NewResource(
			"user://assessment",
			"Latest Assessment",
			mcp.WithResourceDescription("Most recent completed career assessment as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceAssessment(deps),
	)

	return s
}

func mcpGetStats(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcpJSON(deps.Records.Read())
	}
}

func mcpGetDashboard(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcpJSON(dashboard.Load(deps.Records))
	}
}

func mcpGetJobForecasts(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		category := req.GetString("category", forecast.DefaultCategory)
		fc, err := deps.Forecasts.Forecasts(ctx, category)
		if err != nil {
			return mcpError(err.Error()), nil
		}
		return mcpJSON(fc)
	}
}

func forecastCategoryIDs() []string {
	ids := make([]string, 0, len(forecast.Categories))
	for _, c := range forecast.Categories {
		ids = append(ids, c.ID)
	}
	return ids
}

// personalityScore is the score_personality tool response.
type personalityScore struct {
	career.PersonalityResult
	Title   string   `json:"title"`
	Careers []string `json:"careers"`
	Tips    string   `json:"tips"`
}

func mcpScorePersonality() server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, err := req.RequireString("answers")
		if err != nil {
			return mcpError("answers is required"), nil
		}

		letters, err := parseAnswerLetters(raw)
		if err != nil {
			return mcpError(err.Error()), nil
		}

		result := personality.Score(personality.AnswersFromSequence(letters))
		sug := personality.SuggestionFor(result.DominantColor)
		return mcpJSON(personalityScore{
			PersonalityResult: result,
			Title:             sug.Title,
			Careers:           sug.Careers,
			Tips:              sug.Tips,
		})
	}
}

// parseAnswerLetters accepts "aaabbcdaab", "a a a ..." or "a,a,a,...".
func parseAnswerLetters(raw string) ([]string, error) {
	cleaned := strings.NewReplacer(",", "", " ", "", "\t", "", "\n", "").Replace(strings.ToLower(raw))
	want := len(personality.Questions)
	if len(cleaned) != want {
		return nil, fmt.Errorf("expected %d answers, got %d", want, len(cleaned))
	}
	letters := make([]string, 0, want)
	for i, r := range cleaned {
		l := string(r)
		if _, ok := personality.ColorFor(l); !ok {
			return nil, fmt.Errorf("answer %d: %q is not one of a, b, c, d", i+1, l)
		}
		letters = append(letters, l)
	}
	return letters, nil
}

func mcpResourceAssessment(deps Deps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		latest, ok := deps.Records.Latest()
		if !ok {
			return nil, fmt.Errorf("no assessment has been completed")
		}

		b, err := json.Marshal(latest)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal assessment: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpJSON(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcpText(string(b)), nil
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
