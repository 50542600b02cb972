package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"mtctl/internal/api"
	"mtctl/internal/generator"
	"mtctl/internal/guide"
	"mtctl/internal/manualtest"
	"mtctl/internal/results"
	"mtctl/internal/scaffold"
	"mtctl/internal/testcase"
	"mtctl/internal/variables"
	"mtctl/pkg/logging"
)

// ManualTestTools binds the MCP tools to a Service.
type ManualTestTools struct {
	svc *manualtest.Service
}

// NewManualTestTools creates the tool set for svc.
func NewManualTestTools(svc *manualtest.Service) *ManualTestTools {
	return &ManualTestTools{svc: svc}
}

// GetTools returns the tool definitions without handlers.
func (mt *ManualTestTools) GetTools() []mcp.Tool {
	serverTools := mt.ServerTools()
	tools := make([]mcp.Tool, len(serverTools))
	for i, st := range serverTools {
		tools[i] = st.Tool
	}
	return tools
}

// ServerTools returns every tool paired with its handler, ready for
// server.MCPServer.AddTools.
func (mt *ManualTestTools) ServerTools() []server.ServerTool {
	return []server.ServerTool{
		{Tool: validateTool(), Handler: mt.HandleValidate},
		{Tool: parseTool(), Handler: mt.HandleParse},
		{Tool: listTool(), Handler: mt.HandleList},
		{Tool: createTool(mt.svc.Templates()), Handler: mt.HandleCreate},
		{Tool: initTool(), Handler: mt.HandleInit},
		{Tool: resultsListTool(), Handler: mt.HandleResultsList},
		{Tool: resultsReportTool(), Handler: mt.HandleResultsReport},
		{Tool: resultsCleanTool(), Handler: mt.HandleResultsClean},
		{Tool: guideTool(guide.TopicHelp), Handler: mt.guideHandler(guide.TopicHelp)},
		{Tool: guideTool(guide.TopicSchema), Handler: mt.guideHandler(guide.TopicSchema)},
		{Tool: guideTool(guide.TopicWorkflow), Handler: mt.guideHandler(guide.TopicWorkflow)},
	}
}

func validateTool() mcp.Tool {
	return mcp.NewTool("manual_test_validate",
		mcp.WithDescription("Validate a manual test case YAML document against the test case schema"),
		mcp.WithString("yamlContent",
			mcp.Required(),
			mcp.Description("YAML content of the test case"),
		),
	)
}

func parseTool() mcp.Tool {
	return mcp.NewTool("manual_test_parse",
		mcp.WithDescription("Parse a manual test case and resolve {{variable}} placeholders in its scenario steps"),
		mcp.WithString("yamlContent",
			mcp.Required(),
			mcp.Description("YAML content of the test case"),
		),
		mcp.WithObject("projectMeta",
			mcp.Description("Project metadata used for variable substitution (e.g. the contents of project-meta.yml)"),
		),
	)
}

func listTool() mcp.Tool {
	return mcp.NewTool("manual_test_list",
		mcp.WithDescription("List the manual test cases stored in a directory"),
		mcp.WithString("dirPath",
			mcp.Required(),
			mcp.Description("Directory containing test case YAML files"),
		),
		mcp.WithObject("filter",
			mcp.Description("Filter by feature, priority, tags (any match) or author"),
			mcp.Properties(map[string]interface{}{
				"feature":  map[string]interface{}{"type": "string"},
				"priority": map[string]interface{}{"type": "string", "enum": []string{"high", "medium", "low"}},
				"tags":     map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
				"author":   map[string]interface{}{"type": "string"},
			}),
		),
		mcp.WithString("sortBy",
			mcp.Description("Sort key"),
			mcp.Enum("id", "lastUpdated", "priority", "feature"),
		),
	)
}

func createTool(templates []string) mcp.Tool {
	return mcp.NewTool("manual_test_create",
		mcp.WithDescription("Generate a new manual test case document from a template"),
		mcp.WithString("template",
			mcp.Required(),
			mcp.Description("Template to start from"),
			mcp.Enum(templates...),
		),
		mcp.WithObject("meta",
			mcp.Required(),
			mcp.Description("Test case metadata: title, feature and priority are required"),
			mcp.Properties(map[string]interface{}{
				"title":    map[string]interface{}{"type": "string"},
				"feature":  map[string]interface{}{"type": "string"},
				"priority": map[string]interface{}{"type": "string", "enum": []string{"high", "medium", "low"}},
				"tags":     map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
				"author":   map[string]interface{}{"type": "string"},
			}),
		),
		mcp.WithObject("scenario",
			mcp.Description("Given/When/Then steps replacing the template's steps; empty lists keep the template"),
		),
	)
}

func initTool() mcp.Tool {
	return mcp.NewTool("manual_test_init",
		mcp.WithDescription("Initialise a manual test project: directories, project-meta.yml, README and template"),
		mcp.WithString("projectName",
			mcp.Required(),
			mcp.Description("Project name (letters, digits, '.', '_' and '-')"),
		),
		mcp.WithString("baseUrl",
			mcp.Required(),
			mcp.Description("Base URL of the application under test"),
		),
		mcp.WithObject("environments",
			mcp.Description("Map of environment name to URL"),
		),
		mcp.WithArray("features",
			mcp.Description("Features of the application, each with a name and description"),
			mcp.Items(map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name":        map[string]interface{}{"type": "string"},
					"description": map[string]interface{}{"type": "string"},
				},
			}),
		),
		mcp.WithBoolean("testDataTemplate",
			mcp.Description("Include extended sample test data in project-meta.yml"),
		),
		mcp.WithBoolean("mcpConfig",
			mcp.Description("Write a .mcp.json client configuration"),
		),
		mcp.WithBoolean("force",
			mcp.Description("Overwrite existing files"),
		),
	)
}

func resultsListTool() mcp.Tool {
	return mcp.NewTool("manual_test_results_list",
		mcp.WithDescription("List test execution results with filtering, sorting and pagination"),
		mcp.WithString("dirPath",
			mcp.Required(),
			mcp.Description("Results directory"),
		),
		mcp.WithObject("filter",
			mcp.Description("Filter by status, testId, executor, environment, dateFrom and dateTo (YYYY-MM-DD, inclusive)"),
			mcp.Properties(map[string]interface{}{
				"status":      map[string]interface{}{"type": "string", "enum": []string{"passed", "failed", "skipped", "pending"}},
				"testId":      map[string]interface{}{"type": "string"},
				"executor":    map[string]interface{}{"type": "string"},
				"environment": map[string]interface{}{"type": "string"},
				"dateFrom":    map[string]interface{}{"type": "string"},
				"dateTo":      map[string]interface{}{"type": "string"},
			}),
		),
		mcp.WithString("sortBy",
			mcp.Description("Sort key (default executionDate)"),
			mcp.Enum("executionDate", "testId", "status", "duration", "size"),
		),
		mcp.WithString("sortOrder",
			mcp.Description("Sort direction (default desc)"),
			mcp.Enum("asc", "desc"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results to return"),
		),
		mcp.WithNumber("offset",
			mcp.Description("Number of results to skip"),
		),
	)
}

func resultsReportTool() mcp.Tool {
	return mcp.NewTool("manual_test_results_report",
		mcp.WithDescription("Compile test execution results into a report file"),
		mcp.WithString("resultsDir",
			mcp.Required(),
			mcp.Description("Results directory"),
		),
		mcp.WithString("outputPath",
			mcp.Required(),
			mcp.Description("Where to write the report"),
		),
		mcp.WithString("format",
			mcp.Description("Report format (default markdown)"),
			mcp.Enum("markdown", "html", "json"),
		),
		mcp.WithBoolean("includeScreenshots",
			mcp.Description("Link each result's screenshot"),
		),
		mcp.WithBoolean("includeSummary",
			mcp.Description("Include the summary section (default true)"),
		),
		mcp.WithString("title",
			mcp.Description("Report title"),
		),
		mcp.WithString("description",
			mcp.Description("Text shown under the summary heading"),
		),
	)
}

func resultsCleanTool() mcp.Tool {
	return mcp.NewTool("manual_test_results_clean",
		mcp.WithDescription("Remove test execution results matching cleanup criteria"),
		mcp.WithString("resultsDir",
			mcp.Required(),
			mcp.Description("Results directory"),
		),
		mcp.WithObject("criteria",
			mcp.Required(),
			mcp.Description("olderThanDays, beforeDate, includeStatuses, largerThanMB or keepMostRecent; keepMostRecent overrides the others"),
			mcp.Properties(map[string]interface{}{
				"olderThanDays":   map[string]interface{}{"type": "number"},
				"beforeDate":      map[string]interface{}{"type": "string"},
				"includeStatuses": map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
				"largerThanMB":    map[string]interface{}{"type": "number"},
				"keepMostRecent":  map[string]interface{}{"type": "number"},
			}),
		),
		mcp.WithBoolean("dryRun",
			mcp.Description("Report what would be removed without removing anything"),
		),
		mcp.WithBoolean("force",
			mcp.Description("Skip confirmation"),
		),
	)
}

var guideDescriptions = map[guide.Topic]string{
	guide.TopicHelp:     "Describe every manual test tool and how clients should use them",
	guide.TopicSchema:   "Describe the test case, result and project configuration formats",
	guide.TopicWorkflow: "Describe common workflows combining the manual test tools",
}

func guideTool(topic guide.Topic) mcp.Tool {
	return mcp.NewTool("manual_test_"+string(topic),
		mcp.WithDescription(guideDescriptions[topic]),
	)
}

// HandleValidate handles the manual_test_validate tool call
func (mt *ManualTestTools) HandleValidate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, errResult := stringArgument(req, "yamlContent", "yamlContent must be a string")
	if errResult != nil {
		return errResult, nil
	}
	return respond(mt.svc.Validate(content), nil)
}

// HandleParse handles the manual_test_parse tool call
func (mt *ManualTestTools) HandleParse(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, errResult := stringArgument(req, "yamlContent", "yamlContent must be a string")
	if errResult != nil {
		return errResult, nil
	}

	meta := req.GetArguments()["projectMeta"]
	if meta != nil {
		if _, ok := meta.(map[string]interface{}); !ok {
			return mcp.NewToolResultError("projectMeta must be an object"), nil
		}
	}
	return respond(mt.svc.Parse(content, variables.FromAny(meta)))
}

type listArguments struct {
	Filter testcase.Filter `json:"filter"`
	SortBy string          `json:"sortBy"`
}

// HandleList handles the manual_test_list tool call
func (mt *ManualTestTools) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir, errResult := stringArgument(req, "dirPath", "dirPath must be a string")
	if errResult != nil {
		return errResult, nil
	}

	var args listArguments
	if errResult := bindArguments(req, &args); errResult != nil {
		return errResult, nil
	}
	return respond(mt.svc.ListCases(dir, args.Filter, args.SortBy))
}

// HandleCreate handles the manual_test_create tool call
func (mt *ManualTestTools) HandleCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in generator.CreateInput
	if errResult := bindArguments(req, &in); errResult != nil {
		return errResult, nil
	}
	return respond(mt.svc.Create(in))
}

// HandleInit handles the manual_test_init tool call
func (mt *ManualTestTools) HandleInit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in scaffold.Input
	if errResult := bindArguments(req, &in); errResult != nil {
		return errResult, nil
	}
	return respond(mt.svc.Init(in))
}

type resultsListArguments struct {
	DirPath string `json:"dirPath"`
	results.ListOptions
}

// HandleResultsList handles the manual_test_results_list tool call
func (mt *ManualTestTools) HandleResultsList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args resultsListArguments
	if errResult := bindArguments(req, &args); errResult != nil {
		return errResult, nil
	}
	return respond(mt.svc.ListResults(args.DirPath, args.ListOptions))
}

// HandleResultsReport handles the manual_test_results_report tool call
func (mt *ManualTestTools) HandleResultsReport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in results.ReportInput
	if errResult := bindArguments(req, &in); errResult != nil {
		return errResult, nil
	}
	return respond(mt.svc.Report(in))
}

type cleanArguments struct {
	ResultsDir string            `json:"resultsDir"`
	Criteria   *results.Criteria `json:"criteria"`
	DryRun     bool              `json:"dryRun"`
	Force      bool              `json:"force"`
}

// HandleResultsClean handles the manual_test_results_clean tool call
func (mt *ManualTestTools) HandleResultsClean(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args cleanArguments
	if errResult := bindArguments(req, &args); errResult != nil {
		return errResult, nil
	}
	return respond(mt.svc.Clean(args.ResultsDir, results.CleanOptions{
		Criteria: args.Criteria,
		DryRun:   args.DryRun,
		Force:    args.Force,
	}))
}

func (mt *ManualTestTools) guideHandler(topic guide.Topic) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return respond(guide.Load(topic))
	}
}

func stringArgument(req mcp.CallToolRequest, name, message string) (string, *mcp.CallToolResult) {
	value, ok := req.GetArguments()[name].(string)
	if !ok {
		return "", mcp.NewToolResultError(message)
	}
	return value, nil
}

// bindArguments decodes the call arguments into target. A type mismatch is
// reported against the offending field.
func bindArguments(req mcp.CallToolRequest, target interface{}) *mcp.CallToolResult {
	data, err := json.Marshal(req.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err))
	}
	if err := json.Unmarshal(data, target); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return mcp.NewToolResultError(fmt.Sprintf("%s must be %s", typeErr.Field, jsonTypeName(typeErr.Type)))
		}
		return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err))
	}
	return nil
}

func jsonTypeName(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "an integer"
	case reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.Slice, reflect.Array:
		return "an array"
	default:
		return "an object"
	}
}

// requestError reports whether err was caused by the request itself and
// belongs in the failure envelope.
func requestError(err error) bool {
	for _, kind := range []error{
		api.ErrInvalidInput,
		api.ErrNotFound,
		api.ErrAlreadyExists,
		testcase.ErrSyntax,
		testcase.ErrSchema,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

func respond(payload interface{}, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		if !requestError(err) {
			logging.Error("Tools", err, "Tool execution failed")
			return nil, fmt.Errorf("Tool execution failed: %s", err.Error())
		}
		return envelope(api.Failure(err), true)
	}
	return envelope(api.Success(payload), false)
}

func envelope(r api.Result, isError bool) (*mcp.CallToolResult, error) {
	resultJSON, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("Tool execution failed: %s", err.Error())
	}
	result := mcp.NewToolResultText(string(resultJSON))
	result.IsError = isError
	return result, nil
}
