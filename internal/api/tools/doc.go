// Package tools exposes the manual-test operations as MCP tools.
//
// Each tool decodes its arguments, calls the shared manualtest.Service and
// returns the outcome as JSON text content in one of two shapes:
//
//	{"success": true, ...payload}
//	{"success": false, "error": "message"}
//
// Tool Categories:
//
//   - Test cases: manual_test_validate, manual_test_parse, manual_test_list,
//     manual_test_create, manual_test_init
//   - Results: manual_test_results_list, manual_test_results_report,
//     manual_test_results_clean
//   - Guidance: manual_test_help, manual_test_schema, manual_test_workflow
//
// Arguments of the wrong type produce a tool error result rather than the
// envelope. Failures that are not caused by the request (I/O errors, for
// example) are returned to the protocol layer as
// "Tool execution failed: <msg>".
//
// Example Usage:
//
//	{
//	  "method": "tools/call",
//	  "params": {
//	    "name": "manual_test_validate",
//	    "arguments": {"yamlContent": "meta:\n  id: TC-LOGIN-001\n..."}
//	  }
//	}
//
// Response:
//
//	{
//	  "success": true,
//	  "isValid": true,
//	  "errors": [],
//	  "warnings": [],
//	  "parsedData": {"meta": {"id": "TC-LOGIN-001", ...}, ...}
//	}
package tools
