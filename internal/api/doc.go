// Package api defines the contract shared by every manual-test operation and
// the transports that expose them.
//
// Two pieces live here:
//
//   - Error kinds. Operations return *Error values tagged with
//     ErrInvalidInput, ErrNotFound or ErrAlreadyExists. The message is shown
//     to the caller verbatim; the kind decides how a transport classifies it.
//
//   - Result, the response envelope. A successful operation is flattened
//     into {"success": true, ...payload}; a failure becomes
//     {"success": false, "error": "<message>"}.
//
// The MCP tool handlers in the tools subpackage are the main consumers.
//
// Example Usage:
//
//	res := api.Success(map[string]interface{}{"generatedId": "TC-LOGIN-001"})
//	data, _ := json.Marshal(res)
//	// {"success":true,"generatedId":"TC-LOGIN-001"}
//
//	if errors.Is(err, api.ErrNotFound) {
//		return api.Failure(err)
//	}
package api
