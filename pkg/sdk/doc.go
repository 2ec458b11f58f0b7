// Package sdk provides a typed Go client for the cardqa MCP server.
//
// The client wraps mcp-go/client.CallTool with one method per MCP tool,
// connection management, and automatic retry via fortify.
//
// Usage:
//
//	transport, _ := client.NewStdioTransport("cardqa", "mcp")
//	c := sdk.NewClient(transport)
//	defer c.Close()
//
//	_, _ = c.Initialize(ctx)
//	res, _ := c.Verify(ctx, "")
//	fmt.Println(res.Passed)
package sdk
