package mcp

import "github.com/mark3labs/mcp-go/mcp"

var listTemplatesTool = mcp.NewTool("list_templates",
	mcp.WithDescription("List the page templates in the catalog, best match first when a query is given."),
	mcp.WithString("query",
		mcp.Description("Fuzzy search over template name, ID and tags"),
	),
)

var createSessionTool = mcp.NewTool("create_session",
	mcp.WithDescription("Start an editing session from a template or from an exported page document. Returns the session ID and the document."),
	mcp.WithString("template_id",
		mcp.Description("Catalog template to start from"),
	),
	mcp.WithString("document_json",
		mcp.Description("A complete page document as JSON; takes precedence over template_id"),
	),
)

var getDocumentTool = mcp.NewTool("get_document",
	mcp.WithDescription("Get the current page document of a session as JSON."),
	mcp.WithString("session_id",
		mcp.Required(),
		mcp.Description("Session returned by create_session"),
	),
)

var sendMessageTool = mcp.NewTool("send_message",
	mcp.WithDescription("Send a chat message to the session's copywriting assistant. The assistant may rewrite the tagline, summary or feature list."),
	mcp.WithString("session_id",
		mcp.Required(),
		mcp.Description("Session returned by create_session"),
	),
	mcp.WithString("message",
		mcp.Required(),
		mcp.Description("What to ask the assistant, e.g. 优化Slogan or 生成3个核心功能亮点"),
	),
)

var applyPatchesTool = mcp.NewTool("apply_patches",
	mcp.WithDescription("Apply a batch of path-addressed edits to the page document. Either every patch applies or none does."),
	mcp.WithString("session_id",
		mcp.Required(),
		mcp.Description("Session returned by create_session"),
	),
	mcp.WithArray("patches",
		mcp.Required(),
		mcp.Description(`Patches such as {"op":"replace","path":"appInfo.tagline","value":"..."}; op is replace, append or remove`),
		mcp.Items(map[string]any{"type": "object"}),
	),
)

var exportPageTool = mcp.NewTool("export_page",
	mcp.WithDescription("Render the session's page as self-contained inline-styled HTML, or its plain-text shadow."),
	mcp.WithString("session_id",
		mcp.Required(),
		mcp.Description("Session returned by create_session"),
	),
	mcp.WithString("format",
		mcp.Description("Output format (default html)"),
		mcp.Enum("html", "text"),
	),
)

var composeImageTool = mcp.NewTool("compose_image",
	mcp.WithDescription("Frame a screenshot on a styled background. With session_id and media_index the result replaces that media element; otherwise a PNG file is written."),
	mcp.WithString("source",
		mcp.Required(),
		mcp.Description("Image data URL, http(s) URL or local path"),
	),
	mcp.WithString("frame",
		mcp.Description("Frame style (default browser)"),
		mcp.Enum("browser", "phone", "glass", "none"),
	),
	mcp.WithString("background",
		mcp.Description("Background style (default gradient-1)"),
		mcp.Enum("gradient-1", "gradient-2", "gradient-3", "solid-gray", "solid-dark", "transparent"),
	),
	mcp.WithNumber("scale",
		mcp.Description("Device pixel ratio (default 2)"),
	),
	mcp.WithString("session_id",
		mcp.Description("Session whose media element receives the image"),
	),
	mcp.WithNumber("media_index",
		mcp.Description("Index of the media element to replace"),
	),
)
