package tools

import (
	"context"

	"lingochat-backend/internal/model"
	"lingochat-backend/internal/service"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	ServerName    = "lingochat"
	ServerVersion = "1.0.0"
)

// ChatTools exposes the chat service as MCP tools.
type ChatTools struct {
	chat *service.ChatService
}

func NewChatTools(chat *service.ChatService) *ChatTools {
	return &ChatTools{chat: chat}
}

// NewServer builds an MCP server with every chat tool registered.
func NewServer(chat *service.ChatService) *server.MCPServer {
	s := server.NewMCPServer(ServerName, ServerVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	NewChatTools(chat).Register(s)
	return s
}

func (t *ChatTools) Register(s *server.MCPServer) {
	s.AddTool(mcp.NewTool("send_message",
		mcp.WithDescription("Send a message to the current chat. The language of the text is detected and a response is appended."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Text of the message")),
	), t.SendMessage)

	s.AddTool(mcp.NewTool("translate",
		mcp.WithDescription("Translate the user message behind a response in the current chat."),
		mcp.WithString("response_id", mcp.Required(), mcp.Description("Id of the response to translate")),
		mcp.WithString("target_language", mcp.Description("Target language code, defaults to the preferred target language")),
	), t.Translate)

	s.AddTool(mcp.NewTool("summarize",
		mcp.WithDescription("Summarize the user message behind a response in the current chat. Missing options use the stored defaults."),
		mcp.WithString("response_id", mcp.Required(), mcp.Description("Id of the response to summarize")),
		mcp.WithString("type", mcp.Enum(
			string(model.SummaryKeyPoints), string(model.SummaryTLDR),
			string(model.SummaryTeaser), string(model.SummaryHeadline),
		)),
		mcp.WithString("length", mcp.Enum(
			string(model.LengthShort), string(model.LengthMedium), string(model.LengthLong),
		)),
		mcp.WithString("format", mcp.Enum(
			string(model.FormatMarkdown), string(model.FormatPlainText),
		)),
		mcp.WithString("context", mcp.Description("Extra instructions for the summarizer")),
	), t.Summarize)

	s.AddTool(mcp.NewTool("list_chats",
		mcp.WithDescription("List all chats, newest first."),
	), t.ListChats)

	s.AddTool(mcp.NewTool("create_chat",
		mcp.WithDescription("Create a new empty chat and make it current."),
	), t.CreateChat)
}

func (t *ChatTools) SendMessage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	chatID, pair, err := t.chat.SendMessage(ctx, text)
	if err != nil {
		return toolError("send_message", err), nil
	}
	return toolJSON("send_message", model.SendMessageResponse{ChatID: chatID, Pair: *pair}), nil
}

func (t *ChatTools) Translate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	responseID, err := req.RequireString("response_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	target := req.GetString("target_language", "")
	if target == "" {
		target = t.chat.Preferences().PreferredTargetLanguage
	}

	update, err := t.chat.Translate(ctx, responseID, target)
	if err != nil {
		return toolError("translate", err), nil
	}
	return toolJSON("translate", update), nil
}

func (t *ChatTools) Summarize(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	responseID, err := req.RequireString("response_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	opts := model.SummarizeOptions{
		Type:    model.SummaryType(req.GetString("type", "")),
		Length:  model.SummaryLength(req.GetString("length", "")),
		Format:  model.SummaryFormat(req.GetString("format", "")),
		Context: req.GetString("context", ""),
	}

	update, err := t.chat.Summarize(ctx, responseID, opts)
	if err != nil {
		return toolError("summarize", err), nil
	}
	return toolJSON("summarize", update), nil
}

func (t *ChatTools) ListChats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return toolJSON("list_chats", map[string]interface{}{
		"chats":           t.chat.ListChats(),
		"current_chat_id": t.chat.CurrentChatID(),
	}), nil
}

func (t *ChatTools) CreateChat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := t.chat.CreateNewChat()
	chat, err := t.chat.GetChat(id)
	if err != nil {
		return toolError("create_chat", err), nil
	}
	return toolJSON("create_chat", model.ChatResponse{Chat: chat, Current: true, Created: true}), nil
}
