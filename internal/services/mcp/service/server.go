package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/louisbranch/camptrack/internal/services/mcp/domain"
)

const (
	serverName = "camptrack-mcp"
	// serverVersion identifies the MCP server version.
	serverVersion = "0.1.0"
)

// Backend is every CampTrack operation the tools call.
type Backend interface {
	domain.CampService
	domain.SchedulingService
	domain.LedgerService
	domain.MessagingService
}

type registrationModule struct {
	name     string
	register func(*mcp.Server, Backend)
}

// registrationModules groups tools by the service area they drive.
var registrationModules = []registrationModule{
	{name: "camp-tools", register: registerCampTools},
	{name: "scheduling-tools", register: registerSchedulingTools},
	{name: "notification-tools", register: registerNotificationTools},
	{name: "message-tools", register: registerMessageTools},
}

// Server exposes CampTrack as MCP tools.
type Server struct {
	mcpServer *mcp.Server
	logger    *zap.Logger
}

// New registers every tool against backend.
func New(backend Backend, logger *zap.Logger) (*Server, error) {
	if backend == nil {
		return nil, errors.New("backend is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	for _, module := range registrationModules {
		module.register(mcpServer, backend)
		logger.Debug("mcp tools registered", zap.String("module", module.name))
	}
	return &Server{mcpServer: mcpServer, logger: logger}, nil
}

// ServeStdio serves MCP over stdin and stdout until ctx ends.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

// Serve serves MCP over the given transport until ctx ends or the client
// disconnects.
func (s *Server) Serve(ctx context.Context, transport mcp.Transport) error {
	return s.serveWithTransport(ctx, transport)
}

func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	s.logger.Info("mcp server starting", zap.String("name", serverName), zap.String("version", serverVersion))
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}

// ValidateTransport reports whether a transport name is supported.
func ValidateTransport(name string) error {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "stdio":
		return nil
	default:
		return fmt.Errorf("transport %q is not supported", name)
	}
}

func registerCampTools(server *mcp.Server, backend Backend) {
	mcp.AddTool(server, domain.CampCreateTool(), domain.CampCreateHandler(backend))
	mcp.AddTool(server, domain.CampUpdateTool(), domain.CampUpdateHandler(backend))
	mcp.AddTool(server, domain.CampDeleteTool(), domain.CampDeleteHandler(backend))
	mcp.AddTool(server, domain.CampGetTool(), domain.CampGetHandler(backend))
	mcp.AddTool(server, domain.CampListTool(), domain.CampListHandler(backend))
	mcp.AddTool(server, domain.FoodStockSetTool(), domain.FoodStockSetHandler(backend))
	mcp.AddTool(server, domain.FoodTopUpTool(), domain.FoodTopUpHandler(backend))
	mcp.AddTool(server, domain.PayRateSetTool(), domain.PayRateSetHandler(backend))
	mcp.AddTool(server, domain.ActivityRecordTool(), domain.ActivityRecordHandler(backend))
	mcp.AddTool(server, domain.ActivityDeleteTool(), domain.ActivityDeleteHandler(backend))
	mcp.AddTool(server, domain.IncidentRecordTool(), domain.IncidentRecordHandler(backend))
	mcp.AddTool(server, domain.IncidentDeleteTool(), domain.IncidentDeleteHandler(backend))
	mcp.AddTool(server, domain.CampersAssignTool(), domain.CampersAssignHandler(backend))
	mcp.AddTool(server, domain.FoodShortageTool(), domain.FoodShortageHandler(backend))
	mcp.AddTool(server, domain.DashboardTool(), domain.DashboardHandler(backend))
}

func registerSchedulingTools(server *mcp.Server, backend Backend) {
	mcp.AddTool(server, domain.OverlapCheckTool(), domain.OverlapCheckHandler(backend))
	mcp.AddTool(server, domain.LeaderAssignTool(), domain.LeaderAssignHandler(backend))
	mcp.AddTool(server, domain.LeaderUnassignTool(), domain.LeaderUnassignHandler(backend))
	mcp.AddTool(server, domain.LeaderCampsTool(), domain.LeaderCampsHandler(backend))
	mcp.AddTool(server, domain.DayConflictsTool(), domain.DayConflictsHandler(backend))
}

func registerNotificationTools(server *mcp.Server, backend Backend) {
	mcp.AddTool(server, domain.NotificationAddTool(), domain.NotificationAddHandler(backend))
	mcp.AddTool(server, domain.NotificationListTool(), domain.NotificationListHandler(backend))
	mcp.AddTool(server, domain.NotificationMarkAllReadTool(), domain.NotificationMarkAllReadHandler(backend))
	mcp.AddTool(server, domain.NotificationDeleteTool(), domain.NotificationDeleteHandler(backend))
	mcp.AddTool(server, domain.NotificationUnreadTool(), domain.NotificationUnreadHandler(backend))
	mcp.AddTool(server, domain.CategoryMuteTool(), domain.CategoryMuteHandler(backend))
	mcp.AddTool(server, domain.CategoryUnmuteTool(), domain.CategoryUnmuteHandler(backend))
	mcp.AddTool(server, domain.CategoryMutesTool(), domain.CategoryMutesHandler(backend))
}

func registerMessageTools(server *mcp.Server, backend Backend) {
	mcp.AddTool(server, domain.MessageSendTool(), domain.MessageSendHandler(backend))
	mcp.AddTool(server, domain.MessageBroadcastTool(), domain.MessageBroadcastHandler(backend))
	mcp.AddTool(server, domain.CampBroadcastTool(), domain.CampBroadcastHandler(backend))
	mcp.AddTool(server, domain.MessageAcknowledgeTool(), domain.MessageAcknowledgeHandler(backend))
	mcp.AddTool(server, domain.MessageSearchTool(), domain.MessageSearchHandler(backend))
	mcp.AddTool(server, domain.ConversationReadTool(), domain.ConversationReadHandler(backend))
	mcp.AddTool(server, domain.ConversationsTool(), domain.ConversationsHandler(backend))
	mcp.AddTool(server, domain.ConversationTool(), domain.ConversationHandler(backend))
	mcp.AddTool(server, domain.MessagePinTool(), domain.MessagePinHandler(backend))
	mcp.AddTool(server, domain.MessageUnreadTool(), domain.MessageUnreadHandler(backend))
}
