package handler

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MattchuPichuu/WarDaddy/pkg/auth"
	"github.com/MattchuPichuu/WarDaddy/pkg/command"
	"github.com/MattchuPichuu/WarDaddy/pkg/common"
	"github.com/MattchuPichuu/WarDaddy/pkg/discord"
	"github.com/MattchuPichuu/WarDaddy/pkg/state"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// BoardServiceName is the fully qualified gRPC service name
const BoardServiceName = "wardaddy.v1.Board"

// boardCall is one gRPC method. Requests and responses are free-form
// structs so clients need no generated stubs.
type boardCall func(ctx context.Context, actor auth.Actor, req args) (*discord.Reply, interface{}, error)

type boardMethod struct {
	call   boardCall
	public bool
}

// boardHandler is what the service descriptor dispatches to
type boardHandler interface {
	invoke(ctx context.Context, method string, req *structpb.Struct) (*structpb.Struct, error)
}

// BoardServer serves the command surface as the wardaddy.v1.Board gRPC service.
// Callers authenticate with an "authorization: Bearer <token>" metadata entry
// obtained from Login.
type BoardServer struct {
	commands *command.Service
	methods  map[string]boardMethod
}

// NewBoardServer creates the gRPC board service.
func NewBoardServer(commands *command.Service) *BoardServer {
	s := &BoardServer{commands: commands}
	s.methods = map[string]boardMethod{
		"Login":       {call: s.login, public: true},
		"Logout":      {call: s.logout},
		"Board":       {call: s.board},
		"Sitrep":      {call: s.sitrep},
		"Pro":         {call: s.pro},
		"Shot":        {call: s.shot},
		"AddPlayer":   {call: s.addPlayer},
		"AddCooldown": {call: s.addCooldown},
		"AddTimer":    {call: s.addTimer},
		"UseSkill":    {call: s.useSkill},
		"ForceState":  {call: s.forceState},
		"EditTrigger": {call: s.editTrigger},
		"StartTimer":  {call: s.startTimer},
		"StopTimer":   {call: s.stopTimer},
		"Delete":      {call: s.delete},
		"SetWebhook":  {call: s.setWebhook},
		"Publish":     {call: s.publish},
	}
	return s
}

// Register adds the board service to a gRPC server
func (s *BoardServer) Register(server *grpc.Server) {
	server.RegisterService(s.ServiceDesc(), s)
}

// ServiceDesc describes the board service for grpc.Server.RegisterService.
func (s *BoardServer) ServiceDesc() *grpc.ServiceDesc {
	desc := &grpc.ServiceDesc{
		ServiceName: BoardServiceName,
		HandlerType: (*boardHandler)(nil),
		Streams:     []grpc.StreamDesc{},
		Metadata:    "wardaddy/v1/board.proto",
	}
	for name := range s.methods {
		desc.Methods = append(desc.Methods, unaryMethod(name))
	}
	return desc
}

func unaryMethod(name string) grpc.MethodDesc {
	fullMethod := "/" + BoardServiceName + "/" + name

	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}

			h := srv.(boardHandler)
			if interceptor == nil {
				return h.invoke(ctx, name, in)
			}

			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return h.invoke(ctx, name, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func (s *BoardServer) invoke(ctx context.Context, method string, req *structpb.Struct) (*structpb.Struct, error) {
	m, ok := s.methods[method]
	if !ok {
		return nil, status.Errorf(codes.Unimplemented, "method %s not implemented", method)
	}

	var actor auth.Actor
	if !m.public {
		var err error
		if actor, err = s.commands.Authenticate(ctx, tokenFromMetadata(ctx)); err != nil {
			return nil, grpcError(err)
		}
	}

	reply, data, err := m.call(ctx, actor, args{req})
	if err != nil {
		return nil, grpcError(err)
	}

	out, err := toStruct(reply, data)
	if err != nil {
		logrus.Errorf("failed to encode %s response: %v", method, err)
		return nil, status.Error(codes.Internal, "failed to encode response")
	}
	return out, nil
}

func tokenFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	for _, v := range md.Get("authorization") {
		if token := common.BearerToken(v); token != "" {
			return token
		}
	}
	return ""
}

// toStruct renders a reply through the same envelope the REST API uses
func toStruct(reply *discord.Reply, data interface{}) (*structpb.Struct, error) {
	body := replyResponse{Data: data}
	if reply != nil {
		body.Message = reply.Content
		body.Embeds = reply.Embeds
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	out := &structpb.Struct{}
	if err := out.UnmarshalJSON(raw); err != nil {
		return nil, fmt.Errorf("failed to convert response: %w", err)
	}
	return out, nil
}

// args reads string fields of a request struct
type args struct {
	s *structpb.Struct
}

func (a args) str(key string) string {
	return a.s.GetFields()[key].GetStringValue()
}

func (s *BoardServer) login(ctx context.Context, _ auth.Actor, req args) (*discord.Reply, interface{}, error) {
	sess, err := s.commands.Login(ctx, req.str("username"), req.str("role"))
	if err != nil {
		return nil, nil, err
	}
	return nil, sessionResponse{Token: sess.Token, Username: sess.Username, Role: string(sess.Role)}, nil
}

func (s *BoardServer) logout(ctx context.Context, _ auth.Actor, _ args) (*discord.Reply, interface{}, error) {
	return nil, nil, s.commands.Logout(ctx, tokenFromMetadata(ctx))
}

func (s *BoardServer) board(ctx context.Context, _ auth.Actor, _ args) (*discord.Reply, interface{}, error) {
	reply, err := s.commands.Board(ctx)
	if err != nil {
		return nil, nil, err
	}
	return reply, newBoardResponse(s.commands.Snapshot(ctx)), nil
}

func (s *BoardServer) sitrep(ctx context.Context, _ auth.Actor, _ args) (*discord.Reply, interface{}, error) {
	reply, err := s.commands.Sitrep(ctx)
	return reply, nil, err
}

func (s *BoardServer) pro(ctx context.Context, _ auth.Actor, req args) (*discord.Reply, interface{}, error) {
	reply, err := s.commands.Pro(ctx, req.str("name"))
	return reply, nil, err
}

// shot accepts either an id or a name with an optional faction
func (s *BoardServer) shot(ctx context.Context, actor auth.Actor, req args) (*discord.Reply, interface{}, error) {
	if id := req.str("id"); id != "" {
		reply, err := s.commands.ShotByID(ctx, actor, id)
		return reply, nil, err
	}

	var faction state.Faction
	if label := req.str("faction"); label != "" {
		f, err := parseFaction(label)
		if err != nil {
			return nil, nil, err
		}
		faction = f
	}

	reply, err := s.commands.Shot(ctx, actor, req.str("name"), faction)
	return reply, nil, err
}

func (s *BoardServer) addPlayer(ctx context.Context, actor auth.Actor, req args) (*discord.Reply, interface{}, error) {
	faction, err := parseFaction(req.str("faction"))
	if err != nil {
		return nil, nil, err
	}
	reply, c, err := s.commands.AddCombatant(ctx, actor, req.str("name"), faction, req.str("externalRef"), req.str("notes"))
	return reply, c, err
}

func (s *BoardServer) addCooldown(ctx context.Context, actor auth.Actor, req args) (*discord.Reply, interface{}, error) {
	reply, cs, err := s.commands.AddCooldown(ctx, actor, req.str("name"), req.str("externalRef"), req.str("notes"))
	return reply, cs, err
}

func (s *BoardServer) addTimer(ctx context.Context, actor auth.Actor, req args) (*discord.Reply, interface{}, error) {
	reply, t, err := s.commands.AddTimer(ctx, actor, req.str("name"), req.str("externalRef"))
	return reply, t, err
}

// useSkill, startTimer and stopTimer accept either an id or a name
func (s *BoardServer) useSkill(ctx context.Context, actor auth.Actor, req args) (*discord.Reply, interface{}, error) {
	if id := req.str("id"); id != "" {
		reply, err := s.commands.UseSkill(ctx, actor, id)
		return reply, nil, err
	}
	reply, err := s.commands.UseSkillByName(ctx, actor, req.str("name"))
	return reply, nil, err
}

func (s *BoardServer) forceState(ctx context.Context, actor auth.Actor, req args) (*discord.Reply, interface{}, error) {
	reply, err := s.commands.ForceState(ctx, actor, req.str("id"), req.str("status"))
	return reply, nil, err
}

func (s *BoardServer) editTrigger(ctx context.Context, actor auth.Actor, req args) (*discord.Reply, interface{}, error) {
	reply, err := s.commands.EditTrigger(ctx, actor, req.str("id"), req.str("time"))
	return reply, nil, err
}

func (s *BoardServer) startTimer(ctx context.Context, actor auth.Actor, req args) (*discord.Reply, interface{}, error) {
	if id := req.str("id"); id != "" {
		reply, err := s.commands.StartTimer(ctx, actor, id, req.str("duration"))
		return reply, nil, err
	}
	reply, err := s.commands.StartTimerByName(ctx, actor, req.str("name"), req.str("duration"))
	return reply, nil, err
}

func (s *BoardServer) stopTimer(ctx context.Context, actor auth.Actor, req args) (*discord.Reply, interface{}, error) {
	if id := req.str("id"); id != "" {
		reply, err := s.commands.StopTimer(ctx, actor, id)
		return reply, nil, err
	}
	reply, err := s.commands.StopTimerByName(ctx, actor, req.str("name"))
	return reply, nil, err
}

func (s *BoardServer) delete(ctx context.Context, actor auth.Actor, req args) (*discord.Reply, interface{}, error) {
	reply, err := s.commands.Delete(ctx, actor, req.str("id"))
	return reply, nil, err
}

func (s *BoardServer) setWebhook(ctx context.Context, actor auth.Actor, req args) (*discord.Reply, interface{}, error) {
	reply, err := s.commands.SetWebhook(ctx, actor, req.str("url"))
	return reply, nil, err
}

func (s *BoardServer) publish(ctx context.Context, actor auth.Actor, req args) (*discord.Reply, interface{}, error) {
	reply, err := s.commands.Publish(ctx, actor, req.str("url"))
	return reply, nil, err
}
