package server

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/chazu/basil/vm"
)

// Compile service names, shared by the gRPC and Connect transports.
const (
	CompileServiceName   = "basil.v1.CompileService"
	CompileProcedure     = "/" + CompileServiceName + "/Compile"
	defaultRemoteTimeout = 10 * time.Second
)

// CompileServer is the server side of the compile service.
type CompileServer interface {
	Compile(ctx context.Context, req *vm.CompileRequest) (*vm.CompileResponse, error)
}

// compileServiceDesc describes the service without generated protobuf
// stubs; messages travel through Codec.
var compileServiceDesc = grpc.ServiceDesc{
	ServiceName: CompileServiceName,
	HandlerType: (*CompileServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Compile", Handler: compileHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "basil/v1/compile",
}

func compileHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(vm.CompileRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CompileServer).Compile(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: CompileProcedure}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CompileServer).Compile(ctx, req.(*vm.CompileRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// NewGRPCServer returns a gRPC server exposing svc.
func NewGRPCServer(svc CompileServer, opts ...grpc.ServerOption) *grpc.Server {
	opts = append([]grpc.ServerOption{grpc.ForceServerCodec(Codec{})}, opts...)
	s := grpc.NewServer(opts...)
	s.RegisterService(&compileServiceDesc, svc)
	return s
}

// ServeGRPC serves the compile service on lis until the server stops.
func ServeGRPC(lis net.Listener, svc CompileServer) error {
	log.Infof("gRPC compile service listening on %s", lis.Addr())
	return NewGRPCServer(svc).Serve(lis)
}

// GRPCCompiler is a vm.CompileService that compiles on a remote server.
type GRPCCompiler struct {
	conn    *grpc.ClientConn
	timeout time.Duration
}

// DialGRPC connects to a compile service at addr. Extra dial options are
// appended after the defaults.
func DialGRPC(addr string, timeout time.Duration, opts ...grpc.DialOption) (*GRPCCompiler, error) {
	if timeout <= 0 {
		timeout = defaultRemoteTimeout
	}
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(Codec{})),
	}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, err
	}
	return &GRPCCompiler{conn: conn, timeout: timeout}, nil
}

// Compile performs one blocking call.
func (c *GRPCCompiler) Compile(ctx context.Context, req vm.CompileRequest) (vm.CompileResponse, error) {
	var resp vm.CompileResponse
	if err := c.conn.Invoke(ctx, CompileProcedure, &req, &resp); err != nil {
		return vm.CompileResponse{}, err
	}
	return resp, nil
}

// Submit implements vm.CompileService.
func (c *GRPCCompiler) Submit(req vm.CompileRequest) vm.CompileTicket {
	return remoteCompile(req, c.timeout, c.Compile)
}

// Close releases the connection.
func (c *GRPCCompiler) Close() error {
	return c.conn.Close()
}
