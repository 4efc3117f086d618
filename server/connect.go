package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"connectrpc.com/connect"

	"github.com/chazu/basil/vm"
)

// NewConnectHandler returns the mux path and handler for the compile
// procedure over the Connect protocol.
func NewConnectHandler(svc CompileServer, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)
	h := connect.NewUnaryHandler(
		CompileProcedure,
		func(ctx context.Context, req *connect.Request[vm.CompileRequest]) (*connect.Response[vm.CompileResponse], error) {
			resp, err := svc.Compile(ctx, req.Msg)
			if err != nil {
				return nil, err
			}
			return connect.NewResponse(resp), nil
		},
		opts...,
	)
	return CompileProcedure, h
}

// ConnectCompiler is a vm.CompileService speaking Connect over HTTP.
type ConnectCompiler struct {
	client  *connect.Client[vm.CompileRequest, vm.CompileResponse]
	timeout time.Duration
}

// NewConnectCompiler targets the server at baseURL, for example
// "http://localhost:7070". A nil httpClient uses http.DefaultClient.
func NewConnectCompiler(httpClient connect.HTTPClient, baseURL string, timeout time.Duration) *ConnectCompiler {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = defaultRemoteTimeout
	}
	url := strings.TrimRight(baseURL, "/") + CompileProcedure
	return &ConnectCompiler{
		client:  connect.NewClient[vm.CompileRequest, vm.CompileResponse](httpClient, url, connect.WithCodec(Codec{})),
		timeout: timeout,
	}
}

// Compile performs one blocking call.
func (c *ConnectCompiler) Compile(ctx context.Context, req vm.CompileRequest) (vm.CompileResponse, error) {
	resp, err := c.client.CallUnary(ctx, connect.NewRequest(&req))
	if err != nil {
		return vm.CompileResponse{}, err
	}
	return *resp.Msg, nil
}

// Submit implements vm.CompileService.
func (c *ConnectCompiler) Submit(req vm.CompileRequest) vm.CompileTicket {
	return remoteCompile(req, c.timeout, c.Compile)
}
