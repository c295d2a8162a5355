// Command example starts a small osrv server exercising the middleware
// pipeline, a plugin, the WebSocket echo contract, and graceful
// shutdown. Grounded on bolt/examples/hello/main.go's shape (construct,
// register routes/handlers, Run), adapted to osrv's fetch-style single
// handler plus middleware instead of a method-routed App.
package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/watt-toolkit/osrv"
	"github.com/watt-toolkit/osrv/plugin"
	"github.com/watt-toolkit/osrv/response"
	"github.com/watt-toolkit/osrv/ws"
)

func loggingMiddleware(logger *zap.Logger) osrv.Middleware {
	return func(req *osrv.Request, next osrv.Next) (*osrv.Response, error) {
		start := time.Now()
		resp, err := next(req)
		logger.Info("request",
			zap.String("method", req.Method()),
			zap.String("path", req.URL().Path),
			zap.Duration("elapsed", time.Since(start)))
		return resp, err
	}
}

func router(req *osrv.Request) (*osrv.Response, error) {
	switch {
	case req.Method() == "GET" && req.URL().Path == "/":
		return response.Text("ok"), nil

	case req.Method() == "GET" && req.URL().Path == "/h2":
		return response.JSON(200, map[string]string{
			"runtime":     req.Runtime().Name,
			"httpVersion": string(req.Runtime().HTTPVersion),
			"protocol":    string(req.Runtime().Protocol),
		})

	case req.Method() == "POST" && req.URL().Path == "/echo-body":
		raw, err := req.Body().ReadAll()
		if err != nil {
			return nil, err
		}
		return response.JSONRaw(200, mustJSON(map[string]any{"received": string(raw)})), nil

	case req.URL().Path == "/ws":
		return upgradeEcho(req)

	default:
		return response.Empty(404), nil
	}
}

func upgradeEcho(req *osrv.Request) (*osrv.Response, error) {
	handle, err := ws.Upgrade(req, ws.Limits{
		MaxFrameBytes:    1 << 20,
		IdleTimeout:      60 * time.Second,
		MaxBufferedBytes: 8 << 20,
	})
	if err != nil {
		return response.Empty(400), nil
	}

	req.WaitUntil(func() error {
		for msg := range handle.Messages() {
			switch msg.Type {
			case ws.TextMessage:
				_ = handle.SendText("echo:" + string(msg.Data))
			case ws.BinaryMessage:
				_ = handle.SendBytes(msg.Data)
			}
		}
		return nil
	})

	return response.Empty(101), nil
}

func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	requestCountPlugin := &plugin.Plugin{
		Name: "request-counter",
		OnAfterServe: func(ctx context.Context) error {
			logger.Info("server ready to accept requests")
			return nil
		},
	}

	cfg := osrv.ResolveConfig(osrv.Config{
		Fetch:      router,
		Middleware: []osrv.Middleware{loggingMiddleware(logger)},
		Plugins:    []*plugin.Plugin{requestCountPlugin},
		Logger:     logger,
	}, environMap())

	srv := osrv.New(cfg)

	logger.Info("starting osrv example server", zap.String("addr", cfg.Addr))
	if err := srv.Run(context.Background()); err != nil {
		logger.Fatal("server exited with error", zap.Error(err))
	}
}

func environMap() map[string]string {
	out := make(map[string]string)
	for _, kv := range os.Environ() {
		if idx := strings.IndexByte(kv, '='); idx >= 0 {
			out[kv[:idx]] = kv[idx+1:]
		}
	}
	return out
}
