// FILE: example/gnet/main.go
package main

import (
	"os"

	"github.com/panjf2000/gnet/v2"

	"github.com/lixenwraith/logship"
	"github.com/lixenwraith/logship/compat"
)

// Example gnet event handler
type echoServer struct {
	gnet.BuiltinEventEngine
}

func (es *echoServer) OnTraffic(c gnet.Conn) gnet.Action {
	buf, _ := c.Next(-1)
	c.Write(buf)
	return gnet.None
}

func main() {
	logger, err := logship.NewBuilder().
		Endpoint("ingest.example.com/v1/logs").
		Token(os.Getenv("LOGSHIP_TOKEN")).
		LevelString("debug").
		Compress(true).
		Build()
	if err != nil {
		panic(err)
	}
	defer logger.Shutdown()

	// Fatal ships the record, then the handler decides how to exit
	gnetAdapter := compat.NewStructuredGnetAdapter(logger, compat.WithFatalHandler(func(msg string) {
		_ = logger.Shutdown()
		os.Exit(1)
	}))

	// Configure gnet server with the logger
	err = gnet.Run(
		&echoServer{},
		"tcp://127.0.0.1:9000",
		gnet.WithMulticore(true),
		gnet.WithLogger(gnetAdapter),
		gnet.WithReusePort(true),
	)
	if err != nil {
		panic(err)
	}
}
