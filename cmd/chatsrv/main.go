package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/wtask/chatroom/internal/chat"
	"github.com/wtask/chatroom/pkg/localaddr"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().Timestamp().Logger()

	server, err := chat.New(
		Config.Secret,
		chat.WithLogger(logger),
		chat.WithCapacity(Config.Capacity),
		chat.WithGreetTail(Config.GreetTail),
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("unable to build chat server")
	}

	addr := fmt.Sprintf("%s:%d", Config.IPAddress, Config.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Fatal().Err(err).Str("address", addr).Msg("unable to bind")
	}

	ip := Config.IPAddress
	if ip == "" {
		ip = localaddr.IP()
	}
	fmt.Printf("%s (v%s) is hosting a chat room at %s:%d, capacity %d\n",
		BinaryName, Version, ip, Config.Port, Config.Capacity)
	fmt.Printf("share the address and the room secret %q with the participants\n", Config.Secret)
	fmt.Println("type /help for operator commands")

	go server.Serve(listener)
	go server.RunConsole(os.Stdin)

	interrupted := make(chan os.Signal, 1)
	signal.Notify(interrupted, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-interrupted:
		logger.Info().Str("signal", sig.String()).Msg("interrupted")
	case <-server.Done():
		logger.Info().Msg("shutdown requested")
	}

	took := server.Shutdown(10 * time.Second)
	logger.Info().Dur("took", took).Msg("server stopped")
}
