package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/wtask/chatroom/internal/client"
)

func main() {
	logfile, err := os.OpenFile(BinaryName+".log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: unable to open log file: %v\n", BinaryName, err)
		os.Exit(1)
	}
	defer logfile.Close()
	// the terminal belongs to the chat view, logs go to a file
	logger := zerolog.New(logfile).With().Timestamp().Logger()

	fmt.Printf("%s (v%s) connecting to %s:%d ...\n", BinaryName, Version, Config.Host, Config.Port)

	sess, err := client.Dial(client.Config{
		Host:     Config.Host,
		Port:     Config.Port,
		Secret:   Config.Secret,
		Nickname: Config.Nickname,
		Logger:   logger,
	})
	if err != nil {
		switch {
		case errors.Is(err, client.ErrAuthFailed):
			fmt.Fprintln(os.Stderr, "the room rejected your password")
		case errors.Is(err, client.ErrServerFull):
			fmt.Fprintln(os.Stderr, "the room is full, try again later")
		default:
			fmt.Fprintf(os.Stderr, "unable to join the room: %v\n", err)
		}
		os.Exit(1)
	}

	logger.Info().
		Str("nickname", sess.Nickname()).
		Str("server", fmt.Sprintf("%s:%d", Config.Host, Config.Port)).
		Msg("joined the room")

	if err := client.Run(sess); err != nil {
		fmt.Fprintf(os.Stderr, "chat session failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("bye!")
}
