package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/wtask/chatroom/internal/chat/message"
)

type (
	// Configuration - client configuration
	Configuration struct {
		// Host - server host name or address
		Host string
		// Port - server port
		Port int
		// Secret - room secret
		Secret string
		// Nickname - desired display name
		Nickname string
	}
)

var (
	// Config - current configuration of the client
	Config = Configuration{}

	// BinaryName - name of run application binary
	BinaryName = strings.TrimSuffix(filepath.Base(os.Args[0]), filepath.Ext(os.Args[0]))

	// Version - app version fingerprint
	Version = "1.0.0"
)

func envStr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func init() {
	godotenv.Load()

	out := flag.CommandLine.Output()
	printUsage := func() {
		fmt.Fprintf(out, "Join a text chat room over TCP\n\n\t%s [options]\nOptions:\n\n", BinaryName)
		flag.PrintDefaults()
		fmt.Fprint(out, "\n")
	}
	printError := func(msg string) {
		fmt.Fprintf(out, "%s (v%s) error:\n\n\t%s\n", BinaryName, Version, msg)
	}

	help := false
	flag.BoolVar(&help, "help", false, "Print usage help")
	flag.StringVar(&Config.Host, "host", envStr("CHATCLI_HOST", "127.0.0.1"), "Server host name or address")
	flag.IntVar(&Config.Port, "port", envInt("CHATCLI_PORT", 8888), "Server port")
	flag.StringVar(&Config.Secret, "secret", envStr("CHATCLI_SECRET", ""), "Room secret (mandatory)")
	flag.StringVar(&Config.Nickname, "nick", envStr("CHATCLI_NICK", ""), "Desired display name")

	flag.Parse()

	if help {
		printUsage()
		os.Exit(0)
	}

	if Config.Host == "" {
		printError("host is mandatory")
		os.Exit(1)
	}
	if !message.ValidPort(Config.Port) {
		printError("port value should be in range 1024-65535")
		os.Exit(1)
	}
	if !message.ValidSecret(Config.Secret) {
		printError(fmt.Sprintf("secret is mandatory, 1-%d characters", message.MaxSecretLen))
		os.Exit(1)
	}
	if Config.Nickname != "" && !message.ValidNickname(Config.Nickname) {
		printError(fmt.Sprintf("nickname should be 1-%d letters, digits or underscores", message.MaxNicknameLen))
		os.Exit(1)
	}
}
