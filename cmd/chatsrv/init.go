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
	// Configuration - server configuration
	Configuration struct {
		// IPAddress - bind the address
		IPAddress string
		// Port - bind the port
		Port int
		// Secret - room secret required to join
		Secret string
		// Capacity - max number of simultaneous participants
		Capacity int
		// GreetTail - num of recent room lines replayed to a newcomer
		GreetTail int
	}
)

var (
	// Config - current configuration of the server
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
	// flag defaults may come from the environment or a .env file
	godotenv.Load()

	out := flag.CommandLine.Output()
	printUsage := func() {
		fmt.Fprintf(out, "Host a text chat room over TCP\n\n\t%s [options]\nOptions:\n\n", BinaryName)
		flag.PrintDefaults()
		fmt.Fprint(out, "\n")
	}
	printError := func(msg string) {
		fmt.Fprintf(out, "%s (v%s) error:\n\n\t%s\n", BinaryName, Version, msg)
	}

	help := false
	flag.BoolVar(&help, "help", false, "Print usage help")
	flag.StringVar(&Config.IPAddress, "ip", envStr("CHATSRV_ADDR", ""), "Listen address")
	flag.IntVar(&Config.Port, "port", envInt("CHATSRV_PORT", 8888), "Listen port")
	flag.StringVar(&Config.Secret, "secret", envStr("CHATSRV_SECRET", ""), "Room secret required to join (mandatory)")
	flag.IntVar(&Config.Capacity, "capacity", envInt("CHATSRV_CAPACITY", 5), "Max number of simultaneous participants")
	flag.IntVar(&Config.GreetTail, "greet-tail", envInt("CHATSRV_GREET_TAIL", 10), "Num of recent room lines replayed to a newcomer")

	flag.Parse()

	if help {
		printUsage()
		os.Exit(0)
	}

	if !message.ValidSecret(Config.Secret) {
		printError(fmt.Sprintf("secret is mandatory, 1-%d characters", message.MaxSecretLen))
		os.Exit(1)
	}
	if !message.ValidPort(Config.Port) {
		printError("port value should be in range 1024-65535")
		os.Exit(1)
	}
	if Config.Capacity < 1 {
		printError("capacity value should be greater or equal 1")
		os.Exit(1)
	}
	if Config.GreetTail < 0 {
		printError("greet-tail value should be greater or equal 0")
		os.Exit(1)
	}
}
