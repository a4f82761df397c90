// Command chatcli is an interactive terminal client for the streaming chat
// endpoint. It sends typed lines as text frames and, with -audio, a file's
// bytes as one binary frame, then prints the assistant's replies.
package main

import (
	"bufio"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var (
	serverURL = flag.String("server", "ws://localhost:8080/ws", "Chat WebSocket URL")
	audioFile = flag.String("audio", "", "Send this audio file instead of reading stdin")
	saveAudio = flag.String("save-audio", "", "Write spoken replies to this file")
	verbose   = flag.Bool("verbose", false, "Enable verbose logging")
)

type reply struct {
	Text    string `json:"text"`
	Audio   string `json:"audio,omitempty"`
	Outcome string `json:"outcome"`
	Error   string `json:"error,omitempty"`
	Understanding struct {
		NormalizedText string `json:"normalized_text"`
		Product        string `json:"product"`
		Intent         string `json:"intent"`
		Query          string `json:"query"`
	} `json:"understanding"`
}

func main() {
	flag.Parse()

	var logger *zap.Logger
	var err error
	if *verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	conn, _, err := websocket.DefaultDialer.Dial(*serverURL, nil)
	if err != nil {
		logger.Fatal("Failed to connect", zap.String("server", *serverURL), zap.Error(err))
	}
	defer conn.Close()
	logger.Info("Connected", zap.String("server", *serverURL))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	replies := make(chan reply)
	go readReplies(conn, replies, logger)

	if *audioFile != "" {
		data, err := os.ReadFile(*audioFile)
		if err != nil {
			logger.Fatal("Failed to read audio file", zap.Error(err))
		}
		if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
			logger.Fatal("Failed to send audio", zap.Error(err))
		}
		select {
		case r := <-replies:
			printReply(r)
		case <-quit:
		}
		return
	}

	lines := make(chan string)
	go readStdin(lines)

	fmt.Println("Type a message and press enter. Ctrl-C to quit.")
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return
			}
			if line == "" {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
				logger.Fatal("Failed to send message", zap.Error(err))
			}
			select {
			case r := <-replies:
				printReply(r)
			case <-quit:
				return
			}
		case <-quit:
			return
		}
	}
}

func readStdin(lines chan<- string) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		lines <- scanner.Text()
	}
	close(lines)
}

func readReplies(conn *websocket.Conn, replies chan<- reply, logger *zap.Logger) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			logger.Info("Connection closed", zap.Error(err))
			close(replies)
			return
		}
		var r reply
		if err := json.Unmarshal(data, &r); err != nil {
			logger.Warn("Unparseable reply", zap.ByteString("data", data))
			continue
		}
		replies <- r
	}
}

func printReply(r reply) {
	if r.Error != "" {
		fmt.Printf("! %s\n", r.Error)
		return
	}
	fmt.Printf("< %s\n", r.Text)
	if r.Understanding.Intent != "" || r.Understanding.Product != "" {
		fmt.Printf("  [outcome=%s intent=%s product=%s]\n", r.Outcome, r.Understanding.Intent, r.Understanding.Product)
	}
	if r.Audio != "" && *saveAudio != "" {
		data, err := base64.StdEncoding.DecodeString(r.Audio)
		if err == nil {
			if err := os.WriteFile(*saveAudio, data, 0o644); err == nil {
				fmt.Printf("  [audio saved to %s]\n", *saveAudio)
			}
		}
	}
}
