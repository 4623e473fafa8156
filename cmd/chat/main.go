package main

import (
	"os"

	"persona-chat/cmd/chat/chatcmder"
)

func main() {
	if err := chatcmder.NewChatCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
