// File: cmd/diagnostic/llm_diagnostic.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/iyunix/go-gptchat/internal/config"
	"github.com/iyunix/go-gptchat/internal/services/ai"
)

// Sends one prompt through the configured provider, streaming or not, and
// prints the reply.
func main() {
	prompt := flag.String("prompt", "What is the answer to life, universe and everything?", "prompt to send")
	stream := flag.Bool("stream", false, "use the streaming endpoint")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.LLMTimeout)
	defer cancel()

	provider, err := ai.NewProvider(ctx, &ai.Config{
		Provider:     cfg.AIProvider,
		APIKey:       cfg.LLMAPIKey,
		BaseURL:      cfg.LLMBaseURL,
		Model:        cfg.LLMModel,
		GeminiAPIKey: cfg.GeminiAPIKey,
		GeminiModel:  cfg.GeminiModel,
		Timeout:      cfg.LLMTimeout,
		Temperature:  cfg.LLMTemperature,
		MaxTokens:    cfg.LLMMaxTokens,
	})
	if err != nil {
		log.Fatalf("provider: %v", err)
	}

	status := provider.GetStatus(ctx)
	fmt.Printf("Provider: %s  Model: %s  Healthy: %v  %s\n", status.Provider, status.Model, status.IsHealthy, status.Message)

	messages := ai.FormatMessages(cfg.DefaultSystemPrompt, []ai.ChatMessage{{Role: "user", Content: *prompt}})
	start := time.Now()

	if *stream {
		err = provider.StreamCompletion(ctx, messages, func(delta string) error {
			_, werr := os.Stdout.WriteString(delta)
			return werr
		})
		fmt.Println()
	} else {
		var reply string
		reply, err = provider.GetCompletion(ctx, messages)
		fmt.Println(reply)
	}
	if err != nil {
		log.Fatalf("completion failed: %v", err)
	}
	fmt.Printf("Completed in %s\n", time.Since(start).Round(time.Millisecond))
}
