package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/satriahrh/arunika/tts-relay/adapters/tts"
	"github.com/satriahrh/arunika/tts-relay/internal/config"
)

func main() {
	godotenv.Load()

	text := flag.String("text", "Halo! Ini adalah demonstrasi text to speech Eleven Labs.", "text to synthesize")
	outputFile := flag.String("out", "example_output.mp3", "file to write the audio to")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	apiKey := os.Getenv(config.APIKeyEnv)
	if apiKey == "" {
		logger.Fatal("ELEVENLABS_API_KEY environment variable is required")
	}

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	ttsService, err := tts.NewElevenLabsTTS(tts.ElevenLabsConfig{
		APIBaseURL: cfg.ElevenLabsBaseURL,
		Timeout:    cfg.ElevenLabsTimeout,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create TTS service", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Info("Converting text to speech", zap.String("text", *text))

	audioChan, err := ttsService.Stream(ctx, apiKey, *text)
	if err != nil {
		logger.Fatal("Failed to convert text to speech", zap.Error(err))
	}

	file, err := os.Create(*outputFile)
	if err != nil {
		logger.Fatal("Failed to create output file", zap.Error(err))
	}
	defer file.Close()

	totalBytes := 0
	chunkCount := 0

	for audioChunk := range audioChan {
		if audioChunk.Err != nil {
			logger.Fatal("Audio stream interrupted", zap.Int("totalBytes", totalBytes), zap.Error(audioChunk.Err))
		}

		n, err := file.Write(audioChunk.Data)
		if err != nil {
			cancel()
			for range audioChan {
			}
			logger.Fatal("Failed to write audio chunk", zap.Error(err))
		}

		totalBytes += n
		chunkCount++
	}

	logger.Info("Audio conversion completed",
		zap.Int("totalChunks", chunkCount),
		zap.Int("totalBytes", totalBytes),
		zap.String("outputFile", *outputFile))

	fmt.Printf("Audio saved to %s (%d bytes in %d chunks)\n", *outputFile, totalBytes, chunkCount)
}
