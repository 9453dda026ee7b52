// README: Classifies a dispute description with Gemini and prints the resolution decision.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"farmlink/internal/ai"
	"farmlink/internal/logger"
	"farmlink/internal/modules/dispute"
)

func main() {
	description := flag.String("description", "The driver took a 12 km detour and my crates of strawberries arrived bruised.", "dispute text")
	threshold := flag.Float64("threshold", dispute.DefaultAutoResolveThreshold, "auto-resolve confidence threshold")
	flag.Parse()

	log := logger.New("info")
	defer func() { _ = log.Sync() }()

	apiKey := os.Getenv("FARMLINK_AI_GEMINI_KEY")
	if apiKey == "" {
		log.Fatal("FARMLINK_AI_GEMINI_KEY environment variable not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	provider, err := ai.NewGeminiProvider(ctx, apiKey)
	if err != nil {
		log.Fatal("init gemini", zap.Error(err))
	}
	defer provider.Close()

	fmt.Printf("Dispute: %s\n", *description)
	cls, err := provider.ClassifyDispute(ctx, *description)
	if err != nil {
		log.Fatal("classify dispute", zap.Error(err))
	}
	fmt.Printf("Category: %s\nSeverity: %s\nConfidence: %.2f\nRecommended: %s\n",
		cls.Category, cls.Severity, cls.Confidence, cls.RecommendedAction)

	res := dispute.NewPolicy(*threshold).Decide(time.Now(), cls.Severity, cls.Category, cls.Confidence, cls.CompensationPercent)
	fmt.Printf("Deadline: %s\nAuto-resolve: %v\n", res.TargetResolutionDeadline.Format(time.RFC3339), res.CanAutoResolve)
	if res.CompensationPercent != nil {
		fmt.Printf("Compensation: %.0f%%\n", *res.CompensationPercent)
	}
}
