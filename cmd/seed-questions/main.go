package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/introly/introly-backend/internal/config"
	"github.com/introly/introly-backend/internal/database"
	"github.com/introly/introly-backend/internal/logger"
	"github.com/introly/introly-backend/internal/model"
	"github.com/introly/introly-backend/internal/service"
	"github.com/introly/introly-backend/internal/store"
)

// seedQuestions is the default onboarding set delivered to new tenants.
var seedQuestions = []model.CreateQuestionRequest{
	{Text: "What's your name?", Category: "Demographics"},
	{Text: "How old are you?", Category: "Demographics"},
	{Text: "What best describes your gender?", Category: "Demographics"},
	{Text: "What's your main goal right now?", Category: "Goals"},
	{Text: "How did you hear about us?", Category: "Acquisition"},
	{Text: "How often do you want check-in reminders?", Category: "Preferences"},
	{Text: "Is there anything specific you'd like support with during pregnancy?", Category: "Health", ApplicableFor: []string{"Female"}},
	{Text: "Anything else you'd like us to know?", Category: "Other"},
}

func main() {
	var tenantID string
	flag.StringVar(&tenantID, "tenant", "", "Tenant to seed (defaults to DEFAULT_TENANT)")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	if tenantID == "" {
		tenantID = cfg.DefaultTenant
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	questionStore := store.NewPostgresQuestionStore(pool)
	questionService := service.NewQuestionService(questionStore, nil, 0, log)

	existing, err := questionStore.List(ctx, tenantID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list existing questions")
	}
	if len(existing) > 0 {
		fmt.Printf("Tenant %q already has %d questions, nothing to do\n", tenantID, len(existing))
		return
	}

	fmt.Printf("=== Seeding %d onboarding questions for tenant %q ===\n", len(seedQuestions), tenantID)

	for _, req := range seedQuestions {
		q, err := questionService.Create(ctx, tenantID, req)
		if err != nil {
			log.Fatal().Err(err).Str("text", req.Text).Msg("Failed to seed question")
		}
		fmt.Printf("  %2d. [%s] %s\n", q.DisplayOrder, q.Category, q.Text)
	}

	fmt.Println("Done")
}
