package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tradewisehq/tradewise/internal/coach"
	"github.com/tradewisehq/tradewise/internal/domain"
)

const coachSystemPrompt = `You are a trading performance coach reviewing a ` +
	`retail trader's journal. Ground every observation in the statistics ` +
	`provided; do not invent numbers. Be direct and specific, and keep the ` +
	`response under 300 words.`

const promptsSystemPrompt = `You generate reflective journaling questions ` +
	`for a trader based on their recent results. Respond ONLY with a JSON ` +
	`array of question strings, nothing else.`

// CoachService turns journal analytics into natural-language coaching via
// the configured completion backend.
type CoachService struct {
	coach     coach.Coach
	analytics *AnalyticsService
	trades    domain.TradeStore
	logger    *slog.Logger
}

// NewCoachService creates a CoachService.
func NewCoachService(c coach.Coach, analytics *AnalyticsService, trades domain.TradeStore, logger *slog.Logger) *CoachService {
	return &CoachService{
		coach:     c,
		analytics: analytics,
		trades:    trades,
		logger:    logger.With(slog.String("component", "coach_service")),
	}
}

// Feedback produces a performance review of the whole journal. The user's
// optional question steers the review; when empty a general assessment is
// requested.
func (s *CoachService) Feedback(ctx context.Context, question string) (string, error) {
	summary, err := s.analytics.Summary(ctx)
	if err != nil {
		return "", err
	}
	weekdays, err := s.analytics.WeekdayMetrics(ctx)
	if err != nil {
		return "", err
	}
	symbols, err := s.analytics.SymbolPerformance(ctx)
	if err != nil {
		return "", err
	}

	stats, err := json.Marshal(map[string]any{
		"summary":  summary,
		"weekdays": weekdays,
		"symbols":  symbols,
	})
	if err != nil {
		return "", fmt.Errorf("coach_service: marshal stats: %w", err)
	}

	var b strings.Builder
	b.WriteString("Journal statistics as JSON:\n")
	b.Write(stats)
	b.WriteString("\n\n")
	if question != "" {
		b.WriteString("Trader's question: ")
		b.WriteString(question)
	} else {
		b.WriteString("Give an overall assessment of this trader's strengths and weaknesses.")
	}

	reply, err := s.coach.Complete(ctx, coachSystemPrompt, b.String())
	if err != nil {
		return "", fmt.Errorf("coach_service: feedback: %w", err)
	}
	return reply, nil
}

// JournalPrompts generates reflective questions from the most recent trades.
// The backend is asked for JSON; an answer that does not parse is returned
// as a single prompt rather than dropped.
func (s *CoachService) JournalPrompts(ctx context.Context, count int) ([]string, error) {
	if count <= 0 || count > 10 {
		count = 3
	}

	recent, err := s.trades.List(ctx, domain.ListOpts{Limit: 20})
	if err != nil {
		return nil, fmt.Errorf("coach_service: load recent trades: %w", err)
	}

	payload, err := json.Marshal(recent)
	if err != nil {
		return nil, fmt.Errorf("coach_service: marshal trades: %w", err)
	}

	user := fmt.Sprintf("Recent trades as JSON:\n%s\n\nGenerate %d questions.", payload, count)
	reply, err := s.coach.Complete(ctx, promptsSystemPrompt, user)
	if err != nil {
		return nil, fmt.Errorf("coach_service: prompts: %w", err)
	}

	var prompts []string
	if err := json.Unmarshal([]byte(reply), &prompts); err != nil {
		s.logger.WarnContext(ctx, "prompt response was not JSON, returning raw text")
		return []string{reply}, nil
	}
	if len(prompts) > count {
		prompts = prompts[:count]
	}
	return prompts, nil
}
