package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ketoprak/askandsign/domain/entities"
	"github.com/ketoprak/askandsign/domain/repositories"
	"github.com/ketoprak/askandsign/internal/playback"
	"github.com/ketoprak/askandsign/internal/signs"
)

// DispatchReport summarizes one dispatch
type DispatchReport struct {
	Result    signs.Result
	Played    int
	Cancelled int
	Failed    int
}

// SignService resolves text to sign assets and plays them in order
type SignService struct {
	table   *signs.Table
	player  repositories.SignPlayer
	console Console
	logger  *zap.Logger
}

// NewSignService creates a new sign service
func NewSignService(table *signs.Table, player repositories.SignPlayer, console Console, logger *zap.Logger) *SignService {
	return &SignService{table: table, player: player, console: console, logger: logger}
}

// Table returns the phrase table in use
func (s *SignService) Table() *signs.Table { return s.table }

// Dispatch plays every asset matched by text. A failed asset is reported
// and the remaining matches still play.
func (s *SignService) Dispatch(ctx context.Context, text string) DispatchReport {
	res := s.table.Lookup(text)
	report := DispatchReport{Result: res}

	for _, m := range res.Items {
		if err := ctx.Err(); err != nil {
			break
		}

		if !m.Found() {
			s.console.Warning(fmt.Sprintf("No sign language video/GIF found for '%s'", m.Phrase))
			continue
		}

		if m.Exact {
			s.console.Info(fmt.Sprintf("Found exact match for: '%s'", text))
		} else {
			s.console.Info(fmt.Sprintf("Found match for word: '%s'", m.Phrase))
		}
		s.play(ctx, m.File, &report)
	}

	if res.Empty() {
		s.console.Error(fmt.Sprintf("No sign language content found for: '%s'", text))
		s.console.Info("Available phrases: " + strings.Join(s.table.Phrases(), ", "))
	}

	s.logger.Info("Dispatched text",
		zap.String("text", text),
		zap.Int("played", report.Played),
		zap.Int("cancelled", report.Cancelled),
		zap.Int("failed", report.Failed),
		zap.Strings("unmatched", res.Unmatched()))

	return report
}

func (s *SignService) play(ctx context.Context, file string, report *DispatchReport) {
	s.console.Info("Playing sign for: " + playback.PhraseName(file))
	s.console.Info("Press 'q' or 'ESC' to close the window")

	outcome, err := s.player.Play(ctx, file)
	switch {
	case err != nil:
		report.Failed++
		s.console.Error(err.Error())
	case outcome == entities.PlaybackCancelled:
		report.Cancelled++
		s.console.Success("Sign display closed by user")
	default:
		report.Played++
		s.console.Success("Sign display completed!")
	}
}
