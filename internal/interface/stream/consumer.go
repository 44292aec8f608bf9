// Package stream is the worker's activity ingestion surface. It reads
// newline-delimited JSON activity submissions from an input stream and
// drives them through the processing pipeline one at a time.
package stream

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"

	"github.com/forgeline/reward-engine/internal/application/command"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACTIVITY CONSUMER
// ══════════════════════════════════════════════════════════════════════════════

// ActivityProcessor handles one decoded activity submission.
type ActivityProcessor interface {
	Handle(ctx context.Context, cmd command.ProcessActivityCommand) (*command.ProcessActivityResult, error)
}

// ConsumerConfig contains configuration for the Consumer.
type ConsumerConfig struct {
	// Input is the stream of newline-delimited JSON submissions.
	Input io.Reader

	// MaxLineBytes caps the size of a single submission line.
	MaxLineBytes int

	// Logger for structured logging.
	Logger *slog.Logger
}

// DefaultConsumerConfig returns sensible defaults: stdin input with a
// 1 MiB line cap.
func DefaultConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		Input:        os.Stdin,
		MaxLineBytes: 1 << 20,
	}
}

// Consumer decodes activity submissions and feeds the processor. A
// malformed line or a failed activity is logged and skipped; the
// consumer itself only stops on input exhaustion or context
// cancellation.
type Consumer struct {
	processor ActivityProcessor
	input     io.Reader
	maxLine   int
	logger    *slog.Logger
}

// NewConsumer creates a new Consumer.
func NewConsumer(processor ActivityProcessor, config ConsumerConfig) *Consumer {
	defaults := DefaultConsumerConfig()
	if config.Input == nil {
		config.Input = defaults.Input
	}
	if config.MaxLineBytes <= 0 {
		config.MaxLineBytes = defaults.MaxLineBytes
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &Consumer{
		processor: processor,
		input:     config.Input,
		maxLine:   config.MaxLineBytes,
		logger:    config.Logger.With("component", "activity_consumer"),
	}
}

// activityRequest is the wire form of one submitted activity.
type activityRequest struct {
	UserID        string             `json:"user_id"`
	Kind          string             `json:"kind"`
	Metadata      map[string]float64 `json:"metadata,omitempty"`
	CorrelationID string             `json:"correlation_id,omitempty"`
}

// Run consumes submissions until the input is exhausted or the context
// is cancelled. It returns the number of activities handed to the
// processor and the terminal error, if any.
func (c *Consumer) Run(ctx context.Context) (int, error) {
	scanner := bufio.NewScanner(c.input)
	scanner.Buffer(make([]byte, 0, 64*1024), c.maxLine)

	processed := 0
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return processed, ctx.Err()
		default:
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var req activityRequest
		if err := json.Unmarshal(line, &req); err != nil {
			c.logger.Warn("skipping malformed activity line", "error", err)
			continue
		}

		result, err := c.processor.Handle(ctx, command.ProcessActivityCommand{
			UserID:        req.UserID,
			Kind:          req.Kind,
			Metadata:      req.Metadata,
			CorrelationID: req.CorrelationID,
		})
		if err != nil {
			c.logger.Error("activity processing failed",
				"user_id", req.UserID,
				"kind", req.Kind,
				"error", err,
			)
			continue
		}
		processed++

		c.logger.Info("activity processed",
			"user_id", result.UserID,
			"kind", result.Kind,
			"scored", result.Scored,
			"settled", len(result.Settled),
			"level", result.NewLevel,
			"streak_days", result.StreakDays,
		)
	}
	if err := scanner.Err(); err != nil {
		return processed, err
	}

	c.logger.Info("activity input exhausted", "processed", processed)
	return processed, nil
}
