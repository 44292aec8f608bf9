package stream

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgeline/reward-engine/internal/application/command"
	"github.com/forgeline/reward-engine/internal/domain/reward"
)

// recordingProcessor captures every command handed to it.
type recordingProcessor struct {
	mu   sync.Mutex
	cmds []command.ProcessActivityCommand
	err  error
}

func (p *recordingProcessor) Handle(ctx context.Context, cmd command.ProcessActivityCommand) (*command.ProcessActivityResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cmds = append(p.cmds, cmd)
	if p.err != nil {
		return nil, p.err
	}
	return &command.ProcessActivityResult{
		Success: true,
		UserID:  cmd.UserID,
		Kind:    cmd.Kind,
	}, nil
}

func (p *recordingProcessor) commands() []command.ProcessActivityCommand {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]command.ProcessActivityCommand(nil), p.cmds...)
}

func TestConsumerProcessesSubmissions(t *testing.T) {
	input := strings.Join([]string{
		`{"user_id":"u1","kind":"code-merge","metadata":{"lines-of-code":120},"correlation_id":"corr-1"}`,
		``,
		`{"user_id":"u2","kind":"mentorship-session","metadata":{"attendee-count":4,"duration-hours":1.5}}`,
	}, "\n")

	processor := &recordingProcessor{}
	consumer := NewConsumer(processor, ConsumerConfig{Input: strings.NewReader(input)})

	processed, err := consumer.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, processed)

	cmds := processor.commands()
	require.Len(t, cmds, 2)
	assert.Equal(t, "u1", cmds[0].UserID)
	assert.Equal(t, "code-merge", cmds[0].Kind)
	assert.InDelta(t, 120, cmds[0].Metadata[reward.MetaLinesOfCode], 1e-9)
	assert.Equal(t, "corr-1", cmds[0].CorrelationID)
	assert.Equal(t, "u2", cmds[1].UserID)
}

func TestConsumerSkipsMalformedLines(t *testing.T) {
	input := strings.Join([]string{
		`not json at all`,
		`{"user_id":"u1","kind":"code-merge"}`,
	}, "\n")

	processor := &recordingProcessor{}
	consumer := NewConsumer(processor, ConsumerConfig{Input: strings.NewReader(input)})

	processed, err := consumer.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, processed)
	assert.Len(t, processor.commands(), 1)
}

func TestConsumerContinuesAfterProcessorErrors(t *testing.T) {
	input := strings.Join([]string{
		`{"user_id":"u1","kind":"code-merge"}`,
		`{"user_id":"u2","kind":"code-merge"}`,
	}, "\n")

	processor := &recordingProcessor{err: errors.New("store down")}
	consumer := NewConsumer(processor, ConsumerConfig{Input: strings.NewReader(input)})

	processed, err := consumer.Run(context.Background())
	require.NoError(t, err, "a failed activity does not stop the consumer")
	assert.Zero(t, processed)
	assert.Len(t, processor.commands(), 2, "both lines reached the processor")
}

func TestConsumerStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	processor := &recordingProcessor{}
	consumer := NewConsumer(processor, ConsumerConfig{
		Input: strings.NewReader(`{"user_id":"u1","kind":"code-merge"}`),
	})

	processed, err := consumer.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, processed)
	assert.Empty(t, processor.commands())
}

func TestConsumerEmptyInput(t *testing.T) {
	processor := &recordingProcessor{}
	consumer := NewConsumer(processor, ConsumerConfig{Input: strings.NewReader("")})

	processed, err := consumer.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, processed)
}
