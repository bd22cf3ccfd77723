package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProducer_NoBrokers(t *testing.T) {
	t.Parallel()

	assert.Nil(t, NewProducer(nil, "book_events"))
	assert.Nil(t, NewProducer([]string{}, "book_events"))
}

func TestNilProducer_DropsEverything(t *testing.T) {
	t.Parallel()

	var p *Producer

	err := p.PublishEvent(context.Background(), "1", map[string]any{"type": "book_created"})
	require.NoError(t, err)
	require.NoError(t, p.Close())
}

func TestNewProducer_ConfiguresWriter(t *testing.T) {
	t.Parallel()

	p := NewProducer([]string{"localhost:9092"}, "book_events")
	require.NotNil(t, p)
	assert.Equal(t, "book_events", p.writer.Topic)
	require.NoError(t, p.Close())
}
