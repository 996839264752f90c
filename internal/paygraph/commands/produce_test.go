package commands

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPublishLines(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	first := strings.SplitN(sample, "\n", 2)[0]
	sp.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		if string(val) != first {
			return errors.New("unexpected first line")
		}
		return nil
	})
	for i := 0; i < 3; i++ {
		sp.ExpectSendMessageAndSucceed()
	}

	// blank line in the middle is not published
	in := strings.Replace(sample, "\n", "\n\n", 1)
	n, err := publishLines(context.Background(), sp, "venmo.payments", strings.NewReader(in), zap.NewNop().Sugar())
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	require.NoError(t, sp.Close())
}

func TestPublishLines_Failure(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	sp.ExpectSendMessageAndFail(sarama.ErrNotLeaderForPartition)
	for i := 0; i < 3; i++ {
		sp.ExpectSendMessageAndSucceed()
	}

	n, err := publishLines(context.Background(), sp, "t", strings.NewReader(sample), zap.NewNop().Sugar())
	assert.ErrorContains(t, err, "send batch after 0 lines")
	assert.Equal(t, 0, n)
}
