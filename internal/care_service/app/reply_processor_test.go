package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/boostgo/customercare/internal/care_service/domain"
	"github.com/boostgo/customercare/internal/core_domain"
)

func TestCandidateNumbers_InternationalSender(t *testing.T) {
	candidates := CandidateNumbers("+84912345678")
	assert.Equal(t, []string{
		"+84912345678",
		"84912345678",
		"0912345678",
		"912345678",
	}, candidates)
}

func TestCandidateNumbers_DomesticSender(t *testing.T) {
	candidates := CandidateNumbers("0912345678")
	assert.Equal(t, []string{
		"0912345678",
		"+84912345678",
		"84912345678",
		"912345678",
	}, candidates)
}

func TestCandidateNumbers_StripsFormatting(t *testing.T) {
	candidates := CandidateNumbers(" +84 91 234 5678 ")
	assert.Contains(t, candidates, "0912345678")
	assert.Contains(t, candidates, "+84912345678")
}

func TestCandidateNumbers_NonNumericSender(t *testing.T) {
	candidates := CandidateNumbers("VIETTEL")
	assert.Equal(t, []string{"VIETTEL"}, candidates)
}

func TestReplyProcessor_CorrelatedReply(t *testing.T) {
	messages := new(mockMessageRepo)
	notifier := new(mockNotifier)
	p := NewReplyProcessor(messages, notifier, testLogger())

	stored := &core_domain.Message{
		ID:          "msg-1",
		Destination: "0912345678",
		OrderID:     "ord-42",
		Status:      core_domain.MessageStatusDelivered,
		CreatedAt:   time.Now().UTC(),
	}
	messages.On("GetMostRecentByDestination", mock.Anything, mock.MatchedBy(func(c []string) bool {
		for _, x := range c {
			if x == "0912345678" {
				return true
			}
		}
		return false
	})).Return(stored, nil).Once()

	var sent string
	notifier.On("Send", mock.Anything, mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { sent = args.String(1) }).Return().Once()

	err := p.ProcessIncomingSMS(context.Background(), domain.IncomingSMS{
		LineID: "sim-1",
		Sender: "+84912345678",
		Body:   "ok, cam on shop",
	})
	require.NoError(t, err)

	assert.Contains(t, sent, "SMS Reply Received")
	assert.Contains(t, sent, "ord-42")
	assert.Contains(t, sent, "0912345678")
	assert.Contains(t, sent, "ok, cam on shop")
	messages.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestReplyProcessor_UnknownSender(t *testing.T) {
	messages := new(mockMessageRepo)
	notifier := new(mockNotifier)
	p := NewReplyProcessor(messages, notifier, testLogger())

	messages.On("GetMostRecentByDestination", mock.Anything, mock.Anything).
		Return(nil, domain.ErrMessageNotFound).Once()

	var sent string
	notifier.On("Send", mock.Anything, mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { sent = args.String(1) }).Return().Once()

	err := p.ProcessIncomingSMS(context.Background(), domain.IncomingSMS{
		Sender: "0999999999",
		Body:   "ai day?",
	})
	require.NoError(t, err)

	assert.Contains(t, sent, "Unknown SMS Reply")
	assert.Contains(t, sent, "0999999999")
	assert.Contains(t, sent, "No previous order found")
}

func TestReplyProcessor_RepositoryErrorPropagates(t *testing.T) {
	messages := new(mockMessageRepo)
	notifier := new(mockNotifier)
	p := NewReplyProcessor(messages, notifier, testLogger())

	messages.On("GetMostRecentByDestination", mock.Anything, mock.Anything).
		Return(nil, assert.AnError).Once()

	err := p.ProcessIncomingSMS(context.Background(), domain.IncomingSMS{Sender: "0912345678"})
	require.Error(t, err)
	notifier.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}
