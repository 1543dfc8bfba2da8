package dkg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"

	"github.com/onflow/flow-epochs/model/messages"
	"github.com/onflow/flow-epochs/module"
)

// retryMax is the maximum number of times the client will attempt to post a
// message or submit a result.
const retryMax = 8

// retryInitialWait is the initial wait between retries, doubled on each
// subsequent attempt.
const retryInitialWait = time.Second

// ParticipantClient is the node-side client for taking part in a DKG round.
// It owns the node's participant handle, pages through the whiteboard with a
// read offset, and retries writes with exponential backoff. The coordinator
// itself never retries; resubmission is the calling node's responsibility,
// and this client implements that policy.
type ParticipantClient struct {
	log           zerolog.Logger
	coordinator   *Coordinator
	participant   *Participant
	messageOffset uint
}

var _ module.DKGContractClient = (*ParticipantClient)(nil)

// NewParticipantClient creates a client around the given participant handle.
func NewParticipantClient(log zerolog.Logger, coordinator *Coordinator, participant *Participant) *ParticipantClient {
	return &ParticipantClient{
		log: log.With().
			Str("component", "dkg_participant_client").
			Hex("node_id", participant.nodeID[:]).
			Logger(),
		coordinator: coordinator,
		participant: participant,
	}
}

// Broadcast posts a message to the whiteboard, retrying transient failures.
// Precondition violations (inactive round, unregistered node) are permanent
// and returned immediately.
func (pc *ParticipantClient) Broadcast(content string) error {
	return pc.withRetry(func() error {
		return pc.coordinator.PostMessage(pc.participant, content)
	})
}

// ReadBroadcast returns the whiteboard messages the client has not seen yet
// and advances its read offset past them.
func (pc *ParticipantClient) ReadBroadcast(fromIndex uint) ([]messages.WhiteboardMessage, error) {
	msgs := pc.coordinator.Whiteboard(fromIndex)
	pc.messageOffset = fromIndex + uint(len(msgs))
	return msgs, nil
}

// Poll reads all whiteboard messages posted since the previous call.
func (pc *ParticipantClient) Poll() ([]messages.WhiteboardMessage, error) {
	return pc.ReadBroadcast(pc.messageOffset)
}

// SubmitResult submits the node's final result vector, retrying transient
// failures.
func (pc *ParticipantClient) SubmitResult(vector messages.ResultVector) error {
	return pc.withRetry(func() error {
		return pc.coordinator.SubmitResult(pc.participant, vector)
	})
}

// withRetry runs the given operation with capped exponential backoff.
// Coordinator precondition violations are not retried: the state they report
// does not change by waiting, except for ErrRoundNotActive which can resolve
// once the admin opens the round.
func (pc *ParticipantClient) withRetry(op func() error) error {
	expRetry, err := retry.NewExponential(retryInitialWait)
	if err != nil {
		return fmt.Errorf("could not create retry mechanism: %w", err)
	}
	backoff := retry.WithMaxRetries(retryMax, expRetry)
	return retry.Do(context.Background(), backoff, func(ctx context.Context) error {
		err := op()
		if err == nil {
			return nil
		}
		if retryable(err) {
			pc.log.Warn().Err(err).Msg("DKG write failed, retrying")
			return retry.RetryableError(err)
		}
		return err
	})
}

func retryable(err error) bool {
	permanent := []error{ErrInvalidCapability, ErrUnknownParticipant, ErrAlreadySubmitted}
	for _, p := range permanent {
		if errors.Is(err, p) {
			return false
		}
	}
	return true
}
