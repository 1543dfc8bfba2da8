package cmd

import (
	crand "crypto/rand"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/onflow/flow-epochs/model/epoch"
	"github.com/onflow/flow-epochs/model/flow"
	"github.com/onflow/flow-epochs/model/messages"
	"github.com/onflow/flow-epochs/module/dkg"
	"github.com/onflow/flow-epochs/module/epochs"
	"github.com/onflow/flow-epochs/module/metrics"
	"github.com/onflow/flow-epochs/state/protocol/events"
	bstorage "github.com/onflow/flow-epochs/storage/badger"
)

var (
	flagParticipants int
	flagEpochs       int
)

// simulateCmd runs the full epoch and DKG machinery in-process: it drives
// the view counter across the requested number of epochs while simulated
// consensus nodes run a happy-path DKG exchange in every setup phase.
var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Drive the epoch state machine through complete epochs with a simulated DKG committee",
	Run:   simulateRun,
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().IntVar(&flagParticipants, "participants", 5,
		"number of simulated consensus nodes")
	simulateCmd.Flags().IntVar(&flagEpochs, "epochs", 2,
		"number of complete epochs to simulate")
}

func simulateRun(cmd *cobra.Command, args []string) {
	db, err := openDB()
	if err != nil {
		log.Fatal().Err(err).Msg("could not open database")
	}
	defer db.Close()

	states := bstorage.NewEpochStates(db)
	configs := bstorage.NewEpochConfigs(db)
	dkgState := bstorage.NewDKGState(db)

	coordinator, dkgAdmin, err := dkg.NewCoordinator(log, metrics.NewDKGCollector(prometheus.DefaultRegisterer), dkgState)
	if err != nil {
		log.Fatal().Err(err).Msg("could not create DKG coordinator")
	}

	nodeIDs := randomIdentifiers(flagParticipants)
	staking := &simStakingClient{nodeIDs: nodeIDs}

	distributor := events.NewDistributor()
	controller, _, err := epochs.NewController(
		log,
		metrics.NewEpochCollector(prometheus.DefaultRegisterer),
		states,
		configs,
		dkg.NewLifecycleClient(coordinator, dkgAdmin),
		&simQCClient{},
		staking,
		distributor,
	)
	if errors.Is(err, epochs.ErrNotBootstrapped) {
		log.Fatal().Msg("epoch state not bootstrapped, run the bootstrap command first")
	}
	if err != nil {
		log.Fatal().Err(err).Msg("could not create epoch controller")
	}

	// one handle per simulated node, claimed up front
	clients := make([]*dkg.ParticipantClient, 0, flagParticipants)
	for _, nodeID := range nodeIDs {
		participant, err := coordinator.ClaimParticipant(dkgAdmin, nodeID)
		if err != nil {
			log.Fatal().Err(err).Msg("could not claim participant handle")
		}
		clients = append(clients, dkg.NewParticipantClient(log, coordinator, participant))
	}

	startCounter := controller.CurrentEpochCounter()
	meta, err := states.ByCounter(startCounter)
	if err != nil {
		log.Fatal().Err(err).Msg("could not read current epoch metadata")
	}

	exchanged := make(map[uint64]bool)
	for view := meta.FirstView; controller.CurrentEpochCounter() < startCounter+uint64(flagEpochs); view++ {
		err = controller.Advance(view)
		if err != nil {
			log.Fatal().Err(err).Uint64("view", view).Msg("could not advance epoch state")
		}

		counter := controller.CurrentEpochCounter()
		if controller.CurrentPhase() == flow.EpochPhaseSetup && !exchanged[counter] {
			runDKGExchange(counter, clients)
			exchanged[counter] = true
		}
	}

	log.Info().
		Uint64("final_epoch", controller.CurrentEpochCounter()).
		Msg("simulation finished")
}

// runDKGExchange plays the happy path of a DKG round: every node posts one
// whiteboard message per protocol phase, reads the board, and all nodes
// submit the same result vector.
func runDKGExchange(counter uint64, clients []*dkg.ParticipantClient) {
	for phase := 1; phase <= epoch.DKGPhases; phase++ {
		for i, client := range clients {
			err := client.Broadcast(fmt.Sprintf("epoch-%d-phase-%d-node-%d", counter, phase, i))
			if err != nil {
				log.Fatal().Err(err).Msg("could not post whiteboard message")
			}
		}
		for _, client := range clients {
			_, err := client.Poll()
			if err != nil {
				log.Fatal().Err(err).Msg("could not read whiteboard")
			}
		}
	}

	vector := make(messages.ResultVector, 0, len(clients))
	for i := range clients {
		vector = append(vector, fmt.Sprintf("epoch-%d-pubkey-share-%d", counter, i))
	}
	for _, client := range clients {
		err := client.SubmitResult(vector)
		if err != nil {
			log.Fatal().Err(err).Msg("could not submit result")
		}
	}
}

// randomIdentifiers generates fresh node identities for one simulation run,
// so that handle claims never collide with a previous run on the same
// database.
func randomIdentifiers(n int) flow.IdentifierList {
	list := make(flow.IdentifierList, n)
	for i := range list {
		_, _ = crand.Read(list[i][:])
	}
	return list
}

// simStakingClient serves a fixed consensus committee and logs the staking
// side effects.
type simStakingClient struct {
	nodeIDs flow.IdentifierList
}

func (sc *simStakingClient) ConsensusNodeIDs() (flow.IdentifierList, error) {
	return sc.nodeIDs.Copy(), nil
}

func (sc *simStakingClient) StartStakingAuction(counter uint64) error {
	log.Info().Uint64("epoch", counter).Msg("staking auction started")
	return nil
}

func (sc *simStakingClient) PayRewards(counter uint64) error {
	log.Info().Uint64("epoch", counter).Msg("epoch rewards paid")
	return nil
}

// simQCClient logs the QC voting window.
type simQCClient struct{}

func (qc *simQCClient) StartVoting(clusters uint16) error {
	log.Info().Uint16("clusters", clusters).Msg("QC voting started")
	return nil
}

func (qc *simQCClient) StopVoting() error {
	log.Info().Msg("QC voting stopped")
	return nil
}
