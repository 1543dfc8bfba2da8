package cmd

import (
	"errors"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/onflow/flow-epochs/storage"
	bstorage "github.com/onflow/flow-epochs/storage/badger"
)

// infoCmd prints the state of an epoch and of the current DKG round.
var infoCmd = &cobra.Command{
	Use:   "info [counter]",
	Short: "Print epoch metadata, configuration and DKG round state",
	Args:  cobra.MaximumNArgs(1),
	Run:   infoRun,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func infoRun(cmd *cobra.Command, args []string) {
	db, err := openDB()
	if err != nil {
		log.Fatal().Err(err).Msg("could not open database")
	}
	defer db.Close()

	states := bstorage.NewEpochStates(db)
	configs := bstorage.NewEpochConfigs(db)
	dkgState := bstorage.NewDKGState(db)

	counter, err := states.CurrentCounter()
	if errors.Is(err, storage.ErrNotFound) {
		log.Fatal().Msg("epoch state not bootstrapped")
	}
	if err != nil {
		log.Fatal().Err(err).Msg("could not read current epoch counter")
	}

	// an explicit argument selects a historical epoch
	if len(args) == 1 {
		counter, err = strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			log.Fatal().Err(err).Msgf("invalid epoch counter %q", args[0])
		}
	}

	meta, err := states.ByCounter(counter)
	if errors.Is(err, storage.ErrNotFound) {
		log.Fatal().Msgf("no metadata for epoch %d", counter)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("could not read epoch metadata")
	}
	log.Info().
		Uint64("counter", meta.Counter).
		Str("phase", meta.Phase.String()).
		Uint64("first_view", meta.FirstView).
		Uint64("staking_auction_final_view", meta.StakingAuctionFinalView).
		Uint64("setup_final_view", meta.SetupFinalView()).
		Uint64("final_view", meta.FinalView).
		Bool("dkg_completed", meta.DKGCompleted).
		Msg("epoch metadata")

	conf, err := configs.Retrieve()
	if err != nil {
		log.Fatal().Err(err).Msg("could not read epoch configuration")
	}
	log.Info().Interface("config", conf).Msg("epoch configuration")

	round, err := dkgState.GetRound()
	if errors.Is(err, storage.ErrNotFound) {
		log.Info().Msg("no DKG round started yet")
		return
	}
	if err != nil {
		log.Fatal().Err(err).Msg("could not read DKG round")
	}
	vector, complete := round.CompletedResult()
	event := log.Info().
		Uint64("round", round.Counter).
		Bool("active", round.Active).
		Int("participants", len(round.Participants)).
		Int("whiteboard_messages", len(round.Whiteboard)).
		Int("submissions", len(round.Submissions)).
		Bool("complete", complete)
	if complete {
		event = event.Strs("result_vector", vector)
	}
	event.Msg("DKG round")
}
