package cmd

import (
	"github.com/spf13/cobra"

	"github.com/onflow/flow-epochs/model/epoch"
	"github.com/onflow/flow-epochs/module/epochs"
	bstorage "github.com/onflow/flow-epochs/storage/badger"
)

var (
	flagFirstView        uint64
	flagEpochViews       uint64
	flagAuctionViews     uint64
	flagDKGPhaseViews    uint64
	flagClusters         uint16
	flagRewardPercentage float64
)

// bootstrapCmd writes the initial configuration and the epoch zero metadata
// into a fresh database.
var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Initialize the epoch state with epoch zero and its configuration",
	Run:   bootstrapRun,
}

func init() {
	rootCmd.AddCommand(bootstrapCmd)

	defaults := epoch.DefaultConfig()
	bootstrapCmd.Flags().Uint64Var(&flagFirstView, "first-view", 0,
		"first view of epoch zero")
	bootstrapCmd.Flags().Uint64Var(&flagEpochViews, "epoch-views", defaults.NumViewsInEpoch,
		"total number of views per epoch")
	bootstrapCmd.Flags().Uint64Var(&flagAuctionViews, "auction-views", defaults.NumViewsInStakingAuction,
		"number of views of the staking auction phase")
	bootstrapCmd.Flags().Uint64Var(&flagDKGPhaseViews, "dkg-phase-views", defaults.NumViewsInDKGPhase,
		"number of views of each DKG phase")
	bootstrapCmd.Flags().Uint16Var(&flagClusters, "collector-clusters", defaults.NumCollectorClusters,
		"number of collector clusters")
	bootstrapCmd.Flags().Float64Var(&flagRewardPercentage, "supply-increase", defaults.FLOWSupplyIncreasePercentage,
		"fraction by which the token supply increases per epoch")
}

func bootstrapRun(cmd *cobra.Command, args []string) {
	db, err := openDB()
	if err != nil {
		log.Fatal().Err(err).Msg("could not open database")
	}
	defer db.Close()

	conf := epoch.Config{
		NumViewsInEpoch:              flagEpochViews,
		NumViewsInStakingAuction:     flagAuctionViews,
		NumViewsInDKGPhase:           flagDKGPhaseViews,
		NumCollectorClusters:         flagClusters,
		FLOWSupplyIncreasePercentage: flagRewardPercentage,
	}
	err = epochs.Bootstrap(bstorage.NewEpochStates(db), bstorage.NewEpochConfigs(db), flagFirstView, conf)
	if err != nil {
		log.Fatal().Err(err).Msg("could not bootstrap epoch state")
	}

	log.Info().
		Uint64("first_view", flagFirstView).
		Interface("config", conf).
		Msg("epoch state bootstrapped")
}
