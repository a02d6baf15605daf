package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"sfneuman.com/gorl/agent"
	"sfneuman.com/gorl/agent/deepq"
	"sfneuman.com/gorl/environment/classiccontrol/cartpole"
	"sfneuman.com/gorl/experiment"
	"sfneuman.com/gorl/experiment/tracker"
	"sfneuman.com/gorl/initwfn"
	"sfneuman.com/gorl/network"
	"sfneuman.com/gorl/solver"
)

func main() {
	var seed uint64 = 192382
	numSteps := 50_000

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger()

	// Create the environment
	env, _, err := cartpole.New(cartpole.NewStarter(seed), 500)
	if err != nil {
		logger.Fatal().Err(err).Msg("could not create environment")
	}

	// Weight initializer and solver for the value network
	init, err := initwfn.NewGlorotU(1.0)
	if err != nil {
		logger.Fatal().Err(err).Msg("could not create weight initializer")
	}
	adam, err := solver.NewDefaultAdam(0.001, 32)
	if err != nil {
		logger.Fatal().Err(err).Msg("could not create solver")
	}

	// Create the learning algorithm
	config := deepq.Config{
		QLearningConfig: agent.QLearningConfig{
			OffPolicyConfig: agent.OffPolicyConfig{
				NumSteps:             numSteps,
				BufferSize:           10_000,
				BatchSize:            32,
				NStep:                1,
				Gamma:                0.99,
				UsePER:               true,
				Alpha:                0.6,
				BetaInit:             0.4,
				StartSteps:           1_000,
				UpdateInterval:       4,
				UpdateIntervalTarget: 200,
			},
			Eps:     0.1,
			EpsEval: 0.0,
		},
		PolicyLayers: []int{64, 64},
		Biases:       []bool{true, true},
		Activations:  []*network.Activation{network.ReLU(), network.ReLU()},
		InitWFn:      init,
		Solver:       adam,
	}

	q, err := deepq.New(env, config, seed)
	if err != nil {
		logger.Fatal().Err(err).Msg("could not create agent")
	}

	// Train, tracking the episodic return
	returns := tracker.NewReturn("./data.bin")
	trainer := experiment.New(env, q, numSteps, 1_000, logger, returns)
	if err := trainer.Run(); err != nil {
		logger.Fatal().Err(err).Msg("training failed")
	}
	trainer.Save()

	data := tracker.LoadData("./data.bin")
	if len(data) > 10 {
		data = data[len(data)-10:]
	}
	fmt.Println(data)
}
