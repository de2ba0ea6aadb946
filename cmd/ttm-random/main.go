// Command ttm-random loads a sparse tensor, multiplies it along a chosen mode with
// a random dense matrix, and benchmarks the multiplication: one warm-up run, then
// at least 5 rounds or 3 seconds of wall time, whichever takes longer.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/sptensor/sptensor"
)

const (
	benchMinRounds = 5
	benchMinTime   = 3 * time.Second
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	input := flag.String("input", "", "input tensor file (required)")
	mode := flag.Int("mode", 0, "common axis of the tensor, indexing from 0")
	rank := flag.Int("rank", 16, "number of columns in the random matrix")
	algo := flag.String("algo", "coo", "kernel to run: coo or semi-coo")
	multiThread := flag.Bool("multi-thread", false, "use the data-parallel kernel")
	tracePath := flag.String("trace", "", "write a CSV trace of kernel spans to this file ('-' for stdout)")
	flag.Parse()

	if *input == "" {
		flag.Usage()
		os.Exit(1)
	}
	if *algo != "coo" && *algo != "semi-coo" {
		log.Error().Str("algo", *algo).Msg("unknown algorithm")
		os.Exit(1)
	}

	in, err := os.Open(*input)
	if err != nil {
		log.Error().Err(err).Str("path", *input).Msg("cannot open input")
		os.Exit(1)
	}
	tensor, err := sptensor.ReadFromText(in)
	in.Close()
	if err != nil {
		log.Error().Err(err).Str("path", *input).Msg("cannot read tensor")
		os.Exit(1)
	}
	fmt.Printf("Input tensor shape:  %s\n", sptensor.AxesToString(tensor.Shape()))

	if *mode < 0 || *mode >= tensor.NDim() {
		log.Error().Int("mode", *mode).Int("ndim", tensor.NDim()).Msg("mode out of range")
		os.Exit(1)
	}
	commonAxis := tensor.Shape()[*mode]
	freeAxis := sptensor.NewAxis(0, *rank)
	matrix, err := sptensor.NewCreateRandomDenseMatrix(commonAxis, freeAxis, 0.0, 1.0).Execute()
	if err != nil {
		log.Error().Err(err).Msg("cannot generate random matrix")
		os.Exit(1)
	}
	fmt.Printf("Random matrix shape: %s\n", sptensor.AxesToString(matrix.Shape()))

	// Fiber grouping needs the common axis as the least significant sort key.
	sortTimer := sptensor.StartDebugTimer(true)
	if err := sptensor.SortWithLastAxis(tensor, commonAxis).Execute(); err != nil {
		log.Error().Err(err).Msg("cannot sort tensor")
		os.Exit(1)
	}
	sortTimer.Print("sort")

	var tracer *sptensor.Tracer
	if *tracePath != "" {
		tracer, err = sptensor.NewTracerToFile(*tracePath)
		if err != nil {
			log.Error().Err(err).Str("path", *tracePath).Msg("cannot create tracer")
			os.Exit(1)
		}
		defer tracer.Close()
	}

	run := func() (*sptensor.COOTensor, error) {
		if *algo == "semi-coo" {
			op := sptensor.NewSemiCOOTensorMulDenseMatrix(tensor, matrix).Trace(tracer)
			op.MultiThread = *multiThread
			return op.Execute()
		}
		op := sptensor.NewCOOTensorMulDenseMatrix(tensor, matrix).Trace(tracer)
		op.MultiThread = *multiThread
		return op.Execute()
	}

	// Warm-up, and the only run whose output we keep.
	output, err := run()
	if err != nil {
		log.Error().Err(err).Msg("multiplication failed")
		os.Exit(1)
	}
	fmt.Printf("Output tensor shape: %s\n", sptensor.AxesToString(output.Shape()))

	start := time.Now()
	rounds := 0
	for rounds < benchMinRounds || time.Since(start) < benchMinTime {
		if _, err := run(); err != nil {
			log.Error().Err(err).Msg("multiplication failed")
			os.Exit(1)
		}
		rounds++
	}
	elapsed := time.Since(start)

	perRound := elapsed / time.Duration(rounds)
	fmt.Printf("Rounds: %d\n", rounds)
	fmt.Printf("Elapsed time: %d.%09d seconds per round\n",
		int64(perRound/time.Second), int64(perRound%time.Second))
}
