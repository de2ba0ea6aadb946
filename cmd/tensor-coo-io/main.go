// Command tensor-coo-io round-trips a sparse tensor through the text format: it
// reads the input file and writes the tensor back out, to a file or to standard
// output.
package main

import (
	"flag"
	"os"

	"github.com/rs/zerolog"
	"github.com/sptensor/sptensor"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	input := flag.String("input", "", "input tensor file (required)")
	output := flag.String("output", "", "output tensor file (default: standard output)")
	flag.Parse()

	if *input == "" {
		flag.Usage()
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
	log.Info().
		Str("shape", sptensor.AxesToString(tensor.Shape())).
		Int("nnz", tensor.NNZ()).
		Msg("tensor read")

	out := os.Stdout
	if *output != "" {
		out, err = os.Create(*output)
		if err != nil {
			log.Error().Err(err).Str("path", *output).Msg("cannot create output")
			os.Exit(1)
		}
		defer out.Close()
	}
	if err := tensor.WriteToText(out); err != nil {
		log.Error().Err(err).Msg("cannot write tensor")
		os.Exit(1)
	}
}
