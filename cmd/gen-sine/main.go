package main

import (
	"flag"
	"log"
	"math"
	"os"

	"github.com/cwbudde/pcmwav"
	"github.com/go-audio/audio"
)

func main() {
	err := run(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	flagSet := flag.NewFlagSet("gen-sine", flag.ContinueOnError)

	output := flagSet.String("output", "output.wav", "filename to write to")
	frequency := flagSet.Float64("frequency", 440, "frequency in hertz to generate")
	length := flagSet.Float64("length", 5, "length in seconds of output file")
	sampleRate := flagSet.Int("rate", 44100, "sample rate in hertz")
	stereo := flagSet.Bool("stereo", false, "write the tone on both channels")

	err := flagSet.Parse(args)
	if err != nil {
		return err
	}

	log.Printf("generating a %f sec sine wav at %f hz", *length, *frequency)

	numChans := 1
	if *stereo {
		numChans = 2
	}

	numFrames := int(float64(*sampleRate) * *length)
	buf := &audio.Float32Buffer{
		Data:   make([]float32, numFrames*numChans),
		Format: &audio.Format{NumChannels: numChans, SampleRate: *sampleRate},
	}

	for i := 0; i < numFrames; i++ {
		v := float32(math.Sin(float64(i) / float64(*sampleRate) * *frequency * 2 * math.Pi))
		for c := 0; c < numChans; c++ {
			buf.Data[i*numChans+c] = v
		}
	}

	return pcmwav.WriteFile(*output, buf)
}
