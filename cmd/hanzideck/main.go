// Command hanzideck converts a text file containing a Python-style literal
// list of (hanzi, pinyin, english, german, sentence) tuples into an Anki
// flashcard package.
//
// Usage:
//
//	hanzideck [flags] [input_file] [output_file]
//
// input_file defaults to input.txt, output_file to deck.apkg.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/mbruckner/hanzideck/pkg/anki"
	"github.com/mbruckner/hanzideck/pkg/deck"
	"github.com/mbruckner/hanzideck/pkg/vocab"
)

const (
	defaultInputFile  = "input.txt"
	defaultOutputFile = "deck.apkg"
)

func main() {
	log.SetFlags(0)

	deckName := flag.String("deck-name", deck.DefaultName, "name of the generated deck")
	deckID := flag.Int64("deck-id", deck.DefaultDeckID,
		"deck identifier; keep stable across runs that update the same deck")
	modelID := flag.Int64("model-id", deck.DefaultModelID,
		"note type identifier; keep stable across runs that update the same deck")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [input_file] [output_file]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	inputFile := defaultInputFile
	outputFile := defaultOutputFile
	args := flag.Args()
	if len(args) > 2 {
		flag.Usage()
		os.Exit(1)
	}
	if len(args) >= 1 {
		inputFile = args[0]
	}
	if len(args) == 2 {
		outputFile = args[1]
	}

	records, err := vocab.Load(inputFile)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	d, err := deck.Build(records, *deckName, *deckID, *modelID)
	if err != nil {
		log.Fatalf("Error building deck: %v", err)
	}

	if err := anki.NewPackage(d).WriteToFile(outputFile); err != nil {
		log.Fatalf("Error writing Anki deck: %v", err)
	}
	fmt.Printf("Anki deck successfully created: %s\n", outputFile)
}
