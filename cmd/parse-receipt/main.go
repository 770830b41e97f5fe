// Command parse-receipt runs the receipt strategy cascade over OCR text read
// from a file or stdin and prints the result as JSON.
//
//	parse-receipt -file receipt.txt
//	tesseract photo.jpg - | parse-receipt -strategy generic
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/core/receipt"
	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/shared/logger"
)

type fieldReport struct {
	Store   *receipt.StoreIdentity `json:"store"`
	Invoice *string                `json:"invoice_number"`
	Date    *string                `json:"date"`
	Time    *string                `json:"time"`
	Waiter  *string                `json:"waiter"`
	Table   *string                `json:"table"`
	Total   *float64               `json:"total"`
	Items   []receipt.LineItem     `json:"items"`
}

func main() {
	file := flag.String("file", "", "OCR text file (default: stdin)")
	strategy := flag.String("strategy", "", "run a single strategy: standard, alternative or generic")
	fields := flag.Bool("fields", false, "print every field extractor result instead of parsing")
	raw := flag.Bool("raw", false, "include the raw text in the output")
	level := flag.String("log-level", "warn", "log level")
	flag.Parse()

	log := logger.Init("development", *level)

	text, err := readInput(*file)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to read input")
	}

	var out interface{}
	exit := 0

	switch {
	case *fields:
		out = extractFields(text)

	case *strategy != "":
		s, ok := receipt.StrategyByName(*strategy)
		if !ok {
			log.Fatal().Str("strategy", *strategy).Msg("❌ Unknown strategy")
		}
		candidate, err := s.Extract(text)
		if err != nil {
			log.Fatal().Err(err).Msg("❌ Strategy failed")
		}
		if !*raw {
			candidate.RawText = ""
		}
		problems := receipt.Problems(candidate)
		if len(problems) > 0 {
			exit = 1
		}
		out = map[string]interface{}{"receipt": candidate, "valid": len(problems) == 0, "problems": problems}

	default:
		parsed, err := receipt.NewParser(receipt.WithLogger(log)).Parse(context.Background(), text)
		var nse *receipt.NoStrategySucceededError
		switch {
		case errors.As(err, &nse):
			attempts := make([]string, 0, len(nse.Attempts))
			for _, a := range nse.Attempts {
				attempts = append(attempts, a.String())
			}
			out = map[string]interface{}{"error": receipt.ErrNoStrategySucceeded.Error(), "attempts": attempts}
			exit = 1
		case err != nil:
			log.Fatal().Err(err).Msg("❌ Parse failed")
		default:
			if !*raw {
				parsed.RawText = ""
			}
			out = parsed
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to write output")
	}
	os.Exit(exit)
}

func readInput(path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

func extractFields(text string) fieldReport {
	return fieldReport{
		Store:   receipt.ExtractStoreIdentity(text).Ptr(),
		Invoice: receipt.ExtractInvoiceNumber(text).Ptr(),
		Date:    receipt.ExtractDate(text).Ptr(),
		Time:    receipt.ExtractTime(text).Ptr(),
		Waiter:  receipt.ExtractWaiter(text).Ptr(),
		Table:   receipt.ExtractTable(text).Ptr(),
		Total:   receipt.ExtractTotal(text).Ptr(),
		Items:   receipt.ExtractItems(text),
	}
}
