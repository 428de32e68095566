// Command clean normalizes tweets from the command line.
//
//	clean -text "RT @user1 I HATE you!!!"
//	clean -file tweets.txt -parallel > cleaned.txt
//	clean -csv tweets.csv -column tweet -out cleaned.csv
//	clean -text "you idiot" -predict -model-dir ./models
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/baditaflorin/go_cyberbullying/internal/adapters/logger"
	"github.com/baditaflorin/go_cyberbullying/pkg/cleaner"
	"github.com/baditaflorin/go_cyberbullying/pkg/predictor"
)

// Command-line flags.
type flags struct {
	text   string
	file   string
	csv    string
	column string
	out    string

	noPunctuation bool
	noLower       bool
	noNumbers     bool
	noStopwords   bool
	noLemmatize   bool
	language      string
	tokenLemmas   bool

	parallel  bool
	workers   int
	batchSize int

	predict  bool
	modelDir string

	outputFormat string
	verbose      bool
}

func parseFlags(fs *flag.FlagSet, args []string) (*flags, error) {
	f := &flags{}

	// Inputs
	fs.StringVar(&f.text, "text", "", "Text to clean")
	fs.StringVar(&f.file, "file", "", "Clean a file line by line (- for stdin)")
	fs.StringVar(&f.csv, "csv", "", "Clean a column of a CSV file with a header row")
	fs.StringVar(&f.column, "column", cleaner.TextColumn, "CSV column to clean")
	fs.StringVar(&f.out, "out", "", "Output file (default stdout)")

	// Stage toggles
	fs.BoolVar(&f.noPunctuation, "no-punctuation", false, "Keep punctuation")
	fs.BoolVar(&f.noLower, "no-lower", false, "Keep the original case")
	fs.BoolVar(&f.noNumbers, "no-numbers", false, "Keep digits")
	fs.BoolVar(&f.noStopwords, "no-stopwords", false, "Keep stopwords")
	fs.BoolVar(&f.noLemmatize, "no-lemmatize", false, "Skip lemmatization")
	fs.StringVar(&f.language, "language", "english", "Stopword language")
	fs.BoolVar(&f.tokenLemmas, "token-lemmas", false, "Lemmatize whole words instead of characters")

	// Performance
	fs.BoolVar(&f.parallel, "parallel", false, "Clean file batches in parallel")
	fs.IntVar(&f.workers, "workers", 0, "Parallel workers (0 = number of CPUs)")
	fs.IntVar(&f.batchSize, "batch-size", 0, "Lines per parallel batch (0 = default)")

	// Prediction
	fs.BoolVar(&f.predict, "predict", false, "Classify -text with the installed models")
	fs.StringVar(&f.modelDir, "model-dir", "", "Model artifact directory")

	// Output
	fs.StringVar(&f.outputFormat, "output", "text", "Output format for -text: 'text' or 'json'")
	fs.BoolVar(&f.verbose, "verbose", false, "Log to stderr")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s [options]\n", fs.Name())
		fmt.Fprintf(fs.Output(), "\nOptions:\n")
		fs.PrintDefaults()
		fmt.Fprintf(fs.Output(), "\nExamples:\n")
		fmt.Fprintf(fs.Output(), "  %s -text \"RT @user1 I HATE you!!!\"\n", fs.Name())
		fmt.Fprintf(fs.Output(), "  %s -file tweets.txt -parallel\n", fs.Name())
		fmt.Fprintf(fs.Output(), "  %s -csv tweets.csv -column tweet -out cleaned.csv\n", fs.Name())
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, f.validate()
}

// validate checks that exactly one input is given and the options fit it.
func (f *flags) validate() error {
	inputs := 0
	for _, in := range []string{f.text, f.file, f.csv} {
		if in != "" {
			inputs++
		}
	}
	if inputs != 1 {
		return errors.New("exactly one of -text, -file or -csv is required")
	}
	if f.predict && f.text == "" {
		return errors.New("-predict works with -text only")
	}
	if f.outputFormat != "text" && f.outputFormat != "json" {
		return fmt.Errorf("invalid output format: %s. Must be 'text' or 'json'", f.outputFormat)
	}
	if f.workers < 0 || f.batchSize < 0 {
		return errors.New("-workers and -batch-size must not be negative")
	}
	return nil
}

func (f *flags) cleanerOptions() []cleaner.Option {
	var opts []cleaner.Option
	if f.noPunctuation {
		opts = append(opts, cleaner.WithoutPunctuationRemoval())
	}
	if f.noLower {
		opts = append(opts, cleaner.WithoutLowercase())
	}
	if f.noNumbers {
		opts = append(opts, cleaner.WithoutNumberRemoval())
	}
	if f.noStopwords {
		opts = append(opts, cleaner.WithoutStopwordRemoval())
	}
	if f.noLemmatize {
		opts = append(opts, cleaner.WithoutLemmatization())
	}
	if f.tokenLemmas {
		opts = append(opts, cleaner.WithTokenWiseLemmatization())
	}
	return append(opts, cleaner.WithLanguage(f.language))
}

func main() {
	fs := flag.NewFlagSet("clean", flag.ContinueOnError)
	f, err := parseFlags(fs, os.Args[1:])
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			fs.Usage()
		}
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, f, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run executes the command described by f.
func run(ctx context.Context, f *flags, stdin io.Reader, stdout io.Writer) error {
	opts := f.cleanerOptions()
	predictorOpts := []predictor.Option{predictor.WithModelDir(f.modelDir)}
	if f.verbose {
		lg, err := logger.Open(logger.Settings{Output: "stderr"})
		if err != nil {
			return err
		}
		defer lg.Close()
		opts = append(opts, cleaner.WithLogger(lg))
		predictorOpts = append(predictorOpts, predictor.WithLogger(lg))
	} else {
		opts = append(opts, cleaner.WithQuietLogger())
		predictorOpts = append(predictorOpts, predictor.WithQuietLogger())
	}

	c, err := cleaner.New(opts...)
	if err != nil {
		return err
	}

	out := stdout
	if f.out != "" {
		file, err := os.Create(f.out)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer file.Close()
		out = file
	}

	switch {
	case f.text != "":
		return cleanText(ctx, c, f, predictorOpts, out)
	case f.file != "":
		return cleanFile(ctx, c, f, stdin, out)
	default:
		return cleanCSV(c, f, out)
	}
}

type textOutput struct {
	Original   string            `json:"original"`
	Cleaned    string            `json:"cleaned"`
	Prediction *predictor.Result `json:"prediction,omitempty"`
}

func cleanText(ctx context.Context, c *cleaner.Cleaner, f *flags, predictorOpts []predictor.Option, out io.Writer) error {
	result := textOutput{Original: f.text, Cleaned: c.Clean(f.text)}

	if f.predict {
		p, err := predictor.New(predictorOpts...)
		if err != nil {
			return err
		}
		result.Prediction, err = p.Predict(ctx, f.text)
		if err != nil {
			return fmt.Errorf("predict: %w", err)
		}
	}

	if f.outputFormat == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	if _, err := fmt.Fprintln(out, result.Cleaned); err != nil {
		return err
	}
	if result.Prediction != nil {
		typ := result.Prediction.TypeOrEmpty()
		if typ == "" {
			typ = "-"
		}
		_, err := fmt.Fprintf(out, "prediction: %d type: %s\n", result.Prediction.Prediction, typ)
		return err
	}
	return nil
}

func cleanFile(ctx context.Context, c *cleaner.Cleaner, f *flags, stdin io.Reader, out io.Writer) error {
	in := stdin
	if f.file != "-" {
		file, err := os.Open(f.file)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer file.Close()
		in = file
	}

	start := time.Now()
	stats, err := c.CleanLines(ctx, in, out, cleaner.LineConfig{
		Parallel:  f.parallel,
		Workers:   f.workers,
		BatchSize: f.batchSize,
	})
	if err != nil {
		return err
	}
	if f.verbose {
		fmt.Fprintf(os.Stderr, "Cleaned %d lines (%d placeholders, %d bytes) in %s\n",
			stats.Lines, stats.Placeholders, stats.BytesRead, time.Since(start).Round(time.Millisecond))
	}
	return nil
}

// cleanCSV cleans one column of a CSV file and sanitizes every column.
func cleanCSV(c *cleaner.Cleaner, f *flags, out io.Writer) error {
	file, err := os.Open(f.csv)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer file.Close()

	header, table, err := readCSV(file, f.column)
	if err != nil {
		return err
	}

	cleaned, err := c.CleanTable(table)
	if err != nil {
		return err
	}
	return writeCSV(out, header, f.column, cleaned)
}

// readCSV loads a CSV file into a table. The column to clean is stored
// under the text column name.
func readCSV(r io.Reader, column string) ([]string, *cleaner.Table, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, errors.New("csv has no header row")
	}

	header := records[0]
	rows := records[1:]
	found := false
	for _, name := range header {
		if name == column {
			found = true
		} else if name == cleaner.TextColumn {
			return nil, nil, fmt.Errorf("csv column %q clashes with the cleaned column", name)
		}
	}
	if !found {
		return nil, nil, fmt.Errorf("csv has no column %q", column)
	}

	table := cleaner.NewTable()
	for i, name := range header {
		values := make([]any, len(rows))
		for j, row := range rows {
			values[j] = row[i]
		}
		if name == column {
			name = cleaner.TextColumn
		}
		if err := table.AddColumn(name, values); err != nil {
			return nil, nil, err
		}
	}
	return header, table, nil
}

func writeCSV(w io.Writer, header []string, column string, table *cleaner.Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return err
	}

	columns := make([][]any, len(header))
	for i, name := range header {
		if name == column {
			name = cleaner.TextColumn
		}
		columns[i], _ = table.Column(name)
	}

	record := make([]string, len(header))
	for row := 0; row < table.Len(); row++ {
		for i, col := range columns {
			record[i] = fmt.Sprint(col[row])
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
