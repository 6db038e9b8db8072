package main

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	service "github.com/Sajal133/truerate-api/internal/app"
)

// Input formats accepted by the batch command.
const (
	formatCSV   = "csv"
	formatJSON  = "json"
	formatJSONL = "jsonl"
)

var (
	errUnknownFormat = errors.New("unknown input format")
	errMissingColumn = errors.New("missing column")
)

var (
	batchFormat      string
	batchSummaryOnly bool
)

var batchCmd = &cobra.Command{
	Use:   "batch FILE",
	Short: "Analyze a file of reviews and print the batch result as JSON",
	Long: `Analyze a file of reviews. FILE may be CSV with "text" and "stars" columns,
a JSON array of {"text","stars"} objects, or JSONL with one object per line.
The format follows the file extension unless --format is given. Use "-" to
read stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().StringVarP(&batchFormat, "format", "f", "", "Input format (csv, json, jsonl)")
	batchCmd.Flags().BoolVar(&batchSummaryOnly, "summary", false, "Print only the summary")
	batchCmd.Flags().BoolVar(&useLearned, "learned", false, "Load learned weights from the configured store")
}

func runBatch(cmd *cobra.Command, args []string) error {
	path := args[0]
	format := batchFormat
	if format == "" {
		format = formatFromPath(path)
	}

	var in io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	reviews, err := readReviews(in, format)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	svc, err := startCLIService(cmd)
	if err != nil {
		return err
	}
	defer svc.Stop()

	res, err := svc.AnalyzeBatch(cmd.Context(), reviews)
	if err != nil {
		return err
	}
	if batchSummaryOnly {
		return printJSON(cmd.OutOrStdout(), res.Summary)
	}
	return printJSON(cmd.OutOrStdout(), res)
}

func formatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return formatJSON
	case ".jsonl", ".ndjson":
		return formatJSONL
	default:
		return formatCSV
	}
}

// readReviews parses reviews in the given format and checks star ranges.
func readReviews(r io.Reader, format string) ([]service.Review, error) {
	var (
		reviews []service.Review
		err     error
	)
	switch strings.ToLower(format) {
	case formatCSV:
		reviews, err = readCSV(r)
	case formatJSON:
		err = json.NewDecoder(r).Decode(&reviews)
	case formatJSONL:
		reviews, err = readJSONL(r)
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownFormat, format)
	}
	if err != nil {
		return nil, err
	}
	for i, rv := range reviews {
		if rv.Stars < 1 || rv.Stars > 5 {
			return nil, fmt.Errorf("review %d: stars must be between 1 and 5, got %d", i+1, rv.Stars)
		}
	}
	return reviews, nil
}

func readCSV(r io.Reader) ([]service.Review, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	textCol, starsCol := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case "text":
			textCol = i
		case "stars":
			starsCol = i
		}
	}
	if textCol < 0 || starsCol < 0 {
		return nil, fmt.Errorf("%w: need text and stars, got %v", errMissingColumn, header)
	}

	var out []service.Review
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		if textCol >= len(rec) || starsCol >= len(rec) {
			return nil, fmt.Errorf("line %d: %w", line, errMissingColumn)
		}
		stars, err := strconv.Atoi(strings.TrimSpace(rec[starsCol]))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid stars %q", line, rec[starsCol])
		}
		out = append(out, service.Review{Text: rec[textCol], Stars: stars})
	}
}

func readJSONL(r io.Reader) ([]service.Review, error) {
	var out []service.Review
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4<<20)
	for line := 1; sc.Scan(); line++ {
		raw := strings.TrimSpace(sc.Text())
		if raw == "" {
			continue
		}
		var rv service.Review
		if err := json.Unmarshal([]byte(raw), &rv); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, rv)
	}
	return out, sc.Err()
}
