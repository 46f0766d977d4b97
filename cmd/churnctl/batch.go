package main

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/streamwise/churn/internal/application/dto"
)

// batchResult is one output line of the batch command.
type batchResult struct {
	Prediction *dto.PredictionResponse `json:"prediction,omitempty"`
	Error      string                  `json:"error,omitempty"`
	Record     int                     `json:"record"`
}

func newBatchCmd(opts *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "batch [file]",
		Short: "Score profiles from JSON lines or CSV",
		Long: `Score every record of file (or stdin when file is "-" or omitted).
Records are JSON objects, one per line, or CSV with a header row of
profile field names. Missing fields take the form defaults. Results are
written as JSON lines in input order.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := io.Reader(cmd.InOrStdin())
			name := "-"
			if len(args) == 1 && args[0] != "-" {
				name = args[0]
				f, err := os.Open(name)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			if format == "" {
				format = formatFromName(name)
			}

			ctx := cmd.Context()
			rt, err := opts.open(ctx, opts.logger(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			defer rt.Close()

			return runBatch(ctx, rt, in, cmd.OutOrStdout(), format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "Input format (jsonl, csv); inferred from the file extension")
	return cmd
}

func formatFromName(name string) string {
	if strings.EqualFold(filepath.Ext(name), ".csv") {
		return "csv"
	}
	return "jsonl"
}

func runBatch(ctx context.Context, rt *runtime, in io.Reader, out io.Writer, format string) error {
	var next func() (dto.PredictChurnRequest, error)
	switch format {
	case "jsonl":
		next = jsonLineReader(in)
	case "csv":
		r, err := csvRecordReader(in)
		if err != nil {
			return err
		}
		next = r
	default:
		return fmt.Errorf("unknown input format %q", format)
	}

	enc := json.NewEncoder(out)
	total, failed := 0, 0
	for {
		req, err := next()
		if errors.Is(err, io.EOF) {
			break
		}
		total++

		result := batchResult{Record: total}
		if err == nil {
			req.Source = "cli"
			var resp dto.PredictionResponse
			resp, err = rt.predict.Execute(ctx, req)
			if err == nil {
				result.Prediction = &resp
			}
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			failed++
			result.Error = err.Error()
		}
		if err := enc.Encode(result); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d records failed", failed, total)
	}
	return nil
}

func jsonLineReader(in io.Reader) func() (dto.PredictChurnRequest, error) {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	done := false
	return func() (dto.PredictChurnRequest, error) {
		for !done && scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			req := dto.DefaultPredictChurnRequest()
			if err := json.Unmarshal([]byte(line), &req); err != nil {
				return req, fmt.Errorf("invalid JSON record: %w", err)
			}
			return req, nil
		}
		if err := scanner.Err(); err != nil && !done {
			done = true
			return dto.PredictChurnRequest{}, err
		}
		done = true
		return dto.PredictChurnRequest{}, io.EOF
	}
}

func csvRecordReader(in io.Reader) (func() (dto.PredictChurnRequest, error), error) {
	r := csv.NewReader(in)
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return func() (dto.PredictChurnRequest, error) { return dto.PredictChurnRequest{}, io.EOF }, nil
		}
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(header[i]))
	}

	done := false
	return func() (dto.PredictChurnRequest, error) {
		if done {
			return dto.PredictChurnRequest{}, io.EOF
		}
		record, err := r.Read()
		if err != nil {
			// A malformed row is reported and skipped; any other read error ends the stream.
			var perr *csv.ParseError
			if !errors.As(err, &perr) {
				done = true
			}
			return dto.PredictChurnRequest{}, err
		}
		req := dto.DefaultPredictChurnRequest()
		for i, value := range record {
			if i >= len(header) {
				break
			}
			if err := setField(&req, header[i], strings.TrimSpace(value)); err != nil {
				return req, err
			}
		}
		return req, nil
	}, nil
}

// setField assigns one CSV cell. Unknown columns are ignored.
func setField(req *dto.PredictChurnRequest, field, value string) error {
	var err error
	switch field {
	case "subscriber_ref":
		req.SubscriberRef = value
	case "gender":
		req.Gender = value
	case "subscription_type":
		req.SubscriptionType = value
	case "region":
		req.Region = value
	case "device":
		req.Device = value
	case "payment_method":
		req.PaymentMethod = value
	case "favorite_genre":
		req.FavoriteGenre = value
	case "age":
		req.Age, err = strconv.Atoi(value)
	case "last_login_days":
		req.LastLoginDays, err = strconv.Atoi(value)
	case "number_of_profiles":
		req.NumberOfProfiles, err = strconv.Atoi(value)
	case "watch_hours":
		req.WatchHours, err = strconv.ParseFloat(value, 64)
	case "avg_watch_time_per_day":
		req.AvgWatchTimePerDay, err = strconv.ParseFloat(value, 64)
	case "monthly_fee":
		req.MonthlyFee, err = decimal.NewFromString(value)
	}
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", field, value, err)
	}
	return nil
}
