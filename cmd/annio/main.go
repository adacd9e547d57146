package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pathomics/annio/anns"
	"github.com/pathomics/annio/geojson"
	"github.com/pathomics/annio/slidescore"
	"github.com/pathomics/annio/store"
)

var (
	// Global flags
	verbose     bool
	serverURL   string
	tokenPath   string
	databaseURL string
	source      string

	// download-labels / upload-labels flags
	studyID    int
	question   string
	user       string
	outputType string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "annio",
	Short: "annio - pathology annotation interchange for SlideScore exports",
	Long: `annio converts SlideScore annotation exports (tab-separated rows with
JSON answer payloads) into a normalized geometric model and GeoJSON
feature collections, and talks to the SlideScore API to download and
upload annotation results.

Brush submissions are reconstructed into polygons with holes; session
counters account for every row (total = empty + filtered + accepted).`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// downloadCmd fetches annotation results for one study and writes them
// to an output directory.
var downloadCmd = &cobra.Command{
	Use:   "download-labels [output-dir]",
	Short: "Download annotation results for a study",
	Long: `Downloads annotation results for a study, optionally narrowed by
question and author email.

Output types:
  - raw:     one tab-separated export file, parser-ready
  - json:    the server results as one JSON array, unparsed
  - geojson: one feature collection per (author, image, label), laid
             out as <output-dir>/<author>/<imageID>/<label>.json

Example:
  annio download-labels -s 538 -q "tumor region" -o geojson ./labels`,
	Args: cobra.ExactArgs(1),
	RunE: downloadLabels,
}

// uploadCmd pushes a local results file back to the server.
var uploadCmd = &cobra.Command{
	Use:   "upload-labels [results-file]",
	Short: "Upload a tab-separated results file to a study",
	Args:  cobra.ExactArgs(1),
	RunE:  uploadLabels,
}

// parseCmd converts a local export file without touching the network.
var parseCmd = &cobra.Command{
	Use:   "parse [export-file] [output-dir]",
	Short: "Convert a local export file to GeoJSON feature collections",
	Long: `Parses a tab-separated export file and writes one GeoJSON feature
collection per (author, image, label) group under the output directory.
The session summary (row counters and warnings) goes to the log.

Example:
  annio parse ./export.txt ./labels --user ann@lab.org`,
	Args: cobra.ExactArgs(2),
	RunE: parseExport,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "https://www.slidescore.com", "SlideScore server URL")
	rootCmd.PersistentFlags().StringVarP(&tokenPath, "token", "t", "", "API token file (or set "+slidescore.TokenEnv+" env)")
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "Postgres URL; when set, parsed rows are also inserted")
	rootCmd.PersistentFlags().StringVar(&source, "source", "slidescore", "Source tag recorded on database rows")

	downloadCmd.Flags().IntVarP(&studyID, "study", "s", 0, "Study ID (required)")
	downloadCmd.Flags().StringVarP(&question, "question", "q", "", "Only this question (label)")
	downloadCmd.Flags().StringVarP(&user, "user", "u", "", "Only this author email")
	downloadCmd.Flags().StringVarP(&outputType, "output-type", "o", "geojson", "Output type: raw, json or geojson")
	_ = downloadCmd.MarkFlagRequired("study")

	uploadCmd.Flags().IntVarP(&studyID, "study", "s", 0, "Study ID (required)")
	_ = uploadCmd.MarkFlagRequired("study")

	parseCmd.Flags().StringVarP(&question, "question", "q", "", "Only this question (label)")
	parseCmd.Flags().StringVarP(&user, "user", "u", "", "Only this author email")

	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(parseCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newClient builds the API client from the global flags.
func newClient() (*slidescore.Client, error) {
	token, err := slidescore.LoadToken(tokenPath)
	if err != nil {
		return nil, err
	}
	return slidescore.NewClient(serverURL, token, logger)
}

func downloadLabels(cmd *cobra.Command, args []string) error {
	outDir := args[0]
	cl, err := newClient()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	results, err := cl.Scores(ctx, studyID, slidescore.ScoreQuery{Question: question, Email: user})
	if err != nil {
		return err
	}

	switch outputType {
	case "raw":
		return writeRaw(outDir, results)
	case "json":
		return writeJSON(outDir, results)
	case "geojson":
		res, err := anns.NewParser(anns.DefaultOptions()).Parse(slidescore.RowSource(results))
		if err != nil {
			return err
		}
		return emit(ctx, outDir, res)
	default:
		return fmt.Errorf("unknown output type %q (want raw, json or geojson)", outputType)
	}
}

func uploadLabels(cmd *cobra.Command, args []string) error {
	cl, err := newClient()
	if err != nil {
		return err
	}

	results, err := readResults(args[0])
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return fmt.Errorf("no rows in %s", args[0])
	}

	return cl.UploadResults(cmd.Context(), studyID, results)
}

func parseExport(cmd *cobra.Command, args []string) error {
	exportFile, outDir := args[0], args[1]

	f, err := os.Open(exportFile)
	if err != nil {
		return fmt.Errorf("opening export file: %w", err)
	}
	defer f.Close()

	opts := anns.DefaultOptions()
	opts.FilterAuthor = user
	opts.FilterLabel = question

	res, err := anns.NewParser(opts).Parse(f)
	if err != nil {
		return err
	}

	return emit(cmd.Context(), outDir, res)
}

// emit writes one GeoJSON document per (author, image, label) group,
// logs the session summary, and optionally mirrors rows to Postgres.
func emit(ctx context.Context, outDir string, res *anns.Result) error {
	bundles, warns := anns.Group(res.Records)
	res.Warnings = append(res.Warnings, warns...)

	for _, w := range res.Warnings {
		logger.Warn(w.String())
	}

	for _, b := range bundles {
		dir := filepath.Join(outDir, pathSegment(b.Author), pathSegment(b.ImageID))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
		path := filepath.Join(dir, pathSegment(b.Label)+".json")
		if err := writeGeoJSON(path, b); err != nil {
			return err
		}
		logger.Debug("wrote feature collection",
			zap.String("path", path), zap.Int("shapes", len(b.Shapes)))
	}

	if databaseURL != "" {
		if err := saveToDatabase(ctx, res.Records); err != nil {
			return err
		}
	}

	logger.Info("session complete",
		zap.Int("total", res.Counters.Total),
		zap.Int("empty", res.Counters.Empty),
		zap.Int("filtered", res.Counters.Filtered),
		zap.Int("accepted", res.Counters.Accepted),
		zap.Int("documents", len(bundles)),
		zap.Int("warnings", len(res.Warnings)))

	return nil
}

func writeGeoJSON(path string, b anns.Bundle) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err = geojson.Encode(f, b); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}

// writeRaw stores the parser-ready export file verbatim.
func writeRaw(outDir string, results []slidescore.Result) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	path := filepath.Join(outDir, fmt.Sprintf("study_%d.txt", studyID))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if _, err = f.ReadFrom(slidescore.RowSource(results)); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err = f.Close(); err != nil {
		return err
	}
	logger.Info("wrote raw export", zap.String("path", path), zap.Int("rows", len(results)))

	return nil
}

// writeJSON stores the server results verbatim as an indented JSON
// array.
func writeJSON(outDir string, results []slidescore.Result) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	path := filepath.Join(outDir, fmt.Sprintf("study_%d.json", studyID))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err = enc.Encode(results); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err = f.Close(); err != nil {
		return err
	}
	logger.Info("wrote results JSON", zap.String("path", path), zap.Int("rows", len(results)))

	return nil
}

// saveToDatabase mirrors accepted records into the annotations table.
func saveToDatabase(ctx context.Context, records []anns.Record) error {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	st := store.New(pool)
	if err = st.Init(ctx); err != nil {
		return err
	}
	for _, rec := range records {
		if err = st.SaveRecord(ctx, rec, source); err != nil {
			return err
		}
	}
	logger.Info("mirrored records to database", zap.Int("records", len(records)))

	return nil
}

// readResults parses a local tab-separated results file into upload
// rows. A header line matching the export contract is skipped, and a
// trailing lastModifiedOn column is ignored: the server assigns its
// own timestamps on upload.
func readResults(path string) ([]slidescore.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading results file: %w", err)
	}

	var out []slidescore.Result
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if i == 0 && strings.EqualFold(fields[0], anns.Header[0]) {
			continue
		}
		if len(fields) < 5 {
			return nil, fmt.Errorf("line %d: want 5 tab-separated fields, got %d", i+1, len(fields))
		}
		var r slidescore.Result
		if _, err = fmt.Sscanf(fields[0], "%d", &r.ImageID); err != nil {
			return nil, fmt.Errorf("line %d: image ID %q is not a number", i+1, fields[0])
		}
		r.ImageName, r.User, r.Question, r.Answer = fields[1], fields[2], fields[3], fields[4]
		out = append(out, r)
	}

	return out, nil
}

// pathSegment makes a string safe as a single path element.
func pathSegment(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, s)
	if s == "" {
		return "_"
	}
	return s
}
