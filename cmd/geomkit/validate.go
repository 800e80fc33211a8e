package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jobrunner/geomkit/internal/adapters/engine"
	"github.com/jobrunner/geomkit/internal/adapters/geojson"
	"github.com/jobrunner/geomkit/internal/domain"
)

// fileReport is the validation outcome of one feature of a file.
type fileReport struct {
	File    string        `json:"file"`
	Index   int           `json:"index"`
	ID      interface{}   `json:"id,omitempty"`
	Report  domain.Report `json:"report"`
	Missing bool          `json:"missing_geometry,omitempty"`
}

func newValidateCmd() *cobra.Command {
	var (
		asJSON      bool
		onlyInvalid bool
	)

	cmd := &cobra.Command{
		Use:   "validate FILE...",
		Short: "Validate the geometries of GeoJSON files",
		Long: `Validate checks every feature of the given GeoJSON files with the same rules
the service applies and exits with status 1 if any feature is invalid.`,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng := domain.ReadyEngine(engine.New(engine.Options{}))
			codec := geojson.NewCodec()

			var (
				reports []fileReport
				invalid int
			)
			for _, file := range args {
				rs, err := validateFile(eng, codec, file)
				if err != nil {
					return err
				}
				for _, r := range rs {
					if !r.Report.Valid {
						invalid++
					}
					if onlyInvalid && r.Report.Valid {
						continue
					}
					reports = append(reports, r)
				}
			}

			if err := writeReports(cmd.OutOrStdout(), reports, asJSON); err != nil {
				return err
			}
			if invalid > 0 {
				return fmt.Errorf("%d invalid feature(s)", invalid)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print reports as JSON")
	cmd.Flags().BoolVar(&onlyInvalid, "invalid", false, "print only invalid features")
	return cmd
}

func validateFile(eng *domain.Engine, codec *geojson.Codec, file string) ([]fileReport, error) {
	f, err := os.Open(file) //#nosec G304 -- file is a command line argument
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	features, err := codec.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}

	reports := make([]fileReport, 0, len(features))
	for i, feat := range features {
		r := fileReport{File: file, Index: i, ID: feat.ID}
		if feat.Geometry == nil {
			r.Missing = true
			r.Report = domain.Report{Reason: "feature has no geometry"}
			reports = append(reports, r)
			continue
		}
		r.Report, err = domain.ValidityReport(eng, feat.Geometry)
		if err != nil {
			return nil, fmt.Errorf("%s feature %d: %w", file, i, err)
		}
		reports = append(reports, r)
	}
	return reports, nil
}

func writeReports(w io.Writer, reports []fileReport, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if reports == nil {
			reports = []fileReport{}
		}
		return enc.Encode(reports)
	}

	for _, r := range reports {
		status := "valid"
		if !r.Report.Valid {
			status = "invalid: " + r.Report.Reason
		}
		if _, err := fmt.Fprintf(w, "%s#%d\t%s\t%s\n", r.File, r.Index, r.Report.Type, status); err != nil {
			return err
		}
	}
	return nil
}
