package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/countries/internal/core"
)

// seedFile is the YAML document accepted by the seed command.
type seedFile struct {
	Countries []seedRecord `yaml:"countries"`
}

type seedRecord struct {
	ShortName  string  `yaml:"shortName"`
	FullName   string  `yaml:"fullName"`
	IsoAlpha2  string  `yaml:"isoAlpha2"`
	IsoAlpha3  string  `yaml:"isoAlpha3"`
	IsoNumeric string  `yaml:"isoNumeric"`
	Population int64   `yaml:"population"`
	Square     float64 `yaml:"square"`
}

func (r seedRecord) country() core.Country {
	return core.Country{
		ShortName:  r.ShortName,
		FullName:   r.FullName,
		IsoAlpha2:  r.IsoAlpha2,
		IsoAlpha3:  r.IsoAlpha3,
		IsoNumeric: r.IsoNumeric,
		Population: r.Population,
		Square:     r.Square,
	}
}

// parseSeed decodes a seed document. Unknown keys are rejected so typos in
// field names do not silently store zero values.
func parseSeed(data []byte) ([]core.Country, error) {
	var doc seedFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	out := make([]core.Country, 0, len(doc.Countries))
	for _, r := range doc.Countries {
		out = append(out, r.country())
	}
	return out, nil
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		file         string
		skipExisting bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load countries from a YAML file",
		Long: `Store every country listed in a YAML file.

Each record goes through the same validation as POST /api/country. With
--skip-existing, records that collide with stored data are reported and
skipped instead of aborting the run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read seed file: %w", err)
			}
			countries, err := parseSeed(data)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			stored, skipped := 0, 0
			for _, c := range countries {
				err := rootOpts.Service.Store(cmd.Context(), c)
				var dup *core.DuplicateDataError
				switch {
				case err == nil:
					stored++
				case skipExisting && errors.As(err, &dup):
					skipped++
					fmt.Fprintf(out, "skipped %s: %v\n", c.IsoAlpha2, err)
				default:
					return fmt.Errorf("store %s: %w", c.IsoAlpha2, err)
				}
			}
			fmt.Fprintf(out, "seeded %d countries (%d skipped)\n", stored, skipped)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "countries.yaml", "YAML file with a top-level countries list")
	cmd.Flags().BoolVar(&skipExisting, "skip-existing", false, "skip records that duplicate stored data")

	return cmd
}
